package child_test

import (
	"context"
	"testing"

	"github.com/littleoaks/backend/core"
	"github.com/littleoaks/backend/core/child"
	testutil "github.com/littleoaks/backend/tests"
)

func setup(t *testing.T) (*child.Service, core.Store) {
	store := testutil.OpenStore()
	return child.NewService(store, testutil.NewQuietLogger()), store
}

func TestService_SaveProfile(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	c := child.Child{ID: "c1", Name: "Nia", ParentIDs: []string{"p1"}, Allergies: []string{"peanuts"}}
	if err := svc.SaveProfile(ctx, c); err != nil {
		t.Fatalf("SaveProfile() failed: %v", err)
	}

	got, err := svc.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Name != "Nia" || len(got.ParentIDs) != 1 || len(got.Allergies) != 1 {
		t.Errorf("Get() = %+v", got)
	}

	// merge upsert: a partial rewrite keeps the other fields
	c.Notes = "naps at noon"
	if err = svc.SaveProfile(ctx, c); err != nil {
		t.Fatalf("SaveProfile() failed: %v", err)
	}
	got, err = svc.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Notes != "naps at noon" || got.Name != "Nia" {
		t.Errorf("Get() after update = %+v", got)
	}

	if err = svc.SaveProfile(ctx, child.Child{Name: "no id"}); err == nil {
		t.Error("SaveProfile() expected a validation error")
	}
}

func TestService_GuardianIDs(t *testing.T) {
	ctx := context.Background()

	t.Run("present", func(t *testing.T) {
		svc, store := setup(t)
		testutil.CreateChild(t, store, "c1", "Nia", "p1", "p2")

		ids := svc.GuardianIDs(ctx, "c1")
		if len(ids) != 2 {
			t.Errorf("GuardianIDs() = %v, want 2 ids", ids)
		}
	})

	t.Run("missing child yields empty, not nil", func(t *testing.T) {
		svc, _ := setup(t)

		ids := svc.GuardianIDs(ctx, "ghost")
		if ids == nil {
			t.Fatal("GuardianIDs() = nil, want empty slice")
		}
		if len(ids) != 0 {
			t.Errorf("GuardianIDs() = %v, want empty", ids)
		}
	})

	t.Run("child without parentIds", func(t *testing.T) {
		svc, store := setup(t)
		if err := store.Set(ctx, child.Collection, "c1", core.Document{"id": "c1", "name": "Nia"}, true); err != nil {
			t.Fatalf("Set() failed: %v", err)
		}

		ids := svc.GuardianIDs(ctx, "c1")
		if ids == nil || len(ids) != 0 {
			t.Errorf("GuardianIDs() = %v, want empty slice", ids)
		}
	})
}
