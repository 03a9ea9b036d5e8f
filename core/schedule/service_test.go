package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/littleoaks/backend/core/schedule"
	testutil "github.com/littleoaks/backend/tests"
)

func TestService_AddEntry(t *testing.T) {
	ctx := context.Background()
	svc := schedule.NewService(testutil.OpenStore(), testutil.NewQuietLogger())

	day := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	entries := []schedule.NewEntry{
		{ChildID: "c1", Room: "Butterflies", Activity: "Lunch", StartsAt: day.Add(12 * time.Hour), EndsAt: day.Add(13 * time.Hour)},
		{ChildID: "c1", Room: "Butterflies", Activity: "Circle time", StartsAt: day.Add(9 * time.Hour), EndsAt: day.Add(10 * time.Hour)},
		{ChildID: "c2", Room: "Caterpillars", Activity: "Nap", StartsAt: day.Add(13 * time.Hour), EndsAt: day.Add(15 * time.Hour)},
	}
	for _, ne := range entries {
		if _, err := svc.AddEntry(ctx, ne); err != nil {
			t.Fatalf("AddEntry() failed: %v", err)
		}
	}

	got, err := svc.ByChild(ctx, "c1")
	if err != nil {
		t.Fatalf("ByChild() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ByChild() = %d entries, want 2", len(got))
	}
	// soonest first
	if got[0].Activity != "Circle time" || got[1].Activity != "Lunch" {
		t.Errorf("ByChild() order = [%s, %s], want [Circle time, Lunch]", got[0].Activity, got[1].Activity)
	}

	if _, err = svc.AddEntry(ctx, schedule.NewEntry{Room: "Butterflies"}); err == nil {
		t.Error("AddEntry() expected a validation error")
	}
}
