package account_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/littleoaks/backend/core"
	"github.com/littleoaks/backend/core/account"
	identitysvc "github.com/littleoaks/backend/services/identity"
	testutil "github.com/littleoaks/backend/tests"
)

func setup(t *testing.T) (*account.Service, core.Store, *identitysvc.Service) {
	store := testutil.OpenStore()
	identity := testutil.NewIdentity(store, testutil.NewQuietLogger())
	svc := account.NewService(store, identity, nil /* tokens */, testutil.NewQuietLogger())
	return svc, store, identity
}

func TestService_ResolveRole(t *testing.T) {
	ctx := context.Background()

	t.Run("staff profile wins", func(t *testing.T) {
		svc, store, _ := setup(t)
		testutil.CreateStaffProfile(t, store, "p1", "staff@test.cd", "staff")
		// a staff member who is also a parent is not demoted
		testutil.CreateParentProfile(t, store, "p1", "staff@test.cd")

		if got := svc.ResolveRole(ctx, core.Principal{ID: "p1", Email: "staff@test.cd"}); got != account.RoleStaff {
			t.Errorf("ResolveRole() = %v, want %v", got, account.RoleStaff)
		}
	})

	t.Run("admin profile", func(t *testing.T) {
		svc, store, _ := setup(t)
		testutil.CreateStaffProfile(t, store, "p1", "admin@test.cd", "admin")

		if got := svc.ResolveRole(ctx, core.Principal{ID: "p1", Email: "admin@test.cd"}); got != account.RoleAdmin {
			t.Errorf("ResolveRole() = %v, want %v", got, account.RoleAdmin)
		}
	})

	t.Run("existing parent profile", func(t *testing.T) {
		svc, store, _ := setup(t)
		testutil.CreateParentProfile(t, store, "p1", "mom@test.cd", "c1")

		if got := svc.ResolveRole(ctx, core.Principal{ID: "p1", Email: "mom@test.cd"}); got != account.RoleParent {
			t.Errorf("ResolveRole() = %v, want %v", got, account.RoleParent)
		}
	})

	t.Run("unknown principal is auto-provisioned as parent", func(t *testing.T) {
		svc, store, _ := setup(t)
		p := core.Principal{ID: "p9", Email: "new@test.cd"}

		if got := svc.ResolveRole(ctx, p); got != account.RoleParent {
			t.Fatalf("ResolveRole() = %v, want %v", got, account.RoleParent)
		}

		doc, err := store.Get(ctx, account.ParentCollection, "p9")
		if err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
		if doc.String("email") != "new@test.cd" {
			t.Errorf("provisioned email = %v, want %v", doc.String("email"), "new@test.cd")
		}
		if ids := doc.Strings("childrenIds"); len(ids) != 0 {
			t.Errorf("provisioned childrenIds = %v, want empty", ids)
		}
	})

	t.Run("provisioning is idempotent", func(t *testing.T) {
		svc, store, _ := setup(t)
		p := core.Principal{ID: "p1", Email: "mom@test.cd"}

		if got := svc.ResolveRole(ctx, p); got != account.RoleParent {
			t.Fatalf("ResolveRole() = %v, want %v", got, account.RoleParent)
		}
		// link a child, then resolve again: the link must survive
		if err := store.Set(ctx, account.ParentCollection, "p1", core.Document{"childrenIds": []string{"c1"}}, true); err != nil {
			t.Fatalf("Set() failed: %v", err)
		}
		if got := svc.ResolveRole(ctx, p); got != account.RoleParent {
			t.Fatalf("ResolveRole() = %v, want %v", got, account.RoleParent)
		}

		doc, err := store.Get(ctx, account.ParentCollection, "p1")
		if err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
		if ids := doc.Strings("childrenIds"); len(ids) != 1 || ids[0] != "c1" {
			t.Errorf("childrenIds = %v, want [c1]", ids)
		}
	})
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("parent registration writes profile", func(t *testing.T) {
		svc, store, _ := setup(t)

		id, err := svc.Register(ctx, account.Registration{
			Email:    "Mom@Test.cd ",
			Password: "S3cret!pass",
			Role:     account.RoleParent,
		})
		if err != nil {
			t.Fatalf("Register() failed: %v", err)
		}

		doc, err := store.Get(ctx, account.ParentCollection, id)
		if err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
		if doc.String("email") != "mom@test.cd" {
			t.Errorf("profile email = %v, want %v", doc.String("email"), "mom@test.cd")
		}
	})

	t.Run("staff registration writes staff profile", func(t *testing.T) {
		svc, store, _ := setup(t)

		id, err := svc.Register(ctx, account.Registration{
			Email:    "teach@test.cd",
			Password: "S3cret!pass",
			Role:     account.RoleStaff,
		})
		if err != nil {
			t.Fatalf("Register() failed: %v", err)
		}

		doc, err := store.Get(ctx, account.StaffCollection, id)
		if err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
		if doc.String("role") != "staff" {
			t.Errorf("profile role = %v, want staff", doc.String("role"))
		}
	})

	t.Run("caller session is untouched", func(t *testing.T) {
		svc, _, identity := setup(t)

		admin := testutil.CreatePrincipal(t, identity, "admin@test.cd", "S3cret!pass")
		callerSess := identity.NewSession()
		if _, err := callerSess.SignIn(ctx, "admin@test.cd", "S3cret!pass"); err != nil {
			t.Fatalf("SignIn() failed: %v", err)
		}

		if _, err := svc.Register(ctx, account.Registration{
			Email:    "teach@test.cd",
			Password: "S3cret!pass",
			Role:     account.RoleStaff,
		}); err != nil {
			t.Fatalf("Register() failed: %v", err)
		}

		p, ok := callerSess.Principal()
		if !ok {
			t.Fatal("caller session was signed out")
		}
		if p.ID != admin.ID {
			t.Errorf("caller session principal = %v, want %v", p.ID, admin.ID)
		}
	})
}

func TestService_Register_errors(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate email", func(t *testing.T) {
		svc, _, _ := setup(t)
		reg := account.Registration{Email: "dup@test.cd", Password: "S3cret!pass", Role: account.RoleParent}

		if _, err := svc.Register(ctx, reg); err != nil {
			t.Fatalf("Register() failed: %v", err)
		}
		if _, err := svc.Register(ctx, reg); errors.Cause(err) != core.ErrEmailTaken {
			t.Errorf("Register() error = %v, want %v", err, core.ErrEmailTaken)
		}
	})

	t.Run("weak password fails validation before any write", func(t *testing.T) {
		svc, store, _ := setup(t)

		_, err := svc.Register(ctx, account.Registration{Email: "weak@test.cd", Password: "short", Role: account.RoleParent})
		if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
			t.Fatalf("Register() error = %T, want *core.ValidationError", errors.Cause(err))
		}

		docs, qErr := store.Query(ctx, account.ParentCollection, core.DocQuery{})
		if qErr != nil {
			t.Fatalf("Query() failed: %v", qErr)
		}
		if len(docs) != 0 {
			t.Errorf("profiles written = %d, want 0", len(docs))
		}
	})

	t.Run("missing role", func(t *testing.T) {
		svc, _, _ := setup(t)

		_, err := svc.Register(ctx, account.Registration{Email: "r@test.cd", Password: "S3cret!pass"})
		if err == nil {
			t.Error("Register() expected a validation error")
		}
	})
}
