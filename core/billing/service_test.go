package billing_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/littleoaks/backend/core"
	"github.com/littleoaks/backend/core/billing"
	testutil "github.com/littleoaks/backend/tests"
)

func setup(t *testing.T) *billing.Service {
	return billing.NewService(testutil.OpenStore(), testutil.NewQuietLogger())
}

func TestService_CreateInvoice(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	id, err := svc.CreateInvoice(ctx, billing.NewInvoice{
		ParentID: "p1",
		ChildID:  "c1",
		LineItems: []billing.LineItem{
			{Description: "Tuition March", Quantity: 3, UnitPrice: 2.005},
			{Description: "Late pickup", Quantity: 1, UnitPrice: 15},
		},
	})
	if err != nil {
		t.Fatalf("CreateInvoice() failed: %v", err)
	}

	inv, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if inv.Status != billing.StatusDraft {
		t.Errorf("status = %v, want %v", inv.Status, billing.StatusDraft)
	}
	if inv.Total != 21.02 {
		t.Errorf("total = %v, want 21.02", inv.Total)
	}
	if len(inv.LineItems) != 2 {
		t.Errorf("lineItems = %d, want 2", len(inv.LineItems))
	}
	if inv.IssuedAt.IsZero() {
		t.Error("issuedAt not stamped")
	}

	t.Run("empty line items total zero", func(t *testing.T) {
		id, err := svc.CreateInvoice(ctx, billing.NewInvoice{ParentID: "p1", ChildID: "c1"})
		if err != nil {
			t.Fatalf("CreateInvoice() failed: %v", err)
		}
		inv, err := svc.Get(ctx, id)
		if err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
		if inv.Total != 0 {
			t.Errorf("total = %v, want 0", inv.Total)
		}
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name string
			ni   billing.NewInvoice
		}{
			{name: "missing parentId", ni: billing.NewInvoice{ChildID: "c1"}},
			{name: "missing childId", ni: billing.NewInvoice{ParentID: "p1"}},
			{name: "negative quantity", ni: billing.NewInvoice{ParentID: "p1", ChildID: "c1", LineItems: []billing.LineItem{{Quantity: -1, UnitPrice: 5}}}},
			{name: "negative price", ni: billing.NewInvoice{ParentID: "p1", ChildID: "c1", LineItems: []billing.LineItem{{Quantity: 1, UnitPrice: -5}}}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.CreateInvoice(ctx, tt.ni)
				if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
					t.Errorf("CreateInvoice() error = %T, want *core.ValidationError", errors.Cause(err))
				}
			})
		}
	})
}

func TestService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	id, err := svc.CreateInvoice(ctx, billing.NewInvoice{ParentID: "p1", ChildID: "c1"})
	if err != nil {
		t.Fatalf("CreateInvoice() failed: %v", err)
	}

	if err = svc.UpdateStatus(ctx, id, billing.StatusSent); err != nil {
		t.Fatalf("UpdateStatus() failed: %v", err)
	}
	inv, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if inv.Status != billing.StatusSent {
		t.Errorf("status = %v, want %v", inv.Status, billing.StatusSent)
	}

	if err = svc.UpdateStatus(ctx, id, "overdue"); err == nil {
		t.Error("UpdateStatus() expected a validation error")
	} else if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
		t.Errorf("UpdateStatus() error = %T, want *core.ValidationError", errors.Cause(err))
	}

	if err = svc.UpdateStatus(ctx, "ghost", billing.StatusPaid); !core.IsDocNotFound(err) {
		t.Errorf("UpdateStatus() error = %v, want %v", err, core.ErrDocNotFound)
	}
}

func TestService_ByParent(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateInvoice(ctx, billing.NewInvoice{ParentID: "p1", ChildID: "c1"}); err != nil {
			t.Fatalf("CreateInvoice() failed: %v", err)
		}
	}
	if _, err := svc.CreateInvoice(ctx, billing.NewInvoice{ParentID: "p2", ChildID: "c2"}); err != nil {
		t.Fatalf("CreateInvoice() failed: %v", err)
	}

	invoices, err := svc.ByParent(ctx, "p1")
	if err != nil {
		t.Fatalf("ByParent() failed: %v", err)
	}
	if len(invoices) != 3 {
		t.Errorf("ByParent() = %d invoices, want 3", len(invoices))
	}
	for _, inv := range invoices {
		if inv.ParentID != "p1" {
			t.Errorf("invoice parentId = %v, want p1", inv.ParentID)
		}
	}
}
