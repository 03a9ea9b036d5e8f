package billing

import (
	"context"

	"github.com/pkg/errors"

	"github.com/littleoaks/backend/core"
)

var ErrInvalidStatus = errors.New("invalid invoice status")

type Service struct {
	store  core.Store
	logger core.Logger
}

func NewService(store core.Store, logger core.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// CreateInvoice computes the derived totals and appends the invoice as a
// draft. Billing does not notify guardians.
func (svc *Service) CreateInvoice(ctx context.Context, ni NewInvoice) (string, error) {
	if err := core.Validate.Struct(ni); err != nil {
		return "", core.TranslateValidationErrors(err)
	}

	items := make([]interface{}, 0, len(ni.LineItems))
	for _, li := range ni.LineItems {
		items = append(items, map[string]interface{}{
			"description": li.Description,
			"quantity":    li.Quantity,
			"unitPrice":   li.UnitPrice,
			"amount":      LineAmount(li),
		})
	}

	id, err := svc.store.Add(ctx, Collection, core.Document{
		"parentId":  ni.ParentID,
		"childId":   ni.ChildID,
		"status":    StatusDraft,
		"lineItems": items,
		"total":     InvoiceTotal(ni.LineItems),
	})
	if err != nil {
		return "", errors.Wrap(err, "creating invoice")
	}
	return id, nil
}

// UpdateStatus moves an invoice through its payment lifecycle.
func (svc *Service) UpdateStatus(ctx context.Context, invoiceID, status string) error {
	if !validStatuses[status] {
		return core.NewValidationError(ErrInvalidStatus, core.FieldError{Field: "status", Error: ErrInvalidStatus.Error()})
	}
	return svc.store.Update(ctx, Collection, invoiceID, core.Document{"status": status})
}

func (svc *Service) Get(ctx context.Context, invoiceID string) (Invoice, error) {
	doc, err := svc.store.Get(ctx, Collection, invoiceID)
	if err != nil {
		return Invoice{}, err
	}
	return fromDoc(doc), nil
}

// ByParent returns the parent's invoices, newest first.
func (svc *Service) ByParent(ctx context.Context, parentID string) ([]Invoice, error) {
	docs, err := svc.store.Query(ctx, Collection, core.DocQuery{
		Field:      "parentId",
		Equals:     parentID,
		OrderBy:    core.DocCreatedAt,
		Descending: true,
	})
	if err != nil {
		return nil, err
	}
	invoices := make([]Invoice, 0, len(docs))
	for _, doc := range docs {
		invoices = append(invoices, fromDoc(doc))
	}
	return invoices, nil
}
