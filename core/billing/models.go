package billing

import (
	"math"
	"time"

	"github.com/littleoaks/backend/core"
)

const Collection = "invoices"

// Invoice statuses.
const (
	StatusDraft = "draft"
	StatusSent  = "sent"
	StatusPaid  = "paid"
	StatusVoid  = "void"
)

var validStatuses = map[string]bool{
	StatusDraft: true,
	StatusSent:  true,
	StatusPaid:  true,
	StatusVoid:  true,
}

type (
	LineItem struct {
		Description string  `json:"description"`
		Quantity    float64 `json:"quantity" validate:"gte=0"`
		UnitPrice   float64 `json:"unitPrice" validate:"gte=0"`
	}

	Invoice struct {
		ID        string     `json:"id"`
		ParentID  string     `json:"parentId"`
		ChildID   string     `json:"childId"`
		Status    string     `json:"status"`
		LineItems []LineItem `json:"lineItems"`
		Total     float64    `json:"total"`
		IssuedAt  time.Time  `json:"issuedAt"`
	}

	NewInvoice struct {
		ParentID  string     `json:"parentId" validate:"required"`
		ChildID   string     `json:"childId" validate:"required"`
		LineItems []LineItem `json:"lineItems" validate:"dive"`
	}
)

// round2 rounds half-up to two decimal places.
func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// LineAmount is quantity x unit price, rounded to two decimal places.
// Rounding is applied per line, not just on the total, so totals match what a
// ledger would compute.
func LineAmount(li LineItem) float64 {
	return round2(li.Quantity * li.UnitPrice)
}

// InvoiceTotal sums the rounded line amounts and rounds again at two decimal
// places.
func InvoiceTotal(items []LineItem) float64 {
	var sum float64
	for _, li := range items {
		sum += LineAmount(li)
	}
	return round2(sum)
}

func lineItemsFromDoc(doc core.Document) []LineItem {
	raw, ok := doc["lineItems"].([]interface{})
	if !ok {
		return nil
	}
	items := make([]LineItem, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		d := core.Document(m)
		items = append(items, LineItem{
			Description: d.String("description"),
			Quantity:    d.Float("quantity"),
			UnitPrice:   d.Float("unitPrice"),
		})
	}
	return items
}

func fromDoc(doc core.Document) Invoice {
	return Invoice{
		ID:        doc.String("id"),
		ParentID:  doc.String("parentId"),
		ChildID:   doc.String("childId"),
		Status:    doc.String("status"),
		LineItems: lineItemsFromDoc(doc),
		Total:     doc.Float("total"),
		IssuedAt:  doc.Time(core.DocCreatedAt),
	}
}
