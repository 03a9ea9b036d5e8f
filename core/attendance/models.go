package attendance

import (
	"time"

	"github.com/littleoaks/backend/core"
)

const Collection = "attendance"

const (
	TypeCheckIn  = "checkin"
	TypeCheckOut = "checkout"

	MethodManual = "manual"
	MethodQR     = "qr"
)

type (
	Record struct {
		ID        string    `json:"id"`
		ChildID   string    `json:"childId"`
		StaffID   string    `json:"staffId"`
		Type      string    `json:"type"`
		Method    string    `json:"method"`
		Timestamp time.Time `json:"timestamp"`
	}

	NewRecord struct {
		ChildID string `json:"childId" validate:"required"`
		StaffID string `json:"staffId" validate:"required"`
		Type    string `json:"type" validate:"omitempty,oneof=checkin checkout"`
		Method  string `json:"method" validate:"omitempty,oneof=manual qr"`
	}
)

func fromDoc(doc core.Document) Record {
	return Record{
		ID:        doc.String("id"),
		ChildID:   doc.String("childId"),
		StaffID:   doc.String("staffId"),
		Type:      doc.String("type"),
		Method:    doc.String("method"),
		Timestamp: doc.Time(core.DocCreatedAt),
	}
}
