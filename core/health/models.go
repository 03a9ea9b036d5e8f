package health

import (
	"time"

	"github.com/littleoaks/backend/core"
)

const Collection = "health_incidents"

type (
	Incident struct {
		ID          string    `json:"id"`
		ChildID     string    `json:"childId"`
		Type        string    `json:"type"`
		Temperature *float64  `json:"temperature,omitempty"`
		Notes       string    `json:"notes"`
		CreatedAt   time.Time `json:"createdAt"`
	}

	NewIncident struct {
		ChildID     string   `json:"childId" validate:"required"`
		Type        string   `json:"type" validate:"required"`
		Temperature *float64 `json:"temperature,omitempty"`
		Notes       string   `json:"notes"`
	}
)

func fromDoc(doc core.Document) Incident {
	inc := Incident{
		ID:        doc.String("id"),
		ChildID:   doc.String("childId"),
		Type:      doc.String("type"),
		Notes:     doc.String("notes"),
		CreatedAt: doc.Time(core.DocCreatedAt),
	}
	if _, ok := doc["temperature"]; ok {
		temp := doc.Float("temperature")
		inc.Temperature = &temp
	}
	return inc
}
