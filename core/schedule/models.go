package schedule

import (
	"time"

	"github.com/littleoaks/backend/core"
)

const Collection = "schedules"

type (
	Entry struct {
		ID        string    `json:"id"`
		ChildID   string    `json:"childId"`
		Room      string    `json:"room"`
		Activity  string    `json:"activity"`
		StartsAt  time.Time `json:"startsAt"`
		EndsAt    time.Time `json:"endsAt"`
		CreatedAt time.Time `json:"createdAt"`
	}

	NewEntry struct {
		ChildID  string    `json:"childId" validate:"required"`
		Room     string    `json:"room"`
		Activity string    `json:"activity"`
		StartsAt time.Time `json:"startsAt"`
		EndsAt   time.Time `json:"endsAt"`
	}
)

func fromDoc(doc core.Document) Entry {
	return Entry{
		ID:        doc.String("id"),
		ChildID:   doc.String("childId"),
		Room:      doc.String("room"),
		Activity:  doc.String("activity"),
		StartsAt:  doc.Time("startsAt"),
		EndsAt:    doc.Time("endsAt"),
		CreatedAt: doc.Time(core.DocCreatedAt),
	}
}
