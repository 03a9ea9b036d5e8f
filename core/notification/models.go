package notification

import (
	"fmt"
	"time"

	"github.com/littleoaks/backend/core"
)

const Collection = "messages"

// Payload kinds.
const (
	KindAttendance = "attendance"
	KindHealth     = "health"
)

type (
	// Payload is the tagged event record carried by a Notice.
	Payload struct {
		Kind        string   `json:"kind"`
		ChildID     string   `json:"childId"`
		Type        string   `json:"type,omitempty"`
		Temperature *float64 `json:"temperature,omitempty"`
		Notes       string   `json:"notes,omitempty"`
	}

	// Notice is append-only and immutable once created.
	Notice struct {
		ID        string    `json:"id"`
		ParentID  string    `json:"parentId"`
		Payload   Payload   `json:"payload"`
		CreatedAt time.Time `json:"createdAt"`
	}
)

// Summary is a short human-readable rendering used for push/email mirroring.
func (pl Payload) Summary() string {
	switch pl.Kind {
	case KindAttendance:
		return fmt.Sprintf("Attendance: %s (%s)", pl.Type, pl.ChildID)
	case KindHealth:
		return fmt.Sprintf("Health incident: %s (%s)", pl.Type, pl.ChildID)
	}
	return pl.Kind
}

func (pl Payload) doc() map[string]interface{} {
	m := map[string]interface{}{
		"kind":    pl.Kind,
		"childId": pl.ChildID,
	}
	if pl.Type != "" {
		m["type"] = pl.Type
	}
	if pl.Temperature != nil {
		m["temperature"] = *pl.Temperature
	}
	if pl.Notes != "" {
		m["notes"] = pl.Notes
	}
	return m
}

func payloadFromDoc(m map[string]interface{}) Payload {
	d := core.Document(m)
	pl := Payload{
		Kind:    d.String("kind"),
		ChildID: d.String("childId"),
		Type:    d.String("type"),
		Notes:   d.String("notes"),
	}
	if _, ok := m["temperature"]; ok {
		temp := d.Float("temperature")
		pl.Temperature = &temp
	}
	return pl
}

func fromDoc(doc core.Document) Notice {
	n := Notice{
		ID:        doc.String("id"),
		ParentID:  doc.String("parentId"),
		CreatedAt: doc.Time(core.DocCreatedAt),
	}
	if pl, ok := doc["payload"].(map[string]interface{}); ok {
		n.Payload = payloadFromDoc(pl)
	} else if pl, ok := doc["payload"].(core.Document); ok {
		n.Payload = payloadFromDoc(pl)
	}
	return n
}
