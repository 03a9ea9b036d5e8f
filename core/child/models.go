package child

import "github.com/littleoaks/backend/core"

const Collection = "children"

// Child is the source of truth for guardian fanout: parentIds is read at
// write time by the notifier, never re-checked afterwards.
type Child struct {
	ID        string   `json:"id" validate:"required"`
	Name      string   `json:"name"`
	ParentIDs []string `json:"parentIds"`
	Allergies []string `json:"allergies,omitempty"`
	Notes     string   `json:"notes,omitempty"`
}

func fromDoc(doc core.Document) Child {
	return Child{
		ID:        doc.String("id"),
		Name:      doc.String("name"),
		ParentIDs: doc.Strings("parentIds"),
		Allergies: doc.Strings("allergies"),
		Notes:     doc.String("notes"),
	}
}

func (c Child) doc() core.Document {
	return core.Document{
		"id":        c.ID,
		"name":      c.Name,
		"parentIds": c.ParentIDs,
		"allergies": c.Allergies,
		"notes":     c.Notes,
	}
}
