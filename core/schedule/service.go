package schedule

import (
	"context"

	"github.com/pkg/errors"

	"github.com/littleoaks/backend/core"
)

type Service struct {
	store  core.Store
	logger core.Logger
}

func NewService(store core.Store, logger core.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// AddEntry appends a schedule entry. Scheduling does not notify guardians.
func (svc *Service) AddEntry(ctx context.Context, ne NewEntry) (string, error) {
	if err := core.Validate.Struct(ne); err != nil {
		return "", core.TranslateValidationErrors(err)
	}
	id, err := svc.store.Add(ctx, Collection, core.Document{
		"childId":  ne.ChildID,
		"room":     ne.Room,
		"activity": ne.Activity,
		"startsAt": ne.StartsAt,
		"endsAt":   ne.EndsAt,
	})
	if err != nil {
		return "", errors.Wrap(err, "adding schedule entry")
	}
	return id, nil
}

// ByChild returns the child's schedule entries, soonest first.
func (svc *Service) ByChild(ctx context.Context, childID string) ([]Entry, error) {
	docs, err := svc.store.Query(ctx, Collection, core.DocQuery{
		Field:   "childId",
		Equals:  childID,
		OrderBy: "startsAt",
	})
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, fromDoc(doc))
	}
	return entries, nil
}
