package child

import (
	"context"

	"github.com/littleoaks/backend/core"
)

type Service struct {
	store  core.Store
	logger core.Logger
}

func NewService(store core.Store, logger core.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// SaveProfile merge-upserts a child record under its own id.
func (svc *Service) SaveProfile(ctx context.Context, c Child) error {
	if err := core.Validate.Struct(c); err != nil {
		return core.TranslateValidationErrors(err)
	}
	return svc.store.Set(ctx, Collection, c.ID, c.doc(), true)
}

func (svc *Service) Get(ctx context.Context, id string) (Child, error) {
	doc, err := svc.store.Get(ctx, Collection, id)
	if err != nil {
		return Child{}, err
	}
	return fromDoc(doc), nil
}

// GuardianIDs returns the child's current parent ids. A missing or unreadable
// child record yields an empty list, never an error.
func (svc *Service) GuardianIDs(ctx context.Context, childID string) []string {
	doc, err := svc.store.Get(ctx, Collection, childID)
	if err != nil {
		if !core.IsDocNotFound(err) && !core.IsPermissionDenied(err) {
			svc.logger.Warn("child record read failed", err)
		}
		return []string{}
	}
	ids := doc.Strings("parentIds")
	if ids == nil {
		return []string{}
	}
	return ids
}
