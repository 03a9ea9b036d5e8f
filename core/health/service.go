package health

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/littleoaks/backend/core"
	"github.com/littleoaks/backend/core/notification"
)

// Notifier fans an event out to a child's guardians, best-effort.
type Notifier interface {
	NotifyGuardians(ctx context.Context, childID string, pl notification.Payload) int
}

type Service struct {
	store    core.Store
	notifier Notifier
	logger   core.Logger
}

func NewService(store core.Store, notifier Notifier, logger core.Logger) *Service {
	return &Service{store: store, notifier: notifier, logger: logger}
}

// Log appends a health incident, then notifies the child's guardians with the
// incident details. A fanout failure never rolls the incident back.
func (svc *Service) Log(ctx context.Context, ni NewIncident) (string, error) {
	if err := core.Validate.Struct(ni); err != nil {
		return "", core.TranslateValidationErrors(err)
	}

	id := uuid.New().String()
	fields := core.Document{
		"id":      id,
		"childId": ni.ChildID,
		"type":    ni.Type,
		"notes":   ni.Notes,
	}
	if ni.Temperature != nil {
		fields["temperature"] = *ni.Temperature
	}
	if _, err := svc.store.Add(ctx, Collection, fields); err != nil {
		return "", errors.Wrap(err, "logging incident")
	}

	_ = svc.notifier.NotifyGuardians(ctx, ni.ChildID, notification.Payload{
		Kind:        notification.KindHealth,
		ChildID:     ni.ChildID,
		Type:        ni.Type,
		Temperature: ni.Temperature,
		Notes:       ni.Notes,
	})
	return id, nil
}

// ByChild returns the child's incidents, newest first.
func (svc *Service) ByChild(ctx context.Context, childID string) ([]Incident, error) {
	docs, err := svc.store.Query(ctx, Collection, core.DocQuery{
		Field:      "childId",
		Equals:     childID,
		OrderBy:    core.DocCreatedAt,
		Descending: true,
	})
	if err != nil {
		return nil, err
	}
	incs := make([]Incident, 0, len(docs))
	for _, doc := range docs {
		incs = append(incs, fromDoc(doc))
	}
	return incs, nil
}
