package attendance

import (
	"context"
	"encoding/json"

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

// Create appends an attendance record with a server-generated timestamp, then
// notifies the child's guardians. A fanout failure never rolls the record
// back.
func (svc *Service) Create(ctx context.Context, nr NewRecord) (string, error) {
	if err := core.Validate.Struct(nr); err != nil {
		return "", core.TranslateValidationErrors(err)
	}
	if nr.Type == "" {
		nr.Type = TypeCheckIn
	}
	if nr.Method == "" {
		nr.Method = MethodManual
	}

	id, err := svc.store.Add(ctx, Collection, core.Document{
		"childId": nr.ChildID,
		"staffId": nr.StaffID,
		"type":    nr.Type,
		"method":  nr.Method,
	})
	if err != nil {
		return "", errors.Wrap(err, "recording attendance")
	}

	_ = svc.notifier.NotifyGuardians(ctx, nr.ChildID, notification.Payload{
		Kind:    notification.KindAttendance,
		ChildID: nr.ChildID,
		Type:    nr.Type,
	})
	return id, nil
}

// ByChild returns the child's attendance records, newest first.
func (svc *Service) ByChild(ctx context.Context, childID string) ([]Record, error) {
	docs, err := svc.store.Query(ctx, Collection, core.DocQuery{
		Field:      "childId",
		Equals:     childID,
		OrderBy:    core.DocCreatedAt,
		Descending: true,
	})
	if err != nil {
		return nil, err
	}
	recs := make([]Record, 0, len(docs))
	for _, doc := range docs {
		recs = append(recs, fromDoc(doc))
	}
	return recs, nil
}

// ParseQRPayload decodes the JSON payload carried by a check-in QR code.
func ParseQRPayload(text string) (NewRecord, error) {
	var nr NewRecord
	if err := json.Unmarshal([]byte(text), &nr); err != nil {
		return NewRecord{}, core.NewValidationError(errors.New("invalid QR payload"))
	}
	nr.Method = MethodQR
	return nr, nil
}
