package notification

import (
	"context"
	"net/mail"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/littleoaks/backend/core"
	"github.com/littleoaks/backend/core/account"
)

// GuardianSource looks up the current guardian ids of a child; a missing or
// unreadable child yields an empty list.
type GuardianSource interface {
	GuardianIDs(ctx context.Context, childID string) []string
}

type Service struct {
	store     core.Store
	guardians GuardianSource
	email     core.EmailService // optional
	push      core.PushService  // optional
	logger    core.Logger
}

func NewService(store core.Store, guardians GuardianSource, email core.EmailService, push core.PushService, logger core.Logger) *Service {
	return &Service{
		store:     store,
		guardians: guardians,
		email:     email,
		push:      push,
		logger:    logger,
	}
}

// Record persists a notice addressed to a parent. Read-side delivery is the
// feed subscriber's job.
func (svc *Service) Record(ctx context.Context, parentID string, pl Payload) (Notice, error) {
	id := uuid.New().String()
	fields := core.Document{
		"id":       id,
		"parentId": parentID,
		"payload":  pl.doc(),
	}
	if err := svc.store.Set(ctx, Collection, id, fields, false); err != nil {
		return Notice{}, errors.Wrap(err, "recording notice")
	}
	return Notice{ID: id, ParentID: parentID, Payload: pl}, nil
}

// NotifyGuardians fans one event out to the child's current guardians, one
// notice per guardian, concurrently and independently. At-most-once per
// guardian, best-effort: failures are logged, never surfaced, and do not
// block notices to other guardians. Returns the number of notices recorded;
// callers are permitted to ignore it.
func (svc *Service) NotifyGuardians(ctx context.Context, childID string, pl Payload) int {
	parentIDs := svc.guardians.GuardianIDs(ctx, childID)
	if len(parentIDs) == 0 {
		return 0
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		delivered int
	)
	for _, pid := range parentIDs {
		pid := pid
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Record(ctx, pid, pl); err != nil {
				svc.logger.Warn("notice fanout failed", err, map[string]interface{}{"parentId": pid, "childId": childID})
				return
			}
			mu.Lock()
			delivered++
			mu.Unlock()
			svc.mirror(ctx, pid, pl)
		}()
	}
	wg.Wait()
	return delivered
}

// mirror pushes a copy of the notice through the configured side channels,
// best-effort.
func (svc *Service) mirror(ctx context.Context, parentID string, pl Payload) {
	if svc.email == nil && svc.push == nil {
		return
	}
	doc, err := svc.store.Get(ctx, account.ParentCollection, parentID)
	if err != nil {
		return
	}
	if svc.push != nil {
		if token := doc.String("fcmToken"); token != "" {
			if err := svc.push.Send(ctx, token, pl.Summary(), pl.Notes, map[string]string{"kind": pl.Kind, "childId": pl.ChildID}); err != nil {
				svc.logger.Debug("push mirror failed", err)
			}
		}
	}
	if svc.email != nil {
		if addr := doc.String("email"); addr != "" {
			svc.email.SendMessages(&core.EmailMessage{
				To:      []mail.Address{{Address: addr}},
				Subject: pl.Summary(),
				BodyStr: pl.Summary(),
			})
		}
	}
}

// Subscribe establishes a standing observation over the parent's notices,
// newest first. onUpdate receives the full current ordered list on every
// change. The returned func stops delivery permanently and is safe to call
// multiple times.
func (svc *Service) Subscribe(ctx context.Context, parentID string, onUpdate func([]Notice)) (func(), error) {
	watch, err := svc.store.Watch(ctx, Collection, core.DocQuery{
		Field:      "parentId",
		Equals:     parentID,
		OrderBy:    core.DocCreatedAt,
		Descending: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "subscribing to notices")
	}

	go func() {
		for docs := range watch.Updates() {
			notices := make([]Notice, 0, len(docs))
			for _, doc := range docs {
				notices = append(notices, fromDoc(doc))
			}
			onUpdate(notices)
		}
	}()

	var once sync.Once
	return func() { once.Do(watch.Stop) }, nil
}

// Feed returns the parent's current notices, newest first.
func (svc *Service) Feed(ctx context.Context, parentID string) ([]Notice, error) {
	docs, err := svc.store.Query(ctx, Collection, core.DocQuery{
		Field:      "parentId",
		Equals:     parentID,
		OrderBy:    core.DocCreatedAt,
		Descending: true,
	})
	if err != nil {
		return nil, err
	}
	notices := make([]Notice, 0, len(docs))
	for _, doc := range docs {
		notices = append(notices, fromDoc(doc))
	}
	return notices, nil
}
