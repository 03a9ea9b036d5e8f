package pushsvc

import (
	"context"
	"sync"

	"github.com/littleoaks/backend/core"
)

// SentMessage captures a push delivery made through the dummy service.
type SentMessage struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// DummyService records deliveries in memory; used in tests and DEV.
type DummyService struct {
	mu   sync.Mutex
	Sent []SentMessage
}

var _ core.PushService = (*DummyService)(nil)

func NewDummyService() *DummyService {
	return &DummyService{}
}

func (svc *DummyService) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.Sent = append(svc.Sent, SentMessage{Token: token, Title: title, Body: body, Data: data})
	return nil
}

// SentMessages returns a snapshot of the deliveries made so far.
func (svc *DummyService) SentMessages() []SentMessage {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	out := make([]SentMessage, len(svc.Sent))
	copy(out, svc.Sent)
	return out
}
