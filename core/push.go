package core

import "context"

// TokenSource yields the current device delivery token, when one is
// available. Absence is not an error; failures never surface to the caller.
type TokenSource interface {
	DeliveryToken(ctx context.Context) (token string, ok bool)
}

// PushService delivers web-push messages to device delivery tokens.
// Delivery is best-effort: callers are permitted to ignore the returned error,
// and implementations never block a primary write on it.
type PushService interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}
