package core

import "context"

// Principal is an authenticated identity. It is created and owned by the
// identity provider; read-only to this system.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type (
	// Session is one isolated authentication context. Multiple sessions may
	// coexist; signing one in or out never disturbs another. The registration
	// workflow relies on this to create principals under a scoped secondary
	// session without touching the caller's own.
	Session interface {
		// Principal returns the currently signed-in principal, if any.
		Principal() (Principal, bool)
		SignIn(ctx context.Context, email, password string) (Principal, error)
		SignOut(ctx context.Context) error
		// Observe registers cb to be invoked with the current principal (or
		// nil) on every session change, starting with the current state.
		// The returned func unregisters it.
		Observe(cb func(*Principal)) (unobserve func())
	}

	// Identity is the authentication provider consumed by this system.
	Identity interface {
		// NewSession returns a fresh, signed-out session.
		NewSession() Session
		// CreatePrincipal registers a new identity and signs it into sess.
		// Fails with ErrEmailTaken or ErrWeakCredential.
		CreatePrincipal(ctx context.Context, sess Session, email, password string) (Principal, error)
		ResetPassword(ctx context.Context, email string) error
	}
)
