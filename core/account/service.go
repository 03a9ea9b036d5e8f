package account

import (
	"context"

	"github.com/pkg/errors"

	"github.com/littleoaks/backend/core"
)

type Service struct {
	store    core.Store
	identity core.Identity
	tokens   core.TokenSource // optional
	logger   core.Logger
}

func NewService(store core.Store, identity core.Identity, tokens core.TokenSource, logger core.Logger) *Service {
	return &Service{
		store:    store,
		identity: identity,
		tokens:   tokens,
		logger:   logger,
	}
}

// Classify determines the principal's role from existing profiles only; it
// never writes. Staff classification wins over an existing parent profile so
// that a staff member who is also a parent is not silently demoted.
//
// Reads inform a security decision here: permission-denied is absorbed as
// "absent", any other read failure is logged and also treated as absent for
// this attempt.
func (svc *Service) Classify(ctx context.Context, p core.Principal) Role {
	doc, err := svc.store.Get(ctx, StaffCollection, p.ID)
	if err == nil {
		if staffFromDoc(doc).Role == "admin" {
			return RoleAdmin
		}
		return RoleStaff
	}
	if !core.IsDocNotFound(err) && !core.IsPermissionDenied(err) {
		svc.logger.Warn("staff profile read failed", err, p)
	}

	if _, err := svc.store.Get(ctx, ParentCollection, p.ID); err == nil {
		return RoleParent
	} else if !core.IsDocNotFound(err) && !core.IsPermissionDenied(err) {
		svc.logger.Warn("parent profile read failed", err, p)
	}
	return RoleNone
}

// ProvisionParent creates the principal's parent profile with no linked
// children if it does not exist yet. Idempotent and safe to retry: an
// existing profile's fields are never overwritten.
func (svc *Service) ProvisionParent(ctx context.Context, p core.Principal) error {
	if _, err := svc.store.Get(ctx, ParentCollection, p.ID); err == nil {
		return nil
	}
	fields := core.Document{
		"id":          p.ID,
		"email":       p.Email,
		"childrenIds": []string{},
	}
	if err := svc.store.Set(ctx, ParentCollection, p.ID, fields, true); err != nil {
		return errors.Wrap(err, "provisioning parent profile")
	}
	return nil
}

// ResolveRole classifies the principal, auto-provisioning a parent profile on
// first sign-in. Executed once per session.
func (svc *Service) ResolveRole(ctx context.Context, p core.Principal) Role {
	if role := svc.Classify(ctx, p); role != RoleNone {
		return role
	}
	if err := svc.ProvisionParent(ctx, p); err != nil {
		svc.logger.Warn("auto-provisioning failed", err, p)
		return RoleNone
	}
	return RoleParent
}

// Register creates an authentication principal and its profile document as
// one logical operation, under an isolated secondary session so the caller's
// own session identity is never disturbed. The secondary session is signed
// out on every exit path.
//
// A profile-write failure after principal creation leaves an orphaned
// principal with no profile; it is logged for reconciliation and the error is
// surfaced verbatim.
func (svc *Service) Register(ctx context.Context, reg Registration) (string, error) {
	reg.Email = core.CleanString(reg.Email, true /* lower */)
	if err := core.Validate.Struct(reg); err != nil {
		return "", core.TranslateValidationErrors(err)
	}

	sess := svc.identity.NewSession()
	defer func() {
		if err := sess.SignOut(ctx); err != nil {
			svc.logger.Warn("signing out registration session", err)
		}
	}()

	p, err := svc.identity.CreatePrincipal(ctx, sess, reg.Email, reg.Password)
	if err != nil {
		return "", err
	}

	switch reg.Role {
	case RoleParent:
		err = svc.store.Set(ctx, ParentCollection, p.ID, core.Document{
			"id":          p.ID,
			"email":       p.Email,
			"childrenIds": []string{},
		}, true)
	default: // staff | admin
		err = svc.store.Set(ctx, StaffCollection, p.ID, core.Document{
			"id":    p.ID,
			"email": p.Email,
			"role":  string(reg.Role),
		}, true)
	}
	if err != nil {
		svc.logger.Error("profile write failed; principal orphaned", err, p)
		return "", errors.Wrap(err, "writing profile")
	}
	return p.ID, nil
}

// ResetPassword asks the identity provider to start a password reset.
func (svc *Service) ResetPassword(ctx context.Context, email string) error {
	return svc.identity.ResetPassword(ctx, core.CleanString(email, true /* lower */))
}

// GetParent returns the parent profile for the given principal id.
func (svc *Service) GetParent(ctx context.Context, id string) (ParentProfile, error) {
	doc, err := svc.store.Get(ctx, ParentCollection, id)
	if err != nil {
		return ParentProfile{}, err
	}
	return parentFromDoc(doc), nil
}

// GetStaff returns the staff profile for the given principal id.
func (svc *Service) GetStaff(ctx context.Context, id string) (StaffProfile, error) {
	doc, err := svc.store.Get(ctx, StaffCollection, id)
	if err != nil {
		return StaffProfile{}, err
	}
	return staffFromDoc(doc), nil
}

// SavePushToken records a device delivery token onto the principal's profile.
func (svc *Service) SavePushToken(ctx context.Context, principalID string, role Role, token string) error {
	coll := StaffCollection
	if role == RoleParent {
		coll = ParentCollection
	}
	return svc.store.Set(ctx, coll, principalID, core.Document{"fcmToken": token}, true)
}

// SessionHandler is the role-aware session callback exposed to the UI layer.
// p is nil when the session is signed out.
type SessionHandler func(p *core.Principal, role Role)

// ObserveSessions invokes onSession with the resolved role on every session
// change. When a token source is configured, the device delivery token is
// recorded best-effort; its failure is swallowed.
func (svc *Service) ObserveSessions(ctx context.Context, sess core.Session, onSession SessionHandler) (unobserve func()) {
	return sess.Observe(func(p *core.Principal) {
		if p == nil {
			onSession(nil, RoleNone)
			return
		}
		role := svc.ResolveRole(ctx, *p)
		if svc.tokens != nil && role != RoleNone {
			if token, ok := svc.tokens.DeliveryToken(ctx); ok {
				if err := svc.SavePushToken(ctx, p.ID, role, token); err != nil {
					svc.logger.Warn("recording delivery token failed", err, *p)
				}
			}
		}
		onSession(p, role)
	})
}
