package identitysvc

import (
	"context"
	"fmt"
	"net/mail"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/littleoaks/backend/core"
)

const (
	// Collection holds the principal records of the dev identity provider.
	Collection = "principals"

	// minPasswordLen matches the registration password policy floor so a
	// reset can never install a password registration would have rejected.
	minPasswordLen = 8
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Service is a development identity provider backed by the document store.
// Production deployments swap it for a hosted provider behind core.Identity.
type Service struct {
	store  core.Store
	email  core.EmailService // optional
	conf   *core.Config
	logger core.Logger
}

var _ core.Identity = (*Service)(nil)

func NewService(store core.Store, email core.EmailService, conf *core.Config, logger core.Logger) *Service {
	return &Service{
		store:  store,
		email:  email,
		conf:   conf,
		logger: logger,
	}
}

func (svc *Service) NewSession() core.Session {
	return &session{svc: svc, observers: make(map[int]func(*core.Principal))}
}

func (svc *Service) CreatePrincipal(ctx context.Context, sess core.Session, email, password string) (core.Principal, error) {
	email = core.CleanString(email, true)
	if len(password) < minPasswordLen {
		return core.Principal{}, core.ErrWeakCredential
	}

	existing, err := svc.store.Query(ctx, Collection, core.DocQuery{Field: "email", Equals: email})
	if err != nil {
		return core.Principal{}, errors.Wrap(err, "looking up email")
	}
	if len(existing) > 0 {
		return core.Principal{}, core.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return core.Principal{}, errors.Wrap(err, "hashing password")
	}

	principal := core.Principal{ID: uuid.New().String(), Email: email}
	doc := core.Document{
		"id":           principal.ID,
		"email":        principal.Email,
		"passwordHash": string(hash),
	}
	if err := svc.store.Set(ctx, Collection, principal.ID, doc, false); err != nil {
		return core.Principal{}, errors.Wrap(err, "storing principal")
	}

	if s, ok := sess.(*session); ok {
		s.setPrincipal(&principal)
	}
	return principal, nil
}

// ResetPassword emails a time-limited reset link. Unknown emails are ignored
// so the endpoint does not leak which accounts exist.
func (svc *Service) ResetPassword(ctx context.Context, email string) error {
	email = core.CleanString(email, true)

	docs, err := svc.store.Query(ctx, Collection, core.DocQuery{Field: "email", Equals: email})
	if err != nil {
		return errors.Wrap(err, "looking up email")
	}
	if len(docs) == 0 {
		return nil
	}

	token, err := svc.resetToken(docs[0].String("id"))
	if err != nil {
		return err
	}

	if svc.email == nil {
		svc.logger.Warn("identitysvc: no email service configured; dropping reset mail", "email", email)
		return nil
	}
	svc.email.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Address: email}},
		Subject: fmt.Sprintf("Password reset on %s", svc.conf.AppName),
		BodyStr: fmt.Sprintf(
			"You requested a password reset on %s.\n\n"+
				"Follow this link to choose a new password:\n%s/reset-password?token=%s\n\n"+
				"If this was not you, you can safely ignore this email.",
			svc.conf.AppName, svc.conf.FrontendBaseURL, token,
		),
	})
	return nil
}

// CompleteReset consumes a reset token and replaces the principal's password.
func (svc *Service) CompleteReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return core.ErrWeakCredential
	}

	claims := new(jwt.StandardClaims)
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(svc.conf.SecretKey), nil
	})
	if err != nil {
		return core.ErrNotAuthenticated
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hashing password")
	}
	err = svc.store.Update(ctx, Collection, claims.Subject, core.Document{"passwordHash": string(hash)})
	return errors.Wrap(err, "updating principal")
}

func (svc *Service) resetToken(principalID string) (string, error) {
	now := time.Now()
	claims := jwt.StandardClaims{
		Subject:   principalID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(svc.conf.Server.PasswordResetTimeoutDelta).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(svc.conf.SecretKey))
	return token, errors.Wrap(err, "signing reset token")
}

func (svc *Service) signIn(ctx context.Context, email, password string) (core.Principal, error) {
	email = core.CleanString(email, true)

	docs, err := svc.store.Query(ctx, Collection, core.DocQuery{Field: "email", Equals: email})
	if err != nil {
		return core.Principal{}, errors.Wrap(err, "looking up email")
	}
	if len(docs) == 0 {
		return core.Principal{}, ErrInvalidCredentials
	}
	doc := docs[0]
	if err := bcrypt.CompareHashAndPassword([]byte(doc.String("passwordHash")), []byte(password)); err != nil {
		return core.Principal{}, ErrInvalidCredentials
	}
	return core.Principal{ID: doc.String("id"), Email: doc.String("email")}, nil
}

// session is one isolated auth context. Observers are invoked synchronously
// under no lock; callbacks must not re-enter the session.
type session struct {
	svc *Service

	mu        sync.Mutex
	principal *core.Principal
	observers map[int]func(*core.Principal)
	nextObs   int
}

var _ core.Session = (*session)(nil)

func (s *session) Principal() (core.Principal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.principal == nil {
		return core.Principal{}, false
	}
	return *s.principal, true
}

func (s *session) SignIn(ctx context.Context, email, password string) (core.Principal, error) {
	principal, err := s.svc.signIn(ctx, email, password)
	if err != nil {
		return core.Principal{}, err
	}
	s.setPrincipal(&principal)
	return principal, nil
}

func (s *session) SignOut(ctx context.Context) error {
	s.setPrincipal(nil)
	return nil
}

func (s *session) Observe(cb func(*core.Principal)) (unobserve func()) {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = cb
	current := s.principal
	s.mu.Unlock()

	cb(current)

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *session) setPrincipal(p *core.Principal) {
	s.mu.Lock()
	s.principal = p
	observers := make([]func(*core.Principal), 0, len(s.observers))
	for _, cb := range s.observers {
		observers = append(observers, cb)
	}
	s.mu.Unlock()

	for _, cb := range observers {
		cb(p)
	}
}
