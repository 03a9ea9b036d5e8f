package testutil

import (
	"context"
	"net/mail"
	"testing"
	"time"

	"github.com/littleoaks/backend/core"
	"github.com/littleoaks/backend/core/account"
	"github.com/littleoaks/backend/core/child"
	identitysvc "github.com/littleoaks/backend/services/identity"
	inmemstore "github.com/littleoaks/backend/storage/docstore/inmem"
)

// NewConfig returns a self-contained configuration for tests; nothing is read
// from the environment.
func NewConfig() *core.Config {
	conf := &core.Config{
		Debug:            false,
		TestMode:         true,
		Env:              "TEST",
		AppName:          "LittleOaks",
		SecretKey:        "test-secret-key",
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: mail.Address{Name: "LittleOaks", Address: "noreply@localhost"},
	}
	conf.Server.JWTExpirationDelta = time.Hour
	conf.Server.PasswordResetTimeoutDelta = time.Hour
	return conf
}

// NewLogger returns a logger that fails the test on Error/Fatal calls.
func NewLogger(t *testing.T) core.Logger {
	return testLogger{t: t}
}

// NewQuietLogger returns a logger that records everything and fails nothing;
// for tests that exercise failure paths.
func NewQuietLogger() core.Logger {
	return quietLogger{}
}

type testLogger struct {
	t *testing.T
}

func (l testLogger) Debug(msg string, args ...interface{}) {}
func (l testLogger) Info(msg string, args ...interface{})  {}
func (l testLogger) Warn(msg string, args ...interface{})  { l.t.Logf("WARN: %s %v", msg, args) }
func (l testLogger) Error(msg string, args ...interface{}) { l.t.Errorf("ERROR: %s %v", msg, args) }
func (l testLogger) Fatal(msg string, args ...interface{}) { l.t.Fatalf("FATAL: %s %v", msg, args) }

type quietLogger struct{}

func (quietLogger) Debug(msg string, args ...interface{}) {}
func (quietLogger) Info(msg string, args ...interface{})  {}
func (quietLogger) Warn(msg string, args ...interface{})  {}
func (quietLogger) Error(msg string, args ...interface{}) {}
func (quietLogger) Fatal(msg string, args ...interface{}) {}

// OpenStore returns a fresh in-memory document store.
func OpenStore() *inmemstore.Store {
	return inmemstore.Open()
}

// NewIdentity wires a dev identity provider over the given store.
func NewIdentity(store core.Store, logger core.Logger) *identitysvc.Service {
	return identitysvc.NewService(store, nil /* email */, NewConfig(), logger)
}

// CreatePrincipal registers a principal directly with the identity provider
// and returns it.
func CreatePrincipal(t *testing.T, identity *identitysvc.Service, email, pwd string) core.Principal {
	sess := identity.NewSession()
	p, err := identity.CreatePrincipal(context.Background(), sess, email, pwd)
	if err != nil {
		t.Fatalf("CreatePrincipal() failed: %v", err)
	}
	if err = sess.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut() failed: %v", err)
	}
	return p
}

// CreateChild stores a child record with the given guardians.
func CreateChild(t *testing.T, store core.Store, id, name string, parentIDs ...string) child.Child {
	if parentIDs == nil {
		parentIDs = []string{}
	}
	c := child.Child{ID: id, Name: name, ParentIDs: parentIDs}
	err := store.Set(context.Background(), child.Collection, id, core.Document{
		"id":        c.ID,
		"name":      c.Name,
		"parentIds": c.ParentIDs,
	}, true)
	if err != nil {
		t.Fatalf("CreateChild() failed: %v", err)
	}
	return c
}

// CreateParentProfile stores a parent profile document.
func CreateParentProfile(t *testing.T, store core.Store, id, email string, childrenIDs ...string) {
	if childrenIDs == nil {
		childrenIDs = []string{}
	}
	err := store.Set(context.Background(), account.ParentCollection, id, core.Document{
		"id":          id,
		"email":       email,
		"childrenIds": childrenIDs,
	}, true)
	if err != nil {
		t.Fatalf("CreateParentProfile() failed: %v", err)
	}
}

// CreateStaffProfile stores a staff profile document.
func CreateStaffProfile(t *testing.T, store core.Store, id, email, role string) {
	err := store.Set(context.Background(), account.StaffCollection, id, core.Document{
		"id":    id,
		"email": email,
		"role":  role,
	}, true)
	if err != nil {
		t.Fatalf("CreateStaffProfile() failed: %v", err)
	}
}

// Eventually polls cond until it returns true or the deadline passes.
func Eventually(t *testing.T, timeout time.Duration, cond func() bool) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
