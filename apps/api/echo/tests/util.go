package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/littleoaks/backend/apps/api/echo"
	"github.com/littleoaks/backend/core"
	"github.com/littleoaks/backend/core/account"
	"github.com/littleoaks/backend/core/attendance"
	"github.com/littleoaks/backend/core/billing"
	"github.com/littleoaks/backend/core/child"
	"github.com/littleoaks/backend/core/health"
	"github.com/littleoaks/backend/core/notification"
	"github.com/littleoaks/backend/core/schedule"
	identitysvc "github.com/littleoaks/backend/services/identity"
	pushsvc "github.com/littleoaks/backend/services/push"
	testutil "github.com/littleoaks/backend/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	server   Server
	store    core.Store
	identity *identitysvc.Service
	account  *account.Service
	notif    *notification.Service
}

func setup(t *testing.T) *testApp {
	store := testutil.OpenStore()
	logger := testutil.NewQuietLogger()
	conf := testutil.NewConfig()

	identity := identitysvc.NewService(store, nil /* email */, conf, logger)
	accountSvc := account.NewService(store, identity, nil /* tokens */, logger)
	childSvc := child.NewService(store, logger)
	notifSvc := notification.NewService(store, childSvc, nil /* email */, pushsvc.NewDummyService(), logger)

	server := NewServer(
		"", /* addr */
		&Deps{
			Conf:          conf,
			Logger:        logger,
			Identity:      identity,
			AccountSvc:    accountSvc,
			ChildSvc:      childSvc,
			AttendanceSvc: attendance.NewService(store, notifSvc, logger),
			HealthSvc:     health.NewService(store, notifSvc, logger),
			BillingSvc:    billing.NewService(store, logger),
			ScheduleSvc:   schedule.NewService(store, logger),
			NotifSvc:      notifSvc,
		},
	)
	return &testApp{
		server:   server,
		store:    store,
		identity: identity,
		account:  accountSvc,
		notif:    notifSvc,
	}
}

// createAccount provisions a principal and profile with the given role and
// returns it.
func (app *testApp) createAccount(t *testing.T, email, pwd string, role account.Role) core.Principal {
	p := testutil.CreatePrincipal(t, app.identity, email, pwd)
	switch role {
	case account.RoleParent:
		testutil.CreateParentProfile(t, app.store, p.ID, email)
	default:
		testutil.CreateStaffProfile(t, app.store, p.ID, email, string(role))
	}
	return p
}

// createAccountPrincipalOnly provisions a principal without any profile.
func (app *testApp) createAccountPrincipalOnly(t *testing.T, email, pwd string) core.Principal {
	return testutil.CreatePrincipal(t, app.identity, email, pwd)
}

func (app *testApp) token(t *testing.T, p core.Principal, role account.Role) string {
	claims := GetPrincipalClaims(p, role)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("token() failed: %v", err)
	}
	return token
}

func noticePayload(kind, childID, typ string) notification.Payload {
	return notification.Payload{Kind: kind, ChildID: childID, Type: typ}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
