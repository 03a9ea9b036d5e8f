package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/littleoaks/backend/core/account"
)

func TestAuth_login(t *testing.T) {
	app := setup(t)
	app.createAccount(t, "mom@test.cd", "S3cret!pass", account.RoleParent)
	app.createAccount(t, "admin@test.cd", "S3cret!pass", account.RoleAdmin)

	tests := []httpTest{
		{
			name:     "empty body",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "this field is required", "password": "this field is required"}),
		},
		{
			name:     "unknown email",
			body:     marchallObj(t, map[string]string{"email": "ghost@test.cd", "password": "S3cret!pass"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "wrong password",
			body:     marchallObj(t, map[string]string{"email": "mom@test.cd", "password": "nope"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "parent login",
			body:     marchallObj(t, map[string]string{"email": "mom@test.cd", "password": "S3cret!pass"}),
			wantCode: http.StatusOK,
			extra:    "parent",
		},
		{
			name:     "admin login",
			body:     marchallObj(t, map[string]string{"email": "ADMIN@test.cd", "password": "S3cret!pass"}),
			wantCode: http.StatusOK,
			extra:    "admin",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/auth/login", tt.body)
			app.server.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %v, wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if wantRole, ok := tt.extra.(string); ok {
				var resp struct {
					Token string `json:"token"`
					Role  string `json:"role"`
				}
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("decoding response: %v", err)
				}
				if resp.Token == "" {
					t.Error("no token returned")
				}
				if resp.Role != wantRole {
					t.Errorf("role = %v, want %v", resp.Role, wantRole)
				}
			} else if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
		})
	}
}

func TestAuth_loginAutoProvisionsParent(t *testing.T) {
	app := setup(t)
	// principal exists but has no profile at all
	_ = app.createAccountPrincipalOnly(t, "new@test.cd", "S3cret!pass")

	body := marchallObj(t, map[string]string{"email": "new@test.cd", "password": "S3cret!pass"})
	req, rec := newRequest(http.MethodPost, "/v1/auth/login", body)
	app.server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Role string `json:"role"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Role != "parent" {
		t.Errorf("role = %v, want parent", resp.Role)
	}
}

func TestAuth_register(t *testing.T) {
	app := setup(t)
	admin := app.createAccount(t, "admin@test.cd", "S3cret!pass", account.RoleAdmin)
	staff := app.createAccount(t, "teach@test.cd", "S3cret!pass", account.RoleStaff)

	adminToken := app.token(t, admin, account.RoleAdmin)
	staffToken := app.token(t, staff, account.RoleStaff)

	tests := []httpTest{
		{
			name:     "parent signup",
			path:     "/v1/auth/register",
			body:     marchallObj(t, map[string]string{"email": "mom@test.cd", "password": "S3cret!pass", "role": "parent"}),
			wantCode: http.StatusCreated,
		},
		{
			name:     "duplicate email",
			path:     "/v1/auth/register",
			body:     marchallObj(t, map[string]string{"email": "mom@test.cd", "password": "S3cret!pass", "role": "parent"}),
			wantCode: http.StatusConflict,
		},
		{
			name:     "staff role rejected on public endpoint",
			path:     "/v1/auth/register",
			body:     marchallObj(t, map[string]string{"email": "sneaky@test.cd", "password": "S3cret!pass", "role": "staff"}),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "weak password",
			path:     "/v1/auth/register",
			body:     marchallObj(t, map[string]string{"email": "weak@test.cd", "password": "short", "role": "parent"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "staff registration needs a token",
			path:     "/v1/auth/register/staff",
			body:     marchallObj(t, map[string]string{"email": "new-teach@test.cd", "password": "S3cret!pass", "role": "staff"}),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "staff registration forbidden for staff",
			path:     "/v1/auth/register/staff",
			token:    staffToken,
			body:     marchallObj(t, map[string]string{"email": "new-teach@test.cd", "password": "S3cret!pass", "role": "staff"}),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "staff registration by admin",
			path:     "/v1/auth/register/staff",
			token:    adminToken,
			body:     marchallObj(t, map[string]string{"email": "new-teach@test.cd", "password": "S3cret!pass", "role": "staff"}),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, tt.path, tt.token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestAuth_passwordReset(t *testing.T) {
	app := setup(t)

	// always 200, known email or not
	for _, email := range []string{"ghost@test.cd", "mom@test.cd"} {
		body := marchallObj(t, map[string]string{"email": email})
		req, rec := newRequest(http.MethodPost, "/v1/auth/password-reset", body)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("code = %v, want %v", rec.Code, http.StatusOK)
		}
	}
}

func TestAuth_pushToken(t *testing.T) {
	app := setup(t)
	mom := app.createAccount(t, "mom@test.cd", "S3cret!pass", account.RoleParent)
	momToken := app.token(t, mom, account.RoleParent)

	t.Run("requires auth", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/auth/push-token", marchallObj(t, map[string]string{"token": "tok-1"}))
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("code = %v, want %v", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("records onto the profile", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/auth/push-token", momToken, marchallObj(t, map[string]string{"token": "tok-1"}))
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}

		doc, err := app.store.Get(context.Background(), account.ParentCollection, mom.ID)
		if err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
		if doc.String("fcmToken") != "tok-1" {
			t.Errorf("fcmToken = %v, want tok-1", doc.String("fcmToken"))
		}
	})
}
