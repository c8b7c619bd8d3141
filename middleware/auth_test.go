package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/u13-football/models"
	"github.com/Dosada05/u13-football/services"
	"github.com/golang-jwt/jwt/v4"
)

const testSecret = "test-secret"

type fakeLoader struct {
	users map[int]*models.User
}

func (f *fakeLoader) Load(_ context.Context, userID int) (*services.Principal, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, services.ErrAuthenticationFailed
	}
	return &services.Principal{User: u}, nil
}

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func validClaims(userID int) jwt.MapClaims {
	return jwt.MapClaims{
		"user_id": userID,
		"role":    string(models.RoleStaff),
		"exp":     time.Now().Add(time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
}

func newTestAuthenticator() *Authenticator {
	loader := &fakeLoader{users: map[int]*models.User{
		7: {ID: 7, Role: models.RoleStaff, IsActive: true},
	}}
	return NewAuthenticator(testSecret, loader, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestAuthenticateLoadsPrincipal(t *testing.T) {
	auth := newTestAuthenticator()

	var gotUserID int
	var gotRole models.UserRole
	h := auth.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok {
			t.Fatal("principal missing from context")
		}
		gotUserID = p.UserID()
		role, err := GetUserRoleFromContext(r.Context())
		if err != nil {
			t.Fatalf("role from context: %v", err)
		}
		gotRole = role
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims(7)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if gotUserID != 7 || gotRole != models.RoleStaff {
		t.Errorf("got user %d role %q", gotUserID, gotRole)
	}
}

func TestAuthenticateRejects(t *testing.T) {
	expired := validClaims(7)
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	tests := []struct {
		name   string
		header func(t *testing.T) string
	}{
		{"no header", func(*testing.T) string { return "" }},
		{"wrong scheme", func(t *testing.T) string {
			return "Basic " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims(7))
		}},
		{"bad signature", func(t *testing.T) string {
			return "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("other"), validClaims(7))
		}},
		{"expired", func(t *testing.T) string {
			return "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), expired)
		}},
		{"other hmac method", func(t *testing.T) string {
			return "Bearer " + signToken(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims(7))
		}},
		{"unknown user", func(t *testing.T) string {
			return "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims(99))
		}},
		{"missing user id", func(t *testing.T) string {
			claims := validClaims(7)
			delete(claims, "user_id")
			return "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), claims)
		}},
	}

	auth := newTestAuthenticator()
	h := auth.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler must not be called")
	}))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			if v := tt.header(t); v != "" {
				req.Header.Set("Authorization", v)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), `"error"`) {
				t.Errorf("body = %s, want JSON error", rec.Body.String())
			}
		})
	}
}

func TestGetUserIDFromContext(t *testing.T) {
	tests := []struct {
		name    string
		claim   interface{}
		want    int
		wantErr bool
	}{
		{"float", float64(12), 12, false},
		{"string", "12", 12, false},
		{"fractional", 1.5, 0, true},
		{"zero", float64(0), 0, true},
		{"garbage", "abc", 0, true},
		{"bool", true, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := WithClaims(context.Background(), jwt.MapClaims{"user_id": tt.claim})
			got, err := GetUserIDFromContext(ctx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}

	if _, err := GetUserIDFromContext(context.Background()); err == nil {
		t.Error("expected error without claims")
	}
}

func TestGetUserRoleFromContextRejectsUnknown(t *testing.T) {
	ctx := WithClaims(context.Background(), jwt.MapClaims{"role": "organizer"})
	if _, err := GetUserRoleFromContext(ctx); err == nil {
		t.Error("expected error for unknown role")
	}
	ctx = WithClaims(context.Background(), jwt.MapClaims{"role": "coach"})
	if role, err := GetUserRoleFromContext(ctx); err != nil || role != models.RoleCoach {
		t.Errorf("got %q, %v", role, err)
	}
}
