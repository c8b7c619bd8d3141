package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/u13-football/models"
	"github.com/Dosada05/u13-football/services"
	"github.com/golang-jwt/jwt/v4"
)

type fakeAuthService struct {
	user *models.User
	err  error
}

func (f *fakeAuthService) Register(_ context.Context, input services.RegisterInput) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: 1, Email: input.Email, Role: input.Role}, nil
}

func (f *fakeAuthService) Login(context.Context, services.LoginInput) (*models.User, error) {
	return f.user, f.err
}

func TestLoginIssuesSignedToken(t *testing.T) {
	svc := &fakeAuthService{user: &models.User{ID: 17, Role: models.RoleParent}}
	h := NewAuthHandler(svc, "secret", time.Hour)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"a@b.fr","password":"password1"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	tokenString, _ := body["token"].(string)

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if token.Method.Alg() != "HS256" {
		t.Errorf("alg = %s", token.Method.Alg())
	}
	if claims["user_id"] != float64(17) || claims["role"] != "parent" {
		t.Errorf("claims = %v", claims)
	}
	exp, _ := claims["exp"].(float64)
	iat, _ := claims["iat"].(float64)
	if exp-iat != float64(time.Hour/time.Second) {
		t.Errorf("ttl = %v seconds", exp-iat)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{err: services.ErrInvalidCredentials}, "secret", time.Hour)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"a@b.fr","password":"nope"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRegisterMalformedBody(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{}, "secret", time.Hour)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(`{"email":`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
