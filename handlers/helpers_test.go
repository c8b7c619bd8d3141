package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dosada05/u13-football/middleware"
	"github.com/Dosada05/u13-football/models"
	"github.com/Dosada05/u13-football/services"
	"github.com/go-chi/chi/v5"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

// withPrincipal кладёт пользователя в контекст так же, как Authenticate.
func withPrincipal(r *http.Request, id int, role models.UserRole) *http.Request {
	p := &services.Principal{User: &models.User{ID: id, Role: role, IsActive: true}}
	return r.WithContext(middleware.WithPrincipal(r.Context(), p))
}

func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		field  string
	}{
		{"not found", services.ErrMatchNotFound, http.StatusNotFound, ""},
		{"wrapped not found", fmt.Errorf("load: %w", services.ErrTeamNotFound), http.StatusNotFound, ""},
		{"validation", services.ErrMainPlayerLimit, http.StatusBadRequest, ""},
		{"state conflict", services.ErrMatchTerminal, http.StatusBadRequest, ""},
		{"field errors", services.FieldErrors{"minute": "must be at most 120"}, http.StatusBadRequest, "minute"},
		{"integrity", &services.IntegrityError{Field: "jersey_number", Message: "already exists"}, http.StatusBadRequest, "jersey_number"},
		{"authentication", services.ErrInvalidCredentials, http.StatusUnauthorized, ""},
		{"forbidden", services.ErrNotClubOwner, http.StatusForbidden, ""},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			mapServiceErrorToHTTP(rec, req, tt.err)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			body := decodeBody(t, rec)
			if _, ok := body["error"]; !ok {
				t.Errorf("body has no error key: %v", body)
			}
			if tt.field != "" {
				fields, ok := body["fields"].(map[string]interface{})
				if !ok {
					t.Fatalf("body has no fields map: %v", body)
				}
				if _, ok := fields[tt.field]; !ok {
					t.Errorf("fields = %v, want key %q", fields, tt.field)
				}
			}
		})
	}
}

func TestServerErrorHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	mapServiceErrorToHTTP(rec, req, errors.New("pq: password authentication failed"))

	if strings.Contains(rec.Body.String(), "pq:") {
		t.Errorf("internal error leaked: %s", rec.Body.String())
	}
}

func TestGetIDFromURL(t *testing.T) {
	tests := []struct {
		value   string
		want    int
		wantErr bool
	}{
		{"42", 42, false},
		{"", 0, true},
		{"abc", 0, true},
		{"0", 0, true},
		{"-3", 0, true},
	}
	for _, tt := range tests {
		req := withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"teamID": tt.value})
		got, err := getIDFromURL(req, "teamID")
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("getIDFromURL(%q) = %d, %v", tt.value, got, err)
		}
	}
}

func TestGetUUIDFromURL(t *testing.T) {
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"matchID": "not-a-uuid"})
	if _, err := getUUIDFromURL(req, "matchID"); err == nil {
		t.Error("expected error for malformed uuid")
	}

	req = withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"matchID": "6f1c1b9e-2d7a-4c55-9a43-0c9e1d1f5b10"})
	id, err := getUUIDFromURL(req, "matchID")
	if err != nil || id.String() != "6f1c1b9e-2d7a-4c55-9a43-0c9e1d1f5b10" {
		t.Errorf("got %v, %v", id, err)
	}
}

func TestPageFromQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=20&offset=40", nil)
	page, err := pageFromQuery(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Limit != 20 || page.Offset != 40 {
		t.Errorf("page = %+v", page)
	}

	for _, q := range []string{"limit=0", "limit=x", "offset=-1"} {
		if _, err := pageFromQuery(httptest.NewRequest(http.MethodGet, "/?"+q, nil)); err == nil {
			t.Errorf("%s: expected error", q)
		}
	}
}

func TestReadJSONRejectsUnknownFields(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"U13","extra":1}`))
	if err := readJSON(httptest.NewRecorder(), req, &dst); err == nil {
		t.Error("expected error for unknown field")
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"U13"}{"name":"U14"}`))
	if err := readJSON(httptest.NewRecorder(), req, &dst); err == nil {
		t.Error("expected error for two JSON values")
	}
}

func TestPrincipalRequired(t *testing.T) {
	rec := httptest.NewRecorder()
	if _, ok := principal(rec, httptest.NewRequest(http.MethodGet, "/", nil)); ok {
		t.Fatal("principal must be missing")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
