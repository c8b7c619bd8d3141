package routes

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Dosada05/u13-football/handlers"
	"github.com/Dosada05/u13-football/middleware"
	"github.com/Dosada05/u13-football/services"
	"github.com/go-chi/chi/v5"
)

type denyLoader struct{}

func (denyLoader) Load(context.Context, int) (*services.Principal, error) {
	return nil, services.ErrAuthenticationFailed
}

func newTestRouter() http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := Handlers{
		Auth:            handlers.NewAuthHandler(nil, "secret", 0),
		User:            handlers.NewUserHandler(nil),
		Club:            handlers.NewClubHandler(nil),
		Team:            handlers.NewTeamHandler(nil),
		Player:          handlers.NewPlayerHandler(nil),
		Tournament:      handlers.NewTournamentHandler(nil),
		Group:           handlers.NewGroupHandler(nil),
		Registration:    handlers.NewRegistrationHandler(nil),
		TournamentMatch: handlers.NewTournamentMatchHandler(nil),
		Match:           handlers.NewMatchHandler(nil),
		MatchDetail:     handlers.NewMatchDetailHandler(nil, nil, nil),
	}
	router := chi.NewRouter()
	SetupRoutes(router, h, middleware.NewAuthenticator("secret", denyLoader{}, logger), []string{"https://app.example.org"}, logger)
	return router
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/users/me"},
		{http.MethodGet, "/clubs"},
		{http.MethodGet, "/teams/1/players/main"},
		{http.MethodPost, "/players/1/set-main"},
		{http.MethodGet, "/tournaments/3b0d9a56-7c1e-4f0a-8a55-2f6b0f3c9d21/standings"},
		{http.MethodGet, "/groups/1/standings"},
		{http.MethodGet, "/matches/live"},
		{http.MethodPost, "/matches/3b0d9a56-7c1e-4f0a-8a55-2f6b0f3c9d21/set-lineup"},
		{http.MethodPost, "/matches/3b0d9a56-7c1e-4f0a-8a55-2f6b0f3c9d21/report/validate"},
	}
	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", p.method, p.path, rec.Code)
		}
	}
}

func TestHealthIsPublic(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/matches", nil)
	req.Header.Set("Origin", "https://app.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.org" {
		t.Errorf("allow origin = %q", got)
	}
}
