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
	"github.com/google/uuid"
)

type fakeMatchService struct {
	services.MatchService

	match      *models.GlobalMatch
	err        error
	transition services.Transition
	newDate    *time.Time
	filter     services.MatchListFilter
	days       int
	teamID     *int
}

func (f *fakeMatchService) Transition(_ context.Context, _ *services.Principal, id uuid.UUID, tr services.Transition, newDate *time.Time) (*models.GlobalMatch, error) {
	f.transition = tr
	f.newDate = newDate
	if f.err != nil {
		return nil, f.err
	}
	m := *f.match
	m.ID = id
	return &m, nil
}

func (f *fakeMatchService) ListMatches(_ context.Context, _ *services.Principal, filter services.MatchListFilter, _ services.Page) ([]models.GlobalMatch, error) {
	f.filter = filter
	return []models.GlobalMatch{}, f.err
}

func (f *fakeMatchService) ListUpcoming(_ context.Context, _ *services.Principal, days int, teamID *int) ([]models.GlobalMatch, error) {
	f.days = days
	f.teamID = teamID
	return []models.GlobalMatch{}, f.err
}

const testMatchID = "3b0d9a56-7c1e-4f0a-8a55-2f6b0f3c9d21"

func TestMatchTransitions(t *testing.T) {
	tests := []struct {
		name    string
		handler func(h *MatchHandler) http.HandlerFunc
		want    services.Transition
	}{
		{"start", func(h *MatchHandler) http.HandlerFunc { return h.StartMatch }, services.TransitionStart},
		{"finish", func(h *MatchHandler) http.HandlerFunc { return h.FinishMatch }, services.TransitionFinish},
		{"postpone", func(h *MatchHandler) http.HandlerFunc { return h.PostponeMatch }, services.TransitionPostpone},
		{"cancel", func(h *MatchHandler) http.HandlerFunc { return h.CancelMatch }, services.TransitionCancel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeMatchService{match: &models.GlobalMatch{Status: models.MatchLive}}
			h := NewMatchHandler(svc)

			req := httptest.NewRequest(http.MethodPost, "/matches/"+testMatchID+"/"+tt.name, nil)
			req = withURLParams(withPrincipal(req, 2, models.RoleStaff), map[string]string{"matchID": testMatchID})
			rec := httptest.NewRecorder()
			tt.handler(h)(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			if svc.transition != tt.want {
				t.Errorf("transition = %q, want %q", svc.transition, tt.want)
			}
			if svc.newDate != nil {
				t.Error("new date must be nil")
			}
		})
	}
}

func TestRescheduleRequiresDate(t *testing.T) {
	svc := &fakeMatchService{match: &models.GlobalMatch{}}
	h := NewMatchHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req = withURLParams(withPrincipal(req, 2, models.RoleStaff), map[string]string{"matchID": testMatchID})
	rec := httptest.NewRecorder()
	h.RescheduleMatch(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if svc.transition != "" {
		t.Error("service must not be called without a date")
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"new_date":"2026-11-01T10:00:00Z"}`))
	req = withURLParams(withPrincipal(req, 2, models.RoleStaff), map[string]string{"matchID": testMatchID})
	rec = httptest.NewRecorder()
	h.RescheduleMatch(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if svc.transition != services.TransitionReschedule || svc.newDate == nil || svc.newDate.Day() != 1 {
		t.Errorf("transition = %q, date = %v", svc.transition, svc.newDate)
	}
}

func TestTransitionErrorMapping(t *testing.T) {
	svc := &fakeMatchService{err: services.ErrMatchTerminal}
	h := NewMatchHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = withURLParams(withPrincipal(req, 2, models.RoleStaff), map[string]string{"matchID": testMatchID})
	rec := httptest.NewRecorder()
	h.StartMatch(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestListMatchesParsesFilter(t *testing.T) {
	svc := &fakeMatchService{}
	h := NewMatchHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/matches?status=live,half_time&team_id=10&newest=true&search=lions", nil)
	req = withPrincipal(req, 5, models.RoleViewer)
	rec := httptest.NewRecorder()
	h.ListMatches(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	f := svc.filter
	if len(f.Statuses) != 2 || f.Statuses[0] != models.MatchLive || f.Statuses[1] != models.MatchHalfTime {
		t.Errorf("statuses = %v", f.Statuses)
	}
	if f.TeamID == nil || *f.TeamID != 10 || !f.Newest || f.Search != "lions" {
		t.Errorf("filter = %+v", f)
	}

	req = withPrincipal(httptest.NewRequest(http.MethodGet, "/matches?tournament_id=bad", nil), 5, models.RoleViewer)
	rec = httptest.NewRecorder()
	h.ListMatches(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestListUpcomingWindow(t *testing.T) {
	svc := &fakeMatchService{}
	h := NewMatchHandler(svc)

	req := withPrincipal(httptest.NewRequest(http.MethodGet, "/matches/upcoming", nil), 5, models.RoleParent)
	rec := httptest.NewRecorder()
	h.ListUpcoming(rec, req)
	if rec.Code != http.StatusOK || svc.days != 0 || svc.teamID != nil {
		t.Errorf("status = %d, days = %d, team = %v", rec.Code, svc.days, svc.teamID)
	}

	req = withPrincipal(httptest.NewRequest(http.MethodGet, "/matches/upcoming?days=7&team_id=3", nil), 5, models.RoleParent)
	rec = httptest.NewRecorder()
	h.ListUpcoming(rec, req)
	if svc.days != 7 || svc.teamID == nil || *svc.teamID != 3 {
		t.Errorf("days = %d, team = %v", svc.days, svc.teamID)
	}

	req = withPrincipal(httptest.NewRequest(http.MethodGet, "/matches/upcoming?days=-1", nil), 5, models.RoleParent)
	rec = httptest.NewRecorder()
	h.ListUpcoming(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
