package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dosada05/u13-football/models"
	"github.com/google/uuid"
)

type tournamentFixture struct {
	tournaments *fakeTournamentRepo
	groups      *fakeGroupRepo
	admin       *Principal
	svc         TournamentService
}

func newTournamentFixture() *tournamentFixture {
	f := &tournamentFixture{
		tournaments: newFakeTournamentRepo(),
		groups:      &fakeGroupRepo{},
		admin:       principalFor(1, models.RoleAdmin),
	}
	f.svc = NewTournamentService(f.tournaments, f.groups, nil, nil, discardLogger())
	return f
}

func (f *tournamentFixture) addTournament(tt models.TournamentType, groups int) *models.Tournament {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	t := &models.Tournament{
		ID: uuid.New(), Name: "Spring Cup", TournamentType: tt, NumberOfGroups: groups,
		StartDate: start, EndDate: start.AddDate(0, 0, 3), OrganizerID: 1, Status: models.TournamentUpcoming,
	}
	f.tournaments.tournaments[t.ID] = t
	for i := 1; i <= groups; i++ {
		f.groups.groups = append(f.groups.groups, models.TournamentGroup{ID: i, TournamentID: t.ID, Order: i})
	}
	return t
}

func TestCreateTournamentLeagueGroups(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	base := CreateTournamentInput{Name: "Summer League", StartDate: start, EndDate: start.AddDate(0, 1, 0), Location: "Kazan"}

	tests := []struct {
		name       string
		tType      models.TournamentType
		groups     *int
		wantGroups int
		wantErr    error
	}{
		{name: "league defaults to one group", wantGroups: 1},
		{name: "explicit league one group", tType: models.TournamentLeague, groups: intPtr(1), wantGroups: 1},
		{name: "league with several groups", tType: models.TournamentLeague, groups: intPtr(3), wantErr: ErrValidationFailed},
		{name: "group knockout default", tType: models.TournamentGroupKnockout, wantGroups: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTournamentFixture()
			input := base
			input.TournamentType = tt.tType
			input.NumberOfGroups = tt.groups

			created, err := f.svc.CreateTournament(ctx, f.admin, input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if len(f.tournaments.tournaments) != 0 {
					t.Fatalf("rejected tournament was stored")
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateTournament: %v", err)
			}
			if created.NumberOfGroups != tt.wantGroups {
				t.Fatalf("number_of_groups = %d, want %d", created.NumberOfGroups, tt.wantGroups)
			}
		})
	}
}

func TestUpdateTournamentToLeague(t *testing.T) {
	ctx := context.Background()
	league := models.TournamentLeague

	t.Run("several groups exist", func(t *testing.T) {
		f := newTournamentFixture()
		tr := f.addTournament(models.TournamentGroupKnockout, 2)
		one := 1
		_, err := f.svc.UpdateTournament(ctx, f.admin, tr.ID, UpdateTournamentInput{TournamentType: &league, NumberOfGroups: &one})
		if !errors.Is(err, ErrLeagueSingleGroup) {
			t.Fatalf("expected ErrLeagueSingleGroup, got %v", err)
		}
		if stored := f.tournaments.tournaments[tr.ID]; stored.TournamentType != models.TournamentGroupKnockout {
			t.Fatalf("type changed to %s", stored.TournamentType)
		}
	})

	t.Run("single group normalises count", func(t *testing.T) {
		f := newTournamentFixture()
		tr := f.addTournament(models.TournamentGroupKnockout, 1)
		tr.NumberOfGroups = 4
		updated, err := f.svc.UpdateTournament(ctx, f.admin, tr.ID, UpdateTournamentInput{TournamentType: &league})
		if err != nil {
			t.Fatalf("UpdateTournament: %v", err)
		}
		if updated.TournamentType != models.TournamentLeague || updated.NumberOfGroups != 1 {
			t.Fatalf("got type %s with %d groups", updated.TournamentType, updated.NumberOfGroups)
		}
	})

	t.Run("league asks for more groups", func(t *testing.T) {
		f := newTournamentFixture()
		tr := f.addTournament(models.TournamentLeague, 1)
		three := 3
		_, err := f.svc.UpdateTournament(ctx, f.admin, tr.ID, UpdateTournamentInput{NumberOfGroups: &three})
		var fe FieldErrors
		if !errors.As(err, &fe) || fe["number_of_groups"] == "" {
			t.Fatalf("expected number_of_groups field error, got %v", err)
		}
	})
}
