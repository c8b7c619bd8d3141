package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/u13-football/models"
	"github.com/google/uuid"
)

func phasePtr(p models.PhaseType) *models.PhaseType { return &p }

func TestMatchTypeForPhase(t *testing.T) {
	tests := []struct {
		phase *models.PhaseType
		want  models.MatchType
	}{
		{phase: nil, want: models.MatchTypeGroupStage},
		{phase: phasePtr(models.PhaseGroupStage), want: models.MatchTypeGroupStage},
		{phase: phasePtr(models.PhaseRound16), want: models.MatchTypeKnockout},
		{phase: phasePtr(models.PhaseQuarterFinal), want: models.MatchTypeQuarterFinal},
		{phase: phasePtr(models.PhaseSemiFinal), want: models.MatchTypeSemiFinal},
		{phase: phasePtr(models.PhaseFinal), want: models.MatchTypeFinal},
		{phase: phasePtr(models.PhaseThirdPlace), want: models.MatchTypeThirdPlace},
	}
	for _, tt := range tests {
		if got := MatchTypeForPhase(tt.phase); got != tt.want {
			t.Fatalf("MatchTypeForPhase(%v) = %s, want %s", tt.phase, got, tt.want)
		}
	}
}

func tournamentMatch() *models.TournamentMatch {
	return &models.TournamentMatch{
		ID:           uuid.New(),
		TournamentID: uuid.New(),
		GroupID:      intPtr(4),
		HomeTeamID:   10,
		AwayTeamID:   20,
		MatchDate:    time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC),
		Venue:        "Stade Municipal",
		Status:       models.MatchScheduled,
		PhaseType:    phasePtr(models.PhaseSemiFinal),
	}
}

func TestMirrorOf(t *testing.T) {
	src := tournamentMatch()
	got := MirrorOf(src)

	if got.ID != src.ID || got.TournamentID == nil || *got.TournamentID != src.TournamentID {
		t.Fatalf("identity not mirrored: %+v", got)
	}
	if got.HomeTeamID != 10 || got.AwayTeamID != 20 || got.VenueName != "Stade Municipal" {
		t.Fatalf("sides or venue not mirrored: %+v", got)
	}
	if !got.ScheduledDate.Equal(src.MatchDate) {
		t.Fatalf("date = %v, want %v", got.ScheduledDate, src.MatchDate)
	}
	if got.MatchType != models.MatchTypeSemiFinal {
		t.Fatalf("match type = %s", got.MatchType)
	}
	if got.RoundNumber != 1 {
		t.Fatalf("round number = %d, want at least 1", got.RoundNumber)
	}
}

func TestSynchronizerIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newFakeGlobalMatchRepo()
	sync := NewMatchSynchronizer(repo)
	src := tournamentMatch()

	if err := sync.Sync(ctx, nil, src); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	repo.matches[src.ID].RefereeID = intPtr(77)

	if err := sync.Sync(ctx, nil, src); err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if len(repo.matches) != 1 {
		t.Fatalf("expected one mirrored match, got %d", len(repo.matches))
	}
	mirror := repo.matches[src.ID]
	if mirror.RefereeID == nil || *mirror.RefereeID != 77 {
		t.Fatalf("own fields of the general match were overwritten")
	}

	src.HomeScore, src.AwayScore, src.Status = 2, 1, models.MatchFinished
	if err := sync.Sync(ctx, nil, src); err != nil {
		t.Fatalf("third sync: %v", err)
	}
	mirror = repo.matches[src.ID]
	if mirror.HomeScore != 2 || mirror.AwayScore != 1 || mirror.Status != models.MatchFinished {
		t.Fatalf("score not propagated: %+v", mirror)
	}
	if w := mirror.Winner(); w == nil || *w != 10 {
		t.Fatalf("winner = %v, want 10", w)
	}
}

func TestSynchronizerRemoveMissingIsNoop(t *testing.T) {
	repo := newFakeGlobalMatchRepo()
	if err := NewMatchSynchronizer(repo).Remove(context.Background(), nil, uuid.New()); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
