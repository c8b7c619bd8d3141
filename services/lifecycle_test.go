package services

import (
	"errors"
	"testing"
	"time"

	"github.com/Dosada05/u13-football/models"
)

func TestNextMatchStatus(t *testing.T) {
	tests := []struct {
		name    string
		current models.MatchStatus
		tr      Transition
		hasDate bool
		want    models.MatchStatus
		wantErr error
	}{
		{name: "start scheduled", current: models.MatchScheduled, tr: TransitionStart, want: models.MatchLive},
		{name: "start live", current: models.MatchLive, tr: TransitionStart, wantErr: ErrMatchNotScheduled},
		{name: "start postponed", current: models.MatchPostponed, tr: TransitionStart, wantErr: ErrMatchNotScheduled},
		{name: "finish live", current: models.MatchLive, tr: TransitionFinish, want: models.MatchFinished},
		{name: "finish half time", current: models.MatchHalfTime, tr: TransitionFinish, want: models.MatchFinished},
		{name: "finish postponed", current: models.MatchPostponed, tr: TransitionFinish, want: models.MatchFinished},
		{name: "finish finished", current: models.MatchFinished, tr: TransitionFinish, wantErr: ErrMatchTerminal},
		{name: "finish cancelled", current: models.MatchCancelled, tr: TransitionFinish, wantErr: ErrMatchTerminal},
		{name: "postpone without date", current: models.MatchScheduled, tr: TransitionPostpone, wantErr: ErrNewDateRequired},
		{name: "postpone scheduled", current: models.MatchScheduled, tr: TransitionPostpone, hasDate: true, want: models.MatchPostponed},
		{name: "postpone again", current: models.MatchPostponed, tr: TransitionPostpone, hasDate: true, wantErr: ErrMatchCannotPostpone},
		{name: "postpone live", current: models.MatchLive, tr: TransitionPostpone, hasDate: true, wantErr: ErrMatchCannotPostpone},
		{name: "cancel live", current: models.MatchLive, tr: TransitionCancel, want: models.MatchCancelled},
		{name: "cancel half time", current: models.MatchHalfTime, tr: TransitionCancel, want: models.MatchCancelled},
		{name: "cancel postponed", current: models.MatchPostponed, tr: TransitionCancel, wantErr: ErrMatchCannotCancel},
		{name: "reschedule postponed", current: models.MatchPostponed, tr: TransitionReschedule, hasDate: true, want: models.MatchScheduled},
		{name: "reschedule finished", current: models.MatchFinished, tr: TransitionReschedule, hasDate: true, wantErr: ErrMatchCannotReschedule},
		{name: "unknown transition", current: models.MatchScheduled, tr: Transition("rewind"), wantErr: ErrStateConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := nextMatchStatus(tt.current, tt.tr, tt.hasDate)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if got != tt.current {
					t.Fatalf("status changed to %s on error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("status = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestStateConflictErrorsAreValidationClass(t *testing.T) {
	_, err := nextMatchStatus(models.MatchFinished, TransitionStart, false)
	if !errors.Is(err, ErrStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestApplyMatchTransitionStampsTimes(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	m := &models.GlobalMatch{Status: models.MatchScheduled}

	if err := applyMatchTransition(m, TransitionStart, nil, now); err != nil {
		t.Fatalf("start: %v", err)
	}
	if m.ActualStartTime == nil || !m.ActualStartTime.Equal(now) {
		t.Fatalf("start time not stamped: %v", m.ActualStartTime)
	}

	end := now.Add(70 * time.Minute)
	if err := applyMatchTransition(m, TransitionFinish, nil, end); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if m.Status != models.MatchFinished {
		t.Fatalf("status = %s", m.Status)
	}
	if d := m.Duration(); d == nil || *d != 70 {
		t.Fatalf("duration = %v, want 70", d)
	}
}

func TestApplyMatchTransitionMovesDate(t *testing.T) {
	m := &models.GlobalMatch{Status: models.MatchScheduled, ScheduledDate: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
	newDate := time.Date(2026, 5, 8, 10, 0, 0, 0, time.UTC)

	if err := applyMatchTransition(m, TransitionPostpone, &newDate, time.Now()); err != nil {
		t.Fatalf("postpone: %v", err)
	}
	if m.Status != models.MatchPostponed || !m.ScheduledDate.Equal(newDate) {
		t.Fatalf("got status %s date %v", m.Status, m.ScheduledDate)
	}

	err := applyMatchTransition(m, TransitionReschedule, nil, time.Now())
	if !errors.Is(err, ErrNewDateRequired) {
		t.Fatalf("expected ErrNewDateRequired, got %v", err)
	}
	if m.Status != models.MatchPostponed {
		t.Fatalf("status changed on error: %s", m.Status)
	}
}

func TestTournamentMatchFinishIsStricter(t *testing.T) {
	for _, current := range []models.MatchStatus{models.MatchHalfTime, models.MatchPostponed} {
		if _, err := nextTournamentMatchStatus(current, TransitionFinish); !errors.Is(err, ErrMatchCannotFinish) {
			t.Fatalf("finish from %s: expected ErrMatchCannotFinish, got %v", current, err)
		}
	}
	for _, current := range []models.MatchStatus{models.MatchLive, models.MatchScheduled} {
		got, err := nextTournamentMatchStatus(current, TransitionFinish)
		if err != nil || got != models.MatchFinished {
			t.Fatalf("finish from %s: got %s, %v", current, got, err)
		}
	}
}

func TestChangeTournamentMatchStatus(t *testing.T) {
	m := &models.TournamentMatch{Status: models.MatchScheduled}

	if err := changeTournamentMatchStatus(m, models.MatchScheduled); err != nil {
		t.Fatalf("same status should be a no-op: %v", err)
	}
	if err := changeTournamentMatchStatus(m, models.MatchLive); err != nil || m.Status != models.MatchLive {
		t.Fatalf("to live: %s, %v", m.Status, err)
	}
	if err := changeTournamentMatchStatus(m, models.MatchHalfTime); !errors.Is(err, ErrStateConflict) {
		t.Fatalf("half time is not a tournament status change, got %v", err)
	}
	if err := changeTournamentMatchStatus(m, models.MatchFinished); err != nil || m.Status != models.MatchFinished {
		t.Fatalf("to finished: %s, %v", m.Status, err)
	}
	if err := changeTournamentMatchStatus(m, models.MatchLive); !errors.Is(err, ErrMatchNotScheduled) {
		t.Fatalf("expected ErrMatchNotScheduled, got %v", err)
	}
}

func TestNextTournamentStatus(t *testing.T) {
	tests := []struct {
		current models.TournamentStatus
		target  models.TournamentStatus
		wantErr error
	}{
		{current: models.TournamentUpcoming, target: models.TournamentActive},
		{current: models.TournamentActive, target: models.TournamentActive, wantErr: ErrTournamentNotUpcoming},
		{current: models.TournamentActive, target: models.TournamentFinished},
		{current: models.TournamentUpcoming, target: models.TournamentCancelled},
		{current: models.TournamentFinished, target: models.TournamentCancelled, wantErr: ErrTournamentAlreadyEnded},
		{current: models.TournamentCancelled, target: models.TournamentFinished, wantErr: ErrTournamentAlreadyEnded},
		{current: models.TournamentActive, target: models.TournamentUpcoming, wantErr: ErrStateConflict},
	}
	for _, tt := range tests {
		t.Run(string(tt.current)+"->"+string(tt.target), func(t *testing.T) {
			got, err := nextTournamentStatus(tt.current, tt.target)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil || got != tt.target {
				t.Fatalf("got %s, %v", got, err)
			}
		})
	}
}
