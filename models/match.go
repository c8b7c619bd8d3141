package models

import (
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchLive      MatchStatus = "live"
	MatchHalfTime  MatchStatus = "half_time"
	MatchFinished  MatchStatus = "finished"
	MatchPostponed MatchStatus = "postponed"
	MatchCancelled MatchStatus = "cancelled"
)

func (s MatchStatus) Terminal() bool {
	return s == MatchFinished || s == MatchCancelled
}

// TournamentMatch - матч внутри турнира. Является источником данных
// для зеркального GlobalMatch с тем же идентификатором.
type TournamentMatch struct {
	ID           uuid.UUID   `json:"id"`
	TournamentID uuid.UUID   `json:"tournament_id"`
	GroupID      *int        `json:"group_id,omitempty"`
	PhaseID      *int        `json:"phase_id,omitempty"`
	HomeTeamID   int         `json:"home_team_id"`
	AwayTeamID   int         `json:"away_team_id"`
	MatchDate    time.Time   `json:"match_date"`
	Venue        string      `json:"venue"`
	HomeScore    int         `json:"home_score"`
	AwayScore    int         `json:"away_score"`
	Status       MatchStatus `json:"status"`
	MatchNumber  *int        `json:"match_number,omitempty"`
	RoundNumber  int         `json:"round_number"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`

	// Заполняются join'ами
	OrganizerID int        `json:"-"`
	PhaseType   *PhaseType `json:"phase_type,omitempty"`
	HomeTeam    *Team      `json:"home_team,omitempty"`
	AwayTeam    *Team      `json:"away_team,omitempty"`
	WinnerID    *int       `json:"winner_id,omitempty"`
}

// Winner возвращает команду с большим счётом в завершённом матче.
func (m *TournamentMatch) Winner() *int {
	if m.Status != MatchFinished {
		return nil
	}
	switch {
	case m.HomeScore > m.AwayScore:
		return &m.HomeTeamID
	case m.AwayScore > m.HomeScore:
		return &m.AwayTeamID
	}
	return nil
}
