package models

import (
	"time"

	"github.com/google/uuid"
)

type MatchType string

const (
	MatchTypeGroupStage   MatchType = "group_stage"
	MatchTypeKnockout     MatchType = "knockout"
	MatchTypeFriendly     MatchType = "friendly"
	MatchTypeFinal        MatchType = "final"
	MatchTypeSemiFinal    MatchType = "semi_final"
	MatchTypeQuarterFinal MatchType = "quarter_final"
	MatchTypeThirdPlace   MatchType = "third_place"
)

type GlobalMatch struct {
	ID                  uuid.UUID   `json:"id"`
	TournamentID        *uuid.UUID  `json:"tournament_id,omitempty"`
	PhaseID             *int        `json:"phase_id,omitempty"`
	GroupID             *int        `json:"group_id,omitempty"`
	HomeTeamID          int         `json:"home_team_id"`
	AwayTeamID          int         `json:"away_team_id"`
	ScheduledDate       time.Time   `json:"scheduled_date"`
	ActualStartTime     *time.Time  `json:"actual_start_time,omitempty"`
	ActualEndTime       *time.Time  `json:"actual_end_time,omitempty"`
	VenueName           string      `json:"venue_name"`
	VenueAddress        string      `json:"venue_address"`
	FieldNumber         string      `json:"field_number"`
	Status              MatchStatus `json:"status"`
	MatchType           MatchType   `json:"match_type"`
	HomeScore           int         `json:"home_score"`
	AwayScore           int         `json:"away_score"`
	HomeScoreHalfTime   int         `json:"home_score_half_time"`
	AwayScoreHalfTime   int         `json:"away_score_half_time"`
	HomeScoreExtraTime  *int        `json:"home_score_extra_time,omitempty"`
	AwayScoreExtraTime  *int        `json:"away_score_extra_time,omitempty"`
	HomeScorePenalties  *int        `json:"home_score_penalties,omitempty"`
	AwayScorePenalties  *int        `json:"away_score_penalties,omitempty"`
	RefereeID           *int        `json:"referee_id,omitempty"`
	AssistantReferee1ID *int        `json:"assistant_referee_1_id,omitempty"`
	AssistantReferee2ID *int        `json:"assistant_referee_2_id,omitempty"`
	WeatherConditions   string      `json:"weather_conditions"`
	Attendance          *int        `json:"attendance,omitempty"`
	Notes               string      `json:"notes"`
	RoundNumber         int         `json:"round_number"`
	CreatedBy           *int        `json:"created_by,omitempty"`
	LastUpdatedBy       *int        `json:"last_updated_by,omitempty"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`

	// Заполняются join'ами
	OrganizerID     *int  `json:"-"`
	HomeTeam        *Team `json:"home_team,omitempty"`
	AwayTeam        *Team `json:"away_team,omitempty"`
	WinnerID        *int  `json:"winner_id,omitempty"`
	DurationMinutes *int  `json:"duration_minutes,omitempty"`
}

// Winner: сначала серия пенальти, затем дополнительное время, затем основной счёт.
func (m *GlobalMatch) Winner() *int {
	if m.Status != MatchFinished {
		return nil
	}
	if m.HomeScorePenalties != nil && m.AwayScorePenalties != nil {
		if w := pickWinner(*m.HomeScorePenalties, *m.AwayScorePenalties, m); w != nil {
			return w
		}
	}
	if m.HomeScoreExtraTime != nil && m.AwayScoreExtraTime != nil {
		if w := pickWinner(*m.HomeScoreExtraTime, *m.AwayScoreExtraTime, m); w != nil {
			return w
		}
	}
	return pickWinner(m.HomeScore, m.AwayScore, m)
}

func pickWinner(home, away int, m *GlobalMatch) *int {
	switch {
	case home > away:
		return &m.HomeTeamID
	case away > home:
		return &m.AwayTeamID
	}
	return nil
}

func (m *GlobalMatch) Duration() *int {
	if m.ActualStartTime == nil || m.ActualEndTime == nil {
		return nil
	}
	minutes := int(m.ActualEndTime.Sub(*m.ActualStartTime).Minutes())
	return &minutes
}

// ParticipantTeamIDs возвращает обе стороны матча.
func (m *GlobalMatch) ParticipantTeamIDs() []int {
	return []int{m.HomeTeamID, m.AwayTeamID}
}

// HasTeam проверяет, участвует ли команда в матче.
func (m *GlobalMatch) HasTeam(teamID int) bool {
	return m.HomeTeamID == teamID || m.AwayTeamID == teamID
}
