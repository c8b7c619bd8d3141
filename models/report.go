package models

import (
	"time"

	"github.com/google/uuid"
)

type MatchStatistics struct {
	ID                   int       `json:"id"`
	MatchID              uuid.UUID `json:"match_id"`
	TeamID               int       `json:"team_id"`
	PossessionPercentage int       `json:"possession_percentage"`
	ShotsTotal           int       `json:"shots_total"`
	ShotsOnTarget        int       `json:"shots_on_target"`
	ShotsOffTarget       int       `json:"shots_off_target"`
	ShotsBlocked         int       `json:"shots_blocked"`
	PassesTotal          int       `json:"passes_total"`
	PassesCompleted      int       `json:"passes_completed"`
	PassAccuracy         float64   `json:"pass_accuracy"`
	TacklesTotal         int       `json:"tackles_total"`
	TacklesWon           int       `json:"tackles_won"`
	Interceptions        int       `json:"interceptions"`
	Clearances           int       `json:"clearances"`
	FoulsCommitted       int       `json:"fouls_committed"`
	FoulsSuffered        int       `json:"fouls_suffered"`
	YellowCards          int       `json:"yellow_cards"`
	RedCards             int       `json:"red_cards"`
	Corners              int       `json:"corners"`
	FreeKicks            int       `json:"free_kicks"`
	Offsides             int       `json:"offsides"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type MatchReport struct {
	ID                  int        `json:"id"`
	MatchID             uuid.UUID  `json:"match_id"`
	AuthorID            int        `json:"author_id"`
	Summary             string     `json:"summary"`
	KeyMoments          string     `json:"key_moments"`
	RefereeNotes        string     `json:"referee_notes"`
	HomeTeamPerformance string     `json:"home_team_performance"`
	AwayTeamPerformance string     `json:"away_team_performance"`
	Incidents           string     `json:"incidents"`
	DisciplinaryActions string     `json:"disciplinary_actions"`
	FieldConditions     string     `json:"field_conditions"`
	WeatherImpact       string     `json:"weather_impact"`
	IsValidated         bool       `json:"is_validated"`
	ValidatedBy         *int       `json:"validated_by,omitempty"`
	ValidatedAt         *time.Time `json:"validated_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}
