package models

import (
	"slices"
	"time"
)

type TeamCategory string

const (
	CategoryU10 TeamCategory = "u10"
	CategoryU11 TeamCategory = "u11"
	CategoryU12 TeamCategory = "u12"
	CategoryU13 TeamCategory = "u13"
	CategoryU14 TeamCategory = "u14"
	CategoryU15 TeamCategory = "u15"
	CategoryU16 TeamCategory = "u16"
	CategoryU17 TeamCategory = "u17"
	CategoryU18 TeamCategory = "u18"
	CategoryU19 TeamCategory = "u19"
	CategoryU20 TeamCategory = "u20"
	CategoryU21 TeamCategory = "u21"
)

type Team struct {
	ID                int          `json:"id"`
	ClubID            int          `json:"club_id"`
	Name              string       `json:"name"`
	Category          TeamCategory `json:"category"`
	CoachID           *int         `json:"coach_id,omitempty"`
	AssistantCoachIDs []int        `json:"assistant_coach_ids"`
	TrophiesWon       int          `json:"trophies_won"`
	MatchesPlayed     int          `json:"matches_played"`
	MatchesWon        int          `json:"matches_won"`
	MatchesDrawn      int          `json:"matches_drawn"`
	MatchesLost       int          `json:"matches_lost"`
	GoalsFor          int          `json:"goals_for"`
	GoalsAgainst      int          `json:"goals_against"`
	IsActive          bool         `json:"is_active"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`

	// Заполняются join'ом с clubs
	ClubName    string `json:"club_name,omitempty"`
	ClubOwnerID *int   `json:"-"`
}

func (t *Team) OwningClubOwner() *int {
	return t.ClubOwnerID
}

func (t *Team) PrimaryCoach() *int {
	return t.CoachID
}

func (t *Team) HasAssistantCoach(userID int) bool {
	return slices.Contains(t.AssistantCoachIDs, userID)
}

func (t *Team) GoalDifference() int {
	return t.GoalsFor - t.GoalsAgainst
}
