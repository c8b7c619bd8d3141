package models

import (
	"time"

	"github.com/google/uuid"
)

type MatchLineup struct {
	ID        int       `json:"id"`
	MatchID   uuid.UUID `json:"match_id"`
	TeamID    int       `json:"team_id"`
	PlayerID  int       `json:"player_id"`
	Position  string    `json:"position"`
	IsStarter bool      `json:"is_starter"`
	IsCaptain bool      `json:"is_captain"`
	StatLine
	Rating    *float64  `json:"rating,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	Player *Player `json:"player,omitempty"`
}

type EventType string

const (
	EventGoal         EventType = "goal"
	EventOwnGoal      EventType = "own_goal"
	EventPenaltyGoal  EventType = "penalty_goal"
	EventYellowCard   EventType = "yellow_card"
	EventRedCard      EventType = "red_card"
	EventSubstitution EventType = "substitution"
	EventInjury       EventType = "injury"
	EventTimeout      EventType = "timeout"
)

type MatchEvent struct {
	ID                  int       `json:"id"`
	MatchID             uuid.UUID `json:"match_id"`
	TeamID              int       `json:"team_id"`
	PlayerID            int       `json:"player_id"`
	EventType           EventType `json:"event_type"`
	Minute              int       `json:"minute"`
	AdditionalTime      int       `json:"additional_time"`
	SubstitutedPlayerID *int      `json:"substituted_player_id,omitempty"`
	AssistPlayerID      *int      `json:"assist_player_id,omitempty"`
	Description         string    `json:"description"`
	CreatedBy           *int      `json:"created_by,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// Contribution - прибавка к строке состава автора события.
func (e *MatchEvent) Contribution() StatLine {
	switch e.EventType {
	case EventGoal, EventPenaltyGoal:
		return StatLine{GoalsScored: 1}
	case EventYellowCard:
		return StatLine{YellowCards: 1}
	case EventRedCard:
		return StatLine{RedCards: 1}
	}
	return StatLine{}
}

// AssistContribution - прибавка к строке состава ассистента, если он указан.
func (e *MatchEvent) AssistContribution() (int, StatLine, bool) {
	if e.AssistPlayerID == nil {
		return 0, StatLine{}, false
	}
	if e.EventType != EventGoal && e.EventType != EventPenaltyGoal {
		return 0, StatLine{}, false
	}
	return *e.AssistPlayerID, StatLine{Assists: 1}, true
}
