package models

import "time"

type PlayerPosition string

const (
	PositionGoalkeeper   PlayerPosition = "GB"
	PositionLeftBack     PlayerPosition = "DG"
	PositionCenterBack   PlayerPosition = "DC"
	PositionRightBack    PlayerPosition = "DD"
	PositionDefensiveMid PlayerPosition = "MDC"
	PositionCentralMid   PlayerPosition = "MC"
	PositionRightMid     PlayerPosition = "MD"
	PositionLeftMid      PlayerPosition = "MG"
	PositionRightWinger  PlayerPosition = "AD"
	PositionLeftWinger   PlayerPosition = "AG"
	PositionStriker      PlayerPosition = "AC"
	PositionForward      PlayerPosition = "ATT"
)

// MaxMainPlayers - лимит активных основных игроков в команде.
const MaxMainPlayers = 11

type Player struct {
	ID           int            `json:"id"`
	TeamID       int            `json:"team_id"`
	FirstName    string         `json:"first_name"`
	LastName     string         `json:"last_name"`
	BirthDate    time.Time      `json:"birth_date"`
	JerseyNumber int            `json:"jersey_number"`
	Position     PlayerPosition `json:"position"`
	IsCaptain    bool           `json:"is_captain"`
	IsMainPlayer bool           `json:"is_main_player"`
	Height       *int           `json:"height,omitempty"`
	Weight       *int           `json:"weight,omitempty"`
	PhotoKey     *string        `json:"-"`
	PhotoURL     *string        `json:"photo_url,omitempty"`
	StatLine
	ParentName   string    `json:"parent_name"`
	ParentPhone  string    `json:"parent_phone"`
	ParentEmail  string    `json:"parent_email"`
	Parent2Name  string    `json:"parent2_name"`
	Parent2Phone string    `json:"parent2_phone"`
	Parent2Email string    `json:"parent2_email"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Team *Team `json:"team,omitempty"`
}

func (p *Player) FullName() string {
	return p.FirstName + " " + p.LastName
}

// HasParentEmail проверяет, указан ли email среди контактов родителей.
func (p *Player) HasParentEmail(email string) bool {
	if email == "" {
		return false
	}
	return p.ParentEmail == email || p.Parent2Email == email
}

func (p *Player) OwningClubOwner() *int {
	if p.Team == nil {
		return nil
	}
	return p.Team.OwningClubOwner()
}

func (p *Player) PrimaryCoach() *int {
	if p.Team == nil {
		return nil
	}
	return p.Team.PrimaryCoach()
}

func (p *Player) HasAssistantCoach(userID int) bool {
	return p.Team != nil && p.Team.HasAssistantCoach(userID)
}
