package models

import (
	"time"

	"github.com/google/uuid"
)

type TournamentType string

const (
	TournamentLeague        TournamentType = "league"
	TournamentGroupKnockout TournamentType = "group_knockout"
)

type TournamentStatus string

const (
	TournamentUpcoming  TournamentStatus = "upcoming"
	TournamentActive    TournamentStatus = "active"
	TournamentFinished  TournamentStatus = "finished"
	TournamentCancelled TournamentStatus = "cancelled"
)

type Tournament struct {
	ID                   uuid.UUID        `json:"id"`
	Name                 string           `json:"name"`
	Slug                 string           `json:"slug"`
	Description          string           `json:"description"`
	TournamentType       TournamentType   `json:"tournament_type"`
	Format               string           `json:"format"`
	StartDate            time.Time        `json:"start_date"`
	EndDate              time.Time        `json:"end_date"`
	Location             string           `json:"location"`
	VenueAddress         string           `json:"venue_address"`
	Status               TournamentStatus `json:"status"`
	MaxTeams             int              `json:"max_teams"`
	NumberOfGroups       int              `json:"number_of_groups"`
	TeamsQualifyPerGroup int              `json:"teams_qualify_per_group"`
	OrganizerID          int              `json:"organizer_id"`
	LogoKey              *string          `json:"-"`
	LogoURL              *string          `json:"logo_url,omitempty"`
	Rules                string           `json:"rules"`
	PrizeDescription     string           `json:"prize_description"`
	MatchDuration        int              `json:"match_duration"`
	HalfTimeDuration     int              `json:"half_time_duration"`
	PointsPerWin         int              `json:"points_per_win"`
	PointsPerDraw        int              `json:"points_per_draw"`
	PointsPerLoss        int              `json:"points_per_loss"`
	IsPublic             bool             `json:"is_public"`
	RegistrationOpen     bool             `json:"registration_open"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`

	RegisteredTeamsCount int  `json:"registered_teams_count"`
	IsFull               bool `json:"is_full"`
	CanRegister          bool `json:"can_register"`
}

// ApplyRegistrationCounts заполняет вычисляемые поля регистрации.
// Два способа подсчёта могут расходиться, берётся больший.
func (t *Tournament) ApplyRegistrationCounts(groupTeams, confirmedRegistrations int) {
	t.RegisteredTeamsCount = max(groupTeams, confirmedRegistrations)
	t.IsFull = t.RegisteredTeamsCount >= t.MaxTeams
	t.CanRegister = t.RegistrationOpen && !t.IsFull && t.Status == TournamentUpcoming
}

func (t *Tournament) PointsScheme() PointsScheme {
	return PointsScheme{Win: t.PointsPerWin, Draw: t.PointsPerDraw, Loss: t.PointsPerLoss}
}

type TournamentGroup struct {
	ID           int       `json:"id"`
	TournamentID uuid.UUID `json:"tournament_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Order        int       `json:"order"`
	TeamsCount   int       `json:"teams_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type TeamGroup struct {
	ID                int       `json:"id"`
	TeamID            int       `json:"team_id"`
	GroupID           int       `json:"group_id"`
	Position          *int      `json:"position,omitempty"`
	IsQualified       bool      `json:"is_qualified"`
	QualifiedPosition *int      `json:"qualified_position,omitempty"`
	JoinedAt          time.Time `json:"joined_at"`

	Team *Team `json:"team,omitempty"`
}

type PhaseType string

const (
	PhaseGroupStage   PhaseType = "group_stage"
	PhaseRound16      PhaseType = "round_16"
	PhaseQuarterFinal PhaseType = "quarter_final"
	PhaseSemiFinal    PhaseType = "semi_final"
	PhaseFinal        PhaseType = "final"
	PhaseThirdPlace   PhaseType = "third_place"
)

type TournamentPhase struct {
	ID           int        `json:"id"`
	TournamentID uuid.UUID  `json:"tournament_id"`
	Name         string     `json:"name"`
	PhaseType    PhaseType  `json:"phase_type"`
	Order        int        `json:"order"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	IsActive     bool       `json:"is_active"`
	IsCompleted  bool       `json:"is_completed"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationConfirmed RegistrationStatus = "confirmed"
	RegistrationRejected  RegistrationStatus = "rejected"
	RegistrationWithdrawn RegistrationStatus = "withdrawn"
)

type TeamRegistration struct {
	ID                  int                `json:"id"`
	TeamID              int                `json:"team_id"`
	TournamentID        uuid.UUID          `json:"tournament_id"`
	GroupID             *int               `json:"group_id,omitempty"`
	Status              RegistrationStatus `json:"status"`
	RegistrationDate    time.Time          `json:"registration_date"`
	ConfirmationDate    *time.Time         `json:"confirmation_date,omitempty"`
	SeedNumber          *int               `json:"seed_number,omitempty"`
	SpecialRequirements string             `json:"special_requirements"`

	Team *Team `json:"team,omitempty"`
}

// TournamentStats - сводка по матчам турнира.
type TournamentStats struct {
	TotalMatches    int     `json:"total_matches"`
	FinishedMatches int     `json:"finished_matches"`
	UpcomingMatches int     `json:"upcoming_matches"`
	TotalGoals      int     `json:"total_goals"`
	AverageGoals    float64 `json:"average_goals"`
	TeamsCount      int     `json:"teams_count"`
	GroupsCount     int     `json:"groups_count"`
}
