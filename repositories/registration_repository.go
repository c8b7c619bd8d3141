package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/u13-football/models"
	"github.com/google/uuid"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrAlreadyRegistered    = errors.New("team is already registered for this tournament")
	ErrRegistrationTeam     = errors.New("invalid team reference")
)

var registrationConstraintErrors = map[string]error{
	"registrations_team_tournament_key":                ErrAlreadyRegistered,
	"team_tournament_registrations_team_id_fkey":       ErrRegistrationTeam,
	"team_tournament_registrations_tournament_id_fkey": ErrGroupTournamentGone,
	"team_tournament_registrations_group_id_fkey":      ErrGroupNotFound,
}

type RegistrationRepository interface {
	Create(ctx context.Context, reg *models.TeamRegistration) error
	GetByID(ctx context.Context, id int) (*models.TeamRegistration, error)
	ListByTournament(ctx context.Context, tournamentID uuid.UUID, status *models.RegistrationStatus) ([]models.TeamRegistration, error)
	Update(ctx context.Context, exec SQLExecutor, reg *models.TeamRegistration) error
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const registrationSelect = `
	SELECT r.id, r.team_id, r.tournament_id, r.group_id, r.status, r.registration_date,
		r.confirmation_date, r.seed_number, r.special_requirements,
		t.club_id, t.name, t.category, t.coach_id, c.name, c.owner_id
	FROM team_tournament_registrations r
	JOIN teams t ON t.id = r.team_id
	JOIN clubs c ON c.id = t.club_id`

func (r *postgresRegistrationRepository) Create(ctx context.Context, reg *models.TeamRegistration) error {
	query := `
		INSERT INTO team_tournament_registrations (team_id, tournament_id, status, special_requirements)
		VALUES ($1, $2, $3, $4)
		RETURNING id, registration_date`
	err := r.db.QueryRowContext(ctx, query, reg.TeamID, reg.TournamentID, reg.Status, reg.SpecialRequirements).
		Scan(&reg.ID, &reg.RegistrationDate)
	return mapPQError(err, registrationConstraintErrors)
}

func (r *postgresRegistrationRepository) GetByID(ctx context.Context, id int) (*models.TeamRegistration, error) {
	reg, err := scanRegistration(r.db.QueryRowContext(ctx, registrationSelect+` WHERE r.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) ListByTournament(ctx context.Context, tournamentID uuid.UUID, status *models.RegistrationStatus) ([]models.TeamRegistration, error) {
	p := &placeholders{}
	query := registrationSelect + ` WHERE r.tournament_id = ` + p.add(tournamentID)
	if status != nil {
		query += " AND r.status = " + p.add(*status)
	}
	query += " ORDER BY r.registration_date ASC"

	rows, err := r.db.QueryContext(ctx, query, p.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]models.TeamRegistration, 0)
	for rows.Next() {
		reg, scanErr := scanRegistration(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		regs = append(regs, *reg)
	}
	return regs, rows.Err()
}

func (r *postgresRegistrationRepository) Update(ctx context.Context, exec SQLExecutor, reg *models.TeamRegistration) error {
	query := `
		UPDATE team_tournament_registrations SET
			status = $1, group_id = $2, confirmation_date = $3, seed_number = $4, special_requirements = $5
		WHERE id = $6`
	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		reg.Status, reg.GroupID, reg.ConfirmationDate, reg.SeedNumber, reg.SpecialRequirements, reg.ID,
	)
	if err != nil {
		return mapPQError(err, registrationConstraintErrors)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func scanRegistration(row rowScanner) (*models.TeamRegistration, error) {
	var reg models.TeamRegistration
	team := &models.Team{}
	err := row.Scan(
		&reg.ID, &reg.TeamID, &reg.TournamentID, &reg.GroupID, &reg.Status, &reg.RegistrationDate,
		&reg.ConfirmationDate, &reg.SeedNumber, &reg.SpecialRequirements,
		&team.ClubID, &team.Name, &team.Category, &team.CoachID, &team.ClubName, &team.ClubOwnerID,
	)
	if err != nil {
		return nil, err
	}
	team.ID = reg.TeamID
	reg.Team = team
	return &reg, nil
}
