package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/u13-football/models"
	"github.com/google/uuid"
)

var (
	ErrPhaseNotFound     = errors.New("tournament phase not found")
	ErrPhaseTypeConflict = errors.New("phase of this type already exists in the tournament")
)

var phaseConstraintErrors = map[string]error{
	"tournament_phases_tournament_type_key": ErrPhaseTypeConflict,
	"tournament_phases_tournament_id_fkey":  ErrGroupTournamentGone,
}

type PhaseRepository interface {
	Create(ctx context.Context, phase *models.TournamentPhase) error
	GetByID(ctx context.Context, id int) (*models.TournamentPhase, error)
	ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]models.TournamentPhase, error)
	Update(ctx context.Context, phase *models.TournamentPhase) error
	Delete(ctx context.Context, id int) error
}

type postgresPhaseRepository struct {
	db *sql.DB
}

func NewPostgresPhaseRepository(db *sql.DB) PhaseRepository {
	return &postgresPhaseRepository{db: db}
}

const phaseSelect = `
	SELECT id, tournament_id, name, phase_type, sort_order, start_date, end_date,
		is_active, is_completed, created_at, updated_at
	FROM tournament_phases`

func (r *postgresPhaseRepository) Create(ctx context.Context, ph *models.TournamentPhase) error {
	query := `
		INSERT INTO tournament_phases (tournament_id, name, phase_type, sort_order, start_date, end_date, is_active, is_completed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		ph.TournamentID, ph.Name, ph.PhaseType, ph.Order, ph.StartDate, ph.EndDate, ph.IsActive, ph.IsCompleted,
	).Scan(&ph.ID, &ph.CreatedAt, &ph.UpdatedAt)
	return mapPQError(err, phaseConstraintErrors)
}

func (r *postgresPhaseRepository) GetByID(ctx context.Context, id int) (*models.TournamentPhase, error) {
	ph, err := scanPhase(r.db.QueryRowContext(ctx, phaseSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPhaseNotFound
		}
		return nil, err
	}
	return ph, nil
}

func (r *postgresPhaseRepository) ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]models.TournamentPhase, error) {
	rows, err := r.db.QueryContext(ctx, phaseSelect+` WHERE tournament_id = $1 ORDER BY sort_order, id`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	phases := make([]models.TournamentPhase, 0)
	for rows.Next() {
		ph, scanErr := scanPhase(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		phases = append(phases, *ph)
	}
	return phases, rows.Err()
}

func (r *postgresPhaseRepository) Update(ctx context.Context, ph *models.TournamentPhase) error {
	query := `
		UPDATE tournament_phases SET
			name = $1, phase_type = $2, sort_order = $3, start_date = $4, end_date = $5,
			is_active = $6, is_completed = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		ph.Name, ph.PhaseType, ph.Order, ph.StartDate, ph.EndDate, ph.IsActive, ph.IsCompleted, ph.ID,
	).Scan(&ph.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPhaseNotFound
	}
	return mapPQError(err, phaseConstraintErrors)
}

func (r *postgresPhaseRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournament_phases WHERE id = $1`, id)
	if err != nil {
		return mapPQError(err, nil)
	}
	return checkAffectedRows(result, ErrPhaseNotFound)
}

func scanPhase(row rowScanner) (*models.TournamentPhase, error) {
	var ph models.TournamentPhase
	err := row.Scan(&ph.ID, &ph.TournamentID, &ph.Name, &ph.PhaseType, &ph.Order, &ph.StartDate, &ph.EndDate,
		&ph.IsActive, &ph.IsCompleted, &ph.CreatedAt, &ph.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &ph, nil
}
