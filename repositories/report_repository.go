package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/u13-football/models"
	"github.com/google/uuid"
)

var ErrReportNotFound = errors.New("match report not found")

var reportConstraintErrors = map[string]error{
	"match_reports_match_id_fkey":  ErrGlobalMatchNotFound,
	"match_reports_author_id_fkey": ErrUserNotFound,
}

type ReportRepository interface {
	GetByMatch(ctx context.Context, matchID uuid.UUID) (*models.MatchReport, error)
	Upsert(ctx context.Context, report *models.MatchReport) error
	Validate(ctx context.Context, matchID uuid.UUID, validatorID int) (*models.MatchReport, error)
}

type postgresReportRepository struct {
	db *sql.DB
}

func NewPostgresReportRepository(db *sql.DB) ReportRepository {
	return &postgresReportRepository{db: db}
}

const reportColumns = `
	id, match_id, author_id, summary, key_moments, referee_notes, home_team_performance,
	away_team_performance, incidents, disciplinary_actions, field_conditions, weather_impact,
	is_validated, validated_by, validated_at, created_at, updated_at`

func (r *postgresReportRepository) GetByMatch(ctx context.Context, matchID uuid.UUID) (*models.MatchReport, error) {
	return r.one(ctx, `SELECT `+reportColumns+` FROM match_reports WHERE match_id = $1`, matchID)
}

// Upsert сохраняет отчёт. Правка отчёта снимает с него отметку о проверке.
func (r *postgresReportRepository) Upsert(ctx context.Context, rep *models.MatchReport) error {
	query := `
		INSERT INTO match_reports (
			match_id, author_id, summary, key_moments, referee_notes, home_team_performance,
			away_team_performance, incidents, disciplinary_actions, field_conditions, weather_impact
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT ON CONSTRAINT match_reports_match_key DO UPDATE SET
			summary = EXCLUDED.summary,
			key_moments = EXCLUDED.key_moments,
			referee_notes = EXCLUDED.referee_notes,
			home_team_performance = EXCLUDED.home_team_performance,
			away_team_performance = EXCLUDED.away_team_performance,
			incidents = EXCLUDED.incidents,
			disciplinary_actions = EXCLUDED.disciplinary_actions,
			field_conditions = EXCLUDED.field_conditions,
			weather_impact = EXCLUDED.weather_impact,
			is_validated = FALSE,
			validated_by = NULL,
			validated_at = NULL,
			updated_at = NOW()
		RETURNING ` + reportColumns
	saved, err := scanReport(r.db.QueryRowContext(ctx, query,
		rep.MatchID, rep.AuthorID, rep.Summary, rep.KeyMoments, rep.RefereeNotes, rep.HomeTeamPerformance,
		rep.AwayTeamPerformance, rep.Incidents, rep.DisciplinaryActions, rep.FieldConditions, rep.WeatherImpact,
	))
	if err != nil {
		return mapPQError(err, reportConstraintErrors)
	}
	*rep = *saved
	return nil
}

func (r *postgresReportRepository) Validate(ctx context.Context, matchID uuid.UUID, validatorID int) (*models.MatchReport, error) {
	query := `
		UPDATE match_reports SET is_validated = TRUE, validated_by = $1, validated_at = NOW(), updated_at = NOW()
		WHERE match_id = $2
		RETURNING ` + reportColumns
	return r.one(ctx, query, validatorID, matchID)
}

func (r *postgresReportRepository) one(ctx context.Context, query string, args ...interface{}) (*models.MatchReport, error) {
	rep, err := scanReport(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return rep, nil
}

func scanReport(row rowScanner) (*models.MatchReport, error) {
	var rep models.MatchReport
	err := row.Scan(
		&rep.ID, &rep.MatchID, &rep.AuthorID, &rep.Summary, &rep.KeyMoments, &rep.RefereeNotes, &rep.HomeTeamPerformance,
		&rep.AwayTeamPerformance, &rep.Incidents, &rep.DisciplinaryActions, &rep.FieldConditions, &rep.WeatherImpact,
		&rep.IsValidated, &rep.ValidatedBy, &rep.ValidatedAt, &rep.CreatedAt, &rep.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}
