package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/u13-football/models"
	"github.com/google/uuid"
)

var ErrStatisticsNotFound = errors.New("match statistics not found")

var statisticsConstraintErrors = map[string]error{
	"match_statistics_match_id_fkey":               ErrGlobalMatchNotFound,
	"match_statistics_team_id_fkey":                ErrGlobalMatchTeam,
	"match_statistics_possession_percentage_check": ErrCheckViolation,
}

type StatisticsRepository interface {
	ListByMatch(ctx context.Context, matchID uuid.UUID) ([]models.MatchStatistics, error)
	// Upsert создаёт строку (match, team) или перезаписывает счётчики существующей.
	Upsert(ctx context.Context, stats *models.MatchStatistics) error
}

type postgresStatisticsRepository struct {
	db *sql.DB
}

func NewPostgresStatisticsRepository(db *sql.DB) StatisticsRepository {
	return &postgresStatisticsRepository{db: db}
}

func (r *postgresStatisticsRepository) ListByMatch(ctx context.Context, matchID uuid.UUID) ([]models.MatchStatistics, error) {
	query := `
		SELECT id, match_id, team_id, possession_percentage, shots_total, shots_on_target, shots_off_target,
			shots_blocked, passes_total, passes_completed, pass_accuracy, tackles_total, tackles_won,
			interceptions, clearances, fouls_committed, fouls_suffered, yellow_cards, red_cards,
			corners, free_kicks, offsides, created_at, updated_at
		FROM match_statistics WHERE match_id = $1 ORDER BY team_id`
	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]models.MatchStatistics, 0)
	for rows.Next() {
		var s models.MatchStatistics
		if err := rows.Scan(
			&s.ID, &s.MatchID, &s.TeamID, &s.PossessionPercentage, &s.ShotsTotal, &s.ShotsOnTarget, &s.ShotsOffTarget,
			&s.ShotsBlocked, &s.PassesTotal, &s.PassesCompleted, &s.PassAccuracy, &s.TacklesTotal, &s.TacklesWon,
			&s.Interceptions, &s.Clearances, &s.FoulsCommitted, &s.FoulsSuffered, &s.YellowCards, &s.RedCards,
			&s.Corners, &s.FreeKicks, &s.Offsides, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *postgresStatisticsRepository) Upsert(ctx context.Context, s *models.MatchStatistics) error {
	query := `
		INSERT INTO match_statistics (
			match_id, team_id, possession_percentage, shots_total, shots_on_target, shots_off_target,
			shots_blocked, passes_total, passes_completed, pass_accuracy, tackles_total, tackles_won,
			interceptions, clearances, fouls_committed, fouls_suffered, yellow_cards, red_cards,
			corners, free_kicks, offsides
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT ON CONSTRAINT match_statistics_match_team_key DO UPDATE SET
			possession_percentage = EXCLUDED.possession_percentage,
			shots_total = EXCLUDED.shots_total,
			shots_on_target = EXCLUDED.shots_on_target,
			shots_off_target = EXCLUDED.shots_off_target,
			shots_blocked = EXCLUDED.shots_blocked,
			passes_total = EXCLUDED.passes_total,
			passes_completed = EXCLUDED.passes_completed,
			pass_accuracy = EXCLUDED.pass_accuracy,
			tackles_total = EXCLUDED.tackles_total,
			tackles_won = EXCLUDED.tackles_won,
			interceptions = EXCLUDED.interceptions,
			clearances = EXCLUDED.clearances,
			fouls_committed = EXCLUDED.fouls_committed,
			fouls_suffered = EXCLUDED.fouls_suffered,
			yellow_cards = EXCLUDED.yellow_cards,
			red_cards = EXCLUDED.red_cards,
			corners = EXCLUDED.corners,
			free_kicks = EXCLUDED.free_kicks,
			offsides = EXCLUDED.offsides,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		s.MatchID, s.TeamID, s.PossessionPercentage, s.ShotsTotal, s.ShotsOnTarget, s.ShotsOffTarget,
		s.ShotsBlocked, s.PassesTotal, s.PassesCompleted, s.PassAccuracy, s.TacklesTotal, s.TacklesWon,
		s.Interceptions, s.Clearances, s.FoulsCommitted, s.FoulsSuffered, s.YellowCards, s.RedCards,
		s.Corners, s.FreeKicks, s.Offsides,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return mapPQError(err, statisticsConstraintErrors)
}
