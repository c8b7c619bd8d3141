package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/u13-football/models"
	"github.com/google/uuid"
)

var (
	ErrLineupNotFound  = errors.New("lineup entry not found")
	ErrLineupDuplicate = errors.New("player is already in the lineup for this match")
	ErrLineupPlayer    = errors.New("invalid player reference")
)

var lineupConstraintErrors = map[string]error{
	"match_lineups_match_team_player_key": ErrLineupDuplicate,
	"match_lineups_player_id_fkey":        ErrLineupPlayer,
	"match_lineups_match_id_fkey":         ErrGlobalMatchNotFound,
	"match_lineups_team_id_fkey":          ErrGlobalMatchTeam,
}

type LineupRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, lineups []models.MatchLineup) error
	GetByID(ctx context.Context, id int) (*models.MatchLineup, error)
	GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.MatchLineup, error)
	GetByMatchTeamPlayerForUpdate(ctx context.Context, exec SQLExecutor, matchID uuid.UUID, teamID, playerID int) (*models.MatchLineup, error)
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID uuid.UUID, teamID *int) ([]models.MatchLineup, error)
	Update(ctx context.Context, exec SQLExecutor, lineup *models.MatchLineup) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	DeleteByMatchTeam(ctx context.Context, exec SQLExecutor, matchID uuid.UUID, teamID int) error
	SumByPlayer(ctx context.Context, playerID int) (models.StatLine, int, error)
}

type postgresLineupRepository struct {
	db *sql.DB
}

func NewPostgresLineupRepository(db *sql.DB) LineupRepository {
	return &postgresLineupRepository{db: db}
}

func (r *postgresLineupRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const lineupSelect = `
	SELECT l.id, l.match_id, l.team_id, l.player_id, l.position, l.is_starter, l.is_captain,
		l.goals_scored, l.assists, l.yellow_cards, l.red_cards, l.minutes_played, l.rating, l.created_at,
		p.first_name, p.last_name, p.jersey_number, p.position
	FROM match_lineups l
	JOIN players p ON p.id = l.player_id`

func (r *postgresLineupRepository) CreateBatch(ctx context.Context, exec SQLExecutor, lineups []models.MatchLineup) error {
	if len(lineups) == 0 {
		return nil
	}
	p := &placeholders{}
	query := `
		INSERT INTO match_lineups (
			match_id, team_id, player_id, position, is_starter, is_captain,
			goals_scored, assists, yellow_cards, red_cards, minutes_played, rating
		) VALUES `
	for i, l := range lineups {
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("(%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)",
			p.add(l.MatchID), p.add(l.TeamID), p.add(l.PlayerID), p.add(l.Position), p.add(l.IsStarter), p.add(l.IsCaptain),
			p.add(l.GoalsScored), p.add(l.Assists), p.add(l.YellowCards), p.add(l.RedCards), p.add(l.MinutesPlayed), p.add(l.Rating))
	}
	query += " RETURNING id, created_at"

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, p.args...)
	if err != nil {
		return mapPQError(err, lineupConstraintErrors)
	}
	defer rows.Close()

	// RETURNING отдаёт строки в порядке VALUES
	i := 0
	for rows.Next() {
		if err := rows.Scan(&lineups[i].ID, &lineups[i].CreatedAt); err != nil {
			return err
		}
		i++
	}
	return mapPQError(rows.Err(), lineupConstraintErrors)
}

func (r *postgresLineupRepository) GetByID(ctx context.Context, id int) (*models.MatchLineup, error) {
	return r.getOne(ctx, r.db, lineupSelect+` WHERE l.id = $1`, id)
}

// GetForUpdate читает строку состава под блокировкой до конца транзакции.
func (r *postgresLineupRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.MatchLineup, error) {
	return r.getOne(ctx, r.getExecutor(exec), lineupSelect+` WHERE l.id = $1 FOR UPDATE OF l`, id)
}

// GetByMatchTeamPlayerForUpdate блокирует строку игрока в составе конкретной команды матча.
func (r *postgresLineupRepository) GetByMatchTeamPlayerForUpdate(ctx context.Context, exec SQLExecutor, matchID uuid.UUID, teamID, playerID int) (*models.MatchLineup, error) {
	query := lineupSelect + ` WHERE l.match_id = $1 AND l.team_id = $2 AND l.player_id = $3 FOR UPDATE OF l`
	return r.getOne(ctx, r.getExecutor(exec), query, matchID, teamID, playerID)
}

func (r *postgresLineupRepository) getOne(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) (*models.MatchLineup, error) {
	l, err := scanLineup(exec.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLineupNotFound
		}
		return nil, err
	}
	return l, nil
}

func (r *postgresLineupRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID uuid.UUID, teamID *int) ([]models.MatchLineup, error) {
	p := &placeholders{}
	query := lineupSelect + ` WHERE l.match_id = ` + p.add(matchID)
	if teamID != nil {
		query += " AND l.team_id = " + p.add(*teamID)
	}
	query += " ORDER BY l.team_id, l.is_starter DESC, p.jersey_number"

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, p.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lineups := make([]models.MatchLineup, 0)
	for rows.Next() {
		l, scanErr := scanLineup(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		lineups = append(lineups, *l)
	}
	return lineups, rows.Err()
}

func (r *postgresLineupRepository) Update(ctx context.Context, exec SQLExecutor, l *models.MatchLineup) error {
	query := `
		UPDATE match_lineups SET
			position = $1, is_starter = $2, is_captain = $3,
			goals_scored = $4, assists = $5, yellow_cards = $6, red_cards = $7, minutes_played = $8,
			rating = $9
		WHERE id = $10`
	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		l.Position, l.IsStarter, l.IsCaptain,
		l.GoalsScored, l.Assists, l.YellowCards, l.RedCards, l.MinutesPlayed,
		l.Rating, l.ID,
	)
	if err != nil {
		return mapPQError(err, lineupConstraintErrors)
	}
	return checkAffectedRows(result, ErrLineupNotFound)
}

func (r *postgresLineupRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM match_lineups WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrLineupNotFound)
}

func (r *postgresLineupRepository) DeleteByMatchTeam(ctx context.Context, exec SQLExecutor, matchID uuid.UUID, teamID int) error {
	_, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM match_lineups WHERE match_id = $1 AND team_id = $2`, matchID, teamID)
	return err
}

// SumByPlayer суммирует статистику игрока по всем составам; второе значение - число матчей.
func (r *postgresLineupRepository) SumByPlayer(ctx context.Context, playerID int) (models.StatLine, int, error) {
	query := `
		SELECT COALESCE(SUM(goals_scored), 0), COALESCE(SUM(assists), 0), COALESCE(SUM(yellow_cards), 0),
			COALESCE(SUM(red_cards), 0), COALESCE(SUM(minutes_played), 0), COUNT(DISTINCT match_id)
		FROM match_lineups WHERE player_id = $1`
	var s models.StatLine
	var matches int
	err := r.db.QueryRowContext(ctx, query, playerID).Scan(
		&s.GoalsScored, &s.Assists, &s.YellowCards, &s.RedCards, &s.MinutesPlayed, &matches,
	)
	if err != nil {
		return models.StatLine{}, 0, fmt.Errorf("failed to sum lineup stats for player %d: %w", playerID, err)
	}
	return s, matches, nil
}

func scanLineup(row rowScanner) (*models.MatchLineup, error) {
	var l models.MatchLineup
	player := &models.Player{}
	err := row.Scan(
		&l.ID, &l.MatchID, &l.TeamID, &l.PlayerID, &l.Position, &l.IsStarter, &l.IsCaptain,
		&l.GoalsScored, &l.Assists, &l.YellowCards, &l.RedCards, &l.MinutesPlayed, &l.Rating, &l.CreatedAt,
		&player.FirstName, &player.LastName, &player.JerseyNumber, &player.Position,
	)
	if err != nil {
		return nil, err
	}
	player.ID = l.PlayerID
	player.TeamID = l.TeamID
	l.Player = player
	return &l, nil
}
