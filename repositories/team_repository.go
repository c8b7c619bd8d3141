package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/u13-football/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamNameConflict = errors.New("team with this name and category already exists in the club")
	ErrTeamClubInvalid  = errors.New("invalid club reference")
	ErrTeamCoachInvalid = errors.New("invalid coach reference")
)

var teamConstraintErrors = map[string]error{
	"teams_club_name_category_key": ErrTeamNameConflict,
	"teams_club_id_fkey":           ErrTeamClubInvalid,
	"teams_coach_id_fkey":          ErrTeamCoachInvalid,
}

type ListTeamsFilter struct {
	Scope    Scope
	ClubID   *int
	Category *models.TeamCategory
	IDs      []int
	Search   string
	Limit    int
	Offset   int
}

type TeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	LockForUpdate(ctx context.Context, exec SQLExecutor, id int) error
	List(ctx context.Context, filter ListTeamsFilter) ([]models.Team, error)
	ListForUser(ctx context.Context, userID int) ([]models.Team, error)
	Update(ctx context.Context, exec SQLExecutor, team *models.Team) error
	Delete(ctx context.Context, id int) error
	SetAssistants(ctx context.Context, exec SQLExecutor, teamID int, userIDs []int) error
	Follow(ctx context.Context, teamID, userID int) error
	Unfollow(ctx context.Context, teamID, userID int) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const teamSelect = `
	SELECT
		t.id, t.club_id, t.name, t.category, t.coach_id,
		ARRAY(SELECT a.user_id FROM team_assistant_coaches a WHERE a.team_id = t.id ORDER BY a.user_id),
		t.trophies_won, t.matches_played, t.matches_won, t.matches_drawn, t.matches_lost,
		t.goals_for, t.goals_against, t.is_active, t.created_at, t.updated_at,
		c.name, c.owner_id
	FROM teams t
	JOIN clubs c ON c.id = t.club_id`

var teamScopeColumns = scopeColumns{
	teams: func(param string) string { return "t.id = ANY(" + param + ")" },
	clubs: func(param string) string { return "t.club_id = ANY(" + param + ")" },
}

func (r *postgresTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	query := `
		INSERT INTO teams (club_id, name, category, coach_id, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		team.ClubID, team.Name, team.Category, team.CoachID, team.IsActive,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)

	return mapPQError(err, teamConstraintErrors)
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := scanTeam(r.db.QueryRowContext(ctx, teamSelect+` WHERE t.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

// LockForUpdate берёт блокировку строки команды до конца транзакции.
func (r *postgresTeamRepository) LockForUpdate(ctx context.Context, exec SQLExecutor, id int) error {
	var lockedID int
	err := r.getExecutor(exec).QueryRowContext(ctx, `SELECT id FROM teams WHERE id = $1 FOR UPDATE`, id).Scan(&lockedID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTeamNotFound
	}
	return err
}

func (r *postgresTeamRepository) List(ctx context.Context, filter ListTeamsFilter) ([]models.Team, error) {
	p := &placeholders{}
	query := teamSelect + ` WHERE ` + filter.Scope.clause(teamScopeColumns, p)

	if filter.ClubID != nil {
		query += " AND t.club_id = " + p.add(*filter.ClubID)
	}
	if filter.Category != nil {
		query += " AND t.category = " + p.add(*filter.Category)
	}
	if filter.IDs != nil {
		query += " AND t.id = ANY(" + p.add(int64Array(filter.IDs)) + ")"
	}
	if filter.Search != "" {
		param := p.add("%" + filter.Search + "%")
		query += fmt.Sprintf(" AND (t.name ILIKE %s OR c.name ILIKE %s)", param, param)
	}

	query += " ORDER BY c.name ASC, t.category ASC, t.name ASC"

	if filter.Limit > 0 {
		query += " LIMIT " + p.add(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + p.add(filter.Offset)
	}

	return r.queryTeams(ctx, query, p.args...)
}

// ListForUser - команды клубов пользователя, команды, которые он тренирует, и те, на которые подписан.
func (r *postgresTeamRepository) ListForUser(ctx context.Context, userID int) ([]models.Team, error) {
	query := teamSelect + `
		WHERE c.owner_id = $1
			OR t.coach_id = $1
			OR EXISTS (SELECT 1 FROM team_assistant_coaches a WHERE a.team_id = t.id AND a.user_id = $1)
			OR EXISTS (SELECT 1 FROM team_followers f WHERE f.team_id = t.id AND f.user_id = $1)
		ORDER BY c.name ASC, t.name ASC`
	return r.queryTeams(ctx, query, userID)
}

func (r *postgresTeamRepository) Update(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	query := `
		UPDATE teams SET
			name = $1,
			category = $2,
			coach_id = $3,
			trophies_won = $4,
			matches_played = $5,
			matches_won = $6,
			matches_drawn = $7,
			matches_lost = $8,
			goals_for = $9,
			goals_against = $10,
			is_active = $11,
			updated_at = NOW()
		WHERE id = $12
		RETURNING updated_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		team.Name, team.Category, team.CoachID, team.TrophiesWon,
		team.MatchesPlayed, team.MatchesWon, team.MatchesDrawn, team.MatchesLost,
		team.GoalsFor, team.GoalsAgainst, team.IsActive,
		team.ID,
	).Scan(&team.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTeamNotFound
	}
	return mapPQError(err, teamConstraintErrors)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return mapPQError(err, nil)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

// SetAssistants заменяет список помощников тренера целиком.
func (r *postgresTeamRepository) SetAssistants(ctx context.Context, exec SQLExecutor, teamID int, userIDs []int) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, `DELETE FROM team_assistant_coaches WHERE team_id = $1`, teamID); err != nil {
		return fmt.Errorf("failed to clear assistant coaches for team %d: %w", teamID, err)
	}
	if len(userIDs) == 0 {
		return nil
	}
	query := `
		INSERT INTO team_assistant_coaches (team_id, user_id)
		SELECT $1, unnest($2::int[])
		ON CONFLICT DO NOTHING`
	if _, err := executor.ExecContext(ctx, query, teamID, int64Array(userIDs)); err != nil {
		return mapPQError(err, map[string]error{"team_assistant_coaches_user_id_fkey": ErrTeamCoachInvalid})
	}
	return nil
}

func (r *postgresTeamRepository) Follow(ctx context.Context, teamID, userID int) error {
	query := `INSERT INTO team_followers (team_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, teamID, userID)
	return mapPQError(err, map[string]error{"team_followers_team_id_fkey": ErrTeamNotFound})
}

func (r *postgresTeamRepository) Unfollow(ctx context.Context, teamID, userID int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM team_followers WHERE team_id = $1 AND user_id = $2`, teamID, userID)
	return err
}

func (r *postgresTeamRepository) queryTeams(ctx context.Context, query string, args ...interface{}) ([]models.Team, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		team, scanErr := scanTeam(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, *team)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

func scanTeam(row rowScanner) (*models.Team, error) {
	var t models.Team
	var assistants pq.Int64Array
	err := row.Scan(
		&t.ID, &t.ClubID, &t.Name, &t.Category, &t.CoachID, &assistants,
		&t.TrophiesWon, &t.MatchesPlayed, &t.MatchesWon, &t.MatchesDrawn, &t.MatchesLost,
		&t.GoalsFor, &t.GoalsAgainst, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
		&t.ClubName, &t.ClubOwnerID,
	)
	if err != nil {
		return nil, err
	}
	t.AssistantCoachIDs = intsFromArray(assistants)
	return &t, nil
}
