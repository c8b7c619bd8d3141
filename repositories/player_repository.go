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
	ErrPlayerNotFound       = errors.New("player not found")
	ErrPlayerJerseyConflict = errors.New("jersey number already taken in this team")
	ErrPlayerTeamInvalid    = errors.New("invalid team reference")
)

var playerConstraintErrors = map[string]error{
	"players_team_jersey_key": ErrPlayerJerseyConflict,
	"players_team_id_fkey":    ErrPlayerTeamInvalid,
}

type ListPlayersFilter struct {
	Scope    Scope
	TeamID   *int
	IsMain   *bool
	IsActive *bool
	Search   string
	Limit    int
	Offset   int
}

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	List(ctx context.Context, filter ListPlayersFilter) ([]models.Player, error)
	ListForParent(ctx context.Context, teamIDs []int, email string) ([]models.Player, error)
	Update(ctx context.Context, exec SQLExecutor, player *models.Player) error
	UpdatePhotoKey(ctx context.Context, playerID int, photoKey *string) error
	Delete(ctx context.Context, id int) error

	CountActiveMain(ctx context.Context, exec SQLExecutor, teamID int, excludeID int) (int, error)
	ListActiveMain(ctx context.Context, exec SQLExecutor, teamID int) ([]models.Player, error)
	ApplyStatDelta(ctx context.Context, exec SQLExecutor, playerID int, delta models.StatLine) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const playerSelect = `
	SELECT
		p.id, p.team_id, p.first_name, p.last_name, p.birth_date, p.jersey_number, p.position,
		p.is_captain, p.is_main_player, p.height, p.weight, p.photo_key,
		p.goals_scored, p.assists, p.yellow_cards, p.red_cards, p.minutes_played,
		p.parent_name, p.parent_phone, p.parent_email, p.parent2_name, p.parent2_phone, p.parent2_email,
		p.is_active, p.created_at, p.updated_at,
		t.club_id, t.name, t.category, t.coach_id,
		ARRAY(SELECT a.user_id FROM team_assistant_coaches a WHERE a.team_id = t.id ORDER BY a.user_id),
		c.name, c.owner_id
	FROM players p
	JOIN teams t ON t.id = p.team_id
	JOIN clubs c ON c.id = t.club_id`

var playerScopeColumns = scopeColumns{
	teams: func(param string) string { return "p.team_id = ANY(" + param + ")" },
	clubs: func(param string) string { return "t.club_id = ANY(" + param + ")" },
}

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Player) error {
	query := `
		INSERT INTO players (
			team_id, first_name, last_name, birth_date, jersey_number, position,
			is_captain, is_main_player, height, weight,
			parent_name, parent_phone, parent_email, parent2_name, parent2_phone, parent2_email, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at, updated_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		p.TeamID, p.FirstName, p.LastName, p.BirthDate, p.JerseyNumber, p.Position,
		p.IsCaptain, p.IsMainPlayer, p.Height, p.Weight,
		p.ParentName, p.ParentPhone, p.ParentEmail, p.Parent2Name, p.Parent2Phone, p.Parent2Email, p.IsActive,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	return mapPQError(err, playerConstraintErrors)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	player, err := scanPlayer(r.db.QueryRowContext(ctx, playerSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return player, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context, filter ListPlayersFilter) ([]models.Player, error) {
	p := &placeholders{}
	query := playerSelect + ` WHERE ` + filter.Scope.clause(playerScopeColumns, p)

	if filter.TeamID != nil {
		query += " AND p.team_id = " + p.add(*filter.TeamID)
	}
	if filter.IsMain != nil {
		query += " AND p.is_main_player = " + p.add(*filter.IsMain)
	}
	if filter.IsActive != nil {
		query += " AND p.is_active = " + p.add(*filter.IsActive)
	}
	if filter.Search != "" {
		param := p.add("%" + filter.Search + "%")
		query += fmt.Sprintf(" AND (p.first_name ILIKE %s OR p.last_name ILIKE %s)", param, param)
	}

	query += " ORDER BY p.team_id ASC, p.jersey_number ASC"

	if filter.Limit > 0 {
		query += " LIMIT " + p.add(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + p.add(filter.Offset)
	}

	return r.queryPlayers(ctx, r.db, query, p.args...)
}

// ListForParent - игроки отслеживаемых команд и дети пользователя по email родителя.
func (r *postgresPlayerRepository) ListForParent(ctx context.Context, teamIDs []int, email string) ([]models.Player, error) {
	query := playerSelect + `
		WHERE p.team_id = ANY($1)
			OR ($2 <> '' AND (lower(p.parent_email) = lower($2) OR lower(p.parent2_email) = lower($2)))
		ORDER BY p.last_name ASC, p.first_name ASC`
	return r.queryPlayers(ctx, r.db, query, int64Array(teamIDs), email)
}

// Update не трогает карьерную статистику: она меняется только через ApplyStatDelta.
func (r *postgresPlayerRepository) Update(ctx context.Context, exec SQLExecutor, p *models.Player) error {
	query := `
		UPDATE players SET
			first_name = $1,
			last_name = $2,
			birth_date = $3,
			jersey_number = $4,
			position = $5,
			is_captain = $6,
			is_main_player = $7,
			height = $8,
			weight = $9,
			parent_name = $10,
			parent_phone = $11,
			parent_email = $12,
			parent2_name = $13,
			parent2_phone = $14,
			parent2_email = $15,
			is_active = $16,
			updated_at = NOW()
		WHERE id = $17
		RETURNING updated_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		p.FirstName, p.LastName, p.BirthDate, p.JerseyNumber, p.Position,
		p.IsCaptain, p.IsMainPlayer, p.Height, p.Weight,
		p.ParentName, p.ParentPhone, p.ParentEmail, p.Parent2Name, p.Parent2Phone, p.Parent2Email, p.IsActive,
		p.ID,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPlayerNotFound
	}
	return mapPQError(err, playerConstraintErrors)
}

func (r *postgresPlayerRepository) UpdatePhotoKey(ctx context.Context, playerID int, photoKey *string) error {
	query := `UPDATE players SET photo_key = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, photoKey, playerID)
	if err != nil {
		return fmt.Errorf("failed to update player photo key: %w", err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return mapPQError(err, nil)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

// CountActiveMain считает активных основных игроков команды, не учитывая excludeID.
func (r *postgresPlayerRepository) CountActiveMain(ctx context.Context, exec SQLExecutor, teamID int, excludeID int) (int, error) {
	query := `
		SELECT COUNT(*) FROM players
		WHERE team_id = $1 AND is_main_player = TRUE AND is_active = TRUE AND id <> $2`
	var count int
	if err := r.getExecutor(exec).QueryRowContext(ctx, query, teamID, excludeID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count main players of team %d: %w", teamID, err)
	}
	return count, nil
}

func (r *postgresPlayerRepository) ListActiveMain(ctx context.Context, exec SQLExecutor, teamID int) ([]models.Player, error) {
	query := playerSelect + `
		WHERE p.team_id = $1 AND p.is_main_player = TRUE AND p.is_active = TRUE
		ORDER BY p.jersey_number ASC`
	return r.queryPlayers(ctx, r.getExecutor(exec), query, teamID)
}

// ApplyStatDelta прибавляет дельту к карьерным счётчикам с отсечкой на нуле.
// Отсутствие игрока не считается ошибкой.
func (r *postgresPlayerRepository) ApplyStatDelta(ctx context.Context, exec SQLExecutor, playerID int, delta models.StatLine) error {
	if delta.IsZero() {
		return nil
	}
	query := `
		UPDATE players SET
			goals_scored = GREATEST(0, goals_scored + $1),
			assists = GREATEST(0, assists + $2),
			yellow_cards = GREATEST(0, yellow_cards + $3),
			red_cards = GREATEST(0, red_cards + $4),
			minutes_played = GREATEST(0, minutes_played + $5),
			updated_at = NOW()
		WHERE id = $6`
	_, err := r.getExecutor(exec).ExecContext(ctx, query,
		delta.GoalsScored, delta.Assists, delta.YellowCards, delta.RedCards, delta.MinutesPlayed, playerID,
	)
	if err != nil {
		return fmt.Errorf("failed to apply stat delta to player %d: %w", playerID, err)
	}
	return nil
}

func (r *postgresPlayerRepository) queryPlayers(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]models.Player, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		player, scanErr := scanPlayer(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		players = append(players, *player)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

func scanPlayer(row rowScanner) (*models.Player, error) {
	var p models.Player
	team := &models.Team{}
	var assistants pq.Int64Array
	err := row.Scan(
		&p.ID, &p.TeamID, &p.FirstName, &p.LastName, &p.BirthDate, &p.JerseyNumber, &p.Position,
		&p.IsCaptain, &p.IsMainPlayer, &p.Height, &p.Weight, &p.PhotoKey,
		&p.GoalsScored, &p.Assists, &p.YellowCards, &p.RedCards, &p.MinutesPlayed,
		&p.ParentName, &p.ParentPhone, &p.ParentEmail, &p.Parent2Name, &p.Parent2Phone, &p.Parent2Email,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		&team.ClubID, &team.Name, &team.Category, &team.CoachID, &assistants,
		&team.ClubName, &team.ClubOwnerID,
	)
	if err != nil {
		return nil, err
	}
	team.ID = p.TeamID
	team.AssistantCoachIDs = intsFromArray(assistants)
	p.Team = team
	return &p, nil
}
