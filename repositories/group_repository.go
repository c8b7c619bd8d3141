package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/u13-football/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrGroupNotFound       = errors.New("tournament group not found")
	ErrGroupNameConflict   = errors.New("group with this name already exists in the tournament")
	ErrTeamAlreadyInGroup  = errors.New("team is already in this group")
	ErrTeamNotInGroup      = errors.New("team is not a member of this group")
	ErrGroupTeamInvalid    = errors.New("invalid team reference")
	ErrGroupTournamentGone = errors.New("invalid tournament reference")
)

var groupConstraintErrors = map[string]error{
	"tournament_groups_tournament_name_key": ErrGroupNameConflict,
	"tournament_groups_tournament_id_fkey":  ErrGroupTournamentGone,
	"team_groups_team_group_key":            ErrTeamAlreadyInGroup,
	"team_groups_team_id_fkey":              ErrGroupTeamInvalid,
	"team_groups_group_id_fkey":             ErrGroupNotFound,
}

type GroupRepository interface {
	Create(ctx context.Context, group *models.TournamentGroup) error
	GetByID(ctx context.Context, id int) (*models.TournamentGroup, error)
	ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]models.TournamentGroup, error)
	Update(ctx context.Context, group *models.TournamentGroup) error
	Delete(ctx context.Context, id int) error

	AddTeam(ctx context.Context, exec SQLExecutor, member *models.TeamGroup) error
	RemoveTeam(ctx context.Context, groupID, teamID int) error
	ListMembers(ctx context.Context, groupID int) ([]models.TeamGroup, error)
	IsMember(ctx context.Context, exec SQLExecutor, groupID, teamID int) (bool, error)
}

type postgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

func (r *postgresGroupRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const groupSelect = `
	SELECT g.id, g.tournament_id, g.name, g.description, g.sort_order,
		(SELECT COUNT(*) FROM team_groups tg WHERE tg.group_id = g.id),
		g.created_at, g.updated_at
	FROM tournament_groups g`

func (r *postgresGroupRepository) Create(ctx context.Context, g *models.TournamentGroup) error {
	query := `
		INSERT INTO tournament_groups (tournament_id, name, description, sort_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, g.TournamentID, g.Name, g.Description, g.Order).
		Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
	return mapPQError(err, groupConstraintErrors)
}

func (r *postgresGroupRepository) GetByID(ctx context.Context, id int) (*models.TournamentGroup, error) {
	g, err := scanGroup(r.db.QueryRowContext(ctx, groupSelect+` WHERE g.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *postgresGroupRepository) ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]models.TournamentGroup, error) {
	rows, err := r.db.QueryContext(ctx, groupSelect+` WHERE g.tournament_id = $1 ORDER BY g.sort_order, g.name`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]models.TournamentGroup, 0)
	for rows.Next() {
		g, scanErr := scanGroup(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		groups = append(groups, *g)
	}
	return groups, rows.Err()
}

func (r *postgresGroupRepository) Update(ctx context.Context, g *models.TournamentGroup) error {
	query := `
		UPDATE tournament_groups SET name = $1, description = $2, sort_order = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, g.Name, g.Description, g.Order, g.ID).Scan(&g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrGroupNotFound
	}
	return mapPQError(err, groupConstraintErrors)
}

func (r *postgresGroupRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournament_groups WHERE id = $1`, id)
	if err != nil {
		return mapPQError(err, nil)
	}
	return checkAffectedRows(result, ErrGroupNotFound)
}

func (r *postgresGroupRepository) AddTeam(ctx context.Context, exec SQLExecutor, m *models.TeamGroup) error {
	query := `
		INSERT INTO team_groups (team_id, group_id, position)
		VALUES ($1, $2, $3)
		RETURNING id, is_qualified, joined_at`
	err := r.getExecutor(exec).QueryRowContext(ctx, query, m.TeamID, m.GroupID, m.Position).
		Scan(&m.ID, &m.IsQualified, &m.JoinedAt)
	return mapPQError(err, groupConstraintErrors)
}

func (r *postgresGroupRepository) RemoveTeam(ctx context.Context, groupID, teamID int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM team_groups WHERE group_id = $1 AND team_id = $2`, groupID, teamID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotInGroup)
}

func (r *postgresGroupRepository) ListMembers(ctx context.Context, groupID int) ([]models.TeamGroup, error) {
	query := `
		SELECT tg.id, tg.team_id, tg.group_id, tg.position, tg.is_qualified, tg.qualified_position, tg.joined_at,
			t.club_id, t.name, t.category, t.coach_id,
			ARRAY(SELECT a.user_id FROM team_assistant_coaches a WHERE a.team_id = t.id ORDER BY a.user_id),
			c.name, c.owner_id
		FROM team_groups tg
		JOIN teams t ON t.id = tg.team_id
		JOIN clubs c ON c.id = t.club_id
		WHERE tg.group_id = $1
		ORDER BY tg.position NULLS LAST, t.name`
	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]models.TeamGroup, 0)
	for rows.Next() {
		var m models.TeamGroup
		team := &models.Team{}
		var assistants pq.Int64Array
		if err := rows.Scan(
			&m.ID, &m.TeamID, &m.GroupID, &m.Position, &m.IsQualified, &m.QualifiedPosition, &m.JoinedAt,
			&team.ClubID, &team.Name, &team.Category, &team.CoachID, &assistants,
			&team.ClubName, &team.ClubOwnerID,
		); err != nil {
			return nil, err
		}
		team.ID = m.TeamID
		team.AssistantCoachIDs = intsFromArray(assistants)
		m.Team = team
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *postgresGroupRepository) IsMember(ctx context.Context, exec SQLExecutor, groupID, teamID int) (bool, error) {
	var exists bool
	err := r.getExecutor(exec).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM team_groups WHERE group_id = $1 AND team_id = $2)`, groupID, teamID,
	).Scan(&exists)
	return exists, err
}

func scanGroup(row rowScanner) (*models.TournamentGroup, error) {
	var g models.TournamentGroup
	err := row.Scan(&g.ID, &g.TournamentID, &g.Name, &g.Description, &g.Order, &g.TeamsCount, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}
