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
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentSlugConflict = errors.New("tournament slug conflict")
	ErrTournamentInvalidOrg   = errors.New("invalid organizer reference")
)

var tournamentConstraintErrors = map[string]error{
	"tournaments_slug_key":          ErrTournamentSlugConflict,
	"tournaments_organizer_id_fkey": ErrTournamentInvalidOrg,
}

type ListTournamentsFilter struct {
	Scope          Scope
	Status         *models.TournamentStatus
	Type           *models.TournamentType
	Search         string
	OpenForEntries bool
	Limit          int
	Offset         int
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, tournament *models.Tournament) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id uuid.UUID, status models.TournamentStatus) error
	UpdateLogoKey(ctx context.Context, id uuid.UUID, logoKey *string) error
	Delete(ctx context.Context, id uuid.UUID) error

	RegistrationCounts(ctx context.Context, id uuid.UUID) (groupTeams int, confirmed int, err error)
	ParticipantKeys(ctx context.Context, id uuid.UUID) (teamIDs []int, clubIDs []int, err error)
	ListParticipantTeams(ctx context.Context, id uuid.UUID) ([]models.Team, error)
	Stats(ctx context.Context, id uuid.UUID) (*models.TournamentStats, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `
	t.id, t.name, t.slug, t.description, t.tournament_type, t.format, t.start_date, t.end_date,
	t.location, t.venue_address, t.status, t.max_teams, t.number_of_groups, t.teams_qualify_per_group,
	t.organizer_id, t.logo_key, t.rules, t.prize_description, t.match_duration, t.half_time_duration,
	t.points_per_win, t.points_per_draw, t.points_per_loss, t.is_public, t.registration_open,
	t.created_at, t.updated_at,
	(SELECT COUNT(DISTINCT tg.team_id) FROM team_groups tg JOIN tournament_groups g ON g.id = tg.group_id WHERE g.tournament_id = t.id),
	(SELECT COUNT(*) FROM team_tournament_registrations rr WHERE rr.tournament_id = t.id AND rr.status = 'confirmed')`

// Участие команды в турнире: заявка в любом статусе или место в группе.
var tournamentScopeColumns = scopeColumns{
	organizer: "t.organizer_id",
	teams: func(param string) string {
		return "(EXISTS (SELECT 1 FROM team_tournament_registrations sr WHERE sr.tournament_id = t.id AND sr.team_id = ANY(" + param + "))" +
			" OR EXISTS (SELECT 1 FROM team_groups stg JOIN tournament_groups sg ON sg.id = stg.group_id WHERE sg.tournament_id = t.id AND stg.team_id = ANY(" + param + ")))"
	},
	clubs: func(param string) string {
		return "(EXISTS (SELECT 1 FROM team_tournament_registrations sr JOIN teams st ON st.id = sr.team_id WHERE sr.tournament_id = t.id AND st.club_id = ANY(" + param + "))" +
			" OR EXISTS (SELECT 1 FROM team_groups stg JOIN tournament_groups sg ON sg.id = stg.group_id JOIN teams st ON st.id = stg.team_id WHERE sg.tournament_id = t.id AND st.club_id = ANY(" + param + ")))"
	},
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	query := `
		INSERT INTO tournaments (
			id, name, slug, description, tournament_type, format, start_date, end_date,
			location, venue_address, status, max_teams, number_of_groups, teams_qualify_per_group,
			organizer_id, rules, prize_description, match_duration, half_time_duration,
			points_per_win, points_per_draw, points_per_loss, is_public, registration_open
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		t.ID, t.Name, t.Slug, t.Description, t.TournamentType, t.Format, t.StartDate, t.EndDate,
		t.Location, t.VenueAddress, t.Status, t.MaxTeams, t.NumberOfGroups, t.TeamsQualifyPerGroup,
		t.OrganizerID, t.Rules, t.PrizeDescription, t.MatchDuration, t.HalfTimeDuration,
		t.PointsPerWin, t.PointsPerDraw, t.PointsPerLoss, t.IsPublic, t.RegistrationOpen,
	).Scan(&t.CreatedAt, &t.UpdatedAt)

	return mapPQError(err, tournamentConstraintErrors)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments t WHERE t.id = $1`
	t, err := scanTournament(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	p := &placeholders{}
	query := `SELECT ` + tournamentColumns + ` FROM tournaments t WHERE ` + filter.Scope.clause(tournamentScopeColumns, p)

	if filter.Status != nil {
		query += " AND t.status = " + p.add(*filter.Status)
	}
	if filter.Type != nil {
		query += " AND t.tournament_type = " + p.add(*filter.Type)
	}
	if filter.Search != "" {
		param := p.add("%" + filter.Search + "%")
		query += fmt.Sprintf(" AND (t.name ILIKE %s OR t.location ILIKE %s)", param, param)
	}
	if filter.OpenForEntries {
		query += " AND t.is_public = TRUE AND t.registration_open = TRUE AND t.status = " + p.add(models.TournamentUpcoming)
	}

	query += " ORDER BY t.created_at DESC"

	if filter.Limit > 0 {
		query += " LIMIT " + p.add(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + p.add(filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, p.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		t, scanErr := scanTournament(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	query := `
		UPDATE tournaments SET
			name = $1,
			slug = $2,
			description = $3,
			tournament_type = $4,
			format = $5,
			start_date = $6,
			end_date = $7,
			location = $8,
			venue_address = $9,
			max_teams = $10,
			number_of_groups = $11,
			teams_qualify_per_group = $12,
			rules = $13,
			prize_description = $14,
			match_duration = $15,
			half_time_duration = $16,
			points_per_win = $17,
			points_per_draw = $18,
			points_per_loss = $19,
			is_public = $20,
			registration_open = $21,
			updated_at = NOW()
		WHERE id = $22
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Name, t.Slug, t.Description, t.TournamentType, t.Format, t.StartDate, t.EndDate,
		t.Location, t.VenueAddress, t.MaxTeams, t.NumberOfGroups, t.TeamsQualifyPerGroup,
		t.Rules, t.PrizeDescription, t.MatchDuration, t.HalfTimeDuration,
		t.PointsPerWin, t.PointsPerDraw, t.PointsPerLoss, t.IsPublic, t.RegistrationOpen,
		t.ID,
	).Scan(&t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTournamentNotFound
	}
	return mapPQError(err, tournamentConstraintErrors)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id uuid.UUID, status models.TournamentStatus) error {
	query := `UPDATE tournaments SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, status, id)
	if err != nil {
		return mapPQError(err, tournamentConstraintErrors)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateLogoKey(ctx context.Context, id uuid.UUID, logoKey *string) error {
	query := `UPDATE tournaments SET logo_key = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, logoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament logo key: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return mapPQError(err, nil)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) RegistrationCounts(ctx context.Context, id uuid.UUID) (int, int, error) {
	query := `
		SELECT
			(SELECT COUNT(DISTINCT tg.team_id) FROM team_groups tg JOIN tournament_groups g ON g.id = tg.group_id WHERE g.tournament_id = $1),
			(SELECT COUNT(*) FROM team_tournament_registrations WHERE tournament_id = $1 AND status = 'confirmed')`
	var groupTeams, confirmed int
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&groupTeams, &confirmed); err != nil {
		return 0, 0, fmt.Errorf("failed to count registrations for tournament %s: %w", id, err)
	}
	return groupTeams, confirmed, nil
}

// ParticipantKeys возвращает команды (и их клубы), участвующие в турнире через заявку или группу.
func (r *postgresTournamentRepository) ParticipantKeys(ctx context.Context, id uuid.UUID) ([]int, []int, error) {
	query := `
		SELECT DISTINCT tm.id, tm.club_id FROM teams tm
		WHERE tm.id IN (
			SELECT team_id FROM team_tournament_registrations WHERE tournament_id = $1
			UNION
			SELECT tg.team_id FROM team_groups tg JOIN tournament_groups g ON g.id = tg.group_id WHERE g.tournament_id = $1
		)`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	teamIDs := make([]int, 0)
	clubIDs := make([]int, 0)
	for rows.Next() {
		var teamID, clubID int
		if err := rows.Scan(&teamID, &clubID); err != nil {
			return nil, nil, err
		}
		teamIDs = append(teamIDs, teamID)
		clubIDs = append(clubIDs, clubID)
	}
	return teamIDs, clubIDs, rows.Err()
}

// ListParticipantTeams - команды из групп турнира и с подтверждённой заявкой.
func (r *postgresTournamentRepository) ListParticipantTeams(ctx context.Context, id uuid.UUID) ([]models.Team, error) {
	query := teamSelect + `
		WHERE t.id IN (
			SELECT team_id FROM team_tournament_registrations WHERE tournament_id = $1 AND status = 'confirmed'
			UNION
			SELECT tg.team_id FROM team_groups tg JOIN tournament_groups g ON g.id = tg.group_id WHERE g.tournament_id = $1
		)
		ORDER BY t.name ASC`
	rows, err := r.db.QueryContext(ctx, query, id)
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
	return teams, rows.Err()
}

func (r *postgresTournamentRepository) Stats(ctx context.Context, id uuid.UUID) (*models.TournamentStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'finished'),
			COUNT(*) FILTER (WHERE status = 'scheduled'),
			COALESCE(SUM(home_score + away_score) FILTER (WHERE status = 'finished'), 0),
			(SELECT COUNT(*) FROM tournament_groups WHERE tournament_id = $1)
		FROM tournament_matches
		WHERE tournament_id = $1`
	stats := &models.TournamentStats{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&stats.TotalMatches, &stats.FinishedMatches, &stats.UpcomingMatches, &stats.TotalGoals, &stats.GroupsCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats for tournament %s: %w", id, err)
	}
	if stats.FinishedMatches > 0 {
		stats.AverageGoals = float64(stats.TotalGoals) / float64(stats.FinishedMatches)
	}
	return stats, nil
}

func scanTournament(row rowScanner) (*models.Tournament, error) {
	var t models.Tournament
	var groupTeams, confirmed int
	err := row.Scan(
		&t.ID, &t.Name, &t.Slug, &t.Description, &t.TournamentType, &t.Format, &t.StartDate, &t.EndDate,
		&t.Location, &t.VenueAddress, &t.Status, &t.MaxTeams, &t.NumberOfGroups, &t.TeamsQualifyPerGroup,
		&t.OrganizerID, &t.LogoKey, &t.Rules, &t.PrizeDescription, &t.MatchDuration, &t.HalfTimeDuration,
		&t.PointsPerWin, &t.PointsPerDraw, &t.PointsPerLoss, &t.IsPublic, &t.RegistrationOpen,
		&t.CreatedAt, &t.UpdatedAt,
		&groupTeams, &confirmed,
	)
	if err != nil {
		return nil, err
	}
	t.ApplyRegistrationCounts(groupTeams, confirmed)
	return &t, nil
}
