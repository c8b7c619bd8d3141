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
	ErrTournamentMatchNotFound = errors.New("tournament match not found")
	ErrTournamentMatchTeam     = errors.New("invalid team reference")
	ErrTournamentMatchGroup    = errors.New("invalid group reference")
	ErrTournamentMatchPhase    = errors.New("invalid phase reference")
	ErrMatchSameTeams          = errors.New("home and away teams must differ")
)

var tournamentMatchConstraintErrors = map[string]error{
	"tournament_matches_home_team_id_fkey":    ErrTournamentMatchTeam,
	"tournament_matches_away_team_id_fkey":    ErrTournamentMatchTeam,
	"tournament_matches_group_id_fkey":        ErrTournamentMatchGroup,
	"tournament_matches_phase_id_fkey":        ErrTournamentMatchPhase,
	"tournament_matches_tournament_id_fkey":   ErrGroupTournamentGone,
	"tournament_matches_distinct_teams_check": ErrMatchSameTeams,
}

type ListTournamentMatchesFilter struct {
	Scope        Scope
	TournamentID *uuid.UUID
	GroupID      *int
	PhaseID      *int
	Status       *models.MatchStatus
	Limit        int
	Offset       int
}

type TournamentMatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.TournamentMatch) error
	GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.TournamentMatch, error)
	List(ctx context.Context, filter ListTournamentMatchesFilter) ([]models.TournamentMatch, error)
	Update(ctx context.Context, exec SQLExecutor, match *models.TournamentMatch) error
	Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error
	ListFinishedByGroup(ctx context.Context, groupID int) ([]models.TournamentMatch, error)
}

type postgresTournamentMatchRepository struct {
	db *sql.DB
}

func NewPostgresTournamentMatchRepository(db *sql.DB) TournamentMatchRepository {
	return &postgresTournamentMatchRepository{db: db}
}

func (r *postgresTournamentMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentMatchSelect = `
	SELECT m.id, m.tournament_id, m.group_id, m.phase_id, m.home_team_id, m.away_team_id,
		m.match_date, m.venue, m.home_score, m.away_score, m.status, m.match_number, m.round_number,
		m.created_at, m.updated_at,
		tr.organizer_id, ph.phase_type,
		ht.name, ht.club_id, ht.coach_id, hc.owner_id,
		ARRAY(SELECT a.user_id FROM team_assistant_coaches a WHERE a.team_id = ht.id ORDER BY a.user_id),
		at.name, at.club_id, at.coach_id, ac.owner_id,
		ARRAY(SELECT a.user_id FROM team_assistant_coaches a WHERE a.team_id = at.id ORDER BY a.user_id)
	FROM tournament_matches m
	JOIN tournaments tr ON tr.id = m.tournament_id
	LEFT JOIN tournament_phases ph ON ph.id = m.phase_id
	JOIN teams ht ON ht.id = m.home_team_id
	JOIN clubs hc ON hc.id = ht.club_id
	JOIN teams at ON at.id = m.away_team_id
	JOIN clubs ac ON ac.id = at.club_id`

var tournamentMatchScopeColumns = func() scopeColumns {
	teams, clubs := matchSideColumns("m")
	return scopeColumns{organizer: "tr.organizer_id", teams: teams, clubs: clubs}
}()

func (r *postgresTournamentMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.TournamentMatch) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	query := `
		INSERT INTO tournament_matches (
			id, tournament_id, group_id, phase_id, home_team_id, away_team_id,
			match_date, venue, home_score, away_score, status, match_number, round_number
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at`
	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		m.ID, m.TournamentID, m.GroupID, m.PhaseID, m.HomeTeamID, m.AwayTeamID,
		m.MatchDate, m.Venue, m.HomeScore, m.AwayScore, m.Status, m.MatchNumber, m.RoundNumber,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	return mapPQError(err, tournamentMatchConstraintErrors)
}

func (r *postgresTournamentMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.TournamentMatch, error) {
	m, err := scanTournamentMatch(r.getExecutor(exec).QueryRowContext(ctx, tournamentMatchSelect+` WHERE m.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresTournamentMatchRepository) List(ctx context.Context, filter ListTournamentMatchesFilter) ([]models.TournamentMatch, error) {
	p := &placeholders{}
	query := tournamentMatchSelect + ` WHERE ` + filter.Scope.clause(tournamentMatchScopeColumns, p)

	if filter.TournamentID != nil {
		query += " AND m.tournament_id = " + p.add(*filter.TournamentID)
	}
	if filter.GroupID != nil {
		query += " AND m.group_id = " + p.add(*filter.GroupID)
	}
	if filter.PhaseID != nil {
		query += " AND m.phase_id = " + p.add(*filter.PhaseID)
	}
	if filter.Status != nil {
		query += " AND m.status = " + p.add(*filter.Status)
	}
	query += " ORDER BY m.match_date ASC, m.match_number ASC NULLS LAST"
	if filter.Limit > 0 {
		query += " LIMIT " + p.add(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + p.add(filter.Offset)
	}

	return r.queryMatches(ctx, query, p.args...)
}

func (r *postgresTournamentMatchRepository) Update(ctx context.Context, exec SQLExecutor, m *models.TournamentMatch) error {
	query := `
		UPDATE tournament_matches SET
			group_id = $1, phase_id = $2, home_team_id = $3, away_team_id = $4, match_date = $5,
			venue = $6, home_score = $7, away_score = $8, status = $9, match_number = $10,
			round_number = $11, updated_at = NOW()
		WHERE id = $12
		RETURNING updated_at`
	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		m.GroupID, m.PhaseID, m.HomeTeamID, m.AwayTeamID, m.MatchDate,
		m.Venue, m.HomeScore, m.AwayScore, m.Status, m.MatchNumber,
		m.RoundNumber, m.ID,
	).Scan(&m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTournamentMatchNotFound
	}
	return mapPQError(err, tournamentMatchConstraintErrors)
}

func (r *postgresTournamentMatchRepository) Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM tournament_matches WHERE id = $1`, id)
	if err != nil {
		return mapPQError(err, nil)
	}
	return checkAffectedRows(result, ErrTournamentMatchNotFound)
}

func (r *postgresTournamentMatchRepository) ListFinishedByGroup(ctx context.Context, groupID int) ([]models.TournamentMatch, error) {
	query := tournamentMatchSelect + ` WHERE m.group_id = $1 AND m.status = 'finished' ORDER BY m.match_date ASC`
	return r.queryMatches(ctx, query, groupID)
}

func (r *postgresTournamentMatchRepository) queryMatches(ctx context.Context, query string, args ...interface{}) ([]models.TournamentMatch, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]models.TournamentMatch, 0)
	for rows.Next() {
		m, scanErr := scanTournamentMatch(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, *m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func scanTournamentMatch(row rowScanner) (*models.TournamentMatch, error) {
	var m models.TournamentMatch
	home, away := &models.Team{}, &models.Team{}
	var phaseType sql.NullString
	var homeAssistants, awayAssistants pq.Int64Array
	err := row.Scan(
		&m.ID, &m.TournamentID, &m.GroupID, &m.PhaseID, &m.HomeTeamID, &m.AwayTeamID,
		&m.MatchDate, &m.Venue, &m.HomeScore, &m.AwayScore, &m.Status, &m.MatchNumber, &m.RoundNumber,
		&m.CreatedAt, &m.UpdatedAt,
		&m.OrganizerID, &phaseType,
		&home.Name, &home.ClubID, &home.CoachID, &home.ClubOwnerID, &homeAssistants,
		&away.Name, &away.ClubID, &away.CoachID, &away.ClubOwnerID, &awayAssistants,
	)
	if err != nil {
		return nil, err
	}
	if phaseType.Valid {
		pt := models.PhaseType(phaseType.String)
		m.PhaseType = &pt
	}
	home.ID, away.ID = m.HomeTeamID, m.AwayTeamID
	home.AssistantCoachIDs = intsFromArray(homeAssistants)
	away.AssistantCoachIDs = intsFromArray(awayAssistants)
	m.HomeTeam, m.AwayTeam = home, away
	m.WinnerID = m.Winner()
	return &m, nil
}
