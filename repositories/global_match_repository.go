package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/u13-football/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrGlobalMatchNotFound = errors.New("match not found")
	ErrGlobalMatchTeam     = errors.New("invalid team reference")
	ErrGlobalMatchReferee  = errors.New("invalid referee reference")
)

var globalMatchConstraintErrors = map[string]error{
	"matches_home_team_id_fkey":           ErrGlobalMatchTeam,
	"matches_away_team_id_fkey":           ErrGlobalMatchTeam,
	"matches_referee_id_fkey":             ErrGlobalMatchReferee,
	"matches_assistant_referee_1_id_fkey": ErrGlobalMatchReferee,
	"matches_assistant_referee_2_id_fkey": ErrGlobalMatchReferee,
	"matches_distinct_teams_check":        ErrMatchSameTeams,
}

type ListGlobalMatchesFilter struct {
	Scope        Scope
	Statuses     []models.MatchStatus
	TeamID       *int
	TournamentID *uuid.UUID
	From         *time.Time
	To           *time.Time
	Search       string
	Newest       bool
	Limit        int
	Offset       int
}

type GlobalMatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.GlobalMatch) error
	UpsertMirror(ctx context.Context, exec SQLExecutor, match *models.GlobalMatch) error
	GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.GlobalMatch, error)
	List(ctx context.Context, filter ListGlobalMatchesFilter) ([]models.GlobalMatch, error)
	Update(ctx context.Context, exec SQLExecutor, match *models.GlobalMatch) error
	Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error
}

type postgresGlobalMatchRepository struct {
	db *sql.DB
}

func NewPostgresGlobalMatchRepository(db *sql.DB) GlobalMatchRepository {
	return &postgresGlobalMatchRepository{db: db}
}

func (r *postgresGlobalMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const globalMatchSelect = `
	SELECT m.id, m.tournament_id, m.phase_id, m.group_id, m.home_team_id, m.away_team_id,
		m.scheduled_date, m.actual_start_time, m.actual_end_time,
		m.venue_name, m.venue_address, m.field_number, m.status, m.match_type,
		m.home_score, m.away_score, m.home_score_half_time, m.away_score_half_time,
		m.home_score_extra_time, m.away_score_extra_time, m.home_score_penalties, m.away_score_penalties,
		m.referee_id, m.assistant_referee_1_id, m.assistant_referee_2_id,
		m.weather_conditions, m.attendance, m.notes, m.round_number,
		m.created_by, m.last_updated_by, m.created_at, m.updated_at,
		tr.organizer_id,
		ht.name, ht.club_id, ht.coach_id, hc.owner_id,
		ARRAY(SELECT a.user_id FROM team_assistant_coaches a WHERE a.team_id = ht.id ORDER BY a.user_id),
		at.name, at.club_id, at.coach_id, ac.owner_id,
		ARRAY(SELECT a.user_id FROM team_assistant_coaches a WHERE a.team_id = at.id ORDER BY a.user_id)
	FROM matches m
	LEFT JOIN tournaments tr ON tr.id = m.tournament_id
	JOIN teams ht ON ht.id = m.home_team_id
	JOIN clubs hc ON hc.id = ht.club_id
	JOIN teams at ON at.id = m.away_team_id
	JOIN clubs ac ON ac.id = at.club_id`

var globalMatchScopeColumns = func() scopeColumns {
	teams, clubs := matchSideColumns("m")
	return scopeColumns{organizer: "tr.organizer_id", creator: "m.created_by", teams: teams, clubs: clubs}
}()

func (r *postgresGlobalMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.GlobalMatch) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	query := `
		INSERT INTO matches (
			id, tournament_id, phase_id, group_id, home_team_id, away_team_id, scheduled_date,
			venue_name, venue_address, field_number, status, match_type,
			referee_id, assistant_referee_1_id, assistant_referee_2_id,
			weather_conditions, attendance, notes, round_number, created_by, last_updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING created_at, updated_at`
	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		m.ID, m.TournamentID, m.PhaseID, m.GroupID, m.HomeTeamID, m.AwayTeamID, m.ScheduledDate,
		m.VenueName, m.VenueAddress, m.FieldNumber, m.Status, m.MatchType,
		m.RefereeID, m.AssistantReferee1ID, m.AssistantReferee2ID,
		m.WeatherConditions, m.Attendance, m.Notes, m.RoundNumber, m.CreatedBy, m.LastUpdatedBy,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	return mapPQError(err, globalMatchConstraintErrors)
}

// UpsertMirror записывает только зеркалируемые поля турнирного матча.
// Поля, которые есть только у GlobalMatch (судьи, погода, доп. время), при обновлении не трогаются.
func (r *postgresGlobalMatchRepository) UpsertMirror(ctx context.Context, exec SQLExecutor, m *models.GlobalMatch) error {
	query := `
		INSERT INTO matches (
			id, tournament_id, phase_id, group_id, home_team_id, away_team_id, scheduled_date,
			venue_name, status, match_type, home_score, away_score, round_number
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			tournament_id = EXCLUDED.tournament_id,
			phase_id = EXCLUDED.phase_id,
			group_id = EXCLUDED.group_id,
			home_team_id = EXCLUDED.home_team_id,
			away_team_id = EXCLUDED.away_team_id,
			scheduled_date = EXCLUDED.scheduled_date,
			venue_name = EXCLUDED.venue_name,
			status = EXCLUDED.status,
			match_type = EXCLUDED.match_type,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			round_number = EXCLUDED.round_number,
			updated_at = NOW()`
	_, err := r.getExecutor(exec).ExecContext(ctx, query,
		m.ID, m.TournamentID, m.PhaseID, m.GroupID, m.HomeTeamID, m.AwayTeamID, m.ScheduledDate,
		m.VenueName, m.Status, m.MatchType, m.HomeScore, m.AwayScore, m.RoundNumber,
	)
	return mapPQError(err, globalMatchConstraintErrors)
}

func (r *postgresGlobalMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.GlobalMatch, error) {
	m, err := scanGlobalMatch(r.getExecutor(exec).QueryRowContext(ctx, globalMatchSelect+` WHERE m.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGlobalMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresGlobalMatchRepository) List(ctx context.Context, filter ListGlobalMatchesFilter) ([]models.GlobalMatch, error) {
	p := &placeholders{}
	query := globalMatchSelect + ` WHERE ` + filter.Scope.clause(globalMatchScopeColumns, p)

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		query += " AND m.status = ANY(" + p.add(stringArray(statuses)) + ")"
	}
	if filter.TeamID != nil {
		param := p.add(*filter.TeamID)
		query += fmt.Sprintf(" AND (m.home_team_id = %s OR m.away_team_id = %s)", param, param)
	}
	if filter.TournamentID != nil {
		query += " AND m.tournament_id = " + p.add(*filter.TournamentID)
	}
	if filter.From != nil {
		query += " AND m.scheduled_date >= " + p.add(*filter.From)
	}
	if filter.To != nil {
		query += " AND m.scheduled_date <= " + p.add(*filter.To)
	}
	if filter.Search != "" {
		param := p.add("%" + filter.Search + "%")
		query += fmt.Sprintf(" AND (ht.name ILIKE %s OR at.name ILIKE %s OR m.venue_name ILIKE %s)", param, param, param)
	}

	if filter.Newest {
		query += " ORDER BY m.scheduled_date DESC"
	} else {
		query += " ORDER BY m.scheduled_date ASC"
	}
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

	matches := make([]models.GlobalMatch, 0)
	for rows.Next() {
		m, scanErr := scanGlobalMatch(rows)
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

func (r *postgresGlobalMatchRepository) Update(ctx context.Context, exec SQLExecutor, m *models.GlobalMatch) error {
	query := `
		UPDATE matches SET
			phase_id = $1, group_id = $2, home_team_id = $3, away_team_id = $4, scheduled_date = $5,
			actual_start_time = $6, actual_end_time = $7,
			venue_name = $8, venue_address = $9, field_number = $10, status = $11, match_type = $12,
			home_score = $13, away_score = $14, home_score_half_time = $15, away_score_half_time = $16,
			home_score_extra_time = $17, away_score_extra_time = $18,
			home_score_penalties = $19, away_score_penalties = $20,
			referee_id = $21, assistant_referee_1_id = $22, assistant_referee_2_id = $23,
			weather_conditions = $24, attendance = $25, notes = $26, round_number = $27,
			last_updated_by = $28, updated_at = NOW()
		WHERE id = $29
		RETURNING updated_at`
	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		m.PhaseID, m.GroupID, m.HomeTeamID, m.AwayTeamID, m.ScheduledDate,
		m.ActualStartTime, m.ActualEndTime,
		m.VenueName, m.VenueAddress, m.FieldNumber, m.Status, m.MatchType,
		m.HomeScore, m.AwayScore, m.HomeScoreHalfTime, m.AwayScoreHalfTime,
		m.HomeScoreExtraTime, m.AwayScoreExtraTime,
		m.HomeScorePenalties, m.AwayScorePenalties,
		m.RefereeID, m.AssistantReferee1ID, m.AssistantReferee2ID,
		m.WeatherConditions, m.Attendance, m.Notes, m.RoundNumber,
		m.LastUpdatedBy, m.ID,
	).Scan(&m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrGlobalMatchNotFound
	}
	return mapPQError(err, globalMatchConstraintErrors)
}

func (r *postgresGlobalMatchRepository) Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return mapPQError(err, nil)
	}
	return checkAffectedRows(result, ErrGlobalMatchNotFound)
}

func scanGlobalMatch(row rowScanner) (*models.GlobalMatch, error) {
	var m models.GlobalMatch
	home, away := &models.Team{}, &models.Team{}
	var homeAssistants, awayAssistants pq.Int64Array
	err := row.Scan(
		&m.ID, &m.TournamentID, &m.PhaseID, &m.GroupID, &m.HomeTeamID, &m.AwayTeamID,
		&m.ScheduledDate, &m.ActualStartTime, &m.ActualEndTime,
		&m.VenueName, &m.VenueAddress, &m.FieldNumber, &m.Status, &m.MatchType,
		&m.HomeScore, &m.AwayScore, &m.HomeScoreHalfTime, &m.AwayScoreHalfTime,
		&m.HomeScoreExtraTime, &m.AwayScoreExtraTime, &m.HomeScorePenalties, &m.AwayScorePenalties,
		&m.RefereeID, &m.AssistantReferee1ID, &m.AssistantReferee2ID,
		&m.WeatherConditions, &m.Attendance, &m.Notes, &m.RoundNumber,
		&m.CreatedBy, &m.LastUpdatedBy, &m.CreatedAt, &m.UpdatedAt,
		&m.OrganizerID,
		&home.Name, &home.ClubID, &home.CoachID, &home.ClubOwnerID, &homeAssistants,
		&away.Name, &away.ClubID, &away.CoachID, &away.ClubOwnerID, &awayAssistants,
	)
	if err != nil {
		return nil, err
	}
	home.ID, away.ID = m.HomeTeamID, m.AwayTeamID
	home.AssistantCoachIDs = intsFromArray(homeAssistants)
	away.AssistantCoachIDs = intsFromArray(awayAssistants)
	m.HomeTeam, m.AwayTeam = home, away
	m.WinnerID = m.Winner()
	m.DurationMinutes = m.Duration()
	return &m, nil
}
