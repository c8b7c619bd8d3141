package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/u13-football/models"
	"github.com/google/uuid"
)

var (
	ErrEventNotFound = errors.New("match event not found")
	ErrEventPlayer   = errors.New("invalid player reference")
)

var eventConstraintErrors = map[string]error{
	"match_events_player_id_fkey":             ErrEventPlayer,
	"match_events_substituted_player_id_fkey": ErrEventPlayer,
	"match_events_assist_player_id_fkey":      ErrEventPlayer,
	"match_events_team_id_fkey":               ErrGlobalMatchTeam,
	"match_events_match_id_fkey":              ErrGlobalMatchNotFound,
}

type EventRepository interface {
	Create(ctx context.Context, exec SQLExecutor, event *models.MatchEvent) error
	GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.MatchEvent, error)
	ListByMatch(ctx context.Context, matchID uuid.UUID) ([]models.MatchEvent, error)
	Update(ctx context.Context, exec SQLExecutor, event *models.MatchEvent) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

func (r *postgresEventRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const eventSelect = `
	SELECT id, match_id, team_id, player_id, event_type, minute, additional_time,
		substituted_player_id, assist_player_id, description, created_by, created_at
	FROM match_events`

func (r *postgresEventRepository) Create(ctx context.Context, exec SQLExecutor, e *models.MatchEvent) error {
	query := `
		INSERT INTO match_events (
			match_id, team_id, player_id, event_type, minute, additional_time,
			substituted_player_id, assist_player_id, description, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`
	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		e.MatchID, e.TeamID, e.PlayerID, e.EventType, e.Minute, e.AdditionalTime,
		e.SubstitutedPlayerID, e.AssistPlayerID, e.Description, e.CreatedBy,
	).Scan(&e.ID, &e.CreatedAt)
	return mapPQError(err, eventConstraintErrors)
}

func (r *postgresEventRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.MatchEvent, error) {
	e, err := scanEvent(r.getExecutor(exec).QueryRowContext(ctx, eventSelect+` WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *postgresEventRepository) ListByMatch(ctx context.Context, matchID uuid.UUID) ([]models.MatchEvent, error) {
	rows, err := r.db.QueryContext(ctx, eventSelect+` WHERE match_id = $1 ORDER BY minute, additional_time, id`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]models.MatchEvent, 0)
	for rows.Next() {
		e, scanErr := scanEvent(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (r *postgresEventRepository) Update(ctx context.Context, exec SQLExecutor, e *models.MatchEvent) error {
	query := `
		UPDATE match_events SET
			team_id = $1, player_id = $2, event_type = $3, minute = $4, additional_time = $5,
			substituted_player_id = $6, assist_player_id = $7, description = $8
		WHERE id = $9`
	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		e.TeamID, e.PlayerID, e.EventType, e.Minute, e.AdditionalTime,
		e.SubstitutedPlayerID, e.AssistPlayerID, e.Description, e.ID,
	)
	if err != nil {
		return mapPQError(err, eventConstraintErrors)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM match_events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func scanEvent(row rowScanner) (*models.MatchEvent, error) {
	var e models.MatchEvent
	err := row.Scan(&e.ID, &e.MatchID, &e.TeamID, &e.PlayerID, &e.EventType, &e.Minute, &e.AdditionalTime,
		&e.SubstitutedPlayerID, &e.AssistPlayerID, &e.Description, &e.CreatedBy, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
