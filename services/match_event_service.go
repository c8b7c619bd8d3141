package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/u13-football/models"
	"github.com/Dosada05/u13-football/repositories"
	"github.com/google/uuid"
)

// MatchEventService ведёт события матча. Вклад события в составы и карьеру
// игроков применяется и откатывается в той же транзакции, что и запись события.
type MatchEventService interface {
	ListEvents(ctx context.Context, p *Principal, matchID uuid.UUID) ([]models.MatchEvent, error)
	CreateEvent(ctx context.Context, p *Principal, matchID uuid.UUID, input CreateEventInput) (*models.MatchEvent, error)
	UpdateEvent(ctx context.Context, p *Principal, matchID uuid.UUID, eventID int, input UpdateEventInput) (*models.MatchEvent, error)
	DeleteEvent(ctx context.Context, p *Principal, matchID uuid.UUID, eventID int) error
}

type CreateEventInput struct {
	TeamID              int              `json:"team_id" validate:"required,min=1"`
	PlayerID            int              `json:"player_id" validate:"required,min=1"`
	EventType           models.EventType `json:"event_type" validate:"required,oneof=goal own_goal penalty_goal yellow_card red_card substitution injury timeout"`
	Minute              int              `json:"minute" validate:"required,min=1,max=120"`
	AdditionalTime      int              `json:"additional_time" validate:"min=0,max=30"`
	SubstitutedPlayerID *int             `json:"substituted_player_id" validate:"omitempty,min=1"`
	AssistPlayerID      *int             `json:"assist_player_id" validate:"omitempty,min=1"`
	Description         string           `json:"description" validate:"max=500"`
}

type UpdateEventInput struct {
	TeamID              *int              `json:"team_id" validate:"omitempty,min=1"`
	PlayerID            *int              `json:"player_id" validate:"omitempty,min=1"`
	EventType           *models.EventType `json:"event_type" validate:"omitempty,oneof=goal own_goal penalty_goal yellow_card red_card substitution injury timeout"`
	Minute              *int              `json:"minute" validate:"omitempty,min=1,max=120"`
	AdditionalTime      *int              `json:"additional_time" validate:"omitempty,min=0,max=30"`
	SubstitutedPlayerID *int              `json:"substituted_player_id" validate:"omitempty,min=1"`
	AssistPlayerID      *int              `json:"assist_player_id" validate:"omitempty,min=1"`
	Description         *string           `json:"description" validate:"omitempty,max=500"`
}

type matchEventService struct {
	txManager repositories.TxManager
	matchRepo repositories.GlobalMatchRepository
	eventRepo repositories.EventRepository
	roster    *rosterManager
	logger    *slog.Logger
}

func NewMatchEventService(
	txManager repositories.TxManager,
	matchRepo repositories.GlobalMatchRepository,
	eventRepo repositories.EventRepository,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	lineupRepo repositories.LineupRepository,
	logger *slog.Logger,
) MatchEventService {
	return &matchEventService{
		txManager: txManager,
		matchRepo: matchRepo,
		eventRepo: eventRepo,
		roster:    newRosterManager(teamRepo, playerRepo, lineupRepo),
		logger:    logger,
	}
}

func (s *matchEventService) ListEvents(ctx context.Context, p *Principal, matchID uuid.UUID) ([]models.MatchEvent, error) {
	if _, err := visibleGlobalMatch(ctx, s.matchRepo, p, matchID); err != nil {
		return nil, err
	}
	events, err := s.eventRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events of match %s: %w", matchID, err)
	}
	return events, nil
}

func (s *matchEventService) CreateEvent(ctx context.Context, p *Principal, matchID uuid.UUID, input CreateEventInput) (*models.MatchEvent, error) {
	m, err := visibleGlobalMatch(ctx, s.matchRepo, p, matchID)
	if err != nil {
		return nil, err
	}
	if err := validateInput(ctx, input); err != nil {
		return nil, err
	}
	if err := authorizeMatchTeam(p, m, input.TeamID); err != nil {
		return nil, err
	}

	userID := p.UserID()
	event := &models.MatchEvent{
		MatchID:             m.ID,
		TeamID:              input.TeamID,
		PlayerID:            input.PlayerID,
		EventType:           input.EventType,
		Minute:              input.Minute,
		AdditionalTime:      input.AdditionalTime,
		SubstitutedPlayerID: input.SubstitutedPlayerID,
		AssistPlayerID:      input.AssistPlayerID,
		Description:         strings.TrimSpace(input.Description),
		CreatedBy:           &userID,
	}
	if err := s.checkEventPlayers(ctx, event); err != nil {
		return nil, err
	}
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		if err := s.eventRepo.Create(ctx, exec, event); err != nil {
			return err
		}
		return s.roster.applyEvent(ctx, exec, event, 1)
	})
	if err != nil {
		return nil, mapEventRepoError(err)
	}
	s.logger.InfoContext(ctx, "match event recorded",
		slog.String("match_id", matchID.String()),
		slog.String("event_type", string(event.EventType)),
		slog.Int("player_id", event.PlayerID),
	)
	return event, nil
}

// UpdateEvent откатывает вклад старой версии события и применяет вклад новой.
func (s *matchEventService) UpdateEvent(ctx context.Context, p *Principal, matchID uuid.UUID, eventID int, input UpdateEventInput) (*models.MatchEvent, error) {
	m, err := visibleGlobalMatch(ctx, s.matchRepo, p, matchID)
	if err != nil {
		return nil, err
	}
	if err := validateInput(ctx, input); err != nil {
		return nil, err
	}

	var event *models.MatchEvent
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		current, err := s.lockEvent(ctx, exec, matchID, eventID)
		if err != nil {
			return err
		}
		if err := authorizeMatchTeam(p, m, current.TeamID); err != nil {
			return err
		}
		next := *current
		applyEventUpdate(&next, input)
		if next.TeamID != current.TeamID {
			if err := authorizeMatchTeam(p, m, next.TeamID); err != nil {
				return err
			}
		}
		if err := s.checkEventPlayers(ctx, &next); err != nil {
			return err
		}

		if err := s.roster.applyEvent(ctx, exec, current, -1); err != nil {
			return err
		}
		if err := s.eventRepo.Update(ctx, exec, &next); err != nil {
			return err
		}
		if err := s.roster.applyEvent(ctx, exec, &next, 1); err != nil {
			return err
		}
		event = &next
		return nil
	})
	if err != nil {
		return nil, mapEventRepoError(err)
	}
	return event, nil
}

func (s *matchEventService) DeleteEvent(ctx context.Context, p *Principal, matchID uuid.UUID, eventID int) error {
	m, err := visibleGlobalMatch(ctx, s.matchRepo, p, matchID)
	if err != nil {
		return err
	}
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		current, err := s.lockEvent(ctx, exec, matchID, eventID)
		if err != nil {
			return err
		}
		if err := authorizeMatchTeam(p, m, current.TeamID); err != nil {
			return err
		}
		if err := s.roster.applyEvent(ctx, exec, current, -1); err != nil {
			return err
		}
		return s.eventRepo.Delete(ctx, exec, eventID)
	})
	if err != nil {
		return mapEventRepoError(err)
	}
	s.logger.InfoContext(ctx, "match event deleted", slog.String("match_id", matchID.String()), slog.Int("event_id", eventID))
	return nil
}

func (s *matchEventService) lockEvent(ctx context.Context, exec repositories.SQLExecutor, matchID uuid.UUID, eventID int) (*models.MatchEvent, error) {
	event, err := s.eventRepo.GetForUpdate(ctx, exec, eventID)
	if err != nil {
		return nil, err
	}
	if event.MatchID != matchID {
		return nil, ErrEventNotFound
	}
	return event, nil
}

// checkEventPlayers требует, чтобы все игроки события были в команде события.
func (s *matchEventService) checkEventPlayers(ctx context.Context, e *models.MatchEvent) error {
	check := func(field string, playerID int) error {
		pl, err := s.roster.playerRepo.GetByID(ctx, playerID)
		if err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return fieldError(field, "player does not exist")
			}
			return fmt.Errorf("failed to get player %d: %w", playerID, err)
		}
		if pl.TeamID != e.TeamID {
			return fieldError(field, "player does not belong to this team")
		}
		return nil
	}
	if err := check("player_id", e.PlayerID); err != nil {
		return err
	}
	if e.AssistPlayerID != nil {
		if *e.AssistPlayerID == e.PlayerID {
			return fieldError("assist_player_id", "player cannot assist himself")
		}
		if err := check("assist_player_id", *e.AssistPlayerID); err != nil {
			return err
		}
	}
	if e.SubstitutedPlayerID != nil {
		if err := check("substituted_player_id", *e.SubstitutedPlayerID); err != nil {
			return err
		}
	}
	return nil
}

func applyEventUpdate(e *models.MatchEvent, in UpdateEventInput) {
	e.TeamID = intOr(in.TeamID, e.TeamID)
	e.PlayerID = intOr(in.PlayerID, e.PlayerID)
	if in.EventType != nil {
		e.EventType = *in.EventType
	}
	e.Minute = intOr(in.Minute, e.Minute)
	e.AdditionalTime = intOr(in.AdditionalTime, e.AdditionalTime)
	if in.SubstitutedPlayerID != nil {
		e.SubstitutedPlayerID = in.SubstitutedPlayerID
	}
	if in.AssistPlayerID != nil {
		e.AssistPlayerID = in.AssistPlayerID
	}
	e.Description = trimmedOr(in.Description, e.Description)
}

// matchSide возвращает сторону матча по команде.
func matchSide(m *models.GlobalMatch, teamID int) (*models.Team, error) {
	switch teamID {
	case m.HomeTeamID:
		return m.HomeTeam, nil
	case m.AwayTeamID:
		return m.AwayTeam, nil
	}
	return nil, ErrTeamNotInMatch
}

// authorizeMatchTeam: команда должна играть в матче, а пользователь - управлять ею.
func authorizeMatchTeam(p *Principal, m *models.GlobalMatch, teamID int) error {
	side, err := matchSide(m, teamID)
	if err != nil {
		return err
	}
	return Authorize(p, ActionManageMatchDetail, Target{Team: teamSide(side)})
}

func mapEventRepoError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrValidationFailed), errors.Is(err, ErrForbiddenOperation),
		errors.Is(err, ErrAuthenticationFailed):
		return err
	case errors.Is(err, repositories.ErrEventNotFound):
		return ErrEventNotFound
	case errors.Is(err, repositories.ErrEventPlayer):
		return fieldError("player_id", "player does not exist")
	case errors.Is(err, repositories.ErrGlobalMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrGlobalMatchTeam):
		return fieldError("team_id", "team does not exist")
	}
	return fmt.Errorf("match event storage error: %w", integrityError(err))
}
