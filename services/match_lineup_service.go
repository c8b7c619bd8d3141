package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/u13-football/models"
	"github.com/Dosada05/u13-football/repositories"
	"github.com/google/uuid"
)

// LineupService ведёт составы на матч и их статистику.
// Любое изменение счётчиков состава переносится в карьеру игрока в той же транзакции.
type LineupService interface {
	ListLineups(ctx context.Context, p *Principal, matchID uuid.UUID, teamID *int) ([]models.MatchLineup, error)
	CreateLineup(ctx context.Context, p *Principal, matchID uuid.UUID, input CreateLineupInput) (*models.MatchLineup, error)
	DeleteLineup(ctx context.Context, p *Principal, matchID uuid.UUID, lineupID int) error
	SetLineup(ctx context.Context, p *Principal, matchID uuid.UUID, input SetLineupInput) ([]models.MatchLineup, error)
	UpdateLineupStats(ctx context.Context, p *Principal, matchID uuid.UUID, lineupID int, input LineupStatsInput) (*models.MatchLineup, error)
	BulkPlayerStats(ctx context.Context, p *Principal, matchID uuid.UUID, items []PlayerStatsItem) ([]models.MatchLineup, error)
}

type LineupEntryInput struct {
	PlayerID      int    `json:"player_id" validate:"required,min=1"`
	Position      string `json:"position" validate:"max=10"`
	IsCaptain     bool   `json:"is_captain"`
	MinutesPlayed int    `json:"minutes_played" validate:"min=0,max=120"`
}

type CreateLineupInput struct {
	TeamID    int  `json:"team_id" validate:"required,min=1"`
	IsStarter bool `json:"is_starter"`
	LineupEntryInput
}

type SetLineupInput struct {
	TeamID      int                `json:"team_id" validate:"required,min=1"`
	Starters    []LineupEntryInput `json:"starters" validate:"max=30,dive"`
	Substitutes []LineupEntryInput `json:"substitutes" validate:"max=30,dive"`
}

// LineupStatsInput - частичное обновление; пропущенные поля остаются прежними.
type LineupStatsInput struct {
	GoalsScored   *int     `json:"goals_scored" validate:"omitempty,min=0"`
	Assists       *int     `json:"assists" validate:"omitempty,min=0"`
	YellowCards   *int     `json:"yellow_cards" validate:"omitempty,min=0,max=2"`
	RedCards      *int     `json:"red_cards" validate:"omitempty,min=0,max=1"`
	MinutesPlayed *int     `json:"minutes_played" validate:"omitempty,min=0,max=120"`
	Rating        *float64 `json:"rating" validate:"omitempty,min=0,max=10"`
}

func (in LineupStatsInput) merge(current models.StatLine) models.StatLine {
	return models.StatLine{
		GoalsScored:   intOr(in.GoalsScored, current.GoalsScored),
		Assists:       intOr(in.Assists, current.Assists),
		YellowCards:   intOr(in.YellowCards, current.YellowCards),
		RedCards:      intOr(in.RedCards, current.RedCards),
		MinutesPlayed: intOr(in.MinutesPlayed, current.MinutesPlayed),
	}
}

type PlayerStatsItem struct {
	PlayerID int `json:"player_id" validate:"required,min=1"`
	TeamID   int `json:"team_id" validate:"required,min=1"`
	LineupStatsInput
}

type lineupService struct {
	txManager  repositories.TxManager
	matchRepo  repositories.GlobalMatchRepository
	playerRepo repositories.PlayerRepository
	lineupRepo repositories.LineupRepository
	roster     *rosterManager
	logger     *slog.Logger
}

func NewLineupService(
	txManager repositories.TxManager,
	matchRepo repositories.GlobalMatchRepository,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	lineupRepo repositories.LineupRepository,
	logger *slog.Logger,
) LineupService {
	return &lineupService{
		txManager:  txManager,
		matchRepo:  matchRepo,
		playerRepo: playerRepo,
		lineupRepo: lineupRepo,
		roster:     newRosterManager(teamRepo, playerRepo, lineupRepo),
		logger:     logger,
	}
}

func (s *lineupService) ListLineups(ctx context.Context, p *Principal, matchID uuid.UUID, teamID *int) ([]models.MatchLineup, error) {
	if _, err := visibleGlobalMatch(ctx, s.matchRepo, p, matchID); err != nil {
		return nil, err
	}
	lineups, err := s.lineupRepo.ListByMatch(ctx, nil, matchID, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lineups of match %s: %w", matchID, err)
	}
	return lineups, nil
}

// CreateLineup добавляет одного игрока в состав команды на матч.
func (s *lineupService) CreateLineup(ctx context.Context, p *Principal, matchID uuid.UUID, input CreateLineupInput) (*models.MatchLineup, error) {
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
	player, err := s.playerRepo.GetByID(ctx, input.PlayerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, fieldError("player_id", "player does not exist")
		}
		return nil, fmt.Errorf("failed to get player %d: %w", input.PlayerID, err)
	}
	if player.TeamID != input.TeamID {
		return nil, ErrPlayerNotInTeam
	}

	lineup := &models.MatchLineup{
		MatchID:   m.ID,
		TeamID:    input.TeamID,
		PlayerID:  input.PlayerID,
		Position:  input.Position,
		IsStarter: input.IsStarter,
		IsCaptain: input.IsCaptain,
		StatLine:  models.StatLine{MinutesPlayed: input.MinutesPlayed},
	}
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		return s.roster.addLineup(ctx, exec, lineup)
	})
	if err != nil {
		return nil, mapLineupRepoError(err)
	}
	s.logger.InfoContext(ctx, "lineup entry added",
		slog.String("match_id", matchID.String()),
		slog.Int("team_id", lineup.TeamID),
		slog.Int("player_id", lineup.PlayerID),
	)
	return lineup, nil
}

// DeleteLineup убирает игрока из состава; его статистика за матч вычитается из карьеры.
func (s *lineupService) DeleteLineup(ctx context.Context, p *Principal, matchID uuid.UUID, lineupID int) error {
	m, err := visibleGlobalMatch(ctx, s.matchRepo, p, matchID)
	if err != nil {
		return err
	}
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		current, err := s.lineupRepo.GetForUpdate(ctx, exec, lineupID)
		if err != nil {
			return err
		}
		if current.MatchID != m.ID {
			return ErrLineupNotFound
		}
		if err := authorizeMatchTeam(p, m, current.TeamID); err != nil {
			return err
		}
		return s.roster.removeLineup(ctx, exec, current)
	})
	if err != nil {
		return mapLineupRepoError(err)
	}
	s.logger.InfoContext(ctx, "lineup entry removed", slog.String("match_id", matchID.String()), slog.Int("lineup_id", lineupID))
	return nil
}

// SetLineup заменяет состав команды целиком. Игроки должны принадлежать команде
// и встречаться в составе один раз.
func (s *lineupService) SetLineup(ctx context.Context, p *Principal, matchID uuid.UUID, input SetLineupInput) ([]models.MatchLineup, error) {
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

	teamID := input.TeamID
	members, err := s.playerRepo.List(ctx, repositories.ListPlayersFilter{Scope: repositories.Scope{All: true}, TeamID: &teamID})
	if err != nil {
		return nil, fmt.Errorf("failed to list players of team %d: %w", teamID, err)
	}
	roster := make(map[int]bool, len(members))
	for _, pl := range members {
		roster[pl.ID] = true
	}

	lineups := make([]models.MatchLineup, 0, len(input.Starters)+len(input.Substitutes))
	seen := make(map[int]bool)
	add := func(entries []LineupEntryInput, starter bool) error {
		for _, e := range entries {
			if !roster[e.PlayerID] {
				return ErrPlayerNotInTeam
			}
			if seen[e.PlayerID] {
				return fieldError("player_id", fmt.Sprintf("player %d is listed more than once", e.PlayerID))
			}
			seen[e.PlayerID] = true
			lineups = append(lineups, models.MatchLineup{
				MatchID:   m.ID,
				TeamID:    teamID,
				PlayerID:  e.PlayerID,
				Position:  e.Position,
				IsStarter: starter,
				IsCaptain: e.IsCaptain,
				StatLine:  models.StatLine{MinutesPlayed: e.MinutesPlayed},
			})
		}
		return nil
	}
	if err := add(input.Starters, true); err != nil {
		return nil, err
	}
	if err := add(input.Substitutes, false); err != nil {
		return nil, err
	}

	var saved []models.MatchLineup
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		if err := s.roster.replaceLineup(ctx, exec, m.ID, teamID, lineups); err != nil {
			return err
		}
		saved, err = s.lineupRepo.ListByMatch(ctx, exec, m.ID, &teamID)
		return err
	})
	if err != nil {
		return nil, mapLineupRepoError(err)
	}
	s.logger.InfoContext(ctx, "lineup replaced",
		slog.String("match_id", matchID.String()),
		slog.Int("team_id", teamID),
		slog.Int("players", len(lineups)),
	)
	return saved, nil
}

func (s *lineupService) UpdateLineupStats(ctx context.Context, p *Principal, matchID uuid.UUID, lineupID int, input LineupStatsInput) (*models.MatchLineup, error) {
	m, err := visibleGlobalMatch(ctx, s.matchRepo, p, matchID)
	if err != nil {
		return nil, err
	}
	if err := validateInput(ctx, input); err != nil {
		return nil, err
	}
	current, err := s.lineupRepo.GetByID(ctx, lineupID)
	if err != nil {
		return nil, mapLineupRepoError(err)
	}
	if current.MatchID != m.ID {
		return nil, ErrLineupNotFound
	}
	if err := authorizeMatchTeam(p, m, current.TeamID); err != nil {
		return nil, err
	}

	var lineup *models.MatchLineup
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		locked, err := s.lineupRepo.GetForUpdate(ctx, exec, lineupID)
		if err != nil {
			return err
		}
		lineup, err = s.roster.setLineupStats(ctx, exec, lineupID, input.merge(locked.StatLine), input.Rating)
		return err
	})
	if err != nil {
		return nil, mapLineupRepoError(err)
	}
	return lineup, nil
}

// BulkPlayerStats обновляет статистику нескольких игроков матча в одной транзакции.
// Каждый игрок должен уже стоять в составе своей команды.
func (s *lineupService) BulkPlayerStats(ctx context.Context, p *Principal, matchID uuid.UUID, items []PlayerStatsItem) ([]models.MatchLineup, error) {
	m, err := visibleGlobalMatch(ctx, s.matchRepo, p, matchID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fieldError("players", "at least one item is required")
	}
	for i, item := range items {
		if err := validateInput(ctx, item); err != nil {
			return nil, prefixFieldErrors(err, fmt.Sprintf("players[%d].", i))
		}
		if err := authorizeMatchTeam(p, m, item.TeamID); err != nil {
			return nil, err
		}
	}

	updated := make([]models.MatchLineup, 0, len(items))
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		for _, item := range items {
			current, err := s.lineupRepo.GetByMatchTeamPlayerForUpdate(ctx, exec, m.ID, item.TeamID, item.PlayerID)
			if err != nil {
				return err
			}
			lineup, err := s.roster.setLineupStats(ctx, exec, current.ID, item.merge(current.StatLine), item.Rating)
			if err != nil {
				return err
			}
			updated = append(updated, *lineup)
		}
		return nil
	})
	if err != nil {
		return nil, mapLineupRepoError(err)
	}
	s.logger.InfoContext(ctx, "player stats updated", slog.String("match_id", matchID.String()), slog.Int("players", len(updated)))
	return updated, nil
}

func mapLineupRepoError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrValidationFailed), errors.Is(err, ErrForbiddenOperation):
		return err
	case errors.Is(err, repositories.ErrLineupNotFound):
		return ErrLineupNotFound
	case errors.Is(err, repositories.ErrLineupDuplicate):
		return conflictField("player_id", repositories.ErrLineupDuplicate)
	case errors.Is(err, repositories.ErrLineupPlayer):
		return fieldError("player_id", "player does not exist")
	case errors.Is(err, repositories.ErrGlobalMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrGlobalMatchTeam):
		return fieldError("team_id", "team does not exist")
	}
	return fmt.Errorf("lineup storage error: %w", integrityError(err))
}
