package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/u13-football/models"
	"github.com/Dosada05/u13-football/repositories"
	"github.com/google/uuid"
)

// rosterManager объединяет операции над составами и карьерной статистикой.
// Все методы принимают exec и рассчитаны на вызов внутри транзакции.
type rosterManager struct {
	teamRepo   repositories.TeamRepository
	playerRepo repositories.PlayerRepository
	lineupRepo repositories.LineupRepository
}

func newRosterManager(
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	lineupRepo repositories.LineupRepository,
) *rosterManager {
	return &rosterManager{teamRepo: teamRepo, playerRepo: playerRepo, lineupRepo: lineupRepo}
}

// ensureMainSlot блокирует команду и проверяет лимит основных игроков.
// excludeID - игрок, который сохраняется сейчас (0 для нового).
func (r *rosterManager) ensureMainSlot(ctx context.Context, exec repositories.SQLExecutor, teamID, excludeID int) error {
	if err := r.teamRepo.LockForUpdate(ctx, exec, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to lock team %d: %w", teamID, err)
	}
	count, err := r.playerRepo.CountActiveMain(ctx, exec, teamID, excludeID)
	if err != nil {
		return err
	}
	if count >= models.MaxMainPlayers {
		return ErrMainPlayerLimit
	}
	return nil
}

// populateStarters создаёт стартовые составы из активных основных игроков команд.
func (r *rosterManager) populateStarters(ctx context.Context, exec repositories.SQLExecutor, matchID uuid.UUID, teamIDs ...int) error {
	lineups := make([]models.MatchLineup, 0, len(teamIDs)*models.MaxMainPlayers)
	for _, teamID := range teamIDs {
		players, err := r.playerRepo.ListActiveMain(ctx, exec, teamID)
		if err != nil {
			return fmt.Errorf("failed to list main players of team %d: %w", teamID, err)
		}
		for _, p := range players {
			lineups = append(lineups, models.MatchLineup{
				MatchID:   matchID,
				TeamID:    teamID,
				PlayerID:  p.ID,
				Position:  string(p.Position),
				IsStarter: true,
				IsCaptain: p.IsCaptain,
			})
		}
	}
	return r.lineupRepo.CreateBatch(ctx, exec, lineups)
}

// setLineupStats записывает новую статистику строки состава и переносит
// разницу с прежними значениями в карьеру игрока. Старые значения читаются под блокировкой.
func (r *rosterManager) setLineupStats(ctx context.Context, exec repositories.SQLExecutor, lineupID int, stats models.StatLine, rating *float64) (*models.MatchLineup, error) {
	lineup, err := r.lineupRepo.GetForUpdate(ctx, exec, lineupID)
	if err != nil {
		if errors.Is(err, repositories.ErrLineupNotFound) {
			return nil, ErrLineupNotFound
		}
		return nil, err
	}
	if rating != nil {
		lineup.Rating = rating
	}
	if err := r.writeLineupStats(ctx, exec, lineup, stats.FloorZero()); err != nil {
		return nil, err
	}
	return lineup, nil
}

// addToPlayerLineup прибавляет вклад к строке игрока в составе команды teamID.
// Если такой строки нет, ничего не делает.
func (r *rosterManager) addToPlayerLineup(ctx context.Context, exec repositories.SQLExecutor, matchID uuid.UUID, teamID, playerID int, contribution models.StatLine) error {
	if contribution.IsZero() {
		return nil
	}
	lineup, err := r.lineupRepo.GetByMatchTeamPlayerForUpdate(ctx, exec, matchID, teamID, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrLineupNotFound) {
			return nil
		}
		return err
	}
	return r.writeLineupStats(ctx, exec, lineup, lineup.StatLine.Add(contribution).FloorZero())
}

// applyEvent переносит вклад события (и ассиста) в составы матча; sign = -1 откатывает его.
func (r *rosterManager) applyEvent(ctx context.Context, exec repositories.SQLExecutor, event *models.MatchEvent, sign int) error {
	contribution := event.Contribution()
	if sign < 0 {
		contribution = contribution.Negate()
	}
	if err := r.addToPlayerLineup(ctx, exec, event.MatchID, event.TeamID, event.PlayerID, contribution); err != nil {
		return err
	}
	if assistID, assist, ok := event.AssistContribution(); ok {
		if sign < 0 {
			assist = assist.Negate()
		}
		if err := r.addToPlayerLineup(ctx, exec, event.MatchID, event.TeamID, assistID, assist); err != nil {
			return err
		}
	}
	return nil
}

// replaceLineup заменяет состав команды в матче. Статистика удаляемых строк
// вычитается из карьеры, статистика новых прибавляется.
func (r *rosterManager) replaceLineup(ctx context.Context, exec repositories.SQLExecutor, matchID uuid.UUID, teamID int, lineups []models.MatchLineup) error {
	teamFilter := teamID
	current, err := r.lineupRepo.ListByMatch(ctx, exec, matchID, &teamFilter)
	if err != nil {
		return err
	}
	for _, l := range current {
		if err := r.playerRepo.ApplyStatDelta(ctx, exec, l.PlayerID, l.StatLine.Negate()); err != nil {
			return err
		}
	}
	if err := r.lineupRepo.DeleteByMatchTeam(ctx, exec, matchID, teamID); err != nil {
		return fmt.Errorf("failed to clear lineup of team %d: %w", teamID, err)
	}
	if err := r.lineupRepo.CreateBatch(ctx, exec, lineups); err != nil {
		return err
	}
	for _, l := range lineups {
		if err := r.playerRepo.ApplyStatDelta(ctx, exec, l.PlayerID, l.StatLine); err != nil {
			return err
		}
	}
	return nil
}

// addLineup добавляет одну строку состава и переносит её статистику в карьеру.
func (r *rosterManager) addLineup(ctx context.Context, exec repositories.SQLExecutor, lineup *models.MatchLineup) error {
	batch := []models.MatchLineup{*lineup}
	if err := r.lineupRepo.CreateBatch(ctx, exec, batch); err != nil {
		return err
	}
	*lineup = batch[0]
	return r.playerRepo.ApplyStatDelta(ctx, exec, lineup.PlayerID, lineup.StatLine)
}

// removeLineup удаляет строку состава и вычитает её статистику из карьеры.
func (r *rosterManager) removeLineup(ctx context.Context, exec repositories.SQLExecutor, lineup *models.MatchLineup) error {
	if err := r.lineupRepo.Delete(ctx, exec, lineup.ID); err != nil {
		return err
	}
	return r.playerRepo.ApplyStatDelta(ctx, exec, lineup.PlayerID, lineup.StatLine.Negate())
}

func (r *rosterManager) writeLineupStats(ctx context.Context, exec repositories.SQLExecutor, lineup *models.MatchLineup, next models.StatLine) error {
	delta := next.Sub(lineup.StatLine)
	lineup.StatLine = next
	if err := r.lineupRepo.Update(ctx, exec, lineup); err != nil {
		if errors.Is(err, repositories.ErrLineupNotFound) {
			return nil
		}
		return fmt.Errorf("failed to update lineup %d: %w", lineup.ID, err)
	}
	return r.playerRepo.ApplyStatDelta(ctx, exec, lineup.PlayerID, delta)
}
