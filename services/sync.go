package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/u13-football/models"
	"github.com/Dosada05/u13-football/repositories"
	"github.com/google/uuid"
)

// MatchTypeForPhase сопоставляет фазу турнира типу общего матча.
func MatchTypeForPhase(phase *models.PhaseType) models.MatchType {
	if phase == nil {
		return models.MatchTypeGroupStage
	}
	switch *phase {
	case models.PhaseRound16:
		return models.MatchTypeKnockout
	case models.PhaseQuarterFinal:
		return models.MatchTypeQuarterFinal
	case models.PhaseSemiFinal:
		return models.MatchTypeSemiFinal
	case models.PhaseFinal:
		return models.MatchTypeFinal
	case models.PhaseThirdPlace:
		return models.MatchTypeThirdPlace
	}
	return models.MatchTypeGroupStage
}

// MirrorOf строит зеркалируемую часть общего матча по турнирному.
func MirrorOf(m *models.TournamentMatch) *models.GlobalMatch {
	tournamentID := m.TournamentID
	return &models.GlobalMatch{
		ID:            m.ID,
		TournamentID:  &tournamentID,
		PhaseID:       m.PhaseID,
		GroupID:       m.GroupID,
		HomeTeamID:    m.HomeTeamID,
		AwayTeamID:    m.AwayTeamID,
		ScheduledDate: m.MatchDate,
		VenueName:     m.Venue,
		Status:        m.Status,
		MatchType:     MatchTypeForPhase(m.PhaseType),
		HomeScore:     m.HomeScore,
		AwayScore:     m.AwayScore,
		RoundNumber:   max(m.RoundNumber, 1),
	}
}

// MatchSynchronizer переносит турнирные матчи в общие. Направление одно:
// турнирный матч является источником истины.
type MatchSynchronizer interface {
	Sync(ctx context.Context, exec repositories.SQLExecutor, match *models.TournamentMatch) error
	Remove(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID) error
}

type matchSynchronizer struct {
	globalRepo repositories.GlobalMatchRepository
}

func NewMatchSynchronizer(globalRepo repositories.GlobalMatchRepository) MatchSynchronizer {
	return &matchSynchronizer{globalRepo: globalRepo}
}

func (s *matchSynchronizer) Sync(ctx context.Context, exec repositories.SQLExecutor, match *models.TournamentMatch) error {
	if err := s.globalRepo.UpsertMirror(ctx, exec, MirrorOf(match)); err != nil {
		return fmt.Errorf("failed to sync match %s: %w", match.ID, err)
	}
	return nil
}

// Remove удаляет общий матч; если его уже нет, это не ошибка.
func (s *matchSynchronizer) Remove(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID) error {
	err := s.globalRepo.Delete(ctx, exec, id)
	if err != nil && !errors.Is(err, repositories.ErrGlobalMatchNotFound) {
		return fmt.Errorf("failed to remove synced match %s: %w", id, err)
	}
	return nil
}
