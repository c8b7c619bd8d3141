package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/u13-football/models"
	"github.com/Dosada05/u13-football/repositories"
	"github.com/google/uuid"
)

// TournamentMatchService ведёт матчи турнира. Каждое изменение синхронизируется
// в общий матч в той же транзакции.
type TournamentMatchService interface {
	CreateMatch(ctx context.Context, p *Principal, tournamentID uuid.UUID, input CreateTournamentMatchInput) (*models.TournamentMatch, error)
	CreateGroupMatch(ctx context.Context, p *Principal, groupID int, input CreateTournamentMatchInput) (*models.TournamentMatch, error)
	GetMatch(ctx context.Context, p *Principal, id uuid.UUID) (*models.TournamentMatch, error)
	ListMatches(ctx context.Context, p *Principal, filter TournamentMatchListFilter, page Page) ([]models.TournamentMatch, error)
	UpdateMatch(ctx context.Context, p *Principal, id uuid.UUID, input UpdateTournamentMatchInput) (*models.TournamentMatch, error)
	UpdateScore(ctx context.Context, p *Principal, id uuid.UUID, input UpdateScoreInput) (*models.TournamentMatch, error)
	StartMatch(ctx context.Context, p *Principal, id uuid.UUID) (*models.TournamentMatch, error)
	FinishMatch(ctx context.Context, p *Principal, id uuid.UUID) (*models.TournamentMatch, error)
	DeleteMatch(ctx context.Context, p *Principal, id uuid.UUID) error
}

type CreateTournamentMatchInput struct {
	HomeTeamID  int       `json:"home_team_id" validate:"required,min=1"`
	AwayTeamID  int       `json:"away_team_id" validate:"required,min=1"`
	GroupID     *int      `json:"group_id" validate:"omitempty,min=1"`
	PhaseID     *int      `json:"phase_id" validate:"omitempty,min=1"`
	MatchDate   time.Time `json:"match_date" validate:"required"`
	Venue       string    `json:"venue" validate:"max=200"`
	MatchNumber *int      `json:"match_number" validate:"omitempty,min=1"`
	RoundNumber *int      `json:"round_number" validate:"omitempty,min=1"`
}

type UpdateTournamentMatchInput struct {
	MatchDate   *time.Time `json:"match_date"`
	Venue       *string    `json:"venue" validate:"omitempty,max=200"`
	MatchNumber *int       `json:"match_number" validate:"omitempty,min=1"`
	RoundNumber *int       `json:"round_number" validate:"omitempty,min=1"`
	PhaseID     *int       `json:"phase_id" validate:"omitempty,min=1"`
}

type UpdateScoreInput struct {
	HomeScore int                 `json:"home_score" validate:"min=0"`
	AwayScore int                 `json:"away_score" validate:"min=0"`
	Status    *models.MatchStatus `json:"status" validate:"omitempty,oneof=scheduled live finished postponed cancelled"`
}

type TournamentMatchListFilter struct {
	TournamentID *uuid.UUID
	GroupID      *int
	PhaseID      *int
	Status       *models.MatchStatus
}

type tournamentMatchService struct {
	txManager      repositories.TxManager
	tournamentRepo repositories.TournamentRepository
	groupRepo      repositories.GroupRepository
	phaseRepo      repositories.PhaseRepository
	matchRepo      repositories.TournamentMatchRepository
	sync           MatchSynchronizer
	roster         *rosterManager
	logger         *slog.Logger
}

func NewTournamentMatchService(
	txManager repositories.TxManager,
	tournamentRepo repositories.TournamentRepository,
	groupRepo repositories.GroupRepository,
	phaseRepo repositories.PhaseRepository,
	matchRepo repositories.TournamentMatchRepository,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	lineupRepo repositories.LineupRepository,
	sync MatchSynchronizer,
	logger *slog.Logger,
) TournamentMatchService {
	return &tournamentMatchService{
		txManager:      txManager,
		tournamentRepo: tournamentRepo,
		groupRepo:      groupRepo,
		phaseRepo:      phaseRepo,
		matchRepo:      matchRepo,
		sync:           sync,
		roster:         newRosterManager(teamRepo, playerRepo, lineupRepo),
		logger:         logger,
	}
}

func (s *tournamentMatchService) CreateMatch(ctx context.Context, p *Principal, tournamentID uuid.UUID, input CreateTournamentMatchInput) (*models.TournamentMatch, error) {
	t, err := visibleTournament(ctx, s.tournamentRepo, p, tournamentID)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, p, t, input)
}

func (s *tournamentMatchService) CreateGroupMatch(ctx context.Context, p *Principal, groupID int, input CreateTournamentMatchInput) (*models.TournamentMatch, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get group %d: %w", groupID, err)
	}
	t, err := visibleTournament(ctx, s.tournamentRepo, p, group.TournamentID)
	if err != nil {
		if errors.Is(err, ErrTournamentNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	input.GroupID = &group.ID
	return s.create(ctx, p, t, input)
}

// create: вставка матча, зеркалирование и автосоставы - одна транзакция.
func (s *tournamentMatchService) create(ctx context.Context, p *Principal, t *models.Tournament, input CreateTournamentMatchInput) (*models.TournamentMatch, error) {
	if err := Authorize(p, ActionManageTournament, Target{OrganizerID: &t.OrganizerID}); err != nil {
		return nil, err
	}
	if err := validateInput(ctx, input); err != nil {
		return nil, err
	}
	if input.HomeTeamID == input.AwayTeamID {
		return nil, ErrSameTeams
	}

	m := &models.TournamentMatch{
		TournamentID: t.ID,
		GroupID:      input.GroupID,
		PhaseID:      input.PhaseID,
		HomeTeamID:   input.HomeTeamID,
		AwayTeamID:   input.AwayTeamID,
		MatchDate:    input.MatchDate,
		Venue:        strings.TrimSpace(input.Venue),
		Status:       models.MatchScheduled,
		MatchNumber:  input.MatchNumber,
		RoundNumber:  intOr(input.RoundNumber, 1),
	}
	if err := s.checkGroup(ctx, t.ID, m.GroupID); err != nil {
		return nil, err
	}
	if err := s.resolvePhase(ctx, t.ID, m); err != nil {
		return nil, err
	}

	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		if err := s.ensureGroupMembers(ctx, exec, m); err != nil {
			return err
		}
		if err := s.matchRepo.Create(ctx, exec, m); err != nil {
			return err
		}
		if err := s.sync.Sync(ctx, exec, m); err != nil {
			return err
		}
		return s.roster.populateStarters(ctx, exec, m.ID, m.HomeTeamID, m.AwayTeamID)
	})
	if err != nil {
		return nil, mapTournamentMatchRepoError(err)
	}

	s.logger.InfoContext(ctx, "tournament match created",
		slog.String("match_id", m.ID.String()),
		slog.String("tournament_id", t.ID.String()),
	)
	return s.reload(ctx, m.ID)
}

func (s *tournamentMatchService) GetMatch(ctx context.Context, p *Principal, id uuid.UUID) (*models.TournamentMatch, error) {
	return s.visibleMatch(ctx, p, id)
}

func (s *tournamentMatchService) ListMatches(ctx context.Context, p *Principal, filter TournamentMatchListFilter, page Page) ([]models.TournamentMatch, error) {
	page = page.normalized()
	matches, err := s.matchRepo.List(ctx, repositories.ListTournamentMatchesFilter{
		Scope:        ResolveScope(p, FamilyTournamentMatch),
		TournamentID: filter.TournamentID,
		GroupID:      filter.GroupID,
		PhaseID:      filter.PhaseID,
		Status:       filter.Status,
		Limit:        page.Limit,
		Offset:       page.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tournament matches: %w", err)
	}
	return matches, nil
}

func (s *tournamentMatchService) UpdateMatch(ctx context.Context, p *Principal, id uuid.UUID, input UpdateTournamentMatchInput) (*models.TournamentMatch, error) {
	m, err := s.visibleMatch(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(p, ActionManageTournament, Target{OrganizerID: &m.OrganizerID}); err != nil {
		return nil, err
	}
	if err := validateInput(ctx, input); err != nil {
		return nil, err
	}
	if input.MatchDate != nil {
		m.MatchDate = *input.MatchDate
	}
	m.Venue = trimmedOr(input.Venue, m.Venue)
	if input.MatchNumber != nil {
		m.MatchNumber = input.MatchNumber
	}
	m.RoundNumber = intOr(input.RoundNumber, m.RoundNumber)
	if input.PhaseID != nil {
		m.PhaseID = input.PhaseID
		if err := s.resolvePhase(ctx, m.TournamentID, m); err != nil {
			return nil, err
		}
	}
	return s.save(ctx, m)
}

func (s *tournamentMatchService) UpdateScore(ctx context.Context, p *Principal, id uuid.UUID, input UpdateScoreInput) (*models.TournamentMatch, error) {
	m, err := s.scorableMatch(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := validateInput(ctx, input); err != nil {
		return nil, err
	}
	m.HomeScore = input.HomeScore
	m.AwayScore = input.AwayScore
	if input.Status != nil {
		if err := changeTournamentMatchStatus(m, *input.Status); err != nil {
			return nil, err
		}
	}
	return s.save(ctx, m)
}

func (s *tournamentMatchService) StartMatch(ctx context.Context, p *Principal, id uuid.UUID) (*models.TournamentMatch, error) {
	return s.transition(ctx, p, id, TransitionStart)
}

func (s *tournamentMatchService) FinishMatch(ctx context.Context, p *Principal, id uuid.UUID) (*models.TournamentMatch, error) {
	return s.transition(ctx, p, id, TransitionFinish)
}

func (s *tournamentMatchService) transition(ctx context.Context, p *Principal, id uuid.UUID, tr Transition) (*models.TournamentMatch, error) {
	m, err := s.scorableMatch(ctx, p, id)
	if err != nil {
		return nil, err
	}
	next, err := nextTournamentMatchStatus(m.Status, tr)
	if err != nil {
		return nil, err
	}
	m.Status = next
	return s.save(ctx, m)
}

func (s *tournamentMatchService) DeleteMatch(ctx context.Context, p *Principal, id uuid.UUID) error {
	m, err := s.visibleMatch(ctx, p, id)
	if err != nil {
		return err
	}
	if err := Authorize(p, ActionManageTournament, Target{OrganizerID: &m.OrganizerID}); err != nil {
		return err
	}
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		if err := s.matchRepo.Delete(ctx, exec, id); err != nil {
			return err
		}
		return s.sync.Remove(ctx, exec, id)
	})
	if err != nil {
		return mapTournamentMatchRepoError(err)
	}
	s.logger.InfoContext(ctx, "tournament match deleted", slog.String("match_id", id.String()))
	return nil
}

// save записывает матч и его зеркало атомарно.
func (s *tournamentMatchService) save(ctx context.Context, m *models.TournamentMatch) (*models.TournamentMatch, error) {
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		if err := s.matchRepo.Update(ctx, exec, m); err != nil {
			return err
		}
		return s.sync.Sync(ctx, exec, m)
	})
	if err != nil {
		return nil, mapTournamentMatchRepoError(err)
	}
	m.WinnerID = m.Winner()
	return m, nil
}

func (s *tournamentMatchService) reload(ctx context.Context, id uuid.UUID) (*models.TournamentMatch, error) {
	m, err := s.matchRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapTournamentMatchRepoError(err)
	}
	return m, nil
}

func (s *tournamentMatchService) visibleMatch(ctx context.Context, p *Principal, id uuid.UUID) (*models.TournamentMatch, error) {
	m, err := s.matchRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get tournament match %s: %w", id, err)
	}
	keys := sideKeys(m.HomeTeam, m.AwayTeam)
	keys.OrganizerID = &m.OrganizerID
	if !visible(p, FamilyTournamentMatch, keys) {
		return nil, ErrMatchNotFound
	}
	return m, nil
}

// scorableMatch: счёт и статус меняют организатор и штаб участвующих команд.
func (s *tournamentMatchService) scorableMatch(ctx context.Context, p *Principal, id uuid.UUID) (*models.TournamentMatch, error) {
	m, err := s.visibleMatch(ctx, p, id)
	if err != nil {
		return nil, err
	}
	err = Authorize(p, ActionScoreTournament, Target{
		Home:        teamSide(m.HomeTeam),
		Away:        teamSide(m.AwayTeam),
		OrganizerID: &m.OrganizerID,
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *tournamentMatchService) checkGroup(ctx context.Context, tournamentID uuid.UUID, groupID *int) error {
	if groupID == nil {
		return nil
	}
	group, err := s.groupRepo.GetByID(ctx, *groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return fieldError("group_id", "group does not exist")
		}
		return fmt.Errorf("failed to get group %d: %w", *groupID, err)
	}
	if group.TournamentID != tournamentID {
		return ErrGroupOutsideTourney
	}
	return nil
}

// ensureGroupMembers: матч группы возможен только между её участниками.
func (s *tournamentMatchService) ensureGroupMembers(ctx context.Context, exec repositories.SQLExecutor, m *models.TournamentMatch) error {
	if m.GroupID == nil {
		return nil
	}
	for _, teamID := range []int{m.HomeTeamID, m.AwayTeamID} {
		ok, err := s.groupRepo.IsMember(ctx, exec, *m.GroupID, teamID)
		if err != nil {
			return fmt.Errorf("failed to check group membership of team %d: %w", teamID, err)
		}
		if !ok {
			return ErrTeamNotInGroup
		}
	}
	return nil
}

// resolvePhase проверяет фазу и запоминает её тип для зеркала.
func (s *tournamentMatchService) resolvePhase(ctx context.Context, tournamentID uuid.UUID, m *models.TournamentMatch) error {
	if m.PhaseID == nil {
		m.PhaseType = nil
		return nil
	}
	phase, err := s.phaseRepo.GetByID(ctx, *m.PhaseID)
	if err != nil {
		if errors.Is(err, repositories.ErrPhaseNotFound) {
			return fieldError("phase_id", "phase does not exist")
		}
		return fmt.Errorf("failed to get phase %d: %w", *m.PhaseID, err)
	}
	if phase.TournamentID != tournamentID {
		return ErrPhaseOutsideTourney
	}
	m.PhaseType = &phase.PhaseType
	return nil
}

func mapTournamentMatchRepoError(err error) error {
	switch {
	case errors.Is(err, ErrTeamNotInGroup):
		return err
	case errors.Is(err, repositories.ErrTournamentMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrMatchSameTeams):
		return ErrSameTeams
	case errors.Is(err, repositories.ErrTournamentMatchTeam), errors.Is(err, repositories.ErrGlobalMatchTeam):
		return fieldError("home_team_id", "team does not exist")
	case errors.Is(err, repositories.ErrTournamentMatchGroup):
		return fieldError("group_id", "group does not exist")
	case errors.Is(err, repositories.ErrTournamentMatchPhase):
		return fieldError("phase_id", "phase does not exist")
	case errors.Is(err, repositories.ErrGroupTournamentGone):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrLineupDuplicate):
		return conflictField("player_id", err)
	}
	return fmt.Errorf("match storage error: %w", integrityError(err))
}
