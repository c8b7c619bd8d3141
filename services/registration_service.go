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

type RegistrationService interface {
	Register(ctx context.Context, p *Principal, tournamentID uuid.UUID, input RegisterTeamInput) (*models.TeamRegistration, error)
	ListRegistrations(ctx context.Context, p *Principal, tournamentID uuid.UUID, status *models.RegistrationStatus) ([]models.TeamRegistration, error)
	ReviewRegistration(ctx context.Context, p *Principal, id int, input ReviewRegistrationInput) (*models.TeamRegistration, error)
	WithdrawRegistration(ctx context.Context, p *Principal, id int) (*models.TeamRegistration, error)
}

type RegisterTeamInput struct {
	TeamID              int    `json:"team_id" validate:"required,min=1"`
	SpecialRequirements string `json:"special_requirements" validate:"max=2000"`
}

type ReviewRegistrationInput struct {
	Status     models.RegistrationStatus `json:"status" validate:"required,oneof=confirmed rejected"`
	GroupID    *int                      `json:"group_id" validate:"omitempty,min=1"`
	SeedNumber *int                      `json:"seed_number" validate:"omitempty,min=1"`
}

type registrationService struct {
	txManager      repositories.TxManager
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	groupRepo      repositories.GroupRepository
	regRepo        repositories.RegistrationRepository
	logger         *slog.Logger
	now            func() time.Time
}

func NewRegistrationService(
	txManager repositories.TxManager,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	groupRepo repositories.GroupRepository,
	regRepo repositories.RegistrationRepository,
	logger *slog.Logger,
) RegistrationService {
	return &registrationService{
		txManager:      txManager,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		groupRepo:      groupRepo,
		regRepo:        regRepo,
		logger:         logger,
		now:            time.Now,
	}
}

// Register подаёт заявку команды. Турнир ищется без учёта области видимости,
// но должен быть публичным: до заявки клуб турнир не видит.
func (s *registrationService) Register(ctx context.Context, p *Principal, tournamentID uuid.UUID, input RegisterTeamInput) (*models.TeamRegistration, error) {
	if err := validateInput(ctx, input); err != nil {
		return nil, err
	}
	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", tournamentID, err)
	}
	if !t.IsPublic {
		return nil, ErrTournamentNotFound
	}

	team, err := s.teamRepo.GetByID(ctx, input.TeamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", input.TeamID, err)
	}
	if err := Authorize(p, ActionRegisterTeam, Target{Team: team}); err != nil {
		return nil, err
	}
	if !t.CanRegister {
		return nil, ErrRegistrationClosed
	}

	reg := &models.TeamRegistration{
		TeamID:              team.ID,
		TournamentID:        t.ID,
		Status:              models.RegistrationPending,
		SpecialRequirements: strings.TrimSpace(input.SpecialRequirements),
		Team:                team,
	}
	if err := s.regRepo.Create(ctx, reg); err != nil {
		return nil, mapRegistrationRepoError(err)
	}
	s.logger.InfoContext(ctx, "team registered for tournament",
		slog.Int("team_id", team.ID),
		slog.String("tournament_id", t.ID.String()),
	)
	return reg, nil
}

// ListRegistrations: организатор видит все заявки, владелец клуба - заявки своих команд.
func (s *registrationService) ListRegistrations(ctx context.Context, p *Principal, tournamentID uuid.UUID, status *models.RegistrationStatus) ([]models.TeamRegistration, error) {
	t, err := visibleTournament(ctx, s.tournamentRepo, p, tournamentID)
	if err != nil {
		return nil, err
	}
	regs, err := s.regRepo.ListByTournament(ctx, tournamentID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations of tournament %s: %w", tournamentID, err)
	}
	if t.OrganizerID == p.UserID() || p.Role() == models.RoleViewer {
		return regs, nil
	}
	own := make([]models.TeamRegistration, 0, len(regs))
	for _, reg := range regs {
		if reg.Team != nil && p.OwnsClub(reg.Team.ClubID) {
			own = append(own, reg)
		}
	}
	return own, nil
}

// ReviewRegistration подтверждает или отклоняет заявку. При подтверждении
// с группой команда добавляется в группу в той же транзакции.
func (s *registrationService) ReviewRegistration(ctx context.Context, p *Principal, id int, input ReviewRegistrationInput) (*models.TeamRegistration, error) {
	if err := validateInput(ctx, input); err != nil {
		return nil, err
	}
	reg, err := s.getRegistration(ctx, id)
	if err != nil {
		return nil, err
	}
	t, err := visibleTournament(ctx, s.tournamentRepo, p, reg.TournamentID)
	if err != nil {
		if errors.Is(err, ErrTournamentNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	if err := Authorize(p, ActionManageTournament, Target{OrganizerID: &t.OrganizerID}); err != nil {
		return nil, err
	}
	if reg.Status != models.RegistrationPending {
		return nil, ErrInvalidRegistrationTo
	}

	var group *models.TournamentGroup
	if input.Status == models.RegistrationConfirmed && input.GroupID != nil {
		group, err = s.groupRepo.GetByID(ctx, *input.GroupID)
		if err != nil {
			if errors.Is(err, repositories.ErrGroupNotFound) {
				return nil, fieldError("group_id", "group does not exist")
			}
			return nil, fmt.Errorf("failed to get group %d: %w", *input.GroupID, err)
		}
		if group.TournamentID != t.ID {
			return nil, ErrGroupOutsideTourney
		}
	}

	now := s.now()
	reg.Status = input.Status
	if input.SeedNumber != nil {
		reg.SeedNumber = input.SeedNumber
	}
	if input.Status == models.RegistrationConfirmed {
		reg.ConfirmationDate = &now
	}
	if group != nil {
		reg.GroupID = &group.ID
	}

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		if err := s.regRepo.Update(ctx, exec, reg); err != nil {
			return err
		}
		if group == nil {
			return nil
		}
		member := &models.TeamGroup{TeamID: reg.TeamID, GroupID: group.ID, Position: reg.SeedNumber}
		if err := s.groupRepo.AddTeam(ctx, exec, member); err != nil && !errors.Is(err, repositories.ErrTeamAlreadyInGroup) {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, mapRegistrationRepoError(err)
	}
	s.logger.InfoContext(ctx, "registration reviewed", slog.Int("registration_id", id), slog.String("status", string(reg.Status)))
	return reg, nil
}

// WithdrawRegistration - владелец клуба отзывает ожидающую или подтверждённую заявку.
func (s *registrationService) WithdrawRegistration(ctx context.Context, p *Principal, id int) (*models.TeamRegistration, error) {
	reg, err := s.getRegistration(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(p, ActionRegisterTeam, Target{Team: teamSide(reg.Team)}); err != nil {
		return nil, err
	}
	if reg.Status != models.RegistrationPending && reg.Status != models.RegistrationConfirmed {
		return nil, ErrInvalidRegistrationTo
	}
	reg.Status = models.RegistrationWithdrawn
	if err := s.regRepo.Update(ctx, nil, reg); err != nil {
		return nil, mapRegistrationRepoError(err)
	}
	return reg, nil
}

func (s *registrationService) getRegistration(ctx context.Context, id int) (*models.TeamRegistration, error) {
	reg, err := s.regRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to get registration %d: %w", id, err)
	}
	return reg, nil
}

func mapRegistrationRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrRegistrationNotFound):
		return ErrRegistrationNotFound
	case errors.Is(err, repositories.ErrAlreadyRegistered):
		return conflictField("team_id", err)
	case errors.Is(err, repositories.ErrRegistrationTeam):
		return fieldError("team_id", "team does not exist")
	case errors.Is(err, repositories.ErrGroupNotFound):
		return fieldError("group_id", "group does not exist")
	case errors.Is(err, repositories.ErrGroupTournamentGone):
		return ErrTournamentNotFound
	}
	return fmt.Errorf("registration storage error: %w", integrityError(err))
}
