package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/u13-football/models"
	"github.com/Dosada05/u13-football/repositories"
	"github.com/google/uuid"
)

// GroupService управляет группами и фазами турнира. Изменения доступны только организатору.
type GroupService interface {
	CreateGroup(ctx context.Context, p *Principal, tournamentID uuid.UUID, input GroupInput) (*models.TournamentGroup, error)
	GetGroup(ctx context.Context, p *Principal, id int) (*models.TournamentGroup, error)
	ListGroups(ctx context.Context, p *Principal, tournamentID uuid.UUID) ([]models.TournamentGroup, error)
	UpdateGroup(ctx context.Context, p *Principal, id int, input UpdateGroupInput) (*models.TournamentGroup, error)
	DeleteGroup(ctx context.Context, p *Principal, id int) error

	AddTeam(ctx context.Context, p *Principal, groupID int, input AddGroupTeamInput) (*models.TeamGroup, error)
	RemoveTeam(ctx context.Context, p *Principal, groupID, teamID int) error
	ListMembers(ctx context.Context, p *Principal, groupID int) ([]models.TeamGroup, error)
	GetStandings(ctx context.Context, p *Principal, groupID int) (*GroupStandings, error)

	CreatePhase(ctx context.Context, p *Principal, tournamentID uuid.UUID, input PhaseInput) (*models.TournamentPhase, error)
	ListPhases(ctx context.Context, p *Principal, tournamentID uuid.UUID) ([]models.TournamentPhase, error)
	UpdatePhase(ctx context.Context, p *Principal, id int, input UpdatePhaseInput) (*models.TournamentPhase, error)
	DeletePhase(ctx context.Context, p *Principal, id int) error
}

type GroupInput struct {
	Name        string `json:"name" validate:"required,max=50"`
	Description string `json:"description"`
	Order       *int   `json:"order" validate:"omitempty,min=1"`
}

type UpdateGroupInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=50"`
	Description *string `json:"description"`
	Order       *int    `json:"order" validate:"omitempty,min=1"`
}

type AddGroupTeamInput struct {
	TeamID   int  `json:"team_id" validate:"required,min=1"`
	Position *int `json:"position" validate:"omitempty,min=1"`
}

type PhaseInput struct {
	Name      string           `json:"name" validate:"required,max=100"`
	PhaseType models.PhaseType `json:"phase_type" validate:"required,oneof=group_stage round_16 quarter_final semi_final final third_place"`
	Order     *int             `json:"order" validate:"omitempty,min=1"`
	StartDate *time.Time       `json:"start_date"`
	EndDate   *time.Time       `json:"end_date"`
	IsActive  bool             `json:"is_active"`
}

type UpdatePhaseInput struct {
	Name        *string    `json:"name" validate:"omitempty,min=1,max=100"`
	Order       *int       `json:"order" validate:"omitempty,min=1"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	IsActive    *bool      `json:"is_active"`
	IsCompleted *bool      `json:"is_completed"`
}

type groupService struct {
	tournamentRepo repositories.TournamentRepository
	groupRepo      repositories.GroupRepository
	phaseRepo      repositories.PhaseRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.TournamentMatchRepository
}

func NewGroupService(
	tournamentRepo repositories.TournamentRepository,
	groupRepo repositories.GroupRepository,
	phaseRepo repositories.PhaseRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.TournamentMatchRepository,
) GroupService {
	return &groupService{
		tournamentRepo: tournamentRepo,
		groupRepo:      groupRepo,
		phaseRepo:      phaseRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
	}
}

func (s *groupService) CreateGroup(ctx context.Context, p *Principal, tournamentID uuid.UUID, input GroupInput) (*models.TournamentGroup, error) {
	t, err := s.managedTournament(ctx, p, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := validateInput(ctx, input); err != nil {
		return nil, err
	}

	existing, err := s.groupRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups of tournament %s: %w", tournamentID, err)
	}
	if t.TournamentType == models.TournamentLeague && len(existing) >= 1 {
		return nil, ErrLeagueSingleGroup
	}

	group := &models.TournamentGroup{
		TournamentID: tournamentID,
		Name:         strings.TrimSpace(input.Name),
		Description:  input.Description,
		Order:        intOr(input.Order, len(existing)+1),
	}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, mapGroupRepoError(err)
	}
	return group, nil
}

func (s *groupService) GetGroup(ctx context.Context, p *Principal, id int) (*models.TournamentGroup, error) {
	group, _, err := s.visibleGroup(ctx, p, id)
	return group, err
}

func (s *groupService) ListGroups(ctx context.Context, p *Principal, tournamentID uuid.UUID) ([]models.TournamentGroup, error) {
	if _, err := visibleTournament(ctx, s.tournamentRepo, p, tournamentID); err != nil {
		return nil, err
	}
	groups, err := s.groupRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups of tournament %s: %w", tournamentID, err)
	}
	return groups, nil
}

func (s *groupService) UpdateGroup(ctx context.Context, p *Principal, id int, input UpdateGroupInput) (*models.TournamentGroup, error) {
	group, _, err := s.managedGroup(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := validateInput(ctx, input); err != nil {
		return nil, err
	}
	group.Name = trimmedOr(input.Name, group.Name)
	if input.Description != nil {
		group.Description = *input.Description
	}
	group.Order = intOr(input.Order, group.Order)

	if err := s.groupRepo.Update(ctx, group); err != nil {
		return nil, mapGroupRepoError(err)
	}
	return group, nil
}

func (s *groupService) DeleteGroup(ctx context.Context, p *Principal, id int) error {
	if _, _, err := s.managedGroup(ctx, p, id); err != nil {
		return err
	}
	if err := s.groupRepo.Delete(ctx, id); err != nil {
		return mapGroupRepoError(err)
	}
	return nil
}

func (s *groupService) AddTeam(ctx context.Context, p *Principal, groupID int, input AddGroupTeamInput) (*models.TeamGroup, error) {
	group, _, err := s.managedGroup(ctx, p, groupID)
	if err != nil {
		return nil, err
	}
	if err := validateInput(ctx, input); err != nil {
		return nil, err
	}
	team, err := s.teamRepo.GetByID(ctx, input.TeamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, fieldError("team_id", "team does not exist")
		}
		return nil, fmt.Errorf("failed to get team %d: %w", input.TeamID, err)
	}

	member := &models.TeamGroup{TeamID: team.ID, GroupID: group.ID, Position: input.Position, Team: team}
	if err := s.groupRepo.AddTeam(ctx, nil, member); err != nil {
		return nil, mapGroupRepoError(err)
	}
	return member, nil
}

func (s *groupService) RemoveTeam(ctx context.Context, p *Principal, groupID, teamID int) error {
	if _, _, err := s.managedGroup(ctx, p, groupID); err != nil {
		return err
	}
	if err := s.groupRepo.RemoveTeam(ctx, groupID, teamID); err != nil {
		return mapGroupRepoError(err)
	}
	return nil
}

func (s *groupService) ListMembers(ctx context.Context, p *Principal, groupID int) ([]models.TeamGroup, error) {
	if _, _, err := s.visibleGroup(ctx, p, groupID); err != nil {
		return nil, err
	}
	members, err := s.groupRepo.ListMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of group %d: %w", groupID, err)
	}
	return members, nil
}

func (s *groupService) GetStandings(ctx context.Context, p *Principal, groupID int) (*GroupStandings, error) {
	group, t, err := s.visibleGroup(ctx, p, groupID)
	if err != nil {
		return nil, err
	}
	standings, err := groupStandings(ctx, s.groupRepo, s.matchRepo, group.ID, t.PointsScheme())
	if err != nil {
		return nil, err
	}
	return &GroupStandings{GroupID: group.ID, GroupName: group.Name, Standings: standings}, nil
}

func (s *groupService) CreatePhase(ctx context.Context, p *Principal, tournamentID uuid.UUID, input PhaseInput) (*models.TournamentPhase, error) {
	if _, err := s.managedTournament(ctx, p, tournamentID); err != nil {
		return nil, err
	}
	if err := validateInput(ctx, input); err != nil {
		return nil, err
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return nil, fieldError("end_date", "must not be before start_date")
	}
	phase := &models.TournamentPhase{
		TournamentID: tournamentID,
		Name:         strings.TrimSpace(input.Name),
		PhaseType:    input.PhaseType,
		Order:        intOr(input.Order, 1),
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		IsActive:     input.IsActive,
	}
	if err := s.phaseRepo.Create(ctx, phase); err != nil {
		return nil, mapPhaseRepoError(err)
	}
	return phase, nil
}

func (s *groupService) ListPhases(ctx context.Context, p *Principal, tournamentID uuid.UUID) ([]models.TournamentPhase, error) {
	if _, err := visibleTournament(ctx, s.tournamentRepo, p, tournamentID); err != nil {
		return nil, err
	}
	phases, err := s.phaseRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list phases of tournament %s: %w", tournamentID, err)
	}
	return phases, nil
}

func (s *groupService) UpdatePhase(ctx context.Context, p *Principal, id int, input UpdatePhaseInput) (*models.TournamentPhase, error) {
	phase, err := s.managedPhase(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := validateInput(ctx, input); err != nil {
		return nil, err
	}
	phase.Name = trimmedOr(input.Name, phase.Name)
	phase.Order = intOr(input.Order, phase.Order)
	if input.StartDate != nil {
		phase.StartDate = input.StartDate
	}
	if input.EndDate != nil {
		phase.EndDate = input.EndDate
	}
	if phase.StartDate != nil && phase.EndDate != nil && phase.EndDate.Before(*phase.StartDate) {
		return nil, fieldError("end_date", "must not be before start_date")
	}
	if input.IsActive != nil {
		phase.IsActive = *input.IsActive
	}
	if input.IsCompleted != nil {
		phase.IsCompleted = *input.IsCompleted
	}
	if err := s.phaseRepo.Update(ctx, phase); err != nil {
		return nil, mapPhaseRepoError(err)
	}
	return phase, nil
}

func (s *groupService) DeletePhase(ctx context.Context, p *Principal, id int) error {
	if _, err := s.managedPhase(ctx, p, id); err != nil {
		return err
	}
	if err := s.phaseRepo.Delete(ctx, id); err != nil {
		return mapPhaseRepoError(err)
	}
	return nil
}

func (s *groupService) managedTournament(ctx context.Context, p *Principal, id uuid.UUID) (*models.Tournament, error) {
	t, err := visibleTournament(ctx, s.tournamentRepo, p, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(p, ActionManageTournament, Target{OrganizerID: &t.OrganizerID}); err != nil {
		return nil, err
	}
	return t, nil
}

// visibleGroup - группа видима, если видим её турнир.
func (s *groupService) visibleGroup(ctx context.Context, p *Principal, id int) (*models.TournamentGroup, *models.Tournament, error) {
	group, err := s.groupRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, nil, ErrGroupNotFound
		}
		return nil, nil, fmt.Errorf("failed to get group %d: %w", id, err)
	}
	t, err := visibleTournament(ctx, s.tournamentRepo, p, group.TournamentID)
	if err != nil {
		if errors.Is(err, ErrTournamentNotFound) {
			return nil, nil, ErrGroupNotFound
		}
		return nil, nil, err
	}
	return group, t, nil
}

func (s *groupService) managedGroup(ctx context.Context, p *Principal, id int) (*models.TournamentGroup, *models.Tournament, error) {
	group, t, err := s.visibleGroup(ctx, p, id)
	if err != nil {
		return nil, nil, err
	}
	if err := Authorize(p, ActionManageTournament, Target{OrganizerID: &t.OrganizerID}); err != nil {
		return nil, nil, err
	}
	return group, t, nil
}

func (s *groupService) managedPhase(ctx context.Context, p *Principal, id int) (*models.TournamentPhase, error) {
	phase, err := s.phaseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPhaseNotFound) {
			return nil, ErrPhaseNotFound
		}
		return nil, fmt.Errorf("failed to get phase %d: %w", id, err)
	}
	if _, err := s.managedTournament(ctx, p, phase.TournamentID); err != nil {
		if errors.Is(err, ErrTournamentNotFound) {
			return nil, ErrPhaseNotFound
		}
		return nil, err
	}
	return phase, nil
}

func mapGroupRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrGroupNotFound):
		return ErrGroupNotFound
	case errors.Is(err, repositories.ErrGroupNameConflict):
		return conflictField("name", err)
	case errors.Is(err, repositories.ErrTeamAlreadyInGroup):
		return conflictField("team_id", err)
	case errors.Is(err, repositories.ErrTeamNotInGroup):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrGroupTeamInvalid):
		return fieldError("team_id", "team does not exist")
	case errors.Is(err, repositories.ErrGroupTournamentGone):
		return ErrTournamentNotFound
	}
	return fmt.Errorf("group storage error: %w", integrityError(err))
}

func mapPhaseRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrPhaseNotFound):
		return ErrPhaseNotFound
	case errors.Is(err, repositories.ErrPhaseTypeConflict):
		return conflictField("phase_type", err)
	case errors.Is(err, repositories.ErrGroupTournamentGone):
		return ErrTournamentNotFound
	}
	return fmt.Errorf("phase storage error: %w", integrityError(err))
}
