package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/Dosada05/u13-football/models"
	"github.com/Dosada05/u13-football/repositories"
)

type TeamService interface {
	CreateTeam(ctx context.Context, p *Principal, clubID int, input CreateTeamInput) (*models.Team, error)
	GetTeam(ctx context.Context, p *Principal, id int) (*models.Team, error)
	ListTeams(ctx context.Context, p *Principal, filter TeamListFilter, page Page) ([]models.Team, error)
	ListMyTeams(ctx context.Context, p *Principal) ([]models.Team, error)
	UpdateTeam(ctx context.Context, p *Principal, id int, input UpdateTeamInput) (*models.Team, error)
	DeleteTeam(ctx context.Context, p *Principal, id int) error
	Follow(ctx context.Context, p *Principal, id int) error
	Unfollow(ctx context.Context, p *Principal, id int) error
}

type CreateTeamInput struct {
	Name              string              `json:"name" validate:"required,max=100"`
	Category          models.TeamCategory `json:"category" validate:"required,oneof=u10 u11 u12 u13 u14 u15 u16 u17 u18 u19 u20 u21"`
	CoachID           *int                `json:"coach_id" validate:"omitempty,gt=0"`
	AssistantCoachIDs []int               `json:"assistant_coach_ids" validate:"omitempty,dive,gt=0"`
}

type UpdateTeamInput struct {
	Name              *string              `json:"name" validate:"omitempty,min=1,max=100"`
	Category          *models.TeamCategory `json:"category" validate:"omitempty,oneof=u10 u11 u12 u13 u14 u15 u16 u17 u18 u19 u20 u21"`
	CoachID           *int                 `json:"coach_id" validate:"omitempty,gte=0"`
	AssistantCoachIDs *[]int               `json:"assistant_coach_ids" validate:"omitempty,dive,gt=0"`
	TrophiesWon       *int                 `json:"trophies_won" validate:"omitempty,gte=0"`
	IsActive          *bool                `json:"is_active"`
}

type TeamListFilter struct {
	ClubID   *int
	Category *models.TeamCategory
	Search   string
}

type teamService struct {
	txManager repositories.TxManager
	teamRepo  repositories.TeamRepository
	clubRepo  repositories.ClubRepository
	logger    *slog.Logger
}

func NewTeamService(
	txManager repositories.TxManager,
	teamRepo repositories.TeamRepository,
	clubRepo repositories.ClubRepository,
	logger *slog.Logger,
) TeamService {
	return &teamService{
		txManager: txManager,
		teamRepo:  teamRepo,
		clubRepo:  clubRepo,
		logger:    logger,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, p *Principal, clubID int, input CreateTeamInput) (*models.Team, error) {
	club, err := s.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to get club %d: %w", clubID, err)
	}
	if !visible(p, FamilyClub, repositories.ScopeKeys{ClubIDs: []int{club.ID}}) {
		return nil, ErrClubNotFound
	}
	if err := Authorize(p, ActionManageTeam, Target{Club: club}); err != nil {
		return nil, err
	}
	if err := validateInput(ctx, input); err != nil {
		return nil, err
	}

	team := &models.Team{
		ClubID:            club.ID,
		Name:              strings.TrimSpace(input.Name),
		Category:          input.Category,
		CoachID:           input.CoachID,
		AssistantCoachIDs: uniqueIDs(input.AssistantCoachIDs),
		IsActive:          true,
		ClubName:          club.Name,
		ClubOwnerID:       club.OwnerID,
	}

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		if err := s.teamRepo.Create(ctx, exec, team); err != nil {
			return err
		}
		return s.teamRepo.SetAssistants(ctx, exec, team.ID, team.AssistantCoachIDs)
	})
	if err != nil {
		return nil, mapTeamRepoError(err)
	}
	s.logger.InfoContext(ctx, "team created", slog.Int("team_id", team.ID), slog.Int("club_id", club.ID))
	return team, nil
}

func (s *teamService) GetTeam(ctx context.Context, p *Principal, id int) (*models.Team, error) {
	return s.getVisibleTeam(ctx, p, id)
}

func (s *teamService) ListTeams(ctx context.Context, p *Principal, filter TeamListFilter, page Page) ([]models.Team, error) {
	page = page.normalized()
	teams, err := s.teamRepo.List(ctx, repositories.ListTeamsFilter{
		Scope:    ResolveScope(p, FamilyTeam),
		ClubID:   filter.ClubID,
		Category: filter.Category,
		Search:   strings.TrimSpace(filter.Search),
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

// ListMyTeams - команды клубов пользователя, тренируемые им и те, на которые он подписан.
func (s *teamService) ListMyTeams(ctx context.Context, p *Principal) ([]models.Team, error) {
	if p == nil || p.User == nil {
		return nil, ErrAuthenticationFailed
	}
	teams, err := s.teamRepo.ListForUser(ctx, p.UserID())
	if err != nil {
		return nil, fmt.Errorf("failed to list teams of user %d: %w", p.UserID(), err)
	}
	return teams, nil
}

func (s *teamService) UpdateTeam(ctx context.Context, p *Principal, id int, input UpdateTeamInput) (*models.Team, error) {
	team, err := s.getVisibleTeam(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(p, ActionManageTeam, Target{Team: team}); err != nil {
		return nil, err
	}
	if err := validateInput(ctx, input); err != nil {
		return nil, err
	}

	if input.Name != nil {
		team.Name = strings.TrimSpace(*input.Name)
	}
	if input.Category != nil {
		team.Category = *input.Category
	}
	if input.CoachID != nil {
		// 0 снимает главного тренера
		if *input.CoachID == 0 {
			team.CoachID = nil
		} else {
			team.CoachID = input.CoachID
		}
	}
	if input.TrophiesWon != nil {
		team.TrophiesWon = *input.TrophiesWon
	}
	if input.IsActive != nil {
		team.IsActive = *input.IsActive
	}

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		if err := s.teamRepo.Update(ctx, exec, team); err != nil {
			return err
		}
		if input.AssistantCoachIDs != nil {
			team.AssistantCoachIDs = uniqueIDs(*input.AssistantCoachIDs)
			return s.teamRepo.SetAssistants(ctx, exec, team.ID, team.AssistantCoachIDs)
		}
		return nil
	})
	if err != nil {
		return nil, mapTeamRepoError(err)
	}
	return team, nil
}

func (s *teamService) DeleteTeam(ctx context.Context, p *Principal, id int) error {
	team, err := s.getVisibleTeam(ctx, p, id)
	if err != nil {
		return err
	}
	if err := Authorize(p, ActionManageTeam, Target{Team: team}); err != nil {
		return err
	}
	if err := s.teamRepo.Delete(ctx, id); err != nil {
		return mapTeamRepoError(err)
	}
	return nil
}

func (s *teamService) Follow(ctx context.Context, p *Principal, id int) error {
	if _, err := s.getVisibleTeam(ctx, p, id); err != nil {
		return err
	}
	if err := s.teamRepo.Follow(ctx, id, p.UserID()); err != nil {
		return mapTeamRepoError(err)
	}
	return nil
}

func (s *teamService) Unfollow(ctx context.Context, p *Principal, id int) error {
	if _, err := s.getVisibleTeam(ctx, p, id); err != nil {
		return err
	}
	if err := s.teamRepo.Unfollow(ctx, id, p.UserID()); err != nil {
		return fmt.Errorf("failed to unfollow team %d: %w", id, err)
	}
	return nil
}

func (s *teamService) getVisibleTeam(ctx context.Context, p *Principal, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", id, err)
	}
	if !visible(p, FamilyTeam, sideKeys(team)) {
		return nil, ErrTeamNotFound
	}
	return team, nil
}

func mapTeamRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTeamNotFound):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrTeamNameConflict):
		return conflictField("name", err)
	case errors.Is(err, repositories.ErrTeamCoachInvalid):
		return conflictField("coach_id", err)
	case errors.Is(err, repositories.ErrTeamClubInvalid):
		return ErrClubNotFound
	}
	return fmt.Errorf("team storage error: %w", integrityError(err))
}

func uniqueIDs(ids []int) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
