package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/Dosada05/u13-football/models"
	"github.com/Dosada05/u13-football/repositories"
	"golang.org/x/sync/errgroup"
)

// Principal - пользователь вместе со всеми связями, от которых зависят права.
type Principal struct {
	User             *models.User
	OwnedClubIDs     []int
	CoachedTeamIDs   []int
	AssistantTeamIDs []int
	FollowedTeamIDs  []int
	ChildTeamIDs     []int
}

func (p *Principal) UserID() int {
	if p == nil || p.User == nil {
		return 0
	}
	return p.User.ID
}

func (p *Principal) Role() models.UserRole {
	if p == nil || p.User == nil {
		return ""
	}
	return p.User.Role
}

func (p *Principal) IsAdmin() bool {
	return p.Role() == models.RoleAdmin
}

func (p *Principal) IsStaff() bool {
	return p.Role() == models.RoleStaff
}

// ReadOnly - роли без права изменять данные.
func (p *Principal) ReadOnly() bool {
	switch p.Role() {
	case models.RoleViewer, models.RoleParent:
		return true
	}
	return p == nil || p.User == nil
}

func (p *Principal) OwnsClub(clubID int) bool {
	return p != nil && slices.Contains(p.OwnedClubIDs, clubID)
}

// OwnsClubOf проверяет владение клубом сущности.
func (p *Principal) OwnsClubOf(e models.HasOwningClub) bool {
	if p == nil || e == nil {
		return false
	}
	owner := e.OwningClubOwner()
	return owner != nil && *owner == p.UserID()
}

// IsPrimaryCoachOf проверяет, что пользователь главный тренер команды сущности.
func (p *Principal) IsPrimaryCoachOf(e models.HasCoach) bool {
	if p == nil || e == nil {
		return false
	}
	coach := e.PrimaryCoach()
	return coach != nil && *coach == p.UserID()
}

func (p *Principal) IsAssistantOf(e models.HasCoach) bool {
	return p != nil && e != nil && e.HasAssistantCoach(p.UserID())
}

// ParentTeamIDs - команды, которые родитель видит: отслеживаемые и команды детей.
func (p *Principal) ParentTeamIDs() []int {
	ids := make([]int, 0, len(p.FollowedTeamIDs)+len(p.ChildTeamIDs))
	ids = append(ids, p.FollowedTeamIDs...)
	for _, id := range p.ChildTeamIDs {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids
}

type PrincipalLoader interface {
	Load(ctx context.Context, userID int) (*Principal, error)
}

type principalLoader struct {
	userRepo repositories.UserRepository
}

func NewPrincipalLoader(userRepo repositories.UserRepository) PrincipalLoader {
	return &principalLoader{userRepo: userRepo}
}

func (l *principalLoader) Load(ctx context.Context, userID int) (*Principal, error) {
	if userID <= 0 {
		return nil, ErrAuthenticationFailed
	}
	user, err := l.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthenticationFailed
		}
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}

	p := &Principal{User: user}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ids, err := l.userRepo.ListOwnedClubIDs(gCtx, userID)
		if err != nil {
			return fmt.Errorf("failed to list owned clubs of user %d: %w", userID, err)
		}
		p.OwnedClubIDs = ids
		return nil
	})
	g.Go(func() error {
		ids, err := l.userRepo.ListCoachedTeamIDs(gCtx, userID)
		if err != nil {
			return fmt.Errorf("failed to list coached teams of user %d: %w", userID, err)
		}
		p.CoachedTeamIDs = ids
		return nil
	})
	g.Go(func() error {
		ids, err := l.userRepo.ListAssistantTeamIDs(gCtx, userID)
		if err != nil {
			return fmt.Errorf("failed to list assisted teams of user %d: %w", userID, err)
		}
		p.AssistantTeamIDs = ids
		return nil
	})
	g.Go(func() error {
		ids, err := l.userRepo.ListFollowedTeamIDs(gCtx, userID)
		if err != nil {
			return fmt.Errorf("failed to list followed teams of user %d: %w", userID, err)
		}
		p.FollowedTeamIDs = ids
		return nil
	})
	g.Go(func() error {
		ids, err := l.userRepo.ListChildTeamIDs(gCtx, user.Email)
		if err != nil {
			return fmt.Errorf("failed to list child teams of user %d: %w", userID, err)
		}
		p.ChildTeamIDs = ids
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return p, nil
}
