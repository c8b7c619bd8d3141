package services

import (
	"github.com/Dosada05/u13-football/models"
	"github.com/Dosada05/u13-football/repositories"
)

// Family - семейство записей, для которого строится область видимости.
type Family int

const (
	FamilyClub Family = iota
	FamilyTeam
	FamilyPlayer
	FamilyTournament
	FamilyTournamentMatch
	FamilyGlobalMatch
)

// VisibilityStrategy строит область видимости для одной роли.
type VisibilityStrategy interface {
	Scope(p *Principal, family Family) repositories.Scope
}

// StrategyFor выбирает стратегию по роли пользователя. Роль тренера не хранится
// как отдельная: она выводится из закреплённых команд и применяется, только если
// роль пользователя не одна из явных.
func StrategyFor(p *Principal) VisibilityStrategy {
	if p == nil || p.User == nil {
		return denyVisibility{}
	}
	switch p.User.Role {
	case models.RoleAdmin:
		return adminVisibility{}
	case models.RoleStaff:
		return staffVisibility{}
	case models.RoleParent:
		return parentVisibility{}
	case models.RoleViewer:
		return viewerVisibility{}
	}
	if len(p.CoachedTeamIDs) > 0 {
		return coachVisibility{}
	}
	return denyVisibility{}
}

// ResolveScope - область видимости пользователя для семейства записей.
func ResolveScope(p *Principal, family Family) repositories.Scope {
	return StrategyFor(p).Scope(p, family)
}

// Справочные сущности (клубы, команды, игроки) открыты любой известной роли.
func isDirectoryFamily(f Family) bool {
	return f == FamilyClub || f == FamilyTeam || f == FamilyPlayer
}

type adminVisibility struct{}

func (adminVisibility) Scope(p *Principal, f Family) repositories.Scope {
	if isDirectoryFamily(f) {
		return repositories.Scope{All: true}
	}
	id := p.UserID()
	switch f {
	case FamilyTournament, FamilyTournamentMatch:
		return repositories.Scope{OrganizerID: &id}
	case FamilyGlobalMatch:
		return repositories.Scope{OrganizerID: &id, CreatorID: &id}
	}
	return repositories.Scope{}
}

type staffVisibility struct{}

func (staffVisibility) Scope(p *Principal, f Family) repositories.Scope {
	if isDirectoryFamily(f) {
		return repositories.Scope{All: true}
	}
	return repositories.Scope{ClubIDs: p.OwnedClubIDs}
}

type coachVisibility struct{}

func (coachVisibility) Scope(p *Principal, f Family) repositories.Scope {
	if isDirectoryFamily(f) {
		return repositories.Scope{All: true}
	}
	return repositories.Scope{TeamIDs: p.CoachedTeamIDs}
}

type parentVisibility struct{}

func (parentVisibility) Scope(p *Principal, f Family) repositories.Scope {
	if isDirectoryFamily(f) {
		return repositories.Scope{All: true}
	}
	return repositories.Scope{TeamIDs: p.ParentTeamIDs()}
}

type viewerVisibility struct{}

func (viewerVisibility) Scope(*Principal, Family) repositories.Scope {
	return repositories.Scope{All: true}
}

type denyVisibility struct{}

func (denyVisibility) Scope(*Principal, Family) repositories.Scope {
	return repositories.Scope{}
}
