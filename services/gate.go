package services

import (
	"github.com/Dosada05/u13-football/models"
)

type Action string

const (
	ActionCreateTournament  Action = "tournament:create"
	ActionManageTournament  Action = "tournament:manage"
	ActionCreateMatch       Action = "match:create"
	ActionChangeMatch       Action = "match:change"
	ActionScoreTournament   Action = "tournament_match:score"
	ActionManageMatchDetail Action = "match:detail"
	ActionWriteReport       Action = "report:write"
	ActionValidateReport    Action = "report:validate"
	ActionCreateClub        Action = "club:create"
	ActionManageClub        Action = "club:manage"
	ActionManageTeam        Action = "team:manage"
	ActionManagePlayer      Action = "player:manage"
	ActionRegisterTeam      Action = "registration:create"
	ActionReadPlayerStats   Action = "player:stats"
)

// Target - объект проверки. Заполняются только поля, нужные действию.
type Target struct {
	Home        models.TeamSide
	Away        models.TeamSide
	Team        models.TeamSide
	Club        models.HasOwningClub
	Player      *models.Player
	CreatorID   *int
	OrganizerID *int
}

// Authorize решает, может ли пользователь выполнить действие над видимым ему объектом.
// Возвращает nil или ошибку класса ErrForbiddenOperation.
func Authorize(p *Principal, action Action, t Target) error {
	if p == nil || p.User == nil {
		return ErrAuthenticationFailed
	}
	if action == ActionReadPlayerStats {
		return authorizePlayerStats(p, t.Player)
	}
	if p.ReadOnly() {
		return ErrReadOnlyRole
	}

	switch action {
	case ActionCreateTournament:
		if !p.IsAdmin() {
			return ErrAdminOnly
		}
		if !p.User.IsActive {
			return ErrAccountDisabled
		}
		return nil

	case ActionManageTournament:
		if isUser(p, t.OrganizerID) {
			return nil
		}
		return ErrNotOrganizer

	case ActionCreateMatch:
		if p.IsAdmin() {
			return ErrAdminCannotCreateMatch
		}
		return authorizeHomeSide(p, t.Home)

	case ActionChangeMatch:
		if p.IsAdmin() || isUser(p, t.OrganizerID) {
			return nil
		}
		if t.CreatorID != nil {
			if isUser(p, t.CreatorID) {
				return nil
			}
			return ErrNotMatchCreator
		}
		return authorizeHomeSide(p, t.Home)

	case ActionScoreTournament:
		if isUser(p, t.OrganizerID) {
			return nil
		}
		if isMatchStaff(p, t.Home) || isMatchStaff(p, t.Away) {
			return nil
		}
		return ErrNotMatchStaff

	case ActionManageMatchDetail, ActionWriteReport:
		if p.IsAdmin() {
			return nil
		}
		side := t.Team
		if action == ActionWriteReport {
			side = t.Home
		}
		return authorizeHomeSide(p, side)

	case ActionValidateReport:
		if p.IsAdmin() {
			return nil
		}
		return ErrAdminOnly

	case ActionCreateClub:
		if p.IsStaff() {
			return nil
		}
		return ErrStaffOnly

	case ActionManageClub, ActionManageTeam, ActionRegisterTeam:
		var owned models.HasOwningClub = t.Club
		if t.Team != nil {
			owned = t.Team
		}
		if p.OwnsClubOf(owned) {
			return nil
		}
		return ErrNotClubOwner

	case ActionManagePlayer:
		if p.OwnsClubOf(t.Team) || p.IsPrimaryCoachOf(t.Team) {
			return nil
		}
		return ErrNotTeamStaff
	}

	return ErrForbiddenOperation
}

// authorizeHomeSide: staff - владелец клуба команды, иначе главный тренер команды.
func authorizeHomeSide(p *Principal, side models.TeamSide) error {
	if side == nil {
		return ErrForbiddenOperation
	}
	if p.IsStaff() {
		if p.OwnsClubOf(side) {
			return nil
		}
		return ErrNotClubOwner
	}
	if p.IsPrimaryCoachOf(side) {
		return nil
	}
	return ErrNotTeamCoach
}

// isMatchStaff: главный тренер, ассистент или владелец клуба команды.
func isMatchStaff(p *Principal, side models.TeamSide) bool {
	if side == nil {
		return false
	}
	return p.IsPrimaryCoachOf(side) || p.IsAssistantOf(side) || p.OwnsClubOf(side)
}

func authorizePlayerStats(p *Principal, player *models.Player) error {
	if player == nil {
		return ErrForbiddenOperation
	}
	switch p.Role() {
	case models.RoleAdmin:
		return nil
	case models.RoleStaff:
		if p.OwnsClubOf(player) {
			return nil
		}
		return ErrNotClubOwner
	case models.RoleParent:
		if player.HasParentEmail(p.User.Email) {
			return nil
		}
		return ErrForbiddenOperation
	case models.RoleViewer:
		return ErrForbiddenOperation
	}
	if p.IsPrimaryCoachOf(player) || p.IsAssistantOf(player) {
		return nil
	}
	return ErrNotTeamCoach
}

func isUser(p *Principal, id *int) bool {
	return id != nil && *id == p.UserID()
}
