package services

import (
	"errors"
	"testing"

	"github.com/Dosada05/u13-football/models"
)

func TestAuthorize(t *testing.T) {
	admin := principalFor(1, models.RoleAdmin)
	inactiveAdmin := principalFor(1, models.RoleAdmin)
	inactiveAdmin.User.IsActive = false
	staff := principalFor(2, models.RoleStaff)
	coach := principalFor(3, models.RoleCoach)
	parent := principalFor(4, models.RoleParent)
	parent.User.Email = "mum@example.com"
	viewer := principalFor(5, models.RoleViewer)

	home := &models.Team{ID: 10, ClubID: 100, ClubOwnerID: intPtr(2), CoachID: intPtr(3)}
	away := &models.Team{ID: 20, ClubID: 200, ClubOwnerID: intPtr(9), CoachID: intPtr(8), AssistantCoachIDs: []int{3}}
	club := &models.Club{ID: 100, OwnerID: intPtr(2)}
	player := &models.Player{ID: 7, TeamID: 10, ParentEmail: "mum@example.com", Team: home}

	tests := []struct {
		name    string
		p       *Principal
		action  Action
		target  Target
		wantErr error
	}{
		{name: "anonymous", p: nil, action: ActionCreateClub, wantErr: ErrAuthenticationFailed},
		{name: "viewer is read-only", p: viewer, action: ActionCreateTournament, wantErr: ErrReadOnlyRole},
		{name: "parent is read-only", p: parent, action: ActionManageMatchDetail, target: Target{Team: home}, wantErr: ErrReadOnlyRole},

		{name: "active admin creates tournament", p: admin, action: ActionCreateTournament},
		{name: "inactive admin cannot create tournament", p: inactiveAdmin, action: ActionCreateTournament, wantErr: ErrAccountDisabled},
		{name: "staff cannot create tournament", p: staff, action: ActionCreateTournament, wantErr: ErrAdminOnly},
		{name: "organizer manages tournament", p: admin, action: ActionManageTournament, target: Target{OrganizerID: intPtr(1)}},
		{name: "other admin cannot manage tournament", p: admin, action: ActionManageTournament, target: Target{OrganizerID: intPtr(42)}, wantErr: ErrNotOrganizer},

		{name: "admin cannot create standalone match", p: admin, action: ActionCreateMatch, target: Target{Home: home}, wantErr: ErrAdminCannotCreateMatch},
		{name: "staff creates match for owned home team", p: staff, action: ActionCreateMatch, target: Target{Home: home}},
		{name: "staff cannot create match for foreign home team", p: staff, action: ActionCreateMatch, target: Target{Home: away}, wantErr: ErrNotClubOwner},
		{name: "coach creates match for coached home team", p: coach, action: ActionCreateMatch, target: Target{Home: home}},
		{name: "assistant cannot create match", p: coach, action: ActionCreateMatch, target: Target{Home: away}, wantErr: ErrNotTeamCoach},

		{name: "creator changes match", p: staff, action: ActionChangeMatch, target: Target{Home: away, CreatorID: intPtr(2)}},
		{name: "non-creator cannot change match", p: staff, action: ActionChangeMatch, target: Target{Home: home, CreatorID: intPtr(5)}, wantErr: ErrNotMatchCreator},
		{name: "admin changes any visible match", p: admin, action: ActionChangeMatch, target: Target{CreatorID: intPtr(5)}},

		{name: "assistant scores tournament match", p: coach, action: ActionScoreTournament, target: Target{Home: away, Away: away}},
		{name: "owner of neither side cannot score", p: staff, action: ActionScoreTournament, target: Target{Home: away, Away: away}, wantErr: ErrNotMatchStaff},
		{name: "organizer scores", p: admin, action: ActionScoreTournament, target: Target{OrganizerID: intPtr(1)}},

		{name: "admin manages match details", p: admin, action: ActionManageMatchDetail, target: Target{Team: away}},
		{name: "coach manages own side details", p: coach, action: ActionManageMatchDetail, target: Target{Team: home}},
		{name: "staff cannot manage foreign side", p: staff, action: ActionManageMatchDetail, target: Target{Team: away}, wantErr: ErrNotClubOwner},
		{name: "home staff writes report", p: staff, action: ActionWriteReport, target: Target{Home: home}},
		{name: "away coach cannot write report", p: principalFor(8, models.RoleCoach), action: ActionWriteReport, target: Target{Home: home}, wantErr: ErrNotTeamCoach},
		{name: "staff cannot validate report", p: staff, action: ActionValidateReport, wantErr: ErrAdminOnly},
		{name: "admin validates report", p: admin, action: ActionValidateReport},

		{name: "staff creates club", p: staff, action: ActionCreateClub},
		{name: "coach cannot create club", p: coach, action: ActionCreateClub, wantErr: ErrStaffOnly},
		{name: "owner manages club", p: staff, action: ActionManageClub, target: Target{Club: club}},
		{name: "owner registers team", p: staff, action: ActionRegisterTeam, target: Target{Team: home}},
		{name: "coach cannot register team", p: coach, action: ActionRegisterTeam, target: Target{Team: home}, wantErr: ErrNotClubOwner},
		{name: "coach manages player", p: coach, action: ActionManagePlayer, target: Target{Team: home}},
		{name: "assistant cannot manage player", p: coach, action: ActionManagePlayer, target: Target{Team: away}, wantErr: ErrNotTeamStaff},

		{name: "parent reads child stats", p: parent, action: ActionReadPlayerStats, target: Target{Player: player}},
		{name: "viewer cannot read stats", p: viewer, action: ActionReadPlayerStats, target: Target{Player: player}, wantErr: ErrForbiddenOperation},
		{name: "owner reads stats", p: staff, action: ActionReadPlayerStats, target: Target{Player: player}},
		{name: "admin reads stats", p: admin, action: ActionReadPlayerStats, target: Target{Player: player}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.p, tt.action, tt.target)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAuthorizeForbiddenErrorsShareClass(t *testing.T) {
	err := Authorize(principalFor(2, models.RoleStaff), ActionValidateReport, Target{})
	if !errors.Is(err, ErrForbiddenOperation) {
		t.Fatalf("expected forbidden class, got %v", err)
	}
}
