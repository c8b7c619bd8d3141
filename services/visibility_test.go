package services

import (
	"testing"

	"github.com/Dosada05/u13-football/models"
	"github.com/Dosada05/u13-football/repositories"
)

func principalFor(id int, role models.UserRole) *Principal {
	return &Principal{User: &models.User{ID: id, Role: role, IsActive: true, Email: "user@example.com"}}
}

func TestStrategyForRole(t *testing.T) {
	coach := principalFor(3, models.RoleCoach)
	coach.CoachedTeamIDs = []int{10}

	tests := []struct {
		name string
		p    *Principal
		want VisibilityStrategy
	}{
		{name: "anonymous", p: nil, want: denyVisibility{}},
		{name: "admin", p: principalFor(1, models.RoleAdmin), want: adminVisibility{}},
		{name: "staff", p: principalFor(2, models.RoleStaff), want: staffVisibility{}},
		{name: "parent", p: principalFor(4, models.RoleParent), want: parentVisibility{}},
		{name: "viewer", p: principalFor(5, models.RoleViewer), want: viewerVisibility{}},
		{name: "coach with teams", p: coach, want: coachVisibility{}},
		{name: "coach without teams", p: principalFor(6, models.RoleCoach), want: denyVisibility{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StrategyFor(tt.p); got != tt.want {
				t.Fatalf("StrategyFor = %T, want %T", got, tt.want)
			}
		})
	}
}

func TestVisibilityContainment(t *testing.T) {
	admin := principalFor(1, models.RoleAdmin)
	staff := principalFor(2, models.RoleStaff)
	staff.OwnedClubIDs = []int{100}
	coach := principalFor(3, models.RoleCoach)
	coach.CoachedTeamIDs = []int{10}
	parent := principalFor(4, models.RoleParent)
	parent.FollowedTeamIDs = []int{20}
	parent.ChildTeamIDs = []int{30}
	viewer := principalFor(5, models.RoleViewer)

	homeTeam := &models.Team{ID: 10, ClubID: 100}
	awayTeam := &models.Team{ID: 20, ClubID: 200}
	otherTeam := &models.Team{ID: 30, ClubID: 300}
	strangers := &models.Team{ID: 40, ClubID: 400}

	organizedByAdmin := sideKeys(strangers, &models.Team{ID: 50, ClubID: 500})
	organizedByAdmin.OrganizerID = intPtr(1)

	createdByAdmin := sideKeys(strangers, &models.Team{ID: 50, ClubID: 500})
	createdByAdmin.CreatorID = intPtr(1)

	tests := []struct {
		name   string
		p      *Principal
		family Family
		keys   repositories.ScopeKeys
		want   bool
	}{
		{name: "admin sees own tournament", p: admin, family: FamilyTournament, keys: organizedByAdmin, want: true},
		{name: "admin does not see foreign tournament", p: admin, family: FamilyTournament, keys: sideKeys(homeTeam, awayTeam), want: false},
		{name: "admin sees created match", p: admin, family: FamilyGlobalMatch, keys: createdByAdmin, want: true},
		{name: "admin sees every team", p: admin, family: FamilyTeam, keys: sideKeys(strangers), want: true},
		{name: "staff sees match of owned club", p: staff, family: FamilyGlobalMatch, keys: sideKeys(homeTeam, strangers), want: true},
		{name: "staff does not see foreign match", p: staff, family: FamilyGlobalMatch, keys: sideKeys(awayTeam, strangers), want: false},
		{name: "staff ignores creator key", p: staff, family: FamilyGlobalMatch, keys: repositories.ScopeKeys{CreatorID: intPtr(2)}, want: false},
		{name: "coach sees coached team match", p: coach, family: FamilyTournamentMatch, keys: sideKeys(strangers, homeTeam), want: true},
		{name: "coach does not see other match", p: coach, family: FamilyTournamentMatch, keys: sideKeys(strangers, awayTeam), want: false},
		{name: "parent sees followed team", p: parent, family: FamilyGlobalMatch, keys: sideKeys(awayTeam), want: true},
		{name: "parent sees child team", p: parent, family: FamilyTournament, keys: sideKeys(otherTeam), want: true},
		{name: "parent does not see stranger", p: parent, family: FamilyGlobalMatch, keys: sideKeys(strangers), want: false},
		{name: "viewer sees everything", p: viewer, family: FamilyTournament, keys: sideKeys(strangers), want: true},
		{name: "anonymous sees nothing", p: nil, family: FamilyClub, keys: sideKeys(homeTeam), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := visible(tt.p, tt.family, tt.keys); got != tt.want {
				t.Fatalf("visible = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParentTeamIDsDeduplicates(t *testing.T) {
	p := principalFor(4, models.RoleParent)
	p.FollowedTeamIDs = []int{1, 2}
	p.ChildTeamIDs = []int{2, 3}

	got := p.ParentTeamIDs()
	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("ParentTeamIDs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ParentTeamIDs = %v, want %v", got, want)
		}
	}
}
