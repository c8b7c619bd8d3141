package services

import (
	"testing"

	"github.com/Dosada05/u13-football/models"
)

func member(id int, name string) models.TeamGroup {
	return models.TeamGroup{TeamID: id, Team: &models.Team{ID: id, Name: name}}
}

func finished(home, away, hs, as int) models.TournamentMatch {
	return models.TournamentMatch{HomeTeamID: home, AwayTeamID: away, HomeScore: hs, AwayScore: as, Status: models.MatchFinished}
}

func TestBuildStandings(t *testing.T) {
	members := []models.TeamGroup{member(1, "Lions"), member(2, "Eagles"), member(3, "Wolves")}
	matches := []models.TournamentMatch{
		finished(1, 2, 2, 0),
		finished(2, 3, 1, 1),
		finished(3, 1, 0, 3),
		{HomeTeamID: 1, AwayTeamID: 2, HomeScore: 5, AwayScore: 5, Status: models.MatchScheduled},
	}

	got := BuildStandings(members, matches, models.DefaultPointsScheme)

	want := []models.Standing{
		{Position: 1, TeamID: 1, TeamName: "Lions", Played: 2, Wins: 2, GoalsScored: 5, GoalsConceded: 0, GoalDifference: 5, Points: 6},
		{Position: 2, TeamID: 2, TeamName: "Eagles", Played: 2, Draws: 1, Losses: 1, GoalsScored: 1, GoalsConceded: 3, GoalDifference: -2, Points: 1},
		{Position: 3, TeamID: 3, TeamName: "Wolves", Played: 2, Draws: 1, Losses: 1, GoalsScored: 1, GoalsConceded: 4, GoalDifference: -3, Points: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestBuildStandingsKeepsMemberOrderOnFullTie(t *testing.T) {
	members := []models.TeamGroup{member(5, "E"), member(3, "C"), member(4, "D")}
	matches := []models.TournamentMatch{finished(5, 3, 1, 1)}

	for run := 0; run < 3; run++ {
		got := BuildStandings(members, matches, models.DefaultPointsScheme)
		order := []int{got[0].TeamID, got[1].TeamID, got[2].TeamID}
		if order[0] != 5 || order[1] != 3 || order[2] != 4 {
			t.Fatalf("order = %v, want [5 3 4]", order)
		}
	}
}

func TestBuildStandingsCustomScheme(t *testing.T) {
	members := []models.TeamGroup{member(1, "A"), member(2, "B")}
	matches := []models.TournamentMatch{finished(1, 2, 0, 0), finished(2, 1, 1, 0)}

	got := BuildStandings(members, matches, models.PointsScheme{Win: 2, Draw: 1, Loss: 1})
	if got[0].TeamID != 2 || got[0].Points != 3 {
		t.Fatalf("leader = %+v, want team 2 with 3 points", got[0])
	}
	if got[1].Points != 2 {
		t.Fatalf("second = %+v, want 2 points", got[1])
	}
}

func TestBuildStandingsIgnoresNonMembers(t *testing.T) {
	members := []models.TeamGroup{member(1, "A")}
	got := BuildStandings(members, []models.TournamentMatch{finished(1, 99, 2, 1)}, models.DefaultPointsScheme)
	if len(got) != 1 || got[0].Wins != 1 || got[0].Points != 3 {
		t.Fatalf("got %+v", got)
	}
}
