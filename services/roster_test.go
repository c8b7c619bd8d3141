package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/u13-football/models"
	"github.com/google/uuid"
)

type rosterFixture struct {
	teams   *fakeTeamRepo
	players *fakePlayerRepo
	lineups *fakeLineupRepo
	roster  *rosterManager
}

func newRosterFixture() *rosterFixture {
	f := &rosterFixture{
		teams:   &fakeTeamRepo{teams: map[int]*models.Team{10: {ID: 10}, 20: {ID: 20}}},
		players: &fakePlayerRepo{players: map[int]*models.Player{}},
		lineups: newFakeLineupRepo(),
	}
	f.roster = newRosterManager(f.teams, f.players, f.lineups)
	return f
}

func (f *rosterFixture) addPlayer(id, teamID int, main, active bool) *models.Player {
	p := &models.Player{ID: id, TeamID: teamID, JerseyNumber: id, IsMainPlayer: main, IsActive: active, Position: "MF"}
	f.players.players[id] = p
	return p
}

func TestEnsureMainSlot(t *testing.T) {
	ctx := context.Background()
	f := newRosterFixture()
	for i := 1; i <= models.MaxMainPlayers; i++ {
		f.addPlayer(i, 10, true, true)
	}
	f.addPlayer(50, 10, true, false)
	f.addPlayer(51, 10, false, true)

	if err := f.roster.ensureMainSlot(ctx, nil, 10, 0); !errors.Is(err, ErrMainPlayerLimit) {
		t.Fatalf("twelfth main player: expected ErrMainPlayerLimit, got %v", err)
	}
	if err := f.roster.ensureMainSlot(ctx, nil, 10, 3); err != nil {
		t.Fatalf("re-saving an existing main player should pass: %v", err)
	}
	if err := f.roster.ensureMainSlot(ctx, nil, 20, 0); err != nil {
		t.Fatalf("empty team: %v", err)
	}
	if err := f.roster.ensureMainSlot(ctx, nil, 99, 0); !errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("unknown team: expected ErrTeamNotFound, got %v", err)
	}
	if len(f.teams.locked) == 0 || f.teams.locked[0] != 10 {
		t.Fatalf("team row was not locked: %v", f.teams.locked)
	}
}

func TestPopulateStarters(t *testing.T) {
	ctx := context.Background()
	f := newRosterFixture()
	captain := f.addPlayer(1, 10, true, true)
	captain.IsCaptain = true
	f.addPlayer(2, 10, true, true)
	f.addPlayer(3, 10, false, true)
	f.addPlayer(4, 10, true, false)
	f.addPlayer(5, 20, true, true)

	matchID := uuid.New()
	if err := f.roster.populateStarters(ctx, nil, matchID, 10, 20); err != nil {
		t.Fatalf("populateStarters: %v", err)
	}

	rows, _ := f.lineups.ListByMatch(ctx, nil, matchID, nil)
	if len(rows) != 3 {
		t.Fatalf("expected 3 starters, got %d", len(rows))
	}
	for _, l := range rows {
		if !l.IsStarter || l.MinutesPlayed != 0 {
			t.Fatalf("unexpected lineup row %+v", l)
		}
		if l.PlayerID == 1 && !l.IsCaptain {
			t.Fatalf("captain flag not copied")
		}
		if l.Position != "MF" {
			t.Fatalf("position not copied: %q", l.Position)
		}
	}
}

func TestSetLineupStatsConservesCareerTotals(t *testing.T) {
	ctx := context.Background()
	f := newRosterFixture()
	p := f.addPlayer(1, 10, true, true)
	p.StatLine = models.StatLine{GoalsScored: 5, MinutesPlayed: 300}

	matchID := uuid.New()
	rows := []models.MatchLineup{{MatchID: matchID, TeamID: 10, PlayerID: 1, StatLine: models.StatLine{GoalsScored: 1, MinutesPlayed: 60}}}
	if err := f.lineups.CreateBatch(ctx, nil, rows); err != nil {
		t.Fatal(err)
	}
	lineupID := rows[0].ID

	rating := 7.5
	got, err := f.roster.setLineupStats(ctx, nil, lineupID, models.StatLine{GoalsScored: 3, MinutesPlayed: 70}, &rating)
	if err != nil {
		t.Fatalf("setLineupStats: %v", err)
	}
	if got.GoalsScored != 3 || got.Rating == nil || *got.Rating != 7.5 {
		t.Fatalf("lineup = %+v", got)
	}
	if p.GoalsScored != 7 || p.MinutesPlayed != 310 {
		t.Fatalf("career = %+v, want goals 7 minutes 310", p.StatLine)
	}

	if _, err := f.roster.setLineupStats(ctx, nil, lineupID, models.StatLine{}, nil); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if p.GoalsScored != 4 || p.MinutesPlayed != 240 {
		t.Fatalf("career after reset = %+v, want goals 4 minutes 240", p.StatLine)
	}

	if _, err := f.roster.setLineupStats(ctx, nil, 999, models.StatLine{}, nil); !errors.Is(err, ErrLineupNotFound) {
		t.Fatalf("expected ErrLineupNotFound, got %v", err)
	}
}

func TestReplaceLineupMovesStatsOutAndIn(t *testing.T) {
	ctx := context.Background()
	f := newRosterFixture()
	old := f.addPlayer(1, 10, true, true)
	old.StatLine = models.StatLine{GoalsScored: 2, MinutesPlayed: 100}
	fresh := f.addPlayer(2, 10, false, true)

	matchID := uuid.New()
	if err := f.lineups.CreateBatch(ctx, nil, []models.MatchLineup{
		{MatchID: matchID, TeamID: 10, PlayerID: 1, IsStarter: true, StatLine: models.StatLine{GoalsScored: 2, MinutesPlayed: 60}},
		{MatchID: matchID, TeamID: 20, PlayerID: 99, IsStarter: true},
	}); err != nil {
		t.Fatal(err)
	}

	next := []models.MatchLineup{{MatchID: matchID, TeamID: 10, PlayerID: 2, IsStarter: true, StatLine: models.StatLine{MinutesPlayed: 45}}}
	if err := f.roster.replaceLineup(ctx, nil, matchID, 10, next); err != nil {
		t.Fatalf("replaceLineup: %v", err)
	}

	if old.GoalsScored != 0 || old.MinutesPlayed != 40 {
		t.Fatalf("removed player career = %+v", old.StatLine)
	}
	if fresh.MinutesPlayed != 45 {
		t.Fatalf("added player minutes = %d, want 45", fresh.MinutesPlayed)
	}
	team := 10
	rows, _ := f.lineups.ListByMatch(ctx, nil, matchID, &team)
	if len(rows) != 1 || rows[0].PlayerID != 2 {
		t.Fatalf("lineup of team 10 = %+v", rows)
	}
	other := 20
	if rows, _ := f.lineups.ListByMatch(ctx, nil, matchID, &other); len(rows) != 1 {
		t.Fatalf("other team lineup must stay untouched, got %d rows", len(rows))
	}
}

func TestApplyEventAndReversal(t *testing.T) {
	ctx := context.Background()
	f := newRosterFixture()
	scorer := f.addPlayer(1, 10, true, true)
	assist := f.addPlayer(2, 10, true, true)
	matchID := uuid.New()
	if err := f.roster.populateStarters(ctx, nil, matchID, 10); err != nil {
		t.Fatal(err)
	}

	goal := &models.MatchEvent{MatchID: matchID, TeamID: 10, PlayerID: 1, EventType: models.EventGoal, AssistPlayerID: intPtr(2)}
	if err := f.roster.applyEvent(ctx, nil, goal, 1); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if scorer.GoalsScored != 1 || assist.Assists != 1 {
		t.Fatalf("career after goal: scorer %+v assist %+v", scorer.StatLine, assist.StatLine)
	}
	line, _ := f.lineups.GetByMatchTeamPlayerForUpdate(ctx, nil, matchID, 10, 1)
	if line.GoalsScored != 1 {
		t.Fatalf("lineup goals = %d", line.GoalsScored)
	}
	assistLine, _ := f.lineups.GetByMatchTeamPlayerForUpdate(ctx, nil, matchID, 10, 2)
	if assistLine.Assists != 1 || assistLine.GoalsScored != 0 {
		t.Fatalf("assist lineup = %+v", assistLine.StatLine)
	}

	if err := f.roster.applyEvent(ctx, nil, goal, -1); err != nil {
		t.Fatalf("reverse: %v", err)
	}
	if !scorer.StatLine.IsZero() || !assist.StatLine.IsZero() {
		t.Fatalf("reversal left residue: scorer %+v assist %+v", scorer.StatLine, assist.StatLine)
	}
}

func TestApplyEventWithoutLineupIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newRosterFixture()
	p := f.addPlayer(1, 10, false, true)

	card := &models.MatchEvent{MatchID: uuid.New(), TeamID: 10, PlayerID: 1, EventType: models.EventYellowCard}
	if err := f.roster.applyEvent(ctx, nil, card, 1); err != nil {
		t.Fatalf("expected silent skip, got %v", err)
	}
	if p.YellowCards != 0 {
		t.Fatalf("career changed without a lineup row: %+v", p.StatLine)
	}
}

func TestOwnGoalAndSubstitutionContributeNothing(t *testing.T) {
	for _, et := range []models.EventType{models.EventOwnGoal, models.EventSubstitution, models.EventInjury, models.EventTimeout} {
		e := &models.MatchEvent{EventType: et, AssistPlayerID: intPtr(2)}
		if !e.Contribution().IsZero() {
			t.Fatalf("%s contributes %+v", et, e.Contribution())
		}
		if _, _, ok := e.AssistContribution(); ok {
			t.Fatalf("%s credits an assist", et)
		}
	}
}

func TestAssistOnlyForScoringEvents(t *testing.T) {
	ctx := context.Background()
	f := newRosterFixture()
	f.addPlayer(1, 10, true, true)
	assist := f.addPlayer(2, 10, true, true)
	matchID := uuid.New()
	if err := f.roster.populateStarters(ctx, nil, matchID, 10); err != nil {
		t.Fatal(err)
	}

	for _, et := range []models.EventType{models.EventOwnGoal, models.EventYellowCard, models.EventSubstitution} {
		e := &models.MatchEvent{MatchID: matchID, TeamID: 10, PlayerID: 1, EventType: et, AssistPlayerID: intPtr(2)}
		if err := f.roster.applyEvent(ctx, nil, e, 1); err != nil {
			t.Fatalf("%s: %v", et, err)
		}
	}
	if assist.Assists != 0 {
		t.Fatalf("assist credited for a non-scoring event: %d", assist.Assists)
	}

	penalty := &models.MatchEvent{MatchID: matchID, TeamID: 10, PlayerID: 1, EventType: models.EventPenaltyGoal, AssistPlayerID: intPtr(2)}
	if err := f.roster.applyEvent(ctx, nil, penalty, 1); err != nil {
		t.Fatal(err)
	}
	if assist.Assists != 1 {
		t.Fatalf("penalty assist = %d, want 1", assist.Assists)
	}
}
