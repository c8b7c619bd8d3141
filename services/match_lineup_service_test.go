package services

import (
	"context"
	"errors"
	"testing"
)

func (f *detailFixture) lineupService() LineupService {
	return NewLineupService(f.tx, f.matches, f.teams, f.players, f.lineups, discardLogger())
}

func TestSetLineupReplacesAndConserves(t *testing.T) {
	ctx := context.Background()
	f := newDetailFixture()
	if err := f.roster.populateStarters(ctx, nil, f.match.ID, 10, 20); err != nil {
		t.Fatal(err)
	}
	svc := f.lineupService()

	saved, err := svc.SetLineup(ctx, f.staff, f.match.ID, SetLineupInput{
		TeamID:      10,
		Starters:    []LineupEntryInput{{PlayerID: 1, Position: "FW", IsCaptain: true, MinutesPlayed: 60}},
		Substitutes: []LineupEntryInput{{PlayerID: 3, Position: "DF", MinutesPlayed: 15}},
	})
	if err != nil {
		t.Fatalf("SetLineup: %v", err)
	}
	if len(saved) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(saved))
	}
	for _, l := range saved {
		if l.PlayerID == 3 && l.IsStarter {
			t.Fatalf("substitute stored as starter")
		}
	}
	if f.players.players[1].MinutesPlayed != 60 || f.players.players[3].MinutesPlayed != 15 {
		t.Fatalf("career minutes not added")
	}
	away := 20
	if rows, _ := f.lineups.ListByMatch(ctx, nil, f.match.ID, &away); len(rows) != 1 {
		t.Fatalf("away lineup touched: %d rows", len(rows))
	}

	if _, err := svc.SetLineup(ctx, f.staff, f.match.ID, SetLineupInput{TeamID: 10}); err != nil {
		t.Fatalf("clearing lineup: %v", err)
	}
	if f.players.players[1].MinutesPlayed != 0 || f.players.players[3].MinutesPlayed != 0 {
		t.Fatalf("career minutes not removed with the lineup")
	}
}

func TestSetLineupRejections(t *testing.T) {
	ctx := context.Background()
	f := newDetailFixture()
	svc := f.lineupService()

	_, err := svc.SetLineup(ctx, f.staff, f.match.ID, SetLineupInput{
		TeamID:   10,
		Starters: []LineupEntryInput{{PlayerID: 21}},
	})
	if !errors.Is(err, ErrPlayerNotInTeam) {
		t.Fatalf("foreign player: expected ErrPlayerNotInTeam, got %v", err)
	}

	_, err = svc.SetLineup(ctx, f.staff, f.match.ID, SetLineupInput{
		TeamID:      10,
		Starters:    []LineupEntryInput{{PlayerID: 1}},
		Substitutes: []LineupEntryInput{{PlayerID: 1}},
	})
	var fe FieldErrors
	if !errors.As(err, &fe) || fe["player_id"] == "" {
		t.Fatalf("duplicate player: expected player_id field error, got %v", err)
	}

	_, err = svc.SetLineup(ctx, f.staff, f.match.ID, SetLineupInput{
		TeamID:   10,
		Starters: []LineupEntryInput{{PlayerID: 1, MinutesPlayed: 130}},
	})
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("minutes over 120: expected validation error, got %v", err)
	}
	if f.tx.calls != 0 {
		t.Fatalf("rejected lineups opened %d transactions", f.tx.calls)
	}
}

func TestUpdateLineupStatsKeepsOmittedFields(t *testing.T) {
	ctx := context.Background()
	f := newDetailFixture()
	svc := f.lineupService()

	saved, err := svc.SetLineup(ctx, f.staff, f.match.ID, SetLineupInput{
		TeamID:   10,
		Starters: []LineupEntryInput{{PlayerID: 1, MinutesPlayed: 60}},
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.UpdateLineupStats(ctx, f.staff, f.match.ID, saved[0].ID, LineupStatsInput{GoalsScored: intPtr(2)})
	if err != nil {
		t.Fatalf("UpdateLineupStats: %v", err)
	}
	if got.GoalsScored != 2 || got.MinutesPlayed != 60 {
		t.Fatalf("lineup = %+v", got.StatLine)
	}
	if career := f.players.players[1].StatLine; career.GoalsScored != 2 || career.MinutesPlayed != 60 {
		t.Fatalf("career = %+v", career)
	}
}

func TestBulkPlayerStats(t *testing.T) {
	ctx := context.Background()
	f := newDetailFixture()
	if err := f.roster.populateStarters(ctx, nil, f.match.ID, 10); err != nil {
		t.Fatal(err)
	}
	svc := f.lineupService()

	updated, err := svc.BulkPlayerStats(ctx, f.staff, f.match.ID, []PlayerStatsItem{
		{PlayerID: 1, TeamID: 10, LineupStatsInput: LineupStatsInput{GoalsScored: intPtr(1), MinutesPlayed: intPtr(70)}},
		{PlayerID: 2, TeamID: 10, LineupStatsInput: LineupStatsInput{Assists: intPtr(1)}},
	})
	if err != nil {
		t.Fatalf("BulkPlayerStats: %v", err)
	}
	if len(updated) != 2 {
		t.Fatalf("expected 2 updated rows, got %d", len(updated))
	}
	if f.players.players[1].GoalsScored != 1 || f.players.players[2].Assists != 1 {
		t.Fatalf("career not updated")
	}

	_, err = svc.BulkPlayerStats(ctx, f.staff, f.match.ID, []PlayerStatsItem{
		{PlayerID: 3, TeamID: 10, LineupStatsInput: LineupStatsInput{Assists: intPtr(1)}},
	})
	if !errors.Is(err, ErrLineupNotFound) {
		t.Fatalf("player without lineup: expected ErrLineupNotFound, got %v", err)
	}

	_, err = svc.BulkPlayerStats(ctx, f.staff, f.match.ID, []PlayerStatsItem{
		{PlayerID: 1, TeamID: 10, LineupStatsInput: LineupStatsInput{MinutesPlayed: intPtr(200)}},
	})
	var fe FieldErrors
	if !errors.As(err, &fe) || fe["players[0].minutes_played"] == "" {
		t.Fatalf("expected prefixed field error, got %v", err)
	}

	if _, err := svc.BulkPlayerStats(ctx, f.staff, f.match.ID, nil); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("empty payload: expected validation error, got %v", err)
	}
}

func TestCreateAndDeleteLineupEntry(t *testing.T) {
	ctx := context.Background()
	f := newDetailFixture()
	svc := f.lineupService()

	entry, err := svc.CreateLineup(ctx, f.staff, f.match.ID, CreateLineupInput{
		TeamID:           10,
		LineupEntryInput: LineupEntryInput{PlayerID: 3, Position: "DF", MinutesPlayed: 25},
	})
	if err != nil {
		t.Fatalf("CreateLineup: %v", err)
	}
	if entry.ID == 0 || entry.IsStarter {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if got := f.players.players[3].MinutesPlayed; got != 25 {
		t.Fatalf("career minutes = %d, want 25", got)
	}

	_, err = svc.CreateLineup(ctx, f.staff, f.match.ID, CreateLineupInput{
		TeamID:           10,
		LineupEntryInput: LineupEntryInput{PlayerID: 3},
	})
	var ie *IntegrityError
	if !errors.As(err, &ie) || ie.Field != "player_id" {
		t.Fatalf("duplicate entry: expected player_id integrity error, got %v", err)
	}

	if _, err := svc.UpdateLineupStats(ctx, f.staff, f.match.ID, entry.ID, LineupStatsInput{GoalsScored: intPtr(2)}); err != nil {
		t.Fatalf("UpdateLineupStats: %v", err)
	}
	if err := svc.DeleteLineup(ctx, f.staff, f.match.ID, entry.ID); err != nil {
		t.Fatalf("DeleteLineup: %v", err)
	}
	if !f.players.players[3].StatLine.IsZero() {
		t.Fatalf("career kept stats of removed entry: %+v", f.players.players[3].StatLine)
	}
	if _, ok := f.lineups.lineups[entry.ID]; ok {
		t.Fatalf("entry still stored")
	}
	if err := svc.DeleteLineup(ctx, f.staff, f.match.ID, entry.ID); !errors.Is(err, ErrLineupNotFound) {
		t.Fatalf("second delete: expected ErrLineupNotFound, got %v", err)
	}
}

func TestLineupEntryRejections(t *testing.T) {
	ctx := context.Background()
	f := newDetailFixture()
	if err := f.roster.populateStarters(ctx, nil, f.match.ID, 20); err != nil {
		t.Fatal(err)
	}
	svc := f.lineupService()

	_, err := svc.CreateLineup(ctx, f.staff, f.match.ID, CreateLineupInput{
		TeamID: 10, LineupEntryInput: LineupEntryInput{PlayerID: 21},
	})
	if !errors.Is(err, ErrPlayerNotInTeam) {
		t.Fatalf("foreign player: expected ErrPlayerNotInTeam, got %v", err)
	}
	_, err = svc.CreateLineup(ctx, f.staff, f.match.ID, CreateLineupInput{
		TeamID: 20, LineupEntryInput: LineupEntryInput{PlayerID: 21},
	})
	if !errors.Is(err, ErrNotClubOwner) {
		t.Fatalf("other side: expected ErrNotClubOwner, got %v", err)
	}

	away := 20
	rows, _ := f.lineups.ListByMatch(ctx, nil, f.match.ID, &away)
	if len(rows) != 1 {
		t.Fatalf("expected one away row, got %d", len(rows))
	}
	if err := svc.DeleteLineup(ctx, f.staff, f.match.ID, rows[0].ID); !errors.Is(err, ErrNotClubOwner) {
		t.Fatalf("deleting other side: expected ErrNotClubOwner, got %v", err)
	}
	if _, ok := f.lineups.lineups[rows[0].ID]; !ok {
		t.Fatalf("away entry was deleted")
	}
}
