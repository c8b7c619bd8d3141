package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/u13-football/models"
	"github.com/google/uuid"
)

type detailFixture struct {
	*rosterFixture
	tx      *fakeTx
	matches *fakeGlobalMatchRepo
	events  *fakeEventRepo
	match   *models.GlobalMatch
	staff   *Principal
}

func newDetailFixture() *detailFixture {
	f := &detailFixture{
		rosterFixture: newRosterFixture(),
		tx:            &fakeTx{},
		matches:       newFakeGlobalMatchRepo(),
		events:        newFakeEventRepo(),
	}
	home := &models.Team{ID: 10, ClubID: 100, ClubOwnerID: intPtr(2), CoachID: intPtr(3)}
	away := &models.Team{ID: 20, ClubID: 200, ClubOwnerID: intPtr(9)}
	f.teams.teams[10], f.teams.teams[20] = home, away

	f.match = &models.GlobalMatch{
		ID: uuid.New(), HomeTeamID: 10, AwayTeamID: 20, HomeTeam: home, AwayTeam: away,
		Status: models.MatchLive, MatchType: models.MatchTypeFriendly,
	}
	f.matches.matches[f.match.ID] = f.match

	f.staff = principalFor(2, models.RoleStaff)
	f.staff.OwnedClubIDs = []int{100}

	f.addPlayer(1, 10, true, true)
	f.addPlayer(2, 10, true, true)
	f.addPlayer(3, 10, false, true)
	f.addPlayer(21, 20, true, true)
	return f
}

func (f *detailFixture) eventService() MatchEventService {
	return NewMatchEventService(f.tx, f.matches, f.events, f.teams, f.players, f.lineups, discardLogger())
}

func TestMatchEventLifecycleKeepsTotalsConsistent(t *testing.T) {
	ctx := context.Background()
	f := newDetailFixture()
	if err := f.roster.populateStarters(ctx, nil, f.match.ID, 10, 20); err != nil {
		t.Fatal(err)
	}
	svc := f.eventService()

	event, err := svc.CreateEvent(ctx, f.staff, f.match.ID, CreateEventInput{
		TeamID: 10, PlayerID: 1, EventType: models.EventGoal, Minute: 12, AssistPlayerID: intPtr(2),
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if event.CreatedBy == nil || *event.CreatedBy != 2 {
		t.Fatalf("created_by = %v", event.CreatedBy)
	}
	scorer, assist := f.players.players[1], f.players.players[2]
	if scorer.GoalsScored != 1 || assist.Assists != 1 {
		t.Fatalf("after goal: scorer %+v assist %+v", scorer.StatLine, assist.StatLine)
	}

	card := models.EventYellowCard
	if _, err := svc.UpdateEvent(ctx, f.staff, f.match.ID, event.ID, UpdateEventInput{EventType: &card}); err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}
	if scorer.GoalsScored != 0 || scorer.YellowCards != 1 || assist.Assists != 0 {
		t.Fatalf("after retype: scorer %+v assist %+v", scorer.StatLine, assist.StatLine)
	}
	line, _ := f.lineups.GetByMatchTeamPlayerForUpdate(ctx, nil, f.match.ID, 10, 1)
	if line.GoalsScored != 0 || line.YellowCards != 1 {
		t.Fatalf("lineup after retype: %+v", line.StatLine)
	}

	if err := svc.DeleteEvent(ctx, f.staff, f.match.ID, event.ID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if !scorer.StatLine.IsZero() || !assist.StatLine.IsZero() {
		t.Fatalf("after delete: scorer %+v assist %+v", scorer.StatLine, assist.StatLine)
	}
	if events, _ := svc.ListEvents(ctx, f.staff, f.match.ID); len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
}

func TestCreateEventRejections(t *testing.T) {
	ctx := context.Background()
	f := newDetailFixture()
	svc := f.eventService()

	outsider := principalFor(7, models.RoleStaff)
	outsider.OwnedClubIDs = []int{500}

	tests := []struct {
		name    string
		p       *Principal
		input   CreateEventInput
		wantErr error
	}{
		{
			name:    "team not in match",
			p:       f.staff,
			input:   CreateEventInput{TeamID: 30, PlayerID: 1, EventType: models.EventGoal, Minute: 5},
			wantErr: ErrTeamNotInMatch,
		},
		{
			name:    "other side",
			p:       f.staff,
			input:   CreateEventInput{TeamID: 20, PlayerID: 21, EventType: models.EventGoal, Minute: 5},
			wantErr: ErrNotClubOwner,
		},
		{
			name:    "minute out of range",
			p:       f.staff,
			input:   CreateEventInput{TeamID: 10, PlayerID: 1, EventType: models.EventGoal, Minute: 121},
			wantErr: ErrValidationFailed,
		},
		{
			name:    "unknown event type",
			p:       f.staff,
			input:   CreateEventInput{TeamID: 10, PlayerID: 1, EventType: "corner", Minute: 5},
			wantErr: ErrValidationFailed,
		},
		{
			name:    "player of the other team",
			p:       f.staff,
			input:   CreateEventInput{TeamID: 10, PlayerID: 21, EventType: models.EventRedCard, Minute: 5},
			wantErr: ErrValidationFailed,
		},
		{
			name:    "unknown player",
			p:       f.staff,
			input:   CreateEventInput{TeamID: 10, PlayerID: 99, EventType: models.EventYellowCard, Minute: 5},
			wantErr: ErrValidationFailed,
		},
		{
			name:    "assist by the other team",
			p:       f.staff,
			input:   CreateEventInput{TeamID: 10, PlayerID: 1, EventType: models.EventGoal, Minute: 5, AssistPlayerID: intPtr(21)},
			wantErr: ErrValidationFailed,
		},
		{
			name:    "self assist",
			p:       f.staff,
			input:   CreateEventInput{TeamID: 10, PlayerID: 1, EventType: models.EventGoal, Minute: 5, AssistPlayerID: intPtr(1)},
			wantErr: ErrValidationFailed,
		},
		{
			name:    "invisible match",
			p:       outsider,
			input:   CreateEventInput{TeamID: 10, PlayerID: 1, EventType: models.EventGoal, Minute: 5},
			wantErr: ErrMatchNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateEvent(ctx, tt.p, f.match.ID, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
	if len(f.events.events) != 0 {
		t.Fatalf("rejected events were stored: %d", len(f.events.events))
	}
}

func TestDeleteEventOfAnotherMatch(t *testing.T) {
	ctx := context.Background()
	f := newDetailFixture()
	svc := f.eventService()

	foreign := &models.MatchEvent{MatchID: uuid.New(), TeamID: 10, PlayerID: 1, EventType: models.EventGoal, Minute: 3}
	if err := f.events.Create(ctx, nil, foreign); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteEvent(ctx, f.staff, f.match.ID, foreign.ID); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
	if _, ok := f.events.events[foreign.ID]; !ok {
		t.Fatalf("event of another match was deleted")
	}
}

func TestEventDoesNotTouchOpponentLineup(t *testing.T) {
	ctx := context.Background()
	f := newDetailFixture()
	if err := f.roster.populateStarters(ctx, nil, f.match.ID, 10, 20); err != nil {
		t.Fatal(err)
	}
	svc := f.eventService()

	_, err := svc.CreateEvent(ctx, f.staff, f.match.ID, CreateEventInput{
		TeamID: 10, PlayerID: 21, EventType: models.EventRedCard, Minute: 40,
	})
	var fe FieldErrors
	if !errors.As(err, &fe) || fe["player_id"] == "" {
		t.Fatalf("expected player_id field error, got %v", err)
	}

	if opponent := f.players.players[21]; !opponent.StatLine.IsZero() {
		t.Fatalf("opponent career changed: %+v", opponent.StatLine)
	}
	line, err := f.lineups.GetByMatchTeamPlayerForUpdate(ctx, nil, f.match.ID, 20, 21)
	if err != nil {
		t.Fatal(err)
	}
	if !line.StatLine.IsZero() {
		t.Fatalf("opponent lineup changed: %+v", line.StatLine)
	}
	if len(f.events.events) != 0 {
		t.Fatalf("rejected event was stored")
	}
}

func TestUpdateEventRejectsForeignPlayer(t *testing.T) {
	ctx := context.Background()
	f := newDetailFixture()
	if err := f.roster.populateStarters(ctx, nil, f.match.ID, 10, 20); err != nil {
		t.Fatal(err)
	}
	svc := f.eventService()

	event, err := svc.CreateEvent(ctx, f.staff, f.match.ID, CreateEventInput{
		TeamID: 10, PlayerID: 1, EventType: models.EventYellowCard, Minute: 10,
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	foreign := 21
	if _, err := svc.UpdateEvent(ctx, f.staff, f.match.ID, event.ID, UpdateEventInput{PlayerID: &foreign}); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
	if got := f.players.players[1].YellowCards; got != 1 {
		t.Fatalf("original contribution lost: yellow cards = %d", got)
	}
	if !f.players.players[21].StatLine.IsZero() {
		t.Fatalf("opponent career changed: %+v", f.players.players[21].StatLine)
	}
}
