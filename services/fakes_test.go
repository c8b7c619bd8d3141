package services

import (
	"context"
	"io"
	"log/slog"
	"sort"

	"github.com/Dosada05/u13-football/models"
	"github.com/Dosada05/u13-football/repositories"
	"github.com/google/uuid"
)

// Фейковые репозитории хранят данные в памяти. Встроенный интерфейс закрывает
// методы, которые тесты не вызывают.

func intPtr(v int) *int { return &v }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTx struct {
	calls int
}

func (f *fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context, exec repositories.SQLExecutor) error) error {
	f.calls++
	return fn(ctx, nil)
}

type fakeTeamRepo struct {
	repositories.TeamRepository
	teams  map[int]*models.Team
	locked []int
}

func (f *fakeTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	t, ok := f.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTeamRepo) LockForUpdate(_ context.Context, _ repositories.SQLExecutor, id int) error {
	if _, ok := f.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	f.locked = append(f.locked, id)
	return nil
}

type fakePlayerRepo struct {
	repositories.PlayerRepository
	players map[int]*models.Player
}

func (f *fakePlayerRepo) GetByID(_ context.Context, id int) (*models.Player, error) {
	p, ok := f.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePlayerRepo) sorted(match func(*models.Player) bool) []models.Player {
	out := make([]models.Player, 0)
	for _, p := range f.players {
		if match(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JerseyNumber < out[j].JerseyNumber })
	return out
}

func (f *fakePlayerRepo) List(_ context.Context, filter repositories.ListPlayersFilter) ([]models.Player, error) {
	return f.sorted(func(p *models.Player) bool {
		return filter.TeamID == nil || p.TeamID == *filter.TeamID
	}), nil
}

func (f *fakePlayerRepo) CountActiveMain(_ context.Context, _ repositories.SQLExecutor, teamID, excludeID int) (int, error) {
	return len(f.sorted(func(p *models.Player) bool {
		return p.TeamID == teamID && p.IsMainPlayer && p.IsActive && p.ID != excludeID
	})), nil
}

func (f *fakePlayerRepo) ListActiveMain(_ context.Context, _ repositories.SQLExecutor, teamID int) ([]models.Player, error) {
	return f.sorted(func(p *models.Player) bool {
		return p.TeamID == teamID && p.IsMainPlayer && p.IsActive
	}), nil
}

func (f *fakePlayerRepo) ApplyStatDelta(_ context.Context, _ repositories.SQLExecutor, playerID int, delta models.StatLine) error {
	if p, ok := f.players[playerID]; ok {
		p.StatLine = p.StatLine.Add(delta).FloorZero()
	}
	return nil
}

type fakeLineupRepo struct {
	repositories.LineupRepository
	nextID  int
	lineups map[int]*models.MatchLineup
}

func newFakeLineupRepo() *fakeLineupRepo {
	return &fakeLineupRepo{lineups: map[int]*models.MatchLineup{}}
}

func (f *fakeLineupRepo) CreateBatch(_ context.Context, _ repositories.SQLExecutor, lineups []models.MatchLineup) error {
	for i := range lineups {
		for _, l := range f.lineups {
			if l.MatchID == lineups[i].MatchID && l.TeamID == lineups[i].TeamID && l.PlayerID == lineups[i].PlayerID {
				return repositories.ErrLineupDuplicate
			}
		}
		f.nextID++
		lineups[i].ID = f.nextID
		cp := lineups[i]
		f.lineups[cp.ID] = &cp
	}
	return nil
}

func (f *fakeLineupRepo) GetByID(_ context.Context, id int) (*models.MatchLineup, error) {
	l, ok := f.lineups[id]
	if !ok {
		return nil, repositories.ErrLineupNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeLineupRepo) GetForUpdate(ctx context.Context, _ repositories.SQLExecutor, id int) (*models.MatchLineup, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeLineupRepo) GetByMatchTeamPlayerForUpdate(_ context.Context, _ repositories.SQLExecutor, matchID uuid.UUID, teamID, playerID int) (*models.MatchLineup, error) {
	for _, l := range f.lineups {
		if l.MatchID == matchID && l.TeamID == teamID && l.PlayerID == playerID {
			cp := *l
			return &cp, nil
		}
	}
	return nil, repositories.ErrLineupNotFound
}

func (f *fakeLineupRepo) ListByMatch(_ context.Context, _ repositories.SQLExecutor, matchID uuid.UUID, teamID *int) ([]models.MatchLineup, error) {
	out := make([]models.MatchLineup, 0)
	for _, l := range f.lineups {
		if l.MatchID == matchID && (teamID == nil || l.TeamID == *teamID) {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeLineupRepo) Update(_ context.Context, _ repositories.SQLExecutor, l *models.MatchLineup) error {
	if _, ok := f.lineups[l.ID]; !ok {
		return repositories.ErrLineupNotFound
	}
	cp := *l
	f.lineups[l.ID] = &cp
	return nil
}

func (f *fakeLineupRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	if _, ok := f.lineups[id]; !ok {
		return repositories.ErrLineupNotFound
	}
	delete(f.lineups, id)
	return nil
}

func (f *fakeLineupRepo) DeleteByMatchTeam(_ context.Context, _ repositories.SQLExecutor, matchID uuid.UUID, teamID int) error {
	for id, l := range f.lineups {
		if l.MatchID == matchID && l.TeamID == teamID {
			delete(f.lineups, id)
		}
	}
	return nil
}

type fakeEventRepo struct {
	nextID int
	events map[int]*models.MatchEvent
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: map[int]*models.MatchEvent{}}
}

func (f *fakeEventRepo) Create(_ context.Context, _ repositories.SQLExecutor, e *models.MatchEvent) error {
	f.nextID++
	e.ID = f.nextID
	cp := *e
	f.events[e.ID] = &cp
	return nil
}

func (f *fakeEventRepo) GetForUpdate(_ context.Context, _ repositories.SQLExecutor, id int) (*models.MatchEvent, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, repositories.ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEventRepo) ListByMatch(_ context.Context, matchID uuid.UUID) ([]models.MatchEvent, error) {
	out := make([]models.MatchEvent, 0)
	for _, e := range f.events {
		if e.MatchID == matchID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeEventRepo) Update(_ context.Context, _ repositories.SQLExecutor, e *models.MatchEvent) error {
	if _, ok := f.events[e.ID]; !ok {
		return repositories.ErrEventNotFound
	}
	cp := *e
	f.events[e.ID] = &cp
	return nil
}

func (f *fakeEventRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	if _, ok := f.events[id]; !ok {
		return repositories.ErrEventNotFound
	}
	delete(f.events, id)
	return nil
}

type fakeGlobalMatchRepo struct {
	repositories.GlobalMatchRepository
	matches map[uuid.UUID]*models.GlobalMatch
	upserts int
}

func newFakeGlobalMatchRepo() *fakeGlobalMatchRepo {
	return &fakeGlobalMatchRepo{matches: map[uuid.UUID]*models.GlobalMatch{}}
}

func (f *fakeGlobalMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, m *models.GlobalMatch) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	cp := *m
	f.matches[m.ID] = &cp
	return nil
}

// UpsertMirror перезаписывает только зеркалируемые поля, как и SQL-версия.
func (f *fakeGlobalMatchRepo) UpsertMirror(_ context.Context, _ repositories.SQLExecutor, m *models.GlobalMatch) error {
	f.upserts++
	existing, ok := f.matches[m.ID]
	if !ok {
		cp := *m
		f.matches[m.ID] = &cp
		return nil
	}
	existing.TournamentID = m.TournamentID
	existing.PhaseID = m.PhaseID
	existing.GroupID = m.GroupID
	existing.HomeTeamID = m.HomeTeamID
	existing.AwayTeamID = m.AwayTeamID
	existing.ScheduledDate = m.ScheduledDate
	existing.VenueName = m.VenueName
	existing.Status = m.Status
	existing.MatchType = m.MatchType
	existing.HomeScore = m.HomeScore
	existing.AwayScore = m.AwayScore
	existing.RoundNumber = m.RoundNumber
	return nil
}

func (f *fakeGlobalMatchRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID) (*models.GlobalMatch, error) {
	m, ok := f.matches[id]
	if !ok {
		return nil, repositories.ErrGlobalMatchNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeGlobalMatchRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID) error {
	if _, ok := f.matches[id]; !ok {
		return repositories.ErrGlobalMatchNotFound
	}
	delete(f.matches, id)
	return nil
}

type fakeTournamentRepo struct {
	repositories.TournamentRepository
	tournaments map[uuid.UUID]*models.Tournament
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: map[uuid.UUID]*models.Tournament{}}
}

func (f *fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	cp := *t
	f.tournaments[t.ID] = &cp
	return nil
}

func (f *fakeTournamentRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Tournament, error) {
	t, ok := f.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTournamentRepo) Update(_ context.Context, t *models.Tournament) error {
	if _, ok := f.tournaments[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	cp := *t
	f.tournaments[t.ID] = &cp
	return nil
}

type fakeGroupRepo struct {
	repositories.GroupRepository
	groups []models.TournamentGroup
}

func (f *fakeGroupRepo) ListByTournament(_ context.Context, tournamentID uuid.UUID) ([]models.TournamentGroup, error) {
	out := make([]models.TournamentGroup, 0)
	for _, g := range f.groups {
		if g.TournamentID == tournamentID {
			out = append(out, g)
		}
	}
	return out, nil
}
