package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/u13-football/models"
	"github.com/Dosada05/u13-football/repositories"
	"github.com/google/uuid"
)

const defaultListingDays = 30

type MatchService interface {
	CreateMatch(ctx context.Context, p *Principal, input CreateMatchInput) (*models.GlobalMatch, error)
	GetMatch(ctx context.Context, p *Principal, id uuid.UUID) (*models.GlobalMatch, error)
	ListMatches(ctx context.Context, p *Principal, filter MatchListFilter, page Page) ([]models.GlobalMatch, error)
	UpdateMatch(ctx context.Context, p *Principal, id uuid.UUID, input UpdateMatchInput) (*models.GlobalMatch, error)
	DeleteMatch(ctx context.Context, p *Principal, id uuid.UUID) error
	Transition(ctx context.Context, p *Principal, id uuid.UUID, tr Transition, newDate *time.Time) (*models.GlobalMatch, error)

	ListLive(ctx context.Context, p *Principal) ([]models.GlobalMatch, error)
	ListUpcoming(ctx context.Context, p *Principal, days int, teamID *int) ([]models.GlobalMatch, error)
	ListRecent(ctx context.Context, p *Principal, days int, teamID *int) ([]models.GlobalMatch, error)
	Search(ctx context.Context, p *Principal, query string) ([]models.GlobalMatch, error)
	TeamSchedule(ctx context.Context, p *Principal, teamID int, status *models.MatchStatus) ([]models.GlobalMatch, error)
	TournamentSchedule(ctx context.Context, p *Principal, tournamentID uuid.UUID, status *models.MatchStatus) ([]models.GlobalMatch, error)
}

type CreateMatchInput struct {
	HomeTeamID          int              `json:"home_team_id" validate:"required,min=1"`
	AwayTeamID          int              `json:"away_team_id" validate:"required,min=1"`
	ScheduledDate       time.Time        `json:"scheduled_date" validate:"required"`
	VenueName           string           `json:"venue_name" validate:"max=200"`
	VenueAddress        string           `json:"venue_address"`
	FieldNumber         string           `json:"field_number" validate:"max=10"`
	MatchType           models.MatchType `json:"match_type" validate:"omitempty,oneof=group_stage knockout friendly final semi_final quarter_final third_place"`
	RefereeID           *int             `json:"referee_id" validate:"omitempty,min=1"`
	AssistantReferee1ID *int             `json:"assistant_referee_1_id" validate:"omitempty,min=1"`
	AssistantReferee2ID *int             `json:"assistant_referee_2_id" validate:"omitempty,min=1"`
	WeatherConditions   string           `json:"weather_conditions" validate:"max=100"`
	Attendance          *int             `json:"attendance" validate:"omitempty,min=0"`
	Notes               string           `json:"notes"`
	RoundNumber         *int             `json:"round_number" validate:"omitempty,min=1"`
}

// UpdateMatchInput: поля из первой группы у зеркала турнирного матча меняются
// только через турнир.
type UpdateMatchInput struct {
	ScheduledDate *time.Time          `json:"scheduled_date"`
	VenueName     *string             `json:"venue_name" validate:"omitempty,max=200"`
	Status        *models.MatchStatus `json:"status" validate:"omitempty,oneof=scheduled live half_time finished postponed cancelled"`
	HomeScore     *int                `json:"home_score" validate:"omitempty,min=0"`
	AwayScore     *int                `json:"away_score" validate:"omitempty,min=0"`
	RoundNumber   *int                `json:"round_number" validate:"omitempty,min=1"`

	VenueAddress        *string `json:"venue_address"`
	FieldNumber         *string `json:"field_number" validate:"omitempty,max=10"`
	HomeScoreHalfTime   *int    `json:"home_score_half_time" validate:"omitempty,min=0"`
	AwayScoreHalfTime   *int    `json:"away_score_half_time" validate:"omitempty,min=0"`
	HomeScoreExtraTime  *int    `json:"home_score_extra_time" validate:"omitempty,min=0"`
	AwayScoreExtraTime  *int    `json:"away_score_extra_time" validate:"omitempty,min=0"`
	HomeScorePenalties  *int    `json:"home_score_penalties" validate:"omitempty,min=0"`
	AwayScorePenalties  *int    `json:"away_score_penalties" validate:"omitempty,min=0"`
	RefereeID           *int    `json:"referee_id" validate:"omitempty,min=1"`
	AssistantReferee1ID *int    `json:"assistant_referee_1_id" validate:"omitempty,min=1"`
	AssistantReferee2ID *int    `json:"assistant_referee_2_id" validate:"omitempty,min=1"`
	WeatherConditions   *string `json:"weather_conditions" validate:"omitempty,max=100"`
	Attendance          *int    `json:"attendance" validate:"omitempty,min=0"`
	Notes               *string `json:"notes"`
}

func (in UpdateMatchInput) touchesMirroredFields() bool {
	return in.ScheduledDate != nil || in.VenueName != nil || in.Status != nil ||
		in.HomeScore != nil || in.AwayScore != nil || in.RoundNumber != nil
}

type MatchListFilter struct {
	Statuses     []models.MatchStatus
	TeamID       *int
	TournamentID *uuid.UUID
	Search       string
	Newest       bool
}

type matchService struct {
	txManager repositories.TxManager
	matchRepo repositories.GlobalMatchRepository
	teamRepo  repositories.TeamRepository
	roster    *rosterManager
	logger    *slog.Logger
	now       func() time.Time
}

func NewMatchService(
	txManager repositories.TxManager,
	matchRepo repositories.GlobalMatchRepository,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	lineupRepo repositories.LineupRepository,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		txManager: txManager,
		matchRepo: matchRepo,
		teamRepo:  teamRepo,
		roster:    newRosterManager(teamRepo, playerRepo, lineupRepo),
		logger:    logger,
		now:       time.Now,
	}
}

func (s *matchService) CreateMatch(ctx context.Context, p *Principal, input CreateMatchInput) (*models.GlobalMatch, error) {
	if err := validateInput(ctx, input); err != nil {
		return nil, err
	}
	if input.HomeTeamID == input.AwayTeamID {
		return nil, ErrSameTeams
	}
	home, err := s.getTeam(ctx, "home_team_id", input.HomeTeamID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(p, ActionCreateMatch, Target{Home: home}); err != nil {
		return nil, err
	}
	if _, err := s.getTeam(ctx, "away_team_id", input.AwayTeamID); err != nil {
		return nil, err
	}

	userID := p.UserID()
	m := &models.GlobalMatch{
		HomeTeamID:          input.HomeTeamID,
		AwayTeamID:          input.AwayTeamID,
		ScheduledDate:       input.ScheduledDate,
		VenueName:           strings.TrimSpace(input.VenueName),
		VenueAddress:        input.VenueAddress,
		FieldNumber:         strings.TrimSpace(input.FieldNumber),
		Status:              models.MatchScheduled,
		MatchType:           input.MatchType,
		RefereeID:           input.RefereeID,
		AssistantReferee1ID: input.AssistantReferee1ID,
		AssistantReferee2ID: input.AssistantReferee2ID,
		WeatherConditions:   input.WeatherConditions,
		Attendance:          input.Attendance,
		Notes:               input.Notes,
		RoundNumber:         intOr(input.RoundNumber, 1),
		CreatedBy:           &userID,
		LastUpdatedBy:       &userID,
	}
	if m.MatchType == "" {
		m.MatchType = models.MatchTypeFriendly
	}

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		if err := s.matchRepo.Create(ctx, exec, m); err != nil {
			return err
		}
		return s.roster.populateStarters(ctx, exec, m.ID, m.HomeTeamID, m.AwayTeamID)
	})
	if err != nil {
		return nil, mapMatchRepoError(err)
	}
	s.logger.InfoContext(ctx, "match created", slog.String("match_id", m.ID.String()), slog.Int("created_by", userID))
	return s.reload(ctx, m.ID)
}

func (s *matchService) GetMatch(ctx context.Context, p *Principal, id uuid.UUID) (*models.GlobalMatch, error) {
	return visibleGlobalMatch(ctx, s.matchRepo, p, id)
}

func (s *matchService) ListMatches(ctx context.Context, p *Principal, filter MatchListFilter, page Page) ([]models.GlobalMatch, error) {
	page = page.normalized()
	return s.list(ctx, p, repositories.ListGlobalMatchesFilter{
		Statuses:     filter.Statuses,
		TeamID:       filter.TeamID,
		TournamentID: filter.TournamentID,
		Search:       strings.TrimSpace(filter.Search),
		Newest:       filter.Newest,
		Limit:        page.Limit,
		Offset:       page.Offset,
	})
}

func (s *matchService) UpdateMatch(ctx context.Context, p *Principal, id uuid.UUID, input UpdateMatchInput) (*models.GlobalMatch, error) {
	m, err := s.changeableMatch(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := validateInput(ctx, input); err != nil {
		return nil, err
	}
	if m.TournamentID != nil && input.touchesMirroredFields() {
		return nil, ErrMirroredMatch
	}

	if input.ScheduledDate != nil {
		m.ScheduledDate = *input.ScheduledDate
	}
	m.VenueName = trimmedOr(input.VenueName, m.VenueName)
	if input.Status != nil && *input.Status != m.Status {
		if err := s.applyStatus(m, *input.Status); err != nil {
			return nil, err
		}
	}
	m.HomeScore = intOr(input.HomeScore, m.HomeScore)
	m.AwayScore = intOr(input.AwayScore, m.AwayScore)
	m.RoundNumber = intOr(input.RoundNumber, m.RoundNumber)

	if input.VenueAddress != nil {
		m.VenueAddress = *input.VenueAddress
	}
	m.FieldNumber = trimmedOr(input.FieldNumber, m.FieldNumber)
	m.HomeScoreHalfTime = intOr(input.HomeScoreHalfTime, m.HomeScoreHalfTime)
	m.AwayScoreHalfTime = intOr(input.AwayScoreHalfTime, m.AwayScoreHalfTime)
	if input.HomeScoreExtraTime != nil {
		m.HomeScoreExtraTime = input.HomeScoreExtraTime
	}
	if input.AwayScoreExtraTime != nil {
		m.AwayScoreExtraTime = input.AwayScoreExtraTime
	}
	if input.HomeScorePenalties != nil {
		m.HomeScorePenalties = input.HomeScorePenalties
	}
	if input.AwayScorePenalties != nil {
		m.AwayScorePenalties = input.AwayScorePenalties
	}
	if input.RefereeID != nil {
		m.RefereeID = input.RefereeID
	}
	if input.AssistantReferee1ID != nil {
		m.AssistantReferee1ID = input.AssistantReferee1ID
	}
	if input.AssistantReferee2ID != nil {
		m.AssistantReferee2ID = input.AssistantReferee2ID
	}
	if input.WeatherConditions != nil {
		m.WeatherConditions = *input.WeatherConditions
	}
	if input.Attendance != nil {
		m.Attendance = input.Attendance
	}
	if input.Notes != nil {
		m.Notes = *input.Notes
	}

	return s.save(ctx, p, m)
}

// applyStatus переводит матч в явно запрошенный статус через тот же автомат.
// half_time - промежуточное состояние live и доступно только из live.
func (s *matchService) applyStatus(m *models.GlobalMatch, target models.MatchStatus) error {
	if target == models.MatchHalfTime || (m.Status == models.MatchHalfTime && target == models.MatchLive) {
		if m.Status != models.MatchLive && m.Status != models.MatchHalfTime {
			return ErrStateConflict
		}
		m.Status = target
		return nil
	}
	tr, ok := transitionForStatus(target)
	if !ok {
		return ErrStateConflict
	}
	date := m.ScheduledDate
	return applyMatchTransition(m, tr, &date, s.now())
}

func (s *matchService) DeleteMatch(ctx context.Context, p *Principal, id uuid.UUID) error {
	m, err := s.changeableMatch(ctx, p, id)
	if err != nil {
		return err
	}
	if m.TournamentID != nil {
		return ErrMirroredMatch
	}
	if err := s.matchRepo.Delete(ctx, nil, id); err != nil {
		return mapMatchRepoError(err)
	}
	s.logger.InfoContext(ctx, "match deleted", slog.String("match_id", id.String()), slog.Int("user_id", p.UserID()))
	return nil
}

// Transition выполняет действие жизненного цикла (start, finish, postpone, cancel, reschedule).
func (s *matchService) Transition(ctx context.Context, p *Principal, id uuid.UUID, tr Transition, newDate *time.Time) (*models.GlobalMatch, error) {
	m, err := s.changeableMatch(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if m.TournamentID != nil {
		return nil, ErrMirroredMatch
	}
	from := m.Status
	if err := applyMatchTransition(m, tr, newDate, s.now()); err != nil {
		return nil, err
	}
	saved, err := s.save(ctx, p, m)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "match status changed",
		slog.String("match_id", id.String()),
		slog.String("from", string(from)),
		slog.String("to", string(saved.Status)),
	)
	return saved, nil
}

func (s *matchService) ListLive(ctx context.Context, p *Principal) ([]models.GlobalMatch, error) {
	return s.list(ctx, p, repositories.ListGlobalMatchesFilter{
		Statuses: []models.MatchStatus{models.MatchLive, models.MatchHalfTime},
	})
}

func (s *matchService) ListUpcoming(ctx context.Context, p *Principal, days int, teamID *int) ([]models.GlobalMatch, error) {
	now := s.now()
	to := now.AddDate(0, 0, listingDays(days))
	return s.list(ctx, p, repositories.ListGlobalMatchesFilter{
		Statuses: []models.MatchStatus{
			models.MatchScheduled, models.MatchLive, models.MatchHalfTime, models.MatchFinished, models.MatchPostponed,
		},
		TeamID: teamID,
		From:   &now,
		To:     &to,
	})
}

func (s *matchService) ListRecent(ctx context.Context, p *Principal, days int, teamID *int) ([]models.GlobalMatch, error) {
	now := s.now()
	from := now.AddDate(0, 0, -listingDays(days))
	return s.list(ctx, p, repositories.ListGlobalMatchesFilter{
		Statuses: []models.MatchStatus{models.MatchFinished, models.MatchCancelled, models.MatchPostponed},
		TeamID:   teamID,
		From:     &from,
		To:       &now,
		Newest:   true,
	})
}

func (s *matchService) Search(ctx context.Context, p *Principal, query string) ([]models.GlobalMatch, error) {
	return s.list(ctx, p, repositories.ListGlobalMatchesFilter{
		Search: strings.TrimSpace(query),
		Newest: true,
	})
}

func (s *matchService) TeamSchedule(ctx context.Context, p *Principal, teamID int, status *models.MatchStatus) ([]models.GlobalMatch, error) {
	return s.list(ctx, p, repositories.ListGlobalMatchesFilter{TeamID: &teamID, Statuses: statusList(status)})
}

func (s *matchService) TournamentSchedule(ctx context.Context, p *Principal, tournamentID uuid.UUID, status *models.MatchStatus) ([]models.GlobalMatch, error) {
	return s.list(ctx, p, repositories.ListGlobalMatchesFilter{TournamentID: &tournamentID, Statuses: statusList(status)})
}

func (s *matchService) list(ctx context.Context, p *Principal, filter repositories.ListGlobalMatchesFilter) ([]models.GlobalMatch, error) {
	filter.Scope = ResolveScope(p, FamilyGlobalMatch)
	matches, err := s.matchRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	for i := range matches {
		decorateMatch(&matches[i])
	}
	return matches, nil
}

func (s *matchService) save(ctx context.Context, p *Principal, m *models.GlobalMatch) (*models.GlobalMatch, error) {
	userID := p.UserID()
	m.LastUpdatedBy = &userID
	if err := s.matchRepo.Update(ctx, nil, m); err != nil {
		return nil, mapMatchRepoError(err)
	}
	decorateMatch(m)
	return m, nil
}

func (s *matchService) reload(ctx context.Context, id uuid.UUID) (*models.GlobalMatch, error) {
	m, err := s.matchRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapMatchRepoError(err)
	}
	decorateMatch(m)
	return m, nil
}

// changeableMatch: менять общий матч могут автор, админ или организатор турнира.
func (s *matchService) changeableMatch(ctx context.Context, p *Principal, id uuid.UUID) (*models.GlobalMatch, error) {
	m, err := visibleGlobalMatch(ctx, s.matchRepo, p, id)
	if err != nil {
		return nil, err
	}
	err = Authorize(p, ActionChangeMatch, Target{
		Home:        teamSide(m.HomeTeam),
		CreatorID:   m.CreatedBy,
		OrganizerID: m.OrganizerID,
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *matchService) getTeam(ctx context.Context, field string, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, fieldError(field, "team does not exist")
		}
		return nil, fmt.Errorf("failed to get team %d: %w", id, err)
	}
	return team, nil
}

// visibleGlobalMatch загружает общий матч и проверяет видимость.
func visibleGlobalMatch(ctx context.Context, repo repositories.GlobalMatchRepository, p *Principal, id uuid.UUID) (*models.GlobalMatch, error) {
	m, err := repo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrGlobalMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %s: %w", id, err)
	}
	keys := sideKeys(m.HomeTeam, m.AwayTeam)
	keys.OrganizerID = m.OrganizerID
	keys.CreatorID = m.CreatedBy
	if !visible(p, FamilyGlobalMatch, keys) {
		return nil, ErrMatchNotFound
	}
	decorateMatch(m)
	return m, nil
}

func decorateMatch(m *models.GlobalMatch) {
	m.WinnerID = m.Winner()
	m.DurationMinutes = m.Duration()
}

func listingDays(days int) int {
	if days <= 0 {
		return defaultListingDays
	}
	return days
}

func statusList(status *models.MatchStatus) []models.MatchStatus {
	if status == nil {
		return nil
	}
	return []models.MatchStatus{*status}
}

func mapMatchRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrGlobalMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrMatchSameTeams):
		return ErrSameTeams
	case errors.Is(err, repositories.ErrGlobalMatchTeam):
		return fieldError("home_team_id", "team does not exist")
	case errors.Is(err, repositories.ErrGlobalMatchReferee):
		return fieldError("referee_id", "referee does not exist")
	case errors.Is(err, repositories.ErrLineupDuplicate):
		return conflictField("player_id", err)
	}
	return fmt.Errorf("match storage error: %w", integrityError(err))
}
