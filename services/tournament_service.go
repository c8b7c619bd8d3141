package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/u13-football/models"
	"github.com/Dosada05/u13-football/repositories"
	"github.com/Dosada05/u13-football/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type TournamentService interface {
	CreateTournament(ctx context.Context, p *Principal, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, p *Principal, id uuid.UUID) (*models.Tournament, error)
	ListTournaments(ctx context.Context, p *Principal, filter TournamentListFilter, page Page) ([]models.Tournament, error)
	ListOpenTournaments(ctx context.Context, page Page) ([]models.Tournament, error)
	UpdateTournament(ctx context.Context, p *Principal, id uuid.UUID, input UpdateTournamentInput) (*models.Tournament, error)
	DeleteTournament(ctx context.Context, p *Principal, id uuid.UUID) error
	UploadLogo(ctx context.Context, p *Principal, id uuid.UUID, file io.Reader, contentType string) (*models.Tournament, error)

	StartTournament(ctx context.Context, p *Principal, id uuid.UUID) (*models.Tournament, error)
	FinishTournament(ctx context.Context, p *Principal, id uuid.UUID) (*models.Tournament, error)
	CancelTournament(ctx context.Context, p *Principal, id uuid.UUID) (*models.Tournament, error)

	ListTeams(ctx context.Context, p *Principal, id uuid.UUID) ([]models.Team, error)
	GetStandings(ctx context.Context, p *Principal, id uuid.UUID) ([]GroupStandings, error)
	GetStats(ctx context.Context, p *Principal, id uuid.UUID) (*models.TournamentStats, error)
}

type CreateTournamentInput struct {
	Name                 string                `json:"name" validate:"required,max=200"`
	Description          string                `json:"description"`
	TournamentType       models.TournamentType `json:"tournament_type" validate:"omitempty,oneof=league group_knockout"`
	Format               string                `json:"format" validate:"max=20"`
	StartDate            time.Time             `json:"start_date" validate:"required"`
	EndDate              time.Time             `json:"end_date" validate:"required"`
	Location             string                `json:"location" validate:"required,max=200"`
	VenueAddress         string                `json:"venue_address"`
	MaxTeams             *int                  `json:"max_teams" validate:"omitempty,min=4,max=64"`
	NumberOfGroups       *int                  `json:"number_of_groups" validate:"omitempty,min=1,max=16"`
	TeamsQualifyPerGroup *int                  `json:"teams_qualify_per_group" validate:"omitempty,min=1,max=8"`
	Rules                string                `json:"rules"`
	PrizeDescription     string                `json:"prize_description"`
	MatchDuration        *int                  `json:"match_duration" validate:"omitempty,min=10,max=120"`
	HalfTimeDuration     *int                  `json:"half_time_duration" validate:"omitempty,min=0,max=30"`
	PointsPerWin         *int                  `json:"points_per_win" validate:"omitempty,min=0"`
	PointsPerDraw        *int                  `json:"points_per_draw" validate:"omitempty,min=0"`
	PointsPerLoss        *int                  `json:"points_per_loss" validate:"omitempty,min=0"`
	IsPublic             *bool                 `json:"is_public"`
	RegistrationOpen     *bool                 `json:"registration_open"`
}

type UpdateTournamentInput struct {
	Name                 *string                `json:"name" validate:"omitempty,min=1,max=200"`
	Description          *string                `json:"description"`
	TournamentType       *models.TournamentType `json:"tournament_type" validate:"omitempty,oneof=league group_knockout"`
	Format               *string                `json:"format" validate:"omitempty,max=20"`
	StartDate            *time.Time             `json:"start_date"`
	EndDate              *time.Time             `json:"end_date"`
	Location             *string                `json:"location" validate:"omitempty,min=1,max=200"`
	VenueAddress         *string                `json:"venue_address"`
	MaxTeams             *int                   `json:"max_teams" validate:"omitempty,min=4,max=64"`
	NumberOfGroups       *int                   `json:"number_of_groups" validate:"omitempty,min=1,max=16"`
	TeamsQualifyPerGroup *int                   `json:"teams_qualify_per_group" validate:"omitempty,min=1,max=8"`
	Rules                *string                `json:"rules"`
	PrizeDescription     *string                `json:"prize_description"`
	MatchDuration        *int                   `json:"match_duration" validate:"omitempty,min=10,max=120"`
	HalfTimeDuration     *int                   `json:"half_time_duration" validate:"omitempty,min=0,max=30"`
	PointsPerWin         *int                   `json:"points_per_win" validate:"omitempty,min=0"`
	PointsPerDraw        *int                   `json:"points_per_draw" validate:"omitempty,min=0"`
	PointsPerLoss        *int                   `json:"points_per_loss" validate:"omitempty,min=0"`
	IsPublic             *bool                  `json:"is_public"`
	RegistrationOpen     *bool                  `json:"registration_open"`
}

type TournamentListFilter struct {
	Status *models.TournamentStatus
	Type   *models.TournamentType
	Search string
}

// GroupStandings - таблица одной группы.
type GroupStandings struct {
	GroupID   int               `json:"group_id"`
	GroupName string            `json:"group_name"`
	Standings []models.Standing `json:"standings"`
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	groupRepo      repositories.GroupRepository
	matchRepo      repositories.TournamentMatchRepository
	uploader       storage.FileUploader
	logger         *slog.Logger
	now            func() time.Time
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	groupRepo repositories.GroupRepository,
	matchRepo repositories.TournamentMatchRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		groupRepo:      groupRepo,
		matchRepo:      matchRepo,
		uploader:       uploader,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, p *Principal, input CreateTournamentInput) (*models.Tournament, error) {
	if err := Authorize(p, ActionCreateTournament, Target{}); err != nil {
		return nil, err
	}
	if err := validateInput(ctx, input); err != nil {
		return nil, err
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, ErrTournamentDateRange
	}

	tournamentType := input.TournamentType
	if tournamentType == "" {
		tournamentType = models.TournamentLeague
	}
	defaultGroups := 4
	if tournamentType == models.TournamentLeague {
		defaultGroups = 1
	}

	id := uuid.New()
	t := &models.Tournament{
		ID:                   id,
		Name:                 strings.TrimSpace(input.Name),
		Description:          input.Description,
		TournamentType:       tournamentType,
		Format:               defaultString(strings.TrimSpace(input.Format), "group_knockout"),
		StartDate:            input.StartDate,
		EndDate:              input.EndDate,
		Location:             strings.TrimSpace(input.Location),
		VenueAddress:         input.VenueAddress,
		Status:               models.TournamentUpcoming,
		MaxTeams:             intOr(input.MaxTeams, 16),
		NumberOfGroups:       intOr(input.NumberOfGroups, defaultGroups),
		TeamsQualifyPerGroup: intOr(input.TeamsQualifyPerGroup, 2),
		OrganizerID:          p.UserID(),
		Rules:                input.Rules,
		PrizeDescription:     input.PrizeDescription,
		MatchDuration:        intOr(input.MatchDuration, 60),
		HalfTimeDuration:     intOr(input.HalfTimeDuration, 10),
		PointsPerWin:         intOr(input.PointsPerWin, models.DefaultPointsScheme.Win),
		PointsPerDraw:        intOr(input.PointsPerDraw, models.DefaultPointsScheme.Draw),
		PointsPerLoss:        intOr(input.PointsPerLoss, models.DefaultPointsScheme.Loss),
		IsPublic:             input.IsPublic == nil || *input.IsPublic,
		RegistrationOpen:     input.RegistrationOpen == nil || *input.RegistrationOpen,
	}
	if err := checkLeagueGroups(t); err != nil {
		return nil, err
	}
	t.Slug = tournamentSlug(t.Name, id)

	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		return nil, mapTournamentRepoError(err)
	}
	t.ApplyRegistrationCounts(0, 0)
	s.logger.InfoContext(ctx, "tournament created", slog.String("tournament_id", id.String()), slog.Int("organizer_id", t.OrganizerID))
	return t, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, p *Principal, id uuid.UUID) (*models.Tournament, error) {
	t, err := visibleTournament(ctx, s.tournamentRepo, p, id)
	if err != nil {
		return nil, err
	}
	populateTournamentLogoURL(t, s.uploader)
	return t, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, p *Principal, filter TournamentListFilter, page Page) ([]models.Tournament, error) {
	page = page.normalized()
	tournaments, err := s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{
		Scope:  ResolveScope(p, FamilyTournament),
		Status: filter.Status,
		Type:   filter.Type,
		Search: strings.TrimSpace(filter.Search),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	s.populateLogos(tournaments)
	return tournaments, nil
}

// ListOpenTournaments - публичные турниры, принимающие заявки. Доступны всем.
func (s *tournamentService) ListOpenTournaments(ctx context.Context, page Page) ([]models.Tournament, error) {
	page = page.normalized()
	tournaments, err := s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{
		Scope:          repositories.Scope{All: true},
		OpenForEntries: true,
		Limit:          page.Limit,
		Offset:         page.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list open tournaments: %w", err)
	}
	s.populateLogos(tournaments)
	return tournaments, nil
}

func (s *tournamentService) UpdateTournament(ctx context.Context, p *Principal, id uuid.UUID, input UpdateTournamentInput) (*models.Tournament, error) {
	t, err := s.getManagedTournament(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := validateInput(ctx, input); err != nil {
		return nil, err
	}

	if input.Name != nil {
		t.Name = strings.TrimSpace(*input.Name)
		t.Slug = tournamentSlug(t.Name, t.ID)
	}
	if input.Description != nil {
		t.Description = *input.Description
	}
	becomesLeague := input.TournamentType != nil && *input.TournamentType == models.TournamentLeague &&
		t.TournamentType != models.TournamentLeague
	if input.TournamentType != nil {
		t.TournamentType = *input.TournamentType
	}
	t.Format = trimmedOr(input.Format, t.Format)
	if input.StartDate != nil {
		t.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		t.EndDate = *input.EndDate
	}
	if t.EndDate.Before(t.StartDate) {
		return nil, ErrTournamentDateRange
	}
	t.Location = trimmedOr(input.Location, t.Location)
	if input.VenueAddress != nil {
		t.VenueAddress = *input.VenueAddress
	}
	t.MaxTeams = intOr(input.MaxTeams, t.MaxTeams)
	t.NumberOfGroups = intOr(input.NumberOfGroups, t.NumberOfGroups)
	if becomesLeague && input.NumberOfGroups == nil {
		t.NumberOfGroups = 1
	}
	if err := checkLeagueGroups(t); err != nil {
		return nil, err
	}
	if becomesLeague {
		groups, err := s.groupRepo.ListByTournament(ctx, t.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list groups of tournament %s: %w", t.ID, err)
		}
		if len(groups) > 1 {
			return nil, ErrLeagueSingleGroup
		}
	}
	t.TeamsQualifyPerGroup = intOr(input.TeamsQualifyPerGroup, t.TeamsQualifyPerGroup)
	if input.Rules != nil {
		t.Rules = *input.Rules
	}
	if input.PrizeDescription != nil {
		t.PrizeDescription = *input.PrizeDescription
	}
	t.MatchDuration = intOr(input.MatchDuration, t.MatchDuration)
	t.HalfTimeDuration = intOr(input.HalfTimeDuration, t.HalfTimeDuration)
	t.PointsPerWin = intOr(input.PointsPerWin, t.PointsPerWin)
	t.PointsPerDraw = intOr(input.PointsPerDraw, t.PointsPerDraw)
	t.PointsPerLoss = intOr(input.PointsPerLoss, t.PointsPerLoss)
	if input.IsPublic != nil {
		t.IsPublic = *input.IsPublic
	}
	if input.RegistrationOpen != nil {
		t.RegistrationOpen = *input.RegistrationOpen
	}

	if err := s.tournamentRepo.Update(ctx, t); err != nil {
		return nil, mapTournamentRepoError(err)
	}
	t.ApplyRegistrationCounts(t.RegisteredTeamsCount, 0)
	populateTournamentLogoURL(t, s.uploader)
	return t, nil
}

func (s *tournamentService) DeleteTournament(ctx context.Context, p *Principal, id uuid.UUID) error {
	t, err := s.getManagedTournament(ctx, p, id)
	if err != nil {
		return err
	}
	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		return mapTournamentRepoError(err)
	}
	removeStoredFile(ctx, s.uploader, s.logger, t.LogoKey)
	s.logger.InfoContext(ctx, "tournament deleted", slog.String("tournament_id", id.String()))
	return nil
}

func (s *tournamentService) UploadLogo(ctx context.Context, p *Principal, id uuid.UUID, file io.Reader, contentType string) (*models.Tournament, error) {
	t, err := s.getManagedTournament(ctx, p, id)
	if err != nil {
		return nil, err
	}
	key, err := uploadImage(ctx, s.uploader, storage.KindTournamentLogo, id.String(), file, contentType)
	if err != nil {
		return nil, err
	}
	oldKey := t.LogoKey
	if err := s.tournamentRepo.UpdateLogoKey(ctx, id, &key); err != nil {
		removeStoredFile(ctx, s.uploader, s.logger, &key)
		return nil, mapTournamentRepoError(err)
	}
	removeStoredFile(ctx, s.uploader, s.logger, oldKey)

	t.LogoKey = &key
	populateTournamentLogoURL(t, s.uploader)
	return t, nil
}

func (s *tournamentService) StartTournament(ctx context.Context, p *Principal, id uuid.UUID) (*models.Tournament, error) {
	return s.changeStatus(ctx, p, id, models.TournamentActive)
}

func (s *tournamentService) FinishTournament(ctx context.Context, p *Principal, id uuid.UUID) (*models.Tournament, error) {
	return s.changeStatus(ctx, p, id, models.TournamentFinished)
}

func (s *tournamentService) CancelTournament(ctx context.Context, p *Principal, id uuid.UUID) (*models.Tournament, error) {
	return s.changeStatus(ctx, p, id, models.TournamentCancelled)
}

func (s *tournamentService) changeStatus(ctx context.Context, p *Principal, id uuid.UUID, target models.TournamentStatus) (*models.Tournament, error) {
	t, err := s.getManagedTournament(ctx, p, id)
	if err != nil {
		return nil, err
	}
	next, err := nextTournamentStatus(t.Status, target)
	if err != nil {
		return nil, err
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, nil, id, next); err != nil {
		return nil, mapTournamentRepoError(err)
	}
	s.logger.InfoContext(ctx, "tournament status changed",
		slog.String("tournament_id", id.String()),
		slog.String("from", string(t.Status)),
		slog.String("to", string(next)),
	)
	t.Status = next
	t.CanRegister = t.RegistrationOpen && !t.IsFull && next == models.TournamentUpcoming
	populateTournamentLogoURL(t, s.uploader)
	return t, nil
}

// nextTournamentStatus: старт только из upcoming; завершение и отмена разрешены
// из любого незавершённого состояния.
func nextTournamentStatus(current, target models.TournamentStatus) (models.TournamentStatus, error) {
	switch target {
	case models.TournamentActive:
		if current != models.TournamentUpcoming {
			return current, ErrTournamentNotUpcoming
		}
	case models.TournamentFinished, models.TournamentCancelled:
		if current == models.TournamentFinished || current == models.TournamentCancelled {
			return current, ErrTournamentAlreadyEnded
		}
	default:
		return current, ErrStateConflict
	}
	return target, nil
}

func (s *tournamentService) ListTeams(ctx context.Context, p *Principal, id uuid.UUID) ([]models.Team, error) {
	if _, err := visibleTournament(ctx, s.tournamentRepo, p, id); err != nil {
		return nil, err
	}
	teams, err := s.tournamentRepo.ListParticipantTeams(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams of tournament %s: %w", id, err)
	}
	return teams, nil
}

// GetStandings считает таблицы всех групп турнира параллельно.
func (s *tournamentService) GetStandings(ctx context.Context, p *Principal, id uuid.UUID) ([]GroupStandings, error) {
	t, err := visibleTournament(ctx, s.tournamentRepo, p, id)
	if err != nil {
		return nil, err
	}
	groups, err := s.groupRepo.ListByTournament(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups of tournament %s: %w", id, err)
	}

	result := make([]GroupStandings, len(groups))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range groups {
		group := groups[i]
		g.Go(func() error {
			standings, err := groupStandings(gCtx, s.groupRepo, s.matchRepo, group.ID, t.PointsScheme())
			if err != nil {
				return err
			}
			result[i] = GroupStandings{GroupID: group.ID, GroupName: group.Name, Standings: standings}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *tournamentService) GetStats(ctx context.Context, p *Principal, id uuid.UUID) (*models.TournamentStats, error) {
	t, err := visibleTournament(ctx, s.tournamentRepo, p, id)
	if err != nil {
		return nil, err
	}
	stats, err := s.tournamentRepo.Stats(ctx, id)
	if err != nil {
		return nil, err
	}
	stats.TeamsCount = t.RegisteredTeamsCount
	return stats, nil
}

func (s *tournamentService) getManagedTournament(ctx context.Context, p *Principal, id uuid.UUID) (*models.Tournament, error) {
	t, err := visibleTournament(ctx, s.tournamentRepo, p, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(p, ActionManageTournament, Target{OrganizerID: &t.OrganizerID}); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *tournamentService) populateLogos(tournaments []models.Tournament) {
	for i := range tournaments {
		populateTournamentLogoURL(&tournaments[i], s.uploader)
	}
}

// visibleTournament загружает турнир и проверяет видимость. Участники турнира
// подгружаются, только если организатора недостаточно.
// checkLeagueGroups: у лиги ровно одна группа.
func checkLeagueGroups(t *models.Tournament) error {
	if t.TournamentType == models.TournamentLeague && t.NumberOfGroups > 1 {
		return fieldError("number_of_groups", "a league tournament has a single group")
	}
	return nil
}

func visibleTournament(ctx context.Context, repo repositories.TournamentRepository, p *Principal, id uuid.UUID) (*models.Tournament, error) {
	t, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", id, err)
	}
	scope := ResolveScope(p, FamilyTournament)
	keys := repositories.ScopeKeys{OrganizerID: &t.OrganizerID}
	if scope.Permits(keys) {
		return t, nil
	}
	if len(scope.TeamIDs) == 0 && len(scope.ClubIDs) == 0 {
		return nil, ErrTournamentNotFound
	}
	keys.TeamIDs, keys.ClubIDs, err = repo.ParticipantKeys(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load participants of tournament %s: %w", id, err)
	}
	if !scope.Permits(keys) {
		return nil, ErrTournamentNotFound
	}
	return t, nil
}

// groupStandings пересчитывает таблицу группы при каждом чтении.
func groupStandings(ctx context.Context, groupRepo repositories.GroupRepository, matchRepo repositories.TournamentMatchRepository, groupID int, scheme models.PointsScheme) ([]models.Standing, error) {
	members, err := groupRepo.ListMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of group %d: %w", groupID, err)
	}
	matches, err := matchRepo.ListFinishedByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches of group %d: %w", groupID, err)
	}
	return BuildStandings(members, matches, scheme), nil
}

func tournamentSlug(name string, id uuid.UUID) string {
	return makeSlug(name) + "-" + id.String()[:8]
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func mapTournamentRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentSlugConflict):
		return conflictField("name", err)
	}
	return fmt.Errorf("tournament storage error: %w", integrityError(err))
}
