package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/u13-football/models"
	"github.com/Dosada05/u13-football/repositories"
	"github.com/Dosada05/u13-football/storage"
)

type PlayerService interface {
	CreatePlayer(ctx context.Context, p *Principal, teamID int, input CreatePlayerInput) (*models.Player, error)
	GetPlayer(ctx context.Context, p *Principal, id int) (*models.Player, error)
	ListPlayers(ctx context.Context, p *Principal, filter PlayerListFilter, page Page) ([]models.Player, error)
	ListMyPlayers(ctx context.Context, p *Principal) ([]models.Player, error)
	ListMainPlayers(ctx context.Context, p *Principal, teamID int) (*TeamRoster, error)
	ListSubstitutes(ctx context.Context, p *Principal, teamID int) (*TeamRoster, error)
	UpdatePlayer(ctx context.Context, p *Principal, id int, input UpdatePlayerInput) (*models.Player, error)
	SetMainPlayer(ctx context.Context, p *Principal, id int, main bool) (*models.Player, error)
	DeletePlayer(ctx context.Context, p *Principal, id int) error
	UploadPhoto(ctx context.Context, p *Principal, id int, file io.Reader, contentType string) (*models.Player, error)
	GetPlayerStats(ctx context.Context, p *Principal, id int) (*PlayerStatsSummary, error)
}

type CreatePlayerInput struct {
	FirstName    string                `json:"first_name" validate:"required,max=100"`
	LastName     string                `json:"last_name" validate:"required,max=100"`
	BirthDate    time.Time             `json:"birth_date" validate:"required"`
	JerseyNumber int                   `json:"jersey_number" validate:"required,min=1,max=99"`
	Position     models.PlayerPosition `json:"position" validate:"required,oneof=GB DG DC DD MDC MC MD MG AD AG AC ATT"`
	IsCaptain    bool                  `json:"is_captain"`
	IsMainPlayer bool                  `json:"is_main_player"`
	Height       *int                  `json:"height" validate:"omitempty,min=50,max=250"`
	Weight       *int                  `json:"weight" validate:"omitempty,min=10,max=200"`
	ParentName   string                `json:"parent_name" validate:"max=200"`
	ParentPhone  string                `json:"parent_phone" validate:"max=20"`
	ParentEmail  string                `json:"parent_email" validate:"omitempty,email"`
	Parent2Name  string                `json:"parent2_name" validate:"max=200"`
	Parent2Phone string                `json:"parent2_phone" validate:"max=20"`
	Parent2Email string                `json:"parent2_email" validate:"omitempty,email"`
	IsActive     *bool                 `json:"is_active"`
}

type UpdatePlayerInput struct {
	FirstName    *string                `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName     *string                `json:"last_name" validate:"omitempty,min=1,max=100"`
	BirthDate    *time.Time             `json:"birth_date"`
	JerseyNumber *int                   `json:"jersey_number" validate:"omitempty,min=1,max=99"`
	Position     *models.PlayerPosition `json:"position" validate:"omitempty,oneof=GB DG DC DD MDC MC MD MG AD AG AC ATT"`
	IsCaptain    *bool                  `json:"is_captain"`
	IsMainPlayer *bool                  `json:"is_main_player"`
	Height       *int                   `json:"height" validate:"omitempty,min=50,max=250"`
	Weight       *int                   `json:"weight" validate:"omitempty,min=10,max=200"`
	ParentName   *string                `json:"parent_name" validate:"omitempty,max=200"`
	ParentPhone  *string                `json:"parent_phone" validate:"omitempty,max=20"`
	ParentEmail  *string                `json:"parent_email" validate:"omitempty,email"`
	Parent2Name  *string                `json:"parent2_name" validate:"omitempty,max=200"`
	Parent2Phone *string                `json:"parent2_phone" validate:"omitempty,max=20"`
	Parent2Email *string                `json:"parent2_email" validate:"omitempty,email"`
	IsActive     *bool                  `json:"is_active"`
}

type PlayerListFilter struct {
	TeamID   *int
	IsMain   *bool
	IsActive *bool
	Search   string
}

// TeamRoster - основной или запасной состав команды.
type TeamRoster struct {
	TeamID     int             `json:"team_id"`
	Team       string          `json:"team"`
	Count      int             `json:"count"`
	MaxAllowed *int            `json:"max_allowed,omitempty"`
	Players    []models.Player `json:"players"`
}

// PlayerStatsSummary - сумма статистики игрока по всем составам на матчи.
type PlayerStatsSummary struct {
	PlayerID      int    `json:"player"`
	PlayerName    string `json:"player_name"`
	MatchesPlayed int    `json:"matches_played"`
	models.StatLine
	Career models.StatLine `json:"career"`
}

type playerService struct {
	txManager  repositories.TxManager
	playerRepo repositories.PlayerRepository
	teamRepo   repositories.TeamRepository
	lineupRepo repositories.LineupRepository
	roster     *rosterManager
	uploader   storage.FileUploader
	logger     *slog.Logger
}

func NewPlayerService(
	txManager repositories.TxManager,
	playerRepo repositories.PlayerRepository,
	teamRepo repositories.TeamRepository,
	lineupRepo repositories.LineupRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) PlayerService {
	return &playerService{
		txManager:  txManager,
		playerRepo: playerRepo,
		teamRepo:   teamRepo,
		lineupRepo: lineupRepo,
		roster:     newRosterManager(teamRepo, playerRepo, lineupRepo),
		uploader:   uploader,
		logger:     logger,
	}
}

func (s *playerService) CreatePlayer(ctx context.Context, p *Principal, teamID int, input CreatePlayerInput) (*models.Player, error) {
	team, err := s.getVisibleTeam(ctx, p, teamID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(p, ActionManagePlayer, Target{Team: team}); err != nil {
		return nil, err
	}
	if err := validateInput(ctx, input); err != nil {
		return nil, err
	}

	player := &models.Player{
		TeamID:       team.ID,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		BirthDate:    input.BirthDate,
		JerseyNumber: input.JerseyNumber,
		Position:     input.Position,
		IsCaptain:    input.IsCaptain,
		IsMainPlayer: input.IsMainPlayer,
		Height:       input.Height,
		Weight:       input.Weight,
		ParentName:   strings.TrimSpace(input.ParentName),
		ParentEmail:  normalizeEmail(input.ParentEmail),
		Parent2Name:  strings.TrimSpace(input.Parent2Name),
		Parent2Email: normalizeEmail(input.Parent2Email),
		IsActive:     input.IsActive == nil || *input.IsActive,
		Team:         team,
	}
	if player.ParentPhone, err = normalizePhoneField("parent_phone", input.ParentPhone); err != nil {
		return nil, err
	}
	if player.Parent2Phone, err = normalizePhoneField("parent2_phone", input.Parent2Phone); err != nil {
		return nil, err
	}

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		if player.IsMainPlayer {
			if err := s.roster.ensureMainSlot(ctx, exec, team.ID, 0); err != nil {
				return err
			}
		}
		return s.playerRepo.Create(ctx, exec, player)
	})
	if err != nil {
		return nil, mapPlayerRepoError(err)
	}
	populatePlayerPhotoURL(player, s.uploader)
	return player, nil
}

func (s *playerService) GetPlayer(ctx context.Context, p *Principal, id int) (*models.Player, error) {
	player, err := s.getVisiblePlayer(ctx, p, id)
	if err != nil {
		return nil, err
	}
	populatePlayerPhotoURL(player, s.uploader)
	return player, nil
}

func (s *playerService) ListPlayers(ctx context.Context, p *Principal, filter PlayerListFilter, page Page) ([]models.Player, error) {
	page = page.normalized()
	players, err := s.playerRepo.List(ctx, repositories.ListPlayersFilter{
		Scope:    ResolveScope(p, FamilyPlayer),
		TeamID:   filter.TeamID,
		IsMain:   filter.IsMain,
		IsActive: filter.IsActive,
		Search:   strings.TrimSpace(filter.Search),
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	s.populatePhotos(players)
	return players, nil
}

// ListMyPlayers - игроки отслеживаемых команд и дети пользователя.
func (s *playerService) ListMyPlayers(ctx context.Context, p *Principal) ([]models.Player, error) {
	if p == nil || p.User == nil {
		return nil, ErrAuthenticationFailed
	}
	players, err := s.playerRepo.ListForParent(ctx, p.FollowedTeamIDs, p.User.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to list players of user %d: %w", p.UserID(), err)
	}
	s.populatePhotos(players)
	return players, nil
}

func (s *playerService) ListMainPlayers(ctx context.Context, p *Principal, teamID int) (*TeamRoster, error) {
	roster, err := s.teamRoster(ctx, p, teamID, true)
	if err != nil {
		return nil, err
	}
	maxAllowed := models.MaxMainPlayers
	roster.MaxAllowed = &maxAllowed
	return roster, nil
}

func (s *playerService) ListSubstitutes(ctx context.Context, p *Principal, teamID int) (*TeamRoster, error) {
	return s.teamRoster(ctx, p, teamID, false)
}

func (s *playerService) teamRoster(ctx context.Context, p *Principal, teamID int, main bool) (*TeamRoster, error) {
	team, err := s.getVisibleTeam(ctx, p, teamID)
	if err != nil {
		return nil, err
	}
	active := true
	players, err := s.playerRepo.List(ctx, repositories.ListPlayersFilter{
		Scope:    repositories.Scope{All: true},
		TeamID:   &team.ID,
		IsMain:   &main,
		IsActive: &active,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list roster of team %d: %w", teamID, err)
	}
	s.populatePhotos(players)
	return &TeamRoster{TeamID: team.ID, Team: team.Name, Count: len(players), Players: players}, nil
}

func (s *playerService) UpdatePlayer(ctx context.Context, p *Principal, id int, input UpdatePlayerInput) (*models.Player, error) {
	player, err := s.getVisiblePlayer(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(p, ActionManagePlayer, Target{Team: teamSide(player.Team)}); err != nil {
		return nil, err
	}
	if err := validateInput(ctx, input); err != nil {
		return nil, err
	}
	if err := applyPlayerUpdate(player, input); err != nil {
		return nil, err
	}
	if err := s.savePlayer(ctx, player); err != nil {
		return nil, err
	}
	populatePlayerPhotoURL(player, s.uploader)
	return player, nil
}

func (s *playerService) SetMainPlayer(ctx context.Context, p *Principal, id int, main bool) (*models.Player, error) {
	player, err := s.getVisiblePlayer(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(p, ActionManagePlayer, Target{Team: teamSide(player.Team)}); err != nil {
		return nil, err
	}
	player.IsMainPlayer = main
	if err := s.savePlayer(ctx, player); err != nil {
		return nil, err
	}
	populatePlayerPhotoURL(player, s.uploader)
	return player, nil
}

// savePlayer сохраняет игрока; проверка лимита основных и запись идут в одной транзакции.
func (s *playerService) savePlayer(ctx context.Context, player *models.Player) error {
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		if player.IsMainPlayer {
			if err := s.roster.ensureMainSlot(ctx, exec, player.TeamID, player.ID); err != nil {
				return err
			}
		}
		return s.playerRepo.Update(ctx, exec, player)
	})
	if err != nil {
		return mapPlayerRepoError(err)
	}
	return nil
}

func (s *playerService) DeletePlayer(ctx context.Context, p *Principal, id int) error {
	player, err := s.getVisiblePlayer(ctx, p, id)
	if err != nil {
		return err
	}
	if err := Authorize(p, ActionManagePlayer, Target{Team: teamSide(player.Team)}); err != nil {
		return err
	}
	if err := s.playerRepo.Delete(ctx, id); err != nil {
		return mapPlayerRepoError(err)
	}
	removeStoredFile(ctx, s.uploader, s.logger, player.PhotoKey)
	return nil
}

func (s *playerService) UploadPhoto(ctx context.Context, p *Principal, id int, file io.Reader, contentType string) (*models.Player, error) {
	player, err := s.getVisiblePlayer(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(p, ActionManagePlayer, Target{Team: teamSide(player.Team)}); err != nil {
		return nil, err
	}
	key, err := uploadImage(ctx, s.uploader, storage.KindPlayerPhoto, strconv.Itoa(id), file, contentType)
	if err != nil {
		return nil, err
	}
	oldKey := player.PhotoKey
	if err := s.playerRepo.UpdatePhotoKey(ctx, id, &key); err != nil {
		removeStoredFile(ctx, s.uploader, s.logger, &key)
		return nil, mapPlayerRepoError(err)
	}
	removeStoredFile(ctx, s.uploader, s.logger, oldKey)

	player.PhotoKey = &key
	populatePlayerPhotoURL(player, s.uploader)
	return player, nil
}

func (s *playerService) GetPlayerStats(ctx context.Context, p *Principal, id int) (*PlayerStatsSummary, error) {
	player, err := s.getVisiblePlayer(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(p, ActionReadPlayerStats, Target{Player: player}); err != nil {
		return nil, err
	}
	totals, matches, err := s.lineupRepo.SumByPlayer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to sum stats of player %d: %w", id, err)
	}
	return &PlayerStatsSummary{
		PlayerID:      player.ID,
		PlayerName:    player.FullName(),
		MatchesPlayed: matches,
		StatLine:      totals,
		Career:        player.StatLine,
	}, nil
}

func (s *playerService) getVisiblePlayer(ctx context.Context, p *Principal, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %d: %w", id, err)
	}
	if !visible(p, FamilyPlayer, sideKeys(player.Team)) {
		return nil, ErrPlayerNotFound
	}
	return player, nil
}

func (s *playerService) getVisibleTeam(ctx context.Context, p *Principal, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", id, err)
	}
	if !visible(p, FamilyTeam, sideKeys(team)) {
		return nil, ErrTeamNotFound
	}
	return team, nil
}

func (s *playerService) populatePhotos(players []models.Player) {
	for i := range players {
		populatePlayerPhotoURL(&players[i], s.uploader)
	}
}

func applyPlayerUpdate(player *models.Player, input UpdatePlayerInput) error {
	if input.FirstName != nil {
		player.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		player.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.BirthDate != nil {
		player.BirthDate = *input.BirthDate
	}
	if input.JerseyNumber != nil {
		player.JerseyNumber = *input.JerseyNumber
	}
	if input.Position != nil {
		player.Position = *input.Position
	}
	if input.IsCaptain != nil {
		player.IsCaptain = *input.IsCaptain
	}
	if input.IsMainPlayer != nil {
		player.IsMainPlayer = *input.IsMainPlayer
	}
	if input.Height != nil {
		player.Height = input.Height
	}
	if input.Weight != nil {
		player.Weight = input.Weight
	}
	player.ParentName = trimmedOr(input.ParentName, player.ParentName)
	player.Parent2Name = trimmedOr(input.Parent2Name, player.Parent2Name)
	if input.ParentEmail != nil {
		player.ParentEmail = normalizeEmail(*input.ParentEmail)
	}
	if input.Parent2Email != nil {
		player.Parent2Email = normalizeEmail(*input.Parent2Email)
	}
	if input.ParentPhone != nil {
		phone, err := normalizePhoneField("parent_phone", *input.ParentPhone)
		if err != nil {
			return err
		}
		player.ParentPhone = phone
	}
	if input.Parent2Phone != nil {
		phone, err := normalizePhoneField("parent2_phone", *input.Parent2Phone)
		if err != nil {
			return err
		}
		player.Parent2Phone = phone
	}
	if input.IsActive != nil {
		player.IsActive = *input.IsActive
	}
	return nil
}

func mapPlayerRepoError(err error) error {
	switch {
	case errors.Is(err, ErrMainPlayerLimit), errors.Is(err, ErrTeamNotFound):
		return err
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrPlayerJerseyConflict):
		return conflictField("jersey_number", err)
	case errors.Is(err, repositories.ErrPlayerTeamInvalid):
		return ErrTeamNotFound
	}
	return fmt.Errorf("player storage error: %w", integrityError(err))
}
