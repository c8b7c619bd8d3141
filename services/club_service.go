package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Dosada05/u13-football/models"
	"github.com/Dosada05/u13-football/repositories"
	"github.com/Dosada05/u13-football/storage"
)

type ClubService interface {
	CreateClub(ctx context.Context, p *Principal, input CreateClubInput) (*models.Club, error)
	GetClub(ctx context.Context, p *Principal, id int) (*models.Club, error)
	ListClubs(ctx context.Context, p *Principal, search string, page Page) ([]models.Club, error)
	ListMyClubs(ctx context.Context, p *Principal) ([]models.Club, error)
	UpdateClub(ctx context.Context, p *Principal, id int, input UpdateClubInput) (*models.Club, error)
	DeleteClub(ctx context.Context, p *Principal, id int) error
	UploadLogo(ctx context.Context, p *Principal, id int, file io.Reader, contentType string) (*models.Club, error)
}

type CreateClubInput struct {
	Name           string `json:"name" validate:"required,max=100"`
	ShortName      string `json:"short_name" validate:"required,max=10"`
	PrimaryColor   string `json:"primary_color" validate:"omitempty,hexcolor"`
	SecondaryColor string `json:"secondary_color" validate:"omitempty,hexcolor"`
	Address        string `json:"address" validate:"max=500"`
	Phone          string `json:"phone" validate:"max=20"`
	Email          string `json:"email" validate:"omitempty,email"`
	Website        string `json:"website" validate:"omitempty,url"`
	LicenseNumber  string `json:"license_number" validate:"max=50"`
	FoundedYear    *int   `json:"founded_year" validate:"omitempty,min=1800,max=2030"`
}

type UpdateClubInput struct {
	Name           *string `json:"name" validate:"omitempty,min=1,max=100"`
	ShortName      *string `json:"short_name" validate:"omitempty,min=1,max=10"`
	PrimaryColor   *string `json:"primary_color" validate:"omitempty,hexcolor"`
	SecondaryColor *string `json:"secondary_color" validate:"omitempty,hexcolor"`
	Address        *string `json:"address" validate:"omitempty,max=500"`
	Phone          *string `json:"phone" validate:"omitempty,max=20"`
	Email          *string `json:"email" validate:"omitempty,email"`
	Website        *string `json:"website" validate:"omitempty,url"`
	LicenseNumber  *string `json:"license_number" validate:"omitempty,max=50"`
	FoundedYear    *int    `json:"founded_year" validate:"omitempty,min=1800,max=2030"`
	IsActive       *bool   `json:"is_active"`
}

type clubService struct {
	clubRepo repositories.ClubRepository
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewClubService(clubRepo repositories.ClubRepository, uploader storage.FileUploader, logger *slog.Logger) ClubService {
	return &clubService{
		clubRepo: clubRepo,
		uploader: uploader,
		logger:   logger,
	}
}

func (s *clubService) CreateClub(ctx context.Context, p *Principal, input CreateClubInput) (*models.Club, error) {
	if err := Authorize(p, ActionCreateClub, Target{}); err != nil {
		return nil, err
	}
	if err := validateInput(ctx, input); err != nil {
		return nil, err
	}
	phone, err := normalizePhoneField("phone", input.Phone)
	if err != nil {
		return nil, err
	}

	ownerID := p.UserID()
	club := &models.Club{
		Name:           strings.TrimSpace(input.Name),
		ShortName:      strings.TrimSpace(input.ShortName),
		OwnerID:        &ownerID,
		PrimaryColor:   defaultString(input.PrimaryColor, "#000000"),
		SecondaryColor: defaultString(input.SecondaryColor, "#FFFFFF"),
		Address:        strings.TrimSpace(input.Address),
		Phone:          phone,
		Email:          strings.TrimSpace(input.Email),
		Website:        strings.TrimSpace(input.Website),
		LicenseNumber:  strings.TrimSpace(input.LicenseNumber),
		FoundedYear:    input.FoundedYear,
		IsActive:       true,
	}
	club.Slug = makeSlug(club.Name)

	if err := s.clubRepo.Create(ctx, club); err != nil {
		return nil, mapClubRepoError(err)
	}
	populateClubLogoURL(club, s.uploader)
	return club, nil
}

func (s *clubService) GetClub(ctx context.Context, p *Principal, id int) (*models.Club, error) {
	club, err := s.getVisibleClub(ctx, p, id)
	if err != nil {
		return nil, err
	}
	populateClubLogoURL(club, s.uploader)
	return club, nil
}

func (s *clubService) ListClubs(ctx context.Context, p *Principal, search string, page Page) ([]models.Club, error) {
	page = page.normalized()
	clubs, err := s.clubRepo.List(ctx, repositories.ListClubsFilter{
		Scope:  ResolveScope(p, FamilyClub),
		Search: strings.TrimSpace(search),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list clubs: %w", err)
	}
	for i := range clubs {
		populateClubLogoURL(&clubs[i], s.uploader)
	}
	return clubs, nil
}

func (s *clubService) ListMyClubs(ctx context.Context, p *Principal) ([]models.Club, error) {
	if p == nil || p.User == nil {
		return nil, ErrAuthenticationFailed
	}
	ownerID := p.UserID()
	clubs, err := s.clubRepo.List(ctx, repositories.ListClubsFilter{
		Scope:   repositories.Scope{All: true},
		OwnerID: &ownerID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list clubs of user %d: %w", ownerID, err)
	}
	for i := range clubs {
		populateClubLogoURL(&clubs[i], s.uploader)
	}
	return clubs, nil
}

func (s *clubService) UpdateClub(ctx context.Context, p *Principal, id int, input UpdateClubInput) (*models.Club, error) {
	club, err := s.getVisibleClub(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(p, ActionManageClub, Target{Club: club}); err != nil {
		return nil, err
	}
	if err := validateInput(ctx, input); err != nil {
		return nil, err
	}

	if input.Name != nil {
		club.Name = strings.TrimSpace(*input.Name)
		club.Slug = makeSlug(club.Name)
	}
	if input.ShortName != nil {
		club.ShortName = strings.TrimSpace(*input.ShortName)
	}
	if input.PrimaryColor != nil {
		club.PrimaryColor = *input.PrimaryColor
	}
	if input.SecondaryColor != nil {
		club.SecondaryColor = *input.SecondaryColor
	}
	club.Address = trimmedOr(input.Address, club.Address)
	if input.Phone != nil {
		phone, err := normalizePhoneField("phone", *input.Phone)
		if err != nil {
			return nil, err
		}
		club.Phone = phone
	}
	club.Email = trimmedOr(input.Email, club.Email)
	club.Website = trimmedOr(input.Website, club.Website)
	club.LicenseNumber = trimmedOr(input.LicenseNumber, club.LicenseNumber)
	if input.FoundedYear != nil {
		club.FoundedYear = input.FoundedYear
	}
	if input.IsActive != nil {
		club.IsActive = *input.IsActive
	}

	if err := s.clubRepo.Update(ctx, club); err != nil {
		return nil, mapClubRepoError(err)
	}
	populateClubLogoURL(club, s.uploader)
	return club, nil
}

func (s *clubService) DeleteClub(ctx context.Context, p *Principal, id int) error {
	club, err := s.getVisibleClub(ctx, p, id)
	if err != nil {
		return err
	}
	if err := Authorize(p, ActionManageClub, Target{Club: club}); err != nil {
		return err
	}
	if err := s.clubRepo.Delete(ctx, id); err != nil {
		return mapClubRepoError(err)
	}
	removeStoredFile(ctx, s.uploader, s.logger, club.LogoKey)
	return nil
}

func (s *clubService) UploadLogo(ctx context.Context, p *Principal, id int, file io.Reader, contentType string) (*models.Club, error) {
	club, err := s.getVisibleClub(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(p, ActionManageClub, Target{Club: club}); err != nil {
		return nil, err
	}
	key, err := uploadImage(ctx, s.uploader, storage.KindClubLogo, strconv.Itoa(id), file, contentType)
	if err != nil {
		return nil, err
	}
	oldKey := club.LogoKey
	if err := s.clubRepo.UpdateLogoKey(ctx, id, &key); err != nil {
		removeStoredFile(ctx, s.uploader, s.logger, &key)
		return nil, mapClubRepoError(err)
	}
	removeStoredFile(ctx, s.uploader, s.logger, oldKey)

	club.LogoKey = &key
	populateClubLogoURL(club, s.uploader)
	return club, nil
}

func (s *clubService) getVisibleClub(ctx context.Context, p *Principal, id int) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to get club %d: %w", id, err)
	}
	if !visible(p, FamilyClub, repositories.ScopeKeys{ClubIDs: []int{club.ID}}) {
		return nil, ErrClubNotFound
	}
	return club, nil
}

func mapClubRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrClubNotFound):
		return ErrClubNotFound
	case errors.Is(err, repositories.ErrClubNameConflict), errors.Is(err, repositories.ErrClubSlugConflict):
		return conflictField("name", err)
	case errors.Is(err, repositories.ErrClubShortNameConflict):
		return conflictField("short_name", err)
	}
	return fmt.Errorf("club storage error: %w", integrityError(err))
}

func defaultString(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
