package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Dosada05/u13-football/models"
	"github.com/Dosada05/u13-football/repositories"
	"github.com/Dosada05/u13-football/storage"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/nyaruka/phonenumbers"
)

// Регион по умолчанию для номеров без международного префикса
const defaultPhoneRegion = "FR"

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func trimmedOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return strings.TrimSpace(*s)
}

// makeSlug строит slug из имени. Для имён без латиницы и цифр добавляется случайный суффикс.
func makeSlug(name string) string {
	s := slug.Make(name)
	if s == "" {
		return uuid.NewString()[:8]
	}
	return s
}

// normalizePhone приводит номер к формату E.164. Пустая строка допустима.
func normalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	num, err := phonenumbers.Parse(raw, defaultPhoneRegion)
	if err != nil {
		return "", ErrInvalidPhoneNumber
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidPhoneNumber
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// normalizePhoneField - то же, но ошибка привязана к полю ввода.
func normalizePhoneField(field, raw string) (string, error) {
	phone, err := normalizePhone(raw)
	if err != nil {
		return "", fieldError(field, "must be a valid phone number")
	}
	return phone, nil
}

// uploadImage загружает файл под новым ключом и возвращает ключ.
func uploadImage(ctx context.Context, uploader storage.FileUploader, kind storage.Kind, owner string, file io.Reader, contentType string) (string, error) {
	if uploader == nil {
		return "", ErrStorageDisabled
	}
	ext, err := storage.ImageExtension(contentType)
	if err != nil {
		return "", ErrInvalidFileType
	}
	result, err := uploader.Upload(ctx, storage.ObjectKey(kind, owner, ext), contentType, file)
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	return result.Key, nil
}

// removeStoredFile удаляет старый файл после замены. Ошибка только логируется:
// запись в базе уже указывает на новый ключ.
func removeStoredFile(ctx context.Context, uploader storage.FileUploader, logger *slog.Logger, key *string) {
	if uploader == nil || key == nil || *key == "" {
		return
	}
	if err := uploader.Delete(ctx, *key); err != nil {
		logger.WarnContext(ctx, "failed to delete replaced file", slog.String("key", *key), slog.Any("error", err))
	}
}

func publicURL(uploader storage.FileUploader, key *string) *string {
	if uploader == nil || key == nil || *key == "" {
		return nil
	}
	url := uploader.GetPublicURL(*key)
	if url == "" {
		return nil
	}
	return &url
}

func populateUserDetails(user *models.User, uploader storage.FileUploader) {
	if user == nil {
		return
	}
	user.PasswordHash = ""
	user.AvatarURL = publicURL(uploader, user.AvatarKey)
}

func populateClubLogoURL(club *models.Club, uploader storage.FileUploader) {
	if club != nil {
		club.LogoURL = publicURL(uploader, club.LogoKey)
	}
}

func populateTournamentLogoURL(t *models.Tournament, uploader storage.FileUploader) {
	if t != nil {
		t.LogoURL = publicURL(uploader, t.LogoKey)
	}
}

func populatePlayerPhotoURL(p *models.Player, uploader storage.FileUploader) {
	if p != nil {
		p.PhotoURL = publicURL(uploader, p.PhotoKey)
	}
}

// constraintFields подсказывает поле ввода по имени нарушенного ограничения.
var constraintFields = map[string]string{
	"users_email_key":                       "email",
	"clubs_name_key":                        "name",
	"clubs_short_name_key":                  "short_name",
	"clubs_slug_key":                        "slug",
	"clubs_founded_year_check":              "founded_year",
	"teams_club_name_category_key":          "name",
	"players_team_jersey_key":               "jersey_number",
	"tournaments_slug_key":                  "slug",
	"tournaments_dates_check":               "end_date",
	"tournament_groups_tournament_name_key": "name",
	"tournament_phases_tournament_type_key": "phase_type",
	"team_groups_team_group_key":            "team_id",
	"registrations_team_tournament_key":     "team_id",
	"match_lineups_match_team_player_key":   "player_id",
}

// integrityError переводит ошибки ограничений хранилища в IntegrityError.
// Остальные ошибки возвращаются как есть.
func integrityError(err error) error {
	if err == nil {
		return nil
	}
	var cErr *repositories.ConstraintError
	if !errors.As(err, &cErr) {
		return err
	}
	field := constraintFields[cErr.Constraint]
	if field == "" {
		field = cErr.Constraint
	}
	switch {
	case errors.Is(cErr, repositories.ErrUniqueViolation):
		return &IntegrityError{Field: field, Message: "already exists"}
	case errors.Is(cErr, repositories.ErrForeignKeyViolation):
		return &IntegrityError{Field: field, Message: "references a record that does not exist"}
	case errors.Is(cErr, repositories.ErrCheckViolation):
		return &IntegrityError{Field: field, Message: "has an invalid value"}
	}
	return err
}

// conflictField оборачивает известную ошибку конфликта в IntegrityError с полем.
func conflictField(field string, err error) error {
	return &IntegrityError{Field: field, Message: err.Error()}
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
