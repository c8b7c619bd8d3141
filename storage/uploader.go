package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Kind определяет каталог, в который попадает изображение.
type Kind string

const (
	KindClubLogo       Kind = "club_logos"
	KindTournamentLogo Kind = "tournament_logos"
	KindPlayerPhoto    Kind = "player_photos"
	KindAvatar         Kind = "profile_pictures"
)

var ErrUnsupportedContentType = errors.New("unsupported image content type")

var imageExtensions = map[string]string{
	"image/jpeg":    ".jpg",
	"image/jpg":     ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// ImageExtension возвращает расширение файла для типа содержимого.
// Параметры типа (например, charset) игнорируются.
func ImageExtension(contentType string) (string, error) {
	mediaType, _, _ := strings.Cut(contentType, ";")
	ext, ok := imageExtensions[strings.ToLower(strings.TrimSpace(mediaType))]
	if !ok {
		return "", ErrUnsupportedContentType
	}
	return ext, nil
}

// ObjectKey строит ключ вида kind/owner/<uuid><ext>. Каждая загрузка получает
// новый ключ, поэтому старый файл можно удалить после замены.
func ObjectKey(kind Kind, owner, ext string) string {
	return path.Join(string(kind), owner, uuid.NewString()+ext)
}

type UploadResult struct {
	Key  string
	URL  string
	ETag string
}

// FileUploader - хранилище логотипов клубов и турниров, фото игроков и аватаров.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	// GetPublicURL возвращает пустую строку, если URL построить нельзя.
	GetPublicURL(key string) string
}
