package storage

import (
	"errors"
	"net/url"
	"strings"
	"testing"
)

func TestJoinPublicURL(t *testing.T) {
	cases := []struct {
		name string
		base string
		key  string
		want string
	}{
		{"host only", "https://cdn.example.com/", "club_logos/1/a.png", "https://cdn.example.com/club_logos/1/a.png"},
		{"with path", "https://cdn.example.com/media/", "player_photos/7/b.jpg", "https://cdn.example.com/media/player_photos/7/b.jpg"},
		{"leading slash in key", "https://cdn.example.com/media/", "/x.png", "https://cdn.example.com/media/x.png"},
		{"empty key", "https://cdn.example.com/", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			base, err := url.Parse(tc.base)
			if err != nil {
				t.Fatalf("bad base: %v", err)
			}
			if got := joinPublicURL(base, tc.key); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestJoinPublicURLWithoutBase(t *testing.T) {
	if got := joinPublicURL(nil, "a.png"); got != "" {
		t.Fatalf("expected empty url, got %q", got)
	}
}

func TestEnsureTrailingSlash(t *testing.T) {
	if got := ensureTrailingSlash("https://a.example/media"); got != "https://a.example/media/" {
		t.Fatalf("unexpected %q", got)
	}
	if got := ensureTrailingSlash("https://a.example/"); got != "https://a.example/" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestImageExtension(t *testing.T) {
	cases := []struct {
		contentType string
		want        string
		wantErr     bool
	}{
		{"image/png", ".png", false},
		{"IMAGE/JPEG", ".jpg", false},
		{" image/webp; charset=binary", ".webp", false},
		{"image/svg+xml", ".svg", false},
		{"application/pdf", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := ImageExtension(tc.contentType)
		if tc.wantErr {
			if !errors.Is(err, ErrUnsupportedContentType) {
				t.Errorf("%q: expected ErrUnsupportedContentType, got %v", tc.contentType, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("%q: expected %q, got %q (%v)", tc.contentType, tc.want, got, err)
		}
	}
}

func TestObjectKey(t *testing.T) {
	first := ObjectKey(KindPlayerPhoto, "42", ".png")
	second := ObjectKey(KindPlayerPhoto, "42", ".png")

	if !strings.HasPrefix(first, "player_photos/42/") || !strings.HasSuffix(first, ".png") {
		t.Fatalf("unexpected key layout %q", first)
	}
	if first == second {
		t.Fatalf("expected a fresh key per upload, got %q twice", first)
	}
}
