package services

import (
	"context"
	"errors"
	"testing"
)

func TestValidateInputUsesJSONNames(t *testing.T) {
	err := validateInput(context.Background(), CreateEventInput{TeamID: 1, PlayerID: 1, EventType: "goal"})
	var fe FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if fe["minute"] != "is required" {
		t.Fatalf("minute error = %q", fe["minute"])
	}
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("field errors must belong to the validation class")
	}
}

func TestPrefixFieldErrors(t *testing.T) {
	err := prefixFieldErrors(FieldErrors{"goals_scored": "must be at least 0"}, "players[2].")
	var fe FieldErrors
	if !errors.As(err, &fe) || fe["players[2].goals_scored"] == "" {
		t.Fatalf("got %v", err)
	}

	plain := errors.New("boom")
	if prefixFieldErrors(plain, "x.") != plain {
		t.Fatalf("non-field errors must pass through")
	}
}

func TestPassAccuracy(t *testing.T) {
	tests := []struct {
		completed, total int
		want             float64
	}{
		{completed: 0, total: 0, want: 0},
		{completed: 45, total: 60, want: 75},
		{completed: 2, total: 3, want: 66.67},
	}
	for _, tt := range tests {
		if got := passAccuracy(tt.completed, tt.total); got != tt.want {
			t.Fatalf("passAccuracy(%d, %d) = %v, want %v", tt.completed, tt.total, got, tt.want)
		}
	}
}

func TestMakeSlugFallsBackForNonLatinNames(t *testing.T) {
	if got := makeSlug("FC Étoile Rouge"); got != "fc-etoile-rouge" {
		t.Fatalf("slug = %q", got)
	}
	if got := makeSlug("!!!"); len(got) != 8 {
		t.Fatalf("fallback slug = %q, want 8 random characters", got)
	}
}
