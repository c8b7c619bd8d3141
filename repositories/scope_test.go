package repositories

import (
	"strings"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestScopeClause(t *testing.T) {
	teams, clubs := matchSideColumns("m")
	cols := scopeColumns{organizer: "tr.organizer_id", creator: "m.created_by", teams: teams, clubs: clubs}

	tests := []struct {
		name     string
		scope    Scope
		want     string
		wantArgs int
	}{
		{name: "zero value denies", scope: Scope{}, want: "FALSE"},
		{name: "all", scope: Scope{All: true, OrganizerID: intPtr(1)}, want: "TRUE"},
		{name: "organizer only", scope: Scope{OrganizerID: intPtr(7)}, want: "(tr.organizer_id = $1)", wantArgs: 1},
		{
			name:     "creator or organizer",
			scope:    Scope{OrganizerID: intPtr(7), CreatorID: intPtr(7)},
			want:     "(tr.organizer_id = $1 OR m.created_by = $2)",
			wantArgs: 2,
		},
		{
			name:     "teams",
			scope:    Scope{TeamIDs: []int{3, 4}},
			want:     "((m.home_team_id = ANY($1) OR m.away_team_id = ANY($1)))",
			wantArgs: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &placeholders{}
			got := tt.scope.clause(cols, p)
			if got != tt.want {
				t.Fatalf("clause = %q, want %q", got, tt.want)
			}
			if len(p.args) != tt.wantArgs {
				t.Fatalf("args = %d, want %d", len(p.args), tt.wantArgs)
			}
		})
	}
}

func TestScopeClauseIgnoresUnsupportedPredicates(t *testing.T) {
	p := &placeholders{}
	got := Scope{CreatorID: intPtr(2)}.clause(teamScopeColumns, p)
	if got != "FALSE" {
		t.Fatalf("expected FALSE for a creator predicate on teams, got %q", got)
	}
	if len(p.args) != 0 {
		t.Fatalf("expected no args, got %d", len(p.args))
	}
}

func TestScopeClauseContinuesNumbering(t *testing.T) {
	p := &placeholders{}
	p.add("existing")
	got := Scope{ClubIDs: []int{1}}.clause(teamScopeColumns, p)
	if !strings.Contains(got, "$2") {
		t.Fatalf("expected placeholder $2 in %q", got)
	}
}

func TestScopePermits(t *testing.T) {
	tests := []struct {
		name  string
		scope Scope
		keys  ScopeKeys
		want  bool
	}{
		{"zero scope", Scope{}, ScopeKeys{TeamIDs: []int{1}}, false},
		{"all", Scope{All: true}, ScopeKeys{}, true},
		{"organizer match", Scope{OrganizerID: intPtr(5)}, ScopeKeys{OrganizerID: intPtr(5)}, true},
		{"organizer mismatch", Scope{OrganizerID: intPtr(5)}, ScopeKeys{OrganizerID: intPtr(6)}, false},
		{"creator nil key", Scope{CreatorID: intPtr(5)}, ScopeKeys{}, false},
		{"team overlap", Scope{TeamIDs: []int{1, 2}}, ScopeKeys{TeamIDs: []int{9, 2}}, true},
		{"club overlap", Scope{ClubIDs: []int{3}}, ScopeKeys{ClubIDs: []int{3}}, true},
		{"no overlap", Scope{TeamIDs: []int{1}, ClubIDs: []int{3}}, ScopeKeys{TeamIDs: []int{2}, ClubIDs: []int{4}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.scope.Permits(tt.keys); got != tt.want {
				t.Fatalf("Permits = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScopeIsEmpty(t *testing.T) {
	if !(Scope{}).IsEmpty() {
		t.Fatal("zero scope must be empty")
	}
	if (Scope{TeamIDs: []int{1}}).IsEmpty() {
		t.Fatal("scope with teams must not be empty")
	}
}
