package repositories

import (
	"slices"
	"strings"
)

// Scope - множество записей, видимых пользователю. Предикаты объединяются через OR.
// Нулевое значение не пропускает ничего.
type Scope struct {
	All         bool
	OrganizerID *int
	CreatorID   *int
	TeamIDs     []int
	ClubIDs     []int
}

// ScopeKeys - ключи конкретной записи, по которым проверяется видимость.
type ScopeKeys struct {
	OrganizerID *int
	CreatorID   *int
	TeamIDs     []int
	ClubIDs     []int
}

func (s Scope) IsEmpty() bool {
	return !s.All && s.OrganizerID == nil && s.CreatorID == nil && len(s.TeamIDs) == 0 && len(s.ClubIDs) == 0
}

// Permits проверяет уже загруженную запись тем же правилом, что и SQL-фильтр.
func (s Scope) Permits(k ScopeKeys) bool {
	if s.All {
		return true
	}
	if s.OrganizerID != nil && k.OrganizerID != nil && *s.OrganizerID == *k.OrganizerID {
		return true
	}
	if s.CreatorID != nil && k.CreatorID != nil && *s.CreatorID == *k.CreatorID {
		return true
	}
	for _, id := range k.TeamIDs {
		if slices.Contains(s.TeamIDs, id) {
			return true
		}
	}
	for _, id := range k.ClubIDs {
		if slices.Contains(s.ClubIDs, id) {
			return true
		}
	}
	return false
}

// scopeColumns описывает, как предикаты Scope выражаются для конкретной таблицы.
// Пустое поле означает, что предикат к семейству неприменим.
type scopeColumns struct {
	organizer string
	creator   string
	teams     func(param string) string
	clubs     func(param string) string
}

// clause строит условие для WHERE. Всегда возвращает валидное выражение.
func (s Scope) clause(cols scopeColumns, p *placeholders) string {
	if s.All {
		return "TRUE"
	}
	var parts []string
	if s.OrganizerID != nil && cols.organizer != "" {
		parts = append(parts, cols.organizer+" = "+p.add(*s.OrganizerID))
	}
	if s.CreatorID != nil && cols.creator != "" {
		parts = append(parts, cols.creator+" = "+p.add(*s.CreatorID))
	}
	if len(s.TeamIDs) > 0 && cols.teams != nil {
		parts = append(parts, cols.teams(p.add(int64Array(s.TeamIDs))))
	}
	if len(s.ClubIDs) > 0 && cols.clubs != nil {
		parts = append(parts, cols.clubs(p.add(int64Array(s.ClubIDs))))
	}
	if len(parts) == 0 {
		return "FALSE"
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

// Колонки для матчей: обе стороны и клубы обеих сторон.
func matchSideColumns(alias string) (func(string) string, func(string) string) {
	teams := func(param string) string {
		return "(" + alias + ".home_team_id = ANY(" + param + ") OR " + alias + ".away_team_id = ANY(" + param + "))"
	}
	clubs := func(param string) string {
		return "EXISTS (SELECT 1 FROM teams st WHERE st.id IN (" + alias + ".home_team_id, " + alias + ".away_team_id) AND st.club_id = ANY(" + param + "))"
	}
	return teams, clubs
}
