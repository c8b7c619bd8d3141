package services

import (
	"github.com/Dosada05/u13-football/models"
	"github.com/Dosada05/u13-football/repositories"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Page - параметры постраничной выдачи списков.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) normalized() Page {
	if p.Limit <= 0 {
		p.Limit = defaultPageSize
	}
	if p.Limit > maxPageSize {
		p.Limit = maxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// visible проверяет уже загруженную запись тем же правилом, что и фильтр списков.
func visible(p *Principal, family Family, keys repositories.ScopeKeys) bool {
	return ResolveScope(p, family).Permits(keys)
}

// sideKeys - ключи видимости по участвующим командам.
func sideKeys(teams ...*models.Team) repositories.ScopeKeys {
	keys := repositories.ScopeKeys{}
	for _, t := range teams {
		if t == nil {
			continue
		}
		keys.TeamIDs = append(keys.TeamIDs, t.ID)
		keys.ClubIDs = append(keys.ClubIDs, t.ClubID)
	}
	return keys
}

// teamSide не даёт положить nil *models.Team в интерфейс.
func teamSide(t *models.Team) models.TeamSide {
	if t == nil {
		return nil
	}
	return t
}
