package services

import (
	"sort"

	"github.com/Dosada05/u13-football/models"
)

// BuildStandings считает таблицу группы по завершённым матчам.
// Порядок участников на входе задаёт порядок при полном равенстве показателей.
func BuildStandings(members []models.TeamGroup, matches []models.TournamentMatch, scheme models.PointsScheme) []models.Standing {
	standings := make([]models.Standing, len(members))
	index := make(map[int]*models.Standing, len(members))
	for i, m := range members {
		standings[i] = models.Standing{TeamID: m.TeamID}
		if m.Team != nil {
			standings[i].TeamName = m.Team.Name
		}
		index[m.TeamID] = &standings[i]
	}

	for _, match := range matches {
		if match.Status != models.MatchFinished {
			continue
		}
		home := index[match.HomeTeamID]
		away := index[match.AwayTeamID]

		if home != nil {
			home.Played++
			home.GoalsScored += match.HomeScore
			home.GoalsConceded += match.AwayScore
		}
		if away != nil {
			away.Played++
			away.GoalsScored += match.AwayScore
			away.GoalsConceded += match.HomeScore
		}

		switch {
		case match.HomeScore > match.AwayScore:
			if home != nil {
				home.Wins++
			}
			if away != nil {
				away.Losses++
			}
		case match.HomeScore < match.AwayScore:
			if home != nil {
				home.Losses++
			}
			if away != nil {
				away.Wins++
			}
		default:
			if home != nil {
				home.Draws++
			}
			if away != nil {
				away.Draws++
			}
		}
	}

	for i := range standings {
		s := &standings[i]
		s.GoalDifference = s.GoalsScored - s.GoalsConceded
		s.Points = s.Wins*scheme.Win + s.Draws*scheme.Draw + s.Losses*scheme.Loss
	}

	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		return a.GoalsScored > b.GoalsScored
	})

	for i := range standings {
		standings[i].Position = i + 1
	}
	return standings
}
