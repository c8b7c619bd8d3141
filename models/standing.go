package models

type PointsScheme struct {
	Win  int
	Draw int
	Loss int
}

var DefaultPointsScheme = PointsScheme{Win: 3, Draw: 1, Loss: 0}

type Standing struct {
	Position       int    `json:"position"`
	TeamID         int    `json:"team_id"`
	TeamName       string `json:"team_name"`
	Played         int    `json:"played"`
	Wins           int    `json:"wins"`
	Draws          int    `json:"draws"`
	Losses         int    `json:"losses"`
	GoalsScored    int    `json:"goals_scored"`
	GoalsConceded  int    `json:"goals_conceded"`
	GoalDifference int    `json:"goal_difference"`
	Points         int    `json:"points"`
}

type GroupStandings struct {
	GroupID   int        `json:"group_id"`
	GroupName string     `json:"group_name"`
	Standings []Standing `json:"standings"`
}
