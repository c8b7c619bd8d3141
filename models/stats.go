package models

// StatLine - счётчики игрока, общие для состава на матч и карьеры.
type StatLine struct {
	GoalsScored   int `json:"goals_scored"`
	Assists       int `json:"assists"`
	YellowCards   int `json:"yellow_cards"`
	RedCards      int `json:"red_cards"`
	MinutesPlayed int `json:"minutes_played"`
}

func (s StatLine) Add(o StatLine) StatLine {
	return StatLine{
		GoalsScored:   s.GoalsScored + o.GoalsScored,
		Assists:       s.Assists + o.Assists,
		YellowCards:   s.YellowCards + o.YellowCards,
		RedCards:      s.RedCards + o.RedCards,
		MinutesPlayed: s.MinutesPlayed + o.MinutesPlayed,
	}
}

func (s StatLine) Sub(o StatLine) StatLine {
	return s.Add(o.Negate())
}

func (s StatLine) Negate() StatLine {
	return StatLine{
		GoalsScored:   -s.GoalsScored,
		Assists:       -s.Assists,
		YellowCards:   -s.YellowCards,
		RedCards:      -s.RedCards,
		MinutesPlayed: -s.MinutesPlayed,
	}
}

// FloorZero обнуляет отрицательные счётчики.
func (s StatLine) FloorZero() StatLine {
	return StatLine{
		GoalsScored:   max(s.GoalsScored, 0),
		Assists:       max(s.Assists, 0),
		YellowCards:   max(s.YellowCards, 0),
		RedCards:      max(s.RedCards, 0),
		MinutesPlayed: max(s.MinutesPlayed, 0),
	}
}

func (s StatLine) IsZero() bool {
	return s == StatLine{}
}
