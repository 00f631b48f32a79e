package model

// Pointer names a season and matchweek.
type Pointer struct {
	Season    int `json:"season" bson:"season"`
	Matchweek int `json:"matchweek" bson:"matchweek"`
}

type Season struct {
	Season     int `json:"season" bson:"season"`
	Matchweeks int `json:"matchweeks" bson:"matchweeks"`
}

type Trend struct {
	ShortName string  `json:"short_name" bson:"short_name"`
	IconLink  string  `json:"icon_link" bson:"icon_link"`
	Change    float64 `json:"change" bson:"change"`
	Current   float64 `json:"current" bson:"current"`
}

type Trends struct {
	Up   Trend `json:"up" bson:"up"`
	Down Trend `json:"down" bson:"down"`
}

// Latest points at the most recent table and scores for a competition.
type Latest struct {
	CompetitionID int      `json:"competition_id" bson:"competition_id"`
	Table         Pointer  `json:"table" bson:"table"`
	Scores        Pointer  `json:"scores" bson:"scores"`
	Seasons       []Season `json:"seasons" bson:"seasons"`
	Trends        *Trends  `json:"trends" bson:"trends"`
}

// Matchweeks returns the number of matchweeks recorded for season.
func (l Latest) Matchweeks(season int) (int, bool) {
	for _, s := range l.Seasons {
		if s.Season == season {
			return s.Matchweeks, true
		}
	}
	return 0, false
}

// HasSeason reports whether season is listed.
func (l Latest) HasSeason(season int) bool {
	_, ok := l.Matchweeks(season)
	return ok
}
