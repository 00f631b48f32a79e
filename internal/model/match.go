package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrMissingKickoff  = errors.New("match has no kickoff time")
	ErrIncompleteScore = errors.New("completed match is missing a score")
)

// MatchEvent is one scheduled or completed fixture.
type MatchEvent struct {
	ID                   int64     `json:"id" bson:"id"`
	CompetitionID        int       `json:"competition_id" bson:"competition_id"`
	Season               int       `json:"season" bson:"season"`
	Matchweek            int       `json:"matchweek" bson:"matchweek"`
	DisplayWithMatchweek int       `json:"display_with_matchweek" bson:"display_with_matchweek"`
	Time                 time.Time `json:"time" bson:"time"`
	Completed            bool      `json:"completed" bson:"completed"`
	Club1                string    `json:"club_1" bson:"club_1"`
	Club2                string    `json:"club_2" bson:"club_2"`
	Club1Abbrev          string    `json:"club_1_abbrev" bson:"club_1_abbrev"`
	Club2Abbrev          string    `json:"club_2_abbrev" bson:"club_2_abbrev"`
	IconLink1            string    `json:"icon_link_1" bson:"icon_link_1"`
	IconLink2            string    `json:"icon_link_2" bson:"icon_link_2"`
	Score1               *int      `json:"score_1" bson:"score_1"`
	Score2               *int      `json:"score_2" bson:"score_2"`
	Prob1                float64   `json:"prob_1" bson:"prob_1"`
	Prob2                float64   `json:"prob_2" bson:"prob_2"`
	ProbD                float64   `json:"prob_d" bson:"prob_d"`
	Network              *string   `json:"network" bson:"network"`
}

func (m MatchEvent) Validate() error {
	if m.Time.IsZero() {
		return fmt.Errorf("%w: match %d", ErrMissingKickoff, m.ID)
	}
	if m.Completed && (m.Score1 == nil || m.Score2 == nil) {
		return fmt.Errorf("%w: match %d", ErrIncompleteScore, m.ID)
	}
	return nil
}

// Finished reports whether the final score is known.
func (m MatchEvent) Finished() bool {
	return m.Completed && m.Score1 != nil && m.Score2 != nil
}

// InMatchweek reports whether the match is listed under matchweek either by
// its own round or by the round it is displayed with.
func (m MatchEvent) InMatchweek(matchweek int) bool {
	return m.Matchweek == matchweek || m.DisplayWithMatchweek == matchweek
}
