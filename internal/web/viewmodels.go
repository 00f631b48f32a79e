package web

import (
	"efi-app/internal/model"
	"efi-app/internal/scoreboard"
	"efi-app/internal/standings"
)

type CompetitionsResponse struct {
	Competitions []model.Competition `json:"competitions"`
}

type LatestResponse struct {
	Latest *model.Latest `json:"latest"`
}

// RowView is a table row with its position probabilities as numbers and the
// derived champion, top-four and relegation odds.
type RowView struct {
	model.TeamRow
	ProbPositions []float64 `json:"prob_positions"`
	ProbChampion  float64   `json:"prob_champion"`
	ProbTop4      float64   `json:"prob_top_4"`
	ProbRel       float64   `json:"prob_rel"`
}

type TableView struct {
	CompetitionID    int       `json:"competition_id"`
	Season           int       `json:"season"`
	Matchweek        int       `json:"matchweek"`
	CompletedMatches int       `json:"completed_matches"`
	TotalMatches     int       `json:"total_matches"`
	Rows             []RowView `json:"rows"`
}

type TableResponse struct {
	Table     *TableView        `json:"table"`
	Ranks     []int             `json:"ranks"`
	Sort      standings.SortKey `json:"sort"`
	Desc      bool              `json:"desc"`
	Matchweek int               `json:"matchweek"`
	Caption   standings.Caption `json:"caption"`
}

type ScoresResponse struct {
	Scores []model.MatchEvent `json:"scores"`
}

type MatchView struct {
	model.MatchEvent
	Highlight scoreboard.Highlight `json:"highlight"`
}

// EntryView is one scoreboard slot: a date marker or a match.
type EntryView struct {
	Kind scoreboard.EntryKind `json:"kind"`
	// Date is the local day as YYYY-MM-DD.
	Date  string     `json:"date"`
	Label string     `json:"label,omitempty"`
	Match *MatchView `json:"match,omitempty"`
}

type ScoreboardResponse struct {
	Season        int         `json:"season"`
	Matchweek     int         `json:"matchweek"`
	Timezone      string      `json:"timezone"`
	Entries       []EntryView `json:"entries"`
	Anchor        *int        `json:"anchor"`
	AnchorMatchID *int64      `json:"anchor_match_id"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}
