package web

import (
	"context"
	"time"

	"efi-app/internal/model"
	"efi-app/internal/scoreboard"

	"github.com/go-kit/kit/log/level"
)

// validMatches drops events that cannot be placed on a scoreboard. A missing
// kickoff is never replaced by the current time.
func (s *Server) validMatches(ctx context.Context, matches []model.MatchEvent) []model.MatchEvent {
	out := make([]model.MatchEvent, 0, len(matches))
	for _, m := range matches {
		if err := m.Validate(); err != nil {
			level.Warn(s.logger).Log("msg", "dropping match", "request_id", RequestID(ctx), "match_id", m.ID, "err", err)
			if s.metrics != nil {
				s.metrics.DroppedMatches.Inc()
			}
			continue
		}
		out = append(out, m)
	}
	return out
}

// mergeRounds concatenates two rounds, keeping the first occurrence of a match
// listed in both.
func mergeRounds(current, next []model.MatchEvent) []model.MatchEvent {
	seen := make(map[int64]bool, len(current)+len(next))
	out := make([]model.MatchEvent, 0, len(current)+len(next))
	for _, round := range [][]model.MatchEvent{current, next} {
		for _, m := range round {
			if seen[m.ID] {
				continue
			}
			seen[m.ID] = true
			out = append(out, m)
		}
	}
	return out
}

func buildScoreboard(matches []model.MatchEvent, now time.Time, loc *time.Location) (entries []EntryView, anchor *int, anchorMatchID *int64) {
	board := scoreboard.Build(matches, now, loc)
	entries = make([]EntryView, len(board.Entries))
	for i, e := range board.Entries {
		view := EntryView{Kind: e.Kind, Date: e.Date.Format(time.DateOnly)}
		switch e.Kind {
		case scoreboard.EntryDate:
			view.Label = e.Date.Format("Mon Jan 02 2006")
		case scoreboard.EntryMatch:
			m := matches[e.Match]
			view.Match = &MatchView{MatchEvent: m, Highlight: scoreboard.HighlightFor(m)}
		}
		entries[i] = view
	}
	if board.AnchorMatch != nil {
		id := matches[*board.AnchorMatch].ID
		anchorMatchID = &id
	}
	return entries, board.Anchor, anchorMatchID
}
