// Package scoreboard lays matches out for a horizontally scrolling scoreboard:
// a date marker before each new calendar day, and an anchor on the match
// closest to now.
package scoreboard

import (
	"time"

	"efi-app/internal/model"
)

// BacklogWindow is how far in the past the anchor may sit before it jumps
// forward to the next upcoming match.
const BacklogWindow = 24 * time.Hour

type EntryKind string

const (
	EntryDate  EntryKind = "date"
	EntryMatch EntryKind = "match"
)

type dayKey struct {
	year  int
	month time.Month
	day   int
}

// Entry is either a date marker or a match.
type Entry struct {
	Kind EntryKind
	// Date is midnight of the marker's day in the board's location.
	Date time.Time
	// Match indexes the input slice for match entries.
	Match int
}

type Board struct {
	Entries []Entry
	// Anchor indexes Entries; nil when there are no matches.
	Anchor *int
	// AnchorMatch indexes the input slice; nil when there are no matches.
	AnchorMatch *int
}

// Build walks matches once in the given order. Day boundaries are taken in
// loc; a nil loc means UTC.
func Build(matches []model.MatchEvent, now time.Time, loc *time.Location) Board {
	if loc == nil {
		loc = time.UTC
	}
	board := Board{Entries: make([]Entry, 0, len(matches)+len(matches)/2)}
	seen := make(map[dayKey]bool)

	var (
		bestEntry int
		bestMatch int
		bestDist  time.Duration
		found     bool
	)
	for i, m := range matches {
		local := m.Time.In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		key := dayKey{local.Year(), local.Month(), local.Day()}
		if !seen[key] {
			seen[key] = true
			board.Entries = append(board.Entries, Entry{Kind: EntryDate, Date: day})
		}
		board.Entries = append(board.Entries, Entry{Kind: EntryMatch, Date: day, Match: i})

		dist := m.Time.Sub(now)
		if !found || closer(bestDist, dist) {
			found = true
			bestDist = dist
			bestEntry = len(board.Entries) - 1
			bestMatch = i
		}
	}
	if found {
		board.Anchor = &bestEntry
		board.AnchorMatch = &bestMatch
	}
	return board
}

// closer reports whether a match at dist should replace the current anchor at best.
func closer(best, dist time.Duration) bool {
	switch {
	case best < -BacklogWindow && dist >= 0:
		return true
	case best <= 0 && dist <= 0:
		return dist >= best
	case best > 0 && dist > 0:
		return dist < best
	}
	return false
}

// Matches returns the match entries of the board in order.
func (b Board) Matches() []Entry {
	out := make([]Entry, 0, len(b.Entries))
	for _, e := range b.Entries {
		if e.Kind == EntryMatch {
			out = append(out, e)
		}
	}
	return out
}
