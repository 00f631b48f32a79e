// Package importer loads a bundle of pre-computed documents into a store.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"efi-app/internal/model"
	"efi-app/internal/store"
)

var ErrInvalidBundle = errors.New("invalid bundle")

// Bundle is the export written by the ratings model: table snapshots, match
// events and latest pointers.
type Bundle struct {
	Tables []model.Table      `json:"tables"`
	Scores []model.MatchEvent `json:"scores"`
	Latest []model.Latest     `json:"latest"`
}

// Summary counts the documents written by Apply.
type Summary struct {
	Tables int
	Scores int
	Latest int
}

func Decode(r io.Reader) (Bundle, error) {
	var b Bundle
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return Bundle{}, fmt.Errorf("decode bundle: %w", err)
	}
	return b, nil
}

// Validate checks every document against the catalog and stops at the first
// offending one.
func Validate(b Bundle, catalog model.Catalog) error {
	for _, t := range b.Tables {
		key := fmt.Sprintf("table %d/%d/%d", t.CompetitionID, t.Season, t.Matchweek)
		comp, ok := catalog.ByID(t.CompetitionID)
		if !ok {
			return fmt.Errorf("%w: %s: unknown competition", ErrInvalidBundle, key)
		}
		if t.Season <= 0 || t.Matchweek < 0 {
			return fmt.Errorf("%w: %s: bad season or matchweek", ErrInvalidBundle, key)
		}
		if t.CompletedMatches > t.TotalMatches {
			return fmt.Errorf("%w: %s: %d of %d matches completed", ErrInvalidBundle, key, t.CompletedMatches, t.TotalMatches)
		}
		if len(t.Rows) != comp.LeagueSize {
			return fmt.Errorf("%w: %s: %d rows for a league of %d", ErrInvalidBundle, key, len(t.Rows), comp.LeagueSize)
		}
		for _, row := range t.Rows {
			if err := row.Validate(comp.LeagueSize); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrInvalidBundle, key, err)
			}
		}
	}

	seen := make(map[[3]int64]bool, len(b.Scores))
	for _, m := range b.Scores {
		key := fmt.Sprintf("match %d/%d/%d", m.CompetitionID, m.Season, m.ID)
		if _, ok := catalog.ByID(m.CompetitionID); !ok {
			return fmt.Errorf("%w: %s: unknown competition", ErrInvalidBundle, key)
		}
		if m.ID == 0 || m.Season <= 0 {
			return fmt.Errorf("%w: %s: missing id or season", ErrInvalidBundle, key)
		}
		id := [3]int64{int64(m.CompetitionID), int64(m.Season), m.ID}
		if seen[id] {
			return fmt.Errorf("%w: %s: duplicate", ErrInvalidBundle, key)
		}
		seen[id] = true
		if err := m.Validate(); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidBundle, key, err)
		}
	}

	for _, l := range b.Latest {
		key := fmt.Sprintf("latest %d", l.CompetitionID)
		if _, ok := catalog.ByID(l.CompetitionID); !ok {
			return fmt.Errorf("%w: %s: unknown competition", ErrInvalidBundle, key)
		}
		for _, p := range []model.Pointer{l.Table, l.Scores} {
			count, ok := l.Matchweeks(p.Season)
			if !ok || p.Matchweek > count {
				return fmt.Errorf("%w: %s: pointer %d/%d outside listed seasons", ErrInvalidBundle, key, p.Season, p.Matchweek)
			}
		}
	}
	return nil
}

// Apply upserts the bundle. Latest pointers are written after the documents
// they point at.
func Apply(ctx context.Context, s store.Store, b Bundle) (Summary, error) {
	var sum Summary
	for _, t := range b.Tables {
		if err := s.PutTable(ctx, t); err != nil {
			return sum, fmt.Errorf("put table %d/%d/%d: %w", t.CompetitionID, t.Season, t.Matchweek, err)
		}
		sum.Tables++
	}
	if len(b.Scores) > 0 {
		if err := s.PutScores(ctx, b.Scores); err != nil {
			return sum, fmt.Errorf("put scores: %w", err)
		}
		sum.Scores = len(b.Scores)
	}
	for _, l := range b.Latest {
		if err := s.PutLatest(ctx, l); err != nil {
			return sum, fmt.Errorf("put latest %d: %w", l.CompetitionID, err)
		}
		sum.Latest++
	}
	return sum, nil
}
