package store

import (
	"context"
	"sort"
	"sync"

	"efi-app/internal/model"
)

type tableKey struct {
	competitionID int
	season        int
	matchweek     int
}

type scoreKey struct {
	competitionID int
	season        int
	id            int64
}

type MemoryStore struct {
	mu     sync.RWMutex
	latest map[int]model.Latest
	tables map[tableKey]model.Table
	scores map[scoreKey]model.MatchEvent
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		latest: make(map[int]model.Latest),
		tables: make(map[tableKey]model.Table),
		scores: make(map[scoreKey]model.MatchEvent),
	}
}

func (s *MemoryStore) GetLatest(_ context.Context, competitionID int) (model.Latest, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.latest[competitionID]
	if !ok {
		return model.Latest{}, false, nil
	}
	return cloneLatest(l), true, nil
}

func (s *MemoryStore) GetTable(_ context.Context, competitionID, season, matchweek int) (model.Table, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tables[tableKey{competitionID, season, matchweek}]
	if !ok {
		return model.Table{}, false, nil
	}
	t.Rows = t.CloneRows()
	return t, true, nil
}

func (s *MemoryStore) ListScores(_ context.Context, competitionID, season, matchweek int) ([]model.MatchEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.MatchEvent{}
	for k, m := range s.scores {
		if k.competitionID != competitionID || k.season != season || !m.InMatchweek(matchweek) {
			continue
		}
		out = append(out, m)
	}
	sortScores(out)
	return out, nil
}

func (s *MemoryStore) PutLatest(_ context.Context, latest model.Latest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest[latest.CompetitionID] = cloneLatest(latest)
	return nil
}

func (s *MemoryStore) PutTable(_ context.Context, table model.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	table.Rows = table.CloneRows()
	s.tables[tableKey{table.CompetitionID, table.Season, table.Matchweek}] = table
	return nil
}

func (s *MemoryStore) PutScores(_ context.Context, matches []model.MatchEvent) error {
	if err := validateScores(matches); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range matches {
		s.scores[scoreKey{m.CompetitionID, m.Season, m.ID}] = m
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func sortScores(matches []model.MatchEvent) {
	sort.SliceStable(matches, func(i, j int) bool {
		if !matches[i].Time.Equal(matches[j].Time) {
			return matches[i].Time.Before(matches[j].Time)
		}
		return matches[i].ID < matches[j].ID
	})
}

func cloneLatest(l model.Latest) model.Latest {
	l.Seasons = append([]model.Season(nil), l.Seasons...)
	if l.Trends != nil {
		t := *l.Trends
		l.Trends = &t
	}
	return l
}
