package store

import (
	"context"
	"time"

	"efi-app/internal/cache"
	"efi-app/internal/model"
	"efi-app/internal/observability"
)

type latestResult struct {
	latest model.Latest
	found  bool
}

type tableResult struct {
	table model.Table
	found bool
}

// Cached serves repeated reads from memory for ttl. Misses are cached too, so
// a table that does not exist yet is not looked up on every request. Writes
// through Cached drop every cached read.
type Cached struct {
	next    Store
	metrics *observability.Metrics

	latest *cache.TTL[int, latestResult]
	tables *cache.TTL[tableKey, tableResult]
	scores *cache.TTL[tableKey, []model.MatchEvent]
}

var _ Store = (*Cached)(nil)

func NewCached(next Store, ttl time.Duration, metrics *observability.Metrics) *Cached {
	return &Cached{
		next:    next,
		metrics: metrics,
		latest:  cache.New[int, latestResult](ttl),
		tables:  cache.New[tableKey, tableResult](ttl),
		scores:  cache.New[tableKey, []model.MatchEvent](ttl),
	}
}

func (c *Cached) GetLatest(ctx context.Context, competitionID int) (model.Latest, bool, error) {
	if r, ok := c.latest.Get(competitionID); ok {
		c.metrics.CacheResult("get_latest", true)
		return cloneLatest(r.latest), r.found, nil
	}
	c.metrics.CacheResult("get_latest", false)

	l, found, err := c.next.GetLatest(ctx, competitionID)
	if err != nil {
		return model.Latest{}, false, err
	}
	c.latest.Set(competitionID, latestResult{latest: cloneLatest(l), found: found})
	return l, found, nil
}

func (c *Cached) GetTable(ctx context.Context, competitionID, season, matchweek int) (model.Table, bool, error) {
	key := tableKey{competitionID, season, matchweek}
	if r, ok := c.tables.Get(key); ok {
		c.metrics.CacheResult("get_table", true)
		t := r.table
		t.Rows = t.CloneRows()
		return t, r.found, nil
	}
	c.metrics.CacheResult("get_table", false)

	t, found, err := c.next.GetTable(ctx, competitionID, season, matchweek)
	if err != nil {
		return model.Table{}, false, err
	}
	stored := t
	stored.Rows = t.CloneRows()
	c.tables.Set(key, tableResult{table: stored, found: found})
	return t, found, nil
}

func (c *Cached) ListScores(ctx context.Context, competitionID, season, matchweek int) ([]model.MatchEvent, error) {
	key := tableKey{competitionID, season, matchweek}
	if matches, ok := c.scores.Get(key); ok {
		c.metrics.CacheResult("list_scores", true)
		return append([]model.MatchEvent(nil), matches...), nil
	}
	c.metrics.CacheResult("list_scores", false)

	matches, err := c.next.ListScores(ctx, competitionID, season, matchweek)
	if err != nil {
		return nil, err
	}
	c.scores.Set(key, append([]model.MatchEvent(nil), matches...))
	return matches, nil
}

func (c *Cached) PutLatest(ctx context.Context, latest model.Latest) error {
	defer c.invalidate()
	return c.next.PutLatest(ctx, latest)
}

func (c *Cached) PutTable(ctx context.Context, table model.Table) error {
	defer c.invalidate()
	return c.next.PutTable(ctx, table)
}

func (c *Cached) PutScores(ctx context.Context, matches []model.MatchEvent) error {
	defer c.invalidate()
	return c.next.PutScores(ctx, matches)
}

// Prune drops expired entries.
func (c *Cached) Prune() int {
	return c.latest.Prune() + c.tables.Prune() + c.scores.Prune()
}

func (c *Cached) Close() error {
	c.invalidate()
	return c.next.Close()
}

func (c *Cached) invalidate() {
	c.latest.Clear()
	c.tables.Clear()
	c.scores.Clear()
}
