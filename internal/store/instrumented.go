package store

import (
	"context"
	"time"

	"efi-app/internal/model"
	"efi-app/internal/observability"
)

// Instrumented records the latency and failures of every call to the wrapped
// backend.
type Instrumented struct {
	next    Store
	backend string
	metrics *observability.Metrics
}

var _ Store = (*Instrumented)(nil)

func NewInstrumented(next Store, backend string, metrics *observability.Metrics) *Instrumented {
	return &Instrumented{next: next, backend: backend, metrics: metrics}
}

func (s *Instrumented) observe(op string, start time.Time, err error) {
	s.metrics.ObserveQuery(s.backend, op, time.Since(start), err)
}

func (s *Instrumented) GetLatest(ctx context.Context, competitionID int) (l model.Latest, found bool, err error) {
	defer func(start time.Time) { s.observe("get_latest", start, err) }(time.Now())
	return s.next.GetLatest(ctx, competitionID)
}

func (s *Instrumented) GetTable(ctx context.Context, competitionID, season, matchweek int) (t model.Table, found bool, err error) {
	defer func(start time.Time) { s.observe("get_table", start, err) }(time.Now())
	return s.next.GetTable(ctx, competitionID, season, matchweek)
}

func (s *Instrumented) ListScores(ctx context.Context, competitionID, season, matchweek int) (matches []model.MatchEvent, err error) {
	defer func(start time.Time) { s.observe("list_scores", start, err) }(time.Now())
	return s.next.ListScores(ctx, competitionID, season, matchweek)
}

func (s *Instrumented) PutLatest(ctx context.Context, latest model.Latest) (err error) {
	defer func(start time.Time) { s.observe("put_latest", start, err) }(time.Now())
	return s.next.PutLatest(ctx, latest)
}

func (s *Instrumented) PutTable(ctx context.Context, table model.Table) (err error) {
	defer func(start time.Time) { s.observe("put_table", start, err) }(time.Now())
	return s.next.PutTable(ctx, table)
}

func (s *Instrumented) PutScores(ctx context.Context, matches []model.MatchEvent) (err error) {
	defer func(start time.Time) { s.observe("put_scores", start, err) }(time.Now())
	return s.next.PutScores(ctx, matches)
}

func (s *Instrumented) Close() error {
	return s.next.Close()
}
