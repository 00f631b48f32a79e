package importer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"efi-app/internal/model"
	"efi-app/internal/store"
)

var catalog = model.Catalog{{ID: 1, Name: "Test League", Slug: "test", LeagueSize: 4}}

const bundleJSON = `{
  "tables": [{
    "competition_id": 1, "season": 2024, "matchweek": 1,
    "completed_matches": 2, "total_matches": 2,
    "rows": [
      {"name": "A", "mp": 1, "w": 1, "gf": 2, "ga": 0, "gd": 2, "pts": 3, "form": ["W"], "prob_positions": ["0.4000", "0.3000", "0.2000", "0.1000"]},
      {"name": "B", "mp": 1, "w": 1, "gf": 1, "ga": 0, "gd": 1, "pts": 3, "form": ["W"], "prob_positions": ["0.3000", "0.3000", "0.2000", "0.2000"]},
      {"name": "C", "mp": 1, "l": 1, "gf": 0, "ga": 1, "gd": -1, "pts": 0, "form": ["L"], "prob_positions": ["0.2000", "0.2000", "0.3000", "0.3000"]},
      {"name": "D", "mp": 1, "l": 1, "gf": 0, "ga": 2, "gd": -2, "pts": 0, "form": ["L"], "prob_positions": ["0.1000", "0.2000", "0.3000", "0.4000"]}
    ]
  }],
  "scores": [
    {"id": 10, "competition_id": 1, "season": 2024, "matchweek": 1, "display_with_matchweek": 1,
     "time": "2024-08-17T14:00:00Z", "completed": true, "score_1": 2, "score_2": 0, "prob_1": 0.5, "prob_2": 0.2, "prob_d": 0.3},
    {"id": 11, "competition_id": 1, "season": 2024, "matchweek": 2, "display_with_matchweek": 2,
     "time": "2024-08-24T14:00:00Z", "score_1": null, "score_2": null, "prob_1": 0.4, "prob_2": 0.3, "prob_d": 0.3}
  ],
  "latest": [{
    "competition_id": 1,
    "table": {"season": 2024, "matchweek": 1},
    "scores": {"season": 2024, "matchweek": 1},
    "seasons": [{"season": 2024, "matchweeks": 1}]
  }]
}`

func decodeFixture(t *testing.T) Bundle {
	t.Helper()
	b, err := Decode(strings.NewReader(bundleJSON))
	require.NoError(t, err)
	return b
}

func TestDecode(t *testing.T) {
	b := decodeFixture(t)
	require.Len(t, b.Tables, 1)
	require.Len(t, b.Scores, 2)
	require.Len(t, b.Latest, 1)

	assert.True(t, b.Tables[0].Rows[0].ProbPositions[0].Equal(decimal.RequireFromString("0.4")))
	assert.Nil(t, b.Scores[1].Score1)
	assert.Equal(t, 2, *b.Scores[0].Score1)

	_, err := Decode(strings.NewReader(`{"tables": [`))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(decodeFixture(t), catalog))

	tests := []struct {
		name   string
		mutate func(*Bundle)
		want   string
	}{
		{"unknown competition", func(b *Bundle) { b.Tables[0].CompetitionID = 9 }, "table 9/2024/1"},
		{"row count", func(b *Bundle) { b.Tables[0].Rows = b.Tables[0].Rows[:3] }, "3 rows"},
		{"bad row", func(b *Bundle) { b.Tables[0].Rows[1].Pts = 4 }, "table 1/2024/1"},
		{"completed over total", func(b *Bundle) { b.Tables[0].CompletedMatches = 3 }, "3 of 2"},
		{"match without kickoff", func(b *Bundle) { b.Scores[1].Time = time.Time{} }, "match 1/2024/11"},
		{"completed without score", func(b *Bundle) { b.Scores[1].Completed = true }, "missing a score"},
		{"duplicate match", func(b *Bundle) { b.Scores[1].ID = 10 }, "duplicate"},
		{"pointer outside seasons", func(b *Bundle) { b.Latest[0].Scores.Matchweek = 2 }, "latest 1"},
		{"unlisted season", func(b *Bundle) { b.Latest[0].Table.Season = 2023 }, "2023/1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := decodeFixture(t)
			tt.mutate(&b)
			err := Validate(b, catalog)
			require.ErrorIs(t, err, ErrInvalidBundle)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	sum, err := Apply(ctx, s, decodeFixture(t))
	require.NoError(t, err)
	assert.Equal(t, Summary{Tables: 1, Scores: 2, Latest: 1}, sum)

	latest, found, err := s.GetLatest(ctx, 1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, model.Pointer{Season: 2024, Matchweek: 1}, latest.Table)

	table, found, err := s.GetTable(ctx, 1, 2024, 1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, table.Rows, 4)

	round2, err := s.ListScores(ctx, 1, 2024, 2)
	require.NoError(t, err)
	require.Len(t, round2, 1)
	assert.Equal(t, int64(11), round2[0].ID)

	// applying twice upserts in place
	_, err = Apply(ctx, s, decodeFixture(t))
	require.NoError(t, err)
	round1, err := s.ListScores(ctx, 1, 2024, 1)
	require.NoError(t, err)
	assert.Len(t, round1, 1)
}
