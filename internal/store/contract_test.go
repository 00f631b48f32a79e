package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"efi-app/internal/model"
)

// ptr is a helper to create pointers to values.
func ptr[T any](v T) *T {
	return &v
}

var kickoff = time.Date(2024, time.October, 19, 14, 0, 0, 0, time.UTC)

func sampleTable() model.Table {
	return model.Table{
		CompetitionID:    1,
		Season:           2024,
		Matchweek:        8,
		CompletedMatches: 10,
		TotalMatches:     10,
		Rows: []model.TeamRow{
			{
				UpdateDate: "2024-10-20", Rank: 1, Change: 1, Name: "Liverpool", Abbrev: "LIV",
				EFI: 61.2, Off: 1.9, Def: 0.8, MP: 8, W: 7, D: 0, L: 1, GF: 17, GA: 5, GD: 12, Pts: 21,
				Form:          []model.FormResult{model.FormWin, model.FormWin, model.FormLoss, model.FormWin, model.FormWin},
				ProbPositions: []decimal.Decimal{decimal.RequireFromString("0.4512"), decimal.RequireFromString("0.5488")},
				AvgPts:        84.3, AvgGD: 48.1,
			},
			{
				UpdateDate: "2024-10-20", Rank: 2, Change: -1, Name: "Manchester City", Abbrev: "MCI",
				EFI: 60.4, Off: 2.0, Def: 0.9, MP: 8, W: 6, D: 2, L: 0, GF: 17, GA: 8, GD: 9, Pts: 20,
				Form:          []model.FormResult{model.FormDraw, model.FormWin},
				ProbPositions: []decimal.Decimal{decimal.RequireFromString("0.5488"), decimal.RequireFromString("0.4512")},
				AvgPts:        83.9, AvgGD: 45.0,
			},
		},
	}
}

func sampleScores() []model.MatchEvent {
	network := "Sky Sports"
	return []model.MatchEvent{
		{ID: 3, CompetitionID: 1, Season: 2024, Matchweek: 8, DisplayWithMatchweek: 8, Time: kickoff.Add(2 * time.Hour), Club1: "Arsenal", Club2: "Bournemouth", Prob1: 0.7, ProbD: 0.2, Prob2: 0.1},
		{ID: 1, CompetitionID: 1, Season: 2024, Matchweek: 8, DisplayWithMatchweek: 8, Time: kickoff, Completed: true, Club1: "Liverpool", Club2: "Chelsea", Score1: ptr(2), Score2: ptr(1), Prob1: 0.5, ProbD: 0.25, Prob2: 0.25, Network: &network},
		{ID: 2, CompetitionID: 1, Season: 2024, Matchweek: 8, DisplayWithMatchweek: 8, Time: kickoff, Club1: "Fulham", Club2: "Everton", Prob1: 0.4, ProbD: 0.3, Prob2: 0.3},
		// postponed from round 5, shown with round 8
		{ID: 4, CompetitionID: 1, Season: 2024, Matchweek: 5, DisplayWithMatchweek: 8, Time: kickoff.Add(-time.Hour), Club1: "Wolves", Club2: "Brighton", Prob1: 0.3, ProbD: 0.3, Prob2: 0.4},
		{ID: 5, CompetitionID: 1, Season: 2024, Matchweek: 9, DisplayWithMatchweek: 9, Time: kickoff.Add(7 * 24 * time.Hour), Club1: "Chelsea", Club2: "Arsenal", Prob1: 0.35, ProbD: 0.3, Prob2: 0.35},
		{ID: 6, CompetitionID: 2, Season: 2024, Matchweek: 8, DisplayWithMatchweek: 8, Time: kickoff, Club1: "Girona", Club2: "Getafe", Prob1: 0.5, ProbD: 0.3, Prob2: 0.2},
	}
}

// testStoreContract exercises behaviour every backend must share.
func testStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("absent documents", func(t *testing.T) {
		_, found, err := s.GetLatest(ctx, 99)
		require.NoError(t, err)
		assert.False(t, found)

		_, found, err = s.GetTable(ctx, 99, 2024, 1)
		require.NoError(t, err)
		assert.False(t, found)

		matches, err := s.ListScores(ctx, 99, 2024, 1)
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("table round trip", func(t *testing.T) {
		want := sampleTable()
		require.NoError(t, s.PutTable(ctx, want))

		got, found, err := s.GetTable(ctx, 1, 2024, 8)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, want.CompletedMatches, got.CompletedMatches)
		require.Len(t, got.Rows, 2)
		assert.Equal(t, "Liverpool", got.Rows[0].Name)
		assert.Equal(t, want.Rows[0].Form, got.Rows[0].Form)
		assert.True(t, got.Rows[0].ProbPositions[0].Equal(decimal.RequireFromString("0.4512")))

		want.Rows[0].Pts = 24
		want.Rows[0].W = 8
		require.NoError(t, s.PutTable(ctx, want))
		got, _, err = s.GetTable(ctx, 1, 2024, 8)
		require.NoError(t, err)
		assert.Equal(t, 24, got.Rows[0].Pts)
	})

	t.Run("latest round trip", func(t *testing.T) {
		want := model.Latest{
			CompetitionID: 1,
			Table:         model.Pointer{Season: 2024, Matchweek: 8},
			Scores:        model.Pointer{Season: 2024, Matchweek: 9},
			Seasons:       []model.Season{{Season: 2023, Matchweeks: 38}, {Season: 2024, Matchweeks: 8}},
			Trends: &model.Trends{
				Up:   model.Trend{ShortName: "LIV", Change: 1.2, Current: 61.2},
				Down: model.Trend{ShortName: "MCI", Change: -0.8, Current: 60.4},
			},
		}
		require.NoError(t, s.PutLatest(ctx, want))

		got, found, err := s.GetLatest(ctx, 1)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, want, got)
	})

	t.Run("scores by round and display round", func(t *testing.T) {
		require.NoError(t, s.PutScores(ctx, sampleScores()))

		got, err := s.ListScores(ctx, 1, 2024, 8)
		require.NoError(t, err)

		ids := make([]int64, len(got))
		for i, m := range got {
			ids[i] = m.ID
		}
		assert.Equal(t, []int64{4, 1, 2, 3}, ids)
		assert.Equal(t, 2, *got[1].Score1)
		assert.Equal(t, "Sky Sports", *got[1].Network)
		assert.True(t, got[1].Time.Equal(kickoff))
		assert.Nil(t, got[2].Score1)
	})

	t.Run("scores upsert", func(t *testing.T) {
		m := sampleScores()[0]
		m.Completed = true
		m.Score1, m.Score2 = ptr(3), ptr(0)
		require.NoError(t, s.PutScores(ctx, []model.MatchEvent{m}))

		got, err := s.ListScores(ctx, 1, 2024, 8)
		require.NoError(t, err)
		require.Len(t, got, 4)
		assert.True(t, got[3].Finished())
	})

	t.Run("rejects matches without id", func(t *testing.T) {
		err := s.PutScores(ctx, []model.MatchEvent{{CompetitionID: 1, Season: 2024, Time: kickoff}})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
