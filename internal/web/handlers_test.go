package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"efi-app/internal/model"
	"efi-app/internal/observability"
	"efi-app/internal/store"
)

var now = time.Date(2024, time.October, 19, 12, 0, 0, 0, time.UTC)

func probs(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.RequireFromString(v)
	}
	return out
}

func fixtureStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemoryStore()

	require.NoError(t, s.PutTable(ctx, model.Table{
		CompetitionID: 1, Season: 2024, Matchweek: 8, CompletedMatches: 9, TotalMatches: 10,
		Rows: []model.TeamRow{
			{UpdateDate: "2024-10-19", Name: "A", EFI: 55, Def: 0.9, MP: 8, W: 16, D: 2, GF: 40, GA: 30, GD: 10, Pts: 50, ProbPositions: probs("0.2", "0.3", "0.3", "0.2")},
			{UpdateDate: "2024-10-19", Name: "B", EFI: 54, Def: 0.9, MP: 8, W: 16, D: 2, GF: 45, GA: 35, GD: 10, Pts: 50, ProbPositions: probs("0.1", "0.3", "0.3", "0.3")},
			{UpdateDate: "2024-10-19", Name: "C", EFI: 60, Def: 1.4, MP: 8, W: 17, D: 1, GF: 20, GA: 20, GD: 0, Pts: 52, ProbPositions: probs("0.7", "0.2", "0.1", "0.0")},
		},
	}))
	require.NoError(t, s.PutLatest(ctx, model.Latest{
		CompetitionID: 1,
		Table:         model.Pointer{Season: 2024, Matchweek: 8},
		Scores:        model.Pointer{Season: 2024, Matchweek: 8},
		Seasons:       []model.Season{{Season: 2024, Matchweeks: 8}},
	}))

	score := func(v int) *int { return &v }
	matches := []model.MatchEvent{
		{ID: 1, Matchweek: 8, Time: now.Add(-50 * time.Hour), Completed: true, Score1: score(1), Score2: score(1), Prob1: 0.4, ProbD: 0.3, Prob2: 0.3},
		{ID: 2, Matchweek: 8, Time: now.Add(-26 * time.Hour), Completed: true, Score1: score(0), Score2: score(2), Prob1: 0.5, ProbD: 0.3, Prob2: 0.2},
		{ID: 3, Matchweek: 8, Time: now.Add(-2 * time.Hour), Completed: true, Score1: score(3), Score2: score(0), Prob1: 0.6, ProbD: 0.2, Prob2: 0.2},
		{ID: 4, Matchweek: 8, Time: now.Add(time.Hour), Prob1: 0.3, ProbD: 0.3, Prob2: 0.4},
		{ID: 5, Matchweek: 9, Time: now.Add(30 * time.Hour), Prob1: 0.5, ProbD: 0.25, Prob2: 0.25},
		// no kickoff recorded
		{ID: 99, Matchweek: 8},
	}
	for i := range matches {
		matches[i].CompetitionID = 1
		matches[i].Season = 2024
		matches[i].DisplayWithMatchweek = matches[i].Matchweek
	}
	require.NoError(t, s.PutScores(ctx, matches))
	return s
}

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	srv := NewServer(fixtureStore(t), Options{
		Metrics: observability.NewMetrics("test"),
		Now:     func() time.Time { return now },
	})
	return srv, srv.Routes()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func names(rows []RowView) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func TestHealthz(t *testing.T) {
	_, h := newTestServer(t)
	rec := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/latest", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestCompetitions(t *testing.T) {
	_, h := newTestServer(t)
	rec := get(t, h, "/api/competitions")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[CompetitionsResponse](t, rec)
	assert.Len(t, resp.Competitions, len(model.DefaultCatalog))
}

func TestLatest(t *testing.T) {
	_, h := newTestServer(t)

	resp := decode[LatestResponse](t, get(t, h, "/api/latest"))
	require.NotNil(t, resp.Latest)
	assert.Equal(t, 8, resp.Latest.Table.Matchweek)

	bySlug := decode[LatestResponse](t, get(t, h, "/api/latest?competition=premier-league"))
	assert.NotNil(t, bySlug.Latest)

	rec := get(t, h, "/api/latest?competition=bundesliga")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"latest":null}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/latest?competition=eredivisie").Code)
}

func TestTable_DefaultSort(t *testing.T) {
	_, h := newTestServer(t)
	rec := get(t, h, "/api/table?competition=1&season=2024&matchweek=8")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decode[TableResponse](t, rec)
	require.NotNil(t, resp.Table)
	assert.Equal(t, []string{"C", "A", "B"}, names(resp.Table.Rows))
	assert.Equal(t, []int{1, 2, 3}, resp.Ranks)
	assert.Equal(t, "Rankings as of Oct. 19, 2024", resp.Caption.Headline)
	assert.Equal(t, "Includes 9 of 10 matches played in Matchweek 8.", resp.Caption.Detail)

	c := resp.Table.Rows[0]
	assert.Equal(t, 0.7, c.ProbChampion)
	assert.Equal(t, 1.0, c.ProbTop4)
	assert.Equal(t, []float64{0.7, 0.2, 0.1, 0}, c.ProbPositions)
}

func TestTable_Points(t *testing.T) {
	_, h := newTestServer(t)
	resp := decode[TableResponse](t, get(t, h, "/api/table?season=2024&matchweek=8&sort=pts"))
	assert.Equal(t, []string{"C", "B", "A"}, names(resp.Table.Rows))
	assert.Equal(t, []int{1, 2, 3}, resp.Ranks)
}

func TestTable_DefenceAscending(t *testing.T) {
	_, h := newTestServer(t)
	resp := decode[TableResponse](t, get(t, h, "/api/table?season=2024&matchweek=8&sort=def&desc=false"))
	assert.Equal(t, []string{"A", "B", "C"}, names(resp.Table.Rows))
	assert.Equal(t, []int{1, 1, 3}, resp.Ranks)
	assert.False(t, resp.Desc)
}

func TestTable_ClampsMatchweek(t *testing.T) {
	_, h := newTestServer(t)
	resp := decode[TableResponse](t, get(t, h, "/api/table?season=2024&matchweek=30"))
	assert.Equal(t, 8, resp.Matchweek)
	assert.NotNil(t, resp.Table)
}

func TestTable_NoData(t *testing.T) {
	_, h := newTestServer(t)
	rec := get(t, h, "/api/table?season=2024&matchweek=3")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[TableResponse](t, rec)
	assert.Nil(t, resp.Table)
	assert.Empty(t, resp.Ranks)
	assert.Equal(t, "No matches have been played in Matchweek 3.", resp.Caption.Headline)
}

func TestTable_BadRequests(t *testing.T) {
	_, h := newTestServer(t)
	tests := []struct {
		target string
		status int
		body   string
	}{
		{"/api/table?season=2024", http.StatusBadRequest, msgTableParams},
		{"/api/table?season=abc&matchweek=1", http.StatusBadRequest, msgTableParams},
		{"/api/table?season=2024&matchweek=-1", http.StatusBadRequest, msgTableParams},
		{"/api/table?season=2024&matchweek=8&sort=name", http.StatusBadRequest, "invalid sort key"},
		{"/api/table?season=2024&matchweek=8&desc=maybe", http.StatusBadRequest, "desc"},
		{"/api/table?competition=mls&season=2024&matchweek=8", http.StatusNotFound, "unknown competition"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(t, h, tt.target)
			assert.Equal(t, tt.status, rec.Code)
			resp := decode[ErrorResponse](t, rec)
			assert.Contains(t, resp.Error, tt.body)
			assert.NotEmpty(t, resp.RequestID)
		})
	}
}

func TestScores(t *testing.T) {
	_, h := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/scores?season=2024").Code)

	rec := get(t, h, "/api/scores?season=2024&matchweek=8")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[ScoresResponse](t, rec)

	ids := make([]int64, len(resp.Scores))
	for i, m := range resp.Scores {
		ids[i] = m.ID
	}
	assert.Equal(t, []int64{1, 2, 3, 4}, ids)
}

func TestScoreboard_FromLatest(t *testing.T) {
	srv, h := newTestServer(t)
	rec := get(t, h, "/api/scoreboard")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[ScoreboardResponse](t, rec)
	assert.Equal(t, 2024, resp.Season)
	assert.Equal(t, 8, resp.Matchweek)
	assert.Equal(t, "UTC", resp.Timezone)
	require.Len(t, resp.Entries, 9)
	assert.Equal(t, "2024-10-17", resp.Entries[0].Date)
	assert.Equal(t, "Thu Oct 17 2024", resp.Entries[0].Label)

	// the 2h-old result is still within a day, so it stays in focus
	require.NotNil(t, resp.Anchor)
	require.NotNil(t, resp.AnchorMatchID)
	assert.Equal(t, int64(3), *resp.AnchorMatchID)
	anchored := resp.Entries[*resp.Anchor]
	require.NotNil(t, anchored.Match)
	assert.Equal(t, int64(3), anchored.Match.ID)
	assert.True(t, anchored.Match.Highlight.Home)

	last := resp.Entries[len(resp.Entries)-1]
	assert.Equal(t, int64(5), last.Match.ID)

	assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.DroppedMatches))
}

func TestScoreboard_ExplicitRound(t *testing.T) {
	_, h := newTestServer(t)
	resp := decode[ScoreboardResponse](t, get(t, h, "/api/scoreboard?season=2024&matchweek=9"))
	require.Len(t, resp.Entries, 2)
	require.NotNil(t, resp.AnchorMatchID)
	assert.Equal(t, int64(5), *resp.AnchorMatchID)
}

func TestScoreboard_Empty(t *testing.T) {
	_, h := newTestServer(t)

	rec := get(t, h, "/api/scoreboard?competition=2")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[ScoreboardResponse](t, rec)
	assert.Empty(t, resp.Entries)
	assert.Nil(t, resp.Anchor)
	assert.True(t, strings.Contains(rec.Body.String(), `"anchor":null`))

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/scoreboard?season=2024").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	_, h := newTestServer(t)
	get(t, h, "/api/competitions")

	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `test_http_requests_total{route="/api/competitions",status="200"} 1`)
}

func TestCORS(t *testing.T) {
	srv := NewServer(fixtureStore(t), Options{CORSOrigins: []string{"https://efi.example"}})
	h := srv.Routes()

	req := httptest.NewRequest(http.MethodGet, "/api/competitions", nil)
	req.Header.Set("Origin", "https://efi.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://efi.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/competitions", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
