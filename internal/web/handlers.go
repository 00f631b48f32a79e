package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"efi-app/internal/model"
	"efi-app/internal/standings"

	"github.com/go-kit/kit/log/level"
)

const (
	msgTableParams      = "Error: competition, season, and matchweek must be specified in /api/table"
	msgScoresParams     = "Error: both season and matchweek must be specified in /api/scores"
	msgScoreboardParams = "Error: season and matchweek must be specified together in /api/scoreboard"
)

// cacheControl matches the hourly refresh of the underlying data.
const cacheControl = "public, max-age=300, s-maxage=3600"

func (s *Server) handleCompetitions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, CompetitionsResponse{Competitions: s.catalog})
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	comp, ok := s.competition(r)
	if !ok {
		s.writeError(w, r, http.StatusNotFound, "Error: unknown competition")
		return
	}
	latest, found, err := s.store.GetLatest(r.Context(), comp.ID)
	if err != nil {
		s.writeServerError(w, r, err)
		return
	}
	resp := LatestResponse{}
	if found {
		resp.Latest = &latest
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	comp, ok := s.competition(r)
	if !ok {
		s.writeError(w, r, http.StatusNotFound, "Error: unknown competition")
		return
	}
	q := r.URL.Query()
	season, errSeason := strconv.Atoi(strings.TrimSpace(q.Get("season")))
	matchweek, errMatchweek := strconv.Atoi(strings.TrimSpace(q.Get("matchweek")))
	if errSeason != nil || errMatchweek != nil || matchweek < 0 {
		s.writeError(w, r, http.StatusBadRequest, msgTableParams)
		return
	}

	key := standings.DefaultSortKey
	if v := q.Get("sort"); v != "" {
		parsed, err := standings.ParseSortKey(v)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, "Error: "+err.Error())
			return
		}
		key = parsed
	}
	desc := true
	if v := q.Get("desc"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, "Error: desc must be true or false")
			return
		}
		desc = parsed
	}

	matchweek, err := s.clampMatchweek(r, comp.ID, season, matchweek)
	if err != nil {
		s.writeServerError(w, r, err)
		return
	}
	table, found, err := s.store.GetTable(r.Context(), comp.ID, season, matchweek)
	if err != nil {
		s.writeServerError(w, r, err)
		return
	}
	var snapshot *model.Table
	if found {
		snapshot = &table
	}
	resp, err := BuildTable(snapshot, matchweek, key, desc)
	if err != nil {
		if errors.Is(err, standings.ErrInvalidSortKey) {
			s.writeError(w, r, http.StatusBadRequest, "Error: "+err.Error())
			return
		}
		s.writeServerError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	comp, ok := s.competition(r)
	if !ok {
		s.writeError(w, r, http.StatusNotFound, "Error: unknown competition")
		return
	}
	q := r.URL.Query()
	season, errSeason := strconv.Atoi(strings.TrimSpace(q.Get("season")))
	matchweek, errMatchweek := strconv.Atoi(strings.TrimSpace(q.Get("matchweek")))
	if errSeason != nil || errMatchweek != nil {
		s.writeError(w, r, http.StatusBadRequest, msgScoresParams)
		return
	}
	matches, err := s.store.ListScores(r.Context(), comp.ID, season, matchweek)
	if err != nil {
		s.writeServerError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ScoresResponse{Scores: s.validMatches(r.Context(), matches)})
}

// handleScoreboard lays out round N and N+1 around now. Without a season and
// matchweek it starts from the latest scores pointer.
func (s *Server) handleScoreboard(w http.ResponseWriter, r *http.Request) {
	comp, ok := s.competition(r)
	if !ok {
		s.writeError(w, r, http.StatusNotFound, "Error: unknown competition")
		return
	}
	q := r.URL.Query()
	seasonParam := strings.TrimSpace(q.Get("season"))
	matchweekParam := strings.TrimSpace(q.Get("matchweek"))

	resp := ScoreboardResponse{Timezone: s.loc.String(), Entries: []EntryView{}}
	switch {
	case seasonParam == "" && matchweekParam == "":
		latest, found, err := s.store.GetLatest(r.Context(), comp.ID)
		if err != nil {
			s.writeServerError(w, r, err)
			return
		}
		if !found {
			s.writeJSON(w, http.StatusOK, resp)
			return
		}
		resp.Season, resp.Matchweek = latest.Scores.Season, latest.Scores.Matchweek
	case seasonParam != "" && matchweekParam != "":
		season, errSeason := strconv.Atoi(seasonParam)
		matchweek, errMatchweek := strconv.Atoi(matchweekParam)
		if errSeason != nil || errMatchweek != nil {
			s.writeError(w, r, http.StatusBadRequest, msgScoreboardParams)
			return
		}
		resp.Season, resp.Matchweek = season, matchweek
	default:
		s.writeError(w, r, http.StatusBadRequest, msgScoreboardParams)
		return
	}

	current, err := s.store.ListScores(r.Context(), comp.ID, resp.Season, resp.Matchweek)
	if err != nil {
		s.writeServerError(w, r, err)
		return
	}
	next, err := s.store.ListScores(r.Context(), comp.ID, resp.Season, resp.Matchweek+1)
	if err != nil {
		s.writeServerError(w, r, err)
		return
	}
	matches := s.validMatches(r.Context(), mergeRounds(current, next))
	resp.Entries, resp.Anchor, resp.AnchorMatchID = buildScoreboard(matches, s.now(), s.loc)
	s.writeJSON(w, http.StatusOK, resp)
}

// competition resolves the competition query parameter by id or slug. An
// empty parameter selects the first catalog entry.
func (s *Server) competition(r *http.Request) (model.Competition, bool) {
	value := strings.TrimSpace(r.URL.Query().Get("competition"))
	if value == "" {
		return s.catalog[0], true
	}
	return s.catalog.Lookup(value)
}

// clampMatchweek caps matchweek at the number of matchweeks recorded for the
// season. Unknown seasons are left alone.
func (s *Server) clampMatchweek(r *http.Request, competitionID, season, matchweek int) (int, error) {
	latest, found, err := s.store.GetLatest(r.Context(), competitionID)
	if err != nil {
		return 0, err
	}
	if !found {
		return matchweek, nil
	}
	if count, ok := latest.Matchweeks(season); ok && matchweek > count {
		return count, nil
	}
	return matchweek, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	if status == http.StatusOK {
		w.Header().Set("Cache-Control", cacheControl)
	}
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		level.Error(s.logger).Log("msg", "encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: message, RequestID: RequestID(r.Context())})
}

func (s *Server) writeServerError(w http.ResponseWriter, r *http.Request, err error) {
	level.Error(s.logger).Log("msg", "request failed", "request_id", RequestID(r.Context()), "path", r.URL.Path, "err", err)
	s.writeError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
