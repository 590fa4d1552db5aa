package server

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"reactionduel/internal/analytics"
)

const (
	defaultResultsLimit = 10
	maxResultsLimit     = 100
)

var leaderboardCategories = map[string]bool{"wins": true, "average": true, "reaction": true}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "results require a database connection")
		return
	}

	limit := defaultResultsLimit
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		limit = min(n, maxResultsLimit)
	}

	results, err := s.DB.RecentResults(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("recent results")
		writeError(w, http.StatusInternalServerError, "error loading results")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "leaderboard requires a database connection")
		return
	}

	category := r.URL.Query().Get("cat")
	if category == "" {
		category = "wins"
	}
	if !leaderboardCategories[category] {
		writeError(w, http.StatusBadRequest, "unknown leaderboard category")
		return
	}

	entries, err := analytics.NewQueries(s.DB).GetLeaderboard(r.Context(), category, defaultResultsLimit)
	if err != nil {
		log.Error().Err(err).Str("category", category).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "error loading leaderboard")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"category": category, "entries": entries})
}

func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "player stats require a database connection")
		return
	}

	name := r.PathValue("name")
	stats, err := analytics.NewQueries(s.DB).GetPlayerLifetimeStats(r.Context(), name)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "player not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("player", name).Msg("player stats")
		writeError(w, http.StatusInternalServerError, "error loading player")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
