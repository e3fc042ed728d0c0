package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/quantengine/internal/contracts"
	"github.com/wonny/quantengine/pkg/logger"
)

// RankingSource returns the newest published ranking.
type RankingSource interface {
	LatestRanking(ctx context.Context) (*contracts.Ranking, error)
}

// RankingHandler serves the published rankings.
type RankingHandler struct {
	source RankingSource
	logger *logger.Logger
}

// NewRankingHandler creates a new ranking handler
func NewRankingHandler(source RankingSource, log *logger.Logger) *RankingHandler {
	return &RankingHandler{source: source, logger: log}
}

// GetLatest returns the latest ranking
// GET /api/rankings/latest
func (h *RankingHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	ranking, ok := h.latest(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, ranking)
}

// GetLatestByProfile returns one profile of the latest ranking
// GET /api/rankings/latest/{profile}
func (h *RankingHandler) GetLatestByProfile(w http.ResponseWriter, r *http.Request) {
	profile := contracts.RiskProfile(strings.ToUpper(mux.Vars(r)["profile"]))
	if !profile.Valid() {
		respondError(w, http.StatusBadRequest, "unknown profile")
		return
	}

	ranking, ok := h.latest(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":  ranking.RunID,
		"date":    ranking.Date,
		"profile": profile,
		"items":   ranking.ByProfile(profile),
	})
}

func (h *RankingHandler) latest(w http.ResponseWriter, r *http.Request) (*contracts.Ranking, bool) {
	ranking, err := h.source.LatestRanking(r.Context())
	if errors.Is(err, contracts.ErrNotFound) {
		respondError(w, http.StatusNotFound, "no ranking published yet")
		return nil, false
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get latest ranking")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve ranking")
		return nil, false
	}
	return ranking, true
}
