package api

import (
	"net/http"

	"github.com/MidhulKiruthik/Nova-sub000/internal/store"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	Stats() store.Stats
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.statsProvider.Stats())
}
