package api

import (
	"net/http"
	"strconv"

	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/model"
	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/types"
)

// LeaderboardDependencies defines the interface for ranking operations.
type LeaderboardDependencies interface {
	Partners() []model.Partner
}

// LeaderboardHandler serves the Nova Score ranking.
type LeaderboardHandler struct {
	deps     LeaderboardDependencies
	maxLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetTop handles GET /partners/top?limit=N requests. A missing limit
// means the configured maximum.
func (h *LeaderboardHandler) HandleGetTop(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_top"
	n := h.maxLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil || v < 1 {
			writeError(w, NewKind(op, ErrBadRequest))
			return
		}
		if v > h.maxLimit {
			writeError(w, WrapKind(op, ErrBadRequest, errLimitExceeded(h.maxLimit)))
			return
		}
		n = v
	}
	writeJSON(w, http.StatusOK, types.Rank(h.deps.Partners(), n))
}

type errLimitExceeded int

func (e errLimitExceeded) Error() string {
	return "limit exceeds maximum of " + strconv.Itoa(int(e))
}
