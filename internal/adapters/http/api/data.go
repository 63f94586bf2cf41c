package api

import (
	"net/http"

	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/model"
	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/types"
)

// DataHandler serves reviews, fairness metrics, the change journal and the
// export and wipe routes.
type DataHandler struct {
	store Store
}

// NewDataHandler creates a new data handler.
func NewDataHandler(s Store) *DataHandler {
	return &DataHandler{store: s}
}

// HandleListReviews handles GET /reviews.
func (h *DataHandler) HandleListReviews(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Reviews())
}

// HandleReplaceReviews handles PUT /reviews.
func (h *DataHandler) HandleReplaceReviews(w http.ResponseWriter, r *http.Request) {
	var list []model.Review
	if err := decodeJSON(r, &list); err != nil {
		writeError(w, WrapKind("api.replace_reviews", ErrBadRequest, err))
		return
	}
	h.store.SetReviews(list)
	writeJSON(w, http.StatusOK, h.store.Reviews())
}

// HandlePartnerReviews handles GET /partners/{id}/reviews. Reviews of a
// deleted partner are still returned.
func (h *DataHandler) HandlePartnerReviews(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.ReviewsForPartner(r.PathValue("id")))
}

// HandleListFairness handles GET /fairness.
func (h *DataHandler) HandleListFairness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.FairnessMetrics())
}

// HandleReplaceFairness handles PUT /fairness.
func (h *DataHandler) HandleReplaceFairness(w http.ResponseWriter, r *http.Request) {
	var list []model.FairnessMetric
	if err := decodeJSON(r, &list); err != nil {
		writeError(w, WrapKind("api.replace_fairness", ErrBadRequest, err))
		return
	}
	h.store.SetFairnessMetrics(list)
	writeJSON(w, http.StatusOK, h.store.FairnessMetrics())
}

// HandleChanges handles GET /changes.
func (h *DataHandler) HandleChanges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.History())
}

// HandleExport handles GET /export.
func (h *DataHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Disposition", `attachment; filename="nova-export.json"`)
	writeJSON(w, http.StatusOK, types.Export{
		Partners:        h.store.Partners(),
		FairnessMetrics: h.store.FairnessMetrics(),
	})
}

// HandleClear handles DELETE /data. In-memory state is always cleared; a
// failure to erase the persisted copy is reported as 500.
func (h *DataHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ClearAll(r.Context()); err != nil {
		writeError(w, Wrap("api.clear_data", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
