package api

import (
	"errors"
	"net/http"

	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/model"
	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/scoring"
	"github.com/MidhulKiruthik/Nova-sub000/internal/pipeline"
)

// PartnersHandler handles partner CRUD, import and scoring routes.
type PartnersHandler struct {
	store    Store
	pipeline Pipeline
	scorer   Scorer
}

// NewPartnersHandler creates a new partners handler.
func NewPartnersHandler(s Store, p Pipeline, scorer Scorer) *PartnersHandler {
	return &PartnersHandler{store: s, pipeline: p, scorer: scorer}
}

type scoreResponse struct {
	PartnerID   string            `json:"partnerId"`
	StoredScore int               `json:"storedScore"`
	Breakdown   scoring.Breakdown `json:"breakdown"`
}

// HandleList handles GET /partners.
func (h *PartnersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Partners())
}

// HandleCreate handles POST /partners. The stored novaScore is computed from
// the submitted metrics; a client-supplied value is ignored.
func (h *PartnersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_partner"
	var p model.Partner
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if p.ID != "" {
		if _, exists := h.store.Partner(p.ID); exists {
			writeError(w, NewKind(op, ErrConflict))
			return
		}
	}
	p.NovaScore = h.scorer.Breakdown(model.Normalize(p)).Score
	writeJSON(w, http.StatusCreated, h.store.AddPartner(p))
}

// HandleImport handles POST /partners/import.
func (h *PartnersHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	const op = "api.import_partners"
	if h.pipeline == nil {
		writeError(w, NewKind(op, ErrUnavailable))
		return
	}
	var batch []model.Partner
	if err := decodeJSON(r, &batch); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	rep, err := h.pipeline.Import(r.Context(), batch)
	switch {
	case errors.Is(err, pipeline.ErrEmptyImport):
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	case err != nil:
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// HandleRescore handles POST /partners/rescore.
func (h *PartnersHandler) HandleRescore(w http.ResponseWriter, r *http.Request) {
	const op = "api.rescore_partners"
	if h.pipeline == nil {
		writeError(w, NewKind(op, ErrUnavailable))
		return
	}
	rep, err := h.pipeline.RescoreAll(r.Context())
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// HandleGet handles GET /partners/{id}.
func (h *PartnersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, ok := h.store.Partner(r.PathValue("id"))
	if !ok {
		writeError(w, NewKind("api.get_partner", ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleUpdate handles PATCH /partners/{id}. The store treats an unknown id
// as a no-op; the API reports it as 404. The score is recomputed from the
// merged record.
func (h *PartnersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_partner"
	id := r.PathValue("id")
	var u model.PartnerUpdate
	if err := decodeJSON(r, &u); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	cur, ok := h.store.Partner(id)
	if !ok {
		writeError(w, NewKind(op, ErrNotFound))
		return
	}
	if err := u.Validate(); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	// The stored score always follows the metrics it is computed from.
	u.NovaScore = nil
	if score := h.scorer.Breakdown(u.Apply(cur)).Score; score != cur.NovaScore {
		u.NovaScore = &score
	}
	if err := h.store.UpdatePartner(id, u); err != nil {
		if errors.Is(err, model.ErrInvalidUpdate) {
			writeError(w, WrapKind(op, ErrBadRequest, err))
			return
		}
		writeError(w, Wrap(op, err))
		return
	}
	p, ok := h.store.Partner(id)
	if !ok {
		writeError(w, NewKind(op, ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleDelete handles DELETE /partners/{id}.
func (h *PartnersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if !h.store.DeletePartner(r.PathValue("id")) {
		writeError(w, NewKind("api.delete_partner", ErrNotFound))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleScore handles GET /partners/{id}/score.
func (h *PartnersHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	p, ok := h.store.Partner(r.PathValue("id"))
	if !ok {
		writeError(w, NewKind("api.get_score", ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, scoreResponse{
		PartnerID:   p.ID,
		StoredScore: p.NovaScore,
		Breakdown:   h.scorer.Breakdown(p),
	})
}
