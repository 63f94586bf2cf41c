package api

import (
	"net/http"
	"strings"

	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/sentiment"
	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/types"
)

// SentimentHandler scores free text.
type SentimentHandler struct {
	analyzer Analyzer
}

// NewSentimentHandler creates a new sentiment handler.
func NewSentimentHandler(a Analyzer) *SentimentHandler {
	if a == nil {
		a = sentiment.Default()
	}
	return &SentimentHandler{analyzer: a}
}

type sentimentRequest struct {
	Text string `json:"text"`
}

// HandleAnalyze handles POST /sentiment.
func (h *SentimentHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze_sentiment"
	var req sentimentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, NewKind(op, ErrBadRequest))
		return
	}
	score := h.analyzer.Analyze(req.Text)
	writeJSON(w, http.StatusOK, types.SentimentResult{Score: score, Category: sentiment.Categorize(score)})
}
