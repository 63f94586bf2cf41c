// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/model"
	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/scoring"
	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/types"
	"github.com/MidhulKiruthik/Nova-sub000/internal/observer"
	"github.com/MidhulKiruthik/Nova-sub000/internal/pipeline"
	"github.com/MidhulKiruthik/Nova-sub000/internal/store"
	"github.com/MidhulKiruthik/Nova-sub000/pkg/logger"
)

const (
	defaultMaxTopLimit = 100
	maxBodyBytes       = 16 << 20
)

// Store is the reactive store surface used by the handlers.
type Store interface {
	Partners() []model.Partner
	Partner(id string) (model.Partner, bool)
	AddPartner(p model.Partner) model.Partner
	UpdatePartner(id string, u model.PartnerUpdate) error
	DeletePartner(id string) bool

	Reviews() []model.Review
	ReviewsForPartner(partnerID string) []model.Review
	SetReviews(list []model.Review)
	FairnessMetrics() []model.FairnessMetric
	SetFairnessMetrics(list []model.FairnessMetric)

	History() []model.DataChangeEvent
	SyncStatus() model.SyncStatus
	SubscribeSyncStatus(fn func(model.SyncStatus)) observer.Unsubscribe
	ForceSync(ctx context.Context) error
	ClearAll(ctx context.Context) error
	Stats() store.Stats
}

// Pipeline runs imports and bulk rescoring.
type Pipeline interface {
	Import(ctx context.Context, partners []model.Partner) (pipeline.Report, error)
	RescoreAll(ctx context.Context) (pipeline.RescoreReport, error)
}

// Switch flips the connectivity signal by hand.
type Switch interface {
	Set(online bool) bool
	Online() bool
}

// Scorer exposes the per-term score breakdown.
type Scorer interface {
	Breakdown(p model.Partner) scoring.Breakdown
}

// Analyzer scores free text.
type Analyzer interface {
	Analyze(text string) float64
}

// Entry mirrors the read shape returned by ranking queries.
type Entry = types.Entry

// Dependencies bundles what the handlers need.
type Dependencies struct {
	Store    Store
	Pipeline Pipeline
	Scorer   Scorer
	Analyzer Analyzer
	// Switch is nil when connectivity comes from a probe.
	Switch Switch
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	partnersHandler    *PartnersHandler
	leaderboardHandler *LeaderboardHandler
	dataHandler        *DataHandler
	syncHandler        *SyncHandler
	sentimentHandler   *SentimentHandler
}

// Option configures a Server.
type Option func(*serverConfig)

type serverConfig struct {
	maxTopLimit int
	log         logger.Logger
}

// WithMaxTopLimit caps the limit accepted by /partners/top.
func WithMaxTopLimit(n int) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxTopLimit = n
		}
	}
}

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(c *serverConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	cfg := serverConfig{maxTopLimit: defaultMaxTopLimit, log: logger.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps.Store),
		partnersHandler:    NewPartnersHandler(deps.Store, deps.Pipeline, deps.Scorer),
		leaderboardHandler: NewLeaderboardHandler(deps.Store, cfg.maxTopLimit),
		dataHandler:        NewDataHandler(deps.Store),
		syncHandler:        NewSyncHandler(deps.Store, deps.Switch, cfg.log.Named("sync-ws")),
		sentimentHandler:   NewSentimentHandler(deps.Analyzer),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	ph := s.partnersHandler
	mux.HandleFunc("GET /partners", MetricsMiddleware(ph.HandleList, "partners"))
	mux.HandleFunc("POST /partners", MetricsMiddleware(ph.HandleCreate, "partners"))
	mux.HandleFunc("POST /partners/import", MetricsMiddleware(ph.HandleImport, "partners_import"))
	mux.HandleFunc("POST /partners/rescore", MetricsMiddleware(ph.HandleRescore, "partners_rescore"))
	mux.HandleFunc("GET /partners/top", MetricsMiddleware(s.leaderboardHandler.HandleGetTop, "partners_top"))
	mux.HandleFunc("GET /partners/{id}", MetricsMiddleware(ph.HandleGet, "partner"))
	mux.HandleFunc("PATCH /partners/{id}", MetricsMiddleware(ph.HandleUpdate, "partner"))
	mux.HandleFunc("DELETE /partners/{id}", MetricsMiddleware(ph.HandleDelete, "partner"))
	mux.HandleFunc("GET /partners/{id}/score", MetricsMiddleware(ph.HandleScore, "partner_score"))
	mux.HandleFunc("GET /partners/{id}/reviews", MetricsMiddleware(s.dataHandler.HandlePartnerReviews, "partner_reviews"))

	dh := s.dataHandler
	mux.HandleFunc("GET /reviews", MetricsMiddleware(dh.HandleListReviews, "reviews"))
	mux.HandleFunc("PUT /reviews", MetricsMiddleware(dh.HandleReplaceReviews, "reviews"))
	mux.HandleFunc("GET /fairness", MetricsMiddleware(dh.HandleListFairness, "fairness"))
	mux.HandleFunc("PUT /fairness", MetricsMiddleware(dh.HandleReplaceFairness, "fairness"))
	mux.HandleFunc("GET /changes", MetricsMiddleware(dh.HandleChanges, "changes"))
	mux.HandleFunc("GET /export", MetricsMiddleware(dh.HandleExport, "export"))
	mux.HandleFunc("DELETE /data", MetricsMiddleware(dh.HandleClear, "data"))

	sh := s.syncHandler
	mux.HandleFunc("GET /sync", MetricsMiddleware(sh.HandleStatus, "sync"))
	mux.HandleFunc("POST /sync", MetricsMiddleware(sh.HandleForce, "sync"))
	mux.HandleFunc("GET /sync/ws", sh.HandleStream)
	mux.HandleFunc("POST /connectivity", MetricsMiddleware(sh.HandleConnectivity, "connectivity"))

	mux.HandleFunc("POST /sentiment", MetricsMiddleware(s.sentimentHandler.HandleAnalyze, "sentiment"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, code := statusOf(err)
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeJSON reads a single JSON document from the request body.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}
