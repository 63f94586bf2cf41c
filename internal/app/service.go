// Package service wires the store, gateways, connectivity, pipeline and HTTP
// API into a running process.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/MidhulKiruthik/Nova-sub000/internal/adapters/http/api"
	"github.com/MidhulKiruthik/Nova-sub000/internal/adapters/http/swagger"
	"github.com/MidhulKiruthik/Nova-sub000/internal/adapters/mq/amqp"
	"github.com/MidhulKiruthik/Nova-sub000/internal/adapters/repository"
	"github.com/MidhulKiruthik/Nova-sub000/internal/config"
	"github.com/MidhulKiruthik/Nova-sub000/internal/connectivity"
	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/model"
	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/scoring"
	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/sentiment"
	"github.com/MidhulKiruthik/Nova-sub000/internal/observer"
	"github.com/MidhulKiruthik/Nova-sub000/internal/pipeline"
	"github.com/MidhulKiruthik/Nova-sub000/internal/store"
	"github.com/MidhulKiruthik/Nova-sub000/pkg/logger"
)

const sqliteFile = "nova.db"

// ErrNotStarted is returned by operations that need a started service.
var ErrNotStarted = errors.New("service not started")

// Service owns every long-lived component of the process.
type Service struct {
	mu sync.RWMutex

	cfg    *config.Config
	clock  clockwork.Clock
	logger logger.Logger

	gateway   store.Gateway
	store     *store.Store
	scorer    *scoring.NovaScorer
	analyzer  *sentiment.Analyzer
	importer  *pipeline.Importer
	manual    *connectivity.Manual
	probe     *connectivity.HTTPProbe
	publisher *amqp.Publisher

	unsubs  []observer.Unsubscribe
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithGateway bypasses storage_backend and uses gw.
func WithGateway(gw store.Gateway) Option {
	return func(s *Service) {
		if gw != nil {
			s.gateway = gw
		}
	}
}

// WithClock sets the clock used by the store and the probe.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// New constructs a Service from cfg. Nothing is opened until Start.
func New(cfg *config.Config, opts ...Option) *Service {
	if cfg == nil {
		cfg = config.New()
	}
	s := &Service{
		cfg:    cfg,
		clock:  clockwork.NewRealClock(),
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the gateway, hydrates the store and starts background loops.
// A failed load leaves the store empty but does not stop the service.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting nova service...", logger.String("backend", s.cfg.StorageBackend))

	if s.gateway == nil {
		gw, err := openGateway(ctx, s.cfg, s.logger.Named("gateway"))
		if err != nil {
			return err
		}
		s.gateway = gw
	}

	s.scorer = scoring.NewNovaScorer(scoring.WithWeights(s.cfg.ScoreWeights))
	s.analyzer = sentiment.Default()

	bg, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	online := true
	if s.cfg.ConnectivityProbeURL != "" {
		s.probe = connectivity.NewHTTPProbe(s.cfg.ConnectivityProbeURL,
			connectivity.WithInterval(time.Duration(s.cfg.ConnectivityIntervalMS)*time.Millisecond),
			connectivity.WithClock(s.clock),
			connectivity.WithLogger(s.logger.Named("probe")),
		)
		online = s.probe.Check(ctx)
	} else {
		s.manual = connectivity.NewManual(true)
	}

	s.store = store.New(s.gateway,
		store.WithLogger(s.logger.Named("store")),
		store.WithClock(s.clock),
		store.WithSyncDelay(time.Duration(s.cfg.SyncDelayMS)*time.Millisecond),
		store.WithSyncTimeout(time.Duration(s.cfg.SyncTimeoutMS)*time.Millisecond),
		store.WithHistoryRetention(s.cfg.HistoryRetention),
		store.WithAnalyzer(s.analyzer),
		store.WithOnline(online),
	)
	if err := s.store.Load(ctx); err != nil {
		s.logger.Warn(ctx, "starting with empty data", logger.Error(err))
	}

	if s.probe != nil {
		s.unsubs = append(s.unsubs, s.probe.Subscribe(s.store.SetOnline))
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.probe.Run(bg)
		}()
	} else {
		s.unsubs = append(s.unsubs, s.manual.Subscribe(s.store.SetOnline))
	}

	if s.cfg.AMQPURL != "" {
		pub, err := amqp.Dial(s.cfg.AMQPURL,
			amqp.WithExchange(s.cfg.AMQPExchange),
			amqp.WithLogger(s.logger.Named("amqp")),
		)
		if err != nil {
			s.logger.Warn(ctx, "change events will not be published", logger.Error(err))
		} else {
			s.publisher = pub
			s.unsubs = append(s.unsubs, s.store.SubscribeChanges(func(ev model.DataChangeEvent) {
				pub.Enqueue(ev)
			}))
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				pub.Run(bg)
			}()
		}
	}

	s.importer = pipeline.New(s.store, s.scorer,
		pipeline.WithWorkers(s.cfg.WorkerCount),
		pipeline.WithLogger(s.logger.Named("pipeline")),
	)

	s.started = true
	s.logger.Info(ctx, "nova service started",
		logger.Int("partners", len(s.store.Partners())),
		logger.Bool("online", s.store.Online()),
		logger.Int("workers", s.cfg.WorkerCount),
	)
	return nil
}

// Stop flushes pending changes and releases every resource.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping nova service...")

	for _, unsub := range s.unsubs {
		unsub()
	}
	s.unsubs = nil

	var errs []error
	if err := s.store.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("final flush: %w", err))
	}
	s.cancel()
	if s.publisher != nil {
		errs = append(errs, s.publisher.Close())
	}
	s.wg.Wait()
	if c, ok := s.gateway.(interface{ Close() error }); ok {
		errs = append(errs, c.Close())
	}

	s.started = false
	s.logger.Info(ctx, "nova service stopped")
	return errors.Join(errs...)
}

// Handler returns the HTTP routes of the API and its documentation.
func (s *Service) Handler(ctx context.Context) (http.Handler, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}

	deps := api.Dependencies{
		Store:    s.store,
		Pipeline: s.importer,
		Scorer:   s.scorer,
		Analyzer: s.analyzer,
	}
	if s.manual != nil {
		deps.Switch = s.manual
	}

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(deps,
		api.WithMaxTopLimit(s.cfg.MaxTopLimit),
		api.WithLogger(s.logger.Named("api")),
	).Register(ctx, mux)
	return mux, nil
}

// Store returns the reactive store, or nil before Start.
func (s *Service) Store() *store.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

// Stats returns store statistics for the periodic metrics updater.
func (s *Service) Stats() (store.Stats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return store.Stats{}, false
	}
	return s.store.Stats(), true
}

// openGateway builds the configured persistence gateway. Remote backends are
// wrapped in a circuit breaker.
func openGateway(ctx context.Context, cfg *config.Config, log logger.Logger) (store.Gateway, error) {
	breaker := repository.BreakerConfig{
		FailureThreshold: uint(cfg.BreakerFailures),
		Delay:            time.Duration(cfg.BreakerDelayMS) * time.Millisecond,
		SuccessThreshold: 1,
	}

	switch cfg.StorageBackend {
	case config.BackendMemory:
		return repository.NewMemory(), nil
	case config.BackendFile:
		gw, err := repository.NewFile(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open file gateway: %w", err)
		}
		return gw, nil
	case config.BackendSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = filepath.Join(cfg.DataDir, sqliteFile)
		}
		gw, err := repository.OpenSQLite(path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite gateway: %w", err)
		}
		return gw, nil
	case config.BackendRedis:
		rdb, err := repository.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("open redis gateway: %w", err)
		}
		return repository.NewBreaker(repository.NewRedis(rdb), repository.BackendRedis, breaker, log), nil
	case config.BackendPostgres:
		pool, err := repository.ConnectPostgres(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres gateway: %w", err)
		}
		gw, err := repository.NewPostgres(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("open postgres gateway: %w", err)
		}
		return repository.NewBreaker(gw, repository.BackendPostgres, breaker, log), nil
	}
	return nil, fmt.Errorf("%w: unknown storage_backend %q", config.ErrInvalidConfig, cfg.StorageBackend)
}
