// Package worker runs rescoring jobs off the queue and hands the outcomes to a sink.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MidhulKiruthik/Nova-sub000/internal/adapters/mq/queue"
	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/scoring"
	"github.com/MidhulKiruthik/Nova-sub000/pkg/logger"
	"github.com/MidhulKiruthik/Nova-sub000/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Job is what workers read off the queue.
type Job = queue.Job

// Outcome is the result of one job. Err is set when scoring failed; Score is
// then zero and must not be applied.
type Outcome struct {
	Index     int
	PartnerID string
	Score     int
	Breakdown scoring.Breakdown
	Err       error
}

// Sink receives outcomes. Implementations must be safe for concurrent use.
type Sink interface {
	Deliver(ctx context.Context, o Outcome)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, o Outcome)

// Deliver calls f.
func (f SinkFunc) Deliver(ctx context.Context, o Outcome) { f(ctx, o) } //nolint:gocritic // hugeParam

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes jobs until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue drains.
	Run(ctx context.Context)

	// Shutdown stops the worker without draining the queue.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for rescoring jobs.
type InMemoryWorker struct {
	queue  Queue
	scorer scoring.Scorer
	sink   Sink
	name   string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	processed *atomic.Int64
	logger    logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, scorer scoring.Scorer, sink Sink, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		scorer:    scorer,
		sink:      sink,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		processed: new(atomic.Int64),
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, job)
		}
	}
}

// Shutdown stops the worker and waits for the loop to exit.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) process(ctx context.Context, job Job) { //nolint:gocritic // hugeParam: jobs travel by value
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	out := Outcome{Index: job.Index, PartnerID: job.Partner.ID}
	res, err := w.scorer.Score(ctx, scoring.Input{Partner: job.Partner})
	if err != nil {
		metrics.RecordScoringError()
		metrics.RecordErrorByComponent("worker", "scoring_error")
		w.logger.Error(ctx, "scoring failed",
			logger.String("partnerID", job.Partner.ID),
			logger.Error(err),
		)
		out.Err = fmt.Errorf("score partner %s: %w", job.Partner.ID, err)
	} else {
		metrics.RecordScore(res.Score)
		out.Score = res.Score
		out.Breakdown = res.Breakdown
	}

	w.processed.Add(1)
	w.sink.Deliver(ctx, out)
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	processed    atomic.Int64
	shutdownOnce sync.Once
	logger       logger.Logger
}

// NewPool creates a worker pool. A non-positive count defaults to a multiple
// of the CPU count.
func NewPool(workerCount int, q Queue, scorer scoring.Scorer, sink Sink, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	for i := 0; i < workerCount; i++ {
		p.workers[i] = NewInMemoryWorker(q, scorer, sink,
			WithName("worker-"+strconv.Itoa(i)),
			WithLogger(p.logger),
		)
		p.workers[i].processed = &p.processed
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns how many jobs the pool has finished.
func (p *Pool) Processed() int64 { return p.processed.Load() }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Drain closes the queue and waits until every queued job was processed.
func (p *Pool) Drain(ctx context.Context) error {
	p.closeQueue(ctx)
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			return fmt.Errorf("drain: %w", ctx.Err())
		}
	}
	return nil
}

// Shutdown closes the queue and stops every worker, dropping queued jobs.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.closeQueue(ctx)

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerCount(0)
	return nil
}

func (p *Pool) closeQueue(ctx context.Context) {
	p.shutdownOnce.Do(func() {
		if closer, ok := p.queue.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				p.logger.Error(ctx, "error closing queue", logger.Error(err))
			}
		}
	})
}
