// Package pipeline imports partner batches into the store and rescores the
// stored partners on the worker pool.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MidhulKiruthik/Nova-sub000/internal/adapters/mq/queue"
	"github.com/MidhulKiruthik/Nova-sub000/internal/adapters/mq/worker"
	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/dedupe"
	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/fairness"
	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/model"
	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/scoring"
	"github.com/MidhulKiruthik/Nova-sub000/pkg/logger"
	"github.com/MidhulKiruthik/Nova-sub000/pkg/metrics"
)

const defaultWorkers = 4

// Store is the subset of the reactive store the pipeline writes to.
type Store interface {
	Partners() []model.Partner
	SetPartners(list []model.Partner)
	SetFairnessMetrics(list []model.FairnessMetric)
	UpdatePartner(id string, u model.PartnerUpdate) error
}

// Report summarizes one import.
type Report struct {
	Imported   int           `json:"imported"`
	Duplicates int           `json:"duplicates"`
	Duration   time.Duration `json:"duration"`
}

// RescoreReport summarizes one rescore of the stored partners.
type RescoreReport struct {
	Scored  int `json:"scored"`
	Changed int `json:"changed"`
}

// Importer runs the import and rescore flows.
type Importer struct {
	store   Store
	scorer  scoring.Scorer
	workers int
	log     logger.Logger
}

// New returns an Importer writing to s and scoring with scorer.
func New(s Store, scorer scoring.Scorer, opts ...Option) *Importer {
	im := &Importer{
		store:   s,
		scorer:  scorer,
		workers: defaultWorkers,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Import replaces the store contents with partners. Duplicate ids keep their
// first occurrence; partners without an id get one. Every partner is rescored
// and fairness metrics are recomputed from the new scores.
func (im *Importer) Import(ctx context.Context, partners []model.Partner) (Report, error) {
	start := time.Now()
	if len(partners) == 0 {
		metrics.RecordImport("empty", 0)
		return Report{}, ErrEmptyImport
	}

	seen := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(len(partners)))
	batch := make([]model.Partner, 0, len(partners))
	dups := 0
	for _, p := range partners {
		n := model.Normalize(p)
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		if seen.SeenAndRecord(n.ID) {
			dups++
			continue
		}
		batch = append(batch, n)
	}

	outcomes, err := im.score(ctx, batch)
	if err != nil {
		metrics.RecordImport("error", float64(time.Since(start).Milliseconds()))
		return Report{}, err
	}
	for _, o := range outcomes {
		batch[o.Index].NovaScore = o.Score
	}

	im.store.SetPartners(batch)
	im.store.SetFairnessMetrics(fairness.Compute(batch))

	rep := Report{Imported: len(batch), Duplicates: dups, Duration: time.Since(start)}
	metrics.RecordImport("success", float64(rep.Duration.Milliseconds()))
	im.log.Info(ctx, "import completed",
		logger.Int("imported", rep.Imported),
		logger.Int("duplicates", rep.Duplicates),
		logger.Duration("duration", rep.Duration),
	)
	return rep, nil
}

// RescoreAll recomputes every stored partner's score and writes back the ones
// that changed, one update each.
func (im *Importer) RescoreAll(ctx context.Context) (RescoreReport, error) {
	partners := im.store.Partners()
	if len(partners) == 0 {
		return RescoreReport{}, nil
	}
	outcomes, err := im.score(ctx, partners)
	if err != nil {
		return RescoreReport{}, err
	}

	rep := RescoreReport{Scored: len(outcomes)}
	for _, o := range outcomes {
		if partners[o.Index].NovaScore == o.Score {
			continue
		}
		score := o.Score
		if err := im.store.UpdatePartner(o.PartnerID, model.PartnerUpdate{NovaScore: &score}); err != nil {
			return rep, fmt.Errorf("write score for %s: %w", o.PartnerID, err)
		}
		rep.Changed++
	}
	im.log.Info(ctx, "rescore completed",
		logger.Int("scored", rep.Scored),
		logger.Int("changed", rep.Changed),
	)
	return rep, nil
}

// score runs partners through a dedicated queue and pool and returns the
// outcomes in input order.
func (im *Importer) score(ctx context.Context, partners []model.Partner) ([]worker.Outcome, error) {
	q := queue.NewInMemoryQueue(queue.WithCapacity(len(partners)))
	c := &collector{out: make([]worker.Outcome, len(partners))}
	pool := worker.NewPool(min(im.workers, len(partners)), q, im.scorer, c,
		worker.WithPoolLogger(im.log.Named("pool")))
	pool.Start(ctx)
	defer func() { _ = pool.Shutdown(context.WithoutCancel(ctx)) }()

	for i, p := range partners {
		if !q.Enqueue(ctx, queue.Job{Index: i, Partner: p}) {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrScoring, err)
			}
			return nil, ErrQueueFull
		}
	}
	if err := pool.Drain(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScoring, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScoring, err)
	}
	if c.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScoring, c.err)
	}
	return c.out, nil
}

type collector struct {
	mu  sync.Mutex
	out []worker.Outcome
	err error
}

func (c *collector) Deliver(_ context.Context, o worker.Outcome) { //nolint:gocritic // hugeParam
	c.mu.Lock()
	defer c.mu.Unlock()
	if o.Err != nil && c.err == nil {
		c.err = o.Err
	}
	c.out[o.Index] = o
}
