// Package syncer owns the debounced, connectivity-aware flush of store
// snapshots to a persistence gateway, and the SyncStatus it reports.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/model"
	"github.com/MidhulKiruthik/Nova-sub000/internal/observer"
	"github.com/MidhulKiruthik/Nova-sub000/pkg/logger"
	"github.com/MidhulKiruthik/Nova-sub000/pkg/metrics"
	"github.com/jonboulle/clockwork"
)

// Defaults.
const (
	DefaultDelay   = 2000 * time.Millisecond
	DefaultTimeout = 10 * time.Second
)

// Gateway persists a full snapshot keyed by collection name.
type Gateway interface {
	Write(ctx context.Context, snapshot map[string][]byte) error
}

// Source produces the snapshot to persist.
type Source interface {
	Snapshot(ctx context.Context) (map[string][]byte, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (map[string][]byte, error)

// Snapshot calls f.
func (f SourceFunc) Snapshot(ctx context.Context) (map[string][]byte, error) { return f(ctx) }

type trigger int

const (
	byTimer trigger = iota
	byForce
	byReconnect
	byClear
	byClose
)

func (t trigger) String() string {
	switch t {
	case byTimer:
		return "timer"
	case byForce:
		return "force"
	case byReconnect:
		return "reconnect"
	case byClear:
		return "clear"
	default:
		return "close"
	}
}

var (
	errStale     = errors.New("stale timer")
	errNoPending = errors.New("nothing pending")
)

// Scheduler debounces change notifications into single flushes.
//
// State machine: idle -> syncing -> idle|error on every flush; any state ->
// offline on connectivity loss; offline -> idle on restoration, followed by
// an immediate flush when changes are pending. At most one flush runs at a
// time.
type Scheduler struct {
	gateway Gateway
	source  Source
	delay   time.Duration
	timeout time.Duration
	clock   clockwork.Clock
	log     logger.Logger

	mu       sync.Mutex
	status   model.SyncStatus
	online   bool
	timer    clockwork.Timer
	gen      uint64
	flushing bool
	rerun    bool
	closed   bool
	// cleared marks a Reset that happened while a flush was writing; that
	// write may have restored erased data.
	cleared bool

	// outbox holds statuses awaiting delivery, oldest first. One caller at a
	// time drains it, outside every lock, so subscribers may call back into
	// the scheduler and still observe statuses in order.
	outbox   []model.SyncStatus
	draining bool
	subs     observer.Registry[model.SyncStatus]
}

// New creates a scheduler writing snapshots from src to gw.
func New(gw Gateway, src Source, opts ...Option) *Scheduler {
	s := &Scheduler{
		gateway: gw,
		source:  src,
		delay:   DefaultDelay,
		timeout: DefaultTimeout,
		clock:   clockwork.NewRealClock(),
		log:     logger.Nop(),
		online:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.status = model.SyncStatus{Status: model.SyncIdle}
	if !s.online {
		s.status.Status = model.SyncOffline
	}
	return s
}

// update applies fn under the state lock and, when fn reports a change,
// queues the resulting status for broadcast.
func (s *Scheduler) update(fn func() bool) {
	s.mu.Lock()
	if fn() {
		s.outbox = append(s.outbox, s.status.Clone())
	}
	if s.draining || len(s.outbox) == 0 {
		s.mu.Unlock()
		return
	}
	s.draining = true
	s.mu.Unlock()
	s.drain()
}

// drain delivers queued statuses until the outbox is empty. A status queued
// by a subscriber during delivery is sent after the current one.
func (s *Scheduler) drain() {
	done := false
	defer func() {
		if !done {
			s.mu.Lock()
			s.draining = false
			s.mu.Unlock()
		}
	}()
	for {
		s.mu.Lock()
		if len(s.outbox) == 0 {
			s.draining = false
			s.outbox = nil
			s.mu.Unlock()
			done = true
			return
		}
		st := s.outbox[0]
		s.outbox = s.outbox[1:]
		s.mu.Unlock()

		metrics.UpdateSyncStatus(st.Status.Ordinal(), st.PendingChanges)
		s.subs.Notify(st)
	}
}

// armLocked replaces any pending timer with a fresh one. Callers hold mu.
func (s *Scheduler) armLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = s.clock.AfterFunc(s.delay, func() { s.fire(gen) })
}

func (s *Scheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

// MarkChanged counts one pending change and restarts the debounce window.
func (s *Scheduler) MarkChanged() {
	s.update(func() bool {
		s.status.PendingChanges++
		if !s.closed {
			s.armLocked()
		}
		return true
	})
}

func (s *Scheduler) fire(gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.flush(ctx, byTimer, gen); err != nil {
		s.log.Debug(ctx, "scheduled sync skipped", logger.Error(err))
	}
}

// ForceSync flushes immediately, bypassing the debounce delay. It writes
// even when nothing is pending.
func (s *Scheduler) ForceSync(ctx context.Context) error {
	return s.flush(ctx, byForce, 0)
}

func (s *Scheduler) flush(ctx context.Context, t trigger, gen uint64) error {
	var (
		captured int
		err      error
	)
	s.update(func() bool {
		switch {
		case t == byTimer && gen != s.gen:
			err = errStale
		case t == byForce && s.closed:
			err = ErrClosed
		case !s.online:
			err = ErrOffline
		case s.flushing:
			s.rerun = true
			err = ErrSyncInProgress
		case t != byForce && s.status.PendingChanges == 0:
			err = errNoPending
		}
		if err != nil {
			return false
		}
		s.flushing = true
		captured = s.status.PendingChanges
		s.status.Status = model.SyncSyncing
		return true
	})
	switch {
	case errors.Is(err, errStale), errors.Is(err, errNoPending):
		return nil
	case err != nil:
		return err
	}

	start := time.Now()
	werr := s.write(ctx)
	latency := float64(time.Since(start).Microseconds()) / 1000

	var redo bool
	s.update(func() bool {
		s.flushing = false
		if s.cleared {
			s.cleared = false
			redo = true
			captured = 0
			s.status.PendingChanges = max(s.status.PendingChanges, 1)
		}
		if werr != nil {
			s.status.Status = model.SyncError
			s.status.Error = werr.Error()
		} else {
			s.status.Status = model.SyncIdle
			s.status.Error = ""
			s.status.PendingChanges = max(0, s.status.PendingChanges-captured)
			now := s.clock.Now().UTC()
			s.status.LastSync = &now
		}
		if !s.online {
			s.status.Status = model.SyncOffline
		}
		if s.rerun {
			s.rerun = false
			if !redo && s.online && !s.closed && s.status.PendingChanges > 0 {
				s.armLocked()
			}
		}
		return true
	})

	if redo {
		// Overwrite whatever this write restored with the cleared state.
		s.log.Debug(ctx, "data cleared during sync, writing again", logger.String("trigger", t.String()))
		if rerr := s.flush(ctx, byClear, 0); rerr != nil {
			s.log.Warn(ctx, "rewrite after clear did not complete", logger.Error(rerr))
		}
	}

	if werr != nil {
		metrics.RecordFlush("error", latency)
		metrics.RecordErrorByComponent("syncer", "flush")
		s.log.Warn(ctx, "sync failed",
			logger.String("trigger", t.String()),
			logger.Int("changes", captured),
			logger.Error(werr))
		return werr
	}
	metrics.RecordFlush("success", latency)
	s.log.Debug(ctx, "sync complete",
		logger.String("trigger", t.String()),
		logger.Int("changes", captured),
		logger.Float64("latency_ms", latency))
	return nil
}

func (s *Scheduler) write(ctx context.Context) error {
	snap, err := s.source.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("build snapshot: %w", err)
	}
	if err := s.gateway.Write(ctx, snap); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// SetOnline records a connectivity transition. Going offline suppresses
// writes without cancelling an in-flight flush or the pending timer. Coming
// back online flushes at once when changes are pending.
func (s *Scheduler) SetOnline(online bool) {
	var reconnect bool
	s.update(func() bool {
		if s.online == online {
			return false
		}
		s.online = online
		switch {
		case !online:
			s.status.Status = model.SyncOffline
		case s.flushing:
			s.status.Status = model.SyncSyncing
		default:
			s.status.Status = model.SyncIdle
			s.status.Error = ""
			reconnect = s.status.PendingChanges > 0 && !s.closed
		}
		return true
	})
	if !reconnect {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.flush(ctx, byReconnect, 0); err != nil {
		s.log.Debug(ctx, "reconnect sync did not complete", logger.Error(err))
	}
}

// Reset clears pending changes and any error, and cancels the pending
// timer. Used when all data is cleared.
//
// A flush already writing when Reset is called may persist data captured
// before the reset. That flush writes the current state again when it
// finishes, so erased data does not come back.
func (s *Scheduler) Reset() {
	s.update(func() bool {
		s.stopLocked()
		s.rerun = false
		s.cleared = s.flushing
		s.status.PendingChanges = 0
		s.status.Error = ""
		switch {
		case !s.online:
			s.status.Status = model.SyncOffline
		case s.flushing:
			s.status.Status = model.SyncSyncing
		default:
			s.status.Status = model.SyncIdle
		}
		return true
	})
}

// Close stops the timer and makes a best-effort final flush when changes
// are pending and the backend is reachable. Later changes are still counted
// but never flushed.
func (s *Scheduler) Close(ctx context.Context) error {
	var final bool
	s.update(func() bool {
		if s.closed {
			return false
		}
		s.closed = true
		s.stopLocked()
		final = s.online && s.status.PendingChanges > 0
		return false
	})
	if !final {
		return nil
	}
	return s.flush(ctx, byClose, 0)
}

// Status returns a copy of the current status.
func (s *Scheduler) Status() model.SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status.Clone()
}

// Online reports the last connectivity state.
func (s *Scheduler) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

// Subscribe registers fn for every status change.
func (s *Scheduler) Subscribe(fn func(model.SyncStatus)) observer.Unsubscribe {
	return s.subs.Subscribe(fn)
}

// Subscribers returns the number of status subscribers.
func (s *Scheduler) Subscribers() int {
	return s.subs.Len()
}
