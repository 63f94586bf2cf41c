package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MidhulKiruthik/Nova-sub000/pkg/logger"
	"github.com/MidhulKiruthik/Nova-sub000/pkg/metrics"
	"github.com/failsafe-go/failsafe-go/circuitbreaker"
)

// BreakerConfig tunes the circuit breaker around a remote gateway.
type BreakerConfig struct {
	FailureThreshold uint
	Delay            time.Duration
	SuccessThreshold uint
}

// DefaultBreakerConfig opens after 5 consecutive failures and probes again
// after 30 seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{FailureThreshold: 5, Delay: 30 * time.Second, SuccessThreshold: 1}
}

// Breaker guards a Gateway with a circuit breaker. While open, calls fail
// fast with ErrCircuitOpen instead of waiting on a dead backend; the
// scheduler then reports the error and retries on its next cycle.
type Breaker struct {
	next    Gateway
	backend string
	cb      circuitbreaker.CircuitBreaker[any]
}

// NewBreaker wraps next. backend names the wrapped adapter in logs and
// metrics.
func NewBreaker(next Gateway, backend string, cfg BreakerConfig, log logger.Logger) *Breaker {
	def := DefaultBreakerConfig()
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.Delay <= 0 {
		cfg.Delay = def.Delay
	}
	if cfg.SuccessThreshold == 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	log = logger.OrNop(log)

	cb := circuitbreaker.NewBuilder[any]().
		WithFailureThreshold(cfg.FailureThreshold).
		WithDelay(cfg.Delay).
		WithSuccessThreshold(cfg.SuccessThreshold).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			log.Warn(context.Background(), "circuit breaker state changed",
				logger.String("backend", backend),
				logger.String("from", e.OldState.String()),
				logger.String("to", e.NewState.String()))
			metrics.UpdateBreakerState(backend, stateToFloat(e.NewState))
		}).
		Build()

	return &Breaker{next: next, backend: backend, cb: cb}
}

func stateToFloat(state circuitbreaker.State) float64 {
	switch state {
	case circuitbreaker.ClosedState:
		return 0
	case circuitbreaker.HalfOpenState:
		return 1
	case circuitbreaker.OpenState:
		return 2
	default:
		return -1
	}
}

// Open reports whether the breaker is currently rejecting calls.
func (b *Breaker) Open() bool {
	return b.cb.IsOpen()
}

// Unwrap returns the guarded gateway.
func (b *Breaker) Unwrap() Gateway {
	return b.next
}

func (b *Breaker) guard(op string, fn func() error) error {
	if !b.cb.TryAcquirePermit() {
		return fmt.Errorf("%w: %s %s: %w", ErrCircuitOpen, b.backend, op, circuitbreaker.ErrOpen)
	}
	err := fn()
	// Bad keys are caller errors and say nothing about backend health.
	if err != nil && !errors.Is(err, ErrInvalidKey) {
		b.cb.RecordError(err)
		return err
	}
	b.cb.RecordSuccess()
	return err
}

func (b *Breaker) Write(ctx context.Context, entries map[string][]byte) error {
	return b.guard("write", func() error { return b.next.Write(ctx, entries) })
}

func (b *Breaker) Read(ctx context.Context, keys []string) (map[string][]byte, error) {
	var out map[string][]byte
	err := b.guard("read", func() error {
		var err error
		out, err = b.next.Read(ctx, keys)
		return err
	})
	return out, err
}

func (b *Breaker) Delete(ctx context.Context, keys []string) error {
	return b.guard("delete", func() error { return b.next.Delete(ctx, keys) })
}

// Close closes the wrapped gateway when it holds resources.
func (b *Breaker) Close() error {
	if c, ok := b.next.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
