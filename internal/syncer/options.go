package syncer

import (
	"time"

	"github.com/MidhulKiruthik/Nova-sub000/pkg/logger"
	"github.com/jonboulle/clockwork"
)

// Option applies a configuration option to the Scheduler.
type Option func(*Scheduler)

// WithDelay sets the debounce delay between the last change and the flush.
func WithDelay(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.delay = d
		}
	}
}

// WithTimeout bounds a single gateway round trip started by the timer.
func WithTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock sets the clock used for the debounce timer and lastSync.
func WithClock(c clockwork.Clock) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		s.log = logger.OrNop(l)
	}
}

// WithOnline sets the initial connectivity state. The default is online.
func WithOnline(online bool) Option {
	return func(s *Scheduler) {
		s.online = online
	}
}
