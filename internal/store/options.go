package store

import (
	"time"

	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/sentiment"
	"github.com/MidhulKiruthik/Nova-sub000/pkg/logger"
	"github.com/jonboulle/clockwork"
)

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		s.log = logger.OrNop(l)
	}
}

// WithClock sets the clock shared by the journal and the sync scheduler.
func WithClock(c clockwork.Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithSyncDelay sets the debounce delay before a flush.
func WithSyncDelay(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.syncDelay = d
		}
	}
}

// WithSyncTimeout bounds a single gateway round trip.
func WithSyncTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.syncTimeout = d
		}
	}
}

// WithHistoryRetention sets how many journal entries survive a flush.
func WithHistoryRetention(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.retention = n
		}
	}
}

// WithAnalyzer sets the analyzer used to derive review sentiment.
func WithAnalyzer(a *sentiment.Analyzer) Option {
	return func(s *Store) {
		if a != nil {
			s.analyzer = a
		}
	}
}

// WithOnline sets the initial connectivity state.
func WithOnline(online bool) Option {
	return func(s *Store) {
		s.online = online
	}
}
