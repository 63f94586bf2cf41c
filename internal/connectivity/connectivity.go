// Package connectivity reports whether the persistence backend is reachable.
package connectivity

import (
	"sync"

	"github.com/MidhulKiruthik/Nova-sub000/internal/observer"
	"github.com/MidhulKiruthik/Nova-sub000/pkg/metrics"
)

// Probe is a source of online/offline transitions.
type Probe interface {
	// Online reports the last known state.
	Online() bool
	// Subscribe registers fn for transitions only; repeated signals of the
	// same state are not delivered.
	Subscribe(fn func(online bool)) observer.Unsubscribe
}

// state is the transition filter shared by every probe.
type state struct {
	mu     sync.Mutex
	online bool
	subs   observer.Registry[bool]
}

func (s *state) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

func (s *state) Subscribe(fn func(bool)) observer.Unsubscribe {
	return s.subs.Subscribe(fn)
}

// set stores online and notifies subscribers when it changed.
func (s *state) set(online bool) bool {
	s.mu.Lock()
	changed := s.online != online
	s.online = online
	s.mu.Unlock()
	if changed {
		metrics.UpdateOnline(online)
		s.subs.Notify(online)
	}
	return changed
}

// Manual is a probe driven by explicit calls, typically from an operator
// endpoint or a test.
type Manual struct {
	state
}

// NewManual creates a manual probe in the given initial state.
func NewManual(online bool) *Manual {
	m := &Manual{}
	m.online = online
	return m
}

// Set records the connectivity state. It reports whether this was a
// transition.
func (m *Manual) Set(online bool) bool {
	return m.set(online)
}
