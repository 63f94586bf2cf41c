// Package journal keeps the append-only log of store mutations.
package journal

import (
	"maps"
	"sync"

	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/model"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// DefaultRetention is how many events survive a Truncate.
const DefaultRetention = 50

// Option configures a Journal.
type Option func(*Journal)

// WithRetention sets how many of the most recent events Truncate keeps.
func WithRetention(n int) Option {
	return func(j *Journal) {
		if n > 0 {
			j.retention = n
		}
	}
}

// WithClock sets the clock used to stamp events.
func WithClock(c clockwork.Clock) Option {
	return func(j *Journal) {
		if c != nil {
			j.clock = c
		}
	}
}

// Journal is an ordered, most-recent-last log of change events. Repeated
// changes to the same record each get their own entry.
type Journal struct {
	mu        sync.Mutex
	events    []model.DataChangeEvent
	retention int
	clock     clockwork.Clock
}

// New creates an empty journal.
func New(opts ...Option) *Journal {
	j := &Journal{
		retention: DefaultRetention,
		clock:     clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Record appends ev, filling in the id and timestamp when they are empty,
// and returns the stored event.
func (j *Journal) Record(ev model.DataChangeEvent) model.DataChangeEvent {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = j.clock.Now().UTC()
	}
	ev.Data = maps.Clone(ev.Data)

	j.mu.Lock()
	j.events = append(j.events, ev)
	j.mu.Unlock()
	return clone(ev)
}

// History returns a copy of every event, oldest first.
func (j *Journal) History() []model.DataChangeEvent {
	j.mu.Lock()
	defer j.mu.Unlock()
	return cloneAll(j.events)
}

// Truncate drops all but the most recent events and returns how many were
// dropped. Dropped events are not archived.
func (j *Journal) Truncate() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	excess := len(j.events) - j.retention
	if excess <= 0 {
		return 0
	}
	j.events = append([]model.DataChangeEvent(nil), j.events[excess:]...)
	return excess
}

// Restore replaces the log with persisted history, keeping at most the
// retention window.
func (j *Journal) Restore(events []model.DataChangeEvent) {
	if len(events) > j.retention {
		events = events[len(events)-j.retention:]
	}
	restored := cloneAll(events)
	j.mu.Lock()
	j.events = restored
	j.mu.Unlock()
}

// Reset clears the log.
func (j *Journal) Reset() {
	j.mu.Lock()
	j.events = nil
	j.mu.Unlock()
}

// Len returns the number of retained events.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.events)
}

// Retention returns the truncation window.
func (j *Journal) Retention() int {
	return j.retention
}

func clone(ev model.DataChangeEvent) model.DataChangeEvent {
	ev.Data = maps.Clone(ev.Data)
	return ev
}

func cloneAll(events []model.DataChangeEvent) []model.DataChangeEvent {
	out := make([]model.DataChangeEvent, len(events))
	for i, ev := range events {
		out[i] = clone(ev)
	}
	return out
}
