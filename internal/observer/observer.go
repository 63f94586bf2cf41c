// Package observer is a small registry of callbacks with disposal tokens.
package observer

import (
	"sync"
)

// Unsubscribe removes a callback. Calling it more than once is a no-op.
type Unsubscribe func()

// Registry holds callbacks that receive values of type T.
// The zero value is ready to use.
type Registry[T any] struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]func(T)
	order  []uint64
}

// Subscribe registers fn and returns its disposal token.
func (r *Registry[T]) Subscribe(fn func(T)) Unsubscribe {
	if fn == nil {
		return func() {}
	}
	r.mu.Lock()
	if r.subs == nil {
		r.subs = make(map[uint64]func(T))
	}
	id := r.nextID
	r.nextID++
	r.subs[id] = fn
	r.order = append(r.order, id)
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(id) })
	}
}

func (r *Registry[T]) remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subs, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Notify calls every registered callback once with v. Callbacks run outside
// the registry lock, so they may subscribe or unsubscribe.
func (r *Registry[T]) Notify(v T) {
	r.mu.RLock()
	fns := make([]func(T), 0, len(r.order))
	for _, id := range r.order {
		fns = append(fns, r.subs[id])
	}
	r.mu.RUnlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Len returns the number of live subscriptions.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}
