package events

import (
	"sync"
)

// Registry holds synchronous callbacks and invokes them in registration order.
// The zero value is ready to use.
type Registry[T any] struct {
	mu     sync.Mutex
	nextID uint64
	ids    []uint64
	subs   map[uint64]func(T)
}

// Add registers cb and returns a function that removes it.
// The returned function is idempotent.
func (r *Registry[T]) Add(cb func(T)) (remove func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.subs == nil {
		r.subs = make(map[uint64]func(T))
	}
	r.nextID++
	handle := r.nextID
	r.subs[handle] = cb
	r.ids = append(r.ids, handle)

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(handle) })
	}
}

func (r *Registry[T]) remove(handle uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subs[handle]; !ok {
		return
	}
	delete(r.subs, handle)
	for i, id := range r.ids {
		if id == handle {
			r.ids = append(r.ids[:i], r.ids[i+1:]...)
			break
		}
	}
}

// Notify invokes every registered callback once. value is called per
// callback so each receives its own copy.
// Callbacks run outside the registry lock and may add or remove subscriptions.
func (r *Registry[T]) Notify(value func() T) {
	for _, cb := range r.callbacks() {
		cb(value())
	}
}

func (r *Registry[T]) callbacks() []func(T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]func(T), 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.subs[id])
	}
	return out
}

// Len returns the number of registered callbacks.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}
