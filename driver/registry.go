package driver

import (
	"time"

	uuid "github.com/satori/go.uuid"

	"github.com/Eventuria/eventstore/wire"
)

// Exchange tracks one outstanding request: the original package, how
// many times it has been retried, and when it was first submitted.
type Exchange struct {
	Request    wire.Package
	RetryCount int
	Started    time.Duration
}

func NewExchange(request wire.Package, started time.Duration) Exchange {
	return Exchange{Request: request, RetryCount: 0, Started: started}
}

func (e Exchange) retried() Exchange {
	e.RetryCount++
	return e
}

// Registry maps in-flight correlation ids to their Exchange. It is
// owned exclusively by the reactor goroutine (spec.md §4.3) — no locking
// is used here on purpose; see DESIGN.md for why concurrent.Map, used
// elsewhere in this repo for genuinely shared maps, would be the wrong
// tool for this one.
type Registry struct {
	inner map[uuid.UUID]Exchange
}

func NewRegistry() *Registry {
	return &Registry{inner: make(map[uuid.UUID]Exchange)}
}

func (r *Registry) Insert(id uuid.UUID, exc Exchange) {
	r.inner[id] = exc
}

// RemoveAndGet performs the lookup-and-delete in one pass, as required
// by spec.md §3 ("Lookup and delete must be atomic in a single pass").
func (r *Registry) RemoveAndGet(id uuid.UUID) (Exchange, bool) {
	exc, ok := r.inner[id]
	if ok {
		delete(r.inner, id)
	}
	return exc, ok
}

func (r *Registry) Elems() []Exchange {
	out := make([]Exchange, 0, len(r.inner))
	for _, exc := range r.inner {
		out = append(out, exc)
	}
	return out
}

func (r *Registry) Size() int {
	return len(r.inner)
}
