// Package cluster supplies the discovery collaborator transport.TCPEnv
// delegates Discover() to: a concrete, minimal answer to "what node
// should the driver try to connect to." Full gossip-based membership
// (convoy) is out of this repository's scope (spec.md §1); this
// package only needs to round-robin a known, externally-maintained
// seed set while steering away from nodes that have recently refused
// connections, which is what the driver's Env.Discover contract needs
// in practice.
package cluster

import (
	"errors"

	"github.com/Eventuria/eventstore/concurrent"
	"github.com/Eventuria/eventstore/wire"
)

var ErrNoSeeds = errors.New("cluster: no seed endpoints configured")

// quarantineThreshold is how many consecutive dial failures against an
// endpoint mark it quarantined: skipped by Discover until MarkHealthy
// clears it (typically because a later Update re-learns it, or an
// operator intervenes).
const quarantineThreshold = 3

// Discoverer round-robins a mutable set of candidate endpoints, tracking
// per-endpoint consecutive failure counts in a concurrent.Map and the
// currently quarantined subset in a concurrent.Set. Gossip or DNS-based
// membership updates (out of scope here) would call Update; the
// driver's transport calls Discover and reports outcomes via
// MarkFailed/MarkHealthy.
type Discoverer struct {
	order      []wire.EndPoint
	cursor     *concurrent.AtomicCounter
	failures   concurrent.Map
	quarantine concurrent.Set
}

// NewDiscoverer seeds the discoverer with the cluster's initial known
// nodes, as a client would typically be configured with at least one
// reachable seed endpoint.
func NewDiscoverer(seeds ...wire.EndPoint) *Discoverer {
	return &Discoverer{
		order:      append([]wire.EndPoint{}, seeds...),
		cursor:     concurrent.NewAtomicCounter(),
		failures:   concurrent.NewMap(),
		quarantine: concurrent.NewSet(),
	}
}

// Update replaces the candidate set, e.g. after a gossip round learns
// of new cluster members or a node leaving.
func (d *Discoverer) Update(eps []wire.EndPoint) {
	d.order = append([]wire.EndPoint{}, eps...)
}

// MarkFailed records a failed dial against ep, quarantining it once it
// crosses quarantineThreshold consecutive failures so Discover steers
// traffic toward nodes more likely to be reachable.
func (d *Discoverer) MarkFailed(ep wire.EndPoint) {
	count := 1
	if prev := d.failures.Get(ep); prev != nil {
		count = prev.(int) + 1
	}
	d.failures.Remove(ep)
	d.failures.Put(ep, count)

	if count >= quarantineThreshold {
		d.quarantine.Add(ep)
	}
}

// MarkHealthy clears ep's failure count and quarantine status, e.g.
// after a successful connect.
func (d *Discoverer) MarkHealthy(ep wire.EndPoint) {
	d.failures.Remove(ep)
	d.quarantine.Remove(ep)
}

// Discover returns the next candidate endpoint in round-robin order,
// skipping quarantined nodes unless every known node is quarantined (in
// which case it degrades to plain round-robin rather than reporting no
// candidates at all).
func (d *Discoverer) Discover() (wire.EndPoint, error) {
	if len(d.order) == 0 {
		return wire.EndPoint{}, ErrNoSeeds
	}

	for attempt := 0; attempt < len(d.order); attempt++ {
		i := d.cursor.Inc() - 1
		ep := d.order[i%len(d.order)]
		if !d.quarantine.Contains(ep) {
			return ep, nil
		}
	}

	i := d.cursor.Inc() - 1
	return d.order[i%len(d.order)], nil
}
