// Package metrics wires the driver's narrow Observer seam to
// rcrowley/go-metrics counters, grounded on the teacher's own stats
// packages (msg/stats.go, msg/client/tunnel/stats.go) which register
// one metrics.Counter per event kind against metrics.DefaultRegistry.
package metrics

import (
	metrics "github.com/rcrowley/go-metrics"

	"github.com/Eventuria/eventstore/driver"
)

// Observer counts every terminal transmission the reactor emits,
// broken down by kind, so a driver's operability is visible without
// coupling the reactor itself to any particular metrics backend.
type Observer struct {
	sent        metrics.Counter
	ignored     metrics.Counter
	recvOk      metrics.Counter
	serverErr   metrics.Counter
	notAuthErr  metrics.Counter
	abortedErr  metrics.Counter
}

// NewObserver registers one counter per event kind, prefixed with name,
// against the default metrics registry.
func NewObserver(name string) *Observer {
	r := metrics.DefaultRegistry
	return &Observer{
		sent:       metrics.NewRegisteredCounter(name+".send", r),
		ignored:    metrics.NewRegisteredCounter(name+".ignored", r),
		recvOk:     metrics.NewRegisteredCounter(name+".recv.ok", r),
		serverErr:  metrics.NewRegisteredCounter(name+".recv.err.server", r),
		notAuthErr: metrics.NewRegisteredCounter(name+".recv.err.notauthenticated", r),
		abortedErr: metrics.NewRegisteredCounter(name+".recv.err.aborted", r),
	}
}

func (o *Observer) OnSend(driver.Transmission)    { o.sent.Inc(1) }
func (o *Observer) OnIgnored(driver.Transmission) { o.ignored.Inc(1) }
func (o *Observer) OnRecvOk(driver.Transmission)  { o.recvOk.Inc(1) }

func (o *Observer) OnRecvErr(_ driver.Transmission, news driver.BadNews) {
	switch news.Err.Kind {
	case driver.ServerError:
		o.serverErr.Inc(1)
	case driver.NotAuthenticatedOp:
		o.notAuthErr.Inc(1)
	case driver.Aborted:
		o.abortedErr.Inc(1)
	}
}
