// Package submit gives a host process the synchronous facade spec.md
// §1 calls out as an external collaborator ("the public user-facing
// API for submitting operations... is out of scope" for the driver
// core itself): Submitter drains a Driver's Transmission output and
// turns each completed exchange back into a blocking call, so a caller
// can write resp, err := submitter.Submit(pkg) instead of wiring a
// channel pair by hand. It owns no protocol state of its own; every
// decision about retries, handshakes, and reconnects still belongs to
// driver.Driver.
package submit

import (
	"sync"

	uuid "github.com/satori/go.uuid"

	"github.com/Eventuria/eventstore/common"
	"github.com/Eventuria/eventstore/concurrent"
	"github.com/Eventuria/eventstore/driver"
	"github.com/Eventuria/eventstore/persistence"
	"github.com/Eventuria/eventstore/wire"
)

// defaultDispatchPoolSize bounds how many completed exchanges may be
// resolved (callbacks invoked, persistence forgotten) concurrently.
const defaultDispatchPoolSize = 8

// Submitter is a driver.Observer-free consumer of a Driver's output
// channel: it is the thing a host process starts once per Driver,
// alongside Driver.Run, to bridge the reactor's async Transmission
// stream back to synchronous callers.
type Submitter struct {
	ctx   common.Context
	store persistence.Store

	in  chan<- driver.Msg
	out <-chan driver.Transmission

	dispatch common.WorkPool
	wait     concurrent.Wait

	lock    sync.Mutex
	pending map[uuid.UUID]*common.Request
}

// NewSubmitter wires a Submitter to the channel pair a Driver's Run is
// (or will be) reading from/writing to. store may be nil, in which case
// submissions are not durably recorded before acknowledgement.
func NewSubmitter(ctx common.Context, in chan<- driver.Msg, out <-chan driver.Transmission, store persistence.Store) *Submitter {
	s := &Submitter{
		ctx:      ctx,
		store:    store,
		in:       in,
		out:      out,
		dispatch: common.NewWorkPool(ctx.Control(), defaultDispatchPoolSize),
		wait:     concurrent.NewWait(),
		pending:  make(map[uuid.UUID]*common.Request),
	}

	go s.drain()
	return s
}

// Submit sends pkg through the driver and blocks until its exchange
// completes: successfully (the server's reply package), or with the
// OperationError the driver's Recv(Err(...)) carried.
func (s *Submitter) Submit(pkg wire.Package) (wire.Package, error) {
	req := common.NewRequest(pkg)
	s.track(pkg.Correlation(), req)

	s.wait.Inc()
	defer s.wait.Dec()

	if s.store != nil {
		if err := driver.PersistPending(s.store, pkg); err != nil {
			s.ctx.Logger().Error("submit: failed to persist %v: %v", pkg.Correlation(), err)
		}
	}

	if s.ctx.Control().IsClosed() {
		s.untrack(pkg.Correlation())
		return nil, common.ClosedError
	}

	select {
	case <-s.ctx.Control().Closed():
		s.untrack(pkg.Correlation())
		return nil, common.ClosedError
	case s.in <- driver.SendPackage(pkg):
	}

	val, err := req.Response()
	if err != nil {
		return nil, err
	}
	return val.(wire.Package), nil
}

// Close waits for every Submit call in flight to resolve (the driver
// aborting them is sufficient) and stops accepting new dispatch work.
func (s *Submitter) Close() error {
	<-s.wait.Wait()
	return s.dispatch.Close()
}

func (s *Submitter) track(id uuid.UUID, req *common.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.pending[id] = req
}

func (s *Submitter) untrack(id uuid.UUID) *common.Request {
	s.lock.Lock()
	defer s.lock.Unlock()
	req, ok := s.pending[id]
	if !ok {
		return nil
	}
	delete(s.pending, id)
	return req
}

func (s *Submitter) drain() {
	for {
		select {
		case <-s.ctx.Control().Closed():
			return
		case t, ok := <-s.out:
			if !ok {
				return
			}
			t.Visit(s)
		}
	}
}

// VisitSend is a no-op here: framing and writing Send transmissions to
// the socket is transport.TCPEnv's job, wired separately against the
// same output channel (or a fanned-out copy of it) by the host.
func (s *Submitter) VisitSend(wire.Package) {}

// VisitIgnored is purely informational at this layer; metrics.Observer
// is where Ignored transmissions are counted.
func (s *Submitter) VisitIgnored(wire.Package) {}

func (s *Submitter) VisitRecvOk(pkg wire.Package) {
	s.resolve(pkg.Correlation(), func(req *common.Request) {
		req.Ack(pkg)
	})
}

func (s *Submitter) VisitRecvErr(news driver.BadNews) {
	s.resolve(news.Correlation, func(req *common.Request) {
		req.Fail(news.Err)
	})
}

// resolve bounds concurrent delivery of completed exchanges through the
// dispatch pool: a slow or misbehaving caller blocking inside its own
// handling of one Response() call cannot stall the drain loop reading
// the next Transmission off out.
func (s *Submitter) resolve(id uuid.UUID, fn func(*common.Request)) {
	req := s.untrack(id)
	if req == nil {
		return
	}

	if s.store != nil {
		if err := driver.ForgetPending(s.store, id); err != nil {
			s.ctx.Logger().Error("submit: failed to forget %v: %v", id, err)
		}
	}

	if err := s.dispatch.Submit(func() { fn(req) }); err != nil {
		// The pool is closing; deliver inline rather than drop the
		// result silently.
		fn(req)
	}
}
