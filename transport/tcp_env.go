// Package transport supplies the production driver.Env: real TCP
// sockets dialed with net.Dial, grounded on the teacher's
// net/tcp.go (ConnectTcp) and net/connection.go's retry-aware
// connection wrapper, generalized to the framed Package protocol of
// this spec instead of bourne's wire.Packet.
package transport

import (
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	metrics "github.com/rcrowley/go-metrics"

	"github.com/Eventuria/eventstore/common"
	"github.com/Eventuria/eventstore/concurrent"
	"github.com/Eventuria/eventstore/driver"
	eserrors "github.com/Eventuria/eventstore/errors"
	"github.com/Eventuria/eventstore/wire"
)

const readBufferSize = 64 * 1024

// dialTimeout bounds how long a single Connect/ForceReconnect attempt
// may take before it is abandoned; NewBreaker races the dial against
// this timer.
const dialTimeout = 10 * time.Second

var wrapDialError = eserrors.NewWrappedError("transport: dial failed: %w")

// Discoverer resolves the EventStore cluster's current endpoint set.
// cluster.Discoverer is the concrete implementation; tests may supply
// anything that satisfies this.
type Discoverer interface {
	Discover() (wire.EndPoint, error)
}

// HealthReporter is an optional extension a Discoverer may implement to
// receive dial outcomes, steering future Discover calls away from nodes
// that are currently refusing connections. cluster.Discoverer implements
// this; a bare round-robin stub is not required to.
type HealthReporter interface {
	MarkFailed(wire.EndPoint)
	MarkHealthy(wire.EndPoint)
}

// TCPEnv is the production driver.Env: Connect/ForceReconnect dial real
// sockets, Discover delegates to a Discoverer, and every established
// connection gets its own reader goroutine that frames incoming bytes
// and pushes PackageArrived onto In.
type TCPEnv struct {
	ctx   common.Context
	disco Discoverer
	in    chan<- driver.Msg
	start time.Time

	bytesRead metrics.Counter
	bytesSent metrics.Counter

	bufs common.ObjectPool

	lock    sync.Mutex
	conns   map[driver.ConnectionId]net.Conn
	current driver.ConnectionId
}

func NewTCPEnv(ctx common.Context, in chan<- driver.Msg, disco Discoverer) *TCPEnv {
	r := metrics.DefaultRegistry
	return &TCPEnv{
		ctx:       ctx,
		disco:     disco,
		in:        in,
		start:     time.Now(),
		bytesRead: metrics.NewRegisteredCounter("eventstore.driver.transport.bytes.read", r),
		bytesSent: metrics.NewRegisteredCounter("eventstore.driver.transport.bytes.sent", r),
		bufs: common.NewObjectPool(ctx, "TCPEnv.readBuffers", func() (interface{}, error) {
			return make([]byte, readBufferSize), nil
		}, runtimeReadBufferPoolSize),
		conns: make(map[driver.ConnectionId]net.Conn),
	}
}

// runtimeReadBufferPoolSize bounds how many 64KB read buffers TCPEnv
// keeps warm across reconnects; one per connection the driver could
// plausibly have open concurrently while a reconnect is settling.
const runtimeReadBufferPoolSize = 4

func (e *TCPEnv) Connect(ep wire.EndPoint) driver.ConnectionId {
	cid := driver.ConnectionId(uuid.NewV4())

	var conn net.Conn
	var err error
	dialed, timedOut := concurrent.NewBreaker(dialTimeout, func() {
		conn, err = net.Dial("tcp", ep.String())
	})

	select {
	case <-dialed:
	case dialErr := <-timedOut:
		e.ctx.Logger().Error("Connect to %v: %v", ep, wrapDialError(dialErr))
		e.reportOutcome(ep, false)
		return cid
	}

	if err != nil {
		e.ctx.Logger().Error("Connect to %v: %v", ep, wrapDialError(err))
		// The dial failed; there is no established-connection message
		// to emit. The outer layer's handshake watchdog (or lack of
		// any PackageArrived activity) is what eventually recycles
		// this attempt back through discovery.
		e.reportOutcome(ep, false)
		return cid
	}

	e.reportOutcome(ep, true)
	e.register(cid, conn)
	go e.readLoop(cid, conn)
	go e.emit(driver.ConnectionEstablished(cid))
	return cid
}

// reportOutcome feeds a dial result back to the Discoverer if it opts
// into HealthReporter, so future Discover calls steer away from nodes
// currently refusing connections.
func (e *TCPEnv) reportOutcome(ep wire.EndPoint, ok bool) {
	reporter, isReporter := e.disco.(HealthReporter)
	if !isReporter {
		return
	}
	if ok {
		reporter.MarkHealthy(ep)
	} else {
		reporter.MarkFailed(ep)
	}
}

// ForceReconnect closes the current socket before dialing the master
// spec.md §4.2 redirects to: the old ConnectionId is never reused, so
// there is no reason to keep its socket open once a replacement is
// underway.
func (e *TCPEnv) ForceReconnect(correlation uuid.UUID, node wire.NodeEndPoints) driver.ConnectionId {
	e.CloseConnection(e.currentConnection())
	return e.Connect(node.TCP)
}

func (e *TCPEnv) CloseConnection(id driver.ConnectionId) {
	e.lock.Lock()
	conn, ok := e.conns[id]
	delete(e.conns, id)
	e.lock.Unlock()

	if ok {
		conn.Close()
	}
}

func (e *TCPEnv) Discover() {
	result := concurrent.NewFuture(func() interface{} {
		ep, err := e.disco.Discover()
		return discoverOutcome{ep, err}
	})

	go func() {
		select {
		case <-e.ctx.Control().Closed():
			return
		case r := <-result:
			outcome := r.(discoverOutcome)
			if outcome.err != nil {
				e.ctx.Logger().Error("Discovery failed: %v", outcome.err)
				return
			}
			e.emit(driver.EstablishConnection(outcome.ep))
		}
	}()
}

type discoverOutcome struct {
	ep  wire.EndPoint
	err error
}

func (e *TCPEnv) GenerateID() uuid.UUID {
	return uuid.NewV4()
}

func (e *TCPEnv) GetElapsedTime() time.Duration {
	return time.Since(e.start)
}

func (e *TCPEnv) register(cid driver.ConnectionId, conn net.Conn) {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.conns[cid] = conn
	e.current = cid
}

func (e *TCPEnv) currentConnection() driver.ConnectionId {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.current
}

func (e *TCPEnv) emit(m driver.Msg) {
	select {
	case <-e.ctx.Control().Closed():
	case e.in <- m:
	}
}

// Send writes pkg to the socket named by cid. Not part of driver.Env —
// this is the write half of the Transmission sink the host process
// wires up to consume the reactor's Send transmissions.
func (e *TCPEnv) Send(cid driver.ConnectionId, pkg wire.Package) error {
	e.lock.Lock()
	conn, ok := e.conns[cid]
	e.lock.Unlock()
	if !ok {
		return errors.Errorf("transport: no such connection %v", cid)
	}

	framed, err := wire.Encode(pkg)
	if err != nil {
		return err
	}

	n, err := conn.Write(framed)
	e.bytesSent.Inc(int64(n))
	return err
}

func (e *TCPEnv) readLoop(cid driver.ConnectionId, conn net.Conn) {
	buf := make([]byte, 0, readBufferSize)

	tmp := e.bufs.Take().([]byte)
	defer e.bufs.Return(tmp)

	for {
		n, err := conn.Read(tmp)
		if n > 0 {
			e.bytesRead.Inc(int64(n))
			buf = append(buf, tmp[:n]...)
		}
		if err != nil {
			return
		}

		for {
			body, consumed, ok := wire.ReadFrame(buf)
			if !ok {
				break
			}

			pkg, decodeErr := wire.Decode(body)
			buf = append([]byte{}, buf[consumed:]...)
			if decodeErr != nil {
				e.ctx.Logger().Debug("Dropping malformed frame on %v: %v", cid, decodeErr)
				continue
			}

			e.emit(driver.PackageArrived(cid, pkg))
		}
	}
}

// Drain reads a Driver's Transmission output and writes every Send to
// the currently established socket. A host process starts this
// alongside Driver.Run, fed the same out channel (or a fanned-out copy
// of it shared with a submit.Submitter for the Recv side).
func (e *TCPEnv) Drain(out <-chan driver.Transmission) {
	for {
		select {
		case <-e.ctx.Control().Closed():
			return
		case t, ok := <-out:
			if !ok {
				return
			}
			t.Visit(e)
		}
	}
}

// VisitSend writes pkg to the currently established connection. A Send
// transmission does not itself carry a ConnectionId (spec.md §4.4's
// Transmission alphabet is just Send(Package)); TCPEnv tracks which
// connection is current the same way it mints ids, so there is exactly
// one reasonable target for any Send in flight at a time.
func (e *TCPEnv) VisitSend(pkg wire.Package) {
	cid := e.currentConnection()
	if err := e.Send(cid, pkg); err != nil {
		e.ctx.Logger().Error("transport: failed to send %v on %v: %v", pkg.Correlation(), cid, err)
	}
}

// VisitIgnored, VisitRecvOk, and VisitRecvErr are no-ops here: the
// write-only side of the Transmission stream is this type's only
// concern. metrics.Observer and submit.Submitter handle the rest.
func (e *TCPEnv) VisitIgnored(wire.Package)   {}
func (e *TCPEnv) VisitRecvOk(wire.Package)    {}
func (e *TCPEnv) VisitRecvErr(driver.BadNews) {}
