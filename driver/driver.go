// Package driver implements the connection driver core of an
// EventStore TCP client: a single-threaded, event-driven state machine
// mediating between user-initiated operation requests and the framed
// request/response protocol spoken over a TCP connection to an
// EventStore cluster node. See SPEC_FULL.md for the full design.
package driver

import (
	"fmt"

	uuid "github.com/satori/go.uuid"

	"github.com/Eventuria/eventstore/common"
	"github.com/Eventuria/eventstore/wire"
)

// Driver owns the current State and runs the reactor loop. It has no
// other mutable fields touched outside Run's goroutine; env, settings,
// and obs are read-only after construction.
type Driver struct {
	ctx      common.Context
	env      Env
	settings Settings
	obs      Observer

	cur State
}

func NewDriver(ctx common.Context, env Env, settings Settings) *Driver {
	return NewDriverWithObserver(ctx, env, settings, NoopObserver())
}

func NewDriverWithObserver(ctx common.Context, env Env, settings Settings, obs Observer) *Driver {
	return &Driver{ctx: ctx, env: env, settings: settings, obs: obs, cur: Init()}
}

// State exposes the current DriverState, for tests and diagnostics.
// Nothing outside the reactor goroutine may call this concurrently with
// Run/Step.
func (d *Driver) State() State {
	return d.cur
}

// Run is the reactor loop (C5): consume in until it closes or the
// driver's Control closes, emitting every Transmission produced by
// each Msg onto out, in order, before moving to the next Msg
// (spec.md §5's ordering guarantee).
func (d *Driver) Run(in <-chan Msg, out chan<- Transmission) {
	defer d.drainOnClose(out)

	for {
		select {
		case <-d.ctx.Control().Closed():
			return
		case m, ok := <-in:
			if !ok {
				return
			}
			for _, t := range d.Step(m) {
				select {
				case <-d.ctx.Control().Closed():
					return
				case out <- t:
				}
			}
		}
	}
}

// drainOnClose satisfies spec.md §5's cancellation clause: on shutdown,
// every exchange still known to the registry is delivered as an
// Aborted Recv before the terminal state is considered entered.
func (d *Driver) drainOnClose(out chan<- Transmission) {
	for _, t := range d.observe(d.transitionToClosed()) {
		select {
		case out <- t:
		default:
			// best-effort: a caller that stopped draining out during
			// shutdown should not wedge the reactor's own teardown.
		}
	}
}

func (d *Driver) transitionToClosed() []Transmission {
	var out []Transmission
	if cs, ok := d.cur.(connectedState); ok {
		if as, ok := cs.Stage.(activeStage); ok {
			for _, exc := range as.Registry.Elems() {
				out = append(out, d.abort(exc.Request.Correlation()))
			}
		}
		d.env.CloseConnection(cs.Cid)
	}
	d.cur = Closed()
	return out
}

func (d *Driver) abort(correlation uuid.UUID) Transmission {
	return RecvErr(BadNews{correlation, NewAbortedError()})
}

// Step is the pure transition function `react` (§2), exposed for tests
// that want to drive the state machine message-by-message without a
// channel. It is not safe to call concurrently with Run on the same
// Driver.
func (d *Driver) Step(m Msg) []Transmission {
	out, next := d.react(d.cur, m)
	d.cur = next
	return d.observe(out)
}

func (d *Driver) observe(out []Transmission) []Transmission {
	for _, t := range out {
		switch v := t.(type) {
		case sendTransmission:
			d.obs.OnSend(t)
		case ignoredTransmission:
			d.obs.OnIgnored(t)
		case recvTransmission:
			if pkg, ok := v.IsOk(); ok {
				_ = pkg
				d.obs.OnRecvOk(t)
			} else {
				d.obs.OnRecvErr(t, v.BadNewsOf())
			}
		}
	}
	return out
}

func (d *Driver) react(state State, m Msg) ([]Transmission, State) {
	switch s := state.(type) {
	case initState:
		return d.reactInit(m)
	case awaitingState:
		return d.reactAwaiting(s, m)
	case connectedState:
		return d.reactConnected(s, m)
	case closedState:
		return d.reactClosed(m)
	default:
		panic(fmt.Sprintf("driver: unknown state %T", state))
	}
}

// --- Init ---

func (d *Driver) reactInit(m Msg) ([]Transmission, State) {
	switch v := m.(type) {
	case systemInitMsg:
		d.env.Discover()
		return nil, Awaiting(nil, EndpointDiscovery())
	case sendPackageMsg:
		d.env.Discover()
		return nil, Awaiting([]wire.Package{v.Package}, Reconnecting())
	default:
		return nil, Init()
	}
}

// --- Awaiting ---

func (d *Driver) reactAwaiting(s awaitingState, m Msg) ([]Transmission, State) {
	switch v := m.(type) {
	case sendPackageMsg:
		pending := append(append([]wire.Package{}, s.Pending...), v.Package)
		return nil, Awaiting(pending, s.Connecting)

	case establishConnectionMsg:
		if _, ok := s.Connecting.(endpointDiscoveryStage); !ok {
			return nil, s
		}
		cid := d.env.Connect(v.EndPoint)
		return nil, Awaiting(s.Pending, ConnectionEstablishing(cid))

	case connectionEstablishedMsg:
		ces, ok := s.Connecting.(connectionEstablishingStage)
		if !ok || ces.Cid != v.Cid {
			return nil, s
		}
		return d.beginHandshake(v.Cid, s.Pending)

	case packageArrivedMsg:
		return []Transmission{Ignored(v.Package)}, s

	default:
		return nil, s
	}
}

// beginHandshake implements the ConnectionEstablished branch of
// spec.md §4.4: authenticate first if default credentials are
// configured, otherwise go straight to identification.
func (d *Driver) beginHandshake(cid ConnectionId, pending []wire.Package) ([]Transmission, State) {
	u := d.env.GenerateID()
	now := d.env.GetElapsedTime()

	if creds := d.settings.DefaultCredentials; creds != nil {
		pkg := wire.NewPackageWithCredentials(wire.Authenticate, u, nil, creds)
		return []Transmission{Send(pkg)}, Connected(cid, Confirming(pending, now, u, Authentication))
	}

	pkg := d.buildIdentify(u)
	return []Transmission{Send(pkg)}, Connected(cid, Confirming(pending, now, u, Identification))
}

func (d *Driver) buildIdentify(correlation uuid.UUID) wire.Package {
	name := d.settings.ConnectionName
	if name == "" {
		name = fmt.Sprintf("ES-%v", d.env.GenerateID())
	}
	payload := wire.EncodeIdentifyClientPayload(wire.IdentifyClientVersion, name)
	return wire.NewPackage(wire.IdentifyClient, correlation, payload)
}

// --- Connected ---

func (d *Driver) reactConnected(s connectedState, m Msg) ([]Transmission, State) {
	switch v := m.(type) {
	case packageArrivedMsg:
		if v.Cid != s.Cid {
			return []Transmission{Ignored(v.Package)}, s
		}

		if out, next, handled := d.serviceHeartbeat(s, v.Package); handled {
			return out, next
		}

		switch stage := s.Stage.(type) {
		case confirmingStage:
			return d.reactConfirming(s.Cid, stage, v.Package)
		case activeStage:
			return d.reactActive(s.Cid, stage, v.Package)
		}
		return nil, s

	case sendPackageMsg:
		if as, ok := s.Stage.(activeStage); ok {
			now := d.env.GetElapsedTime()
			as.Registry.Insert(v.Package.Correlation(), NewExchange(v.Package, now))
			return []Transmission{Send(v.Package)}, Connected(s.Cid, as)
		}
		// Not yet Active: spec.md §4.4 only specifies SendPackage
		// behavior for Init/Awaiting/Closed and Active; a submission
		// arriving mid-handshake has nowhere defined to go but to wait
		// like any other not-yet-connected submission would, so it is
		// queued onto the handshake's pending list.
		if cs, ok := s.Stage.(confirmingStage); ok {
			pending := append(append([]wire.Package{}, cs.Pending...), v.Package)
			cs.Pending = pending
			return nil, Connected(s.Cid, cs)
		}
		return nil, s

	case handshakeTimeoutMsg:
		cs, ok := s.Stage.(confirmingStage)
		if !ok || s.Cid != v.Cid || cs.Correlation != v.Correlation {
			return nil, s
		}

		out := make([]Transmission, 0, len(cs.Pending)+1)
		out = append(out, d.abort(cs.Correlation))
		for _, pkg := range cs.Pending {
			out = append(out, d.abort(pkg.Correlation()))
		}

		d.env.CloseConnection(s.Cid)
		d.env.Discover()
		return out, Awaiting(nil, Reconnecting())

	default:
		return nil, s
	}
}

// serviceHeartbeat implements spec.md §4.4's heartbeat preemption: it
// applies uniformly across Confirming and Active and never mutates
// state.
func (d *Driver) serviceHeartbeat(s connectedState, pkg wire.Package) ([]Transmission, State, bool) {
	switch pkg.Cmd() {
	case wire.HeartbeatRequest:
		return []Transmission{Send(wire.HeartbeatResponseFor(pkg))}, s, true
	case wire.HeartbeatResponse:
		return nil, s, true
	default:
		return nil, s, false
	}
}

func (d *Driver) reactConfirming(cid ConnectionId, stage confirmingStage, pkg wire.Package) ([]Transmission, State) {
	if pkg.Correlation() != stage.Correlation {
		return nil, Connected(cid, stage)
	}

	switch stage.Which {
	case Authentication:
		switch pkg.Cmd() {
		case wire.Authenticated, wire.NotAuthenticated:
			u := d.env.GenerateID()
			now := d.env.GetElapsedTime()
			id := d.buildIdentify(u)
			return []Transmission{Send(id)}, Connected(cid, Confirming(stage.Pending, now, u, Identification))
		default:
			return nil, Connected(cid, stage)
		}

	case Identification:
		if pkg.Cmd() != wire.ClientIdentified {
			return nil, Connected(cid, stage)
		}
		sends, reg := d.drain(stage.Pending)
		return sends, Connected(cid, Active(reg))

	default:
		return nil, Connected(cid, stage)
	}
}

// drain implements spec.md §4.4.1: register every pending package into
// a fresh registry and emit a Send for each, preserving submission
// order.
func (d *Driver) drain(pending []wire.Package) ([]Transmission, *Registry) {
	reg := NewRegistry()
	out := make([]Transmission, 0, len(pending))
	for _, pkg := range pending {
		now := d.env.GetElapsedTime()
		reg.Insert(pkg.Correlation(), NewExchange(pkg, now))
		out = append(out, Send(pkg))
	}
	return out, reg
}

func (d *Driver) reactActive(cid ConnectionId, stage activeStage, pkg wire.Package) ([]Transmission, State) {
	exc, ok := stage.Registry.RemoveAndGet(pkg.Correlation())
	if !ok {
		return []Transmission{Ignored(pkg)}, Connected(cid, stage)
	}

	switch pkg.Cmd() {
	case wire.BadRequest:
		return []Transmission{RecvErr(BadNews{pkg.Correlation(), NewServerError(string(pkg.Payload()))})}, Connected(cid, stage)

	case wire.NotAuthenticated:
		return []Transmission{RecvErr(BadNews{pkg.Correlation(), NewNotAuthenticatedError()})}, Connected(cid, stage)

	case wire.NotHandled:
		return d.reactNotHandled(cid, stage, exc, pkg)

	default:
		return []Transmission{RecvOk(pkg)}, Connected(cid, stage)
	}
}

func (d *Driver) reactNotHandled(cid ConnectionId, stage activeStage, exc Exchange, pkg wire.Package) ([]Transmission, State) {
	reason, node, malformed := decodeNotHandled(pkg)
	if !malformed && reason == wire.NotMaster {
		newCid := d.env.ForceReconnect(pkg.Correlation(), node)
		pending, aborted := survivors(exc, stage.Registry, d.settings.OperationRetry)
		return aborted, Awaiting(pending, ConnectionEstablishing(newCid))
	}

	// Other reasons (including malformed NotHandled payloads, treated
	// per SPEC_FULL.md §7 as the generic retry branch): bump the retry
	// counter or abort if the budget is exhausted.
	if d.settings.OperationRetry.MaxRetryReached(exc.RetryCount) {
		return []Transmission{d.abort(pkg.Correlation())}, Connected(cid, stage)
	}

	retried := exc.retried()
	stage.Registry.Insert(pkg.Correlation(), retried)
	return []Transmission{Send(retried.Request)}, Connected(cid, stage)
}

func decodeNotHandled(pkg wire.Package) (reason wire.Reason, node wire.NodeEndPoints, malformed bool) {
	payload := pkg.Payload()
	if len(payload) < 1 {
		return 0, wire.NodeEndPoints{}, true
	}

	reason = wire.Reason(payload[0])
	if reason != wire.NotMaster {
		return reason, wire.NodeEndPoints{}, false
	}

	n, err := wire.DecodeNodeEndPoints(payload[1:])
	if err != nil {
		return reason, wire.NodeEndPoints{}, true
	}

	return reason, n, false
}

// survivors implements §4.4.2: the triggering exchange's request leads
// the new pending list; every other still-outstanding exchange is
// either carried over (request re-queued, retry count reset on
// re-drain per the reference behavior) or aborted if its retry budget
// is already exhausted.
func survivors(trigger Exchange, reg *Registry, retry Retry) (pending []wire.Package, aborted []Transmission) {
	pending = append(pending, trigger.Request)

	for _, exc := range reg.Elems() {
		if retry.MaxRetryReached(exc.RetryCount) {
			aborted = append(aborted, RecvErr(BadNews{exc.Request.Correlation(), NewAbortedError()}))
			continue
		}
		pending = append(pending, exc.Request)
	}

	return pending, aborted
}

// --- Closed ---

func (d *Driver) reactClosed(m Msg) ([]Transmission, State) {
	if v, ok := m.(sendPackageMsg); ok {
		return []Transmission{RecvErr(BadNews{v.Package.Correlation(), NewAbortedError()})}, Closed()
	}
	return nil, Closed()
}
