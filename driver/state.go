package driver

import (
	"time"

	uuid "github.com/satori/go.uuid"

	"github.com/Eventuria/eventstore/wire"
)

// State is the DriverState sum type of spec.md §3: Init, Awaiting,
// Connected, or Closed. It is a sealed interface — isState is
// unexported so no other package can manufacture a fifth variant —
// mirroring how the teacher keeps its small sum types closed (e.g.
// wire.NumMessage/SegmentMessage/ErrorMessage as the closed leaf set of
// a packet's payload in message/wire/packet.go).
type State interface {
	isState()
}

type initState struct{}

// Init is the state before any message has been processed.
func Init() State { return initState{} }

func (initState) isState() {}

type awaitingState struct {
	Pending    []wire.Package
	Connecting ConnectingStage
}

// Awaiting is the state with no live session yet: user submissions
// queue in Pending until a session is established.
func Awaiting(pending []wire.Package, connecting ConnectingStage) State {
	return awaitingState{pending, connecting}
}

func (awaitingState) isState() {}

type connectedState struct {
	Cid   ConnectionId
	Stage ConnectedStage
}

// Connected is the state with a bound TCP session.
func Connected(cid ConnectionId, stage ConnectedStage) State {
	return connectedState{cid, stage}
}

func (connectedState) isState() {}

type closedState struct{}

// Closed is the terminal state.
func Closed() State { return closedState{} }

func (closedState) isState() {}

// ConnectingStage is the sub-state of Awaiting: discovery hasn't
// started, is in flight, or a socket is opening.
type ConnectingStage interface {
	isConnectingStage()
}

type reconnectingStage struct{}

// Reconnecting means discovery has not yet been (re-)started.
func Reconnecting() ConnectingStage { return reconnectingStage{} }

func (reconnectingStage) isConnectingStage() {}

type endpointDiscoveryStage struct{}

// EndpointDiscovery means discovery is in flight.
func EndpointDiscovery() ConnectingStage { return endpointDiscoveryStage{} }

func (endpointDiscoveryStage) isConnectingStage() {}

type connectionEstablishingStage struct {
	Cid ConnectionId
}

// ConnectionEstablishing means the TCP socket named by Cid is opening.
func ConnectionEstablishing(cid ConnectionId) ConnectingStage {
	return connectionEstablishingStage{cid}
}

func (connectionEstablishingStage) isConnectingStage() {}

// Which identifies the handshake step a Confirming stage is waiting on.
type Which int

const (
	Authentication Which = iota
	Identification
)

func (w Which) String() string {
	if w == Authentication {
		return "Authentication"
	}
	return "Identification"
}

// ConnectedStage is the sub-state of Connected: either mid-handshake
// (Confirming) or steady-state (Active).
type ConnectedStage interface {
	isConnectedStage()
}

type confirmingStage struct {
	Pending     []wire.Package
	Started     time.Duration
	Correlation uuid.UUID
	Which       Which
}

// Confirming is the handshake stage: pending holds the user submissions
// queued before the session existed, correlation is the outstanding
// handshake package's id, and which names the current handshake step.
func Confirming(pending []wire.Package, started time.Duration, correlation uuid.UUID, which Which) ConnectedStage {
	return confirmingStage{pending, started, correlation, which}
}

func (confirmingStage) isConnectedStage() {}

type activeStage struct {
	Registry *Registry
}

// Active is the steady-state stage: user packages register freely and
// exchange with the server.
func Active(reg *Registry) ConnectedStage {
	return activeStage{reg}
}

func (activeStage) isConnectedStage() {}
