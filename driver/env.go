package driver

import (
	"time"

	uuid "github.com/satori/go.uuid"

	"github.com/Eventuria/eventstore/wire"
)

// ConnectionId is the opaque handle C2 mints when a TCP connection is
// established. It is equality-comparable and refreshes on every
// reconnect; packages bearing a stale ConnectionId are ignored rather
// than mutating state (spec.md §3's ConnectionId invariant).
type ConnectionId uuid.UUID

func (c ConnectionId) String() string {
	return uuid.UUID(c).String()
}

var NilConnectionId = ConnectionId(uuid.Nil)

// Env is the driver's effect interface (C2): the abstract capabilities
// the reactor calls out to. Every method is assumed synchronous and
// infallible from the reactor's point of view; transport errors surface
// later as fresh Msg values on the input channel, never as a returned
// error here. transport.TCPEnv is the production implementation;
// drivertest.FakeEnv is the deterministic, scripted test double Design
// Note 9 calls for.
type Env interface {
	// Connect opens a TCP session to ep and returns its ConnectionId.
	Connect(ep wire.EndPoint) ConnectionId

	// CloseConnection tears down the session named by id. Must be
	// called exactly once per ConnectionId, per spec.md §5.
	CloseConnection(id ConnectionId)

	// Discover kicks off asynchronous endpoint discovery; its result
	// arrives later as an EstablishConnection Msg.
	Discover()

	// GenerateID mints a fresh correlation id.
	GenerateID() uuid.UUID

	// GetElapsedTime reports monotonic time since the driver started.
	GetElapsedTime() time.Duration

	// ForceReconnect closes the current socket and opens a new one to
	// the node named by the master-redirection payload, returning the
	// new ConnectionId. correlation identifies the exchange that
	// triggered the redirection, for logging/metrics correlation only.
	ForceReconnect(correlation uuid.UUID, node wire.NodeEndPoints) ConnectionId
}
