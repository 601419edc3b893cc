// Package drivertest supplies the deterministic, scripted driver.Env
// Design Note 9 of SPEC_FULL.md calls for: "tests inject a recorder
// implementation that stores invocations and returns scripted
// results." Grounded on the spirit of the teacher's in-memory
// connection environments (conn/mem.go) — generalized here into a
// proper recorder since the teacher's own version is left as stubs.
package drivertest

import (
	"sync"
	"time"

	uuid "github.com/satori/go.uuid"

	"github.com/Eventuria/eventstore/driver"
	"github.com/Eventuria/eventstore/wire"
)

// Call records one invocation of an Env method, for assertions in
// tests that care about call order (e.g. "connect must follow
// discover").
type Call struct {
	Method string
	Args   []interface{}
}

// FakeEnv is a driver.Env whose effects are entirely scripted: Connect
// and GenerateID return values from queues the test pre-loads, and
// GetElapsedTime is a controllable clock instead of wall time.
type FakeEnv struct {
	lock sync.Mutex

	calls []Call

	connectIDs []driver.ConnectionId
	genIDs     []uuid.UUID
	reconnects []driver.ConnectionId

	clock time.Duration

	discoverCount int
	closed        []driver.ConnectionId
}

func NewFakeEnv() *FakeEnv {
	return &FakeEnv{}
}

// QueueConnectionId arranges for the next N Connect calls to return
// these ids, in order. ForceReconnect draws from QueueReconnectId's
// queue instead.
func (f *FakeEnv) QueueConnectionId(ids ...driver.ConnectionId) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.connectIDs = append(f.connectIDs, ids...)
}

func (f *FakeEnv) QueueReconnectId(ids ...driver.ConnectionId) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.reconnects = append(f.reconnects, ids...)
}

// QueueID arranges for the next N GenerateID calls to return these
// values, in order.
func (f *FakeEnv) QueueID(ids ...uuid.UUID) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.genIDs = append(f.genIDs, ids...)
}

// SetClock pins GetElapsedTime's return value until changed again.
func (f *FakeEnv) SetClock(d time.Duration) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.clock = d
}

func (f *FakeEnv) Calls() []Call {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]Call{}, f.calls...)
}

func (f *FakeEnv) DiscoverCount() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.discoverCount
}

func (f *FakeEnv) ClosedConnections() []driver.ConnectionId {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]driver.ConnectionId{}, f.closed...)
}

func (f *FakeEnv) record(method string, args ...interface{}) {
	f.calls = append(f.calls, Call{method, args})
}

func (f *FakeEnv) Connect(ep wire.EndPoint) driver.ConnectionId {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.record("Connect", ep)

	if len(f.connectIDs) == 0 {
		return driver.ConnectionId(uuid.NewV4())
	}

	id := f.connectIDs[0]
	f.connectIDs = f.connectIDs[1:]
	return id
}

func (f *FakeEnv) CloseConnection(id driver.ConnectionId) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.record("CloseConnection", id)
	f.closed = append(f.closed, id)
}

func (f *FakeEnv) Discover() {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.record("Discover")
	f.discoverCount++
}

func (f *FakeEnv) GenerateID() uuid.UUID {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.record("GenerateID")

	if len(f.genIDs) == 0 {
		return uuid.NewV4()
	}

	id := f.genIDs[0]
	f.genIDs = f.genIDs[1:]
	return id
}

func (f *FakeEnv) GetElapsedTime() time.Duration {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.record("GetElapsedTime")
	return f.clock
}

func (f *FakeEnv) ForceReconnect(correlation uuid.UUID, node wire.NodeEndPoints) driver.ConnectionId {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.record("ForceReconnect", correlation, node)

	if len(f.reconnects) == 0 {
		return driver.ConnectionId(uuid.NewV4())
	}

	id := f.reconnects[0]
	f.reconnects = f.reconnects[1:]
	return id
}
