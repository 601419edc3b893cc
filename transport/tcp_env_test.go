package transport

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	uuid "github.com/satori/go.uuid"

	"github.com/Eventuria/eventstore/common"
	"github.com/Eventuria/eventstore/driver"
	"github.com/Eventuria/eventstore/wire"
)

type stubDiscoverer struct {
	ep        wire.EndPoint
	err       error
	healthy   []wire.EndPoint
	unhealthy []wire.EndPoint
}

func (s *stubDiscoverer) Discover() (wire.EndPoint, error) {
	return s.ep, s.err
}

func (s *stubDiscoverer) MarkFailed(ep wire.EndPoint) {
	s.unhealthy = append(s.unhealthy, ep)
}

func (s *stubDiscoverer) MarkHealthy(ep wire.EndPoint) {
	s.healthy = append(s.healthy, ep)
}

func listen(t *testing.T) net.Listener {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	assert.Nil(t, err)
	return l
}

func endpointOf(t *testing.T, l net.Listener) wire.EndPoint {
	addr := l.Addr().(*net.TCPAddr)
	return wire.NewEndPoint("127.0.0.1", addr.Port)
}

func TestTCPEnv_ConnectReportsHealthAndEstablishesConnection(t *testing.T) {
	ln := listen(t)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	ctx := common.NewEmptyContext()
	defer ctx.Close()

	ep := endpointOf(t, ln)
	disco := &stubDiscoverer{ep: ep}

	in := make(chan driver.Msg, 4)
	env := NewTCPEnv(ctx, in, disco)

	cid := env.Connect(ep)
	assert.NotEqual(t, driver.NilConnectionId, cid)

	select {
	case <-in:
	case <-time.After(2 * time.Second):
		t.Fatal("expected ConnectionEstablished on in channel")
	}

	select {
	case <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("server never accepted the connection")
	}

	assert.Equal(t, []wire.EndPoint{ep}, disco.healthy)
	assert.Empty(t, disco.unhealthy)
}

func TestTCPEnv_ConnectMarksFailureWhenServerUnreachable(t *testing.T) {
	ln := listen(t)
	ep := endpointOf(t, ln)
	ln.Close()

	ctx := common.NewEmptyContext()
	defer ctx.Close()

	disco := &stubDiscoverer{ep: ep}
	in := make(chan driver.Msg, 4)
	env := NewTCPEnv(ctx, in, disco)

	env.Connect(ep)

	assert.Empty(t, disco.healthy)
	assert.Equal(t, []wire.EndPoint{ep}, disco.unhealthy)
}

func TestTCPEnv_DrainWritesSendTransmissionsToTheSocket(t *testing.T) {
	ln := listen(t)
	defer ln.Close()

	serverRead := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		buf := make([]byte, 4096)
		n, _ := conn.Read(buf)
		serverRead <- buf[:n]
	}()

	ctx := common.NewEmptyContext()
	defer ctx.Close()

	ep := endpointOf(t, ln)
	disco := &stubDiscoverer{ep: ep}
	in := make(chan driver.Msg, 4)
	env := NewTCPEnv(ctx, in, disco)

	env.Connect(ep)
	<-in // ConnectionEstablished

	out := make(chan driver.Transmission, 1)
	go env.Drain(out)

	pkg := wire.NewPackage(wire.HeartbeatRequest, uuid.NewV4(), nil)
	out <- driver.Send(pkg)

	select {
	case raw := <-serverRead:
		decoded, _, ok := wire.ReadFrame(raw)
		assert.True(t, ok)
		got, err := wire.Decode(decoded)
		assert.Nil(t, err)
		assert.Equal(t, pkg.Correlation(), got.Correlation())
	case <-time.After(2 * time.Second):
		t.Fatal("server never received the framed package")
	}
}
