package submit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	uuid "github.com/satori/go.uuid"

	"github.com/Eventuria/eventstore/common"
	"github.com/Eventuria/eventstore/driver"
	"github.com/Eventuria/eventstore/persistence"
	"github.com/Eventuria/eventstore/wire"
)

func newHarness(t *testing.T) (common.Context, chan driver.Msg, chan driver.Transmission, persistence.Store) {
	ctx := common.NewEmptyContext()
	store, err := persistence.OpenTransient(ctx)
	assert.Nil(t, err)

	return ctx, make(chan driver.Msg, 8), make(chan driver.Transmission, 8), store
}

func TestSubmitter_SuccessfulExchange(t *testing.T) {
	ctx, in, out, store := newHarness(t)
	defer ctx.Close()

	s := NewSubmitter(ctx, in, out, store)

	pkg := wire.NewPackage(wire.HeartbeatRequest, uuid.NewV4(), nil)

	go func() {
		<-in
		out <- driver.RecvOk(wire.HeartbeatResponseFor(pkg))
	}()

	resp, err := s.Submit(pkg)
	assert.Nil(t, err)
	assert.Equal(t, pkg.Correlation(), resp.Correlation())
}

func TestSubmitter_FailedExchange(t *testing.T) {
	ctx, in, out, store := newHarness(t)
	defer ctx.Close()

	s := NewSubmitter(ctx, in, out, store)

	pkg := wire.NewPackage(wire.HeartbeatRequest, uuid.NewV4(), nil)

	go func() {
		<-in
		out <- driver.RecvErr(driver.BadNews{
			Correlation: pkg.Correlation(),
			Err:         driver.NewAbortedError(),
		})
	}()

	_, err := s.Submit(pkg)
	assert.NotNil(t, err)
	assert.Equal(t, driver.Aborted, err.(driver.OperationError).Kind)
}

func TestSubmitter_ClosedBeforeSend(t *testing.T) {
	ctx, in, out, store := newHarness(t)

	s := NewSubmitter(ctx, in, out, store)
	ctx.Close()

	pkg := wire.NewPackage(wire.HeartbeatRequest, uuid.NewV4(), nil)

	_, err := s.Submit(pkg)
	assert.Equal(t, common.ClosedError, err)
}

func TestSubmitter_IgnoredAndSendTransmissionsDoNotBlockDrain(t *testing.T) {
	ctx, in, out, store := newHarness(t)
	defer ctx.Close()

	s := NewSubmitter(ctx, in, out, store)

	pkg := wire.NewPackage(wire.HeartbeatRequest, uuid.NewV4(), nil)

	out <- driver.Send(wire.NewPackage(wire.HeartbeatRequest, uuid.NewV4(), nil))
	out <- driver.Ignored(wire.NewPackage(wire.HeartbeatRequest, uuid.NewV4(), nil))

	go func() {
		<-in
		out <- driver.RecvOk(wire.HeartbeatResponseFor(pkg))
	}()

	resp, err := s.Submit(pkg)
	assert.Nil(t, err)
	assert.Equal(t, pkg.Correlation(), resp.Correlation())
}

func TestSubmitter_CloseWaitsForInFlight(t *testing.T) {
	ctx, in, out, store := newHarness(t)
	defer ctx.Close()

	s := NewSubmitter(ctx, in, out, store)

	pkg := wire.NewPackage(wire.HeartbeatRequest, uuid.NewV4(), nil)

	done := make(chan struct{})
	go func() {
		_, _ = s.Submit(pkg)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	go func() {
		<-in
		out <- driver.RecvOk(wire.HeartbeatResponseFor(pkg))
	}()

	<-done
	assert.Nil(t, s.Close())
}
