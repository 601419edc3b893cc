package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Eventuria/eventstore/wire"
)

func TestDiscoverer_NoSeeds(t *testing.T) {
	d := NewDiscoverer()

	_, err := d.Discover()
	assert.Equal(t, ErrNoSeeds, err)
}

func TestDiscoverer_RoundRobin(t *testing.T) {
	a := wire.NewEndPoint("a", 1113)
	b := wire.NewEndPoint("b", 1113)
	d := NewDiscoverer(a, b)

	first, err := d.Discover()
	assert.Nil(t, err)

	second, err := d.Discover()
	assert.Nil(t, err)
	assert.NotEqual(t, first, second)

	third, err := d.Discover()
	assert.Nil(t, err)
	assert.Equal(t, first, third)
}

func TestDiscoverer_Update(t *testing.T) {
	a := wire.NewEndPoint("a", 1113)
	b := wire.NewEndPoint("b", 1113)
	d := NewDiscoverer(a)

	ep, err := d.Discover()
	assert.Nil(t, err)
	assert.Equal(t, a, ep)

	d.Update([]wire.EndPoint{b})

	ep, err = d.Discover()
	assert.Nil(t, err)
	assert.Equal(t, b, ep)
}

func TestDiscoverer_QuarantinesRepeatedFailures(t *testing.T) {
	a := wire.NewEndPoint("a", 1113)
	b := wire.NewEndPoint("b", 1113)
	d := NewDiscoverer(a, b)

	for i := 0; i < quarantineThreshold; i++ {
		d.MarkFailed(a)
	}

	for i := 0; i < 10; i++ {
		ep, err := d.Discover()
		assert.Nil(t, err)
		assert.Equal(t, b, ep)
	}
}

func TestDiscoverer_MarkHealthyLiftsQuarantine(t *testing.T) {
	a := wire.NewEndPoint("a", 1113)
	d := NewDiscoverer(a)

	for i := 0; i < quarantineThreshold; i++ {
		d.MarkFailed(a)
	}

	d.MarkHealthy(a)

	ep, err := d.Discover()
	assert.Nil(t, err)
	assert.Equal(t, a, ep)
}

func TestDiscoverer_AllQuarantinedStillReturnsAnEndpoint(t *testing.T) {
	a := wire.NewEndPoint("a", 1113)
	d := NewDiscoverer(a)

	for i := 0; i < quarantineThreshold; i++ {
		d.MarkFailed(a)
	}

	ep, err := d.Discover()
	assert.Nil(t, err)
	assert.Equal(t, a, ep)
}
