package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	corr := NewUUID()
	p := NewPackageWithCredentials(IdentifyClient, corr, []byte("payload"), NewCredentials("user", "pass"))

	framed, err := Encode(p)
	assert.Nil(t, err)

	body, consumed, ok := ReadFrame(framed)
	assert.True(t, ok)
	assert.Equal(t, len(framed), consumed)

	decoded, err := Decode(body)
	assert.Nil(t, err)
	assert.Equal(t, IdentifyClient, decoded.Cmd())
	assert.Equal(t, corr, decoded.Correlation())
	assert.Equal(t, []byte("payload"), decoded.Payload())
	assert.NotNil(t, decoded.Credentials())
	assert.Equal(t, "user", decoded.Credentials().Username)
	assert.Equal(t, "pass", decoded.Credentials().Password)
}

func TestEncodeDecode_NoCredentials(t *testing.T) {
	corr := NewUUID()
	p := NewPackage(HeartbeatRequest, corr, nil)

	framed, err := Encode(p)
	assert.Nil(t, err)

	body, _, ok := ReadFrame(framed)
	assert.True(t, ok)

	decoded, err := Decode(body)
	assert.Nil(t, err)
	assert.Equal(t, HeartbeatRequest, decoded.Cmd())
	assert.Nil(t, decoded.Credentials())
}

func TestReadFrame_Incomplete(t *testing.T) {
	_, _, ok := ReadFrame([]byte{1, 2, 3})
	assert.False(t, ok)
}

func TestNodeEndPoints_RoundTrip(t *testing.T) {
	secure := NewEndPoint("10.0.0.2", 2113)
	n := NewNodeEndPoints(NewEndPoint("10.0.0.2", 1113), &secure)

	payload := EncodeNodeEndPoints(n)
	decoded, err := DecodeNodeEndPoints(payload)
	assert.Nil(t, err)
	assert.Equal(t, n.TCP, decoded.TCP)
	assert.Equal(t, *n.Secure, *decoded.Secure)
}

func TestNodeEndPoints_NoSecure(t *testing.T) {
	n := NewNodeEndPoints(NewEndPoint("10.0.0.2", 1113), nil)

	payload := EncodeNodeEndPoints(n)
	decoded, err := DecodeNodeEndPoints(payload)
	assert.Nil(t, err)
	assert.Nil(t, decoded.Secure)
}
