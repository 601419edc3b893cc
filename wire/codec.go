package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"

	uuid "github.com/satori/go.uuid"

	"github.com/Eventuria/eventstore/utils"
)

// ProtocolError marks a decode failure at the framing layer: a Package
// whose bytes cannot be parsed into a valid command/correlation/payload
// triple. It is distinct from a BadRequest response, which is a valid
// package the server used to reject an earlier one.
type ProtocolError struct {
	code uint64
	msg  string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("WIRE:%v:%v", e.code, e.msg)
}

func NewProtocolErrorFamily(code uint64) func(msg string) *ProtocolError {
	return func(msg string) *ProtocolError {
		return &ProtocolError{code, msg}
	}
}

const (
	decodingErrorCode = 1
)

var NewDecodingError = NewProtocolErrorFamily(decodingErrorCode)

// credentialsFlag is bit 0 of a Package's flags byte (SPEC_FULL.md §6):
// set when a (username, password) pair follows the correlation id.
var credentialsFlag = utils.SingleValueMask(0x01)

// Encode renders a Package to the wire format documented in
// SPEC_FULL.md §6:
//
//	[ length : u32 ][ cmd : u8 ][ flags : u8 ][ correlation : 16 bytes ]
//	[ if flags&1: userLen/user, passLen/pass ][ payload ]
//
// The returned slice is length-prefixed and ready to write to a socket.
func Encode(p Package) ([]byte, error) {
	body, err := EncodeBody(p)
	if err != nil {
		return nil, err
	}

	framed := make([]byte, 4+len(body))
	binary.LittleEndian.PutUint32(framed[:4], uint32(len(body)))
	copy(framed[4:], body)
	return framed, nil
}

// EncodeBody renders a Package without the outer length prefix: the
// form Decode expects, and the form persistence.Store records packages
// in (SPEC_FULL.md §7 — no socket framing is needed to survive a
// restart, only the command/correlation/payload triple).
func EncodeBody(p Package) ([]byte, error) {
	body := &bytes.Buffer{}
	enc := utils.NewMessageEncoder(body)

	enc.PutUint8(uint8(p.Cmd()))

	var flags utils.BitMask
	if p.Credentials() != nil {
		flags = flags | credentialsFlag
	}
	enc.PutUint8(uint8(flags))
	enc.PutUUID(p.Correlation())

	if creds := p.Credentials(); creds != nil {
		enc.PutString(creds.Username)
		enc.PutString(creds.Password)
	}

	if err := enc.Err(); err != nil {
		return nil, err
	}

	body.Write(p.Payload())
	return body.Bytes(), nil
}

// ReadFrame extracts the body of one length-prefixed frame from buf,
// returning the body and the number of bytes consumed, or ok=false if
// buf does not yet hold a complete frame.
func ReadFrame(buf []byte) (body []byte, consumed int, ok bool) {
	if len(buf) < 4 {
		return nil, 0, false
	}

	length := binary.LittleEndian.Uint32(buf[:4])
	if uint32(len(buf)-4) < length {
		return nil, 0, false
	}

	return buf[4 : 4+length], int(4 + length), true
}

// Decode parses the body of a Package frame (length prefix already
// stripped by the transport's reader). Malformed input yields a
// ProtocolError. The transport's reader logs and drops a frame that
// fails to decode; it never reaches the driver and is never fatal.
func Decode(body []byte) (Package, error) {
	buf := bytes.NewBuffer(body)
	dec := utils.NewMessageDecoder(buf)

	cmd := Command(dec.ReadUint8())
	flags := utils.BitMask(dec.ReadUint8())
	correlation := dec.ReadUUID()

	var creds *Credentials
	if flags.Matches(credentialsFlag) {
		user := dec.ReadString()
		pass := dec.ReadString()
		creds = NewCredentials(user, pass)
	}

	if err := dec.Err(); err != nil {
		return nil, NewDecodingError(err.Error())
	}

	payload := append([]byte{}, buf.Bytes()...)
	return NewPackageWithCredentials(cmd, correlation, payload, creds), nil
}

// DecodeNodeEndPoints parses the NodeEndPoints payload carried by a
// NotHandled{reason: NotMaster} package.
func DecodeNodeEndPoints(payload []byte) (NodeEndPoints, error) {
	buf := bytes.NewBuffer(payload)
	dec := utils.NewMessageDecoder(buf)

	host := dec.ReadString()
	port := dec.ReadUint32()
	hasSecure := dec.ReadUint8()

	var secure *EndPoint
	if hasSecure != 0 {
		sHost := dec.ReadString()
		sPort := dec.ReadUint32()
		ep := NewEndPoint(sHost, int(sPort))
		secure = &ep
	}

	if err := dec.Err(); err != nil {
		return NodeEndPoints{}, NewDecodingError(err.Error())
	}

	return NewNodeEndPoints(NewEndPoint(host, int(port)), secure), nil
}

// EncodeNotHandledPayload builds the payload of a NotHandled package:
// a one-byte Reason, followed by an encoded NodeEndPoints when reason
// is NotMaster.
func EncodeNotHandledPayload(reason Reason, node *NodeEndPoints) []byte {
	out := []byte{byte(reason)}
	if reason == NotMaster && node != nil {
		out = append(out, EncodeNodeEndPoints(*node)...)
	}
	return out
}

// EncodeNodeEndPoints is the server-side counterpart, used by
// EncodeNotHandledPayload and by tests to build realistic NotHandled
// payloads.
func EncodeNodeEndPoints(n NodeEndPoints) []byte {
	buf := &bytes.Buffer{}
	enc := utils.NewMessageEncoder(buf)
	enc.PutString(n.TCP.Host)
	enc.PutUint32(uint32(n.TCP.Port))
	if n.Secure != nil {
		enc.PutUint8(1)
		enc.PutString(n.Secure.Host)
		enc.PutUint32(uint32(n.Secure.Port))
	} else {
		enc.PutUint8(0)
	}
	return buf.Bytes()
}

// NewUUID is the shared correlation-id constructor: a thin seam around
// satori/go.uuid so callers don't import the uuid package directly for
// this one purpose.
func NewUUID() uuid.UUID {
	return uuid.NewV4()
}
