package wire

import (
	"bytes"

	"github.com/Eventuria/eventstore/utils"
)

// IdentifyClientVersion is the client version advertised in every
// IdentifyClient package the driver sends.
const IdentifyClientVersion = 1

// EncodeIdentifyClientPayload renders the version/connection-name pair
// carried by an IdentifyClient package.
func EncodeIdentifyClientPayload(version uint32, connectionName string) []byte {
	buf := &bytes.Buffer{}
	enc := utils.NewMessageEncoder(buf)
	enc.PutUint32(version)
	enc.PutString(connectionName)
	return buf.Bytes()
}

// DecodeIdentifyClientPayload is the server-side counterpart, used by
// tests and fakes that need to assert on what the driver sent.
func DecodeIdentifyClientPayload(payload []byte) (version uint32, connectionName string, err error) {
	dec := utils.NewMessageDecoder(bytes.NewBuffer(payload))
	version = dec.ReadUint32()
	connectionName = dec.ReadString()
	err = dec.Err()
	return
}
