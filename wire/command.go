// Package wire defines the unit of traffic exchanged with an EventStore
// node: the framed Package, its command vocabulary, and the endpoint
// types carried in master-redirection payloads.
package wire

// Command identifies the kind of a Package. Data commands (writes,
// reads, subscriptions) pass through the driver opaquely; only the
// handshake/admin subset below is meaningful to it.
type Command uint8

const (
	HeartbeatRequest  Command = 0x01
	HeartbeatResponse Command = 0x02

	BadRequest       Command = 0xF0
	NotHandled       Command = 0xF1
	Authenticate     Command = 0xF2
	Authenticated    Command = 0xF3
	NotAuthenticated Command = 0xF4
	IdentifyClient   Command = 0xF5
	ClientIdentified Command = 0xF6
)

func (c Command) String() string {
	switch c {
	case HeartbeatRequest:
		return "HeartbeatRequest"
	case HeartbeatResponse:
		return "HeartbeatResponse"
	case BadRequest:
		return "BadRequest"
	case NotHandled:
		return "NotHandled"
	case Authenticate:
		return "Authenticate"
	case Authenticated:
		return "Authenticated"
	case NotAuthenticated:
		return "NotAuthenticated"
	case IdentifyClient:
		return "IdentifyClient"
	case ClientIdentified:
		return "ClientIdentified"
	default:
		return "Data"
	}
}

// Reason is the payload of a NotHandled package.
type Reason uint8

const (
	NotMaster Reason = iota
	NotReady
	TooBusy
	NotLeaderInfo
)

func (r Reason) String() string {
	switch r {
	case NotMaster:
		return "NotMaster"
	case NotReady:
		return "NotReady"
	case TooBusy:
		return "TooBusy"
	default:
		return "Unknown"
	}
}
