package driver

import (
	uuid "github.com/satori/go.uuid"

	"github.com/Eventuria/eventstore/wire"
)

// Msg is the reactor's input alphabet (spec.md §4.4).
type Msg interface {
	isMsg()
}

type systemInitMsg struct{}

// SystemInit is the boot message that kicks off discovery.
func SystemInit() Msg { return systemInitMsg{} }

func (systemInitMsg) isMsg() {}

type establishConnectionMsg struct {
	EndPoint wire.EndPoint
}

// EstablishConnection carries a discovery result: the endpoint to
// connect to next.
func EstablishConnection(ep wire.EndPoint) Msg {
	return establishConnectionMsg{ep}
}

func (establishConnectionMsg) isMsg() {}

type connectionEstablishedMsg struct {
	Cid ConnectionId
}

// ConnectionEstablished signals that the TCP socket named by Cid is up.
func ConnectionEstablished(cid ConnectionId) Msg {
	return connectionEstablishedMsg{cid}
}

func (connectionEstablishedMsg) isMsg() {}

type packageArrivedMsg struct {
	Cid     ConnectionId
	Package wire.Package
}

// PackageArrived carries one package read off the socket for
// connection Cid.
func PackageArrived(cid ConnectionId, pkg wire.Package) Msg {
	return packageArrivedMsg{cid, pkg}
}

func (packageArrivedMsg) isMsg() {}

type sendPackageMsg struct {
	Package wire.Package
}

// SendPackage is a user submission.
func SendPackage(pkg wire.Package) Msg {
	return sendPackageMsg{pkg}
}

func (sendPackageMsg) isMsg() {}

type handshakeTimeoutMsg struct {
	Cid         ConnectionId
	Correlation uuid.UUID
}

// HandshakeTimeout is the SPEC_FULL.md §4.5 addition: an outer watchdog
// injects this when a Confirming stage has sat unanswered too long. The
// reactor itself never generates or times this out.
func HandshakeTimeout(cid ConnectionId, correlation uuid.UUID) Msg {
	return handshakeTimeoutMsg{cid, correlation}
}

func (handshakeTimeoutMsg) isMsg() {}
