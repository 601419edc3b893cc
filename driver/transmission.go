package driver

import (
	"fmt"

	uuid "github.com/satori/go.uuid"

	"github.com/Eventuria/eventstore/wire"
)

// OperationErrorKind distinguishes the error taxonomy of spec.md §7.
type OperationErrorKind int

const (
	ServerError OperationErrorKind = iota
	NotAuthenticatedOp
	Aborted
)

func (k OperationErrorKind) String() string {
	switch k {
	case ServerError:
		return "ServerError"
	case NotAuthenticatedOp:
		return "NotAuthenticated"
	case Aborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

// OperationError is the error payload of a failed exchange.
type OperationError struct {
	Kind   OperationErrorKind
	Reason string
}

func (e OperationError) Error() string {
	if e.Reason == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Reason)
}

func NewServerError(reason string) OperationError {
	return OperationError{ServerError, reason}
}

func NewNotAuthenticatedError() OperationError {
	return OperationError{NotAuthenticatedOp, ""}
}

func NewAbortedError() OperationError {
	return OperationError{Aborted, ""}
}

// BadNews pairs a failed exchange's correlation with why it failed.
type BadNews struct {
	Correlation uuid.UUID
	Err         OperationError
}

// Transmission is the reactor's output alphabet (spec.md §4.4). Visit
// lets a consumer outside this package (the host process draining the
// reactor's output channel) dispatch on the concrete variant without
// this package needing to export the variants themselves — the same
// role common/context.go's Sub plays for Context, generalized to a sum
// type via the visitor shape instead of an accessor per field.
type Transmission interface {
	isTransmission()
	Visit(TransmissionVisitor)
}

// TransmissionVisitor receives exactly one call per Transmission passed
// to its Visit method.
type TransmissionVisitor interface {
	VisitSend(wire.Package)
	VisitIgnored(wire.Package)
	VisitRecvOk(wire.Package)
	VisitRecvErr(BadNews)
}

type sendTransmission struct {
	Package wire.Package
}

// Send asks the I/O layer to frame and write pkg to the socket.
func Send(pkg wire.Package) Transmission {
	return sendTransmission{pkg}
}

func (sendTransmission) isTransmission() {}

func (t sendTransmission) Visit(v TransmissionVisitor) { v.VisitSend(t.Package) }

type ignoredTransmission struct {
	Package wire.Package
}

// Ignored reports a received package that had no matching exchange or
// belonged to a stale connection. Purely informational.
func Ignored(pkg wire.Package) Transmission {
	return ignoredTransmission{pkg}
}

func (ignoredTransmission) isTransmission() {}

func (t ignoredTransmission) Visit(v TransmissionVisitor) { v.VisitIgnored(t.Package) }

type recvTransmission struct {
	Package wire.Package
	News    *BadNews
}

// RecvOk delivers a completed exchange's server response to the
// awaiting caller.
func RecvOk(pkg wire.Package) Transmission {
	return recvTransmission{Package: pkg}
}

// RecvErr delivers a completed exchange's failure to the awaiting
// caller.
func RecvErr(news BadNews) Transmission {
	return recvTransmission{News: &news}
}

func (recvTransmission) isTransmission() {}

func (t recvTransmission) Visit(v TransmissionVisitor) {
	if t.News != nil {
		v.VisitRecvErr(*t.News)
		return
	}
	v.VisitRecvOk(t.Package)
}

// IsOk reports whether this Recv transmission succeeded, and if so its
// package.
func (r recvTransmission) IsOk() (wire.Package, bool) {
	return r.Package, r.News == nil
}

// BadNewsOf extracts the BadNews from a Recv transmission known to have
// failed. Panics if called on a successful Recv; callers should check
// IsOk first, same as any sum-type accessor in this codebase.
func (r recvTransmission) BadNewsOf() BadNews {
	if r.News == nil {
		panic("driver: BadNewsOf called on a successful Recv")
	}
	return *r.News
}
