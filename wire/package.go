package wire

import (
	uuid "github.com/satori/go.uuid"
)

// Credentials is the optional per-request (username, password) pair
// attached to a Package when the server requires per-request auth.
type Credentials struct {
	Username string
	Password string
}

func NewCredentials(username, password string) *Credentials {
	return &Credentials{username, password}
}

// Package is the unit of wire traffic: a command tag, the correlation
// id that ties a request to its response, an opaque payload, and
// optional credentials.
type Package interface {
	Cmd() Command
	Correlation() uuid.UUID
	Payload() []byte
	Credentials() *Credentials

	// Update returns a builder seeded with this package's fields, for
	// constructing a related package (e.g. a response) without
	// mutating the original.
	Update() PackageBuilder
}

type PackageBuilder interface {
	SetCmd(Command) PackageBuilder
	SetCorrelation(uuid.UUID) PackageBuilder
	SetPayload([]byte) PackageBuilder
	SetCredentials(*Credentials) PackageBuilder
	Build() Package
}

func NewPackage(cmd Command, correlation uuid.UUID, payload []byte) Package {
	return &pkg{cmd, correlation, payload, nil}
}

func NewPackageWithCredentials(cmd Command, correlation uuid.UUID, payload []byte, creds *Credentials) Package {
	return &pkg{cmd, correlation, payload, creds}
}

func BuildPackage() PackageBuilder {
	return &packageBuilder{&pkg{}}
}

type pkg struct {
	cmd         Command
	correlation uuid.UUID
	payload     []byte
	credentials *Credentials
}

func (p *pkg) Cmd() Command                { return p.cmd }
func (p *pkg) Correlation() uuid.UUID       { return p.correlation }
func (p *pkg) Payload() []byte              { return p.payload }
func (p *pkg) Credentials() *Credentials    { return p.credentials }

func (p *pkg) Update() PackageBuilder {
	cop := *p
	return &packageBuilder{&cop}
}

type packageBuilder struct {
	pkg *pkg
}

func (b *packageBuilder) SetCmd(c Command) PackageBuilder {
	b.pkg.cmd = c
	return b
}

func (b *packageBuilder) SetCorrelation(u uuid.UUID) PackageBuilder {
	b.pkg.correlation = u
	return b
}

func (b *packageBuilder) SetPayload(p []byte) PackageBuilder {
	b.pkg.payload = p
	return b
}

func (b *packageBuilder) SetCredentials(c *Credentials) PackageBuilder {
	b.pkg.credentials = c
	return b
}

func (b *packageBuilder) Build() Package {
	cop := *b.pkg
	return &cop
}

// HeartbeatResponseFor builds the HeartbeatResponse that answers a
// HeartbeatRequest, preserving its correlation.
func HeartbeatResponseFor(req Package) Package {
	return NewPackage(HeartbeatResponse, req.Correlation(), nil)
}
