// Package persistence gives the driver a place to remember packages that
// were submitted by a caller but never acknowledged by the server before
// the process went away. It is not part of the protocol state machine;
// it is a durability layer the driver's host process may consult when
// re-seeding a fresh Awaiting state after a restart (see the driver
// package's Seed function).
package persistence

import (
	"io"
	"path"
	"time"

	"github.com/boltdb/bolt"
	uuid "github.com/satori/go.uuid"
	"github.com/spf13/afero"

	"github.com/Eventuria/eventstore/common"
)

const (
	StoreLocationKey     = "eventstore.driver.persistence.path"
	StoreLocationDefault = "/var/eventstore/driver/pending.db"
)

// A Store is a shared handle onto a bolt database used to durably record
// packages that are in flight but not yet answered.
type Store interface {
	io.Closer

	Path() string
	Update(func(*bolt.Tx) error) error
	View(func(*bolt.Tx) error) error
}

type store struct {
	path string
	db   *bolt.DB
}

// OpenRandom opens a store at a fresh temporary location. Useful in tests
// and for drivers that do not need pending packages to survive a restart
// of the host process itself, only a reconnect.
func OpenRandom(ctx common.Context) (Store, error) {
	dir := path.Join(afero.GetTempDir(afero.NewOsFs(), "eventstore"), uuid.NewV4().String())
	return Open(ctx, path.Join(dir, "pending.db"))
}

// OpenConfigured opens the store at the location named by the context's
// configuration, falling back to StoreLocationDefault.
func OpenConfigured(ctx common.Context) (Store, error) {
	return Open(ctx, ctx.Config().OptionalString(StoreLocationKey, StoreLocationDefault))
}

// OpenTransient opens a random store that is deleted when the context
// closes. Intended for tests that want durability semantics without
// leaving files behind.
func OpenTransient(ctx common.Context) (Store, error) {
	s, err := OpenRandom(ctx)
	if err != nil {
		return nil, err
	}

	loc := s.Path()
	ctx.Control().OnClose(func(error) {
		ctx.Logger().Debug("Deleting transient store [%v]", loc)
		afero.NewOsFs().RemoveAll(loc)
	})

	return s, nil
}

// Open opens (creating if necessary) the bolt database at loc and binds
// its lifecycle to ctx: the database is closed when ctx closes.
func Open(ctx common.Context, loc string) (Store, error) {
	if err := afero.NewOsFs().MkdirAll(path.Dir(loc), 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(loc, 0666, &bolt.Options{Timeout: 10 * time.Second})
	if err != nil {
		return nil, err
	}

	s := &store{loc, db}
	ctx.Control().OnClose(func(error) {
		ctx.Logger().Debug("Closing persistence store [%v]", loc)
		s.Close()
	})

	return s, nil
}

func (s *store) Path() string {
	return s.path
}

func (s *store) Close() error {
	return s.db.Close()
}

func (s *store) Update(fn func(*bolt.Tx) error) error {
	return s.db.Update(fn)
}

func (s *store) View(fn func(*bolt.Tx) error) error {
	return s.db.View(fn)
}
