package driver

import (
	"github.com/boltdb/bolt"
	uuid "github.com/satori/go.uuid"

	"github.com/Eventuria/eventstore/persistence"
	"github.com/Eventuria/eventstore/wire"
)

var pendingBucket = []byte("eventstore.driver.pending")

// PersistPending records pkg as sent-but-unanswered, so it can be
// recovered by Seed if the host process restarts before the exchange
// completes (SPEC_FULL.md §7). submit.Submitter calls it when a package
// is submitted, before handing it to the driver, and calls
// ForgetPending once its Recv arrives.
func PersistPending(store persistence.Store, pkg wire.Package) error {
	body, err := wire.EncodeBody(pkg)
	if err != nil {
		return err
	}

	return store.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(pendingBucket)
		if err != nil {
			return err
		}
		return bucket.Put(persistence.UUID(pkg.Correlation()).Raw(), body)
	})
}

// ForgetPending removes a package recorded by PersistPending once its
// exchange has completed (successfully or not).
func ForgetPending(store persistence.Store, correlation uuid.UUID) error {
	return store.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(pendingBucket)
		if bucket == nil {
			return nil
		}
		return bucket.Delete(persistence.UUID(correlation).Raw())
	})
}

// Seed reads back every package PersistPending recorded and never had
// forgotten, for folding into the pending list of a freshly constructed
// Awaiting state. The host process calls this once at startup before
// the first SystemInit; the reactor itself never touches the store
// directly, keeping react pure (SPEC_FULL.md §7).
func Seed(store persistence.Store) ([]wire.Package, error) {
	var out []wire.Package
	err := store.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(pendingBucket)
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(_ []byte, v []byte) error {
			pkg, err := wire.Decode(v)
			if err != nil {
				return err
			}
			out = append(out, pkg)
			return nil
		})
	})

	return out, err
}
