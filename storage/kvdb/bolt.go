package kvdb

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

// recordsKey is the single key per bucket holding the collection document.
var recordsKey = []byte("records")

type boltDB struct {
	db *bbolt.DB
}

var _ DB = (*boltDB)(nil)

// Open opens (or creates) the bolt data file and ensures a bucket exists
// per known collection.
func Open(path string) (DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "creating data directory")
	}

	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, errors.Wrap(err, "opening bolt file")
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range Collections {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating collection buckets")
	}
	return &boltDB{db: db}, nil
}

func (b *boltDB) Get(_ context.Context, collection string) ([]byte, error) {
	var data []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket([]byte(collection))
		if bkt == nil {
			return nil // unset collection reads as empty
		}
		if v := bkt.Get(recordsKey); v != nil {
			data = make([]byte, len(v))
			copy(data, v) // value is only valid inside the tx
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (b *boltDB) Put(_ context.Context, collection string, data []byte) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bkt, err := tx.CreateBucketIfNotExists([]byte(collection))
		if err != nil {
			return err
		}
		return bkt.Put(recordsKey, data)
	})
}

func (b *boltDB) Close() error { return b.db.Close() }
