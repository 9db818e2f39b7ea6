package storage

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/rl1809/inheritance/internal/core/domain"
	"github.com/rl1809/inheritance/internal/port"
)

var (
	ledgerBucket = []byte("ledgers")
	eventBucket  = []byte("events")
)

// BoltAdapter keeps ledgers in a single bbolt file. Events of a ledger live in
// a nested bucket keyed by big-endian sequence numbers.
type BoltAdapter struct {
	db *bbolt.DB
}

// NewBoltAdapter opens (creating if needed) the database at path.
func NewBoltAdapter(path string) (*BoltAdapter, error) {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, fmt.Errorf("could not create dir for BoltDB: %w", err)
	}
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{ledgerBucket, eventBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("could not create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltAdapter{db: db}, nil
}

func (b *BoltAdapter) Close() error {
	return b.db.Close()
}

func (b *BoltAdapter) Create(ctx context.Context, l domain.Ledger, ev domain.Event) error {
	data, err := encodeLedger(l)
	if err != nil {
		return err
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		ledgers := tx.Bucket(ledgerBucket)
		if ledgers.Get([]byte(l.ID)) != nil {
			return fmt.Errorf("ledger %s already exists", l.ID)
		}
		if err := ledgers.Put([]byte(l.ID), data); err != nil {
			return fmt.Errorf("put ledger: %w", err)
		}
		return putEvent(tx, ev)
	})
}

func (b *BoltAdapter) Get(ctx context.Context, id string) (l *domain.Ledger, err error) {
	err = b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(ledgerBucket).Get([]byte(id))
		if data == nil {
			return nil
		}
		l, err = decodeLedger(data)
		return err
	})
	return l, err
}

func (b *BoltAdapter) Update(ctx context.Context, l domain.Ledger, ev domain.Event) error {
	data, err := encodeLedger(l)
	if err != nil {
		return err
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		ledgers := tx.Bucket(ledgerBucket)
		cur := ledgers.Get([]byte(l.ID))
		if cur == nil {
			return port.ErrOptimisticLock
		}
		stored, err := decodeLedger(cur)
		if err != nil {
			return err
		}
		if stored.Version != l.Version-1 {
			return port.ErrOptimisticLock
		}
		if err := ledgers.Put([]byte(l.ID), data); err != nil {
			return fmt.Errorf("put ledger: %w", err)
		}
		return putEvent(tx, ev)
	})
}

func (b *BoltAdapter) ListEvents(ctx context.Context, id string) ([]domain.Event, error) {
	var events []domain.Event
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(eventBucket).Bucket([]byte(id))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(_, v []byte) error {
			ev, err := decodeEvent(v)
			if err != nil {
				return err
			}
			events = append(events, ev)
			return nil
		})
	})
	return events, err
}

func putEvent(tx *bbolt.Tx, ev domain.Event) error {
	bucket, err := tx.Bucket(eventBucket).CreateBucketIfNotExists([]byte(ev.LedgerID))
	if err != nil {
		return fmt.Errorf("create event bucket: %w", err)
	}
	data, err := encodeEvent(ev)
	if err != nil {
		return err
	}
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(ev.Seq))
	if err := bucket.Put(key, data); err != nil {
		return fmt.Errorf("put event: %w", err)
	}
	return nil
}
