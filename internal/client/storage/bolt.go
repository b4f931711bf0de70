package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var slotsBucket = []byte("slots")

// BoltStore keeps every slot as a key of the "slots" bucket of a bbolt file.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens (creating if needed) the bbolt database at path.
func OpenBolt(path string) (*BoltStore, error) {
	if path == "" {
		path = "storage.bolt"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}
	return &BoltStore{db: db}, nil
}

// Load reads every slot present in the bucket.
func (bs *BoltStore) Load() (*Snapshot, error) {
	raw := map[string]json.RawMessage{}
	err := bs.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(slotsBucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			raw[string(k)] = append(json.RawMessage(nil), v...)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load slots: %w", err)
	}
	return decodeSlots(raw)
}

// Save writes all slots in one transaction; absent slots are deleted.
func (bs *BoltStore) Save(s *Snapshot) error {
	raw, err := encodeSlots(s)
	if err != nil {
		return err
	}
	return bs.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(slotsBucket)
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		for _, slot := range Slots {
			v, ok := raw[slot]
			if !ok {
				if err := b.Delete([]byte(slot)); err != nil {
					return fmt.Errorf("delete %s: %w", slot, err)
				}
				continue
			}
			if err := b.Put([]byte(slot), v); err != nil {
				return fmt.Errorf("put %s: %w", slot, err)
			}
		}
		return nil
	})
}

// Close closes the database file.
func (bs *BoltStore) Close() error {
	return bs.db.Close()
}
