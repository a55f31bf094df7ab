package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	ConfigBucket = []byte("config") // Credential record, guarded
	MetaBucket   = []byte("meta")   // Instance metadata, unguarded
)

// Meta keys
var (
	MetaInstanceID = []byte("instance_id")
)

var ErrClosed = errors.New("storage closed")

// Values is a snapshot of the config bucket: key to raw stored value.
type Values map[string][]byte

// Clone returns a deep copy of v.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, b := range v {
		out[k] = append([]byte(nil), b...)
	}
	return out
}

// Keys returns the keys of v in sorted order.
func (v Values) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Change describes one committed write to the config bucket.
type Change struct {
	Seq      uint64
	Keys     []string // keys written or deleted by this commit
	Snapshot Values   // full bucket contents after the commit
}

// Storage provides BBolt-based storage for hostlock
type Storage struct {
	db *bolt.DB

	// writeMu keeps commit order and publish order identical
	writeMu sync.Mutex

	mu     sync.Mutex
	subs   map[int]*Subscription
	nextID int
	seq    uint64
	closed bool
}

// Open opens or creates a hostlock database
func Open(path string) (*Storage, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{ConfigBucket, MetaBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Storage{db: db, subs: make(map[int]*Subscription)}, nil
}

// Close closes the database and ends every subscription
func (s *Storage) Close() error {
	s.mu.Lock()
	s.closed = true
	subs := s.subs
	s.subs = make(map[int]*Subscription)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.stop()
	}
	return s.db.Close()
}

// Path returns the database file path
func (s *Storage) Path() string {
	return s.db.Path()
}

// Snapshot returns the current contents of the config bucket
func (s *Storage) Snapshot(ctx context.Context) (Values, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var values Values
	err := s.db.View(func(tx *bolt.Tx) error {
		values = readBucket(tx.Bucket(ConfigBucket))
		return nil
	})
	return values, err
}

// Put writes every key of values in one transaction. A nil value deletes
// the key. Keys not mentioned are left untouched.
func (s *Storage) Put(ctx context.Context, values Values) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.commit(func(b *bolt.Bucket) ([]string, error) {
		for k, v := range values {
			if v == nil {
				if err := b.Delete([]byte(k)); err != nil {
					return nil, err
				}
				continue
			}
			if err := b.Put([]byte(k), v); err != nil {
				return nil, err
			}
		}
		return values.Keys(), nil
	})
}

// Replace makes the config bucket hold exactly values
func (s *Storage) Replace(ctx context.Context, values Values) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.commit(func(b *bolt.Bucket) ([]string, error) {
		var touched []string
		for k := range readBucket(b) {
			if _, keep := values[k]; keep {
				continue
			}
			if err := b.Delete([]byte(k)); err != nil {
				return nil, err
			}
			touched = append(touched, k)
		}
		for k, v := range values {
			if err := b.Put([]byte(k), v); err != nil {
				return nil, err
			}
			touched = append(touched, k)
		}
		sort.Strings(touched)
		return touched, nil
	})
}

// commit runs fn against the config bucket and publishes the result
func (s *Storage) commit(fn func(b *bolt.Bucket) ([]string, error)) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var (
		keys     []string
		snapshot Values
	)
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(ConfigBucket)
		var err error
		if keys, err = fn(b); err != nil {
			return err
		}
		snapshot = readBucket(b)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	s.publish(keys, snapshot)
	return nil
}

func (s *Storage) publish(keys []string, snapshot Values) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	for _, sub := range s.subs {
		sub.enqueue(Change{Seq: s.seq, Keys: keys, Snapshot: snapshot.Clone()})
	}
}

// readBucket copies every key/value of b; bbolt slices are only valid
// during the transaction
func readBucket(b *bolt.Bucket) Values {
	values := make(Values)
	if b == nil {
		return values
	}
	b.ForEach(func(k, v []byte) error {
		values[string(k)] = append([]byte(nil), v...)
		return nil
	})
	return values
}

// GetInstanceID retrieves the instance ID from the meta bucket
func (s *Storage) GetInstanceID() (string, error) {
	var id string
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(MetaBucket).Get(MetaInstanceID)
		if data == nil {
			return fmt.Errorf("instance_id not found")
		}
		id = string(data)
		return nil
	})
	return id, err
}

// GetOrCreateInstanceID retrieves existing instance ID or generates a new one
func (s *Storage) GetOrCreateInstanceID() (string, error) {
	id, err := s.GetInstanceID()
	if err == nil {
		return id, nil
	}

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate instance ID: %w", err)
	}
	id = hex.EncodeToString(b)

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(MetaBucket).Put(MetaInstanceID, []byte(id))
	})
	if err != nil {
		return "", err
	}

	return id, nil
}
