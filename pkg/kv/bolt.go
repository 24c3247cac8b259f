package kv

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	bolt "go.etcd.io/bbolt"
)

var bucketKV = []byte("kv")

// BoltGateway implements Gateway on top of a local BoltDB file. It stands
// in for a live KV backend in development and in integration tests: one
// bucket, keyed by the full slash-delimited path, with Recurse/recursive
// Delete implemented as cursor prefix scans.
type BoltGateway struct {
	db *bolt.DB
}

// NewBoltGateway opens (creating if necessary) a BoltDB file under dataDir.
func NewBoltGateway(dataDir string) (*BoltGateway, error) {
	dbPath := filepath.Join(dataDir, "registry.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("kv: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketKV)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kv: create bucket: %w", err)
	}

	return &BoltGateway{db: db}, nil
}

// Close closes the underlying database.
func (g *BoltGateway) Close() error {
	return g.db.Close()
}

// Get implements Gateway.
func (g *BoltGateway) Get(_ context.Context, key string) (string, error) {
	var value string
	var found bool
	err := g.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketKV)
		data := b.Get([]byte(key))
		if data == nil {
			return nil
		}
		found = true
		value = string(data)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("kv get %s: %w", key, err)
	}
	if !found {
		return "", ErrNotFound
	}
	return value, nil
}

// Set implements Gateway.
func (g *BoltGateway) Set(_ context.Context, key, value string) error {
	err := g.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketKV)
		return b.Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

// Delete implements Gateway.
func (g *BoltGateway) Delete(_ context.Context, key string, recursive bool) error {
	err := g.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketKV)
		if !recursive {
			return b.Delete([]byte(key))
		}

		prefix := []byte(key)
		var toDelete [][]byte
		c := b.Cursor()
		for k, _ := c.Seek(prefix); k != nil && strings.HasPrefix(string(k), key); k, _ = c.Next() {
			if !hasPrefixOrEquals(k, prefix) {
				continue
			}
			dup := make([]byte, len(k))
			copy(dup, k)
			toDelete = append(toDelete, dup)
		}
		for _, k := range toDelete {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("kv delete %s: %w", key, err)
	}
	return nil
}

// Recurse implements Gateway.
func (g *BoltGateway) Recurse(_ context.Context, prefix string) (map[string]string, error) {
	out := make(map[string]string)
	err := g.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketKV)
		c := b.Cursor()
		prefixBytes := []byte(prefix)
		for k, v := c.Seek(prefixBytes); k != nil && strings.HasPrefix(string(k), prefix); k, v = c.Next() {
			if !hasPrefixOrEquals(k, prefixBytes) {
				continue
			}
			out[string(k)] = string(v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("kv recurse %s: %w", prefix, err)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// hasPrefixOrEquals reports whether k equals prefix or starts with
// prefix + "/" — a child key, not merely a key sharing a string prefix
// (e.g. "nodes-2" must not match prefix "nodes").
func hasPrefixOrEquals(k, prefix []byte) bool {
	ks := string(k)
	ps := string(prefix)
	return ks == ps || strings.HasPrefix(ks, ps+"/")
}
