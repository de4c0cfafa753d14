package assets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketResolved = []byte("resolved")

// Resolved is the cached outcome of resolving one item's manifest.
type Resolved struct {
	SourceID   string    `json:"source_id"`
	URL        string    `json:"url"`
	Tier       Tier      `json:"tier"`
	Candidates int       `json:"candidates"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// Available reports whether the manifest produced a displayable image.
func (r Resolved) Available() bool {
	return r.URL != ""
}

// Cache keeps resolved assets across runs. With an empty directory it is
// memory-only.
type Cache struct {
	db *bolt.DB

	mu    sync.RWMutex
	cache map[string]Resolved
}

// OpenCache opens (or creates) assets.db under dir.
func OpenCache(dir string) (*Cache, error) {
	if dir == "" {
		return &Cache{cache: make(map[string]Resolved)}, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	db, err := bolt.Open(filepath.Join(dir, "assets.db"), 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open asset cache: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketResolved)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init asset cache: %w", err)
	}
	return &Cache{db: db, cache: make(map[string]Resolved)}, nil
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns the cached resolution for id. Disk hits are promoted to memory.
func (c *Cache) Get(id string) (Resolved, bool) {
	if c == nil {
		return Resolved{}, false
	}
	c.mu.RLock()
	r, ok := c.cache[id]
	c.mu.RUnlock()
	if ok || c.db == nil {
		return r, ok
	}

	var data []byte
	_ = c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketResolved)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(id)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if data == nil {
		return Resolved{}, false
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return Resolved{}, false
	}

	c.mu.Lock()
	c.cache[id] = r
	c.mu.Unlock()
	return r, true
}

// Put stores r, replacing any earlier entry for the same source.
func (c *Cache) Put(r Resolved) error {
	if c == nil {
		return nil
	}
	if r.SourceID == "" {
		return fmt.Errorf("resolved asset has no source id")
	}
	c.mu.Lock()
	c.cache[r.SourceID] = r
	c.mu.Unlock()

	if c.db == nil {
		return nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal resolved asset: %w", err)
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketResolved).Put([]byte(r.SourceID), data)
	})
}

// Delete forgets id.
func (c *Cache) Delete(id string) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	delete(c.cache, id)
	c.mu.Unlock()

	if c.db == nil {
		return nil
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketResolved).Delete([]byte(id))
	})
}

// Purge drops every cached entry.
func (c *Cache) Purge() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	c.cache = make(map[string]Resolved)
	c.mu.Unlock()

	if c.db == nil {
		return nil
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketResolved); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketResolved)
		return err
	})
}

// Len returns the number of entries on disk, or in memory when memory-only.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	if c.db == nil {
		c.mu.RLock()
		defer c.mu.RUnlock()
		return len(c.cache)
	}
	n := 0
	_ = c.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketResolved).Stats().KeyN
		return nil
	})
	return n
}
