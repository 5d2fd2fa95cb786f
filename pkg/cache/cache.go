package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/grexie/conductor/pkg/features"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// version is part of every key so a change to parsing or key joints
// invalidates old entries.
const version = "v1"

// Cache stores extracted feature vectors per recording so that rebuilding
// a corpus only parses files that changed.
type Cache struct {
	db *leveldb.DB
}

func Open(path string) (*Cache, error) {
	if db, err := leveldb.OpenFile(path, nil); err != nil {
		return nil, fmt.Errorf("failed to open feature cache %s: %w", path, err)
	} else {
		return &Cache{db: db}, nil
	}
}

func (c *Cache) Close() error {
	return c.db.Close()
}

func key(path string) ([]byte, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	return fmt.Appendf([]byte{}, "%s-features-%s-%d-%d", version, abs, info.Size(), info.ModTime().UnixNano()), nil
}

// Get returns the cached vectors for path, or ok == false if path changed
// since it was cached or was never cached.
func (c *Cache) Get(path string) (vectors []features.Vector, ok bool, err error) {
	k, err := key(path)
	if err != nil {
		return nil, false, err
	}

	value, err := c.db.Get(k, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}

	if err := json.Unmarshal(value, &vectors); err != nil {
		return nil, false, nil
	}
	return vectors, true, nil
}

func (c *Cache) Put(path string, vectors []features.Vector) error {
	k, err := key(path)
	if err != nil {
		return err
	}
	value, err := json.Marshal(vectors)
	if err != nil {
		return err
	}
	return c.db.Put(k, value, nil)
}

// Len counts entries written by this version of the cache.
func (c *Cache) Len() int {
	iter := c.db.NewIterator(util.BytesPrefix([]byte(version+"-features-")), nil)
	defer iter.Release()

	n := 0
	for iter.Next() {
		n++
	}
	return n
}
