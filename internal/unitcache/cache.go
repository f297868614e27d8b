// Package unitcache persists compiled units on disk, keyed by the digest of
// the source that produced them. Only engines implementing engine.UnitCodec
// participate; everyone else just pays a cheap interface assertion.
package unitcache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Bump when the envelope layout changes so stale entries self-invalidate.
const cacheSchemaVersion uint16 = 1

// Key addresses one cache entry. Derive it with KeyFor.
type Key [32]byte

// KeyFor mixes the engine name into the source digest, so two engines never
// collide on the same script.
func KeyFor(engineName string, sourceHash [32]byte) Key {
	h := sha256.New()
	h.Write([]byte(engineName))
	h.Write([]byte{0})
	h.Write(sourceHash[:])
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

// Envelope is the on-disk record around an encoded unit.
type Envelope struct {
	Schema     uint16
	Engine     string
	SourceHash []byte
	Unit       []byte
}

// Cache stores envelopes under a directory, one file per key.
// Safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// Open initializes a cache at the standard user cache location for app.
func Open(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenAt(filepath.Join(base, app))
}

// OpenAt initializes a cache rooted at an explicit directory.
func OpenAt(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) pathFor(key Key) string {
	hexKey := hex.EncodeToString(key[:])
	// Units live in their own subdirectory for easy manual cleanup.
	return filepath.Join(c.dir, "units", hexKey+".mp")
}

// Put serializes and writes an envelope, replacing the file atomically.
func (c *Cache) Put(key Key, env *Envelope) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	env.Schema = cacheSchemaVersion

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmpName := f.Name()
	defer os.Remove(tmpName)

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(env); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, p)
}

// Get reads an envelope. The boolean reports a usable hit; schema mismatches
// and missing files are misses, not errors.
func (c *Cache) Get(key Key, out *Envelope) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(out); err != nil {
		return false, fmt.Errorf("unitcache: corrupt entry: %w", err)
	}
	if out.Schema != cacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll removes every cached unit.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "units"))
}
