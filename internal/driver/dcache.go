package driver

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/minio/highwayhash"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/paiml/decy-sub003/internal/hir"
	"github.com/paiml/decy-sub003/internal/report"
)

// Current schema version - increment when the cached Summary layout changes.
const diskCacheSchemaVersion uint16 = 1

var settingsKey = []byte("decy-own.cache.settings.v1.key!!")

// DiskCache stores function summaries on disk, keyed by the function's
// fingerprint and the settings that produced them.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// CacheKey names one cache entry.
type CacheKey string

// KeyFor derives the cache key of fp analyzed with classifier at threshold.
func KeyFor(fp hir.Fingerprint, classifier string, threshold float64) CacheKey {
	settings := classifier + "|" + strconv.FormatFloat(threshold, 'g', -1, 64)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], highwayhash.Sum64([]byte(settings), settingsKey))
	return CacheKey(fp.Hex() + "-" + hex.EncodeToString(buf[:]))
}

type diskPayload struct {
	Schema  uint16
	Key     string
	Summary report.Summary
}

// OpenDiskCache opens a cache rooted at dir, or at $XDG_CACHE_HOME/app
// (falling back to ~/.cache/app) when dir is empty.
func OpenDiskCache(dir, app string) (*DiskCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, app)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string { return c.dir }

func (c *DiskCache) pathFor(key CacheKey) string {
	return filepath.Join(c.dir, "funcs", string(key)+".mp")
}

// Put serializes and writes a summary to the disk cache.
func (c *DiskCache) Put(key CacheKey, s *report.Summary) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(&diskPayload{
		Schema:  diskCacheSchemaVersion,
		Key:     string(key),
		Summary: *s,
	}); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// atomic replace
	return os.Rename(f.Name(), p)
}

// Get reads a summary. Entries written by another schema version or under
// a different key are treated as misses.
func (c *DiskCache) Get(key CacheKey) (report.Summary, bool, error) {
	if c == nil {
		return report.Summary{}, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return report.Summary{}, false, nil
		}
		return report.Summary{}, false, err
	}
	defer f.Close()

	var payload diskPayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return report.Summary{}, false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	if payload.Schema != diskCacheSchemaVersion || payload.Key != string(key) {
		return report.Summary{}, false, nil
	}
	return payload.Summary, true, nil
}

// DropAll removes every entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "funcs"))
}
