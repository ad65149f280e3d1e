package httputil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// ErrExpired is returned by [Cache.Get] when an entry exists but its
// TTL has passed. The stale bytes stay on disk; the caller refetches
// and overwrites with [Cache.Set]:
//
//	ok, err := cache.Get("key", &value)
//	if errors.Is(err, httputil.ErrExpired) {
//	    // refetch, then cache.Set("key", fresh)
//	}
var ErrExpired = errors.New("cache entry expired")

// Cache stores JSON-marshalable responses as files, one entry per key.
// Filenames are the SHA-256 of the key, so any string keys safely.
//
// Freshness is judged by file modification time against the TTL; a TTL
// of 0 never expires. A single Cache is not goroutine-safe, but
// instances in separate processes can share a directory because writes
// land atomically.
//
// [Cache.Namespace] scopes keys by prefix so the page fetcher and the
// content API client do not collide in the same directory.
type Cache struct {
	dir    string
	ttl    time.Duration
	prefix string
}

// NewCache opens the response cache at dir, creating it if needed. An
// empty dir means ~/.cache/cardgrid.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".cache", "cardgrid")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, ttl: ttl}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// TTL returns the entry time-to-live. Zero means entries never expire.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get unmarshals the entry for key into v. A hit is (true, nil); a
// miss is (false, nil) and an entry past its TTL is (false, ErrExpired),
// both leaving v alone. Reads never touch modification times, so
// repeated Gets do not keep an entry alive.
func (c *Cache) Get(key string, v any) (bool, error) {
	path := c.keyPath(c.prefix + key)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		return false, ErrExpired
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(data, v)
}

// Set marshals v and stores it under key, replacing any previous entry
// and restarting its TTL. The write goes through a temp file and
// rename so a reader in another process never sees a torn entry.
func (c *Cache) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.dir, ".entry-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.keyPath(c.prefix+key))
}

// Namespace returns a view of the cache whose keys all carry prefix.
// Views share the directory and TTL; prefixes compose:
//
//	cache.Namespace("api:").Namespace("tag:")  // keys start with "api:tag:"
func (c *Cache) Namespace(prefix string) *Cache {
	return &Cache{
		dir:    c.dir,
		ttl:    c.ttl,
		prefix: c.prefix + prefix,
	}
}

func (c *Cache) keyPath(key string) string {
	h := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(h[:]))
}
