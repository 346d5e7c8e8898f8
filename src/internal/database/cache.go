package database

import (
	"bytes"
	"encoding/gob"
	"log/slog"
	"os"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"litdb/src/internal/schema"
)

// Cache stores parsed databases keyed by their backing file path, so that an
// unchanged file does not need to be re-parsed at every process start. The
// cached copy is keyed by the file's modification time and size and is
// invalidated on every store write.
type Cache struct {
	kv *diskv.Diskv
}

type cachePayload struct {
	ModTime int64
	Size    int64
	Entries []*schema.Entry
}

// NewCache returns a cache rooted at dir.
func NewCache(dir string) *Cache {
	return &Cache{kv: diskv.New(diskv.Options{
		BasePath:     dir,
		CacheSizeMax: 8 * 1024 * 1024,
	})}
}

// cacheKey flattens a database path into a single diskv key.
func cacheKey(path string) string {
	return strings.NewReplacer("/", "%2f", "\\", "%2f", ":", "%3a").Replace(path)
}

// Load returns the cached entries for path if the cached copy is still fresh.
func (c *Cache) Load(path string) ([]*schema.Entry, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	blob, err := c.kv.Read(cacheKey(path))
	if err != nil {
		return nil, false
	}
	var payload cachePayload
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&payload); err != nil {
		slog.Warn("discarding unreadable database cache", "path", path, "err", err)
		_ = c.kv.Erase(cacheKey(path))
		return nil, false
	}
	if payload.ModTime != info.ModTime().UnixNano() || payload.Size != info.Size() {
		return nil, false
	}
	return payload.Entries, true
}

// Save caches the entries for path alongside the file's current stat info.
func (c *Cache) Save(path string, entries []*schema.Entry) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	var buf bytes.Buffer
	payload := cachePayload{
		ModTime: info.ModTime().UnixNano(),
		Size:    info.Size(),
		Entries: entries,
	}
	if err := gob.NewEncoder(&buf).Encode(&payload); err != nil {
		slog.Warn("could not encode database cache", "path", path, "err", err)
		return
	}
	if err := c.kv.Write(cacheKey(path), buf.Bytes()); err != nil {
		slog.Warn("could not write database cache", "path", path, "err", err)
	}
}

// Invalidate drops the cached copy for path.
func (c *Cache) Invalidate(path string) {
	if err := c.kv.Erase(cacheKey(path)); err != nil && !os.IsNotExist(err) {
		slog.Debug("cache invalidation", "path", path, "err", err)
	}
}
