// Package database holds the runtime store of all entries, keyed by label,
// and its persistence to the flat YAML file backing the library.
package database

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"litdb/src/internal/labels"
	"litdb/src/internal/schema"
)

// ErrDuplicateLabel is returned when an operation would violate the label
// uniqueness invariant.
var ErrDuplicateLabel = errors.New("duplicate label")

// ErrNoDatabase is returned when the backing file does not exist yet.
var ErrNoDatabase = errors.New("database file does not exist")

// Store is the in-memory collection of all entries. Insertion order is
// preserved and reflected in the backing file and default listing order.
type Store struct {
	path    string
	order   []string
	entries map[string]*schema.Entry
	cache   *Cache
}

// Open reads the backing file at path into a new store. A nil cache disables
// caching.
func Open(path string, cache *Cache) (*Store, error) {
	s := &Store{path: path, cache: cache, entries: map[string]*schema.Entry{}}
	if err := s.Read(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the location of the backing file.
func (s *Store) Path() string { return s.path }

// Len returns the number of entries.
func (s *Store) Len() int { return len(s.order) }

// Labels returns all labels in insertion order.
func (s *Store) Labels() []string { return append([]string(nil), s.order...) }

// Entries returns all entries in insertion order.
func (s *Store) Entries() []*schema.Entry {
	out := make([]*schema.Entry, 0, len(s.order))
	for _, l := range s.order {
		out = append(out, s.entries[l])
	}
	return out
}

// Get returns the entry stored under label.
func (s *Store) Get(label string) (*schema.Entry, bool) {
	e, ok := s.entries[label]
	return e, ok
}

// Has reports whether an entry exists under label.
func (s *Store) Has(label string) bool {
	_, ok := s.entries[label]
	return ok
}

// Insert adds a new entry. It fails with ErrDuplicateLabel when the label is
// already taken; new entries from user input must be routed through the
// disambiguator first.
func (s *Store) Insert(e *schema.Entry) error {
	if s.Has(e.Label) {
		return fmt.Errorf("%w: %q", ErrDuplicateLabel, e.Label)
	}
	s.entries[e.Label] = e
	s.order = append(s.order, e.Label)
	return nil
}

// Replace overwrites (or inserts) the entry under e.Label, bypassing the
// duplicate check. This is the programmatic path used by the replace and
// update disambiguation outcomes.
func (s *Store) Replace(e *schema.Entry) {
	if !s.Has(e.Label) {
		s.order = append(s.order, e.Label)
	}
	s.entries[e.Label] = e
}

// Rename re-keys the entry under oldLabel to newLabel in place, preserving
// its position and contents. It fails with ErrDuplicateLabel when newLabel is
// already taken.
func (s *Store) Rename(oldLabel, newLabel string) error {
	if oldLabel == newLabel {
		return nil
	}
	e, ok := s.entries[oldLabel]
	if !ok {
		return fmt.Errorf("no entry with label %q", oldLabel)
	}
	if s.Has(newLabel) {
		return fmt.Errorf("%w: %q", ErrDuplicateLabel, newLabel)
	}
	e.Label = newLabel
	delete(s.entries, oldLabel)
	s.entries[newLabel] = e
	for i, l := range s.order {
		if l == oldLabel {
			s.order[i] = newLabel
			break
		}
	}
	return nil
}

// Delete removes the entry under label. Deleting an absent label is an
// idempotent no-op, logged for diagnosis.
func (s *Store) Delete(label string) {
	if !s.Has(label) {
		slog.Warn("delete of unknown label is a no-op", "label", label)
		return
	}
	delete(s.entries, label)
	for i, l := range s.order {
		if l == label {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// RelatedLabels splits the existing labels into those directly related to
// label (equal modulo suffix) and those merely sharing its root as a prefix.
func (s *Store) RelatedLabels(label string, sfx labels.Suffix) (direct, indirect []string) {
	root, _ := sfx.Trim(label)
	for _, existing := range s.order {
		if !strings.HasPrefix(existing, root) {
			continue
		}
		if r, _ := sfx.Trim(existing); r == root {
			direct = append(direct, existing)
		} else {
			indirect = append(indirect, existing)
		}
	}
	return direct, indirect
}

// Read loads the backing file from disk, replacing the in-memory state. A
// fresh cache hit skips the YAML parse.
func (s *Store) Read() error {
	if s.cache != nil {
		if entries, ok := s.cache.Load(s.path); ok {
			s.reset(entries)
			return nil
		}
	}
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s (run `litdb init`)", ErrNoDatabase, s.path)
		}
		return err
	}
	defer f.Close()

	var loaded []*schema.Entry
	dec := yaml.NewDecoder(f)
	for {
		var e schema.Entry
		if err := dec.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("malformed entry document in %s: %w", s.path, err)
		}
		if err := e.Validate(); err != nil {
			return fmt.Errorf("invalid entry %q in %s: %w", e.Label, s.path, err)
		}
		loaded = append(loaded, &e)
	}
	s.reset(nil)
	for _, e := range loaded {
		if s.Has(e.Label) {
			slog.Warn("duplicate label in database file, last occurrence wins", "label", e.Label)
			s.Delete(e.Label)
		}
		s.entries[e.Label] = e
		s.order = append(s.order, e.Label)
	}
	if s.cache != nil {
		s.cache.Save(s.path, s.Entries())
	}
	return nil
}

// Write serializes all entries in order and atomically replaces the backing
// file (temp file plus rename). Every write invalidates the cache.
func (s *Store) Write() error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".litdb-tmp-*")
	if err != nil {
		return fmt.Errorf("database: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}
	// yaml.Encoder.Close errors when nothing was encoded, so an empty store
	// writes an empty file instead.
	if len(s.order) > 0 {
		enc := yaml.NewEncoder(tmp)
		enc.SetIndent(2)
		for _, l := range s.order {
			if err := enc.Encode(s.entries[l]); err != nil {
				cleanup()
				return fmt.Errorf("database: encode entry %q: %w", l, err)
			}
		}
		if err := enc.Close(); err != nil {
			cleanup()
			return fmt.Errorf("database: finish encoding: %w", err)
		}
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("database: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("database: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("database: rename over %s: %w", s.path, err)
	}
	if s.cache != nil {
		s.cache.Invalidate(s.path)
	}
	return nil
}

func (s *Store) reset(entries []*schema.Entry) {
	s.order = nil
	s.entries = map[string]*schema.Entry{}
	for _, e := range entries {
		s.entries[e.Label] = e
		s.order = append(s.order, e.Label)
	}
}
