// Package session wires the configuration, the database store, and the
// history log together for one command invocation. The store is opened once
// at command start and every mutating command writes it back and commits
// through the same session, so no ambient global state is involved.
package session

import (
	"litdb/src/internal/config"
	"litdb/src/internal/database"
	"litdb/src/internal/history"
	"litdb/src/internal/hooks"
)

// Session owns the loaded database for the duration of one command.
type Session struct {
	Config  *config.Config
	Store   *database.Store
	History *history.Log // nil when git tracking is disabled
	Hooks   *hooks.Registry
}

// Open loads the configuration and reads the database.
func Open() (*Session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	var cache *database.Cache
	if cfg.CacheDir != "" {
		cache = database.NewCache(cfg.CacheDir)
	}
	store, err := database.Open(cfg.Database, cache)
	if err != nil {
		return nil, err
	}
	s := &Session{Config: cfg, Store: store, Hooks: hooks.NewRegistry()}
	if cfg.Git {
		s.History = history.New(cfg.Database)
	}
	return s, nil
}

// Flush writes the store back to disk and, when git tracking is enabled,
// commits the change tagged with the command's name.
func (s *Session) Flush(command, details string) error {
	if err := s.Store.Write(); err != nil {
		return err
	}
	if s.History == nil {
		return nil
	}
	_, err := s.History.Commit(command, details)
	return err
}

// Reload re-reads the store from disk, discarding the in-memory state. Used
// after undo/redo rewrote the backing file.
func (s *Session) Reload() error { return s.Store.Read() }
