// Package bank opens an exam bank on disk and implements service.Service.
// It wraps a store.SQLiteStore with repository discovery, configured size
// limits and delivery of committed changes to extensions.
package bank

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jpl-au/exambank/extension"
	"github.com/jpl-au/exambank/internal/config"
	"github.com/jpl-au/exambank/internal/log"
	"github.com/jpl-au/exambank/internal/repo"
	"github.com/jpl-au/exambank/internal/service"
	"github.com/jpl-au/exambank/internal/store"
)

// Service is an open exam bank.
type Service struct {
	*store.SQLiteStore

	dbPath string

	mu     sync.RWMutex
	extCtx extension.Context
}

var _ service.Service = (*Service)(nil)

// New opens bank db. With dir empty the .exambank directory is discovered by
// walking up from the working directory; otherwise dir is the project
// directory holding it. Returns repo.ErrNotInitialised if no bank exists.
func New(db, dir string) (*Service, error) {
	dbPath, err := locate(db, dir)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	// Brings banks created by older builds up to the current schema.
	if err := st.Init(); err != nil {
		st.Close()
		return nil, fmt.Errorf("init store: %w", err)
	}

	s := &Service{SQLiteStore: st, dbPath: dbPath}
	s.applyLimits(cfg)
	st.Observe(s.changed)
	return s, nil
}

// Init creates a new bank. See repo.Init.
func Init(force bool, db string, local bool, dir string) error {
	return repo.Init(force, db, local, dir)
}

func locate(db, dir string) (string, error) {
	if dir == "" {
		return repo.Discover(db)
	}
	p := filepath.Join(dir, repo.Dir, repo.DBFileName(db))
	if _, err := os.Stat(p); err != nil {
		return "", repo.ErrNotInitialised
	}
	return p, nil
}

func (s *Service) applyLimits(cfg *config.Config) {
	s.SetLimits(store.Limits{
		MaxTagLength: cfg.MaxTagLength(),
		MaxPayload:   cfg.MaxPayload(),
	})
}

// Close checkpoints the WAL and closes the database connection.
func (s *Service) Close() error {
	s.Observe(nil)
	if err := s.Checkpoint(context.Background()); err != nil {
		log.Event("service:close", "checkpoint").Write(err)
	}
	return s.SQLiteStore.Close()
}

// ReloadConfig re-reads configuration and reapplies the size limits.
func (s *Service) ReloadConfig() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	s.applyLimits(cfg)
	return nil
}

// SetExtensionContext sets the context passed to extension event handlers.
// Until it is set, changes are not delivered.
func (s *Service) SetExtensionContext(ctx extension.Context) {
	s.mu.Lock()
	s.extCtx = ctx
	s.mu.Unlock()
}

// DBPath returns the path to the database file.
func (s *Service) DBPath() string {
	return s.dbPath
}

// Dir returns the .exambank directory holding the database.
func (s *Service) Dir() string {
	return filepath.Dir(s.dbPath)
}

// changed is the store observer. It runs after commit, so handler errors are
// logged and never reach the caller of the write.
func (s *Service) changed(c store.Change) {
	s.mu.RLock()
	ctx := s.extCtx
	s.mu.RUnlock()
	if ctx == nil {
		return
	}

	e := extension.NewChangeEvent(c)
	for _, ext := range extension.All() {
		h, ok := ext.(extension.EventHandler)
		if !ok {
			continue
		}
		if err := h.HandleEvent(ctx, e); err != nil {
			log.Event("event:error", "error").
				Kind(string(c.Kind)).
				ID(c.ID).
				Detail("ext", ext.Name()).
				Detail("event", string(e.EventType())).
				Write(err)
		}
	}
}
