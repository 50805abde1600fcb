// Package master implements the process-wide bootstrap/recovery singleton.
// It owns the database and page namespaces, independent of each other and
// unique within each, and runs recovery and page TTL sweeping concurrently,
// bounded by the configured thread count. Queries are not run through it.
package master

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/zeebo/errs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aberic/george/internal/config"
	"github.com/aberic/george/internal/kinds"
	"github.com/aberic/george/pkg/database"
	"github.com/aberic/george/pkg/ge"
	"github.com/aberic/george/pkg/page"
)

// Error is the error class for this package.
var Error = errs.Class("master")

// Master is the process-wide singleton. It is constructed once by the
// service layer, never a package-level global, and passed explicitly to
// whatever serves requests.
type Master struct {
	cfg *config.Config
	log *zap.Logger

	bootstrap *ge.File

	mu        sync.RWMutex
	databases map[string]*database.Database
	pages     map[string]*page.Page
}

// Open runs the bootstrap sequence: ensure data_dir exists, open or create
// the bootstrap GE file, and, if it was already initialized, recover every
// database and page beneath data_dir concurrently.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Master, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, Error.Wrap(kinds.IOError)
	}

	m := &Master{
		cfg: cfg, log: log,
		databases: make(map[string]*database.Database),
		pages:     make(map[string]*page.Page),
	}

	bootstrapPath := filepath.Join(cfg.DataDir, "bootstrap.ge")
	_, statErr := os.Stat(bootstrapPath)
	fresh := os.IsNotExist(statErr)

	if fresh {
		file, err := ge.Create(bootstrapPath, ge.TagBootstrap, ge.EngineNone, nil)
		if err != nil {
			return nil, Error.Wrap(err)
		}
		if _, err := file.Append([]byte{0x01}); err != nil {
			return nil, Error.Wrap(err)
		}
		m.bootstrap = file
		log.Info("bootstrap initialized", zap.String("data_dir", cfg.DataDir))
		return m, nil
	}

	file, err := ge.Recover(bootstrapPath)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	m.bootstrap = file

	if err := m.recover(ctx); err != nil {
		return nil, err
	}
	log.Info("recovered existing data_dir",
		zap.String("data_dir", cfg.DataDir),
		zap.Int("databases", len(m.databases)),
		zap.Int("pages", len(m.pages)))
	return m, nil
}

func (m *Master) recover(ctx context.Context) error {
	entries, err := os.ReadDir(m.cfg.DataDir)
	if err != nil {
		return Error.Wrap(kinds.IOError)
	}

	var mu sync.Mutex
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(threadLimit(m.cfg.ThreadCount))

	for _, e := range entries {
		if !e.IsDir() || e.Name() == "pages" {
			continue
		}
		name := e.Name()
		dbDir := filepath.Join(m.cfg.DataDir, name)
		if _, err := os.Stat(filepath.Join(dbDir, "database.ge")); err != nil {
			continue
		}
		g.Go(func() error {
			db, err := database.Recover(dbDir)
			if err != nil {
				return err
			}
			mu.Lock()
			m.databases[name] = db
			mu.Unlock()
			return nil
		})
	}

	pagesDir := filepath.Join(m.cfg.DataDir, "pages")
	if pageEntries, err := os.ReadDir(pagesDir); err == nil {
		for _, e := range pageEntries {
			if !e.IsDir() {
				continue
			}
			name := e.Name()
			pageDir := filepath.Join(pagesDir, name)
			g.Go(func() error {
				p, err := page.Recover(pageDir)
				if err != nil {
					return err
				}
				mu.Lock()
				m.pages[name] = p
				mu.Unlock()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return Error.Wrap(err)
	}
	return nil
}

// CreateDatabase creates a new database named name.
func (m *Master) CreateDatabase(_ context.Context, name, comment string) (*database.Database, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.databases[name]; exists {
		return nil, Error.Wrap(kinds.AlreadyExists)
	}
	db, err := database.Create(filepath.Join(m.cfg.DataDir, name), name, comment)
	if err != nil {
		return nil, err
	}
	m.databases[name] = db
	return db, nil
}

// Database returns the named database.
func (m *Master) Database(name string) (*database.Database, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	db, ok := m.databases[name]
	if !ok {
		return nil, Error.Wrap(kinds.NotFound)
	}
	return db, nil
}

// Databases returns a snapshot of every registered database.
func (m *Master) Databases() map[string]*database.Database {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]*database.Database, len(m.databases))
	for k, v := range m.databases {
		out[k] = v
	}
	return out
}

// RemoveDatabase forgets the named database's in-memory handle.
func (m *Master) RemoveDatabase(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.databases[name]; !ok {
		return Error.Wrap(kinds.NotFound)
	}
	delete(m.databases, name)
	return nil
}

// CreatePage creates a new page named name.
func (m *Master) CreatePage(_ context.Context, name, comment string, sizeHintMB int, ttlSecs int64) (*page.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.pages[name]; exists {
		return nil, Error.Wrap(kinds.AlreadyExists)
	}
	p, err := page.Create(filepath.Join(m.cfg.DataDir, "pages", name), name, comment, sizeHintMB, ttlSecs)
	if err != nil {
		return nil, err
	}
	m.pages[name] = p
	return p, nil
}

// Page returns the named page.
func (m *Master) Page(name string) (*page.Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.pages[name]
	if !ok {
		return nil, Error.Wrap(kinds.NotFound)
	}
	return p, nil
}

// Pages returns a snapshot of every registered page.
func (m *Master) Pages() map[string]*page.Page {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]*page.Page, len(m.pages))
	for k, v := range m.pages {
		out[k] = v
	}
	return out
}

// RemovePage forgets the named page's in-memory handle.
func (m *Master) RemovePage(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pages[name]; !ok {
		return Error.Wrap(kinds.NotFound)
	}
	delete(m.pages, name)
	return nil
}

// SweepPages runs Sweep on every page concurrently, bounded by the
// configured thread count, removing each page's expired entries.
func (m *Master) SweepPages(ctx context.Context) error {
	m.mu.RLock()
	pages := make([]*page.Page, 0, len(m.pages))
	for _, p := range m.pages {
		pages = append(pages, p)
	}
	m.mu.RUnlock()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threadLimit(m.cfg.ThreadCount))
	for _, p := range pages {
		p := p
		g.Go(func() error {
			removed, err := p.Sweep(gctx)
			if err != nil {
				return err
			}
			if removed > 0 {
				m.log.Debug("swept page", zap.String("page", p.Name()), zap.Int("removed", removed))
			}
			return nil
		})
	}
	return g.Wait()
}

// Close releases the bootstrap file handle.
func (m *Master) Close() error {
	return m.bootstrap.Close()
}

// threadLimit translates a non-positive configured thread count into
// errgroup's "unlimited" sentinel rather than its literal "allow zero"
// meaning.
func threadLimit(n int) int {
	if n <= 0 {
		return -1
	}
	return n
}
