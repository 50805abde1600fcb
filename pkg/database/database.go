// Package database implements the database registry: a GE file carrying
// {name, comment, create_time} plus, at recovery, a rebuilt map of the
// views living in its subdirectory.
package database

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zeebo/errs"

	"github.com/aberic/george/internal/kinds"
	"github.com/aberic/george/pkg/ge"
	"github.com/aberic/george/pkg/view"
)

// Error is the error class for this package.
var Error = errs.Class("database")

type description struct {
	Name       string    `json:"name"`
	Comment    string    `json:"comment"`
	CreateTime time.Time `json:"create_time"`
}

// Database is one named collection of views, backed by <dir>/database.ge.
type Database struct {
	dir string

	mu         sync.RWMutex
	file       *ge.File
	name       string
	comment    string
	createTime time.Time
	views      map[string]*view.View
}

// Create initializes a brand-new database rooted at dir.
func Create(dir, name, comment string) (*Database, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, Error.Wrap(kinds.IOError)
	}
	now := time.Now()
	encoded, err := json.Marshal(description{Name: name, Comment: comment, CreateTime: now})
	if err != nil {
		return nil, Error.Wrap(kinds.EncodingError)
	}
	filePath := filepath.Join(dir, "database.ge")
	file, err := ge.Create(filePath, ge.TagDatabase, ge.EngineNone, encoded)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return &Database{
		dir: dir, file: file,
		name: name, comment: comment, createTime: now,
		views: make(map[string]*view.View),
	}, nil
}

// Recover reopens an existing database rooted at dir and walks its
// subdirectory to rebuild the view map.
func Recover(dir string) (*Database, error) {
	filePath := filepath.Join(dir, "database.ge")
	file, err := ge.Recover(filePath)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	content, err := file.Description()
	if err != nil {
		return nil, err
	}
	var desc description
	if err := json.Unmarshal(content, &desc); err != nil {
		return nil, Error.Wrap(kinds.CorruptMetadata)
	}

	d := &Database{
		dir: dir, file: file,
		name: desc.Name, comment: desc.Comment, createTime: desc.CreateTime,
		views: make(map[string]*view.View),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, Error.Wrap(kinds.IOError)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		viewDir := filepath.Join(dir, e.Name())
		if _, err := os.Stat(filepath.Join(viewDir, "view.ge")); err != nil {
			continue
		}
		v, err := view.Recover(viewDir)
		if err != nil {
			return nil, Error.Wrap(err)
		}
		d.views[e.Name()] = v
	}
	return d, nil
}

// Name returns the database's current name.
func (d *Database) Name() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.name
}

// Comment returns the database's current comment.
func (d *Database) Comment() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.comment
}

// CreateTime returns the database's creation time.
func (d *Database) CreateTime() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.createTime
}

// Views returns a snapshot of the current view map.
func (d *Database) Views() map[string]*view.View {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]*view.View, len(d.views))
	for k, v := range d.views {
		out[k] = v
	}
	return out
}

// View returns the named view.
func (d *Database) View(name string) (*view.View, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.views[name]
	if !ok {
		return nil, Error.Wrap(kinds.NotFound)
	}
	return v, nil
}

// CreateView creates a new view named name under this database.
func (d *Database) CreateView(_ context.Context, name, comment string, withIncrement bool) (*view.View, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.views[name]; exists {
		return nil, Error.Wrap(kinds.AlreadyExists)
	}
	v, err := view.Create(filepath.Join(d.dir, name), name, comment, withIncrement)
	if err != nil {
		return nil, err
	}
	d.views[name] = v
	return v, nil
}

// RemoveView drops a view from the registry. The underlying files are left
// on disk; only the in-memory handle is forgotten, so a future recover
// would still find it unless the caller also removes the directory.
func (d *Database) RemoveView(_ context.Context, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.views[name]; !ok {
		return Error.Wrap(kinds.NotFound)
	}
	delete(d.views, name)
	return nil
}

// Modify renames the database and/or changes its comment.
func (d *Database) Modify(newName, newComment string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.name = newName
	d.comment = newComment
	encoded, err := json.Marshal(description{Name: d.name, Comment: d.comment, CreateTime: d.createTime})
	if err != nil {
		return Error.Wrap(kinds.EncodingError)
	}
	if err := d.file.Modify(encoded); err != nil {
		return Error.Wrap(err)
	}
	return nil
}

// Dir returns the database's root directory.
func (d *Database) Dir() string { return d.dir }
