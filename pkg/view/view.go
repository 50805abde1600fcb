// Package view implements the table abstraction: one append-only data
// GE file holding packed record envelopes, a map of index engines keyed by
// name, and a Pigeonhole recording where every archived prior version of the
// data file now lives.
package view

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aberic/george/internal/kinds"
	"github.com/aberic/george/pkg/ge"
	"github.com/aberic/george/pkg/index"
	"github.com/aberic/george/pkg/index/disk"
	"github.com/aberic/george/pkg/index/increment"
	"github.com/aberic/george/pkg/index/memory"
	"github.com/aberic/george/pkg/index/sequence"
	"github.com/aberic/george/pkg/record"
)

// View is one table: it owns its data file, its index map, and its
// Pigeonhole. It implements record.ViewWriter (for Seed) and
// index.Dereferencer (for every index's Get/Select).
type View struct {
	dir string

	mu             sync.RWMutex
	file           *ge.File
	name           string
	comment        string
	createTime     time.Time
	currentVersion uint16
	pigeonhole     *Pigeonhole
	indexes        map[string]index.TNode
}

// VersionInfo describes one version of a view's data — the live one or an
// archived one — as returned by Records/Record.
type VersionInfo struct {
	Version    uint16
	Filepath   string
	ArchivedAt time.Time
	Live       bool
}

// Create initializes a brand-new view rooted at dir (typically
// <data_dir>/<db_name>/<view_name>), laying out its archive/ and indexes/
// subdirectories. When withIncrement is true, a primary index named
// "primary" backed by the Increment engine is created immediately.
func Create(dir, name, comment string, withIncrement bool) (*View, error) {
	if err := os.MkdirAll(filepath.Join(dir, "archive"), 0o755); err != nil {
		return nil, Error.Wrap(kinds.IOError)
	}
	if err := os.MkdirAll(filepath.Join(dir, "indexes"), 0o755); err != nil {
		return nil, Error.Wrap(kinds.IOError)
	}

	now := time.Now()
	desc := description{Name: name, Comment: comment, CreateTime: now, CurrentVersion: 1}
	encoded, err := encodeDescription(desc)
	if err != nil {
		return nil, err
	}

	viewPath := filepath.Join(dir, "view.ge")
	file, err := ge.Create(viewPath, ge.TagView, ge.EngineNone, encoded)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	v := &View{
		dir:            dir,
		file:           file,
		name:           name,
		comment:        comment,
		createTime:     now,
		currentVersion: 1,
		pigeonhole:     newPigeonhole(nil),
		indexes:        make(map[string]index.TNode),
	}

	if withIncrement {
		if err := v.CreateIndex(context.Background(), "primary", ge.EngineIncrement, index.KeyTypeU64, true, true, true); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Recover reopens an existing view rooted at dir, reconstructing its index
// map from each index subdirectory's own node.ge description and
// recreating (empty) any memory index recorded in the view's description.
func Recover(dir string) (*View, error) {
	viewPath := filepath.Join(dir, "view.ge")
	file, err := ge.Recover(viewPath)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	content, err := file.Description()
	if err != nil {
		return nil, err
	}
	desc, err := decodeDescription(content)
	if err != nil {
		return nil, err
	}

	v := &View{
		dir:            dir,
		file:           file,
		name:           desc.Name,
		comment:        desc.Comment,
		createTime:     desc.CreateTime,
		currentVersion: desc.CurrentVersion,
		pigeonhole:     newPigeonhole(desc.Pigeonhole),
		indexes:        make(map[string]index.TNode),
	}

	for _, m := range desc.MemoryIndexes {
		v.indexes[m.Name] = memory.New(m.Name, m.KeyType, m.Primary, m.Unique, m.Null)
	}

	indexesDir := filepath.Join(dir, "indexes")
	entries, err := os.ReadDir(indexesDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, Error.Wrap(kinds.IOError)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name, idx, err := recoverIndex(v, filepath.Join(indexesDir, e.Name()))
		if err != nil {
			return nil, err
		}
		v.indexes[name] = idx
	}
	return v, nil
}

func recoverIndex(v *View, indexDir string) (string, index.TNode, error) {
	nodePath := filepath.Join(indexDir, "node.ge")
	file, err := ge.Recover(nodePath)
	if err != nil {
		return "", nil, Error.Wrap(err)
	}
	content, err := file.Description()
	if err != nil {
		return "", nil, err
	}
	d, err := decodeIndexDescription(content)
	if err != nil {
		return "", nil, err
	}

	switch d.Engine {
	case ge.EngineIncrement:
		idx, err := increment.Open(d.Name, d.Primary, file, v)
		if err != nil {
			return "", nil, err
		}
		return d.Name, idx, nil
	case ge.EngineDisk:
		return d.Name, disk.Open(d.Name, d.KeyType, d.Primary, d.Unique, d.Null, file, v, d.RootOffset), nil
	case ge.EngineSequence:
		return d.Name, sequence.Open(d.Name, d.Primary, d.Unique, d.Null, file, v, d.RootOffset), nil
	default:
		return "", nil, Error.Wrap(kinds.Unimplemented)
	}
}

// Name returns the view's current name.
func (v *View) Name() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.name
}

// Comment returns the view's current comment.
func (v *View) Comment() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.comment
}

// CreateTime returns the view's creation time.
func (v *View) CreateTime() time.Time {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.createTime
}

// Dir returns the view's root directory.
func (v *View) Dir() string { return v.dir }

// Indexes returns a snapshot of the current index map.
func (v *View) Indexes() map[string]index.TNode {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make(map[string]index.TNode, len(v.indexes))
	for k, idx := range v.indexes {
		out[k] = idx
	}
	return out
}

// Primary returns the view's primary index.
func (v *View) Primary() (index.TNode, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, idx := range v.indexes {
		if idx.Primary() {
			return idx, nil
		}
	}
	return nil, Error.Wrap(kinds.NotFound)
}

// Modify renames the view and/or changes its comment, persisting the change
// as a new description on the view's own GE file.
func (v *View) Modify(newName, newComment string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.name = newName
	v.comment = newComment
	return v.persistDescriptionLocked()
}

func (v *View) persistDescriptionLocked() error {
	desc := description{
		Name:           v.name,
		Comment:        v.comment,
		CreateTime:     v.createTime,
		CurrentVersion: v.currentVersion,
		Pigeonhole:     v.pigeonhole.snapshot(),
		MemoryIndexes:  v.memoryIndexDocsLocked(),
	}
	encoded, err := encodeDescription(desc)
	if err != nil {
		return err
	}
	if err := v.file.Modify(encoded); err != nil {
		return Error.Wrap(err)
	}
	return nil
}

func (v *View) memoryIndexDocsLocked() []memoryIndexDoc {
	var docs []memoryIndexDoc
	for name, idx := range v.indexes {
		if idx.Engine() == ge.EngineNone {
			docs = append(docs, memoryIndexDoc{
				Name: name, KeyType: idx.KeyType(),
				Primary: idx.Primary(), Unique: idx.Unique(), Null: idx.Null(),
			})
		}
	}
	return docs
}

// WriteContent implements record.ViewWriter: it appends data to the live
// data file and mints a Locator tagged with the current version.
func (v *View) WriteContent(data []byte) (record.Locator, error) {
	v.mu.RLock()
	version := v.currentVersion
	v.mu.RUnlock()

	offset, err := v.file.Append(data)
	if err != nil {
		return record.Locator{}, Error.Wrap(err)
	}
	return record.Locator{Version: version, Length: uint32(len(data)), Offset: uint64(offset)}, nil
}

// ReadContent resolves a (version, length, offset) triple to raw envelope
// bytes, reading from the live file when version is current or from the
// pigeonhole-registered archived file otherwise.
func (v *View) ReadContent(version uint16, length uint32, offset uint64) ([]byte, error) {
	v.mu.RLock()
	current := v.currentVersion
	v.mu.RUnlock()

	if version == current {
		return v.file.Read(int64(offset), int(length))
	}
	entry, ok := v.pigeonhole.lookup(version)
	if !ok {
		return nil, Error.Wrap(kinds.NotFound)
	}
	archived, err := ge.Recover(entry.Filepath)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	defer archived.Close()
	return archived.Read(int64(offset), int(length))
}

// ReadContentByLocator decomposes a 12-byte wire locator and dispatches to
// ReadContent.
func (v *View) ReadContentByLocator(locatorBytes []byte) ([]byte, error) {
	loc, err := record.DecodeLocator(locatorBytes)
	if err != nil {
		return nil, err
	}
	return v.ReadContent(loc.Version, loc.Length, loc.Offset)
}

// Dereference implements index.Dereferencer.
func (v *View) Dereference(locator record.Locator) (record.DataReal, error) {
	buf, err := v.ReadContent(locator.Version, locator.Length, locator.Offset)
	if err != nil {
		return record.DataReal{}, err
	}
	return record.Decode(buf)
}

// Archive moves the live data file to newFilepath, records it in the
// pigeonhole, and reinitializes the live file at the view's original path
// with an incremented version. Locators minted before this call continue to
// resolve correctly through the pigeonhole.
func (v *View) Archive(newFilepath string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	previousVersion := v.currentVersion
	nextVersion := previousVersion + 1
	now := time.Now()

	entries := append(v.pigeonhole.snapshot(), pigeonholeEntry{
		Version: previousVersion, Filepath: newFilepath, ArchivedAt: now,
	})
	desc := description{
		Name: v.name, Comment: v.comment, CreateTime: v.createTime,
		CurrentVersion: nextVersion,
		Pigeonhole:     entries,
		MemoryIndexes:  v.memoryIndexDocsLocked(),
	}
	encoded, err := encodeDescription(desc)
	if err != nil {
		return err
	}

	if err := v.file.Archive(newFilepath, encoded); err != nil {
		return Error.Wrap(err)
	}
	v.pigeonhole.record(previousVersion, newFilepath, now)
	v.currentVersion = nextVersion
	return nil
}

// Records lists every version of this view's data, archived ones first in
// ascending version order, followed by the live version.
func (v *View) Records() []VersionInfo {
	v.mu.RLock()
	current := v.currentVersion
	livePath := v.file.Path()
	v.mu.RUnlock()

	var out []VersionInfo
	for _, e := range v.pigeonhole.snapshot() {
		out = append(out, VersionInfo{Version: e.Version, Filepath: e.Filepath, ArchivedAt: e.ArchivedAt})
	}
	out = append(out, VersionInfo{Version: current, Filepath: livePath, Live: true})
	return out
}

// Record reports the path and archive time of a specific version.
func (v *View) Record(version uint16) (VersionInfo, error) {
	v.mu.RLock()
	current := v.currentVersion
	livePath := v.file.Path()
	v.mu.RUnlock()

	if version == current {
		return VersionInfo{Version: version, Filepath: livePath, Live: true}, nil
	}
	e, ok := v.pigeonhole.lookup(version)
	if !ok {
		return VersionInfo{}, Error.Wrap(kinds.NotFound)
	}
	return VersionInfo{Version: e.Version, Filepath: e.Filepath, ArchivedAt: e.ArchivedAt}, nil
}

// CreateIndex adds a new index to the view, creating its backing node.ge
// file (for the Disk, Increment, and Sequence engines) or a bare in-memory
// container (for EngineNone, the Memory engine's file tag).
func (v *View) CreateIndex(_ context.Context, name string, engine ge.Engine, keyType index.KeyType, primary, unique, null bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, exists := v.indexes[name]; exists {
		return Error.Wrap(kinds.AlreadyExists)
	}

	switch engine {
	case ge.EngineNone:
		v.indexes[name] = memory.New(name, keyType, primary, unique, null)
		return v.persistDescriptionLocked()

	case ge.EngineIncrement:
		node, err := v.createIndexFile(name, engine, keyType, primary, unique, null, 0)
		if err != nil {
			return err
		}
		idx, err := increment.Open(name, primary, node, v)
		if err != nil {
			return Error.Wrap(err)
		}
		v.indexes[name] = idx
		return nil

	case ge.EngineDisk:
		node, err := v.createIndexFile(name, engine, keyType, primary, unique, null, 0)
		if err != nil {
			return err
		}
		idx, rootOffset, err := disk.New(name, keyType, primary, unique, null, node, v)
		if err != nil {
			return Error.Wrap(err)
		}
		if err := v.persistIndexRoot(node, name, engine, keyType, primary, unique, null, rootOffset); err != nil {
			return err
		}
		v.indexes[name] = idx
		return nil

	case ge.EngineSequence:
		node, err := v.createIndexFile(name, engine, keyType, primary, unique, null, 0)
		if err != nil {
			return err
		}
		idx, rootOffset, err := sequence.New(name, primary, unique, null, node, v)
		if err != nil {
			return Error.Wrap(err)
		}
		if err := v.persistIndexRoot(node, name, engine, keyType, primary, unique, null, rootOffset); err != nil {
			return err
		}
		v.indexes[name] = idx
		return nil

	default:
		return Error.Wrap(kinds.Unimplemented)
	}
}

func (v *View) createIndexFile(name string, engine ge.Engine, keyType index.KeyType, primary, unique, null bool, rootOffset int64) (*ge.File, error) {
	indexDir := filepath.Join(v.dir, "indexes", name)
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		return nil, Error.Wrap(kinds.IOError)
	}
	desc := indexDescription{
		Name: name, Engine: engine, KeyType: keyType,
		Primary: primary, Unique: unique, Null: null,
		CreateTime: time.Now(), RootOffset: rootOffset,
	}
	encoded, err := encodeIndexDescription(desc)
	if err != nil {
		return nil, err
	}
	nodePath := filepath.Join(indexDir, "node.ge")
	file, err := ge.Create(nodePath, ge.TagNode, engine, encoded)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return file, nil
}

func (v *View) persistIndexRoot(file *ge.File, name string, engine ge.Engine, keyType index.KeyType, primary, unique, null bool, rootOffset int64) error {
	desc := indexDescription{
		Name: name, Engine: engine, KeyType: keyType,
		Primary: primary, Unique: unique, Null: null,
		CreateTime: time.Now(), RootOffset: rootOffset,
	}
	encoded, err := encodeIndexDescription(desc)
	if err != nil {
		return err
	}
	if err := file.Modify(encoded); err != nil {
		return Error.Wrap(err)
	}
	return nil
}

// Put inserts a new record, fanning the write out to every registered index
// via one Seed, committed atomically with the payload append.
func (v *View) Put(ctx context.Context, key string, value []byte, force bool) (record.DataReal, error) {
	v.mu.RLock()
	indexes := make([]index.TNode, 0, len(v.indexes))
	for _, idx := range v.indexes {
		indexes = append(indexes, idx)
	}
	v.mu.RUnlock()

	if len(indexes) == 0 {
		return record.DataReal{}, Error.Wrap(kinds.Unimplemented)
	}

	seed := record.NewSeed(v, record.DataReal{Key: key, Value: value})

	for _, idx := range indexes {
		idxKey := key
		var idxValue any = value
		if !idx.Primary() {
			extracted, found, err := extractField(value, idx.Name())
			if err != nil {
				return record.DataReal{}, err
			}
			if !found {
				if idx.Null() {
					continue
				}
				return record.DataReal{}, Error.Wrap(kinds.NullNotAllowed)
			}
			stringKey, err := stringifyKey(extracted, idx.KeyType())
			if err != nil {
				return record.DataReal{}, err
			}
			idxKey = stringKey
			idxValue = extracted
		}
		if err := idx.Put(ctx, idxKey, idxValue, seed, force); err != nil {
			return record.DataReal{}, err
		}
	}

	if _, err := seed.Save(); err != nil {
		return record.DataReal{}, err
	}
	return seed.Data(), nil
}

// Get resolves key through the primary index.
func (v *View) Get(ctx context.Context, key string) (record.DataReal, error) {
	primary, err := v.Primary()
	if err != nil {
		return record.DataReal{}, err
	}
	return primary.Get(ctx, key)
}

// GetByIndex resolves key through the named secondary index.
func (v *View) GetByIndex(ctx context.Context, indexName, key string) (record.DataReal, error) {
	v.mu.RLock()
	idx, ok := v.indexes[indexName]
	v.mu.RUnlock()
	if !ok {
		return record.DataReal{}, Error.Wrap(kinds.NotFound)
	}
	return idx.Get(ctx, key)
}

// Del removes the record addressed by key from the primary index and from
// every secondary index whose projected field it satisfies, committing all
// of the tombstones through one Seed.
func (v *View) Del(ctx context.Context, key string) error {
	primary, err := v.Primary()
	if err != nil {
		return err
	}
	existing, err := primary.Get(ctx, key)
	if err != nil {
		return err
	}

	v.mu.RLock()
	indexes := make([]index.TNode, 0, len(v.indexes))
	for _, idx := range v.indexes {
		indexes = append(indexes, idx)
	}
	v.mu.RUnlock()

	seed := record.NewSeed(v, existing)
	for _, idx := range indexes {
		idxKey := key
		if !idx.Primary() {
			extracted, found, err := extractField(existing.Value, idx.Name())
			if err != nil {
				return err
			}
			if !found {
				continue
			}
			stringKey, err := stringifyKey(extracted, idx.KeyType())
			if err != nil {
				return err
			}
			idxKey = stringKey
		}
		if err := idx.Del(ctx, idxKey, seed); err != nil {
			return err
		}
	}
	return seed.Remove()
}

var _ record.ViewWriter = (*View)(nil)
var _ index.Dereferencer = (*View)(nil)
