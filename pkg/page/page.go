// Package page implements the Page abstraction: a GE-file-backed
// in-memory keyed store. Only metadata survives a restart — the node map
// itself is volatile, rebuilt empty on recovery, per the Memory engine's own
// contract.
package page

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zeebo/errs"

	"github.com/aberic/george/internal/kinds"
	"github.com/aberic/george/pkg/ge"
	"github.com/aberic/george/pkg/index"
	"github.com/aberic/george/pkg/index/memory"
	"github.com/aberic/george/pkg/record"
)

// Error is the error class for this package.
var Error = errs.Class("page")

type description struct {
	Name       string    `json:"name"`
	Comment    string    `json:"comment"`
	SizeHintMB int       `json:"size_hint_mb"`
	TTLSecs    int64     `json:"ttl_secs"`
	CreateTime time.Time `json:"create_time"`
}

// Page is one named in-memory store.
type Page struct {
	mu sync.RWMutex

	file       *ge.File
	name       string
	comment    string
	sizeHintMB int // 0 means unbounded
	ttlSecs    int64 // 0 means permanent
	createTime time.Time

	data *memory.Index
}

// Create initializes a brand-new page rooted at dir.
func Create(dir, name, comment string, sizeHintMB int, ttlSecs int64) (*Page, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, Error.Wrap(kinds.IOError)
	}
	now := time.Now()
	encoded, err := json.Marshal(description{
		Name: name, Comment: comment, SizeHintMB: sizeHintMB, TTLSecs: ttlSecs, CreateTime: now,
	})
	if err != nil {
		return nil, Error.Wrap(kinds.EncodingError)
	}
	filePath := filepath.Join(dir, "page.ge")
	file, err := ge.Create(filePath, ge.TagPage, ge.EngineNone, encoded)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return &Page{
		file: file, name: name, comment: comment,
		sizeHintMB: sizeHintMB, ttlSecs: ttlSecs, createTime: now,
		data: memory.New(name, index.KeyTypeString, true, true, true),
	}, nil
}

// Recover reopens an existing page's metadata rooted at dir. Its contents
// are empty until repopulated — the Memory engine never persists.
func Recover(dir string) (*Page, error) {
	filePath := filepath.Join(dir, "page.ge")
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
	return &Page{
		file: file, name: desc.Name, comment: desc.Comment,
		sizeHintMB: desc.SizeHintMB, ttlSecs: desc.TTLSecs, createTime: desc.CreateTime,
		data: memory.New(desc.Name, index.KeyTypeString, true, true, true),
	}, nil
}

// Name returns the page's current name.
func (p *Page) Name() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.name
}

// Comment returns the page's current comment.
func (p *Page) Comment() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.comment
}

// SizeHintMB returns the configured size hint; 0 means unbounded.
func (p *Page) SizeHintMB() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sizeHintMB
}

// TTLSecs returns the configured entry lifetime; 0 means permanent.
func (p *Page) TTLSecs() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ttlSecs
}

// CreateTime returns the page's creation time.
func (p *Page) CreateTime() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.createTime
}

// Modify renames the page and/or changes its comment.
func (p *Page) Modify(newName, newComment string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.name = newName
	p.comment = newComment
	encoded, err := json.Marshal(description{
		Name: p.name, Comment: p.comment, SizeHintMB: p.sizeHintMB,
		TTLSecs: p.ttlSecs, CreateTime: p.createTime,
	})
	if err != nil {
		return Error.Wrap(kinds.EncodingError)
	}
	if err := p.file.Modify(encoded); err != nil {
		return Error.Wrap(err)
	}
	return nil
}

func encodeEntry(value []byte) []byte {
	buf := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(buf[:8], uint64(time.Now().UnixNano()))
	copy(buf[8:], value)
	return buf
}

func decodeEntry(buf []byte) (insertedAt time.Time, value []byte) {
	if len(buf) < 8 {
		return time.Time{}, nil
	}
	nanos := int64(binary.BigEndian.Uint64(buf[:8]))
	return time.Unix(0, nanos), buf[8:]
}

func (p *Page) expired(insertedAt time.Time) bool {
	p.mu.RLock()
	ttl := p.ttlSecs
	p.mu.RUnlock()
	if ttl == 0 {
		return false
	}
	return time.Since(insertedAt) > time.Duration(ttl)*time.Second
}

// Put stores value under key, stamping it with the current time for later
// TTL eviction.
func (p *Page) Put(ctx context.Context, key string, value []byte, force bool) error {
	return p.data.Put(ctx, key, encodeEntry(value), nil, force)
}

// Get returns the value stored under key, evicting and reporting NotFound
// if its TTL has elapsed since insertion.
func (p *Page) Get(ctx context.Context, key string) ([]byte, error) {
	rec, err := p.data.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	insertedAt, value := decodeEntry(rec.Value)
	if p.expired(insertedAt) {
		_ = p.data.Del(ctx, key, nil)
		return nil, Error.Wrap(kinds.NotFound)
	}
	return value, nil
}

// Remove deletes key unconditionally.
func (p *Page) Remove(ctx context.Context, key string) error {
	return p.data.Del(ctx, key, nil)
}

// Select scans the page applying TTL eviction on top of params, returning
// values with their storage-internal timestamp prefix stripped.
func (p *Page) Select(ctx context.Context, params index.SelectParams) (index.SelectResult, error) {
	wrapped := params
	userPredicate := params.Predicate
	wrapped.Predicate = func(rec record.DataReal) bool {
		insertedAt, value := decodeEntry(rec.Value)
		if p.expired(insertedAt) {
			_ = p.data.Del(ctx, rec.Key, nil)
			return false
		}
		if userPredicate == nil {
			return true
		}
		return userPredicate(record.DataReal{Key: rec.Key, Value: value})
	}

	result, err := p.data.Select(ctx, wrapped)
	if err != nil {
		return result, err
	}
	for i, rec := range result.Values {
		_, value := decodeEntry(rec.Value)
		result.Values[i] = record.DataReal{Key: rec.Key, Value: value}
	}
	return result, nil
}

// Sweep removes every entry whose TTL has elapsed, returning how many were
// evicted. Called periodically by the master's worker pool; eviction also
// happens lazily on Get/Select regardless of whether Sweep ever runs.
func (p *Page) Sweep(ctx context.Context) (int, error) {
	p.mu.RLock()
	ttl := p.ttlSecs
	p.mu.RUnlock()
	if ttl == 0 {
		return 0, nil
	}

	result, err := p.data.Select(ctx, index.SelectParams{Left: true})
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, rec := range result.Values {
		insertedAt, _ := decodeEntry(rec.Value)
		if p.expired(insertedAt) {
			if err := p.data.Del(ctx, rec.Key, nil); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}
