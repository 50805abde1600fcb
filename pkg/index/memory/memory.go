// Package memory implements the in-RAM index engine: a
// concurrent-safe map that never touches a ge file and never participates in
// a Seed commit. It backs Pages and any index explicitly declared in-memory.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/zeebo/errs"

	"github.com/aberic/george/internal/kinds"
	"github.com/aberic/george/pkg/ge"
	"github.com/aberic/george/pkg/index"
	"github.com/aberic/george/pkg/record"
)

// Error is the error class for this package.
var Error = errs.Class("index/memory")

type entry struct {
	value     []byte
	tombstone bool
}

// Index is the in-memory TNode implementation. It stores values directly —
// there is no owning view to dereference through.
type Index struct {
	name      string
	keyType   index.KeyType
	primary   bool
	unique    bool
	null      bool
	createdAt time.Time

	mu   sync.RWMutex
	data map[string]*entry
}

// New constructs an empty in-memory index.
func New(name string, keyType index.KeyType, primary, unique, null bool) *Index {
	return &Index{
		name:      name,
		keyType:   keyType,
		primary:   primary,
		unique:    unique,
		null:      null,
		createdAt: time.Now(),
		data:      make(map[string]*entry),
	}
}

// Name implements index.TNode.
func (i *Index) Name() string { return i.name }

// Engine implements index.TNode.
func (i *Index) Engine() ge.Engine { return ge.EngineNone }

// KeyType implements index.TNode.
func (i *Index) KeyType() index.KeyType { return i.keyType }

// Primary implements index.TNode.
func (i *Index) Primary() bool { return i.primary }

// Unique implements index.TNode.
func (i *Index) Unique() bool { return i.unique }

// Null implements index.TNode.
func (i *Index) Null() bool { return i.null }

// CreatedAt implements index.TNode.
func (i *Index) CreatedAt() time.Time { return i.createdAt }

// Put stores value (expected []byte) under key, bypassing Seed entirely:
// there is no payload append and no crash-consistency seam to preserve.
func (i *Index) Put(_ context.Context, key string, value any, _ *record.Seed, force bool) error {
	if value == nil && !i.null {
		return Error.Wrap(kinds.NullNotAllowed)
	}
	bytesValue, _ := value.([]byte)

	i.mu.Lock()
	defer i.mu.Unlock()

	if existing, ok := i.data[key]; ok && !existing.tombstone && i.unique && !force {
		return Error.Wrap(kinds.DataExists)
	}
	i.data[key] = &entry{value: bytesValue}
	return nil
}

// Get implements index.TNode.
func (i *Index) Get(_ context.Context, key string) (record.DataReal, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	e, ok := i.data[key]
	if !ok || e.tombstone {
		return record.DataReal{}, Error.Wrap(kinds.NotFound)
	}
	return record.DataReal{Key: key, Value: e.value}, nil
}

// Del implements index.TNode. The seed argument is accepted for interface
// conformance but unused: removal is immediate, matching Put.
func (i *Index) Del(_ context.Context, key string, _ *record.Seed) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	e, ok := i.data[key]
	if !ok {
		return Error.Wrap(kinds.NotFound)
	}
	e.tombstone = true
	return nil
}

// Select implements index.TNode by sorting a snapshot of live keys and
// applying bounds/predicate/skip/limit over it.
func (i *Index) Select(_ context.Context, params index.SelectParams) (index.SelectResult, error) {
	i.mu.RLock()
	keys := make([]string, 0, len(i.data))
	for k, e := range i.data {
		if !e.tombstone {
			keys = append(keys, k)
		}
	}
	i.mu.RUnlock()

	sort.Strings(keys)
	if !params.Left {
		for l, r := 0, len(keys)-1; l < r; l, r = l+1, r-1 {
			keys[l], keys[r] = keys[r], keys[l]
		}
	}

	var result index.SelectResult
	skipped := 0
	for _, k := range keys {
		if params.Start != nil && k < string(params.Start) {
			continue
		}
		if params.End != nil && k > string(params.End) {
			continue
		}

		i.mu.RLock()
		e, ok := i.data[k]
		i.mu.RUnlock()
		if !ok || e.tombstone {
			continue
		}
		result.TotalScanned++

		value := record.DataReal{Key: k, Value: e.value}
		if params.Predicate != nil && !params.Predicate(value) {
			continue
		}
		if skipped < params.Skip {
			skipped++
			continue
		}
		if params.Limit > 0 && result.Count >= params.Limit {
			break
		}

		if params.Delete {
			i.mu.Lock()
			if e2, ok := i.data[k]; ok {
				e2.tombstone = true
			}
			i.mu.Unlock()
			if params.OnDelete != nil {
				if err := params.OnDelete(k, value); err != nil {
					return result, err
				}
			}
		}

		result.Values = append(result.Values, value)
		result.Count++
	}
	return result, nil
}

var _ index.TNode = (*Index)(nil)
