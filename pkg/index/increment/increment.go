// Package increment implements the monotonic-increment index engine: a
// flat array of 12-byte locator slots addressed by an
// in-memory counter seeded from file length at recovery.
package increment

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/zeebo/errs"

	"github.com/aberic/george/internal/kinds"
	"github.com/aberic/george/pkg/ge"
	"github.com/aberic/george/pkg/index"
	"github.com/aberic/george/pkg/record"
)

// Error is the error class for this package.
var Error = errs.Class("index/increment")

// Index is the monotonic-increment TNode implementation.
type Index struct {
	name      string
	primary   bool
	unique    bool
	null      bool
	createdAt time.Time

	file         *ge.File
	deref        index.Dereferencer
	payloadStart int64

	mu      sync.Mutex
	counter uint64 // next slot number to allocate
}

// Open recovers (or, for a brand-new file, initializes) an Increment index
// backed by file, reconstructing its counter from the file's current length.
// Used as the implicit primary index of a view created with_increment.
func Open(name string, primary bool, file *ge.File, deref index.Dereferencer) (*Index, error) {
	start, err := file.PayloadStart()
	if err != nil {
		return nil, Error.Wrap(err)
	}
	slots := (file.Size() - start) / record.LocatorSize
	if slots < 0 {
		slots = 0
	}
	return &Index{
		name:         name,
		primary:      primary,
		unique:       true,
		null:         false,
		createdAt:    time.Now(),
		file:         file,
		deref:        deref,
		payloadStart: start,
		counter:      uint64(slots) + 1,
	}, nil
}

// Name implements index.TNode.
func (i *Index) Name() string { return i.name }

// Engine implements index.TNode.
func (i *Index) Engine() ge.Engine { return ge.EngineIncrement }

// KeyType implements index.TNode. Increment keys are always the decimal
// string form of the allocated slot number.
func (i *Index) KeyType() index.KeyType { return index.KeyTypeU64 }

// Primary implements index.TNode.
func (i *Index) Primary() bool { return i.primary }

// Unique implements index.TNode.
func (i *Index) Unique() bool { return i.unique }

// Null implements index.TNode.
func (i *Index) Null() bool { return i.null }

// CreatedAt implements index.TNode.
func (i *Index) CreatedAt() time.Time { return i.createdAt }

// slotOffset maps a 1-based slot number to its byte offset in the file.
func (i *Index) slotOffset(slot uint64) int64 {
	return i.payloadStart + int64(slot-1)*record.LocatorSize
}

// Put ignores key for placement — it survives only inside the DataReal
// envelope — and instead reserves the next monotonic slot, eagerly appending
// a zero placeholder so the deferred policy write lands within bounds, then
// sets seed's Increment field to the slot it reserved.
func (i *Index) Put(_ context.Context, _ string, _ any, seed *record.Seed, _ bool) error {
	// The append stays under the counter lock so slot numbers and physical
	// slot positions cannot interleave across concurrent puts.
	i.mu.Lock()
	slot := i.counter
	i.counter++
	offset, err := i.file.Append(make([]byte, record.LocatorSize))
	i.mu.Unlock()
	if err != nil {
		return Error.Wrap(err)
	}
	seed.SetIncrement(slot)
	seed.Register(record.IndexPolicy{
		Engine:       ge.EngineIncrement,
		OriginalKey:  strconv.FormatUint(slot, 10),
		Node:         i.file,
		NodeFilepath: i.file.Path(),
		Seek:         offset,
	})
	return nil
}

// Get parses key as a decimal slot number and dereferences its locator.
func (i *Index) Get(_ context.Context, key string) (record.DataReal, error) {
	slot, err := strconv.ParseUint(key, 10, 64)
	if err != nil || slot == 0 {
		return record.DataReal{}, Error.Wrap(kinds.KeyTypeMismatch)
	}

	buf, err := i.file.ReadAllowNone(i.slotOffset(slot), record.LocatorSize)
	if err != nil {
		return record.DataReal{}, Error.Wrap(err)
	}
	locator, err := record.DecodeLocator(buf)
	if err != nil {
		return record.DataReal{}, Error.Wrap(err)
	}
	if locator.IsZero() {
		return record.DataReal{}, Error.Wrap(kinds.NotFound)
	}
	return i.deref.Dereference(locator)
}

// Del registers a tombstoning write of the zero locator to key's slot.
// Zeroed slots are never reclaimed.
func (i *Index) Del(_ context.Context, key string, seed *record.Seed) error {
	slot, err := strconv.ParseUint(key, 10, 64)
	if err != nil || slot == 0 {
		return Error.Wrap(kinds.KeyTypeMismatch)
	}
	seed.Register(record.IndexPolicy{
		Engine:       ge.EngineIncrement,
		OriginalKey:  key,
		Node:         i.file,
		NodeFilepath: i.file.Path(),
		Seek:         i.slotOffset(slot),
	})
	return nil
}

// Select scans the slot array in order, dereferencing every non-zero
// locator.
func (i *Index) Select(_ context.Context, params index.SelectParams) (index.SelectResult, error) {
	i.mu.Lock()
	total := i.counter
	i.mu.Unlock()

	var result index.SelectResult
	skipped := 0

	visit := func(slot uint64) (stop bool, err error) {
		buf, err := i.file.ReadAllowNone(i.slotOffset(slot), record.LocatorSize)
		if err != nil {
			return false, Error.Wrap(err)
		}
		locator, err := record.DecodeLocator(buf)
		if err != nil {
			return false, Error.Wrap(err)
		}
		if locator.IsZero() {
			return false, nil
		}
		result.TotalScanned++
		value, err := i.deref.Dereference(locator)
		if err != nil {
			return false, nil //nolint:nilerr // an unreadable locator is skipped, counted only in TotalScanned
		}

		key := strconv.FormatUint(slot, 10)
		if params.Start != nil && key < string(params.Start) {
			return false, nil
		}
		if params.End != nil && key > string(params.End) {
			return false, nil
		}
		if params.Predicate != nil && !params.Predicate(value) {
			return false, nil
		}
		if skipped < params.Skip {
			skipped++
			return false, nil
		}
		if params.Limit > 0 && result.Count >= params.Limit {
			return true, nil
		}

		if params.Delete && params.OnDelete != nil {
			if err := params.OnDelete(key, value); err != nil {
				return false, err
			}
		}
		result.Values = append(result.Values, value)
		result.Count++
		return false, nil
	}

	if params.Left {
		for slot := uint64(1); slot < total; slot++ {
			stop, err := visit(slot)
			if err != nil {
				return result, err
			}
			if stop {
				break
			}
		}
	} else {
		for slot := total - 1; slot > 0; slot-- {
			stop, err := visit(slot)
			if err != nil {
				return result, err
			}
			if stop {
				break
			}
		}
	}
	return result, nil
}

var _ index.TNode = (*Index)(nil)
