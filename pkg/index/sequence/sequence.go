// Package sequence implements the 64-bit trie index engine: a
// four-level, fan-out-65536 variant of the Disk engine. Because its keyspace
// is the full 64 bits of a monotonic numeric key, the fold is exact and no
// level-5 collision chain is needed — the level-4 slot holds the locator
// itself.
package sequence

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/zeebo/errs"

	"github.com/aberic/george/internal/kinds"
	"github.com/aberic/george/pkg/ge"
	"github.com/aberic/george/pkg/index"
	"github.com/aberic/george/pkg/record"
)

// Error is the error class for this package.
var Error = errs.Class("index/sequence")

const (
	fanOut        = 65536
	pointerSize   = 8
	pointerNode   = fanOut * pointerSize // level 1-3 node: child pointers
	leafSlotSize  = record.LocatorSize
	leafNode      = fanOut * leafSlotSize // level 4 node: locators directly
	levels        = 4
)

// Index is the Sequence engine TNode implementation.
type Index struct {
	name      string
	primary   bool
	unique    bool
	null      bool
	createdAt time.Time

	file       *ge.File
	deref      index.Dereferencer
	rootOffset int64
}

// New allocates a fresh root node for a brand-new Sequence index and returns
// the offset the caller must persist as the index entity's root-node-bytes.
func New(name string, primary, unique, null bool, file *ge.File, deref index.Dereferencer) (*Index, int64, error) {
	rootOffset, err := file.Append(make([]byte, pointerNode))
	if err != nil {
		return nil, 0, Error.Wrap(err)
	}
	return Open(name, primary, unique, null, file, deref, rootOffset), rootOffset, nil
}

// Open reattaches to an existing Sequence index given its recovered root
// offset.
func Open(name string, primary, unique, null bool, file *ge.File, deref index.Dereferencer, rootOffset int64) *Index {
	return &Index{
		name:       name,
		primary:    primary,
		unique:     unique,
		null:       null,
		createdAt:  time.Now(),
		file:       file,
		deref:      deref,
		rootOffset: rootOffset,
	}
}

// Name implements index.TNode.
func (i *Index) Name() string { return i.name }

// Engine implements index.TNode.
func (i *Index) Engine() ge.Engine { return ge.EngineSequence }

// KeyType implements index.TNode. Sequence only accepts monotonic numeric
// keys.
func (i *Index) KeyType() index.KeyType { return index.KeyTypeU64 }

// Primary implements index.TNode. A view may declare a Sequence index as
// its primary (a natural monotonic numeric key); New/Open pass that through.
func (i *Index) Primary() bool { return i.primary }

// Unique implements index.TNode.
func (i *Index) Unique() bool { return i.unique }

// Null implements index.TNode.
func (i *Index) Null() bool { return i.null }

// CreatedAt implements index.TNode.
func (i *Index) CreatedAt() time.Time { return i.createdAt }

func divisorFor(level int) uint64 {
	d := uint64(1)
	for n := 0; n < levels-level; n++ {
		d *= fanOut
	}
	return d
}

func encode8(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

// Put traverses the trie, eagerly appending any missing intermediate node
// (harmless if the enclosing Seed never commits), and registers exactly one
// deferred IndexPolicy writing the locator straight into the level-4 slot.
func (i *Index) Put(_ context.Context, key string, value any, seed *record.Seed, force bool) error {
	if value == nil && !i.null {
		return Error.Wrap(kinds.NullNotAllowed)
	}

	hash, err := index.Fold64(index.KeyTypeU64, key)
	if err != nil {
		return Error.Wrap(err)
	}

	nodeOffset := i.rootOffset
	flexible := hash

	for level := 1; level <= levels; level++ {
		divisor := divisorFor(level)
		idx := flexible / divisor
		flexible %= divisor

		if level < levels {
			so := nodeOffset + int64(idx)*pointerSize
			raw, err := i.file.Read(so, pointerSize)
			if err != nil {
				return Error.Wrap(err)
			}
			ptr := binary.BigEndian.Uint64(raw)
			if ptr == 0 {
				childSize := pointerNode
				if level+1 == levels {
					childSize = leafNode
				}
				childOffset, err := i.file.Append(make([]byte, childSize))
				if err != nil {
					return Error.Wrap(err)
				}
				seed.Register(record.IndexPolicy{
					Engine: ge.EngineSequence, OriginalKey: key,
					Node: i.file, NodeFilepath: i.file.Path(),
					Seek: so, CustomBytes: encode8(uint64(childOffset)),
				})
				ptr = uint64(childOffset)
			}
			nodeOffset = int64(ptr)
			continue
		}

		leafOffset := nodeOffset + int64(idx)*leafSlotSize
		existing, err := i.file.Read(leafOffset, leafSlotSize)
		if err != nil {
			return Error.Wrap(err)
		}
		existingLocator, err := record.DecodeLocator(existing)
		if err != nil {
			return Error.Wrap(err)
		}
		if !existingLocator.IsZero() && i.unique && !force {
			return Error.Wrap(kinds.DataExists)
		}
		seed.Register(record.IndexPolicy{
			Engine: ge.EngineSequence, OriginalKey: key,
			Node: i.file, NodeFilepath: i.file.Path(),
			Seek: leafOffset,
		})
		return nil
	}
	return nil
}

// locate walks levels 1..4 read-only, returning the level-4 leaf slot's
// current content. found is false if any intermediate node was never
// allocated, meaning the key was never inserted.
func (i *Index) locate(hash uint64) (leafOffset int64, found bool, err error) {
	nodeOffset := i.rootOffset
	flexible := hash

	for level := 1; level <= levels; level++ {
		divisor := divisorFor(level)
		idx := flexible / divisor
		flexible %= divisor

		if level < levels {
			so := nodeOffset + int64(idx)*pointerSize
			raw, err := i.file.Read(so, pointerSize)
			if err != nil {
				return 0, false, Error.Wrap(err)
			}
			ptr := binary.BigEndian.Uint64(raw)
			if ptr == 0 {
				return 0, false, nil
			}
			nodeOffset = int64(ptr)
			continue
		}
		return nodeOffset + int64(idx)*leafSlotSize, true, nil
	}
	return 0, false, nil
}

// Get implements index.TNode.
func (i *Index) Get(_ context.Context, key string) (record.DataReal, error) {
	hash, err := index.Fold64(index.KeyTypeU64, key)
	if err != nil {
		return record.DataReal{}, Error.Wrap(err)
	}
	leafOffset, found, err := i.locate(hash)
	if err != nil {
		return record.DataReal{}, err
	}
	if !found {
		return record.DataReal{}, Error.Wrap(kinds.NotFound)
	}
	buf, err := i.file.Read(leafOffset, leafSlotSize)
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

// Del implements index.TNode, zeroing the level-4 slot in place.
func (i *Index) Del(_ context.Context, key string, seed *record.Seed) error {
	hash, err := index.Fold64(index.KeyTypeU64, key)
	if err != nil {
		return Error.Wrap(err)
	}
	leafOffset, found, err := i.locate(hash)
	if err != nil {
		return err
	}
	if !found {
		return Error.Wrap(kinds.NotFound)
	}
	buf, err := i.file.Read(leafOffset, leafSlotSize)
	if err != nil {
		return Error.Wrap(err)
	}
	locator, err := record.DecodeLocator(buf)
	if err != nil {
		return Error.Wrap(err)
	}
	if locator.IsZero() {
		return Error.Wrap(kinds.NotFound)
	}
	seed.Register(record.IndexPolicy{
		Engine: ge.EngineSequence, OriginalKey: key,
		Node: i.file, NodeFilepath: i.file.Path(),
		Seek: leafOffset,
	})
	return nil
}

// Select walks every allocated node in key order, pruning only on already
// allocated pointers, dereferencing each live locator and applying params
// in order.
func (i *Index) Select(_ context.Context, params index.SelectParams) (index.SelectResult, error) {
	var result index.SelectResult
	skipped := 0

	visit := func(locator record.Locator) (bool, error) {
		value, derefErr := i.deref.Dereference(locator)
		result.TotalScanned++
		if derefErr != nil {
			return false, nil
		}
		if params.Start != nil && value.Key < string(params.Start) {
			return false, nil
		}
		if params.End != nil && value.Key > string(params.End) {
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
			if err := params.OnDelete(value.Key, value); err != nil {
				return false, err
			}
		}
		result.Values = append(result.Values, value)
		result.Count++
		return false, nil
	}

	_, err := i.walk(i.rootOffset, 1, params.Left, visit)
	return result, err
}

func (i *Index) walk(nodeOffset int64, level int, left bool, visit func(record.Locator) (bool, error)) (bool, error) {
	if level < levels {
		raw, err := i.file.Read(nodeOffset, pointerNode)
		if err != nil {
			return false, Error.Wrap(err)
		}
		for n := 0; n < fanOut; n++ {
			idx := n
			if !left {
				idx = fanOut - 1 - n
			}
			ptr := binary.BigEndian.Uint64(raw[idx*pointerSize : idx*pointerSize+pointerSize])
			if ptr == 0 {
				continue
			}
			stop, err := i.walk(int64(ptr), level+1, left, visit)
			if err != nil || stop {
				return stop, err
			}
		}
		return false, nil
	}

	raw, err := i.file.Read(nodeOffset, leafNode)
	if err != nil {
		return false, Error.Wrap(err)
	}
	for n := 0; n < fanOut; n++ {
		idx := n
		if !left {
			idx = fanOut - 1 - n
		}
		slot := raw[idx*leafSlotSize : idx*leafSlotSize+leafSlotSize]
		locator, err := record.DecodeLocator(slot)
		if err != nil {
			return false, Error.Wrap(err)
		}
		if locator.IsZero() {
			continue
		}
		stop, err := visit(locator)
		if err != nil || stop {
			return stop, err
		}
	}
	return false, nil
}

var _ index.TNode = (*Index)(nil)
