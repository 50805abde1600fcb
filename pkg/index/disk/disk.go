// Package disk implements the hash-trie index engine: a five-level
// tree over a 32-bit folded key. Levels 1-4 are fan-out-256 nodes of 8-byte
// slots; levels 1-3 hold child-node pointers, level 4 holds the head offset
// of a level-5 collision chain that resolves hash collisions by comparing a
// stored MD5 prefix of the original key.
package disk

import (
	"bytes"
	"context"
	"crypto/md5" //nolint:gosec // used only as a fixed-width collision discriminator, not for security
	"encoding/binary"
	"time"

	"github.com/zeebo/errs"

	"github.com/aberic/george/internal/kinds"
	"github.com/aberic/george/pkg/ge"
	"github.com/aberic/george/pkg/index"
	"github.com/aberic/george/pkg/record"
)

// Error is the error class for this package.
var Error = errs.Class("index/disk")

const (
	fanOut   = 256
	slotSize = 8
	nodeSize = fanOut * slotSize // 2048 bytes per level-1..4 node
	cellSize = 16 + record.LocatorSize + 8 // md5 prefix + locator + next offset = 36 bytes
	levels   = 4
)

// Index is the Disk engine TNode implementation.
type Index struct {
	name      string
	keyType   index.KeyType
	primary   bool
	unique    bool
	null      bool
	createdAt time.Time

	file       *ge.File
	deref      index.Dereferencer
	rootOffset int64
}

// New allocates a fresh root node for a brand-new Disk index and returns the
// offset the caller must persist as the index entity's root-node-bytes.
func New(name string, keyType index.KeyType, primary, unique, null bool, file *ge.File, deref index.Dereferencer) (*Index, int64, error) {
	rootOffset, err := file.Append(make([]byte, nodeSize))
	if err != nil {
		return nil, 0, Error.Wrap(err)
	}
	return Open(name, keyType, primary, unique, null, file, deref, rootOffset), rootOffset, nil
}

// Open reattaches to an existing Disk index given the root offset recovered
// from its index entity description.
func Open(name string, keyType index.KeyType, primary, unique, null bool, file *ge.File, deref index.Dereferencer, rootOffset int64) *Index {
	return &Index{
		name:       name,
		keyType:    keyType,
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
func (i *Index) Engine() ge.Engine { return ge.EngineDisk }

// KeyType implements index.TNode.
func (i *Index) KeyType() index.KeyType { return i.keyType }

// Primary implements index.TNode. Disk indexes are never the implicit
// primary (that role belongs to Increment), but a view may still declare a
// Disk index as primary explicitly (e.g. a natural string key), in which
// case the view passes primary=true through New/Open and this reports it.
func (i *Index) Primary() bool { return i.primary }

// Unique implements index.TNode.
func (i *Index) Unique() bool { return i.unique }

// Null implements index.TNode.
func (i *Index) Null() bool { return i.null }

// CreatedAt implements index.TNode.
func (i *Index) CreatedAt() time.Time { return i.createdAt }

func slotOffsetAt(nodeOffset int64, idx uint32) int64 {
	return nodeOffset + int64(idx)*slotSize
}

func divisorFor(level int) uint32 {
	d := uint32(1)
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

// Put traverses the trie, eagerly appending any missing intermediate node or
// collision cell (structural changes, harmless if the enclosing Seed never
// commits), and registers exactly one deferred IndexPolicy naming the final
// slot or cell the locator belongs in.
func (i *Index) Put(_ context.Context, key string, value any, seed *record.Seed, force bool) error {
	if value == nil && !i.null {
		return Error.Wrap(kinds.NullNotAllowed)
	}

	hash, err := index.Fold32(i.keyType, key)
	if err != nil {
		return Error.Wrap(err)
	}
	md5sum := md5.Sum([]byte(key)) //nolint:gosec

	nodeOffset := i.rootOffset
	flexible := hash

	for level := 1; level <= levels; level++ {
		divisor := divisorFor(level)
		idx := flexible / divisor
		flexible %= divisor
		so := slotOffsetAt(nodeOffset, idx)

		raw, err := i.file.Read(so, slotSize)
		if err != nil {
			return Error.Wrap(err)
		}
		ptr := binary.BigEndian.Uint64(raw)

		if level < levels {
			if ptr == 0 {
				childOffset, err := i.file.Append(make([]byte, nodeSize))
				if err != nil {
					return Error.Wrap(err)
				}
				seed.Register(record.IndexPolicy{
					Engine: ge.EngineDisk, OriginalKey: key,
					Node: i.file, NodeFilepath: i.file.Path(),
					Seek: so, CustomBytes: encode8(uint64(childOffset)),
				})
				ptr = uint64(childOffset)
			}
			nodeOffset = int64(ptr)
			continue
		}

		return i.putCollision(key, md5sum, so, ptr, seed, force)
	}
	return nil
}

// putCollision walks (or starts) the level-5 collision chain for the bucket
// at slot so, whose current head pointer is ptr.
func (i *Index) putCollision(key string, md5sum [16]byte, so int64, ptr uint64, seed *record.Seed, force bool) error {
	cellOffset := int64(ptr)
	var prevCellOffset int64 = -1

	for cellOffset != 0 {
		cell, err := i.file.Read(cellOffset, cellSize)
		if err != nil {
			return Error.Wrap(err)
		}
		if bytes.Equal(cell[0:16], md5sum[:]) {
			existing, err := record.DecodeLocator(cell[16 : 16+record.LocatorSize])
			if err != nil {
				return Error.Wrap(err)
			}
			if !existing.IsZero() && i.unique && !force {
				return Error.Wrap(kinds.DataExists)
			}
			seed.Register(record.IndexPolicy{
				Engine: ge.EngineDisk, OriginalKey: key,
				Node: i.file, NodeFilepath: i.file.Path(),
				Seek: cellOffset + 16,
			})
			return nil
		}
		prevCellOffset = cellOffset
		cellOffset = int64(binary.BigEndian.Uint64(cell[28:36]))
	}

	newCell := make([]byte, cellSize)
	copy(newCell[0:16], md5sum[:])
	newCellOffset, err := i.file.Append(newCell)
	if err != nil {
		return Error.Wrap(err)
	}

	if prevCellOffset == -1 {
		seed.Register(record.IndexPolicy{
			Engine: ge.EngineDisk, OriginalKey: key,
			Node: i.file, NodeFilepath: i.file.Path(),
			Seek: so, CustomBytes: encode8(uint64(newCellOffset)),
		})
	} else {
		seed.Register(record.IndexPolicy{
			Engine: ge.EngineDisk, OriginalKey: key,
			Node: i.file, NodeFilepath: i.file.Path(),
			Seek: prevCellOffset + 28, CustomBytes: encode8(uint64(newCellOffset)),
		})
	}
	seed.Register(record.IndexPolicy{
		Engine: ge.EngineDisk, OriginalKey: key,
		Node: i.file, NodeFilepath: i.file.Path(),
		Seek: newCellOffset + 16,
	})
	return nil
}

// locate walks levels 1..4 read-only, returning the level-4 bucket's head
// collision-chain pointer. found is false if any intermediate node was
// never allocated, meaning the key was never inserted.
func (i *Index) locate(hash uint32) (head uint64, found bool, err error) {
	nodeOffset := i.rootOffset
	flexible := hash

	for level := 1; level <= levels; level++ {
		divisor := divisorFor(level)
		idx := flexible / divisor
		flexible %= divisor
		so := slotOffsetAt(nodeOffset, idx)

		raw, err := i.file.Read(so, slotSize)
		if err != nil {
			return 0, false, Error.Wrap(err)
		}
		ptr := binary.BigEndian.Uint64(raw)
		if level == levels {
			return ptr, true, nil
		}
		if ptr == 0 {
			return 0, false, nil
		}
		nodeOffset = int64(ptr)
	}
	return 0, false, nil
}

func (i *Index) findCell(head uint64, md5sum [16]byte) (cellOffset int64, locator record.Locator, ok bool, err error) {
	off := int64(head)
	for off != 0 {
		cell, err := i.file.Read(off, cellSize)
		if err != nil {
			return 0, record.Locator{}, false, Error.Wrap(err)
		}
		if bytes.Equal(cell[0:16], md5sum[:]) {
			loc, err := record.DecodeLocator(cell[16 : 16+record.LocatorSize])
			if err != nil {
				return 0, record.Locator{}, false, Error.Wrap(err)
			}
			if loc.IsZero() {
				return off, loc, false, nil
			}
			return off, loc, true, nil
		}
		off = int64(binary.BigEndian.Uint64(cell[28:36]))
	}
	return 0, record.Locator{}, false, nil
}

// Get implements index.TNode.
func (i *Index) Get(_ context.Context, key string) (record.DataReal, error) {
	hash, err := index.Fold32(i.keyType, key)
	if err != nil {
		return record.DataReal{}, Error.Wrap(err)
	}
	head, found, err := i.locate(hash)
	if err != nil {
		return record.DataReal{}, err
	}
	if !found || head == 0 {
		return record.DataReal{}, Error.Wrap(kinds.NotFound)
	}
	md5sum := md5.Sum([]byte(key)) //nolint:gosec
	_, locator, ok, err := i.findCell(head, md5sum)
	if err != nil {
		return record.DataReal{}, err
	}
	if !ok {
		return record.DataReal{}, Error.Wrap(kinds.NotFound)
	}
	return i.deref.Dereference(locator)
}

// Del implements index.TNode: it zeroes only the locator field of the
// matching cell, leaving the MD5 prefix and chain link intact so the chain
// remains walkable and the slot is available for reuse by a future Put.
func (i *Index) Del(_ context.Context, key string, seed *record.Seed) error {
	hash, err := index.Fold32(i.keyType, key)
	if err != nil {
		return Error.Wrap(err)
	}
	head, found, err := i.locate(hash)
	if err != nil {
		return err
	}
	if !found || head == 0 {
		return Error.Wrap(kinds.NotFound)
	}
	md5sum := md5.Sum([]byte(key)) //nolint:gosec
	cellOffset, _, ok, err := i.findCell(head, md5sum)
	if err != nil {
		return err
	}
	if !ok {
		return Error.Wrap(kinds.NotFound)
	}
	seed.Register(record.IndexPolicy{
		Engine: ge.EngineDisk, OriginalKey: key,
		Node: i.file, NodeFilepath: i.file.Path(),
		Seek: cellOffset + 16,
	})
	return nil
}

// Select walks every allocated node and collision chain in hash order,
// pruning only on already-allocated pointers (never on the full 2^32
// keyspace), dereferencing each live locator and applying params in order.
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
	raw, err := i.file.Read(nodeOffset, nodeSize)
	if err != nil {
		return false, Error.Wrap(err)
	}

	for n := 0; n < fanOut; n++ {
		idx := n
		if !left {
			idx = fanOut - 1 - n
		}
		ptr := binary.BigEndian.Uint64(raw[idx*slotSize : idx*slotSize+slotSize])
		if ptr == 0 {
			continue
		}
		var stop bool
		if level < levels {
			stop, err = i.walk(int64(ptr), level+1, left, visit)
		} else {
			stop, err = i.walkChain(int64(ptr), left, visit)
		}
		if err != nil || stop {
			return stop, err
		}
	}
	return false, nil
}

func (i *Index) walkChain(head int64, left bool, visit func(record.Locator) (bool, error)) (bool, error) {
	var cells [][]byte
	off := head
	for off != 0 {
		cell, err := i.file.Read(off, cellSize)
		if err != nil {
			return false, Error.Wrap(err)
		}
		cells = append(cells, cell)
		off = int64(binary.BigEndian.Uint64(cell[28:36]))
	}
	if !left {
		for l, r := 0, len(cells)-1; l < r; l, r = l+1, r-1 {
			cells[l], cells[r] = cells[r], cells[l]
		}
	}
	for _, cell := range cells {
		loc, err := record.DecodeLocator(cell[16 : 16+record.LocatorSize])
		if err != nil {
			return false, Error.Wrap(err)
		}
		if loc.IsZero() {
			continue
		}
		stop, err := visit(loc)
		if err != nil || stop {
			return stop, err
		}
	}
	return false, nil
}

var _ index.TNode = (*Index)(nil)
