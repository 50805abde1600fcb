// Package index defines the capability contracts shared by every george
// index engine (Disk, Increment, Sequence, Memory) and the small set of
// supporting types (key types, select parameters/results) the View query
// executor and the engines communicate through.
//
// Deliberately flat: the four engines are a tagged set of concrete types
// implementing the same interface, not a class hierarchy.
package index

import (
	"context"
	"time"

	"github.com/zeebo/errs"

	"github.com/aberic/george/pkg/ge"
	"github.com/aberic/george/pkg/record"
)

// Error is the error class for this package and embedded by each engine
// subpackage.
var Error = errs.Class("index")

// KeyType identifies the declared type of an index's key, used both to fold
// keys into the Disk/Sequence engines' keyspace and to coerce condition
// values for comparison.
type KeyType uint8

// The complete set of supported key types.
const (
	KeyTypeString KeyType = iota + 1
	KeyTypeU64
	KeyTypeI64
	KeyTypeF64
	KeyTypeBool
)

func (k KeyType) String() string {
	switch k {
	case KeyTypeString:
		return "string"
	case KeyTypeU64:
		return "u64"
	case KeyTypeI64:
		return "i64"
	case KeyTypeF64:
		return "f64"
	case KeyTypeBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Dereferencer turns a Locator minted by some view back into the DataReal it
// names. Every engine is handed one at construction time so Get/Select can
// resolve slots without owning the view outright — a non-owning reference,
// not a parent pointer, matching the weak-handle relationship views and
// indexes hold with each other.
type Dereferencer interface {
	Dereference(locator record.Locator) (record.DataReal, error)
}

// Predicate reports whether a dereferenced record satisfies a query; the
// condition engine builds these, index engines only evaluate them.
type Predicate func(record.DataReal) bool

// SelectParams bounds and shapes one Select call.
type SelectParams struct {
	// Left selects ascending (true) or descending (false) key order.
	Left bool
	// Start/End bound the scan lexically by key, applied as a post-filter
	// since Disk-engine order is hash order, not key order. Nil means
	// unbounded.
	Start, End []byte
	Skip       int
	Limit      int
	// Delete, when true, invokes OnDelete for every record included in the
	// result instead of merely returning it.
	Delete    bool
	Predicate Predicate
	OnDelete  func(key string, value record.DataReal) error
}

// SelectResult is what Select reports: how many slots were actually
// dereferenced (TotalScanned), how many passed every filter and were kept
// (Count, <= len(Values)), and the kept records themselves.
type SelectResult struct {
	TotalScanned int
	Count        int
	Values       []record.DataReal
}

// TNode is the capability set every index engine implements.
type TNode interface {
	Name() string
	Engine() ge.Engine
	KeyType() KeyType
	Primary() bool
	Unique() bool
	Null() bool
	CreatedAt() time.Time

	// Put computes where key's locator would go and registers an
	// IndexPolicy on seed; it does not write the payload. force lets an
	// upsert bypass a unique-violation on an existing key.
	Put(ctx context.Context, key string, value any, seed *record.Seed, force bool) error
	// Get resolves key to a locator and dereferences it through the owning
	// view.
	Get(ctx context.Context, key string) (record.DataReal, error)
	// Del registers a tombstoning IndexPolicy on seed for key.
	Del(ctx context.Context, key string, seed *record.Seed) error
	Select(ctx context.Context, params SelectParams) (SelectResult, error)
}
