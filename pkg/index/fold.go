package index

import (
	"hash/fnv"
	"math"
	"strconv"

	"github.com/aberic/george/internal/kinds"
)

// Fold32 reduces key into the Disk engine's 32-bit keyspace according to
// keyType. String keys use FNV-1a over their UTF-8 bytes — a documented,
// stable, allocation-free fold that must never change across versions, or
// existing node files stop resolving; numeric keys fold directly.
func Fold32(keyType KeyType, key string) (uint32, error) {
	switch keyType {
	case KeyTypeString:
		h := fnv.New32a()
		_, _ = h.Write([]byte(key))
		return h.Sum32(), nil
	case KeyTypeU64:
		v, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return 0, kinds.KeyTypeMismatch
		}
		return uint32(v), nil
	case KeyTypeI64:
		v, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return 0, kinds.KeyTypeMismatch
		}
		return uint32(v), nil
	case KeyTypeF64:
		v, err := strconv.ParseFloat(key, 64)
		if err != nil {
			return 0, kinds.KeyTypeMismatch
		}
		bits := math.Float64bits(v)
		return uint32(bits>>32) ^ uint32(bits), nil
	case KeyTypeBool:
		if key == "true" {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, kinds.KeyTypeMismatch
	}
}

// Fold64 reduces key into the Sequence engine's 64-bit keyspace. Sequence
// only supports monotonic numeric keys, so the fold is exact — there is no
// collision level because the keyspace address IS the key.
func Fold64(keyType KeyType, key string) (uint64, error) {
	switch keyType {
	case KeyTypeU64:
		v, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return 0, kinds.KeyTypeMismatch
		}
		return v, nil
	case KeyTypeI64:
		v, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return 0, kinds.KeyTypeMismatch
		}
		return uint64(v), nil
	default:
		return 0, kinds.KeyTypeMismatch
	}
}
