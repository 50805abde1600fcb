package view

import (
	"encoding/json"
	"strconv"

	"github.com/aberic/george/internal/kinds"
	"github.com/aberic/george/pkg/index"
)

// extractField looks up field inside raw (a JSON object) and reports whether
// it was present. A secondary index is keyed on the named field of a
// record's value, not on the record's own primary key.
func extractField(raw []byte, field string) (any, bool, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false, Error.Wrap(kinds.EncodingError)
	}
	rawField, ok := doc[field]
	if !ok {
		return nil, false, nil
	}
	var v any
	if err := json.Unmarshal(rawField, &v); err != nil {
		return nil, false, Error.Wrap(kinds.EncodingError)
	}
	return v, true, nil
}

// stringifyKey coerces a JSON-decoded field value to the string form an
// index engine addresses keys by, per keyType's semantics.
func stringifyKey(v any, keyType index.KeyType) (string, error) {
	switch keyType {
	case index.KeyTypeString:
		s, ok := v.(string)
		if !ok {
			return "", Error.Wrap(kinds.KeyTypeMismatch)
		}
		return s, nil
	case index.KeyTypeU64, index.KeyTypeI64:
		f, ok := v.(float64)
		if !ok {
			return "", Error.Wrap(kinds.KeyTypeMismatch)
		}
		return strconv.FormatInt(int64(f), 10), nil
	case index.KeyTypeF64:
		f, ok := v.(float64)
		if !ok {
			return "", Error.Wrap(kinds.KeyTypeMismatch)
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	case index.KeyTypeBool:
		b, ok := v.(bool)
		if !ok {
			return "", Error.Wrap(kinds.KeyTypeMismatch)
		}
		return strconv.FormatBool(b), nil
	default:
		return "", Error.Wrap(kinds.KeyTypeMismatch)
	}
}
