// Package record implements the canonical on-disk record envelope (DataReal)
// and the per-insert/remove commit coordinator (Seed).
package record

import (
	"encoding/binary"
	"encoding/json"

	"github.com/zeebo/errs"

	"github.com/aberic/george/internal/kinds"
)

// Error is the error class for this package.
var Error = errs.Class("record")

var errAlreadyCommitted = errs.New("seed already committed")

// DataReal is the canonical logical record: a monotonic increment (populated
// only for views created with_increment), the record's primary key, and its
// value payload.
type DataReal struct {
	Increment uint64 `json:"increment"`
	Key       string `json:"key"`
	Value     []byte `json:"value"`
}

// Encode produces the stable, self-delimiting bytewise form written to a
// view's data file: a 4-byte big-endian length prefix followed by the JSON
// encoding of the record. The prefix makes the envelope self-delimiting when
// scanned sequentially; the Locator additionally pins its exact extent for
// direct addressing.
func Encode(d DataReal) ([]byte, error) {
	body, err := json.Marshal(d)
	if err != nil {
		return nil, Error.Wrap(errs.Combine(kinds.EncodingError, err))
	}
	buf := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(buf[:4], uint32(len(body)))
	copy(buf[4:], body)
	return buf, nil
}

// Decode parses the envelope produced by Encode.
func Decode(buf []byte) (DataReal, error) {
	if len(buf) < 4 {
		return DataReal{}, Error.Wrap(kinds.EncodingError)
	}
	n := binary.BigEndian.Uint32(buf[:4])
	if uint32(len(buf)) < 4+n {
		return DataReal{}, Error.Wrap(kinds.EncodingError)
	}
	var d DataReal
	if err := json.Unmarshal(buf[4:4+n], &d); err != nil {
		return DataReal{}, Error.Wrap(errs.Combine(kinds.EncodingError, err))
	}
	return d, nil
}
