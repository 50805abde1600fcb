package view

import (
	"encoding/json"
	"time"

	"github.com/aberic/george/internal/kinds"
	"github.com/aberic/george/pkg/ge"
	"github.com/aberic/george/pkg/index"
)

// description is the JSON document carried as the live description of a
// view's own view.ge file: everything needed to reconstruct the View
// in-memory object on recovery, short of the index node files themselves
// (which carry their own description, see indexDescription).
type description struct {
	Name           string             `json:"name"`
	Comment        string             `json:"comment"`
	CreateTime     time.Time          `json:"create_time"`
	CurrentVersion uint16             `json:"current_version"`
	Pigeonhole     []pigeonholeEntry  `json:"pigeonhole"`
	MemoryIndexes  []memoryIndexDoc   `json:"memory_indexes"`
}

// memoryIndexDoc is the structural (not data) record of an in-memory index
// declared on this view. Memory indexes keep no file, so only their shape
// survives a restart — their contents do not, per the engine's contract.
type memoryIndexDoc struct {
	Name    string         `json:"name"`
	KeyType index.KeyType  `json:"key_type"`
	Primary bool           `json:"primary"`
	Unique  bool           `json:"unique"`
	Null    bool           `json:"null"`
}

func encodeDescription(d description) ([]byte, error) {
	buf, err := json.Marshal(d)
	if err != nil {
		return nil, Error.Wrap(kinds.EncodingError)
	}
	return buf, nil
}

func decodeDescription(buf []byte) (description, error) {
	var d description
	if err := json.Unmarshal(buf, &d); err != nil {
		return description{}, Error.Wrap(kinds.CorruptMetadata)
	}
	return d, nil
}

// indexDescription is the live description of one index's node.ge file.
type indexDescription struct {
	Name       string       `json:"name"`
	Engine     ge.Engine    `json:"engine"`
	KeyType    index.KeyType `json:"key_type"`
	Primary    bool         `json:"primary"`
	Unique     bool         `json:"unique"`
	Null       bool         `json:"null"`
	CreateTime time.Time    `json:"create_time"`
	// RootOffset is meaningful only for the Disk and Sequence engines, which
	// allocate their root node at creation and must recover its address.
	RootOffset int64 `json:"root_offset,omitempty"`
}

func encodeIndexDescription(d indexDescription) ([]byte, error) {
	buf, err := json.Marshal(d)
	if err != nil {
		return nil, Error.Wrap(kinds.EncodingError)
	}
	return buf, nil
}

func decodeIndexDescription(buf []byte) (indexDescription, error) {
	var d indexDescription
	if err := json.Unmarshal(buf, &d); err != nil {
		return indexDescription{}, Error.Wrap(kinds.CorruptMetadata)
	}
	return d, nil
}
