package record

import "github.com/aberic/george/pkg/ge"

// NodeSink is the write surface an IndexPolicy commits to. Every index
// engine hands Seed its own underlying file handle so that a committed write
// goes through the same lock the engine's own reads use, instead of a
// second, racing file descriptor onto the same path.
type NodeSink interface {
	Path() string
	Write(offset int64, data []byte) error
}

// IndexPolicy is a deferred write instruction: one index's contribution to a
// Seed, naming the file and offset to write at commit time and the bytes to
// write there. CustomBytes, when set, is written instead of the record's
// locator — used by the Disk engine for node-structural slot writes (a
// child-node pointer) rather than a final locator.
type IndexPolicy struct {
	Engine       ge.Engine
	OriginalKey  string
	Node         NodeSink
	NodeFilepath string
	Seek         int64
	CustomBytes  []byte
}

func (p IndexPolicy) payload(locator Locator) []byte {
	if p.CustomBytes != nil {
		return p.CustomBytes
	}
	enc := locator.Encode()
	return enc[:]
}

func (p IndexPolicy) tombstone() []byte {
	if p.CustomBytes != nil {
		return p.CustomBytes
	}
	return ZeroBlock[:]
}
