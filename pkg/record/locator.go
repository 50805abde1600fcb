package record

import (
	"encoding/binary"

	"github.com/aberic/george/internal/kinds"
)

// LocatorSize is the fixed width of a view-info-index tuple.
const LocatorSize = 12

// Locator (the "view-info-index") names one record within one version of a
// view's data file: which archived (or live) version it belongs to, how many
// bytes its envelope occupies, and at what offset it begins. Offset is a
// 48-bit quantity; the top 16 bits of the uint64 are always zero.
type Locator struct {
	Version uint16
	Length  uint32
	Offset  uint64
}

// IsZero reports whether l is the empty/unset locator, as stored in an
// index slot that has never been written or has been removed.
func (l Locator) IsZero() bool {
	return l == Locator{}
}

// Encode produces the 12-byte wire form of l.
func (l Locator) Encode() [LocatorSize]byte {
	var buf [LocatorSize]byte
	binary.BigEndian.PutUint16(buf[0:2], l.Version)
	binary.BigEndian.PutUint32(buf[2:6], l.Length)
	// 48-bit offset: high 2 bytes then low 4 bytes of a uint64.
	binary.BigEndian.PutUint16(buf[6:8], uint16(l.Offset>>32))
	binary.BigEndian.PutUint32(buf[8:12], uint32(l.Offset))
	return buf
}

// DecodeLocator parses the 12-byte wire form produced by Encode.
func DecodeLocator(buf []byte) (Locator, error) {
	if len(buf) != LocatorSize {
		return Locator{}, Error.Wrap(kinds.InvalidFormat)
	}
	high := uint64(binary.BigEndian.Uint16(buf[6:8]))
	low := uint64(binary.BigEndian.Uint32(buf[8:12]))
	return Locator{
		Version: binary.BigEndian.Uint16(buf[0:2]),
		Length:  binary.BigEndian.Uint32(buf[2:6]),
		Offset:  high<<32 | low,
	}, nil
}

// ZeroBlock is the all-zero 12-byte slot content written by a remove.
var ZeroBlock [LocatorSize]byte
