package ge

import "encoding/binary"

// Byte layout of the 52-byte prologue shared by every ge file.
const (
	sentinelStartOffset = 0
	sentinelSize        = 2
	digestOffset        = sentinelStartOffset + sentinelSize // 2
	reservedOffset      = digestOffset + digestSize          // 8
	reservedSize        = 22
	sentinelEndOffset   = reservedOffset + reservedSize // 30

	// PrologueSize is the total fixed width of the header every ge file
	// begins with.
	PrologueSize = sentinelEndOffset + sentinelSize + descriptionHeaderSize // 52

	// firstDescriptorOffset is where the first description header lives, and
	// therefore also the minimum valid content_start for the first
	// description block.
	firstDescriptorOffset = sentinelEndOffset + sentinelSize // 32

	descriptionHeaderSize = 20 // content_start(8) + content_length(4) + next_descriptor(8)
)

var (
	sentinelStart = [sentinelSize]byte{0x20, 0x19}
	sentinelEnd   = [sentinelSize]byte{0x02, 0x19}
)

// descriptionHeader is the 20-byte record naming where one description
// block's content lives and, once superseded, where its successor lives.
type descriptionHeader struct {
	ContentStart   uint64
	ContentLength  uint32
	NextDescriptor uint64
}

func (h descriptionHeader) encode() [descriptionHeaderSize]byte {
	var buf [descriptionHeaderSize]byte
	binary.BigEndian.PutUint64(buf[0:8], h.ContentStart)
	binary.BigEndian.PutUint32(buf[8:12], h.ContentLength)
	binary.BigEndian.PutUint64(buf[12:20], h.NextDescriptor)
	return buf
}

func decodeDescriptionHeader(buf []byte) descriptionHeader {
	return descriptionHeader{
		ContentStart:   binary.BigEndian.Uint64(buf[0:8]),
		ContentLength:  binary.BigEndian.Uint32(buf[8:12]),
		NextDescriptor: binary.BigEndian.Uint64(buf[12:20]),
	}
}
