package ge

import "encoding/binary"

// digestSize is the byte width of the digest region of the prologue: one
// byte tag, one byte engine, two byte version, two byte modification
// sequence.
const digestSize = 6

// Digest is the self-describing identity carried by every ge file: what kind
// of artifact it is, which index engine (if any) backs it, its format
// version, and a monotonic count of how many times its description chain has
// been modified.
type Digest struct {
	Tag      Tag
	Engine   Engine
	Version  uint16
	Sequence uint16
}

func (d Digest) encode() [digestSize]byte {
	var buf [digestSize]byte
	buf[0] = byte(d.Tag)
	buf[1] = byte(d.Engine)
	binary.BigEndian.PutUint16(buf[2:4], d.Version)
	binary.BigEndian.PutUint16(buf[4:6], d.Sequence)
	return buf
}

func decodeDigest(buf []byte) Digest {
	return Digest{
		Tag:      Tag(buf[0]),
		Engine:   Engine(buf[1]),
		Version:  binary.BigEndian.Uint16(buf[2:4]),
		Sequence: binary.BigEndian.Uint16(buf[4:6]),
	}
}
