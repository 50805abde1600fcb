// Package ge implements the container file format used uniformly for every
// persistent george artifact: a self-describing 52-byte prologue, an
// append-only description chain for metadata evolution, and an application
// payload region that the owning component (view, index, page, database...)
// interprets on its own terms.
package ge

import (
	"encoding/binary"
	"sync"

	"github.com/aberic/george/internal/kinds"
	"github.com/aberic/george/pkg/filed"
)

// File is a handle to one ge container on disk. It owns the prologue and
// description-chain bookkeeping; raw byte IO and archival are delegated to
// the underlying filed.Filed.
type File struct {
	fd *filed.Filed

	mu              sync.Mutex // guards digest + descriptionTail, which Modify/Archive mutate
	digest          Digest
	descriptionTail int64
}

// Create initializes a brand-new ge file at path carrying tag/engine in its
// digest and description as its initial (and, until Modify is called, only)
// description content.
func Create(path string, tag Tag, engine Engine, description []byte) (*File, error) {
	fd, err := filed.Open(path)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	if fd.Size() != 0 {
		return nil, Error.Wrap(kinds.AlreadyExists)
	}

	f := &File{fd: fd, digest: Digest{Tag: tag, Engine: engine, Version: 1, Sequence: 0}}
	if err := f.writeFreshPrologue(description); err != nil {
		return nil, err
	}
	return f, nil
}

// writeFreshPrologue appends the 52-byte prologue plus the first description
// header and content, assuming fd is currently empty.
func (f *File) writeFreshPrologue(description []byte) error {
	header := descriptionHeader{
		ContentStart:   PrologueSize,
		ContentLength:  uint32(len(description)),
		NextDescriptor: 0,
	}

	prologue := make([]byte, PrologueSize)
	copy(prologue[sentinelStartOffset:], sentinelStart[:])
	digestBytes := f.digest.encode()
	copy(prologue[digestOffset:], digestBytes[:])
	// prologue[reservedOffset:reservedOffset+reservedSize] is already zero.
	copy(prologue[sentinelEndOffset:], sentinelEnd[:])
	headerBytes := header.encode()
	copy(prologue[firstDescriptorOffset:], headerBytes[:])

	if _, err := f.fd.Append(prologue); err != nil {
		return Error.Wrap(err)
	}
	if _, err := f.fd.Append(description); err != nil {
		return Error.Wrap(err)
	}
	f.descriptionTail = firstDescriptorOffset
	return nil
}

// Recover reopens an existing ge file, validates its sentinels, and walks
// its description chain to the live (tail) description.
func Recover(path string) (*File, error) {
	fd, err := filed.Open(path)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	if fd.Size() < PrologueSize {
		return nil, Error.Wrap(kinds.InvalidFormat)
	}

	prologue, err := fd.Read(0, PrologueSize)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	if [sentinelSize]byte(prologue[sentinelStartOffset:sentinelStartOffset+sentinelSize]) != sentinelStart {
		return nil, Error.Wrap(kinds.InvalidFormat)
	}
	if [sentinelSize]byte(prologue[sentinelEndOffset:sentinelEndOffset+sentinelSize]) != sentinelEnd {
		return nil, Error.Wrap(kinds.InvalidFormat)
	}
	digest := decodeDigest(prologue[digestOffset : digestOffset+digestSize])

	f := &File{fd: fd, digest: digest}
	tail, err := f.walkToTail(fd.Size())
	if err != nil {
		return nil, err
	}
	f.descriptionTail = tail
	return f, nil
}

// walkToTail walks the description chain from its head, returning the offset
// of the header whose next_descriptor is zero. fileSize bounds the number of
// hops permitted, per the chain-termination invariant.
func (f *File) walkToTail(fileSize int64) (int64, error) {
	maxSteps := fileSize / descriptionHeaderSize
	if maxSteps < 1 {
		maxSteps = 1
	}

	offset := int64(firstDescriptorOffset)
	for step := int64(0); ; step++ {
		if step > maxSteps {
			return 0, Error.Wrap(kinds.CorruptMetadata)
		}
		buf, err := f.fd.Read(offset, descriptionHeaderSize)
		if err != nil {
			return 0, Error.Wrap(kinds.CorruptMetadata)
		}
		header := decodeDescriptionHeader(buf)
		if header.NextDescriptor == 0 {
			return offset, nil
		}
		if header.NextDescriptor == uint64(offset) {
			return 0, Error.Wrap(kinds.CorruptMetadata)
		}
		offset = int64(header.NextDescriptor)
	}
}

// Path returns the path of the underlying file.
func (f *File) Path() string { return f.fd.Path() }

// Digest returns the current digest. Sequence reflects how many times
// Modify has been called since creation.
func (f *File) Digest() Digest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.digest
}

// Append writes data to the end of the file's application payload region and
// returns the offset at which it was written.
func (f *File) Append(data []byte) (int64, error) {
	off, err := f.fd.Append(data)
	if err != nil {
		return 0, Error.Wrap(err)
	}
	return off, nil
}

// Write overwrites the region [offset, offset+len(data)) with data.
func (f *File) Write(offset int64, data []byte) error {
	if err := f.fd.Write(offset, data); err != nil {
		return Error.Wrap(err)
	}
	return nil
}

// Read reads length bytes starting at offset.
func (f *File) Read(offset int64, length int) ([]byte, error) {
	buf, err := f.fd.Read(offset, length)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return buf, nil
}

// ReadAllowNone behaves like Read but returns zero-filled bytes for any
// portion of the range past end-of-file, instead of erroring.
func (f *File) ReadAllowNone(offset int64, length int) ([]byte, error) {
	buf, err := f.fd.ReadAllowNone(offset, length)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return buf, nil
}

// Description returns the current (tail) description content.
func (f *File) Description() ([]byte, error) {
	f.mu.Lock()
	tail := f.descriptionTail
	f.mu.Unlock()

	buf, err := f.fd.Read(tail, descriptionHeaderSize)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	header := decodeDescriptionHeader(buf)
	content, err := f.fd.Read(int64(header.ContentStart), int(header.ContentLength))
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return content, nil
}

// Modify appends newDescription as a new description block and links it to
// the chain, making it the live description. It fails with CorruptMetadata
// if the current tail's next_descriptor is already nonzero, which signals an
// inconsistent file that must be rebuilt rather than extended.
func (f *File) Modify(newDescription []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tailBuf, err := f.fd.Read(f.descriptionTail, descriptionHeaderSize)
	if err != nil {
		return Error.Wrap(err)
	}
	tail := decodeDescriptionHeader(tailBuf)
	if tail.NextDescriptor != 0 {
		return Error.Wrap(kinds.CorruptMetadata)
	}

	contentOffset, err := f.fd.Append(newDescription)
	if err != nil {
		return Error.Wrap(err)
	}
	newHeader := descriptionHeader{
		ContentStart:   uint64(contentOffset),
		ContentLength:  uint32(len(newDescription)),
		NextDescriptor: 0,
	}
	newHeaderBuf := newHeader.encode()
	newHeaderOffset, err := f.fd.Append(newHeaderBuf[:])
	if err != nil {
		return Error.Wrap(err)
	}

	// Link the old tail to the new one.
	var nextBuf [8]byte
	binary.BigEndian.PutUint64(nextBuf[:], uint64(newHeaderOffset))
	if err := f.fd.Write(f.descriptionTail+12, nextBuf[:]); err != nil {
		return Error.Wrap(err)
	}

	f.digest.Sequence++
	digestBytes := f.digest.encode()
	if err := f.fd.Write(digestOffset, digestBytes[:]); err != nil {
		return Error.Wrap(err)
	}

	f.descriptionTail = newHeaderOffset
	return nil
}

// History returns the ordered list of every description content this file
// has ever carried, oldest first.
func (f *File) History() ([][]byte, error) {
	offset := int64(firstDescriptorOffset)
	var out [][]byte
	for {
		buf, err := f.fd.Read(offset, descriptionHeaderSize)
		if err != nil {
			return nil, Error.Wrap(err)
		}
		header := decodeDescriptionHeader(buf)
		content, err := f.fd.Read(int64(header.ContentStart), int(header.ContentLength))
		if err != nil {
			return nil, Error.Wrap(err)
		}
		out = append(out, content)
		if header.NextDescriptor == 0 {
			return out, nil
		}
		offset = int64(header.NextDescriptor)
	}
}

// Archive moves the current file to newPath (preserving its full history for
// later point-in-time reads) and reinitializes the original path as a fresh
// ge file carrying the same tag and engine, an incremented version, and the
// given description.
func (f *File) Archive(newPath string, description []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.fd.Archive(newPath); err != nil {
		return Error.Wrap(err)
	}

	f.digest.Version++
	f.digest.Sequence = 0
	if err := f.writeFreshPrologue(description); err != nil {
		return err
	}
	return nil
}

// Size returns the current total length of the file, including its
// prologue and description chain.
func (f *File) Size() int64 {
	return f.fd.Size()
}

// PayloadStart returns the offset immediately following the current (tail)
// description's content — i.e. where the next Append will land absent any
// intervening Modify. Index node files never call Modify after creation, so
// for them this is the fixed start of the slot array; callers recovering a
// monotonic counter from file length use it as the payload's zero point.
func (f *File) PayloadStart() (int64, error) {
	f.mu.Lock()
	tail := f.descriptionTail
	f.mu.Unlock()

	buf, err := f.fd.Read(tail, descriptionHeaderSize)
	if err != nil {
		return 0, Error.Wrap(err)
	}
	header := decodeDescriptionHeader(buf)
	return int64(header.ContentStart) + int64(header.ContentLength), nil
}

// Close releases the underlying file descriptors.
func (f *File) Close() error {
	return f.fd.Close()
}
