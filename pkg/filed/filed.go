// Package filed implements the scoped, concurrent-safe file handle shared by
// every ge-backed artifact. It knows nothing about
// the ge container format; it only guarantees that appends are serialized,
// reads proceed concurrently with each other, and archival atomically swaps
// the backing file while holding both handles still valid.
package filed

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/zeebo/errs"

	"github.com/aberic/george/internal/kinds"
)

// Error is the error class for this package.
var Error = errs.Class("filed")

// Filed is a scoped handle to a single file on disk, safe for concurrent use.
// Reads may proceed in parallel; appends, writes and archival are mutually
// exclusive with everything else.
type Filed struct {
	mu   sync.RWMutex
	path string

	writer   *os.File
	appender *os.File
	size     int64
}

// Open opens or creates the file at path and returns a Filed wrapping it.
func Open(path string) (*Filed, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, Error.Wrap(err)
	}
	writer, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	appender, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		_ = writer.Close()
		return nil, Error.Wrap(err)
	}
	info, err := writer.Stat()
	if err != nil {
		_ = writer.Close()
		_ = appender.Close()
		return nil, Error.Wrap(err)
	}
	return &Filed{
		path:     path,
		writer:   writer,
		appender: appender,
		size:     info.Size(),
	}, nil
}

// Path returns the absolute path this handle is scoped to.
func (f *Filed) Path() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.path
}

// Size returns the current length of the file.
func (f *Filed) Size() int64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.size
}

// Append writes data to the end of the file and returns the offset at which
// it was written (the file's length immediately before the append).
func (f *Filed) Append(data []byte) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	offset := f.size
	n, err := f.appender.Write(data)
	if err != nil {
		return 0, Error.Wrap(err)
	}
	f.size += int64(n)
	return offset, nil
}

// Write overwrites the region [offset, offset+len(data)) with data. The
// region must not cross end-of-file.
func (f *Filed) Write(offset int64, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if offset < 0 || offset+int64(len(data)) > f.size {
		return Error.Wrap(kinds.IOError)
	}
	if _, err := f.writer.WriteAt(data, offset); err != nil {
		return Error.Wrap(err)
	}
	return nil
}

// Read reads length bytes starting at offset. The region must lie entirely
// within the file.
func (f *Filed) Read(offset int64, length int) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if offset < 0 || offset+int64(length) > f.size {
		return nil, Error.Wrap(kinds.IOError)
	}
	buf := make([]byte, length)
	if _, err := f.writer.ReadAt(buf, offset); err != nil && err != io.EOF {
		return nil, Error.Wrap(err)
	}
	return buf, nil
}

// ReadAllowNone behaves like Read, except that any portion of the requested
// range lying past end-of-file is returned as zero bytes instead of erroring.
// Index engines use this to probe slots that may not yet have been
// allocated.
func (f *Filed) ReadAllowNone(offset int64, length int) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	buf := make([]byte, length)
	if offset >= f.size {
		return buf, nil
	}
	readable := length
	if offset+int64(readable) > f.size {
		readable = int(f.size - offset)
	}
	if _, err := f.writer.ReadAt(buf[:readable], offset); err != nil && err != io.EOF {
		return nil, Error.Wrap(err)
	}
	return buf, nil
}

// Archive moves the current file to newPath and creates a fresh, empty file
// at the original path, reopening both handles to point at it.
func (f *Filed) Archive(newPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.writer.Close(); err != nil {
		return Error.Wrap(err)
	}
	if err := f.appender.Close(); err != nil {
		return Error.Wrap(err)
	}

	if err := os.MkdirAll(filepath.Dir(newPath), 0o755); err != nil {
		return Error.Wrap(err)
	}
	if err := os.Rename(f.path, newPath); err != nil {
		return Error.Wrap(err)
	}

	writer, err := os.OpenFile(f.path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		// Reverse the rename so the caller is left with a consistent file.
		_ = os.Rename(newPath, f.path)
		return Error.Wrap(err)
	}
	appender, err := os.OpenFile(f.path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		_ = writer.Close()
		_ = os.Remove(f.path)
		_ = os.Rename(newPath, f.path)
		return Error.Wrap(err)
	}

	f.writer = writer
	f.appender = appender
	f.size = 0
	return nil
}

// Close releases both underlying file descriptors.
func (f *Filed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err1 := f.writer.Close()
	err2 := f.appender.Close()
	if err1 != nil {
		return Error.Wrap(err1)
	}
	if err2 != nil {
		return Error.Wrap(err2)
	}
	return nil
}
