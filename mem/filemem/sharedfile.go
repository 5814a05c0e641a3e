package filemem

import (
	"os"
	"sync"
	"sync/atomic"
)

// A SharedFile is a handle on an open file that can be cloned cheaply. All the
// clones use the same OS file description, and therefore share its offset.
// The stores only use positioned I/O, which leaves the offset alone. The file
// is closed when the last handle is closed.
type SharedFile struct {
	shared *sharedFileState
	once   sync.Once
}

type sharedFileState struct {
	file *os.File
	refs atomic.Int64
}

// NewSharedFile takes the ownership of f.
func NewSharedFile(f *os.File) *SharedFile {
	s := &sharedFileState{file: f}
	s.refs.Store(1)

	return &SharedFile{shared: s}
}

// File returns the underlying file.
func (f *SharedFile) File() *os.File {
	return f.shared.file
}

// Name returns the name of the underlying file.
func (f *SharedFile) Name() string {
	return f.shared.file.Name()
}

// Refs returns the number of open handles on the file.
func (f *SharedFile) Refs() int64 {
	return f.shared.refs.Load()
}

// Clone returns a new handle on the same file.
func (f *SharedFile) Clone() *SharedFile {
	f.shared.refs.Add(1)
	return &SharedFile{shared: f.shared}
}

// ReadAt reads len(p) bytes at offset off.
func (f *SharedFile) ReadAt(p []byte, off int64) (int, error) {
	return f.shared.file.ReadAt(p, off)
}

// WriteAt writes len(p) bytes at offset off.
func (f *SharedFile) WriteAt(p []byte, off int64) (int, error) {
	return f.shared.file.WriteAt(p, off)
}

// Close releases this handle. Closing the same handle twice does nothing.
func (f *SharedFile) Close() error {
	var err error

	f.once.Do(func() {
		if f.shared.refs.Add(-1) == 0 {
			err = f.shared.file.Close()
		}
	})

	return err
}
