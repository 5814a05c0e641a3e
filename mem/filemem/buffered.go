package filemem

import (
	"fmt"
	"io"
	"math"

	"github.com/sarchlab/rawmem/mem"
	"github.com/sarchlab/rawmem/mem/remap"
)

// A BufferedStore reads and writes the file with positioned I/O. Nothing is
// mapped, so the file does not need to fit in the address space of the
// process.
type BufferedStore struct {
	file     *SharedFile
	remapper *remap.Remapper
}

// NewBufferedStore creates a store on the shared file. The store owns the
// handle it is given.
func NewBufferedStore(f *SharedFile, r *remap.Remapper) *BufferedStore {
	return &BufferedStore{
		file:     f,
		remapper: r,
	}
}

// ReadOnly always returns false.
func (s *BufferedStore) ReadOnly() bool {
	return false
}

// File returns the shared file handle of the store.
func (s *BufferedStore) File() *SharedFile {
	return s.file
}

// Clone creates a store that shares the same open file.
func (s *BufferedStore) Clone() *BufferedStore {
	return NewBufferedStore(s.file.Clone(), s.remapper)
}

// Read fills the buffers with positioned reads. A read that ends before the
// end of the buffer fails that element only.
func (s *BufferedStore) Read(ops []mem.ReadOp) mem.Results {
	results := mem.NewResults(len(ops))

	for i, op := range ops {
		done, err := forEachSpan(s.remapper, op.Addr, op.Buf, s.readSpan)
		results[i] = shortIO(err, "read", op.Addr, uint64(len(op.Buf)), done)
	}

	return results
}

// Write stores the data with positioned writes. Writing past the end of the
// file extends it when the file system allows.
func (s *BufferedStore) Write(ops []mem.WriteOp) mem.Results {
	results := mem.NewResults(len(ops))

	for i, op := range ops {
		done, err := forEachSpan(s.remapper, op.Addr, op.Data, s.writeSpan)
		results[i] = shortIO(err, "write", op.Addr, uint64(len(op.Data)), done)
	}

	return results
}

func (s *BufferedStore) readSpan(span remap.Span, buf []byte) (int, error) {
	off, err := fileOffset(span)
	if err != nil {
		return 0, err
	}

	n, err := s.file.ReadAt(buf, off)
	if n == len(buf) {
		return n, nil
	}

	if err == nil {
		err = io.ErrUnexpectedEOF
	}

	return n, fmt.Errorf("reading %s at offset %d: %w", s.file.Name(), off, err)
}

func (s *BufferedStore) writeSpan(span remap.Span, buf []byte) (int, error) {
	off, err := fileOffset(span)
	if err != nil {
		return 0, err
	}

	n, err := s.file.WriteAt(buf, off)
	if n == len(buf) {
		return n, nil
	}

	if err == nil {
		err = io.ErrShortWrite
	}

	return n, fmt.Errorf("writing %s at offset %d: %w", s.file.Name(), off, err)
}

func fileOffset(span remap.Span) (int64, error) {
	if span.Offset > math.MaxInt64 || span.Size > math.MaxInt64-span.Offset {
		return 0, mem.NewAccessError(
			mem.KindOutOfBounds, "seek", span.Addr, span.Size)
	}

	return int64(span.Offset), nil
}

// shortIO turns a failed span transfer into the error of the batch element.
// Translation failures are reported as they are.
func shortIO(err error, op string, addr, size, done uint64) error {
	if err == nil {
		return nil
	}

	if mem.KindOf(err) != mem.KindUnknown {
		return err
	}

	return mem.NewAccessError(mem.KindShortIO, op, addr, size).
		WithDone(done).
		WithErr(err)
}

// Close releases the handle of the store on the shared file.
func (s *BufferedStore) Close() error {
	return s.file.Close()
}
