// Package filemem provides the stores that move bytes between a linear
// address space and the file that backs it.
package filemem

import (
	"github.com/sarchlab/rawmem/mem"
	"github.com/sarchlab/rawmem/mem/remap"
)

// A Store serves batched reads and writes against a backing file. Each
// element of a batch is attempted even if others fail.
type Store interface {
	Read(ops []mem.ReadOp) mem.Results
	Write(ops []mem.WriteOp) mem.Results
	ReadOnly() bool
	Close() error
}

// spanFunc transfers the bytes of a single span. buf has exactly span.Size
// bytes. It returns the number of bytes transferred.
type spanFunc func(span remap.Span, buf []byte) (int, error)

// forEachSpan splits the access at addr over the remapper and calls fn for
// every span, in order. It stops at the first span that fails, returning the
// error together with the number of bytes transferred so far.
func forEachSpan(
	r *remap.Remapper,
	addr uint64,
	buf []byte,
	fn spanFunc,
) (uint64, error) {
	spans, err := r.Split(addr, uint64(len(buf)))
	if err != nil {
		return 0, err
	}

	done := uint64(0)
	for _, s := range spans {
		n, err := fn(s, buf[s.BufOffset:s.BufOffset+s.Size])
		done += uint64(n)

		if err != nil {
			return done, err
		}
	}

	return done, nil
}
