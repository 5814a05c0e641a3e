//go:build unix

package mmap

import (
	"os"

	"golang.org/x/sys/unix"
)

// Map maps the first length bytes of f read-only.
func Map(f *os.File, length int) (*Region, error) {
	if length <= 0 {
		return nil, ErrInvalidSize
	}

	data, err := unix.Mmap(int(f.Fd()), 0, length, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, &Error{Op: "mmap", Err: err}
	}

	return &Region{data: data}, nil
}

// Close unmaps the region. Closing an unmapped region does nothing.
func (r *Region) Close() error {
	if r.data == nil {
		return nil
	}

	err := unix.Munmap(r.data)
	r.data = nil

	if err != nil {
		return &Error{Op: "munmap", Err: err}
	}

	return nil
}

// AdviseRandom hints the kernel that the pages are accessed randomly, which
// is the usual pattern when walking page tables of a memory image.
func (r *Region) AdviseRandom() error {
	if r.data == nil {
		return ErrNotMapped
	}

	return unix.Madvise(r.data, unix.MADV_RANDOM)
}
