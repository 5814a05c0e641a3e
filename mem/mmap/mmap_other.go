//go:build !unix

package mmap

import "os"

// Map is not available on this platform.
func Map(_ *os.File, length int) (*Region, error) {
	if length <= 0 {
		return nil, ErrInvalidSize
	}

	return nil, &Error{Op: "mmap", Err: ErrUnsupported}
}

// Close does nothing, as no region can be created on this platform.
func (r *Region) Close() error {
	r.data = nil
	return nil
}

// AdviseRandom is a no-op on this platform.
func (r *Region) AdviseRandom() error {
	if r.data == nil {
		return ErrNotMapped
	}

	return nil
}
