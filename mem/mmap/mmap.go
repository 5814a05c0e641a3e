// Package mmap maps files into the address space of the process.
package mmap

import (
	"errors"
	"os"
)

// Errors returned by the package.
var (
	ErrEmptyFile   = errors.New("mmap: empty file")
	ErrInvalidSize = errors.New("mmap: invalid size")
	ErrNotMapped   = errors.New("mmap: not mapped")
	ErrUnsupported = errors.New("mmap: unsupported platform")
)

// Error reports the operation that failed together with the cause.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return "mmap: " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// A Region is a file mapped read-only into memory.
type Region struct {
	data []byte
}

// Data returns the mapped bytes. The slice becomes invalid after Close.
func (r *Region) Data() []byte {
	return r.data
}

// Len returns the number of mapped bytes.
func (r *Region) Len() int {
	return len(r.data)
}

// MapFile maps the whole content of f read-only. The file can be closed after
// the mapping is created.
func MapFile(f *os.File) (*Region, error) {
	fi, err := f.Stat()
	if err != nil {
		return nil, &Error{Op: "stat", Err: err}
	}

	size := fi.Size()
	if size == 0 {
		return nil, ErrEmptyFile
	}

	if int64(int(size)) != size {
		return nil, ErrInvalidSize
	}

	return Map(f, int(size))
}
