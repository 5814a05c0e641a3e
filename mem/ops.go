package mem

import (
	"errors"
	"fmt"
)

// Units of memory size.
const (
	_       = iota
	KB uint64 = 1 << (10 * iota)
	MB
	GB
	TB
)

// A ReadOp asks for len(Buf) bytes starting at Addr to be copied into Buf.
type ReadOp struct {
	Addr uint64
	Buf  []byte
}

// A WriteOp asks for Data to be stored starting at Addr.
type WriteOp struct {
	Addr uint64
	Data []byte
}

// Results holds one entry per element of a batch. A nil entry means the
// element succeeded.
type Results []error

// NewResults allocates the results of a batch with n elements.
func NewResults(n int) Results {
	return make(Results, n)
}

// OK returns true if the i-th element succeeded.
func (r Results) OK(i int) bool {
	return r[i] == nil
}

// Failed returns the number of failed elements.
func (r Results) Failed() int {
	n := 0

	for _, err := range r {
		if err != nil {
			n++
		}
	}

	return n
}

// Err joins the errors of all the failed elements. It returns nil if the whole
// batch succeeded.
func (r Results) Err() error {
	if r.Failed() == 0 {
		return nil
	}

	errs := make([]error, 0, len(r))
	for i, err := range r {
		if err != nil {
			errs = append(errs, fmt.Errorf("element %d: %w", i, err))
		}
	}

	return errors.Join(errs...)
}
