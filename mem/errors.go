package mem

import (
	"errors"
	"fmt"
	"io/fs"
)

// Kind classifies the failures reported by the physical memory layer.
type Kind int

// The kinds of errors.
const (
	KindUnknown Kind = iota
	KindOpen
	KindStat
	KindMapping
	KindOutOfBounds
	KindReadOnly
	KindShortIO
	KindInvalidArgs
)

var kindNames = map[Kind]string{
	KindUnknown:     "unknown",
	KindOpen:        "open failed",
	KindStat:        "stat failed",
	KindMapping:     "mapping failed",
	KindOutOfBounds: "out of bounds",
	KindReadOnly:    "read-only violation",
	KindShortIO:     "short io",
	KindInvalidArgs: "invalid arguments",
}

func (k Kind) String() string {
	name, ok := kindNames[k]
	if !ok {
		return fmt.Sprintf("Kind(%d)", int(k))
	}

	return name
}

// Sentinels that can be matched with errors.Is against any *AccessError of the
// same kind.
var (
	ErrOpen        = errors.New("open failed")
	ErrStat        = errors.New("stat failed")
	ErrMapping     = errors.New("mapping failed")
	ErrOutOfBounds = errors.New("out of bounds")
	ErrReadOnly    = errors.New("read-only violation")
	ErrShortIO     = errors.New("short io")
	ErrInvalidArgs = errors.New("invalid arguments")
)

var kindSentinels = map[Kind]error{
	KindOpen:        ErrOpen,
	KindStat:        ErrStat,
	KindMapping:     ErrMapping,
	KindOutOfBounds: ErrOutOfBounds,
	KindReadOnly:    ErrReadOnly,
	KindShortIO:     ErrShortIO,
	KindInvalidArgs: ErrInvalidArgs,
}

// An AccessError describes a failed operation on the physical memory. For
// batch elements, Addr and Size locate the access. Done is the number of bytes
// that were transferred before the failure.
type AccessError struct {
	Kind Kind
	Op   string
	Addr uint64
	Size uint64
	Done uint64
	Err  error
}

// NewAccessError creates an AccessError of the given kind.
func NewAccessError(kind Kind, op string, addr, size uint64) *AccessError {
	return &AccessError{
		Kind: kind,
		Op:   op,
		Addr: addr,
		Size: size,
	}
}

// WithErr attaches the underlying cause.
func (e *AccessError) WithErr(err error) *AccessError {
	e.Err = err
	return e
}

// WithDone records how many bytes were transferred.
func (e *AccessError) WithDone(done uint64) *AccessError {
	e.Done = done
	return e
}

func (e *AccessError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)

	if e.Size > 0 {
		msg += fmt.Sprintf(" at 0x%x (size %d)", e.Addr, e.Size)
	}

	if e.Kind == KindShortIO {
		msg += fmt.Sprintf(", %d bytes done", e.Done)
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *AccessError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of the error's kind.
func (e *AccessError) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

// KindOf returns the kind of the first AccessError in err's chain, or
// KindUnknown.
func KindOf(err error) Kind {
	var accessErr *AccessError
	if errors.As(err, &accessErr) {
		return accessErr.Kind
	}

	return KindUnknown
}

// PathOp names an operation on the file at path. The path is left out when
// err already carries it, as *fs.PathError does.
func PathOp(op, path string, err error) string {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return op
	}

	return op + " " + path
}
