// Package remap translates addresses of the emulated physical space into
// offsets of the backing store.
package remap

import (
	"fmt"
	"math"
	"sort"

	"github.com/sarchlab/rawmem/mem"
)

// An Entry maps the destination range [Base, Base+Size) to the source range
// [Offset, Offset+Size).
type Entry struct {
	Base   uint64 `json:"base"`
	Size   uint64 `json:"size"`
	Offset uint64 `json:"offset"`
}

// End returns the first address after the entry.
func (e Entry) End() uint64 {
	return e.Base + e.Size
}

// Contains returns true if addr falls in the destination range.
func (e Entry) Contains(addr uint64) bool {
	return addr >= e.Base && addr-e.Base < e.Size
}

// A Span is the part of an access that is confined to a single entry.
// BufOffset is the position of the span inside the caller's buffer.
type Span struct {
	Addr      uint64
	Offset    uint64
	Size      uint64
	BufOffset uint64
}

// A Remapper holds an ordered list of non-overlapping entries. It is immutable
// after creation.
type Remapper struct {
	entries []Entry
}

// New creates a remapper from the given entries. The entries do not need to be
// sorted, but their destination ranges must not overlap.
func New(entries ...Entry) (*Remapper, error) {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)

	for _, e := range sorted {
		if err := entryMustBeValid(e); err != nil {
			return nil, err
		}
	}

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Base < sorted[j].Base
	})

	for i := 1; i < len(sorted); i++ {
		prev, curr := sorted[i-1], sorted[i]
		if curr.Base < prev.End() {
			return nil, mem.NewAccessError(
				mem.KindInvalidArgs, "remap", curr.Base, curr.Size).
				WithErr(fmt.Errorf("overlaps entry [0x%x, 0x%x)",
					prev.Base, prev.End()))
		}
	}

	return &Remapper{entries: sorted}, nil
}

// Identity creates a remapper that places offset 0 of the backing store at
// base and covers length bytes.
func Identity(base, length uint64) (*Remapper, error) {
	return New(Entry{Base: base, Size: length, Offset: 0})
}

func entryMustBeValid(e Entry) error {
	if e.Size == 0 {
		return mem.NewAccessError(mem.KindInvalidArgs, "remap", e.Base, 0).
			WithErr(fmt.Errorf("empty entry"))
	}

	if e.Base > math.MaxUint64-e.Size || e.Offset > math.MaxUint64-e.Size {
		return mem.NewAccessError(mem.KindInvalidArgs, "remap", e.Base, e.Size).
			WithErr(fmt.Errorf("entry overflows the address space"))
	}

	return nil
}

// Entries returns a copy of the entries, sorted by base address.
func (r *Remapper) Entries() []Entry {
	entries := make([]Entry, len(r.entries))
	copy(entries, r.entries)

	return entries
}

// MinAddress returns the lowest mapped address.
func (r *Remapper) MinAddress() uint64 {
	if len(r.entries) == 0 {
		return 0
	}

	return r.entries[0].Base
}

// MaxAddress returns the highest mapped address, inclusive.
func (r *Remapper) MaxAddress() uint64 {
	if len(r.entries) == 0 {
		return 0
	}

	return r.entries[len(r.entries)-1].End() - 1
}

// Size returns the number of mapped bytes.
func (r *Remapper) Size() uint64 {
	var size uint64
	for _, e := range r.entries {
		size += e.Size
	}

	return size
}

// find returns the index of the entry that contains addr, or -1.
func (r *Remapper) find(addr uint64) int {
	i := sort.Search(len(r.entries), func(i int) bool {
		return r.entries[i].End() > addr
	})

	if i < len(r.entries) && r.entries[i].Contains(addr) {
		return i
	}

	return -1
}

// Translate returns the source offset of [addr, addr+length). The whole range
// must be inside a single entry. A zero length checks the single byte at addr.
func (r *Remapper) Translate(addr, length uint64) (uint64, error) {
	if length == 0 {
		length = 1
	}

	i := r.find(addr)
	if i < 0 {
		return 0, outOfBounds(addr, length)
	}

	e := r.entries[i]
	if length > e.End()-addr {
		return 0, outOfBounds(addr, length)
	}

	return e.Offset + (addr - e.Base), nil
}

// Split cuts [addr, addr+length) at entry boundaries and translates every
// piece. It fails if any byte of the range is not mapped. Like Translate, a
// zero length checks addr and yields no span.
func (r *Remapper) Split(addr, length uint64) ([]Span, error) {
	if length == 0 {
		if r.find(addr) < 0 {
			return nil, outOfBounds(addr, 1)
		}

		return nil, nil
	}

	if addr > math.MaxUint64-length+1 {
		return nil, outOfBounds(addr, length)
	}

	spans := make([]Span, 0, 1)
	done := uint64(0)

	for done < length {
		curr := addr + done

		i := r.find(curr)
		if i < 0 {
			return nil, outOfBounds(addr, length)
		}

		e := r.entries[i]
		size := min(e.End()-curr, length-done)

		spans = append(spans, Span{
			Addr:      curr,
			Offset:    e.Offset + (curr - e.Base),
			Size:      size,
			BufOffset: done,
		})

		done += size
	}

	return spans, nil
}

func outOfBounds(addr, length uint64) error {
	return mem.NewAccessError(mem.KindOutOfBounds, "translate", addr, length)
}
