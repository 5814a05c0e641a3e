package mem_test

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rawmem/mem"
)

var _ = Describe("AccessError", func() {
	It("should match the sentinel of its kind", func() {
		err := mem.NewAccessError(mem.KindOutOfBounds, "read", 0x1010, 1)

		Expect(errors.Is(err, mem.ErrOutOfBounds)).To(BeTrue())
		Expect(errors.Is(err, mem.ErrReadOnly)).To(BeFalse())
	})

	It("should match through wrapping", func() {
		err := fmt.Errorf("batch: %w",
			mem.NewAccessError(mem.KindReadOnly, "write", 0, 2))

		Expect(errors.Is(err, mem.ErrReadOnly)).To(BeTrue())
		Expect(mem.KindOf(err)).To(Equal(mem.KindReadOnly))
	})

	It("should unwrap the cause", func() {
		err := mem.NewAccessError(mem.KindShortIO, "read", 0x10, 8).
			WithDone(3).
			WithErr(io.EOF)

		Expect(errors.Is(err, io.EOF)).To(BeTrue())
		Expect(errors.Is(err, mem.ErrShortIO)).To(BeTrue())
		Expect(err.Error()).To(Equal(
			"read: short io at 0x10 (size 8), 3 bytes done: EOF"))
	})

	It("should report unknown kind for foreign errors", func() {
		Expect(mem.KindOf(io.EOF)).To(Equal(mem.KindUnknown))
		Expect(mem.KindOf(nil)).To(Equal(mem.KindUnknown))
	})

	It("should name the kinds", func() {
		Expect(mem.KindMapping.String()).To(Equal("mapping failed"))
		Expect(mem.Kind(42).String()).To(Equal("Kind(42)"))
	})
})

var _ = Describe("Results", func() {
	It("should report success when no element failed", func() {
		r := mem.NewResults(3)

		Expect(r.Failed()).To(Equal(0))
		Expect(r.Err()).To(BeNil())
		Expect(r.OK(1)).To(BeTrue())
	})

	It("should join the failed elements", func() {
		r := mem.NewResults(3)
		r[1] = mem.NewAccessError(mem.KindOutOfBounds, "read", 0x20, 4)

		Expect(r.Failed()).To(Equal(1))
		Expect(r.OK(0)).To(BeTrue())
		Expect(r.OK(1)).To(BeFalse())
		Expect(errors.Is(r.Err(), mem.ErrOutOfBounds)).To(BeTrue())
		Expect(r.Err().Error()).To(ContainSubstring("element 1"))
	})
})

var _ = Describe("Units", func() {
	It("should be powers of 1024", func() {
		Expect(mem.KB).To(Equal(uint64(1024)))
		Expect(mem.MB).To(Equal(1024 * mem.KB))
		Expect(mem.GB).To(Equal(1024 * mem.MB))
	})
})

var _ = Describe("PathOp", func() {
	It("should leave the path out if the cause carries it", func() {
		cause := &fs.PathError{Op: "open", Path: "/p", Err: fs.ErrNotExist}

		Expect(mem.PathOp("open", "/p", cause)).To(Equal("open"))
		Expect(mem.PathOp("open", "/p", fmt.Errorf("x: %w", cause))).
			To(Equal("open"))
	})

	It("should add the path otherwise", func() {
		Expect(mem.PathOp("map", "/p", io.EOF)).To(Equal("map /p"))
		Expect(mem.PathOp("map", "/p", nil)).To(Equal("map /p"))
	})
})
