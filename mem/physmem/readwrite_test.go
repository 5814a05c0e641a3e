package physmem_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rawmem/mem"
	"github.com/sarchlab/rawmem/mem/physmem"
	"github.com/sarchlab/rawmem/mem/remap"
)

var _ = Describe("Read-write Memory", func() {
	var (
		path string
		m    *physmem.Memory
	)

	BeforeEach(func() {
		path = writeImage(counting(16))

		var err error
		m, err = physmem.Open(path, 0, true)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(m.Close()).To(Succeed())
	})

	It("should report its metadata", func() {
		Expect(m.Metadata()).To(Equal(mem.Metadata{
			MaxAddress: 15,
			RealSize:   16,
			ReadOnly:   false,
		}))
		Expect(m.Path()).To(Equal(path))
		Expect(m.Base()).To(Equal(uint64(0)))
		Expect(m.ID()).NotTo(BeEmpty())
	})

	It("should only change the written bytes", func() {
		err := physmem.WriteFrom(m, 0x4, []byte{0xff, 0xff})
		Expect(err).NotTo(HaveOccurred())

		buf := make([]byte, 8)
		Expect(physmem.ReadInto(m, 0x0, buf)).To(Succeed())
		Expect(buf).To(Equal([]byte{0, 1, 2, 3, 0xff, 0xff, 6, 7}))
	})

	It("should return identical bytes on repeated reads", func() {
		first := make([]byte, 16)
		second := make([]byte, 16)

		Expect(physmem.ReadInto(m, 0, first)).To(Succeed())
		Expect(physmem.ReadInto(m, 0, second)).To(Succeed())
		Expect(second).To(Equal(first))
	})

	It("should run batches best-effort", func() {
		bufA := make([]byte, 2)
		bufB := make([]byte, 2)

		results := m.PhysRead([]mem.ReadOp{
			{Addr: 0x20, Buf: bufA},
			{Addr: 0x2, Buf: bufB},
		})

		Expect(errors.Is(results[0], mem.ErrOutOfBounds)).To(BeTrue())
		Expect(results.OK(1)).To(BeTrue())
		Expect(bufB).To(Equal([]byte{2, 3}))
	})

	It("should fail empty accesses outside the image", func() {
		results := m.PhysRead([]mem.ReadOp{
			{Addr: 0x8, Buf: []byte{}},
			{Addr: 0x100, Buf: []byte{}},
		})
		Expect(results.OK(0)).To(BeTrue())
		Expect(errors.Is(results[1], mem.ErrOutOfBounds)).To(BeTrue())

		results = m.PhysWrite([]mem.WriteOp{{Addr: 0x100, Data: nil}})
		Expect(errors.Is(results[0], mem.ErrOutOfBounds)).To(BeTrue())
	})

	It("should be cloneable", func() {
		clone, err := m.Clone()
		Expect(err).NotTo(HaveOccurred())
		Expect(clone.ID()).NotTo(Equal(m.ID()))
		Expect(clone.Metadata()).To(Equal(m.Metadata()))

		Expect(physmem.WriteFrom(clone, 3, []byte{0x33})).To(Succeed())
		Expect(clone.Close()).To(Succeed())

		buf := make([]byte, 1)
		Expect(physmem.ReadInto(m, 3, buf)).To(Succeed())
		Expect(buf[0]).To(Equal(byte(0x33)))
	})
})

var _ = Describe("Read-write Memory with a base", func() {
	It("should read back written bytes at every address", func() {
		path := writeImage(counting(64))
		m, err := physmem.Open(path, 0x7000, true)
		Expect(err).NotTo(HaveOccurred())
		defer m.Close()

		for a := uint64(0x7000); a < 0x7040-4; a += 7 {
			data := []byte{byte(a), byte(a >> 8), 0xaa, 0x55}
			Expect(physmem.WriteFrom(m, a, data)).To(Succeed())

			buf := make([]byte, 4)
			Expect(physmem.ReadInto(m, a, buf)).To(Succeed())
			Expect(buf).To(Equal(data))
		}
	})
})

var _ = DescribeTable("Metadata",
	func(base uint64, length int) {
		path := writeImage(counting(length))

		m, err := physmem.Open(path, base, true)
		Expect(err).NotTo(HaveOccurred())
		defer m.Close()

		md := m.Metadata()
		Expect(md.MaxAddress).To(Equal(base + uint64(length) - 1))
		Expect(md.RealSize).To(Equal(uint64(length)))
		Expect(md.ReadOnly).To(BeFalse())
	},
	Entry("one byte at zero", uint64(0), 1),
	Entry("page at zero", uint64(0), 4096),
	Entry("small image high up", uint64(0x100000000), 16),
	Entry("odd base", uint64(0x1234), 333),
)

var _ = Describe("Memory construction", func() {
	It("should fail to open a missing file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "missing.img")

		_, err := physmem.Open(path, 0, false)
		Expect(errors.Is(err, mem.ErrOpen)).To(BeTrue())
		Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())

		_, err = physmem.Open(path, 0, true)
		Expect(errors.Is(err, mem.ErrOpen)).To(BeTrue())
	})

	It("should name the missing file once", func() {
		path := filepath.Join(GinkgoT().TempDir(), "missing.img")

		_, err := physmem.Open(path, 0, false)
		Expect(strings.Count(err.Error(), path)).To(Equal(1))
		Expect(err.Error()).To(HavePrefix("open: open failed: open " + path))
	})

	It("should refuse an empty writable image", func() {
		path := writeImage(nil)

		_, err := physmem.Open(path, 0, true)
		Expect(errors.Is(err, mem.ErrInvalidArgs)).To(BeTrue())
		Expect(mem.KindOf(err)).To(Equal(mem.KindInvalidArgs))
	})

	It("should refuse a base that overflows the address space", func() {
		path := writeImage(counting(16))

		_, err := physmem.Open(path, math.MaxUint64-8, true)
		Expect(errors.Is(err, mem.ErrInvalidArgs)).To(BeTrue())
	})

	It("should use a custom remapper", func() {
		path := writeImage(counting(32))
		r, err := remap.New(
			remap.Entry{Base: 0x1000, Size: 16, Offset: 16},
			remap.Entry{Base: 0x8000, Size: 16, Offset: 0},
		)
		Expect(err).NotTo(HaveOccurred())

		m, err := physmem.MakeBuilder().
			WithWritable(true).
			WithRemapper(r).
			Build(path)
		Expect(err).NotTo(HaveOccurred())
		defer m.Close()

		Expect(m.Base()).To(Equal(uint64(0x1000)))
		Expect(m.Metadata().MaxAddress).To(Equal(uint64(0x800f)))
		Expect(m.Remapper()).To(BeIdenticalTo(r))

		buf := make([]byte, 2)
		Expect(physmem.ReadInto(m, 0x8000, buf)).To(Succeed())
		Expect(buf).To(Equal([]byte{0, 1}))
		Expect(physmem.ReadInto(m, 0x1000, buf)).To(Succeed())
		Expect(buf).To(Equal([]byte{16, 17}))
	})
})
