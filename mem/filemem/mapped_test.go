//go:build unix

package filemem_test

import (
	"errors"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rawmem/mem"
	"github.com/sarchlab/rawmem/mem/filemem"
	"github.com/sarchlab/rawmem/mem/remap"
)

var _ = Describe("MappedStore", func() {
	var (
		path  string
		store *filemem.MappedStore
	)

	BeforeEach(func() {
		path = writeImage(counting(16))

		f, err := os.Open(path)
		Expect(err).NotTo(HaveOccurred())

		r, err := remap.Identity(0x1000, 16)
		Expect(err).NotTo(HaveOccurred())

		store, err = filemem.NewMappedStore(f, r)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(store.Close()).To(Succeed())
	})

	It("should be read-only", func() {
		Expect(store.ReadOnly()).To(BeTrue())
		Expect(store.Len()).To(Equal(16))
	})

	It("should read from the base address", func() {
		buf := make([]byte, 4)
		results := store.Read([]mem.ReadOp{{Addr: 0x1000, Buf: buf}})

		Expect(results.Err()).NotTo(HaveOccurred())
		Expect(buf).To(Equal([]byte{0x00, 0x01, 0x02, 0x03}))
	})

	It("should fail out of bounds reads", func() {
		buf := make([]byte, 1)
		results := store.Read([]mem.ReadOp{{Addr: 0x1010, Buf: buf}})

		Expect(errors.Is(results[0], mem.ErrOutOfBounds)).To(BeTrue())
	})

	It("should attempt every element of a batch", func() {
		a := make([]byte, 2)
		b := make([]byte, 4)
		c := make([]byte, 2)

		results := store.Read([]mem.ReadOp{
			{Addr: 0x100e, Buf: a},
			{Addr: 0x100e, Buf: b},
			{Addr: 0x1000, Buf: c},
		})

		Expect(results.Failed()).To(Equal(1))
		Expect(results.OK(0)).To(BeTrue())
		Expect(errors.Is(results[1], mem.ErrOutOfBounds)).To(BeTrue())
		Expect(results.OK(2)).To(BeTrue())
		Expect(a).To(Equal([]byte{0x0e, 0x0f}))
		Expect(c).To(Equal([]byte{0x00, 0x01}))
	})

	It("should return the same bytes on repeated reads", func() {
		first := make([]byte, 8)
		second := make([]byte, 8)

		store.Read([]mem.ReadOp{{Addr: 0x1004, Buf: first}})
		store.Read([]mem.ReadOp{{Addr: 0x1004, Buf: second}})

		Expect(second).To(Equal(first))
	})

	It("should reject every write and leave the file alone", func() {
		results := store.Write([]mem.WriteOp{
			{Addr: 0x1000, Data: []byte{0xff, 0xff}},
			{Addr: 0x1008, Data: []byte{0xee}},
		})

		Expect(results.Failed()).To(Equal(2))
		for _, err := range results {
			Expect(errors.Is(err, mem.ErrReadOnly)).To(BeTrue())
		}

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal(counting(16)))
	})

	It("should fail reads after close", func() {
		Expect(store.Close()).To(Succeed())

		results := store.Read([]mem.ReadOp{{Addr: 0x1000, Buf: make([]byte, 1)}})
		Expect(errors.Is(results[0], mem.ErrMapping)).To(BeTrue())
	})
})

var _ = Describe("MappedStore with a remap table larger than the file", func() {
	It("should fail reads beyond the mapping", func() {
		path := writeImage(counting(8))
		f, err := os.Open(path)
		Expect(err).NotTo(HaveOccurred())

		r, err := remap.Identity(0, 32)
		Expect(err).NotTo(HaveOccurred())

		store, err := filemem.NewMappedStore(f, r)
		Expect(err).NotTo(HaveOccurred())
		defer store.Close()

		results := store.Read([]mem.ReadOp{
			{Addr: 4, Buf: make([]byte, 8)},
			{Addr: 0, Buf: make([]byte, 8)},
		})

		Expect(errors.Is(results[0], mem.ErrOutOfBounds)).To(BeTrue())
		Expect(results.OK(1)).To(BeTrue())
	})
})

var _ = Describe("MappedStore construction", func() {
	It("should fail on an empty file", func() {
		path := writeImage(nil)
		f, err := os.Open(path)
		Expect(err).NotTo(HaveOccurred())

		r, err := remap.Identity(0, 1)
		Expect(err).NotTo(HaveOccurred())

		_, err = filemem.NewMappedStore(f, r)
		Expect(errors.Is(err, mem.ErrMapping)).To(BeTrue())
	})
})
