package filemem_test

import (
	"errors"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rawmem/mem/filemem"
)

var _ = Describe("SharedFile", func() {
	var (
		f      *os.File
		shared *filemem.SharedFile
	)

	BeforeEach(func() {
		var err error
		f, err = os.Open(writeImage(counting(4)))
		Expect(err).NotTo(HaveOccurred())

		shared = filemem.NewSharedFile(f)
	})

	It("should count the handles", func() {
		clone := shared.Clone()
		other := clone.Clone()

		Expect(shared.Refs()).To(Equal(int64(3)))
		Expect(other.File()).To(BeIdenticalTo(f))

		Expect(other.Close()).To(Succeed())
		Expect(other.Close()).To(Succeed())
		Expect(shared.Refs()).To(Equal(int64(2)))

		Expect(clone.Close()).To(Succeed())
		Expect(shared.Close()).To(Succeed())
		Expect(shared.Refs()).To(Equal(int64(0)))
	})

	It("should keep the file open until the last handle is closed", func() {
		clone := shared.Clone()
		Expect(shared.Close()).To(Succeed())

		buf := make([]byte, 2)
		n, err := clone.ReadAt(buf, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(2))
		Expect(buf).To(Equal([]byte{2, 3}))

		Expect(clone.Close()).To(Succeed())

		_, err = f.ReadAt(buf, 0)
		Expect(errors.Is(err, os.ErrClosed)).To(BeTrue())
	})
})
