package physmem_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/rawmem/hooking"
	"github.com/sarchlab/rawmem/hooking/mock_hooking"
	"github.com/sarchlab/rawmem/id"
	"github.com/sarchlab/rawmem/mem"
	"github.com/sarchlab/rawmem/mem/physmem"
)

var _ = Describe("Memory hooks", func() {
	var (
		mockCtrl *gomock.Controller
		hook     *mock_hooking.MockHook
		m        *physmem.Memory
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		hook = mock_hooking.NewMockHook(mockCtrl)

		var err error
		m, err = physmem.MakeBuilder().
			WithWritable(true).
			WithBase(0x100).
			WithIDGenerator(id.NewSequentialGenerator()).
			WithHook(hook).
			Build(writeImage(counting(8)))
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(m.Close()).To(Succeed())
		mockCtrl.Finish()
	})

	It("should invoke hooks around reads", func() {
		var ctxs []hooking.HookCtx
		hook.EXPECT().Func(gomock.Any()).
			Do(func(ctx hooking.HookCtx) { ctxs = append(ctxs, ctx) }).
			Times(2)

		results := m.PhysRead([]mem.ReadOp{
			{Addr: 0x100, Buf: make([]byte, 4)},
			{Addr: 0x200, Buf: make([]byte, 2)},
		})

		Expect(ctxs).To(HaveLen(2))
		Expect(ctxs[0].Pos).To(BeIdenticalTo(physmem.HookPosBeforeRead))
		Expect(ctxs[0].Domain).To(BeIdenticalTo(m))
		Expect(ctxs[0].Detail).To(BeNil())
		Expect(ctxs[1].Pos).To(BeIdenticalTo(physmem.HookPosAfterRead))
		Expect(ctxs[1].Detail).To(Equal(results))

		batch := ctxs[0].Item.(*physmem.Batch)
		Expect(ctxs[1].Item).To(BeIdenticalTo(batch))
		Expect(batch.ID).To(Equal("1"))
		Expect(batch.MemoryID).To(Equal(m.ID()))
		Expect(batch.Dir).To(Equal(physmem.DirRead))
		Expect(batch.Accesses).To(Equal([]physmem.Access{
			{Addr: 0x100, Size: 4},
			{Addr: 0x200, Size: 2},
		}))
	})

	It("should invoke hooks around writes", func() {
		var positions []*hooking.HookPos
		var batch *physmem.Batch
		hook.EXPECT().Func(gomock.Any()).
			Do(func(ctx hooking.HookCtx) {
				positions = append(positions, ctx.Pos)
				batch = ctx.Item.(*physmem.Batch)
			}).
			Times(2)

		m.PhysWrite([]mem.WriteOp{{Addr: 0x104, Data: []byte{1, 2, 3}}})

		Expect(positions).To(Equal([]*hooking.HookPos{
			physmem.HookPosBeforeWrite,
			physmem.HookPosAfterWrite,
		}))
		Expect(batch.Dir).To(Equal(physmem.DirWrite))
		Expect(batch.Accesses).To(Equal([]physmem.Access{{Addr: 0x104, Size: 3}}))
	})

	It("should not carry hooks over to clones", func() {
		clone, err := m.Clone()
		Expect(err).NotTo(HaveOccurred())
		defer clone.Close()

		Expect(clone.NumHooks()).To(Equal(0))
		Expect(physmem.ReadInto(clone, 0x100, make([]byte, 1))).To(Succeed())
	})
})
