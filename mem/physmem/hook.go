package physmem

import (
	"github.com/sarchlab/rawmem/hooking"
	"github.com/sarchlab/rawmem/mem"
)

// Hook positions triggered by a Memory. The Item of the HookCtx is a *Batch.
// At the After positions, the Detail is the mem.Results of the batch.
var (
	HookPosBeforeRead  = &hooking.HookPos{Name: "BeforeRead"}
	HookPosAfterRead   = &hooking.HookPos{Name: "AfterRead"}
	HookPosBeforeWrite = &hooking.HookPos{Name: "BeforeWrite"}
	HookPosAfterWrite  = &hooking.HookPos{Name: "AfterWrite"}
)

// Direction tells whether a batch reads or writes.
type Direction string

// The directions of a batch.
const (
	DirRead  Direction = "read"
	DirWrite Direction = "write"
)

// An Access is the address range touched by one element of a batch.
type Access struct {
	Addr uint64
	Size uint64
}

// A Batch describes a batched call, as seen by hooks.
type Batch struct {
	ID       string
	MemoryID string
	Dir      Direction
	Accesses []Access
}

func readBatch(ops []mem.ReadOp) []Access {
	accesses := make([]Access, len(ops))
	for i, op := range ops {
		accesses[i] = Access{Addr: op.Addr, Size: uint64(len(op.Buf))}
	}

	return accesses
}

func writeBatch(ops []mem.WriteOp) []Access {
	accesses := make([]Access, len(ops))
	for i, op := range ops {
		accesses[i] = Access{Addr: op.Addr, Size: uint64(len(op.Data))}
	}

	return accesses
}
