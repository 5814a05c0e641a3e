package mem

//go:generate mockgen -destination "mock_mem/mock_physical_memory.go" -package mock_mem -write_package_comment=false github.com/sarchlab/rawmem/mem PhysicalMemory

// Metadata describes the address space a PhysicalMemory exposes. It is
// computed once when the memory is created.
type Metadata struct {
	// MaxAddress is the last valid address, inclusive.
	MaxAddress uint64 `json:"max_address"`
	// RealSize is the number of bytes backing the address space.
	RealSize uint64 `json:"real_size"`
	ReadOnly bool   `json:"readonly"`
}

// PhysicalMemory is a flat byte-addressable space that can be read and
// written in batches.
//
// Each element of a batch is attempted independently and reports its own
// result. The order in which the elements are executed is not defined.
// Implementations are not safe for concurrent use.
type PhysicalMemory interface {
	PhysRead(ops []ReadOp) Results
	PhysWrite(ops []WriteOp) Results
	Metadata() Metadata
}
