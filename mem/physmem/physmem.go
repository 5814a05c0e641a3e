// Package physmem exposes a memory image file as physical memory.
package physmem

import (
	"errors"

	"github.com/sarchlab/rawmem/hooking"
	"github.com/sarchlab/rawmem/id"
	"github.com/sarchlab/rawmem/mem"
	"github.com/sarchlab/rawmem/mem/filemem"
	"github.com/sarchlab/rawmem/mem/remap"
)

// ErrCloneReadOnly is returned when cloning a read-only memory.
var ErrCloneReadOnly = errors.New("physmem: read-only memory cannot be cloned")

// Memory is a physical memory backed by a file. The store is chosen once,
// when the memory is built: a read-only mapping or a read-write file.
//
// A Memory is not safe for concurrent use. Clone a read-write memory to get an
// independent instance that shares the same open file.
type Memory struct {
	*hooking.HookableBase

	id       string
	path     string
	base     uint64
	store    filemem.Store
	remapper *remap.Remapper
	metadata mem.Metadata
	idGen    id.Generator
}

var _ mem.PhysicalMemory = (*Memory)(nil)

// Open creates a memory from the file at path, placing the first byte of the
// file at base.
func Open(path string, base uint64, writable bool) (*Memory, error) {
	return MakeBuilder().
		WithBase(base).
		WithWritable(writable).
		Build(path)
}

// ID returns the unique ID of the memory.
func (m *Memory) ID() string {
	return m.id
}

// Path returns the path of the backing file.
func (m *Memory) Path() string {
	return m.path
}

// Base returns the address of the first byte of the file.
func (m *Memory) Base() uint64 {
	return m.base
}

// Remapper returns the address translation table of the memory.
func (m *Memory) Remapper() *remap.Remapper {
	return m.remapper
}

// Metadata returns the metadata computed when the memory was created.
func (m *Memory) Metadata() mem.Metadata {
	return m.metadata
}

// PhysRead reads every element of the batch.
func (m *Memory) PhysRead(ops []mem.ReadOp) mem.Results {
	if m.NumHooks() == 0 {
		return m.store.Read(ops)
	}

	batch := m.newBatch(DirRead, readBatch(ops))
	m.InvokeHook(hooking.HookCtx{
		Domain: m,
		Pos:    HookPosBeforeRead,
		Item:   batch,
	})

	results := m.store.Read(ops)

	m.InvokeHook(hooking.HookCtx{
		Domain: m,
		Pos:    HookPosAfterRead,
		Item:   batch,
		Detail: results,
	})

	return results
}

// PhysWrite writes every element of the batch. On a read-only memory, all the
// elements fail with mem.ErrReadOnly.
func (m *Memory) PhysWrite(ops []mem.WriteOp) mem.Results {
	if m.NumHooks() == 0 {
		return m.store.Write(ops)
	}

	batch := m.newBatch(DirWrite, writeBatch(ops))
	m.InvokeHook(hooking.HookCtx{
		Domain: m,
		Pos:    HookPosBeforeWrite,
		Item:   batch,
	})

	results := m.store.Write(ops)

	m.InvokeHook(hooking.HookCtx{
		Domain: m,
		Pos:    HookPosAfterWrite,
		Item:   batch,
		Detail: results,
	})

	return results
}

func (m *Memory) newBatch(dir Direction, accesses []Access) *Batch {
	return &Batch{
		ID:       m.idGen.Generate(),
		MemoryID: m.id,
		Dir:      dir,
		Accesses: accesses,
	}
}

// Clone returns a new memory that shares the open file of m. The clone has
// its own ID and no hooks. Only read-write memories can be cloned.
func (m *Memory) Clone() (*Memory, error) {
	store, ok := m.store.(*filemem.BufferedStore)
	if !ok {
		return nil, ErrCloneReadOnly
	}

	clone := *m
	clone.HookableBase = hooking.NewHookableBase()
	clone.id = id.Generate()
	clone.store = store.Clone()

	return &clone, nil
}

// Close releases the file, and the mapping for read-only memories.
func (m *Memory) Close() error {
	return m.store.Close()
}

// ReadInto reads len(buf) bytes at addr with a single-element batch.
func ReadInto(m mem.PhysicalMemory, addr uint64, buf []byte) error {
	return m.PhysRead([]mem.ReadOp{{Addr: addr, Buf: buf}})[0]
}

// WriteFrom writes data at addr with a single-element batch.
func WriteFrom(m mem.PhysicalMemory, addr uint64, data []byte) error {
	return m.PhysWrite([]mem.WriteOp{{Addr: addr, Data: data}})[0]
}
