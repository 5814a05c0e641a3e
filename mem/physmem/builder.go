package physmem

import (
	"os"

	"github.com/sarchlab/rawmem/hooking"
	"github.com/sarchlab/rawmem/id"
	"github.com/sarchlab/rawmem/mem"
	"github.com/sarchlab/rawmem/mem/filemem"
	"github.com/sarchlab/rawmem/mem/mmap"
	"github.com/sarchlab/rawmem/mem/remap"
)

// A Builder can build memories.
type Builder struct {
	base     uint64
	writable bool
	remapper *remap.Remapper
	hooks    []hooking.Hook
	idGen    id.Generator
}

// MakeBuilder returns a new Builder. By default, the memory is read-only and
// starts at address 0.
func MakeBuilder() Builder {
	return Builder{
		idGen: id.NewParallelGenerator(),
	}
}

// WithBase sets the address of the first byte of the file.
func (b Builder) WithBase(base uint64) Builder {
	b.base = base
	return b
}

// WithWritable selects the read-write store instead of the read-only mapping.
func (b Builder) WithWritable(writable bool) Builder {
	b.writable = writable
	return b
}

// WithRemapper replaces the default translation table, which maps the whole
// file at the base address. The base is ignored when a remapper is given.
func (b Builder) WithRemapper(r *remap.Remapper) Builder {
	b.remapper = r
	return b
}

// WithHook registers a hook on the memory being built.
func (b Builder) WithHook(hook hooking.Hook) Builder {
	b.hooks = append(b.hooks[:len(b.hooks):len(b.hooks)], hook)
	return b
}

// WithIDGenerator sets the generator of the batch IDs.
func (b Builder) WithIDGenerator(g id.Generator) Builder {
	b.idGen = g
	return b
}

// Build opens the file at path and creates the memory. Any failure aborts the
// creation; no partially built memory is returned.
func (b Builder) Build(path string) (*Memory, error) {
	flag := os.O_RDONLY
	if b.writable {
		flag = os.O_RDWR
	}

	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, mem.NewAccessError(
			mem.KindOpen, mem.PathOp("open", path, err), 0, 0).
			WithErr(err)
	}

	size, err := b.fileSize(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	r, err := b.buildRemapper(size)
	if err != nil {
		f.Close()
		return nil, err
	}

	store, err := b.buildStore(f, r)
	if err != nil {
		return nil, err
	}

	m := &Memory{
		HookableBase: hooking.NewHookableBase(),
		id:           id.Generate(),
		path:         path,
		base:         r.MinAddress(),
		store:        store,
		remapper:     r,
		idGen:        b.idGen,
		metadata: mem.Metadata{
			MaxAddress: r.MaxAddress(),
			RealSize:   size,
			ReadOnly:   store.ReadOnly(),
		},
	}

	for _, h := range b.hooks {
		m.AcceptHook(h)
	}

	return m, nil
}

func (b Builder) fileSize(f *os.File) (uint64, error) {
	fi, err := f.Stat()
	if err != nil {
		return 0, mem.NewAccessError(
			mem.KindStat, mem.PathOp("stat", f.Name(), err), 0, 0).
			WithErr(err)
	}

	if fi.Size() > 0 {
		return uint64(fi.Size()), nil
	}

	// An empty image cannot form a non-empty address range.
	if b.writable {
		return 0, mem.NewAccessError(mem.KindInvalidArgs, "open "+f.Name(), 0, 0).
			WithErr(mmap.ErrEmptyFile)
	}

	return 0, mem.NewAccessError(mem.KindMapping, "map "+f.Name(), 0, 0).
		WithErr(mmap.ErrEmptyFile)
}

func (b Builder) buildRemapper(size uint64) (*remap.Remapper, error) {
	if b.remapper != nil {
		return b.remapper, nil
	}

	return remap.Identity(b.base, size)
}

func (b Builder) buildStore(
	f *os.File,
	r *remap.Remapper,
) (filemem.Store, error) {
	if b.writable {
		return filemem.NewBufferedStore(filemem.NewSharedFile(f), r), nil
	}

	return filemem.NewMappedStore(f, r)
}
