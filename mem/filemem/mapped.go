package filemem

import (
	"errors"
	"os"

	"github.com/sarchlab/rawmem/mem"
	"github.com/sarchlab/rawmem/mem/mmap"
	"github.com/sarchlab/rawmem/mem/remap"
)

// A MappedStore serves reads straight from a read-only memory mapping of the
// whole file. It rejects every write.
type MappedStore struct {
	file     *os.File
	region   *mmap.Region
	remapper *remap.Remapper
}

// NewMappedStore maps f and takes its ownership. The file is closed when the
// store is closed, or right away if the mapping cannot be created.
func NewMappedStore(f *os.File, r *remap.Remapper) (*MappedStore, error) {
	region, err := mmap.MapFile(f)
	if err != nil {
		f.Close()

		kind := mem.KindMapping
		var mmapErr *mmap.Error
		if errors.As(err, &mmapErr) && mmapErr.Op == "stat" {
			kind = mem.KindStat
		}

		return nil, mem.NewAccessError(
			kind, mem.PathOp("map", f.Name(), err), 0, 0).
			WithErr(err)
	}

	// The hint only affects performance.
	_ = region.AdviseRandom()

	return &MappedStore{
		file:     f,
		region:   region,
		remapper: r,
	}, nil
}

// ReadOnly always returns true.
func (s *MappedStore) ReadOnly() bool {
	return true
}

// Len returns the number of mapped bytes.
func (s *MappedStore) Len() int {
	return s.region.Len()
}

// Read copies the requested bytes out of the mapping.
func (s *MappedStore) Read(ops []mem.ReadOp) mem.Results {
	results := mem.NewResults(len(ops))

	for i, op := range ops {
		results[i] = s.read(op)
	}

	return results
}

func (s *MappedStore) read(op mem.ReadOp) error {
	data := s.region.Data()
	if data == nil {
		return mem.NewAccessError(
			mem.KindMapping, "read", op.Addr, uint64(len(op.Buf))).
			WithErr(mmap.ErrNotMapped)
	}

	_, err := forEachSpan(s.remapper, op.Addr, op.Buf,
		func(span remap.Span, buf []byte) (int, error) {
			if span.Offset > uint64(len(data)) ||
				span.Size > uint64(len(data))-span.Offset {
				return 0, mem.NewAccessError(
					mem.KindOutOfBounds, "read", span.Addr, span.Size)
			}

			return copy(buf, data[span.Offset:span.Offset+span.Size]), nil
		})

	return err
}

// Write fails every element, leaving the file untouched.
func (s *MappedStore) Write(ops []mem.WriteOp) mem.Results {
	results := mem.NewResults(len(ops))

	for i, op := range ops {
		results[i] = mem.NewAccessError(
			mem.KindReadOnly, "write", op.Addr, uint64(len(op.Data)))
	}

	return results
}

// Close unmaps the file and closes it.
func (s *MappedStore) Close() error {
	return errors.Join(s.region.Close(), s.closeFile())
}

func (s *MappedStore) closeFile() error {
	if s.file == nil {
		return nil
	}

	err := s.file.Close()
	s.file = nil

	return err
}
