package tracing

import (
	"strconv"
	"sync"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/rawmem/hooking"
	"github.com/sarchlab/rawmem/mem"
	"github.com/sarchlab/rawmem/mem/physmem"
)

// AccessTracer is a hook that records every element of the batches issued to
// the memories it is attached to.
type AccessTracer struct {
	lock   sync.Mutex
	writer TraceWriter
	stats  Stats
}

// NewAccessTracer creates a tracer that sends the records to the writer. The
// writer can be nil, in which case the tracer only keeps statistics. The
// records are flushed when the program exits through atexit.
func NewAccessTracer(writer TraceWriter) *AccessTracer {
	t := &AccessTracer{
		writer: writer,
	}

	atexit.Register(func() { t.Terminate() })

	return t
}

// Func records the batch when it completes.
func (t *AccessTracer) Func(ctx hooking.HookCtx) {
	if ctx.Pos != physmem.HookPosAfterRead &&
		ctx.Pos != physmem.HookPosAfterWrite {
		return
	}

	batch, ok := ctx.Item.(*physmem.Batch)
	if !ok {
		return
	}

	results, _ := ctx.Detail.(mem.Results)

	t.record(batch, results)
}

func (t *AccessTracer) record(batch *physmem.Batch, results mem.Results) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.stats.Batches++

	for i, access := range batch.Accesses {
		var err error
		if i < len(results) {
			err = results[i]
		}

		t.count(batch.Dir, access, err)

		if t.writer == nil {
			continue
		}

		t.writer.Write(t.makeRecord(batch, i, access, err))
	}
}

func (t *AccessTracer) count(dir physmem.Direction, a physmem.Access, err error) {
	if err != nil {
		t.stats.Failed++
	}

	switch dir {
	case physmem.DirRead:
		t.stats.Reads++
		if err == nil {
			t.stats.BytesRead += a.Size
		}
	case physmem.DirWrite:
		t.stats.Writes++
		if err == nil {
			t.stats.BytesWritten += a.Size
		}
	}
}

func (t *AccessTracer) makeRecord(
	batch *physmem.Batch,
	index int,
	access physmem.Access,
	err error,
) AccessRecord {
	r := AccessRecord{
		ID:       batch.ID + "." + strconv.Itoa(index),
		BatchID:  batch.ID,
		MemoryID: batch.MemoryID,
		Dir:      string(batch.Dir),
		Index:    index,
		Addr:     access.Addr,
		Size:     access.Size,
		OK:       err == nil,
	}

	if err != nil {
		r.Kind = mem.KindOf(err).String()
		r.Error = err.Error()
	}

	return r
}

// Stats returns the statistics collected so far.
func (t *AccessTracer) Stats() Stats {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.stats
}

// Terminate flushes the writer.
func (t *AccessTracer) Terminate() {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.writer != nil {
		t.writer.Flush()
	}
}
