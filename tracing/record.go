// Package tracing records the accesses made to physical memories.
package tracing

// An AccessRecord describes one element of a batch after it completed.
type AccessRecord struct {
	ID       string
	BatchID  string
	MemoryID string
	Dir      string
	Index    int
	Addr     uint64
	Size     uint64
	OK       bool
	Kind     string
	Error    string
}

// A TraceWriter stores access records.
type TraceWriter interface {
	// Init prepares the storage. It must be called before Write.
	Init() error

	// Write stores a record. Writers may buffer records.
	Write(r AccessRecord)

	// Flush makes sure all the buffered records are stored.
	Flush()
}

// Stats summarizes the accesses seen by a tracer.
type Stats struct {
	Batches      uint64 `json:"batches"`
	Reads        uint64 `json:"reads"`
	Writes       uint64 `json:"writes"`
	Failed       uint64 `json:"failed"`
	BytesRead    uint64 `json:"bytes_read"`
	BytesWritten uint64 `json:"bytes_written"`
}
