package tracing

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

var csvHeader = []string{
	"ID", "BatchID", "MemoryID", "Dir", "Index",
	"Addr", "Size", "OK", "Kind", "Error",
}

// CSVWriter stores access records in a CSV file.
type CSVWriter struct {
	path string
	file *os.File
	csv  *csv.Writer

	records    []AccessRecord
	bufferSize int
}

// NewCSVWriter creates a new CSVWriter. The file is created at path + ".csv".
// If the path is empty, a unique name is generated.
func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{
		path:       path,
		bufferSize: 1000,
	}
}

// FileName returns the name of the CSV file.
func (t *CSVWriter) FileName() string {
	return t.path + ".csv"
}

// Init creates the CSV file. It fails if the file already exists.
func (t *CSVWriter) Init() error {
	if t.path == "" {
		t.path = "rawmem_trace_" + xid.New().String()
	}

	filename := t.FileName()
	if _, err := os.Stat(filename); err == nil {
		return fmt.Errorf("file %s already exists", filename)
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	t.file = file
	t.csv = csv.NewWriter(file)

	if err := t.csv.Write(csvHeader); err != nil {
		return err
	}

	t.csv.Flush()
	if err := t.csv.Error(); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Accesses are traced in file: %s\n", filename)

	atexit.Register(func() {
		t.Flush()

		if err := t.file.Close(); err != nil {
			panic(err)
		}
	})

	return nil
}

// Write buffers a record and writes the buffer when it is full.
func (t *CSVWriter) Write(r AccessRecord) {
	t.records = append(t.records, r)
	if len(t.records) >= t.bufferSize {
		t.Flush()
	}
}

// Flush writes the buffered records to the file.
func (t *CSVWriter) Flush() {
	for _, r := range t.records {
		err := t.csv.Write([]string{
			r.ID,
			r.BatchID,
			r.MemoryID,
			r.Dir,
			strconv.Itoa(r.Index),
			fmt.Sprintf("0x%x", r.Addr),
			strconv.FormatUint(r.Size, 10),
			strconv.FormatBool(r.OK),
			r.Kind,
			r.Error,
		})
		if err != nil {
			panic(err)
		}
	}

	t.records = nil

	t.csv.Flush()
	if err := t.csv.Error(); err != nil {
		panic(err)
	}
}
