package tracing

import (
	"database/sql"
	"fmt"
	"os"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// SQLiteWriter is a writer that writes access records to a SQLite database.
type SQLiteWriter struct {
	*sql.DB
	statement *sql.Stmt

	dbName           string
	recordsToWriteDB []AccessRecord
	batchSize        int
}

// NewSQLiteWriter creates a new SQLiteWriter. The database is created at
// path + ".sqlite3". If the path is empty, a unique name is generated.
func NewSQLiteWriter(path string) *SQLiteWriter {
	w := &SQLiteWriter{
		dbName:    path,
		batchSize: 100000,
	}

	atexit.Register(func() { w.Flush() })

	return w
}

// WithBatchSize sets how many records are buffered before they are written.
func (t *SQLiteWriter) WithBatchSize(n int) *SQLiteWriter {
	t.batchSize = n
	return t
}

// DBName returns the name of the database file.
func (t *SQLiteWriter) DBName() string {
	return t.dbName + ".sqlite3"
}

// Init creates the database and its table.
func (t *SQLiteWriter) Init() error {
	if t.dbName == "" {
		t.dbName = "rawmem_trace_" + xid.New().String()
	}

	filename := t.DBName()
	if _, err := os.Stat(filename); err == nil {
		return fmt.Errorf("file %s already exists", filename)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return err
	}

	t.DB = db

	if err := t.createTable(); err != nil {
		return err
	}

	t.statement, err = t.Prepare(`
		INSERT INTO trace VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Accesses are traced in database: %s\n", filename)

	return nil
}

func (t *SQLiteWriter) createTable() error {
	_, err := t.Exec(`
		CREATE TABLE trace (
			id        VARCHAR(200) NOT NULL PRIMARY KEY,
			batch_id  VARCHAR(200) NOT NULL,
			memory_id VARCHAR(200) NOT NULL,
			dir       VARCHAR(8)   NOT NULL,
			idx       INT          NOT NULL,
			addr      BIGINT       NOT NULL,
			size      BIGINT       NOT NULL,
			ok        BOOLEAN      NOT NULL,
			kind      VARCHAR(32),
			error     TEXT
		);
	`)
	if err != nil {
		return err
	}

	_, err = t.Exec(`CREATE INDEX trace_addr_index ON trace(addr);`)

	return err
}

// Write buffers a record and writes the buffer when it is full.
func (t *SQLiteWriter) Write(r AccessRecord) {
	t.recordsToWriteDB = append(t.recordsToWriteDB, r)
	if len(t.recordsToWriteDB) >= t.batchSize {
		t.Flush()
	}
}

// Flush writes all the buffered records to the database.
func (t *SQLiteWriter) Flush() {
	if len(t.recordsToWriteDB) == 0 {
		return
	}

	t.mustExecute("BEGIN TRANSACTION")
	defer t.mustExecute("COMMIT TRANSACTION")

	for _, r := range t.recordsToWriteDB {
		// SQLite integers are signed. Addresses keep their bit pattern.
		_, err := t.statement.Exec(
			r.ID,
			r.BatchID,
			r.MemoryID,
			r.Dir,
			r.Index,
			int64(r.Addr),
			int64(r.Size),
			r.OK,
			r.Kind,
			r.Error,
		)
		if err != nil {
			panic(fmt.Errorf("inserting record %s: %w", r.ID, err))
		}
	}

	t.recordsToWriteDB = nil
}

func (t *SQLiteWriter) mustExecute(query string) sql.Result {
	res, err := t.Exec(query)
	if err != nil {
		fmt.Printf("Failed to execute: %s\n", query)
		panic(err)
	}

	return res
}
