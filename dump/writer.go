// Package dump persists exchanged field values in a SQLite database, one
// table per named quantity, keyed by simulation time. It backs mid-run
// checkpoints and resume-from-checkpoint construction.
package dump

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/structs"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// A cellEntry is one cell of one field at one simulation time. The table
// schema is derived from its field names.
type cellEntry struct {
	Time  int64
	Cell  int64
	Value float64
}

// A Writer appends field snapshots to a dump database. Appends are buffered
// and flushed in batched transactions; a flush is also registered at process
// exit.
type Writer struct {
	*sql.DB

	path       string
	batchSize  int
	entryCount int
	buffered   map[string][]cellEntry
}

// NewWriter creates a dump database at the given path. An empty path gets a
// generated name. The file must not already exist.
func NewWriter(path string) *Writer {
	w := &Writer{
		path:      path,
		batchSize: 100000,
		buffered:  make(map[string][]cellEntry),
	}

	w.init()

	atexit.Register(func() { w.Flush() })

	return w
}

// NewWriterWithDB creates a Writer on an already-open database.
func NewWriterWithDB(db *sql.DB) *Writer {
	w := &Writer{
		DB:        db,
		batchSize: 100000,
		buffered:  make(map[string][]cellEntry),
	}

	atexit.Register(func() { w.Flush() })

	return w
}

func (w *Writer) init() {
	if w.path == "" {
		w.path = "coupler_dump_" + xid.New().String()
	}

	filename := w.path
	if !strings.HasSuffix(filename, ".sqlite3") {
		filename += ".sqlite3"
	}

	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	fmt.Fprintf(os.Stderr, "Dump database created: %s\n", filename)

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	w.DB = db
}

// CreateQuantity creates the table for one named quantity. Quantity names
// must be valid table names; the coupling configuration enforces this.
func (w *Writer) CreateQuantity(name string) {
	fields := strings.Join(structs.Names(cellEntry{}), ", \n\t")

	createTableSQL := `CREATE TABLE ` + name +
		` (` + "\n\t" + fields + "\n" + `);`
	w.mustExecute(createTableSQL)

	w.buffered[name] = nil
}

// Append records a full field snapshot for one quantity at one simulation
// time.
func (w *Writer) Append(name string, values []float64, timestamp int64) {
	_, exists := w.buffered[name]
	if !exists {
		panic(fmt.Sprintf("quantity %s does not exist in the dump", name))
	}

	for i, v := range values {
		w.buffered[name] = append(w.buffered[name], cellEntry{
			Time:  timestamp,
			Cell:  int64(i),
			Value: v,
		})
	}

	w.entryCount += len(values)
	if w.entryCount >= w.batchSize {
		w.Flush()
	}
}

// ListQuantities returns the names of all quantities in the dump.
func (w *Writer) ListQuantities() []string {
	names := make([]string, 0, len(w.buffered))
	for name := range w.buffered {
		names = append(names, name)
	}

	return names
}

// Flush writes all buffered entries into the database.
func (w *Writer) Flush() {
	if w.entryCount == 0 {
		return
	}

	w.mustExecute("BEGIN TRANSACTION")
	defer w.mustExecute("COMMIT TRANSACTION")

	for name, entries := range w.buffered {
		if len(entries) == 0 {
			continue
		}

		stmt := w.prepareStatement(name)

		for _, e := range entries {
			_, err := stmt.Exec(e.Time, e.Cell, e.Value)
			if err != nil {
				panic(err)
			}
		}

		w.buffered[name] = nil

		stmt.Close()
	}

	w.entryCount = 0
}

func (w *Writer) mustExecute(query string) sql.Result {
	res, err := w.Exec(query)
	if err != nil {
		fmt.Printf("Failed to execute: %s\n", query)
		panic(err)
	}

	return res
}

func (w *Writer) prepareStatement(name string) *sql.Stmt {
	n := structs.Names(cellEntry{})
	for i := range n {
		n[i] = "?"
	}

	sqlStr := "INSERT INTO " + name + " VALUES (" + strings.Join(n, ", ") + ")"

	stmt, err := w.Prepare(sqlStr)
	if err != nil {
		panic(err)
	}

	return stmt
}
