package dump

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrTimestampNotFound is returned when a dump holds no snapshot at the
// requested simulation time.
var ErrTimestampNotFound = errors.New("timestamp not found in dump")

// Latest selects the most recent snapshot in Reader.Load.
const Latest int64 = -1

// A Reader loads field snapshots back out of a dump database.
type Reader struct {
	*sql.DB
}

// NewReader opens a dump database for reading.
func NewReader(path string) (*Reader, error) {
	filename := path
	if !strings.HasSuffix(filename, ".sqlite3") {
		filename += ".sqlite3"
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, err
	}

	return &Reader{DB: db}, nil
}

// NewReaderWithDB creates a Reader on an already-open database.
func NewReaderWithDB(db *sql.DB) *Reader {
	return &Reader{DB: db}
}

// Load returns the field snapshot of one quantity at the given simulation
// time, along with the resolved time. Passing Latest selects the most
// recent snapshot.
func (r *Reader) Load(name string, timestamp int64) ([]float64, int64, error) {
	resolved := timestamp

	if timestamp == Latest {
		var err error

		resolved, err = r.LatestTime(name)
		if err != nil {
			return nil, 0, err
		}
	}

	query := fmt.Sprintf(
		"SELECT Cell, Value FROM %s WHERE Time = ? ORDER BY Cell", name)

	rows, err := r.Query(query, resolved)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var values []float64

	for rows.Next() {
		var cell int64

		var value float64

		if err := rows.Scan(&cell, &value); err != nil {
			return nil, 0, err
		}

		values = append(values, value)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if len(values) == 0 {
		return nil, 0, fmt.Errorf("%w: %s at time %d",
			ErrTimestampNotFound, name, resolved)
	}

	return values, resolved, nil
}

// LatestTime returns the most recent snapshot time recorded for a quantity.
func (r *Reader) LatestTime(name string) (int64, error) {
	query := fmt.Sprintf("SELECT MAX(Time) FROM %s", name)

	var t sql.NullInt64

	err := r.QueryRow(query).Scan(&t)
	if err != nil {
		return 0, err
	}

	if !t.Valid {
		return 0, fmt.Errorf("%w: %s is empty", ErrTimestampNotFound, name)
	}

	return t.Int64, nil
}

// Close closes the underlying database.
func (r *Reader) Close() error {
	return r.DB.Close()
}
