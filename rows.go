package pgwrap

import (
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Rows is a lazy, forward-only result set. Rows are fetched from the driver
// on demand, either through Next/Cur iteration or through At, and the set is
// finite and not restartable. Index access must be non-decreasing: once row
// i has been delivered, any index below i fails with ErrNotSequential.
type Rows struct {
	rows    pgx.Rows
	columns []string
	pos     int // rows delivered so far
	cur     *Row
	err     error
	closed  bool
}

func newRows(pgxRows pgx.Rows) *Rows {
	fields := pgxRows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}
	return &Rows{rows: pgxRows, columns: columns}
}

// Columns returns the column names of the result.
func (r *Rows) Columns() []string {
	cols := make([]string, len(r.columns))
	copy(cols, r.columns)
	return cols
}

// Next fetches the next row, making it available via Cur. It returns false
// when the set is exhausted or a driver error occurred; check Err afterwards.
func (r *Rows) Next() bool {
	if r.closed {
		return false
	}
	if r.rows.Next() {
		values, err := r.rows.Values()
		if err != nil {
			r.err = err
			r.Close()
			return false
		}
		r.cur = newRow(r.columns, values)
		r.pos++
		return true
	}
	r.err = r.rows.Err()
	r.Close()
	return false
}

// Cur returns the row most recently delivered by Next or At, or nil before
// the first fetch.
func (r *Rows) Cur() *Row { return r.cur }

// Err returns the first driver error encountered while reading.
func (r *Rows) Err() error { return r.err }

// Close releases the underlying driver rows. It is idempotent and implied by
// reading through the end of the set.
func (r *Rows) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.rows.Close()
	if r.err == nil {
		r.err = r.rows.Err()
	}
}

// At returns the row at index i, advancing through the set as needed. The
// last delivered row is cached, so re-requesting the same index is allowed.
// Past the end At returns (nil, nil): an exhausted or empty result is not an
// error, so callers can branch on the nil row directly.
func (r *Rows) At(i int) (*Row, error) {
	if i < 0 {
		return nil, fmt.Errorf("pgwrap: negative row index %d", i)
	}
	if i < r.pos-1 {
		return nil, fmt.Errorf("%w: index %d requested after %d", ErrNotSequential, i, r.pos-1)
	}
	for i >= r.pos {
		if !r.Next() {
			if r.err != nil {
				return nil, r.err
			}
			return nil, nil
		}
	}
	return r.cur, nil
}
