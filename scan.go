package pgwrap

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"
)

// Select executes a parameterized statement and scans all rows into dest, a
// pointer to a slice of structs (snake_case column-to-field mapping, `db`
// tags honored).
func (db *DB) Select(ctx context.Context, dest any, sql string, args ...any) error {
	if err := db.begin(ctx); err != nil {
		return err
	}
	return pgxscan.Select(ctx, db.tx, dest, sql, args...)
}

// Get executes a parameterized statement and scans the first row into dest,
// a pointer to a struct. It reports whether a row was found; zero rows is
// not an error.
func (db *DB) Get(ctx context.Context, dest any, sql string, args ...any) (bool, error) {
	if err := db.begin(ctx); err != nil {
		return false, err
	}
	if err := pgxscan.Get(ctx, db.tx, dest, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
