package pgwrap

import "errors"

var (
	// ErrConnect reports that a session could not be established. Errors
	// returned by Connect wrap both ErrConnect and the driver's error.
	ErrConnect = errors.New("pgwrap: connect failed")

	// ErrTransaction reports a commit or rollback failure surfaced by the
	// driver. It is not retried.
	ErrTransaction = errors.New("pgwrap: transaction failed")

	// ErrTooManyRows is returned by QueryOne when the statement produced more
	// than one row.
	ErrTooManyRows = errors.New("pgwrap: query returned more than one row")

	// ErrNotSequential is returned by Rows.At when the requested index lies
	// before a row that has already been delivered. Result sets are
	// forward-only.
	ErrNotSequential = errors.New("pgwrap: rows can only be read sequentially")

	// ErrClosed is returned when an operation is attempted on a closed DB.
	ErrClosed = errors.New("pgwrap: database is closed")
)
