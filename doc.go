// Package pgwrap is a thin convenience facade over PostgreSQL access via
// pgx. It reshapes calling conventions only: flexible row access
// (positional, by name, or scanned into a struct), keyword-style insert
// helpers, and an implicit transaction that Commit and Rollback finalize.
// Protocol handling, pooling, and transaction isolation all belong to the
// driver.
//
// Basic usage:
//
//	db, err := pgwrap.Connect(ctx, &pgwrap.Config{ConnString: dsn})
//	if err != nil {
//		return err
//	}
//	defer db.Close(ctx)
//
//	user, err := db.QueryOne(ctx, "SELECT * FROM users WHERE name = $1", name)
//	if err != nil {
//		return err
//	}
//	if user == nil {
//		// no such user; an empty result is not an error
//	}
//
//	rows, err := db.Query(ctx, "SELECT * FROM status WHERE id = $1", 500)
//	if err != nil {
//		return err
//	}
//	defer rows.Close()
//	for rows.Next() {
//		fmt.Println("id:", rows.Cur().Get("id"))
//	}
//
//	if err := db.Insert(ctx, "users", "name", "Al Bert"); err != nil {
//		return err
//	}
//	if err := db.Commit(ctx); err != nil {
//		_ = db.Rollback(ctx)
//	}
//
// Caller-supplied values always travel as driver parameters; they are never
// interpolated into SQL text.
//
// A DB performs no locking of its own. Calls block until the driver
// responds, and callers sharing one handle across goroutines must serialize
// access themselves.
package pgwrap
