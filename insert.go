package pgwrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

// Insert builds and executes a parameterized INSERT from alternating column
// name / value pairs:
//
//	db.Insert(ctx, "users", "name", "Al Bert", "uid", 10)
//
// Column values travel as driver parameters; table and column names are
// quoted as identifiers.
func (db *DB) Insert(ctx context.Context, table string, keyvals ...any) error {
	cols, err := keyvalsToMap(keyvals)
	if err != nil {
		return fmt.Errorf("pgwrap: insert into %s: %w", table, err)
	}
	return db.DictInsert(ctx, table, cols)
}

// DictInsert is Insert sourced from an explicit column-to-value mapping,
// useful when column names are awkward as literal arguments.
func (db *DB) DictInsert(ctx context.Context, table string, cols map[string]any) error {
	if len(cols) == 0 {
		return fmt.Errorf("pgwrap: insert into %s: no columns given", table)
	}
	quoted := make(map[string]any, len(cols))
	for name, value := range cols {
		quoted[quoteIdent(name)] = value
	}
	query, args, err := squirrel.Insert(quoteTable(table)).
		SetMap(quoted).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("pgwrap: building insert query: %w", err)
	}
	if err := db.begin(ctx); err != nil {
		return err
	}
	if _, err := db.tx.Exec(ctx, query, args...); err != nil {
		return err
	}
	return nil
}

// keyvalsToMap folds alternating name/value arguments into a column map.
// A later duplicate of a column name wins.
func keyvalsToMap(keyvals []any) (map[string]any, error) {
	if len(keyvals)%2 != 0 {
		return nil, fmt.Errorf("odd number of column arguments (%d)", len(keyvals))
	}
	cols := make(map[string]any, len(keyvals)/2)
	for i := 0; i < len(keyvals); i += 2 {
		name, ok := keyvals[i].(string)
		if !ok {
			return nil, fmt.Errorf("column name at position %d is %T, want string", i, keyvals[i])
		}
		if name == "" {
			return nil, fmt.Errorf("empty column name at position %d", i)
		}
		cols[name] = keyvals[i+1]
	}
	return cols, nil
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// quoteTable quotes a possibly schema-qualified table name.
func quoteTable(table string) string {
	return pgx.Identifier(strings.Split(table, ".")).Sanitize()
}
