package pgwrap

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"

	"github.com/georgysavva/scany/v2/dbscan"
)

// Row is one materialized result row: an immutable ordered set of
// (column, value) pairs. The same data is reachable positionally (Index,
// Values), by column name (Get, Lookup, Map), or scanned into struct fields
// (ScanStruct).
type Row struct {
	columns []string
	index   map[string]int
	values  []any
}

func newRow(columns []string, values []any) *Row {
	cols := make([]string, len(columns))
	copy(cols, columns)
	vals := make([]any, len(values))
	copy(vals, values)
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		if _, dup := idx[c]; !dup {
			idx[c] = i
		}
	}
	return &Row{columns: cols, index: idx, values: vals}
}

// Len returns the number of columns.
func (r *Row) Len() int { return len(r.values) }

// Columns returns the column names in result order.
func (r *Row) Columns() []string {
	cols := make([]string, len(r.columns))
	copy(cols, r.columns)
	return cols
}

// Values returns the column values in result order.
func (r *Row) Values() []any {
	vals := make([]any, len(r.values))
	copy(vals, r.values)
	return vals
}

// Index returns the value of column i. It panics if i is out of range, the
// same way indexing a slice would.
func (r *Row) Index(i int) any { return r.values[i] }

// Get returns the value of the named column, or nil when the row has no such
// column. A single trailing underscore is stripped when the literal name is
// absent, so Get("type_") reads the "type" column.
func (r *Row) Get(name string) any {
	v, _ := r.Lookup(name)
	return v
}

// Lookup returns the value of the named column and whether it exists.
func (r *Row) Lookup(name string) (any, bool) {
	if i, ok := r.index[name]; ok {
		return r.values[i], true
	}
	if trimmed, found := strings.CutSuffix(name, "_"); found {
		if i, ok := r.index[trimmed]; ok {
			return r.values[i], true
		}
	}
	return nil, false
}

// Map returns the row as a name-keyed map. For duplicate column names the
// first occurrence wins.
func (r *Row) Map() map[string]any {
	m := make(map[string]any, len(r.index))
	for name, i := range r.index {
		m[name] = r.values[i]
	}
	return m
}

// ScanStruct scans the row into dest, a pointer to a struct, using dbscan's
// column-to-field mapping (snake_case names, `db` tags honored).
func (r *Row) ScanStruct(dest any) error {
	return dbscan.ScanRow(dest, &rowSource{row: r})
}

// rowSource adapts one materialized Row to the dbscan.Rows interface.
type rowSource struct {
	row *Row
}

func (s *rowSource) Close() error        { return nil }
func (s *rowSource) Err() error          { return nil }
func (s *rowSource) Next() bool          { return false }
func (s *rowSource) NextResultSet() bool { return false }

func (s *rowSource) Columns() ([]string, error) { return s.row.Columns(), nil }

func (s *rowSource) Scan(dest ...any) error {
	if len(dest) != len(s.row.values) {
		return fmt.Errorf("pgwrap: scan expects %d destinations, got %d", len(s.row.values), len(dest))
	}
	for i, d := range dest {
		if err := assignValue(d, s.row.values[i]); err != nil {
			return fmt.Errorf("pgwrap: scan column %q: %w", s.row.columns[i], err)
		}
	}
	return nil
}

// assignValue stores the already-decoded driver value v into the pointer dst.
func assignValue(dst any, v any) error {
	if d, ok := dst.(*any); ok {
		*d = v
		return nil
	}
	if scanner, ok := dst.(sql.Scanner); ok {
		return scanner.Scan(v)
	}
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("destination must be a non-nil pointer, got %T", dst)
	}
	elem := rv.Elem()
	if v == nil {
		elem.Set(reflect.Zero(elem.Type()))
		return nil
	}
	sv := reflect.ValueOf(v)
	if sv.Type().AssignableTo(elem.Type()) {
		elem.Set(sv)
		return nil
	}
	if elem.Kind() == reflect.Pointer && sv.Type().AssignableTo(elem.Type().Elem()) {
		p := reflect.New(elem.Type().Elem())
		p.Elem().Set(sv)
		elem.Set(p)
		return nil
	}
	if convertibleValue(sv.Type(), elem.Type()) {
		elem.Set(sv.Convert(elem.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", v, elem.Type())
}

// convertibleValue permits numeric widening/narrowing and bytes-to-string,
// but not the rune-style int-to-string conversions reflect would allow.
func convertibleValue(from, to reflect.Type) bool {
	if !from.ConvertibleTo(to) {
		return false
	}
	if isNumeric(from.Kind()) && isNumeric(to.Kind()) {
		return true
	}
	if from.Kind() == reflect.Slice && from.Elem().Kind() == reflect.Uint8 && to.Kind() == reflect.String {
		return true
	}
	if from.Kind() == reflect.String && to.Kind() == reflect.Slice && to.Elem().Kind() == reflect.Uint8 {
		return true
	}
	return false
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
