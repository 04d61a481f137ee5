package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"reelkeep/models"
)

// ErrNotFound is returned by lookups that require the row to exist.
var ErrNotFound = errors.New("record not found")

// DuplicateKeyError reports an insert that collided with an existing primary
// key.
type DuplicateKeyError struct {
	Table string
	ID    string
	Err   error
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate id %q in table %s", e.ID, e.Table)
}

func (e *DuplicateKeyError) Unwrap() error { return e.Err }

// wrapInsertErr maps a constraint violation to DuplicateKeyError so callers
// can branch on "already in the library" without inspecting driver codes.
func wrapInsertErr(err error, table, id string) error {
	if err == nil {
		return nil
	}
	var serr sqlite3.Error
	if errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint {
		return &DuplicateKeyError{Table: table, ID: id, Err: err}
	}
	return err
}

// scanMaps reads every row into a column-name map. []byte values come back
// as string so the maps are json-friendly and comparable.
func scanMaps(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			v := vals[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[c] = v
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// queryMaps runs a query and returns all rows as column-name maps.
func (r *Repository) queryMaps(query string, args ...any) ([]map[string]any, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMaps(rows)
}

// queryMap runs a query expected to yield at most one row. Returns
// (nil, nil) when no row matches.
func (r *Repository) queryMap(query string, args ...any) (map[string]any, error) {
	rows, err := r.queryMaps(query, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// tableColumns returns the column names of a table in declaration order.
func (r *Repository) tableColumns(table string) ([]string, error) {
	rows, err := r.db.Query(fmt.Sprintf("PRAGMA table_info(%s);", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

// InsertRow inserts a raw row into table, keeping only keys that are actual
// columns of the table. Untrusted keys (archive imports) never reach the
// statement text as anything but a whitelisted identifier.
func (r *Repository) InsertRow(table string, row map[string]any) error {
	cols, err := r.tableColumns(table)
	if err != nil {
		return err
	}

	var (
		names        []string
		placeholders []string
		args         []any
	)
	for _, c := range cols {
		v, ok := row[c]
		if !ok {
			continue
		}
		names = append(names, c)
		placeholders = append(placeholders, "?")
		args = append(args, v)
	}
	if len(names) == 0 {
		return fmt.Errorf("no known columns for table %s", table)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s);",
		table, strings.Join(names, ", "), strings.Join(placeholders, ", "))
	_, err = r.db.Exec(query, args...)
	return wrapInsertErr(err, table, models.RowString(row, "id"))
}
