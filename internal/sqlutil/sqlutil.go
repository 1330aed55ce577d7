// Package sqlutil holds small helpers for the SQLite mirror's queries.
package sqlutil

import (
	"database/sql"
	"strings"
)

// Placeholders returns "?, ?, ..." for items together with the matching
// args, for use in an IN clause. With no items it returns "NULL", so
// `IN (NULL)` matches nothing.
func Placeholders[S ~string](items []S) (string, []any) {
	if len(items) == 0 {
		return "NULL", nil
	}
	ph := make([]string, len(items))
	args := make([]any, len(items))
	for i, item := range items {
		ph[i] = "?"
		args[i] = string(item)
	}
	return strings.Join(ph, ", "), args
}

// ScanRows scans every row with scan and closes rows.
func ScanRows[T any](rows *sql.Rows, scan func(*sql.Rows) (T, error)) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
