package migration

import (
	"database/sql"
	"fmt"
)

// tableOrder gives the primary-key ordering used for spot checks.
var tableOrder = map[string]string{
	"folders":        "id",
	"documents":      "id",
	"document_pages": "id",
	"tags":           "id",
	"document_tags":  "document_id, tag_id",
	"signatures":     "id",
	"search_history": "id",
}

// CompareTable verifies that one table was copied intact: identical row
// counts, and field-equal first and last rows by primary key.
func CompareTable(src, dst *sql.DB, table, orderBy string) error {
	if orderBy == "" {
		orderBy = "rowid"
	}

	var srcCount, dstCount int64
	if err := src.QueryRow("SELECT count(*) FROM " + table).Scan(&srcCount); err != nil {
		return fmt.Errorf("count source rows: %w", err)
	}
	if err := dst.QueryRow("SELECT count(*) FROM " + table).Scan(&dstCount); err != nil {
		return fmt.Errorf("count destination rows: %w", err)
	}
	if srcCount != dstCount {
		return fmt.Errorf("row count mismatch: source %d, destination %d", srcCount, dstCount)
	}

	if srcCount == 0 {
		return nil
	}

	for _, dir := range []string{"ASC", "DESC"} {
		query := fmt.Sprintf("SELECT * FROM %s ORDER BY %s %s LIMIT 1", table, orderBy, dir)

		srcRow, err := readRow(src, query)
		if err != nil {
			return fmt.Errorf("read source row: %w", err)
		}
		dstRow, err := readRow(dst, query)
		if err != nil {
			return fmt.Errorf("read destination row: %w", err)
		}

		if len(srcRow) != len(dstRow) {
			return fmt.Errorf("column count mismatch: source %d, destination %d",
				len(srcRow), len(dstRow))
		}
		for i := range srcRow {
			if srcRow[i] != dstRow[i] {
				return fmt.Errorf("field mismatch at column %d: source %q, destination %q",
					i, srcRow[i], dstRow[i])
			}
		}
	}

	return nil
}

// readRow fetches a single row with every field normalized to a string.
func readRow(db *sql.DB, query string) ([]string, error) {
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sql.ErrNoRows
	}

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	values := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	fields := make([]string, len(cols))
	for i, v := range values {
		switch val := v.(type) {
		case nil:
			fields[i] = "<nil>"
		case []byte:
			fields[i] = string(val)
		default:
			fields[i] = fmt.Sprintf("%v", val)
		}
	}

	return fields, rows.Err()
}
