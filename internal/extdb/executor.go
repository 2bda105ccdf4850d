package extdb

import (
	"context"
	"fmt"
	"strings"
)

// Row is one result row keyed by column name. Values keep the driver's Go
// types (string, int64, float64, bool, time.Time) with []byte normalized to
// string; NULL is a nil entry.
type Row map[string]any

// Result is the uniform shape every query produces regardless of the
// driver-specific result object.
type Result struct {
	Columns  []string `json:"columns"`
	Rows     []Row    `json:"rows"`
	RowCount int      `json:"rowCount"`
	Command  string   `json:"command"`
}

// Execute runs a single statement over the session with driver-native
// parameter binding (? placeholders) and normalizes the result. The
// statement is bounded by QueryTimeout. The connection itself stays owned by
// the caller: extractors never open or close sessions.
func (s *Session) Execute(ctx context.Context, query string, args ...any) (*Result, error) {
	qctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(qctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("extdb: query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("extdb: columns: %w", err)
	}

	result := &Result{
		Columns: columns,
		Command: CommandToken(query),
	}

	scan := make([]any, len(columns))
	for i := range scan {
		scan[i] = new(any)
	}

	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return nil, fmt.Errorf("extdb: scan row %d: %w", result.RowCount, err)
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(*(scan[i].(*any)))
		}
		result.Rows = append(result.Rows, row)
		result.RowCount++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("extdb: read rows: %w", err)
	}

	return result, nil
}

// CommandToken returns the first whitespace-delimited token of a SQL
// statement, upper-cased ("SELECT", "UPDATE", ...).
func CommandToken(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}

// normalizeValue flattens driver-specific representations: the MS SQL driver
// returns []byte for char/varchar columns on some code paths.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
