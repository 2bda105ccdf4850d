// Package extract pulls rows out of the gestionale through an open query
// session and maps the fixed-width legacy column layout into the local data
// model. Extractors build the domain SELECT, delegate execution to the
// session they are handed, and never open connections of their own.
package extract

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gestpos/gestsync/internal/extdb"
)

// Querier is the query surface extractors need. *extdb.Session satisfies it;
// tests substitute canned results.
type Querier interface {
	Execute(ctx context.Context, query string, args ...any) (*extdb.Result, error)
}

// trimString returns the column value trimmed of the fixed-width padding the
// gestionale stores, or "" when the column is absent or NULL.
func trimString(row extdb.Row, column string) string {
	v, ok := row[column]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

// optString is trimString lifted to *string: empty becomes nil so optional
// columns land as NULL locally instead of empty text.
func optString(row extdb.Row, column string) *string {
	s := trimString(row, column)
	if s == "" {
		return nil
	}
	return &s
}

// numberString renders a numeric column as a canonical decimal string. The
// local model keeps money and rates as text; absent or NULL numerics default
// to "0".
func numberString(row extdb.Row, column string) string {
	v, ok := row[column]
	if !ok || v == nil {
		return "0"
	}
	switch t := v.(type) {
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return "0"
		}
		return s
	default:
		return fmt.Sprintf("%v", t)
	}
}

// DecodeFlag decodes the gestionale's boolean encodings. The external system
// is inconsistent about how it writes flags, so every truthy spelling seen
// in the field is accepted: the strings S, 1, Y, T, TRUE (case-insensitive),
// numeric 1, and boolean true. Everything else is false.
func DecodeFlag(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		switch strings.ToUpper(strings.TrimSpace(t)) {
		case "S", "1", "Y", "T", "TRUE":
			return true
		}
		return false
	case int:
		return t == 1
	case int64:
		return t == 1
	case float64:
		return t == 1
	case float32:
		return t == 1
	default:
		return false
	}
}
