package extdb

import (
	"fmt"
	"strings"
)

// SubstituteParams reproduces the textual $N parameter substitution of the
// system this service replaced: each $1, $2, ... placeholder is replaced
// positionally, string values are single-quoted with embedded quotes
// doubled, and every other value is rendered with its default formatting.
//
// The live query path uses driver-native placeholders instead (see
// Session.Execute); this helper exists only so migrated callers can verify
// byte-for-byte what SQL the old system would have produced. Do not use it
// to build statements that are actually executed.
func SubstituteParams(query string, params []any) string {
	for i, p := range params {
		placeholder := fmt.Sprintf("$%d", i+1)
		query = strings.ReplaceAll(query, placeholder, renderLiteral(p))
	}
	return query
}

func renderLiteral(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(t, "'", "''") + "'"
	default:
		return fmt.Sprintf("%v", t)
	}
}
