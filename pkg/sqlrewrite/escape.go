// Package sqlrewrite implements the textual transforms applied to generated
// SQL: literal escaping, entity-literal scanning, pagination rewriting, and
// statement validation. These are deliberately regex and string transforms,
// not a SQL parser.
package sqlrewrite

import "strings"

// EscapeLiteral doubles single quotes so a value can sit inside a
// single-quoted SQL literal.
func EscapeLiteral(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}

// UnescapeLiteral reverses EscapeLiteral.
func UnescapeLiteral(value string) string {
	return strings.ReplaceAll(value, "''", "'")
}
