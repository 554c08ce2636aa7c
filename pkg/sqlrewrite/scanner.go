package sqlrewrite

import (
	"fmt"
	"regexp"
	"sync"
)

// FieldMatch is one FIELD = '<literal>' occurrence found in a SQL string.
type FieldMatch struct {
	// Field is the matched column name.
	Field string
	// Fragment is the full matched text, including the quotes.
	Fragment string
	// Literal is the unescaped value between the quotes.
	Literal string
}

var (
	fieldPatternMu sync.Mutex
	fieldPatterns  = make(map[string]*regexp.Regexp)
)

// fieldPattern compiles (and caches) the match pattern for one field name.
// The literal may contain doubled single quotes as escaped quotes.
func fieldPattern(field string) *regexp.Regexp {
	fieldPatternMu.Lock()
	defer fieldPatternMu.Unlock()
	if re, ok := fieldPatterns[field]; ok {
		return re
	}
	re := regexp.MustCompile(fmt.Sprintf(`\b%s\s*=\s*'((?:[^']|'')*)'`, regexp.QuoteMeta(field)))
	fieldPatterns[field] = re
	return re
}

// FindFieldLiterals returns every FIELD = '<literal>' occurrence for the
// given field, in source order. Matches where the closing quote is followed
// by yet another quote are skipped; those belong to a longer literal.
func FindFieldLiterals(sqlQuery string, field string) []FieldMatch {
	re := fieldPattern(field)

	var matches []FieldMatch
	for _, loc := range re.FindAllStringSubmatchIndex(sqlQuery, -1) {
		end := loc[1]
		if end < len(sqlQuery) && sqlQuery[end] == '\'' {
			continue
		}
		matches = append(matches, FieldMatch{
			Field:    field,
			Fragment: sqlQuery[loc[0]:loc[1]],
			Literal:  UnescapeLiteral(sqlQuery[loc[2]:loc[3]]),
		})
	}
	return matches
}
