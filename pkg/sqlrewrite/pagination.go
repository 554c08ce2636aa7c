package sqlrewrite

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// limitClause matches LIMIT n, LIMIT n, m and LIMIT n OFFSET m.
var limitClause = regexp.MustCompile(`(?i)\s*\bLIMIT\s+(\d+)(?:\s*,\s*(\d+)|\s+OFFSET\s+(\d+))?`)

// Pagination is the result of a pagination rewrite.
type Pagination struct {
	// SQL is the rewritten query ending in the page-derived LIMIT clause.
	SQL string
	// ModelLimit and ModelOffset are the values the model had written,
	// kept for reporting only. Nil when the model wrote none.
	ModelLimit  *int
	ModelOffset *int
}

// Paginate strips any model-supplied LIMIT/OFFSET clause and appends the
// page-derived one. Page numbering starts at 1; rowsPerPage rows per page.
// The model's limit and offset are captured for reporting but never honored.
func Paginate(sqlQuery string, page int, rowsPerPage int) Pagination {
	if page < 1 {
		page = 1
	}

	result := Pagination{}
	if m := limitClause.FindStringSubmatch(sqlQuery); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			result.ModelLimit = &n
		}
		offsetGroup := m[2]
		if offsetGroup == "" {
			offsetGroup = m[3]
		}
		if offsetGroup != "" {
			if off, err := strconv.Atoi(offsetGroup); err == nil {
				result.ModelOffset = &off
			}
		}
		sqlQuery = limitClause.ReplaceAllString(sqlQuery, "")
	}

	sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")
	if page == 1 {
		result.SQL = fmt.Sprintf("%s LIMIT %d", sqlQuery, rowsPerPage)
	} else {
		result.SQL = fmt.Sprintf("%s LIMIT %d OFFSET %d", sqlQuery, rowsPerPage, (page-1)*rowsPerPage)
	}
	return result
}
