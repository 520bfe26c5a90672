package sqlutil

import (
	"strings"
)

// Placeholders returns n comma separated "?" markers wrapped in parentheses.
func Placeholders(n int) string {
	if n <= 0 {
		return "()"
	}
	return "(" + strings.TrimSuffix(strings.Repeat("?,", n), ",") + ")"
}

// InsertStatement builds a multi-row INSERT for rows rows of the given
// columns. Arguments are bound positionally, row by row.
func InsertStatement(table string, columns []string, rows int) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = QuoteIdentifier(c)
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(QuoteIdentifier(table))
	sb.WriteString(" (")
	sb.WriteString(strings.Join(quoted, ", "))
	sb.WriteString(") VALUES ")

	row := Placeholders(len(columns))
	for i := 0; i < rows; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(row)
	}
	return sb.String()
}

// SelectStatement builds "SELECT cols FROM table WHERE where ORDER BY order".
// where and order are inserted verbatim and may be empty.
func SelectStatement(table string, columns []string, where, order string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = QuoteIdentifier(c)
	}

	query := "SELECT " + strings.Join(quoted, ", ") + " FROM " + QuoteIdentifier(table)
	if where != "" {
		query += " WHERE " + where
	}
	if order != "" {
		query += " ORDER BY " + order
	}
	return query
}
