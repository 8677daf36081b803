package transform

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/grafana/regexp"

	"github.com/grafana/infinity/pkg/query"
)

// Filter operators. Unrecognized operators fail closed: the row is excluded.
const (
	OpEquals                = "equals"
	OpEqualsIgnoreCase      = "equals_ignorecase"
	OpNotEquals             = "notequals"
	OpNotEqualsIgnoreCase   = "notequals_ignorecase"
	OpContains              = "contains"
	OpContainsIgnoreCase    = "contains_ignorecase"
	OpNotContains           = "notcontains"
	OpNotContainsIgnoreCase = "notcontains_ignorecase"
	OpStartsWith            = "startswith"
	OpStartsWithIgnoreCase  = "startswith_ignorecase"
	OpEndsWith              = "endswith"
	OpEndsWithIgnoreCase    = "endswith_ignorecase"
	OpRegexMatch            = "regex"
	OpRegexNotMatch         = "regex_not"
	OpIn                    = "in"
	OpNotIn                 = "notin"
	OpNumberEquals          = "=="
	OpNumberNotEquals       = "!="
	OpNumberLessThan        = "<"
	OpNumberLessThanEqual   = "<="
	OpNumberGreaterThan     = ">"
	OpNumberGreaterEqual    = ">="
)

// ApplyFilters evaluates the declared filters over already-extracted rows.
// Filters are conjunctive; a row survives only when every filter matches.
// Filtering happens after coercion, so comparisons see typed cell values.
func ApplyFilters(rows [][]any, columns []query.Column, filters []query.Filter) [][]any {
	if len(filters) == 0 || len(columns) == 0 {
		return rows
	}
	out := make([][]any, 0, len(rows))
	for _, row := range rows {
		if rowMatches(row, columns, filters) {
			out = append(out, row)
		}
	}
	return out
}

func rowMatches(row []any, columns []query.Column, filters []query.Filter) bool {
	for _, filter := range filters {
		idx := columnIndex(columns, filter.Field)
		if idx < 0 || idx >= len(row) {
			return false
		}
		if !matchOperator(row[idx], filter.Operator, filter.Value) {
			return false
		}
	}
	return true
}

// columnIndex matches a filter field against the column's selector or its
// display text.
func columnIndex(columns []query.Column, field string) int {
	for i, c := range columns {
		if c.Selector == field || c.Text == field {
			return i
		}
	}
	return -1
}

func matchOperator(cell any, operator string, values []string) bool {
	expected := ""
	if len(values) > 0 {
		expected = values[0]
	}
	actual := cellString(cell)
	switch operator {
	case OpEquals:
		return actual == expected
	case OpEqualsIgnoreCase:
		return strings.EqualFold(actual, expected)
	case OpNotEquals:
		return actual != expected
	case OpNotEqualsIgnoreCase:
		return !strings.EqualFold(actual, expected)
	case OpContains:
		return strings.Contains(actual, expected)
	case OpContainsIgnoreCase:
		return strings.Contains(strings.ToLower(actual), strings.ToLower(expected))
	case OpNotContains:
		return !strings.Contains(actual, expected)
	case OpNotContainsIgnoreCase:
		return !strings.Contains(strings.ToLower(actual), strings.ToLower(expected))
	case OpStartsWith:
		return strings.HasPrefix(actual, expected)
	case OpStartsWithIgnoreCase:
		return strings.HasPrefix(strings.ToLower(actual), strings.ToLower(expected))
	case OpEndsWith:
		return strings.HasSuffix(actual, expected)
	case OpEndsWithIgnoreCase:
		return strings.HasSuffix(strings.ToLower(actual), strings.ToLower(expected))
	case OpRegexMatch:
		matched, err := regexp.MatchString(expected, actual)
		return err == nil && matched
	case OpRegexNotMatch:
		matched, err := regexp.MatchString(expected, actual)
		return err == nil && !matched
	case OpIn:
		for _, v := range values {
			if actual == v {
				return true
			}
		}
		return false
	case OpNotIn:
		for _, v := range values {
			if actual == v {
				return false
			}
		}
		return true
	case OpNumberEquals, OpNumberNotEquals, OpNumberLessThan, OpNumberLessThanEqual, OpNumberGreaterThan, OpNumberGreaterEqual:
		return matchNumeric(cell, operator, expected)
	default:
		return false
	}
}

func matchNumeric(cell any, operator string, expected string) bool {
	actual, ok := cellNumber(cell)
	if !ok {
		return false
	}
	want, err := strconv.ParseFloat(strings.TrimSpace(expected), 64)
	if err != nil {
		return false
	}
	switch operator {
	case OpNumberEquals:
		return actual == want
	case OpNumberNotEquals:
		return actual != want
	case OpNumberLessThan:
		return actual < want
	case OpNumberLessThanEqual:
		return actual <= want
	case OpNumberGreaterThan:
		return actual > want
	case OpNumberGreaterEqual:
		return actual >= want
	default:
		return false
	}
}

func cellString(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func cellNumber(cell any) (float64, bool) {
	switch v := cell.(type) {
	case float64:
		return v, true
	case string:
		n, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
		return n, err == nil
	default:
		return 0, false
	}
}
