package variables

import (
	"fmt"
	"strconv"
	"time"

	"github.com/grafana/infinity/pkg/transform"
)

// QueryType selects which variable pipeline runs.
type QueryType string

const (
	QueryTypeLegacy   QueryType = "legacy"
	QueryTypeInfinity QueryType = "infinity"
)

// FromTable derives variable results from a resolved table. With two or more
// columns each row contributes `{text: col0, value: col1}`; with exactly one
// column text and value are the same; an empty column set yields nothing.
func FromTable(t transform.Table) []VariableResult {
	if len(t.Columns) == 0 {
		return nil
	}
	out := make([]VariableResult, 0, len(t.Rows))
	for _, row := range t.Rows {
		if len(row) == 0 {
			continue
		}
		text := cellText(row[0])
		value := text
		if len(t.Columns) >= 2 && len(row) >= 2 {
			value = cellText(row[1])
		}
		out = append(out, VariableResult{Text: text, Value: value})
	}
	return out
}

func cellText(cell any) string {
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
