// Package transform turns parsed record sequences into the canonical output
// shapes: tables, grouped time series and field-oriented frames.
package transform

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/common/model"

	"github.com/grafana/infinity/pkg/parser"
	"github.com/grafana/infinity/pkg/query"
)

// Coerce converts a raw record value into the typed representation declared
// by the column. Coercion is total: bad input yields nil for that cell,
// never an error.
func Coerce(value any, columnType query.ColumnType) any {
	switch columnType {
	case query.ColumnTypeString:
		return value
	case query.ColumnTypeNumber:
		return coerceNumber(value)
	case query.ColumnTypeBoolean:
		return value
	case query.ColumnTypeTimestamp:
		return coerceTimestamp(value)
	case query.ColumnTypeTimestampEpoch:
		return coerceEpoch(value, time.Millisecond)
	case query.ColumnTypeTimestampSecs:
		return coerceEpoch(value, time.Second)
	default:
		return value
	}
}

// CoerceToEpochMillis converts a raw value of a time-typed column directly
// into epoch milliseconds, the asTimestamp variant of Coerce used by the
// time-series builder.
func CoerceToEpochMillis(value any, columnType query.ColumnType) (model.Time, bool) {
	coerced := Coerce(value, columnType)
	ts, ok := coerced.(time.Time)
	if !ok {
		return 0, false
	}
	return model.TimeFromUnixNano(ts.UnixNano()), true
}

func coerceNumber(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if v == "" {
			return nil
		}
		// strip locale thousands separators before parsing
		n, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
		if err != nil {
			return nil
		}
		return n
	default:
		return nil
	}
}

// timestampLayouts are tried in order for free-form date strings.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	time.RFC1123,
	time.RFC822,
	time.UnixDate,
}

func coerceTimestamp(value any) any {
	switch v := value.(type) {
	case time.Time:
		return v
	case string:
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, v); err == nil {
				return ts
			}
		}
		return nil
	case float64:
		return time.UnixMilli(int64(v)).UTC()
	default:
		return nil
	}
}

func coerceEpoch(value any, unit time.Duration) any {
	var epoch int64
	switch v := value.(type) {
	case time.Time:
		return v
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil
		}
		epoch = n
	case float64:
		epoch = int64(v)
	case int64:
		epoch = v
	case int:
		epoch = int64(v)
	default:
		return nil
	}
	switch unit {
	case time.Second:
		return time.UnixMilli(epoch * 1000).UTC()
	default:
		return time.UnixMilli(epoch).UTC()
	}
}

// extract resolves one column against one record and coerces the result.
// Scalar records bypass extraction entirely and stand in for every column.
// Values that are still structured after coercion collapse to strings the
// way the visualization host expects: slices comma-joined, anything else
// JSON-stringified.
func extract(record parser.Record, column query.Column) any {
	if record.IsScalar() {
		return record.Value()
	}
	value := Coerce(record.Get(column.Selector), column.Type)
	switch v := value.(type) {
	case nil, string, float64, bool, time.Time:
		return value
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = stringify(item)
		}
		return strings.Join(parts, ",")
	default:
		return stringify(v)
	}
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	default:
		out, err := json.MarshalToString(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return out
	}
}
