package transform

import (
	"github.com/grafana/infinity/pkg/parser"
	"github.com/grafana/infinity/pkg/query"
)

// InferColumns derives a column set from a sample record: one column per
// shallow key, typed number when the sample value is numeric and string
// otherwise. Runs once per query resolution, not per row.
func InferColumns(sample parser.Record) []query.Column {
	keys := sample.Keys()
	columns := make([]query.Column, 0, len(keys))
	for _, key := range keys {
		columns = append(columns, query.Column{
			Selector: key,
			Text:     key,
			Type:     guessColumnType(sample.Get(key)),
		})
	}
	return columns
}

func guessColumnType(value any) query.ColumnType {
	switch value.(type) {
	case float64, float32, int, int64:
		return query.ColumnTypeNumber
	default:
		return query.ColumnTypeString
	}
}
