package parser

import (
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/grafana/infinity/pkg/query"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONOptions controls structured-tree parsing.
type JSONOptions struct {
	RootSelector string
	Columnar     bool
	Columns      []query.Column
}

// ParseJSON decodes a structured-tree payload and walks to the root
// selector. Row-oriented layouts (array of objects) are consumed directly;
// columnar layouts (object of parallel arrays) are pivoted into rows first.
func ParseJSON(raw string, opts JSONOptions) ([]Record, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var tree any
	if err := json.UnmarshalFromString(raw, &tree); err != nil {
		return nil, errors.Wrap(err, "decoding json input")
	}
	root := Select(tree, opts.RootSelector)
	if opts.Columnar {
		return pivotColumnar(root, opts.Columns), nil
	}
	return recordsFromRoot(root), nil
}

// pivotColumnar zips an object of parallel arrays into row-oriented records.
// The row count comes from the first declared (or implied) column's array;
// shorter sibling arrays null-pad and longer ones are truncated.
func pivotColumnar(root any, columns []query.Column) []Record {
	fields, ok := root.(map[string]any)
	if !ok {
		return nil
	}
	if len(columns) == 0 {
		for _, key := range NewRecord(fields).Keys() {
			columns = append(columns, query.Column{Selector: key, Text: key, Type: query.ColumnTypeString})
		}
	}
	if len(columns) == 0 {
		return nil
	}
	first, ok := Select(fields, columns[0].Selector).([]any)
	if !ok {
		return nil
	}
	records := make([]Record, 0, len(first))
	for i := range first {
		entry := make(map[string]any, len(columns))
		keys := make([]string, 0, len(columns))
		for _, column := range columns {
			values, ok := Select(fields, column.Selector).([]any)
			var value any
			if ok && i < len(values) {
				value = values[i]
			}
			entry[column.Selector] = value
			keys = append(keys, column.Selector)
		}
		records = append(records, NewOrderedRecord(entry, keys))
	}
	return records
}
