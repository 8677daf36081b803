package transform

import (
	"github.com/grafana/infinity/pkg/parser"
	"github.com/grafana/infinity/pkg/query"
)

// Table is the tabular canonical output shape.
type Table struct {
	Name    string         `json:"name"`
	Columns []query.Column `json:"columns"`
	Rows    [][]any        `json:"rows"`
}

// BuildTable assembles records into a table: resolve the column set
// (declared, or inferred when the source kind allows it and none are
// declared), extract every column from every record, drop zero-length rows
// and apply the declared filters. Row order follows record order.
func BuildTable(records []parser.Record, q query.Query) Table {
	columns := resolveColumns(records, q)
	rows := make([][]any, 0, len(records))
	for _, record := range records {
		row := make([]any, 0, len(columns))
		for _, column := range columns {
			row = append(row, extract(record, column))
		}
		if len(row) == 0 {
			continue
		}
		rows = append(rows, row)
	}
	if len(q.Filters) > 0 && len(q.Columns) > 0 {
		rows = ApplyFilters(rows, q.NormalizedColumns(), q.Filters)
	}
	return Table{
		Name:    q.RefID,
		Columns: columns,
		Rows:    rows,
	}
}

// resolveColumns picks the effective column set for one resolution.
// Inference runs once, against the first record.
func resolveColumns(records []parser.Record, q query.Query) []query.Column {
	if len(q.Columns) > 0 {
		return q.NormalizedColumns()
	}
	if q.Type.SupportsColumnInference() && len(records) > 0 {
		return InferColumns(records[0])
	}
	return nil
}
