// Package parser converts raw external payloads into ordered record
// sequences. One parser per source format; all of them share the same
// contract: parse the payload, walk to the root selector, and emit one
// Record per logical entry. An empty or missing root resolves to an empty
// sequence, not a fault.
package parser

import (
	"github.com/pkg/errors"

	"github.com/grafana/infinity/pkg/query"
)

// ErrUnsupportedType is returned when a query's source kind has no parser,
// i.e. it must be handled outside the record pipeline.
var ErrUnsupportedType = errors.New("no parser for query type")

// Parse converts the raw payload of q into records using the parser for the
// query's source kind.
func Parse(raw string, q query.Query) ([]Record, error) {
	switch q.Type {
	case query.TypeCSV:
		return ParseCSV(raw, CSVOptions{Delimiter: ',', NoHeader: q.CSVOptions.NoHeader, DelimiterOverride: q.CSVOptions.Delimiter})
	case query.TypeTSV:
		return ParseCSV(raw, CSVOptions{Delimiter: '\t', NoHeader: q.CSVOptions.NoHeader})
	case query.TypeJSON, query.TypeGraphQL:
		return ParseJSON(raw, JSONOptions{
			RootSelector: q.RootSelector,
			Columnar:     q.JSONOptions.Columnar,
			Columns:      q.NormalizedColumns(),
		})
	case query.TypeXML:
		return ParseXML(raw, q.RootSelector)
	default:
		return nil, errors.Wrapf(ErrUnsupportedType, "type %q", q.Type)
	}
}

// recordsFromRoot turns a resolved root value into the record sequence. An
// array root yields one record per element; a mapping root yields a single
// record; anything else yields no records.
func recordsFromRoot(root any) []Record {
	switch v := root.(type) {
	case nil:
		return nil
	case []any:
		records := make([]Record, 0, len(v))
		for _, entry := range v {
			records = append(records, NewRecord(entry))
		}
		return records
	case map[string]any:
		return []Record{NewRecord(v)}
	default:
		return nil
	}
}
