package query

import (
	"github.com/pkg/errors"
)

var (
	ErrUnknownQueryType = errors.New("Unknown Query Type")
	ErrQueryNotFound    = errors.New("Query not found")
)

// Type identifies the source format of a query.
type Type string

const (
	TypeCSV     Type = "csv"
	TypeTSV     Type = "tsv"
	TypeJSON    Type = "json"
	TypeGraphQL Type = "graphql"
	TypeXML     Type = "xml"
	TypeSeries  Type = "series"
	TypeGlobal  Type = "global"
)

// Valid reports whether t is a member of the closed type set.
func (t Type) Valid() bool {
	switch t {
	case TypeCSV, TypeTSV, TypeJSON, TypeGraphQL, TypeXML, TypeSeries, TypeGlobal:
		return true
	}
	return false
}

// IsDataType reports whether queries of this type run through the
// parse/extract/build pipeline.
func (t Type) IsDataType() bool {
	switch t {
	case TypeCSV, TypeTSV, TypeJSON, TypeGraphQL, TypeXML:
		return true
	}
	return false
}

// SupportsColumnInference reports whether columns can be derived from a
// sample record when none are declared.
func (t Type) SupportsColumnInference() bool {
	return t.IsDataType()
}

// Source identifies where the raw payload comes from.
type Source string

const (
	SourceURL    Source = "url"
	SourceInline Source = "inline"
)

// Format is the requested output shape.
type Format string

const (
	FormatTable          Format = "table"
	FormatTimeSeries     Format = "timeseries"
	FormatDataFrame      Format = "dataframe"
	FormatAsIs           Format = "as-is"
	FormatNodeGraphNodes Format = "node-graph-nodes"
	FormatNodeGraphEdges Format = "node-graph-edges"
)

// ColumnType is the declared type of an extracted column value.
type ColumnType string

const (
	ColumnTypeString         ColumnType = "string"
	ColumnTypeNumber         ColumnType = "number"
	ColumnTypeBoolean        ColumnType = "boolean"
	ColumnTypeTimestamp      ColumnType = "timestamp"
	ColumnTypeTimestampEpoch ColumnType = "timestamp_epoch"
	ColumnTypeTimestampSecs  ColumnType = "timestamp_epoch_s"
)

// IsTimeType reports whether the column carries a timestamp in any encoding.
func (c ColumnType) IsTimeType() bool {
	switch c {
	case ColumnTypeTimestamp, ColumnTypeTimestampEpoch, ColumnTypeTimestampSecs:
		return true
	}
	return false
}

// Column is a named, typed extraction rule applied to every record.
type Column struct {
	Selector string     `json:"selector" yaml:"selector"`
	Text     string     `json:"text" yaml:"text"`
	Type     ColumnType `json:"type" yaml:"type"`
}

// Filter is a declarative predicate over an extracted row.
type Filter struct {
	Field    string   `json:"field" yaml:"field"`
	Operator string   `json:"operator" yaml:"operator"`
	Value    []string `json:"value" yaml:"value"`
}

type URLParam struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

type RequestHeader struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

type URLOptions struct {
	Method  string          `json:"method" yaml:"method"`
	Data    string          `json:"data" yaml:"data"`
	Params  []URLParam      `json:"params" yaml:"params"`
	Headers []RequestHeader `json:"headers" yaml:"headers"`
}

// JSONOptions carries layout hints for structured-tree payloads.
type JSONOptions struct {
	RootIsNotArray bool `json:"root_is_not_array" yaml:"root_is_not_array"`
	Columnar       bool `json:"columnar" yaml:"columnar"`
}

// CSVOptions carries layout hints for delimited-text payloads.
type CSVOptions struct {
	Delimiter string `json:"delimiter" yaml:"delimiter"`
	NoHeader  bool   `json:"no_header" yaml:"no_header"`
}

// Query is one resolution request. Queries are treated as immutable once
// handed to the engine; Interpolate returns a fresh copy.
type Query struct {
	RefID         string      `json:"refId" yaml:"refId"`
	Type          Type        `json:"type" yaml:"type"`
	Format        Format      `json:"format" yaml:"format"`
	Source        Source      `json:"source" yaml:"source"`
	URL           string      `json:"url" yaml:"url"`
	URLOptions    URLOptions  `json:"url_options" yaml:"url_options"`
	Data          string      `json:"data" yaml:"data"`
	RootSelector  string      `json:"root_selector" yaml:"root_selector"`
	Columns       []Column    `json:"columns" yaml:"columns"`
	Filters       []Filter    `json:"filters" yaml:"filters"`
	JSONOptions   JSONOptions `json:"json_options" yaml:"json_options"`
	CSVOptions    CSVOptions  `json:"csv_options" yaml:"csv_options"`
	SeriesCount   int64       `json:"seriesCount" yaml:"seriesCount"`
	Expression    string      `json:"expression" yaml:"expression"`
	Alias         string      `json:"alias" yaml:"alias"`
	GlobalQueryID string      `json:"global_query_id" yaml:"global_query_id"`
}

// NormalizedColumns returns the declared columns with Text defaulted to
// Selector where absent. The query's own column slice is left untouched.
func (q *Query) NormalizedColumns() []Column {
	out := make([]Column, len(q.Columns))
	for i, c := range q.Columns {
		if c.Text == "" {
			c.Text = c.Selector
		}
		out[i] = c
	}
	return out
}

// Validate checks that the query identifies a known source kind and carries
// the fields that kind requires.
func (q *Query) Validate() error {
	if !q.Type.Valid() {
		return ErrUnknownQueryType
	}
	if q.Type.IsDataType() {
		if q.Source == SourceURL && q.URL == "" {
			return errors.New("missing URL for url sourced query")
		}
		if q.Source == SourceInline && q.Data == "" {
			return errors.New("missing inline data")
		}
	}
	return nil
}
