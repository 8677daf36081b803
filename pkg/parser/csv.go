package parser

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// CSVOptions controls delimited-text parsing.
type CSVOptions struct {
	Delimiter         rune
	DelimiterOverride string // single-character user override, empty for format default
	NoHeader          bool
}

// ParseCSV splits delimited text into records. The first row supplies record
// keys unless NoHeader is set, in which case keys are zero-based column
// positions. Rows are allowed to be ragged; missing cells resolve to nil at
// extraction time like any other absent path.
func ParseCSV(raw string, opts CSVOptions) ([]Record, error) {
	delimiter := opts.Delimiter
	if opts.DelimiterOverride != "" {
		delimiter = []rune(opts.DelimiterOverride)[0]
	}
	reader := csv.NewReader(strings.NewReader(raw))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var header []string
	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading delimited input")
		}
		if header == nil {
			if opts.NoHeader {
				header = make([]string, len(row))
				for i := range row {
					header[i] = strconv.Itoa(i)
				}
			} else {
				header = row
				continue
			}
		}
		keys := header
		if len(row) > len(keys) {
			// ragged row wider than the header; key the extras by position
			keys = make([]string, len(row))
			copy(keys, header)
			for i := len(header); i < len(row); i++ {
				keys[i] = strconv.Itoa(i)
			}
		}
		fields := make(map[string]any, len(row))
		for i, cell := range row {
			fields[keys[i]] = cell
		}
		records = append(records, NewOrderedRecord(fields, keys[:len(row)]))
	}
	return records, nil
}
