package transform

import (
	"strconv"
	"strings"
	"time"

	"github.com/buger/jsonparser"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/common/model"

	"github.com/grafana/infinity/pkg/parser"
	"github.com/grafana/infinity/pkg/query"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SeriesPoint is one datapoint of a time series: a value paired with an
// epoch-milliseconds timestamp. The wire form is `[value, timestamp]`.
type SeriesPoint struct {
	Value     *float64
	Timestamp model.Time
}

func (p SeriesPoint) MarshalJSON() ([]byte, error) {
	stream := jsoniter.ConfigDefault.BorrowStream(nil)
	defer jsoniter.ConfigDefault.ReturnStream(stream)
	stream.WriteArrayStart()
	if p.Value == nil {
		stream.WriteNil()
	} else {
		stream.WriteFloat64Lossy(*p.Value)
	}
	stream.WriteMore()
	stream.WriteRaw(strconv.FormatInt(int64(p.Timestamp), 10))
	stream.WriteArrayEnd()
	out := make([]byte, stream.Buffered())
	copy(out, stream.Buffer())
	return out, nil
}

func (p *SeriesPoint) UnmarshalJSON(data []byte) error {
	var (
		i          int
		parseError error
	)
	_, err := jsonparser.ArrayEach(data, func(value []byte, t jsonparser.ValueType, _ int, _ error) {
		switch i {
		case 0:
			if t == jsonparser.Null {
				p.Value = nil
				break
			}
			v, err := jsonparser.ParseFloat(value)
			if err != nil {
				parseError = err
				return
			}
			p.Value = &v
		case 1:
			ts, err := jsonparser.ParseInt(value)
			if err != nil {
				parseError = err
				return
			}
			p.Timestamp = model.Time(ts)
		}
		i++
	})
	if parseError != nil {
		return parseError
	}
	return err
}

// TimeSeries is one grouped series line.
type TimeSeries struct {
	Target     string        `json:"target"`
	Name       string        `json:"name,omitempty"`
	Datapoints []SeriesPoint `json:"datapoints"`
}

// BuildTimeSeries assembles records into grouped time series, one pass per
// numeric column. The series name concatenates every string column's value
// space-joined; with more than one numeric column the column's display text
// is appended to disambiguate, and a single numeric column with an otherwise
// empty name falls back to its display text alone. The timestamp comes from
// the first time-typed column when one is declared, otherwise fallbackTime
// is used uniformly for the whole pass. Points sharing a series name are
// flattened into one TimeSeries per unique name, in generation order.
func BuildTimeSeries(records []parser.Record, q query.Query, fallbackTime time.Time) []TimeSeries {
	columns := q.NormalizedColumns()
	var stringColumns, numberColumns, timeColumns []query.Column
	for _, c := range columns {
		switch {
		case c.Type == query.ColumnTypeNumber:
			numberColumns = append(numberColumns, c)
		case c.Type.IsTimeType():
			timeColumns = append(timeColumns, c)
		case c.Type == query.ColumnTypeString:
			stringColumns = append(stringColumns, c)
		}
	}
	if fallbackTime.IsZero() {
		fallbackTime = time.Now()
	}

	var targets []string
	grouped := map[string][]SeriesPoint{}
	for _, metricColumn := range numberColumns {
		for _, record := range records {
			nameParts := make([]string, 0, len(stringColumns))
			for _, c := range stringColumns {
				nameParts = append(nameParts, cellString(record.Get(c.Selector)))
			}
			seriesName := strings.Join(nameParts, " ")
			if len(numberColumns) > 1 {
				seriesName += " " + metricColumn.Text
			}
			if len(numberColumns) == 1 && seriesName == "" {
				seriesName = metricColumn.Text
			}
			seriesName = strings.TrimSpace(seriesName)

			timestamp := model.TimeFromUnixNano(fallbackTime.UnixNano())
			if len(timeColumns) > 0 {
				first := timeColumns[0]
				if ts, ok := CoerceToEpochMillis(record.Get(first.Selector), first.Type); ok {
					timestamp = ts
				}
			}

			point := SeriesPoint{Timestamp: timestamp}
			if metric, ok := cellNumber(Coerce(record.Get(metricColumn.Selector), query.ColumnTypeNumber)); ok {
				point.Value = &metric
			}
			if _, seen := grouped[seriesName]; !seen {
				targets = append(targets, seriesName)
			}
			grouped[seriesName] = append(grouped[seriesName], point)
		}
	}

	out := make([]TimeSeries, 0, len(targets))
	for _, target := range targets {
		out = append(out, TimeSeries{
			Target:     target,
			Name:       q.RefID,
			Datapoints: grouped[target],
		})
	}
	return out
}
