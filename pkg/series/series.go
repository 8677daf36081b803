// Package series generates synthetic time series for queries of the
// `series` source kind, which carry no payload and exist purely to exercise
// dashboards.
package series

import (
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/common/model"

	"github.com/grafana/infinity/pkg/query"
	"github.com/grafana/infinity/pkg/transform"
)

const (
	defaultAlias = "Series"
	defaultStep  = time.Minute
	indexMacro   = "${__series.index}"
)

// RandomWalk produces one random-walk series per requested count over the
// [start, end] window at a fixed step. The alias names each series; the
// `${__series.index}` macro expands to the one-based series number, and is
// appended automatically when more than one series is requested without it.
func RandomWalk(q query.Query, start, end time.Time) []transform.TimeSeries {
	count := q.SeriesCount
	if count < 1 {
		count = 1
	}
	alias := q.Alias
	if alias == "" {
		alias = defaultAlias
	}
	if count > 1 && !strings.Contains(alias, indexMacro) {
		alias += " " + indexMacro
	}
	out := make([]transform.TimeSeries, 0, count)
	for i := int64(1); i <= count; i++ {
		out = append(out, transform.TimeSeries{
			Target:     strings.ReplaceAll(alias, indexMacro, strconv.FormatInt(i, 10)),
			Name:       q.RefID,
			Datapoints: walk(start, end, defaultStep),
		})
	}
	return out
}

func walk(start, end time.Time, step time.Duration) []transform.SeriesPoint {
	var points []transform.SeriesPoint
	value := rand.Float64() * 100
	for ts := start; !ts.After(end); ts = ts.Add(step) {
		v := value
		points = append(points, transform.SeriesPoint{
			Value:     &v,
			Timestamp: model.TimeFromUnixNano(ts.UnixNano()),
		})
		value += rand.Float64()*10 - 5
	}
	return points
}
