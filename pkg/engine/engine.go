// Package engine orchestrates one query resolution: variable interpolation,
// payload acquisition, parsing, and table/series/frame assembly. The
// pipeline itself is pure and synchronous; the fetcher and the template
// service are the only asynchronous seams.
package engine

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/grafana/infinity/pkg/fetcher"
	"github.com/grafana/infinity/pkg/parser"
	"github.com/grafana/infinity/pkg/query"
	"github.com/grafana/infinity/pkg/series"
	"github.com/grafana/infinity/pkg/transform"
	"github.com/grafana/infinity/pkg/variables"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Severity tags a notice attached to a result.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Notice is a severity-tagged annotation describing upstream transport or
// status conditions. Degraded data is returned alongside its notice rather
// than suppressed.
type Notice struct {
	Severity Severity `json:"severity"`
	Text     string   `json:"text"`
}

// Result is the outcome of one query resolution. Exactly one of Table,
// Series, Frame or Raw is populated, according to the requested format.
type Result struct {
	RefID   string                 `json:"refId"`
	Table   *transform.Table       `json:"table,omitempty"`
	Series  []transform.TimeSeries `json:"series,omitempty"`
	Frame   *transform.Frame       `json:"frame,omitempty"`
	Raw     any                    `json:"raw,omitempty"`
	Notices []Notice               `json:"notices,omitempty"`
}

// TimeRange is the request window, used for series generation and as the
// fallback timestamp for time series without a time column.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// Fetcher retrieves raw payloads for url-sourced queries. The engine never
// performs I/O itself.
type Fetcher interface {
	Fetch(ctx context.Context, q query.Query) (fetcher.Response, error)
}

// Engine resolves queries. Concurrent resolutions are independent and share
// no mutable state.
type Engine struct {
	logger        log.Logger
	templateSrv   query.TemplateSrv
	fetcher       Fetcher
	globalQueries map[string]query.Query
}

// Option customizes an Engine.
type Option func(*Engine)

// WithFetcher installs the payload fetcher used for url-sourced queries.
func WithFetcher(f Fetcher) Option {
	return func(e *Engine) { e.fetcher = f }
}

// WithTemplateSrv installs the template variable service used during
// interpolation.
func WithTemplateSrv(srv query.TemplateSrv) Option {
	return func(e *Engine) { e.templateSrv = srv }
}

// WithGlobalQueries registers the datasource-level queries that `global`
// queries reference by id.
func WithGlobalQueries(queries map[string]query.Query) Option {
	return func(e *Engine) { e.globalQueries = queries }
}

// New builds an Engine with the default glob template service and no
// fetcher; url-sourced queries fail until one is installed.
func New(logger log.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	e := &Engine{
		logger:      logger,
		templateSrv: query.NewTemplateSrv(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func validFormat(f query.Format) bool {
	switch f {
	case "", query.FormatTable, query.FormatTimeSeries, query.FormatDataFrame,
		query.FormatAsIs, query.FormatNodeGraphNodes, query.FormatNodeGraphEdges:
		return true
	}
	return false
}

// ResolveQuery runs the full pipeline for one query: interpolate, acquire
// the payload, parse, and build the requested output shape. Upstream
// failures annotate the result instead of discarding it whenever any data
// arrived.
func (e *Engine) ResolveQuery(ctx context.Context, q query.Query, vars query.ScopedVars, timeRange TimeRange) (Result, error) {
	interpolated := query.Interpolate(q, vars, e.templateSrv)
	if !interpolated.Type.Valid() || !validFormat(interpolated.Format) {
		return Result{RefID: q.RefID}, query.ErrUnknownQueryType
	}
	switch interpolated.Type {
	case query.TypeSeries:
		if interpolated.Data != "" {
			// pre-computed series payloads pass through unchanged
			var precomputed []transform.TimeSeries
			if err := json.UnmarshalFromString(interpolated.Data, &precomputed); err != nil {
				return Result{RefID: q.RefID}, errors.Wrap(err, "decoding series payload")
			}
			return Result{RefID: interpolated.RefID, Series: precomputed}, nil
		}
		return Result{
			RefID:  interpolated.RefID,
			Series: series.RandomWalk(interpolated, timeRange.From, timeRange.To),
		}, nil
	case query.TypeGlobal:
		global, ok := e.globalQueries[interpolated.GlobalQueryID]
		if !ok {
			return Result{RefID: q.RefID}, query.ErrQueryNotFound
		}
		global.RefID = interpolated.RefID
		return e.ResolveQuery(ctx, global, vars, timeRange)
	default:
		return e.resolveDataQuery(ctx, interpolated, timeRange)
	}
}

func (e *Engine) resolveDataQuery(ctx context.Context, q query.Query, timeRange TimeRange) (Result, error) {
	raw, notices, err := e.acquire(ctx, q)
	if err != nil && raw == "" {
		return Result{RefID: q.RefID, Notices: notices}, err
	}

	if q.Format == query.FormatAsIs {
		var passthrough any
		if err := json.UnmarshalFromString(orEmptyArray(raw), &passthrough); err != nil {
			return Result{RefID: q.RefID, Notices: notices}, errors.Wrap(err, "decoding as-is payload")
		}
		return Result{RefID: q.RefID, Raw: passthrough, Notices: notices}, nil
	}

	records, err := parser.Parse(raw, q)
	if err != nil {
		return Result{RefID: q.RefID, Notices: notices}, err
	}

	result := Result{RefID: q.RefID, Notices: notices}
	switch q.Format {
	case query.FormatTimeSeries:
		result.Series = transform.BuildTimeSeries(records, q, timeRange.To)
	case query.FormatDataFrame:
		frame := transform.TableToFrame(transform.BuildTable(records, q))
		result.Frame = &frame
	case query.FormatNodeGraphNodes:
		frame := transform.ApplyNodeGraphNodesConfig(transform.TableToFrame(transform.BuildTable(records, q)))
		result.Frame = &frame
	case query.FormatNodeGraphEdges:
		frame := transform.ApplyNodeGraphEdgesConfig(transform.TableToFrame(transform.BuildTable(records, q)))
		result.Frame = &frame
	default:
		table := transform.BuildTable(records, q)
		result.Table = &table
	}
	return result, nil
}

// acquire returns the raw payload for a query plus any upstream notices.
// For url sources a non-success status or transport error becomes a notice;
// whatever body arrived is still handed to the parser.
func (e *Engine) acquire(ctx context.Context, q query.Query) (string, []Notice, error) {
	if q.Source != query.SourceURL {
		return q.Data, nil, nil
	}
	if e.fetcher == nil {
		return "", nil, errors.New("no fetcher configured for url sourced query")
	}
	res, err := e.fetcher.Fetch(ctx, q)
	if err != nil {
		level.Error(e.logger).Log("msg", "upstream fetch failed", "refId", q.RefID, "err", err)
	}
	return res.Body, noticesFromResponse(res), nil
}

func noticesFromResponse(res fetcher.Response) []Notice {
	switch {
	case res.Error != "" || res.StatusCode >= http.StatusBadRequest:
		message := res.Error
		if message == "" {
			message = "-"
		}
		return []Notice{{
			Severity: SeverityError,
			Text:     fmt.Sprintf("Response code from server : %d. Error Message : %s", res.StatusCode, message),
		}}
	case res.StatusCode >= http.StatusMultipleChoices:
		return []Notice{{
			Severity: SeverityWarning,
			Text:     fmt.Sprintf("Response Code From Server : %d", res.StatusCode),
		}}
	default:
		return nil
	}
}

func orEmptyArray(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "[]"
	}
	return raw
}

// VariableQuery is a variable resolution request: either a legacy
// expression or a full data query whose result supplies the variables.
type VariableQuery struct {
	Query         string              `json:"query"`
	QueryType     variables.QueryType `json:"queryType"`
	InfinityQuery *query.Query        `json:"infinityQuery,omitempty"`
}

// ResolveVariables evaluates a variable query. Legacy expressions that
// match nothing resolve to an empty list, never an error.
func (e *Engine) ResolveVariables(ctx context.Context, vq VariableQuery, vars query.ScopedVars) ([]variables.VariableResult, error) {
	switch vq.QueryType {
	case variables.QueryTypeInfinity:
		if vq.InfinityQuery == nil {
			return nil, nil
		}
		result, err := e.ResolveQuery(ctx, *vq.InfinityQuery, vars, TimeRange{To: time.Now()})
		if err != nil {
			return nil, err
		}
		if result.Table == nil {
			return nil, nil
		}
		return variables.FromTable(*result.Table), nil
	default:
		expression := e.templateSrv.Replace(vq.Query, vars)
		return variables.InterpretLegacyQuery(expression), nil
	}
}
