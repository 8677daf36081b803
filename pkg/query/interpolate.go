package query

import (
	"strings"

	"github.com/drone/envsubst"
)

// ScopedVars is the set of named values available for substitution during
// one resolution. Multi-value entries render glob style, `{a,b}`.
type ScopedVars map[string][]string

// TemplateSrv substitutes template placeholders in a single string. The
// engine owns no substitution logic of its own; a stub implementation makes
// interpolation fully deterministic in tests.
type TemplateSrv interface {
	Replace(input string, vars ScopedVars) string
}

// globTemplateSrv is the default TemplateSrv. It understands `$var` and
// `${var}` placeholders and expands multi-value variables glob style.
type globTemplateSrv struct{}

// NewTemplateSrv returns the default glob-expanding template service.
func NewTemplateSrv() TemplateSrv {
	return &globTemplateSrv{}
}

func (globTemplateSrv) Replace(input string, vars ScopedVars) string {
	if input == "" {
		return input
	}
	out, err := envsubst.Eval(input, func(name string) string {
		values, ok := vars[name]
		if !ok {
			// leave unknown placeholders intact so the upstream service
			// (or the caller) can still act on them
			return "${" + name + "}"
		}
		switch len(values) {
		case 0:
			return ""
		case 1:
			return values[0]
		default:
			return "{" + strings.Join(values, ",") + "}"
		}
	})
	if err != nil {
		return input
	}
	return out
}

// Interpolate returns a copy of q with every textual field passed through
// srv: URL, inline data, the URL-options payload, each header and param
// value, and each filter value element-wise. Selectors, types and column
// definitions pass through untouched. The input query is never mutated.
func Interpolate(q Query, vars ScopedVars, srv TemplateSrv) Query {
	out := q
	out.URL = srv.Replace(q.URL, vars)
	out.Data = srv.Replace(q.Data, vars)

	out.URLOptions.Data = srv.Replace(q.URLOptions.Data, vars)
	if len(q.URLOptions.Params) > 0 {
		out.URLOptions.Params = make([]URLParam, len(q.URLOptions.Params))
		for i, p := range q.URLOptions.Params {
			p.Value = srv.Replace(p.Value, vars)
			out.URLOptions.Params[i] = p
		}
	}
	if len(q.URLOptions.Headers) > 0 {
		out.URLOptions.Headers = make([]RequestHeader, len(q.URLOptions.Headers))
		for i, h := range q.URLOptions.Headers {
			h.Value = srv.Replace(h.Value, vars)
			out.URLOptions.Headers[i] = h
		}
	}

	if len(q.Columns) > 0 {
		out.Columns = make([]Column, len(q.Columns))
		copy(out.Columns, q.Columns)
	}
	if len(q.Filters) > 0 {
		out.Filters = make([]Filter, len(q.Filters))
		for i, f := range q.Filters {
			values := make([]string, len(f.Value))
			for j, v := range f.Value {
				values[j] = srv.Replace(v, vars)
			}
			f.Value = values
			out.Filters[i] = f
		}
	}
	return out
}
