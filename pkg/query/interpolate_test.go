package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// identityTemplateSrv substitutes nothing, mirroring how the upstream
// template service is stubbed in deterministic tests.
type identityTemplateSrv struct{}

func (identityTemplateSrv) Replace(input string, _ ScopedVars) string { return input }

func sampleQuery() Query {
	return Query{
		RefID:  "A",
		Type:   TypeJSON,
		Source: SourceURL,
		URL:    "https://example.com/$env/data",
		Data:   "inline $env",
		URLOptions: URLOptions{
			Method: "POST",
			Data:   `{"q":"$env"}`,
			Params: []URLParam{{Key: "region", Value: "$region"}},
			Headers: []RequestHeader{
				{Key: "X-Env", Value: "$env"},
				{Key: "Accept", Value: "application/json"},
			},
		},
		Columns: []Column{{Selector: "name", Type: ColumnTypeString}},
		Filters: []Filter{{Field: "name", Operator: "in", Value: []string{"$env", "static"}}},
	}
}

func TestInterpolate(t *testing.T) {
	vars := ScopedVars{"env": {"prod"}, "region": {"eu", "us"}}
	q := sampleQuery()
	out := Interpolate(q, vars, NewTemplateSrv())

	assert.Equal(t, "https://example.com/prod/data", out.URL)
	assert.Equal(t, "inline prod", out.Data)
	assert.Equal(t, `{"q":"prod"}`, out.URLOptions.Data)
	assert.Equal(t, "{eu,us}", out.URLOptions.Params[0].Value)
	assert.Equal(t, "prod", out.URLOptions.Headers[0].Value)
	assert.Equal(t, "application/json", out.URLOptions.Headers[1].Value)
	// filter values substitute element-wise
	assert.Equal(t, []string{"prod", "static"}, out.Filters[0].Value)
	// non-textual fields pass through unchanged
	assert.Equal(t, q.Columns, out.Columns)
	assert.Equal(t, q.Type, out.Type)
}

func TestInterpolate_NeverMutatesInput(t *testing.T) {
	vars := ScopedVars{"env": {"prod"}, "region": {"eu"}}
	q := sampleQuery()
	_ = Interpolate(q, vars, NewTemplateSrv())
	assert.Equal(t, sampleQuery(), q)
}

func TestInterpolate_IdempotentUnderIdentityScope(t *testing.T) {
	q := sampleQuery()
	once := Interpolate(q, nil, identityTemplateSrv{})
	twice := Interpolate(once, nil, identityTemplateSrv{})
	assert.Equal(t, once, twice)
	assert.Equal(t, q, once)
}

func TestGlobTemplateSrv(t *testing.T) {
	tests := map[string]struct {
		input    string
		vars     ScopedVars
		expected string
	}{
		"braced":          {"${env}-x", ScopedVars{"env": {"prod"}}, "prod-x"},
		"bare":            {"$env", ScopedVars{"env": {"prod"}}, "prod"},
		"multi value":     {"$env", ScopedVars{"env": {"a", "b"}}, "{a,b}"},
		"empty value":     {"$env", ScopedVars{"env": {}}, ""},
		"unknown stays":   {"${ghost}", ScopedVars{}, "${ghost}"},
		"no placeholders": {"plain", ScopedVars{"env": {"prod"}}, "plain"},
		"empty input":     {"", ScopedVars{}, ""},
	}
	srv := NewTemplateSrv()
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expected, srv.Replace(tt.input, tt.vars))
		})
	}
}

func TestNormalizedColumns(t *testing.T) {
	q := Query{Columns: []Column{
		{Selector: "a.b", Type: ColumnTypeString},
		{Selector: "c", Text: "C", Type: ColumnTypeNumber},
	}}
	out := q.NormalizedColumns()
	require.Len(t, out, 2)
	assert.Equal(t, "a.b", out[0].Text)
	assert.Equal(t, "C", out[1].Text)
	// the query's own columns stay untouched
	assert.Empty(t, q.Columns[0].Text)
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, (&Query{Type: "mp3"}).Validate(), ErrUnknownQueryType)
	assert.Error(t, (&Query{Type: TypeCSV, Source: SourceURL}).Validate())
	assert.Error(t, (&Query{Type: TypeJSON, Source: SourceInline}).Validate())
	assert.NoError(t, (&Query{Type: TypeJSON, Source: SourceInline, Data: "[]"}).Validate())
	assert.NoError(t, (&Query{Type: TypeSeries}).Validate())
}
