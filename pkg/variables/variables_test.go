package variables

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grafana/infinity/pkg/query"
	"github.com/grafana/infinity/pkg/transform"
)

func TestFromTable(t *testing.T) {
	tests := map[string]struct {
		table    transform.Table
		expected []VariableResult
	}{
		"two columns use text and value": {
			transform.Table{
				Columns: []query.Column{{Selector: "name"}, {Selector: "id"}},
				Rows:    [][]any{{"prod", "s1"}, {"dev", "s2"}},
			},
			[]VariableResult{{Text: "prod", Value: "s1"}, {Text: "dev", Value: "s2"}},
		},
		"single column doubles up": {
			transform.Table{
				Columns: []query.Column{{Selector: "name"}},
				Rows:    [][]any{{"prod"}, {float64(42)}},
			},
			[]VariableResult{{Text: "prod", Value: "prod"}, {Text: "42", Value: "42"}},
		},
		"no columns": {
			transform.Table{Rows: [][]any{{"orphan"}}},
			nil,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FromTable(tt.table))
		})
	}
}
