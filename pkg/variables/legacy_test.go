package variables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpretLegacyQuery_Random(t *testing.T) {
	for i := 0; i < 20; i++ {
		res := InterpretLegacyQuery("Random(A,B,C,D)")
		require.Len(t, res, 1)
		assert.Contains(t, []string{"A", "B", "C", "D"}, res[0].Text)
		assert.Equal(t, res[0].Text, res[0].Value)
	}
}

func TestInterpretLegacyQuery_Join(t *testing.T) {
	res := InterpretLegacyQuery("Join(A,B,C,D)")
	require.Len(t, res, 1)
	assert.Equal(t, "ABCD", res[0].Text)
	assert.Equal(t, "ABCD", res[0].Value)
}

func TestInterpretLegacyQuery_Collection(t *testing.T) {
	tests := map[string]struct {
		expression string
		expected   []VariableResult
	}{
		"pairs": {
			"Collection(A,B,C,D)",
			[]VariableResult{{Text: "A", Value: "B"}, {Text: "C", Value: "D"}},
		},
		"odd trailing argument is ignored": {
			"Collection(A,B,C)",
			[]VariableResult{{Text: "A", Value: "B"}},
		},
		"empty": {
			"Collection()",
			nil,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expected, InterpretLegacyQuery(tt.expression))
		})
	}
}

func TestInterpretLegacyQuery_CollectionLookup(t *testing.T) {
	tests := map[string]struct {
		expression string
		expected   []VariableResult
	}{
		"match": {
			"CollectionLookup(pd,prod-server,np,nonprod-server,dev,dev-server,np)",
			[]VariableResult{{Text: "nonprod-server", Value: "nonprod-server"}},
		},
		"first match wins": {
			"CollectionLookup(A,a,B,b,C,c,D,d,C)",
			[]VariableResult{{Text: "c", Value: "c"}},
		},
		"no match": {
			"CollectionLookup(A,a,B,b,C,c,D,d,E)",
			nil,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expected, InterpretLegacyQuery(tt.expression))
		})
	}
}

func TestInterpretLegacyQuery_Malformed(t *testing.T) {
	tests := map[string]string{
		"unknown function":  "Pick(A,B)",
		"no parentheses":    "Random",
		"free text":         "some random text",
		"empty expression":  "",
		"bare parentheses":  "()",
		"whitespace only":   "   ",
		"unclosed argument": "Random(A,B",
	}
	for name, expression := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, InterpretLegacyQuery(expression))
		})
	}
}
