package transform

import (
	"testing"
	"time"

	"github.com/prometheus/common/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/infinity/pkg/query"
)

func TestCoerceNumber(t *testing.T) {
	tests := map[string]struct {
		input    any
		expected any
	}{
		"plain":                       {"123", float64(123)},
		"thousands separators":        {"1,234", float64(1234)},
		"many separators":             {"12,345,678.5", float64(12345678.5)},
		"empty string is null":        {"", nil},
		"non numeric is null":         {"twelve", nil},
		"nil stays null":              {nil, nil},
		"already numeric passes":      {float64(7.5), float64(7.5)},
		"integer kinds widen":         {42, float64(42)},
		"structured value is null":    {map[string]any{"a": 1}, nil},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Coerce(tt.input, query.ColumnTypeNumber))
		})
	}
}

func TestCoerceTimestamps(t *testing.T) {
	t.Run("free form date string", func(t *testing.T) {
		got := Coerce("2023-11-14T22:13:20Z", query.ColumnTypeTimestamp)
		ts, ok := got.(time.Time)
		require.True(t, ok)
		assert.Equal(t, int64(1700000000000), ts.UnixMilli())
	})
	t.Run("unparsable date is null", func(t *testing.T) {
		assert.Nil(t, Coerce("yesterday-ish", query.ColumnTypeTimestamp))
	})
	t.Run("epoch milliseconds", func(t *testing.T) {
		got := Coerce("1700000000000", query.ColumnTypeTimestampEpoch)
		ts, ok := got.(time.Time)
		require.True(t, ok)
		assert.Equal(t, int64(1700000000000), ts.UnixMilli())
	})
	t.Run("epoch seconds scale to milliseconds", func(t *testing.T) {
		got := Coerce("1700000000", query.ColumnTypeTimestampSecs)
		ts, ok := got.(time.Time)
		require.True(t, ok)
		assert.Equal(t, int64(1700000000)*1000, ts.UnixMilli())
	})
	t.Run("bad epoch is null", func(t *testing.T) {
		assert.Nil(t, Coerce("not-an-epoch", query.ColumnTypeTimestampEpoch))
	})
}

func TestCoerceToEpochMillis(t *testing.T) {
	ts, ok := CoerceToEpochMillis("1700000000", query.ColumnTypeTimestampSecs)
	require.True(t, ok)
	assert.Equal(t, model.Time(1700000000000), ts)

	_, ok = CoerceToEpochMillis("garbage", query.ColumnTypeTimestamp)
	assert.False(t, ok)
}

func TestCoercePassThrough(t *testing.T) {
	assert.Equal(t, true, Coerce(true, query.ColumnTypeBoolean))
	assert.Equal(t, "keep", Coerce("keep", query.ColumnTypeString))
	assert.Equal(t, "keep", Coerce("keep", query.ColumnType("unknown")))
}
