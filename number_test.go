package otelme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestNumber_Arithmetic(t *testing.T) {
	var zero Number
	assert.False(t, zero.IsFloat())
	assert.Equal(t, "0", zero.String())

	sum := Int(3).Add(Int(-1)).Add(Int(2))
	assert.False(t, sum.IsFloat())
	assert.Equal(t, int64(4), sum.Int64())

	mixed := Int(1).Add(Float(0.5))
	assert.True(t, mixed.IsFloat())
	assert.InDelta(t, 1.5, mixed.Float64(), 1e-9)
	assert.Equal(t, int64(1), mixed.Int64())
	assert.Equal(t, "1.5", mixed.String())

	assert.Equal(t, Int(-7), Int(7).Neg())
	assert.Equal(t, Float(-0.25), Float(0.25).Neg())
}

func TestNumber_KeyValue(t *testing.T) {
	assert.Equal(t, attribute.Int64("n", 4), Int(4).KeyValue("n"))
	assert.Equal(t, attribute.Float64("n", 2.5), Float(2.5).KeyValue("n"))
}

func TestToNumber(t *testing.T) {
	cases := []struct {
		in    any
		want  Number
		float bool
	}{
		{in: 5, want: Int(5)},
		{in: int8(-2), want: Int(-2)},
		{in: int64(9), want: Int(9)},
		{in: uint(3), want: Int(3)},
		{in: uint64(11), want: Int(11)},
		{in: float32(0.5), want: Float(0.5), float: true},
		{in: 1.25, want: Float(1.25), float: true},
		{in: Int(8), want: Int(8)},
	}

	for _, tt := range cases {
		got, err := ToNumber(tt.in)
		require.NoError(t, err, "%T", tt.in)
		assert.Equal(t, tt.want, got, "%T", tt.in)
		assert.Equal(t, tt.float, got.IsFloat(), "%T", tt.in)
	}

	for _, bad := range []any{"1", nil, true, []int{1}} {
		_, err := ToNumber(bad)
		assert.ErrorIs(t, err, ErrTypeMismatch, "%T", bad)
	}
}
