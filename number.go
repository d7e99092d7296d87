package otelme

import (
	"errors"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
)

// ErrTypeMismatch is returned when a counter amount is not numeric.
var ErrTypeMismatch = errors.New("otelme: value is not numeric")

// Number is a counter value: either an integer or a float.
// The zero value is integer 0.
//
// Arithmetic stays integral while both operands are integers and promotes
// to float as soon as one of them is a float.
type Number struct {
	i     int64
	f     float64
	float bool
}

// Int returns an integer Number.
func Int(v int64) Number {
	return Number{i: v}
}

// Float returns a float Number.
func Float(v float64) Number {
	return Number{f: v, float: true}
}

// ToNumber converts any Go integer or float type to a Number.
// Other types yield ErrTypeMismatch.
func ToNumber(v any) (Number, error) {
	switch n := v.(type) {
	case Number:
		return n, nil
	case int:
		return Int(int64(n)), nil
	case int8:
		return Int(int64(n)), nil
	case int16:
		return Int(int64(n)), nil
	case int32:
		return Int(int64(n)), nil
	case int64:
		return Int(n), nil
	case uint:
		return Int(int64(n)), nil //nolint:gosec // counters do not approach 1<<63
	case uint8:
		return Int(int64(n)), nil
	case uint16:
		return Int(int64(n)), nil
	case uint32:
		return Int(int64(n)), nil
	case uint64:
		return Int(int64(n)), nil //nolint:gosec // counters do not approach 1<<63
	case float32:
		return Float(float64(n)), nil
	case float64:
		return Float(n), nil
	default:
		return Number{}, fmt.Errorf("%w: %T", ErrTypeMismatch, v)
	}
}

// IsFloat reports whether n holds a float.
func (n Number) IsFloat() bool {
	return n.float
}

// Int64 returns n as an integer, truncating floats.
func (n Number) Int64() int64 {
	if n.float {
		return int64(n.f)
	}

	return n.i
}

// Float64 returns n as a float.
func (n Number) Float64() float64 {
	if n.float {
		return n.f
	}

	return float64(n.i)
}

// Add returns n + o.
func (n Number) Add(o Number) Number {
	if n.float || o.float {
		return Float(n.Float64() + o.Float64())
	}

	return Int(n.i + o.i)
}

// Neg returns -n.
func (n Number) Neg() Number {
	if n.float {
		return Float(-n.f)
	}

	return Int(-n.i)
}

// String formats n the way it is recorded on spans.
func (n Number) String() string {
	if n.float {
		return strconv.FormatFloat(n.f, 'g', -1, 64)
	}

	return strconv.FormatInt(n.i, 10)
}

// KeyValue returns n as a span attribute named key.
func (n Number) KeyValue(key string) attribute.KeyValue {
	if n.float {
		return attribute.Float64(key, n.f)
	}

	return attribute.Int64(key, n.i)
}
