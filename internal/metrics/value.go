package metrics

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Value is an optional metric reading. The zero value is absent.
type Value struct {
	v  float64
	ok bool
}

// Of wraps a reading. Non-finite numbers are treated as absent.
func Of(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}
	}
	return Value{v: v, ok: true}
}

// Absent returns a value that carries no reading.
func Absent() Value {
	return Value{}
}

// FromPtr converts a nullable float into a Value.
func FromPtr(v *float64) Value {
	if v == nil {
		return Value{}
	}
	return Of(*v)
}

// Float returns the reading and whether it is present.
func (v Value) Float() (float64, bool) {
	return v.v, v.ok
}

// Present reports whether the value holds a finite reading.
func (v Value) Present() bool {
	return v.ok
}

// Ptr returns a pointer copy of the reading or nil when absent.
func (v Value) Ptr() *float64 {
	if !v.ok {
		return nil
	}
	f := v.v
	return &f
}

// MarshalJSON encodes absent values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(v.v, 'f', -1, 64)), nil
}

// UnmarshalJSON accepts numbers, numeric strings and null.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = ValueFromAny(raw)
	return nil
}

// ValueFromAny converts loosely typed decoded JSON into a Value.
func ValueFromAny(raw interface{}) Value {
	switch n := raw.(type) {
	case float64:
		return Of(n)
	case float32:
		return Of(float64(n))
	case int:
		return Of(float64(n))
	case int64:
		return Of(float64(n))
	case uint:
		return Of(float64(n))
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return Value{}
		}
		return Of(f)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return Value{}
		}
		return Of(f)
	default:
		return Value{}
	}
}
