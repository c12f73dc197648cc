package model

import (
	"bytes"
	"encoding/json"
)

// Value is an indicator reading that may be undefined, e.g. inside the warm-up
// prefix of a windowed indicator. Comparisons involving an undefined Value are false.
type Value struct {
	v  float64
	ok bool
}

// Some wraps a defined reading.
func Some(v float64) Value { return Value{v: v, ok: true} }

// None is the undefined reading.
func None() Value { return Value{} }

// Defined reports whether the reading carries a number.
func (x Value) Defined() bool { return x.ok }

// Float returns the reading and whether it is defined.
func (x Value) Float() (float64, bool) { return x.v, x.ok }

// Or returns the reading, or def when undefined.
func (x Value) Or(def float64) float64 {
	if !x.ok {
		return def
	}
	return x.v
}

// GT reports x > y.
func (x Value) GT(y Value) bool { return x.ok && y.ok && x.v > y.v }

// LT reports x < y.
func (x Value) LT(y Value) bool { return x.ok && y.ok && x.v < y.v }

// GTE reports x >= y.
func (x Value) GTE(y Value) bool { return x.ok && y.ok && x.v >= y.v }

// LTE reports x <= y.
func (x Value) LTE(y Value) bool { return x.ok && y.ok && x.v <= y.v }

// Between reports lo <= x <= hi.
func (x Value) Between(lo, hi float64) bool { return x.ok && x.v >= lo && x.v <= hi }

// MarshalJSON encodes an undefined reading as null.
func (x Value) MarshalJSON() ([]byte, error) {
	if !x.ok {
		return []byte("null"), nil
	}
	return json.Marshal(x.v)
}

func (x *Value) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*x = None()
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*x = Some(v)
	return nil
}

// Series is an indicator aligned 1:1 with a bar series.
type Series []Value

// At returns the reading at i, undefined when i is out of range.
func (s Series) At(i int) Value {
	if i < 0 || i >= len(s) {
		return None()
	}
	return s[i]
}

// Last returns the most recent reading.
func (s Series) Last() Value { return s.At(len(s) - 1) }
