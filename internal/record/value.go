package record

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies the type of a cell value.
type Kind int

const (
	KindAbsent Kind = iota // field not present on the record
	KindNull               // explicit null from the source
	KindBool
	KindNumber
	KindString
	KindRaw // nested object or array, kept as compact JSON text
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// Value is a single heterogeneous cell value. The zero Value is absent.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
}

// Absent returns the value of a field that does not exist on a record.
func Absent() Value { return Value{} }

// Null returns an explicit null value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Raw returns a nested value carried as its JSON text.
func Raw(jsonText string) Value { return Value{kind: KindRaw, s: jsonText} }

func (v Value) Kind() Kind        { return v.kind }
func (v Value) IsAbsent() bool    { return v.kind == KindAbsent }
func (v Value) AsBool() bool      { return v.b }
func (v Value) AsNumber() float64 { return v.n }

// AsString returns the payload of a string or raw value, "" otherwise.
func (v Value) AsString() string { return v.s }

// Equal reports whether two values have the same kind and payload.
// NaN numbers compare equal to each other.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.n == o.n || (math.IsNaN(v.n) && math.IsNaN(o.n))
	case KindString, KindRaw:
		return v.s == o.s
	}
	return true
}

// String is the value's display and comparison form. Filtering and
// sorting both go through it so that mixed-type columns never fail:
// absent fields render as "undefined" and nulls as "null", numbers use
// the shortest round-trip form with JavaScript-style exponents.
func (v Value) String() string {
	switch v.kind {
	case KindAbsent:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return formatNumber(v.n)
	default:
		return v.s
	}
}

// Interface converts the value to the plain Go value used by encoders:
// nil, bool, float64 or string. Raw values are returned as their text.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString, KindRaw:
		return v.s
	default:
		return nil
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		n, _ := strconv.Atoi(exp)
		sign := "+"
		if n < 0 {
			sign = "-"
			n = -n
		}
		return mantissa + "e" + sign + strconv.Itoa(n)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
