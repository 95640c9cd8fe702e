package dss

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the scalar type held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "null"
	}
}

// Value is a nullable spreadsheet scalar.
// The zero Value is null.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
}

// NullValue returns the null Value.
func NullValue() Value { return Value{} }

// StringValue wraps s.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

// IntValue wraps i.
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }

// FloatValue wraps f. NaN and infinities are treated as null.
func FloatValue(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{kind: KindFloat, f: f}
}

// ParseValue converts raw cell text into a Value. Empty text is null,
// integer text becomes KindInt, decimal text KindFloat, anything else is kept
// verbatim as a string.
func ParseValue(raw string) Value {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Value{}
	}
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return IntValue(i)
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		if !isNumericLiteral(trimmed) {
			return StringValue(raw)
		}
		return FloatValue(f)
	}
	return StringValue(raw)
}

// isNumericLiteral rejects strings strconv accepts but a spreadsheet user
// would not consider numbers ("NaN", "Inf", hex floats).
func isNumericLiteral(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.' || r == '-' || r == '+' || r == 'e' || r == 'E':
		default:
			return false
		}
	}
	return true
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// String renders v for template output. Null renders as "", integral floats
// render without a fractional part.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		if v.f == math.Trunc(v.f) && math.Abs(v.f) < 1e15 {
			return strconv.FormatInt(int64(v.f), 10)
		}
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	default:
		return ""
	}
}

// Int reports v as an integer when it is integer-like: an int, a float with
// no fractional part, or a string holding an integer.
func (v Value) Int() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindFloat:
		if v.f == math.Trunc(v.f) && math.Abs(v.f) < 1<<53 {
			return int64(v.f), true
		}
	case KindString:
		if i, err := strconv.ParseInt(strings.TrimSpace(v.s), 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}

// AsInt returns v coerced to KindInt when integer-like, otherwise v unchanged.
func (v Value) AsInt() Value {
	if i, ok := v.Int(); ok {
		return IntValue(i)
	}
	return v
}

func (v Value) float() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	}
	return 0, false
}

// Equal compares numbers numerically and strings exactly. Null equals nothing,
// and a number never equals a string.
func (v Value) Equal(o Value) bool {
	if v.kind == KindNull || o.kind == KindNull {
		return false
	}
	if v.kind == KindString || o.kind == KindString {
		return v.kind == o.kind && v.s == o.s
	}
	a, _ := v.float()
	b, _ := o.float()
	return a == b
}

// MarshalJSON encodes null as null, numbers as numbers and strings as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.s)
	case KindInt:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case KindFloat:
		return []byte(strconv.FormatFloat(v.f, 'f', -1, 64)), nil
	default:
		return []byte("null"), nil
	}
}

// fold normalises a name for case-insensitive matching.
func fold(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
