package grid

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ValueKind discriminates the variants a cell value can take.
type ValueKind int

const (
	ValueEmpty ValueKind = iota
	ValueNumber
	ValueString
	ValueBool
)

// Value is a tagged cell value: a number, a string, a boolean or empty.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
	Bool bool
}

func Empty() Value { return Value{} }

func Number(f float64) Value { return Value{Kind: ValueNumber, Num: f} }

func Text(s string) Value { return Value{Kind: ValueString, Str: s} }

func Boolean(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

// ValueFromRaw interprets raw cell input the way a sheet does on entry:
// numbers and booleans are recognized, everything else stays text.
func ValueFromRaw(raw string) Value {
	if raw == "" {
		return Empty()
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(f) {
		return Number(f)
	}
	switch strings.ToUpper(raw) {
	case "TRUE":
		return Boolean(true)
	case "FALSE":
		return Boolean(false)
	}
	return Text(raw)
}

func (v Value) IsEmpty() bool {
	return v.Kind == ValueEmpty
}

// IsNumeric reports whether the value participates in arithmetic.
// NaN is a number kind but never numeric.
func (v Value) IsNumeric() bool {
	return v.Kind == ValueNumber && !math.IsNaN(v.Num)
}

// IsTruthy implements condition semantics: true, a non-zero number or a
// non-empty string count as true.
func (v Value) IsTruthy() bool {
	switch v.Kind {
	case ValueBool:
		return v.Bool
	case ValueNumber:
		return v.Num != 0
	case ValueString:
		return v.Str != ""
	}
	return false
}

// Equal is value equality without coercion: differing kinds are never equal.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case ValueNumber:
		return v.Num == other.Num
	case ValueString:
		return v.Str == other.Str
	case ValueBool:
		return v.Bool == other.Bool
	}
	return true
}

// String renders the display form: integral numbers without a decimal point,
// booleans as TRUE/FALSE, empty as "".
func (v Value) String() string {
	switch v.Kind {
	case ValueNumber:
		return formatNumber(v.Num)
	case ValueString:
		return v.Str
	case ValueBool:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	}
	return ""
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// MarshalJSON encodes the value as the matching JSON scalar, with empty as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueNumber:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return json.Marshal(formatNumber(v.Num))
		}
		return json.Marshal(v.Num)
	case ValueString:
		return json.Marshal(v.Str)
	case ValueBool:
		return json.Marshal(v.Bool)
	}
	return []byte("null"), nil
}
