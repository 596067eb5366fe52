package dashboard

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// RawValue is a loosely typed scalar taken from the backend payload. A JSON
// number keeps its numeric form; anything else is kept as text.
type RawValue struct {
	Num   float64
	Text  string
	IsNum bool
}

// NumberValue wraps a numeric raw value.
func NumberValue(f float64) RawValue {
	return RawValue{Num: f, IsNum: true}
}

// TextValue wraps a non-numeric raw value.
func TextValue(s string) RawValue {
	return RawValue{Text: s}
}

// String renders the value the way the dashboard displays bare values.
func (v RawValue) String() string {
	if v.IsNum {
		return FormatNumber(v.Num)
	}
	return v.Text
}

// Float coerces the value to a finite number. Numeric text is parsed; anything
// else yields 0.
func (v RawValue) Float() float64 {
	f := v.Num
	if !v.IsNum {
		s := strings.TrimSpace(v.Text)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// rawValueOf converts a decoded JSON value. Null and missing values report
// ok=false so callers can treat them as absent.
func rawValueOf(v any) (RawValue, bool) {
	switch t := v.(type) {
	case nil:
		return RawValue{}, false
	case float64:
		return NumberValue(t), true
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return NumberValue(f), true
		}
		return TextValue(t.String()), true
	case int:
		return NumberValue(float64(t)), true
	case int64:
		return NumberValue(float64(t)), true
	}
	s, ok := stringOf(v)
	return TextValue(s), ok
}

// stringOf renders any decoded JSON value as text. Null reports ok=false.
func stringOf(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case float64:
		return FormatNumber(t), true
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return FormatNumber(f), true
		}
		return t.String(), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}

// FormatNumber prints a float in its shortest round-trip form, switching to
// exponent notation for very large or very small magnitudes.
func FormatNumber(f float64) string {
	abs := math.Abs(f)
	if f == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	// 1e-07 -> 1e-7
	if i := strings.IndexByte(s, 'e'); i >= 0 && len(s) > i+2 {
		exp := strings.TrimLeft(s[i+2:], "0")
		if exp == "" {
			exp = "0"
		}
		s = s[:i+2] + exp
	}
	return s
}
