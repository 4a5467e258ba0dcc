package catalogs

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// ValueKind identifies the concrete type held by a Value.
type ValueKind string

const (
	// KindString holds free-form text.
	KindString ValueKind = "string"
	// KindInt holds a whole number.
	KindInt ValueKind = "int"
	// KindFloat holds a decimal number.
	KindFloat ValueKind = "float"
)

// Value is a variant property value: a string or a number.
// Type decisions are made once, at parse time, with coercion order
// int → float → string. Values are immutable.
type Value struct {
	kind ValueKind
	str  string
	i    int64
	f    float64
}

// String creates a string Value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Int creates an integer Value.
func Int(i int64) Value {
	return Value{kind: KindInt, i: i}
}

// Float creates a float Value.
func Float(f float64) Value {
	return Value{kind: KindFloat, f: f}
}

// Coerce converts a raw source token into a typed Value.
// Whole numbers become KindInt, decimals (dot or comma separator)
// become KindFloat, everything else stays a string.
func Coerce(raw string) Value {
	raw = strings.TrimSpace(raw)
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return Int(i)
	}
	if strings.ContainsAny(raw, ".,") {
		if f, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64); err == nil {
			return Float(f)
		}
	}
	return String(raw)
}

// FromAny converts a decoded YAML/JSON value into a typed Value,
// applying the same int → float → string coercion order.
func FromAny(v any) Value {
	switch v := v.(type) {
	case nil:
		return String("")
	case string:
		return Coerce(v)
	case bool:
		return String(cast.ToString(v))
	}
	if i, err := cast.ToInt64E(v); err == nil {
		// Floats with a fractional part fail ToInt64E only for strings,
		// so double-check numeric identity before committing to int.
		if f, ferr := cast.ToFloat64E(v); ferr == nil && f != float64(i) {
			return Float(f)
		}
		return Int(i)
	}
	if f, err := cast.ToFloat64E(v); err == nil {
		return Float(f)
	}
	return String(cast.ToString(v))
}

// Kind returns the kind of the value.
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsZero reports whether the value is the unset zero Value.
func (v Value) IsZero() bool {
	return v.kind == ""
}

// String returns a display representation of the value.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	default:
		return v.str
	}
}

// Float64 returns the numeric view of the value. Strings are parsed
// tolerantly (comma accepted as decimal separator); ok is false when
// the value has no numeric reading.
func (v Value) Float64() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	case KindString:
		f, err := cast.ToFloat64E(strings.ReplaceAll(strings.TrimSpace(v.str), ",", "."))
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Any returns the underlying value as its native Go type.
func (v Value) Any() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	default:
		return v.str
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = FromAny(raw)
	return nil
}

// Properties is an open-ended, string-keyed map of variant values.
type Properties map[string]Value

// PropertiesFromAny converts a decoded map into typed Properties.
// Empty values are dropped.
func PropertiesFromAny(raw map[string]any) Properties {
	if len(raw) == 0 {
		return Properties{}
	}
	props := make(Properties, len(raw))
	for k, v := range raw {
		val := FromAny(v)
		if val.Kind() == KindString && val.String() == "" {
			continue
		}
		props[k] = val
	}
	return props
}
