package tomlspan

import (
	"fmt"
	"math"

	"github.com/EmbarkStudios/toml-span/tomlparser"
)

// TableHelper pulls typed fields out of a table value while accumulating
// every error instead of stopping at the first. A bad field records its
// error and yields the zero value so the remaining fields still get
// checked.
type TableHelper struct {
	table  *tomlparser.Table
	errors []Error
}

// NewTableHelper takes the table out of value. The caller must finish with
// Finalize, which reports the collected errors and optionally stores the
// remaining table back into the original value.
func NewTableHelper(value *Value) (*TableHelper, error) {
	inner := value.Take()
	table, ok := inner.(*tomlparser.Table)
	if !ok {
		return nil, &DeserError{Errors: []Error{{
			Kind:     tomlparser.Wanted,
			Span:     value.Span,
			Expected: "a table",
			Found:    inner.TypeString(),
		}}}
	}
	return &TableHelper{table: table}, nil
}

// Contains reports whether the field is still present.
func (th *TableHelper) Contains(name string) bool {
	return th.table.Contains(name)
}

// Take removes the named value so the caller can handle it manually.
func (th *TableHelper) Take(name string) (*Value, bool) {
	return th.table.Remove(name)
}

// PushError records err against the table being deserialized.
func (th *TableHelper) PushError(err error) {
	if de := asDeserError(err); de != nil {
		th.errors = append(th.errors, de.Errors...)
	}
}

// Finalize reports the collected errors. When original is non-nil the
// remaining table is stored back into it, so a caller higher up can keep
// processing the leftover keys; otherwise any leftover key is itself an
// error.
func (th *TableHelper) Finalize(original *Value) error {
	if original != nil {
		original.Set(th.table)
	} else if th.table.Len() > 0 {
		extra := make([]tomlparser.ExtraKey, 0, th.table.Len())
		for _, k := range th.table.Keys() {
			extra = append(extra, tomlparser.ExtraKey{Name: k.Name, Span: k.Span})
		}
		th.errors = append(th.errors, Error{Kind: tomlparser.UnexpectedKeys, Keys: extra})
	}
	if len(th.errors) == 0 {
		return nil
	}
	return &DeserError{Errors: th.errors}
}

// Required deserializes the named field into T. An absent field records a
// MissingField error and a broken one records its own error; either way the
// zero value is returned.
func Required[T any](th *TableHelper, name string) T {
	v, _ := RequiredWithSpan[T](th, name)
	return v
}

// RequiredWithSpan is Required plus the span of the field's value.
func RequiredWithSpan[T any](th *TableHelper, name string) (T, Span) {
	var out T
	val, ok := th.table.Remove(name)
	if !ok {
		th.errors = append(th.errors, Error{Kind: tomlparser.MissingField, Key: name})
		return out, Span{}
	}
	if err := deserializeValue(val, &out); err != nil {
		th.PushError(err)
	}
	return out, val.Span
}

// Optional deserializes the named field into T if it is present. A present
// but broken field records its error and reports false.
func Optional[T any](th *TableHelper, name string) (T, bool) {
	v, _, ok := OptionalWithSpan[T](th, name)
	return v, ok
}

// OptionalWithSpan is Optional plus the span of the field's value.
func OptionalWithSpan[T any](th *TableHelper, name string) (T, Span, bool) {
	var out T
	val, ok := th.table.Remove(name)
	if !ok {
		return out, Span{}, false
	}
	if err := deserializeValue(val, &out); err != nil {
		th.PushError(err)
		return out, val.Span, false
	}
	return out, val.Span, true
}

// WithDefault deserializes the named field, falling back to def when it is
// absent or broken.
func WithDefault[T any](th *TableHelper, name string, def func() T) T {
	if v, ok := Optional[T](th, name); ok {
		return v
	}
	return def()
}

// textUnmarshaler matches encoding.TextUnmarshaler on *T.
type textUnmarshaler[T any] interface {
	*T
	UnmarshalText(text []byte) error
}

// ParseField extracts the named string field and parses it with T's
// UnmarshalText. The field is required.
func ParseField[T any, PT textUnmarshaler[T]](th *TableHelper, name string) T {
	val, ok := th.table.Remove(name)
	if !ok {
		var out T
		th.errors = append(th.errors, Error{Kind: tomlparser.MissingField, Key: name})
		return out
	}
	v, _ := parseFieldValue[T, PT](th, val)
	return v
}

// ParseFieldOpt is ParseField for optional fields.
func ParseFieldOpt[T any, PT textUnmarshaler[T]](th *TableHelper, name string) (T, bool) {
	val, ok := th.table.Remove(name)
	if !ok {
		var out T
		return out, false
	}
	return parseFieldValue[T, PT](th, val)
}

func parseFieldValue[T any, PT textUnmarshaler[T]](th *TableHelper, val *Value) (T, bool) {
	var out T
	s, err := val.TakeString("")
	if err != nil {
		th.PushError(err)
		return out, false
	}
	if err := PT(&out).UnmarshalText([]byte(s)); err != nil {
		th.errors = append(th.errors, Error{Kind: tomlparser.Custom, Key: err.Error(), Span: val.Span})
		return out, false
	}
	return out, true
}

// DeprecatedField behaves like Optional under the old name so existing
// documents keep working, but records a Deprecated error pointing at the
// old key.
func DeprecatedField[T any](th *TableHelper, old, replacement string) (T, bool) {
	key, ok := th.table.Key(old)
	if !ok {
		var out T
		return out, false
	}
	th.errors = append(th.errors, Error{
		Kind:     tomlparser.Deprecated,
		Span:     key.Span,
		Key:      old,
		Expected: replacement,
	})
	return Optional[T](th, old)
}

// deserializeValue fills target from value. Pointers implementing
// Deserializer take precedence; otherwise the built-in primitive and slice
// forms apply.
func deserializeValue(value *Value, target interface{}) error {
	if d, ok := target.(Deserializer); ok {
		return d.DeserializeTOML(value)
	}
	switch t := target.(type) {
	case *string:
		s, err := value.TakeString("")
		if err != nil {
			return err
		}
		*t = s
	case *bool:
		inner := value.Take()
		b, ok := inner.(tomlparser.Boolean)
		if !ok {
			return wanted(value, "a boolean", inner)
		}
		*t = bool(b)
	case *float64:
		inner := value.Take()
		f, ok := inner.(tomlparser.Float)
		if !ok {
			return wanted(value, "a float", inner)
		}
		*t = float64(f)
	case *float32:
		inner := value.Take()
		f, ok := inner.(tomlparser.Float)
		if !ok {
			return wanted(value, "a float", inner)
		}
		*t = float32(f)
	case *int64:
		return takeInt(value, math.MinInt64, math.MaxInt64, func(n int64) { *t = n })
	case *int32:
		return takeInt(value, math.MinInt32, math.MaxInt32, func(n int64) { *t = int32(n) })
	case *int16:
		return takeInt(value, math.MinInt16, math.MaxInt16, func(n int64) { *t = int16(n) })
	case *int8:
		return takeInt(value, math.MinInt8, math.MaxInt8, func(n int64) { *t = int8(n) })
	case *int:
		return takeInt(value, math.MinInt, math.MaxInt, func(n int64) { *t = int(n) })
	case *uint64:
		return takeInt(value, 0, math.MaxInt64, func(n int64) { *t = uint64(n) })
	case *uint32:
		return takeInt(value, 0, math.MaxUint32, func(n int64) { *t = uint32(n) })
	case *uint16:
		return takeInt(value, 0, math.MaxUint16, func(n int64) { *t = uint16(n) })
	case *uint8:
		return takeInt(value, 0, math.MaxUint8, func(n int64) { *t = uint8(n) })
	case *uint:
		return takeInt(value, 0, math.MaxInt64, func(n int64) { *t = uint(n) })
	case *[]string:
		inner := value.Take()
		arr, ok := inner.(*tomlparser.Array)
		if !ok {
			return wanted(value, "an array of strings", inner)
		}
		out := make([]string, 0, len(*arr))
		for _, elem := range *arr {
			s, err := elem.TakeString("")
			if err != nil {
				return err
			}
			out = append(out, s)
		}
		*t = out
	case **Value:
		*t = value
	default:
		return &tomlparser.Error{
			Kind: tomlparser.Custom,
			Span: value.Span,
			Key:  fmt.Sprintf("cannot deserialize into %T", target),
		}
	}
	return nil
}

func wanted(value *Value, expected string, found tomlparser.ValueInner) error {
	return &tomlparser.Error{
		Kind:     tomlparser.Wanted,
		Span:     value.Span,
		Expected: expected,
		Found:    found.TypeString(),
	}
}

func takeInt(value *Value, min, max int64, assign func(int64)) error {
	inner := value.Take()
	i, ok := inner.(tomlparser.Integer)
	if !ok {
		return wanted(value, "an integer", inner)
	}
	n := int64(i)
	if n < min || n > max {
		return &tomlparser.Error{Kind: tomlparser.InvalidNumber, Span: value.Span}
	}
	assign(n)
	return nil
}
