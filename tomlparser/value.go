package tomlparser

import (
	"sort"
	"strconv"
	"strings"
)

// Value is a parsed TOML value together with the byte range of its defining
// source text. The payload can be moved out with Take and restored with
// Set; calling Take or Inner on a value whose payload has already been taken
// is a contract violation and panics. The As* accessors report false for
// such a value instead.
type Value struct {
	inner ValueInner
	Span  Span
}

func NewValue(inner ValueInner, span Span) *Value {
	return &Value{inner: inner, Span: span}
}

// ValueInner is the payload of a Value: String, Integer, Float, Boolean,
// *Array or *Table.
type ValueInner interface {
	// TypeString names the variant the way error messages spell it.
	TypeString() string
	isValueInner()
}

type (
	String  string
	Integer int64
	Float   float64
	Boolean bool
	Array   []*Value
)

func (String) TypeString() string  { return "string" }
func (Integer) TypeString() string { return "integer" }
func (Float) TypeString() string   { return "float" }
func (Boolean) TypeString() string { return "boolean" }
func (*Array) TypeString() string  { return "array" }
func (*Table) TypeString() string  { return "table" }

func (String) isValueInner()  {}
func (Integer) isValueInner() {}
func (Float) isValueInner()   {}
func (Boolean) isValueInner() {}
func (*Array) isValueInner()  {}
func (*Table) isValueInner()  {}

// Take moves the payload out, leaving the value empty until Set is called.
func (v *Value) Take() ValueInner {
	if v.inner == nil {
		panic("the value has already been taken")
	}
	inner := v.inner
	v.inner = nil
	return inner
}

// Set stores a payload back into the value.
func (v *Value) Set(inner ValueInner) {
	v.inner = inner
}

// Inner returns the payload without moving it out.
func (v *Value) Inner() ValueInner {
	if v.inner == nil {
		panic("the value has already been taken")
	}
	return v.inner
}

// TakeString takes the payload and requires it to be a string. A non-empty
// expected overrides the description used in the error.
func (v *Value) TakeString(expected string) (string, error) {
	inner := v.Take()
	if s, ok := inner.(String); ok {
		return string(s), nil
	}
	if expected == "" {
		expected = "a string"
	}
	return "", &Error{Kind: Wanted, Span: v.Span, Expected: expected, Found: inner.TypeString()}
}

func (v *Value) AsString() (string, bool) {
	s, ok := v.inner.(String)
	return string(s), ok
}

func (v *Value) AsInteger() (int64, bool) {
	i, ok := v.inner.(Integer)
	return int64(i), ok
}

func (v *Value) AsFloat() (float64, bool) {
	f, ok := v.inner.(Float)
	return float64(f), ok
}

func (v *Value) AsBool() (bool, bool) {
	b, ok := v.inner.(Boolean)
	return bool(b), ok
}

func (v *Value) AsTable() (*Table, bool) {
	t, ok := v.inner.(*Table)
	return t, ok
}

func (v *Value) AsArray() (*Array, bool) {
	a, ok := v.inner.(*Array)
	return a, ok
}

// HasKeys reports whether the value is a table with at least one entry.
func (v *Value) HasKeys() bool {
	t, ok := v.inner.(*Table)
	return ok && t.Len() > 0
}

// HasKey reports whether the value is a table containing name.
func (v *Value) HasKey(name string) bool {
	t, ok := v.inner.(*Table)
	return ok && t.Contains(name)
}

// Pointer resolves a JSON-pointer-like path: "" is the value itself,
// otherwise "/tok(/tok)*" descends tables by key and arrays by decimal
// index. Index tokens reject a leading '+' and a leading zero unless the
// token is exactly "0". There is no escape syntax for '/' or '~' in key
// tokens. Resolution returns nil on a missing key, a malformed index, or a
// value whose payload has been taken.
func (v *Value) Pointer(pointer string) *Value {
	if pointer == "" {
		return v
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil
	}
	target := v
	for _, token := range strings.Split(pointer[1:], "/") {
		var next *Value
		switch inner := target.inner.(type) {
		case *Table:
			next = inner.Get(token)
		case *Array:
			if idx, ok := parseIndex(token); ok && idx < len(*inner) {
				next = (*inner)[idx]
			}
		}
		if next == nil || next.inner == nil {
			return nil
		}
		target = next
	}
	return target
}

func parseIndex(s string) (int, bool) {
	if s == "" || s[0] == '+' || (s[0] == '0' && len(s) != 1) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// MarshalYAML serializes the tree as plain scalars, sequences and maps,
// dropping spans. A taken value marshals as null.
func (v *Value) MarshalYAML() (interface{}, error) {
	return v.plain(), nil
}

func (v *Value) plain() interface{} {
	switch inner := v.inner.(type) {
	case String:
		return string(inner)
	case Integer:
		return int64(inner)
	case Float:
		return float64(inner)
	case Boolean:
		return bool(inner)
	case *Array:
		out := make([]interface{}, 0, len(*inner))
		for _, e := range *inner {
			out = append(out, e.plain())
		}
		return out
	case *Table:
		out := make(map[string]interface{}, inner.Len())
		for _, k := range inner.keys {
			out[k.Name] = inner.values[k.Name].plain()
		}
		return out
	}
	return nil
}

// Key is a table key together with the span of its defining occurrence.
// Identity is by Name alone.
type Key struct {
	Name string
	Span Span
}

// Table is an ordered mapping from keys to values. Keys are unique and
// kept sorted ascending by name.
type Table struct {
	keys   []Key
	values map[string]*Value

	// structural state threaded by the parser while assembling headers,
	// dotted keys and inline tables
	defined  bool
	implicit bool
	inline   bool
	dotted   bool
}

func NewTable() *Table {
	return &Table{values: map[string]*Value{}}
}

func (t *Table) Len() int {
	return len(t.keys)
}

// Keys returns the table's keys in ascending name order. The slice is the
// table's own storage and must not be modified.
func (t *Table) Keys() []Key {
	return t.keys
}

func (t *Table) Contains(name string) bool {
	_, ok := t.values[name]
	return ok
}

func (t *Table) Get(name string) *Value {
	return t.values[name]
}

// Key returns the stored key for name, including the span of its defining
// occurrence.
func (t *Table) Key(name string) (Key, bool) {
	if i := t.search(name); i < len(t.keys) && t.keys[i].Name == name {
		return t.keys[i], true
	}
	return Key{}, false
}

// Insert adds an entry, keeping the keys sorted. It reports false and
// leaves the table unchanged when the key is already present.
func (t *Table) Insert(key Key, value *Value) bool {
	if _, ok := t.values[key.Name]; ok {
		return false
	}
	i := t.search(key.Name)
	t.keys = append(t.keys, Key{})
	copy(t.keys[i+1:], t.keys[i:])
	t.keys[i] = key
	t.values[key.Name] = value
	return true
}

// Remove deletes the entry stored under name and returns its value.
func (t *Table) Remove(name string) (*Value, bool) {
	v, ok := t.values[name]
	if !ok {
		return nil, false
	}
	delete(t.values, name)
	i := t.search(name)
	t.keys = append(t.keys[:i], t.keys[i+1:]...)
	return v, true
}

func (t *Table) search(name string) int {
	return sort.Search(len(t.keys), func(i int) bool { return t.keys[i].Name >= name })
}

// freeze marks the table and every table nested in it as inline, so no
// later header or dotted key can extend them.
func (t *Table) freeze() {
	t.inline = true
	for _, v := range t.values {
		freezeValue(v)
	}
}

func freezeValue(v *Value) {
	switch inner := v.inner.(type) {
	case *Table:
		inner.freeze()
	case *Array:
		for _, e := range *inner {
			freezeValue(e)
		}
	}
}
