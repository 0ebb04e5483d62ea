package tomlparser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrorKind discriminates everything that can go wrong while parsing a
// document or deserializing it into user types.
type ErrorKind int

const (
	// UnexpectedEof means the source ended while a value was still expected.
	UnexpectedEof ErrorKind = iota + 1
	// InvalidCharInString is a character that no string flavor admits.
	InvalidCharInString
	// InvalidEscape is an unknown character after a backslash.
	InvalidEscape
	// InvalidHexEscape is a non-hex character inside \u or \U.
	InvalidHexEscape
	// InvalidEscapeValue is a hex escape outside the Unicode scalar range.
	InvalidEscapeValue
	// Unexpected is a character that cannot start any token.
	Unexpected
	// UnterminatedString reached EOF before the closing delimiter.
	UnterminatedString
	// NewlineInString is a line ending inside a single-line string.
	NewlineInString
	// NewlineInTableKey is a line ending inside a [table] key.
	NewlineInTableKey
	// MultilineStringKey is a triple-quoted string used as a key.
	MultilineStringKey
	// InvalidNumber is a numeric literal that fails TOML's rules or does
	// not fit a signed 64-bit integer.
	InvalidNumber
	// Wanted is a token mismatch; Expected and Found describe it.
	Wanted
	// DuplicateTable is a second [table] header for an already-defined
	// table; First points at the first definition.
	DuplicateTable
	// DuplicateKey is a repeated key in a table; First points at the first
	// occurrence.
	DuplicateKey
	// RedefineAsArray is a [[header]] colliding with an existing value
	// that is not an array of tables, or any header reaching an array that
	// was not built by [[header]]s.
	RedefineAsArray
	// DottedKeyInvalidType is a dotted path traversing a non-table.
	DottedKeyInvalidType
	// UnexpectedKeys lists keys left over after deserializing a table with
	// a fixed field set.
	UnexpectedKeys
	// UnquotedString is a bare word where a value was expected.
	UnquotedString
	// MissingField is a required field absent from a table.
	MissingField
	// Deprecated is a field that has been renamed; Key holds the old name
	// and Expected the replacement.
	Deprecated
	// UnexpectedValue is a value outside the set a field admits.
	UnexpectedValue
	// Custom carries a free-form message from a user deserializer.
	Custom
)

// String returns the stable diagnostic code for the kind.
func (k ErrorKind) String() string {
	return errorCodes[k]
}

var errorCodes = map[ErrorKind]string{
	UnexpectedEof:        "unexpected-eof",
	InvalidCharInString:  "invalid-char-in-string",
	InvalidEscape:        "invalid-escape",
	InvalidHexEscape:     "invalid-hex-escape",
	InvalidEscapeValue:   "invalid-escape-value",
	Unexpected:           "unexpected",
	UnterminatedString:   "unterminated-string",
	NewlineInString:      "newline-in-string",
	NewlineInTableKey:    "newline-in-table-key",
	MultilineStringKey:   "multiline-string-key",
	InvalidNumber:        "invalid-number",
	Wanted:               "wanted",
	DuplicateTable:       "duplicate-table",
	DuplicateKey:         "duplicate-key",
	RedefineAsArray:      "redefine-as-array",
	DottedKeyInvalidType: "dotted-key-invalid-type",
	UnexpectedKeys:       "unexpected-keys",
	UnquotedString:       "unquoted-string",
	MissingField:         "missing-field",
	Deprecated:           "deprecated",
	UnexpectedValue:      "unexpected-value",
	Custom:               "custom",
}

// ExtraKey names one leftover key for UnexpectedKeys.
type ExtraKey struct {
	Name string
	Span Span
}

// Error is a single structured parse or deserialization failure. Kind
// selects which of the auxiliary fields are meaningful; Span always covers
// the offending source bytes (it is the zero Span when no position
// applies, e.g. MissingField).
//
// Messages never embed line or column numbers; converting the span is the
// renderer's job, via LineCol.
type Error struct {
	Kind ErrorKind
	Span Span

	// Char is the offending character for the character-level kinds.
	Char rune
	// Code is the rejected code point for InvalidEscapeValue.
	Code uint32
	// Expected and Found describe a Wanted mismatch. Expected doubles as
	// the replacement name for Deprecated.
	Expected string
	Found    string
	// Key names the table, key or field involved, or holds the message
	// for Custom.
	Key string
	// First is the span of the first definition for the duplicate kinds.
	First Span
	// Keys lists the offenders for UnexpectedKeys.
	Keys []ExtraKey
	// Allowed lists the admitted values for UnexpectedValue.
	Allowed []string
}

func (e *Error) Error() string {
	switch e.Kind {
	case UnexpectedEof:
		return "unexpected eof encountered"
	case InvalidCharInString:
		return fmt.Sprintf("invalid character in string: `%s`", escapeChar(e.Char))
	case InvalidEscape:
		return fmt.Sprintf("invalid escape character in string: `%s`", escapeChar(e.Char))
	case InvalidHexEscape:
		return fmt.Sprintf("invalid hex escape character in string: `%s`", escapeChar(e.Char))
	case InvalidEscapeValue:
		return fmt.Sprintf("invalid escape value: `%d`", e.Code)
	case Unexpected:
		return fmt.Sprintf("unexpected character found: `%s`", escapeChar(e.Char))
	case UnterminatedString:
		return "unterminated string"
	case NewlineInString:
		return "newline in string found"
	case NewlineInTableKey:
		return "found newline in table key"
	case MultilineStringKey:
		return "multiline strings are not allowed for key"
	case InvalidNumber:
		return "invalid number"
	case Wanted:
		return fmt.Sprintf("expected %s, found %s", e.Expected, e.Found)
	case DuplicateTable:
		return fmt.Sprintf("redefinition of table `%s`", e.Key)
	case DuplicateKey:
		return fmt.Sprintf("duplicate key: `%s`", e.Key)
	case RedefineAsArray:
		return "table redefined as array"
	case DottedKeyInvalidType:
		return "dotted key attempted to extend non-table type"
	case UnexpectedKeys:
		names := make([]string, 0, len(e.Keys))
		for _, k := range e.Keys {
			names = append(names, k.Name)
		}
		return fmt.Sprintf("unexpected keys in table: `%s`", strings.Join(names, ", "))
	case UnquotedString:
		return "invalid TOML value, did you mean to use a quoted string?"
	case MissingField:
		return fmt.Sprintf("missing field '%s' in table", e.Key)
	case Deprecated:
		return fmt.Sprintf("field '%s' is deprecated, '%s' has replaced it", e.Key, e.Expected)
	case UnexpectedValue:
		return fmt.Sprintf("expected '%s'", strings.Join(e.Allowed, "' or '"))
	case Custom:
		return e.Key
	}
	return "unknown error"
}

// LineCol converts the error span's start into a 1-based line and column
// within source.
func (e *Error) LineCol(source string) (line, col int) {
	return LineCol(source, e.Span.Start)
}

func escapeChar(r rune) string {
	if unicode.IsSpace(r) || unicode.IsControl(r) {
		q := strconv.QuoteRune(r)
		return q[1 : len(q)-1]
	}
	return string(r)
}

// Label points a diagnostic at a span of the source. The primary label
// marks the error itself; secondary labels add context, such as the first
// definition a duplicate collides with.
type Label struct {
	Primary bool
	Span    Span
	Message string
}

// Diagnostic is a renderer-neutral projection of an Error. Consumers
// decide severity, layout and color; the diagnostic only fixes the code,
// the message and where the labels point.
type Diagnostic struct {
	Code    string
	Message string
	Labels  []Label
}

// ToDiagnostic projects the error into a diagnostic record. Most kinds get
// one primary label at the error span; the duplicate kinds add a secondary
// label at the first definition. UnexpectedKeys gets one secondary label
// per key and no primary label, and MissingField gets no label at all.
func (e *Error) ToDiagnostic() Diagnostic {
	d := Diagnostic{Code: e.Kind.String(), Message: e.Error()}
	switch e.Kind {
	case DuplicateKey:
		d.Labels = []Label{
			{Span: e.First, Message: "first key instance"},
			{Primary: true, Span: e.Span, Message: "duplicate key"},
		}
	case DuplicateTable:
		d.Labels = []Label{
			{Span: e.First, Message: "first table instance"},
			{Primary: true, Span: e.Span, Message: "duplicate table"},
		}
	case UnexpectedKeys:
		d.Message = fmt.Sprintf("found %d unexpected keys", len(e.Keys))
		for _, k := range e.Keys {
			d.Labels = append(d.Labels, Label{Span: k.Span, Message: k.Name})
		}
	case MissingField:
		d.Message = fmt.Sprintf("missing field '%s'", e.Key)
	case Unexpected:
		d.Labels = []Label{{Primary: true, Span: e.Span,
			Message: fmt.Sprintf("unexpected character '%s'", escapeChar(e.Char))}}
	case InvalidCharInString:
		d.Labels = []Label{{Primary: true, Span: e.Span,
			Message: fmt.Sprintf("invalid character '%s' in string", escapeChar(e.Char))}}
	case InvalidEscape:
		d.Labels = []Label{{Primary: true, Span: e.Span,
			Message: fmt.Sprintf("invalid escape character '%s' in string", escapeChar(e.Char))}}
	case InvalidHexEscape:
		d.Labels = []Label{{Primary: true, Span: e.Span,
			Message: fmt.Sprintf("invalid hex escape '%s'", escapeChar(e.Char))}}
	case InvalidEscapeValue:
		d.Labels = []Label{{Primary: true, Span: e.Span, Message: "invalid escape value"}}
	case InvalidNumber:
		d.Labels = []Label{{Primary: true, Span: e.Span, Message: "unable to parse number"}}
	case Wanted:
		d.Labels = []Label{{Primary: true, Span: e.Span,
			Message: fmt.Sprintf("expected %s", e.Expected)}}
	case MultilineStringKey:
		d.Labels = []Label{{Primary: true, Span: e.Span, Message: "multiline keys are not allowed"}}
	case UnterminatedString:
		d.Labels = []Label{{Primary: true, Span: e.Span, Message: "eof reached before string terminator"}}
	case UnquotedString:
		d.Labels = []Label{{Primary: true, Span: e.Span, Message: "string is not quoted"}}
	case Deprecated:
		d.Labels = []Label{{Primary: true, Span: e.Span, Message: "deprecated field"}}
	case UnexpectedValue:
		d.Labels = []Label{{Primary: true, Span: e.Span, Message: "unexpected value"}}
	default:
		d.Labels = []Label{{Primary: true, Span: e.Span, Message: e.Error()}}
	}
	return d
}
