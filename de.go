package tomlspan

import (
	"errors"
	"strings"

	"github.com/EmbarkStudios/toml-span/tomlparser"
)

// Deserializer is implemented by types that can populate themselves from a
// parsed TOML value. Implementations typically open the value with
// NewTableHelper, pull their fields, and return the helper's Finalize
// result so that every bad field is reported in one go.
type Deserializer interface {
	DeserializeTOML(value *Value) error
}

// DeserError aggregates the field-level errors collected while
// deserializing a document.
type DeserError struct {
	Errors []Error
}

func (e *DeserError) Error() string {
	var msg strings.Builder
	for _, err := range e.Errors {
		msg.WriteString(err.Error())
		msg.WriteString("\n")
	}
	return msg.String()
}

// Merge appends the errors of other.
func (e *DeserError) Merge(other *DeserError) {
	e.Errors = append(e.Errors, other.Errors...)
}

// asDeserError lifts any error into a *DeserError.
func asDeserError(err error) *DeserError {
	if err == nil {
		return nil
	}
	var de *DeserError
	if errors.As(err, &de) {
		return de
	}
	var pe *tomlparser.Error
	if errors.As(err, &pe) {
		return &DeserError{Errors: []Error{*pe}}
	}
	return &DeserError{Errors: []Error{{Kind: tomlparser.Custom, Key: err.Error()}}}
}

// Deserialize parses source and fills target from the resulting tree. The
// returned error is always a *DeserError: a single parse error for broken
// documents, or everything target's deserializer collected.
func Deserialize(source string, target Deserializer) error {
	value, err := Parse(source)
	if err != nil {
		return asDeserError(err)
	}
	if err := target.DeserializeTOML(value); err != nil {
		return asDeserError(err)
	}
	return nil
}
