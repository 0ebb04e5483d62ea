// Package tomlspan parses TOML 1.0 documents into a value tree where every
// value and key remembers the exact byte range it came from, and layers a
// deserialization facade on top that accumulates field errors instead of
// stopping at the first one.
//
// The parsing machinery itself lives in the tomlparser subpackage; this
// package re-exports the types most consumers need so that typical callers
// only import one path.
package tomlspan

import (
	"github.com/EmbarkStudios/toml-span/tomlparser"
)

type (
	Value = tomlparser.Value
	Span  = tomlparser.Span
	Error = tomlparser.Error
	Table = tomlparser.Table
)

// Parse parses a complete TOML document and returns the root table. On
// failure the error is a *tomlparser.Error carrying the span of the first
// problem.
func Parse(source string) (*Value, error) {
	return tomlparser.Parse(source)
}
