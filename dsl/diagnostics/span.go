// Package diagnostics provides compile errors with source locations for
// fnsql compilation units.
package diagnostics

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
)

// Span represents a location in a compilation unit's text.
type Span struct {
	Filename string `json:"filename,omitempty"`
	Offset   int    `json:"offset"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	// Length is the number of bytes the span covers; zero points at a
	// single position.
	Length int `json:"length,omitempty"`
}

// SpanAt converts a participle lexer position into a Span.
func SpanAt(pos lexer.Position) Span {
	return Span{
		Filename: pos.Filename,
		Offset:   pos.Offset,
		Line:     pos.Line,
		Column:   pos.Column,
	}
}

// SpanOf is SpanAt with a length.
func SpanOf(pos lexer.Position, length int) Span {
	s := SpanAt(pos)
	s.Length = length
	return s
}

// IsZero reports whether the span carries no location.
func (s Span) IsZero() bool {
	return s.Line == 0 && s.Column == 0 && s.Offset == 0 && s.Filename == ""
}

// String returns "file:line:col".
func (s Span) String() string {
	name := s.Filename
	if name == "" {
		name = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d", name, s.Line, s.Column)
}
