// Package dsl parses fnsql compilation units.
package dsl

import (
	"errors"
	"io"
	"strings"

	"github.com/alecthomas/participle/v2"

	"github.com/satishbabariya/fnsql-go/dsl/ast"
	"github.com/satishbabariya/fnsql-go/dsl/diagnostics"
)

// Index maps each query name of a unit to its first definition.
type Index map[string]*ast.Query

// Lookup returns the query with the given name.
func (i Index) Lookup(name string) (*ast.Query, bool) {
	q, ok := i[name]
	return q, ok
}

var parser = participle.MustBuild[ast.File](
	participle.Lexer(Lexer),
	participle.Elide("Whitespace", "Comment", "MultiLineComment"),
	participle.Unquote("String", "RawString"),
	participle.UseLookahead(4),
)

// Parse parses one compilation unit read from r.
//
// A malformed unit fails with a single SyntaxError. A well-formed unit that
// repeats a query name returns the file, the index of first definitions and an
// ErrorList of DuplicateName errors.
func Parse(filename string, r io.Reader) (*ast.File, Index, error) {
	file, err := parser.Parse(filename, r)
	if err != nil {
		return nil, nil, diagnostics.ErrorList{syntaxError(filename, err)}
	}

	diags := diagnostics.NewDiagnostics()
	index := make(Index, len(file.Queries))
	for _, q := range file.Queries {
		name := q.GetName()
		if first, ok := index[name]; ok {
			diags.Push(diagnostics.NewDuplicateNameError(
				name,
				diagnostics.SpanOf(q.Name.Pos, len(name)),
				diagnostics.SpanAt(first.Name.Pos),
			))
			continue
		}
		index[name] = q
	}
	return file, index, diags.Err()
}

// ParseString parses a unit held in memory.
func ParseString(filename, src string) (*ast.File, Index, error) {
	return Parse(filename, strings.NewReader(src))
}

func syntaxError(filename string, err error) *diagnostics.Error {
	var perr participle.Error
	if errors.As(err, &perr) {
		span := diagnostics.SpanOf(perr.Position(), 1)
		if span.Filename == "" {
			span.Filename = filename
		}
		return diagnostics.NewSyntaxError(perr.Message(), span)
	}
	return diagnostics.NewSyntaxError(err.Error(), diagnostics.Span{Filename: filename})
}
