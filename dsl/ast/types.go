package ast

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Type is a type expression as written in the source. Exactly one of the
// fields is set.
type Type struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Option *Type  `  "Option" "<" @@ ">"`
	Vec    *Type  `| "Vec" "<" @@ ">"`
	Slice  *Type  `| "[" @@ "]"`
	Name   string `| @Ident`
}

// Len is the number of source bytes the type expression covers.
func (t *Type) Len() int {
	if n := t.EndPos.Offset - t.Pos.Offset; n > 0 {
		return n
	}
	return len(t.Name)
}

// String renders the type in source syntax.
func (t *Type) String() string {
	switch {
	case t == nil:
		return ""
	case t.Option != nil:
		return "Option<" + t.Option.String() + ">"
	case t.Vec != nil:
		return "Vec<" + t.Vec.String() + ">"
	case t.Slice != nil:
		return "[" + t.Slice.String() + "]"
	default:
		return t.Name
	}
}

// Shape is the row shape after "->": "[(...)]" for zero or more rows, or a
// bare tuple "(...)" for a single row.
type Shape struct {
	Pos  lexer.Position
	Many *Tuple `  "[" @@ "]"`
	One  *Tuple `| @@`
}

// Tuple returns the column tuple regardless of cardinality.
func (s *Shape) Tuple() *Tuple {
	if s.Many != nil {
		return s.Many
	}
	return s.One
}

// Tuple is an ordered list of column types.
type Tuple struct {
	Pos     lexer.Position
	Columns []*Type `"(" ( @@ ( "," @@ )* ","? )? ")"`
}

func (t *Tuple) String() string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = c.String()
	}
	return "(" + strings.Join(cols, ", ") + ")"
}
