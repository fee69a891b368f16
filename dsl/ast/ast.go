// Package ast defines the syntax tree of an fnsql compilation unit.
//
// The struct tags are participle grammar rules; the dsl package builds the
// parser from them.
package ast

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// File is one parsed compilation unit.
type File struct {
	Pos     lexer.Position
	Queries []*Query `@@*`
}

// Query is one query definition block:
//
//	#[sqlite, test(with=[create])] get_pet(name: str) -> [(i32, Vec<u8>)] { "SELECT ..." }
type Query struct {
	Pos        lexer.Position
	Attributes []*Attribute `( "#" "[" ( @@ ( "," @@ )* ","? )? "]" )*`
	Name       *Ident       `@@`
	Params     []*Param     `"(" ( @@ ( "," @@ )* ","? )? ")"`
	Returns    *Shape       `( "->" @@ )?`
	SQL        *SQLText     `"{" @@ "}"`
}

// GetName returns the query name.
func (q *Query) GetName() string {
	return q.Name.String()
}

// Param is a declared query parameter.
type Param struct {
	Pos  lexer.Position
	Name *Ident `@@ ":"`
	Type *Type  `@@`
}

// GetName returns the parameter name.
func (p *Param) GetName() string {
	return p.Name.String()
}

// Ident is a bare identifier.
type Ident struct {
	Pos  lexer.Position
	Name string `@Ident`
}

// String returns the identifier name.
func (i *Ident) String() string {
	if i == nil {
		return ""
	}
	return i.Name
}

// SQLText is the statement body of a query.
type SQLText struct {
	Pos   lexer.Position
	Value string `@( String | RawString )`
}
