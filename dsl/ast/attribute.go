package ast

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Attribute is one entry of a "#[...]" list, e.g. sqlite or
// test(with=[a, b]).
type Attribute struct {
	Pos  lexer.Position
	Name string          `@Ident`
	Args []*AttributeArg `( "(" ( @@ ( "," @@ )* ","? )? ")" )?`
}

// Arg returns the argument with the given key, or nil.
func (a *Attribute) Arg(key string) *AttributeArg {
	for _, arg := range a.Args {
		if arg.Key == key {
			return arg
		}
	}
	return nil
}

// AttributeArg is a key=[ident, ...] argument.
type AttributeArg struct {
	Pos    lexer.Position
	Key    string   `@Ident "="`
	Values []*Ident `"[" ( @@ ( "," @@ )* ","? )? "]"`
}

// Names returns the identifiers of the argument list.
func (a *AttributeArg) Names() []string {
	out := make([]string, len(a.Values))
	for i, v := range a.Values {
		out[i] = v.Name
	}
	return out
}

func (a *Attribute) String() string {
	if len(a.Args) == 0 {
		return a.Name
	}
	parts := make([]string, len(a.Args))
	for i, arg := range a.Args {
		parts[i] = arg.Key + "=[" + strings.Join(arg.Names(), ", ") + "]"
	}
	return a.Name + "(" + strings.Join(parts, ", ") + ")"
}
