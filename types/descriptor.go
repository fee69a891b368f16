// Package types maps fnsql type descriptors to Go types for each backend.
package types

import (
	"fmt"

	"github.com/satishbabariya/fnsql-go/dsl/ast"
)

// Kind is the closed set of descriptor kinds.
type Kind int

const (
	Bool Kind = iota + 1
	I8
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	F64
	String
	Time
	Blob
	// Option wraps Elem and admits NULL.
	Option
)

var kindNames = map[Kind]string{
	Bool:   "bool",
	I8:     "i8",
	I16:    "i16",
	I32:    "i32",
	I64:    "i64",
	U8:     "u8",
	U16:    "u16",
	U32:    "u32",
	U64:    "u64",
	F32:    "f32",
	F64:    "f64",
	String: "String",
	Time:   "Time",
	Blob:   "Blob",
	Option: "Option",
}

// scalarNames maps every accepted spelling of a scalar type to its kind.
var scalarNames = map[string]Kind{
	"bool":   Bool,
	"i8":     I8,
	"i16":    I16,
	"i32":    I32,
	"i64":    I64,
	"u8":     U8,
	"u16":    U16,
	"u32":    U32,
	"u64":    U64,
	"f32":    F32,
	"f64":    F64,
	"String": String,
	"str":    String,
	"Time":   Time,
	"Blob":   Blob,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Descriptor is a resolved type: a scalar kind, or Option of a scalar.
type Descriptor struct {
	Kind Kind
	Elem *Descriptor
}

// Of returns the descriptor of a scalar kind.
func Of(k Kind) Descriptor { return Descriptor{Kind: k} }

// OptionOf returns Option<d>.
func OptionOf(d Descriptor) Descriptor { return Descriptor{Kind: Option, Elem: &d} }

// IsOption reports whether d admits NULL.
func (d Descriptor) IsOption() bool { return d.Kind == Option }

// Scalar returns the innermost scalar kind.
func (d Descriptor) Scalar() Kind {
	if d.Kind == Option && d.Elem != nil {
		return d.Elem.Scalar()
	}
	return d.Kind
}

func (d Descriptor) String() string {
	if d.Kind == Option && d.Elem != nil {
		return "Option<" + d.Elem.String() + ">"
	}
	return d.Kind.String()
}

// Describe resolves a source type expression. Unknown names, nested options
// and sequences of anything other than u8 cannot be described; the returned
// error names the offending expression.
func Describe(t *ast.Type) (Descriptor, error) {
	switch {
	case t.Option != nil:
		inner, err := Describe(t.Option)
		if err != nil {
			return Descriptor{}, err
		}
		if inner.IsOption() {
			return Descriptor{}, &UnknownTypeError{Name: t.String()}
		}
		return OptionOf(inner), nil
	case t.Vec != nil, t.Slice != nil:
		elem := t.Vec
		if elem == nil {
			elem = t.Slice
		}
		if elem.Name != "u8" {
			return Descriptor{}, &UnknownTypeError{Name: t.String()}
		}
		return Of(Blob), nil
	}
	k, ok := scalarNames[t.Name]
	if !ok {
		return Descriptor{}, &UnknownTypeError{Name: t.Name}
	}
	return Of(k), nil
}

// UnknownTypeError reports a type expression outside the descriptor grammar.
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type %q", e.Name)
}
