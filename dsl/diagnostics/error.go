package diagnostics

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a compile error.
type Kind int

const (
	// SyntaxError is malformed DSL text.
	SyntaxError Kind = iota + 1
	// DuplicateName is a query name declared twice in one unit.
	DuplicateName
	// UnknownAttribute is an attribute, backend tag or test argument outside
	// the recognized set.
	UnknownAttribute
	// UnknownDependency is a test prerequisite that does not resolve.
	UnknownDependency
	// CyclicDependency is a cycle in the test prerequisite graph.
	CyclicDependency
	// UnsupportedType is a type descriptor with no mapping for a backend.
	UnsupportedType
	// UnknownParameter is a ":name" token in SQL text that names no declared
	// parameter.
	UnknownParameter
)

var kindNames = map[Kind]string{
	SyntaxError:       "SyntaxError",
	DuplicateName:     "DuplicateName",
	UnknownAttribute:  "UnknownAttribute",
	UnknownDependency: "UnknownDependency",
	CyclicDependency:  "CyclicDependency",
	UnsupportedType:   "UnsupportedType",
	UnknownParameter:  "UnknownParameter",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a single compile error.
type Error struct {
	Kind    Kind
	Message string
	Span    Span
	// Subject is the identifier the error is about: the duplicated name,
	// the unknown dependency, the unsupported type, and so on.
	Subject string
}

func (e *Error) Error() string {
	if e.Span.IsZero() {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Span, e.Kind, e.Message)
}

// Is matches another *Error of the same kind, so errors.Is(err,
// &Error{Kind: CyclicDependency}) can test the class of a failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Subject == "" || t.Subject == e.Subject)
}

// Newf builds an Error.
func Newf(kind Kind, span Span, subject, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Span:    span,
		Subject: subject,
	}
}

// NewSyntaxError creates an error for malformed input.
func NewSyntaxError(message string, span Span) *Error {
	return Newf(SyntaxError, span, "", "%s", message)
}

// NewDuplicateNameError creates an error for a repeated query name.
func NewDuplicateNameError(name string, span, first Span) *Error {
	return Newf(DuplicateName, span, name, "query %q is already defined at %s", name, first)
}

// NewGoNameCollisionError creates an error for a query whose generated Go
// identifier ident is already generated for the query other.
func NewGoNameCollisionError(name, other, ident string, span, first Span) *Error {
	return Newf(DuplicateName, span, name, "query %q generates %s, as does query %q at %s", name, ident, other, first)
}

// NewUnknownAttributeError creates an error for an unrecognized attribute.
func NewUnknownAttributeError(name string, span Span, known []string) *Error {
	return Newf(UnknownAttribute, span, name, "unknown attribute %q (expected one of: %s)", name, strings.Join(known, ", "))
}

// NewUnknownDependencyError creates an error for a prerequisite that names no
// query of the unit.
func NewUnknownDependencyError(name, query string, span Span) *Error {
	return Newf(UnknownDependency, span, name, "query %q lists unknown test prerequisite %q", query, name)
}

// NewCyclicDependencyError creates an error naming one cycle, e.g. a -> b -> a.
func NewCyclicDependencyError(path []string, span Span) *Error {
	subject := ""
	if len(path) > 0 {
		subject = path[0]
	}
	return Newf(CyclicDependency, span, subject, "test prerequisites form a cycle: %s", strings.Join(path, " -> "))
}

// NewUnsupportedTypeError creates an error for a type the backend cannot map.
func NewUnsupportedTypeError(typeName, backend string, span Span) *Error {
	if backend == "" {
		return Newf(UnsupportedType, span, typeName, "unknown type %q", typeName)
	}
	return Newf(UnsupportedType, span, typeName, "type %q is not supported by backend %s", typeName, backend)
}

// NewUnknownParameterError creates an error for an undeclared ":name" token.
func NewUnknownParameterError(name, query string, span Span) *Error {
	return Newf(UnknownParameter, span, name, "query %q references undeclared parameter :%s", query, name)
}

// ErrorList is a non-empty list of compile errors, in source order.
type ErrorList []*Error

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d errors:", len(l))
	for _, e := range l {
		sb.WriteString("\n\t")
		sb.WriteString(e.Error())
	}
	return sb.String()
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (l ErrorList) Unwrap() []error {
	out := make([]error, len(l))
	for i, e := range l {
		out[i] = e
	}
	return out
}

// All returns every *Error contained in err, in order. It understands
// ErrorList, a bare *Error and wrapped variants of both.
func All(err error) []*Error {
	var list ErrorList
	if errors.As(err, &list) {
		return list
	}
	var one *Error
	if errors.As(err, &one) {
		return []*Error{one}
	}
	return nil
}
