package compiler

import (
	"slices"
	"sort"

	"github.com/satishbabariya/fnsql-go/dialect"
	"github.com/satishbabariya/fnsql-go/dsl"
	"github.com/satishbabariya/fnsql-go/dsl/ast"
	"github.com/satishbabariya/fnsql-go/dsl/diagnostics"
)

const (
	attrTest       = "test"
	attrPositional = "positional"
	argWith        = "with"
)

// knownAttributes returns every recognized attribute name, sorted.
func knownAttributes() []string {
	names := append(dialect.Names(), attrTest, attrPositional)
	sort.Strings(names)
	return names
}

// resolveAttributes interprets the attribute list of q. Backend tags are
// intersected with the enabled backends; untagged blocks get all of them.
func resolveAttributes(q *ast.Query, enabled []dialect.Backend, diags *diagnostics.Diagnostics) Attributes {
	var (
		attrs  Attributes
		tagged = make(map[dialect.Backend]bool)
	)
	for _, a := range q.Attributes {
		span := diagnostics.SpanOf(a.Pos, len(a.Name))
		if b, ok := dialect.Parse(a.Name); ok && a.Name == b.String() {
			if len(a.Args) > 0 {
				diags.Push(diagnostics.Newf(diagnostics.UnknownAttribute, span, a.Name,
					"attribute %q takes no arguments", a.Name))
			}
			tagged[b] = true
			attrs.Tagged = true
			continue
		}

		switch a.Name {
		case attrTest:
			if attrs.Test == nil {
				attrs.Test = &TestDirective{Span: span}
			}
			for _, arg := range a.Args {
				if arg.Key != argWith {
					diags.Push(diagnostics.NewUnknownAttributeError(arg.Key,
						diagnostics.SpanOf(arg.Pos, len(arg.Key)), []string{argWith}))
					continue
				}
				for _, v := range arg.Values {
					if !slices.Contains(attrs.Test.With, v.Name) {
						attrs.Test.With = append(attrs.Test.With, v.Name)
					}
				}
			}
		case attrPositional:
			if len(a.Args) > 0 {
				diags.Push(diagnostics.Newf(diagnostics.UnknownAttribute, span, a.Name,
					"attribute %q takes no arguments", a.Name))
			}
			attrs.Positional = true
		default:
			diags.Push(diagnostics.NewUnknownAttributeError(a.Name, span, knownAttributes()))
		}
	}

	for _, b := range enabled {
		if !attrs.Tagged || tagged[b] {
			attrs.Backends = append(attrs.Backends, b)
		}
	}
	return attrs
}

// resolveDependencies links each test prerequisite to its definition. A
// prerequisite must exist in the unit and be generated on every backend its
// dependent is.
func resolveDependencies(defs []*Definition, index dsl.Index, byName map[string]*Definition, diags *diagnostics.Diagnostics) {
	for _, d := range defs {
		if d.Attributes.Test == nil {
			continue
		}
		for _, name := range d.Attributes.Test.With {
			span := withSpan(d.query, name, d.Attributes.Test.Span)
			if _, ok := index.Lookup(name); !ok {
				diags.Push(diagnostics.NewUnknownDependencyError(name, d.Name, span))
				continue
			}
			pre := byName[name]
			for _, b := range d.Attributes.Backends {
				if !slices.Contains(pre.Attributes.Backends, b) {
					diags.Push(diagnostics.Newf(diagnostics.UnknownDependency, span, name,
						"query %q lists test prerequisite %q which is not generated for backend %s", d.Name, name, b))
					break
				}
			}
			d.Prerequisites = append(d.Prerequisites, pre)
		}
	}
}

// withSpan locates name inside the with=[...] list of q.
func withSpan(q *ast.Query, name string, fallback diagnostics.Span) diagnostics.Span {
	for _, a := range q.Attributes {
		for _, arg := range a.Args {
			for _, v := range arg.Values {
				if v.Name == name {
					return diagnostics.SpanOf(v.Pos, len(name))
				}
			}
		}
	}
	return fallback
}

// checkParameters verifies that each ":name" token of the SQL text names a
// declared parameter and that parameter names are unique.
func checkParameters(d *Definition, diags *diagnostics.Diagnostics) {
	declared := make(map[string]bool, len(d.Params))
	goNames := make(map[string]bool, len(d.Params))
	for _, p := range d.Params {
		if declared[p.Name] || goNames[p.GoName] {
			diags.Push(diagnostics.Newf(diagnostics.DuplicateName, p.Span, p.Name,
				"query %q declares parameter %q more than once", d.Name, p.Name))
			continue
		}
		declared[p.Name] = true
		goNames[p.GoName] = true
	}
	if d.Attributes.Positional {
		return
	}
	backends := d.Attributes.Backends
	if len(backends) == 0 {
		backends = dialect.All
	}
	reported := make(map[string]bool)
	for _, b := range backends {
		for _, tok := range dialect.ScanNamed(b, d.SQL) {
			if declared[tok.Name] || reported[tok.Name] {
				continue
			}
			reported[tok.Name] = true
			diags.Push(diagnostics.NewUnknownParameterError(tok.Name, d.Name,
				diagnostics.SpanOf(d.query.SQL.Pos, len(d.SQL)+2)))
		}
	}
}
