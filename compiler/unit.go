// Package compiler turns a parsed fnsql unit into resolved query definitions,
// a test order and per-backend bindings ready for code generation.
package compiler

import (
	"github.com/satishbabariya/fnsql-go/dialect"
	"github.com/satishbabariya/fnsql-go/dsl/ast"
	"github.com/satishbabariya/fnsql-go/dsl/diagnostics"
	"github.com/satishbabariya/fnsql-go/types"
)

// Options control a compilation.
type Options struct {
	// Backends lists the enabled backends. Empty means every backend.
	Backends []dialect.Backend
	// StatementCache enables Prepare wrappers.
	StatementCache bool
	// Tests enables test generation.
	Tests bool
}

func (o Options) enabled() []dialect.Backend {
	if len(o.Backends) == 0 {
		return dialect.All
	}
	return o.Backends
}

// Unit is a compiled compilation unit.
type Unit struct {
	// Name is the file stem, used to name generated files.
	Name     string
	Filename string
	Options  Options
	// Definitions are in declaration order.
	Definitions []*Definition
	// TestOrder lists every graph node, prerequisites before dependents.
	TestOrder []*Definition
	Graph     *Graph
}

// Lookup returns the definition with the given name.
func (u *Unit) Lookup(name string) (*Definition, bool) {
	for _, d := range u.Definitions {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// Backends returns the enabled backends that at least one definition targets.
func (u *Unit) Backends() []dialect.Backend {
	var out []dialect.Backend
	for _, b := range u.Options.enabled() {
		for _, d := range u.Definitions {
			if d.Enabled(b) {
				out = append(out, b)
				break
			}
		}
	}
	return out
}

// For returns the definitions targeting b, in declaration order.
func (u *Unit) For(b dialect.Backend) []*Definition {
	var out []*Definition
	for _, d := range u.Definitions {
		if d.Enabled(b) {
			out = append(out, d)
		}
	}
	return out
}

// TestOrderFor returns the graph nodes targeting b, in test order.
func (u *Unit) TestOrderFor(b dialect.Backend) []*Definition {
	var out []*Definition
	for _, d := range u.TestOrder {
		if d.Enabled(b) {
			out = append(out, d)
		}
	}
	return out
}

// TestedOn reports whether a test file is generated for b: tests are enabled
// and b has a test-annotated definition.
func (u *Unit) TestedOn(b dialect.Backend) bool {
	if !u.Options.Tests {
		return false
	}
	for _, d := range u.TestOrderFor(b) {
		if d.Tested() {
			return true
		}
	}
	return false
}

// Definition is one resolved query definition.
type Definition struct {
	Name string
	// GoName is the exported identifier stem of the generated wrappers.
	GoName     string
	Attributes Attributes
	Params     []Param
	// Shape is nil for queries returning no rows.
	Shape *Shape
	SQL   string
	Span  diagnostics.Span

	// Prerequisites are the resolved test prerequisites, in listed order.
	Prerequisites []*Definition
	// Targets holds the bindings per effective backend.
	Targets map[dialect.Backend]*Target

	query *ast.Query
}

// Enabled reports whether wrappers for d are generated on b.
func (d *Definition) Enabled(b dialect.Backend) bool {
	_, ok := d.Targets[b]
	return ok
}

// Tested reports whether d carries a test directive.
func (d *Definition) Tested() bool { return d.Attributes.Test != nil }

// Wrappers returns the names of the exported functions generated for d.
func (d *Definition) Wrappers(statementCache bool) []string {
	names := []string{"Execute" + d.GoName}
	if d.Shape != nil {
		names = append(names, "Query"+d.GoName, "QueryRow"+d.GoName)
	}
	if statementCache {
		names = append(names, "Prepare"+d.GoName)
	}
	return names
}

// Identifiers returns every package-level identifier generated for d.
func (d *Definition) Identifiers(statementCache bool) []string {
	return append([]string{"query" + d.GoName}, d.Wrappers(statementCache)...)
}

// Param is a declared parameter.
type Param struct {
	Name string
	// GoName is the identifier used in generated signatures.
	GoName string
	Type   types.Descriptor
	Span   diagnostics.Span
}

// Shape is a declared row shape.
type Shape struct {
	Columns []types.Descriptor
	// Many is set for "[(...)]", zero or more rows; unset for "(...)", one row.
	Many bool
}

// Attributes is the resolved attribute list of a definition.
type Attributes struct {
	// Backends are the effective backends, in canonical order.
	Backends []dialect.Backend
	// Tagged is set when the block named backends explicitly.
	Tagged bool
	Test   *TestDirective
	// Positional disables ":name" rewriting.
	Positional bool
}

// TestDirective is a resolved test attribute.
type TestDirective struct {
	With []string
	Span diagnostics.Span
}

// Target is a definition prepared for one backend.
type Target struct {
	Backend dialect.Backend
	// SQL is the statement in native placeholder syntax.
	SQL string
	// Args are indices into Params, in bind order.
	Args    []int
	Params  []types.Mapping
	Columns []types.Mapping
}

// Imports returns the packages the Go types of t refer to.
func (t *Target) Imports() []string {
	return types.Imports(t.Params, t.Columns)
}
