package compiler

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/satishbabariya/fnsql-go/dialect"
	"github.com/satishbabariya/fnsql-go/dsl"
	"github.com/satishbabariya/fnsql-go/dsl/ast"
	"github.com/satishbabariya/fnsql-go/dsl/diagnostics"
	"github.com/satishbabariya/fnsql-go/internal/debug"
	"github.com/satishbabariya/fnsql-go/types"
)

// Compiler compiles units with a fixed type table.
type Compiler struct {
	mapper *types.Mapper
}

// New creates a compiler.
func New() *Compiler {
	return &Compiler{mapper: types.NewMapper()}
}

// Compile parses and compiles one unit.
func Compile(filename string, r io.Reader, opts Options) (*Unit, error) {
	return New().Compile(filename, r, opts)
}

// CompileString compiles a unit held in memory.
func CompileString(filename, src string, opts Options) (*Unit, error) {
	return New().Compile(filename, strings.NewReader(src), opts)
}

// Compile runs every phase over the unit read from r. Errors of one phase are
// reported together as a diagnostics.ErrorList and stop the compilation.
func (c *Compiler) Compile(filename string, r io.Reader, opts Options) (*Unit, error) {
	file, index, err := dsl.Parse(filename, r)
	if err != nil {
		return nil, err
	}
	debug.Debug("Parsed unit", "file", filename, "queries", len(file.Queries))

	unit := &Unit{
		Name:     UnitName(filename),
		Filename: filename,
		Options:  opts,
	}

	// Attributes and dependencies.
	diags := diagnostics.NewDiagnostics()
	byName := make(map[string]*Definition, len(file.Queries))
	for _, q := range file.Queries {
		d := newDefinition(q, resolveAttributes(q, opts.enabled(), diags))
		unit.Definitions = append(unit.Definitions, d)
		byName[d.Name] = d
	}
	resolveDependencies(unit.Definitions, index, byName, diags)
	checkGoNames(unit.Definitions, opts, diags)
	if err := diags.Err(); err != nil {
		return nil, err
	}

	// SQL parameters.
	for _, d := range unit.Definitions {
		checkParameters(d, diags)
	}
	if err := diags.Err(); err != nil {
		return nil, err
	}

	unit.Graph = BuildGraph(unit.Definitions)
	order, err := unit.Graph.Order()
	if err != nil {
		return nil, err
	}
	unit.TestOrder = order
	debug.Debug("Ordered tests", "file", filename, "nodes", names(order))

	// Types and bindings.
	for _, d := range unit.Definitions {
		c.bind(d, diags)
	}
	if err := diags.Err(); err != nil {
		return nil, err
	}

	debug.Debug("Compiled unit", "file", filename, "definitions", len(unit.Definitions), "backends", unit.Backends())
	return unit, nil
}

func newDefinition(q *ast.Query, attrs Attributes) *Definition {
	d := &Definition{
		Name:       q.GetName(),
		GoName:     types.ToPascalCase(q.GetName()),
		Attributes: attrs,
		SQL:        q.SQL.Value,
		Span:       diagnostics.SpanOf(q.Name.Pos, len(q.GetName())),
		Targets:    make(map[dialect.Backend]*Target),
		query:      q,
	}
	for _, p := range q.Params {
		d.Params = append(d.Params, Param{
			Name:   p.GetName(),
			GoName: types.ParamName(p.GetName()),
			Span:   diagnostics.SpanOf(p.Name.Pos, len(p.GetName())),
		})
	}
	if q.Returns != nil {
		d.Shape = &Shape{Many: q.Returns.Many != nil}
	}
	return d
}

// checkGoNames rejects definitions whose generated identifiers would be
// declared twice in a backend package.
func checkGoNames(defs []*Definition, opts Options, diags *diagnostics.Diagnostics) {
	owner := make(map[string]*Definition)
	for _, d := range defs {
		if d.GoName == "" {
			diags.Push(diagnostics.Newf(diagnostics.SyntaxError, d.Span, d.Name,
				"query name %q has no letters or digits to form a Go identifier", d.Name))
			continue
		}
		for _, id := range d.Identifiers(opts.StatementCache) {
			if first, ok := owner[id]; ok {
				diags.Push(diagnostics.NewGoNameCollisionError(d.Name, first.Name, id, d.Span, first.Span))
				break
			}
			owner[id] = d
		}
	}
}

// bind describes the types of d and builds one Target per effective backend.
func (c *Compiler) bind(d *Definition, diags *diagnostics.Diagnostics) {
	ok := true
	describe := func(t *ast.Type) types.Descriptor {
		desc, err := types.Describe(t)
		if err != nil {
			var ute *types.UnknownTypeError
			if errors.As(err, &ute) {
				diags.Push(diagnostics.NewUnsupportedTypeError(ute.Name, "", diagnostics.SpanOf(t.Pos, t.Len())))
			}
			ok = false
		}
		return desc
	}

	for i, p := range d.query.Params {
		d.Params[i].Type = describe(p.Type)
	}
	var colTypes []*ast.Type
	if d.Shape != nil {
		colTypes = d.query.Returns.Tuple().Columns
		d.Shape.Columns = make([]types.Descriptor, len(colTypes))
		for i, col := range colTypes {
			d.Shape.Columns[i] = describe(col)
		}
	}
	if !ok {
		return
	}

	paramNames := make([]string, len(d.Params))
	for i, p := range d.Params {
		paramNames[i] = p.Name
	}

	for _, b := range d.Attributes.Backends {
		target := &Target{Backend: b}
		supported := true
		mapOne := func(desc types.Descriptor, t *ast.Type) types.Mapping {
			m, err := c.mapper.Map(desc, b)
			if err != nil {
				diags.Push(diagnostics.NewUnsupportedTypeError(desc.String(), b.String(), diagnostics.SpanOf(t.Pos, t.Len())))
				supported = false
			}
			return m
		}
		for i, p := range d.Params {
			target.Params = append(target.Params, mapOne(p.Type, d.query.Params[i].Type))
		}
		if d.Shape != nil {
			for i, col := range d.Shape.Columns {
				target.Columns = append(target.Columns, mapOne(col, colTypes[i]))
			}
		}
		if !supported {
			continue
		}
		binding := dialect.Bind(b, d.SQL, paramNames, d.Attributes.Positional)
		target.SQL = binding.SQL
		target.Args = binding.Args
		d.Targets[b] = target
	}
}

// UnitName derives a Go-friendly file stem from a unit's filename.
func UnitName(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	name := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return unicode.ToLower(r)
		}
		return '_'
	}, base)
	if name == "" || name == "_" {
		return "queries"
	}
	return name
}

func names(defs []*Definition) []string {
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.Name
	}
	return out
}
