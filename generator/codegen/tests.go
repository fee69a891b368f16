package codegen

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/satishbabariya/fnsql-go/compiler"
	"github.com/satishbabariya/fnsql-go/dialect"
	"github.com/satishbabariya/fnsql-go/internal/debug"
	"github.com/satishbabariya/fnsql-go/types"
)

type testFile struct {
	Header      string
	Source      string
	Package     string
	Backend     string
	Imports     importSet
	Setup       string
	Constructor string
	Seed        string
	Prepare     bool
	Steps       []step
	// Tests are the Go names of the tested queries, in test order.
	Tests []string
}

// step is one setup method: it runs the prerequisites of a query, then the
// query itself with synthesized parameters.
type step struct {
	Name          string
	GoName        string
	Prerequisites []string
	Params        []testParam
	Rows          bool
	ColumnTypes   string
	// DB is the expression the wrapper runs against.
	DB string
	// Assign is the token of the Execute assignment.
	Assign    string
	Call      string
	CheckArgs string
}

type testParam struct {
	Name     string
	Var      string
	Generate string
}

// EmitTests renders the generated tests of every backend that has at least
// one tested query. Nothing is emitted when the unit was compiled without
// tests.
func EmitTests(unit *compiler.Unit, opts Options) (map[string][]byte, error) {
	out := make(map[string][]byte)
	if !unit.Options.Tests {
		return out, nil
	}
	for _, b := range unit.Backends() {
		file, ok := newTestFile(unit, b, opts)
		if !ok {
			continue
		}
		name := TestPath(unit.Name, b)
		src, err := render("tests.go.tmpl", file)
		if err != nil {
			return nil, fmt.Errorf("generate %s: %w", name, err)
		}
		debug.Debug("Rendered tests", "file", name, "steps", len(file.Steps), "tests", len(file.Tests))
		out[name] = src
	}
	return out, nil
}

func newTestFile(unit *compiler.Unit, b dialect.Backend, opts Options) (testFile, bool) {
	setup := SetupType(unit.Name)
	file := testFile{
		Header:      Header(opts.Version),
		Source:      path.Base(unit.Filename),
		Package:     b.Info().Package,
		Backend:     b.String(),
		Setup:       setup,
		Constructor: "A" + setup[1:],
		Seed:        strconv.FormatInt(opts.Seed, 10),
		Prepare:     unit.Options.StatementCache,
	}

	var imports [][]string
	for _, d := range unit.TestOrderFor(b) {
		target := d.Targets[b]
		st := newStep(d, target, file.Prepare)
		file.Steps = append(file.Steps, st)
		for _, m := range target.Params {
			imports = append(imports, GoTypeImports(m.GoType))
		}
		for _, m := range target.Columns {
			imports = append(imports, GoTypeImports(m.GoType))
		}
		if d.Tested() {
			file.Tests = append(file.Tests, st.GoName)
		}
	}
	file.Imports = newImportSet(imports...)
	return file, unit.TestedOn(b)
}

// SetupType returns the name of the setup type in the test file of a unit.
func SetupType(unitName string) string {
	return "auto" + types.ToPascalCase(unitName) + "Setup"
}

func newStep(d *compiler.Definition, target *compiler.Target, prepare bool) step {
	st := step{
		Name:   d.Name,
		GoName: d.GoName,
		Rows:   d.Shape != nil,
		DB:     "s.conn",
		Assign: ":=",
	}
	if prepare {
		st.DB = "stmt"
		st.Assign = "="
	}
	for _, p := range d.Prerequisites {
		st.Prerequisites = append(st.Prerequisites, p.GoName)
	}

	var call strings.Builder
	for i, p := range d.Params {
		st.Params = append(st.Params, testParam{
			Name:     p.Name,
			Var:      p.GoName,
			Generate: generateExpr(p.Type, target.Params[i]),
		})
		fmt.Fprintf(&call, ", %s", p.GoName)
	}
	st.Call = call.String()
	if len(d.Params) > 0 {
		st.CheckArgs = ", params..."
	}

	cols := make([]string, len(target.Columns))
	for i, m := range target.Columns {
		cols[i] = m.GoType
	}
	st.ColumnTypes = strings.Join(cols, ", ")
	return st
}

// generateExpr returns the expression synthesizing a value of the parameter.
// Non-optional byte strings are never nil.
func generateExpr(d types.Descriptor, m types.Mapping) string {
	if d.Kind == types.Blob {
		return "sqlfn.GenerateBlob(s.gen)"
	}
	return "sqlfn.Generate[" + m.GoType + "](s.gen)"
}
