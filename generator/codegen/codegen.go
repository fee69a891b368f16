// Package codegen renders compiled fnsql units as Go source: typed wrappers
// per backend package, and the generated tests that exercise them.
package codegen

import (
	"bytes"
	"embed"
	"fmt"
	"go/format"
	"path"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/satishbabariya/fnsql-go/compiler"
	"github.com/satishbabariya/fnsql-go/dialect"
	"github.com/satishbabariya/fnsql-go/internal/debug"
)

//go:embed templates/*.go.tmpl
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.go.tmpl"))

// Options control rendering.
type Options struct {
	// Version is stamped into the generated header.
	Version string
	// Seed seeds the value generator of generated tests.
	Seed int64
}

// Header returns the first line of every generated file.
func Header(version string) string {
	return fmt.Sprintf("// Code generated by fnsql v%s. DO NOT EDIT.", strings.TrimPrefix(version, "v"))
}

// WrapperPath returns the output path of the wrappers of unit on b,
// relative to the output directory.
func WrapperPath(unit string, b dialect.Backend) string {
	return path.Join(b.Info().Package, unit+"_fnsql.go")
}

// TestPath returns the output path of the generated tests of unit on b.
func TestPath(unit string, b dialect.Backend) string {
	return path.Join(b.Info().Package, unit+"_fnsql_test.go")
}

// importSet is the extra imports of a generated file, split into the
// standard library group and the third-party group.
type importSet struct {
	Std   []string
	Third []string
}

func newImportSet(lists ...[]string) importSet {
	var set importSet
	for _, imp := range merge(lists...) {
		if strings.Contains(strings.SplitN(imp, "/", 2)[0], ".") {
			set.Third = append(set.Third, imp)
		} else {
			set.Std = append(set.Std, imp)
		}
	}
	return set
}

type wrapperFile struct {
	Header  string
	Source  string
	Package string
	Imports importSet
	Queries []wrapper
}

type wrapper struct {
	Name    string
	GoName  string
	Var     string
	Backend string
	SQL     string
	// Params is the declared parameter list, with a leading comma.
	Params string
	// Args are the bind expressions in bind order, with a leading comma.
	Args string
	// Call passes the declared parameters through, with a leading comma.
	Call    string
	Rows    bool
	Columns []column
	FnType  string
	Scans   string
	Loads   string
	Prepare bool
}

type column struct {
	Var  string
	Scan string
}

// EmitWrappers renders the wrapper file of every backend the unit targets.
// Keys are output paths relative to the output directory.
func EmitWrappers(unit *compiler.Unit, opts Options) (map[string][]byte, error) {
	out := make(map[string][]byte)
	for _, b := range unit.Backends() {
		file := wrapperFile{
			Header:  Header(opts.Version),
			Source:  path.Base(unit.Filename),
			Package: b.Info().Package,
		}
		var imports [][]string
		for _, d := range unit.For(b) {
			target := d.Targets[b]
			file.Queries = append(file.Queries, newWrapper(d, target, unit.Options.StatementCache))
			imports = append(imports, target.Imports())
		}
		file.Imports = newImportSet(imports...)

		name := WrapperPath(unit.Name, b)
		src, err := render("wrappers.go.tmpl", file)
		if err != nil {
			return nil, fmt.Errorf("generate %s: %w", name, err)
		}
		debug.Debug("Rendered wrappers", "file", name, "queries", len(file.Queries))
		out[name] = src
	}
	return out, nil
}

func newWrapper(d *compiler.Definition, target *compiler.Target, prepare bool) wrapper {
	w := wrapper{
		Name:    d.Name,
		GoName:  d.GoName,
		Var:     "query" + d.GoName,
		Backend: target.Backend.String(),
		SQL:     target.SQL,
		Prepare: prepare,
	}

	var params, call strings.Builder
	for i, p := range d.Params {
		fmt.Fprintf(&params, ", %s %s", p.GoName, target.Params[i].GoType)
		fmt.Fprintf(&call, ", %s", p.GoName)
	}
	w.Params = params.String()
	w.Call = call.String()

	var args strings.Builder
	for _, i := range target.Args {
		fmt.Fprintf(&args, ", %s", target.Params[i].Bind(d.Params[i].GoName))
	}
	w.Args = args.String()

	if d.Shape == nil {
		return w
	}
	w.Rows = true
	fnParams := make([]string, len(target.Columns))
	scans := make([]string, len(target.Columns))
	loads := make([]string, len(target.Columns))
	for i, m := range target.Columns {
		v := "c" + strconv.Itoa(i)
		w.Columns = append(w.Columns, column{Var: v, Scan: m.Scan})
		fnParams[i] = v + " " + m.GoType
		scans[i] = "&" + v
		loads[i] = m.Load(v)
	}
	w.FnType = "func(" + strings.Join(fnParams, ", ") + ") (T, error)"
	w.Scans = strings.Join(scans, ", ")
	w.Loads = strings.Join(loads, ", ")
	return w
}

// render executes a template and formats the result with gofmt.
func render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format: %w", err)
	}
	return src, nil
}

// GoTypeImports returns the imports needed for a Go type.
func GoTypeImports(goType string) []string {
	var imports []string
	if strings.Contains(goType, "time.Time") {
		imports = append(imports, "time")
	}
	return imports
}

func merge(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range lists {
		for _, s := range l {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	sort.Strings(out)
	return out
}
