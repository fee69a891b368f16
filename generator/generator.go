// Package generator compiles fnsql units and writes the generated Go code.
package generator

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/satishbabariya/fnsql-go/compiler"
	"github.com/satishbabariya/fnsql-go/dialect"
	"github.com/satishbabariya/fnsql-go/dsl/diagnostics"
	"github.com/satishbabariya/fnsql-go/generator/codegen"
	"github.com/satishbabariya/fnsql-go/internal/debug"
)

// Config controls a generation run.
type Config struct {
	// Inputs are unit paths or glob patterns.
	Inputs []string
	// Output is the directory the backend packages are written below.
	Output   string
	Compiler compiler.Options
	Seed     int64
	// Force overwrites files fnsql did not generate.
	Force   bool
	Version string
}

// UnitError is the failure of one unit, with the source it was compiled
// from so diagnostics can be rendered with excerpts.
type UnitError struct {
	Filename string
	Source   string
	Err      error
}

func (e *UnitError) Error() string { return e.Err.Error() }

func (e *UnitError) Unwrap() error { return e.Err }

// Pretty renders the diagnostics of the unit.
func (e *UnitError) Pretty() string { return diagnostics.Pretty(e.Err, e.Source) }

// Errors collects the failures of several units.
type Errors []*UnitError

func (es Errors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

func (es Errors) Unwrap() []error {
	out := make([]error, len(es))
	for i, e := range es {
		out[i] = e
	}
	return out
}

// Result describes a completed run.
type Result struct {
	Units []*compiler.Unit
	// Files are the written paths relative to the output directory, sorted.
	Files []string
}

// Generator runs the pipeline over a filesystem.
type Generator struct {
	fs       afero.Fs
	cfg      Config
	compiler *compiler.Compiler
}

// New creates a generator reading and writing through fs.
func New(fs afero.Fs, cfg Config) *Generator {
	debug.Debug("Creating new generator", "inputs", cfg.Inputs, "output", cfg.Output)
	return &Generator{fs: fs, cfg: cfg, compiler: compiler.New()}
}

// Inputs expands the configured inputs into unit paths, sorted and distinct.
func (g *Generator) Inputs() ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range g.cfg.Inputs {
		matches, err := afero.Glob(g.fs, pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid input pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no units match %q", pattern)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil, fmt.Errorf("no input units configured")
	}
	return out, nil
}

// Compile compiles every input unit. Units failing to compile are reported
// together as Errors.
func (g *Generator) Compile() ([]*compiler.Unit, error) {
	paths, err := g.Inputs()
	if err != nil {
		return nil, err
	}

	var (
		units []*compiler.Unit
		errs  Errors
	)
	sources := make(map[string]string, len(paths))
	for _, path := range paths {
		src, err := afero.ReadFile(g.fs, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read unit: %w", err)
		}
		sources[path] = string(src)
		unit, err := g.compiler.Compile(path, bytes.NewReader(src), g.cfg.Compiler)
		if err != nil {
			debug.Error("Unit failed to compile", "file", path, "error", err)
			errs = append(errs, &UnitError{Filename: path, Source: string(src), Err: err})
			continue
		}
		units = append(units, unit)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	if err := checkCollisions(units); err != nil {
		var ue *UnitError
		if errors.As(err, &ue) {
			ue.Source = sources[ue.Filename]
			return nil, Errors{ue}
		}
		return nil, err
	}
	debug.Debug("Units compiled", "count", len(units))
	return units, nil
}

// checkCollisions rejects units whose generated code would clash in a shared
// backend package: two units with one file stem, two units generating the
// same Go identifier on a backend, or two test files declaring one setup type.
func checkCollisions(units []*compiler.Unit) error {
	stems := make(map[string]string)
	for _, u := range units {
		if prev, ok := stems[u.Name]; ok {
			return fmt.Errorf("units %s and %s both generate %s files", prev, u.Filename, u.Name+"_fnsql")
		}
		stems[u.Name] = u.Filename
	}

	for _, b := range dialect.All {
		setups := make(map[string]*compiler.Unit)
		for _, u := range units {
			if !u.TestedOn(b) {
				continue
			}
			setup := codegen.SetupType(u.Name)
			if prev, ok := setups[setup]; ok {
				return fmt.Errorf("units %s and %s both generate test setup %s in package %s",
					prev.Filename, u.Filename, setup, b.Info().Package)
			}
			setups[setup] = u
		}

		owner := make(map[string]*compiler.Definition)
		for _, u := range units {
			for _, d := range u.For(b) {
				for _, id := range d.Identifiers(u.Options.StatementCache) {
					first, ok := owner[id]
					if !ok {
						owner[id] = d
						continue
					}
					err := diagnostics.NewGoNameCollisionError(d.Name, first.Name, id, d.Span, first.Span)
					if first.Name == d.Name {
						err = diagnostics.NewDuplicateNameError(d.Name, d.Span, first.Span)
					}
					return &UnitError{Filename: u.Filename, Err: diagnostics.ErrorList{err}}
				}
			}
		}
	}
	return nil
}

// Render produces every generated file in memory, keyed by path relative to
// the output directory.
func (g *Generator) Render(units []*compiler.Unit) (map[string][]byte, error) {
	opts := codegen.Options{Version: g.cfg.Version, Seed: g.cfg.Seed}
	files := make(map[string][]byte)
	for _, u := range units {
		wrappers, err := codegen.EmitWrappers(u, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to generate wrappers for %s: %w", u.Filename, err)
		}
		tests, err := codegen.EmitTests(u, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to generate tests for %s: %w", u.Filename, err)
		}
		for _, set := range []map[string][]byte{wrappers, tests} {
			for name, src := range set {
				files[name] = src
			}
		}
	}
	return files, nil
}

// Generate compiles, renders and writes every unit. Nothing is written unless
// every file of every unit was produced.
func (g *Generator) Generate() (*Result, error) {
	debug.Debug("Starting generation", "output", g.cfg.Output)

	units, err := g.Compile()
	if err != nil {
		return nil, err
	}
	files, err := g.Render(units)
	if err != nil {
		debug.Error("Rendering failed", "error", err)
		return nil, err
	}

	w, err := codegen.NewWriter(g.fs, g.cfg.Output, g.cfg.Version, g.cfg.Force)
	if err != nil {
		return nil, err
	}
	stems := make([]string, len(units))
	for i, u := range units {
		stems[i] = u.Name
	}
	if err := w.Write(stems, files); err != nil {
		debug.Error("Failed to write generated files", "error", err)
		return nil, fmt.Errorf("failed to write generated code: %w", err)
	}

	result := &Result{Units: units}
	for name := range files {
		result.Files = append(result.Files, name)
	}
	sort.Strings(result.Files)
	debug.Info("Generation completed", "output", g.cfg.Output, "units", len(units), "files", len(result.Files))
	return result, nil
}
