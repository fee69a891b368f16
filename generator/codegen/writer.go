package codegen

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/hashicorp/go-version"
	"github.com/spf13/afero"

	"github.com/satishbabariya/fnsql-go/dialect"
	"github.com/satishbabariya/fnsql-go/internal/debug"
)

var headerPattern = regexp.MustCompile(`^// Code generated by fnsql v(\S+)\. DO NOT EDIT\.$`)

// ErrForeignFile is returned when a target path holds a file fnsql did not
// generate.
var ErrForeignFile = errors.New("file was not generated by fnsql")

// ErrNewerGenerator is returned when a target file was generated by a newer
// fnsql than the running one.
var ErrNewerGenerator = errors.New("file was generated by a newer fnsql")

// ParseHeader returns the generator version stamped into src.
func ParseHeader(src []byte) (*version.Version, bool) {
	line, _, _ := bufio.NewReader(bytes.NewReader(src)).ReadLine()
	m := headerPattern.FindSubmatch(line)
	if m == nil {
		return nil, false
	}
	v, err := version.NewVersion(string(m[1]))
	if err != nil {
		return nil, false
	}
	return v, true
}

// Writer writes generated files below an output directory.
type Writer struct {
	fs      afero.Fs
	dir     string
	version *version.Version
	force   bool
}

// NewWriter returns a writer for files generated by fnsql at version v.
// With force set, files fnsql did not generate are overwritten.
func NewWriter(fsys afero.Fs, outputDir, v string, force bool) (*Writer, error) {
	current, err := version.NewVersion(v)
	if err != nil {
		return nil, fmt.Errorf("invalid version format: %w", err)
	}
	return &Writer{fs: fsys, dir: outputDir, version: current, force: force}, nil
}

// Write writes files, keyed by path relative to the output directory, and
// removes the files generated for units by an earlier run that files no
// longer contains. Every target is checked before anything is written or
// removed, so a refused file leaves the output untouched.
func (w *Writer) Write(units []string, files map[string][]byte) error {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := w.check(w.path(name)); err != nil {
			return err
		}
	}
	stale, err := w.stale(units, files)
	if err != nil {
		return err
	}

	start := time.Now()
	for _, name := range names {
		target := w.path(name)
		if err := w.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := afero.WriteFile(w.fs, target, files[name], 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
		debug.Debug("Wrote file", "path", target, "bytes", len(files[name]))
	}
	for _, target := range stale {
		if err := w.fs.Remove(target); err != nil {
			return fmt.Errorf("failed to remove %s: %w", target, err)
		}
		debug.Debug("Removed stale file", "path", target)
	}
	debug.Debug("Files written", "count", len(names), "removed", len(stale), "elapsed", time.Since(start))
	return nil
}

// stale returns the generated files of units, on any backend, that files does
// not contain. Files without an fnsql header are kept.
func (w *Writer) stale(units []string, files map[string][]byte) ([]string, error) {
	var out []string
	for _, u := range units {
		for _, b := range dialect.All {
			for _, name := range []string{WrapperPath(u, b), TestPath(u, b)} {
				if _, ok := files[name]; ok {
					continue
				}
				target := w.path(name)
				existing, err := afero.ReadFile(w.fs, target)
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				if err != nil {
					return nil, fmt.Errorf("failed to read %s: %w", target, err)
				}
				v, ok := ParseHeader(existing)
				if !ok {
					debug.Warn("Keeping foreign file", "path", target)
					continue
				}
				if v.GreaterThan(w.version) {
					return nil, fmt.Errorf("%s: %w (v%s, running v%s)", target, ErrNewerGenerator, v, w.version)
				}
				out = append(out, target)
			}
		}
	}
	return out, nil
}

func (w *Writer) path(name string) string {
	return filepath.Join(w.dir, filepath.FromSlash(name))
}

func (w *Writer) check(target string) error {
	existing, err := afero.ReadFile(w.fs, target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", target, err)
	}
	v, ok := ParseHeader(existing)
	if !ok {
		if w.force {
			debug.Warn("Overwriting foreign file", "path", target)
			return nil
		}
		return fmt.Errorf("%s: %w (use --force to overwrite)", target, ErrForeignFile)
	}
	if v.GreaterThan(w.version) {
		return fmt.Errorf("%s: %w (v%s, running v%s)", target, ErrNewerGenerator, v, w.version)
	}
	return nil
}
