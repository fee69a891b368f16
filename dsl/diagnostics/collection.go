package diagnostics

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
)

// Diagnostics accumulates the errors of one compile phase so that a user sees
// every problem of that phase at once instead of only the first.
type Diagnostics struct {
	errors []*Error
}

// NewDiagnostics creates an empty collection.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{}
}

// Push adds an error to the collection.
func (d *Diagnostics) Push(err *Error) {
	d.errors = append(d.errors, err)
}

// Errors returns the collected errors in insertion order.
func (d *Diagnostics) Errors() []*Error {
	return d.errors
}

// HasErrors reports whether at least one error was collected.
func (d *Diagnostics) HasErrors() bool {
	return len(d.errors) > 0
}

// Err returns nil when the collection is empty, otherwise an ErrorList
// ordered by source position.
func (d *Diagnostics) Err() error {
	if !d.HasErrors() {
		return nil
	}
	list := make(ErrorList, len(d.errors))
	copy(list, d.errors)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Span.Offset < list[j].Span.Offset
	})
	return list
}

// Pretty renders every error of err against the unit text, with the offending
// line and a caret marker. Colors follow fatih/color and honor NO_COLOR.
func Pretty(err error, text string) string {
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}
	var buf bytes.Buffer
	for _, e := range All(err) {
		writePretty(&buf, text, e)
	}
	if buf.Len() == 0 && err != nil {
		buf.WriteString(err.Error())
		buf.WriteByte('\n')
	}
	return buf.String()
}

func writePretty(buf *bytes.Buffer, text string, e *Error) {
	title := color.New(color.FgRed, color.Bold)
	desc := color.New(color.Bold)
	arrow := color.New(color.FgCyan, color.Bold)
	gutter := color.New(color.FgCyan, color.Bold)
	mark := color.New(color.FgRed, color.Bold)

	title.Fprintf(buf, "error[%s]", e.Kind)
	fmt.Fprint(buf, ": ")
	desc.Fprintf(buf, "%s\n", e.Message)
	arrow.Fprint(buf, "  --> ")
	fmt.Fprintf(buf, "%s\n", e.Span)

	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	if e.Span.Line < 1 || e.Span.Line > len(lines) {
		return
	}
	line := lines[e.Span.Line-1]
	col := e.Span.Column - 1
	if col < 0 {
		col = 0
	}
	if col > len(line) {
		col = len(line)
	}
	width := e.Span.Length
	if width < 1 {
		width = 1
	}
	if col+width > len(line) {
		width = max(len(line)-col, 1)
	}

	gutter.Fprint(buf, "   |\n")
	gutter.Fprintf(buf, "%3d | ", e.Span.Line)
	fmt.Fprintf(buf, "%s\n", line)
	gutter.Fprint(buf, "   | ")
	fmt.Fprint(buf, strings.Repeat(" ", col))
	mark.Fprintf(buf, "%s\n", strings.Repeat("^", width))
}
