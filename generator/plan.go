package generator

import (
	"fmt"
	"strings"

	"github.com/satishbabariya/fnsql-go/compiler"
	"github.com/satishbabariya/fnsql-go/generator/codegen"
)

// Plan is what generation would produce for one unit.
type Plan struct {
	Unit     *compiler.Unit
	Backends []BackendPlan
}

// BackendPlan lists the output of a unit for one backend.
type BackendPlan struct {
	Backend  string
	Package  string
	Files    []string
	Wrappers []string
	// TestOrder names the setup steps in the order they run.
	TestOrder []string
	// After maps a step to its direct test prerequisites.
	After map[string][]string
}

// NewPlan describes the generated output of unit.
func NewPlan(unit *compiler.Unit) *Plan {
	p := &Plan{Unit: unit}
	for _, b := range unit.Backends() {
		bp := BackendPlan{
			Backend: b.String(),
			Package: b.Info().Package,
			Files:   []string{codegen.WrapperPath(unit.Name, b)},
		}
		for _, d := range unit.For(b) {
			bp.Wrappers = append(bp.Wrappers, d.Wrappers(unit.Options.StatementCache)...)
		}
		if unit.TestedOn(b) {
			bp.Files = append(bp.Files, codegen.TestPath(unit.Name, b))
			bp.After = make(map[string][]string)
			for _, d := range unit.TestOrderFor(b) {
				bp.TestOrder = append(bp.TestOrder, d.Name)
				for _, pre := range unit.Graph.Prerequisites(d.Name) {
					bp.After[d.Name] = append(bp.After[d.Name], pre.Name)
				}
			}
		}
		p.Backends = append(p.Backends, bp)
	}
	return p
}

// Markdown renders the plan as a markdown report.
func (p *Plan) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", p.Unit.Filename)
	fmt.Fprintf(&sb, "%d queries, %d backends.\n", len(p.Unit.Definitions), len(p.Backends))

	for _, bp := range p.Backends {
		fmt.Fprintf(&sb, "\n## %s (package `%s`)\n\n", bp.Backend, bp.Package)
		for _, f := range bp.Files {
			fmt.Fprintf(&sb, "- `%s`\n", f)
		}

		sb.WriteString("\n### Wrappers\n\n")
		for _, w := range bp.Wrappers {
			fmt.Fprintf(&sb, "- `%s`\n", w)
		}

		if len(bp.TestOrder) > 0 {
			sb.WriteString("\n### Test order\n\n")
			for i, name := range bp.TestOrder {
				fmt.Fprintf(&sb, "%d. `%s`", i+1, name)
				if after := bp.After[name]; len(after) > 0 {
					fmt.Fprintf(&sb, " after `%s`", strings.Join(after, "`, `"))
				}
				sb.WriteString("\n")
			}
		}
	}
	return sb.String()
}
