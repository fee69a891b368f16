package commands

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/fnsql-go/cli/internal/config"
	"github.com/satishbabariya/fnsql-go/cli/internal/ui"
	"github.com/satishbabariya/fnsql-go/compiler"
	"github.com/satishbabariya/fnsql-go/generator"
	"github.com/satishbabariya/fnsql-go/internal/version"
)

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Check fnsql units without writing anything",
	Long: `Compile fnsql units and report diagnostics.

This command will:
- Parse every unit and check for syntax errors
- Resolve attributes and test prerequisites
- Check SQL parameters, the test order and types per backend`,
	RunE: runValidate,
}

func init() {
	compileFlags(validateCmd)

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	units, err := compileUnits(cmd, args)
	if err != nil {
		return err
	}

	ui.PrintHeader("fnsql", "Validate")
	ui.PrintSuccess("%d units are valid", len(units))

	ui.PrintSection("Units")
	rows := make([][]string, 0, len(units))
	for _, u := range units {
		rows = append(rows, unitSummary(u))
	}
	return ui.PrintTable([]string{"Unit", "Queries", "Tested", "Backends"}, rows)
}

// compileUnits compiles the units named by args, or the configured inputs.
func compileUnits(cmd *cobra.Command, args []string) ([]*compiler.Unit, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	genCfg, err := cfg.GeneratorConfig(args, version.Version, false)
	if err != nil {
		return nil, err
	}
	units, err := generator.New(config.AppFs, genCfg).Compile()
	if err != nil {
		return nil, reportErrors(err)
	}
	return units, nil
}

func unitSummary(u *compiler.Unit) []string {
	tested := 0
	for _, d := range u.Definitions {
		if d.Tested() {
			tested++
		}
	}
	backends := make([]string, 0, len(u.Backends()))
	for _, b := range u.Backends() {
		backends = append(backends, b.String())
	}
	return []string{
		ui.Highlight(u.Filename),
		strconv.Itoa(len(u.Definitions)),
		strconv.Itoa(tested),
		strings.Join(backends, ", "),
	}
}
