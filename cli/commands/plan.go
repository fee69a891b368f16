package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/fnsql-go/cli/internal/ui"
	"github.com/satishbabariya/fnsql-go/generator"
)

var planCmd = &cobra.Command{
	Use:   "plan [files...]",
	Short: "Show the wrappers and test order a unit generates",
	Long: `Compile fnsql units and print, per backend, the files and wrappers that
generate would write and the order the generated tests run queries in.`,
	RunE: runPlan,
}

var planRaw bool

func init() {
	planCmd.Flags().BoolVar(&planRaw, "raw", false, "Print the markdown source instead of rendering it")
	compileFlags(planCmd)

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	units, err := compileUnits(cmd, args)
	if err != nil {
		return err
	}

	reports := make([]string, 0, len(units))
	for _, u := range units {
		reports = append(reports, generator.NewPlan(u).Markdown())
	}
	report := strings.Join(reports, "\n")

	if planRaw {
		fmt.Fprint(ui.Out, report)
		return nil
	}
	return ui.PrintMarkdown(report)
}
