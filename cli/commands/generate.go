package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/fnsql-go/cli/internal/config"
	"github.com/satishbabariya/fnsql-go/cli/internal/ui"
	"github.com/satishbabariya/fnsql-go/cli/internal/watch"
	"github.com/satishbabariya/fnsql-go/generator"
	"github.com/satishbabariya/fnsql-go/internal/version"
)

var generateCmd = &cobra.Command{
	Use:   "generate [files...]",
	Short: "Generate Go wrappers and tests from fnsql units",
	Long: `Generate typed wrappers and tests from fnsql units.

This command will:
- Parse and compile every unit
- Write <output>/<backend package>/<unit>_fnsql.go for each enabled backend
- Write <unit>_fnsql_test.go next to it when tests are enabled

Nothing is written unless every unit compiles.`,
	RunE: runGenerate,
}

var (
	generateWatch bool
	generateForce bool
)

func init() {
	generateCmd.Flags().BoolVarP(&generateWatch, "watch", "w", false, "Regenerate when a unit changes")
	generateCmd.Flags().BoolVarP(&generateForce, "force", "f", false, "Overwrite files fnsql did not generate")
	generateCmd.Flags().StringP("output", "o", "", "Output directory")
	generateCmd.Flags().Int64("seed", 0, "Seed of the value generator in generated tests")
	compileFlags(generateCmd)

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	genCfg, err := cfg.GeneratorConfig(args, version.Version, generateForce)
	if err != nil {
		return err
	}
	gen := generator.New(config.AppFs, genCfg)

	if generateWatch {
		return runGenerateWatch(gen)
	}

	ui.PrintHeader("fnsql", "Generate")

	info := pterm.Info.WithPrefix(pterm.Prefix{
		Text:  "INFO",
		Style: pterm.NewStyle(pterm.FgBlue),
	})
	info.Println(fmt.Sprintf("Inputs: %v", genCfg.Inputs))
	info.Println(fmt.Sprintf("Output: %s", genCfg.Output))

	spinner, _ := ui.PrintSpinner("Generating code...")
	result, err := gen.Generate()
	if spinner != nil {
		_ = spinner.Stop()
	}
	if err != nil {
		return reportErrors(err)
	}

	absPath, _ := filepath.Abs(genCfg.Output)
	ui.PrintSuccess("Generated %d files from %d units at %s", len(result.Files), len(result.Units), ui.Highlight(absPath))

	ui.PrintSection("Generated Files")
	rows := make([][]string, 0, len(result.Files))
	for _, f := range result.Files {
		rows = append(rows, []string{path.Dir(f), path.Base(f)})
	}
	return ui.PrintTable([]string{"Package", "File"}, rows)
}

func runGenerateWatch(gen *generator.Generator) error {
	ui.PrintHeader("fnsql", "Watch Mode")

	inputs, err := gen.Inputs()
	if err != nil {
		return err
	}

	regenerate := func() error {
		result, err := gen.Generate()
		if err != nil {
			return reportErrors(err)
		}
		ui.PrintSuccess("Generated %d files", len(result.Files))
		return nil
	}

	if err := regenerate(); err != nil {
		ui.PrintError("%v", err)
	}

	watcher, err := watch.NewWatcher(inputs, func() error {
		ui.PrintInfo("Unit changed, regenerating...")
		return regenerate()
	})
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	watcher.OnError = func(err error) { ui.PrintError("%v", err) }
	watcher.Start()
	defer watcher.Stop()

	ui.PrintSuccess("Watching %d units for changes... (Press Ctrl+C to stop)", len(inputs))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	ui.PrintInfo("Stopping watch mode...")
	return nil
}
