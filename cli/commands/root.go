// Package commands implements the fnsql CLI commands.
package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/fnsql-go/cli/internal/config"
	"github.com/satishbabariya/fnsql-go/cli/internal/ui"
	"github.com/satishbabariya/fnsql-go/generator"
	"github.com/satishbabariya/fnsql-go/internal/debug"
	"github.com/satishbabariya/fnsql-go/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "fnsql",
	Short: "Compile query definitions into typed Go wrappers and tests",
	Long: `fnsql compiles .fnsql query definition units into typed database/sql
wrappers for SQLite, PostgreSQL and MySQL, plus generated tests that run
every annotated query after its prerequisites.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var configFile string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default: fnsql.yaml in ., $HOME or $HOME/.config/fnsql)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.SetVersionTemplate("{{.Name}} version {{.Version}}\n")
}

// Execute is the main entry point for the CLI
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("%v", err)
		return err
	}
	return nil
}

// loadConfig loads the configuration with the flags of cmd applied, and
// enables debug logging if requested.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(config.Options{
		Fs:    config.AppFs,
		File:  configFile,
		Flags: cmd.Flags(),
	})
	if err != nil {
		return nil, err
	}
	if cfg.Debug {
		debug.Init(true)
	}
	debug.Debug("Loaded config", "file", cfg.File, "inputs", cfg.Inputs, "output", cfg.Output, "backends", cfg.Backends)
	return cfg, nil
}

// compileFlags registers the flags that override compile settings.
func compileFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("backends", "b", nil, "Backends to generate for (sqlite, postgres, mysql)")
	cmd.Flags().Bool("statement-cache", false, "Generate Prepare wrappers")
	cmd.Flags().Bool("tests", true, "Generate tests for test-annotated queries")
}

// reportErrors prints the diagnostics of units that failed to compile and
// returns a summary error. Other errors are returned unchanged.
func reportErrors(err error) error {
	var errs generator.Errors
	if !errors.As(err, &errs) {
		return err
	}
	for _, e := range errs {
		ui.PrintDiagnostics(e.Pretty())
	}
	if len(errs) == 1 {
		return fmt.Errorf("%s failed to compile", errs[0].Filename)
	}
	return fmt.Errorf("%d units failed to compile", len(errs))
}
