package commands

import (
	"fmt"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/fnsql-go/cli/internal/config"
	"github.com/satishbabariya/fnsql-go/cli/internal/ui"
	"github.com/satishbabariya/fnsql-go/dialect"
)

const sampleUnit = `// Queries are compiled by fnsql generate into typed wrappers per backend.

#[test]
create_table_pet() {
    "CREATE TABLE pet (id INTEGER PRIMARY KEY, name TEXT NOT NULL, nickname TEXT)"
}

#[test(with=[create_table_pet])]
insert_pet(id: i32, name: String, nickname: Option<String>) {
    "INSERT INTO pet (id, name, nickname) VALUES (:id, :name, :nickname)"
}

#[test(with=[create_table_pet, insert_pet])]
get_pets_by_name(name: String) -> [(i32, Option<String>)] {
    "SELECT id, nickname FROM pet WHERE name = :name"
}
`

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create fnsql.yaml and a sample unit",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

var initYes bool

func init() {
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "Accept the defaults without prompting")

	rootCmd.AddCommand(initCmd)
}

// initAnswers are the choices of the init prompts.
type initAnswers struct {
	Backends       []string
	Output         string
	Tests          bool
	StatementCache bool `survey:"statement_cache"`
}

func defaultAnswers() initAnswers {
	d := config.Defaults()
	return initAnswers{
		Backends: []string{dialect.SQLite.String()},
		Output:   "db",
		Tests:    d.Tests,
	}
}

func askInit() (initAnswers, error) {
	answers := defaultAnswers()
	questions := []*survey.Question{
		{
			Name: "backends",
			Prompt: &survey.MultiSelect{
				Message: "Backends to generate for:",
				Options: dialect.Names(),
				Default: answers.Backends,
			},
			Validate: survey.MinItems(1),
		},
		{
			Name: "output",
			Prompt: &survey.Input{
				Message: "Output directory for the backend packages:",
				Default: answers.Output,
			},
			Validate: survey.Required,
		},
		{
			Name:   "tests",
			Prompt: &survey.Confirm{Message: "Generate tests?", Default: answers.Tests},
		},
		{
			Name:   "statement_cache",
			Prompt: &survey.Confirm{Message: "Generate Prepare wrappers for the statement cache?", Default: false},
		},
	}
	if err := survey.Ask(questions, &answers); err != nil {
		return initAnswers{}, err
	}
	return answers, nil
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	answers := defaultAnswers()
	if !initYes {
		var err error
		if answers, err = askInit(); err != nil {
			return err
		}
	}

	created, err := writeProject(config.AppFs, dir, answers)
	if err != nil {
		return err
	}
	for _, f := range created {
		ui.PrintSuccess("Created %s", ui.Highlight(f))
	}

	ui.PrintSection("Next Steps")
	ui.PrintList([]string{
		"Edit queries.fnsql to define your queries",
		"Run: fnsql generate",
		fmt.Sprintf("Run: go test ./%s/...", filepath.ToSlash(answers.Output)),
	})
	return nil
}

// writeProject writes fnsql.yaml and the sample unit into dir, keeping files
// that already exist. It returns the created paths.
func writeProject(fs afero.Fs, dir string, answers initAnswers) ([]string, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create project directory: %w", err)
	}

	var created []string
	cfgPath := filepath.Join(dir, config.Name+".yaml")
	exists, err := afero.Exists(fs, cfgPath)
	if err != nil {
		return nil, err
	}
	if exists {
		ui.PrintWarning("Config file already exists: %s", cfgPath)
	} else {
		cfg := config.Defaults()
		cfg.Backends = answers.Backends
		cfg.Output = answers.Output
		cfg.Tests = answers.Tests
		cfg.StatementCache = answers.StatementCache
		if err := config.SaveConfig(fs, cfgPath, &cfg); err != nil {
			return nil, fmt.Errorf("failed to write config: %w", err)
		}
		created = append(created, cfgPath)
	}

	unitPath := filepath.Join(dir, "queries.fnsql")
	exists, err = afero.Exists(fs, unitPath)
	if err != nil {
		return nil, err
	}
	if exists {
		ui.PrintWarning("Unit already exists: %s", unitPath)
	} else {
		if err := afero.WriteFile(fs, unitPath, []byte(sampleUnit), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write sample unit: %w", err)
		}
		created = append(created, unitPath)
	}
	return created, nil
}
