// Package config loads the fnsql CLI configuration from fnsql.yaml, FNSQL_*
// environment variables, .env files and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/satishbabariya/fnsql-go/compiler"
	"github.com/satishbabariya/fnsql-go/dialect"
	"github.com/satishbabariya/fnsql-go/generator"
)

// AppFs is the filesystem the CLI reads and writes through.
var AppFs = afero.NewOsFs()

// Name is the config file name, without extension.
const Name = "fnsql"

// Keys.
const (
	KeyInputs         = "inputs"
	KeyOutput         = "output"
	KeyBackends       = "backends"
	KeyStatementCache = "statement_cache"
	KeyTests          = "tests"
	KeySeed           = "seed"
	KeyDebug          = "debug"
)

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"output":          KeyOutput,
	"backends":        KeyBackends,
	"statement-cache": KeyStatementCache,
	"tests":           KeyTests,
	"seed":            KeySeed,
	"debug":           KeyDebug,
}

// Config holds the application configuration
type Config struct {
	// Inputs are unit paths or glob patterns.
	Inputs []string
	// Output is the directory the backend packages are written below.
	Output string
	// Backends are the enabled backends; empty enables every backend.
	Backends       []string
	StatementCache bool
	Tests          bool
	Seed           int64
	Debug          bool

	// File is the config file that was read, empty if none.
	File string
}

// Options control Load.
type Options struct {
	Fs afero.Fs
	// File is an explicit config file. When empty, fnsql.yaml is searched in
	// the working directory, $HOME and $HOME/.config/fnsql.
	File string
	// Flags override every other source for the flags that were set.
	Flags *pflag.FlagSet
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Inputs: []string{"*.fnsql"},
		Output: ".",
		Tests:  true,
		Seed:   1,
	}
}

// LoadConfig loads configuration from the OS filesystem with no flags.
func LoadConfig() (*Config, error) {
	return Load(Options{})
}

// Load loads configuration from various sources
func Load(opts Options) (*Config, error) {
	fs := opts.Fs
	if fs == nil {
		fs = AppFs
	}

	if err := loadDotenv(fs); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetFs(fs)
	v.SetConfigType("yaml")
	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName(Name)
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
			v.AddConfigPath(filepath.Join(home, ".config", Name))
		}
	}

	v.SetEnvPrefix("FNSQL")
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault(KeyInputs, d.Inputs)
	v.SetDefault(KeyOutput, d.Output)
	v.SetDefault(KeyBackends, d.Backends)
	v.SetDefault(KeyStatementCache, d.StatementCache)
	v.SetDefault(KeyTests, d.Tests)
	v.SetDefault(KeySeed, d.Seed)
	v.SetDefault(KeyDebug, d.Debug)

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Inputs:         v.GetStringSlice(KeyInputs),
		Output:         v.GetString(KeyOutput),
		Backends:       v.GetStringSlice(KeyBackends),
		StatementCache: v.GetBool(KeyStatementCache),
		Tests:          v.GetBool(KeyTests),
		Seed:           v.GetInt64(KeySeed),
		Debug:          v.GetBool(KeyDebug),
		File:           v.ConfigFileUsed(),
	}
	if _, err := dialect.ParseList(cfg.Backends); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeyBackends, err)
	}
	return cfg, nil
}

// loadDotenv applies .env and then .env.local to the process environment.
// .env never overrides a variable that is already set; .env.local does.
func loadDotenv(fs afero.Fs) error {
	for _, file := range []struct {
		name      string
		overwrite bool
	}{{".env", false}, {".env.local", true}} {
		f, err := fs.Open(file.name)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", file.name, err)
		}
		env, err := godotenv.Parse(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", file.name, err)
		}
		for k, val := range env {
			if _, set := os.LookupEnv(k); set && !file.overwrite {
				continue
			}
			if err := os.Setenv(k, val); err != nil {
				return err
			}
		}
	}
	return nil
}

// CompilerOptions converts the configuration into compiler options.
func (c *Config) CompilerOptions() (compiler.Options, error) {
	backends, err := dialect.ParseList(c.Backends)
	if err != nil {
		return compiler.Options{}, err
	}
	return compiler.Options{
		Backends:       backends,
		StatementCache: c.StatementCache,
		Tests:          c.Tests,
	}, nil
}

// GeneratorConfig converts the configuration into a generation run. Inputs
// given on the command line replace the configured ones.
func (c *Config) GeneratorConfig(inputs []string, version string, force bool) (generator.Config, error) {
	opts, err := c.CompilerOptions()
	if err != nil {
		return generator.Config{}, err
	}
	if len(inputs) == 0 {
		inputs = c.Inputs
	}
	return generator.Config{
		Inputs:   inputs,
		Output:   c.Output,
		Compiler: opts,
		Seed:     c.Seed,
		Force:    force,
		Version:  version,
	}, nil
}

// SaveConfig writes cfg as YAML to path.
func SaveConfig(fs afero.Fs, path string, cfg *Config) error {
	v := viper.New()
	v.SetFs(fs)
	v.Set(KeyInputs, cfg.Inputs)
	v.Set(KeyOutput, cfg.Output)
	v.Set(KeyBackends, cfg.Backends)
	v.Set(KeyStatementCache, cfg.StatementCache)
	v.Set(KeyTests, cfg.Tests)
	v.Set(KeySeed, cfg.Seed)

	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return v.WriteConfigAs(path)
}
