// Package cli implements the gwt-demo command line.
package cli

import (
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"digital.vasic.gwt/pkg/config"
	"digital.vasic.gwt/pkg/env"
	"digital.vasic.gwt/pkg/logging"
)

// Environment variables consulted after the .env file is loaded.
const (
	envPrefix      = "GWT_ENV_"
	envLogLevel    = "GWT_LOG_LEVEL"
	envParallelism = "GWT_PARALLELISM"
	envResultsDir  = "GWT_RESULTS_DIR"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"console", "json"}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	EnvFile    string
	Format     string
	LogLevel   string
	Verbose    bool

	// Populated by the root command before a subcommand runs.
	Config *config.Config
	Logger logging.Logger
}

// NewRootCommand creates the root command for gwt-demo.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "gwt-demo",
		Short:         "Run Given/When/Then example definitions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if opts.Logger != nil {
				return opts.Logger.Close()
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "YAML configuration file")
	flags.StringVar(&opts.EnvFile, "env-file", ".env", "optional .env file")
	flags.StringVar(&opts.Format, "format", "console", "output format (console|json)")
	flags.StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewListCommand(opts))

	return cmd
}

// setup validates global flags and builds the config and logger.
// Precedence: flags, then process env, then .env, then the
// config file, then defaults.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	if !slices.Contains(ValidFormats, o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf(
			"invalid format %q: must be one of %v", o.Format, ValidFormats,
		))
	}

	cfg := config.NewConfig("gwt-demo")
	if o.ConfigPath != "" {
		loaded, err := config.LoadFile(o.ConfigPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "load config", err)
		}
		cfg = loaded
	}

	loader := env.NewLoader()
	if o.EnvFile != "" {
		if _, err := os.Stat(o.EnvFile); err == nil {
			if err := loader.Load(o.EnvFile); err != nil {
				return WrapExitError(ExitCommandError, "load env", err)
			}
		}
	}
	if cfg.Environment == nil {
		cfg.Environment = make(map[string]string)
	}
	for k, v := range loader.Prefixed(envPrefix) {
		cfg.Environment[k] = v
	}
	if v := loader.Get(envLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := loader.Get(envResultsDir); v != "" {
		cfg.ResultsDir = v
	}
	if v := loader.Get(envParallelism); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return WrapExitError(ExitCommandError,
				"invalid "+envParallelism, err)
		}
		cfg.Parallelism = n
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.Verbose {
		cfg.Verbose = true
	}

	logger, err := logging.NewZerologLogger(logging.LoggerConfig{
		Output:    cmd.ErrOrStderr(),
		Level:     logging.ParseLevel(cfg.LogLevel),
		Console:   o.Format == "console",
		Component: "gwt-demo",
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "create logger", err)
	}
	logger.Debug("config_loaded",
		logging.StringField("name", cfg.Name),
		logging.IntField("parallelism", cfg.Parallelism),
		logging.LogField("environment", env.RedactMap(cfg.Environment)),
	)

	o.Config = cfg
	o.Logger = logger
	return nil
}
