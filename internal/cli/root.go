// Package cli implements the ethraw command-line interface.
//
// This package uses global variables to manage CLI state, which is the
// standard pattern for Cobra-based CLI applications. The globals are
// initialized in PersistentPreRunE and cleaned up in PersistentPostRun.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nexeth/ethraw/internal/config"
	"github.com/nexeth/ethraw/internal/output"
	ethrawerr "github.com/nexeth/ethraw/pkg/errors"
)

var (
	// Global flags
	homeDir      string
	outputFormat string
	verbose      bool

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	logger    *config.Logger
	formatter *output.Formatter
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ethraw",
	Short: "An offline Ethereum raw-transaction toolbox",
	Long: `Ethraw builds, signs, and decodes raw Ethereum transactions entirely
offline. It also converts between ether denominations and handles
checksummed and ICAP address formats.

Example:
  ethraw tx sign --nonce 9 --to 0x3535...3535 --value 1 --value-unit ether --key <hex>
  ethraw tx decode 0xf86c098504a817c800...
  ethraw address checksum 0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed
  ethraw units convert 1 ether wei`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return initGlobals()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		cleanup()
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		if formatter != nil {
			_ = output.FormatError(os.Stderr, err, formatter.Format())
		} else {
			_ = output.FormatError(os.Stderr, err, output.FormatText)
		}
		return err
	}
	return nil
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	return ethrawerr.ExitCode(err)
}

// initGlobals initializes global configuration, logger, and formatter.
func initGlobals() error {
	home := homeDir
	if home == "" {
		home = os.Getenv(config.EnvHome)
	}
	if home == "" {
		home = config.DefaultHome()
	}

	// Load config; fall back to defaults when the file doesn't exist
	configPath := config.Path(home)
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		cfg = config.Defaults()
		cfg.Home = home
	}

	config.ApplyEnvironment(cfg)

	// Flags win over environment and file
	if homeDir != "" {
		cfg.Home = homeDir
	}
	if verbose {
		cfg.Output.Verbose = true
		cfg.Logging.Level = "debug"
	}
	if outputFormat != "" && outputFormat != "auto" {
		cfg.Output.DefaultFormat = outputFormat
	}

	logLevel := config.ParseLogLevel(cfg.Logging.Level)
	logger, err = config.NewLogger(logLevel, cfg.Logging.File)
	if err != nil {
		logger = config.NullLogger()
	}

	explicitFormat := output.ParseFormat(cfg.Output.DefaultFormat)
	detectedFormat := output.DetectFormat(os.Stdout, explicitFormat)
	formatter = output.NewFormatter(detectedFormat, os.Stdout)

	return nil
}

// cleanup releases resources.
func cleanup() {
	if logger != nil {
		_ = logger.Close()
	}
}

// Config returns the global configuration.
func Config() *config.Config {
	return cfg
}

// Logger returns the global logger.
func Logger() *config.Logger {
	return logger
}

// Formatter returns the global output formatter.
func Formatter() *output.Formatter {
	return formatter
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "ethraw data directory (default: ~/.ethraw)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}
