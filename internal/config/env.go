package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variable names.
const (
	EnvHome           = "ETHRAW_HOME"
	EnvOutputFormat   = "ETHRAW_OUTPUT_FORMAT"
	EnvVerbose        = "ETHRAW_VERBOSE"
	EnvLogLevel       = "ETHRAW_LOG_LEVEL"
	EnvDerivationPath = "ETHRAW_DERIVATION_PATH"
	EnvNoColor        = "NO_COLOR"
)

// ApplyEnvironment applies environment variable overrides to the
// configuration. Environment wins over the config file; flags win over
// both.
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = strings.TrimSpace(v)
	}

	if v := os.Getenv(EnvOutputFormat); v != "" {
		cfg.Output.DefaultFormat = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv(EnvVerbose); v != "" {
		cfg.Output.Verbose = parseBool(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv(EnvDerivationPath); v != "" {
		cfg.Derivation.DefaultPath = strings.TrimSpace(v)
	}

	// NO_COLOR disables colored output
	if _, ok := os.LookupEnv(EnvNoColor); ok {
		cfg.Output.Color = "never"
	}
}

// parseBool parses a boolean string value.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}
