package config

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    "~/.ethraw",
		Derivation: DerivationConfig{
			DefaultPath: "m/44'/60'/0'/0/0",
		},
		Output: OutputConfig{
			DefaultFormat: "auto",
			Color:         "auto",
			Verbose:       false,
		},
		Logging: LoggingConfig{
			Level: "error",
			File:  "~/.ethraw/ethraw.log",
		},
	}
}
