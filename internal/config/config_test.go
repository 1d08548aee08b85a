package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Parallel()

	cfg := Defaults()
	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "m/44'/60'/0'/0/0", cfg.Derivation.DefaultPath)
	assert.Equal(t, "auto", cfg.Output.DefaultFormat)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.False(t, cfg.Output.Verbose)
}

func TestSaveAndLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := Path(dir)

	cfg := Defaults()
	cfg.Output.DefaultFormat = "json"
	cfg.Derivation.DefaultPath = "m/44'/60'/1'/0/0"
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "json", loaded.GetOutputFormat())
	assert.Equal(t, "m/44'/60'/1'/0/0", loaded.GetDerivationPath())
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := Path(dir)
	require.NoError(t, os.WriteFile(path, []byte("output:\n  verbose: true\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.IsVerbose())
	assert.Equal(t, "error", cfg.GetLoggingLevel())
	assert.Equal(t, "m/44'/60'/0'/0/0", cfg.GetDerivationPath())
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestApplyEnvironment(t *testing.T) {
	t.Setenv(EnvOutputFormat, "JSON")
	t.Setenv(EnvVerbose, "yes")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvDerivationPath, "m/44'/60'/2'/0/0")
	t.Setenv(EnvNoColor, "1")

	cfg := Defaults()
	ApplyEnvironment(cfg)

	assert.Equal(t, "json", cfg.Output.DefaultFormat)
	assert.True(t, cfg.Output.Verbose)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "m/44'/60'/2'/0/0", cfg.Derivation.DefaultPath)
	assert.Equal(t, "never", cfg.Output.Color)
}

func TestParseBool(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"1", "true", "YES", "on", "True"} {
		assert.True(t, parseBool(s), s)
	}
	for _, s := range []string{"0", "false", "no", "off", ""} {
		assert.False(t, parseBool(s), s)
	}
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, LogLevelOff, ParseLogLevel("off"))
	assert.Equal(t, LogLevelOff, ParseLogLevel("NONE"))
	assert.Equal(t, LogLevelError, ParseLogLevel("error"))
	assert.Equal(t, LogLevelDebug, ParseLogLevel("debug"))
	assert.Equal(t, LogLevelError, ParseLogLevel("mystery"))
}

func TestLoggerWritesAtLevel(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.log")
	logger, err := NewLogger(LogLevelError, path)
	require.NoError(t, err)

	logger.Debug("hidden %d", 1)
	logger.Error("shown %d", 2)
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown 2")
	assert.Contains(t, string(data), "[ERROR]")
}

func TestNullLogger(t *testing.T) {
	t.Parallel()

	logger := NullLogger()
	logger.Error("goes nowhere")
	assert.Equal(t, LogLevelOff, logger.Level())
	assert.NoError(t, logger.Close())
}
