package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, 300, cfg.LLM.MaxTokens)
	require.NotNil(t, cfg.LLM.Temperature)
	assert.Equal(t, 0.7, *cfg.LLM.Temperature)
	assert.Equal(t, 2, cfg.Agent.ClosingPauseSeconds)
}

func TestLoadParsesAndAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
llm:
  model: gemini-2.0-flash
prompts:
  systemMessage: "You are Riya, a scheduling assistant."
  initialMessage: "Hello! Do you have a moment to talk?"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
	assert.Equal(t, "gemini", cfg.LLM.Provider) // defaulted
	assert.Equal(t, 300, cfg.LLM.MaxTokens)     // defaulted
	assert.Contains(t, cfg.Prompts.SystemMessage, "Riya")
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "llm: [not a map")
	_, err := Load(path)
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("VOXLINE_TEST_SECRET", "s3cret")

	assert.Equal(t, "s3cret", expandEnvVars("${VOXLINE_TEST_SECRET}"))
	assert.Equal(t, "key-s3cret", expandEnvVars("key-${VOXLINE_TEST_SECRET}"))
	// unset vars stay as-is
	assert.Equal(t, "${VOXLINE_UNSET_VAR}", expandEnvVars("${VOXLINE_UNSET_VAR}"))
}

func TestLoadExpandsSensitiveFields(t *testing.T) {
	t.Setenv("VOXLINE_TEST_API_KEY", "abc123")
	path := writeConfig(t, `
llm:
  apiKey: ${VOXLINE_TEST_API_KEY}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "abc123", cfg.LLM.APIKey)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VOXLINE_LOG_LEVEL", "DEBUG")
	t.Setenv("VOXLINE_LLM_MAX_TOKENS", "512")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 512, cfg.LLM.MaxTokens)
}

func TestValidateOK(t *testing.T) {
	cfg := Defaults()
	assert.Empty(t, Validate(&cfg))
}

func TestValidateBadProvider(t *testing.T) {
	cfg := Defaults()
	cfg.LLM.Provider = "davinci"
	issues := Validate(&cfg)
	require.Len(t, issues, 1)
	assert.Equal(t, "llm.provider", issues[0].Path)
}

func TestValidateMismatchedTelephonyCreds(t *testing.T) {
	cfg := Defaults()
	cfg.Telephony.AccountSID = "AC123"
	issues := Validate(&cfg)
	require.Len(t, issues, 1)
	assert.Equal(t, "telephony", issues[0].Path)
}

func TestValidateBadLogLevel(t *testing.T) {
	cfg := Defaults()
	cfg.Logging.Level = "verbose"
	issues := Validate(&cfg)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].String(), "logging.level")
}

func TestResolvePathsHonorsHomeOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VOXLINE_HOME", dir)

	p, err := ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, dir, p.Base)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), p.Config)
	assert.Equal(t, filepath.Join(dir, "contacts.json"), p.Contacts)

	require.NoError(t, p.EnsureDirs())
	assert.DirExists(t, p.Logs)
}
