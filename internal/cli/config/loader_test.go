package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func TestLoadConfigDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultInput, cfg.Input)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, DefaultStateFile, cfg.StatePath)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.NotEmpty(t, cfg.Project)
	assert.False(t, cfg.Verbose)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	content := `project: warehouse
input: exports/model.json
port: 9000
analysis:
  fact_fanout_threshold: 3
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pbnj.yaml"), []byte(content), 0o644))

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "warehouse", cfg.Project)
	assert.Equal(t, "exports/model.json", cfg.Input)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 3, cfg.Analysis.FactFanoutThreshold)
	// Unspecified keys keep their defaults.
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, "pbnj.yaml", GetConfigFileUsed())
}

func TestLoadConfigExplicitFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("project: custom\n"), 0o644))

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "custom", cfg.Project)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := LoadConfig("absent.yaml", nil)
	assert.Error(t, err)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pbnj.yaml"), []byte("port: 9000\n"), 0o644))

	t.Setenv("PBNJ_PORT", "9100")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port)
}

func TestLoadConfigFlagsOverrideEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PBNJ_PORT", "9100")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 0, "")
	flags.String("state", "", "")
	require.NoError(t, flags.Parse([]string{"--port=9200", "--state=custom/state.db"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Port)
	// --state maps onto the state_path config key.
	assert.Equal(t, "custom/state.db", cfg.StatePath)
}

func TestLoadConfigUnchangedFlagIgnored(t *testing.T) {
	chdir(t, t.TempDir())

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 1234, "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	// The flag default does not override the config default.
	assert.Equal(t, DefaultPort, cfg.Port)
}

func TestValidate(t *testing.T) {
	valid := &Config{Project: "p", Input: "in.json", Port: 8080}
	assert.NoError(t, valid.Validate())

	assert.Error(t, (&Config{Input: "in.json", Port: 8080}).Validate())
	assert.Error(t, (&Config{Project: "p", Port: 8080}).Validate())
	assert.Error(t, (&Config{Project: "p", Input: "in.json", Port: -1}).Validate())
}
