package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aberic/george/internal/config"
)

func newBoundCommand(t *testing.T, cfg *config.Config) *cobra.Command {
	t.Helper()
	viper.Reset()
	cmd := &cobra.Command{Use: "test"}
	require.NoError(t, config.Bind(cmd, cfg))
	return cmd
}

func TestBindRegistersFlagsWithTagDefaults(t *testing.T) {
	cfg := &config.Config{}
	cmd := newBoundCommand(t, cfg)

	flag := cmd.Flags().Lookup("data-dir")
	require.NotNil(t, flag)
	require.Equal(t, "", flag.DefValue)

	flag = cmd.Flags().Lookup("thread-count")
	require.NotNil(t, flag)
	require.Equal(t, "8", flag.DefValue)

	flag = cmd.Flags().Lookup("production")
	require.NotNil(t, flag)
	require.Equal(t, "false", flag.DefValue)
}

func TestExecFillsCfgFromFlagDefaultsWhenUnset(t *testing.T) {
	cfg := &config.Config{}
	newBoundCommand(t, cfg)

	require.NoError(t, config.Exec(cfg))
	require.Equal(t, 8, cfg.ThreadCount)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, 1024, cfg.LimitOpenFile)
}

func TestExecPrefersEnvVarOverFlagDefault(t *testing.T) {
	cfg := &config.Config{}
	newBoundCommand(t, cfg)

	t.Setenv(config.EnvPrefix+"_THREAD_COUNT", "16")

	require.NoError(t, config.Exec(cfg))
	require.Equal(t, 16, cfg.ThreadCount)
}

func TestExecPrefersExplicitFlagOverDefault(t *testing.T) {
	cfg := &config.Config{}
	cmd := newBoundCommand(t, cfg)

	require.NoError(t, cmd.Flags().Set("thread-count", "32"))

	require.NoError(t, config.Exec(cfg))
	require.Equal(t, 32, cfg.ThreadCount)
}

func TestExecReadsYAMLConfigFile(t *testing.T) {
	cfg := &config.Config{}
	newBoundCommand(t, cfg)

	dir := t.TempDir()
	path := filepath.Join(dir, "george.yaml")
	require.NoError(t, os.WriteFile(path, []byte("thread-count: 24\nlog-level: debug\n"), 0o644))
	t.Setenv(config.EnvPrefix+"_CONFIG", path)

	require.NoError(t, config.Exec(cfg))
	require.Equal(t, 24, cfg.ThreadCount)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestSaveConfigWritesReadableYAML(t *testing.T) {
	cfg := &config.Config{DataDir: "/var/lib/george", ThreadCount: 12, Production: true}
	path := filepath.Join(t.TempDir(), "saved.yaml")

	require.NoError(t, config.SaveConfig(cfg, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(raw, &doc))
	require.Equal(t, "/var/lib/george", doc["datadir"])
	require.Equal(t, 12, doc["threadcount"])
	require.Equal(t, true, doc["production"])
}
