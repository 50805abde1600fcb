package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/aberic/george/internal/config"
	"github.com/aberic/george/internal/logging"
)

func TestNewRespectsConfiguredLevel(t *testing.T) {
	log, err := logging.New(&config.Config{LogLevel: "debug"})
	require.NoError(t, err)
	require.True(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = logging.New(&config.Config{LogLevel: "error"})
	require.NoError(t, err)
	require.False(t, log.Core().Enabled(zapcore.InfoLevel))
	require.True(t, log.Core().Enabled(zapcore.ErrorLevel))
}

func TestNewFallsBackToInfoOnInvalidLevel(t *testing.T) {
	log, err := logging.New(&config.Config{LogLevel: "not-a-level"})
	require.NoError(t, err)
	require.True(t, log.Core().Enabled(zapcore.InfoLevel))
	require.False(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestNewProductionConfigBuildsWithoutError(t *testing.T) {
	log, err := logging.New(&config.Config{LogLevel: "info", Production: true})
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestNewWritesToConfiguredLogDir(t *testing.T) {
	dir := t.TempDir()
	log, err := logging.New(&config.Config{LogLevel: "info", LogDir: dir})
	require.NoError(t, err)

	log.Info("hello from the test suite")

	raw, err := os.ReadFile(filepath.Join(dir, "george.log"))
	require.NoError(t, err)
	require.Contains(t, string(raw), "hello from the test suite")
}
