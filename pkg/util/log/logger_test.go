package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLogger_NoOutput(t *testing.T) {
	_, err := New(WithoutLogToStderr())
	assert.Error(t, err)
}

func TestLogger_InvalidPath(t *testing.T) {
	_, err := New(WithPath(t.TempDir() + "/"))
	assert.Error(t, err)
}

func TestLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "snorchd.log")
	logger, err := New(
		WithoutLogToStderr(),
		WithPath(path),
		WithMaxSizeMB(1),
		WithMaxBackups(1),
		WithAgeDays(1),
		WithCompression(),
		WithLocalTime(),
		WithLogLevel(zapcore.WarnLevel),
	)
	require.NoError(t, err)

	logger.Info("filtered")
	logger.Warn("written", zap.String("address", "10.0.0.1"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "filtered")
	assert.Contains(t, string(data), `"address":"10.0.0.1"`)
}

func TestLogger_HumanFriendly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snorchd.log")
	logger, err := New(WithoutLogToStderr(), WithPath(path), WithHumanFriendly())
	require.NoError(t, err)

	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "INFO")
	assert.NotContains(t, string(data), `"msg"`)
}
