package providers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockedloop/tempus-fugit/internal/structures"
)

func loggerConfig(dir string) *structures.Config {
	return &structures.Config{
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   dir,
		},
	}
}

func TestNewLogProvider_CreatesLogFiles(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogProvider(loggerConfig(dir))
	require.NoError(t, err)
	defer logger.Close()

	logger.Infof(TypeApp, "test message")
	logger.Debugf(TypeStore, "store message")
	logger.Warnf(TypeTick, "tick message")
	logger.Errorf(TypeApi, "api message")

	for _, stream := range []string{"app", "store", "tick", "api"} {
		_, err := os.Stat(filepath.Join(dir, stream+".log"))
		assert.NoError(t, err, "log file for stream %q", stream)
	}
}

func TestLogProvider_WritesToStreamFile(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogProvider(loggerConfig(dir))
	require.NoError(t, err)

	logger.Infof(TypeTick, "refreshed %d containers", 3)
	logger.Errorf(TypeApi, "decode failed")
	logger.Close()

	tick, err := os.ReadFile(filepath.Join(dir, "tick.log"))
	require.NoError(t, err)
	assert.Contains(t, string(tick), "refreshed 3 containers")

	api, err := os.ReadFile(filepath.Join(dir, "api.log"))
	require.NoError(t, err)
	assert.Contains(t, string(api), "decode failed")
}

func TestNewLogProvider_InvalidDir(t *testing.T) {
	_, err := NewLogProvider(loggerConfig("/nonexistent/directory/path"))
	assert.Error(t, err)
}

func TestNewLogProvider_InvalidLevel(t *testing.T) {
	conf := loggerConfig(t.TempDir())
	conf.Logger.Level = "verbose"
	_, err := NewLogProvider(conf)
	assert.Error(t, err)
}

func TestTypeEnum_String(t *testing.T) {
	assert.Equal(t, "app", TypeApp.String())
	assert.Equal(t, "store", TypeStore.String())
	assert.Equal(t, "tick", TypeTick.String())
	assert.Equal(t, "api", TypeApi.String())
}
