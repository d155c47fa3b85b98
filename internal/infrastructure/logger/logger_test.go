package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArielVlevin/maintainer-backend/internal/infrastructure/config"
)

func TestNewWritesToFilePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log, err := New(config.LoggerConfig{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	log.Infow("hello", "key", "value")
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestNewDefaultsToStdout(t *testing.T) {
	for _, output := range []string{"", "stdout"} {
		log, err := New(config.LoggerConfig{Level: "debug", Format: "console", Output: output})
		require.NoError(t, err, "output=%q", output)
		log.Debugw("boot")
	}
}

func TestNewRejectsInvalidLevel(t *testing.T) {
	_, err := New(config.LoggerConfig{Level: "loud", Format: "json", Output: "stdout"})
	assert.Error(t, err)
}
