package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "estate.log")
	l, err := New(path, "debug")
	require.NoError(t, err)

	l.Debug("navigate", zap.String("route", "/function"))
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"msg":"navigate"`)
	assert.Contains(t, out, `"route":"/function"`)
	assert.Contains(t, out, `"level":"debug"`)
}

func TestNewRespectsLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "estate.log")
	l, err := New(path, "warn")
	require.NoError(t, err)

	l.Info("hidden")
	l.Warn("shown")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "hidden"))
	assert.Contains(t, string(data), "shown")
}

func TestNewBadLevel(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "x.log"), "loud")
	assert.Error(t, err)
}

func TestNewEmptyPathIsNop(t *testing.T) {
	l, err := New("", "info")
	require.NoError(t, err)
	assert.NotNil(t, l)
	l.Info("nowhere")
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := zap.NewExample()
	assert.Same(t, l, OrNop(l))
}
