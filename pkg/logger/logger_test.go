package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_InvalidLevel(t *testing.T) {
	err := Init("loud", "json", "stdout")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestInit_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, Init("debug", "json", path))

	Info("session started")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "session started")
	assert.Contains(t, string(data), `"level":"info"`)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		limit    int
		expected string
	}{
		{name: "short text", input: "Python Django", limit: 20, expected: "Python Django"},
		{name: "trimmed", input: "  Go  ", limit: 10, expected: "Go"},
		{name: "cut", input: "abcdefghij", limit: 4, expected: "abcd..."},
		{name: "zero limit", input: "anything", limit: 0, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Truncate(tt.input, tt.limit))
		})
	}
}
