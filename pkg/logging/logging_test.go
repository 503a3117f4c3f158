package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
		wantErr  bool
	}{
		{input: "debug", expected: LogLevelDebug},
		{input: " INFO ", expected: LogLevelInfo},
		{input: "warn", expected: LogLevelWarn},
		{input: "error", expected: LogLevelError},
		{input: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, LogFormatAuto, format)

	format, err = ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, LogFormatJSON, format)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestLoggerFactory_CreateLoggerWithWriter(t *testing.T) {
	t.Run("json output is structured", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewLoggerFactory().CreateLoggerWithWriter(LogLevelInfo, LogFormatJSON, &buf)
		require.NoError(t, err)

		logger.Info("label created")
		require.NoError(t, logger.Sync())

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "label created", entry["msg"])
		assert.Equal(t, "info", entry["level"])
	})

	t.Run("console output is plain text", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewLoggerFactory().CreateLoggerWithWriter(LogLevelInfo, LogFormatConsole, &buf)
		require.NoError(t, err)

		logger.Info("label created")
		assert.Contains(t, buf.String(), "label created")
		assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
	})

	t.Run("level filters lower entries", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewLoggerFactory().CreateLoggerWithWriter(LogLevelWarn, LogFormatJSON, &buf)
		require.NoError(t, err)

		logger.Info("hidden")
		logger.Warn("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("unsupported level", func(t *testing.T) {
		_, err := NewLoggerFactory().CreateLoggerWithWriter(LogLevel("trace"), LogFormatJSON, &bytes.Buffer{})
		assert.Error(t, err)
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := NewLoggerFactory().CreateLoggerWithWriter(LogLevelInfo, LogFormat("xml"), &bytes.Buffer{})
		assert.Error(t, err)
	})
}

func TestLoggerFactory_ResolveFormat(t *testing.T) {
	file, err := os.CreateTemp(t.TempDir(), "stderr")
	require.NoError(t, err)
	defer file.Close()

	var checked []int
	terminal := &LoggerFactory{isTerminal: func(fd int) bool {
		checked = append(checked, fd)
		return true
	}}
	pipe := &LoggerFactory{isTerminal: func(int) bool { return false }}

	assert.Equal(t, LogFormatConsole, terminal.ResolveFormat(LogFormatAuto, file))
	assert.Equal(t, []int{int(file.Fd())}, checked)
	assert.Equal(t, LogFormatJSON, pipe.ResolveFormat(LogFormatAuto, file))
	assert.Equal(t, LogFormatJSON, terminal.ResolveFormat(LogFormatAuto, &bytes.Buffer{}))
	assert.Equal(t, LogFormatJSON, terminal.ResolveFormat(LogFormatJSON, file))
	assert.Equal(t, LogFormatConsole, pipe.ResolveFormat(LogFormatConsole, &bytes.Buffer{}))
}

func TestLoggerFactory_AutoFormatOnTerminal(t *testing.T) {
	file, err := os.CreateTemp(t.TempDir(), "stderr")
	require.NoError(t, err)
	defer file.Close()

	factory := &LoggerFactory{isTerminal: func(int) bool { return true }}
	logger, err := factory.CreateLoggerWithWriter(LogLevelInfo, LogFormatAuto, file)
	require.NoError(t, err)
	logger.Info("hello")

	content, err := os.ReadFile(file.Name())
	require.NoError(t, err)
	assert.Contains(t, string(content), "hello")
	assert.False(t, json.Valid(bytes.TrimSpace(content)))
}

func TestLoggerFactory_AutoFormatOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	factory := &LoggerFactory{isTerminal: func(int) bool { return true }}
	logger, err := factory.CreateLoggerWithWriter(LogLevelInfo, LogFormatAuto, &buf)
	require.NoError(t, err)
	logger.Info("hello")

	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestLoggerFactory_CreateLoggerAutoFormat(t *testing.T) {
	factory := &LoggerFactory{isTerminal: func(int) bool { return false }}
	logger, err := factory.CreateLogger(LogLevelInfo, LogFormatAuto)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
