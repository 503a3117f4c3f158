// Package logging builds the zap loggers used by labelsync commands.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// LogLevel enumerates supported logging granularities
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat enumerates supported logger output encodings
type LogFormat string

const (
	LogFormatJSON    LogFormat = "json"
	LogFormatConsole LogFormat = "console"
	// LogFormatAuto selects console on a terminal and json otherwise
	LogFormatAuto LogFormat = "auto"
)

var logLevelMapping = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

// LoggerFactory builds zap.Logger instances with consistent configuration
type LoggerFactory struct {
	isTerminal func(fd int) bool
}

// NewLoggerFactory constructs a new logger factory
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{isTerminal: term.IsTerminal}
}

// ParseLevel converts a configured level name into a LogLevel
func ParseLevel(value string) (LogLevel, error) {
	level := LogLevel(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := logLevelMapping[level]; !ok {
		return "", fmt.Errorf("unsupported log level: %s", value)
	}
	return level, nil
}

// ParseFormat converts a configured format name into a LogFormat
func ParseFormat(value string) (LogFormat, error) {
	switch format := LogFormat(strings.ToLower(strings.TrimSpace(value))); format {
	case LogFormatJSON, LogFormatConsole, LogFormatAuto:
		return format, nil
	case "":
		return LogFormatAuto, nil
	default:
		return "", fmt.Errorf("unsupported log format: %s", value)
	}
}

// CreateLogger produces a logger writing to stderr
func (factory *LoggerFactory) CreateLogger(level LogLevel, format LogFormat) (*zap.Logger, error) {
	return factory.CreateLoggerWithWriter(level, format, os.Stderr)
}

// ResolveFormat maps LogFormatAuto to console when w is a terminal and to
// json otherwise. Writers without a file descriptor are never terminals.
func (factory *LoggerFactory) ResolveFormat(format LogFormat, w io.Writer) LogFormat {
	if format != LogFormatAuto {
		return format
	}
	if f, ok := w.(interface{ Fd() uintptr }); ok && factory.isTerminal(int(f.Fd())) {
		return LogFormatConsole
	}
	return LogFormatJSON
}

// CreateLoggerWithWriter produces a logger writing to w
func (factory *LoggerFactory) CreateLoggerWithWriter(level LogLevel, format LogFormat, w io.Writer) (*zap.Logger, error) {
	zapLevel, ok := logLevelMapping[level]
	if !ok {
		return nil, fmt.Errorf("unsupported log level: %s", level)
	}

	var encoder zapcore.Encoder
	format = factory.ResolveFormat(format, w)
	switch format {
	case LogFormatJSON:
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	case LogFormatConsole:
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		encoderConfig.EncodeCaller = nil
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(w)), zap.NewAtomicLevelAt(zapLevel))
	return zap.New(core), nil
}
