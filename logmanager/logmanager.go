package logmanager

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	Level    string
	FilePath string
}

// Manager owns the process logger and the optional log file behind it.
type Manager struct {
	logger  *zap.Logger
	logFile *os.File
}

// New builds a logger writing human-readable lines to stdout and, when
// FilePath is set, JSON lines to that file.
func New(opts Options) (*Manager, error) {
	level := ParseLevel(opts.Level)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.AddSync(os.Stdout),
			level,
		),
	}

	m := &Manager{}
	if opts.FilePath != "" {
		logFile, err := os.OpenFile(opts.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		m.logFile = logFile
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(logFile),
			level,
		))
	}

	m.logger = zap.New(zapcore.NewTee(cores...))
	return m, nil
}

func (m *Manager) Logger() *zap.Logger {
	return m.logger
}

func (m *Manager) Close() error {
	_ = m.logger.Sync()
	if m.logFile == nil {
		return nil
	}
	if err := m.logFile.Sync(); err != nil {
		m.logFile.Close()
		return err
	}
	return m.logFile.Close()
}

// ParseLevel maps a config level name to a zap level. Unknown names are info.
func ParseLevel(name string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
