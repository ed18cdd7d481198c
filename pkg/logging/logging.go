package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// FileLogger returns a logrus logger that writes JSON lines to the given
// path and plain text to stderr. The caller owns the returned file handle.
func FileLogger(level logrus.Level, logPath string) (*os.File, *logrus.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}

	fileLogger := &logrus.Logger{
		Out:       f,
		Formatter: &logrus.JSONFormatter{},
		Hooks:     make(logrus.LevelHooks),
		Level:     level,
	}

	consoleLogger := &logrus.Logger{
		Out:       os.Stderr,
		Formatter: &logrus.TextFormatter{FullTimestamp: true},
		Hooks:     make(logrus.LevelHooks),
		Level:     level,
	}
	consoleLogger.AddHook(&writerHook{
		Writer:    f,
		Formatter: fileLogger.Formatter,
		LogLevels: logrus.AllLevels,
	})

	return f, consoleLogger, nil
}

// ConsoleLogger returns a stderr-only logger, used by CLI tools and tests.
func ConsoleLogger(level logrus.Level) *logrus.Logger {
	return &logrus.Logger{
		Out:       os.Stderr,
		Formatter: &logrus.TextFormatter{FullTimestamp: true},
		Hooks:     make(logrus.LevelHooks),
		Level:     level,
	}
}

type writerHook struct {
	Writer    io.Writer
	Formatter logrus.Formatter
	LogLevels []logrus.Level
}

func (h *writerHook) Fire(entry *logrus.Entry) error {
	line, err := h.Formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.Writer.Write(line)
	return err
}

func (h *writerHook) Levels() []logrus.Level {
	return h.LogLevels
}
