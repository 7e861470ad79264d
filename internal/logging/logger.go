package logging

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"securewipe/internal/config"
)

// Logger zap-логгер и файл журнала, если он открыт
type Logger struct {
	*zap.Logger
	file *os.File
}

// New строит логгер: консоль в stderr, опционально JSON в cfg.File.
// stdout не используется, там идёт поток JSON-событий.
func New(cfg config.LoggingConfig, verbose bool) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	consoleEnc := zap.NewDevelopmentEncoderConfig()
	consoleEnc.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEnc), zapcore.Lock(os.Stderr), level),
	}

	l := &Logger{}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, errors.Wrapf(err, "failed to create log directory for %s", cfg.File)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open log file %s", cfg.File)
		}
		l.file = f
		fileEnc := zap.NewProductionEncoderConfig()
		fileEnc.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEnc), zapcore.AddSync(f), level))
	}

	l.Logger = zap.New(zapcore.NewTee(cores...))
	return l, nil
}

// ParseLevel принимает debug|info|warn|error без учёта регистра
func ParseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return level, errors.Wrapf(err, "invalid log level %q", s)
	}
	return level, nil
}

// Close сбрасывает буферы и закрывает файл журнала
func (l *Logger) Close() error {
	_ = l.Sync() // stderr не поддерживает fsync на части платформ
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
