package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/scrobbled/scrobbled/internal/config"
)

// New builds the process logger: a console core on stderr plus an optional
// rotating JSON file core.
func New(cfg config.LogConfig, verbose, jsonConsole bool) (*zap.Logger, error) {
	level := parseLevel(cfg.Level)
	if verbose {
		level = zapcore.DebugLevel
	}

	var consoleEncoder zapcore.Encoder
	if jsonConsole {
		consoleEncoder = zapcore.NewJSONEncoder(encoderConfig())
	} else {
		human := encoderConfig()
		human.EncodeLevel = zapcore.CapitalLevelEncoder
		human.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		consoleEncoder = zapcore.NewConsoleEncoder(human)
	}
	consoleCore := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stderr), level)

	fileCore, err := newFileCore(cfg, level)
	if err != nil {
		return nil, err
	}

	core := consoleCore
	if fileCore != nil {
		core = zapcore.NewTee(consoleCore, fileCore)
	}

	return zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// NewFileOnly builds a logger that writes only to the rotating file, or a
// no-op logger when no file is configured. The watch UI owns the terminal,
// so nothing else may write to it.
func NewFileOnly(cfg config.LogConfig, verbose bool) (*zap.Logger, error) {
	level := parseLevel(cfg.Level)
	if verbose {
		level = zapcore.DebugLevel
	}

	fileCore, err := newFileCore(cfg, level)
	if err != nil {
		return nil, err
	}
	if fileCore == nil {
		return zap.NewNop(), nil
	}
	return zap.New(fileCore, zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// newFileCore returns a rotating JSON core, or nil when no file is configured.
func newFileCore(cfg config.LogConfig, level zapcore.Level) (zapcore.Core, error) {
	if cfg.File == "" {
		return nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, err
	}

	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	})
	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), writer, level), nil
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

func parseLevel(s string) zapcore.Level {
	switch s {
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
