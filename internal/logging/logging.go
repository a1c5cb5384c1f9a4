package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how verbosely the process logs.
type Options struct {
	Level string
	// File enables size-based rotation through lumberjack. Empty means stderr.
	File       string
	MaxSizeMB  int
	MaxAgeDays int
}

// New builds the JSON logger shared by every component of the process.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if s := strings.TrimSpace(opts.Level); s != "" {
		parsed, err := zapcore.ParseLevel(s)
		if err != nil {
			return nil, fmt.Errorf("logging: parse level: %w", err)
		}
		level = parsed
	}

	sink, err := writer(opts)
	if err != nil {
		return nil, err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), sink, level)
	return zap.New(core, zap.AddCaller()), nil
}

func writer(opts Options) (zapcore.WriteSyncer, error) {
	if strings.TrimSpace(opts.File) == "" {
		return zapcore.Lock(os.Stderr), nil
	}
	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, fmt.Errorf("logging: create log directory: %w", err)
	}
	maxSize := opts.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 100
	}
	maxAge := opts.MaxAgeDays
	if maxAge <= 0 {
		maxAge = 28
	}
	var w io.Writer = &lumberjack.Logger{
		Filename: opts.File,
		MaxSize:  maxSize,
		MaxAge:   maxAge,
		Compress: true,
	}
	return zapcore.AddSync(w), nil
}

// LogDuration lets you do: defer logging.LogDuration(logger, "name")()
func LogDuration(logger *zap.Logger, name string) func() {
	start := time.Now()
	return func() {
		logger.Debug("function timed",
			zap.String("func", name),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	}
}
