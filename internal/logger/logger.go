package logger

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

	"support-relay/internal/config"
)

var (
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	// sugar is replaced by Setup; until then everything goes to stdout.
	sugar = newSugar(zapcore.AddSync(os.Stdout), "2006/01/02 15:04:05")
)

func newSugar(out zapcore.WriteSyncer, timeFormat string) *zap.SugaredLogger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout(timeFormat),
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), out, level)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
}

// createLogFilePath generates a log file path with the current date
func createLogFilePath(logDir, prefix string) string {
	currentDate := time.Now().Format("2006-01-02")
	return filepath.Join(logDir, fmt.Sprintf("%s-%s.log", prefix, currentDate))
}

// createRotatingLogger creates a lumberjack rotating logger
func createRotatingLogger(logFilePath string, cfg *config.Config) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    cfg.Logger.Rotation.MaxSize,
		MaxBackups: cfg.Logger.Rotation.MaxBackups,
		MaxAge:     cfg.Logger.Rotation.MaxAge,
		Compress:   cfg.Logger.Rotation.Compress,
	}
}

// Setup configures logging to output to both stdout and a rotating log file
func Setup(cfg *config.Config) error {
	logDir := cfg.Logger.Directory

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	SetLevel(cfg.Logger.Level)

	logFilePath := createLogFilePath(logDir, "support-relay")
	rotatingLogger := createRotatingLogger(logFilePath, cfg)
	out := zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout), zapcore.AddSync(rotatingLogger))
	sugar = newSugar(out, cfg.Logger.TimeFormat)

	// Route the standard logger (used by libraries and startup code) through zap.
	zap.RedirectStdLog(sugar.Desugar().WithOptions(zap.AddCallerSkip(-1)))

	Infof("Logging initialized: writing to %s", logFilePath)
	return nil
}

// SetLevel accepts DEBUG, INFO, WARNING, ERROR or FATAL; anything else means INFO.
func SetLevel(name string) {
	switch strings.ToUpper(name) {
	case "DEBUG":
		level.SetLevel(zapcore.DebugLevel)
	case "WARNING", "WARN":
		level.SetLevel(zapcore.WarnLevel)
	case "ERROR":
		level.SetLevel(zapcore.ErrorLevel)
	case "FATAL":
		level.SetLevel(zapcore.FatalLevel)
	default:
		level.SetLevel(zapcore.InfoLevel)
	}
}

// Level returns the current level name.
func Level() string {
	return level.Level().CapitalString()
}

// GetRotatingLogWriter returns a rotating log writer for custom loggers
func GetRotatingLogWriter(cfg *config.Config, prefix string) io.Writer {
	logFilePath := createLogFilePath(cfg.Logger.Directory, prefix)
	return io.MultiWriter(os.Stdout, createRotatingLogger(logFilePath, cfg))
}

// Sync flushes buffered entries.
func Sync() {
	_ = sugar.Sync()
}

func Debugf(format string, args ...interface{}) { sugar.Debugf(format, args...) }

func Info(args ...interface{}) { sugar.Info(args...) }

func Infof(format string, args ...interface{}) { sugar.Infof(format, args...) }

func Warning(args ...interface{}) { sugar.Warn(args...) }

func Warningf(format string, args ...interface{}) { sugar.Warnf(format, args...) }

func Error(args ...interface{}) { sugar.Error(args...) }

func Errorf(format string, args ...interface{}) { sugar.Errorf(format, args...) }

// Fatalf logs and exits the process.
func Fatalf(format string, args ...interface{}) { sugar.Fatalf(format, args...) }
