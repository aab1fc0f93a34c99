// Package httplog provides the structured logger used for trace-level
// diagnostics in the request pipeline (send.go). It is a
// thin wrapper over zap, configurable to either stdout or a rotated log
// file.
package httplog

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level names a logging level, independent of zapcore's own type so
// callers of this package don't need to import zap directly.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

func toZapLevel(l Level) zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.DebugLevel
	}
}

// Options configures a Logger.
type Options struct {
	Stdout     bool
	Level      Level
	Filename   string
	MaxSize    int // megabytes
	MaxAge     int // days
	MaxBackups int
}

// Logger is the structured logger used for connect/redirect tracing. The zero value discards everything; use New to build one
// that actually writes somewhere.
type Logger struct {
	sugared *zap.SugaredLogger
}

func (l Logger) Debugf(template string, args ...any) {
	if l.sugared == nil {
		return
	}
	l.sugared.Debugf(template, args...)
}

func (l Logger) Infof(template string, args ...any) {
	if l.sugared == nil {
		return
	}
	l.sugared.Infof(template, args...)
}

func (l Logger) Warnf(template string, args ...any) {
	if l.sugared == nil {
		return
	}
	l.sugared.Warnf(template, args...)
}

func (l Logger) Errorf(template string, args ...any) {
	if l.sugared == nil {
		return
	}
	l.sugared.Errorf(template, args...)
}

// New builds a Logger per opt. With opt.Stdout, logs go to stdout;
// otherwise they're written through a lumberjack rotating file sink at
// opt.Filename.
func New(opt Options) (Logger, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format("2006-01-02T15:04:05.000Z"))
	}
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	var w zapcore.WriteSyncer
	if opt.Stdout {
		w = zapcore.AddSync(os.Stdout)
	} else {
		if err := os.MkdirAll(filepath.Dir(opt.Filename), 0o755); err != nil {
			return Logger{}, err
		}
		w = zapcore.AddSync(&lumberjack.Logger{
			Filename:   opt.Filename,
			MaxSize:    opt.MaxSize,
			MaxBackups: opt.MaxBackups,
			MaxAge:     opt.MaxAge,
			LocalTime:  true,
		})
	}

	core := zapcore.NewCore(encoder, w, toZapLevel(opt.Level))
	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return Logger{sugared: logger.Sugar()}, nil
}

// Nop is a Logger that discards everything, used as the pipeline's
// default when the caller hasn't configured one.
var Nop = Logger{}
