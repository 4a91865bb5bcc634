package logging

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Fields carries structured key/value pairs attached to a log entry.
type Fields map[string]interface{}

var (
	mu    sync.RWMutex
	level = zap.NewAtomicLevelAt(zap.InfoLevel)
	base  = newBase("json")
)

func newBase(format string) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if format == "console" {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(os.Stdout), level)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
}

// Configure sets the global level and encoding. Unknown levels fall back to info.
func Configure(lvl, format string) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(lvl))); err != nil {
		l = zapcore.InfoLevel
	}
	level.SetLevel(l)

	mu.Lock()
	base = newBase(format)
	mu.Unlock()
}

// UseCore replaces the output core. Tests use it with zaptest/observer.
func UseCore(core zapcore.Core) {
	mu.Lock()
	base = zap.New(core, zap.AddCallerSkip(1))
	mu.Unlock()
}

func current() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// LoggerV2 is a component-scoped structured logger.
type LoggerV2 struct {
	component string
}

// NewLoggerV2 creates a logger tagged with the given component name.
func NewLoggerV2(component string) *LoggerV2 {
	return &LoggerV2{component: component}
}

func (l *LoggerV2) z() *zap.Logger {
	return current().With(zap.String("component", l.component))
}

func (l *LoggerV2) Debug(msg string, fields ...Fields) {
	l.z().Debug(msg, toZap(fields)...)
}

func (l *LoggerV2) Info(msg string, fields ...Fields) {
	l.z().Info(msg, toZap(fields)...)
}

func (l *LoggerV2) Warn(msg string, fields ...Fields) {
	l.z().Warn(msg, toZap(fields)...)
}

func (l *LoggerV2) Error(msg string, fields ...Fields) {
	l.z().Error(msg, toZap(fields)...)
}

// Fatal logs and exits the process.
func (l *LoggerV2) Fatal(msg string, fields ...Fields) {
	l.z().Fatal(msg, toZap(fields)...)
}

// Info logs a structured message without a component.
func Info(msg string, fields ...Fields) {
	current().Info(msg, toZap(fields)...)
}

// Infof logs a formatted message.
// Deprecated: use LoggerV2 with Fields.
func Infof(format string, args ...interface{}) {
	current().Info(fmt.Sprintf(format, args...))
}

// Sync flushes buffered entries.
func Sync() {
	_ = current().Sync()
}

func toZap(fields []Fields) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields[0]))
	for _, f := range fields {
		keys := make([]string, 0, len(f))
		for k := range f {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, zap.Any(k, f[k]))
		}
	}
	return out
}
