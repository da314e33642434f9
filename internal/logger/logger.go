package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents log severity
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelDebug:
		return "DEBUG"
	default:
		return "INFO"
	}
}

func (l Level) zap() zapcore.Level {
	switch l {
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	case LevelDebug:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

// Config selects the zap level, encoding and sinks
type Config struct {
	Level       string
	Encoding    string
	OutputPaths []string
}

// DefaultConfig logs INFO and above to stderr in console encoding, leaving
// stdout to program output.
func DefaultConfig() Config {
	return Config{
		Level:       "info",
		Encoding:    "console",
		OutputPaths: []string{"stderr"},
	}
}

// ParseLevel maps a LOG_LEVEL value onto a zap level. Empty means info.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
}

// Entry represents a single log entry
type Entry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// Buffer is a ring buffer for storing recent log messages
type Buffer struct {
	mu      sync.RWMutex
	entries []Entry
	size    int
	pos     int
}

// Logger writes through zap and keeps the most recent entries in a ring buffer
type Logger struct {
	zap    *zap.Logger
	buffer *Buffer
}

// New builds a zap logger from cfg with a ring buffer of bufferSize entries
func New(bufferSize int, cfg Config) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	encoding := cfg.Encoding
	if encoding == "" {
		encoding = "console"
	}
	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	zcfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         encoding,
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:  "message",
			LevelKey:    "level",
			TimeKey:     "time",
			EncodeTime:  zapcore.ISO8601TimeEncoder,
			EncodeLevel: zapcore.CapitalLevelEncoder,
		},
	}
	z, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return wrap(bufferSize, z), nil
}

// NewWithCore wraps an existing zap core
func NewWithCore(bufferSize int, core zapcore.Core) *Logger {
	return wrap(bufferSize, zap.New(core))
}

// Discard writes nowhere but still fills the ring buffer at INFO and above
func Discard(bufferSize int) *Logger {
	enc := zapcore.NewConsoleEncoder(zap.NewProductionEncoderConfig())
	return NewWithCore(bufferSize, zapcore.NewCore(enc, zapcore.AddSync(io.Discard), zapcore.InfoLevel))
}

func wrap(bufferSize int, z *zap.Logger) *Logger {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Logger{
		zap: z,
		buffer: &Buffer{
			entries: make([]Entry, bufferSize),
			size:    bufferSize,
		},
	}
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	lvl := level.zap()
	if !l.zap.Core().Enabled(lvl) {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if ce := l.zap.Check(lvl, msg); ce != nil {
		ce.Write()
	}

	l.buffer.mu.Lock()
	l.buffer.entries[l.buffer.pos] = Entry{
		Timestamp: time.Now().Format("2006-01-02 15:04:05.000"),
		Level:     level.String(),
		Message:   msg,
	}
	l.buffer.pos = (l.buffer.pos + 1) % l.buffer.size
	l.buffer.mu.Unlock()
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

// Zap exposes the underlying logger for structured fields
func (l *Logger) Zap() *zap.Logger {
	return l.zap
}

// Sync flushes buffered zap output
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// GetEntries returns all log entries in chronological order
func (l *Logger) GetEntries() []Entry {
	l.buffer.mu.RLock()
	defer l.buffer.mu.RUnlock()

	result := make([]Entry, 0, l.buffer.size)
	for i := 0; i < l.buffer.size; i++ {
		idx := (l.buffer.pos + i) % l.buffer.size
		if l.buffer.entries[idx].Timestamp != "" {
			result = append(result, l.buffer.entries[idx])
		}
	}
	return result
}
