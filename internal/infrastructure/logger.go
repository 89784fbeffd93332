package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"accidentcli/internal/config"
)

// Log destinations accepted by LoggingConfig.Output
const (
	LogOutputConsole = "console"
	LogOutputFile    = "file"
	LogOutputBoth    = "both"
)

// contextKey is a type for context keys
type contextKey string

// TraceIDContextKey is the key for storing trace ID in context
const TraceIDContextKey contextKey = "trace_id"

// runLogger is the logger of the current invocation
var runLogger struct {
	once   sync.Once
	logger *slog.Logger
}

// logFile is the file sink of the run logger, if any
var logFile struct {
	mu sync.Mutex
	f  *os.File
}

// InitializeLogger builds the invocation logger once and installs it as the
// slog default. Console records go to stderr so stdout only carries command
// results.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	var err error
	runLogger.once.Do(func() {
		runLogger.logger, err = NewLogger(cfg, os.Stderr)
		if runLogger.logger != nil {
			slog.SetDefault(runLogger.logger)
		}
	})
	return runLogger.logger, err
}

// GetLogger returns the invocation logger, or the slog default before
// InitializeLogger ran.
func GetLogger() *slog.Logger {
	if runLogger.logger == nil {
		return slog.Default()
	}
	return runLogger.logger
}

// NewLogger builds a JSON logger for cfg. Records carry the trace ID found
// in their context.
func NewLogger(cfg config.LoggingConfig, console io.Writer) (*slog.Logger, error) {
	out, err := logWriter(cfg, console)
	if err != nil {
		return nil, err
	}
	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		AddSource: true,
		Level:     parseLogLevel(cfg.Level),
	})
	return slog.New(traceIDHandler{handler}), nil
}

// logWriter resolves the configured destination. A file destination becomes
// the file closed by CloseLogFile.
func logWriter(cfg config.LoggingConfig, console io.Writer) (io.Writer, error) {
	output := strings.ToLower(cfg.Output)
	if output != LogOutputFile && output != LogOutputBoth {
		return console, nil
	}

	f, err := openLogFile(cfg.FilePath)
	if err != nil {
		return nil, err
	}
	logFile.mu.Lock()
	logFile.f = f
	logFile.mu.Unlock()

	if output == LogOutputBoth {
		return io.MultiWriter(console, f), nil
	}
	return f, nil
}

// traceIDHandler stamps trace_id on records whose context carries one
type traceIDHandler struct {
	slog.Handler
}

func (h traceIDHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := GetTraceID(ctx); id != "" {
		r.AddAttrs(slog.String("trace_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h traceIDHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return traceIDHandler{h.Handler.WithAttrs(attrs)}
}

func (h traceIDHandler) WithGroup(name string) slog.Handler {
	return traceIDHandler{h.Handler.WithGroup(name)}
}

// parseLogLevel maps a config level to slog. Unknown names log at info.
func parseLogLevel(level string) slog.Level {
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// WithTraceID adds a trace ID to the context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDContextKey, traceID)
}

// GetTraceID retrieves the trace ID from context
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(TraceIDContextKey).(string)
	return id
}

// CloseLogFile flushes and closes the log file sink. The CLI calls it after
// every command; it is a no-op for console logging.
func CloseLogFile() error {
	logFile.mu.Lock()
	defer logFile.mu.Unlock()

	if logFile.f == nil {
		return nil
	}
	err := logFile.f.Close()
	logFile.f = nil
	return err
}

// resetLogger drops the invocation logger so the next InitializeLogger
// builds a fresh one
func resetLogger() {
	_ = CloseLogFile()
	runLogger.logger = nil
	runLogger.once = sync.Once{}
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return f, nil
}
