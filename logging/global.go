// Package logging wraps log/slog behind package-level helpers and writes to
// the console and to a weekly rotating file.
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/giygas/pharmacy-inventory-api/config"
)

// LoggingService owns the process logger and the file it writes to.
type LoggingService struct {
	Logger *slog.Logger
	file   io.Closer
}

// Options configures InitLoggerWithOptions. A zero Options logs to the
// console only, at info level.
type Options struct {
	Dir            string // empty disables the log file
	Env            config.Environment
	Level          string // LOG_LEVEL; empty keeps the environment default
	Verbose        bool   // lets test runs print info logs
	RetentionWeeks int
	MaxFileSize    int64
}

var (
	DefaultLoggingService *LoggingService
	mu                    sync.RWMutex
	fallback              = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
)

// InitLogger initializes the global logger writing to the console and, when
// logDir is not empty, to a rotating file in logDir.
func InitLogger(logDir string) {
	InitLoggerWithOptions(Options{Dir: logDir})
}

// InitLoggerWithOptions replaces the global logger. The previous log file,
// if any, is closed.
func InitLoggerWithOptions(opts Options) *LoggingService {
	console := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: GetConsoleLogLevel(opts.Env, opts.Level, opts.Verbose),
	})

	svc := &LoggingService{Logger: slog.New(console)}

	if opts.Dir != "" {
		weeks := opts.RetentionWeeks
		if weeks <= 0 {
			weeks = 4
		}
		file, err := OpenRotatingFile(opts.Dir, weeks, opts.MaxFileSize)
		if err != nil {
			svc.Logger.Error("Failed to open log file, logging to console only", "dir", opts.Dir, "error", err)
		} else {
			fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: GetFileLogLevel()})
			svc.Logger = slog.New(&fanoutHandler{handlers: []slog.Handler{console, fileHandler}})
			svc.file = file
		}
	}

	mu.Lock()
	previous := DefaultLoggingService
	DefaultLoggingService = svc
	mu.Unlock()

	if previous != nil && previous.file != nil {
		_ = previous.file.Close()
	}

	slog.SetDefault(svc.Logger)
	return svc
}

// Close flushes and closes the global log file.
func Close() error {
	mu.Lock()
	svc := DefaultLoggingService
	DefaultLoggingService = nil
	mu.Unlock()

	if svc == nil || svc.file == nil {
		return nil
	}
	return svc.file.Close()
}

// Logger returns the global logger, or a stderr logger before InitLogger.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		return fallback
	}
	return DefaultLoggingService.Logger
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetConsoleLogLevel picks the console level. An explicit LOG_LEVEL wins,
// except under tests where output stays at error unless verbose.
func GetConsoleLogLevel(env config.Environment, level string, verbose bool) slog.Level {
	if env == config.EnvTest {
		if verbose {
			return slog.LevelInfo
		}
		return slog.LevelError
	}

	if level != "" {
		return parseLogLevel(level)
	}

	switch env {
	case config.EnvProduction, config.EnvStaging:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// GetFileLogLevel returns the level of the JSON log file, which keeps
// everything.
func GetFileLogLevel() slog.Level {
	return slog.LevelDebug
}

func Info(msg string, args ...any)  { Logger().Info(msg, args...) }
func Warn(msg string, args ...any)  { Logger().Warn(msg, args...) }
func Error(msg string, args ...any) { Logger().Error(msg, args...) }
func Debug(msg string, args ...any) { Logger().Debug(msg, args...) }

// fanoutHandler sends each record to every handler that accepts its level.
type fanoutHandler struct {
	handlers []slog.Handler
}

func (f *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (f *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &fanoutHandler{handlers: next}
}

func (f *fanoutHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithGroup(name)
	}
	return &fanoutHandler{handlers: next}
}
