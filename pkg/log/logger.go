package log

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/YuminosukeSato/foretune/pkg/errors"
)

// SetupLogger function setup logger.
func SetupLogger(loglevel string) {
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     ToLogLevel(loglevel),
	}
	handler := slog.NewJSONHandler(os.Stdout, &ops)
	errFmtHandler := WrapByErrFmtHandler(handler)
	slog.SetDefault(slog.New(errFmtHandler))
}

// ParseLevel converts a level name to a Level. Matching is
// case-insensitive, so "INFO" and "info" both work.
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, errors.Newf("invalid log level: %q", level)
	}
}

// ToLogLevel is the panicking form of ParseLevel, for call sites whose
// input has already been validated.
func ToLogLevel(level string) slog.Level {
	l, err := ParseLevel(level)
	if err != nil {
		panic(fmt.Sprintf("invalid log level :%s", level))
	}
	return slog.Level(l)
}

const (
	ErrAttrKey        = "error"
	ErrMessageAttrKey = "error.message"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

// slogLogger adapts *slog.Logger to the package Logger interface.
type slogLogger struct {
	logger *slog.Logger
	level  *slog.LevelVar
}

func (s *slogLogger) Debug(msg string, fields ...any) { s.logger.Debug(msg, fields...) }
func (s *slogLogger) Info(msg string, fields ...any)  { s.logger.Info(msg, fields...) }
func (s *slogLogger) Warn(msg string, fields ...any)  { s.logger.Warn(msg, fields...) }
func (s *slogLogger) Error(msg string, fields ...any) { s.logger.Error(msg, fields...) }

func (s *slogLogger) With(fields ...any) Logger {
	return &slogLogger{logger: s.logger.With(fields...), level: s.level}
}

func (s *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return s.logger.Enabled(ctx, slog.Level(level))
}

// defaultProvider is the package-level LoggerProvider backed by log/slog.
// Output goes to stderr so library logs never mix with a caller's stdout
// reporting.
type defaultProvider struct {
	once     sync.Once
	levelVar *slog.LevelVar
	logger   *slogLogger
}

func (p *defaultProvider) init() {
	p.once.Do(func() {
		p.levelVar = &slog.LevelVar{}
		p.levelVar.Set(slog.LevelInfo)
		handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: p.levelVar})
		p.logger = &slogLogger{
			logger: slog.New(WrapByErrFmtHandler(handler)),
			level:  p.levelVar,
		}
	})
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *defaultProvider) GetLogger() Logger {
	p.init()
	return p.logger
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *defaultProvider) GetLoggerWithName(name string) Logger {
	p.init()
	return p.logger.With(ComponentKey, name)
}

// SetLevel implements LoggerProvider.SetLevel.
func (p *defaultProvider) SetLevel(level Level) {
	p.init()
	p.levelVar.Set(slog.Level(level))
}

var provider LoggerProvider = &defaultProvider{}

// SetProvider replaces the package-level provider. Intended for tests and
// applications that need a custom logging backend.
func SetProvider(p LoggerProvider) {
	provider = p
}

// GetLogger returns the default logger from the package-level provider.
func GetLogger() Logger {
	return provider.GetLogger()
}

// GetLoggerWithName returns a named logger from the package-level provider.
func GetLoggerWithName(name string) Logger {
	return provider.GetLoggerWithName(name)
}

// SetLevel sets the minimum level on the package-level provider.
func SetLevel(level Level) {
	provider.SetLevel(level)
}
