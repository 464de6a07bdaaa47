package log

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	cerrors "github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/YuminosukeSato/descent/pkg/errors"
)

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
	componentAttrKey  = "component"
)

// Provider is the zerolog-backed LoggerProvider.
// Loggers obtained from a Provider observe later SetLevel calls.
type Provider struct {
	base  zerolog.Logger
	level atomic.Int64
}

// NewProvider creates a provider writing JSON lines to w.
func NewProvider(w io.Writer, level Level) *Provider {
	p := &Provider{base: zerolog.New(w).With().Timestamp().Logger()}
	p.level.Store(int64(level))
	return p
}

// NewConsoleProvider creates a provider writing human-readable lines to w.
func NewConsoleProvider(w io.Writer, level Level) *Provider {
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return NewProvider(cw, level)
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *Provider) GetLogger() Logger {
	return &zlogger{z: p.base, p: p}
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *Provider) GetLoggerWithName(name string) Logger {
	return &zlogger{z: p.base.With().Str(componentAttrKey, name).Logger(), p: p}
}

// SetLevel implements LoggerProvider.SetLevel.
func (p *Provider) SetLevel(level Level) {
	p.level.Store(int64(level))
}

// Level returns the current minimum level.
func (p *Provider) Level() Level {
	return Level(p.level.Load())
}

type zlogger struct {
	z zerolog.Logger
	p *Provider
}

func (l *zlogger) Debug(msg string, fields ...any) { l.emit(LevelDebug, msg, fields) }
func (l *zlogger) Info(msg string, fields ...any)  { l.emit(LevelInfo, msg, fields) }
func (l *zlogger) Warn(msg string, fields ...any)  { l.emit(LevelWarn, msg, fields) }
func (l *zlogger) Error(msg string, fields ...any) { l.emit(LevelError, msg, fields) }

func (l *zlogger) With(fields ...any) Logger {
	ctx := l.z.With()
	if err, rest, ok := splitLeadingError(fields); ok {
		ctx = ctx.AnErr(ErrAttrKey, err)
		fields = rest
	}
	return &zlogger{z: ctx.Fields(normalize(fields)).Logger(), p: l.p}
}

func (l *zlogger) Enabled(_ context.Context, level Level) bool {
	return level >= l.p.Level()
}

func (l *zlogger) emit(level Level, msg string, fields []any) {
	if level < l.p.Level() {
		return
	}
	var e *zerolog.Event
	switch level {
	case LevelDebug:
		e = l.z.Debug()
	case LevelInfo:
		e = l.z.Info()
	case LevelWarn:
		e = l.z.Warn()
	default:
		e = l.z.Error()
	}
	if err, rest, ok := splitLeadingError(fields); ok {
		e = e.AnErr(ErrAttrKey, err)
		if st := extractStacktrace(err); st != "" {
			e = e.Str(StacktraceAttrKey, st)
		}
		fields = rest
	}
	e.Fields(normalize(fields)).Msg(msg)
}

// splitLeadingError pulls an error passed as the first field.
func splitLeadingError(fields []any) (error, []any, bool) {
	if len(fields) == 0 {
		return nil, fields, false
	}
	if err, ok := fields[0].(error); ok {
		return err, fields[1:], true
	}
	return nil, fields, false
}

// normalize coerces keys to strings and drops a dangling key.
func normalize(fields []any) []interface{} {
	out := make([]interface{}, 0, len(fields))
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		out = append(out, key, fields[i+1])
	}
	return out
}

func extractStacktrace(err error) string {
	safeDetails := cerrors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}

var (
	defaultMu       sync.RWMutex
	defaultProvider LoggerProvider = NewProvider(os.Stderr, LevelInfo)
)

// SetProvider replaces the global provider. Tests use it with a
// TestLoggerProvider to capture output.
func SetProvider(p LoggerProvider) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultProvider = p
}

// GetProvider returns the global provider.
func GetProvider() LoggerProvider {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultProvider
}

// GetLogger returns a logger from the global provider.
func GetLogger() Logger {
	return GetProvider().GetLogger()
}

// GetLoggerWithName returns a named logger from the global provider.
func GetLoggerWithName(name string) Logger {
	return GetProvider().GetLoggerWithName(name)
}

// SetLevel sets the level of the global provider.
func SetLevel(level Level) {
	GetProvider().SetLevel(level)
}

// Setup installs a zerolog provider as the global provider and routes
// library warnings such as ConvergenceWarning through it.
// format is "json" or "console".
func Setup(level, format string, w io.Writer) error {
	lvl, err := ToLogLevel(level)
	if err != nil {
		return err
	}
	var p *Provider
	switch format {
	case "", "json":
		p = NewProvider(w, lvl)
	case "console":
		p = NewConsoleProvider(w, lvl)
	default:
		return errors.NewConfigurationError("log_format", "must be json or console", format)
	}
	SetProvider(p)

	warnLogger := p.GetLoggerWithName("warnings")
	errors.SetZerologWarnFunc(func(warning error) {
		warnLogger.Warn(warning.Error(), ErrorTypeKey, warningType(warning))
	})
	return nil
}

func warningType(w error) string {
	var cw *errors.ConvergenceWarning
	if errors.As(w, &cw) {
		return "ConvergenceWarning"
	}
	return "Warning"
}

// ToLogLevel parses a level name.
func ToLogLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "info", "":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, errors.NewConfigurationError("log_level", "must be one of debug, info, warn, error", level)
	}
}
