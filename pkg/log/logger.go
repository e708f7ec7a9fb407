package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	scierrors "github.com/YuminosukeSato/scitree/pkg/errors"
)

const (
	ErrAttrKey = "error"
)

var (
	providerMu      sync.RWMutex
	defaultProvider LoggerProvider = NewZerologProvider(os.Stderr, LevelInfo)
)

func init() {
	scierrors.SetZerologWarnFunc(emitWarning)
}

// GetLogger returns the default logger of the current provider.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return defaultProvider.GetLogger()
}

// GetLoggerWithName returns a logger tagged with the given component name.
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return defaultProvider.GetLoggerWithName(name)
}

// SetLevel sets the minimum level of the current provider.
func SetLevel(level Level) {
	providerMu.RLock()
	defer providerMu.RUnlock()
	defaultProvider.SetLevel(level)
}

// SetProvider replaces the package-level provider. Loggers obtained earlier
// keep writing to the provider they were created from.
func SetProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	defaultProvider = p
}

// SetupLogger installs a zerolog provider writing to stderr at the given level.
// With console set, records are rendered for humans instead of as JSON lines.
func SetupLogger(level string, console bool) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	var w io.Writer = os.Stderr
	if console {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	SetProvider(NewZerologProvider(w, lvl))
	return nil
}

// ParseLevel converts "debug", "info", "warn" or "error" to a Level.
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, scierrors.NewValidationError("log_level", "must be one of debug, info, warn, error", level)
	}
}

// ZerologProvider is a LoggerProvider backed by zerolog.
type ZerologProvider struct {
	mu   sync.RWMutex
	root zerolog.Logger
}

// NewZerologProvider creates a provider emitting JSON lines to w.
func NewZerologProvider(w io.Writer, level Level) *ZerologProvider {
	return &ZerologProvider{
		root: zerolog.New(w).With().Timestamp().Logger().Level(toZerologLevel(level)),
	}
}

// GetLogger implements LoggerProvider.
func (p *ZerologProvider) GetLogger() Logger {
	return &zerologLogger{provider: p}
}

// GetLoggerWithName implements LoggerProvider.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	return &zerologLogger{provider: p, context: []any{ComponentKey, name}}
}

// SetLevel implements LoggerProvider. It also affects loggers handed out earlier.
func (p *ZerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.root = p.root.Level(toZerologLevel(level))
}

// SetOutput redirects all loggers of this provider to w.
func (p *ZerologProvider) SetOutput(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.root = p.root.Output(w)
}

func (p *ZerologProvider) logger() zerolog.Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.root
}

// zerologLogger resolves the provider's root on every record so that level and
// output changes apply to existing loggers.
type zerologLogger struct {
	provider *ZerologProvider
	context  []any
}

func (l *zerologLogger) Debug(msg string, fields ...any) { l.log(zerolog.DebugLevel, msg, fields) }
func (l *zerologLogger) Info(msg string, fields ...any)  { l.log(zerolog.InfoLevel, msg, fields) }
func (l *zerologLogger) Warn(msg string, fields ...any)  { l.log(zerolog.WarnLevel, msg, fields) }
func (l *zerologLogger) Error(msg string, fields ...any) { l.log(zerolog.ErrorLevel, msg, fields) }

func (l *zerologLogger) With(fields ...any) Logger {
	ctx := make([]any, 0, len(l.context)+len(fields))
	ctx = append(ctx, l.context...)
	ctx = append(ctx, fields...)
	return &zerologLogger{provider: l.provider, context: ctx}
}

func (l *zerologLogger) Enabled(_ context.Context, level Level) bool {
	root := l.provider.logger()
	lvl := toZerologLevel(level)
	return lvl >= root.GetLevel() && lvl >= zerolog.GlobalLevel()
}

func (l *zerologLogger) log(level zerolog.Level, msg string, fields []any) {
	root := l.provider.logger()
	ev := root.WithLevel(level)
	if ev == nil {
		return
	}
	err, kv := splitError(fields)
	if err != nil {
		ev = ev.Err(err)
		if st := extractStacktrace(err); st != "" {
			ev = ev.Str(StacktraceKey, st)
		}
	}
	if len(l.context) > 0 {
		ev = ev.Fields(stringifyKeys(l.context))
	}
	if len(kv) > 0 {
		ev = ev.Fields(stringifyKeys(kv))
	}
	ev.Msg(msg)
}

// splitError removes a leading error value, the convention used by Logger.Error.
func splitError(fields []any) (error, []any) {
	if len(fields)%2 == 1 {
		if err, ok := fields[0].(error); ok {
			return err, fields[1:]
		}
	}
	return nil, fields
}

func stringifyKeys(fields []any) []any {
	out := make([]any, 0, len(fields))
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			key = fmt.Sprint(fields[i])
		}
		value := fields[i+1]
		if err, ok := value.(error); ok {
			value = err.Error()
		}
		out = append(out, key, value)
	}
	return out
}

func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// emitWarning routes pkg/errors.Warn into the structured log.
func emitWarning(w error) {
	providerMu.RLock()
	p := defaultProvider
	providerMu.RUnlock()

	zp, ok := p.(*ZerologProvider)
	if !ok {
		p.GetLoggerWithName("warnings").Warn(w.Error())
		return
	}
	root := zp.logger()
	ev := root.Warn().Str(ComponentKey, "warnings")
	if obj, ok := w.(zerolog.LogObjectMarshaler); ok {
		ev = ev.EmbedObject(obj)
	}
	ev.Msg(w.Error())
}
