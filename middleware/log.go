package middleware

import (
	"context"
	"log/slog"
	"strings"

	"github.com/fxsml/dispatch"
)

// LogLevel represents the severity level for logging messages.
type LogLevel string

const (
	// LogLevelDebug is used for detailed information.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is used for general information messages.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn is used for warning conditions.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError is used for error conditions.
	LogLevelError LogLevel = "error"
)

// LogConfig configures LogErrors and LogException.
type LogConfig struct {
	// Logger receives the log records. Default: slog.Default().
	Logger dispatch.Logger
	// Args are additional arguments to include in all log messages.
	Args []any
	// Level is the level faults are logged at. Default: LogLevelError.
	Level LogLevel
	// Message is the logged message.
	// Defaults to "Request failed" for LogErrors and "Request fault" for LogException.
	Message string
}

func (c LogConfig) parse(message string) LogConfig {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	c.Level = LogLevel(strings.ToLower(string(c.Level)))
	if c.Level == "" {
		c.Level = LogLevelError
	}
	if c.Message == "" {
		c.Message = message
	}
	return c
}

func (c LogConfig) logFunc() func(msg string, args ...any) {
	switch c.Level {
	case LogLevelDebug:
		return c.Logger.Debug
	case LogLevelInfo:
		return c.Logger.Info
	case LogLevelWarn:
		return c.Logger.Warn
	default:
		return c.Logger.Error
	}
}

func appendArgs(args ...[]any) []any {
	l := 0
	for _, a := range args {
		l += len(a)
	}
	result := make([]any, 0, l)
	for _, a := range args {
		result = append(result, a...)
	}
	return result
}

// LogErrors logs every error returned by the inner pipeline and returns it
// unchanged.
func LogErrors[Req, Res any](cfg LogConfig) dispatch.BehaviorFunc[Req, Res] {
	cfg = cfg.parse("Request failed")
	log := cfg.logFunc()
	return func(ctx context.Context, req Req, next dispatch.NextFunc[Res]) (Res, error) {
		res, err := next()
		if err != nil {
			log(cfg.Message, appendArgs(cfg.Args, []any{
				"request", RequestName(req),
				"error", err,
			})...)
		}
		return res, err
	}
}

// LogException returns an exception action logging every fault together with
// its type. It never fails.
func LogException(cfg LogConfig) dispatch.ExceptionActionFunc[any] {
	cfg = cfg.parse("Request fault")
	log := cfg.logFunc()
	return func(ctx context.Context, req any, err error) error {
		log(cfg.Message, appendArgs(cfg.Args, []any{
			"request", RequestName(req),
			"error_type", RequestName(err),
			"error", err,
		})...)
		return nil
	}
}
