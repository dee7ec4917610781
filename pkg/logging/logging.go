// pkg/logging/logging.go
package logging

import (
	"fmt"
	"io"
	stdLog "log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// logWriter stores the current log writer globally
	logWriter io.Writer
)

// stdLogWriter forwards stdlib log output into zerolog at debug level.
type stdLogWriter struct {
	logger zerolog.Logger
}

func (w *stdLogWriter) Write(p []byte) (n int, err error) {
	message := strings.TrimSuffix(string(p), "\n")

	// Expected shape: "2025/05/23 14:40:15 file.go:35: message"
	parts := strings.SplitN(message, " ", 4)
	if len(parts) == 4 {
		if stdTime, err := time.Parse("2006/01/02 15:04:05", parts[0]+" "+parts[1]); err == nil {
			w.logger.Debug().
				Str("file", strings.TrimSuffix(parts[2], ":")).
				Time("time", stdTime).
				Msg(parts[3])
			return len(p), nil
		}
	}

	w.logger.Debug().Msg(message)
	return len(p), nil
}

// init keeps library users quiet until ConfigureGlobalLogging is called.
func init() {
	zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	logWriter = zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
}

// ConfigureGlobalLogging configures the global logging settings for the application.
func ConfigureGlobalLogging(levelStr string) error {
	level := parseLogLevel(levelStr)
	zerolog.SetGlobalLevel(level)

	logContext := zerolog.New(getLogWriter()).With().Timestamp()
	if level <= zerolog.DebugLevel {
		logContext = logContext.Caller()
	}

	// The global level alone gates output so SetLevel can raise verbosity later.
	log.Logger = logContext.Logger()
	zerolog.DefaultContextLogger = &log.Logger

	stdLog.SetFlags(stdLog.LstdFlags | stdLog.Lshortfile)
	stdLog.SetOutput(&stdLogWriter{logger: WithLevelOverride(log.Logger, zerolog.DebugLevel)})

	return nil
}

// SetLevel changes the global level only. It is safe to call while other goroutines log.
func SetLevel(levelStr string) {
	zerolog.SetGlobalLevel(parseLogLevel(levelStr))
}

// SetFormat selects the writer used by the next ConfigureGlobalLogging call.
// "json" writes raw JSON lines; anything else uses the console writer.
func SetFormat(format string, noColor bool) {
	if strings.EqualFold(format, "json") {
		SetLogWriter(os.Stderr)
		return
	}
	SetLogWriter(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	})
}

// NewLogger returns a component logger writing to the global log writer.
func NewLogger(component string, level zerolog.Level) zerolog.Logger {
	return NewLoggerWithWriter(component, level, getLogWriter())
}

// NewLoggerWithWriter returns a JSON component logger writing to w.
func NewLoggerWithWriter(component string, level zerolog.Level, w io.Writer) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}

// VerbosityLevel maps a repeated -v count onto a level, starting from base.
func VerbosityLevel(base string, count int) string {
	switch {
	case count >= 3:
		return zerolog.TraceLevel.String()
	case count == 2:
		return zerolog.DebugLevel.String()
	case count == 1:
		return zerolog.InfoLevel.String()
	default:
		return base
	}
}

// parseLogLevel converts a string log level to zerolog.Level
func parseLogLevel(levelString string) zerolog.Level {
	if levelString == "" {
		levelString = "error"
	}

	level, err := zerolog.ParseLevel(strings.ToLower(levelString))
	if err != nil {
		log.Error().Err(err).
			Str("logLevel", levelString).
			Msg("Invalid log level provided. Defaulting to error level.")
		return zerolog.ErrorLevel
	}
	return level
}

func getLogWriter() io.Writer {
	return logWriter
}

// SetLogWriter sets the global log writer
func SetLogWriter(w io.Writer) {
	logWriter = w
}

// LevelOverrideHook gives NoLevel events a level and drops events when the logger's minimum
// severity is above that level.
type LevelOverrideHook struct {
	minSeverity zerolog.Level
	targetLevel zerolog.Level
}

// NewLevelOverrideHook creates a new LevelOverrideHook instance.
func NewLevelOverrideHook(minSeverity, targetLevel zerolog.Level) *LevelOverrideHook {
	return &LevelOverrideHook{
		minSeverity: minSeverity,
		targetLevel: targetLevel,
	}
}

// Run implements zerolog.Hook.
func (h LevelOverrideHook) Run(e *zerolog.Event, currentLevel zerolog.Level, _ string) {
	if h.minSeverity > h.targetLevel {
		e.Discard()
		return
	}

	if currentLevel == zerolog.NoLevel {
		e.Str("level", h.targetLevel.String())
	}
}

// WithLevelOverride configures a logger to handle NoLevel events and level filtering.
func WithLevelOverride(logger zerolog.Logger, targetLevel zerolog.Level) zerolog.Logger {
	return logger.Hook(NewLevelOverrideHook(logger.GetLevel(), targetLevel))
}

// LazyMessage creates a closure for deferred message evaluation.
func LazyMessage(args ...interface{}) func() string {
	return func() string { return fmt.Sprint(args...) }
}
