package logging

import (
	"bytes"
	stdLog "log"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withGlobalLevel lowers the package-wide zerolog level for one test.
func withGlobalLevel(t *testing.T, level zerolog.Level) {
	t.Helper()
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(level)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })
}

func TestInit_DefaultsToErrorLevel(t *testing.T) {
	assert.Equal(t, zerolog.ErrorLevel, zerolog.GlobalLevel())
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger("test-component", zerolog.InfoLevel)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestNewLoggerWithWriter(t *testing.T) {
	withGlobalLevel(t, zerolog.TraceLevel)

	var buf bytes.Buffer
	logger := NewLoggerWithWriter("test", zerolog.DebugLevel, &buf)

	logger.Debug().Msg("test debug message")
	assert.Contains(t, buf.String(), "test debug message")
	assert.Contains(t, buf.String(), `"component":"test"`)
	assert.Contains(t, buf.String(), `"level":"debug"`)
}

func TestNewLoggerLevel(t *testing.T) {
	withGlobalLevel(t, zerolog.TraceLevel)

	var buf bytes.Buffer
	logger := NewLoggerWithWriter("test", zerolog.InfoLevel, &buf)

	logger.Debug().Msg("debug message")
	assert.NotContains(t, buf.String(), "debug message")

	logger.Info().Msg("info message")
	assert.Contains(t, buf.String(), "info message")

	logger.Warn().Msg("warn message")
	assert.Contains(t, buf.String(), "warn message")
}

func TestNewLoggerMultipleInstances(t *testing.T) {
	withGlobalLevel(t, zerolog.TraceLevel)

	var buf1, buf2 bytes.Buffer
	logger1 := NewLoggerWithWriter("component-1", zerolog.InfoLevel, &buf1)
	logger2 := NewLoggerWithWriter("component-2", zerolog.WarnLevel, &buf2)

	logger1.Info().Msg("from logger 1")
	logger2.Info().Msg("dropped")
	logger2.Warn().Msg("from logger 2")

	assert.Contains(t, buf1.String(), `"component":"component-1"`)
	assert.Contains(t, buf1.String(), "from logger 1")
	assert.Contains(t, buf2.String(), `"component":"component-2"`)
	assert.Contains(t, buf2.String(), "from logger 2")
	assert.NotContains(t, buf2.String(), "dropped")
}

func TestSetLevel(t *testing.T) {
	withGlobalLevel(t, zerolog.ErrorLevel)

	SetLevel("debug")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	SetLevel("nonsense")
	assert.Equal(t, zerolog.ErrorLevel, zerolog.GlobalLevel())
}

func TestConfigureGlobalLogging(t *testing.T) {
	withGlobalLevel(t, zerolog.ErrorLevel)
	prevWriter, prevLogger := getLogWriter(), log.Logger
	t.Cleanup(func() {
		SetLogWriter(prevWriter)
		log.Logger = prevLogger
		stdLog.SetOutput(bytes.NewBuffer(nil))
	})

	var buf bytes.Buffer
	SetLogWriter(&buf)

	require.NoError(t, ConfigureGlobalLogging("warn"))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	log.Info().Msg("hidden")
	log.Warn().Msg("visible")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}

func TestSetLevel_RaisesVerbosityAfterConfigure(t *testing.T) {
	withGlobalLevel(t, zerolog.ErrorLevel)
	prevWriter, prevLogger := getLogWriter(), log.Logger
	t.Cleanup(func() {
		SetLogWriter(prevWriter)
		log.Logger = prevLogger
		stdLog.SetOutput(bytes.NewBuffer(nil))
	})

	var buf bytes.Buffer
	SetLogWriter(&buf)
	require.NoError(t, ConfigureGlobalLogging("warn"))

	SetLevel("debug")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	log.Debug().Msg("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestConfigureGlobalLogging_RedirectsStdLog(t *testing.T) {
	withGlobalLevel(t, zerolog.ErrorLevel)
	prevWriter, prevLogger := getLogWriter(), log.Logger
	t.Cleanup(func() {
		SetLogWriter(prevWriter)
		log.Logger = prevLogger
		stdLog.SetOutput(bytes.NewBuffer(nil))
	})

	var buf bytes.Buffer
	SetLogWriter(&buf)
	require.NoError(t, ConfigureGlobalLogging("debug"))

	stdLog.Print("from stdlib")
	assert.Contains(t, buf.String(), "from stdlib")
	assert.Contains(t, buf.String(), `"level":"debug"`)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{in: "", want: zerolog.ErrorLevel},
		{in: "debug", want: zerolog.DebugLevel},
		{in: "WARN", want: zerolog.WarnLevel},
		{in: "trace", want: zerolog.TraceLevel},
		{in: "nonsense", want: zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.in))
		})
	}
}

func TestVerbosityLevel(t *testing.T) {
	assert.Equal(t, "warn", VerbosityLevel("warn", 0))
	assert.Equal(t, "info", VerbosityLevel("warn", 1))
	assert.Equal(t, "debug", VerbosityLevel("warn", 2))
	assert.Equal(t, "trace", VerbosityLevel("warn", 5))
}

func TestLevelOverrideHook(t *testing.T) {
	withGlobalLevel(t, zerolog.TraceLevel)

	var buf bytes.Buffer
	logger := WithLevelOverride(zerolog.New(&buf).Level(zerolog.DebugLevel), zerolog.InfoLevel)
	logger.Log().Msg("no level")
	assert.Contains(t, buf.String(), `"level":"info"`)

	buf.Reset()
	quiet := WithLevelOverride(zerolog.New(&buf).Level(zerolog.ErrorLevel), zerolog.DebugLevel)
	quiet.Log().Msg("dropped")
	assert.Empty(t, buf.String())
}

func TestSetFormat(t *testing.T) {
	prev := getLogWriter()
	t.Cleanup(func() { SetLogWriter(prev) })

	SetFormat("json", false)
	_, isConsole := getLogWriter().(zerolog.ConsoleWriter)
	assert.False(t, isConsole)

	SetFormat("text", true)
	cw, isConsole := getLogWriter().(zerolog.ConsoleWriter)
	require.True(t, isConsole)
	assert.True(t, cw.NoColor)
}

func TestLazyMessage(t *testing.T) {
	msg := LazyMessage("a", 1, "b")
	assert.Equal(t, "a1b", msg())
}
