// Package log is the structured logger shared by the command line tools,
// the key store and the wasm bindings. The cryptographic packages never log.
package log

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	// logTestWriterName selects logTestWriter as output, for tests only.
	logTestWriterName = "log_test_writer"
)

var (
	mu     sync.RWMutex
	log    zerolog.Logger
	level  = LogLevelInfo
	closer io.Closer

	logTestWriter io.Writer

	// panicOnInvalidChars makes every log line carrying the UTF-8
	// replacement character panic. Enabled with LOG_PANIC_ON_INVALIDCHARS.
	panicOnInvalidChars = os.Getenv("LOG_PANIC_ON_INVALIDCHARS") == "true"
)

func init() {
	Init(LogLevelInfo, "stderr", nil)
}

// invalidCharChecker inspects the JSON encoded log line before it reaches
// the real output.
type invalidCharChecker struct {
	next io.Writer
}

func (w invalidCharChecker) Write(p []byte) (int, error) {
	if panicOnInvalidChars && bytes.Contains(p, []byte(`\ufffd`)) {
		panic(fmt.Sprintf("log line contains invalid characters: %q", p))
	}
	return w.next.Write(p)
}

// errorLevelWriter copies warnings and errors to a secondary output.
type errorLevelWriter struct {
	io.Writer
}

func (w errorLevelWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l < zerolog.WarnLevel {
		return len(p), nil
	}
	return w.Write(p)
}

// Init configures the logger. output is "stdout", "stderr" or a file path.
// If errorOutput is not nil, warnings and errors are also written to it.
func Init(logLevel, output string, errorOutput io.Writer) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(logLevel))
	if err != nil || logLevel == "" {
		panic(fmt.Sprintf("invalid log level: %q", logLevel))
	}

	var out io.Writer
	var c io.Closer
	switch output {
	case "stdout":
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	case "stderr":
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	case logTestWriterName:
		out = logTestWriter
	default:
		f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			panic(fmt.Sprintf("cannot open log output %q: %v", output, err))
		}
		out, c = f, f
	}

	var w io.Writer = invalidCharChecker{next: out}
	if errorOutput != nil {
		w = zerolog.MultiLevelWriter(w, errorLevelWriter{Writer: errorOutput})
	}

	mu.Lock()
	defer mu.Unlock()
	if closer != nil {
		_ = closer.Close()
	}
	closer = c
	log = zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	level = lvl.String()
}

// Level returns the configured log level.
func Level() string {
	mu.RLock()
	defer mu.RUnlock()
	return level
}

// Logger returns the underlying zerolog logger.
func Logger() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := log
	return &l
}

func Debug(args ...any) {
	Logger().Debug().Msg(fmt.Sprint(args...))
}

func Info(args ...any) {
	Logger().Info().Msg(fmt.Sprint(args...))
}

func Warn(args ...any) {
	Logger().Warn().Msg(fmt.Sprint(args...))
}

// Error logs an error value at error level.
func Error(err error) {
	Logger().Error().Err(err).Send()
}

func Debugf(template string, args ...any) {
	Logger().Debug().Msgf(template, args...)
}

func Infof(template string, args ...any) {
	Logger().Info().Msgf(template, args...)
}

func Warnf(template string, args ...any) {
	Logger().Warn().Msgf(template, args...)
}

func Errorf(template string, args ...any) {
	Logger().Error().Msgf(template, args...)
}

// Fatal logs at fatal level and exits the process.
func Fatal(args ...any) {
	Logger().Fatal().Msg(fmt.Sprint(args...))
}

// Fatalf logs at fatal level and exits the process.
func Fatalf(template string, args ...any) {
	Logger().Fatal().Msgf(template, args...)
}

// Debugw logs msg with alternating key/value pairs.
func Debugw(msg string, keyvalues ...any) {
	Logger().Debug().Fields(keyvalues).Msg(msg)
}

func Infow(msg string, keyvalues ...any) {
	Logger().Info().Fields(keyvalues).Msg(msg)
}

func Warnw(msg string, keyvalues ...any) {
	Logger().Warn().Fields(keyvalues).Msg(msg)
}

func Errorw(err error, msg string) {
	Logger().Error().Err(err).Msg(msg)
}
