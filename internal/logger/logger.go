package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type LogLevel int

const (
	ERROR LogLevel = iota
	WARN
	INFO
	DEBUG
)

var (
	mu           sync.RWMutex
	currentLevel = getLogLevel()
	root         = newLogger(os.Stderr, currentLevel, getLogFormat())
)

const (
	APP       = "APP"
	CONFIG    = "CONFIG"
	HANDLER   = "HANDLER"
	RATELIMIT = "RATELIMIT"
	REDIS     = "REDIS"
	SERVICE   = "SERVICE"
	SHEETS    = "SHEETS"
)

func getLogLevel() LogLevel {
	level := strings.ToUpper(os.Getenv("LOG_LEVEL"))
	switch level {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

func getLogFormat() string {
	return strings.ToLower(os.Getenv("LOG_FORMAT"))
}

func (l LogLevel) zerolog() zerolog.Level {
	switch l {
	case DEBUG:
		return zerolog.DebugLevel
	case WARN:
		return zerolog.WarnLevel
	case ERROR:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func newLogger(w io.Writer, level LogLevel, format string) zerolog.Logger {
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level.zerolog()).With().Timestamp().Logger()
}

// Init rebuilds the root logger from LOG_LEVEL and LOG_FORMAT and installs it
// as the zerolog global logger.
func Init() {
	SetOutput(os.Stderr)
}

// SetOutput redirects all log output to w. Tests use it to capture output.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	currentLevel = getLogLevel()
	root = newLogger(w, currentLevel, getLogFormat())
	log.Logger = root
}

// Logger returns the root logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// With returns a child logger tagged with the namespace.
func With(namespace string) zerolog.Logger {
	return Logger().With().Str("namespace", namespace).Logger()
}

func emit(level zerolog.Level, namespace, format string, v ...interface{}) {
	l := Logger()
	l.WithLevel(level).Str("namespace", namespace).Msg(fmt.Sprintf(format, v...))
}

func Debug(namespace, format string, v ...interface{}) {
	emit(zerolog.DebugLevel, namespace, format, v...)
}

func Info(namespace, format string, v ...interface{}) {
	emit(zerolog.InfoLevel, namespace, format, v...)
}

func Warn(namespace, format string, v ...interface{}) {
	emit(zerolog.WarnLevel, namespace, format, v...)
}

func Error(namespace, format string, v ...interface{}) {
	emit(zerolog.ErrorLevel, namespace, format, v...)
}

// Fatal logs at fatal level without exiting; callers decide how to stop.
func Fatal(namespace, format string, v ...interface{}) {
	emit(zerolog.FatalLevel, namespace, format, v...)
}
