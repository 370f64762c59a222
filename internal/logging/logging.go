// Package logging wraps the global zerolog logger so every package logs
// through the same writer and level.
package logging

import (
    "io"
    "os"
    "strings"
    "time"

    "github.com/rs/zerolog"
    "github.com/rs/zerolog/log"
)

// Init configures the global logger. level is one of trace, debug, info,
// warn, error; unknown values fall back to info. pretty selects the
// human-friendly console writer instead of JSON lines.
func Init(level string, pretty bool) {
    lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
    if err != nil || level == "" {
        lvl = zerolog.InfoLevel
    }
    zerolog.SetGlobalLevel(lvl)
    zerolog.TimeFieldFormat = time.RFC3339

    var out io.Writer = os.Stderr
    if pretty {
        out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
    }
    log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

func GlobalLogger() *zerolog.Logger {
    return &log.Logger
}

func Debug() *zerolog.Event {
    return log.Debug()
}

func Info() *zerolog.Event {
    return log.Info()
}

func Warn() *zerolog.Event {
    return log.Warn()
}

func Error() *zerolog.Event {
    return log.Error()
}

func Fatal() *zerolog.Event {
    return log.Fatal()
}

func With() zerolog.Context {
    return log.With()
}
