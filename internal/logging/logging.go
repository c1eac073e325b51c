// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package logging wraps zerolog in the small structured-logging API used
// throughout the controller: component-scoped loggers with key/value
// helper methods, matching the call sites in the teacher pack
// (logger.Info("msg", "key", val, ...)).
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a component-scoped structured logger backed by zerolog.
type Logger struct {
	z zerolog.Logger
}

// Config controls global logger construction.
type Config struct {
	Level      string // debug, info, warn, error
	JSONOutput bool
	Output     io.Writer
}

var defaultLogger = New(Config{Level: "info"})

// New builds a Logger from Config.
func New(cfg Config) *Logger {
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	var z zerolog.Logger
	if cfg.JSONOutput {
		z = zerolog.New(out).Level(level).With().Timestamp().Logger()
	} else {
		z = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
			Level(level).With().Timestamp().Logger()
	}
	return &Logger{z: z}
}

// Init replaces the package default logger. Call once at process startup.
func Init(cfg Config) {
	defaultLogger = New(cfg)
}

// Default returns the package-level logger.
func Default() *Logger {
	return defaultLogger
}

// WithComponent returns a child logger tagged with a "component" field.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{z: l.z.With().Str("component", name).Logger()}
}

// WithHost returns a child logger tagged with a "host" field, used by the
// orchestrator's per-host fan-out tasks.
func (l *Logger) WithHost(host string) *Logger {
	return &Logger{z: l.z.With().Str("host", host).Logger()}
}

func (l *Logger) event(ev *zerolog.Event, msg string, kv []any) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, kv[i+1])
	}
	ev.Msg(msg)
}

func (l *Logger) Debug(msg string, kv ...any) { l.event(l.z.Debug(), msg, kv) }
func (l *Logger) Info(msg string, kv ...any)  { l.event(l.z.Info(), msg, kv) }
func (l *Logger) Warn(msg string, kv ...any)  { l.event(l.z.Warn(), msg, kv) }
func (l *Logger) Error(msg string, kv ...any) { l.event(l.z.Error(), msg, kv) }

// Package-level convenience functions delegating to Default().
func Debug(msg string, kv ...any) { defaultLogger.Debug(msg, kv...) }
func Info(msg string, kv ...any)  { defaultLogger.Info(msg, kv...) }
func Warn(msg string, kv ...any)  { defaultLogger.Warn(msg, kv...) }
func Error(msg string, kv ...any) { defaultLogger.Error(msg, kv...) }
