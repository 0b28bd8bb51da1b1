// Package logger wraps zerolog with component-tagged helpers for the
// command-line tool.
package logger

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// Logger writes component-tagged structured log events.
type Logger struct {
	logger zerolog.Logger
}

// New returns a logger writing JSON lines to writer.
func New(writer io.Writer, level zerolog.Level) *Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.DurationFieldInteger = true

	logger := zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &Logger{logger: logger}
}

// NewConsole returns a logger writing human-readable lines to writer.
func NewConsole(writer io.Writer, level zerolog.Level) *Logger {
	consoleWriter := zerolog.ConsoleWriter{
		Out:        writer,
		NoColor:    true,
		TimeFormat: "15:04:05",
	}
	return New(consoleWriter, level)
}

// ParseLevel maps a level name to a zerolog level. Unknown or empty names
// fall back to info.
func ParseLevel(name string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// Component returns a zerolog.Logger with the component field preset.
func (l *Logger) Component(component string) zerolog.Logger {
	return l.logger.With().Str("component", component).Logger()
}

func (l *Logger) Info(component, message string, fields map[string]interface{}) {
	l.emit(l.logger.Info(), component, fields).Msg(message)
}

func (l *Logger) Debug(component, message string, fields map[string]interface{}) {
	l.emit(l.logger.Debug(), component, fields).Msg(message)
}

func (l *Logger) Warning(component, message string, fields map[string]interface{}) {
	l.emit(l.logger.Warn(), component, fields).Msg(message)
}

func (l *Logger) Error(component string, err error, fields map[string]interface{}) {
	l.emit(l.logger.Error(), component, fields).Err(err).Msg("operation failed")
}

// emit attaches the component and fields to event. Disabled events are
// returned untouched; zerolog makes every call on them a no-op.
func (l *Logger) emit(event *zerolog.Event, component string, fields map[string]interface{}) *zerolog.Event {
	if !event.Enabled() {
		return event
	}
	event = event.Str("component", component)
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	return event
}
