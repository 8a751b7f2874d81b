package revista

import "time"

// Logger receives structured diagnostics from the converter. The library
// never writes to stdout or stderr on its own.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

// Field is one key/value pair attached to a log entry.
type Field interface {
	Key() string
	Value() any
}

type field struct {
	key string
	val any
}

func (f field) Key() string { return f.key }
func (f field) Value() any  { return f.val }

func String(key, value string) Field             { return field{key, value} }
func Int(key string, value int) Field            { return field{key, value} }
func Float(key string, value float64) Field      { return field{key, value} }
func Bool(key string, value bool) Field          { return field{key, value} }
func Duration(key string, d time.Duration) Field { return field{key, d} }
func Err(err error) Field                        { return field{"error", err} }

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (NopLogger) With(...Field) Logger   { return NopLogger{} }
