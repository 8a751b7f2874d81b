package main

import (
	"io"

	"github.com/sirupsen/logrus"

	revista "github.com/larabashadi/Revista-2"
)

// logrusLogger adapts a logrus entry to revista.Logger.
type logrusLogger struct {
	entry *logrus.Entry
}

var _ revista.Logger = (*logrusLogger)(nil)

// newLogger builds the CLI logger. Library logs only show errors unless
// --verbose is set; warnings already reach the user as "warning:" lines.
func newLogger(w io.Writer, common commonFlags) *logrusLogger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	l.SetLevel(logrus.ErrorLevel)
	if common.verbose && !common.quiet {
		l.SetLevel(logrus.DebugLevel)
	}
	return &logrusLogger{entry: logrus.NewEntry(l)}
}

func (l *logrusLogger) Debug(msg string, fields ...revista.Field) {
	l.with(fields).Debug(msg)
}

func (l *logrusLogger) Info(msg string, fields ...revista.Field) {
	l.with(fields).Info(msg)
}

func (l *logrusLogger) Warn(msg string, fields ...revista.Field) {
	l.with(fields).Warn(msg)
}

func (l *logrusLogger) Error(msg string, fields ...revista.Field) {
	l.with(fields).Error(msg)
}

func (l *logrusLogger) With(fields ...revista.Field) revista.Logger {
	return &logrusLogger{entry: l.with(fields)}
}

// Debugf serves maxprocs.Logger and the config dump.
func (l *logrusLogger) Debugf(format string, args ...any) {
	l.entry.Debugf(format, args...)
}

func (l *logrusLogger) with(fields []revista.Field) *logrus.Entry {
	if len(fields) == 0 {
		return l.entry
	}
	lf := make(logrus.Fields, len(fields))
	for _, f := range fields {
		v := f.Value()
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		lf[f.Key()] = v
	}
	return l.entry.WithFields(lf)
}
