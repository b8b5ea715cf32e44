// Package logger provides the application's coloured, prefixed logger on top of logrus.
package logger

import (
	"errors"
	"fmt"
	"io"

	"github.com/beka-birhanu/vinom-mines/config"
	"github.com/beka-birhanu/vinom-mines/service/i"
	"github.com/sirupsen/logrus"
)

// ErrNilWriter is returned when no output writer is given.
var ErrNilWriter = errors.New("logger needs a writer")

var _ i.Logger = &Logger{}

// Logger writes logrus text entries such as
// `time=... level=info msg=started component=<colour>[APP]<reset> key=value`.
type Logger struct {
	entry *logrus.Entry
}

// New creates a logger writing to w with a coloured prefix.
func New(prefix, color string, w io.Writer) (*Logger, error) {
	if w == nil {
		return nil, ErrNilWriter
	}

	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:    true,
		FullTimestamp:    true,
		DisableQuote:     true,
		QuoteEmptyFields: true,
	})

	return &Logger{
		entry: l.WithField("component", fmt.Sprintf("%s[%s]%s", color, prefix, config.ColorReset)),
	}, nil
}

// SetLevel sets the minimum level written; unknown names keep the current level.
func (l *Logger) SetLevel(level string) {
	if lvl, err := logrus.ParseLevel(level); err == nil {
		l.entry.Logger.SetLevel(lvl)
	}
}

// Info implements i.Logger.
func (l *Logger) Info(msg string) {
	l.entry.Info(msg)
}

// Warning implements i.Logger.
func (l *Logger) Warning(msg string) {
	l.entry.Warn(msg)
}

// Error implements i.Logger.
func (l *Logger) Error(msg string) {
	l.entry.Error(msg)
}

// Debug implements i.Logger.
func (l *Logger) Debug(msg string) {
	l.entry.Debug(msg)
}

// With implements i.Logger.
func (l *Logger) With(fields map[string]any) i.Logger {
	return &Logger{entry: l.entry.WithFields(logrus.Fields(fields))}
}
