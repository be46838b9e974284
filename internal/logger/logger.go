// Package logger writes installer progress and diagnostics to the command's streams.
package logger

import (
	"fmt"
	"io"
)

type Logger struct {
	out   io.Writer
	err   io.Writer
	quiet bool
	debug bool
}

func New(out io.Writer, err io.Writer, quiet bool, debug bool) *Logger {
	return &Logger{
		out:   out,
		err:   err,
		quiet: quiet,
		debug: debug,
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, io.Discard, true, false)
}

func (logger *Logger) Log(message string, forceShow bool) {
	if logger.quiet && !forceShow && !logger.debug {
		return
	}
	logger.println(logger.out, message)
}

func (logger *Logger) Debug(message string) {
	if !logger.debug {
		return
	}
	logger.println(logger.out, message)
}

func (logger *Logger) Debugf(format string, args ...any) {
	logger.Debug(fmt.Sprintf(format, args...))
}

// Warn reports a non-fatal condition. Quiet mode does not hide warnings.
func (logger *Logger) Warn(message string) {
	logger.println(logger.err, message)
}

func (logger *Logger) Error(message string) {
	logger.println(logger.err, message)
}

func (logger *Logger) Errorf(format string, args ...any) {
	if _, err := fmt.Fprintf(logger.err, format, args...); err != nil {
		return
	}
}

func (logger *Logger) println(writer io.Writer, message string) {
	if _, err := fmt.Fprintln(writer, message); err != nil {
		return
	}
}
