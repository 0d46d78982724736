// Copyright 2024 The jclass Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

// Package log is a small structured-logging facade, shaped after the
// logger the teacher library threads through its own parser
// (github.com/saferwall/pe/log): a pluggable Logger interface, a
// level filter, and a Helper with printf-style convenience methods.
// It exists so ClassFile can log recoverable parse anomalies (such
// as an EnclosingMethod with a zero method index) without making every caller install a full
// logging library just to parse a class file.
package log

import (
	"fmt"
	"io"
	"log"
)

// Level is a logging severity.
type Level int

// Severity levels, ordered least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is the minimal sink this package logs through.
type Logger interface {
	Log(level Level, msg string) error
}

// stdLogger adapts the standard library's *log.Logger to Logger.
type stdLogger struct {
	l *log.Logger
}

// NewStdLogger returns a Logger that writes to w using the standard
// library's log package.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{l: log.New(w, "", log.LstdFlags)}
}

func (s *stdLogger) Log(level Level, msg string) error {
	s.l.Printf("[%s] %s", level, msg)
	return nil
}

// filter wraps a Logger and drops messages below a minimum level.
type filter struct {
	Logger
	min Level
}

// FilterOption configures a filter.
type FilterOption func(*filter)

// FilterLevel sets the minimum level a filtered logger will pass
// through to its underlying Logger.
func FilterLevel(level Level) FilterOption {
	return func(f *filter) { f.min = level }
}

// NewFilter returns a Logger that only forwards records at or above
// the configured minimum level (LevelDebug if unset).
func NewFilter(logger Logger, opts ...FilterOption) Logger {
	f := &filter{Logger: logger, min: LevelDebug}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *filter) Log(level Level, msg string) error {
	if level < f.min {
		return nil
	}
	return f.Logger.Log(level, msg)
}

// Helper adds printf-style convenience methods over a Logger.
type Helper struct {
	logger Logger
}

// NewHelper wraps logger in a Helper.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

// Debugf logs at LevelDebug.
func (h *Helper) Debugf(format string, args ...interface{}) {
	if h == nil || h.logger == nil {
		return
	}
	_ = h.logger.Log(LevelDebug, fmt.Sprintf(format, args...))
}

// Warnf logs at LevelWarn.
func (h *Helper) Warnf(format string, args ...interface{}) {
	if h == nil || h.logger == nil {
		return
	}
	_ = h.logger.Log(LevelWarn, fmt.Sprintf(format, args...))
}

// Errorf logs at LevelError.
func (h *Helper) Errorf(format string, args ...interface{}) {
	if h == nil || h.logger == nil {
		return
	}
	_ = h.logger.Log(LevelError, fmt.Sprintf(format, args...))
}
