// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package mlog is a small structured, levelled logger modeled on
// saferwall/pe's log sub-package: a minimal Logger interface any backend can
// implement, a level filter, and a Helper that adds printf-style
// convenience methods on top. It exists so Catalog initialization and the
// frame scanner can log without forcing a concrete logging library on
// callers of this module.
package mlog

import (
	"fmt"
	"io"
	"log"
	"sync"
)

// Level is a log severity, ordered least to most severe.
type Level int

// Levels, in increasing severity.
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

// Logger is the minimal structured-logging sink. keyvals is an alternating
// key/value list, following the same convention as go-kit/kratos loggers.
type Logger interface {
	Log(level Level, keyvals ...interface{}) error
}

// stdLogger adapts the standard library's *log.Logger to Logger.
type stdLogger struct {
	mu  sync.Mutex
	out *log.Logger
}

// NewStdLogger returns a Logger that writes each call as one line to w.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{out: log.New(w, "", log.LstdFlags)}
}

func (s *stdLogger) Log(level Level, keyvals ...interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out.Println(append([]interface{}{level.String()}, keyvals...)...)
	return nil
}

// filterLogger drops any Log call below a minimum level.
type filterLogger struct {
	next Logger
	min  Level
}

// NewFilter wraps next so that only calls at or above the filter's minimum
// level reach it. Use FilterLevel to set the minimum.
func NewFilter(next Logger, opts ...FilterOption) Logger {
	f := &filterLogger{next: next, min: LevelInfo}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FilterOption configures a filterLogger built by NewFilter.
type FilterOption func(*filterLogger)

// FilterLevel sets the minimum level that passes the filter.
func FilterLevel(min Level) FilterOption {
	return func(f *filterLogger) { f.min = min }
}

func (f *filterLogger) Log(level Level, keyvals ...interface{}) error {
	if level < f.min {
		return nil
	}
	return f.next.Log(level, keyvals...)
}

// Helper adds printf-style convenience methods on top of a Logger. A nil
// Logger makes every Helper method a no-op, so callers can always construct
// a Helper and never nil-check it.
type Helper struct {
	logger Logger
}

// NewHelper wraps logger. A nil logger produces a Helper that discards
// everything.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

func (h *Helper) logf(level Level, format string, args ...interface{}) {
	if h == nil || h.logger == nil {
		return
	}
	_ = h.logger.Log(level, "msg", fmt.Sprintf(format, args...))
}

// Debugf logs at LevelDebug.
func (h *Helper) Debugf(format string, args ...interface{}) { h.logf(LevelDebug, format, args...) }

// Infof logs at LevelInfo.
func (h *Helper) Infof(format string, args ...interface{}) { h.logf(LevelInfo, format, args...) }

// Warnf logs at LevelWarn.
func (h *Helper) Warnf(format string, args ...interface{}) { h.logf(LevelWarn, format, args...) }

// Errorf logs at LevelError.
func (h *Helper) Errorf(format string, args ...interface{}) { h.logf(LevelError, format, args...) }
