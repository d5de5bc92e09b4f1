// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mlog

import (
	"bytes"
	"strings"
	"testing"
)

func TestStdLoggerWritesLine(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStdLogger(&buf)
	if err := logger.Log(LevelInfo, "msg", "hello"); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if !strings.Contains(buf.String(), "INFO") || !strings.Contains(buf.String(), "hello") {
		t.Errorf("got %q, want it to contain INFO and hello", buf.String())
	}
}

func TestFilterDropsBelowMinimum(t *testing.T) {
	var buf bytes.Buffer
	logger := NewFilter(NewStdLogger(&buf), FilterLevel(LevelWarn))

	logger.Log(LevelInfo, "msg", "should be dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected info-level call to be filtered out, got %q", buf.String())
	}

	logger.Log(LevelError, "msg", "should pass")
	if !strings.Contains(buf.String(), "should pass") {
		t.Errorf("expected error-level call to pass the filter, got %q", buf.String())
	}
}

func TestHelperNilLoggerIsNoOp(t *testing.T) {
	h := NewHelper(nil)
	h.Infof("this must not panic: %d", 42)
}

func TestHelperFormatsMessage(t *testing.T) {
	var buf bytes.Buffer
	h := NewHelper(NewStdLogger(&buf))
	h.Warnf("value=%d", 7)
	if !strings.Contains(buf.String(), "value=7") {
		t.Errorf("got %q, want it to contain value=7", buf.String())
	}
}
