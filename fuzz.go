// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mavlink

// Fuzz is a github.com/dvyukov/go-fuzz entrypoint exercising the frame
// scanner's discrete TryParse, directly modeled on the teacher's fuzz.go
// (which ran the same style of entrypoint over File.Parse). The catalog
// must already be initialized by the harness before Fuzz is invoked; data
// that crashes or hangs the scanner is the thing this entrypoint exists to
// find, not a well-formed frame.
func Fuzz(data []byte) int {
	f := &Frame{}
	if f.TryParse(data) {
		return 1
	}
	return 0
}
