// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mavlink

import "fmt"

// Reason enumerates the decode-time and initialization-time error taxonomy.
// Decode errors are surfaced on Frame.ErrorReason rather than panicking; the
// scanner always advances and keeps going on malformed input.
type Reason int

// Error reasons, grouped the way spec §7 groups them.
const (
	// ReasonNone means no error occurred.
	ReasonNone Reason = iota

	// NotInitialized is returned by any codec call made before the Catalog
	// has been initialized.
	NotInitialized

	// Initialization-time reasons.
	DialectNotFound
	DialectParseError
	BadType
	DuplicateMessageId

	// Decode-time reasons.
	StartMarkerNotFound
	FrameTooShort
	// FrameTooLong is never set by the scanner: a frame's single length
	// byte caps its payload at 255 bytes. It is available to callers that
	// enforce a frame size limit of their own.
	FrameTooLong
	MessageNotFound
	MessageExcluded
	PayloadLengthInvalid
	FrameHasNoChecksum
	BadChecksum
	SignatureLengthInvalid

	// UnknownMessageId is returned by IncludeMessages/ExcludeMessages.
	UnknownMessageId
)

var reasonNames = map[Reason]string{
	ReasonNone:              "none",
	NotInitialized:          "codec not initialized",
	DialectNotFound:         "dialect not found",
	DialectParseError:       "dialect parse error",
	BadType:                 "bad field type",
	DuplicateMessageId:      "duplicate message id",
	StartMarkerNotFound:     "start marker not found",
	FrameTooShort:           "frame too short",
	FrameTooLong:            "frame too long",
	MessageNotFound:         "message not found",
	MessageExcluded:         "message excluded",
	PayloadLengthInvalid:    "payload length invalid",
	FrameHasNoChecksum:      "frame has no checksum",
	BadChecksum:             "bad checksum",
	SignatureLengthInvalid:  "signature length invalid",
	UnknownMessageId:        "unknown message id",
}

// String implements fmt.Stringer.
func (r Reason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// CodecError wraps a Reason with optional contextual detail. It is returned
// from initialization and encode paths; decode paths set Frame.ErrorReason
// instead of returning an error, per spec §7's "never throws on malformed
// input" policy.
type CodecError struct {
	Reason Reason
	Detail string
}

// Error implements the error interface.
func (e *CodecError) Error() string {
	if e.Detail == "" {
		return e.Reason.String()
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

// Is reports whether target is a *CodecError with the same Reason, so
// errors.Is(err, &CodecError{Reason: SomeReason}) matches regardless of
// Detail.
func (e *CodecError) Is(target error) bool {
	t, ok := target.(*CodecError)
	if !ok {
		return false
	}
	return e.Reason == t.Reason
}

func newErr(reason Reason, detail string) *CodecError {
	return &CodecError{Reason: reason, Detail: detail}
}

func newErrf(reason Reason, format string, args ...interface{}) *CodecError {
	return &CodecError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}
