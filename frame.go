// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mavlink

import "time"

// ProtocolVersion distinguishes a MAVLink v1 frame from a v2 frame.
type ProtocolVersion int

// Protocol versions.
const (
	V1 ProtocolVersion = iota + 1
	V2
)

// Wire constants, v1 | v2, per spec §4.6.1.
const (
	startMarkerV1 = 0xFE
	startMarkerV2 = 0xFD

	headerLenV1 = 6
	headerLenV2 = 10

	checksumLen  = 2
	signatureLen = 13

	minPacketV1 = headerLenV1 + 0 + checksumLen // 8
	minPacketV2 = headerLenV2 + 0 + checksumLen // 12

	maxPacketV1 = headerLenV1 + 255 + checksumLen               // 263
	maxPacketV2 = headerLenV2 + 255 + checksumLen + signatureLen // 280
)

// Frame is a decoded or soon-to-be-encoded MAVLink packet (spec §3). A Frame
// may be reused across decode calls as scratch state; Reset clears every
// field TryParse would otherwise leave stale.
type Frame struct {
	ProtocolVersion ProtocolVersion
	PayloadLength   int
	Sequence        uint8
	SystemID        uint8
	ComponentID     uint8
	MessageID       uint32

	IncompatFlags uint8
	CompatFlags   uint8
	HasSignature  bool
	Signature     [signatureLen]byte

	Payload []byte

	Schema *MessageSchema

	fields     map[string]FieldValue
	fieldsRead bool

	Timestamp   time.Time
	ErrorReason Reason
	Anomalies   []string
}

// Reset clears every field of f so it can be reused as scratch state for
// another decode call, per spec §5's single-owner reusable-Frame note.
func (f *Frame) Reset() {
	f.ProtocolVersion = 0
	f.PayloadLength = 0
	f.Sequence = 0
	f.SystemID = 0
	f.ComponentID = 0
	f.MessageID = 0
	f.IncompatFlags = 0
	f.CompatFlags = 0
	f.HasSignature = false
	f.Signature = [signatureLen]byte{}
	f.Payload = f.Payload[:0]
	f.Schema = nil
	f.fields = nil
	f.fieldsRead = false
	f.Timestamp = time.Time{}
	f.ErrorReason = ReasonNone
	f.Anomalies = f.Anomalies[:0]
}

// Fields lazily decodes the payload into a name-keyed FieldValue map on
// first access (spec §9's "lazy field decoding" design note) and caches the
// result.
func (f *Frame) Fields() map[string]FieldValue {
	if !f.fieldsRead {
		if f.Schema != nil {
			f.fields = decodePayload(f.Schema, f.Payload)
		}
		f.fieldsRead = true
	}
	return f.fields
}

// Field returns one decoded field by name, along with whether it exists in
// the schema.
func (f *Frame) Field(name string) (FieldValue, bool) {
	fields := f.Fields()
	v, ok := fields[name]
	return v, ok
}
