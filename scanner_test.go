// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mavlink

import (
	"math"
	"testing"
)

// heartbeatFrameBytes builds the S1 HEARTBEAT wire bytes from spec §8: header
// "FD 09 00 00 00 01 01 00 00 00", payload "00 00 00 00 08 00 00 00 03",
// checksum computed (rather than hardcoded) against HEARTBEAT's CRC_EXTRA so
// the test stays correct if the dialect fixture's CRC_EXTRA ever changes.
func heartbeatFrameBytes(t *testing.T) []byte {
	t.Helper()
	header := []byte{startMarkerV2, 0x09, 0x00, 0x00, 0x00, 0x01, 0x01, 0x00, 0x00, 0x00}
	payload := []byte{0x00, 0x00, 0x00, 0x00, 0x08, 0x00, 0x00, 0x00, 0x03}

	initTestCatalog(t)
	cat := activeCatalog()
	schema := cat.messagesByID[0]

	crc := NewCRCHash()
	crc.Write(header[1:])
	crc.Write(payload)
	crc.WriteByte(schema.CRCExtra)
	sum := crc.Sum16()

	frame := append(append([]byte{}, header...), payload...)
	frame = append(frame, byte(sum), byte(sum>>8))
	return frame
}

func TestTryParseS1Heartbeat(t *testing.T) {
	frame := heartbeatFrameBytes(t)

	f := &Frame{}
	if !f.TryParse(frame) {
		t.Fatalf("TryParse failed: %s", f.ErrorReason)
	}
	if f.SystemID != 1 || f.ComponentID != 1 || f.Sequence != 0 || f.MessageID != 0 {
		t.Errorf("got sys=%d comp=%d seq=%d msg=%d, want 1/1/0/0", f.SystemID, f.ComponentID, f.Sequence, f.MessageID)
	}
	fields := f.Fields()
	if fields["type"].Uint64() != 8 {
		t.Errorf("fields[type] = %d, want 8", fields["type"].Uint64())
	}
	if fields["mavlink_version"].Uint64() != 3 {
		t.Errorf("fields[mavlink_version] = %d, want 3", fields["mavlink_version"].Uint64())
	}
}

func TestTryParseS2BadChecksum(t *testing.T) {
	frame := heartbeatFrameBytes(t)
	frame[len(frame)-2] = 0x00
	frame[len(frame)-1] = 0x00

	f := &Frame{}
	if f.TryParse(frame) {
		t.Fatal("TryParse unexpectedly succeeded with a corrupted checksum")
	}
	if f.ErrorReason != BadChecksum {
		t.Errorf("ErrorReason = %v, want BadChecksum", f.ErrorReason)
	}
}

func TestTryParseS3EmptyInput(t *testing.T) {
	initTestCatalog(t)

	f := &Frame{}
	if f.TryParse(nil) {
		t.Fatal("TryParse unexpectedly succeeded on empty input")
	}
	if f.ErrorReason != StartMarkerNotFound {
		t.Errorf("ErrorReason = %v, want StartMarkerNotFound", f.ErrorReason)
	}
}

func TestTryParseS4Uninitialized(t *testing.T) {
	globalCatalog.Store(nil)

	f := &Frame{}
	if f.TryParse([]byte{startMarkerV2}) {
		t.Fatal("TryParse unexpectedly succeeded before Initialize")
	}
	if f.ErrorReason != NotInitialized {
		t.Errorf("ErrorReason = %v, want NotInitialized", f.ErrorReason)
	}
}

func TestTryParseS5Attitude(t *testing.T) {
	initTestCatalog(t)
	cat := activeCatalog()
	schema := cat.messagesByID[30]

	out := NewFrame(schema, V2)
	out.SystemID, out.ComponentID, out.Sequence = 1, 1, 7
	out.SetFields(map[string]FieldValue{
		"time_boot_ms": NewUint64Value(KindUint32, 12345678),
		"roll":         NewFloat32Value(1.5),
		"pitch":        NewFloat32Value(-0.5),
		"yaw":          NewFloat32Value(2.0),
		"rollspeed":    NewFloat32Value(0.1),
		"pitchspeed":   NewFloat32Value(-0.1),
		"yawspeed":     NewFloat32Value(0.05),
	})

	wire, err := out.ToBytes()
	if err != nil {
		t.Fatalf("ToBytes failed: %v", err)
	}

	f := &Frame{}
	if !f.TryParse(wire) {
		t.Fatalf("TryParse failed: %s", f.ErrorReason)
	}
	fields := f.Fields()
	if math.Abs(fields["roll"].Float64()-1.5) > 1e-4 {
		t.Errorf("roll = %v, want ~1.5", fields["roll"].Float64())
	}
	if math.Abs(fields["pitch"].Float64()-(-0.5)) > 1e-4 {
		t.Errorf("pitch = %v, want ~-0.5", fields["pitch"].Float64())
	}
}

func TestTryParseS6Resync(t *testing.T) {
	frame := heartbeatFrameBytes(t)
	// Junk deliberately avoids the start-marker bytes (0xFE, 0xFD) so the
	// only candidate the scanner finds is the real frame appended after it.
	junk := []byte{0x00, 0xAA, 0x01, 0x02, 0x03, 0x04}
	data := append(append([]byte{}, junk...), frame...)

	f := &Frame{}
	if !f.TryParse(data) {
		t.Fatalf("TryParse failed to resync past junk: %s", f.ErrorReason)
	}
	if f.MessageID != 0 {
		t.Errorf("MessageID = %d, want 0", f.MessageID)
	}

	consumed, examined, ok := f.TryParseStream(data)
	if !ok {
		t.Fatalf("TryParseStream failed to resync: %s", f.ErrorReason)
	}
	want := len(junk) + len(frame)
	if consumed != want || examined != want {
		t.Errorf("consumed=%d examined=%d, want both %d", consumed, examined, want)
	}
}

func TestTryParseStreamNeedsMoreData(t *testing.T) {
	initTestCatalog(t)
	frame := heartbeatFrameBytes(t)
	partial := frame[:len(frame)-3]

	f := &Frame{}
	consumed, examined, ok := f.TryParseStream(partial)
	if ok {
		t.Fatal("TryParseStream unexpectedly succeeded on a truncated frame")
	}
	if consumed != 0 {
		t.Errorf("consumed = %d, want 0 (marker still awaiting more bytes)", consumed)
	}
	if examined != len(partial) {
		t.Errorf("examined = %d, want %d", examined, len(partial))
	}
}

func TestTryParseStreamForwardProgressOnInvalidMarker(t *testing.T) {
	initTestCatalog(t)
	// A full-length frame with a corrupted checksum: long enough that
	// decodeFrameAt runs to completion and reports scanInvalid rather than
	// scanNeedMore, so the scanner must advance past it byte by byte
	// instead of waiting for more data that will never arrive.
	frame := heartbeatFrameBytes(t)
	frame[len(frame)-2] = 0x00
	frame[len(frame)-1] = 0x00

	f := &Frame{}
	consumed, examined, ok := f.TryParseStream(frame)
	if ok {
		t.Fatal("TryParseStream unexpectedly succeeded")
	}
	if consumed != len(frame) || examined != len(frame) {
		t.Errorf("consumed=%d examined=%d, want both %d (forward progress through every byte)", consumed, examined, len(frame))
	}
}

func TestTryParseFlagsUnvalidatedSignatureAsAnomaly(t *testing.T) {
	frame := heartbeatFrameBytes(t)
	signed := append(append([]byte{}, frame...), make([]byte, signatureLen)...)

	f := &Frame{}
	if !f.TryParse(signed) {
		t.Fatalf("TryParse failed: %s", f.ErrorReason)
	}
	if !f.HasSignature {
		t.Error("HasSignature = false, want true")
	}
	found := false
	for _, a := range f.Anomalies {
		if a == "v2 signature present but not cryptographically validated" {
			found = true
		}
	}
	if !found {
		t.Errorf("Anomalies = %v, want it to flag the unvalidated signature", f.Anomalies)
	}
}

func TestExcludedMessageYieldsMessageExcluded(t *testing.T) {
	initTestCatalog(t)
	if err := ExcludeMessages(30); err != nil {
		t.Fatalf("ExcludeMessages failed: %v", err)
	}
	defer IncludeMessages() // reset for other tests sharing the process-wide catalog

	cat := activeCatalog()
	schema := cat.messagesByID[30]
	out := NewFrame(schema, V2)
	out.SetFields(map[string]FieldValue{"time_boot_ms": NewUint64Value(KindUint32, 1)})
	wire, err := out.ToBytes()
	if err != nil {
		t.Fatalf("ToBytes failed: %v", err)
	}

	f := &Frame{}
	if f.TryParse(wire) {
		t.Fatal("TryParse unexpectedly succeeded for an excluded message")
	}
	if f.ErrorReason != MessageExcluded {
		t.Errorf("ErrorReason = %v, want MessageExcluded", f.ErrorReason)
	}
}
