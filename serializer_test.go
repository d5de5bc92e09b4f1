// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mavlink

import "testing"

func TestToBytesV1RejectsHighMessageID(t *testing.T) {
	schema := &MessageSchema{ID: 300, Name: "FAKE", CRCExtra: 1}
	schema.setIncluded(true)

	f := NewFrame(schema, V1)
	if _, err := f.ToBytes(); err == nil {
		t.Fatal("expected BadType error for a v1 frame with message id > 0xFF")
	} else if ce, ok := err.(*CodecError); !ok || ce.Reason != BadType {
		t.Errorf("got %v, want BadType", err)
	}
}

func TestToBytesV2TrimsTrailingZeroPayload(t *testing.T) {
	initTestCatalog(t)
	cat := activeCatalog()
	schema := cat.messagesByID[30] // ATTITUDE: time_boot_ms + 6 floats, all default zero

	f := NewFrame(schema, V2)
	wire, err := f.ToBytes()
	if err != nil {
		t.Fatalf("ToBytes failed: %v", err)
	}
	// An all-zero-valued payload must trim to zero bytes on v2.
	if wire[1] != 0 {
		t.Errorf("on-wire len = %d, want 0 for an all-default v2 payload", wire[1])
	}
}

func TestToBytesV1DoesNotTrim(t *testing.T) {
	initTestCatalog(t)
	cat := activeCatalog()
	schema := cat.messagesByID[0] // HEARTBEAT

	f := NewFrame(schema, V1)
	wire, err := f.ToBytes()
	if err != nil {
		t.Fatalf("ToBytes failed: %v", err)
	}
	if int(wire[1]) != schema.BaseFieldPayloadLength {
		t.Errorf("on-wire len = %d, want %d (v1 never trims)", wire[1], schema.BaseFieldPayloadLength)
	}
}

func TestToBytesDecodesBackCleanly(t *testing.T) {
	initTestCatalog(t)
	cat := activeCatalog()
	schema := cat.messagesByID[0]

	f := NewFrame(schema, V2)
	f.SystemID, f.ComponentID, f.Sequence = 42, 1, 9
	f.SetFields(map[string]FieldValue{
		"type":            NewUint64Value(KindUint8, 2),
		"mavlink_version": NewUint64Value(KindUint8, 3),
	})
	wire, err := f.ToBytes()
	if err != nil {
		t.Fatalf("ToBytes failed: %v", err)
	}

	decoded := &Frame{}
	if !decoded.TryParse(wire) {
		t.Fatalf("TryParse of our own encoded frame failed: %s", decoded.ErrorReason)
	}
	if decoded.SystemID != 42 || decoded.ComponentID != 1 || decoded.Sequence != 9 {
		t.Errorf("got sys=%d comp=%d seq=%d, want 42/1/9", decoded.SystemID, decoded.ComponentID, decoded.Sequence)
	}
	if decoded.Fields()["type"].Uint64() != 2 {
		t.Errorf("fields[type] = %d, want 2", decoded.Fields()["type"].Uint64())
	}
}

func TestVerifyChecksum(t *testing.T) {
	initTestCatalog(t)
	cat := activeCatalog()
	schema := cat.messagesByID[0]

	f := NewFrame(schema, V2)
	f.SetFields(map[string]FieldValue{"type": NewUint64Value(KindUint8, 5)})
	wire, err := f.ToBytes()
	if err != nil {
		t.Fatalf("ToBytes failed: %v", err)
	}

	payloadLen := int(wire[1])
	headerNoSTX := wire[1:headerLenV2]
	payload := wire[headerLenV2 : headerLenV2+payloadLen]

	if _, err := VerifyChecksum(headerNoSTX, payload, wire[headerLenV2+payloadLen:], schema.CRCExtra); err != nil {
		t.Errorf("VerifyChecksum failed on our own valid frame: %v", err)
	}

	if _, err := VerifyChecksum(headerNoSTX, payload, []byte{0x00}, schema.CRCExtra); err == nil {
		t.Error("expected FrameHasNoChecksum for a too-short checksum slice")
	} else if ce, ok := err.(*CodecError); !ok || ce.Reason != FrameHasNoChecksum {
		t.Errorf("got %v, want FrameHasNoChecksum", err)
	}

	corrupted := append([]byte{}, wire[headerLenV2+payloadLen:]...)
	corrupted[0] ^= 0xFF
	if _, err := VerifyChecksum(headerNoSTX, payload, corrupted, schema.CRCExtra); err == nil {
		t.Error("expected BadChecksum for a corrupted checksum")
	} else if ce, ok := err.(*CodecError); !ok || ce.Reason != BadChecksum {
		t.Errorf("got %v, want BadChecksum", err)
	}
}
