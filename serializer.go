// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mavlink

import "encoding/binary"

// NewFrame builds a Frame ready for encoding against schema. Callers set
// header fields directly and attach field values with SetField/SetFields
// before calling ToBytes, per spec §6: "build a Frame with schema + field
// map, then frame.ToBytes()".
func NewFrame(schema *MessageSchema, version ProtocolVersion) *Frame {
	return &Frame{
		Schema:          schema,
		ProtocolVersion: version,
		MessageID:       schema.ID,
		fields:          make(map[string]FieldValue),
		fieldsRead:      true,
	}
}

// SetField attaches one field value to a Frame being built for encoding.
func (f *Frame) SetField(name string, v FieldValue) {
	if f.fields == nil {
		f.fields = make(map[string]FieldValue)
	}
	f.fields[name] = v
	f.fieldsRead = true
}

// SetFields replaces the entire field-value map on a Frame being built for
// encoding.
func (f *Frame) SetFields(values map[string]FieldValue) {
	f.fields = values
	f.fieldsRead = true
}

// ToBytes composes a contiguous wire frame from f's header fields, schema,
// and attached field values (spec §4.7). It does not emit a signature: v2
// callers that need signing append their own 13 bytes and set the signing
// bit in IncompatFlags themselves (spec §4.7 step 4).
func (f *Frame) ToBytes() ([]byte, error) {
	if f.Schema == nil {
		return nil, newErr(BadType, "frame has no schema attached")
	}
	if f.ProtocolVersion == V1 && f.Schema.ID > 0xFF {
		return nil, newErrf(BadType, "message id %d does not fit in a v1 frame", f.Schema.ID)
	}

	bufLen := f.Schema.BaseFieldPayloadLength
	if f.ProtocolVersion == V2 {
		bufLen = f.Schema.MaxPayloadLength
	}

	payload, err := encodePayload(f.Schema, f.fields, bufLen)
	if err != nil {
		return nil, err
	}

	if f.ProtocolVersion == V2 {
		payload = trimTrailingZeros(payload)
	}

	headerLen := headerLenV1
	if f.ProtocolVersion == V2 {
		headerLen = headerLenV2
	}

	out := make([]byte, headerLen, headerLen+len(payload)+checksumLen)
	switch f.ProtocolVersion {
	case V1:
		out[0] = startMarkerV1
		out[1] = byte(len(payload))
		out[2] = f.Sequence
		out[3] = f.SystemID
		out[4] = f.ComponentID
		out[5] = byte(f.Schema.ID)
	case V2:
		out[0] = startMarkerV2
		out[1] = byte(len(payload))
		out[2] = f.IncompatFlags
		out[3] = f.CompatFlags
		out[4] = f.Sequence
		out[5] = f.SystemID
		out[6] = f.ComponentID
		out[7] = byte(f.Schema.ID)
		out[8] = byte(f.Schema.ID >> 8)
		out[9] = byte(f.Schema.ID >> 16)
	default:
		return nil, newErr(BadType, "frame has no protocol version set")
	}

	out = append(out, payload...)

	crc := NewCRCHash()
	crc.Write(out[1:headerLen])
	crc.Write(payload)
	crc.WriteByte(f.Schema.CRCExtra)
	checksum := crc.Sum16()

	out = append(out, byte(checksum), byte(checksum>>8))

	return out, nil
}

// trimTrailingZeros returns payload with its trailing run of zero bytes
// removed, per spec §4.7 step 1's "MAY trim trailing zeros for v2". An
// all-zero payload trims down to zero bytes, matching real MAVLink v2
// wire behavior for an all-default-valued message.
func trimTrailingZeros(payload []byte) []byte {
	n := len(payload)
	for n > 0 && payload[n-1] == 0 {
		n--
	}
	return payload[:n]
}

// VerifyChecksum recomputes the CRC-16/MCRF4XX checksum over headerNoSTX
// (the header bytes excluding the leading start marker) and payload, folds
// in crcExtra, and compares it against the two trailing checksum bytes of
// data. It exists for callers inspecting a captured byte range that may or
// may not include its checksum without going through the full scanner.
// FrameHasNoChecksum is returned if data is shorter than checksumLen.
func VerifyChecksum(headerNoSTX, payload, data []byte, crcExtra byte) (uint16, error) {
	if len(data) < checksumLen {
		return 0, newErr(FrameHasNoChecksum, "")
	}
	crc := NewCRCHash()
	crc.Write(headerNoSTX)
	crc.Write(payload)
	crc.WriteByte(crcExtra)
	onWire := binary.LittleEndian.Uint16(data[len(data)-checksumLen:])
	if crc.Sum16() != onWire {
		return crc.Sum16(), newErr(BadChecksum, "")
	}
	return crc.Sum16(), nil
}
