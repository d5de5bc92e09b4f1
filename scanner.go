// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mavlink

import (
	"encoding/binary"
	"time"
)

// scanStatus is the outcome of one decode attempt at a candidate marker.
type scanStatus int

const (
	scanOK scanStatus = iota
	scanNeedMore
	scanInvalid
)

// nowFunc is indirected so tests can pin Frame.Timestamp if ever needed;
// production code always uses time.Now.
var nowFunc = time.Now

// TryParse attempts to decode a single frame from anywhere in data,
// resynchronizing past leading garbage and past any marker that fails
// validation (spec §4.6.4, discrete-buffer mode). On success it fills f and
// returns true. On failure it sets f.ErrorReason and returns false.
func (f *Frame) TryParse(data []byte) bool {
	cat := activeCatalog()
	f.Reset()
	if cat == nil {
		f.ErrorReason = NotInitialized
		return false
	}

	pos := 0
	sawMarker := false
	lastReason := StartMarkerNotFound

	for pos < len(data) {
		if !isStartMarker(data[pos]) {
			pos++
			continue
		}
		sawMarker = true

		n, status, reason := decodeFrameAt(f, data[pos:], cat)
		switch status {
		case scanOK:
			_ = n
			f.ErrorReason = ReasonNone
			return true
		case scanNeedMore:
			// A discrete buffer holds everything there is; insufficient
			// bytes at this candidate is a terminal failure for it, not a
			// request to wait.
			lastReason = FrameTooShort
			pos++
		default:
			lastReason = reason
			pos++
		}
	}

	if !sawMarker {
		f.ErrorReason = StartMarkerNotFound
	} else {
		f.ErrorReason = lastReason
	}
	return false
}

// TryParseStream attempts to decode a single frame from data, which may be a
// prefix of a larger byte stream (serial/TCP). It returns how many bytes
// were consumed (fully processed) and examined (looked at without being able
// to make further progress), following the consumed/examined protocol
// described in spec §4.6.4: on success consumed==examined==end of the
// decoded frame; when more data is needed consumed stays put and examined
// reaches the end of data; on an interior validation failure consumed
// advances past the failed marker to guarantee forward progress. On failure
// f.ErrorReason is FrameTooShort when more data is needed, otherwise the
// reason of the last marker that failed validation, or StartMarkerNotFound
// when there was none.
func (f *Frame) TryParseStream(data []byte) (consumed int, examined int, ok bool) {
	cat := activeCatalog()
	f.Reset()
	if cat == nil {
		f.ErrorReason = NotInitialized
		return 0, 0, false
	}

	pos := 0
	for pos < len(data) {
		if !isStartMarker(data[pos]) {
			pos++
			continue
		}

		n, status, reason := decodeFrameAt(f, data[pos:], cat)
		switch status {
		case scanOK:
			f.ErrorReason = ReasonNone
			end := pos + n
			return end, end, true
		case scanNeedMore:
			// Wait for more bytes; don't skip past this marker, it may
			// complete once more data arrives.
			f.ErrorReason = FrameTooShort
			return pos, len(data), false
		default:
			// Forward progress: always advance past the failed marker.
			f.ErrorReason = reason
			pos++
		}
	}

	// No valid frame in what's available; nothing to retry until more data
	// arrives, but every byte here has been looked at.
	if f.ErrorReason == ReasonNone {
		f.ErrorReason = StartMarkerNotFound
	}
	return len(data), len(data), false
}

func isStartMarker(b byte) bool {
	return b == startMarkerV1 || b == startMarkerV2
}

// decodeFrameAt attempts to decode one frame from data, which begins with a
// start marker byte. It implements spec §4.6.3 steps 1-9. On scanOK it
// fills f and returns the number of bytes the frame occupies (header +
// on-wire payload + checksum [+ signature]). On scanNeedMore or scanInvalid
// it leaves f untouched.
func decodeFrameAt(f *Frame, data []byte, cat *Catalog) (n int, status scanStatus, reason Reason) {
	var version ProtocolVersion
	var headerLen, minPacket int

	switch data[0] {
	case startMarkerV1:
		version, headerLen, minPacket = V1, headerLenV1, minPacketV1
	case startMarkerV2:
		version, headerLen, minPacket = V2, headerLenV2, minPacketV2
	default:
		return 0, scanInvalid, StartMarkerNotFound
	}

	if len(data) < minPacket {
		return 0, scanNeedMore, 0
	}

	payloadLen := int(data[1])
	total := headerLen + payloadLen + checksumLen
	if len(data) < total {
		return 0, scanNeedMore, 0
	}

	var seq, sysID, compID uint8
	var incompat, compat uint8
	var msgID uint32

	if version == V1 {
		seq, sysID, compID = data[2], data[3], data[4]
		msgID = uint32(data[5])
	} else {
		incompat, compat = data[2], data[3]
		seq, sysID, compID = data[4], data[5], data[6]
		msgID = uint32(data[7]) | uint32(data[8])<<8 | uint32(data[9])<<16
	}

	schema := cat.lookupMessage(msgID)
	if schema == nil {
		return 0, scanInvalid, MessageNotFound
	}
	if !schema.Included() {
		return 0, scanInvalid, MessageExcluded
	}

	if payloadLen > schema.MaxPayloadLength {
		return 0, scanInvalid, PayloadLengthInvalid
	}
	// Open Question pin (spec §9): v1's decode buffer is
	// baseFieldPayloadLength, and a v1 wire len larger than that is invalid
	// — v1 never carries extension fields on the wire.
	if version == V1 && payloadLen > schema.BaseFieldPayloadLength {
		return 0, scanInvalid, PayloadLengthInvalid
	}

	payloadOnWire := data[headerLen : headerLen+payloadLen]
	checksumOffset := headerLen + payloadLen
	onWireChecksum := binary.LittleEndian.Uint16(data[checksumOffset:])

	crc := NewCRCHash()
	crc.Write(data[1:headerLen])
	crc.Write(payloadOnWire)
	crc.WriteByte(schema.CRCExtra)
	if crc.Sum16() != onWireChecksum {
		return 0, scanInvalid, BadChecksum
	}

	consumed := headerLen + payloadLen + checksumLen

	var signature [signatureLen]byte
	hasSignature := false
	if version == V2 {
		remaining := len(data) - consumed
		if remaining > 0 {
			if remaining < signatureLen {
				return 0, scanInvalid, SignatureLengthInvalid
			}
			copy(signature[:], data[consumed:consumed+signatureLen])
			hasSignature = true
			consumed += signatureLen
		}
	}

	decodeBufLen := schema.BaseFieldPayloadLength
	if version == V2 {
		decodeBufLen = schema.MaxPayloadLength
	}
	decodeBuf := make([]byte, decodeBufLen)
	copy(decodeBuf, payloadOnWire)

	f.ProtocolVersion = version
	f.PayloadLength = payloadLen
	f.Sequence = seq
	f.SystemID = sysID
	f.ComponentID = compID
	f.MessageID = msgID
	f.IncompatFlags = incompat
	f.CompatFlags = compat
	f.HasSignature = hasSignature
	f.Signature = signature
	f.Payload = decodeBuf
	f.Schema = schema
	f.fields = nil
	f.fieldsRead = false
	f.Timestamp = nowFunc()
	f.ErrorReason = ReasonNone
	if hasSignature {
		f.Anomalies = append(f.Anomalies, "v2 signature present but not cryptographically validated")
	}

	return consumed, scanOK, ReasonNone
}
