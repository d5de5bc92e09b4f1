// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mavlink

import "encoding/binary"

// decodePayload reads every field of schema out of buf (already zero-padded
// to the correct decode-buffer width by the caller per spec §4.6.3 step 5)
// into a name-keyed FieldValue map, per spec §4.5.
func decodePayload(schema *MessageSchema, buf []byte) map[string]FieldValue {
	fields := make(map[string]FieldValue, len(schema.OrderedFields))
	for _, f := range schema.OrderedFields {
		fields[f.Name] = decodeField(f, buf)
	}
	return fields
}

// decodeField reads one field at its precomputed offset. Bytes beyond the
// supplied buffer length are treated as zero, which is how truncated v2
// extension fields resolve to their type's zero value (spec §4.5, §8
// Testable Property 6).
func decodeField(f FieldSchema, buf []byte) FieldValue {
	raw := fieldBytes(buf, f)

	if f.Kind == KindChar {
		return NewTextValue(string(raw))
	}

	if f.ArrayLength > 0 {
		return decodeArrayField(f, raw)
	}
	return decodeScalarField(f, raw)
}

// fieldBytes returns exactly f.Length bytes starting at f.Offset, zero-padded
// if buf is shorter than f.Offset+f.Length.
func fieldBytes(buf []byte, f FieldSchema) []byte {
	out := make([]byte, f.Length)
	if f.Offset >= len(buf) {
		return out
	}
	end := f.Offset + f.Length
	if end > len(buf) {
		end = len(buf)
	}
	copy(out, buf[f.Offset:end])
	return out
}

func decodeScalarField(f FieldSchema, raw []byte) FieldValue {
	switch f.Kind {
	case KindInt8:
		return NewInt64Value(f.Kind, int64(int8(raw[0])))
	case KindUint8:
		return NewUint64Value(f.Kind, uint64(raw[0]))
	case KindInt16:
		return NewInt64Value(f.Kind, int64(int16(binary.LittleEndian.Uint16(raw))))
	case KindUint16:
		return NewUint64Value(f.Kind, uint64(binary.LittleEndian.Uint16(raw)))
	case KindInt32:
		return NewInt64Value(f.Kind, int64(int32(binary.LittleEndian.Uint32(raw))))
	case KindUint32:
		return NewUint64Value(f.Kind, uint64(binary.LittleEndian.Uint32(raw)))
	case KindInt64:
		return NewInt64Value(f.Kind, int64(binary.LittleEndian.Uint64(raw)))
	case KindUint64:
		return NewUint64Value(f.Kind, binary.LittleEndian.Uint64(raw))
	case KindFloat32:
		return NewFloat32Value(float32FromBits(binary.LittleEndian.Uint32(raw)))
	case KindFloat64:
		return NewFloat64Value(float64FromBits(binary.LittleEndian.Uint64(raw)))
	}
	return FieldValue{}
}

func decodeArrayField(f FieldSchema, raw []byte) FieldValue {
	n := f.ArrayLength
	switch f.Kind {
	case KindInt8:
		vals := make([]int64, n)
		for i := 0; i < n; i++ {
			vals[i] = int64(int8(raw[i]))
		}
		return NewIntArrayValue(f.Kind, vals)
	case KindUint8:
		vals := make([]uint64, n)
		for i := 0; i < n; i++ {
			vals[i] = uint64(raw[i])
		}
		return NewUintArrayValue(f.Kind, vals)
	case KindInt16:
		vals := make([]int64, n)
		for i := 0; i < n; i++ {
			vals[i] = int64(int16(binary.LittleEndian.Uint16(raw[i*2:])))
		}
		return NewIntArrayValue(f.Kind, vals)
	case KindUint16:
		vals := make([]uint64, n)
		for i := 0; i < n; i++ {
			vals[i] = uint64(binary.LittleEndian.Uint16(raw[i*2:]))
		}
		return NewUintArrayValue(f.Kind, vals)
	case KindInt32:
		vals := make([]int64, n)
		for i := 0; i < n; i++ {
			vals[i] = int64(int32(binary.LittleEndian.Uint32(raw[i*4:])))
		}
		return NewIntArrayValue(f.Kind, vals)
	case KindUint32:
		vals := make([]uint64, n)
		for i := 0; i < n; i++ {
			vals[i] = uint64(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		return NewUintArrayValue(f.Kind, vals)
	case KindInt64:
		vals := make([]int64, n)
		for i := 0; i < n; i++ {
			vals[i] = int64(binary.LittleEndian.Uint64(raw[i*8:]))
		}
		return NewIntArrayValue(f.Kind, vals)
	case KindUint64:
		vals := make([]uint64, n)
		for i := 0; i < n; i++ {
			vals[i] = binary.LittleEndian.Uint64(raw[i*8:])
		}
		return NewUintArrayValue(f.Kind, vals)
	case KindFloat32:
		vals := make([]float64, n)
		for i := 0; i < n; i++ {
			vals[i] = float64(float32FromBits(binary.LittleEndian.Uint32(raw[i*4:])))
		}
		return NewFloatArrayValue(f.Kind, vals)
	case KindFloat64:
		vals := make([]float64, n)
		for i := 0; i < n; i++ {
			vals[i] = float64FromBits(binary.LittleEndian.Uint64(raw[i*8:]))
		}
		return NewFloatArrayValue(f.Kind, vals)
	}
	return FieldValue{}
}

// encodePayload writes every field of schema into a buffer of length
// bufLen, in the layout decodePayload expects to read back. Unknown field
// names or a value whose Kind does not match the schema are programmer
// errors (spec §7) and return a plain error rather than panicking.
func encodePayload(schema *MessageSchema, values map[string]FieldValue, bufLen int) ([]byte, error) {
	known := make(map[string]bool, len(schema.OrderedFields))
	for _, f := range schema.OrderedFields {
		known[f.Name] = true
	}
	for name := range values {
		if !known[name] {
			return nil, newErrf(BadType, "unknown field %q for message %s", name, schema.Name)
		}
	}

	buf := make([]byte, bufLen)
	for _, f := range schema.OrderedFields {
		v, ok := values[f.Name]
		if !ok {
			continue // absent fields encode as zero, mirroring truncated-wire semantics.
		}
		if v.Kind() != f.Kind {
			return nil, newErrf(BadType, "field %s: value kind %d does not match schema kind %d", f.Name, v.Kind(), f.Kind)
		}
		if err := encodeField(f, v, buf); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func encodeField(f FieldSchema, v FieldValue, buf []byte) error {
	if f.Offset+f.Length > len(buf) {
		return newErrf(PayloadLengthInvalid, "field %s overruns buffer", f.Name)
	}
	dst := buf[f.Offset : f.Offset+f.Length]

	if f.Kind == KindChar {
		copy(dst, v.Text())
		return nil
	}

	if f.ArrayLength > 0 {
		return encodeArrayField(f, v, dst)
	}
	return encodeScalarField(f, v, dst)
}

func encodeScalarField(f FieldSchema, v FieldValue, dst []byte) error {
	switch f.Kind {
	case KindInt8:
		dst[0] = byte(int8(v.Int64()))
	case KindUint8:
		dst[0] = byte(v.Uint64())
	case KindInt16:
		binary.LittleEndian.PutUint16(dst, uint16(int16(v.Int64())))
	case KindUint16:
		binary.LittleEndian.PutUint16(dst, uint16(v.Uint64()))
	case KindInt32:
		binary.LittleEndian.PutUint32(dst, uint32(int32(v.Int64())))
	case KindUint32:
		binary.LittleEndian.PutUint32(dst, uint32(v.Uint64()))
	case KindInt64:
		binary.LittleEndian.PutUint64(dst, uint64(v.Int64()))
	case KindUint64:
		binary.LittleEndian.PutUint64(dst, v.Uint64())
	case KindFloat32:
		binary.LittleEndian.PutUint32(dst, float32Bits(float32(v.Float64())))
	case KindFloat64:
		binary.LittleEndian.PutUint64(dst, float64Bits(v.Float64()))
	default:
		return newErrf(BadType, "unsupported scalar kind for field")
	}
	return nil
}

func encodeArrayField(f FieldSchema, v FieldValue, dst []byte) error {
	n := f.ArrayLength
	switch f.Kind {
	case KindInt8:
		vals := v.Int64Array()
		for i := 0; i < n && i < len(vals); i++ {
			dst[i] = byte(int8(vals[i]))
		}
	case KindUint8:
		vals := v.Uint64Array()
		for i := 0; i < n && i < len(vals); i++ {
			dst[i] = byte(vals[i])
		}
	case KindInt16:
		vals := v.Int64Array()
		for i := 0; i < n && i < len(vals); i++ {
			binary.LittleEndian.PutUint16(dst[i*2:], uint16(int16(vals[i])))
		}
	case KindUint16:
		vals := v.Uint64Array()
		for i := 0; i < n && i < len(vals); i++ {
			binary.LittleEndian.PutUint16(dst[i*2:], uint16(vals[i]))
		}
	case KindInt32:
		vals := v.Int64Array()
		for i := 0; i < n && i < len(vals); i++ {
			binary.LittleEndian.PutUint32(dst[i*4:], uint32(int32(vals[i])))
		}
	case KindUint32:
		vals := v.Uint64Array()
		for i := 0; i < n && i < len(vals); i++ {
			binary.LittleEndian.PutUint32(dst[i*4:], uint32(vals[i]))
		}
	case KindInt64:
		vals := v.Int64Array()
		for i := 0; i < n && i < len(vals); i++ {
			binary.LittleEndian.PutUint64(dst[i*8:], uint64(vals[i]))
		}
	case KindUint64:
		vals := v.Uint64Array()
		for i := 0; i < n && i < len(vals); i++ {
			binary.LittleEndian.PutUint64(dst[i*8:], vals[i])
		}
	case KindFloat32:
		vals := v.Float64Array()
		for i := 0; i < n && i < len(vals); i++ {
			binary.LittleEndian.PutUint32(dst[i*4:], float32Bits(float32(vals[i])))
		}
	case KindFloat64:
		vals := v.Float64Array()
		for i := 0; i < n && i < len(vals); i++ {
			binary.LittleEndian.PutUint64(dst[i*8:], float64Bits(vals[i]))
		}
	default:
		return newErrf(BadType, "unsupported array kind for field")
	}
	return nil
}
