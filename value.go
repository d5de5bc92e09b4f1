// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mavlink

// FieldValue is the schema-agnostic, tagged-variant representation of a
// decoded (or to-be-encoded) field value, per the "Dynamic field values"
// design note in spec §9: a name-keyed mapping of heterogeneous values
// realized here as one variant per primitive plus per primitive-array, plus
// a dedicated char-array (string) variant.
//
// Exactly one of the typed accessors is meaningful for a given Kind; callers
// that know the schema statically can skip the Kind switch and call the
// matching accessor directly (it returns the zero value if the variant does
// not hold that kind, mirroring a generated accessor's contract).
type FieldValue struct {
	kind ElementKind
	// scalar holds the reinterpreted bits of a scalar numeric value.
	scalar uint64
	// array holds one uint64 slot per array element, reinterpreted per kind.
	array []uint64
	// text holds the characters of a char[N] field.
	text string
	// isArray distinguishes a 1-element array from a scalar.
	isArray bool
}

// Kind reports the resolved element kind this value was decoded/constructed
// as.
func (v FieldValue) Kind() ElementKind { return v.kind }

// IsArray reports whether this value represents an array (including
// char[N], which is represented via Text rather than Array).
func (v FieldValue) IsArray() bool { return v.isArray }

// Int64 returns the value as a signed 64-bit integer, reinterpreting the
// stored bits per Kind. Zero value if Kind is not a signed integer scalar.
func (v FieldValue) Int64() int64 {
	switch v.kind {
	case KindInt8:
		return int64(int8(v.scalar))
	case KindInt16:
		return int64(int16(v.scalar))
	case KindInt32:
		return int64(int32(v.scalar))
	case KindInt64:
		return int64(v.scalar)
	}
	return 0
}

// Uint64 returns the value as an unsigned 64-bit integer.
func (v FieldValue) Uint64() uint64 {
	switch v.kind {
	case KindUint8, KindUint16, KindUint32, KindUint64:
		return v.scalar
	}
	return 0
}

// Float64 returns the value as a double, widening a float32 if necessary.
func (v FieldValue) Float64() float64 {
	switch v.kind {
	case KindFloat32:
		return float64(float32FromBits(uint32(v.scalar)))
	case KindFloat64:
		return float64FromBits(v.scalar)
	}
	return 0
}

// Text returns the characters of a char[N] field (no null-trimming, per
// spec §4.5).
func (v FieldValue) Text() string { return v.text }

// Int64Array returns a signed integer array value, element by element.
func (v FieldValue) Int64Array() []int64 {
	if !v.isArray {
		return nil
	}
	out := make([]int64, len(v.array))
	for i, raw := range v.array {
		switch v.kind {
		case KindInt8:
			out[i] = int64(int8(raw))
		case KindInt16:
			out[i] = int64(int16(raw))
		case KindInt32:
			out[i] = int64(int32(raw))
		case KindInt64:
			out[i] = int64(raw)
		}
	}
	return out
}

// Uint64Array returns an unsigned integer array value, element by element.
func (v FieldValue) Uint64Array() []uint64 {
	if !v.isArray {
		return nil
	}
	switch v.kind {
	case KindUint8, KindUint16, KindUint32, KindUint64:
		out := make([]uint64, len(v.array))
		copy(out, v.array)
		return out
	}
	return nil
}

// Float64Array returns a float/double array value, element by element.
func (v FieldValue) Float64Array() []float64 {
	if !v.isArray {
		return nil
	}
	out := make([]float64, len(v.array))
	for i, raw := range v.array {
		switch v.kind {
		case KindFloat32:
			out[i] = float64(float32FromBits(uint32(raw)))
		case KindFloat64:
			out[i] = float64FromBits(raw)
		}
	}
	return out
}

// NewInt64Value constructs a scalar signed-integer FieldValue of the given
// kind (KindInt8/16/32/64). Used by encode callers building a field map.
func NewInt64Value(kind ElementKind, value int64) FieldValue {
	return FieldValue{kind: kind, scalar: uint64(value)}
}

// NewUint64Value constructs a scalar unsigned-integer FieldValue.
func NewUint64Value(kind ElementKind, value uint64) FieldValue {
	return FieldValue{kind: kind, scalar: value}
}

// NewFloat32Value constructs a scalar float32 FieldValue.
func NewFloat32Value(value float32) FieldValue {
	return FieldValue{kind: KindFloat32, scalar: uint64(float32Bits(value))}
}

// NewFloat64Value constructs a scalar float64 FieldValue.
func NewFloat64Value(value float64) FieldValue {
	return FieldValue{kind: KindFloat64, scalar: float64Bits(value)}
}

// NewTextValue constructs a char[N] FieldValue.
func NewTextValue(text string) FieldValue {
	return FieldValue{kind: KindChar, text: text, isArray: true}
}

// NewIntArrayValue constructs an integer array FieldValue (signed or
// unsigned, per kind).
func NewIntArrayValue(kind ElementKind, values []int64) FieldValue {
	arr := make([]uint64, len(values))
	for i, val := range values {
		arr[i] = uint64(val)
	}
	return FieldValue{kind: kind, array: arr, isArray: true}
}

// NewUintArrayValue constructs an unsigned integer array FieldValue.
func NewUintArrayValue(kind ElementKind, values []uint64) FieldValue {
	arr := make([]uint64, len(values))
	copy(arr, values)
	return FieldValue{kind: kind, array: arr, isArray: true}
}

// NewFloatArrayValue constructs a float/double array FieldValue.
func NewFloatArrayValue(kind ElementKind, values []float64) FieldValue {
	arr := make([]uint64, len(values))
	for i, val := range values {
		if kind == KindFloat32 {
			arr[i] = uint64(float32Bits(float32(val)))
		} else {
			arr[i] = float64Bits(val)
		}
	}
	return FieldValue{kind: kind, array: arr, isArray: true}
}
