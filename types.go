// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mavlink

import (
	"strconv"
	"strings"
)

// ElementKind identifies the resolved primitive behind a declared MAVLink
// field type string.
type ElementKind int

// Element kinds, in the same order spec §3's FieldSchema enumerates them.
const (
	KindInvalid ElementKind = iota
	KindInt8
	KindUint8
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindFloat32
	KindFloat64
	KindChar
)

// elementSizes gives the wire (and host) byte size of one element of each
// kind; sizes are platform independent per spec §4.2.
var elementSizes = map[ElementKind]int{
	KindInt8:    1,
	KindUint8:   1,
	KindInt16:   2,
	KindUint16:  2,
	KindInt32:   4,
	KindUint32:  4,
	KindInt64:   8,
	KindUint64:  8,
	KindFloat32: 4,
	KindFloat64: 8,
	KindChar:    1,
}

// primitiveKinds maps the declared primitive token to its resolved kind.
var primitiveKinds = map[string]ElementKind{
	"char":     KindChar,
	"int8_t":   KindInt8,
	"uint8_t":  KindUint8,
	"int16_t":  KindInt16,
	"uint16_t": KindUint16,
	"int32_t":  KindInt32,
	"uint32_t": KindUint32,
	"int64_t":  KindInt64,
	"uint64_t": KindUint64,
	"float":    KindFloat32,
	"double":   KindFloat64,
}

// ElementSize returns the wire size in bytes of one element of kind k.
func (k ElementKind) ElementSize() int {
	return elementSizes[k]
}

// parsedType is the outcome of parsing a declared field type string such as
// "uint16_t" or "float[4]".
type parsedType struct {
	primitive   string // the primitive token, brackets stripped
	kind        ElementKind
	arrayLength int // 0 for a scalar
}

// parseFieldType parses a declared type string of the form "<primitive>" or
// "<primitive>[<N>]" per spec §4.2. N must be a positive decimal integer.
func parseFieldType(declared string) (parsedType, error) {
	primitive := declared
	arrayLength := 0

	if open := strings.IndexByte(declared, '['); open >= 0 {
		if !strings.HasSuffix(declared, "]") {
			return parsedType{}, newErrf(BadType, "malformed array type %q", declared)
		}
		primitive = declared[:open]
		lenStr := declared[open+1 : len(declared)-1]
		n, err := strconv.Atoi(lenStr)
		if err != nil || n <= 0 {
			return parsedType{}, newErrf(BadType, "invalid array length in %q", declared)
		}
		arrayLength = n
	}

	// HEARTBEAT's "mavlink_version" field historically carries a declared
	// type of "uint8_t_mavlink_version" in some dialect generators; it
	// resolves to the same uint8_t element, curateType strips the same
	// suffix again (harmlessly) when deriving CRC_EXTRA.
	kind, ok := primitiveKinds[strings.TrimSuffix(primitive, mavlinkVersionSuffix)]
	if !ok {
		return parsedType{}, newErrf(BadType, "unrecognized primitive %q", primitive)
	}

	return parsedType{primitive: primitive, kind: kind, arrayLength: arrayLength}, nil
}

// length returns the total byte length on the wire: arrayLength (or 1 for a
// scalar) times the element size.
func (p parsedType) length() int {
	n := p.arrayLength
	if n == 0 {
		n = 1
	}
	return n * p.kind.ElementSize()
}

// isArray reports whether the declared type carried a bracketed length.
func (p parsedType) isArray() bool {
	return p.arrayLength > 0
}
