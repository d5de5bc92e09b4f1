// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mavlink

import (
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
)

// FieldParam is the optional <param> metadata attached to an enum entry.
type FieldParam struct {
	Index int
	Label string
	Units string
	Range string
}

// EntryValue is one <entry> of an EnumSchema: a 64-bit signed value (wide
// enough for the full enum range, per spec §3), its name, and optional
// per-parameter metadata for command-shaped enums (MAV_CMD).
type EntryValue struct {
	Value  int64
	Name   string
	Params []FieldParam
}

// EnumSchema is metadata-only: the codec never interprets enum values
// (spec §1 non-goals, §3).
type EnumSchema struct {
	Name    string
	Bitmask bool
	Entries []EntryValue
}

// FieldSchema describes one message field after compilation: its declared
// type string, resolved element kind, array length (0 for scalar), element
// byte size, total byte length, and the byte offset assigned during
// compilation (spec §3's FieldSchema).
type FieldSchema struct {
	DeclaredType string
	Name         string
	Kind         ElementKind
	ArrayLength  int
	ElementSize  int
	Length       int
	Offset       int
	Extended     bool
}

// MessageSchema is the compiled description of one message: wire id, name,
// fields in declaration order, the derived wire order, and the derived
// lengths and CRC_EXTRA (spec §3).
type MessageSchema struct {
	ID                     uint32
	Name                   string
	Fields                 []FieldSchema // declaration order
	OrderedFields          []FieldSchema // wire order; see computeOrder
	BaseFieldPayloadLength int
	MaxPayloadLength       int
	CRCExtra               byte

	// included is read/written via atomic so IncludeMessages/ExcludeMessages
	// can mutate it without requiring a global lock, per spec §5's "memory
	// safe but not required to be globally atomic [across calls]" note —
	// each individual flag flip is still a single atomic operation.
	included int32
}

// Included reports whether this message currently passes the catalog's
// include/exclude filter.
func (m *MessageSchema) Included() bool {
	return atomic.LoadInt32(&m.included) != 0
}

func (m *MessageSchema) setIncluded(v bool) {
	n := int32(0)
	if v {
		n = 1
	}
	atomic.StoreInt32(&m.included, n)
}

// compileBundle finalizes every message in bundle into MessageSchemas
// installed in a fresh Catalog, per spec §4.4. Message id collisions across
// dialects in the bundle fail fast with DuplicateMessageId.
func compileBundle(bundle *rawBundle) (*Catalog, error) {
	cat := newCatalog()

	for _, name := range bundle.order {
		doc := bundle.dialects[name]

		for _, e := range doc.Enums {
			if _, exists := cat.enumsByName[e.Name]; exists {
				continue // an enum name already loaded from an earlier dialect keeps its first definition
			}
			cat.enumsByName[e.Name] = compileEnum(e)
		}

		for _, m := range doc.Messages {
			schema, err := compileMessage(m)
			if err != nil {
				return nil, err
			}
			if _, exists := cat.messagesByID[schema.ID]; exists {
				return nil, newErrf(DuplicateMessageId, "message id %d (%s) already loaded", schema.ID, schema.Name)
			}
			schema.setIncluded(true)
			cat.messagesByID[schema.ID] = schema
		}
	}

	// MAV_CMD command lookup, per SPEC_FULL §4.
	if cmdEnum, ok := cat.enumsByName["MAV_CMD"]; ok {
		for _, entry := range cmdEnum.Entries {
			cat.commandsByValue[entry.Value] = entry
		}
	}

	return cat, nil
}

func compileEnum(e xmlEnum) EnumSchema {
	schema := EnumSchema{
		Name:    e.Name,
		Bitmask: e.Bitmask == "true" || e.Bitmask == "1",
	}
	for _, entry := range e.Entries {
		val, _ := parseEnumValue(entry.Value)
		ev := EntryValue{Value: val, Name: entry.Name}
		for _, p := range entry.Params {
			ev.Params = append(ev.Params, FieldParam{
				Index: p.Index,
				Label: p.Label,
				Units: p.Units,
				Range: p.Range,
			})
		}
		schema.Entries = append(schema.Entries, ev)
	}
	return schema
}

// parseEnumValue accepts decimal and the 0x-prefixed hex literals MAVLink
// dialects commonly use for bitmask entries.
func parseEnumValue(s string) (int64, error) {
	s = strings.TrimSpace(s)
	return strconv.ParseInt(s, 0, 64)
}

// compileMessage resolves field types, computes wire order and offsets, and
// derives CRC_EXTRA for one <message> (spec §4.4).
func compileMessage(m xmlMessage) (*MessageSchema, error) {
	schema := &MessageSchema{ID: m.ID, Name: m.Name}

	extended := false
	for _, f := range m.Fields {
		if f.isExtensionsMarker() {
			extended = true
			continue
		}
		if !f.isField() {
			continue
		}

		pt, err := parseFieldType(f.Type)
		if err != nil {
			return nil, newErrf(BadType, "%s.%s: %v", m.Name, f.Name, err)
		}

		schema.Fields = append(schema.Fields, FieldSchema{
			DeclaredType: f.Type,
			Name:         f.Name,
			Kind:         pt.kind,
			ArrayLength:  pt.arrayLength,
			ElementSize:  pt.kind.ElementSize(),
			Length:       pt.length(),
			Extended:     extended,
		})
	}

	schema.OrderedFields = computeOrder(schema.Fields)
	assignOffsets(schema.OrderedFields)

	for _, f := range schema.Fields {
		if !f.Extended {
			schema.BaseFieldPayloadLength += f.Length
		}
		schema.MaxPayloadLength += f.Length
	}

	schema.CRCExtra = computeCRCExtra(schema)

	return schema, nil
}

// computeOrder implements spec §3's ordering invariant: base fields sorted
// by descending element byte size (stable with respect to declaration order
// for equal sizes), followed by extended fields in declaration order.
func computeOrder(fields []FieldSchema) []FieldSchema {
	var base, ext []FieldSchema
	for _, f := range fields {
		if f.Extended {
			ext = append(ext, f)
		} else {
			base = append(base, f)
		}
	}

	sort.SliceStable(base, func(i, j int) bool {
		return base[i].ElementSize > base[j].ElementSize
	})

	ordered := make([]FieldSchema, 0, len(base)+len(ext))
	ordered = append(ordered, base...)
	ordered = append(ordered, ext...)
	return ordered
}

// assignOffsets walks ordered fields prefix-summing Length into Offset, per
// spec §3. It mutates the slice's elements in place.
func assignOffsets(ordered []FieldSchema) {
	offset := 0
	for i := range ordered {
		ordered[i].Offset = offset
		offset += ordered[i].Length
	}
}

// mavlinkVersionSuffix is the literal suffix CRC_EXTRA curation strips from
// a bare (non-array) primitive, per spec §4.4.1 and the pinned Open Question
// in §9 (HEARTBEAT's "mavlink_version" field historically carries a type of
// "uint8_t_mavlink_version" in some dialect generators).
const mavlinkVersionSuffix = "_mavlink_version"

// curateType strips the literal "_mavlink_version" suffix from a primitive
// type name; its caller has already stripped any "[N]" array suffix.
func curateType(primitive string) string {
	return strings.TrimSuffix(primitive, mavlinkVersionSuffix)
}

// computeCRCExtra builds the ASCII string described in spec §4.4.1 and folds
// its CRC-16/MCRF4XX into one byte.
func computeCRCExtra(schema *MessageSchema) byte {
	var sb strings.Builder
	sb.WriteString(schema.Name)
	sb.WriteByte(' ')

	for _, f := range schema.OrderedFields {
		if f.Extended {
			continue
		}
		sb.WriteString(curateType(f.DeclaredType[:typePrimitiveLen(f.DeclaredType)]))
		sb.WriteByte(' ')
		sb.WriteString(f.Name)
		sb.WriteByte(' ')
		if f.ArrayLength > 0 {
			sb.WriteByte(byte(f.ArrayLength))
		}
	}

	crc := CRCCalculate([]byte(sb.String()))
	return byte(crc&0xFF) ^ byte(crc>>8)
}

// typePrimitiveLen returns the length of the primitive portion of a declared
// type string, i.e. up to (excluding) a trailing "[N]" if present.
func typePrimitiveLen(declared string) int {
	if i := strings.IndexByte(declared, '['); i >= 0 {
		return i
	}
	return len(declared)
}
