// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mavlink

import (
	"encoding/xml"
)

// DialectResolver loads the raw bytes of a named dialect XML document. The
// loader never interprets name as a URL or path itself — resolution is
// entirely up to the resolver, per spec §9's "include is a file name, no URL
// semantics". The loader reports any error a resolver returns as
// DialectNotFound.
type DialectResolver func(name string) ([]byte, error)

// xmlMessage mirrors the <message> element: id, name, repeated <field>,
// optional self-closing <extensions/> marker, and a description blob we
// don't otherwise use. Unknown attributes (wip, deprecated) are silently
// ignored via encoding/xml's default unknown-element/attribute behavior.
type xmlMessage struct {
	ID          uint32      `xml:"id,attr"`
	Name        string      `xml:"name,attr"`
	Description string      `xml:"description"`
	Fields      []xmlField  `xml:",any"`
}

// xmlField captures both <field> and <extensions/> children of a <message>,
// since they interleave and the extensions marker only affects fields that
// follow it positionally.
type xmlField struct {
	XMLName xml.Name
	Type    string `xml:"type,attr"`
	Name    string `xml:"name,attr"`
}

func (f xmlField) isExtensionsMarker() bool {
	return f.XMLName.Local == "extensions"
}

func (f xmlField) isField() bool {
	return f.XMLName.Local == "field"
}

// xmlParam mirrors <param index="N" label="..." units="...">free text</param>
// inside an <entry>.
type xmlParam struct {
	Index int    `xml:"index,attr"`
	Label string `xml:"label,attr"`
	Units string `xml:"units,attr"`
	Range string `xml:"range,attr"`
	Value string `xml:",chardata"`
}

// xmlEntry mirrors <entry name="..." value="...">.
type xmlEntry struct {
	Name  string     `xml:"name,attr"`
	Value string     `xml:"value,attr"`
	Params []xmlParam `xml:"param"`
}

// xmlEnum mirrors <enum name="..." bitmask="...">.
type xmlEnum struct {
	Name    string     `xml:"name,attr"`
	Bitmask string     `xml:"bitmask,attr"`
	Entries []xmlEntry `xml:"entry"`
}

// xmlDialect mirrors the <mavlink> document root.
type xmlDialect struct {
	XMLName  xml.Name     `xml:"mavlink"`
	Includes []string     `xml:"include"`
	Version  string       `xml:"version"`
	Dialect  string       `xml:"dialect"`
	Enums    []xmlEnum    `xml:"enums>enum"`
	Messages []xmlMessage `xml:"messages>message"`
}

// rawBundle is the loader's output: every dialect file reached by recursive
// include, keyed by file name, not yet compiled into a Catalog.
type rawBundle struct {
	dialects map[string]*xmlDialect
	// order preserves load order, for deterministic-but-irrelevant iteration
	// in tests; compilation itself must not depend on it (crcExtra is
	// ordering-independent per spec §3's invariant).
	order []string
}

// loadDialectBundle parses rootName and every dialect it recursively
// includes, using resolve to fetch XML bytes by name. Cycles are broken by
// keying already-loaded dialects on file name (spec §4.3, §9).
func loadDialectBundle(rootName string, resolve DialectResolver, maxDepth int) (*rawBundle, error) {
	bundle := &rawBundle{dialects: make(map[string]*xmlDialect)}
	if err := loadDialectRecursive(bundle, rootName, resolve, 0, maxDepth); err != nil {
		return nil, err
	}
	return bundle, nil
}

func loadDialectRecursive(bundle *rawBundle, name string, resolve DialectResolver, depth, maxDepth int) error {
	if _, ok := bundle.dialects[name]; ok {
		return nil // already loaded; cycle-safe.
	}
	if maxDepth > 0 && depth > maxDepth {
		return newErrf(DialectParseError, "include depth exceeds %d at %q", maxDepth, name)
	}

	data, err := resolve(name)
	if err != nil {
		return newErrf(DialectNotFound, "%s: %v", name, err)
	}

	var doc xmlDialect
	if err := xml.Unmarshal(data, &doc); err != nil {
		return newErrf(DialectParseError, "%s: %v", name, err)
	}

	bundle.dialects[name] = &doc
	bundle.order = append(bundle.order, name)

	for _, include := range doc.Includes {
		if err := loadDialectRecursive(bundle, include, resolve, depth+1, maxDepth); err != nil {
			return err
		}
	}
	return nil
}
