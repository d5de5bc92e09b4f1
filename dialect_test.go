// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mavlink

import "testing"

func TestLoadDialectBundleResolvesIncludes(t *testing.T) {
	resolver := MapResolver(map[string][]byte{
		"root.xml": []byte(`<mavlink>
			<include>child.xml</include>
			<messages>
				<message id="1" name="ROOT_MSG"><field type="uint8_t" name="a"/></message>
			</messages>
		</mavlink>`),
		"child.xml": []byte(`<mavlink>
			<messages>
				<message id="2" name="CHILD_MSG"><field type="uint8_t" name="b"/></message>
			</messages>
		</mavlink>`),
	})

	bundle, err := loadDialectBundle("root.xml", resolver, 8)
	if err != nil {
		t.Fatalf("loadDialectBundle failed: %v", err)
	}
	if len(bundle.dialects) != 2 {
		t.Fatalf("got %d dialects, want 2", len(bundle.dialects))
	}
	if _, ok := bundle.dialects["child.xml"]; !ok {
		t.Errorf("child.xml not loaded via include")
	}
}

func TestLoadDialectBundleBreaksCycles(t *testing.T) {
	resolver := MapResolver(map[string][]byte{
		"a.xml": []byte(`<mavlink><include>b.xml</include></mavlink>`),
		"b.xml": []byte(`<mavlink><include>a.xml</include></mavlink>`),
	})

	bundle, err := loadDialectBundle("a.xml", resolver, 8)
	if err != nil {
		t.Fatalf("loadDialectBundle failed on cyclic includes: %v", err)
	}
	if len(bundle.dialects) != 2 {
		t.Fatalf("got %d dialects, want 2", len(bundle.dialects))
	}
}

func TestLoadDialectBundleUnknownDialect(t *testing.T) {
	resolver := MapResolver(map[string][]byte{})
	if _, err := loadDialectBundle("missing.xml", resolver, 8); err == nil {
		t.Fatal("expected DialectNotFound error, got nil")
	} else if ce, ok := err.(*CodecError); !ok || ce.Reason != DialectNotFound {
		t.Errorf("got %v, want DialectNotFound", err)
	}
}

func TestXMLFieldExtensionsMarker(t *testing.T) {
	resolver := MapResolver(map[string][]byte{
		"d.xml": []byte(`<mavlink><messages>
			<message id="5" name="M">
				<field type="uint8_t" name="base"/>
				<extensions/>
				<field type="uint8_t" name="ext"/>
			</message>
		</messages></mavlink>`),
	})
	bundle, err := loadDialectBundle("d.xml", resolver, 8)
	if err != nil {
		t.Fatalf("loadDialectBundle failed: %v", err)
	}
	msg := bundle.dialects["d.xml"].Messages[0]
	var sawExtensionsMarker bool
	for _, f := range msg.Fields {
		if f.isExtensionsMarker() {
			sawExtensionsMarker = true
		}
	}
	if !sawExtensionsMarker {
		t.Error("extensions marker not parsed from <extensions/>")
	}
}
