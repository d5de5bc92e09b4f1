// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mavlink

import (
	"os"
	"path/filepath"

	mmap "github.com/edsrzf/mmap-go"
)

// defaultDialectsDir is the directory name the default resolver looks for
// next to the process binary, per spec §6.
const defaultDialectsDir = "Dialects"

// FileResolver returns a DialectResolver that resolves dialect names as
// "<name>.xml" files under dir, memory-mapping each file instead of
// buffering a full read — the same edsrzf/mmap-go approach the teacher uses
// to open the PE binary under inspection (pe.File.New), applied here to
// dialect documents instead of an executable image.
func FileResolver(dir string) DialectResolver {
	return func(name string) ([]byte, error) {
		path := dialectPath(dir, name)
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, err
		}
		// mmap-go requires a non-empty file; fall back to returning an
		// explicit empty document rather than mapping a zero-length region.
		if info.Size() == 0 {
			return []byte(`<mavlink></mavlink>`), nil
		}

		data, err := mmap.Map(f, mmap.RDONLY, 0)
		if err != nil {
			return nil, err
		}
		defer data.Unmap()

		// Copy out of the mapping before returning: the mapping is unmapped
		// as soon as this function returns, and xml.Unmarshal happens after.
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	}
}

// DefaultResolver resolves dialects from a "Dialects" directory next to the
// running executable, per spec §6's default resolver description.
func DefaultResolver() DialectResolver {
	exe, err := os.Executable()
	if err != nil {
		return FileResolver(defaultDialectsDir)
	}
	return FileResolver(filepath.Join(filepath.Dir(exe), defaultDialectsDir))
}

func dialectPath(dir, name string) string {
	if filepath.Ext(name) == ".xml" {
		return filepath.Join(dir, name)
	}
	return filepath.Join(dir, name+".xml")
}

// MapResolver returns a DialectResolver backed by an in-memory name→bytes
// map, for embedded-resource or test-fixture callers (spec §6: "Callers may
// inject arbitrary resolvers (embedded resources, in-memory fixtures)").
func MapResolver(files map[string][]byte) DialectResolver {
	return func(name string) ([]byte, error) {
		if data, ok := files[name]; ok {
			return data, nil
		}
		if data, ok := files[name+".xml"]; ok {
			return data, nil
		}
		return nil, os.ErrNotExist
	}
}
