// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mavlink

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/saferwall/mavlink/internal/mlog"
)

// heartbeatMessageID is the wire id of HEARTBEAT, which must remain
// included regardless of exclusion requests (spec §4.4.2).
const heartbeatMessageID = 0

// maxDefaultDialectDepth bounds recursive include resolution the way
// pe.Options.MaxDefaultCOFFSymbolsCount bounds COFF symbol parsing in the
// teacher: a generous default that exists purely to turn a resolver bug
// (an include cycle the name-keying didn't catch, e.g. two different names
// resolving to the same content) into a bounded error instead of runaway
// recursion.
const maxDefaultDialectDepth = 64

// Options configures Catalog.Initialize, mirroring pe.Options's shape:
// a logger, resolver, and a couple of parse-time limits.
type Options struct {
	// Resolver fetches dialect XML by name. Defaults to DefaultResolver()
	// when nil.
	Resolver DialectResolver

	// MaxDialectDepth bounds recursive include depth. Zero means
	// maxDefaultDialectDepth.
	MaxDialectDepth int

	// StrictCRC, when true, makes the frame scanner treat a CRC_EXTRA
	// mismatch precisely as BadChecksum (the default and only behavior
	// today; reserved for a future relaxed mode the way pe.Options.Fast
	// reserves a fast-path toggle).
	StrictCRC bool

	// Logger receives structured diagnostics during initialization; the
	// frame scanner does not log. A nil Logger discards everything.
	Logger mlog.Logger
}

// Catalog is the process-wide, post-initialization-immutable map of message
// and enum schemas (spec §3). Frames borrow schemas from a Catalog by id and
// must not outlive the Catalog version they were decoded against.
type Catalog struct {
	messagesByID    map[uint32]*MessageSchema
	enumsByName     map[string]EnumSchema
	commandsByValue map[int64]EntryValue
	logger          *mlog.Helper
}

func newCatalog() *Catalog {
	return &Catalog{
		messagesByID:    make(map[uint32]*MessageSchema),
		enumsByName:     make(map[string]EnumSchema),
		commandsByValue: make(map[int64]EntryValue),
	}
}

var (
	globalCatalog atomic.Pointer[Catalog]
	initMu        sync.Mutex
)

// Initialize loads rootDialectName (and everything it recursively includes)
// through opts.Resolver, compiles it into a fresh Catalog, applies the given
// include-id filter (empty means "all included"), and installs it as the
// process-wide catalog, replacing any previous one. Concurrent calls to
// Initialize racing with in-flight encode/decode calls is documented
// undefined behavior per spec §5; Initialize itself is safe to call from
// multiple goroutines (serialized by an internal mutex).
func Initialize(rootDialectName string, opts *Options, includeIDs ...uint32) error {
	if opts == nil {
		opts = &Options{}
	}
	resolve := opts.Resolver
	if resolve == nil {
		resolve = DefaultResolver()
	}
	maxDepth := opts.MaxDialectDepth
	if maxDepth == 0 {
		maxDepth = maxDefaultDialectDepth
	}

	initMu.Lock()
	defer initMu.Unlock()

	bundle, err := loadDialectBundle(rootDialectName, resolve, maxDepth)
	if err != nil {
		return err
	}

	cat, err := compileBundle(bundle)
	if err != nil {
		return err
	}
	cat.logger = mlog.NewHelper(opts.Logger)

	if err := cat.includeMessages(includeIDs); err != nil {
		return err
	}

	cat.logger.Infof("loaded dialect %q: %d messages, %d enums",
		rootDialectName, len(cat.messagesByID), len(cat.enumsByName))

	globalCatalog.Store(cat)
	return nil
}

// activeCatalog returns the process-wide Catalog, or nil if Initialize has
// never been called.
func activeCatalog() *Catalog {
	return globalCatalog.Load()
}

// requireCatalog returns the active catalog or a NotInitialized error.
func requireCatalog() (*Catalog, error) {
	cat := activeCatalog()
	if cat == nil {
		return nil, newErr(NotInitialized, "")
	}
	return cat, nil
}

// IncludeMessages turns on exactly the given ids in the process-wide
// catalog and turns every other message off, except HEARTBEAT (id 0), which
// stays included; an empty slice means "all" (spec §4.4.2). Fails with
// UnknownMessageId if any id is not a loaded message, leaving the flags
// unchanged.
func IncludeMessages(ids ...uint32) error {
	cat, err := requireCatalog()
	if err != nil {
		return err
	}
	return cat.includeMessages(ids)
}

// ExcludeMessages turns off the given ids; HEARTBEAT (id 0) is always a
// silent no-op (spec §4.4.2). Fails with UnknownMessageId for ids that are
// not loaded messages.
func ExcludeMessages(ids ...uint32) error {
	cat, err := requireCatalog()
	if err != nil {
		return err
	}
	return cat.excludeMessages(ids)
}

func (c *Catalog) includeMessages(ids []uint32) error {
	if len(ids) == 0 {
		for _, m := range c.messagesByID {
			m.setIncluded(true)
		}
		return nil
	}
	want := make(map[uint32]bool, len(ids))
	for _, id := range ids {
		if _, ok := c.messagesByID[id]; !ok {
			return newErrf(UnknownMessageId, "%d", id)
		}
		want[id] = true
	}
	for id, m := range c.messagesByID {
		m.setIncluded(want[id] || id == heartbeatMessageID)
	}
	return nil
}

func (c *Catalog) excludeMessages(ids []uint32) error {
	for _, id := range ids {
		if id == heartbeatMessageID {
			continue // sticky-included, silent no-op.
		}
		m, ok := c.messagesByID[id]
		if !ok {
			return newErrf(UnknownMessageId, "%d", id)
		}
		m.setIncluded(false)
	}
	return nil
}

// Messages returns a read-only view of every loaded message schema, keyed by
// wire id.
func Messages() (map[uint32]*MessageSchema, error) {
	cat, err := requireCatalog()
	if err != nil {
		return nil, err
	}
	out := make(map[uint32]*MessageSchema, len(cat.messagesByID))
	for id, m := range cat.messagesByID {
		out[id] = m
	}
	return out, nil
}

// Enums returns a read-only view of every loaded enum schema, keyed by name.
func Enums() (map[string]EnumSchema, error) {
	cat, err := requireCatalog()
	if err != nil {
		return nil, err
	}
	out := make(map[string]EnumSchema, len(cat.enumsByName))
	for name, e := range cat.enumsByName {
		out[name] = e
	}
	return out, nil
}

// Command looks up a MAV_CMD entry by its numeric value (SPEC_FULL §4).
func Command(value int64) (EntryValue, bool) {
	cat := activeCatalog()
	if cat == nil {
		return EntryValue{}, false
	}
	entry, ok := cat.commandsByValue[value]
	return entry, ok
}

// lookupMessage returns the schema for id, or nil if unknown. It does not
// consider the Included flag — callers that care check it separately so
// MessageNotFound and MessageExcluded stay distinguishable (spec §4.6.3).
func (c *Catalog) lookupMessage(id uint32) *MessageSchema {
	return c.messagesByID[id]
}

// Describe writes a human-readable table of every loaded message (id, name,
// field count, CRC_EXTRA) to w, mirroring pe.File's String()-style dump
// idiom applied to catalog state instead of a parsed binary (SPEC_FULL §4).
func Describe(w io.Writer) error {
	cat, err := requireCatalog()
	if err != nil {
		return err
	}

	ids := make([]uint32, 0, len(cat.messagesByID))
	for id := range cat.messagesByID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		m := cat.messagesByID[id]
		status := "included"
		if !m.Included() {
			status = "excluded"
		}
		if _, err := fmt.Fprintf(w, "%-6d %-32s fields=%-3d crc_extra=0x%02x %s\n",
			m.ID, m.Name, len(m.Fields), m.CRCExtra, status); err != nil {
			return err
		}
	}
	return nil
}
