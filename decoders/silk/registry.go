package silk

import (
	"fmt"
	"strings"
)

// FormatID identifies an on-disk record format. The values match the
// historical file-format octets.
type FormatID uint8

const (
	FormatIPv6        FormatID = 0x0B
	FormatIPv6Routing FormatID = 0x0C
	FormatNotRouted   FormatID = 0x11
	FormatAugWeb      FormatID = 0x15
)

func (f FormatID) String() string {
	switch f {
	case FormatIPv6:
		return "FT_RWIPV6"
	case FormatIPv6Routing:
		return "FT_RWIPV6ROUTING"
	case FormatNotRouted:
		return "FT_RWNOTROUTED"
	case FormatAugWeb:
		return "FT_RWAUGWEB"
	default:
		return fmt.Sprintf("FT_0x%02X", uint8(f))
	}
}

// ParseFormatID resolves a format name, either the short form used on
// command lines ("notrouted") or the historical identifier
// ("FT_RWNOTROUTED"). Matching is case-insensitive.
func ParseFormatID(name string) (FormatID, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.ToUpper(name), "FT_RW")) {
	case "ipv6":
		return FormatIPv6, nil
	case "ipv6routing":
		return FormatIPv6Routing, nil
	case "notrouted":
		return FormatNotRouted, nil
	case "augweb":
		return FormatAugWeb, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Version numbers a format's byte layout. VersionAny asks Prepare to
// substitute the format's default version on a write stream.
type Version uint8

const VersionAny Version = 0

// IOMode tells Prepare whether the stream reads or writes records.
type IOMode int

const (
	Read IOMode = iota
	Write
)

// StreamContext carries the per-stream values a codec consumes but does
// not own: the byte-order fixup flag, the hour base for offset-encoded
// start times (milliseconds since epoch), and the sensor and flow-type
// identifiers that several layouts take from the stream rather than the
// record bytes. Codecs only read it; one context must not be shared by
// concurrent writers without external ordering.
type StreamContext struct {
	NeedsSwap       bool
	HeaderStartTime int64
	Sensor          uint16
	FlowType        uint8
	Mode            IOMode
}

type packFn func(ctx *StreamContext, r *Record, ar []byte) error
type unpackFn func(ctx *StreamContext, r *Record, ar []byte) error

type codecEntry struct {
	recLen uint16
	pack   packFn
	unpack unpackFn
}

// Format describes one record format: its identity, default write
// version, the codec table, and an explicit alias table for versions
// that share another version's byte layout.
type Format struct {
	ID             FormatID
	Name           string
	DefaultVersion Version

	versions map[Version]codecEntry
	aliases  map[Version]Version
}

func (f *Format) resolve(vers Version) (codecEntry, bool) {
	if canonical, ok := f.aliases[vers]; ok {
		vers = canonical
	}
	entry, ok := f.versions[vers]
	return entry, ok
}

// RecordLength returns the fixed byte length of one packed record for
// the version, or false if the format does not implement it.
func (f *Format) RecordLength(vers Version) (uint16, bool) {
	entry, ok := f.resolve(vers)
	if !ok {
		return 0, false
	}
	return entry.recLen, true
}

// BoundCodec is the immutable result of Prepare: the pack and unpack
// functions for one (format, version) pair and the record length both
// sides must honor. It holds no mutable state and may be shared across
// goroutines.
type BoundCodec struct {
	Format  FormatID
	Version Version
	RecLen  uint16

	pack   packFn
	unpack unpackFn
}

// Pack serializes the record into ar, which must be exactly RecLen
// bytes. The record is not modified. On error nothing useful has been
// written to ar.
func (c *BoundCodec) Pack(ctx *StreamContext, r *Record, ar []byte) error {
	if len(ar) != int(c.RecLen) {
		return &CodecError{c.Format, c.Version, fmt.Errorf("%w: have %d, want %d", ErrShortBuffer, len(ar), c.RecLen)}
	}
	if err := c.pack(ctx, r, ar); err != nil {
		return &CodecError{c.Format, c.Version, err}
	}
	return nil
}

// Unpack overwrites the record with the contents of ar, which must be
// exactly RecLen bytes. The record is cleared first; fields absent from
// the layout come from ctx or stay at their cleared values. When
// ctx.NeedsSwap is set the byte-order fixup happens in place, so ar is
// modified.
func (c *BoundCodec) Unpack(ctx *StreamContext, r *Record, ar []byte) error {
	if len(ar) != int(c.RecLen) {
		return &CodecError{c.Format, c.Version, fmt.Errorf("%w: have %d, want %d", ErrShortBuffer, len(ar), c.RecLen)}
	}
	r.Clear()
	if err := c.unpack(ctx, r, ar); err != nil {
		return &CodecError{c.Format, c.Version, err}
	}
	return nil
}

// Registry maps format identifiers to their codec tables. Construct one
// with DefaultRegistry (or NewRegistry for a custom set) and pass it to
// whatever owns the streams; there is no process-wide instance.
type Registry struct {
	formats map[FormatID]*Format
}

// NewRegistry builds a registry from an explicit format list.
func NewRegistry(formats ...*Format) *Registry {
	g := &Registry{formats: make(map[FormatID]*Format, len(formats))}
	for _, f := range formats {
		g.formats[f.ID] = f
	}
	return g
}

// DefaultRegistry returns a registry holding every built-in format.
func DefaultRegistry() *Registry {
	return NewRegistry(
		notRoutedFormat(),
		ipv6Format(),
		ipv6RoutingFormat(),
		augWebFormat(),
	)
}

// Lookup returns the format descriptor for id.
func (g *Registry) Lookup(id FormatID) (*Format, bool) {
	f, ok := g.formats[id]
	return f, ok
}

// Prepare resolves the codec for one stream: it substitutes the
// format's default version when vers is VersionAny on a write stream,
// validates the version, and returns the bound codec with its record
// length. headerRecLen is the record length already declared by the
// stream header, or zero when the header carries none; a nonzero value
// that disagrees with the codec table is a build or logic defect and
// panics rather than letting every subsequent record boundary
// desynchronize.
//
// Prepare is called once per stream, before any record is packed or
// unpacked.
func (g *Registry) Prepare(id FormatID, vers Version, mode IOMode, headerRecLen uint16) (*BoundCodec, error) {
	f, ok := g.formats[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, id)
	}

	if vers == VersionAny && mode == Write {
		vers = f.DefaultVersion
	}

	entry, ok := f.resolve(vers)
	if !ok {
		return nil, &UnsupportedVersionError{Format: f.Name, Version: vers}
	}

	if headerRecLen != 0 && headerRecLen != entry.recLen {
		panic(fmt.Sprintf("record length mismatch for %s version %d: code = %d bytes; header = %d bytes",
			f.Name, vers, entry.recLen, headerRecLen))
	}

	return &BoundCodec{
		Format:  id,
		Version: vers,
		RecLen:  entry.recLen,
		pack:    entry.pack,
		unpack:  entry.unpack,
	}, nil
}
