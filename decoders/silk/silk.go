// Package silk packs and unpacks the historical fixed-length flow
// record layouts. Each format covers one flow category and carries a
// handful of numbered byte layouts that evolved for compactness; the
// codecs here reproduce every layout bit for bit, including the
// IPv4-mapped address convention of the dual-stack formats and the
// conditional byte-order fixup driven by the stream header.
//
// The package performs no I/O and allocates nothing on the pack or
// unpack path: buffers and records are owned by the caller, and all
// per-stream state lives in the caller's StreamContext. A BoundCodec
// obtained from Registry.Prepare is safe for concurrent use on
// distinct streams.
package silk
