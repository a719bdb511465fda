package silk

import (
	"errors"
	"fmt"
)

var (
	// ErrProtocolMismatch is returned when a record is packed into a
	// format that only stores a specific IP protocol.
	ErrProtocolMismatch = errors.New("protocol does not match format requirement")

	// ErrFieldOverflow is the base error for values that do not fit the
	// bit width of their packed representation.
	ErrFieldOverflow = errors.New("value exceeds packed field width")

	// ErrPacketsZero is returned when packing a record whose packet
	// count is zero.
	ErrPacketsZero = errors.New("record has a packet count of zero")

	// ErrPacketsGreaterThanBytes is returned when packing a record that
	// reports more packets than bytes.
	ErrPacketsGreaterThanBytes = errors.New("record has more packets than bytes")

	// ErrStartTimeUnderflow is returned when a record starts before the
	// hour recorded in the stream header.
	ErrStartTimeUnderflow = errors.New("flow start time precedes the stream hour")

	// ErrUnsupportedIPv6 is returned when a record or buffer carries
	// IPv6 addresses but the build excludes IPv6 support.
	ErrUnsupportedIPv6 = errors.New("IPv6 flow records are not supported by this build")

	// ErrUnsupportedVersion is returned by Prepare when the requested
	// record version is not implemented by the format.
	ErrUnsupportedVersion = errors.New("unsupported record version")

	// ErrUnknownFormat is returned by Prepare for a format identifier
	// the registry does not know.
	ErrUnknownFormat = errors.New("unknown file format")

	// ErrShortBuffer is returned when the caller's buffer length does
	// not equal the bound codec's record length.
	ErrShortBuffer = errors.New("buffer length does not match record length")
)

// FieldOverflowError reports the record field whose value does not fit
// its packed width.
type FieldOverflowError struct {
	Field string
	Value uint64
	Bits  int
}

func (e *FieldOverflowError) Error() string {
	return fmt.Sprintf("%s value %d exceeds its %d-bit packed field", e.Field, e.Value, e.Bits)
}

func (e *FieldOverflowError) Unwrap() error {
	return ErrFieldOverflow
}

// UnsupportedVersionError reports a version that a format does not
// implement.
type UnsupportedVersionError struct {
	Format  string
	Version Version
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("%s does not implement record version %d", e.Format, e.Version)
}

func (e *UnsupportedVersionError) Unwrap() error {
	return ErrUnsupportedVersion
}

// CodecError wraps a pack or unpack failure with the format and version
// it occurred in.
type CodecError struct {
	Format  FormatID
	Version Version
	Err     error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("%s v%d: %s", e.Format, e.Version, e.Err.Error())
}

func (e *CodecError) Unwrap() error {
	return e.Err
}
