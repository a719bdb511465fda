package format

import (
	"net/netip"
	"strconv"
	"time"

	"github.com/movsoftware/silkio/decoders/silk"
)

// RecordKey derives the partition key for a record: flows from one
// sensor stay together.
func RecordKey(r *silk.Record) []byte {
	return strconv.AppendUint(nil, uint64(r.Sensor()), 10)
}

var tcpFlagLetters = []struct {
	bit    uint8
	letter byte
}{
	{0x01, 'F'},
	{0x02, 'S'},
	{0x04, 'R'},
	{0x08, 'P'},
	{0x10, 'A'},
	{0x20, 'U'},
	{0x40, 'E'},
	{0x80, 'C'},
}

// TCPFlagsString renders a TCP flag byte as its letter form, FSRPAUEC
// order.
func TCPFlagsString(flags uint8) string {
	var b [8]byte
	n := 0
	for _, f := range tcpFlagLetters {
		if flags&f.bit != 0 {
			b[n] = f.letter
			n++
		}
	}
	return string(b[:n])
}

// Timestamp renders milliseconds since the UNIX epoch in the
// conventional flow-record form.
func Timestamp(msec int64) string {
	return time.UnixMilli(msec).UTC().Format("2006/01/02T15:04:05.000")
}

// AddrString renders an address, with the unset address as the zero
// IPv4 address the packed layouts store.
func AddrString(a netip.Addr) string {
	if !a.IsValid() {
		return "0.0.0.0"
	}
	return a.String()
}
