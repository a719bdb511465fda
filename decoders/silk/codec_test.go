package silk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// 2020-03-01 00:00:00 UTC in milliseconds, an hour boundary.
const testHour = int64(1583020800000)

func testCodec(t *testing.T, id FormatID, vers Version) *BoundCodec {
	t.Helper()
	codec, err := DefaultRegistry().Prepare(id, vers, Write, 0)
	require.NoError(t, err)
	return codec
}

// baseRecord returns a TCP flow with an exact bytes-per-packet ratio so
// the compact layouts reproduce the counts bit for bit.
func baseRecord() *Record {
	r := &Record{}
	r.Clear()
	r.SetStartTime(testHour + 2500)
	r.SetElapsed(61000)
	r.SetPkts(10)
	r.SetBytes(5000)
	r.SetProto(IPProtoTCP)
	r.SetFlags(0x1B)
	r.SetSPort(33766)
	r.SetDPort(443)
	r.SetSIPv4(0x0A010203)
	r.SetDIPv4(0xC0A80001)
	r.SetInput(3)
	r.SetOutput(4)
	r.SetSensor(21)
	r.SetFlowType(2)
	r.SetApplication(443)
	return r
}

func roundTrip(t *testing.T, codec *BoundCodec, ctx *StreamContext, r *Record) *Record {
	t.Helper()
	ar := make([]byte, codec.RecLen)
	require.NoError(t, codec.Pack(ctx, r, ar))
	got := &Record{}
	require.NoError(t, codec.Unpack(ctx, got, ar))
	return got
}
