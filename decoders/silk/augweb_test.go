package silk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func augWebContext() *StreamContext {
	return &StreamContext{
		HeaderStartTime: testHour,
		Sensor:          21,
		FlowType:        2,
	}
}

// webRecord is an HTTPS response flow: the source holds the well-known
// port, the destination is the client.
func webRecord() *Record {
	r := &Record{}
	r.Clear()
	r.SetStartTime(testHour + 500)
	r.SetElapsed(1200)
	r.SetPkts(10)
	r.SetBytes(1500)
	r.SetProto(IPProtoTCP)
	r.SetFlags(0x1B)
	r.SetSPort(443)
	r.SetDPort(52000)
	r.SetSIPv4(0x0A000001)
	r.SetDIPv4(0x0A000002)
	r.SetApplication(443)
	r.SetSensor(21)
	r.SetFlowType(2)
	return r
}

func TestAugWebV5PackedBytes(t *testing.T) {
	codec := testCodec(t, FormatAugWeb, 5)
	ctx := augWebContext()
	r := webRecord()

	ar := make([]byte, codec.RecLen)
	require.NoError(t, codec.Pack(ctx, r, ar))
	require.Len(t, ar, 30)

	// is_tcp and src_is_srv bits set, start offset 500 msec
	assert.Equal(t, uint32(1<<23|1<<22|500), u32(ar[0:4]))
	assert.Equal(t, uint8(0x1B), ar[4])
	// server port code 1 (443) above a 30-bit elapsed
	assert.Equal(t, uint32(1<<30|1200), u32(ar[8:12]))
	assert.Equal(t, uint32(10), u32(ar[12:16]))
	assert.Equal(t, uint32(1500), u32(ar[16:20]))
	assert.Equal(t, uint32(0x0A000001), u32(ar[20:24]))
	// the client port is the only one stored
	assert.Equal(t, uint16(52000), u16(ar[28:30]))

	got := &Record{}
	require.NoError(t, codec.Unpack(ctx, got, ar))
	assert.Equal(t, r, got)
}

func TestAugWebV5ClientOnSourceSide(t *testing.T) {
	codec := testCodec(t, FormatAugWeb, 5)
	ctx := augWebContext()
	r := webRecord()
	r.SetSPort(52000)
	r.SetDPort(8080)

	got := roundTrip(t, codec, ctx, r)
	assert.Equal(t, r, got)
}

func TestAugWebV4RoundTrip(t *testing.T) {
	codec := testCodec(t, FormatAugWeb, 4)
	ctx := augWebContext()
	r := webRecord()

	got := roundTrip(t, codec, ctx, r)
	assert.Equal(t, r, got)
}

func TestAugWebV4RoundTripExpandedFlags(t *testing.T) {
	codec := testCodec(t, FormatAugWeb, 4)
	ctx := augWebContext()
	r := webRecord()
	r.SetSPort(50001)
	r.SetDPort(80)
	r.SetTCPState(TCPStateExpanded)
	r.SetInitFlags(0x02)
	r.SetRestFlags(0x11)
	r.SetFlags(0x13)

	got := roundTrip(t, codec, ctx, r)
	assert.Equal(t, r, got)
}

func TestAugWebV1RoundTrip(t *testing.T) {
	codec := testCodec(t, FormatAugWeb, 1)
	ctx := augWebContext()
	r := webRecord()
	r.SetElapsed(61750)

	got := roundTrip(t, codec, ctx, r)
	assert.Equal(t, r, got)
}

func TestAugWebRejectsNonTCP(t *testing.T) {
	ctx := augWebContext()
	r := webRecord()
	r.SetProto(17)

	for _, vers := range []Version{1, 4, 5} {
		codec := testCodec(t, FormatAugWeb, vers)
		err := codec.Pack(ctx, r, make([]byte, codec.RecLen))
		assert.ErrorIs(t, err, ErrProtocolMismatch, "version %d", vers)
	}
}

func TestAugWebV5ElapsedOverflow(t *testing.T) {
	codec := testCodec(t, FormatAugWeb, 5)
	ctx := augWebContext()
	r := webRecord()
	r.SetElapsed(1 << 30)

	err := codec.Pack(ctx, r, make([]byte, codec.RecLen))
	require.ErrorIs(t, err, ErrFieldOverflow)

	var overflow *FieldOverflowError
	require.ErrorAs(t, err, &overflow)
	assert.Equal(t, "elapsed", overflow.Field)
	assert.Equal(t, 30, overflow.Bits)
}

func TestAugWebNonWebServerPortIsLost(t *testing.T) {
	// with neither port well known the destination is treated as the
	// server and its port cannot be represented
	codec := testCodec(t, FormatAugWeb, 4)
	ctx := augWebContext()
	r := webRecord()
	r.SetSPort(1234)
	r.SetDPort(9999)

	got := roundTrip(t, codec, ctx, r)
	assert.Equal(t, uint16(1234), got.SPort())
	assert.Equal(t, uint16(0), got.DPort())
}

func TestAugWebSwappedStream(t *testing.T) {
	codec := testCodec(t, FormatAugWeb, 5)
	swapped := augWebContext()
	swapped.NeedsSwap = true
	r := webRecord()

	got := roundTrip(t, codec, swapped, r)
	assert.Equal(t, r, got)
}
