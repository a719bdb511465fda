package silk

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ipv6Record() *Record {
	r := baseRecord()
	sip := netip.MustParseAddr("2001:db8::10").As16()
	dip := netip.MustParseAddr("2001:db8::20").As16()
	r.SetSIPv6(sip[:])
	r.SetDIPv6(dip[:])
	r.SetTCPState(TCPStateExpanded)
	r.SetInitFlags(0x02)
	r.SetRestFlags(0x10)
	r.SetFlags(0x12)
	return r
}

func TestIPv6V1RoundTripIPv4Record(t *testing.T) {
	codec := testCodec(t, FormatIPv6, 1)
	ctx := &StreamContext{}
	r := baseRecord()
	r.SetMemo(7)

	ar := make([]byte, codec.RecLen)
	require.NoError(t, codec.Pack(ctx, r, ar))

	// IPv4 addresses are stored in their mapped form
	assert.Equal(t, v4inV6Prefix[:], ar[36:48])
	assert.Equal(t, uint32(0x0A010203), be32(ar[48:52]))
	assert.Equal(t, uint32(0xC0A80001), be32(ar[64:68]))
	assert.Zero(t, ar[23]&ipv6FlagBit)

	got := &Record{}
	require.NoError(t, codec.Unpack(ctx, got, ar))

	// interfaces are not part of this format
	want := *r
	want.SetInput(0)
	want.SetOutput(0)
	assert.Equal(t, &want, got)
}

func TestIPv6V1RoundTripIPv6Record(t *testing.T) {
	codec := testCodec(t, FormatIPv6, 1)
	ctx := &StreamContext{}
	r := ipv6Record()

	ar := make([]byte, codec.RecLen)
	require.NoError(t, codec.Pack(ctx, r, ar))
	assert.NotZero(t, ar[23]&ipv6FlagBit)

	got := &Record{}
	require.NoError(t, codec.Unpack(ctx, got, ar))

	want := *r
	want.SetInput(0)
	want.SetOutput(0)
	assert.Equal(t, &want, got)
	assert.True(t, got.IsIPv6())
	assert.Equal(t, netip.MustParseAddr("2001:db8::10").As16(), got.SIPv6())
}

func TestIPv6V1ClearsBogusExpandedState(t *testing.T) {
	codec := testCodec(t, FormatIPv6, 1)
	ctx := &StreamContext{}
	r := baseRecord()
	r.SetTCPState(TCPStateExpanded) // no split flags recorded

	got := roundTrip(t, codec, ctx, r)
	assert.Equal(t, TCPStateNoInfo, got.TCPState())
}

func TestIPv6V2RoundTrip(t *testing.T) {
	codec := testCodec(t, FormatIPv6, 2)
	ctx := &StreamContext{HeaderStartTime: testHour, Sensor: 21, FlowType: 2}
	r := baseRecord()

	got := roundTrip(t, codec, ctx, r)

	want := *r
	want.SetInput(0)
	want.SetOutput(0)
	assert.Equal(t, &want, got)
}

func TestIPv6V2RoundTripExpandedFlags(t *testing.T) {
	codec := testCodec(t, FormatIPv6, 2)
	ctx := &StreamContext{HeaderStartTime: testHour, Sensor: 21, FlowType: 2}
	r := ipv6Record()

	got := roundTrip(t, codec, ctx, r)

	want := *r
	want.SetInput(0)
	want.SetOutput(0)
	assert.Equal(t, &want, got)
	assert.Equal(t, uint8(0x02), got.InitFlags())
	assert.Equal(t, uint8(0x10), got.RestFlags())
}

func TestIPv6SwappedStream(t *testing.T) {
	codec := testCodec(t, FormatIPv6, 1)
	native := &StreamContext{}
	swapped := &StreamContext{NeedsSwap: true}
	r := ipv6Record()

	arNative := make([]byte, codec.RecLen)
	require.NoError(t, codec.Pack(native, r, arNative))
	arSwapped := make([]byte, codec.RecLen)
	require.NoError(t, codec.Pack(swapped, r, arSwapped))

	// scalar fields change order, address bytes never do
	assert.NotEqual(t, arNative[:36], arSwapped[:36])
	assert.Equal(t, arNative[36:], arSwapped[36:])

	got := &Record{}
	require.NoError(t, codec.Unpack(swapped, got, arSwapped))

	want := *r
	want.SetInput(0)
	want.SetOutput(0)
	assert.Equal(t, &want, got)
}
