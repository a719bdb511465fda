package silk

import (
	"math"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPv6RoutingV1RoundTrip(t *testing.T) {
	codec := testCodec(t, FormatIPv6Routing, 1)
	ctx := &StreamContext{}
	r := baseRecord()
	r.SetMemo(9)
	r.SetNhIPv4(0xC0A800FE)

	got := roundTrip(t, codec, ctx, r)
	assert.Equal(t, r, got)
}

func TestIPv6RoutingV1RoundTripIPv6(t *testing.T) {
	codec := testCodec(t, FormatIPv6Routing, 1)
	ctx := &StreamContext{}
	r := ipv6Record()
	nh := netip.MustParseAddr("2001:db8::1").As16()
	r.SetNhIPv6(nh[:])

	got := roundTrip(t, codec, ctx, r)
	assert.Equal(t, r, got)
	assert.Equal(t, nh, got.NhIPv6())
}

func TestIPv6RoutingV2DropsApplication(t *testing.T) {
	codec := testCodec(t, FormatIPv6Routing, 2)
	ctx := &StreamContext{}
	r := baseRecord()
	require.NotZero(t, r.Application())

	got := roundTrip(t, codec, ctx, r)

	want := *r
	want.SetApplication(0)
	assert.Equal(t, &want, got)
}

func TestIPv6RoutingV3RoundTrip(t *testing.T) {
	codec := testCodec(t, FormatIPv6Routing, 3)
	ctx := &StreamContext{}
	r := baseRecord()
	r.SetNhIPv4(0xC0A800FE)
	r.SetTCPState(TCPStateTimeoutStarted)

	got := roundTrip(t, codec, ctx, r)
	assert.Equal(t, r, got)
}

func TestIPv6RoutingV3ClampsWideFields(t *testing.T) {
	codec := testCodec(t, FormatIPv6Routing, 3)
	ctx := &StreamContext{}
	r := baseRecord()

	ar := make([]byte, codec.RecLen)
	require.NoError(t, codec.Pack(ctx, r, ar))

	// widen the on-disk counters beyond the generic record's range
	putU32(ar[28:32], 70000)
	putU64(ar[32:40], 1<<33)
	putU64(ar[40:48], math.MaxUint64)
	putU32(ar[96:100], 1<<20)

	got := &Record{}
	require.NoError(t, codec.Unpack(ctx, got, ar))
	assert.Equal(t, uint16(math.MaxUint16), got.Input())
	assert.Equal(t, uint32(math.MaxUint32), got.Pkts())
	assert.Equal(t, uint32(math.MaxUint32), got.Bytes())
	assert.Equal(t, uint16(math.MaxUint16), got.Output())
}

func TestIPv6RoutingSwappedStream(t *testing.T) {
	codec := testCodec(t, FormatIPv6Routing, 3)
	swapped := &StreamContext{NeedsSwap: true}
	r := ipv6Record()
	nh := netip.MustParseAddr("2001:db8::1").As16()
	r.SetNhIPv6(nh[:])

	got := roundTrip(t, codec, swapped, r)
	assert.Equal(t, r, got)
}
