package silk

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordClear(t *testing.T) {
	r := baseRecord()
	r.Clear()
	assert.Equal(t, InvalidSensor, r.Sensor())
	assert.Equal(t, InvalidFlowType, r.FlowType())
	assert.Equal(t, uint32(0), r.Pkts())
	assert.False(t, r.IsIPv6())
	assert.Equal(t, netip.AddrFrom4([4]byte{}), r.SIP())
	assert.Equal(t, netip.AddrFrom4([4]byte{}), r.NhIP())
}

// A record that never had a next hop assigned must come back from an
// address-bearing layout identical to how it went in.
func TestRecordClearedNextHopRoundTrip(t *testing.T) {
	c := testCodec(t, FormatIPv6Routing, 1)

	r := baseRecord()
	want := *r

	ar := make([]byte, c.RecLen)
	ctx := &StreamContext{HeaderStartTime: testHour, Mode: Write}
	require.NoError(t, c.Pack(ctx, r, ar))

	var got Record
	require.NoError(t, c.Unpack(ctx, &got, ar))
	assert.Equal(t, want.NhIP(), got.NhIP())
	assert.Equal(t, want, got)
}

func TestRecordTCPStateMask(t *testing.T) {
	r := &Record{}
	r.Clear()
	r.SetTCPState(0xFF)
	assert.Equal(t, uint8(0x79), r.TCPState())
}

func TestRecordICMPTypeAndCode(t *testing.T) {
	r := &Record{}
	r.Clear()
	r.SetICMPTypeAndCode(3<<8 | 1)
	assert.Equal(t, uint16(0x0301), r.DPort())
	r.SetDPort(0x0800)
	assert.Equal(t, uint16(0x0800), r.ICMPTypeAndCode())
}

func TestRecordIPv4MappedForm(t *testing.T) {
	r := &Record{}
	r.Clear()
	r.SetSIPv4(0x0A000001)
	assert.Equal(t, netip.MustParseAddr("10.0.0.1"), r.SIP())

	b := r.SIPv6()
	assert.Equal(t, v4inV6Prefix[:], b[:12])
	assert.Equal(t, []byte{10, 0, 0, 1}, b[12:16])
	assert.Equal(t, uint32(0x0A000001), r.SIPv4())
}

func TestRecordConvertBetweenFamilies(t *testing.T) {
	r := &Record{}
	r.Clear()
	r.SetSIPv4(0x0A000001)
	r.SetDIPv4(0x0A000002)

	r.SetIPv6()
	require.True(t, r.IsIPv6())
	assert.True(t, r.SIP().Is4In6())
	assert.Equal(t, uint32(0x0A000001), r.SIPv4())

	require.True(t, r.ConvertToIPv4())
	assert.False(t, r.IsIPv6())
	assert.Equal(t, netip.MustParseAddr("10.0.0.2"), r.DIP())

	addr := netip.MustParseAddr("2001:db8::1").As16()
	r.SetSIPv6(addr[:])
	assert.True(t, r.IsIPv6())
	assert.False(t, r.ConvertToIPv4(), "a native IPv6 address cannot demote")
}

func TestRecordIsWeb(t *testing.T) {
	r := &Record{}
	r.Clear()
	r.SetProto(IPProtoTCP)
	r.SetSPort(50000)
	r.SetDPort(443)
	assert.True(t, r.IsWeb())

	r.SetDPort(25)
	assert.False(t, r.IsWeb())

	r.SetSPort(8080)
	assert.True(t, r.IsWeb())

	r.SetProto(17)
	assert.False(t, r.IsWeb())
}
