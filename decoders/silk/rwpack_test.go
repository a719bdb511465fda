package silk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytesPacketsExactRatio(t *testing.T) {
	cases := []struct {
		name  string
		pkts  uint32
		bytes uint32
	}{
		{"small", 10, 5000},
		{"one packet", 1, 40},
		{"equal counts", 7, 7},
		{"max whole ratio", 4, 4 * 16383},
		{"divided packets", 1 << 21, 1 << 21},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := &Record{}
			r.Clear()
			r.SetPkts(tc.pkts)
			r.SetBytes(tc.bytes)

			bpp, pkts, pflag, err := packBytesPackets(r)
			require.NoError(t, err)
			if tc.pkts >= maxPkts {
				assert.Equal(t, uint32(1), pflag)
				assert.Equal(t, tc.pkts/pktsDivisor, pkts)
			} else {
				assert.Equal(t, uint32(0), pflag)
				assert.Equal(t, tc.pkts, pkts)
			}

			got := &Record{}
			got.Clear()
			unpackBytesPackets(got, bpp, pkts, pflag)
			assert.Equal(t, tc.pkts, got.Pkts())
			assert.Equal(t, tc.bytes, got.Bytes())
		})
	}
}

func TestBytesPacketsFractionalRatio(t *testing.T) {
	// 10/3 bytes per packet: quot 3, remainder 1, fraction 64/3 = 21.
	// Expansion gives 21*3/64 = 0 rem 63, which rounds up to 10 bytes.
	r := &Record{}
	r.Clear()
	r.SetPkts(3)
	r.SetBytes(10)

	bpp, pkts, pflag, err := packBytesPackets(r)
	require.NoError(t, err)
	assert.Equal(t, uint32(3<<6|21), bpp)

	got := &Record{}
	got.Clear()
	unpackBytesPackets(got, bpp, pkts, pflag)
	assert.Equal(t, uint32(3), got.Pkts())
	assert.Equal(t, uint32(10), got.Bytes())
}

func TestBytesPacketsErrors(t *testing.T) {
	cases := []struct {
		name  string
		pkts  uint32
		bytes uint32
		want  error
	}{
		{"zero packets", 0, 100, ErrPacketsZero},
		{"packets above bytes", 10, 9, ErrPacketsGreaterThanBytes},
		{"ratio overflow", 2, 2 * 16384, ErrFieldOverflow},
		{"packets double overflow", 1 << 26, 1 << 26, ErrFieldOverflow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := &Record{}
			r.Clear()
			r.SetPkts(tc.pkts)
			r.SetBytes(tc.bytes)
			_, _, _, err := packBytesPackets(r)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestPackTimeUnderflowAndOverflow(t *testing.T) {
	r := baseRecord()

	r.SetStartTime(testHour - 1)
	_, _, err := packSbbPef(r, testHour)
	assert.ErrorIs(t, err, ErrStartTimeUnderflow)
	_, _, _, err = packTimeBytesPktsFlags(r, testHour)
	assert.ErrorIs(t, err, ErrStartTimeUnderflow)
	err = packFlagsTimesVolumes(make([]byte, 12), r, testHour, 12)
	assert.ErrorIs(t, err, ErrStartTimeUnderflow)
	err = packTimesFlagsProto(r, make([]byte, 6), testHour)
	assert.ErrorIs(t, err, ErrStartTimeUnderflow)

	r.SetStartTime(testHour + 1000*maxStartTime)
	_, _, err = packSbbPef(r, testHour)
	assert.ErrorIs(t, err, ErrFieldOverflow)
	err = packTimesFlagsProto(r, make([]byte, 6), testHour)
	assert.ErrorIs(t, err, ErrFieldOverflow)

	r = baseRecord()
	r.SetElapsed(1000 * maxElapsedTime)
	_, _, _, err = packTimeBytesPktsFlags(r, testHour)
	assert.ErrorIs(t, err, ErrFieldOverflow)
	err = packFlagsTimesVolumes(make([]byte, 12), r, testHour, 12)
	assert.ErrorIs(t, err, ErrFieldOverflow)

	r.SetElapsed(1000 * maxElapsedTimeOld)
	_, _, err = packSbbPef(r, testHour)
	assert.ErrorIs(t, err, ErrFieldOverflow)
	var overflow *FieldOverflowError
	require.ErrorAs(t, err, &overflow)
	assert.Equal(t, "elapsed", overflow.Field)
}

func TestMaybeClearTCPStateExpanded(t *testing.T) {
	r := &Record{}
	r.Clear()
	r.SetProto(IPProtoTCP)
	r.SetTCPState(TCPStateExpanded | TCPStateTimeoutKilled)
	maybeClearTCPStateExpanded(r)
	assert.Equal(t, TCPStateTimeoutKilled, r.TCPState())

	r.Clear()
	r.SetProto(17)
	r.SetTCPState(TCPStateExpanded)
	r.SetInitFlags(0x02)
	maybeClearTCPStateExpanded(r)
	assert.Equal(t, TCPStateNoInfo, r.TCPState())
	assert.Equal(t, uint8(0), r.InitFlags())

	r.Clear()
	r.SetProto(IPProtoTCP)
	r.SetTCPState(TCPStateExpanded)
	r.SetInitFlags(0x02)
	r.SetRestFlags(0x10)
	maybeClearTCPStateExpanded(r)
	assert.Equal(t, TCPStateExpanded, r.TCPState())
	assert.Equal(t, uint8(0x02), r.InitFlags())
}

func TestWebPortCoding(t *testing.T) {
	for _, p := range []uint16{80, 443, 8080} {
		assert.True(t, isWebPort(p))
		assert.Equal(t, p, webPortExpand(webPortEncode(p)))
	}
	assert.False(t, isWebPort(8443))
	assert.Equal(t, uint32(3), webPortEncode(8443))
	assert.Equal(t, uint16(0), webPortExpand(3))
}
