package silk

import "math"

// FT_RWIPV6ROUTING: dual-stack flows with next hop and both interfaces.
// Version 3 widens the counters and interfaces beyond the generic
// record; oversized values are clamped on read.

// Version 2 shares version 1's bytes but zeroes the application field
// on read, so it gets its own table entry rather than an alias.
func ipv6RoutingFormat() *Format {
	return &Format{
		ID:             FormatIPv6Routing,
		Name:           "FT_RWIPV6ROUTING",
		DefaultVersion: 1,
		versions: map[Version]codecEntry{
			1: {recLen: 88, pack: ipv6RoutingPackV1, unpack: ipv6RoutingUnpackV1},
			2: {recLen: 88, pack: ipv6RoutingPackV1, unpack: ipv6RoutingUnpackV2},
			3: {recLen: 100, pack: ipv6RoutingPackV3, unpack: ipv6RoutingUnpackV3},
		},
	}
}

// Version 1 layout:
//
//	 0- 7  sTime (msec since epoch)
//	 8-11  elapsed (msec)
//	12-13  sPort
//	14-15  dPort
//	16     proto
//	17     flow_type
//	18-19  sensor
//	20     flags
//	21     init_flags
//	22     rest_flags
//	23     tcp_state (0x80 = IPv6)
//	24-25  application
//	26-27  memo
//	28-29  input
//	30-31  output
//	32-35  pkts
//	36-39  bytes
//	40-55  sIP
//	56-71  dIP
//	72-87  nhIP
func ipv6RoutingSwapV1(ar []byte) {
	swap64(ar[0:])
	swap32(ar[8:])
	swap16(ar[12:])
	swap16(ar[14:])
	swap16(ar[18:])
	swap16(ar[24:])
	swap16(ar[26:])
	swap16(ar[28:])
	swap16(ar[30:])
	swap32(ar[32:])
	swap32(ar[36:])
}

func ipv6RoutingUnpackV1(ctx *StreamContext, r *Record, ar []byte) error {
	if ctx.NeedsSwap {
		ipv6RoutingSwapV1(ar)
	}

	r.SetStartTime(int64(u64(ar[0:8])))
	r.SetElapsed(u32(ar[8:12]))
	r.SetSPort(u16(ar[12:14]))
	r.SetDPort(u16(ar[14:16]))
	r.SetProto(ar[16])
	r.SetFlowType(ar[17])
	r.SetSensor(u16(ar[18:20]))
	r.SetFlags(ar[20])
	r.SetInitFlags(ar[21])
	r.SetRestFlags(ar[22])
	r.SetTCPState(ar[23])
	r.SetApplication(u16(ar[24:26]))
	r.SetMemo(u16(ar[26:28]))
	r.SetInput(u16(ar[28:30]))
	r.SetOutput(u16(ar[30:32]))
	r.SetPkts(u32(ar[32:36]))
	r.SetBytes(u32(ar[36:40]))

	if ar[23]&ipv6FlagBit != 0 {
		if !enableIPv6 {
			return ErrUnsupportedIPv6
		}
		r.SetSIPv6(ar[40:56])
		r.SetDIPv6(ar[56:72])
		r.SetNhIPv6(ar[72:88])
	} else {
		r.SetSIPv4(be32(ar[52:56]))
		r.SetDIPv4(be32(ar[68:72]))
		r.SetNhIPv4(be32(ar[84:88]))
	}

	maybeClearTCPStateExpanded(r)
	return nil
}

func ipv6RoutingUnpackV2(ctx *StreamContext, r *Record, ar []byte) error {
	err := ipv6RoutingUnpackV1(ctx, r, ar)
	r.SetApplication(0)
	return err
}

func ipv6RoutingPackV1(ctx *StreamContext, r *Record, ar []byte) error {
	if r.IsIPv6() && !enableIPv6 {
		return ErrUnsupportedIPv6
	}

	putU64(ar[0:8], uint64(r.StartTime()))
	putU32(ar[8:12], r.Elapsed())
	putU16(ar[12:14], r.SPort())
	putU16(ar[14:16], r.DPort())
	ar[16] = r.Proto()
	ar[17] = r.FlowType()
	putU16(ar[18:20], r.Sensor())
	ar[20] = r.Flags()
	ar[21] = r.InitFlags()
	ar[22] = r.RestFlags()
	ar[23] = r.TCPState()
	putU16(ar[24:26], r.Application())
	putU16(ar[26:28], r.Memo())
	putU16(ar[28:30], r.Input())
	putU16(ar[30:32], r.Output())
	putU32(ar[32:36], r.Pkts())
	putU32(ar[36:40], r.Bytes())

	if r.IsIPv6() {
		ar[23] |= ipv6FlagBit
	}
	sip := r.SIPv6()
	dip := r.DIPv6()
	nhip := r.NhIPv6()
	copy(ar[40:56], sip[:])
	copy(ar[56:72], dip[:])
	copy(ar[72:88], nhip[:])

	if ctx.NeedsSwap {
		ipv6RoutingSwapV1(ar)
	}
	return nil
}

// Version 3 layout:
//
//	 0- 7  sTime (msec since epoch)
//	 8-11  elapsed (msec)
//	12-13  sPort
//	14-15  dPort
//	16     proto
//	17     flow_type
//	18-19  sensor
//	20     flags
//	21     init_flags
//	22     rest_flags
//	23     tcp_state (0x80 = IPv6)
//	24-25  application
//	26-27  memo
//	28-31  input (uint32)
//	32-39  pkts (uint64)
//	40-47  bytes (uint64)
//	48-63  sIP
//	64-79  dIP
//	80-95  nhIP
//	96-99  output (uint32)
func ipv6RoutingSwapV3(ar []byte) {
	swap64(ar[0:])
	swap32(ar[8:])
	swap16(ar[12:])
	swap16(ar[14:])
	swap16(ar[18:])
	swap16(ar[24:])
	swap16(ar[26:])
	swap32(ar[28:])
	swap64(ar[32:])
	swap64(ar[40:])
	swap32(ar[96:])
}

func ipv6RoutingUnpackV3(ctx *StreamContext, r *Record, ar []byte) error {
	if ar[23]&ipv6FlagBit != 0 && !enableIPv6 {
		return ErrUnsupportedIPv6
	}

	if ctx.NeedsSwap {
		ipv6RoutingSwapV3(ar)
	}

	r.SetStartTime(int64(u64(ar[0:8])))
	r.SetElapsed(u32(ar[8:12]))
	r.SetSPort(u16(ar[12:14]))
	r.SetDPort(u16(ar[14:16]))
	r.SetProto(ar[16])
	r.SetFlowType(ar[17])
	r.SetSensor(u16(ar[18:20]))
	r.SetFlags(ar[20])
	r.SetInitFlags(ar[21])
	r.SetRestFlags(ar[22])
	r.SetTCPState(ar[23])
	r.SetApplication(u16(ar[24:26]))
	r.SetMemo(u16(ar[26:28]))

	// wide fields clamp to the generic record's range
	r.SetInput(clamp16(u32(ar[28:32])))
	r.SetPkts(clamp32(u64(ar[32:40])))
	r.SetBytes(clamp32(u64(ar[40:48])))
	r.SetOutput(clamp16(u32(ar[96:100])))

	if ar[23]&ipv6FlagBit != 0 {
		r.SetSIPv6(ar[48:64])
		r.SetDIPv6(ar[64:80])
		r.SetNhIPv6(ar[80:96])
	} else {
		r.SetSIPv4(be32(ar[60:64]))
		r.SetDIPv4(be32(ar[76:80]))
		r.SetNhIPv4(be32(ar[92:96]))
	}

	return nil
}

func ipv6RoutingPackV3(ctx *StreamContext, r *Record, ar []byte) error {
	if r.IsIPv6() && !enableIPv6 {
		return ErrUnsupportedIPv6
	}

	putU64(ar[0:8], uint64(r.StartTime()))
	putU32(ar[8:12], r.Elapsed())
	putU16(ar[12:14], r.SPort())
	putU16(ar[14:16], r.DPort())
	ar[16] = r.Proto()
	ar[17] = r.FlowType()
	putU16(ar[18:20], r.Sensor())
	ar[20] = r.Flags()
	ar[21] = r.InitFlags()
	ar[22] = r.RestFlags()
	ar[23] = r.TCPState()
	putU16(ar[24:26], r.Application())
	putU16(ar[26:28], r.Memo())

	putU32(ar[28:32], uint32(r.Input()))
	putU64(ar[32:40], uint64(r.Pkts()))
	putU64(ar[40:48], uint64(r.Bytes()))
	putU32(ar[96:100], uint32(r.Output()))

	if r.IsIPv6() {
		ar[23] |= ipv6FlagBit
	}
	sip := r.SIPv6()
	dip := r.DIPv6()
	nhip := r.NhIPv6()
	copy(ar[48:64], sip[:])
	copy(ar[64:80], dip[:])
	copy(ar[80:96], nhip[:])

	if ctx.NeedsSwap {
		ipv6RoutingSwapV3(ar)
	}
	return nil
}

func clamp16(v uint32) uint16 {
	if v > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(v)
}

func clamp32(v uint64) uint32 {
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}
