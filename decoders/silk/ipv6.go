package silk

// FT_RWIPV6: dual-stack flows without routing information. Both layouts
// reserve sixteen bytes per address; an IPv4 record is written in its
// IPv4-mapped form with the high bit of the state byte clear.

func ipv6Format() *Format {
	return &Format{
		ID:             FormatIPv6,
		Name:           "FT_RWIPV6",
		DefaultVersion: 1,
		versions: map[Version]codecEntry{
			1: {recLen: 68, pack: ipv6PackV1, unpack: ipv6UnpackV1},
			2: {recLen: 56, pack: ipv6PackV2, unpack: ipv6UnpackV2},
		},
	}
}

// Version 1 layout, a plain field dump:
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
//	28-31  pkts
//	32-35  bytes
//	36-51  sIP
//	52-67  dIP
//
// Unlike the compact layouts, sensor and flow type live in the record.
func ipv6SwapV1(ar []byte) {
	swap64(ar[0:])
	swap32(ar[8:])
	swap16(ar[12:])
	swap16(ar[14:])
	swap16(ar[18:])
	swap16(ar[24:])
	swap16(ar[26:])
	swap32(ar[28:])
	swap32(ar[32:])
}

func ipv6UnpackV1(ctx *StreamContext, r *Record, ar []byte) error {
	if ctx.NeedsSwap {
		ipv6SwapV1(ar)
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
	r.SetPkts(u32(ar[28:32]))
	r.SetBytes(u32(ar[32:36]))

	if ar[23]&ipv6FlagBit != 0 {
		if !enableIPv6 {
			return ErrUnsupportedIPv6
		}
		r.SetSIPv6(ar[36:52])
		r.SetDIPv6(ar[52:68])
	} else {
		r.SetSIPv4(be32(ar[48:52]))
		r.SetDIPv4(be32(ar[64:68]))
	}

	maybeClearTCPStateExpanded(r)
	return nil
}

func ipv6PackV1(ctx *StreamContext, r *Record, ar []byte) error {
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
	putU32(ar[28:32], r.Pkts())
	putU32(ar[32:36], r.Bytes())

	if r.IsIPv6() {
		ar[23] |= ipv6FlagBit
	}
	sip := r.SIPv6()
	dip := r.DIPv6()
	copy(ar[36:52], sip[:])
	copy(ar[52:68], dip[:])

	if ctx.NeedsSwap {
		ipv6SwapV1(ar)
	}
	return nil
}

// Version 2 layout:
//
//	 0- 3  rflag_stime: rest_flags:8, is_tcp:1, unused:1,
//	       stime:22 (msec from hour)
//	 4     proto, or TCP flags (see times/flags/proto words)
//	 5     tcp_state (0x80 = IPv6)
//	 6- 7  application
//	 8- 9  sPort
//	10-11  dPort
//	12-15  elapsed (msec)
//	16-19  pkts
//	20-23  bytes
//	24-39  sIP
//	40-55  dIP
func ipv6SwapV2(ar []byte) {
	swap32(ar[0:])
	swap16(ar[6:])
	swap16(ar[8:])
	swap16(ar[10:])
	swap32(ar[12:])
	swap32(ar[16:])
	swap32(ar[20:])
}

func ipv6UnpackV2(ctx *StreamContext, r *Record, ar []byte) error {
	if ctx.NeedsSwap {
		ipv6SwapV2(ar)
	}

	unpackTimesFlagsProto(r, ar, ctx.HeaderStartTime)

	r.SetApplication(u16(ar[6:8]))
	r.SetSPort(u16(ar[8:10]))
	r.SetDPort(u16(ar[10:12]))
	r.SetElapsed(u32(ar[12:16]))
	r.SetPkts(u32(ar[16:20]))
	r.SetBytes(u32(ar[20:24]))

	if ar[5]&ipv6FlagBit != 0 {
		if !enableIPv6 {
			return ErrUnsupportedIPv6
		}
		r.SetSIPv6(ar[24:40])
		r.SetDIPv6(ar[40:56])
	} else {
		r.SetSIPv4(be32(ar[36:40]))
		r.SetDIPv4(be32(ar[52:56]))
	}

	r.SetSensor(ctx.Sensor)
	r.SetFlowType(ctx.FlowType)
	return nil
}

func ipv6PackV2(ctx *StreamContext, r *Record, ar []byte) error {
	if r.IsIPv6() && !enableIPv6 {
		return ErrUnsupportedIPv6
	}

	if err := packTimesFlagsProto(r, ar, ctx.HeaderStartTime); err != nil {
		return err
	}

	putU16(ar[6:8], r.Application())
	putU16(ar[8:10], r.SPort())
	putU16(ar[10:12], r.DPort())
	putU32(ar[12:16], r.Elapsed())
	putU32(ar[16:20], r.Pkts())
	putU32(ar[20:24], r.Bytes())

	if r.IsIPv6() {
		ar[5] |= ipv6FlagBit
	}
	sip := r.SIPv6()
	dip := r.DIPv6()
	copy(ar[24:40], sip[:])
	copy(ar[40:56], dip[:])

	if ctx.NeedsSwap {
		ipv6SwapV2(ar)
	}
	return nil
}
