package silk

// FT_RWNOTROUTED: IPv4 flows that were dropped before routing, so the
// layouts carry an input interface but no output interface or next hop.
// Sensor and flow type always come from the stream.

// notroutedFormat versions:
//
//	1, 2: 23 bytes, sbb/pef words
//	3, 4: 26 bytes, time/bytes/pkts/flags words
//	5:    26 bytes, flags/times/volumes words
//
// Version pairs differ only in header handling, not record bytes.
func notRoutedFormat() *Format {
	return &Format{
		ID:             FormatNotRouted,
		Name:           "FT_RWNOTROUTED",
		DefaultVersion: 5,
		versions: map[Version]codecEntry{
			1: {recLen: 23, pack: notRoutedPackV1, unpack: notRoutedUnpackV1},
			3: {recLen: 26, pack: notRoutedPackV3, unpack: notRoutedUnpackV3},
			5: {recLen: 26, pack: notRoutedPackV5, unpack: notRoutedUnpackV5},
		},
		aliases: map[Version]Version{2: 1, 4: 3},
	}
}

// Version 5 layout:
//
//	 0- 3  stime_bb1:    stime:22 (msec from hour), bPPkt1:10
//	 4- 7  bb2_elapsed:  bPPkt2:4, bPPFrac:6, elapsed:22 (msec)
//	 8-11  pro_flg_pkts: prot_flags:8, pflag:1, is_tcp:1, pad:2, pkts:20
//	12-13  sPort
//	14-15  dPort
//	16-19  sIP
//	20-23  dIP
//	24-25  input
func notRoutedSwapV5(ar []byte) {
	swap32(ar[0:])
	swap32(ar[4:])
	swap32(ar[8:])
	swap16(ar[12:])
	swap16(ar[14:])
	swap32(ar[16:])
	swap32(ar[20:])
	swap16(ar[24:])
}

func notRoutedUnpackV5(ctx *StreamContext, r *Record, ar []byte) error {
	if ctx.NeedsSwap {
		notRoutedSwapV5(ar)
	}

	unpackFlagsTimesVolumes(r, ar, ctx.HeaderStartTime, 12, false)

	r.SetSPort(u16(ar[12:14]))
	r.SetDPort(u16(ar[14:16]))
	r.SetSIPv4(u32(ar[16:20]))
	r.SetDIPv4(u32(ar[20:24]))
	r.SetInput(u16(ar[24:26]))

	r.SetSensor(ctx.Sensor)
	r.SetFlowType(ctx.FlowType)
	return nil
}

func notRoutedPackV5(ctx *StreamContext, r *Record, ar []byte) error {
	if err := packFlagsTimesVolumes(ar, r, ctx.HeaderStartTime, 12); err != nil {
		return err
	}

	putU16(ar[12:14], r.SPort())
	putU16(ar[14:16], r.DPort())
	putU32(ar[16:20], r.SIPv4())
	putU32(ar[20:24], r.DIPv4())
	putU16(ar[24:26], r.Input())

	if ctx.NeedsSwap {
		notRoutedSwapV5(ar)
	}
	return nil
}

// Version 3 layout:
//
//	 0- 3  sIP
//	 4- 7  dIP
//	 8- 9  sPort
//	10-11  dPort
//	12-15  pkts_stime: pkts:20, stime:12 (sec from hour)
//	16-19  bbe:        bPPkt:14, bPPFrac:6, elapsed:12 (sec)
//	20-23  msec_flags: stime_msec:10, elapsed_msec:10, pflag:1,
//	       is_tcp:1, pad:2, prot_flags:8
//	24-25  input
func notRoutedSwapV3(ar []byte) {
	swap32(ar[0:])
	swap32(ar[4:])
	swap16(ar[8:])
	swap16(ar[10:])
	swap32(ar[12:])
	swap32(ar[16:])
	swap32(ar[20:])
	swap16(ar[24:])
}

func notRoutedUnpackV3(ctx *StreamContext, r *Record, ar []byte) error {
	if ctx.NeedsSwap {
		notRoutedSwapV3(ar)
	}

	r.SetSIPv4(u32(ar[0:4]))
	r.SetDIPv4(u32(ar[4:8]))
	r.SetSPort(u16(ar[8:10]))
	r.SetDPort(u16(ar[10:12]))
	r.SetInput(u16(ar[24:26]))

	unpackTimeBytesPktsFlags(r, ctx.HeaderStartTime,
		u32(ar[12:16]), u32(ar[16:20]), u32(ar[20:24]))

	r.SetSensor(ctx.Sensor)
	r.SetFlowType(ctx.FlowType)
	return nil
}

func notRoutedPackV3(ctx *StreamContext, r *Record, ar []byte) error {
	pktsStime, bbe, msecFlags, err := packTimeBytesPktsFlags(r, ctx.HeaderStartTime)
	if err != nil {
		return err
	}
	putU32(ar[12:16], pktsStime)
	putU32(ar[16:20], bbe)
	putU32(ar[20:24], msecFlags)

	putU32(ar[0:4], r.SIPv4())
	putU32(ar[4:8], r.DIPv4())
	putU16(ar[8:10], r.SPort())
	putU16(ar[10:12], r.DPort())
	putU16(ar[24:26], r.Input())

	if ctx.NeedsSwap {
		notRoutedSwapV3(ar)
	}
	return nil
}

// Version 1 layout:
//
//	 0- 3  sIP
//	 4- 7  dIP
//	 8- 9  sPort
//	10-11  dPort
//	12-15  pef: pkts:20, elapsed:11 (sec), pflag:1
//	16-19  sbb: stime:12 (sec from hour), bPPkt:14, bPPFrac:6
//	20     proto
//	21     flags
//	22     input
func notRoutedSwapV1(ar []byte) {
	swap32(ar[0:])
	swap32(ar[4:])
	swap16(ar[8:])
	swap16(ar[10:])
	swap32(ar[12:])
	swap32(ar[16:])
}

func notRoutedUnpackV1(ctx *StreamContext, r *Record, ar []byte) error {
	if ctx.NeedsSwap {
		notRoutedSwapV1(ar)
	}

	r.SetSIPv4(u32(ar[0:4]))
	r.SetDIPv4(u32(ar[4:8]))
	r.SetSPort(u16(ar[8:10]))
	r.SetDPort(u16(ar[10:12]))

	unpackSbbPef(r, ctx.HeaderStartTime, u32(ar[16:20]), u32(ar[12:16]))

	r.SetProto(ar[20])
	r.SetFlags(ar[21])
	r.SetInput(uint16(ar[22]))

	r.SetSensor(ctx.Sensor)
	r.SetFlowType(ctx.FlowType)
	return nil
}

func notRoutedPackV1(ctx *StreamContext, r *Record, ar []byte) error {
	// the interface field was widened in later versions
	if r.Input() > 255 {
		return &FieldOverflowError{Field: "input-interface", Value: uint64(r.Input()), Bits: 8}
	}

	sbb, pef, err := packSbbPef(r, ctx.HeaderStartTime)
	if err != nil {
		return err
	}
	putU32(ar[16:20], sbb)
	putU32(ar[12:16], pef)

	putU32(ar[0:4], r.SIPv4())
	putU32(ar[4:8], r.DIPv4())
	putU16(ar[8:10], r.SPort())
	putU16(ar[10:12], r.DPort())

	ar[20] = r.Proto()
	ar[21] = r.Flags()
	ar[22] = uint8(r.Input())

	if ctx.NeedsSwap {
		notRoutedSwapV1(ar)
	}
	return nil
}
