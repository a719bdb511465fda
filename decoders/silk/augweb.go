package silk

// FT_RWAUGWEB: IPv4 TCP flows where one side uses a well-known web
// port. The server port is squeezed into two bits and only the client
// port is stored, so packing any non-TCP record is refused. A record
// whose "server" port is not actually 80, 443, or 8080 round-trips
// with that port replaced by zero.

func augWebFormat() *Format {
	return &Format{
		ID:             FormatAugWeb,
		Name:           "FT_RWAUGWEB",
		DefaultVersion: 4,
		versions: map[Version]codecEntry{
			1: {recLen: 26, pack: augWebPackV1, unpack: augWebUnpackV1},
			4: {recLen: 26, pack: augWebPackV4, unpack: augWebUnpackV4},
			5: {recLen: 30, pack: augWebPackV5, unpack: augWebUnpackV5},
		},
		aliases: map[Version]Version{2: 1, 3: 1},
	}
}

// Version 5 layout:
//
//	 0- 3  rflag_stime: rest_flags:8, is_tcp:1, src_is_srv:1,
//	       stime:22 (msec from hour)
//	 4     TCP flags (see times/flags/proto words)
//	 5     tcp_state
//	 6- 7  application
//	 8-11  srvport_elapsed: srv_port:2, elapsed:30 (msec)
//	12-15  pkts
//	16-19  bytes
//	20-23  sIP
//	24-27  dIP
//	28-29  clnt_port
func augWebSwapV5(ar []byte) {
	swap32(ar[0:])
	swap16(ar[6:])
	swap32(ar[8:])
	swap32(ar[12:])
	swap32(ar[16:])
	swap32(ar[20:])
	swap32(ar[24:])
	swap16(ar[28:])
}

func augWebUnpackV5(ctx *StreamContext, r *Record, ar []byte) error {
	if ctx.NeedsSwap {
		augWebSwapV5(ar)
	}

	rflagStime := u32(ar[0:4])

	unpackTimesFlagsProto(r, ar, ctx.HeaderStartTime)

	r.SetApplication(u16(ar[6:8]))

	srvportElapsed := u32(ar[8:12])
	r.SetElapsed(getMaskedBits(srvportElapsed, 0, 30))

	r.SetPkts(u32(ar[12:16]))
	r.SetBytes(u32(ar[16:20]))
	r.SetSIPv4(u32(ar[20:24]))
	r.SetDIPv4(u32(ar[24:28]))

	srvPort := getMaskedBits(srvportElapsed, 30, 2)
	if getMaskedBits(rflagStime, 22, 1) != 0 {
		r.SetSPort(webPortExpand(srvPort))
		r.SetDPort(u16(ar[28:30]))
	} else {
		r.SetSPort(u16(ar[28:30]))
		r.SetDPort(webPortExpand(srvPort))
	}

	r.SetSensor(ctx.Sensor)
	r.SetFlowType(ctx.FlowType)
	return nil
}

func augWebPackV5(ctx *StreamContext, r *Record, ar []byte) error {
	if r.Proto() != IPProtoTCP {
		return ErrProtocolMismatch
	}

	srvportElapsed := r.Elapsed()
	if srvportElapsed&0xC0000000 != 0 {
		return &FieldOverflowError{Field: "elapsed", Value: uint64(srvportElapsed), Bits: 30}
	}

	if err := packTimesFlagsProto(r, ar, ctx.HeaderStartTime); err != nil {
		return err
	}

	putU16(ar[6:8], r.Application())

	if isWebPort(r.SPort()) {
		srvportElapsed |= webPortEncode(r.SPort()) << 30
		putU16(ar[28:30], r.DPort())
		putU32(ar[0:4], u32(ar[0:4])|1<<22)
	} else {
		srvportElapsed |= webPortEncode(r.DPort()) << 30
		putU16(ar[28:30], r.SPort())
	}

	putU32(ar[8:12], srvportElapsed)
	putU32(ar[12:16], r.Pkts())
	putU32(ar[16:20], r.Bytes())
	putU32(ar[20:24], r.SIPv4())
	putU32(ar[24:28], r.DIPv4())

	if ctx.NeedsSwap {
		augWebSwapV5(ar)
	}
	return nil
}

// Version 4 layout:
//
//	 0- 3  stime_bb1:    stime:22 (msec from hour), bPPkt1:10
//	 4- 7  bb2_elapsed:  bPPkt2:4, bPPFrac:6, elapsed:22 (msec)
//	 8-11  srv_flg_pkts: flags:8, pflag:1, src_is_srv:1, srv_port:2,
//	       pkts:20
//	12     tcp_state
//	13     rest_flags
//	14-15  application
//	16-19  sIP
//	20-23  dIP
//	24-25  clnt_port
func augWebSwapV4(ar []byte) {
	swap32(ar[0:])
	swap32(ar[4:])
	swap32(ar[8:])
	swap16(ar[14:])
	swap32(ar[16:])
	swap32(ar[20:])
	swap16(ar[24:])
}

func augWebUnpackV4(ctx *StreamContext, r *Record, ar []byte) error {
	if ctx.NeedsSwap {
		augWebSwapV4(ar)
	}

	unpackFlagsTimesVolumes(r, ar, ctx.HeaderStartTime, 16, true)

	r.SetSIPv4(u32(ar[16:20]))
	r.SetDIPv4(u32(ar[20:24]))

	srvFlgPkts := u32(ar[8:12])
	srvPort := getMaskedBits(srvFlgPkts, 20, 2)
	if getMaskedBits(srvFlgPkts, 22, 1) != 0 {
		r.SetSPort(webPortExpand(srvPort))
		r.SetDPort(u16(ar[24:26]))
	} else {
		r.SetSPort(u16(ar[24:26]))
		r.SetDPort(webPortExpand(srvPort))
	}

	r.SetSensor(ctx.Sensor)
	r.SetFlowType(ctx.FlowType)
	return nil
}

func augWebPackV4(ctx *StreamContext, r *Record, ar []byte) error {
	if r.Proto() != IPProtoTCP {
		return ErrProtocolMismatch
	}

	if err := packFlagsTimesVolumes(ar, r, ctx.HeaderStartTime, 16); err != nil {
		return err
	}

	putU32(ar[16:20], r.SIPv4())
	putU32(ar[20:24], r.DIPv4())

	srvPort := r.SPort()
	var srcIsSrv uint32
	if isWebPort(srvPort) {
		srcIsSrv = 1
		putU16(ar[24:26], r.DPort())
	} else {
		putU16(ar[24:26], srvPort)
		srvPort = r.DPort()
	}

	// overwrite the is_tcp and padding bits with the web fields
	srvFlgPkts := u32(ar[8:12])&^(0x7<<20) |
		webPortEncode(srvPort)<<20 |
		srcIsSrv<<22
	putU32(ar[8:12], srvFlgPkts)

	if ctx.NeedsSwap {
		augWebSwapV4(ar)
	}
	return nil
}

// Version 1 layout:
//
//	 0- 3  sIP
//	 4- 7  dIP
//	 8-11  pkts_stime: pkts:20, stime:12 (sec from hour)
//	12-15  bbe:        bPPkt:14, bPPFrac:6, elapsed:12 (sec)
//	16-19  msec_prt_flags: stime_msec:10, elapsed_msec:10, pflag:1,
//	       src_is_srv:1, srv_port:2, flags:8
//	20-21  clnt_port
//	22-23  application
//	24     tcp_state
//	25     rest_flags
func augWebSwapV1(ar []byte) {
	swap32(ar[0:])
	swap32(ar[4:])
	swap32(ar[8:])
	swap32(ar[12:])
	swap32(ar[16:])
	swap16(ar[20:])
	swap16(ar[22:])
}

func augWebUnpackV1(ctx *StreamContext, r *Record, ar []byte) error {
	if ctx.NeedsSwap {
		augWebSwapV1(ar)
	}

	r.SetSIPv4(u32(ar[0:4]))
	r.SetDIPv4(u32(ar[4:8]))

	msecPrtFlags := u32(ar[16:20])
	clntPort := u16(ar[20:22])
	r.SetApplication(u16(ar[22:24]))

	srcIsSrv := getMaskedBits(msecPrtFlags, 10, 1)
	srvPort := webPortExpand(getMaskedBits(msecPrtFlags, 8, 2))
	a1Flags := uint8(getMaskedBits(msecPrtFlags, 0, 8))

	if srcIsSrv != 0 {
		r.SetSPort(srvPort)
		r.SetDPort(clntPort)
	} else {
		r.SetSPort(clntPort)
		r.SetDPort(srvPort)
	}

	// the protocol is fixed and must be set before the time words are
	// expanded, since their is_tcp bit holds src_is_srv here
	r.SetProto(IPProtoTCP)
	unpackTimeBytesPktsFlags(r, ctx.HeaderStartTime,
		u32(ar[8:12]), u32(ar[12:16]), msecPrtFlags)

	unpackProtoFlags(r, true, a1Flags, ar[24], ar[25])

	r.SetSensor(ctx.Sensor)
	r.SetFlowType(ctx.FlowType)
	return nil
}

func augWebPackV1(ctx *StreamContext, r *Record, ar []byte) error {
	if r.Proto() != IPProtoTCP {
		return ErrProtocolMismatch
	}

	pktsStime, bbe, msecPrtFlags, err := packTimeBytesPktsFlags(r, ctx.HeaderStartTime)
	if err != nil {
		return err
	}
	putU32(ar[8:12], pktsStime)
	putU32(ar[12:16], bbe)

	_, a1Flags, tcpState, restFlags := packProtoFlags(r)
	ar[24] = tcpState
	ar[25] = restFlags

	var srcIsSrv uint32
	srvPort := r.DPort()
	if isWebPort(r.SPort()) {
		srcIsSrv = 1
		srvPort = r.SPort()
		putU16(ar[20:22], r.DPort())
	} else {
		putU16(ar[20:22], r.SPort())
	}

	// keep the fractional times and pflag; replace the low eleven bits
	// so expanded flag sets store the first-packet flags
	msecPrtFlags = msecPrtFlags&^(1<<11-1) |
		srcIsSrv<<10 |
		webPortEncode(srvPort)<<8 |
		uint32(a1Flags)
	putU32(ar[16:20], msecPrtFlags)

	putU32(ar[0:4], r.SIPv4())
	putU32(ar[4:8], r.DIPv4())
	putU16(ar[22:24], r.Application())

	if ctx.NeedsSwap {
		augWebSwapV1(ar)
	}
	return nil
}
