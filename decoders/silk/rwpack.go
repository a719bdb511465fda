package silk

import "fmt"

// Shared field groups used by the packed layouts. The packet count is
// stored in 20 bits; larger counts are divided by pktsDivisor and
// flagged, giving an absolute maximum of 2^26 packets. The byte count is
// stored as a bytes-per-packet ratio: 14 whole bits plus 6 fractional
// bits of 1/64ths.
const (
	maxPkts     = 1 << 20
	pktsDivisor = 64

	bppPrecision = 64 // 2^6 fractional steps

	// Records pack into hourly streams; the start time is an offset
	// from the hour in the stream header, stored as 12-bit seconds (+
	// 10-bit milliseconds) or 22-bit milliseconds depending on layout.
	maxStartTime = 4096 // seconds

	maxElapsedTime    = 4096 // seconds, 12-bit layouts
	maxElapsedTimeOld = 2048 // seconds, 11-bit layouts
)

// packBytesPackets converts the record's byte and packet counts into
// the packed bytes-per-packet ratio, 20-bit packet count, and
// packets-multiplier flag.
func packBytesPackets(r *Record) (bpp, pkts, pflag uint32, err error) {
	packets := r.Pkts()
	bytes := r.Bytes()

	if packets == 0 {
		return 0, 0, 0, ErrPacketsZero
	}
	if packets > bytes {
		return 0, 0, 0, ErrPacketsGreaterThanBytes
	}

	if packets < maxPkts {
		pkts = packets
	} else {
		pkts = packets / pktsDivisor
		if pkts >= maxPkts {
			return 0, 0, 0, &FieldOverflowError{Field: "packets", Value: uint64(packets), Bits: 20}
		}
		pflag = 1
	}

	quot := bytes / packets
	rem := bytes % packets
	if quot > 1<<14-1 {
		return 0, 0, 0, &FieldOverflowError{Field: "bytes-per-packet", Value: uint64(quot), Bits: 14}
	}
	bpp = quot<<6 | uint32(uint64(rem)*bppPrecision/uint64(packets))

	return bpp, pkts, pflag, nil
}

// unpackBytesPackets expands the packed bytes-per-packet ratio back
// into the record's byte and packet counts.
func unpackBytesPackets(r *Record, bpp, pkts, pflag uint32) {
	if pflag != 0 {
		pkts *= pktsDivisor
	}

	// bpp: bPPkt:14; bPPFrac:6
	bPPkt := uint64(getMaskedBits(bpp, 6, 14))
	bPPFrac := uint64(getMaskedBits(bpp, 0, 6))

	quot := bPPFrac * uint64(pkts) / bppPrecision
	rem := bPPFrac * uint64(pkts) % bppPrecision

	bytes := bPPkt*uint64(pkts) + quot
	if rem >= bppPrecision/2 {
		bytes++
	}

	r.SetPkts(pkts)
	r.SetBytes(uint32(bytes))
}

// packProtoFlags resolves the protocol/flags union used by layouts that
// store a combined prot_flags byte next to the TCP state.
func packProtoFlags(r *Record) (isTCP, protFlags, tcpState, restFlags uint8) {
	tcpState = r.TCPState()
	if r.Proto() != IPProtoTCP {
		// no additional TCP info; prot_flags carries the protocol
		return 0, r.Proto(), tcpState, r.Flags()
	}
	isTCP = 1
	if tcpState&TCPStateExpanded != 0 {
		return isTCP, r.InitFlags(), tcpState, r.RestFlags()
	}
	return isTCP, r.Flags(), tcpState, 0
}

// unpackProtoFlags fills the protocol, flags, and TCP state fields from
// the combined prot_flags byte. Layouts with a fixed TCP protocol may
// reuse the is_tcp bit for another purpose, so a record already marked
// TCP stays TCP regardless of the bit.
func unpackProtoFlags(r *Record, isTCP bool, protFlags, tcpState, restFlags uint8) {
	r.SetTCPState(tcpState)
	if r.Proto() == IPProtoTCP || isTCP {
		r.SetProto(IPProtoTCP)
		if tcpState&TCPStateExpanded != 0 {
			r.SetInitFlags(protFlags)
			r.SetRestFlags(restFlags)
			r.SetFlags(protFlags | restFlags)
		} else {
			r.SetFlags(protFlags)
		}
	} else {
		r.SetProto(protFlags)
		r.SetFlags(restFlags)
	}
}

// packSbbPef computes the sbb and pef words of the oldest layouts:
// sbb = sTime:12 (seconds from hour), bPPkt:14, bPPFrac:6;
// pef = pkts:20, elapsed:11 (seconds), pflag:1.
func packSbbPef(r *Record, headerStart int64) (sbb, pef uint32, err error) {
	elapsed := r.Elapsed() / 1000
	if elapsed >= maxElapsedTimeOld {
		return 0, 0, &FieldOverflowError{Field: "elapsed", Value: uint64(r.Elapsed()), Bits: 11}
	}

	start := r.StartTime()
	if start < headerStart {
		return 0, 0, ErrStartTimeUnderflow
	}
	startSec := (start - headerStart) / 1000
	if startSec >= maxStartTime {
		return 0, 0, &FieldOverflowError{Field: "start-time", Value: uint64(startSec), Bits: 12}
	}

	bpp, pkts, pflag, err := packBytesPackets(r)
	if err != nil {
		return 0, 0, err
	}

	sbb = uint32(startSec)<<20 | getMaskedBits(bpp, 0, 20)
	pef = pkts<<12 | elapsed<<1 | pflag
	return sbb, pef, nil
}

// unpackSbbPef expands the sbb and pef words into the record.
func unpackSbbPef(r *Record, headerStart int64, sbb, pef uint32) {
	pkts := pef >> 12
	r.SetElapsed(1000 * getMaskedBits(pef, 1, 11))
	pflag := pef & 1

	bpp := getMaskedBits(sbb, 0, 20)
	r.SetStartTime(headerStart + 1000*int64(sbb>>20))

	unpackBytesPackets(r, bpp, pkts, pflag)
}

// packTimeBytesPktsFlags computes the three words of the middle-era
// layouts:
// pkts_stime = pkts:20, sTime:12 (seconds from hour);
// bbe = bPPkt:14, bPPFrac:6, elapsed:12 (seconds);
// msec_flags = sTime_msec:10, elaps_msec:10, pflag:1, is_tcp:1, pad:2,
// prot_flags:8.
func packTimeBytesPktsFlags(r *Record, headerStart int64) (pktsStime, bbe, msecFlags uint32, err error) {
	elapsedSec := r.Elapsed() / 1000
	elapsedMsec := r.Elapsed() % 1000
	if elapsedSec >= maxElapsedTime {
		return 0, 0, 0, &FieldOverflowError{Field: "elapsed", Value: uint64(r.Elapsed()), Bits: 12}
	}

	start := r.StartTime()
	if start < headerStart {
		return 0, 0, 0, ErrStartTimeUnderflow
	}
	start -= headerStart
	startSec := start / 1000
	startMsec := start % 1000
	if startSec >= maxStartTime {
		return 0, 0, 0, &FieldOverflowError{Field: "start-time", Value: uint64(startSec), Bits: 12}
	}

	bpp, pkts, pflag, err := packBytesPackets(r)
	if err != nil {
		return 0, 0, 0, err
	}

	pktsStime = pkts<<12 | getMaskedBits(uint32(startSec), 0, 12)
	bbe = bpp<<12 | getMaskedBits(elapsedSec, 0, 12)

	var isTCP uint32
	var protFlags uint8
	if r.Proto() == IPProtoTCP {
		isTCP = 1
		protFlags = r.Flags()
	} else {
		protFlags = r.Proto()
	}

	msecFlags = getMaskedBits(uint32(startMsec), 0, 10)<<22 |
		getMaskedBits(elapsedMsec, 0, 10)<<12 |
		pflag<<11 |
		isTCP<<10 |
		uint32(protFlags)
	return pktsStime, bbe, msecFlags, nil
}

// unpackTimeBytesPktsFlags expands the three middle-era words into the
// record. A record whose protocol was forced to TCP before the call
// (fixed-protocol layouts) keeps that protocol.
func unpackTimeBytesPktsFlags(r *Record, headerStart int64, pktsStime, bbe, msecFlags uint32) {
	pkts := getMaskedBits(pktsStime, 12, 20)

	r.SetStartTime(headerStart +
		1000*int64(getMaskedBits(pktsStime, 0, 12)) +
		int64(getMaskedBits(msecFlags, 22, 10)))

	bpp := getMaskedBits(bbe, 12, 20)
	r.SetElapsed(1000*getMaskedBits(bbe, 0, 12) + getMaskedBits(msecFlags, 12, 10))

	pflag := getMaskedBits(msecFlags, 11, 1)
	isTCP := getMaskedBits(msecFlags, 10, 1)
	protFlags := uint8(getMaskedBits(msecFlags, 0, 8))

	switch {
	case r.Proto() == IPProtoTCP:
		r.SetFlags(protFlags)
	case isTCP == 0:
		r.SetProto(protFlags)
	default:
		r.SetProto(IPProtoTCP)
		r.SetFlags(protFlags)
	}

	unpackBytesPackets(r, bpp, pkts, pflag)
}

// packFlagsTimesVolumes fills the leading bytes of the newest compact
// layouts:
//
//	ar[0:4]  stime:22 (msec from hour), bPPkt1:10 (high bits)
//	ar[4:8]  bPPkt2:4 (low bits), bPPFrac:6, elapsed:22 (msec)
//	ar[8:12] prot_flags:8, pflag:1, is_tcp:1, pad:2, pkts:20
//
// With length 16 it additionally stores tcp_state at ar[12], the
// rest-flags byte at ar[13], and the application at ar[14:16].
func packFlagsTimesVolumes(ar []byte, r *Record, headerStart int64, length int) error {
	if r.Elapsed() >= 1000*maxElapsedTime {
		return &FieldOverflowError{Field: "elapsed", Value: uint64(r.Elapsed()), Bits: 22}
	}

	start := r.StartTime()
	if start < headerStart {
		return ErrStartTimeUnderflow
	}
	start -= headerStart
	if start >= 1000*maxStartTime {
		return &FieldOverflowError{Field: "start-time", Value: uint64(start), Bits: 22}
	}

	bpp, pkts, pflag, err := packBytesPackets(r)
	if err != nil {
		return err
	}

	putU32(ar[0:4], getMaskedBits(uint32(start), 0, 22)<<10|getMaskedBits(bpp, 10, 10))
	putU32(ar[4:8], getMaskedBits(bpp, 0, 10)<<22|getMaskedBits(r.Elapsed(), 0, 22))

	var tcpState uint8
	switch length {
	case 12:
		tcpState = 0
	case 16:
		tcpState = r.TCPState()
		ar[12] = tcpState
		switch {
		case r.Proto() != IPProtoTCP:
			ar[13] = r.Flags()
		case tcpState&TCPStateExpanded != 0:
			ar[13] = r.RestFlags()
		default:
			ar[13] = 0
		}
		putU16(ar[14:16], r.Application())
	default:
		panic(fmt.Sprintf("bad length %d to packFlagsTimesVolumes", length))
	}

	word := pflag<<23 | getMaskedBits(pkts, 0, 20)
	if r.Proto() != IPProtoTCP {
		word |= uint32(r.Proto()) << 24
	} else {
		word |= 1 << 22
		if tcpState&TCPStateExpanded != 0 {
			word |= uint32(r.InitFlags()) << 24
		} else {
			word |= uint32(r.Flags()) << 24
		}
	}
	putU32(ar[8:12], word)

	return nil
}

// unpackFlagsTimesVolumes expands the leading bytes of the newest
// compact layouts into the record. forceTCP marks layouts whose
// protocol is fixed at TCP regardless of the is_tcp bit.
func unpackFlagsTimesVolumes(r *Record, ar []byte, headerStart int64, length int, forceTCP bool) {
	var tcpState, restFlags uint8
	switch length {
	case 12:
	case 16:
		tcpState = ar[12]
		restFlags = ar[13]
		r.SetTCPState(tcpState)
		r.SetApplication(u16(ar[14:16]))
	default:
		panic(fmt.Sprintf("bad length %d to unpackFlagsTimesVolumes", length))
	}

	word := u32(ar[8:12])
	pkts := getMaskedBits(word, 0, 20)
	pflag := getMaskedBits(word, 23, 1)
	isTCP := forceTCP || getMaskedBits(word, 22, 1) != 0

	if !isTCP {
		r.SetProto(uint8(getMaskedBits(word, 24, 8)))
		r.SetFlags(restFlags)
	} else {
		r.SetProto(IPProtoTCP)
		if tcpState&TCPStateExpanded != 0 {
			r.SetRestFlags(restFlags)
			r.SetInitFlags(uint8(getMaskedBits(word, 24, 8)))
		}
		r.SetFlags(uint8(getMaskedBits(word, 24, 8)) | restFlags)
	}

	bbElapsed := u32(ar[4:8])
	r.SetElapsed(getMaskedBits(bbElapsed, 0, 22))

	stimeBB1 := u32(ar[0:4])
	r.SetStartTime(headerStart + int64(getMaskedBits(stimeBB1, 10, 22)))

	bpp := getMaskedBits(stimeBB1, 0, 10)<<10 | getMaskedBits(bbElapsed, 22, 10)
	unpackBytesPackets(r, bpp, pkts, pflag)
}

// packTimesFlagsProto fills the leading six bytes of the IPv6-era
// layouts:
//
//	ar[0:4] rest_flags:8, is_tcp:1, unused:1, stime:22 (msec from hour)
//	ar[4]   protocol, or TCP flags when is_tcp is set
//	ar[5]   tcp_state
func packTimesFlagsProto(r *Record, ar []byte, headerStart int64) error {
	start := r.StartTime()
	if start < headerStart {
		return ErrStartTimeUnderflow
	}
	start -= headerStart
	if start >= 1000*maxStartTime {
		return &FieldOverflowError{Field: "start-time", Value: uint64(start), Bits: 22}
	}

	switch {
	case r.Proto() != IPProtoTCP:
		putU32(ar[0:4], uint32(start))
		ar[4] = r.Proto()
	case r.TCPState()&TCPStateExpanded != 0:
		putU32(ar[0:4], uint32(r.RestFlags())<<24|1<<23|getMaskedBits(uint32(start), 0, 22))
		ar[4] = r.InitFlags()
	default:
		putU32(ar[0:4], 1<<23|getMaskedBits(uint32(start), 0, 22))
		ar[4] = r.Flags()
	}

	ar[5] = r.TCPState()
	return nil
}

// unpackTimesFlagsProto expands the leading six bytes of the IPv6-era
// layouts into the record.
func unpackTimesFlagsProto(r *Record, ar []byte, headerStart int64) {
	word := u32(ar[0:4])
	r.SetStartTime(headerStart + int64(getMaskedBits(word, 0, 22)))

	switch {
	case getMaskedBits(word, 23, 1) == 0:
		r.SetProto(ar[4])
	case ar[5]&TCPStateExpanded != 0:
		r.SetProto(IPProtoTCP)
		r.SetRestFlags(uint8(getMaskedBits(word, 24, 8)))
		r.SetInitFlags(ar[4])
		r.SetFlags(r.InitFlags() | r.RestFlags())
	default:
		r.SetProto(IPProtoTCP)
		r.SetFlags(ar[4])
	}

	r.SetTCPState(ar[5])
}

// maybeClearTCPStateExpanded fixes records written by collectors that
// set the expanded bit without carrying split flags: non-TCP records,
// or TCP records whose initial and session flags are both zero.
func maybeClearTCPStateExpanded(r *Record) {
	if r.TCPState()&TCPStateExpanded != 0 &&
		(r.Proto() != IPProtoTCP || (r.InitFlags() == 0 && r.RestFlags() == 0)) {
		r.SetTCPState(r.TCPState() &^ TCPStateExpanded)
		r.SetInitFlags(0)
		r.SetRestFlags(0)
	}
}

// Web formats encode the server side of well-known web ports in two
// bits; any other value expands to zero.
func isWebPort(p uint16) bool { return p == 80 || p == 443 || p == 8080 }

func webPortEncode(p uint16) uint32 {
	switch p {
	case 80:
		return 0
	case 443:
		return 1
	case 8080:
		return 2
	default:
		return 3
	}
}

func webPortExpand(code uint32) uint16 {
	switch code {
	case 0:
		return 80
	case 1:
		return 443
	case 2:
		return 8080
	default:
		return 0
	}
}
