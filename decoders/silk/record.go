package silk

import (
	"encoding/binary"
	"net/netip"
)

// TCP state flags stored in a record's state byte. The high bit (0x80)
// is reserved on the wire as the IPv6 indicator of dual-stack layouts
// and is masked out of the in-memory state value.
const (
	TCPStateNoInfo            uint8 = 0x00
	TCPStateExpanded          uint8 = 0x01
	TCPStateFinFollowedNotACK uint8 = 0x08
	TCPStateUniformPacketSize uint8 = 0x10
	TCPStateTimeoutKilled     uint8 = 0x20
	TCPStateTimeoutStarted    uint8 = 0x40

	tcpStateMask = 0x79
	ipv6FlagBit  = 0x80
)

// Sentinel identifiers for the sensor and flow-type context fields of a
// freshly cleared record.
const (
	InvalidSensor   uint16 = 0xFFFF
	InvalidFlowType uint8  = 0xFF
)

// IPProtoTCP is the IP protocol number the web formats require.
const IPProtoTCP uint8 = 6

var v4inV6Prefix = [12]byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0xFF, 0xFF}

// Record is the generic flow record every packed format converts to and
// from. It carries the union of all fields any format stores; fields a
// given layout omits survive a pack/unpack round trip only through the
// stream context or not at all. The zero value is not a cleared record;
// use Clear (or let BoundCodec.Unpack do it) to reset the sensor and
// flow-type fields to their invalid sentinels and the addresses to the
// IPv4 zero address.
//
// A record is entirely IPv4 or entirely IPv6 across its three address
// fields. SetIPv6 promotes IPv4 addresses to their IPv4-mapped IPv6
// form; ConvertToIPv4 demotes only when every address carries the fixed
// mapped prefix.
type Record struct {
	sTime       int64  // milliseconds since UNIX epoch
	elapsed     uint32 // milliseconds
	sPort       uint16
	dPort       uint16
	proto       uint8
	flowType    uint8
	sensor      uint16
	flags       uint8 // OR of TCP flags on all packets
	initFlags   uint8 // TCP flags on the first packet
	restFlags   uint8 // TCP flags on the remaining packets
	tcpState    uint8
	application uint16
	memo        uint16
	input       uint16 // incoming SNMP interface index
	output      uint16 // outgoing SNMP interface index
	pkts        uint32
	bytes       uint32
	ipv6        bool
	sIP         netip.Addr
	dIP         netip.Addr
	nhIP        netip.Addr
}

// Clear resets every field and marks the sensor and flow type invalid.
// The addresses come back as the IPv4 zero address, the same value an
// address-bearing layout yields for a field that was never set, so a
// cleared record round-trips through any codec unchanged.
func (r *Record) Clear() {
	zero := netip.AddrFrom4([4]byte{})
	*r = Record{
		sensor:   InvalidSensor,
		flowType: InvalidFlowType,
		sIP:      zero,
		dIP:      zero,
		nhIP:     zero,
	}
}

func (r *Record) StartTime() int64        { return r.sTime }
func (r *Record) SetStartTime(v int64)    { r.sTime = v }
func (r *Record) Elapsed() uint32         { return r.elapsed }
func (r *Record) SetElapsed(v uint32)     { r.elapsed = v }
func (r *Record) SPort() uint16           { return r.sPort }
func (r *Record) SetSPort(v uint16)       { r.sPort = v }
func (r *Record) DPort() uint16           { return r.dPort }
func (r *Record) SetDPort(v uint16)       { r.dPort = v }
func (r *Record) Proto() uint8            { return r.proto }
func (r *Record) SetProto(v uint8)        { r.proto = v }
func (r *Record) FlowType() uint8         { return r.flowType }
func (r *Record) SetFlowType(v uint8)     { r.flowType = v }
func (r *Record) Sensor() uint16          { return r.sensor }
func (r *Record) SetSensor(v uint16)      { r.sensor = v }
func (r *Record) Flags() uint8            { return r.flags }
func (r *Record) SetFlags(v uint8)        { r.flags = v }
func (r *Record) InitFlags() uint8        { return r.initFlags }
func (r *Record) SetInitFlags(v uint8)    { r.initFlags = v }
func (r *Record) RestFlags() uint8        { return r.restFlags }
func (r *Record) SetRestFlags(v uint8)    { r.restFlags = v }
func (r *Record) Application() uint16     { return r.application }
func (r *Record) SetApplication(v uint16) { r.application = v }
func (r *Record) Memo() uint16            { return r.memo }
func (r *Record) SetMemo(v uint16)        { r.memo = v }
func (r *Record) Input() uint16           { return r.input }
func (r *Record) SetInput(v uint16)       { r.input = v }
func (r *Record) Output() uint16          { return r.output }
func (r *Record) SetOutput(v uint16)      { r.output = v }
func (r *Record) Pkts() uint32            { return r.pkts }
func (r *Record) SetPkts(v uint32)        { r.pkts = v }
func (r *Record) Bytes() uint32           { return r.bytes }
func (r *Record) SetBytes(v uint32)       { r.bytes = v }

// TCPState returns the state byte with the reserved high bits masked
// out; SetTCPState applies the same mask.
func (r *Record) TCPState() uint8     { return r.tcpState & tcpStateMask }
func (r *Record) SetTCPState(v uint8) { r.tcpState = v & tcpStateMask }

// ICMP flows store the type and code in the destination-port field:
// (type << 8) | code.
func (r *Record) ICMPTypeAndCode() uint16     { return r.dPort }
func (r *Record) SetICMPTypeAndCode(v uint16) { r.dPort = v }

// IsIPv6 reports whether the record's addresses are IPv6.
func (r *Record) IsIPv6() bool { return r.ipv6 }

// SIP, DIP and NhIP return the addresses as stored: 4-byte form for an
// IPv4 record, 16-byte form (possibly IPv4-mapped) for an IPv6 record.
func (r *Record) SIP() netip.Addr  { return r.sIP }
func (r *Record) DIP() netip.Addr  { return r.dIP }
func (r *Record) NhIP() netip.Addr { return r.nhIP }

func (r *Record) SIPv4() uint32     { return v4int(r.sIP) }
func (r *Record) DIPv4() uint32     { return v4int(r.dIP) }
func (r *Record) NhIPv4() uint32    { return v4int(r.nhIP) }
func (r *Record) SetSIPv4(v uint32) { r.sIP = r.v4addr(v) }
func (r *Record) SetDIPv4(v uint32) { r.dIP = r.v4addr(v) }
func (r *Record) SetNhIPv4(v uint32) {
	r.nhIP = r.v4addr(v)
}

// SIPv6 et al. return the 16-byte network-order representation; IPv4
// addresses come back in their mapped form.
func (r *Record) SIPv6() [16]byte  { return addr16(r.sIP) }
func (r *Record) DIPv6() [16]byte  { return addr16(r.dIP) }
func (r *Record) NhIPv6() [16]byte { return addr16(r.nhIP) }

func (r *Record) SetSIPv6(b []byte)  { r.sIP = addrFrom16(b); r.ipv6 = true }
func (r *Record) SetDIPv6(b []byte)  { r.dIP = addrFrom16(b); r.ipv6 = true }
func (r *Record) SetNhIPv6(b []byte) { r.nhIP = addrFrom16(b); r.ipv6 = true }

// SetIPv6 promotes the record to IPv6, rewriting IPv4 addresses as
// IPv4-mapped IPv6 addresses.
func (r *Record) SetIPv6() {
	if r.ipv6 {
		return
	}
	r.ipv6 = true
	r.sIP = mapped(r.sIP)
	r.dIP = mapped(r.dIP)
	r.nhIP = mapped(r.nhIP)
}

// ConvertToIPv4 demotes an IPv6 record whose three addresses all carry
// the fixed mapped prefix. It reports whether the demotion happened.
func (r *Record) ConvertToIPv4() bool {
	if !r.ipv6 {
		return true
	}
	if !is4in6(r.sIP) || !is4in6(r.dIP) || !is4in6(r.nhIP) {
		return false
	}
	r.ipv6 = false
	r.sIP = r.sIP.Unmap()
	r.dIP = r.dIP.Unmap()
	r.nhIP = r.nhIP.Unmap()
	return true
}

// IsWeb reports whether the record could be stored in a web format:
// TCP with a well-known web port on either side.
func (r *Record) IsWeb() bool {
	return r.proto == IPProtoTCP && (isWebPort(r.sPort) || isWebPort(r.dPort))
}

func (r *Record) v4addr(v uint32) netip.Addr {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	a := netip.AddrFrom4(b)
	if r.ipv6 {
		return mapped(a)
	}
	return a
}

func v4int(a netip.Addr) uint32 {
	if !a.IsValid() {
		return 0
	}
	b := a.Unmap().As4()
	return binary.BigEndian.Uint32(b[:])
}

func addr16(a netip.Addr) [16]byte {
	if !a.IsValid() {
		a = netip.AddrFrom4([4]byte{}) // unset packs as mapped 0.0.0.0
	}
	return a.As16()
}

func addrFrom16(b []byte) netip.Addr {
	var a [16]byte
	copy(a[:], b)
	return netip.AddrFrom16(a)
}

func mapped(a netip.Addr) netip.Addr {
	return netip.AddrFrom16(addr16(a))
}

func is4in6(a netip.Addr) bool {
	if !a.IsValid() {
		return true // unset demotes to 0.0.0.0
	}
	return a.Is4In6()
}
