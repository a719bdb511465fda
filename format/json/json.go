// Package json renders flow records as JSON objects.
package json

import (
	"encoding/json"

	"github.com/movsoftware/silkio/decoders/silk"
	"github.com/movsoftware/silkio/format"
)

type JsonDriver struct {
}

type recordView struct {
	TimeFlowStartMs int64  `json:"time_flow_start_ms"`
	TimeFlowEndMs   int64  `json:"time_flow_end_ms"`
	SrcAddr         string `json:"src_addr"`
	DstAddr         string `json:"dst_addr"`
	NextHop         string `json:"next_hop,omitempty"`
	SrcPort         uint16 `json:"src_port"`
	DstPort         uint16 `json:"dst_port"`
	Proto           uint8  `json:"proto"`
	Packets         uint32 `json:"packets"`
	Bytes           uint32 `json:"bytes"`
	TCPFlags        string `json:"tcp_flags,omitempty"`
	TCPInitFlags    string `json:"tcp_init_flags,omitempty"`
	TCPRestFlags    string `json:"tcp_rest_flags,omitempty"`
	TCPState        uint8  `json:"tcp_state,omitempty"`
	Application     uint16 `json:"application,omitempty"`
	Memo            uint16 `json:"memo,omitempty"`
	Sensor          uint16 `json:"sensor"`
	FlowType        uint8  `json:"flow_type"`
	InIf            uint16 `json:"in_if,omitempty"`
	OutIf           uint16 `json:"out_if,omitempty"`
}

func (d *JsonDriver) Prepare() error {
	return nil
}

func (d *JsonDriver) Init() error {
	return nil
}

func (d *JsonDriver) Format(data interface{}) ([]byte, []byte, error) {
	rec, ok := data.(*silk.Record)
	if !ok {
		return nil, nil, format.ErrNotFlowRecord
	}

	view := recordView{
		TimeFlowStartMs: rec.StartTime(),
		TimeFlowEndMs:   rec.StartTime() + int64(rec.Elapsed()),
		SrcAddr:         format.AddrString(rec.SIP()),
		DstAddr:         format.AddrString(rec.DIP()),
		SrcPort:         rec.SPort(),
		DstPort:         rec.DPort(),
		Proto:           rec.Proto(),
		Packets:         rec.Pkts(),
		Bytes:           rec.Bytes(),
		TCPState:        rec.TCPState(),
		Application:     rec.Application(),
		Memo:            rec.Memo(),
		Sensor:          rec.Sensor(),
		FlowType:        rec.FlowType(),
		InIf:            rec.Input(),
		OutIf:           rec.Output(),
	}
	if nh := rec.NhIP(); nh.IsValid() && !nh.IsUnspecified() {
		view.NextHop = nh.String()
	}
	if rec.Proto() == silk.IPProtoTCP {
		view.TCPFlags = format.TCPFlagsString(rec.Flags())
		if rec.TCPState()&silk.TCPStateExpanded != 0 {
			view.TCPInitFlags = format.TCPFlagsString(rec.InitFlags())
			view.TCPRestFlags = format.TCPFlagsString(rec.RestFlags())
		}
	}

	output, err := json.Marshal(view)
	return format.RecordKey(rec), output, err
}

func init() {
	d := &JsonDriver{}
	format.RegisterFormatDriver("json", d)
}
