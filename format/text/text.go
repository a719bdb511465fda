// Package text renders flow records as pipe-delimited text lines.
package text

import (
	"fmt"
	"strings"

	"github.com/movsoftware/silkio/decoders/silk"
	"github.com/movsoftware/silkio/format"
)

type TextDriver struct {
}

func (d *TextDriver) Prepare() error {
	return nil
}

func (d *TextDriver) Init() error {
	return nil
}

func (d *TextDriver) Format(data interface{}) ([]byte, []byte, error) {
	rec, ok := data.(*silk.Record)
	if !ok {
		return nil, nil, format.ErrNotFlowRecord
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s|%s|%d|%d|%d|",
		format.AddrString(rec.SIP()), format.AddrString(rec.DIP()),
		rec.SPort(), rec.DPort(), rec.Proto())
	fmt.Fprintf(&b, "%d|%d|%s|", rec.Pkts(), rec.Bytes(), format.TCPFlagsString(rec.Flags()))
	fmt.Fprintf(&b, "%s|%d.%03d|", format.Timestamp(rec.StartTime()),
		rec.Elapsed()/1000, rec.Elapsed()%1000)
	fmt.Fprintf(&b, "%d|%d|%d|%d|%d|%s",
		rec.Application(), rec.Sensor(), rec.FlowType(),
		rec.Input(), rec.Output(), format.AddrString(rec.NhIP()))

	return format.RecordKey(rec), []byte(b.String()), nil
}

func init() {
	d := &TextDriver{}
	format.RegisterFormatDriver("text", d)
}
