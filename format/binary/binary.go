// Package binary re-packs flow records into a chosen on-disk layout.
package binary

import (
	"flag"

	"github.com/movsoftware/silkio/decoders/silk"
	"github.com/movsoftware/silkio/format"
)

// BinaryDriver emits each record in its packed byte form. Records are
// packed against the hour containing their start time, so any start
// offset fits the layout.
type BinaryDriver struct {
	formatName string
	version    int

	codec *silk.BoundCodec
}

const msecPerHour = 3600 * 1000

func (d *BinaryDriver) Prepare() error {
	flag.StringVar(&d.formatName, "format.bin.type", "ipv6routing", "Packed record format")
	flag.IntVar(&d.version, "format.bin.version", 0, "Packed record version (0 for the format default)")
	return nil
}

func (d *BinaryDriver) Init() error {
	id, err := silk.ParseFormatID(d.formatName)
	if err != nil {
		return err
	}
	d.codec, err = silk.DefaultRegistry().Prepare(id, silk.Version(d.version), silk.Write, 0)
	return err
}

func (d *BinaryDriver) Format(data interface{}) ([]byte, []byte, error) {
	rec, ok := data.(*silk.Record)
	if !ok {
		return nil, nil, format.ErrNotFlowRecord
	}

	ctx := silk.StreamContext{
		HeaderStartTime: rec.StartTime() - rec.StartTime()%msecPerHour,
		Sensor:          rec.Sensor(),
		FlowType:        rec.FlowType(),
		Mode:            silk.Write,
	}
	ar := make([]byte, d.codec.RecLen)
	if err := d.codec.Pack(&ctx, rec, ar); err != nil {
		return nil, nil, err
	}
	return format.RecordKey(rec), ar, nil
}

func init() {
	d := &BinaryDriver{}
	format.RegisterFormatDriver("bin", d)
}
