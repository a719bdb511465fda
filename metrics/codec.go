package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/movsoftware/silkio/decoders/silk"

	"github.com/prometheus/client_golang/prometheus"
)

// PromCodecWrapper counts pack/unpack calls and classifies their
// errors. It satisfies the same Pack/Unpack contract as the wrapped
// codec.
type PromCodecWrapper struct {
	codec   *silk.BoundCodec
	format  string
	version string
}

// WrapCodec instruments a bound codec.
func WrapCodec(c *silk.BoundCodec) *PromCodecWrapper {
	return &PromCodecWrapper{
		codec:   c,
		format:  c.Format.String(),
		version: fmt.Sprintf("%d", c.Version),
	}
}

func (w *PromCodecWrapper) RecLen() int {
	return int(w.codec.RecLen)
}

func (w *PromCodecWrapper) Pack(ctx *silk.StreamContext, r *silk.Record, ar []byte) error {
	timeTrackStart := time.Now().UTC()
	err := w.codec.Pack(ctx, r, ar)
	w.observe(timeTrackStart)

	if err != nil {
		w.countError(err)
		return err
	}
	RecordsPacked.With(
		prometheus.Labels{
			"format":  w.format,
			"version": w.version,
		}).
		Inc()
	return nil
}

func (w *PromCodecWrapper) Unpack(ctx *silk.StreamContext, r *silk.Record, ar []byte) error {
	timeTrackStart := time.Now().UTC()
	err := w.codec.Unpack(ctx, r, ar)
	w.observe(timeTrackStart)

	if err != nil {
		w.countError(err)
		return err
	}
	RecordsUnpacked.With(
		prometheus.Labels{
			"format":  w.format,
			"version": w.version,
		}).
		Inc()
	return nil
}

func (w *PromCodecWrapper) observe(start time.Time) {
	CodecTime.With(
		prometheus.Labels{
			"format": w.format,
		}).
		Observe(float64(time.Since(start).Nanoseconds()) / 1000)
}

func (w *PromCodecWrapper) countError(err error) {
	CodecErrors.With(
		prometheus.Labels{
			"format":  w.format,
			"version": w.version,
			"error":   errorLabel(err),
		}).
		Inc()
}

func errorLabel(err error) string {
	switch {
	case errors.Is(err, silk.ErrProtocolMismatch):
		return "protocol_mismatch"
	case errors.Is(err, silk.ErrFieldOverflow):
		return "field_overflow"
	case errors.Is(err, silk.ErrPacketsZero):
		return "packets_zero"
	case errors.Is(err, silk.ErrPacketsGreaterThanBytes):
		return "packets_gt_bytes"
	case errors.Is(err, silk.ErrStartTimeUnderflow):
		return "stime_underflow"
	case errors.Is(err, silk.ErrUnsupportedIPv6):
		return "ipv6_unsupported"
	case errors.Is(err, silk.ErrShortBuffer):
		return "short_buffer"
	default:
		return "error_codec"
	}
}
