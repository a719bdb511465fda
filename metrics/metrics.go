// Package metrics exposes Prometheus counters for the codec layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	NAMESPACE = "silkio"
)

var (
	RecordsPacked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "flow_records_packed_count",
			Help:      "Records packed into their byte layout.",
			Namespace: NAMESPACE,
		},
		[]string{"format", "version"},
	)
	RecordsUnpacked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "flow_records_unpacked_count",
			Help:      "Records unpacked from their byte layout.",
			Namespace: NAMESPACE},
		[]string{"format", "version"},
	)
	CodecErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "flow_codec_error_count",
			Help:      "Pack and unpack errors by cause.",
			Namespace: NAMESPACE},
		[]string{"format", "version", "error"},
	)
	CodecTime = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:      "flow_summary_codec_time_us",
			Help:      "Pack and unpack time summary.",
			Namespace: NAMESPACE, Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"format"},
	)
)

func init() {
	prometheus.MustRegister(RecordsPacked)
	prometheus.MustRegister(RecordsUnpacked)
	prometheus.MustRegister(CodecErrors)
	prometheus.MustRegister(CodecTime)
}
