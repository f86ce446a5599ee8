// Package slo exposes the service level indicators of the ingest worker.
package slo

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SLO targets for the ingest pipeline.
const (
	// ParseSuccessSLO is the target share of inbox files that parse (99.5%).
	ParseSuccessSLO = 0.995

	// PublishSuccessSLO is the target share of change events delivered (99.9%).
	PublishSuccessSLO = 0.999

	// SweepDurationSLO bounds one inbox sweep in seconds (5 minutes).
	SweepDurationSLO = 300.0
)

// These gauges are set after every sweep.
var (
	// SLOParseSuccess is parsed files / files seen in the last sweep.
	SLOParseSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_parse_success_ratio",
			Help: "Share of inbox files parsed in the last sweep (0-1), target: 0.995",
		},
	)

	SLOPublishSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_publish_success_ratio",
			Help: "Share of change events delivered in the last sweep (0-1), target: 0.999",
		},
	)

	SLOSweepDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_sweep_duration_seconds",
			Help: "Duration of the last inbox sweep in seconds, target: 300",
		},
	)
)

// UpdateParseSuccess sets the parse success ratio.
func UpdateParseSuccess(ratio float64) {
	SLOParseSuccess.Set(ratio)
}

// UpdatePublishSuccess sets the event delivery ratio.
func UpdatePublishSuccess(ratio float64) {
	SLOPublishSuccess.Set(ratio)
}

// UpdateSweepDuration sets the duration of the last sweep.
func UpdateSweepDuration(d time.Duration) {
	SLOSweepDuration.Set(d.Seconds())
}

// Sweep holds the counts of one inbox sweep.
type Sweep struct {
	Files       int
	Parsed      int64
	Published   int64
	Unpublished int64
	Duration    time.Duration
}

// ObserveSweep updates the indicators from one sweep. A ratio whose
// denominator is zero is left untouched.
func ObserveSweep(s Sweep) {
	if s.Files > 0 {
		UpdateParseSuccess(float64(s.Parsed) / float64(s.Files))
	}
	if events := s.Published + s.Unpublished; events > 0 {
		UpdatePublishSuccess(float64(s.Published) / float64(events))
	}
	UpdateSweepDuration(s.Duration)
}
