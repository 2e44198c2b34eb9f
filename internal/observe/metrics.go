// SPDX-License-Identifier: EPL-2.0

// Package observe holds the OpenTelemetry instruments recorded by the
// pipeline. Instruments come from whatever [metric.MeterProvider] is
// supplied; tests should use an sdk ManualReader.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/ik5/audpipe"

// Metric names.
const (
	StageDurationName = "audpipe.stage.duration"
	RunDurationName   = "audpipe.run.duration"
	FailuresName      = "audpipe.stage.failures"
	FramesName        = "audpipe.stage.frames"
)

// Metrics holds the pipeline instruments. All fields are safe for concurrent
// use.
type Metrics struct {
	// StageDuration tracks the wall time of a single stage. Attribute:
	//   attribute.String("stage", ...)
	StageDuration metric.Float64Histogram

	// RunDuration tracks a whole pipeline run, load to hand-off.
	RunDuration metric.Float64Histogram

	// Failures counts failed stages. Attribute:
	//   attribute.String("stage", ...)
	Failures metric.Int64Counter

	// Frames counts frames produced by each stage. Attribute:
	//   attribute.String("stage", ...)
	Frames metric.Int64Counter
}

// durationBuckets are histogram boundaries in seconds. Stretching a long
// file can take several seconds, loading a short one a few milliseconds.
var durationBuckets = []float64{
	0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// NewMetrics creates the instruments on mp. A nil mp uses the global
// provider, which is a no-op until one is installed.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.StageDuration, err = m.Float64Histogram(StageDurationName,
		metric.WithDescription("Duration of a single pipeline stage."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}
	if met.RunDuration, err = m.Float64Histogram(RunDurationName,
		metric.WithDescription("Duration of a complete pipeline run."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Failures, err = m.Int64Counter(FailuresName,
		metric.WithDescription("Failed pipeline stages by stage."),
	); err != nil {
		return nil, err
	}
	if met.Frames, err = m.Int64Counter(FramesName,
		metric.WithDescription("Frames produced by each pipeline stage."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// RecordStage records the duration of stage and, when err is non-nil, a
// failure. frames is added to the frame counter on success.
func (m *Metrics) RecordStage(ctx context.Context, stage string, d time.Duration, frames int, err error) {
	attrs := metric.WithAttributes(attribute.String("stage", stage))

	m.StageDuration.Record(ctx, d.Seconds(), attrs)
	if err != nil {
		m.Failures.Add(ctx, 1, attrs)
		return
	}
	m.Frames.Add(ctx, int64(frames), attrs)
}

// RecordRun records the duration of a complete run with its outcome.
func (m *Metrics) RecordRun(ctx context.Context, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}

	m.RunDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("status", status)))
}
