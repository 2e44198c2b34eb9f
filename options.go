// SPDX-License-Identifier: EPL-2.0

package audpipe

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"

	"github.com/ik5/audpipe/recognize"
)

const (
	// DefaultSampleRate is the load rate used by Run when the request does
	// not name one.
	DefaultSampleRate = recognize.DefaultSampleRate

	// DefaultOutputSampleRate is the rate Export writes at.
	DefaultOutputSampleRate = 22050
)

// Option configures a Pipeline.
type Option func(*Pipeline)

func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithRecognizer sets the collaborator used by Transcribe.
func WithRecognizer(r recognize.Recognizer) Option {
	return func(p *Pipeline) { p.recognizer = r }
}

// WithObserver installs an Observer. nil removes it.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		if o == nil {
			o = nopObserver{}
		}
		p.observer = o
	}
}

// WithMeterProvider records stage metrics on mp instead of the global
// provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(p *Pipeline) { p.meterProvider = mp }
}

// WithSampleRate sets the load rate Run uses when the request leaves
// TargetSampleRate at zero.
func WithSampleRate(rate int) Option {
	return func(p *Pipeline) {
		if rate > 0 {
			p.sampleRate = rate
		}
	}
}

// WithOutputSampleRate sets the rate Export writes at.
func WithOutputSampleRate(rate int) Option {
	return func(p *Pipeline) {
		if rate > 0 {
			p.outputRate = rate
		}
	}
}

// WithMono controls downmixing on load. Pipelines load mono by default.
func WithMono(mono bool) Option {
	return func(p *Pipeline) { p.mono = mono }
}
