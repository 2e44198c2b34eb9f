// SPDX-License-Identifier: EPL-2.0

package transform

import (
	"fmt"
	"strings"

	"github.com/ik5/audpipe/audio"
)

// Engine selects the sample rate conversion algorithm used by Resample.
type Engine int

const (
	// EngineSinc is a band-limited windowed-sinc interpolator (Kaiser window).
	EngineSinc Engine = iota
	// EngineSoxr uses the pure Go soxr port at its high quality preset.
	EngineSoxr
	// EngineCubic uses the streaming Catmull-Rom resampler.
	EngineCubic
)

var engineNames = map[Engine]string{
	EngineSinc:  "sinc",
	EngineSoxr:  "soxr",
	EngineCubic: "cubic",
}

func (e Engine) String() string {
	if name, ok := engineNames[e]; ok {
		return name
	}

	return fmt.Sprintf("Engine(%d)", int(e))
}

// ParseEngine maps a configuration name to an Engine. The empty string
// selects EngineSinc.
func ParseEngine(name string) (Engine, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return EngineSinc, nil
	}

	for e, n := range engineNames {
		if n == name {
			return e, nil
		}
	}

	return 0, fmt.Errorf("%w: unknown resampling engine %q", audio.ErrInvalidArgument, name)
}

type config struct {
	engine        Engine
	zeroCrossings int
	kaiserBeta    float64
}

// Option configures Resample.
type Option func(*config)

// WithEngine selects the resampling algorithm.
func WithEngine(e Engine) Option {
	return func(cfg *config) {
		cfg.engine = e
	}
}

// WithZeroCrossings sets the half length, in zero crossings, of the sinc
// kernel. Ignored by the other engines.
func WithZeroCrossings(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.zeroCrossings = n
		}
	}
}

// WithKaiserBeta overrides the Kaiser window shape of the sinc kernel.
func WithKaiserBeta(beta float64) Option {
	return func(cfg *config) {
		if beta >= 0 {
			cfg.kaiserBeta = beta
		}
	}
}

// Sinc kernel defaults.
const (
	DefaultZeroCrossings = 16
	DefaultKaiserBeta    = 8.6
)

func defaultConfig() config {
	return config{
		engine:        EngineSinc,
		zeroCrossings: DefaultZeroCrossings,
		kaiserBeta:    DefaultKaiserBeta,
	}
}
