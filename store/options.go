// SPDX-License-Identifier: EPL-2.0

package store

import (
	"log/slog"

	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/transform"
)

// DefaultDataDir is the data directory name beneath the root.
const DefaultDataDir = "data"

// Option configures a Store.
type Option func(*Store)

// WithDataDir replaces the data directory. Relative values are taken
// relative to the root.
func WithDataDir(dir string) Option {
	return func(s *Store) {
		if dir != "" {
			s.dataDir = dir
		}
	}
}

// WithRegistry replaces the decoders used by Load.
func WithRegistry(r *audio.Registry) Option {
	return func(s *Store) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithEngine selects the resampler used when the native rate differs from
// the requested one.
func WithEngine(e transform.Engine) Option {
	return WithResampleOptions(transform.WithEngine(e))
}

// WithResampleOptions adds settings passed to transform.Resample whenever
// Load resamples. Later options win.
func WithResampleOptions(opts ...transform.Option) Option {
	return func(s *Store) {
		s.resample = append(s.resample, opts...)
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

type loadConfig struct {
	mono bool
}

// LoadOption configures a single Load call.
type LoadOption func(*loadConfig)

// WithMono controls downmixing to a single channel. Loads are mono unless
// WithMono(false) is given.
func WithMono(mono bool) LoadOption {
	return func(c *loadConfig) {
		c.mono = mono
	}
}
