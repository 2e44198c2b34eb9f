// SPDX-License-Identifier: EPL-2.0

//go:build !whispercpp

package whispercpp

import (
	"context"
	"fmt"

	"github.com/ik5/audpipe/recognize"
)

var _ recognize.Recognizer = (*Recognizer)(nil)

// Recognizer is unavailable in builds without the whispercpp tag.
type Recognizer struct{}

// New always fails with recognize.ErrNotAvailable.
func New(modelPath string, _ ...Option) (*Recognizer, error) {
	return nil, fmt.Errorf("%w: whisper.cpp bindings not compiled in (build with -tags whispercpp to load %q)",
		recognize.ErrNotAvailable, modelPath)
}

func (*Recognizer) SampleRate() int { return recognize.DefaultSampleRate }
func (*Recognizer) Close() error    { return nil }

func (*Recognizer) Recognize(context.Context, []float32, string) (string, error) {
	return "", recognize.ErrNotAvailable
}
