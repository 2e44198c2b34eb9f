// SPDX-License-Identifier: EPL-2.0

package recognize

import (
	"context"
	"errors"
)

// DefaultSampleRate is the rate whisper models are trained on.
const DefaultSampleRate = 16000

var (
	// ErrRecognition reports a failure inside the recognition backend.
	ErrRecognition = errors.New("recognize: recognition failed")

	// ErrNotAvailable is returned by backends that were not compiled in.
	ErrNotAvailable = errors.New("recognize: backend not available")
)

// Recognizer turns mono samples into text.
type Recognizer interface {
	// Recognize transcribes samples recorded at SampleRate. language is a
	// hint such as "en"; empty lets the backend decide.
	Recognize(ctx context.Context, samples []float32, language string) (string, error)

	// SampleRate is the rate samples must be supplied at.
	SampleRate() int

	Close() error
}

// Nop is a Recognizer that returns an empty transcript.
type Nop struct{}

var _ Recognizer = Nop{}

func (Nop) Recognize(ctx context.Context, _ []float32, _ string) (string, error) {
	return "", ctx.Err()
}

func (Nop) SampleRate() int { return DefaultSampleRate }
func (Nop) Close() error    { return nil }
