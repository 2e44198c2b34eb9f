// SPDX-License-Identifier: EPL-2.0

package audpipe

import (
	"context"

	"github.com/ik5/audpipe/audio"
)

// Stage names a pipeline step.
type Stage string

const (
	StageLoad      Stage = "load"
	StageVolume    Stage = "volume"
	StageTempo     Stage = "tempo"
	StageResample  Stage = "resample"
	StageRecognize Stage = "recognize"
	StageWrite     Stage = "write"
)

// Observer is notified with the waveform produced by each successful stage.
// w belongs to the pipeline and must not be modified. Observers shared
// between concurrent runs must be safe for concurrent use.
type Observer interface {
	Observe(ctx context.Context, stage Stage, w *audio.Waveform)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, stage Stage, w *audio.Waveform)

func (f ObserverFunc) Observe(ctx context.Context, stage Stage, w *audio.Waveform) {
	f(ctx, stage, w)
}

type nopObserver struct{}

func (nopObserver) Observe(context.Context, Stage, *audio.Waveform) {}

// Run identifies a single pipeline invocation.
type Run struct {
	ID   string
	File string
}

type runKey struct{}

// RunFromContext returns the run an Observer is being called for.
func RunFromContext(ctx context.Context) (Run, bool) {
	r, ok := ctx.Value(runKey{}).(Run)
	return r, ok
}

func withRun(ctx context.Context, r Run) context.Context {
	return context.WithValue(ctx, runKey{}, r)
}
