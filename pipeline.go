// SPDX-License-Identifier: EPL-2.0

package audpipe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/internal/observe"
	"github.com/ik5/audpipe/recognize"
	"github.com/ik5/audpipe/store"
	"github.com/ik5/audpipe/transform"
)

// ErrNoRecognizer is returned by Transcribe when no Recognizer was
// configured.
var ErrNoRecognizer = errors.New("audpipe: no recognizer configured")

// Pipeline sequences load, volume and tempo over files of a Store. A
// Pipeline holds no per-run state and may serve concurrent runs.
type Pipeline struct {
	store         *store.Store
	recognizer    recognize.Recognizer
	observer      Observer
	meterProvider metric.MeterProvider
	metrics       *observe.Metrics
	logger        *slog.Logger

	sampleRate int
	outputRate int
	mono       bool
}

// New returns a Pipeline reading from s.
func New(s *store.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:      s,
		observer:   nopObserver{},
		logger:     slog.Default(),
		sampleRate: DefaultSampleRate,
		outputRate: DefaultOutputSampleRate,
		mono:       true,
	}
	for _, opt := range opts {
		opt(p)
	}

	m, err := observe.NewMetrics(p.meterProvider)
	if err != nil {
		p.logger.Warn("metrics disabled", slog.Any("error", err))
		m, _ = observe.NewMetrics(noop.NewMeterProvider())
	}
	p.metrics = m

	return p
}

// Run loads fileName at req.TargetSampleRate (or the pipeline's default
// rate) and applies the requested volume and tempo.
func (p *Pipeline) Run(ctx context.Context, fileName string, req TransformRequest) (w *audio.Waveform, err error) {
	ctx, log := p.begin(ctx, fileName)
	defer p.end(ctx, log, time.Now(), &err)

	if req.TargetSampleRate == 0 {
		req.TargetSampleRate = p.sampleRate
	}

	return p.transform(ctx, log, fileName, req)
}

// Transcribe runs the pipeline and hands the result to the Recognizer as
// mono samples at the recognizer's rate. language may be empty.
func (p *Pipeline) Transcribe(ctx context.Context, fileName string, req TransformRequest, language string) (text string, err error) {
	if p.recognizer == nil {
		return "", ErrNoRecognizer
	}

	ctx, log := p.begin(ctx, fileName)
	defer p.end(ctx, log, time.Now(), &err)

	rate := p.recognizer.SampleRate()
	if rate <= 0 {
		rate = recognize.DefaultSampleRate
	}
	if req.TargetSampleRate == 0 {
		req.TargetSampleRate = rate
	}

	w, err := p.transform(ctx, log, fileName, req)
	if err != nil {
		return "", err
	}

	if w, err = p.resample(ctx, log, w, rate); err != nil {
		return "", err
	}

	samples, err := audio.MonoFloat32(w.Source())
	if err != nil {
		return "", err
	}

	_, err = p.stage(ctx, log, StageRecognize, func() (*audio.Waveform, error) {
		var rerr error
		text, rerr = p.recognizer.Recognize(ctx, samples, language)
		return w, rerr
	})
	if err != nil {
		return "", err
	}

	log.Info("transcribed", slog.Int("chars", len(text)))

	return text, nil
}

// Export runs the pipeline and writes the result to out through the
// Store, resampled to the output rate. Nothing is written on failure.
func (p *Pipeline) Export(ctx context.Context, fileName string, req TransformRequest, out string) (err error) {
	if err := store.CheckWritable(out); err != nil {
		return err
	}

	ctx, log := p.begin(ctx, fileName)
	defer p.end(ctx, log, time.Now(), &err)

	if req.TargetSampleRate == 0 {
		req.TargetSampleRate = p.outputRate
	}

	w, err := p.transform(ctx, log, fileName, req)
	if err != nil {
		return err
	}

	if w, err = p.resample(ctx, log, w, p.outputRate); err != nil {
		return err
	}

	_, err = p.stage(ctx, log, StageWrite, func() (*audio.Waveform, error) {
		return w, p.store.Write(out, w)
	})
	if err != nil {
		return err
	}

	log.Info("exported", slog.String("out", out), slog.Int("sample_rate", w.SampleRate))

	return nil
}

func (p *Pipeline) begin(ctx context.Context, fileName string) (context.Context, *slog.Logger) {
	run := Run{ID: uuid.NewString(), File: fileName}
	log := p.logger.With(slog.String("run_id", run.ID), slog.String("file", fileName))

	return withRun(ctx, run), log
}

func (p *Pipeline) end(ctx context.Context, log *slog.Logger, start time.Time, err *error) {
	elapsed := time.Since(start)
	p.metrics.RecordRun(ctx, elapsed, *err)

	if *err != nil {
		log.Debug("pipeline failed", slog.Duration("elapsed", elapsed), slog.Any("error", *err))
		return
	}
	log.Debug("pipeline finished", slog.Duration("elapsed", elapsed))
}

// transform is load -> volume -> tempo.
func (p *Pipeline) transform(ctx context.Context, log *slog.Logger, fileName string, req TransformRequest) (*audio.Waveform, error) {
	if p.store == nil {
		return nil, fmt.Errorf("%w: pipeline has no store", audio.ErrInvalidArgument)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	w, err := p.stage(ctx, log, StageLoad, func() (*audio.Waveform, error) {
		return p.store.Load(fileName, req.TargetSampleRate, store.WithMono(p.mono))
	})
	if err != nil {
		return nil, err
	}

	if req.Volume != nil {
		factor := *req.Volume
		if w, err = p.stage(ctx, log, StageVolume, func() (*audio.Waveform, error) {
			return transform.ApplyVolume(w, factor), nil
		}); err != nil {
			return nil, err
		}
	}

	if req.Speed != nil {
		rate := *req.Speed
		if w, err = p.stage(ctx, log, StageTempo, func() (*audio.Waveform, error) {
			return transform.ApplyTempo(w, rate, req.ShiftPitch)
		}); err != nil {
			return nil, err
		}
	}

	return w, nil
}

func (p *Pipeline) resample(ctx context.Context, log *slog.Logger, w *audio.Waveform, rate int) (*audio.Waveform, error) {
	if w.SampleRate == rate {
		return w, nil
	}

	return p.stage(ctx, log, StageResample, func() (*audio.Waveform, error) {
		return transform.Resample(w, rate, p.store.ResampleOptions()...)
	})
}

// stage runs fn to completion, records it and notifies the observer. The
// context is only checked before fn starts.
func (p *Pipeline) stage(ctx context.Context, log *slog.Logger, stage Stage, fn func() (*audio.Waveform, error)) (*audio.Waveform, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", stage, err)
	}

	start := time.Now()
	w, err := fn()
	elapsed := time.Since(start)

	frames := 0
	if w != nil {
		frames = w.Frames()
	}
	p.metrics.RecordStage(ctx, string(stage), elapsed, frames, err)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", stage, err)
	}

	log.Debug("stage complete",
		slog.String("stage", string(stage)),
		slog.Duration("elapsed", elapsed),
		slog.Int("sample_rate", w.SampleRate),
		slog.Int("channels", w.NumChannels()),
		slog.Int("frames", w.Frames()),
	)
	p.observer.Observe(ctx, stage, w)

	return w, nil
}
