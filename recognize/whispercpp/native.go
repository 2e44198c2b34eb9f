// SPDX-License-Identifier: EPL-2.0

//go:build whispercpp

package whispercpp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/ik5/audpipe/recognize"
)

var _ recognize.Recognizer = (*Recognizer)(nil)

// Recognizer holds a loaded model. Each Recognize call creates its own
// whisper context, so calls may run concurrently.
type Recognizer struct {
	model whisperlib.Model
	config
}

// New loads the model at modelPath.
func New(modelPath string, opts ...Option) (*Recognizer, error) {
	if modelPath == "" {
		return nil, fmt.Errorf("%w: empty model path", recognize.ErrRecognition)
	}

	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("%w: load model %q: %w", recognize.ErrRecognition, modelPath, err)
	}

	r := &Recognizer{model: model, config: config{logger: slog.Default()}}
	for _, opt := range opts {
		opt(&r.config)
	}

	return r, nil
}

func (r *Recognizer) SampleRate() int { return recognize.DefaultSampleRate }

func (r *Recognizer) Close() error {
	if r.model == nil {
		return nil
	}

	return r.model.Close()
}

// Recognize runs inference over samples and joins the segment texts.
func (r *Recognizer) Recognize(ctx context.Context, samples []float32, language string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if language == "" {
		language = r.language
	}

	wctx, err := r.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("%w: create context: %w", recognize.ErrRecognition, err)
	}

	if language != "" {
		if err := wctx.SetLanguage(language); err != nil {
			r.logger.Warn("whisper: failed to set language, using model default",
				slog.String("language", language), slog.Any("error", err))
		}
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return "", fmt.Errorf("%w: process audio: %w", recognize.ErrRecognition, err)
	}

	var parts []string
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: read segment: %w", recognize.ErrRecognition, err)
		}
		if text := strings.TrimSpace(segment.Text); text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, " "), nil
}
