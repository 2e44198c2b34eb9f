// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/audpipe"
	"github.com/ik5/audpipe/internal/config"
	"github.com/ik5/audpipe/recognize"
	"github.com/ik5/audpipe/recognize/whispercpp"
)

func newTranscribeCommand(cc *commandContext) *cobra.Command {
	var (
		tf   transformFlags
		lang string
	)

	cmd := &cobra.Command{
		Use:   "transcribe",
		Short: "Transcribe sound files with whisper.cpp",
		Example: `  audpipe transcribe -f interview.wav --lang en
  audpipe transcribe -f a.mp3 -f b.ogg --speed 1.25 --volume 0.8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := tf.request(cmd)
			if err != nil {
				return err
			}
			if lang == "" {
				lang = cc.cfg.Recognizer.Language
			}

			st, err := cc.openStore()
			if err != nil {
				return err
			}

			rec, err := newRecognizer(cc.cfg)
			if err != nil {
				return err
			}
			defer rec.Close()

			opts, tbl := cc.pipelineOptions()
			p := audpipe.New(st, append(opts, audpipe.WithRecognizer(rec))...)

			texts := make([]string, len(tf.files))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(cc.cfg.Workers)
			for i, file := range tf.files {
				g.Go(func() error {
					text, err := p.Transcribe(ctx, file, req, lang)
					if err != nil {
						return fmt.Errorf("%s: %w", file, err)
					}
					texts[i] = text
					return nil
				})
			}
			err = g.Wait()

			if tbl != nil {
				_, _ = tbl.WriteTo(cmd.ErrOrStderr())
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, file := range tf.files {
				if len(tf.files) > 1 {
					fmt.Fprintf(out, "%s: %s\n", file, texts[i])
					continue
				}
				fmt.Fprintln(out, texts[i])
			}

			return nil
		},
	}

	tf.register(cmd)
	cmd.Flags().StringVar(&lang, "lang", "", "Language hint such as en (default from config)")

	return cmd
}

// newRecognizer builds the configured backend.
func newRecognizer(cfg *config.Config) (recognize.Recognizer, error) {
	r := cfg.Recognizer

	switch r.Backend {
	case config.BackendNone:
		return recognize.Nop{}, nil
	case config.BackendServer:
		client := &http.Client{Timeout: time.Duration(r.TimeoutSeconds) * time.Second}
		s, err := recognize.NewServer(r.ServerURL,
			recognize.WithHTTPClient(client),
			recognize.WithLanguage(r.Language),
			recognize.WithModel(r.Model),
		)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendWhisperCPP:
		w, err := whispercpp.New(r.ModelPath,
			whispercpp.WithLanguage(r.Language),
			whispercpp.WithLogger(slog.Default()),
		)
		if err != nil {
			return nil, err
		}
		return w, nil
	default:
		return nil, fmt.Errorf("unknown recognizer backend %q", r.Backend)
	}
}
