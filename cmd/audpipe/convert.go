// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/audpipe"
	"github.com/ik5/audpipe/store"
)

func newConvertCommand(cc *commandContext) *cobra.Command {
	var (
		tf  transformFlags
		out string
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Write adjusted sound files as 16-bit WAV",
		Long: `Convert loads each --file, applies --volume and --speed and writes a
16-bit PCM WAV at the configured output rate.

With one input, --out names the output file. With several, --out is a
directory and each output is named after its input. Without --out the
result is written next to the input as <name>_converted.wav.`,
		Example: `  audpipe convert -f voice.mp3 --speed 0.8 --out slow.wav
  audpipe convert -f a.wav -f b.wav --volume 2 --out louder`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := tf.request(cmd)
			if err != nil {
				return err
			}

			outputs, err := outputNames(tf.files, out)
			if err != nil {
				return err
			}

			st, err := cc.openStore()
			if err != nil {
				return err
			}

			opts, tbl := cc.pipelineOptions()
			p := audpipe.New(st, opts...)

			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(cc.cfg.Workers)
			for i, file := range tf.files {
				g.Go(func() error {
					if err := p.Export(ctx, file, req, outputs[i]); err != nil {
						return fmt.Errorf("%s: %w", file, err)
					}
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

			for _, o := range outputs {
				fmt.Fprintln(cmd.OutOrStdout(), o)
			}

			return nil
		},
	}

	tf.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output .wav file, or directory for several inputs")

	return cmd
}

// outputNames maps every input to its output name.
func outputNames(files []string, out string) ([]string, error) {
	names := make([]string, len(files))

	if len(files) == 1 && out != "" {
		if err := store.CheckWritable(out); err != nil {
			return nil, err
		}
		names[0] = out
		return names, nil
	}

	if out != "" && strings.EqualFold(filepath.Ext(out), ".wav") {
		return nil, errors.New("--out must be a directory when converting several files")
	}

	seen := make(map[string]string, len(files))
	for i, f := range files {
		stem := strings.TrimSuffix(f, filepath.Ext(f))
		if out == "" {
			names[i] = stem + "_converted.wav"
		} else {
			names[i] = filepath.Join(out, filepath.Base(stem)+".wav")
		}

		if prev, ok := seen[names[i]]; ok {
			return nil, fmt.Errorf("%s and %s would both be written to %s", prev, f, names[i])
		}
		seen[names[i]] = f
	}

	return names, nil
}
