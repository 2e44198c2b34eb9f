// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/ik5/audpipe"
)

// transformFlags are the per-file options shared by every command.
type transformFlags struct {
	files  []string
	volume float64
	speed  float64
	shift  bool
	rate   int
}

func (f *transformFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringArrayVarP(&f.files, "file", "f", nil, "Input file inside the data directory (repeatable)")
	flags.Float64Var(&f.volume, "volume", 1, "Gain factor")
	flags.Float64Var(&f.speed, "speed", 1, "Tempo rate; 2 plays twice as fast")
	flags.BoolVar(&f.shift, "shift", false, "Shift pitch along with --speed")
	flags.IntVar(&f.rate, "rate", 0, "Sample rate to load at (default: the consumer's rate)")
}

// request builds the TransformRequest. Stages whose flag was not given are
// left out.
func (f *transformFlags) request(cmd *cobra.Command) (audpipe.TransformRequest, error) {
	if len(f.files) == 0 {
		return audpipe.TransformRequest{}, errors.New("at least one --file is required")
	}

	req := audpipe.TransformRequest{
		TargetSampleRate: f.rate,
		ShiftPitch:       f.shift,
	}
	if cmd.Flags().Changed("volume") {
		req.Volume = audpipe.Float(f.volume)
	}
	if cmd.Flags().Changed("speed") {
		req.Speed = audpipe.Float(f.speed)
	}

	return req, req.Validate()
}
