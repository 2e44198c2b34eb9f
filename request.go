// SPDX-License-Identifier: EPL-2.0

package audpipe

import (
	"fmt"
	"math"

	"github.com/ik5/audpipe/audio"
)

// TransformRequest lists the operations applied after loading. A nil field
// skips its stage.
type TransformRequest struct {
	// Volume is a linear gain factor.
	Volume *float64

	// Speed is the tempo rate; 2 plays twice as fast.
	Speed *float64

	// TargetSampleRate is the rate the file is loaded at. Zero selects the
	// consumer's rate.
	TargetSampleRate int

	// ShiftPitch applies the pitch heuristic paired with Speed.
	ShiftPitch bool
}

// Float returns a pointer to v, for filling TransformRequest fields.
func Float(v float64) *float64 { return &v }

// Validate checks the request without touching any file.
func (r TransformRequest) Validate() error {
	if r.Volume != nil && (math.IsNaN(*r.Volume) || math.IsInf(*r.Volume, 0)) {
		return fmt.Errorf("%w: volume must be finite, got %v", audio.ErrInvalidArgument, *r.Volume)
	}
	if r.Speed != nil {
		if s := *r.Speed; s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
			return fmt.Errorf("%w: speed must be a positive finite number, got %v", audio.ErrInvalidArgument, s)
		}
	}
	if r.TargetSampleRate < 0 {
		return fmt.Errorf("%w: target sample rate must not be negative, got %d", audio.ErrInvalidArgument, r.TargetSampleRate)
	}

	return nil
}
