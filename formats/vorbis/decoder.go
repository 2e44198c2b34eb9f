// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"

	"github.com/ik5/audpipe/audio"
	"github.com/jfreymuth/oggvorbis"
)

const defaultBufSize = 4096

// oggReader is the part of oggvorbis.Reader the source needs.
type oggReader interface {
	SampleRate() int
	Channels() int
	// Read fills p with interleaved samples and returns how many it wrote.
	Read(p []float32) (int, error)
}

type source struct {
	dec      oggReader
	channels int
	eof      bool
	// empty counts consecutive reads that produced nothing.
	empty int
}

// maxEmptyReads bounds how often the decoder may return (0, nil) in a row.
const maxEmptyReads = 16

func (s *source) SampleRate() int { return s.dec.SampleRate() }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return defaultBufSize - defaultBufSize%s.channels }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst)%s.channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}
	if s.eof {
		return 0, io.EOF
	}

	total := 0
	for total < len(dst) {
		n, err := s.dec.Read(dst[total:])
		total += n

		if err == io.EOF {
			s.eof = true
			break
		}
		if err != nil {
			return total, fmt.Errorf("decoding vorbis: %w", err)
		}

		if n == 0 {
			s.empty++
			if s.empty >= maxEmptyReads {
				return total, fmt.Errorf("decoding vorbis: no progress after %d reads", s.empty)
			}
			continue
		}
		s.empty = 0

		// A page boundary is a fine place to hand back what we have.
		if total%s.channels == 0 {
			break
		}
	}

	if s.eof {
		return total - total%s.channels, io.EOF
	}

	return total, nil
}

// Decoder reads Ogg Vorbis streams through github.com/jfreymuth/oggvorbis.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening ogg vorbis stream: %w", err)
	}

	return newSource(dec)
}

func newSource(dec oggReader) (*source, error) {
	if dec.Channels() < 1 {
		return nil, fmt.Errorf("%w: %d channels", audio.ErrInvalidArgument, dec.Channels())
	}

	return &source{dec: dec, channels: dec.Channels()}, nil
}
