package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/ik5/audpipe/audio"
)

// mockMP3Reader serves int16 PCM the way gomp3.Decoder does, in chunks of
// at most chunk bytes.
type mockMP3Reader struct {
	sampleRate int
	data       []byte
	chunk      int
	err        error
}

func newMockReader(sampleRate int, samples []int16, chunk int) *mockMP3Reader {
	data := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[2*i:], uint16(s))
	}

	return &mockMP3Reader{sampleRate: sampleRate, data: data, chunk: chunk}
}

func (m *mockMP3Reader) SampleRate() int { return m.sampleRate }

func (m *mockMP3Reader) Read(p []byte) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if len(m.data) == 0 {
		return 0, io.EOF
	}

	n := min(len(p), len(m.data))
	if m.chunk > 0 {
		n = min(n, m.chunk)
	}
	copy(p, m.data[:n])
	m.data = m.data[n:]

	return n, nil
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	for name, data := range map[string][]byte{
		"garbage": []byte("This is not MP3 data"),
		"empty":   {},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if _, err := (Decoder{}).Decode(bytes.NewReader(data)); err == nil {
				t.Error("Decode() error = nil, want error")
			}
		})
	}
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	// Odd chunk sizes split samples across reads.
	src := newSource(newMockReader(44100, []int16{0, 16384, -16384, 32767, 1, -1}, 3))

	if src.SampleRate() != 44100 || src.Channels() != 2 {
		t.Fatalf("format = %d Hz / %d ch", src.SampleRate(), src.Channels())
	}

	w, err := audio.Collect(src)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if w.Frames() != 3 {
		t.Fatalf("frames = %d, want 3", w.Frames())
	}

	wantLeft := []float64{0, -0.5, 1.0 / 32768}
	for i, want := range wantLeft {
		if math.Abs(w.Channels[0][i]-want) > 1e-6 {
			t.Errorf("left[%d] = %v, want %v", i, w.Channels[0][i], want)
		}
	}
}

func TestSource_DropsPartialFrame(t *testing.T) {
	t.Parallel()

	src := newSource(newMockReader(8000, []int16{1, 2, 3}, 0))

	buf := make([]float32, 8)
	n, err := src.ReadSamples(buf)
	if err != io.EOF {
		t.Fatalf("ReadSamples() error = %v, want EOF", err)
	}
	if n != 2 {
		t.Errorf("n = %d, want 2", n)
	}
}

func TestSource_Errors(t *testing.T) {
	t.Parallel()

	src := newSource(newMockReader(8000, nil, 0))
	if _, err := src.ReadSamples(make([]float32, 3)); !errors.Is(err, audio.ErrInvalidDstSize) {
		t.Errorf("odd dst: error = %v, want ErrInvalidDstSize", err)
	}

	boom := errors.New("corrupt frame")
	failing := newMockReader(8000, nil, 0)
	failing.err = boom
	src = newSource(failing)
	if _, err := src.ReadSamples(make([]float32, 4)); !errors.Is(err, boom) {
		t.Errorf("read error = %v, want wrapped %v", err, boom)
	}
}

func BenchmarkSource_ReadSamples(b *testing.B) {
	samples := make([]int16, 2*44100)
	dst := make([]float32, 4096)

	b.ReportAllocs()
	for b.Loop() {
		src := newSource(newMockReader(44100, samples, 0))
		for {
			_, err := src.ReadSamples(dst)
			if err == io.EOF {
				break
			}
			if err != nil {
				b.Fatal(err)
			}
		}
	}
}
