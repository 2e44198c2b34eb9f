package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/ik5/audpipe/audio"
)

// pcmFile builds a canonical WAV with raw little-endian PCM payload.
func pcmFile(format uint16, sampleRate, channels, bits int, payload []byte) []byte {
	le := binary.LittleEndian
	buf := new(bytes.Buffer)
	blockAlign := channels * bits / 8

	buf.WriteString("RIFF")
	_ = binary.Write(buf, le, uint32(36+len(payload)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(buf, le, uint32(16))
	_ = binary.Write(buf, le, format)
	_ = binary.Write(buf, le, uint16(channels))
	_ = binary.Write(buf, le, uint32(sampleRate))
	_ = binary.Write(buf, le, uint32(sampleRate*blockAlign))
	_ = binary.Write(buf, le, uint16(blockAlign))
	_ = binary.Write(buf, le, uint16(bits))
	buf.WriteString("data")
	_ = binary.Write(buf, le, uint32(len(payload)))
	buf.Write(payload)

	return buf.Bytes()
}

func wav16(t *testing.T, sampleRate, channels int, samples []int16) []byte {
	t.Helper()

	buf := new(bytes.Buffer)
	if err := WriteWAV16(buf, sampleRate, channels, samples); err != nil {
		t.Fatalf("WriteWAV16() error = %v", err)
	}

	return buf.Bytes()
}

func TestDecoder_Mono16(t *testing.T) {
	t.Parallel()

	data := wav16(t, 16000, 1, []int16{0, 16384, -16384, 32767})

	src, err := Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	defer src.Close()

	if src.SampleRate() != 16000 || src.Channels() != 1 {
		t.Fatalf("format = %d Hz / %d ch, want 16000 / 1", src.SampleRate(), src.Channels())
	}

	buf := make([]float32, 8)
	n, err := src.ReadSamples(buf)
	if err != nil && err != io.EOF {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if n != 4 {
		t.Fatalf("n = %d, want 4", n)
	}

	want := []float32{0, 0.5, -0.5, 32767.0 / 32768.0}
	for i := range want {
		if math.Abs(float64(buf[i]-want[i])) > 1e-6 {
			t.Errorf("buf[%d] = %v, want %v", i, buf[i], want[i])
		}
	}

	if n, err := src.ReadSamples(buf); n != 0 || err != io.EOF {
		t.Errorf("read after end = (%d, %v), want (0, EOF)", n, err)
	}
}

func TestDecoder_NotSeekable(t *testing.T) {
	t.Parallel()

	data := wav16(t, 8000, 2, []int16{1, 2, 3, 4})

	// bytes.Buffer is not an io.ReadSeeker.
	src, err := Decoder{}.Decode(bytes.NewBuffer(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	w, err := audio.Collect(src)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if w.NumChannels() != 2 || w.Frames() != 2 {
		t.Errorf("shape = %d ch x %d frames, want 2 x 2", w.NumChannels(), w.Frames())
	}
}

func TestDecoder_24Bit(t *testing.T) {
	t.Parallel()

	// 0x400000 is half scale at 24 bits.
	payload := []byte{0x00, 0x00, 0x40, 0x00, 0x00, 0xC0}
	data := pcmFile(1, 48000, 1, 24, payload)

	src, err := Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	w, err := audio.Collect(src)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if w.Frames() != 2 {
		t.Fatalf("frames = %d, want 2", w.Frames())
	}
	if math.Abs(w.Channels[0][0]-0.5) > 1e-6 || math.Abs(w.Channels[0][1]+0.5) > 1e-6 {
		t.Errorf("samples = %v, want [0.5 -0.5]", w.Channels[0])
	}
}

func TestDecoder_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{name: "not riff", data: []byte("this is definitely not a wav file at all, honest"), want: ErrNotWavFile},
		{name: "empty", data: nil, want: ErrNotWavFile},
		{name: "ieee float", data: pcmFile(3, 8000, 1, 32, make([]byte, 8)), want: ErrOnlyPCMSupported},
		{name: "8 bit", data: pcmFile(1, 8000, 1, 8, make([]byte, 4)), want: ErrUnsupportedBitDepth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decoder{}.Decode(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSource_InvalidDstSize(t *testing.T) {
	t.Parallel()

	src, err := Decoder{}.Decode(bytes.NewReader(wav16(t, 8000, 2, []int16{1, 2})))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if _, err := src.ReadSamples(make([]float32, 3)); !errors.Is(err, audio.ErrInvalidDstSize) {
		t.Errorf("ReadSamples() error = %v, want ErrInvalidDstSize", err)
	}
	if src.BufSize()%2 != 0 {
		t.Errorf("BufSize() = %d, not a whole number of frames", src.BufSize())
	}
}

func BenchmarkSource_ReadSamples(b *testing.B) {
	samples := make([]int16, 16000)
	for i := range samples {
		samples[i] = int16(i % 1000)
	}
	buf := new(bytes.Buffer)
	if err := WriteWAV16(buf, 16000, 1, samples); err != nil {
		b.Fatal(err)
	}
	data := buf.Bytes()
	dst := make([]float32, 4096)

	b.ReportAllocs()
	for b.Loop() {
		src, err := Decoder{}.Decode(bytes.NewReader(data))
		if err != nil {
			b.Fatal(err)
		}
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
