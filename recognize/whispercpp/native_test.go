//go:build whispercpp

package whispercpp_test

import (
	"context"
	"os"
	"testing"

	"github.com/ik5/audpipe/internal/audiotest"
	"github.com/ik5/audpipe/recognize/whispercpp"
)

// TestRecognize_Silence needs a real model; set WHISPER_MODEL to its path.
func TestRecognize_Silence(t *testing.T) {
	path := os.Getenv("WHISPER_MODEL")
	if path == "" {
		t.Skip("WHISPER_MODEL not set")
	}

	r, err := whispercpp.New(path, whispercpp.WithLanguage("en"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	silence := audiotest.Constant(r.SampleRate(), 1, r.SampleRate(), 0)
	if _, err := r.Recognize(context.Background(), silence.Interleaved(), ""); err != nil {
		t.Fatalf("Recognize: %v", err)
	}
}
