package recognize_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/formats/wav"
	"github.com/ik5/audpipe/recognize"
)

type upload struct {
	language   string
	model      string
	format     string
	sampleRate int
	channels   int
	samples    []float32
}

// newInferenceServer mimics whisper-server: it decodes the uploaded WAV and
// answers with text.
func newInferenceServer(t *testing.T, text string, got *upload) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/inference" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()

		src, err := wav.Decoder{}.Decode(f)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		wf, err := audio.Collect(src)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		*got = upload{
			language:   r.FormValue("language"),
			model:      r.FormValue("model"),
			format:     r.FormValue("response_format"),
			sampleRate: wf.SampleRate,
			channels:   wf.NumChannels(),
			samples:    wf.Interleaved(),
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"text": text})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewServer_EmptyURL(t *testing.T) {
	if _, err := recognize.NewServer("  "); !errors.Is(err, recognize.ErrRecognition) {
		t.Fatalf("NewServer(blank) error = %v, want ErrRecognition", err)
	}
}

func TestServer_Recognize(t *testing.T) {
	var got upload
	srv := newInferenceServer(t, "  hello world \n", &got)

	s, err := recognize.NewServer(srv.URL+"/", recognize.WithModel("base.en"))
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	defer s.Close()

	samples := []float32{0, 0.25, -0.25, 0.5, -0.5, 0}
	text, err := s.Recognize(context.Background(), samples, "en")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}

	if text != "hello world" {
		t.Errorf("text = %q, want %q", text, "hello world")
	}
	if got.language != "en" || got.model != "base.en" || got.format != "json" {
		t.Errorf("form fields = %+v", got)
	}
	if got.sampleRate != recognize.DefaultSampleRate || got.channels != 1 {
		t.Errorf("upload = %d Hz x %d, want 16000 Hz mono", got.sampleRate, got.channels)
	}
	if len(got.samples) != len(samples) {
		t.Fatalf("uploaded %d samples, want %d", len(got.samples), len(samples))
	}
	for i, v := range samples {
		if d := got.samples[i] - v; d > 1e-3 || d < -1e-3 {
			t.Errorf("sample %d = %v, want %v", i, got.samples[i], v)
		}
	}
}

func TestServer_DefaultLanguage(t *testing.T) {
	var got upload
	srv := newInferenceServer(t, "bonjour", &got)

	s, err := recognize.NewServer(srv.URL, recognize.WithLanguage("fr"), recognize.WithSampleRate(8000))
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if s.SampleRate() != 8000 {
		t.Errorf("SampleRate() = %d, want 8000", s.SampleRate())
	}

	if _, err := s.Recognize(context.Background(), make([]float32, 80), ""); err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if got.language != "fr" {
		t.Errorf("language = %q, want fr", got.language)
	}
	if got.sampleRate != 8000 {
		t.Errorf("sample rate = %d, want 8000", got.sampleRate)
	}
	if got.model != "" {
		t.Errorf("model field sent without WithModel: %q", got.model)
	}
}

func TestServer_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "model not loaded", http.StatusInternalServerError)
			},
		},
		{
			name: "bad json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, "{not json")
			},
		},
		{
			name: "error field",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{"error":"failed to process audio"}`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			s, err := recognize.NewServer(srv.URL)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := s.Recognize(context.Background(), make([]float32, 16), "en"); !errors.Is(err, recognize.ErrRecognition) {
				t.Errorf("Recognize error = %v, want ErrRecognition", err)
			}
		})
	}
}

func TestServer_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	s, err := recognize.NewServer(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Recognize(ctx, make([]float32, 16), "")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Recognize error = %v, want context.Canceled", err)
	}
}

func TestNop(t *testing.T) {
	var r recognize.Recognizer = recognize.Nop{}

	text, err := r.Recognize(context.Background(), []float32{1, 2, 3}, "en")
	if err != nil || text != "" {
		t.Errorf("Recognize = %q, %v, want empty transcript", text, err)
	}
	if r.SampleRate() != recognize.DefaultSampleRate {
		t.Errorf("SampleRate() = %d", r.SampleRate())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Recognize(ctx, nil, ""); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled Recognize error = %v", err)
	}
}
