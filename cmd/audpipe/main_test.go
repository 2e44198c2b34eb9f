package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/internal/audiotest"
	"github.com/ik5/audpipe/store"
)

// setupRoot returns a root directory whose data directory holds a two
// second 22050 Hz tone named tone.wav.
func setupRoot(t *testing.T) (root string, st *store.Store) {
	t.Helper()

	root = t.TempDir()
	st, err := store.New(root)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	audiotest.WriteWAV(t, st.DataDir(), "tone.wav", audiotest.Sine(22050, 1, 44100, 440, 0.5))

	return root, st
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestConvert(t *testing.T) {
	root, st := setupRoot(t)

	stdout, _, err := execute(t, "convert", "--root", root, "--log-level", "error",
		"-f", "tone.wav", "--speed", "2", "--volume", "0.5", "--out", "fast.wav")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if strings.TrimSpace(stdout) != "fast.wav" {
		t.Errorf("stdout = %q, want fast.wav", stdout)
	}

	w, err := st.Load("fast.wav", 22050)
	if err != nil {
		t.Fatalf("loading output: %v", err)
	}
	if w.Frames() != 22050 {
		t.Errorf("Frames() = %d, want 22050", w.Frames())
	}
}

func TestConvert_SeveralFiles(t *testing.T) {
	root, st := setupRoot(t)
	audiotest.WriteWAV(t, st.DataDir(), "other.wav", audiotest.Sine(16000, 1, 16000, 220, 0.5))

	_, stderr, err := execute(t, "convert", "--root", root, "--workers", "2", "--inspect", "--log-level", "error",
		"-f", "tone.wav", "-f", "other.wav", "--out", "converted")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	for _, name := range []string{"converted/tone.wav", "converted/other.wav"} {
		if err := store.CheckReadable(filepath.Join(st.DataDir(), name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	if !strings.Contains(stderr, "STAGE") || !strings.Contains(stderr, "other.wav") {
		t.Errorf("--inspect table missing from stderr:\n%s", stderr)
	}
}

func TestConvert_Errors(t *testing.T) {
	root, _ := setupRoot(t)

	tests := []struct {
		name string
		args []string
		is   error
	}{
		{name: "no file", args: []string{"convert", "--root", root}},
		{name: "mp3 output", args: []string{"convert", "--root", root, "-f", "tone.wav", "--out", "x.mp3"}, is: audio.ErrInvalidArgument},
		{name: "missing input", args: []string{"convert", "--root", root, "-f", "nope.wav"}, is: audio.ErrNotFound},
		{name: "zero speed", args: []string{"convert", "--root", root, "-f", "tone.wav", "--speed", "0"}, is: audio.ErrInvalidArgument},
		{name: "bad log level", args: []string{"convert", "--root", root, "-f", "tone.wav", "--log-level", "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			if err == nil {
				t.Fatal("convert succeeded")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("error = %v, want %v", err, tt.is)
			}
		})
	}
}

func TestTranscribe_Server(t *testing.T) {
	var language string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/inference" {
			http.NotFound(w, r)
			return
		}
		language = r.FormValue("language")
		_ = json.NewEncoder(w).Encode(map[string]string{"text": " a steady tone "})
	}))
	defer srv.Close()

	root, _ := setupRoot(t)
	cfgPath := filepath.Join(t.TempDir(), "audpipe.yaml")
	cfg := "root: " + root + "\nrecognizer:\n  backend: server\n  server_url: " + srv.URL + "\nlog:\n  level: error\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := execute(t, "transcribe", "-c", cfgPath, "-f", "tone.wav", "--lang", "en", "--speed", "1.5", "--shift")
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if stdout != "a steady tone\n" {
		t.Errorf("stdout = %q", stdout)
	}
	if language != "en" {
		t.Errorf("language = %q, want en", language)
	}
}

func TestTranscribe_NoneBackend(t *testing.T) {
	root, st := setupRoot(t)
	audiotest.WriteWAV(t, st.DataDir(), "b.wav", audiotest.Sine(8000, 1, 8000, 220, 0.5))

	cfgPath := filepath.Join(t.TempDir(), "audpipe.toml")
	cfg := "root = \"" + filepath.ToSlash(root) + "\"\n\n[recognizer]\nbackend = \"none\"\n\n[log]\nlevel = \"error\"\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := execute(t, "transcribe", "-c", cfgPath, "-f", "tone.wav", "-f", "b.wav")
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if stdout != "tone.wav: \nb.wav: \n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestOutputNames(t *testing.T) {
	tests := []struct {
		name    string
		files   []string
		out     string
		want    []string
		wantErr bool
	}{
		{name: "single explicit", files: []string{"a.mp3"}, out: "b.wav", want: []string{"b.wav"}},
		{name: "single default", files: []string{"sub/a.mp3"}, want: []string{"sub/a_converted.wav"}},
		{name: "several into dir", files: []string{"x/a.ogg", "b.wav"}, out: "out", want: []string{filepath.Join("out", "a.wav"), filepath.Join("out", "b.wav")}},
		{name: "several default", files: []string{"a.ogg", "b.wav"}, want: []string{"a_converted.wav", "b_converted.wav"}},
		{name: "single bad extension", files: []string{"a.wav"}, out: "a.flac", wantErr: true},
		{name: "several into file", files: []string{"a.wav", "b.wav"}, out: "all.wav", wantErr: true},
		{name: "collision", files: []string{"x/a.wav", "y/a.mp3"}, out: "out", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := outputNames(tt.files, tt.out)
			if tt.wantErr {
				if err == nil {
					t.Errorf("outputNames = %v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("outputNames: %v", err)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("outputNames = %v, want %v", got, tt.want)
			}
		})
	}
}
