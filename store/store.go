// SPDX-License-Identifier: EPL-2.0

package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/formats/aiff"
	"github.com/ik5/audpipe/formats/mp3"
	"github.com/ik5/audpipe/formats/vorbis"
	"github.com/ik5/audpipe/formats/wav"
	"github.com/ik5/audpipe/transform"
)

// Store resolves, loads and writes waveform files under a data directory.
type Store struct {
	root     string
	dataDir  string
	realDir  string // dataDir with symlinks evaluated
	registry *audio.Registry
	resample []transform.Option
	logger   *slog.Logger
}

// New returns a Store rooted at root. The data directory is created if it
// does not exist.
func New(root string, opts ...Option) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: empty root directory", audio.ErrInvalidArgument)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving root %q: %w", audio.ErrIO, root, err)
	}

	s := &Store{
		root:     abs,
		dataDir:  DefaultDataDir,
		registry: DefaultRegistry(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if !filepath.IsAbs(s.dataDir) {
		s.dataDir = filepath.Join(s.root, s.dataDir)
	}
	s.dataDir = filepath.Clean(s.dataDir)

	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating data directory: %w", audio.ErrIO, err)
	}
	if s.realDir, err = filepath.EvalSymlinks(s.dataDir); err != nil {
		return nil, fmt.Errorf("%w: resolving data directory: %w", audio.ErrIO, err)
	}

	return s, nil
}

// DefaultRegistry returns a registry with every bundled decoder.
func DefaultRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register("wav", wav.Decoder{})
	r.Register("wave", wav.Decoder{})
	r.Register("mp3", mp3.Decoder{})
	r.Register("ogg", vorbis.Decoder{})
	r.Register("oga", vorbis.Decoder{})
	r.Register("aiff", aiff.Decoder{})
	r.Register("aif", aiff.Decoder{})

	return r
}

// DataDir returns the absolute data directory.
func (s *Store) DataDir() string { return s.dataDir }

// ResampleOptions returns the resampler settings Load uses.
func (s *Store) ResampleOptions() []transform.Option { return slices.Clone(s.resample) }

// Resolve maps name to an absolute path inside the data directory. Relative
// names are joined to it; absolute names must already lie within it.
// Nothing is read from disk, so symlinks are not followed; Load checks
// those separately.
func (s *Store) Resolve(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: empty file name", audio.ErrInvalidArgument)
	}
	if strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: file name contains NUL", audio.ErrInvalidArgument)
	}

	rel := name
	if filepath.IsAbs(name) {
		var err error
		if rel, err = filepath.Rel(s.dataDir, filepath.Clean(name)); err != nil {
			return "", fmt.Errorf("%w: %q is outside %s", audio.ErrInvalidArgument, name, s.dataDir)
		}
	}

	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %q is outside %s", audio.ErrInvalidArgument, name, s.dataDir)
	}

	return filepath.Join(s.dataDir, rel), nil
}

// CheckReadable reports whether path names an existing regular file.
func CheckReadable(path string) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", audio.ErrNotFound, path)
	case err != nil:
		return fmt.Errorf("%w: %w", audio.ErrIO, err)
	case !info.Mode().IsRegular():
		return fmt.Errorf("%w: %s is not a regular file", audio.ErrInvalidArgument, path)
	}

	return nil
}

// CheckWritable reports whether name carries the .wav extension required
// for output.
func CheckWritable(name string) error {
	if ext := filepath.Ext(name); !strings.EqualFold(ext, ".wav") {
		return fmt.Errorf("%w: output %q must have a .wav extension", audio.ErrInvalidArgument, name)
	}

	return nil
}

// Load decodes name and returns it at targetSampleRate, resampling when the
// native rate differs. Symlinks are followed only while they stay inside the
// data directory and must be relative.
func (s *Store) Load(name string, targetSampleRate int, opts ...LoadOption) (*audio.Waveform, error) {
	if targetSampleRate <= 0 {
		return nil, fmt.Errorf("%w: target sample rate must be positive, got %d", audio.ErrInvalidArgument, targetSampleRate)
	}

	cfg := loadConfig{mono: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	path, err := s.Resolve(name)
	if err != nil {
		return nil, err
	}
	if err := CheckReadable(path); err != nil {
		return nil, err
	}
	if err := s.checkContained(path); err != nil {
		return nil, err
	}

	dec, ok := s.registry.ForPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: no decoder for %q (supported: %s)",
			audio.ErrInvalidArgument, filepath.Ext(path), strings.Join(s.registry.Formats(), ", "))
	}

	w, err := s.decodeFile(path, dec)
	if err != nil {
		return nil, err
	}

	nativeRate := w.SampleRate
	if cfg.mono {
		w = w.Mono()
	}

	if w.SampleRate != targetSampleRate {
		if w, err = transform.Resample(w, targetSampleRate, s.resample...); err != nil {
			return nil, err
		}
	}

	s.logger.Debug("loaded audio",
		slog.String("path", path),
		slog.Int("native_rate", nativeRate),
		slog.Int("sample_rate", w.SampleRate),
		slog.Int("channels", w.NumChannels()),
		slog.Int("frames", w.Frames()),
	)

	return w, nil
}

// checkContained rejects paths whose symlinks lead out of the data directory.
func (s *Store) checkContained(path string) error {
	target, err := filepath.EvalSymlinks(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", audio.ErrNotFound, path)
	case err != nil:
		return fmt.Errorf("%w: %w", audio.ErrIO, err)
	}

	rel, err := filepath.Rel(s.realDir, target)
	if err != nil || !filepath.IsLocal(rel) {
		return fmt.Errorf("%w: %s links outside %s", audio.ErrInvalidArgument, path, s.dataDir)
	}

	return nil
}

// decodeFile opens path through an os.Root on the data directory, so a link
// swapped in after checkContained still cannot escape it.
func (s *Store) decodeFile(path string, dec audio.Decoder) (*audio.Waveform, error) {
	rel, err := filepath.Rel(s.dataDir, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrInvalidArgument, err)
	}

	root, err := os.OpenRoot(s.dataDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrIO, err)
	}
	defer root.Close()

	f, err := root.Open(rel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrIO, err)
	}
	defer f.Close()

	src, err := dec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %w", audio.ErrIO, path, err)
	}
	defer src.Close()

	w, err := audio.Collect(src)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	return w, nil
}

// Write encodes w as 16-bit PCM WAV, creating or replacing the file.
// Relative names go beneath the data directory; absolute names are used as
// given. The file is written to a temporary name and renamed, so a failure
// leaves nothing behind.
func (s *Store) Write(name string, w *audio.Waveform) error {
	if err := CheckWritable(name); err != nil {
		return err
	}
	if err := w.Validate(); err != nil {
		return err
	}

	path := filepath.Clean(name)
	if !filepath.IsAbs(name) {
		var err error
		if path, err = s.Resolve(name); err != nil {
			return err
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrIO, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: %w", audio.ErrIO, err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %w", audio.ErrIO, err)
	}
	if err := writeTo(tmp, w); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrIO, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrIO, err)
	}

	s.logger.Debug("wrote audio",
		slog.String("path", path),
		slog.Int("sample_rate", w.SampleRate),
		slog.Int("frames", w.Frames()),
	)

	return nil
}

func writeTo(ws io.WriteSeeker, w *audio.Waveform) error {
	if err := wav.Encode(ws, w); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrIO, err)
	}

	return nil
}
