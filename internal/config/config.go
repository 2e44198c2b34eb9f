// SPDX-License-Identifier: EPL-2.0

// Package config loads the command line tool's settings from YAML or TOML.
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ik5/audpipe/internal/logging"
	"github.com/ik5/audpipe/transform"
)

// Recognizer backends.
const (
	BackendNone       = "none"
	BackendServer     = "server"
	BackendWhisperCPP = "whispercpp"
)

var backends = []string{BackendNone, BackendServer, BackendWhisperCPP}

const maxZeroCrossings = 256

// Config is the complete tool configuration.
type Config struct {
	// Root holds the data directory. Defaults to the working directory.
	Root    string `yaml:"root" toml:"root"`
	DataDir string `yaml:"data_dir" toml:"data_dir"`

	// Workers bounds the number of files processed at once.
	Workers int `yaml:"workers" toml:"workers"`

	Input      InputConfig      `yaml:"input" toml:"input"`
	Output     OutputConfig     `yaml:"output" toml:"output"`
	Recognizer RecognizerConfig `yaml:"recognizer" toml:"recognizer"`
	Log        LogConfig        `yaml:"log" toml:"log"`
}

// InputConfig controls how files are loaded.
type InputConfig struct {
	SampleRate int        `yaml:"sample_rate" toml:"sample_rate"`
	Mono       bool       `yaml:"mono" toml:"mono"`
	Engine     string     `yaml:"engine" toml:"engine"`
	Sinc       SincConfig `yaml:"sinc" toml:"sinc"`
}

// SincConfig shapes the windowed-sinc kernel of the sinc engine.
type SincConfig struct {
	ZeroCrossings int     `yaml:"zero_crossings" toml:"zero_crossings"`
	KaiserBeta    float64 `yaml:"kaiser_beta" toml:"kaiser_beta"`
}

// OutputConfig controls exported files.
type OutputConfig struct {
	SampleRate int `yaml:"sample_rate" toml:"sample_rate"`
}

// RecognizerConfig selects the speech recognition backend.
type RecognizerConfig struct {
	Backend        string `yaml:"backend" toml:"backend"`
	ServerURL      string `yaml:"server_url" toml:"server_url"`
	ModelPath      string `yaml:"model_path" toml:"model_path"`
	Model          string `yaml:"model" toml:"model"`
	Language       string `yaml:"language" toml:"language"`
	TimeoutSeconds int    `yaml:"timeout_seconds" toml:"timeout_seconds"`
}

// LogConfig is passed to logging.New.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Root:    ".",
		DataDir: "data",
		Workers: min(runtime.NumCPU(), 4),
		Input: InputConfig{
			SampleRate: 16000,
			Mono:       true,
			Engine:     transform.EngineSinc.String(),
			Sinc: SincConfig{
				ZeroCrossings: transform.DefaultZeroCrossings,
				KaiserBeta:    transform.DefaultKaiserBeta,
			},
		},
		Output: OutputConfig{SampleRate: 22050},
		Recognizer: RecognizerConfig{
			Backend:        BackendServer,
			ServerURL:      "http://127.0.0.1:8080",
			TimeoutSeconds: 300,
		},
		Log: LogConfig{Level: "info", Format: logging.FormatAuto},
	}
}

// Load reads the file at path over Default and validates the result. The
// format follows the extension: .yaml, .yml or .toml. An empty path
// returns the validated defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	if err := decode(f, filepath.Ext(path), &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromReader decodes r as format ("yaml" or "toml") over Default and
// validates the result.
func LoadFromReader(r io.Reader, format string) (*Config, error) {
	cfg := Default()
	if err := decode(r, format, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func decode(r io.Reader, format string, cfg *Config) error {
	switch strings.TrimPrefix(strings.ToLower(format), ".") {
	case "yaml", "yml":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("decode yaml: %w", err)
		}
	case "toml":
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return fmt.Errorf("decode toml: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config format %q (want yaml or toml)", format)
	}

	return nil
}

// Validate checks that c contains a coherent set of values. It returns a
// joined error listing every failure.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Root) == "" {
		errs = append(errs, errors.New("root is required"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}

	if c.Input.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("input.sample_rate must be positive, got %d", c.Input.SampleRate))
	}
	if _, err := transform.ParseEngine(c.Input.Engine); err != nil {
		errs = append(errs, fmt.Errorf("input.engine: %w", err))
	}
	if z := c.Input.Sinc.ZeroCrossings; z < 1 || z > maxZeroCrossings {
		errs = append(errs, fmt.Errorf("input.sinc.zero_crossings must be in [1, %d], got %d", maxZeroCrossings, z))
	}
	if b := c.Input.Sinc.KaiserBeta; b < 0 || math.IsNaN(b) || math.IsInf(b, 0) {
		errs = append(errs, fmt.Errorf("input.sinc.kaiser_beta must be a non-negative number, got %v", b))
	}
	if c.Output.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("output.sample_rate must be positive, got %d", c.Output.SampleRate))
	}

	r := c.Recognizer
	switch {
	case !slices.Contains(backends, r.Backend):
		errs = append(errs, fmt.Errorf("recognizer.backend %q is invalid; valid values: %s", r.Backend, strings.Join(backends, ", ")))
	case r.Backend == BackendServer && strings.TrimSpace(r.ServerURL) == "":
		errs = append(errs, errors.New("recognizer.server_url is required for the server backend"))
	case r.Backend == BackendWhisperCPP && strings.TrimSpace(r.ModelPath) == "":
		errs = append(errs, errors.New("recognizer.model_path is required for the whispercpp backend"))
	}
	if r.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("recognizer.timeout_seconds must not be negative, got %d", r.TimeoutSeconds))
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", logging.FormatAuto, logging.FormatText, logging.FormatJSON, "console":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is invalid; valid values: auto, text, json", c.Log.Format))
	}

	return errors.Join(errs...)
}

// Engine returns the configured resampler. Call after Validate.
func (c *Config) Engine() transform.Engine {
	e, _ := transform.ParseEngine(c.Input.Engine)
	return e
}

// ResampleOptions returns the transform options for the configured
// resampler. Call after Validate.
func (c *Config) ResampleOptions() []transform.Option {
	return []transform.Option{
		transform.WithEngine(c.Engine()),
		transform.WithZeroCrossings(c.Input.Sinc.ZeroCrossings),
		transform.WithKaiserBeta(c.Input.Sinc.KaiserBeta),
	}
}
