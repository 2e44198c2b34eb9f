// SPDX-License-Identifier: EPL-2.0

package recognize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/ik5/audpipe/formats/wav"
	"github.com/ik5/audpipe/utils"
)

const (
	inferencePath  = "/inference"
	defaultTimeout = 5 * time.Minute

	// maxResponseSize bounds the JSON body read from the server.
	maxResponseSize = 4 << 20
)

var _ Recognizer = (*Server)(nil)

// Server is a client for the whisper.cpp whisper-server. Each Recognize
// call uploads the samples as a 16-bit mono WAV to POST /inference.
type Server struct {
	baseURL    string
	httpClient *http.Client
	sampleRate int
	language   string
	model      string
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithHTTPClient replaces the HTTP client. The default has a five minute
// timeout.
func WithHTTPClient(c *http.Client) ServerOption {
	return func(s *Server) {
		if c != nil {
			s.httpClient = c
		}
	}
}

// WithSampleRate sets the rate uploads are declared at. Defaults to 16000.
func WithSampleRate(rate int) ServerOption {
	return func(s *Server) {
		if rate > 0 {
			s.sampleRate = rate
		}
	}
}

// WithLanguage sets the language used when Recognize is given none.
func WithLanguage(lang string) ServerOption {
	return func(s *Server) { s.language = lang }
}

// WithModel sends a model field with each request. whisper-server ignores
// it unless it was started with several models.
func WithModel(model string) ServerOption {
	return func(s *Server) { s.model = model }
}

// NewServer returns a client for the whisper-server at baseURL, for example
// "http://127.0.0.1:8080".
func NewServer(baseURL string, opts ...ServerOption) (*Server, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: empty server URL", ErrRecognition)
	}

	s := &Server{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		sampleRate: DefaultSampleRate,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *Server) SampleRate() int { return s.sampleRate }
func (s *Server) Close() error    { return nil }

// Recognize uploads samples and returns the trimmed "text" field of the
// response.
func (s *Server) Recognize(ctx context.Context, samples []float32, language string) (string, error) {
	if language == "" {
		language = s.language
	}

	body, contentType, err := s.form(samples, language)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+inferencePath, body)
	if err != nil {
		return "", fmt.Errorf("%w: create request: %w", ErrRecognition, err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: http request: %w", ErrRecognition, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %w", ErrRecognition, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: server returned HTTP %d: %s",
			ErrRecognition, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var result struct {
		Text  string `json:"text"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("%w: parse response: %w", ErrRecognition, err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrRecognition, result.Error)
	}

	return strings.TrimSpace(result.Text), nil
}

func (s *Server) form(samples []float32, language string) (io.Reader, string, error) {
	pcm := make([]int16, len(samples))
	for i, v := range samples {
		pcm[i] = utils.ToInt16(v)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, "", fmt.Errorf("%w: create form file: %w", ErrRecognition, err)
	}
	if err := wav.WriteWAV16(fw, s.sampleRate, 1, pcm); err != nil {
		return nil, "", fmt.Errorf("%w: encode wav: %w", ErrRecognition, err)
	}

	fields := [][2]string{
		{"response_format", "json"},
		{"language", language},
		{"model", s.model},
	}
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("%w: write %s field: %w", ErrRecognition, f[0], err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("%w: close multipart writer: %w", ErrRecognition, err)
	}

	return &body, mw.FormDataContentType(), nil
}
