// Package openai provides an STT provider backed by the OpenAI audio
// transcription API (whisper-1 by default).
package openai

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"

	"github.com/orato-app/orato/pkg/provider/stt"
)

// DefaultModel is the transcription model used when none is configured.
const DefaultModel = oai.AudioModelWhisper1

// Provider implements stt.Provider using the OpenAI audio API.
type Provider struct {
	client oai.Client
	model  string
}

// Compile-time interface assertion.
var _ stt.Provider = (*Provider)(nil)

// config holds optional configuration for the provider.
type config struct {
	baseURL string
	timeout time.Duration
}

// Option is a functional option for Provider.
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// New constructs a new OpenAI STT Provider. If model is empty, [DefaultModel]
// is used.
func New(apiKey string, model string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai stt: apiKey must not be empty")
	}
	if model == "" {
		model = DefaultModel
	}

	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{
			Timeout: cfg.timeout,
		}))
	}

	return &Provider{client: oai.NewClient(reqOpts...), model: model}, nil
}

// Transcribe implements stt.Provider.
func (p *Provider) Transcribe(ctx context.Context, req stt.Request) (stt.Result, error) {
	if len(req.Audio) == 0 {
		return stt.Result{}, fmt.Errorf("openai stt: empty audio")
	}

	filename := "recording" + extensionFor(req.ContentType)
	params := oai.AudioTranscriptionNewParams{
		File:  oai.File(bytes.NewReader(req.Audio), filename, req.ContentType),
		Model: p.model,
	}
	if req.Language != "" {
		params.Language = param.NewOpt(req.Language)
	}

	resp, err := p.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return stt.Result{}, fmt.Errorf("openai stt: transcribe: %w", err)
	}
	return stt.Result{Text: resp.Text}, nil
}

// extensionFor maps a MIME type to the filename extension the API expects.
func extensionFor(contentType string) string {
	switch contentType {
	case "audio/ogg", "audio/ogg; codecs=opus":
		return ".ogg"
	case "audio/webm", "audio/webm; codecs=opus":
		return ".webm"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	default:
		return ".wav"
	}
}
