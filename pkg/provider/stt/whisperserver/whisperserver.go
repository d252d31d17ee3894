// Package whisperserver provides an STT provider backed by a local
// whisper.cpp server binary, which exposes a REST API at POST /inference.
//
// The server only understands 16-bit mono WAV input, so recordings in other
// containers are decoded with pkg/audio and re-encoded at 16 kHz before
// upload. This keeps the whole transcription path self-hosted: no audio
// leaves the machine.
//
// Usage:
//
//	p, err := whisperserver.New("http://localhost:8080",
//	    whisperserver.WithLanguage("en"),
//	)
//	res, err := p.Transcribe(ctx, stt.Request{Audio: wavBytes, ContentType: "audio/wav"})
package whisperserver

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

	"github.com/orato-app/orato/pkg/audio"
	"github.com/orato-app/orato/pkg/provider/stt"
)

const defaultTimeout = 60 * time.Second

// Provider implements stt.Provider backed by a whisper.cpp HTTP server.
type Provider struct {
	serverURL  string
	language   string
	model      string
	httpClient *http.Client
}

// Compile-time interface assertion.
var _ stt.Provider = (*Provider)(nil)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithLanguage sets the language code sent to the server (e.g. "en", "ko").
// Empty lets the server auto-detect.
func WithLanguage(lang string) Option {
	return func(p *Provider) {
		p.language = lang
	}
}

// WithModel sets the model identifier forwarded to the server (e.g.
// "base.en"). When empty the server uses whichever model it was started
// with — this is the default.
func WithModel(model string) Option {
	return func(p *Provider) {
		p.model = model
	}
}

// WithHTTPClient replaces the default HTTP client (60 s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// New constructs a Provider pointed at serverURL (e.g. "http://localhost:8080").
func New(serverURL string, opts ...Option) (*Provider, error) {
	if serverURL == "" {
		return nil, fmt.Errorf("whisperserver: serverURL must not be empty")
	}
	p := &Provider{
		serverURL:  strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Transcribe implements stt.Provider. Non-WAV input is decoded and
// re-encoded as 16 kHz mono WAV before upload.
func (p *Provider) Transcribe(ctx context.Context, req stt.Request) (stt.Result, error) {
	wav := req.Audio
	if !isWAV(req.Audio) {
		buf, err := audio.Decode(req.Audio)
		if err != nil {
			return stt.Result{}, fmt.Errorf("whisperserver: re-encode input: %w", err)
		}
		wav = audio.ToSTTFormat(buf)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return stt.Result{}, fmt.Errorf("whisperserver: create form file: %w", err)
	}
	if _, err := fw.Write(wav); err != nil {
		return stt.Result{}, fmt.Errorf("whisperserver: write wav data: %w", err)
	}

	lang := req.Language
	if lang == "" {
		lang = p.language
	}
	if lang != "" {
		if err := mw.WriteField("language", lang); err != nil {
			return stt.Result{}, fmt.Errorf("whisperserver: write language field: %w", err)
		}
	}
	if p.model != "" {
		if err := mw.WriteField("model", p.model); err != nil {
			return stt.Result{}, fmt.Errorf("whisperserver: write model field: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return stt.Result{}, fmt.Errorf("whisperserver: close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.serverURL+"/inference", &body)
	if err != nil {
		return stt.Result{}, fmt.Errorf("whisperserver: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return stt.Result{}, fmt.Errorf("whisperserver: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return stt.Result{}, fmt.Errorf("whisperserver: server returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return stt.Result{}, fmt.Errorf("whisperserver: read response body: %w", err)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return stt.Result{}, fmt.Errorf("whisperserver: parse JSON response: %w", err)
	}
	return stt.Result{Text: strings.TrimSpace(result.Text)}, nil
}

func isWAV(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE"
}
