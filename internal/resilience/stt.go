package resilience

import (
	"context"

	"github.com/orato-app/orato/pkg/provider/stt"
)

// STTFallback implements [stt.Provider] across multiple transcription
// backends with per-backend breakers, e.g. a hosted Whisper API with a
// local whisper.cpp server as fallback.
type STTFallback struct {
	group *Group[stt.Provider]
}

// Compile-time interface assertion.
var _ stt.Provider = (*STTFallback)(nil)

func NewSTTFallback(primary stt.Provider, primaryName string, cfg BreakerConfig) *STTFallback {
	return &STTFallback{group: NewGroup(primary, primaryName, cfg)}
}

// AddFallback registers a further transcription backend.
func (f *STTFallback) AddFallback(name string, p stt.Provider) {
	f.group.Add(name, p)
}

// Transcribe sends the audio to the first healthy backend.
func (f *STTFallback) Transcribe(ctx context.Context, req stt.Request) (stt.Result, error) {
	return DoWithResult(f.group, func(p stt.Provider) (stt.Result, error) {
		return p.Transcribe(ctx, req)
	})
}
