// Package tts defines the Provider interface for text-to-speech backends.
//
// Orato uses TTS for exactly one thing: reading an interview question aloud
// before the candidate answers. Synthesis failure is never fatal to an
// interview — callers fall back to displaying the question as text.
package tts

import "context"

// Provider is the abstraction over any TTS backend.
//
// Implementations must be safe for concurrent use.
type Provider interface {
	// Synthesize renders text as encoded audio bytes (format is
	// backend-specific; see ContentType). Must honour ctx cancellation.
	Synthesize(ctx context.Context, text string) ([]byte, error)

	// ContentType reports the MIME type of the audio Synthesize produces.
	ContentType() string
}
