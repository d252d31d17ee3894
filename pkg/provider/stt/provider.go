// Package stt defines the Provider interface for speech-to-text backends.
//
// Orato transcribes complete uploaded recordings, not live streams, so the
// interface is a single blocking batch call: audio bytes in, plain text out.
// A backend may legitimately return empty text for an inaudible clip — that
// is a valid result, not an error, and the evaluation pipeline turns it into
// a "no speech detected" report rather than a failure.
//
// Implementations must be safe for concurrent use.
package stt

import "context"

// Request describes one transcription job.
type Request struct {
	// Audio is the recording in its original container format.
	Audio []byte

	// ContentType is the MIME type of Audio (e.g. "audio/wav", "audio/ogg").
	// Backends that only accept one format re-containerize as needed.
	ContentType string

	// Language is an optional BCP-47 language hint (e.g. "en", "ko").
	// Empty lets the backend auto-detect.
	Language string
}

// Result is the outcome of a transcription job.
type Result struct {
	// Text is the transcribed speech. May be empty for an inaudible clip.
	Text string
}

// Provider is the abstraction over any batch STT backend.
type Provider interface {
	// Transcribe converts the recording to text. Implementations must honour
	// ctx cancellation; the evaluation pipeline applies its own timeout and
	// retry policy around this call.
	Transcribe(ctx context.Context, req Request) (Result, error)
}
