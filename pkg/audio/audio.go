// Package audio decodes uploaded recordings into mono sample buffers.
//
// Browser recordings arrive as either RIFF/WAVE or Ogg/Opus containers.
// [Decode] sniffs the container from the leading bytes, decodes it, and
// downmixes to a single channel of float64 samples in [-1, 1]. The resulting
// [Buffer] is the input to every downstream analysis stage.
//
// A Buffer is immutable after decoding: one is created per recording upload,
// consumed by a single evaluation pass, and discarded. A zero-length sample
// slice is a valid Buffer (an empty recording) and every consumer in
// pkg/analysis handles it without error.
package audio

import (
	"errors"
	"fmt"
	"time"
)

// ErrDecode is the sentinel wrapped by all decode failures. Callers should
// treat a matching error as "no usable recording" and skip analysis for the
// attempt rather than failing the session.
var ErrDecode = errors.New("audio: undecodable input")

// Buffer holds a decoded mono recording.
type Buffer struct {
	// Samples are mono float64 samples in [-1, 1]. May be empty.
	Samples []float64

	// SampleRate is the sampling rate in Hz. Always > 0 for a decoded Buffer.
	SampleRate int
}

// Duration returns the clip length.
func (b *Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 || len(b.Samples) == 0 {
		return 0
	}
	return time.Duration(float64(len(b.Samples)) / float64(b.SampleRate) * float64(time.Second))
}

// Seconds returns the clip length in seconds as a float, the unit used by
// the analysis traces.
func (b *Buffer) Seconds() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// Decode sniffs the container format of data and decodes it to a mono
// [Buffer]. Supported containers: RIFF/WAVE (integer and float PCM) and
// Ogg/Opus. Returns an error wrapping [ErrDecode] when data is empty or not
// a recognizable audio container.
func Decode(data []byte) (*Buffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecode)
	}
	switch {
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return DecodeWAV(data)
	case len(data) >= 4 && string(data[0:4]) == "OggS":
		return DecodeOggOpus(data)
	}
	return nil, fmt.Errorf("%w: unrecognized container", ErrDecode)
}
