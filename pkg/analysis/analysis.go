// Package analysis computes deterministic acoustic metrics from a decoded
// recording: a framewise loudness/brightness trace, a silence profile, a
// speaking-pace (tempo) estimate, and a fundamental-frequency contour.
//
// All stages share one analysis geometry ([FrameLength] samples per frame,
// [HopLength] samples of hop) so their time axes stay aligned frame for
// frame. Every function accepts an empty buffer and returns empty traces or
// zero-valued metrics — degenerate input is never an error here.
package analysis

import "github.com/orato-app/orato/pkg/audio"

const (
	// FrameLength is the analysis window in samples.
	FrameLength = 2048

	// HopLength is the stride between adjacent frames in samples.
	HopLength = 512

	// SilenceThresholdDB is the energy threshold, in decibels below the peak
	// window level, under which audio counts as silence. The canonical value
	// is 25 dB for every call site.
	SilenceThresholdDB = 25.0

	// PitchMinHz and PitchMaxHz bound the fundamental-frequency search to a
	// human-voice-plausible band (musical notes C2 through C7).
	PitchMinHz = 65.41
	PitchMaxHz = 2093.0
)

// Result bundles every acoustic metric computed from one recording.
type Result struct {
	Trace   *Trace
	Silence Profile
	Pitch   *Contour

	// TempoBPM is a periodicity-derived speaking-pace proxy. It is
	// deterministic per buffer but is not a linguistic syllable rate.
	TempoBPM float64
}

// Analyze runs every analysis stage over buf. Safe on empty buffers: the
// result carries empty traces and zero-valued scalars.
func Analyze(buf *audio.Buffer) *Result {
	return &Result{
		Trace:    Features(buf),
		Silence:  Silence(buf),
		Pitch:    Pitch(buf),
		TempoBPM: Tempo(buf),
	}
}

// frameCount returns the number of analysis frames for n samples. A clip
// shorter than one frame still yields a single (short) frame.
func frameCount(n int) int {
	if n == 0 {
		return 0
	}
	if n <= FrameLength {
		return 1
	}
	return 1 + (n-FrameLength)/HopLength
}
