package analysis

import (
	"github.com/orato-app/orato/pkg/audio"
)

// yinThreshold is the cumulative-mean-normalized difference level below
// which a lag counts as periodic. Larger values accept weaker periodicity.
const yinThreshold = 0.15

// Contour is a time-aligned fundamental-frequency track. F0 values are in
// Hz; frames with no detectable periodicity in the voice band report the
// sentinel value 0 (unvoiced), never an error.
type Contour struct {
	Times []float64
	F0    []float64
}

// Pitch estimates the per-frame fundamental frequency of buf with the YIN
// difference-function method, restricted to [PitchMinHz, PitchMaxHz].
//
// Only full frames are analyzed, so a clip shorter than [FrameLength]
// samples yields an empty contour. Unvoiced frames report 0.
func Pitch(buf *audio.Buffer) *Contour {
	c := &Contour{}
	if len(buf.Samples) < FrameLength || buf.SampleRate <= 0 {
		return c
	}

	sr := float64(buf.SampleRate)
	// Window half used for the difference function; lags beyond it cannot
	// be evaluated within one frame.
	w := FrameLength / 2
	tauMin := max(int(sr/PitchMaxHz), 2)
	tauMax := min(int(sr/PitchMinHz), w-1)
	if tauMin >= tauMax {
		return c
	}

	diff := make([]float64, tauMax+1)
	cmndf := make([]float64, tauMax+1)

	for start := 0; start+FrameLength <= len(buf.Samples); start += HopLength {
		frame := buf.Samples[start : start+FrameLength]
		c.Times = append(c.Times, float64(start)/sr)
		c.F0 = append(c.F0, yinFrame(frame, w, tauMin, tauMax, sr, diff, cmndf))
	}
	return c
}

// yinFrame runs one YIN estimate over a single frame. diff and cmndf are
// scratch buffers reused across frames.
func yinFrame(frame []float64, w, tauMin, tauMax int, sr float64, diff, cmndf []float64) float64 {
	// Difference function d(tau).
	for tau := 1; tau <= tauMax; tau++ {
		var d float64
		for i := 0; i < w; i++ {
			delta := frame[i] - frame[i+tau]
			d += delta * delta
		}
		diff[tau] = d
	}

	// Cumulative mean normalized difference.
	cmndf[0] = 1
	var running float64
	for tau := 1; tau <= tauMax; tau++ {
		running += diff[tau]
		if running == 0 {
			cmndf[tau] = 1
		} else {
			cmndf[tau] = diff[tau] * float64(tau) / running
		}
	}

	// Absolute threshold: first dip below yinThreshold, refined to its
	// local minimum.
	tau := -1
	for t := tauMin; t <= tauMax; t++ {
		if cmndf[t] < yinThreshold {
			for t+1 <= tauMax && cmndf[t+1] < cmndf[t] {
				t++
			}
			tau = t
			break
		}
	}
	if tau < 0 {
		return 0 // unvoiced sentinel
	}

	// Parabolic interpolation around the dip for sub-sample lag precision.
	better := float64(tau)
	if tau > 1 && tau < tauMax {
		s0, s1, s2 := cmndf[tau-1], cmndf[tau], cmndf[tau+1]
		denom := 2*s1 - s2 - s0
		if denom != 0 {
			better += (s2 - s0) / (2 * denom)
		}
	}

	f0 := sr / better
	if f0 < PitchMinHz || f0 > PitchMaxHz {
		return 0
	}
	return f0
}
