package analysis

import "github.com/orato-app/orato/pkg/audio"

// Tempo search band in beats per minute. Speech onset periodicity rarely
// lands outside this range; estimates are clamped to it by construction.
const (
	tempoMinBPM = 30.0
	tempoMaxBPM = 300.0
)

// Tempo estimates a beats-per-minute-like pace scalar from the periodicity
// of the loudness envelope: the onset strength signal (half-wave rectified
// RMS difference) is autocorrelated and the strongest lag inside the BPM
// band wins.
//
// The value is a relative speaking-pace proxy only. It is deterministic for
// a given buffer; an empty or all-silent buffer reports 0.
func Tempo(buf *audio.Buffer) float64 {
	env := Features(buf).RMS
	if len(env) < 3 {
		return 0
	}

	// Onset strength: positive envelope increments.
	onset := make([]float64, len(env)-1)
	var mean float64
	for i := range onset {
		if d := env[i+1] - env[i]; d > 0 {
			onset[i] = d
		}
		mean += onset[i]
	}
	mean /= float64(len(onset))

	// Remove the mean so steady envelopes autocorrelate to zero.
	var energy float64
	for i := range onset {
		onset[i] -= mean
		energy += onset[i] * onset[i]
	}
	if energy == 0 {
		return 0
	}

	frameRate := float64(buf.SampleRate) / HopLength
	minLag := int(60 * frameRate / tempoMaxBPM)
	maxLag := int(60 * frameRate / tempoMinBPM)
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(onset) {
		maxLag = len(onset) - 1
	}
	if minLag > maxLag {
		return 0
	}

	bestLag, bestCorr := 0, 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		var corr float64
		for i := 0; i+lag < len(onset); i++ {
			corr += onset[i] * onset[i+lag]
		}
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}
	if bestLag == 0 || bestCorr <= 0 {
		return 0
	}
	return 60 * frameRate / float64(bestLag)
}
