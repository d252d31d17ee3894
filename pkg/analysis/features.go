package analysis

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/orato-app/orato/pkg/audio"
)

// Trace is the time-indexed feature set of a recording: a loudness (RMS)
// envelope, a spectral-centroid envelope, and the shared time axis in
// seconds. The three slices are always the same length, aligned frame for
// frame.
type Trace struct {
	Times    []float64
	RMS      []float64
	Centroid []float64
}

// Len returns the number of frames in the trace.
func (t *Trace) Len() int { return len(t.Times) }

// Features computes the RMS and spectral-centroid envelopes of buf over the
// shared analysis geometry. An empty buffer yields an empty trace.
func Features(buf *audio.Buffer) *Trace {
	n := frameCount(len(buf.Samples))
	tr := &Trace{
		Times:    make([]float64, n),
		RMS:      make([]float64, n),
		Centroid: make([]float64, n),
	}
	if n == 0 {
		return tr
	}

	fft := fourier.NewFFT(FrameLength)
	window := hannWindow(FrameLength)

	frame := make([]float64, FrameLength)
	for i := range n {
		start := i * HopLength
		end := min(start+FrameLength, len(buf.Samples))

		// Zero-pad the final short frame so the FFT size stays fixed.
		copy(frame, buf.Samples[start:end])
		for j := end - start; j < FrameLength; j++ {
			frame[j] = 0
		}

		tr.Times[i] = float64(start) / float64(buf.SampleRate)
		tr.RMS[i] = rms(frame[:end-start])
		tr.Centroid[i] = spectralCentroid(fft, frame, window, buf.SampleRate)
	}
	return tr
}

// rms is the root-mean-square amplitude of one frame.
func rms(frame []float64) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, s := range frame {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(frame)))
}

// spectralCentroid is the first moment of the windowed magnitude spectrum:
// the frequency "center of mass" of the frame in Hz. A frame with no energy
// reports 0.
func spectralCentroid(fft *fourier.FFT, frame, window []float64, sampleRate int) float64 {
	windowed := make([]float64, len(frame))
	for i := range frame {
		windowed[i] = frame[i] * window[i]
	}

	coeffs := fft.Coefficients(nil, windowed)

	var num, den float64
	for k, c := range coeffs {
		mag := math.Hypot(real(c), imag(c))
		freq := float64(k) * float64(sampleRate) / float64(len(frame))
		num += freq * mag
		den += mag
	}
	if den == 0 {
		return 0
	}
	return num / den
}

func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}
