package audio

// Resample converts mono samples from one rate to another using linear
// interpolation. Returns the input unchanged when the rates already match.
// Quality is sufficient for STT re-containerization; the analysis pipeline
// always works at the buffer's native rate.
func Resample(samples []float64, fromRate, toRate int) []float64 {
	if fromRate == toRate || fromRate <= 0 || toRate <= 0 || len(samples) == 0 {
		return samples
	}

	ratio := float64(fromRate) / float64(toRate)
	outLen := int(float64(len(samples)) / ratio)
	if outLen == 0 {
		return nil
	}

	out := make([]float64, outLen)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = samples[idx]*(1-frac) + samples[idx+1]*frac
	}
	return out
}

// ToSTTFormat re-encodes a decoded buffer as 16 kHz mono 16-bit WAV, the
// least-common-denominator upload format across STT backends.
func ToSTTFormat(b *Buffer) []byte {
	const sttRate = 16000
	return EncodeWAV(Resample(b.Samples, b.SampleRate, sttRate), sttRate)
}
