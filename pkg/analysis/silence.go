package analysis

import (
	"math"

	"github.com/orato-app/orato/pkg/audio"
)

// Interval is a half-open span of active speech in seconds.
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Profile summarizes the silence structure of one recording.
//
// Invariants: 0 <= ActiveDuration <= TotalDuration and SilenceRatio in
// [0, 1]. A zero-length recording reports all-zero fields. A recording
// with no detected speech reports InitialSilence 0: "never spoke" is not
// "hesitated for the whole clip".
type Profile struct {
	// TotalDuration is the full clip length in seconds.
	TotalDuration float64 `json:"total_duration"`

	// ActiveDuration is the summed length of active-speech intervals.
	ActiveDuration float64 `json:"active_duration"`

	// SilenceRatio is (total − active) / total, 0 when total is 0.
	SilenceRatio float64 `json:"silence_ratio"`

	// InitialSilence is the time to the first detected speech, 0 when none
	// is detected.
	InitialSilence float64 `json:"initial_silence"`

	// Intervals are the detected active-speech spans, in order.
	Intervals []Interval `json:"intervals,omitempty"`
}

// Silence partitions buf into speech and silence using an energy threshold
// of [SilenceThresholdDB] below the loudest point of the clip.
//
// Detection scans non-overlapping windows of [HopLength] raw samples rather
// than the overlapping analysis frames: the long analysis window smears
// energy across silence boundaries, and hop-sized windows keep interval
// edges accurate to ~30 ms at common rates.
func Silence(buf *audio.Buffer) Profile {
	total := buf.Seconds()
	p := Profile{TotalDuration: total}
	if total == 0 {
		return p
	}

	// Window RMS levels.
	nWin := (len(buf.Samples) + HopLength - 1) / HopLength
	levels := make([]float64, nWin)
	peak := 0.0
	for i := range nWin {
		start := i * HopLength
		end := min(start+HopLength, len(buf.Samples))
		levels[i] = rms(buf.Samples[start:end])
		peak = math.Max(peak, levels[i])
	}

	threshold := peak * math.Pow(10, -SilenceThresholdDB/20)

	// Contiguous runs of above-threshold windows become intervals.
	rate := float64(buf.SampleRate)
	inRun := false
	runStart := 0
	flush := func(endWin int) {
		start := float64(runStart*HopLength) / rate
		end := math.Min(float64(endWin*HopLength)/rate, total)
		p.Intervals = append(p.Intervals, Interval{Start: start, End: end})
		p.ActiveDuration += end - start
	}
	for i, lv := range levels {
		active := peak > 0 && lv > threshold
		switch {
		case active && !inRun:
			inRun = true
			runStart = i
		case !active && inRun:
			inRun = false
			flush(i)
		}
	}
	if inRun {
		flush(nWin)
	}

	p.SilenceRatio = (total - p.ActiveDuration) / total
	p.SilenceRatio = math.Max(0, math.Min(1, p.SilenceRatio))
	if len(p.Intervals) > 0 {
		p.InitialSilence = p.Intervals[0].Start
	}
	return p
}
