// Package waveform reduces an audio file to a duration and a fixed-length
// sequence of normalized peak amplitudes for drawing a waveform.
//
// Extract never fails: undecodable input yields a zero duration and a flat
// line of zeros.
package waveform

import "math"

// DefaultPeaks is the number of peaks stored per audio upload.
const DefaultPeaks = 800

// PCM is decoded mono audio.
type PCM struct {
	Samples    []float64
	SampleRate int
}

// Duration in seconds.
func (p PCM) Duration() float64 {
	if p.SampleRate <= 0 {
		return 0
	}
	return float64(len(p.Samples)) / float64(p.SampleRate)
}

// Extract decodes data and returns its duration and n peaks in [0,1].
// n <= 0 means DefaultPeaks.
func Extract(data []byte, n int) (duration float64, peaks []float64) {
	if n <= 0 {
		n = DefaultPeaks
	}
	defer func() {
		if r := recover(); r != nil {
			duration, peaks = 0, make([]float64, n)
		}
	}()

	pcm, err := Decode(data)
	if err != nil {
		return 0, make([]float64, n)
	}
	return pcm.Duration(), Peaks(pcm.Samples, n)
}

// Peaks normalizes samples by their largest magnitude and returns the
// maximum magnitude of each consecutive chunk of len(samples)/n samples
// (at least one). The result is truncated or zero-padded to exactly n.
func Peaks(samples []float64, n int) []float64 {
	out := make([]float64, n)
	if len(samples) == 0 || n <= 0 {
		return out
	}

	maxAbs := 0.0
	for _, s := range samples {
		if a := math.Abs(s); a > maxAbs {
			maxAbs = a
		}
	}

	chunk := len(samples) / n
	if chunk < 1 {
		chunk = 1
	}

	idx := 0
	for start := 0; start < len(samples) && idx < n; start += chunk {
		end := min(start+chunk, len(samples))
		peak := 0.0
		for _, s := range samples[start:end] {
			a := math.Abs(s)
			if maxAbs > 0 {
				a /= maxAbs
			}
			if a > peak {
				peak = a
			}
		}
		out[idx] = peak
		idx++
	}
	return out
}
