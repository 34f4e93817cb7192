package model

import "math"

const normalizeEpsilon = 1e-7

// Extract prepares raw samples at the model rate for the acoustic model.
func (m Metadata) Extract(samples []float32) []float32 {
	out := make([]float32, len(samples))
	copy(out, samples)

	if m.DoNormalize {
		normalize(out)
	}

	return out
}

// normalize rescales x in place to zero mean and unit variance.
func normalize(x []float32) {
	if len(x) == 0 {
		return
	}

	var sum float64
	for _, v := range x {
		sum += float64(v)
	}
	mean := sum / float64(len(x))

	var sq float64
	for _, v := range x {
		d := float64(v) - mean
		sq += d * d
	}
	std := math.Sqrt(sq/float64(len(x)) + normalizeEpsilon)

	for i, v := range x {
		x[i] = float32((float64(v) - mean) / std)
	}
}
