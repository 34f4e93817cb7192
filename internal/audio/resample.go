package audio

import "fmt"

// Resample converts samples between rates using linear interpolation.
// The input is returned unchanged when the rates already match.
func Resample(samples []float32, fromRate, toRate int) ([]float32, error) {
	if fromRate <= 0 || toRate <= 0 {
		return nil, fmt.Errorf("invalid sample rates: from=%d, to=%d", fromRate, toRate)
	}

	if fromRate == toRate || len(samples) == 0 {
		return samples, nil
	}

	n := int(float64(len(samples)) * float64(toRate) / float64(fromRate))
	if n == 0 {
		return []float32{}, nil
	}

	out := make([]float32, n)
	ratio := float64(fromRate) / float64(toRate)
	last := len(samples) - 1

	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= last {
			out[i] = samples[last]
			continue
		}
		frac := float32(pos - float64(idx))
		out[i] = samples[idx] + frac*(samples[idx+1]-samples[idx])
	}

	return out, nil
}
