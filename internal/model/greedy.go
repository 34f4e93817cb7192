package model

// ArgMax returns the highest scoring class for each frame.
func (l Logits) ArgMax() []int {
	if l.Classes <= 0 {
		return nil
	}

	ids := make([]int, l.Frames)
	for f := 0; f < l.Frames; f++ {
		row := l.Data[f*l.Classes : (f+1)*l.Classes]
		best := 0
		for c := 1; c < len(row); c++ {
			if row[c] > row[best] {
				best = c
			}
		}
		ids[f] = best
	}

	return ids
}
