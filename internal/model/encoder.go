package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Encoder describes the convolutional front end of a wav2vec2-style model,
// as found in its config.json. It fixes how many logit frames an input of a
// given length produces.
type Encoder struct {
	ConvKernel []int `json:"conv_kernel"`
	ConvStride []int `json:"conv_stride"`
	VocabSize  int   `json:"vocab_size"`
}

func defaultEncoder() Encoder {
	return Encoder{
		ConvKernel: []int{10, 3, 3, 3, 3, 2, 2},
		ConvStride: []int{5, 2, 2, 2, 2, 2, 2},
	}
}

// loadEncoder reads config.json. A missing file yields the wav2vec2 base layout.
func loadEncoder(path string) (Encoder, error) {
	enc := defaultEncoder()

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return enc, nil
	}
	if err != nil {
		return Encoder{}, fmt.Errorf("failed to read model config: %w", err)
	}

	if err := json.Unmarshal(raw, &enc); err != nil {
		return Encoder{}, fmt.Errorf("failed to parse model config: %w", err)
	}
	if err := enc.validate(); err != nil {
		return Encoder{}, fmt.Errorf("invalid model config %s: %w", path, err)
	}

	return enc, nil
}

func (e Encoder) validate() error {
	if len(e.ConvKernel) == 0 || len(e.ConvKernel) != len(e.ConvStride) {
		return fmt.Errorf("conv_kernel %v and conv_stride %v must be non-empty and of equal length", e.ConvKernel, e.ConvStride)
	}
	for i := range e.ConvKernel {
		if e.ConvKernel[i] < 1 || e.ConvStride[i] < 1 {
			return fmt.Errorf("conv layer %d has kernel %d stride %d", i, e.ConvKernel[i], e.ConvStride[i])
		}
	}
	if e.VocabSize < 0 {
		return fmt.Errorf("negative vocab_size %d", e.VocabSize)
	}
	return nil
}

// Frames returns the number of output frames for n input samples, or 0 when
// the input is shorter than the encoder's receptive field.
func (e Encoder) Frames(n int) int {
	for i, k := range e.ConvKernel {
		if n < k {
			return 0
		}
		n = (n-k)/e.ConvStride[i] + 1
	}
	return n
}
