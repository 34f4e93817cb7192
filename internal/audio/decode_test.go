package audio

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brownie44l1/asr-api/internal/audio/audiotest"
)

func TestDecodeMono16(t *testing.T) {
	raw := audiotest.WAV(t, 16000, 16, 1, []int{0, 16384, -16384, 32767, -32768})

	wf, err := Decode(bytes.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, 16000, wf.SampleRate)
	require.Len(t, wf.Samples, 5)
	assert.InDelta(t, 0.0, wf.Samples[0], 1e-6)
	assert.InDelta(t, 0.5, wf.Samples[1], 1e-6)
	assert.InDelta(t, -0.5, wf.Samples[2], 1e-6)
	assert.InDelta(t, 1.0, wf.Samples[3], 1e-4)
	assert.InDelta(t, -1.0, wf.Samples[4], 1e-6)
}

func TestDecodeStereoIsDownmixed(t *testing.T) {
	// two frames: (L=16384, R=0) and (L=-16384, R=-16384)
	raw := audiotest.WAV(t, 8000, 16, 2, []int{16384, 0, -16384, -16384})

	wf, err := Decode(bytes.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, 8000, wf.SampleRate)
	require.Len(t, wf.Samples, 2)
	assert.InDelta(t, 0.25, wf.Samples[0], 1e-6)
	assert.InDelta(t, -0.5, wf.Samples[1], 1e-6)
}

func TestDecode24Bit(t *testing.T) {
	raw := audiotest.WAV(t, 16000, 24, 1, []int{1 << 22, -(1 << 22)})

	wf, err := Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, wf.Samples, 2)
	assert.InDelta(t, 0.5, wf.Samples[0], 1e-6)
	assert.InDelta(t, -0.5, wf.Samples[1], 1e-6)
}

func TestDecodeBitDepthsAndFormats(t *testing.T) {
	tests := []struct {
		name     string
		bitDepth int
		format   int
		data     []int
		want     []float32
	}{
		{name: "8-bit unsigned", bitDepth: 8, format: 1, data: []int{0, 128, 255}, want: []float32{-1, 0, 127.0 / 128}},
		{name: "16-bit", bitDepth: 16, format: 1, data: []int{-32768, 0, 16384}, want: []float32{-1, 0, 0.5}},
		{name: "24-bit", bitDepth: 24, format: 1, data: []int{-(1 << 23), 0, 1 << 22}, want: []float32{-1, 0, 0.5}},
		{name: "32-bit", bitDepth: 32, format: 1, data: []int{-(1 << 31), 0, 1 << 30}, want: []float32{-1, 0, 0.5}},
		{name: "extensible tag", bitDepth: 16, format: 0xFFFE, data: []int{-16384, 0, 16384}, want: []float32{-0.5, 0, 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := audiotest.WAVFormat(t, 16000, tt.bitDepth, 1, tt.format, tt.data)

			wf, err := Decode(bytes.NewReader(raw))
			require.NoError(t, err)
			require.Len(t, wf.Samples, len(tt.want))
			for i, want := range tt.want {
				assert.InDelta(t, want, wf.Samples[i], 1e-6, "sample %d", i)
			}
		})
	}
}

func TestDecodeRejectsFloatFormat(t *testing.T) {
	raw := audiotest.WAVFormat(t, 16000, 32, 1, 3, []int{0, 1, 2})

	_, err := Decode(bytes.NewReader(raw))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestDecodeSampleRateBounds(t *testing.T) {
	data := make([]int, 4000)

	for _, rate := range []int{1, 100, MinSampleRate - 1, MaxSampleRate + 1} {
		_, err := Decode(bytes.NewReader(audiotest.WAV(t, rate, 8, 1, data)))
		require.Error(t, err, "rate=%d", rate)
		assert.ErrorIs(t, err, ErrInvalidFormat)
		assert.Contains(t, err.Error(), "sample rate")
	}

	for _, rate := range []int{MinSampleRate, 44100, MaxSampleRate} {
		wf, err := Decode(bytes.NewReader(audiotest.WAV(t, rate, 16, 1, data)))
		require.NoError(t, err, "rate=%d", rate)
		assert.Equal(t, rate, wf.SampleRate)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "text", data: []byte("definitely not a wav file, just some text bytes")},
		{name: "truncated riff", data: []byte("RIFF\x10\x00\x00\x00WAVE")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidFormat)
		})
	}
}

func TestDecodeEmptyData(t *testing.T) {
	raw := audiotest.WAV(t, 16000, 16, 1, nil)

	_, err := Decode(bytes.NewReader(raw))
	require.Error(t, err)
}

func TestWaveformDuration(t *testing.T) {
	wf := Waveform{Samples: make([]float32, 8000), SampleRate: 16000}
	assert.Equal(t, 500*time.Millisecond, wf.Duration())

	assert.Zero(t, Waveform{Samples: make([]float32, 10)}.Duration())
}
