// Package audio turns uploaded audio containers into mono float32 waveforms.
package audio

import (
	"errors"
	"fmt"
	"io"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAV format tags accepted by Decode.
const (
	formatPCM        = 1
	formatExtensible = 0xFFFE
)

// Header sample rates accepted by Decode. Anything outside this range is not
// speech audio and would blow up when resampled to the model rate.
const (
	MinSampleRate = 4000
	MaxSampleRate = 192000
)

var (
	// ErrInvalidFormat is returned when the input is not a PCM WAV stream.
	ErrInvalidFormat = errors.New("unsupported audio format")

	// ErrEmptyAudio is returned when the container holds no samples.
	ErrEmptyAudio = errors.New("audio data is empty")
)

// Waveform is decoded mono audio. Samples are in [-1, 1].
type Waveform struct {
	Samples    []float32
	SampleRate int
}

// Duration reports the playback length of the waveform.
func (w Waveform) Duration() time.Duration {
	if w.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(w.Samples)) / float64(w.SampleRate) * float64(time.Second))
}

// Decode reads a RIFF/WAVE stream with fixed-width integer PCM samples and
// returns its channels averaged into a single waveform.
func Decode(r io.ReadSeeker) (Waveform, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		if err := dec.Err(); err != nil {
			return Waveform{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		return Waveform{}, fmt.Errorf("%w: not a valid WAV file", ErrInvalidFormat)
	}

	if dec.WavAudioFormat != formatPCM && dec.WavAudioFormat != formatExtensible {
		return Waveform{}, fmt.Errorf("%w: WAV format tag %d is not integer PCM", ErrInvalidFormat, dec.WavAudioFormat)
	}

	if dec.SampleRate < MinSampleRate || dec.SampleRate > MaxSampleRate {
		return Waveform{}, fmt.Errorf("%w: sample rate %d Hz outside %d-%d Hz",
			ErrInvalidFormat, dec.SampleRate, MinSampleRate, MaxSampleRate)
	}

	switch dec.BitDepth {
	case 8, 16, 24, 32:
	default:
		return Waveform{}, fmt.Errorf("%w: unsupported bit depth %d", ErrInvalidFormat, dec.BitDepth)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Waveform{}, fmt.Errorf("failed to read PCM data: %w", err)
	}

	samples := toMono(buf, int(dec.NumChans), int(dec.BitDepth))
	if len(samples) == 0 {
		return Waveform{}, ErrEmptyAudio
	}

	return Waveform{
		Samples:    samples,
		SampleRate: int(dec.SampleRate),
	}, nil
}

// toMono scales interleaved integer samples to [-1, 1] and averages each frame.
func toMono(buf *goaudio.IntBuffer, channels, bitDepth int) []float32 {
	if buf == nil || channels <= 0 {
		return nil
	}

	scale := float32(int64(1) << (bitDepth - 1))
	frames := len(buf.Data) / channels
	out := make([]float32, frames)

	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			v := buf.Data[i*channels+c]
			if bitDepth == 8 {
				// 8-bit WAV is unsigned
				v -= 128
			}
			sum += float32(v) / scale
		}
		out[i] = sum / float32(channels)
	}

	return out
}
