// Package audiotest builds WAV fixtures for tests.
package audiotest

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAV encodes interleaved integer samples as a PCM WAV file and returns its bytes.
func WAV(tb testing.TB, sampleRate, bitDepth, channels int, data []int) []byte {
	tb.Helper()
	return WAVFormat(tb, sampleRate, bitDepth, channels, 1, data)
}

// WAVFormat is WAV with an explicit format tag in the fmt chunk.
func WAVFormat(tb testing.TB, sampleRate, bitDepth, channels, format int, data []int) []byte {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "fixture.wav")
	f, err := os.Create(path)
	if err != nil {
		tb.Fatalf("create fixture: %v", err)
	}

	enc := wav.NewEncoder(f, sampleRate, bitDepth, channels, format)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		tb.Fatalf("encode fixture: %v", err)
	}
	if err := enc.Close(); err != nil {
		tb.Fatalf("close encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		tb.Fatalf("close fixture: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		tb.Fatalf("read fixture: %v", err)
	}
	return b
}

// Tone returns a 16-bit mono sine wave of the given length.
func Tone(tb testing.TB, sampleRate int, freq float64, seconds float64) []byte {
	tb.Helper()

	n := int(float64(sampleRate) * seconds)
	data := make([]int, n)
	for i := range data {
		data[i] = int(8000 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return WAV(tb, sampleRate, 16, 1, data)
}
