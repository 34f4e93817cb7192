package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/Brownie44l1/asr-api/internal/audio"
)

var (
	// ErrAudioTooShort is returned for waveforms shorter than one model frame.
	ErrAudioTooShort = errors.New("audio too short to transcribe")

	// ErrAudioTooLong is returned for waveforms over the configured maximum duration.
	ErrAudioTooLong = errors.New("audio too long to transcribe")
)

// InferenceObserver is told how long each model run took.
type InferenceObserver interface {
	Inference(d time.Duration)
}

// runner executes the acoustic model on extracted features.
type runner interface {
	Run(features []float32) (Logits, error)
	Close() error
}

// Server owns the loaded speech model. It is built once at startup and
// shared read-only by all requests.
type Server struct {
	Metadata    Metadata
	encoder     Encoder
	vocab       *Vocabulary
	runner      runner
	sem         *semaphore.Weighted
	maxDuration time.Duration
	observer    InferenceObserver
}

// NewServer loads the model directory and opens an inference session.
func NewServer(cfg Config) (*Server, error) {
	metadata, err := loadMetadata(filepath.Join(cfg.Dir, PreprocessorFile))
	if err != nil {
		return nil, err
	}

	vocab, err := LoadVocabulary(filepath.Join(cfg.Dir, VocabFile))
	if err != nil {
		return nil, err
	}

	encoder, err := loadEncoder(filepath.Join(cfg.Dir, ModelConfigFile))
	if err != nil {
		return nil, err
	}

	classes := encoder.VocabSize
	if classes == 0 {
		classes = vocab.Size()
	}

	r, err := newONNXRunner(filepath.Join(cfg.Dir, ModelFile), cfg, encoder, classes)
	if err != nil {
		return nil, err
	}

	return newServer(metadata, encoder, vocab, r, cfg), nil
}

func newServer(metadata Metadata, encoder Encoder, vocab *Vocabulary, r runner, cfg Config) *Server {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Server{
		Metadata:    metadata,
		encoder:     encoder,
		vocab:       vocab,
		runner:      r,
		sem:         semaphore.NewWeighted(int64(workers)),
		maxDuration: cfg.MaxDuration,
		observer:    cfg.Observer,
	}
}

// loadMetadata reads the preprocessor config. A missing file yields defaults.
func loadMetadata(path string) (Metadata, error) {
	metadata := defaultMetadata()

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return metadata, nil
	}
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read metadata: %w", err)
	}

	if err := json.Unmarshal(raw, &metadata); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse metadata: %w", err)
	}
	if metadata.SamplingRate <= 0 {
		return Metadata{}, fmt.Errorf("invalid sampling_rate %d in %s", metadata.SamplingRate, path)
	}

	return metadata, nil
}

// VocabularySize reports how many output classes the tokenizer knows.
func (s *Server) VocabularySize() int {
	return s.vocab.Size()
}

// Transcribe runs greedy CTC recognition over a decoded waveform.
// Inference runs are bounded by the configured number of workers; waiting
// for a slot is abandoned when ctx is done.
func (s *Server) Transcribe(ctx context.Context, wf audio.Waveform) (string, error) {
	if s.maxDuration > 0 && wf.Duration() > s.maxDuration {
		return "", fmt.Errorf("%w: %s exceeds the %s limit", ErrAudioTooLong, wf.Duration(), s.maxDuration)
	}

	samples, err := audio.Resample(wf.Samples, wf.SampleRate, s.Metadata.SamplingRate)
	if err != nil {
		return "", fmt.Errorf("resampling failed: %w", err)
	}
	if s.encoder.Frames(len(samples)) < 1 {
		return "", fmt.Errorf("%w: %d samples at %d Hz produce no frames",
			ErrAudioTooShort, len(samples), s.Metadata.SamplingRate)
	}

	features := s.Metadata.Extract(samples)

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("waiting for inference slot: %w", err)
	}
	start := time.Now()
	logits, err := s.runner.Run(features)
	elapsed := time.Since(start)
	s.sem.Release(1)

	if s.observer != nil {
		s.observer.Inference(elapsed)
	}
	if err != nil {
		return "", err
	}

	return s.vocab.Decode(logits.ArgMax()), nil
}

// Close releases the inference session.
func (s *Server) Close() error {
	if s.runner == nil {
		return nil
	}
	return s.runner.Close()
}
