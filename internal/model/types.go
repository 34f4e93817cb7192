package model

import "time"

// Metadata mirrors the fields of a Hugging Face preprocessor_config.json
// that affect feature extraction.
type Metadata struct {
	SamplingRate int  `json:"sampling_rate"`
	DoNormalize  bool `json:"do_normalize"`
}

// Config locates the model artifacts and tunes the inference session.
type Config struct {
	Dir               string
	SharedLibraryPath string
	InputName         string
	OutputName        string
	Workers           int

	// MaxDuration rejects longer uploads before resampling. Zero disables the limit.
	MaxDuration time.Duration
	Observer    InferenceObserver
}

// Logits is the raw acoustic model output for a single utterance,
// laid out row-major as Frames x Classes.
type Logits struct {
	Data    []float32
	Frames  int
	Classes int
}

// Artifact file names inside the model directory.
const (
	ModelFile        = "model.onnx"
	VocabFile        = "vocab.json"
	PreprocessorFile = "preprocessor_config.json"
	ModelConfigFile  = "config.json"
)

func defaultMetadata() Metadata {
	return Metadata{
		SamplingRate: 16000,
		DoNormalize:  true,
	}
}
