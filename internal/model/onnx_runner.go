package model

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

// onnxRunner runs the acoustic model through ONNX Runtime. Input length
// varies per request, so both tensors are sized per call from the encoder
// geometry.
type onnxRunner struct {
	session *ort.DynamicAdvancedSession
	encoder Encoder
	classes int
}

func newONNXRunner(modelPath string, cfg Config, encoder Encoder, classes int) (*onnxRunner, error) {
	if cfg.SharedLibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.SharedLibraryPath)
	}

	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(modelPath,
		[]string{cfg.InputName}, []string{cfg.OutputName}, nil)
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &onnxRunner{session: session, encoder: encoder, classes: classes}, nil
}

// outputShape is the logits shape the model produces for n input samples.
func outputShape(enc Encoder, classes, n int) (ort.Shape, error) {
	frames := enc.Frames(n)
	if frames < 1 {
		return nil, fmt.Errorf("%w: %d samples produce no frames", ErrAudioTooShort, n)
	}
	if classes < 1 {
		return nil, fmt.Errorf("model has %d output classes", classes)
	}
	return ort.NewShape(1, int64(frames), int64(classes)), nil
}

func (r *onnxRunner) Run(features []float32) (Logits, error) {
	shape, err := outputShape(r.encoder, r.classes, len(features))
	if err != nil {
		return Logits{}, err
	}

	input, err := ort.NewTensor(ort.NewShape(1, int64(len(features))), features)
	if err != nil {
		return Logits{}, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer input.Destroy()

	output, err := ort.NewEmptyTensor[float32](shape)
	if err != nil {
		return Logits{}, fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer output.Destroy()

	if err := r.session.Run([]ort.ArbitraryTensor{input}, []ort.ArbitraryTensor{output}); err != nil {
		return Logits{}, fmt.Errorf("inference failed: %w", err)
	}

	// the tensor is destroyed on return
	data := make([]float32, len(output.GetData()))
	copy(data, output.GetData())

	return Logits{Data: data, Frames: int(shape[1]), Classes: int(shape[2])}, nil
}

func (r *onnxRunner) Close() error {
	var err error
	if r.session != nil {
		err = r.session.Destroy()
	}
	if envErr := ort.DestroyEnvironment(); err == nil {
		err = envErr
	}
	return err
}
