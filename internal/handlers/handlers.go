package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Brownie44l1/asr-api/internal/audio"
	"github.com/Brownie44l1/asr-api/internal/metrics"
)

// FileField is the multipart field carrying the audio upload.
const FileField = "file"

// Transcriber turns a decoded waveform into text.
type Transcriber interface {
	Transcribe(ctx context.Context, wf audio.Waveform) (string, error)
}

// Options tune upload validation.
type Options struct {
	MaxUploadBytes  int64
	StrictExtension bool
}

type Handler struct {
	transcriber Transcriber
	opts        Options
	log         *zap.Logger
	metrics     *metrics.Metrics
}

func NewHandler(transcriber Transcriber, opts Options, log *zap.Logger, m *metrics.Metrics) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		transcriber: transcriber,
		opts:        opts,
		log:         log,
		metrics:     m,
	}
}

// TranscriptionResponse is the success body of POST /transcribe.
type TranscriptionResponse struct {
	Transcription string `json:"transcription"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Transcribe handles POST /transcribe with a multipart "file" upload.
func (h *Handler) Transcribe(w http.ResponseWriter, r *http.Request) {
	text, err := h.transcribe(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.metrics.Request("ok")
	writeJSON(w, http.StatusOK, TranscriptionResponse{Transcription: text})
}

func (h *Handler) transcribe(w http.ResponseWriter, r *http.Request) (string, error) {
	if h.opts.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	}

	file, header, err := r.FormFile(FileField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", &RequestError{Kind: FileTooLarge, Err: err}
		}
		return "", &RequestError{Kind: MissingFile, Err: err}
	}
	defer file.Close()

	if h.opts.StrictExtension && !strings.HasSuffix(strings.ToLower(header.Filename), ".wav") {
		return "", &RequestError{Kind: InvalidFormat}
	}

	h.log.Info("received file",
		zap.String("filename", header.Filename),
		zap.Int64("size", header.Size),
	)

	wf, err := audio.Decode(file)
	if err != nil {
		return "", &RequestError{Kind: DecodeFailure, Err: err}
	}

	h.log.Debug("decoded audio",
		zap.Int("samples", len(wf.Samples)),
		zap.Int("sample_rate", wf.SampleRate),
		zap.Duration("duration", wf.Duration()),
	)
	h.metrics.Audio(wf.Duration())

	text, err := h.transcriber.Transcribe(r.Context(), wf)
	if err != nil {
		return "", &RequestError{Kind: InferenceFailure, Err: err}
	}

	return text, nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		reqErr = &RequestError{Kind: InferenceFailure, Err: err}
	}

	status := reqErr.Kind.Status()
	level := zap.ErrorLevel
	if status < http.StatusInternalServerError {
		level = zap.WarnLevel
	}
	h.log.Log(level, "transcription failed",
		zap.String("kind", reqErr.Kind.String()),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	h.metrics.Request(reqErr.Kind.String())

	writeJSON(w, status, ErrorResponse{Error: reqErr.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
