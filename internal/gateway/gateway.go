// Package gateway forwards uploads to an upstream transcription service.
package gateway

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Brownie44l1/asr-api/internal/server"
)

const (
	msgNoFile      = "No file uploaded."
	msgUpstreamErr = "An error occurred during transcription."

	// maxUpstreamBody bounds how much of an upstream reply is relayed or logged.
	maxUpstreamBody = 1 << 20
)

// Gateway relays POST /transcribe uploads to Upstream and returns its reply.
type Gateway struct {
	Upstream string
	Client   *http.Client
	MaxBytes int64
	log      *zap.Logger
}

// New creates a gateway with a bounded HTTP client.
func New(upstream string, maxBytes int64, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{
		Upstream: upstream,
		Client:   &http.Client{Timeout: 5 * time.Minute},
		MaxBytes: maxBytes,
		log:      log,
	}
}

// Transcribe handles POST /transcribe by re-uploading the "file" part upstream.
func (g *Gateway) Transcribe(w http.ResponseWriter, r *http.Request) {
	g.log.Info("file upload request received")

	if g.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, g.MaxBytes)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		g.log.Warn("no file uploaded", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgNoFile})
		return
	}
	defer file.Close()

	g.log.Info("file uploaded",
		zap.String("filename", header.Filename),
		zap.Int64("size", header.Size),
	)

	body, err := g.forward(r, file, header.Filename)
	if err != nil {
		g.log.Error("error during transcription", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msgUpstreamErr})
		return
	}

	g.log.Info("response from upstream", zap.ByteString("body", body))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// forward streams the upload to the upstream service as a new multipart body.
func (g *Gateway) forward(r *http.Request, file io.Reader, filename string) ([]byte, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", filepath.Base(filename))
		if err == nil {
			_, err = io.Copy(part, file)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, g.Upstream, pr)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if id := server.RequestIDFrom(r.Context()); id != "" {
		req.Header.Set(server.RequestIDHeader, id)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("upstream request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		return nil, fmt.Errorf("read upstream response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		g.log.Error("upstream error response",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return nil, fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}

	return body, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
