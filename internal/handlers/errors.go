package handlers

import (
	"net/http"
)

// ErrorKind classifies every way a transcription request can fail.
type ErrorKind int

const (
	MissingFile ErrorKind = iota + 1
	InvalidFormat
	FileTooLarge
	DecodeFailure
	InferenceFailure
)

// Client-facing messages for failures that do not carry their own text.
const (
	msgMissingFile   = "No file provided"
	msgInvalidFormat = "Invalid file format. Only .wav files are allowed."
	msgFileTooLarge  = "File too large"
)

func (k ErrorKind) String() string {
	switch k {
	case MissingFile:
		return "missing_file"
	case InvalidFormat:
		return "invalid_format"
	case FileTooLarge:
		return "file_too_large"
	case DecodeFailure:
		return "decode_failure"
	case InferenceFailure:
		return "inference_failure"
	default:
		return "unknown"
	}
}

// Status maps the kind to its HTTP status code.
func (k ErrorKind) Status() int {
	switch k {
	case MissingFile, InvalidFormat:
		return http.StatusBadRequest
	case FileTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// RequestError is a failure raised while serving a request.
type RequestError struct {
	Kind ErrorKind
	Err  error
}

func (e *RequestError) Error() string {
	switch {
	case e.Kind == MissingFile:
		return msgMissingFile
	case e.Kind == InvalidFormat:
		return msgInvalidFormat
	case e.Kind == FileTooLarge:
		return msgFileTooLarge
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
