// Package config loads service settings from .env files and the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the service and the gateway.
type Config struct {
	Port            string
	ModelDir        string
	ONNXRuntimeLib  string
	InputName       string
	OutputName      string
	Workers         int
	MaxUploadBytes  int64
	MaxAudio        time.Duration
	StrictExtension bool
	LogDevelopment  bool
	ShutdownTimeout time.Duration

	GatewayPort string
	UpstreamURL string
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Port:            "5000",
		ModelDir:        "./models",
		InputName:       "input_values",
		OutputName:      "logits",
		Workers:         1,
		MaxUploadBytes:  32 << 20,
		MaxAudio:        10 * time.Minute,
		ShutdownTimeout: 15 * time.Second,
		GatewayPort:     "3000",
		UpstreamURL:     "http://localhost:5000/transcribe",
	}
}

var envFiles = []string{".env", ".env.local"}

// LoadEnv loads the first env file that exists. An explicit path must exist.
// Variables already present in the environment are not overridden.
func LoadEnv(path string) (string, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return "", fmt.Errorf("error loading %s: %w", path, err)
		}
		return path, nil
	}

	for _, p := range envFiles {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return "", fmt.Errorf("error loading %s: %w", p, err)
		}
		return p, nil
	}

	return "", nil
}

// FromEnv overlays environment variables on the defaults.
func FromEnv() (Config, error) {
	cfg := Default()
	var errs []error

	str := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	str("PORT", &cfg.Port)
	str("MODEL_DIR", &cfg.ModelDir)
	str("ONNXRUNTIME_LIB", &cfg.ONNXRuntimeLib)
	str("MODEL_INPUT_NAME", &cfg.InputName)
	str("MODEL_OUTPUT_NAME", &cfg.OutputName)
	str("GATEWAY_PORT", &cfg.GatewayPort)
	str("UPSTREAM_URL", &cfg.UpstreamURL)

	if v, ok := lookup("INFERENCE_WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("INFERENCE_WORKERS: %w", err))
		}
		cfg.Workers = n
	}

	if v, ok := lookup("MAX_UPLOAD_MB"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("MAX_UPLOAD_MB: %w", err))
		}
		cfg.MaxUploadBytes = n << 20
	}

	if v, ok := lookup("STRICT_WAV_EXTENSION"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("STRICT_WAV_EXTENSION: %w", err))
		}
		cfg.StrictExtension = b
	}

	if v, ok := lookup("LOG_DEVELOPMENT"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("LOG_DEVELOPMENT: %w", err))
		}
		cfg.LogDevelopment = b
	}

	if v, ok := lookup("MAX_AUDIO_DURATION"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("MAX_AUDIO_DURATION: %w", err))
		}
		cfg.MaxAudio = d
	}

	if v, ok := lookup("SHUTDOWN_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err))
		}
		cfg.ShutdownTimeout = d
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

// Validate checks that settings are usable before anything is started.
func (c Config) Validate() error {
	var errs []error

	if err := validatePort(c.Port); err != nil {
		errs = append(errs, fmt.Errorf("port: %w", err))
	}
	if err := validatePort(c.GatewayPort); err != nil {
		errs = append(errs, fmt.Errorf("gateway port: %w", err))
	}
	if c.ModelDir == "" {
		errs = append(errs, errors.New("model dir must not be empty"))
	}
	if c.InputName == "" || c.OutputName == "" {
		errs = append(errs, errors.New("model input and output names must not be empty"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("inference workers must be positive, got %d", c.Workers))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("max upload size must be positive, got %d", c.MaxUploadBytes))
	}
	if c.MaxAudio <= 0 {
		errs = append(errs, fmt.Errorf("max audio duration must be positive, got %s", c.MaxAudio))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout))
	}
	if u, err := url.Parse(c.UpstreamURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("upstream url %q is not an absolute URL", c.UpstreamURL))
	}

	return errors.Join(errs...)
}

func validatePort(p string) error {
	n, err := strconv.Atoi(p)
	if err != nil {
		return fmt.Errorf("%q is not a number", p)
	}
	if n < 1 || n > 65535 {
		return fmt.Errorf("%d is out of range", n)
	}
	return nil
}
