package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Brownie44l1/asr-api/internal/config"
	"github.com/Brownie44l1/asr-api/internal/handlers"
	"github.com/Brownie44l1/asr-api/internal/metrics"
	"github.com/Brownie44l1/asr-api/internal/model"
	"github.com/Brownie44l1/asr-api/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load the model and serve POST /transcribe",
	RunE:  runServe,
}

func init() {
	addServeFlags(serveCmd)
}

func addServeFlags(c *cobra.Command) {
	c.Flags().String("port", "", "listen port (env PORT, default 5000)")
	c.Flags().String("model-dir", "", "model directory (env MODEL_DIR, default ./models)")
	c.Flags().Int("workers", 0, "concurrent inference runs (env INFERENCE_WORKERS, default 1)")
	c.Flags().Bool("strict-wav", false, "reject uploads whose name does not end in .wav (env STRICT_WAV_EXTENSION)")
}

func applyServeFlags(c *cobra.Command, cfg *config.Config) {
	flags := c.Flags()
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetString("port")
	}
	if flags.Changed("model-dir") {
		cfg.ModelDir, _ = flags.GetString("model-dir")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("strict-wav") {
		cfg.StrictExtension, _ = flags.GetBool("strict-wav")
	}
}

func runServe(c *cobra.Command, _ []string) error {
	cfg, err := loadConfig(c, applyServeFlags)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("loading model", zap.String("dir", cfg.ModelDir))

	m := metrics.New()

	asr, err := model.NewServer(model.Config{
		Dir:               cfg.ModelDir,
		SharedLibraryPath: cfg.ONNXRuntimeLib,
		InputName:         cfg.InputName,
		OutputName:        cfg.OutputName,
		Workers:           cfg.Workers,
		MaxDuration:       cfg.MaxAudio,
		Observer:          m,
	})
	if err != nil {
		log.Error("failed to initialize model server", zap.Error(err))
		return fmt.Errorf("failed to initialize model server: %w", err)
	}
	defer func() {
		if err := asr.Close(); err != nil {
			log.Warn("failed to release model", zap.Error(err))
		}
	}()

	h := handlers.NewHandler(asr, handlers.Options{
		MaxUploadBytes:  cfg.MaxUploadBytes,
		StrictExtension: cfg.StrictExtension,
	}, log, m)

	router := server.NewRouter(log,
		server.Route{Method: http.MethodGet, Pattern: "/health", Handler: http.HandlerFunc(h.Health)},
		server.Route{Method: http.MethodPost, Pattern: "/transcribe", Handler: http.HandlerFunc(h.Transcribe)},
		server.Route{Method: http.MethodGet, Pattern: "/metrics", Handler: m.Handler()},
	)

	log.Info("model loaded",
		zap.Int("sampling_rate", asr.Metadata.SamplingRate),
		zap.Bool("normalize", asr.Metadata.DoNormalize),
		zap.Int("vocabulary", asr.VocabularySize()),
		zap.Int("workers", cfg.Workers),
		zap.Duration("max_audio", cfg.MaxAudio),
		zap.Bool("strict_wav", cfg.StrictExtension),
	)
	log.Info("endpoints",
		zap.Strings("routes", []string{
			"GET /health - Health check",
			"POST /transcribe - Transcribe a WAV upload (field \"file\")",
			"GET /metrics - Prometheus metrics",
		}),
	)

	ctx, stop := signalContext(c.Context())
	defer stop()

	return server.Run(ctx, log, ":"+cfg.Port, router, cfg.ShutdownTimeout)
}
