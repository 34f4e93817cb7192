package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Brownie44l1/asr-api/internal/config"
	"github.com/Brownie44l1/asr-api/internal/gateway"
	"github.com/Brownie44l1/asr-api/internal/server"
)

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Accept uploads and forward them to a transcription service",
	RunE:  runGateway,
}

func init() {
	gatewayCmd.Flags().String("port", "", "listen port (env GATEWAY_PORT, default 3000)")
	gatewayCmd.Flags().String("upstream", "", "upstream /transcribe URL (env UPSTREAM_URL)")
}

func applyGatewayFlags(c *cobra.Command, cfg *config.Config) {
	flags := c.Flags()
	if flags.Changed("port") {
		cfg.GatewayPort, _ = flags.GetString("port")
	}
	if flags.Changed("upstream") {
		cfg.UpstreamURL, _ = flags.GetString("upstream")
	}
}

func runGateway(c *cobra.Command, _ []string) error {
	cfg, err := loadConfig(c, applyGatewayFlags)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	gw := gateway.New(cfg.UpstreamURL, cfg.MaxUploadBytes, log)

	router := server.NewRouter(log,
		server.Route{Method: http.MethodPost, Pattern: "/transcribe", Handler: http.HandlerFunc(gw.Transcribe)},
		server.Route{Method: http.MethodGet, Pattern: "/health", Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		})},
	)

	log.Info("gateway configured", zap.String("upstream", cfg.UpstreamURL))

	ctx, stop := signalContext(c.Context())
	defer stop()

	return server.Run(ctx, log, ":"+cfg.GatewayPort, router, cfg.ShutdownTimeout)
}
