package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/vzahanych/nimbus/internal/config"
	"github.com/vzahanych/nimbus/internal/server"
	"go.uber.org/zap"
)

func newServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Serve weather lookups over HTTP",
		Long:  `Start the HTTP API exposing city and coordinate weather lookups, health checks and Prometheus metrics.`,
		Args:  cobra.NoArgs,
		RunE:  runServer,
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()

	log.Info("Starting weather lookup server",
		zap.String("config_path", configPath),
		zap.Bool("telemetry_enabled", cfg.Telemetry.Enabled),
		zap.Int("server_port", cfg.Server.Port))

	srv := server.NewServer(cfg.Server, server.Deps{
		Lookups: application.Dispatcher,
		Weather: application.Weather,
		Metrics: metrics,
		Clock:   application.Clock,
	}, log, tele)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			log.Error("Server error", zap.Error(err))
		}
		return err
	case <-cmd.Context().Done():
		log.Info("Shutting down server")

		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during server shutdown", zap.Error(err))
			return err
		}

		log.Info("Server shutdown complete")
		return nil
	}
}
