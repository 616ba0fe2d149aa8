package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/vzahanych/nimbus/internal/app"
	"github.com/vzahanych/nimbus/internal/config"
	"github.com/vzahanych/nimbus/internal/dispatcher"
	"github.com/vzahanych/nimbus/internal/observability"
	"github.com/vzahanych/nimbus/pkg/logger"
	"github.com/vzahanych/nimbus/pkg/telemetry"
	"go.uber.org/zap"
)

var (
	configPath  string
	log         *zap.Logger
	tele        *telemetry.Telemetry
	metrics     *observability.Metrics
	application *app.App
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nimbus",
		Short: "City weather lookup",
		Long:  `Looks up current weather for a city by geocoding it, enriching the location with its state and fetching conditions and precipitation chance.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeServices(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			shutdownServices()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file (default: ./config.yaml)")

	cmd.AddCommand(newServerCmd(), newLookupCmd(), newShellCmd())

	return cmd
}

func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			if log != nil {
				log.Info("Received shutdown signal", zap.String("signal", sig.String()))
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	err := rootCmd().ExecuteContext(ctx)

	// Lookup failures were already rendered for the user.
	var failure *dispatcher.Failure
	if err != nil && !errors.As(err, &failure) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func initializeServices(ctx context.Context) error {
	// .env is optional and never overrides variables already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	config.SetConfig(cfg)

	log, err = logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	tele, err = telemetry.New(ctx, cfg.Telemetry, cfg.Version)
	if err != nil {
		log.Warn("Failed to initialize telemetry", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics = observability.NewMetrics(registry)

	application = app.New(cfg, log, tele, metrics, nil)

	return nil
}

func shutdownServices() {
	if application != nil {
		application.Dispatcher.Wait()
	}
	if err := tele.Shutdown(context.Background()); err != nil && log != nil {
		log.Warn("Failed to shutdown telemetry", zap.Error(err))
	}
	if log != nil {
		_ = log.Sync()
	}
}
