package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joseph-ayodele/invoice-sentinel/internal/common"
	"github.com/joseph-ayodele/invoice-sentinel/internal/metrics"
	"github.com/joseph-ayodele/invoice-sentinel/internal/pipeline"
	"github.com/joseph-ayodele/invoice-sentinel/internal/server"
	"github.com/joseph-ayodele/invoice-sentinel/internal/telemetry"
)

func main() {
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		slog.Error("config invalid", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.Telemetry.LogLevel),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tel := telemetry.Init(telemetry.Config{
		ServiceName:       "invoiced",
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
	}, logger)
	defer tel.Close(context.Background())

	collector := metrics.NewCollector(prometheus.DefaultRegisterer)

	proc, err := pipeline.New(cfg, tel, collector, logger)
	if err != nil {
		logger.Error("pipeline setup failed", "error", err)
		os.Exit(1)
	}

	srv := server.New(cfg.Server, proc, collector, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
