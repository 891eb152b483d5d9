package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"liquiplanner/internal/amqp"
	"liquiplanner/internal/backend"
	"liquiplanner/internal/cli"
	"liquiplanner/internal/export"
	applog "liquiplanner/internal/log"
	"liquiplanner/internal/storage"
	"liquiplanner/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg).WithComponent(applog.ComponentWorker)

	logger.Info("Starting ledger-mirror")

	if cfg.DataBackend == string(backend.MemoryBackend) {
		logger.Error("The mirror needs a shared backend, memory is private to the web server")
		os.Exit(1)
	}

	ctx, stop := cli.GracefulShutdown(logger)
	defer stop()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Slog()).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to open backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer res.Close()

	writer, err := cli.SheetsWriter(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		os.Exit(1)
	}

	mirror := worker.NewMirror(
		storage.NewPersister(res.KV, cfg.StorageKey),
		export.NewSheetsExporter(writer, cfg.GoogleSheetName),
		logger.Slog(),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return mirror.Run(gctx, cfg.MirrorInterval)
	})

	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
			logger.WithComponent(applog.ComponentAMQP).Slog())
		if err != nil {
			logger.Error("Failed to connect to AMQP", applog.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()

		g.Go(func() error {
			err := client.Consume(gctx, mirror.HandleMessage)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
		logger.Info("Consuming ledger changes", "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled, mirroring on the resync interval only", "interval", cfg.MirrorInterval.String())
	}

	if err := g.Wait(); err != nil {
		logger.Error("Mirror stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	syncs, last := mirror.Stats()
	logger.Info("Mirror shutdown complete", "syncs", syncs, "last_sync", last)
}
