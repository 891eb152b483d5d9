package main

import (
	"context"
	"os"

	"liquiplanner/internal/amqp"
	"liquiplanner/internal/cli"
	apphttp "liquiplanner/internal/http"
	applog "liquiplanner/internal/log"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg).WithComponent(applog.ComponentApp)

	ctx, stop := cli.GracefulShutdown(logger)
	defer stop()

	l, backend, err := cli.OpenLedger(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open ledger", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer backend.Close()

	opts := []apphttp.Option{
		apphttp.WithLogger(logger.WithComponent(applog.ComponentHTTP)),
		apphttp.WithMutationLimit(cfg.MutationsPerMinute),
	}
	if backend.Ping != nil {
		opts = append(opts, apphttp.WithReadiness(backend.Ping))
	}
	if cfg.TrustProxy {
		opts = append(opts, apphttp.WithTrustedProxy())
	}
	srv, err := apphttp.NewServer(":"+cfg.Port, l, opts...)
	if err != nil {
		logger.Error("Failed to build HTTP server", applog.FieldError, err)
		os.Exit(1)
	}

	var tasks []func(context.Context) error
	if cfg.AMQPEnabled() {
		amqpLogger := logger.WithComponent(applog.ComponentAMQP).Slog()
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, amqpLogger)
		if err != nil {
			logger.Error("Failed to connect to AMQP", applog.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()

		notifier := amqp.NewNotifier(client, amqpLogger, 0)
		cancel := l.Subscribe(notifier.Listen)
		defer cancel()
		tasks = append(tasks, notifier.Run)
		logger.Info("Publishing ledger changes", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled, ledger changes are not published")
	}

	logger.Info("Starting Liqui-Planner",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"entries", len(l.Entries()))
	if err := cli.RunServer(ctx, logger, srv, cfg.ShutdownTimeout, tasks...); err != nil {
		logger.Error("Server error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
