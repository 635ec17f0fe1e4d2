// Command apiserver runs the ChemSafe HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/chemsafe/internal/bootstrap"
	"github.com/turtacn/chemsafe/internal/config"
	"github.com/turtacn/chemsafe/internal/infrastructure/monitoring/logging"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides server.port)")
	flag.Parse()

	if err := run(*configPath, *httpPort); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, httpPort int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if httpPort > 0 {
		cfg.Server.Port = httpPort
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger, bootstrap.Options{Publish: true, Consume: true})
	if err != nil {
		logger.Error("failed to initialize", logging.Err(err))
		return err
	}
	defer app.Close()

	logger.Info("starting chemsafe API server",
		logging.String("version", version),
		logging.String("addr", cfg.Server.Addr()),
		logging.String("graph_source", cfg.Graph.Source),
		logging.String("alias_store", cfg.AliasStore.Driver),
		logging.Bool("kafka", cfg.Kafka.Enabled),
	)
	if err := app.Serve(ctx, nil, version); err != nil {
		logger.Error("server stopped with error", logging.Err(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}
