// Command worker is the headless ChemSafe reload worker. It keeps the shared
// alias store in step with the knowledge graph: it reloads when the graph
// changes (file watch or object poll), on a fixed schedule, and when another
// instance announces a reload, and announces its own reloads on Kafka. It
// serves only probes and metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/chemsafe/internal/bootstrap"
	"github.com/turtacn/chemsafe/internal/config"
	"github.com/turtacn/chemsafe/internal/infrastructure/monitoring/logging"
	httpapi "github.com/turtacn/chemsafe/internal/interfaces/http"
)

const defaultOpsPort = 8081

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	opsPort := flag.Int("ops-port", defaultOpsPort, "port for /healthz, /readyz and metrics")
	interval := flag.Duration("interval", 0, "unconditional reload interval (0 disables)")
	flag.Parse()

	if err := run(*configPath, *opsPort, *interval); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, opsPort int, interval time.Duration) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.AliasStore.Driver == config.AliasDriverMemory {
		// A memory store is private to this process; nothing would see the
		// rebuilt table.
		return fmt.Errorf("the reload worker needs a shared alias store (postgres or redis)")
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = logger.Named("worker")
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger, bootstrap.Options{Publish: true, Consume: true})
	if err != nil {
		logger.Error("failed to initialize", logging.Err(err))
		return err
	}
	defer app.Close()

	opsCfg := cfg.Server
	opsCfg.Port = opsPort
	ops := httpapi.NewServer(opsCfg, app.OpsRouter(version), logger)

	logger.Info("starting chemsafe reload worker",
		logging.String("version", version),
		logging.String("ops_addr", opsCfg.Addr()),
		logging.String("graph_source", cfg.Graph.Source),
		logging.String("alias_store", cfg.AliasStore.Driver),
		logging.Bool("watch", cfg.Graph.Watch),
		logging.Bool("kafka", cfg.Kafka.Enabled),
		logging.Duration("interval", interval),
	)
	if !cfg.Graph.Watch && !cfg.Kafka.Enabled && interval <= 0 {
		logger.Warn("no reload trigger configured; the worker only serves probes")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(ops.Start)
	g.Go(func() error { return app.Run(gctx) })
	g.Go(func() error {
		app.ReloadEvery(gctx, interval)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return ops.Stop(context.Background())
	})
	if err := g.Wait(); err != nil {
		logger.Error("worker stopped with error", logging.Err(err))
		return err
	}
	logger.Info("worker stopped")
	return nil
}
