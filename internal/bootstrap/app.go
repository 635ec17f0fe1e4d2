// Package bootstrap assembles a running ChemSafe instance from configuration.
// The API server, the reload worker and the CLI all build their dependencies
// through New.
package bootstrap

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/chemsafe/internal/application/lookup"
	"github.com/turtacn/chemsafe/internal/config"
	"github.com/turtacn/chemsafe/internal/domain/chemical"
	"github.com/turtacn/chemsafe/internal/infrastructure/database/neo4j"
	"github.com/turtacn/chemsafe/internal/infrastructure/database/postgres"
	"github.com/turtacn/chemsafe/internal/infrastructure/database/redis"
	"github.com/turtacn/chemsafe/internal/infrastructure/graphdoc"
	"github.com/turtacn/chemsafe/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/chemsafe/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemsafe/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/chemsafe/internal/infrastructure/storage/minio"
	"github.com/turtacn/chemsafe/internal/intelligence/alias"
	httpapi "github.com/turtacn/chemsafe/internal/interfaces/http"
	"github.com/turtacn/chemsafe/internal/interfaces/http/handlers"
	"github.com/turtacn/chemsafe/internal/interfaces/http/middleware"
)

// Options select the optional parts of an App.
type Options struct {
	// Publish announces successful reloads on Kafka when kafka.enabled is
	// set.
	Publish bool

	// Consume reloads on events from other instances when kafka.enabled is
	// set. The consumer starts with Run.
	Consume bool

	// SkipInit leaves the graph and alias snapshot unloaded; used by
	// commands that only need the infrastructure.
	SkipInit bool

	// InstanceID overrides the generated instance identifier.
	InstanceID string
}

// App holds the assembled components.
type App struct {
	Config    *config.Config
	Logger    logging.Logger
	Collector prometheus.MetricsCollector
	Metrics   *prometheus.AppMetrics
	Stats     *prometheus.StatsCollector
	Graph     *graphdoc.Provider
	Aliases   *alias.Resolver
	Service   lookup.Service

	// Set only for the matching graph.source.
	GraphFile   *graphdoc.FileSource
	GraphObject *minio.ObjectSource

	// Set only for the matching alias_store.driver.
	Postgres *postgres.Connection

	consumer *kafka.Consumer
	checkers []handlers.HealthChecker
	closers  []func() error
}

// New builds every component cfg selects and loads the first snapshot. On
// error everything opened so far is closed again.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger, opts Options) (app *App, err error) {
	logger = logging.OrNop(logger)
	a := &App{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	if err := a.buildMetrics(); err != nil {
		return nil, err
	}

	source, err := a.buildGraphSource()
	if err != nil {
		return nil, err
	}
	a.Graph = graphdoc.NewProvider(source, cfg.Graph.LoadTimeout, logger)
	a.Graph.Subscribe(func(s *graphdoc.Snapshot) {
		chemicals := s.Chemicals()
		a.Metrics.SetGraphSnapshot(s.Version, chemicals, len(s.Entities)-chemicals)
	})
	a.checkers = append(a.checkers, handlers.CheckerFunc{
		ComponentName: "graph",
		Fn: func(context.Context) error {
			if !a.Graph.Ready() {
				return fmt.Errorf("no graph snapshot loaded from %s", a.Graph.Name())
			}
			return nil
		},
	})

	store, err := a.buildAliasStore(ctx)
	if err != nil {
		return nil, err
	}
	a.Aliases = alias.NewResolver(store, a.Graph, alias.Config{
		LoadTimeout: cfg.AliasStore.LoadTimeout,
		MineGraph:   cfg.AliasStore.MineGraph,
	}, alias.WithLogger(logger), alias.WithObserver(a.Metrics))
	a.closers = append(a.closers, func() error { a.Aliases.Close(); return nil })

	svcOpts := []lookup.Option{
		lookup.WithRecorder(a.Metrics),
		lookup.WithIncludeEntity(cfg.Server.IncludeEntity),
	}
	if opts.InstanceID != "" {
		svcOpts = append(svcOpts, lookup.WithInstanceID(opts.InstanceID))
	}
	var publisher *kafka.ReloadPublisher
	if opts.Publish && cfg.Kafka.Enabled {
		if publisher, err = a.buildPublisher(); err != nil {
			return nil, err
		}
		svcOpts = append(svcOpts, lookup.WithPublisher(publisher))
	}
	a.Service = lookup.NewService(a.Graph, a.Aliases, logger, svcOpts...)

	if opts.Consume && cfg.Kafka.Enabled {
		if err := a.buildConsumer(ctx); err != nil {
			return nil, err
		}
	}

	if !opts.SkipInit {
		if err := a.Service.Init(ctx); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *App) buildMetrics() error {
	mc := a.Config.Metrics
	collector, err := prometheus.NewMetricsCollector(mc.CollectorConfig, a.Logger)
	if err != nil {
		return fmt.Errorf("create metrics collector: %w", err)
	}
	a.Collector = collector
	a.Metrics = prometheus.NewAppMetrics(collector)
	a.Stats = prometheus.NewStatsCollector(mc.Namespace)
	collector.MustRegister(a.Stats)
	return nil
}

func (a *App) buildGraphSource() (chemical.DocumentSource, error) {
	cfg := a.Config
	switch cfg.Graph.Source {
	case config.GraphSourceMinIO:
		client, err := minio.NewMinIOClient(&cfg.MinIO, a.Logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		a.checkers = append(a.checkers, handlers.CheckerFunc{ComponentName: "minio", Fn: client.HealthCheck})
		a.GraphObject = minio.NewObjectSource(client, a.Logger)
		return a.GraphObject, nil

	case config.GraphSourceNeo4j:
		driver, err := neo4j.NewDriver(cfg.Neo4j, a.Logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, driver.Close)
		a.checkers = append(a.checkers, handlers.CheckerFunc{ComponentName: "neo4j", Fn: driver.HealthCheck})
		return neo4j.NewGraphSource(driver, cfg.Neo4j, a.Logger)

	default:
		a.GraphFile = graphdoc.NewFileSource(cfg.Graph.Path)
		return a.GraphFile, nil
	}
}

func (a *App) buildAliasStore(ctx context.Context) (chemical.AliasStore, error) {
	cfg := a.Config
	switch cfg.AliasStore.Driver {
	case config.AliasDriverPostgres:
		conn, err := postgres.NewConnection(cfg.Database, a.Logger)
		if err != nil {
			return nil, err
		}
		a.Postgres = conn
		a.closers = append(a.closers, conn.Close)
		a.Stats.AddPool("postgres", func() prometheus.PoolStats { return postgresPoolStats(conn.Stats()) })
		if cfg.AliasStore.AutoMigrate {
			if err := conn.RunMigrations(ctx); err != nil {
				return nil, err
			}
		}
		store := postgres.NewAliasStore(conn, a.Logger)
		a.checkers = append(a.checkers, handlers.CheckerFunc{ComponentName: "alias_store", Fn: store.Ping})
		return store, nil

	case config.AliasDriverRedis:
		client, err := redis.NewClient(&cfg.Redis, a.Logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		a.Stats.AddPool("redis", func() prometheus.PoolStats { return redisPoolStats(client.PoolStats()) })
		store := redis.NewAliasStore(client, a.Logger)
		a.checkers = append(a.checkers, handlers.CheckerFunc{ComponentName: "alias_store", Fn: store.Ping})
		return store, nil

	default:
		return alias.NewMemoryStore(), nil
	}
}

func (a *App) buildPublisher() (*kafka.ReloadPublisher, error) {
	kc := a.Config.Kafka
	producer, err := kafka.NewProducer(kc.ProducerConfig(), a.Logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, producer.Close)
	a.Stats.AddClient("producer", func() prometheus.ClientStats { return producerStats(producer.Stats()) })
	host, _ := os.Hostname()
	return kafka.NewReloadPublisher(producer, kc.Topic, "chemsafe@"+host, a.Metrics, a.Logger), nil
}

func (a *App) buildConsumer(ctx context.Context) error {
	kc := a.Config.Kafka

	if kc.AutoCreateTopics {
		if err := a.ensureTopics(ctx); err != nil {
			a.Logger.Warn("reload topics not created", logging.Err(err))
		}
	}

	// A group per instance so that every replica receives every event.
	groupID := kc.GroupID + "-" + a.Service.Status().InstanceID
	consumer, err := kafka.NewConsumer(kc.ConsumerConfig(groupID), a.Logger)
	if err != nil {
		return err
	}
	consumer.Subscribe(kc.Topic, kafka.NewReloadMessageHandler(a.Service, a.Metrics, a.Logger))
	a.consumer = consumer
	a.closers = append(a.closers, consumer.Close)
	a.Stats.AddClient("consumer", func() prometheus.ClientStats { return consumerStats(consumer.Stats()) })
	return nil
}

func (a *App) ensureTopics(ctx context.Context) error {
	kc := a.Config.Kafka
	tm, err := kafka.NewTopicManager(kc.Brokers, a.Logger)
	if err != nil {
		return err
	}
	defer tm.Close()

	topics := kafka.DefaultTopics(kc.NumPartitions, kc.ReplicationFactor)
	topics[0].Name = kc.Topic
	if kc.DeadLetterTopic != "" {
		topics[1].Name = kc.DeadLetterTopic
	} else {
		topics = topics[:1]
	}
	return tm.EnsureTopics(ctx, topics)
}

// HealthCheckers returns the readiness checks of the selected components.
func (a *App) HealthCheckers() []handlers.HealthChecker {
	return append([]handlers.HealthChecker(nil), a.checkers...)
}

// Router builds the HTTP route tree over the service.
func (a *App) Router(version string) http.Handler {
	rc := httpapi.RouterConfig{
		ChemicalHandler: handlers.NewChemicalHandler(a.Service, a.Logger),
		AdminHandler:    handlers.NewAdminHandler(a.Service, a.Logger),
		HealthHandler:   handlers.NewHealthHandler(version, a.checkers...),
		Logger:          a.Logger,
		Logging:         middleware.DefaultLoggingConfig(),
	}
	if a.Config.Metrics.Enabled {
		rc.MetricsHandler = a.Collector.Handler()
		rc.MetricsPath = a.Config.Metrics.Path
		rc.Recorder = a.Metrics
	}
	return httpapi.NewRouter(rc)
}

// OpsRouter serves only the probes and metrics; used by the reload worker.
func (a *App) OpsRouter(version string) http.Handler {
	rc := httpapi.RouterConfig{
		HealthHandler: handlers.NewHealthHandler(version, a.checkers...),
		Logger:        a.Logger,
		Logging:       middleware.DefaultLoggingConfig(),
	}
	if a.Config.Metrics.Enabled {
		rc.MetricsHandler = a.Collector.Handler()
		rc.MetricsPath = a.Config.Metrics.Path
	}
	return httpapi.NewRouter(rc)
}

// ReloadEvery reloads unconditionally every interval until ctx is done.
// Failures are logged and the previous snapshot stays in place.
func (a *App) ReloadEvery(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.Service.Reload(ctx); err != nil && ctx.Err() == nil {
				a.Logger.Error("scheduled reload failed", logging.Err(err))
			}
		}
	}
}

// Run starts the background parts (reload consumer, graph watcher or
// poller) and blocks until ctx is done or one of them fails.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if a.consumer != nil {
		if err := a.consumer.Start(ctx); err != nil {
			return err
		}
	}

	if a.Config.Graph.Watch {
		reload := func(ctx context.Context) {
			if err := a.Service.Reload(ctx); err != nil {
				a.Logger.Error("reload after graph change failed", logging.Err(err))
			}
		}
		switch {
		case a.GraphFile != nil:
			w, err := graphdoc.NewWatcher(a.GraphFile.Path(), a.Config.Graph.WatchDebounce, reload, a.Logger)
			if err != nil {
				return err
			}
			g.Go(func() error {
				defer w.Close()
				return w.Run(ctx)
			})
		case a.GraphObject != nil && a.Config.MinIO.PollInterval > 0:
			g.Go(func() error {
				a.GraphObject.Poll(ctx, a.Config.MinIO.PollInterval, reload)
				return nil
			})
		}
	}

	g.Go(func() error {
		<-ctx.Done()
		return nil
	})
	return g.Wait()
}

// Serve runs the HTTP API next to the background parts of Run until ctx is
// done, then drains the server. A nil ln listens on server.host:server.port.
func (a *App) Serve(ctx context.Context, ln net.Listener, version string) error {
	srv := httpapi.NewServer(a.Config.Server, a.Router(version), a.Logger)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if ln == nil {
			return srv.Start()
		}
		return srv.Serve(ln)
	})
	g.Go(func() error { return a.Run(ctx) })
	g.Go(func() error {
		<-ctx.Done()
		return srv.Stop(context.Background())
	})
	return g.Wait()
}

// Close releases everything in reverse order of creation.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// WithTimeout is a convenience for bounded one-shot commands.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
