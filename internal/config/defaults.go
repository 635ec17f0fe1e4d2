package config

import (
	"time"

	"github.com/turtacn/chemsafe/internal/infrastructure/messaging/kafka"
)

const (
	DefaultServerHost = "0.0.0.0"
	DefaultServerPort = 8080

	DefaultGraphSource = GraphSourceFile
	DefaultGraphPath   = "data/chemicals.jsonld"

	DefaultAliasDriver = AliasDriverMemory

	DefaultDBHost = "localhost"
	DefaultDBPort = 5432
	DefaultDBName = "chemsafe"

	DefaultRedisAddr = "localhost:6379"

	DefaultNeo4jURI = "bolt://localhost:7687"

	DefaultMinIOEndpoint = "localhost:9000"

	DefaultKafkaBroker  = "localhost:9092"
	DefaultKafkaGroupID = "chemsafe"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "chemsafe"
	DefaultMetricsPath      = "/metrics"
)

// ApplyDefaults fills every zero-value field in cfg with its default. Fields
// already set are left unchanged so that explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 120 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	if cfg.Graph.Source == "" {
		cfg.Graph.Source = DefaultGraphSource
	}
	if cfg.Graph.Path == "" && cfg.Graph.Source == GraphSourceFile {
		cfg.Graph.Path = DefaultGraphPath
	}
	if cfg.Graph.WatchDebounce == 0 {
		cfg.Graph.WatchDebounce = 500 * time.Millisecond
	}
	if cfg.Graph.LoadTimeout == 0 {
		cfg.Graph.LoadTimeout = 30 * time.Second
	}

	if cfg.AliasStore.Driver == "" {
		cfg.AliasStore.Driver = DefaultAliasDriver
	}
	if cfg.AliasStore.LoadTimeout == 0 {
		cfg.AliasStore.LoadTimeout = 30 * time.Second
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.Database == "" {
		cfg.Database.Database = DefaultDBName
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	if cfg.Redis.Addr == "" && len(cfg.Redis.ClusterAddrs) == 0 && len(cfg.Redis.SentinelAddrs) == 0 {
		cfg.Redis.Addr = DefaultRedisAddr
	}

	if cfg.Neo4j.URI == "" {
		cfg.Neo4j.URI = DefaultNeo4jURI
	}

	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = "chemsafe"
	}
	if cfg.MinIO.ObjectKey == "" {
		cfg.MinIO.ObjectKey = "graph/chemicals.jsonld"
	}
	if cfg.MinIO.PollInterval == 0 && cfg.Graph.Watch && cfg.Graph.Source == GraphSourceMinIO {
		cfg.MinIO.PollInterval = 30 * time.Second
	}

	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = kafka.TopicReloadEvents
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.AutoOffsetReset == "" {
		cfg.Kafka.AutoOffsetReset = "latest"
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
}

// setViperDefaults registers the boolean defaults that ApplyDefaults cannot
// express, since false is their zero value.
func setViperDefaults(v viperSetter) {
	v.SetDefault("alias_store.mine_graph", true)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.enable_go_metrics", true)
	v.SetDefault("metrics.enable_process_metrics", true)
}

type viperSetter interface {
	SetDefault(key string, value interface{})
}
