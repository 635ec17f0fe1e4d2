// Package config defines the configuration structures of the ChemSafe
// service. No I/O or parsing logic lives here, only plain data types and
// validation.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/chemsafe/internal/infrastructure/database/neo4j"
	"github.com/turtacn/chemsafe/internal/infrastructure/database/postgres"
	"github.com/turtacn/chemsafe/internal/infrastructure/database/redis"
	"github.com/turtacn/chemsafe/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/chemsafe/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemsafe/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/chemsafe/internal/infrastructure/storage/minio"
)

// Graph document sources.
const (
	GraphSourceFile  = "file"
	GraphSourceMinIO = "minio"
	GraphSourceNeo4j = "neo4j"
)

// Alias store drivers.
const (
	AliasDriverMemory   = "memory"
	AliasDriverPostgres = "postgres"
	AliasDriverRedis    = "redis"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// IncludeEntity embeds the raw graph node in lookup responses.
	IncludeEntity bool `mapstructure:"include_entity"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// GraphConfig selects and tunes the graph document source.
type GraphConfig struct {
	Source        string        `mapstructure:"source"` // "file" | "minio" | "neo4j"
	Path          string        `mapstructure:"path"`
	Watch         bool          `mapstructure:"watch"`
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`
	LoadTimeout   time.Duration `mapstructure:"load_timeout"`
}

// AliasStoreConfig selects where derived alias rows are cached.
type AliasStoreConfig struct {
	Driver      string        `mapstructure:"driver"` // "memory" | "postgres" | "redis"
	LoadTimeout time.Duration `mapstructure:"load_timeout"`
	MineGraph   bool          `mapstructure:"mine_graph"`
	AutoMigrate bool          `mapstructure:"auto_migrate"`
}

// KafkaConfig holds reload-event messaging parameters.
type KafkaConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	Brokers           []string      `mapstructure:"brokers"`
	Topic             string        `mapstructure:"topic"`
	GroupID           string        `mapstructure:"group_id"`
	DeadLetterTopic   string        `mapstructure:"dead_letter_topic"`
	AutoOffsetReset   string        `mapstructure:"auto_offset_reset"` // "earliest" | "latest"
	AutoCreateTopics  bool          `mapstructure:"auto_create_topics"`
	NumPartitions     int           `mapstructure:"num_partitions"`
	ReplicationFactor int           `mapstructure:"replication_factor"`
	MaxRetries        int           `mapstructure:"max_retries"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	SASLEnabled       bool          `mapstructure:"sasl_enabled"`
	SASLMechanism     string        `mapstructure:"sasl_mechanism"`
	SASLUsername      string        `mapstructure:"sasl_username"`
	SASLPassword      string        `mapstructure:"sasl_password"`
	TLSEnabled        bool          `mapstructure:"tls_enabled"`
	TLSCertPath       string        `mapstructure:"tls_cert_path"`
}

// ProducerConfig derives the kafka producer settings.
func (k KafkaConfig) ProducerConfig() kafka.ProducerConfig {
	return kafka.ProducerConfig{
		Brokers:       k.Brokers,
		Acks:          "all",
		MaxRetries:    k.MaxRetries,
		WriteTimeout:  k.WriteTimeout,
		SASLEnabled:   k.SASLEnabled,
		SASLMechanism: k.SASLMechanism,
		SASLUsername:  k.SASLUsername,
		SASLPassword:  k.SASLPassword,
		TLSEnabled:    k.TLSEnabled,
		TLSCertPath:   k.TLSCertPath,
	}
}

// ConsumerConfig derives the kafka consumer settings. groupID overrides the
// configured group when non-empty; every replica needs its own group so that
// each one sees every reload event.
func (k KafkaConfig) ConsumerConfig(groupID string) kafka.ConsumerConfig {
	if groupID == "" {
		groupID = k.GroupID
	}
	return kafka.ConsumerConfig{
		Brokers:         k.Brokers,
		GroupID:         groupID,
		Topics:          []string{k.Topic},
		AutoOffsetReset: k.AutoOffsetReset,
		SASLEnabled:     k.SASLEnabled,
		SASLMechanism:   k.SASLMechanism,
		SASLUsername:    k.SASLUsername,
		SASLPassword:    k.SASLPassword,
		TLSEnabled:      k.TLSEnabled,
		TLSCertPath:     k.TLSCertPath,
		Retry: kafka.RetryConfig{
			MaxRetries:      k.MaxRetries,
			DeadLetterTopic: k.DeadLetterTopic,
		},
	}
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled                    bool   `mapstructure:"enabled"`
	Path                       string `mapstructure:"path"`
	prometheus.CollectorConfig `mapstructure:",squash"`
}

// Config is the root configuration structure.
type Config struct {
	Server     ServerConfig            `mapstructure:"server"`
	Log        logging.LogConfig       `mapstructure:"log"`
	Graph      GraphConfig             `mapstructure:"graph"`
	AliasStore AliasStoreConfig        `mapstructure:"alias_store"`
	Database   postgres.PostgresConfig `mapstructure:"database"`
	Redis      redis.RedisConfig       `mapstructure:"redis"`
	Neo4j      neo4j.Neo4jConfig       `mapstructure:"neo4j"`
	MinIO      minio.MinIOConfig       `mapstructure:"minio"`
	Kafka      KafkaConfig             `mapstructure:"kafka"`
	Metrics    MetricsConfig           `mapstructure:"metrics"`
}

// Validate performs semantic validation of the fully-populated Config. Only
// the sections selected by graph.source, alias_store.driver and
// kafka.enabled are checked.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	switch c.Graph.Source {
	case GraphSourceFile:
		if c.Graph.Path == "" {
			return fmt.Errorf("config: graph.path is required for the file source")
		}
	case GraphSourceMinIO:
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("config: minio.endpoint is required for the minio source")
		}
		if c.MinIO.Bucket == "" || c.MinIO.ObjectKey == "" {
			return fmt.Errorf("config: minio.bucket and minio.object_key are required for the minio source")
		}
	case GraphSourceNeo4j:
		if c.Neo4j.URI == "" {
			return fmt.Errorf("config: neo4j.uri is required for the neo4j source")
		}
	default:
		return fmt.Errorf("config: graph.source %q is invalid; expected file|minio|neo4j", c.Graph.Source)
	}
	if c.Graph.Watch && c.Graph.Source == GraphSourceNeo4j {
		return fmt.Errorf("config: graph.watch is not supported for the neo4j source")
	}

	switch c.AliasStore.Driver {
	case AliasDriverMemory:
	case AliasDriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("config: database.host is required for the postgres alias store")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
		}
		if c.Database.Database == "" {
			return fmt.Errorf("config: database.database is required for the postgres alias store")
		}
	case AliasDriverRedis:
		if c.Redis.Addr == "" && len(c.Redis.ClusterAddrs) == 0 && len(c.Redis.SentinelAddrs) == 0 {
			return fmt.Errorf("config: redis.addr is required for the redis alias store")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
		}
	default:
		return fmt.Errorf("config: alias_store.driver %q is invalid; expected memory|postgres|redis", c.AliasStore.Driver)
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("config: kafka.topic is required")
		}
		if err := kafka.ValidateProducerConfig(c.Kafka.ProducerConfig()); err != nil {
			return fmt.Errorf("config: kafka: %w", err)
		}
	}

	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("config: metrics.namespace is required when metrics are enabled")
	}

	return nil
}
