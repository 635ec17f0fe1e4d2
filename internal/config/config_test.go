package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/chemsafe/internal/config"
	"github.com/turtacn/chemsafe/internal/infrastructure/messaging/kafka"
)

// validConfig returns a Config that passes Validate().
func validConfig() *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return cfg
}

func TestConfig_Validate_Defaults(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_InvalidServerPort(t *testing.T) {
	t.Parallel()
	for _, p := range []int{-1, 65536, 100000} {
		cfg := validConfig()
		cfg.Server.Port = p
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "server.port")
	}
}

func TestConfig_Validate_Log(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Log.Level = "verbose"
	assert.ErrorContains(t, cfg.Validate(), "log.level")

	cfg = validConfig()
	cfg.Log.Format = "xml"
	assert.ErrorContains(t, cfg.Validate(), "log.format")

	cfg = validConfig()
	cfg.Log.Format = "console"
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_GraphSource(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Graph.Source = "ftp"
	assert.ErrorContains(t, cfg.Validate(), "graph.source")

	cfg = validConfig()
	cfg.Graph.Path = ""
	assert.ErrorContains(t, cfg.Validate(), "graph.path")

	cfg = validConfig()
	cfg.Graph.Source = config.GraphSourceMinIO
	assert.NoError(t, cfg.Validate())
	cfg.MinIO.ObjectKey = ""
	assert.ErrorContains(t, cfg.Validate(), "minio.object_key")

	cfg = validConfig()
	cfg.Graph.Source = config.GraphSourceNeo4j
	assert.NoError(t, cfg.Validate())
	cfg.Graph.Watch = true
	assert.ErrorContains(t, cfg.Validate(), "graph.watch")
}

func TestConfig_Validate_AliasStore(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.AliasStore.Driver = "sqlite"
	assert.ErrorContains(t, cfg.Validate(), "alias_store.driver")

	cfg = validConfig()
	cfg.AliasStore.Driver = config.AliasDriverPostgres
	assert.NoError(t, cfg.Validate())
	cfg.Database.Database = ""
	assert.ErrorContains(t, cfg.Validate(), "database.database")

	cfg = validConfig()
	cfg.AliasStore.Driver = config.AliasDriverRedis
	assert.NoError(t, cfg.Validate())
	cfg.Redis.DB = -1
	assert.ErrorContains(t, cfg.Validate(), "redis.db")
}

func TestConfig_Validate_Kafka(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Kafka.Enabled = true
	assert.NoError(t, cfg.Validate())

	cfg.Kafka.Brokers = nil
	assert.ErrorContains(t, cfg.Validate(), "kafka.brokers")

	cfg = validConfig()
	cfg.Kafka.Enabled = true
	cfg.Kafka.SASLEnabled = true
	cfg.Kafka.SASLMechanism = "PLAIN"
	assert.ErrorContains(t, cfg.Validate(), "kafka")
}

func TestKafkaConfig_Derived(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Kafka.DeadLetterTopic = kafka.TopicReloadDeadLetter

	pc := cfg.Kafka.ProducerConfig()
	assert.Equal(t, []string{config.DefaultKafkaBroker}, pc.Brokers)
	assert.Equal(t, "all", pc.Acks)

	cc := cfg.Kafka.ConsumerConfig("replica-1")
	assert.Equal(t, "replica-1", cc.GroupID)
	assert.Equal(t, []string{kafka.TopicReloadEvents}, cc.Topics)
	assert.Equal(t, kafka.TopicReloadDeadLetter, cc.Retry.DeadLetterTopic)
	assert.Equal(t, config.DefaultKafkaGroupID, cfg.Kafka.ConsumerConfig("").GroupID)
}

func TestServerConfig_Addr(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "0.0.0.0:8080", validConfig().Server.Addr())
}
