package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
server:
  port: 8081
log:
  level: debug
  format: console
graph:
  source: file
  path: /srv/chemsafe/chemicals.jsonld
  watch: true
  watch_debounce: 250ms
alias_store:
  driver: postgres
  auto_migrate: true
database:
  host: db.internal
  port: 5432
  database: chemsafe
  username: chemsafe
  password: secret
kafka:
  enabled: true
  brokers: ["k1:9092", "k2:9092"]
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.True(t, cfg.Graph.Watch)
	assert.Equal(t, 250*time.Millisecond, cfg.Graph.WatchDebounce)
	assert.Equal(t, AliasDriverPostgres, cfg.AliasStore.Driver)
	assert.True(t, cfg.AliasStore.AutoMigrate)
	assert.True(t, cfg.AliasStore.MineGraph)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "chemsafe", cfg.Database.Username)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Metrics.Enabled)
	assert.True(t, cfg.Metrics.EnableGoMetrics)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(createTempConfigFile(t, "graph: ["))
	assert.Error(t, err)
}

func TestLoad_ValidationFailure(t *testing.T) {
	_, err := Load(createTempConfigFile(t, "alias_store:\n  driver: sqlite\n"))
	assert.ErrorContains(t, err, "validation failed")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CHEMSAFE_SERVER_PORT", "9999")
	t.Setenv("CHEMSAFE_DATABASE_HOST", "db-from-env")

	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "db-from-env", cfg.Database.Host)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CHEMSAFE_GRAPH_SOURCE", "minio")
	t.Setenv("CHEMSAFE_MINIO_BUCKET", "hazmat")
	t.Setenv("CHEMSAFE_ALIAS_STORE_DRIVER", "redis")
	t.Setenv("CHEMSAFE_REDIS_ADDR", "cache:6379")
	t.Setenv("CHEMSAFE_METRICS_NAMESPACE", "hazmat")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, GraphSourceMinIO, cfg.Graph.Source)
	assert.Equal(t, "hazmat", cfg.MinIO.Bucket)
	assert.Equal(t, AliasDriverRedis, cfg.AliasStore.Driver)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, "hazmat", cfg.Metrics.Namespace)
}

func TestConfigKeys(t *testing.T) {
	keys := configKeys(reflect.TypeOf(Config{}), "")
	assert.Contains(t, keys, "server.port")
	assert.Contains(t, keys, "alias_store.mine_graph")
	assert.Contains(t, keys, "database.statement_timeout")
	assert.Contains(t, keys, "kafka.brokers")
	// squashed collector config
	assert.Contains(t, keys, "metrics.namespace")
	assert.NotContains(t, keys, "metrics.collectorconfig.namespace")
}

func TestMustLoad_Panics(t *testing.T) {
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "missing.yaml")) })
}

func TestWatch(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)

	changed := make(chan *Config, 1)
	require.NoError(t, Watch(path, func(c *Config) {
		select {
		case changed <- c:
		default:
		}
	}, nil))

	updated := validConfigYAML + "\nmetrics:\n  namespace: reloaded\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	select {
	case cfg := <-changed:
		assert.Equal(t, "reloaded", cfg.Metrics.Namespace)
	case <-time.After(5 * time.Second):
		t.Fatal("config change not observed")
	}
}

func TestWatch_MissingFile(t *testing.T) {
	assert.Error(t, Watch(filepath.Join(t.TempDir(), "missing.yaml"), func(*Config) {}, nil))
}
