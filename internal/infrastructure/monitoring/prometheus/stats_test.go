package prometheus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatsCollector_ExportsPoolsAndClients(t *testing.T) {
	collector := newTestCollector(t)
	stats := NewStatsCollector("test")
	collector.MustRegister(stats)

	stats.AddPool("postgres", func() PoolStats {
		return PoolStats{Open: 5, InUse: 2, Idle: 3, WaitCount: 7}
	})
	stats.AddClient("producer", func() ClientStats {
		return ClientStats{Messages: map[string]int64{"sent": 4, "failed": 1}}
	})
	stats.AddClient("consumer", func() ClientStats {
		return ClientStats{Messages: map[string]int64{"consumed": 9}, Lag: 12, HasLag: true}
	})

	out := scrapeMetrics(t, collector)
	assert.Contains(t, out, `test_pool_connections{pool="postgres",state="in_use"} 2`)
	assert.Contains(t, out, `test_pool_connections{pool="postgres",state="idle"} 3`)
	assert.Contains(t, out, `test_pool_waits_total{pool="postgres"} 7`)
	assert.Contains(t, out, `test_kafka_client_messages_total{client="producer",outcome="sent"} 4`)
	assert.Contains(t, out, `test_kafka_client_messages_total{client="producer",outcome="failed"} 1`)
	assert.Contains(t, out, `test_kafka_consumer_lag{client="consumer"} 12`)
	assert.NotContains(t, out, `test_kafka_consumer_lag{client="producer"}`)
}

func TestStatsCollector_ReadsOnEveryScrape(t *testing.T) {
	collector := newTestCollector(t)
	stats := NewStatsCollector("test")
	collector.MustRegister(stats)

	inUse := 1
	stats.AddPool("redis", func() PoolStats { return PoolStats{Open: 4, InUse: inUse} })

	assert.Contains(t, scrapeMetrics(t, collector), `test_pool_connections{pool="redis",state="in_use"} 1`)
	inUse = 3
	assert.Contains(t, scrapeMetrics(t, collector), `test_pool_connections{pool="redis",state="in_use"} 3`)
}

func TestStatsCollector_EmptyExportsNothing(t *testing.T) {
	collector := newTestCollector(t)
	collector.MustRegister(NewStatsCollector("test"))
	assert.NotContains(t, scrapeMetrics(t, collector), "test_pool_connections")
}
