package prometheus

import (
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PoolStats is a point-in-time view of a connection pool.
type PoolStats struct {
	Open      int
	InUse     int
	Idle      int
	WaitCount int64
}

// ClientStats holds the cumulative message counts of a messaging client by
// outcome. Lag is reported only when HasLag is set.
type ClientStats struct {
	Messages map[string]int64
	Lag      int64
	HasLag   bool
}

// StatsCollector exports connection pool and messaging client statistics.
// The registered functions are read on every scrape.
type StatsCollector struct {
	mu      sync.RWMutex
	pools   map[string]func() PoolStats
	clients map[string]func() ClientStats

	poolConns *prometheus.Desc
	poolWaits *prometheus.Desc
	messages  *prometheus.Desc
	lag       *prometheus.Desc
}

// NewStatsCollector creates an empty StatsCollector.
func NewStatsCollector(namespace string) *StatsCollector {
	return &StatsCollector{
		pools:   make(map[string]func() PoolStats),
		clients: make(map[string]func() ClientStats),
		poolConns: prometheus.NewDesc(prometheus.BuildFQName(namespace, "pool", "connections"),
			"Connections in a pool by state", []string{"pool", "state"}, nil),
		poolWaits: prometheus.NewDesc(prometheus.BuildFQName(namespace, "pool", "waits_total"),
			"Times a caller waited for a pooled connection", []string{"pool"}, nil),
		messages: prometheus.NewDesc(prometheus.BuildFQName(namespace, "kafka", "client_messages_total"),
			"Messages handled by a Kafka client by outcome", []string{"client", "outcome"}, nil),
		lag: prometheus.NewDesc(prometheus.BuildFQName(namespace, "kafka", "consumer_lag"),
			"Consumer lag in messages", []string{"client"}, nil),
	}
}

// AddPool registers a pool under name, replacing any earlier one.
func (c *StatsCollector) AddPool(name string, fn func() PoolStats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pools[name] = fn
}

// AddClient registers a messaging client under name, replacing any earlier
// one.
func (c *StatsCollector) AddClient(name string, fn func() ClientStats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clients[name] = fn
}

// Describe implements prometheus.Collector.
func (c *StatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.poolConns
	ch <- c.poolWaits
	ch <- c.messages
	ch <- c.lag
}

// Collect implements prometheus.Collector.
func (c *StatsCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for name, fn := range c.pools {
		s := fn()
		ch <- prometheus.MustNewConstMetric(c.poolConns, prometheus.GaugeValue, float64(s.Open), name, "open")
		ch <- prometheus.MustNewConstMetric(c.poolConns, prometheus.GaugeValue, float64(s.InUse), name, "in_use")
		ch <- prometheus.MustNewConstMetric(c.poolConns, prometheus.GaugeValue, float64(s.Idle), name, "idle")
		ch <- prometheus.MustNewConstMetric(c.poolWaits, prometheus.CounterValue, float64(s.WaitCount), name)
	}
	for name, fn := range c.clients {
		s := fn()
		outcomes := make([]string, 0, len(s.Messages))
		for o := range s.Messages {
			outcomes = append(outcomes, o)
		}
		sort.Strings(outcomes)
		for _, o := range outcomes {
			ch <- prometheus.MustNewConstMetric(c.messages, prometheus.CounterValue, float64(s.Messages[o]), name, o)
		}
		if s.HasLag {
			ch <- prometheus.MustNewConstMetric(c.lag, prometheus.GaugeValue, float64(s.Lag), name)
		}
	}
}
