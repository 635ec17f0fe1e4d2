package bootstrap

import (
	"database/sql"

	goredis "github.com/redis/go-redis/v9"

	"github.com/turtacn/chemsafe/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/chemsafe/internal/infrastructure/monitoring/prometheus"
)

func postgresPoolStats(s sql.DBStats) prometheus.PoolStats {
	return prometheus.PoolStats{
		Open:      s.OpenConnections,
		InUse:     s.InUse,
		Idle:      s.Idle,
		WaitCount: s.WaitCount,
	}
}

// go-redis counts only the waits that timed out.
func redisPoolStats(s *goredis.PoolStats) prometheus.PoolStats {
	if s == nil {
		return prometheus.PoolStats{}
	}
	return prometheus.PoolStats{
		Open:      int(s.TotalConns),
		InUse:     int(s.TotalConns) - int(s.IdleConns),
		Idle:      int(s.IdleConns),
		WaitCount: int64(s.Timeouts),
	}
}

func producerStats(s kafka.ProducerStats) prometheus.ClientStats {
	return prometheus.ClientStats{Messages: map[string]int64{
		"sent":   s.Sent,
		"failed": s.Failed,
	}}
}

func consumerStats(s kafka.ConsumerStats) prometheus.ClientStats {
	return prometheus.ClientStats{
		Messages: map[string]int64{
			"consumed":      s.Consumed,
			"processed":     s.Processed,
			"failed":        s.Failed,
			"retried":       s.Retried,
			"dead_lettered": s.DeadLettered,
		},
		Lag:    s.Lag,
		HasLag: true,
	}
}
