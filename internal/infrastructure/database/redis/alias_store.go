package redis

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/turtacn/chemsafe/internal/domain/chemical"
	"github.com/turtacn/chemsafe/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemsafe/pkg/errors"
)

const (
	// hsetBatchSize bounds the fields per HSET command.
	hsetBatchSize = 500
	// stagingTTL expires staging hashes left behind by a crashed writer.
	stagingTTL = 10 * time.Minute
	// rebuildLockName guards ReplaceAll across replicas.
	rebuildLockName = "alias-rebuild"
)

// AliasStore keeps the alias cache in one Redis hash keyed by row id. The
// replacement set is written to a staging hash and renamed over the live
// one, so readers see either the old rows or the new rows.
type AliasStore struct {
	client   *Client
	liveKey  string
	lockOpts []LockOption
	logger   logging.Logger
}

// NewAliasStore returns a store over client. lockOpts tune the rebuild lock,
// which keeps extending itself while a large replacement is written.
func NewAliasStore(client *Client, log logging.Logger, lockOpts ...LockOption) *AliasStore {
	// The hash tag keeps live and staging keys in one cluster slot, which
	// RENAME requires.
	return &AliasStore{
		client:   client,
		liveKey:  "{" + client.Key("aliases") + "}",
		lockOpts: append([]LockOption{WithWatchdog(true)}, lockOpts...),
		logger:   logging.OrNop(log).Named("alias_store"),
	}
}

// LoadAll returns every cached row ordered by main name then alias name.
func (s *AliasStore) LoadAll(ctx context.Context) ([]chemical.ChemicalAlias, error) {
	rdb, err := s.client.Universal()
	if err != nil {
		return nil, err
	}
	fields, err := rdb.HGetAll(ctx, s.liveKey).Result()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAliasStoreFailure, "failed to read aliases")
	}

	out := make([]chemical.ChemicalAlias, 0, len(fields))
	for id, raw := range fields {
		var a chemical.ChemicalAlias
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			return nil, errors.Wrapf(err, errors.ErrCodeAliasStoreFailure, "corrupt alias row %q", id)
		}
		a.ID = id
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MainName != out[j].MainName {
			return out[i].MainName < out[j].MainName
		}
		if out[i].AliasName != out[j].AliasName {
			return out[i].AliasName < out[j].AliasName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ReplaceAll swaps the live hash for aliases. A failure before the rename
// leaves the previous rows untouched.
func (s *AliasStore) ReplaceAll(ctx context.Context, aliases []chemical.ChemicalAlias) error {
	rdb, err := s.client.Universal()
	if err != nil {
		return err
	}

	lock := NewMutex(s.client, rebuildLockName, s.logger, s.lockOpts...)
	if err := lock.Lock(ctx); err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(context.Background()); err != nil {
			s.logger.Warn("Failed to release alias rebuild lock", logging.Err(err))
		}
	}()

	if len(aliases) == 0 {
		if err := rdb.Del(ctx, s.liveKey).Err(); err != nil {
			return errors.Wrap(err, errors.ErrCodeAliasStoreFailure, "failed to clear aliases")
		}
		return nil
	}

	staging := s.liveKey + ":staging:" + uuid.New().String()
	if err := s.writeStaging(ctx, rdb, staging, aliases); err != nil {
		if delErr := rdb.Del(context.Background(), staging).Err(); delErr != nil {
			s.logger.Warn("Failed to delete staging aliases", logging.String("key", staging), logging.Err(delErr))
		}
		return err
	}

	_, err = rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Rename(ctx, staging, s.liveKey)
		pipe.Persist(ctx, s.liveKey)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeAliasStoreFailure, "failed to swap alias snapshot")
	}

	s.logger.Debug("Replaced alias rows", logging.Int("rows", len(aliases)))
	return nil
}

func (s *AliasStore) writeStaging(ctx context.Context, rdb redis.UniversalClient, key string, aliases []chemical.ChemicalAlias) error {
	_, err := rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		values := make([]interface{}, 0, hsetBatchSize*2)
		for i, a := range aliases {
			raw, err := json.Marshal(a)
			if err != nil {
				return err
			}
			values = append(values, a.ID, raw)
			if len(values) == hsetBatchSize*2 || i == len(aliases)-1 {
				pipe.HSet(ctx, key, values...)
				values = make([]interface{}, 0, hsetBatchSize*2)
			}
		}
		pipe.Expire(ctx, key, stagingTTL)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeAliasStoreFailure, "failed to write staging aliases")
	}
	return nil
}

// Ping checks the Redis connection.
func (s *AliasStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

var _ chemical.AliasStore = (*AliasStore)(nil)
