// Package neo4j reads the chemical graph from a Neo4j property graph.
package neo4j

import (
	"context"
	"sync"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/turtacn/chemsafe/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemsafe/pkg/errors"
)

const (
	defaultDatabase       = "neo4j"
	defaultPoolSize       = 10
	defaultAcquireTimeout = 30 * time.Second
	connectTimeout        = 10 * time.Second
)

type Neo4jConfig struct {
	URI                          string        `mapstructure:"uri"`
	Username                     string        `mapstructure:"username"`
	Password                     string        `mapstructure:"password"`
	Database                     string        `mapstructure:"database"`
	MaxConnectionPoolSize        int           `mapstructure:"max_connection_pool_size"`
	ConnectionAcquisitionTimeout time.Duration `mapstructure:"connection_acquisition_timeout"`
	// NodeLabel is the label carried by every graph resource node.
	NodeLabel string `mapstructure:"node_label"`
	// IDProperty holds the resource identifier ("@id") on each node.
	IDProperty string `mapstructure:"id_property"`
}

// Result is the record stream of one query. neo4j.ResultWithContext
// satisfies it.
type Result interface {
	Next(ctx context.Context) bool
	Record() *neo4j.Record
	Err() error
}

// Transaction runs queries inside a read transaction.
type Transaction interface {
	Run(ctx context.Context, cypher string, params map[string]any) (Result, error)
}

// backend is the part of the Bolt driver the wrapper uses.
type backend interface {
	VerifyConnectivity(ctx context.Context) error
	ExecuteRead(ctx context.Context, database string, work func(Transaction) (any, error)) (any, error)
	Close(ctx context.Context) error
}

type boltBackend struct {
	driver neo4j.DriverWithContext
}

func (b boltBackend) VerifyConnectivity(ctx context.Context) error {
	return b.driver.VerifyConnectivity(ctx)
}

// ExecuteRead opens a read session for one managed transaction.
func (b boltBackend) ExecuteRead(ctx context.Context, database string, work func(Transaction) (any, error)) (any, error) {
	session := b.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: database, AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)
	return session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return work(managedTx{tx})
	})
}

func (b boltBackend) Close(ctx context.Context) error {
	return b.driver.Close(ctx)
}

type managedTx struct {
	tx neo4j.ManagedTransaction
}

func (t managedTx) Run(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	return t.tx.Run(ctx, cypher, params)
}

// Driver runs read transactions against one database.
type Driver struct {
	backend  backend
	database string
	logger   logging.Logger
	once     sync.Once
}

// NewDriver connects and verifies connectivity once.
func NewDriver(cfg Neo4jConfig, log logging.Logger) (*Driver, error) {
	log = logging.OrNop(log)
	auth := neo4j.BasicAuth(cfg.Username, cfg.Password, "")

	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth, func(c *neo4j.Config) {
		c.MaxConnectionPoolSize = defaultPoolSize
		if cfg.MaxConnectionPoolSize > 0 {
			c.MaxConnectionPoolSize = cfg.MaxConnectionPoolSize
		}
		c.ConnectionAcquisitionTimeout = defaultAcquireTimeout
		if cfg.ConnectionAcquisitionTimeout > 0 {
			c.ConnectionAcquisitionTimeout = cfg.ConnectionAcquisitionTimeout
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create neo4j driver")
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to connect to neo4j")
	}

	d := newDriver(boltBackend{driver: driver}, cfg.Database, log)
	log.Info("Connected to Neo4j", logging.String("uri", cfg.URI), logging.String("database", d.database))
	return d, nil
}

func newDriver(b backend, database string, log logging.Logger) *Driver {
	if database == "" {
		database = defaultDatabase
	}
	return &Driver{backend: b, database: database, logger: logging.OrNop(log)}
}

// ExecuteRead runs work in a read transaction.
func (d *Driver) ExecuteRead(ctx context.Context, work func(Transaction) (any, error)) (any, error) {
	out, err := d.backend.ExecuteRead(ctx, d.database, work)
	if err != nil {
		d.logger.Error("Neo4j read transaction failed", logging.Err(err))
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "neo4j read failed")
	}
	return out, nil
}

// HealthCheck verifies connectivity and runs a trivial read.
func (d *Driver) HealthCheck(ctx context.Context) error {
	if err := d.backend.VerifyConnectivity(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "neo4j connectivity check failed")
	}
	_, err := d.ExecuteRead(ctx, func(tx Transaction) (any, error) {
		res, err := tx.Run(ctx, "RETURN 1", nil)
		if err != nil {
			return nil, err
		}
		res.Next(ctx)
		return nil, res.Err()
	})
	return err
}

// Close closes the driver once.
func (d *Driver) Close() error {
	var err error
	d.once.Do(func() {
		if err = d.backend.Close(context.Background()); err != nil {
			d.logger.Error("Failed to close Neo4j driver", logging.Err(err))
			return
		}
		d.logger.Info("Closed Neo4j driver")
	})
	return err
}

// CollectRecords maps every remaining record of result.
func CollectRecords[T any](ctx context.Context, result Result, mapper func(*neo4j.Record) (T, error)) ([]T, error) {
	var items []T
	for result.Next(ctx) {
		item, err := mapper(result.Record())
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
