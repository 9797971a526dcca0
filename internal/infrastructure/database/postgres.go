package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"knowledgehub-backend/pkg/logger"
)

// ErrStoreUnavailable signals that the persistent store cannot be reached:
// connection parameters are missing or the (re)connect attempt failed.
// Callers surface it as a retryable service error, never as not-found.
var ErrStoreUnavailable = errors.New("store unavailable")

// DBConfig holds everything needed to open the PostgreSQL pool.
type DBConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	DBName   string

	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration

	MaxRetries     int
	RetryDelay     time.Duration
	ConnectTimeout time.Duration
}

// Postgres manages a single lazily-created connection pool.
//
// Acquire memoizes the pool behind a mutex so concurrent first-use cannot
// race to open duplicate pools, probes liveness on every acquisition, and
// transparently reconnects once when the probe fails.
type Postgres struct {
	config *DBConfig

	mu   sync.Mutex
	pool *pgxpool.Pool
}

// NewPostgres creates the handle without connecting. The first Acquire
// opens the pool.
func NewPostgres(config *DBConfig) *Postgres {
	return &Postgres{config: config}
}

// Acquire returns the live pool, connecting or reconnecting as needed.
func (db *Postgres) Acquire(ctx context.Context) (*pgxpool.Pool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.config == nil || db.config.Host == "" || db.config.DBName == "" {
		return nil, fmt.Errorf("%w: missing connection parameters", ErrStoreUnavailable)
	}

	if db.pool != nil {
		// Liveness probe on every acquisition. A dead pool is discarded
		// and replaced by exactly one reconnect attempt.
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := db.pool.Ping(pingCtx)
		cancel()
		if err == nil {
			return db.pool, nil
		}

		logger.Warn("database ping failed, reconnecting", map[string]interface{}{
			"error": err.Error(),
		})
		db.pool.Close()
		db.pool = nil
	}

	pool, err := db.connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	db.pool = pool
	return db.pool, nil
}

// HealthCheck pings the pool without triggering a reconnect.
func (db *Postgres) HealthCheck(ctx context.Context) error {
	db.mu.Lock()
	pool := db.pool
	db.mu.Unlock()

	if pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(healthCtx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

// Close releases the pool. Safe to call before the first Acquire.
func (db *Postgres) Close() {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.pool != nil {
		db.pool.Close()
		db.pool = nil
	}
}

func (db *Postgres) connectionString() string {
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s",
		db.config.Username,
		db.config.Password,
		db.config.Host,
		db.config.Port,
		db.config.DBName,
	)
}

func (db *Postgres) poolConfig() (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(db.connectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = db.config.MaxConns
	config.MinConns = db.config.MinConns
	config.MaxConnLifetime = db.config.MaxConnLifetime
	config.MaxConnIdleTime = db.config.MaxConnIdleTime
	config.HealthCheckPeriod = db.config.HealthCheckPeriod
	config.ConnConfig.ConnectTimeout = db.config.ConnectTimeout

	return config, nil
}

// connect opens the pool with exponential-backoff retries and verifies it
// with a ping before handing it out. Caller holds db.mu.
func (db *Postgres) connect(ctx context.Context) (*pgxpool.Pool, error) {
	config, err := db.poolConfig()
	if err != nil {
		return nil, err
	}

	retries := db.config.MaxRetries
	if retries < 1 {
		retries = 1
	}

	var pool *pgxpool.Pool
	var lastErr error

	for attempt := 1; attempt <= retries; attempt++ {
		connectCtx, cancel := context.WithTimeout(ctx, db.config.ConnectTimeout)
		pool, lastErr = pgxpool.NewWithConfig(connectCtx, config)
		cancel()

		if lastErr == nil {
			if err := pool.Ping(ctx); err != nil {
				pool.Close()
				lastErr = err
			} else {
				logger.Info("database connected", map[string]interface{}{
					"attempt": attempt,
					"host":    db.config.Host,
					"dbname":  db.config.DBName,
				})
				return pool, nil
			}
		}

		logger.Warn("database connection attempt failed", map[string]interface{}{
			"attempt": attempt,
			"error":   lastErr.Error(),
		})

		if attempt < retries {
			delay := db.config.RetryDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, fmt.Errorf("connection cancelled: %w", ctx.Err())
			}
		}
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %w", retries, lastErr)
}
