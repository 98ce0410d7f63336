// Package database opens the shared pgx pool.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

const (
	defaultConnectAttempts = 5
	defaultRetryDelay      = time.Second
)

type Config struct {
	URL      string
	MaxConns int32
	MinConns int32
	// ConnectAttempts bounds how many pings are tried before giving up.
	ConnectAttempts int
	RetryDelay      time.Duration
	Logger          logrus.FieldLogger
}

// NewPool builds a pool from cfg and waits for the server to answer a ping,
// retrying with a linear backoff so the daemon can start alongside Postgres.
func NewPool(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}

	attempts := cfg.ConnectAttempts
	if attempts <= 0 {
		attempts = defaultConnectAttempts
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	for attempt := 1; ; attempt++ {
		err = pool.Ping(ctx)
		if err == nil {
			logger.WithFields(logrus.Fields{
				"host":      poolConfig.ConnConfig.Host,
				"database":  poolConfig.ConnConfig.Database,
				"max_conns": poolConfig.MaxConns,
			}).Info("database connected")
			return pool, nil
		}
		if attempt == attempts {
			break
		}

		logger.WithError(err).WithField("attempt", attempt).Warn("database not ready, retrying")
		select {
		case <-ctx.Done():
			pool.Close()
			return nil, fmt.Errorf("failed to ping database: %w", ctx.Err())
		case <-time.After(time.Duration(attempt) * delay):
		}
	}

	pool.Close()
	return nil, fmt.Errorf("failed to ping database after %d attempts: %w", attempts, err)
}
