// Package store opens the configured UserRepository backend and runs its
// migrations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/starter-webapi/config"
	"github.com/oksasatya/starter-webapi/internal/domain/repository"
	"github.com/oksasatya/starter-webapi/internal/infrastructure/dbmigrate"
	"github.com/oksasatya/starter-webapi/internal/infrastructure/metrics"
	"github.com/oksasatya/starter-webapi/internal/infrastructure/postgres"
	"github.com/oksasatya/starter-webapi/internal/infrastructure/sqlite"
)

// Store is an open backend.
type Store struct {
	Repo   repository.UserRepository
	ping   func(ctx context.Context) error
	record func()
	close  func()
}

// Ping checks the backend with a short timeout.
func (s *Store) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.ping(ctx)
}

// RecordMetrics refreshes the connection pool gauges.
func (s *Store) RecordMetrics() { s.record() }

func (s *Store) Close() { s.close() }

// Open connects to cfg.DBDriver, applies pending migrations and returns the
// matching repository.
func Open(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Store, error) {
	switch cfg.DBDriver {
	case dbmigrate.DriverPostgres:
		return openPostgres(ctx, cfg, logger)
	case dbmigrate.DriverSQLite:
		return openSQLite(ctx, cfg, logger)
	}
	return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Store, error) {
	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
		DSN:             cfg.PostgresDSN(),
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: cfg.DBMaxConnLife,
		ConnectAttempts: cfg.DBConnectTry,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	// golang-migrate needs a database/sql handle
	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		pool.Close()
		return nil, err
	}
	defer func() { _ = db.Close() }()
	if err := dbmigrate.Up(db, dbmigrate.DriverPostgres, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}

	return &Store{
		Repo:   postgres.NewUserRepository(pool),
		ping:   pool.Ping,
		record: func() { metrics.RecordPgxPool(pool) },
		close:  pool.Close,
	}, nil
}

func openSQLite(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Store, error) {
	db, err := sqlite.Open(ctx, cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	if err := dbmigrate.Up(db, dbmigrate.DriverSQLite, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &Store{
		Repo:   sqlite.NewUserRepository(db),
		ping:   db.PingContext,
		record: func() { metrics.RecordSQLDB(db) },
		close:  func() { _ = db.Close() },
	}, nil
}
