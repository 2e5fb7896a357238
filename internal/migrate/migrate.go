package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
)

//go:embed sql/*.sql
var migrationsFS embed.FS

// Apply brings the local_state schema up to date from the embedded files.
func Apply(ctx context.Context, pool *pgxpool.Pool, logger logrus.FieldLogger) error {
	m, closeDB, err := open(ctx, pool)
	if err != nil {
		return err
	}
	defer closeDB()
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read version: %w", err)
	}
	if logger != nil {
		logger.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("schema up to date")
	}
	return nil
}

func open(ctx context.Context, pool *pgxpool.Pool) (*migrate.Migrate, func(), error) {
	src, err := iofs.New(migrationsFS, "sql")
	if err != nil {
		return nil, nil, fmt.Errorf("init iofs: %w", err)
	}

	sqlDB, err := sql.Open("pgx", pool.Config().ConnString())
	if err != nil {
		return nil, nil, fmt.Errorf("open sql db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("ping sql db: %w", err)
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{MigrationsTable: "storefront_schema_migrations"})
	if err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("init db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx", driver)
	if err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("init migrate: %w", err)
	}
	return m, func() { sqlDB.Close() }, nil
}
