package admin

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/cloo-solutions/communityos/internal/config"
	"github.com/cloo-solutions/communityos/internal/logging"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const defaultMigrationsPath = "migrations"

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  "Apply all pending migrations, or roll back with --down",
		RunE:  runMigrate,
	}

	cmd.Flags().String("path", defaultMigrationsPath, "Directory containing migration files")
	cmd.Flags().Bool("down", false, "Roll back every migration")

	return cmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.New(cfg.LogLevel)

	path, _ := cmd.Flags().GetString("path")
	down, _ := cmd.Flags().GetBool("down")

	if down {
		return withMigrator(cfg.DatabaseURL, path, func(m *migrate.Migrate) error {
			if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("failed to roll back migrations: %w", err)
			}
			logger.Info("migrations: rolled back")
			return nil
		})
	}

	return runMigrations(cfg.DatabaseURL, path, logger)
}

func withMigrator(databaseURL, path string, fn func(m *migrate.Migrate) error) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+path, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return fn(m)
}

func runMigrations(databaseURL, path string, logger logrus.FieldLogger) error {
	return withMigrator(databaseURL, path, func(m *migrate.Migrate) error {
		err := m.Up()
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		upToDate := errors.Is(err, migrate.ErrNoChange)

		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			logger.Info("migrations: no migrations applied")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get migration version: %w", err)
		}
		if dirty {
			return fmt.Errorf("migration version %d is dirty, manual intervention required", version)
		}

		log := logger.WithField("version", version)
		if upToDate {
			log.Info("migrations: database is up to date")
		} else {
			log.Info("migrations: applied successfully")
		}
		return nil
	})
}
