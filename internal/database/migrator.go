package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/rs/zerolog"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

const versionTable = "schema_version"

// Migrations returns the embedded migration files rooted at the
// migrations directory.
func Migrations() (fs.FS, error) {
	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("retrieving database migrations subtree: %w", err)
	}
	return subtree, nil
}

// Migrate applies the embedded migrations with tern.
//
// target is the schema version to migrate to; zero or less means latest.
// Migrating to a lower version than the current one runs the down steps.
func Migrate(ctx context.Context, logger *zerolog.Logger, cfg *config.Config, target int32) error {
	conn, err := pgx.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting for migrations: %w", err)
	}
	defer conn.Close(ctx)

	m, err := tern.NewMigrator(ctx, conn, versionTable)
	if err != nil {
		return fmt.Errorf("constructing database migrator: %w", err)
	}

	subtree, err := Migrations()
	if err != nil {
		return err
	}

	if err := m.LoadMigrations(subtree); err != nil {
		return fmt.Errorf("loading database migrations: %w", err)
	}

	from, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("retrieving current database migration version: %w", err)
	}

	latest := int32(len(m.Migrations))
	if target <= 0 || target > latest {
		target = latest
	}

	if err := m.MigrateTo(ctx, target); err != nil {
		return fmt.Errorf("migrating database from %d to %d: %w", from, target, err)
	}

	if from == target {
		logger.Info().Msgf("database schema up to date, version %d", target)
	} else {
		logger.Info().Msgf("migrated database schema, from %d to %d", from, target)
	}
	return nil
}
