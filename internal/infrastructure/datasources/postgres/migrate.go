package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"observer-console.backend/pkg/logger"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Migrations returns the bundled schema files
func Migrations() fs.FS {
	sub, err := fs.Sub(embeddedMigrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Migrator runs goose migrations from an fs.FS whose root holds the *.sql files
type Migrator struct {
	Dialect goose.Dialect
	Files   fs.FS
}

// NewMigrator returns a Postgres migrator over the bundled schema
func NewMigrator() *Migrator {
	return &Migrator{Dialect: goose.DialectPostgres, Files: Migrations()}
}

// Up applies every pending migration, each in its own transaction, and returns the
// names of the files it applied. A failed file is not recorded.
func (m *Migrator) Up(ctx context.Context, db *sql.DB) ([]string, error) {
	provider, err := goose.NewProvider(m.Dialect, db, m.Files)
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}

	results, err := provider.Up(ctx)
	var partial *goose.PartialError
	if errors.As(err, &partial) {
		results = partial.Applied
	}

	applied := make([]string, 0, len(results))
	for _, r := range results {
		name := strings.TrimSuffix(path.Base(r.Source.Path), ".sql")
		logger.Info(ctx, "Applied migration",
			zap.String("migration", name),
			zap.Int64("version", r.Source.Version),
			zap.Duration("duration", r.Duration),
		)
		applied = append(applied, name)
	}

	if err != nil {
		if partial != nil && partial.Failed != nil {
			return applied, fmt.Errorf("apply %s: %w", path.Base(partial.Failed.Source.Path), partial.Err)
		}
		return applied, err
	}
	return applied, nil
}

// Version reports the highest applied migration version
func (m *Migrator) Version(ctx context.Context, db *sql.DB) (int64, error) {
	provider, err := goose.NewProvider(m.Dialect, db, m.Files)
	if err != nil {
		return 0, fmt.Errorf("load migrations: %w", err)
	}
	return provider.GetDBVersion(ctx)
}
