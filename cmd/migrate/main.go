package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"

	"observer-console.backend/internal/config"
	"observer-console.backend/internal/infrastructure/datasources/postgres"
	"observer-console.backend/pkg/logger"
)

type schemaMigrator interface {
	Up(ctx context.Context, db *sql.DB) ([]string, error)
	Version(ctx context.Context, db *sql.DB) (int64, error)
}

type migrateDeps struct {
	loadEnv  func() error
	loadCfg  func() *config.Config
	connect  func(cfg config.DatabaseConfig) (*sql.DB, error)
	migrator schemaMigrator
	out      io.Writer
}

func main() {
	deps := migrateDeps{
		loadEnv:  func() error { return godotenv.Load() },
		loadCfg:  config.Load,
		connect:  postgres.NewConnection,
		migrator: postgres.NewMigrator(),
		out:      os.Stdout,
	}
	if err := run(context.Background(), deps); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, deps migrateDeps) error {
	_ = deps.loadEnv()
	cfg := deps.loadCfg()
	logger.Init(cfg.Server.Env)
	defer logger.Sync()

	db, err := deps.connect(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := deps.migrator.Up(ctx, db)
	for _, name := range applied {
		fmt.Fprintf(deps.out, "applied %s\n", name)
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	version, err := deps.migrator.Version(ctx, db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if len(applied) == 0 {
		fmt.Fprintf(deps.out, "schema is up to date at version %d\n", version)
	} else {
		fmt.Fprintf(deps.out, "schema now at version %d\n", version)
	}
	return nil
}
