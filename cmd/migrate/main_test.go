package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"observer-console.backend/internal/config"
	"observer-console.backend/internal/infrastructure/datasources/postgres"
)

// sqliteConnect opens a shared in-memory database that outlives each run's Close
func sqliteConnect(t *testing.T) func(config.DatabaseConfig) (*sql.DB, error) {
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	keeper, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	keeperDB, err := keeper.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = keeperDB.Close() })

	return func(config.DatabaseConfig) (*sql.DB, error) {
		gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
		if err != nil {
			return nil, err
		}
		db, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(1)
		return db, nil
	}
}

type stubMigrator struct {
	applied    []string
	upErr      error
	version    int64
	versionErr error
}

func (s stubMigrator) Up(context.Context, *sql.DB) ([]string, error) { return s.applied, s.upErr }

func (s stubMigrator) Version(context.Context, *sql.DB) (int64, error) {
	return s.version, s.versionErr
}

func baseDeps(t *testing.T, out *bytes.Buffer) migrateDeps {
	return migrateDeps{
		loadEnv: func() error { return errors.New("no .env") },
		loadCfg: func() *config.Config { return &config.Config{Server: config.ServerConfig{Env: "test"}} },
		connect: sqliteConnect(t),
		migrator: &postgres.Migrator{
			Dialect: goose.DialectSQLite3,
			Files: fstest.MapFS{
				"0001_init.sql": {Data: []byte("-- +goose Up\nCREATE TABLE widgets (id TEXT PRIMARY KEY);\n")},
			},
		},
		out: out,
	}
}

func TestRun_AppliesThenReportsUpToDate(t *testing.T) {
	var out bytes.Buffer
	deps := baseDeps(t, &out)

	require.NoError(t, run(context.Background(), deps))
	assert.Contains(t, out.String(), "applied 0001_init")
	assert.Contains(t, out.String(), "schema now at version 1")

	out.Reset()
	require.NoError(t, run(context.Background(), deps))
	assert.Contains(t, out.String(), "schema is up to date at version 1")
}

func TestRun_ConnectError(t *testing.T) {
	var out bytes.Buffer
	deps := baseDeps(t, &out)
	deps.connect = func(config.DatabaseConfig) (*sql.DB, error) { return nil, errors.New("failed to ping database") }

	err := run(context.Background(), deps)
	assert.ErrorContains(t, err, "failed to ping database")
}

func TestRun_MigrationError(t *testing.T) {
	var out bytes.Buffer
	deps := baseDeps(t, &out)
	deps.migrator = stubMigrator{applied: []string{"0001_init"}, upErr: errors.New("apply 0002_bad.sql: syntax error")}

	err := run(context.Background(), deps)
	assert.ErrorContains(t, err, "migration failed")
	assert.Contains(t, out.String(), "applied 0001_init")
}

func TestRun_VersionError(t *testing.T) {
	var out bytes.Buffer
	deps := baseDeps(t, &out)
	deps.migrator = stubMigrator{versionErr: errors.New("no version table")}

	err := run(context.Background(), deps)
	assert.ErrorContains(t, err, "read schema version")
}
