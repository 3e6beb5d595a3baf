// Package migrate applies the embedded schema and records it in schema_migrations.
package migrate

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/lib/pq"
)

// SchemaVersion identifies the embedded schema. Bump it whenever schema.sql changes.
const SchemaVersion = 1

const (
	driverName = "postgres"

	createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`
	selectAppliedVersion = `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`
	insertVersion        = `INSERT INTO schema_migrations (version) VALUES ($1)`

	errOpenFmt          = "failed to open database: %w"
	errPingFmt          = "failed to ping database: %w"
	errTrackingTableFmt = "failed to create schema_migrations: %w"
	errReadVersionFmt   = "failed to read schema version: %w"
	errBeginFmt         = "failed to start migration transaction: %w"
	errApplyFmt         = "failed to apply schema version %d: %w"
	errRecordFmt        = "failed to record schema version %d: %w"
	errCommitFmt        = "failed to commit migration: %w"
)

//go:embed schema.sql
var schema string

// Result reports what Run did.
type Result struct {
	FromVersion int
	ToVersion   int
	Applied     bool
}

// Open connects with lib/pq.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf(errOpenFmt, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf(errPingFmt, err)
	}
	return db, nil
}

// Run applies the schema inside one transaction unless the recorded version is current.
func Run(ctx context.Context, db *sql.DB) (Result, error) {
	if _, err := db.ExecContext(ctx, createMigrationsTable); err != nil {
		return Result{}, fmt.Errorf(errTrackingTableFmt, err)
	}

	var current int
	if err := db.QueryRowContext(ctx, selectAppliedVersion).Scan(&current); err != nil {
		return Result{}, fmt.Errorf(errReadVersionFmt, err)
	}

	result := Result{FromVersion: current, ToVersion: current}
	if current >= SchemaVersion {
		return result, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf(errBeginFmt, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return result, fmt.Errorf(errApplyFmt, SchemaVersion, err)
	}
	if _, err := tx.ExecContext(ctx, insertVersion, SchemaVersion); err != nil {
		return result, fmt.Errorf(errRecordFmt, SchemaVersion, err)
	}
	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf(errCommitFmt, err)
	}

	result.ToVersion = SchemaVersion
	result.Applied = true
	return result, nil
}

// Schema returns the embedded DDL.
func Schema() string {
	return schema
}
