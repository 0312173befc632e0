// Package sqlstore keeps raw items, identifier associations, sync state and
// the user directory in SQLite or PostgreSQL.
package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Keep IN lists well under the SQLite host parameter limit.
const inChunk = 500

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS raw_items (
		campus_id TEXT PRIMARY KEY,
		doc_key   TEXT NOT NULL,
		updated   BIGINT NOT NULL,
		item_data TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS raw_items_doc_key ON raw_items (doc_key)`,
	`CREATE TABLE IF NOT EXISTS ids (
		campus_id TEXT PRIMARY KEY,
		oap_id    TEXT NOT NULL,
		updated   BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ids_oap_id ON ids (oap_id)`,
	`CREATE TABLE IF NOT EXISTS oap_hashes (
		oap_id    TEXT PRIMARY KEY,
		updated   BIGINT NOT NULL,
		hash      TEXT NOT NULL,
		oap_users TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS pubs (
		pub_id TEXT PRIMARY KEY,
		oap_id TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS pubs_oap_id ON pubs (oap_id)`,
	`CREATE TABLE IF NOT EXISTS oap_flags (
		oap_id    TEXT PRIMARY KEY,
		is_joined BOOLEAN NOT NULL,
		is_compat BOOLEAN NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS emails (
		email          TEXT PRIMARY KEY,
		proprietary_id TEXT NOT NULL
	)`,
}

// Open connects to the database. SQLite gets a single connection, which
// also serializes writers.
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 30000"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set busy timeout: %w", err)
		}
	}
	return db, nil
}

// Migrate creates any missing tables.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func toMicros(t time.Time) int64 {
	return t.UnixMicro()
}

func fromMicros(v int64) time.Time {
	return time.UnixMicro(v).UTC()
}

func chunks(keys []string) [][]string {
	var out [][]string
	for len(keys) > inChunk {
		out = append(out, keys[:inChunk])
		keys = keys[inChunk:]
	}
	if len(keys) > 0 {
		out = append(out, keys)
	}
	return out
}
