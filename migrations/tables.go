// Package migrations provides a framework for database schema management.
//
// This file contains the definitions of all database table migrations.
// Each function creates a Migration object that defines how to create
// a specific table in the database. The migrations include constraints,
// indexes, and relationships between tables to ensure data integrity.
package migrations

import (
	"context"
	"database/sql"

	"github.com/yasinhessnawi1/sentrylog/internal/constants"
)

// createAccessLogsTable creates the access_logs table.
// This table stores one row per captured HTTP request, the durable
// append-only store the ingestion pipeline writes to and the detection
// engine and admin query surface read from.
//
// Returns:
//   - Migration: A migration that creates the access_logs table
func createAccessLogsTable() Migration {
	return Migration{
		Name:        "create_access_logs_table",
		Description: "Creates the access_logs table",
		TableName:   constants.TableAccessLogs,
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			query := `
				CREATE TABLE IF NOT EXISTS access_logs (
					id BIGINT PRIMARY KEY GENERATED ALWAYS AS IDENTITY,
					ip_address VARCHAR(64),
					method VARCHAR(10) NOT NULL,
					url VARCHAR(2000) NOT NULL,
					path VARCHAR(500) NOT NULL,
					status_code INTEGER,
					response_time BIGINT,
					user_agent VARCHAR(500),
					referer VARCHAR(500),
					tenant_id VARCHAR(100),
					user_id VARCHAR(100),
					request_body TEXT,
					error VARCHAR(1000),
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
				)
			`
			if _, err := tx.ExecContext(ctx, query); err != nil {
				return err
			}

			indexes := []string{
				`CREATE INDEX IF NOT EXISTS idx_access_logs_created_at ON access_logs(created_at DESC)`,
				`CREATE INDEX IF NOT EXISTS idx_access_logs_ip_created_at ON access_logs(ip_address, created_at)`,
			}

			for _, idx := range indexes {
				if _, err := tx.ExecContext(ctx, idx); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

// createIPBansTable creates the ip_bans table.
// This table stores banned IP addresses and CIDR ranges; a unique index on
// ip_address enforces at most one ban row per address, active or expired,
// so re-banning (or extending/shortening) an address updates that row in
// place instead of racing a separate create against a separate lookup.
//
// Returns:
//   - Migration: A migration that creates the ip_bans table
func createIPBansTable() Migration {
	return Migration{
		Name:        "create_ip_bans_table",
		Description: "Creates the ip_bans table",
		TableName:   constants.TableIPBans,
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			query := `
				CREATE TABLE IF NOT EXISTS ip_bans (
					ban_id BIGINT PRIMARY KEY GENERATED ALWAYS AS IDENTITY,
					ip_address VARCHAR(64) NOT NULL,
					reason TEXT NOT NULL,
					expires_at TIMESTAMP,
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
					banned_by VARCHAR(100) NOT NULL
				)
			`
			if _, err := tx.ExecContext(ctx, query); err != nil {
				return err
			}

			indexes := []string{
				`CREATE INDEX IF NOT EXISTS idx_ip_bans_ip_address ON ip_bans(ip_address)`,
				`CREATE INDEX IF NOT EXISTS idx_ip_bans_expires_at ON ip_bans(expires_at)`,
				`CREATE UNIQUE INDEX IF NOT EXISTS uq_ip_bans_ip ON ip_bans(ip_address)`,
			}

			for _, idx := range indexes {
				if _, err := tx.ExecContext(ctx, idx); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

// createIPWhitelistTable creates the ip_whitelist table.
// This table stores allow-listed IP addresses and CIDR ranges. Ban checks do
// not read it; a match outranks a ban only where a caller composes
// Authority.IsWhitelisted with the ban check. expires_at mirrors
// ip_bans' optional expiry for symmetry with BanEntry (nil is permanent).
//
// Returns:
//   - Migration: A migration that creates the ip_whitelist table
func createIPWhitelistTable() Migration {
	return Migration{
		Name:        "create_ip_whitelist_table",
		Description: "Creates the ip_whitelist table",
		TableName:   constants.TableIPWhitelist,
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			query := `
				CREATE TABLE IF NOT EXISTS ip_whitelist (
					whitelist_id BIGINT PRIMARY KEY GENERATED ALWAYS AS IDENTITY,
					ip_address VARCHAR(64) NOT NULL UNIQUE,
					reason TEXT NOT NULL,
					expires_at TIMESTAMP,
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
					created_by VARCHAR(100) NOT NULL
				)
			`
			if _, err := tx.ExecContext(ctx, query); err != nil {
				return err
			}

			if _, err := tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_ip_whitelist_ip_address ON ip_whitelist(ip_address)`); err != nil {
				return err
			}

			return nil
		},
	}
}

// GetMigrations returns all migrations, in dependency order.
//
// Returns:
//   - []Migration: A slice of all migrations to be applied
func GetMigrations() []Migration {
	return []Migration{
		createAccessLogsTable(),
		createIPBansTable(),
		createIPWhitelistTable(),
	}
}
