// Package repository provides data access interfaces and implementations.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/yasinhessnawi1/sentrylog/internal/constants"
	"github.com/yasinhessnawi1/sentrylog/internal/database"
	"github.com/yasinhessnawi1/sentrylog/internal/models"
	"github.com/yasinhessnawi1/sentrylog/internal/utils"
)

// BanEntryRepository defines methods for managing IP ban records.
type BanEntryRepository interface {
	// Create adds a new ban record.
	//
	// Parameters:
	//   - ctx: Context for transaction and cancellation
	//   - ban: The ban record to create
	//
	// Returns:
	//   - The created ban with ID populated
	//   - Error if the operation fails
	Create(ctx context.Context, ban *models.BanEntry) (*models.BanEntry, error)

	// GetAll retrieves all active bans.
	//
	// Parameters:
	//   - ctx: Context for transaction and cancellation
	//
	// Returns:
	//   - A slice of all active bans
	//   - Error if the operation fails
	GetAll(ctx context.Context) ([]*models.BanEntry, error)

	// GetByIP retrieves all active bans for a specific IP.
	//
	// Parameters:
	//   - ctx: Context for transaction and cancellation
	//   - ip: The IP address to check
	//
	// Returns:
	//   - A slice of active bans that match the IP
	//   - Error if the operation fails
	GetByIP(ctx context.Context, ip string) ([]*models.BanEntry, error)

	// GetActiveByIP retrieves the single active ban for an exact IP address,
	// if one exists.
	//
	// Parameters:
	//   - ctx: Context for transaction and cancellation
	//   - ip: The exact IP address or CIDR literal to look up
	//
	// Returns:
	//   - The active ban for ip, or nil if none exists
	//   - Error if the operation fails
	GetActiveByIP(ctx context.Context, ip string) (*models.BanEntry, error)

	// Upsert creates a ban for ban.IPAddress, or, if one already exists,
	// overwrites its reason, expiry, and attributing admin in place. The
	// operation is a single atomic statement against the ip_address unique
	// index, so concurrent Upsert calls for the same address can never
	// create two rows — the mechanism Authority.ban relies on for
	// idempotency under concurrent callers.
	//
	// Parameters:
	//   - ctx: Context for transaction and cancellation
	//   - ban: The ban to create or merge into the existing row for its IP
	//
	// Returns:
	//   - The resulting ban row, with ID populated
	//   - Error if the operation fails
	Upsert(ctx context.Context, ban *models.BanEntry) (*models.BanEntry, error)

	// UpdateActive overwrites the reason, expiry, and attributing admin of an
	// existing ban in place, used to extend or refresh a ban without minting
	// a second row for the same address.
	//
	// Parameters:
	//   - ctx: Context for transaction and cancellation
	//   - id: The ID of the ban to update
	//   - reason: The new ban reason
	//   - expiresAt: The new expiry (nil for permanent)
	//   - bannedBy: The admin or system updating the ban
	//
	// Returns:
	//   - Error if the operation fails
	UpdateActive(ctx context.Context, id int64, reason string, expiresAt *time.Time, bannedBy string) error

	// Delete removes a ban by ID.
	//
	// Parameters:
	//   - ctx: Context for transaction and cancellation
	//   - id: The ID of the ban to remove
	//
	// Returns:
	//   - Error if the operation fails
	Delete(ctx context.Context, id int64) error

	// DeleteExpired removes all expired bans.
	//
	// Parameters:
	//   - ctx: Context for transaction and cancellation
	//
	// Returns:
	//   - The number of bans removed
	//   - Error if the operation fails
	DeleteExpired(ctx context.Context) (int64, error)
}

// PostgresBanEntryRepository is an implementation of BanEntryRepository for PostgreSQL.
type PostgresBanEntryRepository struct {
	db *database.Pool
}

// NewBanEntryRepository creates a new BanEntryRepository for PostgreSQL.
//
// Parameters:
//   - db: Database connection pool
//
// Returns:
//   - An implementation of BanEntryRepository
func NewBanEntryRepository(db *database.Pool) BanEntryRepository {
	return &PostgresBanEntryRepository{
		db: db,
	}
}

// Create adds a new ban record.
func (r *PostgresBanEntryRepository) Create(ctx context.Context, ban *models.BanEntry) (*models.BanEntry, error) {
	query := fmt.Sprintf(
		`INSERT INTO %s (%s, %s, %s, %s, %s)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING ban_id`,
		constants.TableIPBans,
		constants.ColumnIPAddress, constants.ColumnReason, constants.ColumnExpiresAt,
		constants.ColumnCreatedAt, constants.ColumnBannedBy,
	)

	start := time.Now()
	err := r.db.QueryRowContext(
		ctx,
		query,
		ban.IPAddress,
		ban.Reason,
		ban.ExpiresAt,
		ban.CreatedAt,
		ban.BannedBy,
	).Scan(&ban.ID)
	utils.LogDBQuery(query, []interface{}{ban.IPAddress, ban.Reason}, time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("failed to create ban entry: %w", err)
	}

	return ban, nil
}

// GetAll retrieves all active bans.
func (r *PostgresBanEntryRepository) GetAll(ctx context.Context) ([]*models.BanEntry, error) {
	query := fmt.Sprintf(
		`SELECT ban_id, %s, %s, %s, %s, %s
		 FROM %s
		 WHERE %s IS NULL OR %s > $1
		 ORDER BY %s DESC`,
		constants.ColumnIPAddress, constants.ColumnReason, constants.ColumnExpiresAt,
		constants.ColumnCreatedAt, constants.ColumnBannedBy,
		constants.TableIPBans,
		constants.ColumnExpiresAt, constants.ColumnExpiresAt,
		constants.ColumnCreatedAt,
	)

	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query, time.Now())
	utils.LogDBQuery(query, []interface{}{}, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query ban entries: %w", err)
	}
	defer rows.Close()

	var bans []*models.BanEntry
	for rows.Next() {
		ban := &models.BanEntry{}
		if err := rows.Scan(
			&ban.ID,
			&ban.IPAddress,
			&ban.Reason,
			&ban.ExpiresAt,
			&ban.CreatedAt,
			&ban.BannedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ban entry row: %w", err)
		}
		bans = append(bans, ban)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ban entry rows: %w", err)
	}

	return bans, nil
}

// GetByIP retrieves all active bans for a specific IP.
func (r *PostgresBanEntryRepository) GetByIP(ctx context.Context, ip string) ([]*models.BanEntry, error) {
	query := fmt.Sprintf(
		`SELECT ban_id, %s, %s, %s, %s, %s
		 FROM %s
		 WHERE %s = $1 AND (%s IS NULL OR %s > $2)`,
		constants.ColumnIPAddress, constants.ColumnReason, constants.ColumnExpiresAt,
		constants.ColumnCreatedAt, constants.ColumnBannedBy,
		constants.TableIPBans,
		constants.ColumnIPAddress, constants.ColumnExpiresAt, constants.ColumnExpiresAt,
	)

	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query, ip, time.Now())
	utils.LogDBQuery(query, []interface{}{ip}, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query ban entries by IP: %w", err)
	}
	defer rows.Close()

	var bans []*models.BanEntry
	for rows.Next() {
		ban := &models.BanEntry{}
		if err := rows.Scan(
			&ban.ID,
			&ban.IPAddress,
			&ban.Reason,
			&ban.ExpiresAt,
			&ban.CreatedAt,
			&ban.BannedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ban entry row: %w", err)
		}
		bans = append(bans, ban)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ban entry rows: %w", err)
	}

	return bans, nil
}

// Upsert creates a ban, or merges onto the existing row for the same IP.
func (r *PostgresBanEntryRepository) Upsert(ctx context.Context, ban *models.BanEntry) (*models.BanEntry, error) {
	query := fmt.Sprintf(
		`INSERT INTO %s (%s, %s, %s, %s, %s)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (%s) DO UPDATE SET
		     %s = EXCLUDED.%s,
		     %s = EXCLUDED.%s,
		     %s = EXCLUDED.%s
		 RETURNING ban_id, %s`,
		constants.TableIPBans,
		constants.ColumnIPAddress, constants.ColumnReason, constants.ColumnExpiresAt,
		constants.ColumnCreatedAt, constants.ColumnBannedBy,
		constants.ColumnIPAddress,
		constants.ColumnReason, constants.ColumnReason,
		constants.ColumnExpiresAt, constants.ColumnExpiresAt,
		constants.ColumnBannedBy, constants.ColumnBannedBy,
		constants.ColumnCreatedAt,
	)

	start := time.Now()
	result := &models.BanEntry{IPAddress: ban.IPAddress}
	err := r.db.QueryRowContext(
		ctx,
		query,
		ban.IPAddress,
		ban.Reason,
		ban.ExpiresAt,
		ban.CreatedAt,
		ban.BannedBy,
	).Scan(&result.ID, &result.CreatedAt)
	utils.LogDBQuery(query, []interface{}{ban.IPAddress, ban.Reason}, time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("failed to upsert ban entry: %w", err)
	}

	result.Reason = ban.Reason
	result.ExpiresAt = ban.ExpiresAt
	result.BannedBy = ban.BannedBy

	return result, nil
}

// GetActiveByIP retrieves the single active ban for an exact IP address.
func (r *PostgresBanEntryRepository) GetActiveByIP(ctx context.Context, ip string) (*models.BanEntry, error) {
	query := fmt.Sprintf(
		`SELECT ban_id, %s, %s, %s, %s, %s
		 FROM %s
		 WHERE %s = $1 AND (%s IS NULL OR %s > $2)
		 ORDER BY %s DESC
		 LIMIT 1`,
		constants.ColumnIPAddress, constants.ColumnReason, constants.ColumnExpiresAt,
		constants.ColumnCreatedAt, constants.ColumnBannedBy,
		constants.TableIPBans,
		constants.ColumnIPAddress, constants.ColumnExpiresAt, constants.ColumnExpiresAt,
		constants.ColumnCreatedAt,
	)

	start := time.Now()
	ban := &models.BanEntry{}
	err := r.db.QueryRowContext(ctx, query, ip, time.Now()).Scan(
		&ban.ID,
		&ban.IPAddress,
		&ban.Reason,
		&ban.ExpiresAt,
		&ban.CreatedAt,
		&ban.BannedBy,
	)
	utils.LogDBQuery(query, []interface{}{ip}, time.Since(start), err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active ban entry: %w", err)
	}

	return ban, nil
}

// UpdateActive overwrites the reason, expiry, and attributing admin of an existing ban.
func (r *PostgresBanEntryRepository) UpdateActive(ctx context.Context, id int64, reason string, expiresAt *time.Time, bannedBy string) error {
	query := fmt.Sprintf(
		`UPDATE %s SET %s = $1, %s = $2, %s = $3 WHERE ban_id = $4`,
		constants.TableIPBans,
		constants.ColumnReason, constants.ColumnExpiresAt, constants.ColumnBannedBy,
	)

	start := time.Now()
	result, err := r.db.ExecContext(ctx, query, reason, expiresAt, bannedBy, id)
	utils.LogDBQuery(query, []interface{}{reason, id}, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to update ban entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return utils.NewNotFoundError("BanEntry", id)
	}

	return nil
}

// Delete removes a ban by ID.
func (r *PostgresBanEntryRepository) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE ban_id = $1`, constants.TableIPBans)

	start := time.Now()
	result, err := r.db.ExecContext(ctx, query, id)
	utils.LogDBQuery(query, []interface{}{id}, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to delete ban entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return utils.NewNotFoundError("BanEntry", id)
	}

	return nil
}

// DeleteExpired removes all expired bans.
func (r *PostgresBanEntryRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s < $1`, constants.TableIPBans, constants.ColumnExpiresAt)

	start := time.Now()
	result, err := r.db.ExecContext(ctx, query, time.Now())
	utils.LogDBQuery(query, []interface{}{}, time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired ban entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
