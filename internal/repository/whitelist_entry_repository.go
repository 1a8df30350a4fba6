// Package repository provides data access interfaces and implementations.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yasinhessnawi1/sentrylog/internal/constants"
	"github.com/yasinhessnawi1/sentrylog/internal/database"
	"github.com/yasinhessnawi1/sentrylog/internal/models"
	"github.com/yasinhessnawi1/sentrylog/internal/utils"
)

// WhitelistRepository defines methods for managing IP whitelist records.
type WhitelistRepository interface {
	// Create adds a new whitelist record.
	//
	// Parameters:
	//   - ctx: Context for transaction and cancellation
	//   - entry: The whitelist record to create
	//
	// Returns:
	//   - The created entry with ID populated
	//   - Error if the operation fails
	Create(ctx context.Context, entry *models.WhitelistEntry) (*models.WhitelistEntry, error)

	// GetAll retrieves every whitelist entry.
	//
	// Parameters:
	//   - ctx: Context for transaction and cancellation
	//
	// Returns:
	//   - A slice of all whitelist entries
	//   - Error if the operation fails
	GetAll(ctx context.Context) ([]*models.WhitelistEntry, error)

	// GetByIP retrieves whitelist entries matching an exact IP address.
	//
	// Parameters:
	//   - ctx: Context for transaction and cancellation
	//   - ip: The IP address to check
	//
	// Returns:
	//   - A slice of whitelist entries that match the IP
	//   - Error if the operation fails
	GetByIP(ctx context.Context, ip string) ([]*models.WhitelistEntry, error)

	// Delete removes a whitelist entry by ID.
	//
	// Parameters:
	//   - ctx: Context for transaction and cancellation
	//   - id: The ID of the entry to remove
	//
	// Returns:
	//   - Error if the operation fails
	Delete(ctx context.Context, id int64) error
}

// PostgresWhitelistRepository is an implementation of WhitelistRepository for PostgreSQL.
type PostgresWhitelistRepository struct {
	db *database.Pool
}

// NewWhitelistRepository creates a new WhitelistRepository for PostgreSQL.
//
// Parameters:
//   - db: Database connection pool
//
// Returns:
//   - An implementation of WhitelistRepository
func NewWhitelistRepository(db *database.Pool) WhitelistRepository {
	return &PostgresWhitelistRepository{
		db: db,
	}
}

// Create adds a new whitelist record.
func (r *PostgresWhitelistRepository) Create(ctx context.Context, entry *models.WhitelistEntry) (*models.WhitelistEntry, error) {
	query := fmt.Sprintf(
		`INSERT INTO %s (%s, %s, %s, %s, %s)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING whitelist_id`,
		constants.TableIPWhitelist,
		constants.ColumnIPAddress, constants.ColumnReason, constants.ColumnExpiresAt,
		constants.ColumnCreatedAt, constants.ColumnCreatedBy,
	)

	start := time.Now()
	err := r.db.QueryRowContext(
		ctx,
		query,
		entry.IPAddress,
		entry.Reason,
		entry.ExpiresAt,
		entry.CreatedAt,
		entry.CreatedBy,
	).Scan(&entry.ID)
	utils.LogDBQuery(query, []interface{}{entry.IPAddress, entry.Reason}, time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("failed to create whitelist entry: %w", err)
	}

	return entry, nil
}

// GetAll retrieves every whitelist entry.
func (r *PostgresWhitelistRepository) GetAll(ctx context.Context) ([]*models.WhitelistEntry, error) {
	query := fmt.Sprintf(
		`SELECT whitelist_id, %s, %s, %s, %s, %s
		 FROM %s
		 ORDER BY %s DESC`,
		constants.ColumnIPAddress, constants.ColumnReason, constants.ColumnExpiresAt,
		constants.ColumnCreatedAt, constants.ColumnCreatedBy,
		constants.TableIPWhitelist,
		constants.ColumnCreatedAt,
	)

	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query)
	utils.LogDBQuery(query, []interface{}{}, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query whitelist entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.WhitelistEntry
	for rows.Next() {
		entry := &models.WhitelistEntry{}
		if err := rows.Scan(
			&entry.ID,
			&entry.IPAddress,
			&entry.Reason,
			&entry.ExpiresAt,
			&entry.CreatedAt,
			&entry.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan whitelist entry row: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating whitelist entry rows: %w", err)
	}

	return entries, nil
}

// GetByIP retrieves whitelist entries matching an exact IP address.
func (r *PostgresWhitelistRepository) GetByIP(ctx context.Context, ip string) ([]*models.WhitelistEntry, error) {
	query := fmt.Sprintf(
		`SELECT whitelist_id, %s, %s, %s, %s, %s
		 FROM %s
		 WHERE %s = $1`,
		constants.ColumnIPAddress, constants.ColumnReason, constants.ColumnExpiresAt,
		constants.ColumnCreatedAt, constants.ColumnCreatedBy,
		constants.TableIPWhitelist,
		constants.ColumnIPAddress,
	)

	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query, ip)
	utils.LogDBQuery(query, []interface{}{ip}, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query whitelist entries by IP: %w", err)
	}
	defer rows.Close()

	var entries []*models.WhitelistEntry
	for rows.Next() {
		entry := &models.WhitelistEntry{}
		if err := rows.Scan(
			&entry.ID,
			&entry.IPAddress,
			&entry.Reason,
			&entry.ExpiresAt,
			&entry.CreatedAt,
			&entry.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan whitelist entry row: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating whitelist entry rows: %w", err)
	}

	return entries, nil
}

// Delete removes a whitelist entry by ID.
func (r *PostgresWhitelistRepository) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE whitelist_id = $1`, constants.TableIPWhitelist)

	start := time.Now()
	result, err := r.db.ExecContext(ctx, query, id)
	utils.LogDBQuery(query, []interface{}{id}, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to delete whitelist entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return utils.NewNotFoundError("WhitelistEntry", id)
	}

	return nil
}
