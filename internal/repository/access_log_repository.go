// Package repository provides data access interfaces and implementations.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/sentrylog/internal/constants"
	"github.com/yasinhessnawi1/sentrylog/internal/database"
	"github.com/yasinhessnawi1/sentrylog/internal/models"
	"github.com/yasinhessnawi1/sentrylog/internal/utils"
)

// AccessLogFilter is an AND-combined filter over persisted AccessRecords.
// A zero-value field means "do not filter on this dimension" — except
// StatusCode, which uses the HasStatusCode flag to distinguish "unset"
// from the valid status code 0.
type AccessLogFilter struct {
	IPAddress     string
	TenantID      string
	UserID        string
	Method        string
	Path          string
	StatusCode    int
	HasStatusCode bool
	StartDate     time.Time
	EndDate       time.Time
}

// Pagination bounds an offset-based page of results. Page is 1-based;
// Limit is clamped to [1,100] by the caller before reaching the repository.
type Pagination struct {
	Page  int
	Limit int
}

// IPAggregate is one row of the per-IP request-count rollup produced by
// AggregateByIP, the entry point the Detection Engine drives its scoring
// pass from.
type IPAggregate struct {
	IPAddress     string
	Count         int
	MaxCreatedAt  time.Time
}

// AccessLogRepository provides durable, queryable storage for AccessRecords.
type AccessLogRepository interface {
	// Insert durably appends a record, assigning its ID and CreatedAt.
	//
	// Parameters:
	//   - ctx: Context for cancellation
	//   - record: The record to persist; ID and CreatedAt are overwritten
	//
	// Returns:
	//   - Error if the operation fails
	Insert(ctx context.Context, record *models.AccessRecord) error

	// Query returns records matching filter, ordered by CreatedAt descending
	// with a stable tie-break on ID descending, paginated by pagination.
	//
	// Parameters:
	//   - ctx: Context for cancellation
	//   - filter: The AND-combined filter to apply
	//   - pagination: The page/limit to apply
	//
	// Returns:
	//   - The matching page of records
	//   - The total count of records matching filter across all pages
	//   - Error if the operation fails (catalog-missing is swallowed, see contract)
	Query(ctx context.Context, filter AccessLogFilter, pagination Pagination) ([]*models.AccessRecord, int, error)

	// AggregateByIP returns, for each distinct non-null IP address with
	// records in [start,end], its request count and most recent CreatedAt.
	//
	// Parameters:
	//   - ctx: Context for cancellation
	//   - start: Window lower bound (inclusive)
	//   - end: Window upper bound (inclusive)
	//
	// Returns:
	//   - One IPAggregate per distinct IP address in the window
	//   - Error if the operation fails (catalog-missing is swallowed, see contract)
	AggregateByIP(ctx context.Context, start, end time.Time) ([]IPAggregate, error)
}

// PostgresAccessLogRepository is an implementation of AccessLogRepository for PostgreSQL.
type PostgresAccessLogRepository struct {
	db *database.Pool
}

// NewAccessLogRepository creates a new AccessLogRepository for PostgreSQL.
//
// Parameters:
//   - db: Database connection pool
//
// Returns:
//   - An implementation of AccessLogRepository
func NewAccessLogRepository(db *database.Pool) AccessLogRepository {
	return &PostgresAccessLogRepository{db: db}
}

// isCatalogMissing reports whether err is a PostgreSQL undefined-table or
// undefined-column error, the schema-level condition §4.A and §7 require
// callers to treat as an empty result rather than a failure.
func isCatalogMissing(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	code := string(pqErr.Code)
	return code == constants.PGErrorCatalogMissingTable || code == constants.PGErrorCatalogMissingColumn
}

// Insert durably appends a record.
func (r *PostgresAccessLogRepository) Insert(ctx context.Context, record *models.AccessRecord) error {
	query := fmt.Sprintf(
		`INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING %s, %s`,
		constants.TableAccessLogs,
		constants.ColumnIPAddress, constants.ColumnMethod, constants.ColumnURL, constants.ColumnPath,
		constants.ColumnStatusCode, constants.ColumnResponseTime, constants.ColumnUserAgent,
		constants.ColumnReferer, constants.ColumnTenantID, constants.ColumnUserID,
		constants.ColumnRequestBody, constants.ColumnError,
		constants.ColumnID, constants.ColumnCreatedAt,
	)

	start := time.Now()
	err := r.db.QueryRowContext(
		ctx, query,
		record.IPAddress, record.Method, record.URL, record.Path,
		record.StatusCode, record.ResponseTime.Milliseconds(), record.UserAgent,
		record.Referer, record.TenantID, record.UserID,
		record.RequestBody, record.Error,
	).Scan(&record.ID, &record.CreatedAt)
	utils.LogDBQuery(query, []interface{}{record.IPAddress, record.Method, record.Path}, time.Since(start), err)

	if err != nil {
		return fmt.Errorf("failed to insert access record: %w", err)
	}

	return nil
}

// buildFilterClause translates an AccessLogFilter into a WHERE clause and
// positional argument list, starting placeholder numbering at argOffset+1.
func buildFilterClause(filter AccessLogFilter, argOffset int) (string, []interface{}) {
	var clauses []string
	var args []interface{}
	n := argOffset

	add := func(column string, value interface{}) {
		n++
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
	}

	if filter.IPAddress != "" {
		add(constants.ColumnIPAddress, filter.IPAddress)
	}
	if filter.TenantID != "" {
		add(constants.ColumnTenantID, filter.TenantID)
	}
	if filter.UserID != "" {
		add(constants.ColumnUserID, filter.UserID)
	}
	if filter.Method != "" {
		add(constants.ColumnMethod, filter.Method)
	}
	if filter.Path != "" {
		n++
		clauses = append(clauses, fmt.Sprintf("%s LIKE $%d", constants.ColumnPath, n))
		args = append(args, "%"+filter.Path+"%")
	}
	if filter.HasStatusCode {
		add(constants.ColumnStatusCode, filter.StatusCode)
	}
	if !filter.StartDate.IsZero() {
		n++
		clauses = append(clauses, fmt.Sprintf("%s >= $%d", constants.ColumnCreatedAt, n))
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		n++
		clauses = append(clauses, fmt.Sprintf("%s <= $%d", constants.ColumnCreatedAt, n))
		args = append(args, filter.EndDate)
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// Query returns a filtered, paginated page of access records.
func (r *PostgresAccessLogRepository) Query(ctx context.Context, filter AccessLogFilter, pagination Pagination) ([]*models.AccessRecord, int, error) {
	whereClause, args := buildFilterClause(filter, 0)

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s%s`, constants.TableAccessLogs, whereClause)

	start := time.Now()
	var total int
	err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	utils.LogDBQuery(countQuery, args, time.Since(start), err)
	if err != nil {
		if isCatalogMissing(err) {
			log.Warn().Err(err).Msg("access log catalog missing; returning empty result")
			return []*models.AccessRecord{}, 0, nil
		}
		return nil, 0, fmt.Errorf("failed to count access records: %w", err)
	}

	if total == 0 {
		return []*models.AccessRecord{}, 0, nil
	}

	page := pagination.Page
	if page < 1 {
		page = 1
	}
	limit := pagination.Limit
	if limit < 1 {
		limit = constants.DefaultPageSize
	}
	offset := (page - 1) * limit

	selectQuery := fmt.Sprintf(
		`SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s
		 FROM %s%s
		 ORDER BY %s DESC, %s DESC
		 LIMIT $%d OFFSET $%d`,
		constants.ColumnID, constants.ColumnIPAddress, constants.ColumnMethod, constants.ColumnURL,
		constants.ColumnPath, constants.ColumnStatusCode, constants.ColumnResponseTime,
		constants.ColumnUserAgent, constants.ColumnReferer, constants.ColumnTenantID,
		constants.ColumnUserID, constants.ColumnRequestBody, constants.ColumnError,
		constants.TableAccessLogs, whereClause,
		constants.ColumnCreatedAt, constants.ColumnID,
		len(args)+1, len(args)+2,
	)

	selectArgs := append(append([]interface{}{}, args...), limit, offset)

	start = time.Now()
	rows, err := r.db.QueryContext(ctx, selectQuery, selectArgs...)
	utils.LogDBQuery(selectQuery, selectArgs, time.Since(start), err)
	if err != nil {
		if isCatalogMissing(err) {
			log.Warn().Err(err).Msg("access log catalog missing; returning empty result")
			return []*models.AccessRecord{}, 0, nil
		}
		return nil, 0, fmt.Errorf("failed to query access records: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close access record rows")
		}
	}()

	var records []*models.AccessRecord
	for rows.Next() {
		var responseMillis int64
		record := &models.AccessRecord{}
		if err := rows.Scan(
			&record.ID, &record.IPAddress, &record.Method, &record.URL,
			&record.Path, &record.StatusCode, &responseMillis,
			&record.UserAgent, &record.Referer, &record.TenantID,
			&record.UserID, &record.RequestBody, &record.Error,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan access record row: %w", err)
		}
		record.ResponseTime = time.Duration(responseMillis) * time.Millisecond
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating access record rows: %w", err)
	}

	if records == nil {
		records = []*models.AccessRecord{}
	}

	return records, total, nil
}

// AggregateByIP rolls up request counts per IP address within the window.
func (r *PostgresAccessLogRepository) AggregateByIP(ctx context.Context, start, end time.Time) ([]IPAggregate, error) {
	query := fmt.Sprintf(
		`SELECT %s, COUNT(*), MAX(%s)
		 FROM %s
		 WHERE %s IS NOT NULL AND %s >= $1 AND %s <= $2
		 GROUP BY %s`,
		constants.ColumnIPAddress, constants.ColumnCreatedAt,
		constants.TableAccessLogs,
		constants.ColumnIPAddress, constants.ColumnCreatedAt, constants.ColumnCreatedAt,
		constants.ColumnIPAddress,
	)

	queryStart := time.Now()
	rows, err := r.db.QueryContext(ctx, query, start, end)
	utils.LogDBQuery(query, []interface{}{start, end}, time.Since(queryStart), err)
	if err != nil {
		if isCatalogMissing(err) {
			log.Warn().Err(err).Msg("access log catalog missing; returning empty aggregate")
			return []IPAggregate{}, nil
		}
		return nil, fmt.Errorf("failed to aggregate access records by IP: %w", err)
	}
	defer rows.Close()

	var aggregates []IPAggregate
	for rows.Next() {
		var agg IPAggregate
		if err := rows.Scan(&agg.IPAddress, &agg.Count, &agg.MaxCreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan IP aggregate row: %w", err)
		}
		aggregates = append(aggregates, agg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating IP aggregate rows: %w", err)
	}

	if aggregates == nil {
		aggregates = []IPAggregate{}
	}

	return aggregates, nil
}

// IPDetail is the narrow per-IP projection the Detection Engine fetches
// to compute per-IP statistics (spec §4.D step 2.b): only the fields the
// scoring algorithm reads.
type IPDetail struct {
	StatusCode int
	Method     string
	Path       string
}

// AccessLogDetailRepository is a narrower companion interface exposing the
// per-IP detail query the Detection Engine needs, kept separate from
// AccessLogRepository so a fake used in engine tests need not implement
// pagination/aggregation it never exercises.
type AccessLogDetailRepository interface {
	// GetIPDetails returns {statusCode, method, path} for every record
	// belonging to ip within [start,end].
	GetIPDetails(ctx context.Context, ip string, start, end time.Time) ([]IPDetail, error)
}

// GetIPDetails returns the per-IP detail projection for the window.
func (r *PostgresAccessLogRepository) GetIPDetails(ctx context.Context, ip string, start, end time.Time) ([]IPDetail, error) {
	query := fmt.Sprintf(
		`SELECT %s, %s, %s
		 FROM %s
		 WHERE %s = $1 AND %s >= $2 AND %s <= $3`,
		constants.ColumnStatusCode, constants.ColumnMethod, constants.ColumnPath,
		constants.TableAccessLogs,
		constants.ColumnIPAddress, constants.ColumnCreatedAt, constants.ColumnCreatedAt,
	)

	start2 := time.Now()
	rows, err := r.db.QueryContext(ctx, query, ip, start, end)
	utils.LogDBQuery(query, []interface{}{ip, start, end}, time.Since(start2), err)
	if err != nil {
		if isCatalogMissing(err) {
			log.Warn().Err(err).Msg("access log catalog missing; returning empty detail set")
			return []IPDetail{}, nil
		}
		return nil, fmt.Errorf("failed to query IP details: %w", err)
	}
	defer rows.Close()

	var details []IPDetail
	for rows.Next() {
		var d IPDetail
		if err := rows.Scan(&d.StatusCode, &d.Method, &d.Path); err != nil {
			return nil, fmt.Errorf("failed to scan IP detail row: %w", err)
		}
		details = append(details, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating IP detail rows: %w", err)
	}

	if details == nil {
		details = []IPDetail{}
	}

	return details, nil
}
