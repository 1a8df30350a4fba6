package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/sentrylog/internal/models"
)

func TestNewAccessLogRepository(t *testing.T) {
	pool, _, cleanup := setupDBMock(t)
	defer cleanup()

	repo := NewAccessLogRepository(pool)

	assert.NotNil(t, repo)
	assert.Implements(t, (*AccessLogRepository)(nil), repo)
}

func TestAccessLogRepository_Insert(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewAccessLogRepository(pool)

		record := &models.AccessRecord{
			IPAddress: "10.0.0.1", Method: "GET", URL: "http://x/a", Path: "/a",
			StatusCode: 200, ResponseTime: 150 * time.Millisecond, UserAgent: "curl", Referer: "",
		}

		now := time.Now()
		mock.ExpectQuery("INSERT INTO access_logs").
			WithArgs(record.IPAddress, record.Method, record.URL, record.Path, record.StatusCode,
				int64(150), record.UserAgent, record.Referer, record.TenantID, record.UserID,
				record.RequestBody, record.Error).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), now))

		err := repo.Insert(context.Background(), record)
		require.NoError(t, err)
		assert.Equal(t, int64(1), record.ID)
		assert.Equal(t, now, record.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database error propagates", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewAccessLogRepository(pool)

		record := &models.AccessRecord{IPAddress: "10.0.0.1", Method: "GET", Path: "/a", StatusCode: 200}

		mock.ExpectQuery("INSERT INTO access_logs").
			WithArgs(record.IPAddress, record.Method, record.URL, record.Path, record.StatusCode,
				int64(0), record.UserAgent, record.Referer, record.TenantID, record.UserID,
				record.RequestBody, record.Error).
			WillReturnError(errors.New("connection refused"))

		err := repo.Insert(context.Background(), record)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to insert access record")
	})
}

func TestAccessLogRepository_Query(t *testing.T) {
	t.Run("Returns filtered paginated page", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewAccessLogRepository(pool)

		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM access_logs").
			WithArgs("10.0.0.1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		rows := sqlmock.NewRows([]string{
			"id", "ip_address", "method", "url", "path", "status_code", "response_time",
			"user_agent", "referer", "tenant_id", "user_id", "request_body", "error",
		}).
			AddRow(int64(2), "10.0.0.1", "GET", "http://x/b", "/b", 200, int64(50), "ua", "", "", "", "", "").
			AddRow(int64(1), "10.0.0.1", "GET", "http://x/a", "/a", 200, int64(40), "ua", "", "", "", "", "")

		mock.ExpectQuery("SELECT id, ip_address").
			WithArgs("10.0.0.1", 50, 0).
			WillReturnRows(rows)

		records, total, err := repo.Query(context.Background(), AccessLogFilter{IPAddress: "10.0.0.1"}, Pagination{Page: 1, Limit: 50})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, records, 2)
		assert.Equal(t, int64(2), records[0].ID)
		assert.Equal(t, 50*time.Millisecond, records[0].ResponseTime)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Zero total short-circuits the select query", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewAccessLogRepository(pool)

		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM access_logs").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		records, total, err := repo.Query(context.Background(), AccessLogFilter{}, Pagination{Page: 1, Limit: 50})
		require.NoError(t, err)
		assert.Equal(t, 0, total)
		assert.Empty(t, records)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Catalog missing on count returns empty result, not error", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewAccessLogRepository(pool)

		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM access_logs").
			WillReturnError(&pq.Error{Code: "42P01", Message: "relation \"access_logs\" does not exist"})

		records, total, err := repo.Query(context.Background(), AccessLogFilter{}, Pagination{Page: 1, Limit: 50})
		require.NoError(t, err)
		assert.Equal(t, 0, total)
		assert.Empty(t, records)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Other count error propagates", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewAccessLogRepository(pool)

		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM access_logs").
			WillReturnError(errors.New("connection reset"))

		_, _, err := repo.Query(context.Background(), AccessLogFilter{}, Pagination{Page: 1, Limit: 50})
		assert.Error(t, err)
	})

	t.Run("Catalog missing on select returns empty result, not error", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewAccessLogRepository(pool)

		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM access_logs").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("SELECT id, ip_address").
			WillReturnError(&pq.Error{Code: "42703", Message: "column does not exist"})

		records, total, err := repo.Query(context.Background(), AccessLogFilter{}, Pagination{Page: 1, Limit: 50})
		require.NoError(t, err)
		assert.Equal(t, 0, total)
		assert.Empty(t, records)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Path filter uses LIKE substring match", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewAccessLogRepository(pool)

		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM access_logs WHERE path LIKE \\$1").
			WithArgs("%admin%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		_, _, err := repo.Query(context.Background(), AccessLogFilter{Path: "admin"}, Pagination{Page: 1, Limit: 50})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Limit and page are clamped to sane defaults", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewAccessLogRepository(pool)

		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM access_logs").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		rows := sqlmock.NewRows([]string{
			"id", "ip_address", "method", "url", "path", "status_code", "response_time",
			"user_agent", "referer", "tenant_id", "user_id", "request_body", "error",
		}).AddRow(int64(1), "10.0.0.1", "GET", "http://x/a", "/a", 200, int64(1), "", "", "", "", "", "")

		mock.ExpectQuery("SELECT id, ip_address").
			WithArgs(20, 0).
			WillReturnRows(rows)

		_, _, err := repo.Query(context.Background(), AccessLogFilter{}, Pagination{Page: 0, Limit: 0})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccessLogRepository_AggregateByIP(t *testing.T) {
	t.Run("Returns per-IP rollup", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewAccessLogRepository(pool)

		start := time.Now().Add(-time.Hour)
		end := time.Now()
		now := time.Now()

		rows := sqlmock.NewRows([]string{"ip_address", "count", "max_created_at"}).
			AddRow("10.0.0.1", 10, now).
			AddRow("10.0.0.2", 5, now)

		mock.ExpectQuery("SELECT ip_address, COUNT\\(\\*\\), MAX\\(created_at\\)").
			WithArgs(start, end).
			WillReturnRows(rows)

		aggregates, err := repo.AggregateByIP(context.Background(), start, end)
		require.NoError(t, err)
		require.Len(t, aggregates, 2)
		assert.Equal(t, "10.0.0.1", aggregates[0].IPAddress)
		assert.Equal(t, 10, aggregates[0].Count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Catalog missing returns empty aggregate", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewAccessLogRepository(pool)

		start := time.Now().Add(-time.Hour)
		end := time.Now()

		mock.ExpectQuery("SELECT ip_address, COUNT\\(\\*\\), MAX\\(created_at\\)").
			WithArgs(start, end).
			WillReturnError(&pq.Error{Code: "42P01", Message: "relation does not exist"})

		aggregates, err := repo.AggregateByIP(context.Background(), start, end)
		require.NoError(t, err)
		assert.Empty(t, aggregates)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Other error propagates", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewAccessLogRepository(pool)

		start := time.Now().Add(-time.Hour)
		end := time.Now()

		mock.ExpectQuery("SELECT ip_address, COUNT\\(\\*\\), MAX\\(created_at\\)").
			WithArgs(start, end).
			WillReturnError(errors.New("disk full"))

		_, err := repo.AggregateByIP(context.Background(), start, end)
		assert.Error(t, err)
	})
}

func TestAccessLogRepository_GetIPDetails(t *testing.T) {
	t.Run("Returns detail projection", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewAccessLogRepository(pool)

		start := time.Now().Add(-time.Hour)
		end := time.Now()

		rows := sqlmock.NewRows([]string{"status_code", "method", "path"}).
			AddRow(200, "GET", "/a").
			AddRow(404, "GET", "/missing")

		mock.ExpectQuery("SELECT status_code, method, path").
			WithArgs("10.0.0.1", start, end).
			WillReturnRows(rows)

		details, err := repo.GetIPDetails(context.Background(), "10.0.0.1", start, end)
		require.NoError(t, err)
		require.Len(t, details, 2)
		assert.Equal(t, 404, details[1].StatusCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Catalog missing returns empty detail set", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewAccessLogRepository(pool)

		start := time.Now().Add(-time.Hour)
		end := time.Now()

		mock.ExpectQuery("SELECT status_code, method, path").
			WithArgs("10.0.0.1", start, end).
			WillReturnError(&pq.Error{Code: "42703", Message: "column does not exist"})

		details, err := repo.GetIPDetails(context.Background(), "10.0.0.1", start, end)
		require.NoError(t, err)
		assert.Empty(t, details)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
