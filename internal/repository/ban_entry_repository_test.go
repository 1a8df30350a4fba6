package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/sentrylog/internal/database"
	"github.com/yasinhessnawi1/sentrylog/internal/models"
	"github.com/yasinhessnawi1/sentrylog/internal/utils"
)

func setupDBMock(t *testing.T) (*database.Pool, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create mock database")

	pool := &database.Pool{DB: db}

	return pool, mock, func() {
		db.Close()
	}
}

func TestNewBanEntryRepository(t *testing.T) {
	pool, _, cleanup := setupDBMock(t)
	defer cleanup()

	repo := NewBanEntryRepository(pool)

	assert.NotNil(t, repo)
	assert.Implements(t, (*BanEntryRepository)(nil), repo)
}

func TestBanEntryRepository_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewBanEntryRepository(pool)

		ctx := context.Background()
		now := time.Now()
		expiry := now.Add(24 * time.Hour)
		ban := &models.BanEntry{
			IPAddress: "192.168.1.1",
			Reason:    "Test ban",
			ExpiresAt: &expiry,
			CreatedAt: now,
			BannedBy:  "admin",
		}

		mock.ExpectQuery("INSERT INTO ip_bans").
			WithArgs(ban.IPAddress, ban.Reason, ban.ExpiresAt, ban.CreatedAt, ban.BannedBy).
			WillReturnRows(sqlmock.NewRows([]string{"ban_id"}).AddRow(int64(1)))

		result, err := repo.Create(ctx, ban)

		assert.NoError(t, err)
		assert.Equal(t, int64(1), result.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewBanEntryRepository(pool)

		ctx := context.Background()
		ban := &models.BanEntry{IPAddress: "192.168.1.1", Reason: "Test ban", CreatedAt: time.Now(), BannedBy: "admin"}

		mock.ExpectQuery("INSERT INTO ip_bans").
			WithArgs(ban.IPAddress, ban.Reason, ban.ExpiresAt, ban.CreatedAt, ban.BannedBy).
			WillReturnError(errors.New("database error"))

		result, err := repo.Create(ctx, ban)

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "failed to create ban entry")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBanEntryRepository_Upsert(t *testing.T) {
	t.Run("Inserts a new row", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewBanEntryRepository(pool)

		ctx := context.Background()
		now := time.Now()
		ban := &models.BanEntry{IPAddress: "192.168.1.9", Reason: "abuse", CreatedAt: now, BannedBy: "admin"}

		mock.ExpectQuery("INSERT INTO ip_bans").
			WithArgs(ban.IPAddress, ban.Reason, ban.ExpiresAt, ban.CreatedAt, ban.BannedBy).
			WillReturnRows(sqlmock.NewRows([]string{"ban_id", "created_at"}).AddRow(int64(5), now))

		result, err := repo.Upsert(ctx, ban)

		assert.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, int64(5), result.ID)
		assert.Equal(t, "abuse", result.Reason)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Merges onto the existing row for the IP on conflict", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewBanEntryRepository(pool)

		ctx := context.Background()
		created := time.Now().Add(-time.Hour)
		expiry := time.Now().Add(time.Hour)
		ban := &models.BanEntry{IPAddress: "192.168.1.9", Reason: "repeated abuse", ExpiresAt: &expiry, CreatedAt: time.Now(), BannedBy: "admin2"}

		mock.ExpectQuery("INSERT INTO ip_bans").
			WithArgs(ban.IPAddress, ban.Reason, ban.ExpiresAt, ban.CreatedAt, ban.BannedBy).
			WillReturnRows(sqlmock.NewRows([]string{"ban_id", "created_at"}).AddRow(int64(5), created))

		result, err := repo.Upsert(ctx, ban)

		assert.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, int64(5), result.ID)
		assert.Equal(t, created, result.CreatedAt)
		assert.Equal(t, "repeated abuse", result.Reason)
		assert.Equal(t, "admin2", result.BannedBy)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database error", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewBanEntryRepository(pool)

		ctx := context.Background()
		ban := &models.BanEntry{IPAddress: "192.168.1.9", Reason: "abuse", CreatedAt: time.Now(), BannedBy: "admin"}

		mock.ExpectQuery("INSERT INTO ip_bans").
			WithArgs(ban.IPAddress, ban.Reason, ban.ExpiresAt, ban.CreatedAt, ban.BannedBy).
			WillReturnError(errors.New("database error"))

		result, err := repo.Upsert(ctx, ban)

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "failed to upsert ban entry")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBanEntryRepository_GetAll(t *testing.T) {
	pool, mock, cleanup := setupDBMock(t)
	defer cleanup()
	repo := NewBanEntryRepository(pool)

	ctx := context.Background()
	now := time.Now()
	expiry := now.Add(24 * time.Hour)

	rows := sqlmock.NewRows([]string{"ban_id", "ip_address", "reason", "expires_at", "created_at", "banned_by"}).
		AddRow(int64(1), "192.168.1.1", "Reason 1", expiry, now, "admin1").
		AddRow(int64(2), "192.168.1.2", "Reason 2", nil, now, "admin2")

	mock.ExpectQuery("SELECT ban_id").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(rows)

	results, err := repo.GetAll(ctx)

	assert.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "192.168.1.1", results[0].IPAddress)
	assert.Nil(t, results[1].ExpiresAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBanEntryRepository_GetActiveByIP(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewBanEntryRepository(pool)

		ctx := context.Background()
		now := time.Now()

		rows := sqlmock.NewRows([]string{"ban_id", "ip_address", "reason", "expires_at", "created_at", "banned_by"}).
			AddRow(int64(7), "10.0.0.1", "prior ban", nil, now, "system")

		mock.ExpectQuery("SELECT ban_id").
			WithArgs("10.0.0.1", sqlmock.AnyArg()).
			WillReturnRows(rows)

		ban, err := repo.GetActiveByIP(ctx, "10.0.0.1")

		assert.NoError(t, err)
		require.NotNil(t, ban)
		assert.Equal(t, int64(7), ban.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not found returns nil, no error", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewBanEntryRepository(pool)

		ctx := context.Background()

		mock.ExpectQuery("SELECT ban_id").
			WithArgs("10.0.0.1", sqlmock.AnyArg()).
			WillReturnError(sql.ErrNoRows)

		ban, err := repo.GetActiveByIP(ctx, "10.0.0.1")

		assert.NoError(t, err)
		assert.Nil(t, ban)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBanEntryRepository_UpdateActive(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewBanEntryRepository(pool)

		ctx := context.Background()

		mock.ExpectExec("UPDATE ip_bans SET").
			WithArgs("updated reason", sqlmock.AnyArg(), "admin2", int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateActive(ctx, 3, "updated reason", nil, "admin2")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not found", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewBanEntryRepository(pool)

		ctx := context.Background()

		mock.ExpectExec("UPDATE ip_bans SET").
			WithArgs("reason", sqlmock.AnyArg(), "admin", int64(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateActive(ctx, 99, "reason", nil, "admin")

		assert.Error(t, err)
		assert.True(t, utils.IsNotFoundError(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBanEntryRepository_Delete(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewBanEntryRepository(pool)

		ctx := context.Background()

		mock.ExpectExec("DELETE FROM ip_bans WHERE ban_id = \\$1").
			WithArgs(int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(ctx, 1)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not found", func(t *testing.T) {
		pool, mock, cleanup := setupDBMock(t)
		defer cleanup()
		repo := NewBanEntryRepository(pool)

		ctx := context.Background()

		mock.ExpectExec("DELETE FROM ip_bans WHERE ban_id = \\$1").
			WithArgs(int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(ctx, 1)

		assert.Error(t, err)
		assert.True(t, utils.IsNotFoundError(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBanEntryRepository_DeleteExpired(t *testing.T) {
	pool, mock, cleanup := setupDBMock(t)
	defer cleanup()
	repo := NewBanEntryRepository(pool)

	ctx := context.Background()

	mock.ExpectExec("DELETE FROM ip_bans WHERE expires_at < \\$1").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	count, err := repo.DeleteExpired(ctx)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
