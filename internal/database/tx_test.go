package database_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/straye-as/crm-core/internal/database"
	"github.com/straye-as/crm-core/internal/domain"
	"github.com/straye-as/crm-core/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"lock not available", &pgconn.PgError{Code: "55P03"}, true},
		{"wrapped deadlock", fmt.Errorf("update stage: %w", &pgconn.PgError{Code: "40P01"}), true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"exhausted retries", fmt.Errorf("%w after 3 attempts", database.ErrTxConflict), true},
		{"plain error", errors.New("boom"), false},
		{"record not found", gorm.ErrRecordNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, database.IsRetryable(tt.err))
		})
	}
}

func TestTxRunner_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		runner := database.NewTxRunner(db, 3)

		err := runner.Run(ctx, func(tx *gorm.DB) error {
			return tx.Create(&domain.Client{Name: "Committed"}).Error
		})
		require.NoError(t, err)

		var count int64
		require.NoError(t, db.Model(&domain.Client{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("retries serialization failures then gives up", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		runner := database.NewTxRunner(db, 3)

		attempts := 0
		err := runner.Run(ctx, func(tx *gorm.DB) error {
			attempts++
			if err := tx.Create(&domain.Client{Name: "Rolled back"}).Error; err != nil {
				return err
			}
			return &pgconn.PgError{Code: "40001"}
		})

		assert.ErrorIs(t, err, database.ErrTxConflict)
		assert.Equal(t, 3, attempts)

		var count int64
		require.NoError(t, db.Model(&domain.Client{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("succeeds after a transient failure", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		runner := database.NewTxRunner(db, 3)

		attempts := 0
		err := runner.Run(ctx, func(tx *gorm.DB) error {
			attempts++
			if attempts == 1 {
				return &pgconn.PgError{Code: "40P01"}
			}
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 2, attempts)
	})

	t.Run("other errors are returned immediately", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		runner := database.NewTxRunner(db, 3)
		boom := errors.New("boom")

		attempts := 0
		err := runner.Run(ctx, func(tx *gorm.DB) error {
			attempts++
			return boom
		})

		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, attempts)
	})

	t.Run("non-positive budget uses the default", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		runner := database.NewTxRunner(db, 0)

		attempts := 0
		_ = runner.Run(ctx, func(tx *gorm.DB) error {
			attempts++
			return &pgconn.PgError{Code: "40001"}
		})
		assert.Equal(t, database.DefaultMaxTxRetries, attempts)
	})
}
