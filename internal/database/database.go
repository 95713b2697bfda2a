package database

import (
	"context"
	"fmt"
	"time"

	"github.com/straye-as/crm-core/internal/config"
	"github.com/straye-as/crm-core/internal/domain"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase creates a new database connection
func NewDatabase(cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	dsn := cfg.ConnectionString()

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Database connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Name),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
	)

	return db, nil
}

// HealthCheck pings the database within the given context
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Models lists every persisted entity in dependency order
func Models() []interface{} {
	return []interface{}{
		&domain.Client{},
		&domain.Pipeline{},
		&domain.Stage{},
		&domain.Lead{},
		&domain.Activity{},
		&domain.Project{},
		&domain.ExpenseCategory{},
		&domain.Expense{},
		&domain.BudgetAlert{},
	}
}

// AutoMigrate runs automatic migrations (for development and tests only).
// Production schemas come from the goose migrations.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
