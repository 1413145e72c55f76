package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hotel-market-backend/config"
	"hotel-market-backend/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// Migrate runs schema migrations and supporting index DDL. Exposed
// separately so tests can run it against an in-memory database.
func Migrate(db *gorm.DB) error {
	log.Println("Running database migrations...")
	if err := db.AutoMigrate(
		&model.Listing{},
		&model.PriceSample{},
		&model.MarketSnapshot{},
		&model.AlertSubscription{},
		&model.SubscriptionCity{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}

	// Query-path indexes AutoMigrate does not cover.
	ddls := []string{
		"CREATE INDEX IF NOT EXISTS idx_price_samples_listing_ts ON price_samples (listing_id, timestamp DESC);",
		"CREATE INDEX IF NOT EXISTS idx_snapshots_city_date_desc ON market_snapshots (city, analysis_date DESC);",
	}
	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			log.Printf("DDL execution warning (query: %q): %v", ddl, err)
		}
	}
	return nil
}
