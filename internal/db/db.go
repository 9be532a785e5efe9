package db

import (
	"fmt"
	stdlog "log"
	"time"

	"github.com/kabar-api/kabar-api/internal/config"
	"github.com/kabar-api/kabar-api/internal/logging"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the PostgreSQL pool.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.URL == "" {
		return nil, config.ErrMissingDatabaseURL
	}

	level := logger.Warn
	if cfg.LogQueries {
		level = logger.Info
	}
	slow := cfg.SlowThreshold
	if slow <= 0 {
		slow = 100 * time.Millisecond
	}

	// SQL and slow-query lines go through the structured logger.
	gl := logging.With("gorm")
	lg := logger.New(
		stdlog.New(&gl, "", 0),
		logger.Config{
			SlowThreshold:             slow,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	d, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{Logger: lg})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := d.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	logging.Info().Int("max_open_conns", cfg.MaxOpenConns).Msg("connected to database")
	return d, nil
}

// Close releases the pool behind d.
func Close(d *gorm.DB) {
	if d == nil {
		return
	}
	if sqlDB, err := d.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
