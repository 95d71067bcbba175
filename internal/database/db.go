package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"account/config"
	"account/internal/sessions"
	"account/internal/user"
)

type Database struct {
	*gorm.DB
}

func NewDatabase(cfg config.Postgres) (*Database, error) {
	// TranslateError turns driver duplicate-key failures into
	// gorm.ErrDuplicatedKey, which the user repository relies on as the
	// arbiter for identifier-uniqueness races.
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &Database{db}, nil
}

func (db *Database) Migrate() error {
	if err := db.AutoMigrate(&user.User{}, &sessions.Token{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
