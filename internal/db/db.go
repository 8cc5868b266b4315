package db

import (
	"errors"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PoolSettings bounds the underlying sql.DB connection pool.
type PoolSettings struct {
	MaxOpenConns        int
	MaxIdleConns        int
	ConnMaxLifetimeSecs int
	ConnMaxIdleTimeSecs int
}

// Open connects to Postgres using DATABASE_URL.
func Open(pool PoolSettings) (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetimeSecs > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetimeSecs) * time.Second)
	}
	if pool.ConnMaxIdleTimeSecs > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(pool.ConnMaxIdleTimeSecs) * time.Second)
	}
	return conn, nil
}

// Migrate runs GORM auto-migrations for the core tables.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("db connection is nil")
	}
	if err := conn.AutoMigrate(
		&Room{},
		&Member{},
		&Answer{},
		&Profile{},
		&Vote{},
		&Result{},
		&Event{},
		&QuestionLibrary{},
	); err != nil {
		return err
	}
	log.Println("database migration complete")
	return nil
}
