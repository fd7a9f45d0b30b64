package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Connect opens the shared store. A postgres DSN takes priority when
// provided; otherwise the store is a single local sqlite file.
func Connect(postgresDSN string, sqlitePath string) (*gorm.DB, error) {
	if postgresDSN != "" {
		return ConnectPostgres(postgresDSN)
	}

	return ConnectSQLite(sqlitePath)
}

// ConnectSQLite opens the local sqlite data file, creating it on first
// use.
func ConnectSQLite(path string) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path must not be empty")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return db, nil
}

// ConnectPostgres establishes a connection to PostgreSQL using the provided DSN.
func ConnectPostgres(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn must not be empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return db, nil
}
