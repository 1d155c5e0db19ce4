package db

import (
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB wraps the GORM database connection
type DB struct {
	*gorm.DB
}

// NewDB creates a new GORM database connection.
// "file:" DSNs open a SQLite database, anything else goes to PostgreSQL.
func NewDB(connectionString string) (*DB, error) {
	if strings.HasPrefix(connectionString, "file:") {
		return Open(sqlite.Open(connectionString), 1)
	}
	return Open(postgres.Open(connectionString), 25)
}

// Open connects through dialector, sizes the pool and migrates the schema
func Open(dialector gorm.Dialector, maxOpenConns int) (*DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// Get underlying sql.DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(min(5, maxOpenConns))
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return &DB{DB: db}, nil
}

// Migrate auto-migrates the schema
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&PaymentMode{},
		&SaleOrder{},
		&PaymentTransaction{},
		&TransactionEvent{},
	)
}

// Close closes the database connection
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
