package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

func getLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             time.Second, // Slow SQL threshold
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true, // Don't include params in the SQL log
			Colorful:                  true,
		},
	)
}

func configureConnectionPool(db *gorm.DB, maxOpen int) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return nil
}

func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverPostgres, "":
		return postgres.Open(dsn), nil
	case DriverMySQL:
		return mysql.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// NewGormDB opens a pooled connection for the given driver.
func NewGormDB(driver, dsn string) (*gorm.DB, error) {
	d, err := dialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger: getLogger(),
	})
	if err != nil {
		return nil, err
	}

	// SQLite serialises writers anyway; a single connection avoids SQLITE_BUSY
	// and keeps ":memory:" databases on one handle.
	maxOpen := 100
	if driver == DriverSQLite {
		maxOpen = 1
	}
	if err := configureConnectionPool(db, maxOpen); err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		if err := enableSQLiteForeignKeys(db); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// enableSQLiteForeignKeys turns on FK enforcement, which SQLite keeps per
// connection. The pool holds exactly one connection for SQLite, so it is
// never recycled.
func enableSQLiteForeignKeys(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetConnMaxLifetime(0)
	return db.Exec("PRAGMA foreign_keys = ON").Error
}

// NewGormDBFromDSN keeps the postgres-only entrypoint.
func NewGormDBFromDSN(dsn string) (*gorm.DB, error) {
	return NewGormDB(DriverPostgres, dsn)
}

// NewInMemorySQLite returns a quiet single-connection in-memory database.
func NewInMemorySQLite() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := configureConnectionPool(db, 1); err != nil {
		return nil, err
	}
	if err := enableSQLiteForeignKeys(db); err != nil {
		return nil, err
	}
	return db, nil
}
