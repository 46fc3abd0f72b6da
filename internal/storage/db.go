package storage

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"support-relay/internal/config"
	"support-relay/internal/logger"
)

var (
	// DB is the global database connection
	DB *gorm.DB
)

// Initialize sets up the global database connection based on configuration
func Initialize(cfg *config.Config) error {
	db, err := Open(cfg)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// Open connects to the configured database and sizes its connection pool.
func Open(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.Database)
	if err != nil {
		return nil, err
	}

	logger.Infof("Connecting to %s database: %s:%d/%s", cfg.Database.Driver, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  NewCustomGormLogger(cfg.Logger.Level),
		NowFunc: NowUTC,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	logger.Infof("Database connection established successfully")
	return db, nil
}

func dialectorFor(db config.DatabaseConfig) (gorm.Dialector, error) {
	switch db.Driver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=UTC",
			db.Username, db.Password, db.Host, db.Port, db.DBName, db.Charset)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			db.Host, db.Port, db.Username, db.Password, db.DBName, db.SSLMode)
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(db.Path), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", db.Driver)
}

// NowUTC is the clock used for every stored timestamp.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// GetDB returns the database connection
func GetDB() *gorm.DB {
	return DB
}

// Close releases the pooled connections.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
