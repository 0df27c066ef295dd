package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/savitara/dharma-assistant/internal/models"
)

// DB is the global database handle.
var DB *gorm.DB

// Config holds database settings.
type Config struct {
	Type         string        // database type, currently sqlite
	DSN          string        // data source name
	MaxOpenConns int           // connection pool size
	MaxIdleConns int           // idle connections kept
	MaxLifetime  time.Duration // connection max lifetime
}

// DefaultConfig returns the standard database settings.
func DefaultConfig() *Config {
	return &Config{
		Type:         "sqlite",
		DSN:          "data/assistant.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		MaxLifetime:  time.Hour,
	}
}

// Setup opens the database, configures the pool and migrates the
// models. The handle is stored in the package-level DB.
func Setup(cfg *Config, log *logrus.Logger) error {
	db, err := open(cfg, log)
	if err != nil {
		return err
	}

	if err := pool(db, cfg); err != nil {
		return err
	}

	if err := db.AutoMigrate(&models.Document{}, &models.DocumentChunk{}); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	DB = db
	log.WithField("dsn", cfg.DSN).Info("database ready")
	return nil
}

func open(cfg *Config, log *logrus.Logger) (*gorm.DB, error) {
	if cfg.Type != "sqlite" {
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	if dir := filepath.Dir(cfg.DSN); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("cannot create database directory %s: %w", dir, err)
		}
	}

	db, err := gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{
		Logger: logger.New(&logrusWriter{log}, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("cannot open database %s: %w", cfg.DSN, err)
	}
	return db, nil
}

func pool(db *gorm.DB, cfg *Config) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("cannot access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.MaxLifetime)
	return nil
}

// Close closes the database connection.
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("cannot access connection pool: %w", err)
	}
	return sqlDB.Close()
}

// logrusWriter forwards gorm logs to logrus.
type logrusWriter struct {
	logger *logrus.Logger
}

// Printf implements the gorm logger writer interface.
func (w *logrusWriter) Printf(format string, args ...interface{}) {
	w.logger.Tracef(format, args...)
}
