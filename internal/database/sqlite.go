package database

import (
	"fmt"

	"github.com/MarcoPoloResearchLab/roster/internal/users"
	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options controls the one-time data migrations run when the database opens.
type Options struct {
	// SeedDemoUsers inserts the demo users once, the first time it is enabled.
	SeedDemoUsers bool
	IDProvider    users.IDProvider
}

// OpenSQLite establishes a SQLite connection and performs schema migrations.
func OpenSQLite(path string, options Options, logger *zap.Logger) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&users.RecordRow{}, &migrationRecord{}); err != nil {
		return nil, err
	}

	if err := applyMigrations(db, migrationsFor(options), logger); err != nil {
		return nil, err
	}

	logger.Info("database initialized", zap.String("path", path), zap.Bool("seed_demo_users", options.SeedDemoUsers))
	return db, nil
}
