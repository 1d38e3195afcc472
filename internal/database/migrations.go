package database

import (
	"errors"
	"time"

	"github.com/MarcoPoloResearchLab/roster/internal/users"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const migrationSeedDemoUsers = "2026-10-19_seed_demo_users"

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func migrationsFor(options Options) []migrationDefinition {
	migrations := make([]migrationDefinition, 0, 1)
	if options.SeedDemoUsers {
		ids := options.IDProvider
		if ids == nil {
			ids = users.NewUUIDProvider()
		}
		migrations = append(migrations, migrationDefinition{
			name: migrationSeedDemoUsers,
			apply: func(db *gorm.DB) error {
				return seedDemoUsers(db, ids)
			},
		})
	}
	return migrations
}

func applyMigrations(db *gorm.DB, migrations []migrationDefinition, logger *zap.Logger) error {
	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := migration.apply(tx); err != nil {
				return err
			}
			appliedAt := time.Now().UTC().Unix()
			return tx.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error
		})
		if err != nil {
			return err
		}
		logger.Info("database migration applied", zap.String("migration", migration.name))
	}
	return nil
}

// seedDemoUsers appends the demo users in order. Existing rows are left alone.
func seedDemoUsers(db *gorm.DB, ids users.IDProvider) error {
	for _, fields := range users.DemoSeed() {
		id, err := ids.NewID()
		if err != nil {
			return err
		}
		row := users.NewRecordRow(id, fields)
		if err := db.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}
