package database

import (
	"fmt"

	"github.com/gdg-garage/devotional-api/internal/config"
	"github.com/gdg-garage/devotional-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the configured database and migrates the schema.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DatabaseURL)
	default:
		dialector = sqlite.Open(cfg.DatabasePath)
	}

	db, err := gorm.Open(dialector, Options())
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.DatabaseDriver, err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Options are shared by Connect and the in-memory test databases.
// TranslateError maps driver unique violations to gorm.ErrDuplicatedKey.
func Options() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Profile{},
		&models.UserRole{},
		&models.APIKey{},
		&models.CompletionRecord{},
		&models.EarnedMedal{},
		&models.DisplaySelection{},
		&models.AchievementDefinition{},
		&models.UserAchievement{},
		&models.PrayerRequest{},
		&models.Interaction{},
		&models.Report{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
