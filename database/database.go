package database

import (
	"fmt"

	"salespulse-wa/config"
	"salespulse-wa/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the Postgres connection and migrates the schema.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// AutoMigrate creates any missing tables. Existing tables are left alone so
// reruns are cheap.
func AutoMigrate(db *gorm.DB) error {
	tables := []interface{}{
		&models.Company{},
		&models.MessagingInstance{},
		&models.Salesperson{},
		&models.Conversation{},
		&models.Message{},
		&models.Analysis{},
		&models.DailyMetric{},
		&models.PromptConfig{},
		&models.AppConfig{},
	}

	for _, table := range tables {
		if db.Migrator().HasTable(table) {
			continue
		}
		if err := db.AutoMigrate(table); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", table, err)
		}
	}

	return nil
}
