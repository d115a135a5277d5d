package db

import (
	"github.com/ecyouth/portal/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDatabase(dsn string) error {
	var err error

	// TranslateError surfaces unique violations as gorm.ErrDuplicatedKey,
	// which the application handlers rely on for duplicate detection.
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})

	if err != nil {
		return err
	}

	return nil
}

func MigrateDatabase() error {
	models := []interface{}{
		&models.User{},
		&models.SavedOpportunity{},
		&models.Opportunity{},
		&models.Application{},
		&models.Report{},
		&models.WhatsAppSubmission{},
		&models.ForumPost{},
		&models.ForumComment{},
	}

	migrator := DB.Migrator()

	for _, model := range models {
		if !migrator.HasTable(model) {
			if err := DB.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}
