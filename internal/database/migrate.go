package database

import (
	"gorm.io/gorm"

	"github.com/noah-isme/gema-learn-api/internal/models"
)

// Migrate creates or updates the schema for every persisted model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Rubric{},
		&models.Course{},
		&models.Lesson{},
		&models.Submission{},
		&models.SubmissionGradeHistory{},
		&models.SiteContent{},
	)
}
