package database

import (
	"fmt"

	"clubhub/internal/middleware"
	"clubhub/internal/models"

	"gorm.io/gorm"
)

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Club{},
		&models.Post{},
		&models.RSVP{},
		&models.ClubFollower{},
		&models.PostLike{},
	}
}

// ApplySchema migrates every persistent model. The composite unique indexes
// on the three interaction tables are created here.
func ApplySchema(db *gorm.DB) error {
	if err := db.AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	middleware.Logger.Info("Database migration completed")
	return nil
}
