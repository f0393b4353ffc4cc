package database

import (
	"fmt"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the tables for every model.
func AutoMigrate(db *gorm.DB) error {
	log.Debug().Str("dialect", db.Dialector.Name()).Msg("Running GORM auto-migration")
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
