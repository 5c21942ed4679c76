package database

import (
	"context"
	"fmt"

	"github.com/dorcasbeulah27/PowerOil-Backend/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate creates or updates every table the service uses
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	zap.L().Info("database migration completed")
	return nil
}
