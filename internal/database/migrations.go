package database

import (
	"strings"

	"gorm.io/gorm"

	"github.com/bengalbreeze/backend/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.Review{},
		&models.WishlistEntry{},
	)
}

// SeedConfig controls optional bootstrap data inserted on first start.
type SeedConfig struct {
	// AdminEmail, when set, guarantees an administrator account exists.
	// Role grants normally require an existing admin; without this there
	// would be no way to mint the first one.
	AdminEmail string
	AdminName  string
}

// SeedData ensures the bootstrap administrator is present. Re-running is a
// no-op: an existing account keeps its current attributes except the role,
// which is lifted to admin if it had been lowered.
func SeedData(db *gorm.DB, cfg SeedConfig) error {
	email := strings.TrimSpace(cfg.AdminEmail)
	if email == "" {
		return nil
	}

	admin := models.User{
		Name:  strings.TrimSpace(cfg.AdminName),
		Email: email,
		Role:  models.RoleAdmin,
	}

	var existing models.User
	err := db.Where(models.User{Email: email}).Attrs(admin).FirstOrCreate(&existing).Error
	if err != nil {
		return err
	}

	if existing.Role != models.RoleAdmin {
		return db.Model(&existing).Update("role", models.RoleAdmin).Error
	}

	return nil
}
