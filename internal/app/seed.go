package app

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"edujobs_backend/internal/auth"
	"edujobs_backend/internal/config"
	"edujobs_backend/internal/models"

	"gorm.io/gorm"
)

// seedFirstAdmin creates the configured admin account once.
// An existing account with that email is left untouched.
func seedFirstAdmin(db *gorm.DB, cfg *config.Config, hasher *auth.Hasher, log *slog.Logger) error {
	adminEmail := strings.ToLower(strings.TrimSpace(cfg.Admin.Email))
	if adminEmail == "" || cfg.Admin.Password == "" {
		log.Warn("ADMIN_EMAIL or ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Select("id").Where("email = ?", adminEmail).First(&existing).Error
		if err == nil {
			log.Info("admin user already exists, skipping creation", "email", adminEmail)
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check for admin user: %w", err)
		}

		hash, err := hasher.Hash(cfg.Admin.Password)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}

		admin := &models.User{
			FirstName:       cfg.Admin.FirstName,
			LastName:        cfg.Admin.LastName,
			Email:           adminEmail,
			PasswordHash:    hash,
			Role:            auth.RoleAdmin,
			IsActive:        true,
			IsEmailVerified: true,
		}
		if err := tx.Create(admin).Error; err != nil {
			return fmt.Errorf("create admin user: %w", err)
		}

		log.Warn("created first admin user", "email", adminEmail)
		return nil
	})
}
