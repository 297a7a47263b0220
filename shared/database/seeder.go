package database

import (
	"fmt"
	"log"

	"ultrabms-backend/shared/config"
	"ultrabms-backend/shared/database/models"
	utils "ultrabms-backend/shared/utils/auth"
)

// SeedAdminUser creates the administrator account from configuration when it
// does not exist yet. Idempotent, safe to run at every deploy.
func SeedAdminUser() error {
	cfg := config.GetConfig()

	var existing models.User
	if err := DB.Where("email = ?", cfg.AdminEmail).First(&existing).Error; err == nil {
		log.Println("✅ Admin user already exists - skipping")
		return nil
	}

	hashedPassword, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("could not hash admin password: %w", err)
	}

	admin := models.User{
		Email:     cfg.AdminEmail,
		Password:  hashedPassword,
		FirstName: "System",
		LastName:  "Administrator",
		Role:      models.RoleAdmin,
		Status:    "ACTIVE",
	}

	if err := DB.Create(&admin).Error; err != nil {
		return fmt.Errorf("could not create admin user: %w", err)
	}

	log.Printf("✅ Admin user created: %s", cfg.AdminEmail)
	return nil
}
