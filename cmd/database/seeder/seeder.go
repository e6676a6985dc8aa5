package seeder

import (
	"errors"

	"AgriWaste-Marketplace/domain"
	"AgriWaste-Marketplace/entities"
	"AgriWaste-Marketplace/internal/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrAdminCredentialsMissing = errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set to seed the admin account")

// SeedAdmin creates the admin account from ADMIN_EMAIL and ADMIN_PASSWORD.
// Admins cannot self-register, so this is the only way one is created.
// An existing account with that email is left untouched.
func SeedAdmin(db *gorm.DB, log *logrus.Logger) error {
	email := utils.GetConfig("ADMIN_EMAIL")
	password := utils.GetConfig("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return ErrAdminCredentialsMissing
	}

	var count int64
	if err := db.Model(&entities.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.WithField("email", email).Info("admin account already exists, skipping seed")
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := entities.User{
		Name:         "Administrator",
		Email:        email,
		Password:     string(hashed),
		Role:         domain.RoleAdmin,
		Status:       domain.UserStatusActive,
		AuthProvider: domain.AuthProviderLocal,
		IsVerified:   true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.WithField("email", email).Info("admin account seeded")
	return nil
}
