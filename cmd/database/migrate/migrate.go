package migration

import (
	"AgriWaste-Marketplace/entities"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB, log *logrus.Logger) error {
	// uuid_generate_v4 backs every primary key default
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		log.WithError(err).Error("error creating uuid-ossp extension")
		return err
	}

	models := []struct {
		name  string
		model any
	}{
		{"user", &entities.User{}},
		{"waste listing", &entities.WasteListing{}},
		{"order", &entities.Order{}},
		{"payment", &entities.Payment{}},
		{"query", &entities.Query{}},
		{"prediction log", &entities.PredictionLog{}},
		{"conversation", &entities.Conversation{}},
		{"message", &entities.Message{}},
		{"transport request", &entities.TransportRequest{}},
	}

	for _, m := range models {
		if err := db.AutoMigrate(m.model); err != nil {
			log.WithError(err).Errorf("error migrating %s table", m.name)
			return err
		}
	}

	log.Info("database migration complete")
	return nil
}
