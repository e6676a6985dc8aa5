package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WasteListing struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	FarmerID      uuid.UUID       `gorm:"index" json:"farmer_id"`
	WasteType     string          `json:"waste_type"`
	Description   string          `json:"description"`
	Quantity      decimal.Decimal `gorm:"type:numeric(14,2)" json:"quantity"`
	Unit          string          `json:"unit"` // kg, ton, quintal
	Price         decimal.Decimal `gorm:"type:numeric(14,2)" json:"price"`
	Location      string          `json:"location"`
	AvailableFrom *time.Time      `json:"available_from,omitempty"`
	ImageURL      string          `json:"image_url,omitempty"`
	Status        string          `gorm:"index" json:"status"` // available, pending, sold
	Version       int             `gorm:"not null;default:1" json:"version"`

	Farmer *User `gorm:"foreignKey:FarmerID"`
	Timestamp
}
