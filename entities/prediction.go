package entities

import (
	"github.com/google/uuid"
)

type PredictionLog struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	FarmerID       uuid.UUID `gorm:"index" json:"farmer_id"`
	Kind           string    `json:"kind"` // waste, price
	CropType       string    `json:"crop_type"`
	WasteType      string    `json:"waste_type"`
	FarmSize       float64   `json:"farm_size"`
	PredictedWaste float64   `json:"predicted_waste"`
	WastePrice     float64   `json:"waste_price,omitempty"`

	Timestamp
}
