package entities

import (
	"time"

	"github.com/google/uuid"
)

type TransportRequest struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	OrderID       uuid.UUID  `gorm:"index" json:"order_id"`
	RequesterID   uuid.UUID  `gorm:"index" json:"requester_id"`
	BuyerID       uuid.UUID  `gorm:"index" json:"buyer_id"`
	FarmerID      uuid.UUID  `gorm:"index" json:"farmer_id"`
	PickupAddress string     `json:"pickup_address"`
	DropAddress   string     `json:"drop_address"`
	VehicleType   string     `json:"vehicle_type"` // tractor, mini_truck, truck
	ScheduledAt   time.Time  `json:"scheduled_at"`
	Status        string     `gorm:"index" json:"status"` // requested, assigned, in_transit, delivered, cancelled
	DriverName    string     `json:"driver_name,omitempty"`
	DriverPhone   string     `json:"driver_phone,omitempty"`
	DeliveredAt   *time.Time `json:"delivered_at,omitempty"`
	Version       int        `gorm:"not null;default:1" json:"version"`

	Order *Order `gorm:"foreignKey:OrderID"`
	Timestamp
}
