package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Order struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	BuyerID       uuid.UUID       `gorm:"index" json:"buyer_id"`
	FarmerID      uuid.UUID       `gorm:"index" json:"farmer_id"`
	ListingID     uuid.UUID       `gorm:"index" json:"listing_id"`
	WasteType     string          `json:"waste_type"`
	Unit          string          `json:"unit"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(14,2)" json:"unit_price"`
	Quantity      decimal.Decimal `gorm:"type:numeric(14,2)" json:"quantity"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(16,2)" json:"total_amount"`
	Notes         string          `json:"notes,omitempty"`
	BuyerContact  string          `json:"buyer_contact,omitempty"`
	Status        string          `gorm:"index" json:"status"` // pending, confirmed, completed, cancelled
	PaymentStatus string          `json:"payment_status"`      // unpaid, pending, paid, failed
	Version       int             `gorm:"not null;default:1" json:"version"`
	ConfirmedAt   *time.Time      `json:"confirmed_at,omitempty"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
	CancelledAt   *time.Time      `json:"cancelled_at,omitempty"`

	Buyer   *User         `gorm:"foreignKey:BuyerID"`
	Farmer  *User         `gorm:"foreignKey:FarmerID"`
	Listing *WasteListing `gorm:"foreignKey:ListingID"`
	Timestamp
}

type Payment struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	OrderID        uuid.UUID       `gorm:"index" json:"order_id"`
	BuyerID        uuid.UUID       `gorm:"index" json:"buyer_id"`
	GatewayOrderID string          `gorm:"uniqueIndex" json:"gateway_order_id"`
	Amount         decimal.Decimal `gorm:"type:numeric(16,2)" json:"amount"`
	Status         string          `json:"status"` // pending, settlement, capture, deny, cancel, expire, failure
	RedirectURL    string          `json:"redirect_url"`

	Order *Order `gorm:"foreignKey:OrderID"`
	Timestamp
}
