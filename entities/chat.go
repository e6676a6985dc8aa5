package entities

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	ListingID       uuid.UUID `gorm:"index" json:"listing_id"`
	BuyerID         uuid.UUID `gorm:"index" json:"buyer_id"`
	FarmerID        uuid.UUID `gorm:"index" json:"farmer_id"`
	LastMessageTime time.Time `json:"last_message_time"`

	Listing  *WasteListing `gorm:"foreignKey:ListingID"`
	Buyer    *User         `gorm:"foreignKey:BuyerID"`
	Farmer   *User         `gorm:"foreignKey:FarmerID"`
	Messages []*Message    `gorm:"foreignKey:ConversationID"`
	Timestamp
}

type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	ConversationID uuid.UUID `gorm:"index" json:"conversation_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"is_read"`

	Conversation *Conversation `gorm:"foreignKey:ConversationID"`
	Sender       *User         `gorm:"foreignKey:SenderID"`
	Timestamp
}
