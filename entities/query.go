package entities

import (
	"time"

	"github.com/google/uuid"
)

type Query struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	RequesterID     uuid.UUID  `gorm:"index" json:"requester_id"`
	RequesterRole   string     `json:"requester_role"`
	Subject         string     `json:"subject"`
	Message         string     `json:"message"`
	Status          string     `gorm:"index" json:"status"` // pending, approved, rejected
	ResponseMessage string     `json:"response_message,omitempty"`
	RespondedBy     *uuid.UUID `json:"responded_by,omitempty"`
	RespondedAt     *time.Time `json:"responded_at,omitempty"`
	Version         int        `gorm:"not null;default:1" json:"version"`

	Requester *User `gorm:"foreignKey:RequesterID"`
	Timestamp
}
