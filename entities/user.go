package entities

import (
	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Name           string    `json:"name"`
	Email          string    `gorm:"uniqueIndex" json:"email"`
	Password       string    `json:"-"`
	Phone          string    `json:"phone,omitempty"`
	Address        string    `json:"address,omitempty"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	Role           string    `gorm:"index" json:"role"`   // farmer, buyer, admin
	Status         string    `gorm:"index" json:"status"` // active, blocked, pending
	AuthProvider   string    `json:"auth_provider"`       // local, google
	IsVerified     bool      `json:"is_verified"`
	Version        int       `gorm:"not null;default:1" json:"version"`

	Timestamp
}
