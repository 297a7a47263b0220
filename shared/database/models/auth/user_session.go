package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserSession tracks one logged-in device/browser per row. A refresh cycle
// keeps the same session; only the token hashes rotate.
type UserSession struct {
	ID                    uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID                uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	AccessTokenHash       string    `json:"-" gorm:"size:64;not null;index"`
	AccessTokenExpiresAt  time.Time `json:"-" gorm:"not null"`
	RefreshTokenHash      string    `json:"-" gorm:"size:64;not null;index"`
	RefreshTokenExpiresAt time.Time `json:"-" gorm:"not null"`
	DeviceInfo            string    `json:"device_info" gorm:"size:500"`
	UserAgent             string    `json:"user_agent" gorm:"size:500"`
	IPAddress             string    `json:"ip_address" gorm:"size:50"`
	IsActive              bool      `json:"is_active" gorm:"default:true"`
	LastUsedAt            time.Time `json:"last_used_at" gorm:"not null"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func (s *UserSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
