package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Revocation reasons recorded on the ledger
const (
	RevokeReasonLogout            = "logout"
	RevokeReasonLogoutAll         = "logout-all"
	RevokeReasonIdleTimeout       = "idle-timeout"
	RevokeReasonAbsoluteTimeout   = "absolute-timeout"
	RevokeReasonPasswordReset     = "password-reset"
	RevokeReasonSecurityViolation = "security-violation"
	RevokeReasonSessionEvicted    = "session-evicted"
	RevokeReasonRotated           = "rotated"
)

// RevokedToken is one ledger entry. Only the SHA-256 hash of the raw token is
// stored; ExpiresAt is copied from the token so the entry can be pruned once
// the token could no longer be replayed anyway.
type RevokedToken struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	TokenHash string    `json:"token_hash" gorm:"size:64;uniqueIndex;not null"`
	TokenKind string    `json:"token_kind" gorm:"size:20;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
	Reason    string    `json:"reason" gorm:"size:50;not null"`
	RevokedAt time.Time `json:"revoked_at" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (t *RevokedToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
