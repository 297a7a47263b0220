package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ultrabms-backend/shared/database/models/auth"
	utils "ultrabms-backend/shared/utils/auth"
	"ultrabms-backend/shared/utils/cache"
)

// RevocationLedger makes tokens unusable before their natural expiry. The
// database table is the authoritative store; Redis is a fast-path keyed by
// the same hash. A revocation written here is visible to every subsequent
// check on any worker.
type RevocationLedger struct {
	db *gorm.DB
}

// NewRevocationLedger creates a ledger backed by the given database
func NewRevocationLedger(db *gorm.DB) *RevocationLedger {
	return &RevocationLedger{db: db}
}

// Revoke records the token as revoked. The raw token is hashed and discarded;
// expiresAt is copied from the token claims so Prune knows when the entry is
// safe to drop.
func (l *RevocationLedger) Revoke(rawToken string, kind utils.TokenKind, expiresAt time.Time, reason string) error {
	return l.RevokeHash(utils.HashToken(rawToken), kind, expiresAt, reason)
}

// RevokeHash records a revocation for an already-hashed token. Used when
// evicting sessions, where only hashes are on record. Concurrent revocations
// of the same hash are expected (the sweep racing a logout for one session);
// the first writer wins and the rest are no-ops on the unique hash index.
func (l *RevocationLedger) RevokeHash(tokenHash string, kind utils.TokenKind, expiresAt time.Time, reason string) error {
	entry := auth.RevokedToken{
		TokenHash: tokenHash,
		TokenKind: string(kind),
		ExpiresAt: expiresAt,
		Reason:    reason,
		RevokedAt: time.Now(),
	}

	if err := l.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token_hash"}},
		DoNothing: true,
	}).Create(&entry).Error; err != nil {
		return fmt.Errorf("could not record revocation: %w", err)
	}

	// Fast-path entry self-expires with the token; failures here are fine
	// because the database row above is authoritative.
	if cm := cache.GetCacheManager(); cm != nil {
		_ = cm.SetRevoked(tokenHash, reason, expiresAt)
	}

	return nil
}

// IsRevoked reports whether the raw token has been revoked. A database error
// is returned as-is so the caller fails closed for this request.
func (l *RevocationLedger) IsRevoked(rawToken string) (bool, error) {
	tokenHash := utils.HashToken(rawToken)

	if cm := cache.GetCacheManager(); cm != nil {
		if revoked, ok := cm.IsRevoked(tokenHash); ok {
			return revoked, nil
		}
	}

	var count int64
	if err := l.db.Model(&auth.RevokedToken{}).
		Where("token_hash = ?", tokenHash).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("could not check revocation: %w", err)
	}

	return count > 0, nil
}

// Prune deletes ledger entries whose copied expiry has passed. Deletions run
// in batches so no long lock is held across the sweep.
func (l *RevocationLedger) Prune() (int64, error) {
	const batchSize = 500

	var total int64
	for {
		subquery := l.db.Model(&auth.RevokedToken{}).
			Select("id").
			Where("expires_at < ?", time.Now()).
			Limit(batchSize)

		result := l.db.Where("id IN (?)", subquery).Delete(&auth.RevokedToken{})
		if result.Error != nil {
			return total, fmt.Errorf("could not prune revoked tokens: %w", result.Error)
		}

		total += result.RowsAffected
		if result.RowsAffected < batchSize {
			return total, nil
		}
	}
}
