package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ultrabms-backend/shared/config"
	"ultrabms-backend/shared/database/models/auth"
	utils "ultrabms-backend/shared/utils/auth"
)

// TokenPair carries the raw tokens issued for a session together with their
// expiries. Only hashes of the raw strings are persisted.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// SessionStore tracks logical login sessions independent of individual token
// lifetimes; a refresh cycle rotates tokens but keeps the session row.
type SessionStore struct {
	db              *gorm.DB
	ledger          *RevocationLedger
	maxSessions     int
	idleTimeout     time.Duration
	absoluteTimeout time.Duration
	now             func() time.Time
}

// NewSessionStore creates a store with explicit limits
func NewSessionStore(db *gorm.DB, ledger *RevocationLedger, maxSessions int, idleTimeout, absoluteTimeout time.Duration) *SessionStore {
	return &SessionStore{
		db:              db,
		ledger:          ledger,
		maxSessions:     maxSessions,
		idleTimeout:     idleTimeout,
		absoluteTimeout: absoluteTimeout,
		now:             time.Now,
	}
}

// NewSessionStoreFromConfig creates a store using the process configuration
func NewSessionStoreFromConfig(db *gorm.DB, ledger *RevocationLedger) *SessionStore {
	cfg := config.GetConfig()
	return NewSessionStore(db, ledger,
		cfg.GetMaxSessionsPerUser(),
		cfg.GetSessionIdleTimeout(),
		cfg.GetSessionAbsoluteTimeout())
}

// SetNowFunc overrides the store clock, used by tests
func (s *SessionStore) SetNowFunc(now func() time.Time) {
	s.now = now
}

// Create registers a new session for the user. Count-and-evict runs inside a
// single transaction: when the user is at the concurrent-session cap the
// oldest sessions (by created-at) are deactivated and their tokens revoked
// before the new row is inserted.
func (s *SessionStore) Create(userID uuid.UUID, tokens TokenPair, deviceInfo, userAgent, ipAddress string) (*auth.UserSession, error) {
	now := s.now()

	session := auth.UserSession{
		UserID:                userID,
		AccessTokenHash:       utils.HashToken(tokens.AccessToken),
		AccessTokenExpiresAt:  tokens.AccessExpiresAt,
		RefreshTokenHash:      utils.HashToken(tokens.RefreshToken),
		RefreshTokenExpiresAt: tokens.RefreshExpiresAt,
		DeviceInfo:            deviceInfo,
		UserAgent:             userAgent,
		IPAddress:             ipAddress,
		IsActive:              true,
		LastUsedAt:            now,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var active []auth.UserSession
		if err := tx.Where("user_id = ? AND is_active = ?", userID, true).
			Order("created_at ASC").
			Find(&active).Error; err != nil {
			return err
		}

		if excess := len(active) - s.maxSessions + 1; excess > 0 {
			for _, victim := range active[:excess] {
				if err := s.invalidate(tx, &victim, auth.RevokeReasonSessionEvicted); err != nil {
					return err
				}
			}
		}

		return tx.Create(&session).Error
	})
	if err != nil {
		return nil, fmt.Errorf("could not create session: %w", err)
	}

	return &session, nil
}

// FindActiveByAccessHash resolves the session an access token belongs to
func (s *SessionStore) FindActiveByAccessHash(tokenHash string) (*auth.UserSession, error) {
	return s.findActive("access_token_hash = ?", tokenHash)
}

// FindActiveByRefreshHash resolves the session a refresh token belongs to
func (s *SessionStore) FindActiveByRefreshHash(tokenHash string) (*auth.UserSession, error) {
	return s.findActive("refresh_token_hash = ?", tokenHash)
}

// FindActiveByID resolves an active session owned by the given user
func (s *SessionStore) FindActiveByID(sessionID, userID uuid.UUID) (*auth.UserSession, error) {
	return s.findActive("id = ? AND user_id = ?", sessionID, userID)
}

func (s *SessionStore) findActive(query string, args ...interface{}) (*auth.UserSession, error) {
	var session auth.UserSession
	err := s.db.Where("is_active = ?", true).Where(query, args...).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrSessionNotFound
		}
		return nil, fmt.Errorf("could not look up session: %w", err)
	}
	return &session, nil
}

// Touch lazily evaluates the idle and absolute deadlines. On a breach the
// session is invalidated (tokens revoked, row deactivated) and the specific
// timeout error is returned; otherwise last-activity moves to now. The
// absolute deadline wins when both have passed.
func (s *SessionStore) Touch(session *auth.UserSession) error {
	now := s.now()

	absoluteDeadline := session.CreatedAt.Add(s.absoluteTimeout)
	if !now.Before(absoluteDeadline) {
		if err := s.invalidate(s.db, session, auth.RevokeReasonAbsoluteTimeout); err != nil {
			return err
		}
		return utils.ErrSessionAbsoluteTimeout
	}

	idleDeadline := session.LastUsedAt.Add(s.idleTimeout)
	if !now.Before(idleDeadline) {
		if err := s.invalidate(s.db, session, auth.RevokeReasonIdleTimeout); err != nil {
			return err
		}
		return utils.ErrSessionIdleTimeout
	}

	session.LastUsedAt = now
	session.UpdatedAt = now
	if err := s.db.Model(&auth.UserSession{}).
		Where("id = ?", session.ID).
		Updates(map[string]interface{}{"last_used_at": now, "updated_at": now}).Error; err != nil {
		return fmt.Errorf("could not touch session: %w", err)
	}

	return nil
}

// RotateTokens swaps the session tokens during a refresh exchange. The
// superseded tokens are revoked so they stop working immediately, and the
// rotation commits atomically with the revocations.
func (s *SessionStore) RotateTokens(session *auth.UserSession, tokens TokenPair) error {
	now := s.now()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		ledger := NewRevocationLedger(tx)
		if err := ledger.RevokeHash(session.AccessTokenHash, utils.KindAccess, session.AccessTokenExpiresAt, auth.RevokeReasonRotated); err != nil {
			return err
		}
		if err := ledger.RevokeHash(session.RefreshTokenHash, utils.KindRefresh, session.RefreshTokenExpiresAt, auth.RevokeReasonRotated); err != nil {
			return err
		}

		return tx.Model(&auth.UserSession{}).
			Where("id = ?", session.ID).
			Updates(map[string]interface{}{
				"access_token_hash":        utils.HashToken(tokens.AccessToken),
				"access_token_expires_at":  tokens.AccessExpiresAt,
				"refresh_token_hash":       utils.HashToken(tokens.RefreshToken),
				"refresh_token_expires_at": tokens.RefreshExpiresAt,
				"last_used_at":             now,
				"updated_at":               now,
			}).Error
	})
	if err != nil {
		return fmt.Errorf("could not rotate session tokens: %w", err)
	}

	session.AccessTokenHash = utils.HashToken(tokens.AccessToken)
	session.AccessTokenExpiresAt = tokens.AccessExpiresAt
	session.RefreshTokenHash = utils.HashToken(tokens.RefreshToken)
	session.RefreshTokenExpiresAt = tokens.RefreshExpiresAt
	session.LastUsedAt = now
	return nil
}

// ListActive returns the user's active sessions ordered by last activity,
// most recent first
func (s *SessionStore) ListActive(userID uuid.UUID, page, limit int) ([]auth.UserSession, int64, error) {
	var total int64
	if err := s.db.Model(&auth.UserSession{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("could not count sessions: %w", err)
	}

	var sessions []auth.UserSession
	if err := s.db.Where("user_id = ? AND is_active = ?", userID, true).
		Order("last_used_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&sessions).Error; err != nil {
		return nil, 0, fmt.Errorf("could not list sessions: %w", err)
	}

	return sessions, total, nil
}

// Revoke invalidates one session owned by the user
func (s *SessionStore) Revoke(sessionID, userID uuid.UUID, reason string) error {
	session, err := s.FindActiveByID(sessionID, userID)
	if err != nil {
		return err
	}
	return s.invalidate(s.db, session, reason)
}

// RevokeAll invalidates every active session for the user, optionally
// sparing one (the caller's current session)
func (s *SessionStore) RevokeAll(userID uuid.UUID, except *uuid.UUID, reason string) (int64, error) {
	var sessions []auth.UserSession
	if err := s.db.Where("user_id = ? AND is_active = ?", userID, true).Find(&sessions).Error; err != nil {
		return 0, fmt.Errorf("could not list sessions: %w", err)
	}

	var revoked int64
	for i := range sessions {
		if except != nil && sessions[i].ID == *except {
			continue
		}
		if err := s.invalidate(s.db, &sessions[i], reason); err != nil {
			return revoked, err
		}
		revoked++
	}

	return revoked, nil
}

// Sweep deactivates sessions past their idle or absolute deadline. Run
// periodically; delete-only and idempotent, so it is safe alongside live
// traffic.
func (s *SessionStore) Sweep() (int64, error) {
	now := s.now()
	idleCutoff := now.Add(-s.idleTimeout)
	absoluteCutoff := now.Add(-s.absoluteTimeout)

	const batchSize = 200

	var total int64
	for {
		var expired []auth.UserSession
		if err := s.db.Where("is_active = ?", true).
			Where("last_used_at <= ? OR created_at <= ?", idleCutoff, absoluteCutoff).
			Limit(batchSize).
			Find(&expired).Error; err != nil {
			return total, fmt.Errorf("could not sweep sessions: %w", err)
		}

		for i := range expired {
			reason := auth.RevokeReasonIdleTimeout
			if !expired[i].CreatedAt.After(absoluteCutoff) {
				reason = auth.RevokeReasonAbsoluteTimeout
			}
			if err := s.invalidate(s.db, &expired[i], reason); err != nil {
				return total, err
			}
			total++
		}

		if len(expired) < batchSize {
			return total, nil
		}
	}
}

// invalidate deactivates the session and revokes its outstanding tokens so
// previously issued access tokens stop working immediately
func (s *SessionStore) invalidate(db *gorm.DB, session *auth.UserSession, reason string) error {
	ledger := NewRevocationLedger(db)
	if err := ledger.RevokeHash(session.AccessTokenHash, utils.KindAccess, session.AccessTokenExpiresAt, reason); err != nil {
		return err
	}
	if err := ledger.RevokeHash(session.RefreshTokenHash, utils.KindRefresh, session.RefreshTokenExpiresAt, reason); err != nil {
		return err
	}

	if err := db.Model(&auth.UserSession{}).
		Where("id = ?", session.ID).
		Update("is_active", false).Error; err != nil {
		return fmt.Errorf("could not deactivate session: %w", err)
	}

	session.IsActive = false
	return nil
}
