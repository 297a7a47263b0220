package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"ultrabms-backend/shared/config"
	"ultrabms-backend/shared/database/models"
)

// TokenKind distinguishes short-lived access tokens from long-lived refresh
// tokens. A token of one kind never verifies as the other.
type TokenKind string

const (
	KindAccess  TokenKind = "ACCESS"
	KindRefresh TokenKind = "REFRESH"
)

// Claims carried by every signed token. Permissions are a snapshot resolved
// at issuance time, not re-resolved per request.
type Claims struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions"`
	Kind        TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies credential tokens. It is pure over the key
// material held in memory; revocation lives in the ledger, not here.
type TokenCodec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenCodec builds a codec with explicit key material and lifetimes
func NewTokenCodec(secret []byte, accessTTL, refreshTTL time.Duration) *TokenCodec {
	return &TokenCodec{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// NewTokenCodecFromConfig builds a codec from the process configuration
func NewTokenCodecFromConfig() *TokenCodec {
	cfg := config.GetConfig()
	return NewTokenCodec([]byte(cfg.JWTSecret), cfg.GetAccessTokenTTL(), cfg.GetRefreshTokenTTL())
}

// TTLFor returns the configured lifetime for a token kind
func (tc *TokenCodec) TTLFor(kind TokenKind) time.Duration {
	if kind == KindRefresh {
		return tc.refreshTTL
	}
	return tc.accessTTL
}

// Issue signs a token for the subject with a snapshot of its permissions
func (tc *TokenCodec) Issue(userID uuid.UUID, email string, role models.Role, permissions []string, kind TokenKind) (string, error) {
	now := time.Now()

	claims := Claims{
		UserID:      userID.String(),
		Email:       email,
		Role:        role.String(),
		Permissions: permissions,
		Kind:        kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tc.TTLFor(kind))),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tc.secret)
}

// Verify checks signature first, then expiry, then kind. An expired but
// validly signed token comes back as ErrExpiredToken; everything else is
// ErrInvalidToken. Callers treat both as unauthenticated.
func (tc *TokenCodec) Verify(tokenString string, kind TokenKind) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return tc.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Kind != kind {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
