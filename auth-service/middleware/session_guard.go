package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ultrabms-backend/auth-service/services"
	"ultrabms-backend/shared/database/models"
	utils "ultrabms-backend/shared/utils/auth"
)

// SessionGuard is the per-request gate: bearer extraction, signature and
// expiry verification, revocation check, session timeout check, and
// last-activity update, in that order. Every stage is a rejection point and
// no partial authentication state survives a rejection.
type SessionGuard struct {
	codec    *utils.TokenCodec
	ledger   *services.RevocationLedger
	sessions *services.SessionStore
}

// NewSessionGuard wires the gate from its three collaborators
func NewSessionGuard(codec *utils.TokenCodec, ledger *services.RevocationLedger, sessions *services.SessionStore) *SessionGuard {
	return &SessionGuard{
		codec:    codec,
		ledger:   ledger,
		sessions: sessions,
	}
}

// Middleware returns the Gin handler enforcing the gate. On success the
// resolved identity, role, and permission snapshot are set on the context
// for downstream handlers.
func (g *SessionGuard) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ExtractBearerToken(c)
		if tokenString == "" {
			reject(c, "Authorization header with Bearer token is required")
			return
		}

		claims, err := g.codec.Verify(tokenString, utils.KindAccess)
		if err != nil {
			reject(c, "Invalid or expired token")
			return
		}

		// Revocation is a separate step after signature verification; a
		// ledger error fails closed for this request only.
		revoked, err := g.ledger.IsRevoked(tokenString)
		if err != nil || revoked {
			reject(c, "Invalid or expired token")
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			reject(c, "Invalid or expired token")
			return
		}

		role, err := models.ParseRole(claims.Role)
		if err != nil {
			reject(c, "Invalid or expired token")
			return
		}

		tokenHash := utils.HashToken(tokenString)
		session, err := g.sessions.FindActiveByAccessHash(tokenHash)
		if err != nil {
			reject(c, "Invalid or expired token")
			return
		}

		if err := g.sessions.Touch(session); err != nil {
			// The one place detail is intentionally leaked: timeouts get a
			// human-readable reason so clients can say "session expired"
			// instead of "please log in".
			switch err {
			case utils.ErrSessionIdleTimeout:
				rejectExpired(c, "Your session expired due to inactivity")
			case utils.ErrSessionAbsoluteTimeout:
				rejectExpired(c, "Your session reached its maximum lifetime")
			default:
				reject(c, "Invalid or expired token")
			}
			return
		}

		c.Set("userID", userID)
		c.Set("userEmail", claims.Email)
		c.Set("userRole", role)
		c.Set("permissions", claims.Permissions)
		c.Set("sessionID", session.ID)
		c.Set("tokenHash", tokenHash)
		c.Set("rawToken", tokenString)
		c.Set("accessTokenExpiresAt", session.AccessTokenExpiresAt)

		c.Next()
	}
}

func reject(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": message})
	c.Abort()
}

func rejectExpired(c *gin.Context, reason string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error":  "Session expired",
		"code":   "SESSION_EXPIRED",
		"reason": reason,
	})
	c.Abort()
}

// ExtractBearerToken extracts the raw token from the Authorization header,
// empty string when absent or malformed
func ExtractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		return ""
	}

	return tokenParts[1]
}
