package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"ultrabms-backend/auth-service/services"
	"ultrabms-backend/shared/database/models"
	"ultrabms-backend/shared/database/models/auth"
	utils "ultrabms-backend/shared/utils/auth"
	"ultrabms-backend/shared/utils/permission"
)

const refreshCookieName = "refresh_token"

type AuthHandler struct {
	db       *gorm.DB
	codec    *utils.TokenCodec
	resolver *permission.Resolver
	sessions *services.SessionStore
	ledger   *services.RevocationLedger
}

func NewAuthHandler(db *gorm.DB, codec *utils.TokenCodec, resolver *permission.Resolver, sessions *services.SessionStore, ledger *services.RevocationLedger) *AuthHandler {
	return &AuthHandler{
		db:       db,
		codec:    codec,
		resolver: resolver,
		sessions: sessions,
		ledger:   ledger,
	}
}

// Login Request/Response structs
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"admin@ultrabms.com"`
	Password string `json:"password" binding:"required" example:"admin123"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserInfo  `json:"user"`
}

type UserInfo struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions"`
	Status      string    `json:"status"`
}

// Refresh Response struct
type RefreshResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Validate Request struct
type ValidateRequest struct {
	Token string `json:"token" binding:"required"`
}

// Validate Response struct
type ValidateResponse struct {
	Valid       bool      `json:"valid"`
	UserID      uuid.UUID `json:"user_id,omitempty"`
	Email       string    `json:"email,omitempty"`
	Role        string    `json:"role,omitempty"`
	Permissions []string  `json:"permissions,omitempty"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
}

// ChangePassword Request struct
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// issueTokenPair signs a fresh access+refresh pair with the role's current
// permission snapshot
func (h *AuthHandler) issueTokenPair(user *models.User) (services.TokenPair, []string, error) {
	perms := h.resolver.PermissionsFor(user.Role)

	accessToken, err := h.codec.Issue(user.ID, user.Email, user.Role, perms, utils.KindAccess)
	if err != nil {
		return services.TokenPair{}, nil, err
	}

	refreshToken, err := h.codec.Issue(user.ID, user.Email, user.Role, perms, utils.KindRefresh)
	if err != nil {
		return services.TokenPair{}, nil, err
	}

	now := time.Now()
	return services.TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  now.Add(h.codec.TTLFor(utils.KindAccess)),
		RefreshToken:     refreshToken,
		RefreshExpiresAt: now.Add(h.codec.TTLFor(utils.KindRefresh)),
	}, perms, nil
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string, ttl time.Duration) {
	c.SetCookie(refreshCookieName, token, int(ttl.Seconds()), "/api/auth", "", false, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetCookie(refreshCookieName, "", -1, "/api/auth", "", false, true)
}

// POST /api/auth/login
// @Summary User login
// @Description Authenticate a user, create a device session and return tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param login body LoginRequest true "Login credentials"
// @Success 200 {object} handlers.LoginResponse "Successful login"
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Failure 429 {object} map[string]string "Too many login attempts"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	clientIP := c.ClientIP()
	userAgent := c.GetHeader("User-Agent")

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		h.recordLogin(req.Email, clientIP, userAgent, false, "user_not_found")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if user.Status != "ACTIVE" {
		h.recordLogin(req.Email, clientIP, userAgent, false, "account_inactive")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is inactive"})
		return
	}

	if !utils.CheckPasswordHash(req.Password, user.Password) {
		h.recordLogin(req.Email, clientIP, userAgent, false, "wrong_password")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	tokens, perms, err := h.issueTokenPair(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate tokens"})
		return
	}

	if _, err := h.sessions.Create(user.ID, tokens, parseUserAgent(userAgent), userAgent, clientIP); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create session"})
		return
	}

	h.recordLogin(user.Email, clientIP, userAgent, true, "")
	h.setRefreshCookie(c, tokens.RefreshToken, h.codec.TTLFor(utils.KindRefresh))

	c.JSON(http.StatusOK, LoginResponse{
		Token:     tokens.AccessToken,
		ExpiresAt: tokens.AccessExpiresAt,
		User: UserInfo{
			ID:          user.ID,
			Email:       user.Email,
			FirstName:   user.FirstName,
			LastName:    user.LastName,
			Role:        user.Role.String(),
			Permissions: perms,
			Status:      user.Status,
		},
	})
}

// POST /api/auth/refresh
// @Summary Refresh tokens
// @Description Exchange the refresh-token cookie for a rotated token pair
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} handlers.RefreshResponse "Rotated tokens"
// @Failure 401 {object} map[string]string "Invalid refresh token or session expired"
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookieName)
	if err != nil || refreshToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token required"})
		return
	}

	claims, err := h.codec.Verify(refreshToken, utils.KindRefresh)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	revoked, err := h.ledger.IsRevoked(refreshToken)
	if err != nil || revoked {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	session, err := h.sessions.FindActiveByRefreshHash(utils.HashToken(refreshToken))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token not found or expired"})
		return
	}

	// The refresh cycle keeps the session, so its timeouts still apply
	if err := h.sessions.Touch(session); err != nil {
		switch err {
		case utils.ErrSessionIdleTimeout:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired", "reason": "Your session expired due to inactivity"})
		case utils.ErrSessionAbsoluteTimeout:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired", "reason": "Your session reached its maximum lifetime"})
		default:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		}
		return
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	var user models.User
	if err := h.db.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	if user.Status != "ACTIVE" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is inactive"})
		return
	}

	tokens, _, err := h.issueTokenPair(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate tokens"})
		return
	}

	if err := h.sessions.RotateTokens(session, tokens); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update session"})
		return
	}

	h.setRefreshCookie(c, tokens.RefreshToken, h.codec.TTLFor(utils.KindRefresh))

	c.JSON(http.StatusOK, RefreshResponse{
		Token:     tokens.AccessToken,
		ExpiresAt: tokens.AccessExpiresAt,
	})
}

// POST /api/auth/logout
// @Summary User logout
// @Description Revoke the current session and its tokens
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string "Logged out successfully"
// @Failure 401 {object} map[string]string "Invalid token"
// @Failure 500 {object} map[string]string "Could not logout"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := c.MustGet("userID").(uuid.UUID)
	sessionID := c.MustGet("sessionID").(uuid.UUID)

	if err := h.sessions.Revoke(sessionID, userID, auth.RevokeReasonLogout); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not logout"})
		return
	}

	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// POST /api/auth/logout-all
// @Summary Logout everywhere
// @Description Revoke every session and outstanding token for the user
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "All sessions revoked"
// @Failure 500 {object} map[string]string "Could not logout"
// @Router /auth/logout-all [post]
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	userID := c.MustGet("userID").(uuid.UUID)

	revoked, err := h.sessions.RevokeAll(userID, nil, auth.RevokeReasonLogoutAll)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not logout"})
		return
	}

	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, gin.H{
		"message":          "Logged out from all sessions",
		"sessions_revoked": revoked,
	})
}

// POST /api/auth/validate
// @Summary Validate an access token
// @Description Token introspection for sibling services
// @Tags auth
// @Accept json
// @Produce json
// @Param validate body ValidateRequest true "Access token to validate"
// @Success 200 {object} handlers.ValidateResponse "Token validation result"
// @Failure 400 {object} map[string]string "Invalid request format"
// @Router /auth/validate [post]
func (h *AuthHandler) Validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, err := h.codec.Verify(req.Token, utils.KindAccess)
	if err != nil {
		c.JSON(http.StatusOK, ValidateResponse{Valid: false})
		return
	}

	revoked, err := h.ledger.IsRevoked(req.Token)
	if err != nil || revoked {
		c.JSON(http.StatusOK, ValidateResponse{Valid: false})
		return
	}

	if _, err := h.sessions.FindActiveByAccessHash(utils.HashToken(req.Token)); err != nil {
		c.JSON(http.StatusOK, ValidateResponse{Valid: false})
		return
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusOK, ValidateResponse{Valid: false})
		return
	}

	c.JSON(http.StatusOK, ValidateResponse{
		Valid:       true,
		UserID:      userID,
		Email:       claims.Email,
		Role:        claims.Role,
		Permissions: claims.Permissions,
		ExpiresAt:   claims.ExpiresAt.Time,
	})
}

// POST /api/auth/change-password
// @Summary Change password
// @Description Update the password and revoke every session for the user
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param change body ChangePasswordRequest true "Current and new password"
// @Success 200 {object} map[string]string "Password changed"
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 401 {object} map[string]string "Current password is wrong"
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.MustGet("userID").(uuid.UUID)

	var user models.User
	if err := h.db.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	if !utils.CheckPasswordHash(req.CurrentPassword, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
		return
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not hash password"})
		return
	}

	if err := h.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("password", hashed).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update password"})
		return
	}

	// Every outstanding token dies with the old password
	if _, err := h.sessions.RevokeAll(userID, nil, auth.RevokeReasonPasswordReset); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not revoke sessions"})
		return
	}

	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully. Please log in again."})
}

func (h *AuthHandler) recordLogin(email, ipAddress, userAgent string, successful bool, failureType string) {
	attempt := auth.LoginAttempt{
		Email:       email,
		IPAddress:   ipAddress,
		UserAgent:   userAgent,
		Successful:  successful,
		FailureType: failureType,
	}
	h.db.Create(&attempt)
}
