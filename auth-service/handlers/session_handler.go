package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ultrabms-backend/shared/database/models/auth"
	utils "ultrabms-backend/shared/utils/auth"
	"ultrabms-backend/shared/utils/query"
)

// SessionResponse represents a user session in the response
type SessionResponse struct {
	ID               uuid.UUID `json:"id"`
	DeviceInfo       string    `json:"device_info"`
	IPAddress        string    `json:"ip_address"`
	LastUsedAt       time.Time `json:"last_used_at"`
	CreatedAt        time.Time `json:"created_at"`
	IsCurrentSession bool      `json:"is_current_session"`
}

// LoginHistoryResponse represents a login history entry in the response
type LoginHistoryResponse struct {
	ID          uuid.UUID `json:"id"`
	IPAddress   string    `json:"ip_address"`
	DeviceInfo  string    `json:"device_info"`
	Successful  bool      `json:"successful"`
	FailureType string    `json:"failure_type,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListSessions lists all active sessions for the authenticated user
// @Summary List user sessions
// @Description Get active sessions for the current user, most recent activity first
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Success 200 {object} map[string]interface{} "List of user sessions"
// @Failure 401 {object} map[string]string "User not authenticated"
// @Failure 500 {object} map[string]string "Failed to retrieve sessions"
// @Router /auth/sessions [get]
func (h *AuthHandler) ListSessions(c *gin.Context) {
	userID := c.MustGet("userID").(uuid.UUID)
	currentSessionID := c.MustGet("sessionID").(uuid.UUID)

	params := query.ParseQueryParams(c)

	sessions, total, err := h.sessions.ListActive(userID, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sessions"})
		return
	}

	response := make([]SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		response = append(response, SessionResponse{
			ID:               session.ID,
			DeviceInfo:       session.DeviceInfo,
			IPAddress:        session.IPAddress,
			LastUsedAt:       session.LastUsedAt,
			CreatedAt:        session.CreatedAt,
			IsCurrentSession: session.ID == currentSessionID,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      response,
			"pagination": query.BuildPaginationResponse(params.Page, params.Limit, total),
		},
	})
}

// TerminateSession terminates a specific session
// @Summary Terminate session
// @Description Terminate a specific user session by ID
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID to terminate"
// @Success 200 {object} map[string]string "Session terminated successfully"
// @Failure 400 {object} map[string]string "Invalid session ID or current session"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 500 {object} map[string]string "Failed to terminate session"
// @Router /auth/sessions/{id} [delete]
func (h *AuthHandler) TerminateSession(c *gin.Context) {
	userID := c.MustGet("userID").(uuid.UUID)
	currentSessionID := c.MustGet("sessionID").(uuid.UUID)

	sessionUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID format"})
		return
	}

	if sessionUUID == currentSessionID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot terminate the current session"})
		return
	}

	if err := h.sessions.Revoke(sessionUUID, userID, auth.RevokeReasonLogout); err != nil {
		if err == utils.ErrSessionNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found or does not belong to the user"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to terminate session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session terminated successfully"})
}

// TerminateAllSessions terminates all sessions except the current one
// @Summary Terminate all other sessions
// @Description Terminate every active session for the user except the current one
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Other sessions terminated"
// @Failure 500 {object} map[string]string "Failed to terminate sessions"
// @Router /auth/sessions [delete]
func (h *AuthHandler) TerminateAllSessions(c *gin.Context) {
	userID := c.MustGet("userID").(uuid.UUID)
	currentSessionID := c.MustGet("sessionID").(uuid.UUID)

	revoked, err := h.sessions.RevokeAll(userID, &currentSessionID, auth.RevokeReasonLogoutAll)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to terminate sessions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          "All other sessions terminated successfully",
		"sessions_revoked": revoked,
	})
}

// GetLoginHistory retrieves the login history for the authenticated user
// @Summary Get login history
// @Description Get login attempts for the currently authenticated user
// @Tags auth-security
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param filters[successful] query boolean false "Filter by login success"
// @Param sort[field] query string false "Sort field (created_at, successful)"
// @Param sort[order] query string false "Sort order (asc, desc)"
// @Success 200 {object} map[string]interface{} "Login history list"
// @Failure 401 {object} map[string]string "User not authenticated"
// @Failure 500 {object} map[string]string "Failed to retrieve login history"
// @Router /auth/login-history [get]
func (h *AuthHandler) GetLoginHistory(c *gin.Context) {
	userEmail := c.MustGet("userEmail").(string)

	params := query.ParseQueryParams(c)

	allowedFilters := map[string]string{
		"successful": "successful",
	}
	allowedSortFields := map[string]string{
		"created_at": "created_at",
		"successful": "successful",
	}

	dbQuery := h.db.Model(&auth.LoginAttempt{}).Where("email = ?", userEmail)
	dbQuery = query.ApplyFilters(dbQuery, params.Filters, allowedFilters)
	dbQuery = query.ApplySort(dbQuery, params.Sort, allowedSortFields)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count login history"})
		return
	}

	dbQuery = query.ApplyPagination(dbQuery, params.Page, params.Limit)

	var loginAttempts []auth.LoginAttempt
	if err := dbQuery.Find(&loginAttempts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve login history"})
		return
	}

	response := make([]LoginHistoryResponse, 0, len(loginAttempts))
	for _, attempt := range loginAttempts {
		response = append(response, LoginHistoryResponse{
			ID:          attempt.ID,
			IPAddress:   attempt.IPAddress,
			DeviceInfo:  parseUserAgent(attempt.UserAgent),
			Successful:  attempt.Successful,
			FailureType: attempt.FailureType,
			CreatedAt:   attempt.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      response,
			"pagination": query.BuildPaginationResponse(params.Page, params.Limit, total),
		},
	})
}

// parseUserAgent extracts useful device info from user agent string
func parseUserAgent(userAgent string) string {
	if userAgent == "" {
		return "Unknown"
	}

	if strings.Contains(userAgent, "iPhone") || strings.Contains(userAgent, "iPad") {
		return "iOS Device"
	} else if strings.Contains(userAgent, "Android") {
		return "Android Device"
	} else if strings.Contains(userAgent, "Windows") {
		return "Windows"
	} else if strings.Contains(userAgent, "Mac") {
		return "MacOS"
	} else if strings.Contains(userAgent, "Linux") {
		return "Linux"
	}

	return "Other"
}
