package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ultrabms-backend/auth-service/middleware"
	"ultrabms-backend/auth-service/services"
	"ultrabms-backend/shared/database"
	"ultrabms-backend/shared/database/models"
	"ultrabms-backend/shared/database/models/auth"
	utils "ultrabms-backend/shared/utils/auth"
	"ultrabms-backend/shared/utils/permission"
)

type handlerFixture struct {
	db       *gorm.DB
	router   *gin.Engine
	sessions *services.SessionStore
	ledger   *services.RevocationLedger
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	return newHandlerFixtureWithResolver(t, permission.NewResolver(permission.DefaultRolePermissions()))
}

// newHandlerFixtureWithResolver mirrors the production route wiring, including
// the permission gate on the session-management endpoints
func newHandlerFixtureWithResolver(t *testing.T, resolver *permission.Resolver) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.RunMigrations(db))

	codec := utils.NewTokenCodec([]byte("handler-test-secret"), time.Hour, 7*24*time.Hour)
	ledger := services.NewRevocationLedger(db)
	sessions := services.NewSessionStore(db, ledger, 3, 1800*time.Second, 43200*time.Second)
	guard := middleware.NewSessionGuard(codec, ledger, sessions)
	handler := NewAuthHandler(db, codec, resolver, sessions, ledger)

	authenticated := guard.Middleware()
	sessionAccess := middleware.RequirePermission(resolver, "session:manage")

	router := gin.New()
	router.POST("/api/auth/login", handler.Login)
	router.POST("/api/auth/refresh", handler.Refresh)
	router.POST("/api/auth/logout", authenticated, handler.Logout)
	router.POST("/api/auth/logout-all", authenticated, handler.LogoutAll)
	router.POST("/api/auth/validate", handler.Validate)
	router.POST("/api/auth/change-password", authenticated, handler.ChangePassword)
	router.GET("/api/auth/sessions", authenticated, sessionAccess, handler.ListSessions)
	router.DELETE("/api/auth/sessions/:id", authenticated, sessionAccess, handler.TerminateSession)
	router.DELETE("/api/auth/sessions", authenticated, sessionAccess, handler.TerminateAllSessions)
	router.GET("/api/auth/login-history", authenticated, sessionAccess, handler.GetLoginHistory)

	return &handlerFixture{db: db, router: router, sessions: sessions, ledger: ledger}
}

func (f *handlerFixture) createUser(t *testing.T, email, password string, role models.Role) *models.User {
	t.Helper()

	hashed, err := utils.HashPassword(password)
	require.NoError(t, err)

	user := models.User{
		Email:     email,
		Password:  hashed,
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
		Status:    "ACTIVE",
	}
	require.NoError(t, f.db.Create(&user).Error)
	return &user
}

func (f *handlerFixture) postJSON(path string, body interface{}, headers map[string]string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *handlerFixture) login(t *testing.T, email, password string) (LoginResponse, *http.Cookie) {
	t.Helper()

	w := f.postJSON("/api/auth/login", LoginRequest{Email: email, Password: password}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	var refreshCookie *http.Cookie
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "refresh_token" {
			refreshCookie = cookie
		}
	}
	require.NotNil(t, refreshCookie, "login must set the refresh cookie")
	return resp, refreshCookie
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestLogin(t *testing.T) {
	fixture := newHandlerFixture(t)
	fixture.createUser(t, "manager@ultrabms.com", "s3cure-pass", models.RolePropertyManager)

	t.Run("success", func(t *testing.T) {
		resp, cookie := fixture.login(t, "manager@ultrabms.com", "s3cure-pass")

		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "PROPERTY_MANAGER", resp.User.Role)
		assert.Contains(t, resp.User.Permissions, "property:read")
		assert.Equal(t, "ACTIVE", resp.User.Status)
		assert.True(t, resp.ExpiresAt.After(time.Now()))

		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, "/api/auth", cookie.Path)

		// The access token works against the guard right away
		w := fixture.postJSON("/api/auth/logout", nil, bearer(resp.Token))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := fixture.postJSON("/api/auth/login", LoginRequest{Email: "manager@ultrabms.com", Password: "nope"}, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		w := fixture.postJSON("/api/auth/login", LoginRequest{Email: "ghost@ultrabms.com", Password: "whatever"}, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		w := fixture.postJSON("/api/auth/login", gin.H{"email": "not-an-email"}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("failed attempts recorded", func(t *testing.T) {
		var attempts []auth.LoginAttempt
		require.NoError(t, fixture.db.Where("email = ? AND successful = ?", "manager@ultrabms.com", false).Find(&attempts).Error)
		require.NotEmpty(t, attempts)
		assert.Equal(t, "wrong_password", attempts[0].FailureType)
	})
}

func TestLogin_InactiveAccount(t *testing.T) {
	fixture := newHandlerFixture(t)
	user := fixture.createUser(t, "inactive@ultrabms.com", "s3cure-pass", models.RoleTenant)
	require.NoError(t, fixture.db.Model(user).Update("status", "INACTIVE").Error)

	w := fixture.postJSON("/api/auth/login", LoginRequest{Email: "inactive@ultrabms.com", Password: "s3cure-pass"}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "inactive")
}

func TestLogin_ConcurrentSessionCap(t *testing.T) {
	fixture := newHandlerFixture(t)
	user := fixture.createUser(t, "tenant@ultrabms.com", "s3cure-pass", models.RoleTenant)

	var tokens []string
	for i := 0; i < 4; i++ {
		resp, _ := fixture.login(t, "tenant@ultrabms.com", "s3cure-pass")
		tokens = append(tokens, resp.Token)
	}

	var count int64
	require.NoError(t, fixture.db.Model(&auth.UserSession{}).
		Where("user_id = ? AND is_active = ?", user.ID, true).
		Count(&count).Error)
	assert.EqualValues(t, 3, count)

	// The first login's token was revoked by the eviction
	w := fixture.postJSON("/api/auth/logout", nil, bearer(tokens[0]))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The latest one still works
	w = fixture.postJSON("/api/auth/logout", nil, bearer(tokens[3]))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogout(t *testing.T) {
	fixture := newHandlerFixture(t)
	fixture.createUser(t, "tenant@ultrabms.com", "s3cure-pass", models.RoleTenant)

	resp, _ := fixture.login(t, "tenant@ultrabms.com", "s3cure-pass")

	w := fixture.postJSON("/api/auth/logout", nil, bearer(resp.Token))
	require.Equal(t, http.StatusOK, w.Code)

	// The token is dead from this point on
	w = fixture.postJSON("/api/auth/logout", nil, bearer(resp.Token))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutAll(t *testing.T) {
	fixture := newHandlerFixture(t)
	fixture.createUser(t, "tenant@ultrabms.com", "s3cure-pass", models.RoleTenant)

	first, _ := fixture.login(t, "tenant@ultrabms.com", "s3cure-pass")
	second, _ := fixture.login(t, "tenant@ultrabms.com", "s3cure-pass")

	w := fixture.postJSON("/api/auth/logout-all", nil, bearer(second.Token))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 2, body["sessions_revoked"])

	// Every token is dead, including the one that made the call
	assert.Equal(t, http.StatusUnauthorized, fixture.postJSON("/api/auth/logout", nil, bearer(first.Token)).Code)
	assert.Equal(t, http.StatusUnauthorized, fixture.postJSON("/api/auth/logout", nil, bearer(second.Token)).Code)
}

func TestRefresh(t *testing.T) {
	fixture := newHandlerFixture(t)
	fixture.createUser(t, "tenant@ultrabms.com", "s3cure-pass", models.RoleTenant)

	resp, refreshCookie := fixture.login(t, "tenant@ultrabms.com", "s3cure-pass")

	w := fixture.postJSON("/api/auth/refresh", nil, nil, refreshCookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var refreshed RefreshResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &refreshed))
	assert.NotEmpty(t, refreshed.Token)
	assert.NotEqual(t, resp.Token, refreshed.Token)

	// Rotation kills the superseded pair: old access token...
	assert.Equal(t, http.StatusUnauthorized, fixture.postJSON("/api/auth/logout", nil, bearer(resp.Token)).Code)

	// ...and the old refresh token cannot be replayed
	w = fixture.postJSON("/api/auth/refresh", nil, nil, refreshCookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The rotated access token works
	assert.Equal(t, http.StatusOK, fixture.postJSON("/api/auth/logout", nil, bearer(refreshed.Token)).Code)
}

func TestRefresh_MissingCookie(t *testing.T) {
	fixture := newHandlerFixture(t)

	w := fixture.postJSON("/api/auth/refresh", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefresh_GarbageCookie(t *testing.T) {
	fixture := newHandlerFixture(t)

	w := fixture.postJSON("/api/auth/refresh", nil, nil, &http.Cookie{Name: "refresh_token", Value: "not-a-jwt"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	fixture := newHandlerFixture(t)
	fixture.createUser(t, "tenant@ultrabms.com", "s3cure-pass", models.RoleTenant)

	resp, _ := fixture.login(t, "tenant@ultrabms.com", "s3cure-pass")

	// An access token in the refresh cookie must not pass the kind check
	w := fixture.postJSON("/api/auth/refresh", nil, nil, &http.Cookie{Name: "refresh_token", Value: resp.Token})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// forgeToken signs a token with the fixture secret but a subject claim that
// is not a UUID
func forgeToken(t *testing.T, kind utils.TokenKind) string {
	t.Helper()

	claims := utils.Claims{
		UserID: "not-a-uuid",
		Email:  "user@ultrabms.com",
		Role:   models.RoleTenant.String(),
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("handler-test-secret"))
	require.NoError(t, err)
	return token
}

func TestRefresh_MalformedSubjectClaim(t *testing.T) {
	fixture := newHandlerFixture(t)

	// A session row matches the forged token's hash, so the handler gets all
	// the way to reading the subject claim
	forged := forgeToken(t, utils.KindRefresh)
	_, err := fixture.sessions.Create(uuid.New(), services.TokenPair{
		AccessToken:      "unrelated-access",
		AccessExpiresAt:  time.Now().Add(time.Hour),
		RefreshToken:     forged,
		RefreshExpiresAt: time.Now().Add(time.Hour),
	}, "", "", "")
	require.NoError(t, err)

	w := fixture.postJSON("/api/auth/refresh", nil, nil, &http.Cookie{Name: "refresh_token", Value: forged})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestValidate_MalformedSubjectClaim(t *testing.T) {
	fixture := newHandlerFixture(t)

	forged := forgeToken(t, utils.KindAccess)
	_, err := fixture.sessions.Create(uuid.New(), services.TokenPair{
		AccessToken:      forged,
		AccessExpiresAt:  time.Now().Add(time.Hour),
		RefreshToken:     "unrelated-refresh",
		RefreshExpiresAt: time.Now().Add(time.Hour),
	}, "", "", "")
	require.NoError(t, err)

	w := fixture.postJSON("/api/auth/validate", ValidateRequest{Token: forged}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result ValidateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Valid)
}

func TestValidate(t *testing.T) {
	fixture := newHandlerFixture(t)
	user := fixture.createUser(t, "vendor@ultrabms.com", "s3cure-pass", models.RoleVendor)

	resp, _ := fixture.login(t, "vendor@ultrabms.com", "s3cure-pass")

	t.Run("valid token", func(t *testing.T) {
		w := fixture.postJSON("/api/auth/validate", ValidateRequest{Token: resp.Token}, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var result ValidateResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.True(t, result.Valid)
		assert.Equal(t, user.ID, result.UserID)
		assert.Equal(t, "vendor@ultrabms.com", result.Email)
		assert.Equal(t, "VENDOR", result.Role)
		assert.Contains(t, result.Permissions, "workorder:update")
	})

	t.Run("garbage token", func(t *testing.T) {
		w := fixture.postJSON("/api/auth/validate", ValidateRequest{Token: "garbage"}, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var result ValidateResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.False(t, result.Valid)
	})

	t.Run("missing token", func(t *testing.T) {
		w := fixture.postJSON("/api/auth/validate", gin.H{}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid after logout", func(t *testing.T) {
		require.Equal(t, http.StatusOK, fixture.postJSON("/api/auth/logout", nil, bearer(resp.Token)).Code)

		w := fixture.postJSON("/api/auth/validate", ValidateRequest{Token: resp.Token}, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var result ValidateResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.False(t, result.Valid)
	})
}

func TestChangePassword(t *testing.T) {
	fixture := newHandlerFixture(t)
	fixture.createUser(t, "tenant@ultrabms.com", "old-password", models.RoleTenant)

	resp, _ := fixture.login(t, "tenant@ultrabms.com", "old-password")

	t.Run("wrong current password", func(t *testing.T) {
		w := fixture.postJSON("/api/auth/change-password",
			ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "brand-new-pass"}, bearer(resp.Token))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("too short new password", func(t *testing.T) {
		w := fixture.postJSON("/api/auth/change-password",
			ChangePasswordRequest{CurrentPassword: "old-password", NewPassword: "short"}, bearer(resp.Token))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("success revokes everything", func(t *testing.T) {
		w := fixture.postJSON("/api/auth/change-password",
			ChangePasswordRequest{CurrentPassword: "old-password", NewPassword: "brand-new-pass"}, bearer(resp.Token))
		require.Equal(t, http.StatusOK, w.Code)

		// The old token died with the old password
		assert.Equal(t, http.StatusUnauthorized, fixture.postJSON("/api/auth/logout", nil, bearer(resp.Token)).Code)

		// Old password no longer logs in, the new one does
		w = fixture.postJSON("/api/auth/login", LoginRequest{Email: "tenant@ultrabms.com", Password: "old-password"}, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		fixture.login(t, "tenant@ultrabms.com", "brand-new-pass")
	})
}

func TestListSessions(t *testing.T) {
	fixture := newHandlerFixture(t)
	fixture.createUser(t, "tenant@ultrabms.com", "s3cure-pass", models.RoleTenant)

	fixture.login(t, "tenant@ultrabms.com", "s3cure-pass")
	current, _ := fixture.login(t, "tenant@ultrabms.com", "s3cure-pass")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/sessions", nil)
	req.Header.Set("Authorization", "Bearer "+current.Token)
	w := httptest.NewRecorder()
	fixture.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Items []SessionResponse `json:"items"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Data.Items, 2)

	// Most recent activity first; the caller's own session was touched by the
	// guard on this very request
	assert.True(t, body.Data.Items[0].IsCurrentSession)
	assert.False(t, body.Data.Items[1].IsCurrentSession)
}

func TestTerminateSession(t *testing.T) {
	fixture := newHandlerFixture(t)
	fixture.createUser(t, "tenant@ultrabms.com", "s3cure-pass", models.RoleTenant)

	other, _ := fixture.login(t, "tenant@ultrabms.com", "s3cure-pass")
	current, _ := fixture.login(t, "tenant@ultrabms.com", "s3cure-pass")

	deleteSession := func(id string, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/api/auth/sessions/"+id, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		fixture.router.ServeHTTP(w, req)
		return w
	}

	listIDs := func(token string) []SessionResponse {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/sessions", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		fixture.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Data struct {
				Items []SessionResponse `json:"items"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return body.Data.Items
	}

	items := listIDs(current.Token)
	require.Len(t, items, 2)

	var currentID, otherID string
	for _, item := range items {
		if item.IsCurrentSession {
			currentID = item.ID.String()
		} else {
			otherID = item.ID.String()
		}
	}

	t.Run("invalid id", func(t *testing.T) {
		w := deleteSession("not-a-uuid", current.Token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("current session refused", func(t *testing.T) {
		w := deleteSession(currentID, current.Token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown session", func(t *testing.T) {
		w := deleteSession("00000000-0000-0000-0000-000000000000", current.Token)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("other session terminated", func(t *testing.T) {
		w := deleteSession(otherID, current.Token)
		require.Equal(t, http.StatusOK, w.Code)

		// Its token is dead
		assert.Equal(t, http.StatusUnauthorized, fixture.postJSON("/api/auth/logout", nil, bearer(other.Token)).Code)
		assert.Len(t, listIDs(current.Token), 1)
	})
}

func TestTerminateAllSessions(t *testing.T) {
	fixture := newHandlerFixture(t)
	fixture.createUser(t, "tenant@ultrabms.com", "s3cure-pass", models.RoleTenant)

	first, _ := fixture.login(t, "tenant@ultrabms.com", "s3cure-pass")
	second, _ := fixture.login(t, "tenant@ultrabms.com", "s3cure-pass")
	current, _ := fixture.login(t, "tenant@ultrabms.com", "s3cure-pass")

	req := httptest.NewRequest(http.MethodDelete, "/api/auth/sessions", nil)
	req.Header.Set("Authorization", "Bearer "+current.Token)
	w := httptest.NewRecorder()
	fixture.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 2, body["sessions_revoked"])

	// Others are gone, the caller's session survives
	assert.Equal(t, http.StatusUnauthorized, fixture.postJSON("/api/auth/logout", nil, bearer(first.Token)).Code)
	assert.Equal(t, http.StatusUnauthorized, fixture.postJSON("/api/auth/logout", nil, bearer(second.Token)).Code)
	assert.Equal(t, http.StatusOK, fixture.postJSON("/api/auth/logout", nil, bearer(current.Token)).Code)
}

func TestSessionRoutes_RequireSessionManagePermission(t *testing.T) {
	// A role stripped of session:manage authenticates fine but is refused the
	// session-management surface
	grants := permission.DefaultRolePermissions()
	grants[models.RoleTenant] = []string{"lease:read"}

	fixture := newHandlerFixtureWithResolver(t, permission.NewResolver(grants))
	fixture.createUser(t, "tenant@ultrabms.com", "s3cure-pass", models.RoleTenant)
	resp, _ := fixture.login(t, "tenant@ultrabms.com", "s3cure-pass")

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+resp.Token)
		w := httptest.NewRecorder()
		fixture.router.ServeHTTP(w, req)
		return w
	}

	w := get("/api/auth/sessions")
	require.Equal(t, http.StatusForbidden, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "FORBIDDEN", body["code"])

	assert.Equal(t, http.StatusForbidden, get("/api/auth/login-history").Code)

	// The auth surface itself is not behind the permission gate
	assert.Equal(t, http.StatusOK, fixture.postJSON("/api/auth/logout", nil, bearer(resp.Token)).Code)
}

func TestGetLoginHistory(t *testing.T) {
	fixture := newHandlerFixture(t)
	fixture.createUser(t, "tenant@ultrabms.com", "s3cure-pass", models.RoleTenant)

	// One failure, then a success
	fixture.postJSON("/api/auth/login", LoginRequest{Email: "tenant@ultrabms.com", Password: "wrong"}, nil)
	resp, _ := fixture.login(t, "tenant@ultrabms.com", "s3cure-pass")

	fetch := func(path string) []LoginHistoryResponse {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+resp.Token)
		w := httptest.NewRecorder()
		fixture.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Data struct {
				Items []LoginHistoryResponse `json:"items"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return body.Data.Items
	}

	all := fetch("/api/auth/login-history")
	require.Len(t, all, 2)

	var failed *LoginHistoryResponse
	for i := range all {
		if !all[i].Successful {
			failed = &all[i]
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, "wrong_password", failed.FailureType)

	// Pagination limit applies
	page := fetch("/api/auth/login-history?page=1&limit=1")
	assert.Len(t, page, 1)
}
