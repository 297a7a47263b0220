// Package docs Ultra BMS Session & Token Authority API documentation
package docs

// Swagger documentation info
// @title Ultra BMS Session & Token Authority API
// @version 1.0
// @description Authentication, session and permission authority for the Ultra BMS platform

// @contact.name API Support
// @contact.email support@ultrabms.com

// @host localhost:8001
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

// Auth Service Endpoints
// @tag.name auth
// @tag.description Login, token refresh, logout and token introspection

// @tag.name sessions
// @tag.description Device session management

// @tag.name auth-security
// @tag.description Login history and security features
