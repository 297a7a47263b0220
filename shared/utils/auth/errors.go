package utils

import "errors"

// Failure taxonomy for the session/token authority. The HTTP layer maps all
// of these to 401 except ErrPermissionDenied, which is a post-authentication
// 403. Only the session timeout errors leak a reason to the client.
var (
	ErrInvalidToken           = errors.New("invalid token")
	ErrExpiredToken           = errors.New("token expired")
	ErrRevokedToken           = errors.New("token revoked")
	ErrSessionIdleTimeout     = errors.New("session idle timeout")
	ErrSessionAbsoluteTimeout = errors.New("session absolute timeout")
	ErrSessionNotFound        = errors.New("session not found")
	ErrPermissionDenied       = errors.New("permission denied")
)
