package auth

import "time"

// SessionData represents the authenticated session context for a request
type SessionData struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	// Token ID and expiry, carried so logout can revoke exactly this token
	JTI            string    `json:"jti"`
	TokenExpiresAt time.Time `json:"token_expires_at"`
}
