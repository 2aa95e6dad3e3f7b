package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/alumnihub-dev/alumnihub/internal/auth"
	"github.com/alumnihub-dev/alumnihub/internal/models"
)

const (
	bearerPrefix = "Bearer "
)

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthFormat = errors.New("invalid authorization header format")
	ErrEmptyToken        = errors.New("empty token")
	ErrInvalidToken      = errors.New("invalid token")
	ErrRevokedToken      = errors.New("revoked token")
	ErrUserNotFound      = errors.New("user not found")
)

func setSession(c *gin.Context, sessionData *auth.SessionData) {
	c.Set("session", sessionData)
}

// GetSessionData returns the authenticated session attached by the middleware
func GetSessionData(c *gin.Context) (*auth.SessionData, bool) {
	session, exists := c.Get("session")
	if !exists {
		return nil, false
	}

	sessionData, ok := session.(*auth.SessionData)
	return sessionData, ok
}

func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}

	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidAuthFormat
	}

	token := strings.TrimPrefix(authHeader, bearerPrefix)
	if token == "" {
		return "", ErrEmptyToken
	}

	return token, nil
}

func abortUnauthorized(c *gin.Context, log zerolog.Logger, err error, message string) {
	log.Warn().Err(err).Msg(message)
	c.JSON(http.StatusUnauthorized, ErrorResponse{Message: message})
	c.Abort()
}

// JWTAuthMiddleware validates bearer tokens on every protected route.
// Tokens revoked by logout are rejected even while still within their TTL.
func JWTAuthMiddleware(db *gorm.DB, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			var message string
			switch err {
			case ErrMissingAuthHeader:
				message = "Missing authorization header"
			case ErrInvalidAuthFormat:
				message = "Invalid authorization header format"
			case ErrEmptyToken:
				message = "Empty token"
			}
			abortUnauthorized(c, log, err, message)
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			abortUnauthorized(c, log, ErrInvalidToken, "Invalid or expired token")
			return
		}

		// Reject tokens revoked by logout
		var revokedCount int64
		if err := db.Model(&models.RevokedToken{}).Where("jti = ?", claims.ID).Count(&revokedCount).Error; err != nil {
			log.Error().Err(err).Msg("Failed to check token revocation")
			abortUnauthorized(c, log, ErrInvalidToken, "Invalid or expired token")
			return
		}
		if revokedCount > 0 {
			abortUnauthorized(c, log, ErrRevokedToken, "Invalid or expired token")
			return
		}

		// Verify user still exists
		var user models.User
		if err := db.Where("id = ?", claims.UserID).First(&user).Error; err != nil {
			log.Warn().Err(err).Str("user_id", claims.UserID).Msg("User not found")
			abortUnauthorized(c, log, ErrUserNotFound, "Invalid or expired token")
			return
		}

		expiresAt := time.Now().Add(auth.TokenTTL)
		if claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}

		setSession(c, &auth.SessionData{
			UserID:         user.ID,
			Email:          user.Email,
			JTI:            claims.ID,
			TokenExpiresAt: expiresAt,
		})

		c.Next()
	}
}
