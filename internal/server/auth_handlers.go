package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/alumnihub-dev/alumnihub/internal/auth"
	"github.com/alumnihub-dev/alumnihub/internal/models"
	"github.com/alumnihub-dev/alumnihub/internal/tasks"
)

// RegisterRequest represents an account registration request
type RegisterRequest struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=8"`
	GraduationYear int    `json:"graduation_year" binding:"required,gradyear"`
	Phone          string `json:"phone"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by login and register
type AuthResponse struct {
	Token string      `json:"token"`
	User  *UserDetail `json:"user"`
}

// UserDetail represents member information returned in responses
type UserDetail struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Name             string     `json:"name"`
	Phone            string     `json:"phone"`
	GraduationYear   int        `json:"graduation_year"`
	MemberNumber     string     `json:"member_number"`
	MembershipStatus string     `json:"membership_status"`
	MembershipExpiry *time.Time `json:"membership_expiry"`
	CreatedAt        time.Time  `json:"created_at"`
}

// UpdateProfileRequest represents a partial profile update
type UpdateProfileRequest struct {
	Name           *string `json:"name" binding:"omitempty,min=1"`
	Phone          *string `json:"phone"`
	GraduationYear *int    `json:"graduation_year" binding:"omitempty,gradyear"`
}

func userDetail(user *models.User) *UserDetail {
	return &UserDetail{
		ID:               user.ID,
		Email:            user.Email,
		Name:             user.Name,
		Phone:            user.Phone,
		GraduationYear:   user.GraduationYear,
		MemberNumber:     user.MemberNumber,
		MembershipStatus: user.MembershipStatus,
		MembershipExpiry: user.MembershipExpiry,
		CreatedAt:        user.CreatedAt,
	}
}

func (s *Server) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to check existing email")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if count > 0 {
		respondFieldErrors(c, map[string][]string{
			"email": {"The email has already been taken."},
		})
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		respondError(c, http.StatusInternalServerError, "Failed to create account")
		return
	}

	user := &models.User{
		Email:            req.Email,
		PasswordHash:     passwordHash,
		Name:             req.Name,
		Phone:            req.Phone,
		GraduationYear:   req.GraduationYear,
		MemberNumber:     models.GenerateMemberNumber(req.GraduationYear),
		MembershipStatus: models.MembershipPending,
	}

	if err := s.db.Create(user).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create user")
		respondError(c, http.StatusInternalServerError, "Failed to create account")
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate token")
		respondError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	s.enqueueTask(tasks.NewWelcomeTask(user.ID))

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("Member registered")

	c.JSON(http.StatusCreated, AuthResponse{Token: token, User: userDetail(user)})
}

func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			respondError(c, http.StatusUnprocessableEntity, "Invalid credentials")
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find user")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := auth.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "Invalid credentials")
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate token")
		respondError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("Member logged in")

	c.JSON(http.StatusOK, AuthResponse{Token: token, User: userDetail(&user)})
}

func (s *Server) logout(c *gin.Context) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		respondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	revoked := &models.RevokedToken{
		JTI:       sessionData.JTI,
		ExpiresAt: sessionData.TokenExpiresAt,
	}
	if err := s.db.Create(revoked).Error; err != nil {
		s.logger.Error().Err(err).Str("jti", sessionData.JTI).Msg("Failed to revoke token")
		respondError(c, http.StatusInternalServerError, "Failed to log out")
		return
	}

	s.logger.Info().Str("user_id", sessionData.UserID).Msg("Member logged out")

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (s *Server) getCurrentUser(c *gin.Context) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		respondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var user models.User
	if err := s.db.Where("id = ?", sessionData.UserID).First(&user).Error; err != nil {
		s.logger.Error().Err(err).Str("user_id", sessionData.UserID).Msg("Failed to find user")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, userDetail(&user))
}

func (s *Server) updateProfile(c *gin.Context) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		respondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	var user models.User
	if err := s.db.Where("id = ?", sessionData.UserID).First(&user).Error; err != nil {
		s.logger.Error().Err(err).Str("user_id", sessionData.UserID).Msg("Failed to find user")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.GraduationYear != nil {
		user.GraduationYear = *req.GraduationYear
	}

	if err := s.db.Save(&user).Error; err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("Failed to update profile")
		respondError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	s.logger.Info().Str("user_id", user.ID).Msg("Profile updated")

	c.JSON(http.StatusOK, userDetail(&user))
}
