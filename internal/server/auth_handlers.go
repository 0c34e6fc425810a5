package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/branchd-dev/authgate/internal/auth"
)

// LoginRequest represents a login request, sent as JSON or as a form
type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Status    string    `json:"status"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// @Summary Login
// @Description Verifies email and password and starts a session
// @Tags auth
// @Accept json
// @Accept x-www-form-urlencoded
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /auth/login [post]
func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "Invalid request"})
		return
	}

	token, expiresAt, user, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredential) {
			s.logger.Info().Err(err).Str("email", req.Email).Msg("Login failed")
			c.JSON(http.StatusUnauthorized, gin.H{"status": "Invalid email or password"})
			return
		}
		s.logger.Error().Err(err).Str("failure", "store_unavailable").Msg("Failed to log in")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "Internal server error"})
		return
	}

	s.setSessionCookie(c.Writer, token, expiresAt)
	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User logged in")

	c.JSON(http.StatusOK, LoginResponse{
		Status:    "success",
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// @Summary Logout
// @Description Ends the current session
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /auth/logout [post]
func (s *Server) logout(c *gin.Context) {
	if err := s.auth.Logout(c.Request.Context(), sessionToken(c)); err != nil {
		s.logger.Error().Err(err).Str("failure", "store_unavailable").Msg("Failed to log out")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "Internal server error"})
		return
	}

	s.clearSessionCookie(c.Writer)

	if session, ok := GetSessionData(c); ok {
		s.logger.Info().Str("email", session.Email).Msg("User logged out")
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
