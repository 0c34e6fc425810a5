package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// UserSummary is the view of a user shown to any logged-in caller
type UserSummary struct {
	Email string `json:"email"`
}

// UserDetail represents user information shown to admins
type UserDetail struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// @Summary List users
// @Description Lists user emails. Requires a session.
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /users [get]
func (s *Server) listUsers(c *gin.Context) {
	users, err := s.users.List(c.Request.Context())
	if err != nil {
		s.logger.Error().Err(err).Str("failure", "store_unavailable").Msg("Failed to list users")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "Internal server error"})
		return
	}

	response := make([]UserSummary, 0, len(users))
	for _, user := range users {
		response = append(response, UserSummary{Email: user.Email})
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "users": response})
}

// @Summary Admin user listing
// @Description Lists users with their roles. Requires an admin session.
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /users/admin [get]
func (s *Server) adminListUsers(c *gin.Context) {
	users, err := s.users.List(c.Request.Context())
	if err != nil {
		s.logger.Error().Err(err).Str("failure", "store_unavailable").Msg("Failed to list users")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "Internal server error"})
		return
	}

	response := make([]UserDetail, 0, len(users))
	for _, user := range users {
		response = append(response, UserDetail{
			ID:        user.ID,
			Email:     user.Email,
			IsAdmin:   user.IsAdmin,
			CreatedAt: user.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "users": response})
}
