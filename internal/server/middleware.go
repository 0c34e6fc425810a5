package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/branchd-dev/authgate/internal/auth"
)

const (
	bearerPrefix = "Bearer "
	sessionKey   = "session"
	tokenKey     = "session_token"
)

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthFormat = errors.New("invalid authorization header format")
	ErrEmptyToken        = errors.New("empty token")
)

func setSession(c *gin.Context, sessionData *auth.SessionData) {
	c.Set(sessionKey, sessionData)
}

// GetSessionData returns the session attached by RequireLogin or RequireAdmin
func GetSessionData(c *gin.Context) (*auth.SessionData, bool) {
	session, exists := c.Get(sessionKey)
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

// sessionTokens returns the tokens the request carries, cookie first
func (s *Server) sessionTokens(c *gin.Context) []string {
	var tokens []string
	if cookie, err := c.Cookie(s.config.Sessions.CookieName); err == nil && cookie != "" {
		tokens = append(tokens, cookie)
	}
	if token, err := extractBearerToken(c.GetHeader("Authorization")); err == nil {
		tokens = append(tokens, token)
	}
	return tokens
}

// sessionToken returns the token that authorized the request
func sessionToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}

// resolve evaluates req for each token the request carries and keeps the
// first one that resolves to a session. A stale cookie does not hide a valid
// bearer token.
func (s *Server) resolve(c *gin.Context, req auth.Requirement) (auth.Decision, *auth.SessionData, string, error) {
	for _, token := range s.sessionTokens(c) {
		decision, sessionData, err := s.gate.Authorize(c.Request.Context(), token, req)
		if err != nil {
			return auth.Unauthenticated, nil, "", err
		}
		if decision != auth.Unauthenticated {
			return decision, sessionData, token, nil
		}
	}
	return auth.Unauthenticated, nil, "", nil
}

// RequireLogin admits requests carrying a live session
func (s *Server) RequireLogin() gin.HandlerFunc {
	return s.authorize(auth.RequireLogin)
}

// RequireAdmin admits requests whose session belongs to an admin
func (s *Server) RequireAdmin() gin.HandlerFunc {
	return s.authorize(auth.RequireAdmin)
}

func (s *Server) authorize(req auth.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision, sessionData, token, err := s.resolve(c, req)
		if err != nil {
			s.logger.Error().Err(err).
				Str("failure", "store_unavailable").
				Str("path", c.Request.URL.Path).
				Msg("Failed to authorize request")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": "Internal server error"})
			return
		}

		switch decision {
		case auth.Allowed:
			setSession(c, sessionData)
			c.Set(tokenKey, token)
			c.Next()
		case auth.Forbidden:
			s.logger.Debug().Str("email", sessionData.Email).Str("path", c.Request.URL.Path).Msg("Admin access denied")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "You are not authorized"})
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "Please log in"})
		}
	}
}
