package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const serviceName = "authgate-api"

// HealthResponse reports that the API process is serving
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
}

// @Summary Health check
// @Description Reports that the API is online
// @Tags system
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "online",
		Timestamp: time.Now().UTC(),
		Service:   serviceName,
		Version:   s.version,
	})
}

func (s *Server) notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"message": "Not Found"})
}
