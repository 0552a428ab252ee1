package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/drivethru-app/config"
)

const (
	ServiceName    = "Drive-Thru Ordering API"
	ServiceVersion = "1.0.0"
)

type HealthController struct {
	Config *config.Config
}

func NewHealthController(cfg *config.Config) *HealthController {
	return &HealthController{Config: cfg}
}

func (hc *HealthController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"service":     ServiceName,
		"version":     ServiceVersion,
		"environment": hc.Config.Environment,
		"ai_provider": hc.Config.AIProvider,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}
