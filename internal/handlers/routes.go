package handlers

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the service's HTTP surface onto the router.
func RegisterRoutes(router *gin.Engine, locations *LocationHandler, ws *WSHandler, health *HealthHandler) {
	router.POST("/api/v1/locations", locations.PostLocation)
	router.GET("/api/v1/locations/history", locations.GetHistory)
	router.GET("/ws/locations", ws.Serve)
	router.GET("/healthz", health.Status)
}
