package handlers

import (
	"net/http"

	"varto-api/middleware"
	"varto-api/models"
	"varto-api/realtime"

	"github.com/gin-gonic/gin"
)

// Health reports process and database liveness
func (h *Handler) Health(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":  status,
		"service": "Varto API",
		"version": "1.0.0",
	})
}

// Welcome describes the two namespaces
func (h *Handler) Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":    "Varto API",
		"health":     "/health",
		"admin":      "/admin",
		"store":      "/store",
		"statuses":   "/admin/order-statuses",
		"roles":      []models.UserRole{models.RoleAdmin, models.RoleVendor, models.RoleCourier},
		"categories": models.ListingCategories,
	})
}

// LiveFeed upgrades a staff connection onto the admin event hub
func LiveFeed(hub *realtime.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.IsWebsocket() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Websocket upgrade required"})
			return
		}
		hub.Serve(c.Writer, c.Request, middleware.GetUserID(c))
	}
}
