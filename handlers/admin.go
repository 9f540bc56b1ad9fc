package handlers

import (
	"net/http"
	"time"

	"varto-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type statusCount struct {
	Status models.OrderStatus
	Count  int64
}

// Dashboard aggregates the headline numbers for the admin home screen
func (h *Handler) Dashboard(c *gin.Context) {
	now := h.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	today := dayStart.Format("2006-01-02")

	counts := map[string]int64{}
	countQueries := []struct {
		key   string
		query *gorm.DB
	}{
		{"vendors", h.db.Model(&models.Vendor{})},
		{"active_vendors", h.db.Model(&models.Vendor{}).Where("is_active = ?", true)},
		{"couriers", h.db.Model(&models.Courier{})},
		{"active_couriers", h.db.Model(&models.Courier{}).Where("is_active = ?", true)},
		{"available_couriers", h.db.Model(&models.Courier{}).Where("is_active = ? AND is_available = ?", true, true)},
		{"customers", h.db.Model(&models.Customer{})},
		{"pending_listings", h.db.Model(&models.Listing{}).Where("status = ?", models.ListingPending)},
		{"appointments_today", h.db.Model(&models.Appointment{}).Where("date = ?", today)},
		{"orders", h.db.Model(&models.VartoOrder{})},
		{"orders_today", h.db.Model(&models.VartoOrder{}).Where("created_at >= ?", dayStart)},
	}
	for _, cq := range countQueries {
		var n int64
		if err := cq.query.Count(&n).Error; err != nil {
			h.dbError(c, err, "Dashboard", "load")
			return
		}
		counts[cq.key] = n
	}

	var rows []statusCount
	if err := h.db.Model(&models.VartoOrder{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		h.dbError(c, err, "Dashboard", "load")
		return
	}
	byStatus := map[string]int64{}
	for _, r := range rows {
		byStatus[string(r.Status)] = r.Count
	}

	var revenue, revenueToday float64
	if err := h.db.Model(&models.VartoOrder{}).
		Where("status = ?", models.StatusDelivered).
		Select("COALESCE(SUM(total), 0)").Scan(&revenue).Error; err != nil {
		h.dbError(c, err, "Dashboard", "load")
		return
	}
	if err := h.db.Model(&models.VartoOrder{}).
		Where("status = ? AND created_at >= ?", models.StatusDelivered, dayStart).
		Select("COALESCE(SUM(total), 0)").Scan(&revenueToday).Error; err != nil {
		h.dbError(c, err, "Dashboard", "load")
		return
	}

	var recent []models.VartoOrder
	if err := h.db.Preload("Vendor").Order("created_at desc").Limit(10).Find(&recent).Error; err != nil {
		h.dbError(c, err, "Dashboard", "load")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"counts":           counts,
		"orders_by_status": byStatus,
		"revenue": gin.H{
			"delivered_total": revenue,
			"delivered_today": revenueToday,
		},
		"recent_orders": recent,
		"generated_at":  now,
	})
}
