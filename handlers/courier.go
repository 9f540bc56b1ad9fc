package handlers

import (
	"net/http"

	"varto-api/middleware"
	"varto-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateCourierRequest struct {
	Name        string             `json:"name" binding:"required"`
	Phone       string             `json:"phone"`
	VehicleType models.VehicleType `json:"vehicle_type" binding:"omitempty,oneof=motorcycle bicycle car on_foot"`
	IsActive    *bool              `json:"is_active"`
	IsAvailable *bool              `json:"is_available"`
	PushToken   string             `json:"push_token"`
	UserID      *uint              `json:"user_id"`
}

type UpdateCourierRequest struct {
	Name        *string             `json:"name"`
	Phone       *string             `json:"phone"`
	VehicleType *models.VehicleType `json:"vehicle_type" binding:"omitempty,oneof=motorcycle bicycle car on_foot"`
	IsActive    *bool               `json:"is_active"`
	IsAvailable *bool               `json:"is_available"`
	PushToken   *string             `json:"push_token"`
	UserID      *uint               `json:"user_id"`
}

// ListCouriers returns couriers, optionally filtered by is_active / is_available
func (h *Handler) ListCouriers(c *gin.Context) {
	var couriers []models.Courier
	query := h.db.Model(&models.Courier{})

	if active, ok := queryBool(c, "is_active"); ok {
		query = query.Where("is_active = ?", active)
	}
	if available, ok := queryBool(c, "is_available"); ok {
		query = query.Where("is_available = ?", available)
	}
	if q := c.Query("q"); q != "" {
		query = query.Where("(LOWER(name) LIKE ? OR phone LIKE ?)", likeTerm(q), likeTerm(q))
	}
	if userID, ok := queryUint(c, "user_id"); ok {
		query = query.Where("user_id = ?", userID)
	}

	total, offset, limit, err := listPage(c, query, "name asc", &couriers)
	if err != nil {
		h.dbError(c, err, "Courier", "list")
		return
	}
	c.JSON(http.StatusOK, gin.H{"couriers": couriers, "count": total, "offset": offset, "limit": limit})
}

// CreateCourier registers a courier; active by default, unavailable until they clock in
func (h *Handler) CreateCourier(c *gin.Context) {
	var req CreateCourierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !validPushToken(c, req.PushToken) {
		return
	}

	courier := models.Courier{
		Name:        req.Name,
		Phone:       req.Phone,
		VehicleType: req.VehicleType,
		IsActive:    req.IsActive == nil || *req.IsActive,
		IsAvailable: req.IsAvailable != nil && *req.IsAvailable,
		PushToken:   req.PushToken,
		UserID:      req.UserID,
	}
	if courier.VehicleType == "" {
		courier.VehicleType = models.VehicleMotorcycle
	}
	if err := h.db.Create(&courier).Error; err != nil {
		h.dbError(c, err, "Courier", "create")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"courier": courier})
}

// GetCourier returns a single courier
func (h *Handler) GetCourier(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var courier models.Courier
	if err := h.db.First(&courier, id).Error; err != nil {
		h.dbError(c, err, "Courier", "retrieve")
		return
	}
	c.JSON(http.StatusOK, gin.H{"courier": courier})
}

// UpdateCourier applies the fields present in the body. Couriers use it to
// toggle availability and register their push token.
func (h *Handler) UpdateCourier(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var courier models.Courier
	if err := h.db.First(&courier, id).Error; err != nil {
		h.dbError(c, err, "Courier", "update")
		return
	}
	if !canEditProfile(c, courier.UserID) {
		return
	}

	var req UpdateCourierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if req.PushToken != nil && !validPushToken(c, *req.PushToken) {
		return
	}
	isAdmin := middleware.GetRole(c) == models.RoleAdmin
	update := map[string]interface{}{}
	setIf(update, "name", req.Name)
	setIf(update, "phone", req.Phone)
	setIf(update, "vehicle_type", req.VehicleType)
	setIf(update, "is_available", req.IsAvailable)
	setIf(update, "push_token", req.PushToken)
	if isAdmin {
		setIf(update, "is_active", req.IsActive)
		if req.UserID != nil {
			update["user_id"] = nullableID(*req.UserID)
		}
	}

	if len(update) > 0 {
		if err := h.db.Model(&courier).Updates(update).Error; err != nil {
			h.dbError(c, err, "Courier", "update")
			return
		}
	}
	if err := h.db.First(&courier, id).Error; err != nil {
		h.dbError(c, err, "Courier", "retrieve")
		return
	}
	c.JSON(http.StatusOK, gin.H{"courier": courier})
}

// DeleteCourier removes the courier; orders keep the courier id
func (h *Handler) DeleteCourier(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res := h.db.Delete(&models.Courier{}, id)
	if res.Error != nil {
		h.dbError(c, res.Error, "Courier", "delete")
		return
	}
	if res.RowsAffected == 0 {
		h.dbError(c, gorm.ErrRecordNotFound, "Courier", "delete")
		return
	}
	deleted(c, id, "courier")
}
