package handlers

import (
	"net/http"

	"varto-api/middleware"
	"varto-api/models"
	"varto-api/notify"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type CreateNotificationRequest struct {
	RecipientType models.RecipientType `json:"recipient_type" binding:"required"`
	RecipientID   uint                 `json:"recipient_id" binding:"required"`
	Title         string               `json:"title" binding:"required"`
	Body          string               `json:"body"`
	Type          string               `json:"type"`
	ReferenceType string               `json:"reference_type"`
	ReferenceID   *uint                `json:"reference_id"`
	// Push also sends the message through the push gateway
	Push bool `json:"push"`
}

type ReadAllRequest struct {
	RecipientType models.RecipientType `json:"recipient_type" binding:"required"`
	RecipientID   uint                 `json:"recipient_id" binding:"required"`
}

// ListNotifications returns notification rows, newest first
func (h *Handler) ListNotifications(c *gin.Context) {
	query := h.db.Model(&models.VartoNotification{})
	if t := c.Query("recipient_type"); t != "" {
		query = query.Where("recipient_type = ?", t)
	}
	if id, ok := queryUint(c, "recipient_id"); ok {
		query = query.Where("recipient_id = ?", id)
	}
	if read, ok := queryBool(c, "is_read"); ok {
		query = query.Where("is_read = ?", read)
	}
	if t := c.Query("type"); t != "" {
		query = query.Where("type = ?", t)
	}
	h.listNotifications(c, query)
}

// CreateNotification writes a notification row. With push set the row and
// the push go out through the notifier in the background instead.
func (h *Handler) CreateNotification(c *gin.Context) {
	var req CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !req.RecipientType.Valid() {
		badRequest(c, "recipient_type must be vendor, courier or customer")
		return
	}
	if req.Type == "" {
		req.Type = "manual"
	}

	if req.Push && h.notifier != nil {
		recipient, err := h.notifier.Lookup(req.RecipientType, req.RecipientID)
		if err != nil {
			h.dbError(c, err, "Recipient", "retrieve")
			return
		}
		h.notifier.Dispatch([]notify.Recipient{recipient}, notify.Content{
			Title:         req.Title,
			Body:          req.Body,
			Type:          req.Type,
			ReferenceType: req.ReferenceType,
			ReferenceID:   req.ReferenceID,
		})
		c.JSON(http.StatusAccepted, gin.H{
			"queued":         true,
			"recipient_type": recipient.Type,
			"recipient_id":   recipient.ID,
			"has_push_token": recipient.PushToken != "",
		})
		return
	}

	n := models.VartoNotification{
		RecipientType: req.RecipientType,
		RecipientID:   req.RecipientID,
		Title:         req.Title,
		Body:          req.Body,
		Type:          req.Type,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
	}
	if err := h.db.Create(&n).Error; err != nil {
		h.dbError(c, err, "Notification", "create")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"notification": n})
}

// MarkNotificationRead flags one notification as read
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	h.markRead(c, h.db.Where("id = ?", id))
}

// MarkAllNotificationsRead flags every unread notification of a recipient
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	var req ReadAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	res := h.db.Model(&models.VartoNotification{}).
		Where("recipient_type = ? AND recipient_id = ? AND is_read = ?", req.RecipientType, req.RecipientID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": h.now().UTC()})
	if res.Error != nil {
		h.dbError(c, res.Error, "Notification", "update")
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": res.RowsAffected})
}

// DeleteNotification removes a notification row
func (h *Handler) DeleteNotification(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res := h.db.Delete(&models.VartoNotification{}, id)
	if res.Error != nil {
		h.dbError(c, res.Error, "Notification", "delete")
		return
	}
	if res.RowsAffected == 0 {
		h.dbError(c, gorm.ErrRecordNotFound, "Notification", "delete")
		return
	}
	deleted(c, id, "varto_notification")
}

// StoreListNotifications returns the signed-in customer's inbox
func (h *Handler) StoreListNotifications(c *gin.Context) {
	query := h.db.Model(&models.VartoNotification{}).
		Where("recipient_type = ? AND recipient_id = ?", models.RecipientCustomer, middleware.GetCustomerID(c))
	if read, ok := queryBool(c, "is_read"); ok {
		query = query.Where("is_read = ?", read)
	}
	h.listNotifications(c, query)
}

// StoreMarkNotificationRead flags one of the customer's own notifications
func (h *Handler) StoreMarkNotificationRead(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	h.markRead(c, h.db.Where("id = ? AND recipient_type = ? AND recipient_id = ?",
		id, models.RecipientCustomer, middleware.GetCustomerID(c)))
}

func (h *Handler) listNotifications(c *gin.Context, query *gorm.DB) {
	var unread int64
	if err := query.Session(&gorm.Session{}).Where("is_read = ?", false).Count(&unread).Error; err != nil {
		h.dbError(c, err, "Notification", "list")
		return
	}
	var notifications []models.VartoNotification
	total, offset, limit, err := listPage(c, query, "created_at desc, id desc", &notifications)
	if err != nil {
		h.dbError(c, err, "Notification", "list")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unread":        unread,
		"count":         total,
		"offset":        offset,
		"limit":         limit,
	})
}

// markRead loads the single notification matched by scope and marks it read
func (h *Handler) markRead(c *gin.Context, scope *gorm.DB) {
	var n models.VartoNotification
	if err := scope.First(&n).Error; err != nil {
		h.dbError(c, err, "Notification", "update")
		return
	}
	if !n.IsRead {
		now := h.now().UTC()
		if err := h.db.Model(&n).Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error; err != nil {
			h.dbError(c, err, "Notification", "update")
			return
		}
		n.IsRead = true
		n.ReadAt = &now
		h.logger.WithFields(logrus.Fields{
			"notification_id": n.ID,
			"recipient_type":  n.RecipientType,
		}).Debug("Notification marked read")
	}
	c.JSON(http.StatusOK, gin.H{"notification": n})
}
