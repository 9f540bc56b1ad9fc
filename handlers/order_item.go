package handlers

import (
	"net/http"

	"varto-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UpdateOrderItemRequest struct {
	ProductName *string  `json:"product_name"`
	Quantity    *int     `json:"quantity" binding:"omitempty,min=1"`
	UnitPrice   *float64 `json:"unit_price" binding:"omitempty,gte=0"`
	Notes       *string  `json:"notes"`
}

// AddOrderItem appends a line item and recomputes the order totals
func (h *Handler) AddOrderItem(c *gin.Context) {
	order, ok := h.loadOrder(c, "update")
	if !ok {
		return
	}
	var req OrderItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	order.Items = append(order.Items, models.VartoOrderItem{
		OrderID:     order.ID,
		ProductName: req.ProductName,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		Notes:       req.Notes,
	})
	h.repriceOrder(c, order, http.StatusCreated)
}

// UpdateOrderItem changes one line item and recomputes the order totals
func (h *Handler) UpdateOrderItem(c *gin.Context) {
	order, ok := h.loadOrder(c, "update")
	if !ok {
		return
	}
	item, ok := orderItem(c, order)
	if !ok {
		return
	}
	var req UpdateOrderItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.ProductName != nil {
		item.ProductName = *req.ProductName
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.UnitPrice != nil {
		item.UnitPrice = *req.UnitPrice
	}
	if req.Notes != nil {
		item.Notes = *req.Notes
	}
	h.repriceOrder(c, order, http.StatusOK)
}

// DeleteOrderItem removes one line item and recomputes the order totals
func (h *Handler) DeleteOrderItem(c *gin.Context) {
	order, ok := h.loadOrder(c, "update")
	if !ok {
		return
	}
	item, ok := orderItem(c, order)
	if !ok {
		return
	}
	itemID := item.ID
	if len(order.Items) == 1 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Order must keep at least one item"})
		return
	}

	kept := order.Items[:0]
	for _, it := range order.Items {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	order.Items = kept
	order.Reprice()

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.VartoOrderItem{}, itemID).Error; err != nil {
			return err
		}
		return saveTotals(tx, order)
	})
	if err != nil {
		h.dbError(c, err, "Order item", "delete")
		return
	}
	h.feed.Broadcast("order_updated", order)
	c.JSON(http.StatusOK, gin.H{
		"id":      itemID,
		"object":  "varto_order_item",
		"deleted": true,
		"order":   order,
	})
}

// repriceOrder recomputes every item and the order totals, then persists
// them in one transaction.
func (h *Handler) repriceOrder(c *gin.Context, order *models.VartoOrder, status int) {
	order.Reprice()
	err := h.db.Transaction(func(tx *gorm.DB) error {
		for i := range order.Items {
			if err := tx.Save(&order.Items[i]).Error; err != nil {
				return err
			}
		}
		return saveTotals(tx, order)
	})
	if err != nil {
		h.dbError(c, err, "Order item", "save")
		return
	}
	withNext(order)
	h.feed.Broadcast("order_updated", order)
	c.JSON(status, gin.H{"order": order})
}

func saveTotals(tx *gorm.DB, order *models.VartoOrder) error {
	return tx.Model(&models.VartoOrder{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
		"subtotal": order.Subtotal,
		"total":    order.Total,
	}).Error
}

// orderItem finds :itemId among the order's items
func orderItem(c *gin.Context, order *models.VartoOrder) (*models.VartoOrderItem, bool) {
	itemID, ok := paramID(c, "itemId")
	if !ok {
		return nil, false
	}
	for i := range order.Items {
		if order.Items[i].ID == itemID {
			return &order.Items[i], true
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Order item not found"})
	return nil, false
}
