package handlers

import (
	"errors"
	"net/http"

	"varto-api/middleware"
	"varto-api/models"
	"varto-api/statemachine"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type OrderItemInput struct {
	ProductName string  `json:"product_name" binding:"required"`
	Quantity    int     `json:"quantity" binding:"required,min=1"`
	UnitPrice   float64 `json:"unit_price" binding:"gte=0"`
	Notes       string  `json:"notes"`
}

type CreateOrderRequest struct {
	VendorID        uint                 `json:"vendor_id" binding:"required"`
	CustomerID      *uint                `json:"customer_id"`
	CourierID       *uint                `json:"courier_id"`
	Status          models.OrderStatus   `json:"status"`
	CustomerName    string               `json:"customer_name"`
	CustomerPhone   string               `json:"customer_phone"`
	DeliveryAddress string               `json:"delivery_address"`
	Notes           string               `json:"notes"`
	PaymentMethod   models.PaymentMethod `json:"payment_method" binding:"omitempty,oneof=cash card"`
	DeliveryFee     float64              `json:"delivery_fee" binding:"gte=0"`
	Items           []OrderItemInput     `json:"items" binding:"required,min=1,dive"`
}

type UpdateOrderRequest struct {
	Status          *models.OrderStatus   `json:"status"`
	CourierID       *uint                 `json:"courier_id"`
	CustomerID      *uint                 `json:"customer_id"`
	CustomerName    *string               `json:"customer_name"`
	CustomerPhone   *string               `json:"customer_phone"`
	DeliveryAddress *string               `json:"delivery_address"`
	Notes           *string               `json:"notes"`
	PaymentMethod   *models.PaymentMethod `json:"payment_method" binding:"omitempty,oneof=cash card"`
	DeliveryFee     *float64              `json:"delivery_fee" binding:"omitempty,gte=0"`
}

var errInvalidStatus = errors.New("invalid order status")

// claimable statuses are the ones an unassigned courier may pick up
var claimable = []models.OrderStatus{models.StatusConfirmed, models.StatusPreparing, models.StatusReady, models.StatusAssigned}

// ListOrders returns orders visible to the caller with a status summary
func (h *Handler) ListOrders(c *gin.Context) {
	query, err := h.scopeOrders(c, h.db.Model(&models.VartoOrder{}))
	if err != nil {
		h.dbError(c, err, "Order", "list")
		return
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if vendorID, ok := queryUint(c, "vendor_id"); ok {
		query = query.Where("vendor_id = ?", vendorID)
	}
	if courierID, ok := queryUint(c, "courier_id"); ok {
		query = query.Where("courier_id = ?", courierID)
	}
	if customerID, ok := queryUint(c, "customer_id"); ok {
		query = query.Where("customer_id = ?", customerID)
	}
	if unassigned, ok := queryBool(c, "unassigned"); ok && unassigned {
		query = query.Where("courier_id IS NULL")
	}

	// summary covers the whole filtered set, not just this page
	var rows []statusCount
	if err := query.Session(&gorm.Session{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		h.dbError(c, err, "Order", "list")
		return
	}
	summary := map[string]int64{}
	for _, r := range rows {
		summary[string(r.Status)] = r.Count
	}

	var orders []models.VartoOrder
	total, offset, limit, err := listPage(c, query, "created_at desc", &orders, "Items", "Vendor", "Courier", "Customer")
	if err != nil {
		h.dbError(c, err, "Order", "list")
		return
	}
	for i := range orders {
		withNext(&orders[i])
	}
	c.JSON(http.StatusOK, gin.H{
		"orders":        orders,
		"order_summary": summary,
		"count":         total,
		"offset":        offset,
		"limit":         limit,
	})
}

// CreateOrder records an order and its items; totals are computed here
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Status == "" {
		req.Status = models.StatusPending
	}
	if !statemachine.IsValid(req.Status) {
		h.invalidStatus(c, req.Status)
		return
	}

	var vendor models.Vendor
	if err := h.db.First(&vendor, req.VendorID).Error; err != nil {
		h.dbError(c, err, "Vendor", "retrieve")
		return
	}
	order := buildOrder(req)
	h.createOrder(c, &order)
}

// GetOrder returns a single order with items and the suggested next status
func (h *Handler) GetOrder(c *gin.Context) {
	order, ok := h.loadOrder(c, "retrieve")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// UpdateOrder applies the fields present in the body. A status change to
// confirmed, delivering or delivered notifies after the response is written.
func (h *Handler) UpdateOrder(c *gin.Context) {
	order, ok := h.loadOrder(c, "update")
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Status != nil && !statemachine.IsValid(*req.Status) {
		h.invalidStatus(c, *req.Status)
		return
	}

	update := map[string]interface{}{}
	setIf(update, "status", req.Status)
	setIf(update, "customer_name", req.CustomerName)
	setIf(update, "customer_phone", req.CustomerPhone)
	setIf(update, "delivery_address", req.DeliveryAddress)
	setIf(update, "notes", req.Notes)
	setIf(update, "payment_method", req.PaymentMethod)
	if req.CourierID != nil {
		update["courier_id"] = nullableID(*req.CourierID)
	}
	if req.CustomerID != nil {
		update["customer_id"] = nullableID(*req.CustomerID)
	}
	if req.DeliveryFee != nil {
		order.DeliveryFee = *req.DeliveryFee
		order.Reprice()
		update["delivery_fee"] = order.DeliveryFee
		update["subtotal"] = order.Subtotal
		update["total"] = order.Total
	}

	h.saveOrder(c, order, update)
}

// AdvanceOrder moves an order to the next status in the flow
func (h *Handler) AdvanceOrder(c *gin.Context) {
	order, ok := h.loadOrder(c, "update")
	if !ok {
		return
	}
	next, ok := statemachine.Next(order.Status)
	if !ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":          "Order has no next status",
			"current_status": order.Status,
		})
		return
	}
	h.saveOrder(c, order, map[string]interface{}{"status": next})
}

// AcceptOrder lets a courier take an order. Nothing stops a second courier
// from accepting the same order; the last writer wins.
func (h *Handler) AcceptOrder(c *gin.Context) {
	order, ok := h.loadOrder(c, "update")
	if !ok {
		return
	}
	courier, err := h.linkedCourier(c)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusForbidden, gin.H{"error": "No courier profile linked to your account"})
			return
		}
		h.dbError(c, err, "Courier", "retrieve")
		return
	}
	h.saveOrder(c, order, map[string]interface{}{
		"courier_id": courier.ID,
		"status":     models.StatusAccepted,
	})
}

// DeleteOrder removes an order together with its items
func (h *Handler) DeleteOrder(c *gin.Context) {
	order, ok := h.loadOrder(c, "delete")
	if !ok {
		return
	}
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.VartoOrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.VartoOrder{}, order.ID).Error
	})
	if err != nil {
		h.dbError(c, err, "Order", "delete")
		return
	}
	h.feed.Broadcast("order_deleted", gin.H{"id": order.ID})
	deleted(c, order.ID, "varto_order")
}

// GetOrderStatuses documents the order flow and its notification triggers
func (h *Handler) GetOrderStatuses(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"statuses":        statemachine.Statuses(),
		"flow":            statemachine.GetAllTransitions(),
		"terminal_states": []models.OrderStatus{models.StatusDelivered, models.StatusCancelled},
		"enforced":        false,
	})
}

func buildOrder(req CreateOrderRequest) models.VartoOrder {
	order := models.VartoOrder{
		VendorID:        req.VendorID,
		CustomerID:      req.CustomerID,
		CourierID:       req.CourierID,
		Status:          req.Status,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
		PaymentMethod:   req.PaymentMethod,
		DeliveryFee:     req.DeliveryFee,
	}
	if order.PaymentMethod == "" {
		order.PaymentMethod = models.PaymentCash
	}
	for _, it := range req.Items {
		order.Items = append(order.Items, models.VartoOrderItem{
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Notes:       it.Notes,
		})
	}
	order.Reprice()
	return order
}

// createOrder inserts the order and its items in one transaction
func (h *Handler) createOrder(c *gin.Context, order *models.VartoOrder) {
	if err := h.db.Create(order).Error; err != nil {
		h.dbError(c, err, "Order", "create")
		return
	}
	withNext(order)

	h.logger.WithFields(logrus.Fields{
		"order_id":  order.ID,
		"vendor_id": order.VendorID,
		"items":     len(order.Items),
		"total":     order.Total,
	}).Info("Order created")
	h.feed.Broadcast("order_created", order)
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// loadOrder fetches :id with items, honouring the caller's scope
func (h *Handler) loadOrder(c *gin.Context, action string) (*models.VartoOrder, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	query, err := h.scopeOrders(c, h.db.Model(&models.VartoOrder{}))
	if err != nil {
		h.dbError(c, err, "Order", action)
		return nil, false
	}
	var order models.VartoOrder
	if err := query.Preload("Items").First(&order, id).Error; err != nil {
		h.dbError(c, err, "Order", action)
		return nil, false
	}
	return &order, true
}

// saveOrder writes update, answers with the fresh order and then fires the
// status notification when the status moved.
func (h *Handler) saveOrder(c *gin.Context, order *models.VartoOrder, update map[string]interface{}) {
	prev := order.Status
	if len(update) > 0 {
		if err := h.db.Model(order).Updates(update).Error; err != nil {
			h.dbError(c, err, "Order", "update")
			return
		}
	}

	var fresh models.VartoOrder
	if err := h.db.Preload("Items").Preload("Vendor").First(&fresh, order.ID).Error; err != nil {
		h.dbError(c, err, "Order", "retrieve")
		return
	}
	withNext(&fresh)
	c.JSON(http.StatusOK, gin.H{"order": fresh})

	if fresh.Status != prev {
		h.logger.WithFields(logrus.Fields{
			"order_id":        fresh.ID,
			"previous_status": prev,
			"status":          fresh.Status,
			"user_id":         middleware.GetUserID(c),
		}).Info("Order status changed")
		h.feed.Broadcast("order_updated", fresh)
		if h.notifier != nil {
			h.notifier.OrderStatusChanged(&fresh, prev)
		}
	}
}

// scopeOrders narrows the query for vendor and courier accounts. Admins and
// store callers see everything the route itself allows.
func (h *Handler) scopeOrders(c *gin.Context, query *gorm.DB) (*gorm.DB, error) {
	switch middleware.GetRole(c) {
	case models.RoleVendor:
		ids, err := h.linkedVendorIDs(c)
		if err != nil {
			return nil, err
		}
		return query.Where("vendor_id IN ?", ids), nil
	case models.RoleCourier:
		courier, err := h.linkedCourier(c)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return query.Where("1 = 0"), nil
		}
		if err != nil {
			return nil, err
		}
		return query.Where("(courier_id = ? OR (courier_id IS NULL AND status IN ?))", courier.ID, claimable), nil
	}
	return query, nil
}

func (h *Handler) linkedVendorIDs(c *gin.Context) ([]uint, error) {
	var ids []uint
	err := h.db.Model(&models.Vendor{}).Where("user_id = ?", middleware.GetUserID(c)).Pluck("id", &ids).Error
	if len(ids) == 0 {
		ids = []uint{0}
	}
	return ids, err
}

func (h *Handler) linkedCourier(c *gin.Context) (*models.Courier, error) {
	var courier models.Courier
	if err := h.db.Where("user_id = ?", middleware.GetUserID(c)).First(&courier).Error; err != nil {
		return nil, err
	}
	return &courier, nil
}

func (h *Handler) invalidStatus(c *gin.Context, s models.OrderStatus) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":    errInvalidStatus.Error() + ": " + string(s),
		"statuses": statemachine.Statuses(),
	})
}

func withNext(o *models.VartoOrder) {
	if next, ok := statemachine.Next(o.Status); ok {
		o.NextStatus = next
	}
}
