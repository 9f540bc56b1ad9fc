package handlers

import (
	"net/http"

	"varto-api/middleware"
	"varto-api/models"

	"github.com/gin-gonic/gin"
)

func scrubVendor(v *models.Vendor) {
	if v != nil {
		v.IBAN = ""
		v.PushToken = ""
		v.UserID = nil
	}
}

// scrubOrder clears payout, push and account details from an order's
// preloaded vendor and courier before it goes to a customer.
func scrubOrder(o *models.VartoOrder) {
	scrubVendor(o.Vendor)
	if o.Courier != nil {
		o.Courier.PushToken = ""
		o.Courier.UserID = nil
	}
}

// publicVendor is the storefront view of a vendor; payout and push details
// stay in the admin namespace.
type publicVendor struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	OpeningHours string `json:"opening_hours"`
}

func toPublicVendor(v models.Vendor) publicVendor {
	return publicVendor{
		ID:           v.ID,
		Name:         v.Name,
		Slug:         v.Slug,
		Phone:        v.Phone,
		Address:      v.Address,
		Category:     v.Category,
		Description:  v.Description,
		OpeningHours: v.OpeningHours,
	}
}

type StoreOrderRequest struct {
	VendorID        uint                 `json:"vendor_id" binding:"required"`
	CustomerName    string               `json:"customer_name"`
	CustomerPhone   string               `json:"customer_phone"`
	DeliveryAddress string               `json:"delivery_address" binding:"required"`
	Notes           string               `json:"notes"`
	PaymentMethod   models.PaymentMethod `json:"payment_method" binding:"omitempty,oneof=cash card"`
	Items           []OrderItemInput     `json:"items" binding:"required,min=1,dive"`
}

// StoreGetMe returns the signed-in customer
func (h *Handler) StoreGetMe(c *gin.Context) {
	var customer models.Customer
	if err := h.db.First(&customer, middleware.GetCustomerID(c)).Error; err != nil {
		h.dbError(c, err, "Customer", "retrieve")
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

// StoreUpdateMe updates the signed-in customer's profile. The phone is the
// login identity and cannot be changed here.
func (h *Handler) StoreUpdateMe(c *gin.Context) {
	var req UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	req.Phone = nil
	h.applyCustomerUpdate(c, middleware.GetCustomerID(c), req)
}

// StoreListVendors lists active vendors
func (h *Handler) StoreListVendors(c *gin.Context) {
	query := h.db.Model(&models.Vendor{}).Where("is_active = ?", true)
	if q := c.Query("q"); q != "" {
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", likeTerm(q), likeTerm(q))
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var vendors []models.Vendor
	total, offset, limit, err := listPage(c, query, "name asc", &vendors)
	if err != nil {
		h.dbError(c, err, "Vendor", "list")
		return
	}
	out := make([]publicVendor, len(vendors))
	for i, v := range vendors {
		out[i] = toPublicVendor(v)
	}
	c.JSON(http.StatusOK, gin.H{"vendors": out, "count": total, "offset": offset, "limit": limit})
}

// StoreGetVendor returns an active vendor
func (h *Handler) StoreGetVendor(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var vendor models.Vendor
	if err := h.db.Where("is_active = ?", true).First(&vendor, id).Error; err != nil {
		h.dbError(c, err, "Vendor", "retrieve")
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendor": toPublicVendor(vendor)})
}

// StoreCreateOrder places a pending order for the signed-in customer
func (h *Handler) StoreCreateOrder(c *gin.Context) {
	var req StoreOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	var vendor models.Vendor
	if err := h.db.Where("is_active = ?", true).First(&vendor, req.VendorID).Error; err != nil {
		h.dbError(c, err, "Vendor", "retrieve")
		return
	}
	var customer models.Customer
	if err := h.db.First(&customer, middleware.GetCustomerID(c)).Error; err != nil {
		h.dbError(c, err, "Customer", "retrieve")
		return
	}

	name, phone := req.CustomerName, req.CustomerPhone
	if name == "" {
		name = customer.Name
	}
	if phone == "" {
		phone = customer.Phone
	}
	order := buildOrder(CreateOrderRequest{
		VendorID:        vendor.ID,
		CustomerID:      &customer.ID,
		Status:          models.StatusPending,
		CustomerName:    name,
		CustomerPhone:   phone,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
		PaymentMethod:   req.PaymentMethod,
		Items:           req.Items,
	})
	h.createOrder(c, &order)
}

// StoreListOrders returns the signed-in customer's orders
func (h *Handler) StoreListOrders(c *gin.Context) {
	query := h.db.Model(&models.VartoOrder{}).Where("customer_id = ?", middleware.GetCustomerID(c))
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	var orders []models.VartoOrder
	total, offset, limit, err := listPage(c, query, "created_at desc", &orders, "Items", "Vendor")
	if err != nil {
		h.dbError(c, err, "Order", "list")
		return
	}
	for i := range orders {
		scrubOrder(&orders[i])
		withNext(&orders[i])
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": total, "offset": offset, "limit": limit})
}

// StoreGetOrder returns one of the signed-in customer's orders
func (h *Handler) StoreGetOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var order models.VartoOrder
	err := h.db.Preload("Items").Preload("Vendor").Preload("Courier").
		Where("customer_id = ?", middleware.GetCustomerID(c)).
		First(&order, id).Error
	if err != nil {
		h.dbError(c, err, "Order", "retrieve")
		return
	}
	scrubOrder(&order)
	withNext(&order)
	c.JSON(http.StatusOK, gin.H{"order": order})
}
