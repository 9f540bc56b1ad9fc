package handlers

import (
	"errors"
	"net/http"

	"varto-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateCustomerRequest struct {
	Phone     string `json:"phone" binding:"required"`
	Name      string `json:"name"`
	Email     string `json:"email" binding:"omitempty,email"`
	Address   string `json:"address"`
	PushToken string `json:"push_token"`
}

type UpdateCustomerRequest struct {
	Phone     *string `json:"phone"`
	Name      *string `json:"name"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Address   *string `json:"address"`
	PushToken *string `json:"push_token"`
}

var errDuplicatePhone = errors.New("phone already registered")

// ListCustomers returns customers matching q against phone, name or email
func (h *Handler) ListCustomers(c *gin.Context) {
	var customers []models.Customer
	query := h.db.Model(&models.Customer{})
	if q := c.Query("q"); q != "" {
		query = query.Where("(phone LIKE ? OR LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", likeTerm(q), likeTerm(q), likeTerm(q))
	}

	total, offset, limit, err := listPage(c, query, "created_at desc", &customers)
	if err != nil {
		h.dbError(c, err, "Customer", "list")
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers, "count": total, "offset": offset, "limit": limit})
}

// CreateCustomer adds a customer by phone; the phone must be unused
func (h *Handler) CreateCustomer(c *gin.Context) {
	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !validPushToken(c, req.PushToken) {
		return
	}
	phone := models.NormalizePhone(req.Phone)
	if len(phone) < 7 {
		badRequest(c, "Invalid phone number")
		return
	}
	if err := h.phoneAvailable(phone, 0); err != nil {
		h.customerConflict(c, err, "create")
		return
	}

	customer := models.Customer{
		Phone:     phone,
		Name:      req.Name,
		Email:     req.Email,
		Address:   req.Address,
		PushToken: req.PushToken,
	}
	if err := h.db.Create(&customer).Error; err != nil {
		h.dbError(c, err, "Customer", "create")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"customer": customer})
}

// GetCustomer returns a single customer
func (h *Handler) GetCustomer(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var customer models.Customer
	if err := h.db.First(&customer, id).Error; err != nil {
		h.dbError(c, err, "Customer", "retrieve")
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

// UpdateCustomer applies the fields present in the body
func (h *Handler) UpdateCustomer(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.applyCustomerUpdate(c, id, req)
}

// DeleteCustomer removes the customer; orders and listings keep the id
func (h *Handler) DeleteCustomer(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res := h.db.Delete(&models.Customer{}, id)
	if res.Error != nil {
		h.dbError(c, res.Error, "Customer", "delete")
		return
	}
	if res.RowsAffected == 0 {
		h.dbError(c, gorm.ErrRecordNotFound, "Customer", "delete")
		return
	}
	deleted(c, id, "customer")
}

// applyCustomerUpdate is shared by the admin route and /store/customers/me
func (h *Handler) applyCustomerUpdate(c *gin.Context, id uint, req UpdateCustomerRequest) {
	var customer models.Customer
	if err := h.db.First(&customer, id).Error; err != nil {
		h.dbError(c, err, "Customer", "update")
		return
	}

	if req.PushToken != nil && !validPushToken(c, *req.PushToken) {
		return
	}
	update := map[string]interface{}{}
	setIf(update, "name", req.Name)
	setIf(update, "email", req.Email)
	setIf(update, "address", req.Address)
	setIf(update, "push_token", req.PushToken)
	if req.Phone != nil {
		phone := models.NormalizePhone(*req.Phone)
		if len(phone) < 7 {
			badRequest(c, "Invalid phone number")
			return
		}
		if err := h.phoneAvailable(phone, id); err != nil {
			h.customerConflict(c, err, "update")
			return
		}
		update["phone"] = phone
	}

	if len(update) > 0 {
		if err := h.db.Model(&customer).Updates(update).Error; err != nil {
			h.dbError(c, err, "Customer", "update")
			return
		}
	}
	if err := h.db.First(&customer, id).Error; err != nil {
		h.dbError(c, err, "Customer", "retrieve")
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

func (h *Handler) phoneAvailable(phone string, selfID uint) error {
	var existing models.Customer
	err := h.db.Select("id").Where("phone = ?", phone).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID == selfID {
		return nil
	}
	return errDuplicatePhone
}

func (h *Handler) customerConflict(c *gin.Context, err error, action string) {
	if errors.Is(err, errDuplicatePhone) {
		c.JSON(http.StatusConflict, gin.H{"error": "Phone number already registered"})
		return
	}
	h.dbError(c, err, "Customer", action)
}
