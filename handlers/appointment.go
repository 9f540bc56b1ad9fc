package handlers

import (
	"errors"
	"net/http"
	"time"

	"varto-api/middleware"
	"varto-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

type CreateAppointmentRequest struct {
	VendorID      uint                     `json:"vendor_id" binding:"required"`
	CustomerID    *uint                    `json:"customer_id"`
	CustomerName  string                   `json:"customer_name"`
	CustomerPhone string                   `json:"customer_phone"`
	ServiceName   string                   `json:"service_name" binding:"required"`
	Date          string                   `json:"date" binding:"required"`
	Time          string                   `json:"time" binding:"required"`
	Notes         string                   `json:"notes"`
	Status        models.AppointmentStatus `json:"status"`
}

type UpdateAppointmentRequest struct {
	VendorID      *uint                     `json:"vendor_id"`
	CustomerName  *string                   `json:"customer_name"`
	CustomerPhone *string                   `json:"customer_phone"`
	ServiceName   *string                   `json:"service_name"`
	Date          *string                   `json:"date"`
	Time          *string                   `json:"time"`
	Notes         *string                   `json:"notes"`
	Status        *models.AppointmentStatus `json:"status"`
}

var errBadSlot = errors.New("date must be YYYY-MM-DD and time HH:MM")

func validSlot(date, clock string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return errBadSlot
	}
	if _, err := time.Parse(timeLayout, clock); err != nil {
		return errBadSlot
	}
	return nil
}

// ListAppointments returns bookings filtered by vendor, customer, status and date
func (h *Handler) ListAppointments(c *gin.Context) {
	var appointments []models.Appointment
	query := h.db.Model(&models.Appointment{})
	if vendorID, ok := queryUint(c, "vendor_id"); ok {
		query = query.Where("vendor_id = ?", vendorID)
	}
	if customerID, ok := queryUint(c, "customer_id"); ok {
		query = query.Where("customer_id = ?", customerID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if date := c.Query("date"); date != "" {
		query = query.Where("date = ?", date)
	}

	total, offset, limit, err := listPage(c, query, "date asc, time asc", &appointments, "Vendor")
	if err != nil {
		h.dbError(c, err, "Appointment", "list")
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appointments, "count": total, "offset": offset, "limit": limit})
}

// CreateAppointment books a slot at a vendor on behalf of a customer
func (h *Handler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Status == "" {
		req.Status = models.AppointmentPending
	}
	if !req.Status.Valid() {
		badRequest(c, "Invalid status. Must be: pending, confirmed, completed, cancelled, or no_show")
		return
	}
	h.createAppointment(c, req, false)
}

// GetAppointment returns a single booking
func (h *Handler) GetAppointment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var appointment models.Appointment
	if err := h.db.Preload("Vendor").First(&appointment, id).Error; err != nil {
		h.dbError(c, err, "Appointment", "retrieve")
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appointment})
}

// UpdateAppointment reschedules or changes the status of a booking
func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var appointment models.Appointment
	if err := h.db.First(&appointment, id).Error; err != nil {
		h.dbError(c, err, "Appointment", "update")
		return
	}

	var req UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	date, clock := appointment.Date, appointment.Time
	if req.Date != nil {
		date = *req.Date
	}
	if req.Time != nil {
		clock = *req.Time
	}
	if err := validSlot(date, clock); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Status != nil && !req.Status.Valid() {
		badRequest(c, "Invalid status. Must be: pending, confirmed, completed, cancelled, or no_show")
		return
	}
	if req.VendorID != nil {
		if err := h.db.Select("id").First(&models.Vendor{}, *req.VendorID).Error; err != nil {
			h.dbError(c, err, "Vendor", "retrieve")
			return
		}
	}

	update := map[string]interface{}{}
	setIf(update, "vendor_id", req.VendorID)
	setIf(update, "customer_name", req.CustomerName)
	setIf(update, "customer_phone", req.CustomerPhone)
	setIf(update, "service_name", req.ServiceName)
	setIf(update, "date", req.Date)
	setIf(update, "time", req.Time)
	setIf(update, "notes", req.Notes)
	setIf(update, "status", req.Status)

	if len(update) > 0 {
		if err := h.db.Model(&appointment).Updates(update).Error; err != nil {
			h.dbError(c, err, "Appointment", "update")
			return
		}
	}
	if err := h.db.Preload("Vendor").First(&appointment, id).Error; err != nil {
		h.dbError(c, err, "Appointment", "retrieve")
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appointment})
}

// DeleteAppointment removes a booking
func (h *Handler) DeleteAppointment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res := h.db.Delete(&models.Appointment{}, id)
	if res.Error != nil {
		h.dbError(c, res.Error, "Appointment", "delete")
		return
	}
	if res.RowsAffected == 0 {
		h.dbError(c, gorm.ErrRecordNotFound, "Appointment", "delete")
		return
	}
	deleted(c, id, "appointment")
}

// StoreCreateAppointment books for the signed-in customer; always pending
func (h *Handler) StoreCreateAppointment(c *gin.Context) {
	customerID := middleware.GetCustomerID(c)
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	req.CustomerID = &customerID
	req.Status = models.AppointmentPending

	var customer models.Customer
	if err := h.db.First(&customer, customerID).Error; err != nil {
		h.dbError(c, err, "Customer", "retrieve")
		return
	}
	if req.CustomerName == "" {
		req.CustomerName = customer.Name
	}
	if req.CustomerPhone == "" {
		req.CustomerPhone = customer.Phone
	}
	h.createAppointment(c, req, true)
}

// StoreMyAppointments lists the signed-in customer's bookings
func (h *Handler) StoreMyAppointments(c *gin.Context) {
	var appointments []models.Appointment
	query := h.db.Model(&models.Appointment{}).Where("customer_id = ?", middleware.GetCustomerID(c))
	total, offset, limit, err := listPage(c, query, "date desc, time desc", &appointments, "Vendor")
	if err != nil {
		h.dbError(c, err, "Appointment", "list")
		return
	}
	for i := range appointments {
		scrubVendor(appointments[i].Vendor)
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appointments, "count": total, "offset": offset, "limit": limit})
}

func (h *Handler) createAppointment(c *gin.Context, req CreateAppointmentRequest, activeVendorOnly bool) {
	if err := validSlot(req.Date, req.Time); err != nil {
		badRequest(c, err.Error())
		return
	}

	var vendor models.Vendor
	if err := h.db.First(&vendor, req.VendorID).Error; err != nil {
		h.dbError(c, err, "Vendor", "retrieve")
		return
	}
	if activeVendorOnly && !vendor.IsActive {
		badRequest(c, "Vendor is not taking bookings")
		return
	}

	appointment := models.Appointment{
		VendorID:      req.VendorID,
		CustomerID:    req.CustomerID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		ServiceName:   req.ServiceName,
		Date:          req.Date,
		Time:          req.Time,
		Notes:         req.Notes,
		Status:        req.Status,
	}
	if err := h.db.Create(&appointment).Error; err != nil {
		h.dbError(c, err, "Appointment", "create")
		return
	}
	appointment.Vendor = &vendor
	if activeVendorOnly {
		scrubVendor(appointment.Vendor)
	}
	c.JSON(http.StatusCreated, gin.H{"appointment": appointment})
}
