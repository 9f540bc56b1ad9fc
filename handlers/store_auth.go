package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"varto-api/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type SendOTPRequest struct {
	Phone string `json:"phone" binding:"required"`
}

type VerifyOTPRequest struct {
	Phone     string `json:"phone" binding:"required"`
	Code      string `json:"code" binding:"required"`
	Name      string `json:"name"`
	PushToken string `json:"push_token"`
}

// SendOTP acknowledges a code request. No SMS provider is wired; every
// phone verifies with the configured seed code.
func (h *Handler) SendOTP(c *gin.Context) {
	var req SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	phone := models.NormalizePhone(req.Phone)
	if len(phone) < 7 {
		badRequest(c, "Invalid phone number")
		return
	}

	h.logger.WithField("phone", phone).Info("OTP requested")
	c.JSON(http.StatusOK, gin.H{
		"message":   "Verification code sent",
		"phone":     phone,
		"seed_mode": true,
	})
}

// VerifyOTP checks the code, creates the customer on first login and
// returns a customer token.
func (h *Handler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	phone := models.NormalizePhone(req.Phone)
	if len(phone) < 7 {
		badRequest(c, "Invalid phone number")
		return
	}
	if !validPushToken(c, req.PushToken) {
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Code), []byte(h.otpCode)) != 1 {
		h.logger.WithField("phone", phone).Warn("OTP verification failed")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid verification code"})
		return
	}

	now := h.now().UTC()
	var customer models.Customer
	isNew := false
	err := h.db.Where("phone = ?", phone).First(&customer).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		isNew = true
		customer = models.Customer{
			Phone:       phone,
			Name:        req.Name,
			PushToken:   req.PushToken,
			LastLoginAt: &now,
		}
		if err := h.db.Create(&customer).Error; err != nil {
			h.dbError(c, err, "Customer", "create")
			return
		}
	case err != nil:
		h.dbError(c, err, "Customer", "retrieve")
		return
	default:
		update := map[string]interface{}{"last_login_at": now}
		if req.PushToken != "" {
			update["push_token"] = req.PushToken
			customer.PushToken = req.PushToken
		}
		if err := h.db.Model(&customer).Updates(update).Error; err != nil {
			h.dbError(c, err, "Customer", "update")
			return
		}
		customer.LastLoginAt = &now
	}

	token, err := h.auth.GenerateCustomerToken(&customer)
	if err != nil {
		h.logger.WithError(err).Error("Failed to sign customer token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	h.logger.WithFields(logrus.Fields{"customer_id": customer.ID, "new": isNew}).Info("Customer signed in")
	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"customer": customer,
		"is_new":   isNew,
	})
}
