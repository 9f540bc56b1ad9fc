package handlers

import (
	"errors"
	"net/http"
	"strings"

	"varto-api/middleware"
	"varto-api/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateUserRequest struct {
	Name     string          `json:"name" binding:"required"`
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=6"`
	Role     models.UserRole `json:"role" binding:"required"`
	// VendorID / CourierID link the new account to an existing profile
	VendorID  *uint `json:"vendor_id"`
	CourierID *uint `json:"courier_id"`
}

// Login authenticates a staff user and returns a JWT
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	var user models.User
	if err := h.db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			h.dbError(c, err, "User", "retrieve")
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := h.auth.GenerateStaffToken(&user)
	if err != nil {
		h.logger.WithError(err).Error("Failed to sign staff token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	h.logger.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("Staff login")
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// Me returns the signed-in staff user with any linked vendor or courier
func (h *Handler) Me(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		h.dbError(c, err, "User", "retrieve")
		return
	}

	resp := gin.H{"user": user}
	switch user.Role {
	case models.RoleVendor:
		var vendors []models.Vendor
		if err := h.db.Where("user_id = ?", user.ID).Find(&vendors).Error; err != nil {
			h.dbError(c, err, "Vendor", "retrieve")
			return
		}
		resp["vendors"] = vendors
	case models.RoleCourier:
		courier, err := h.linkedCourier(c)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			h.dbError(c, err, "Courier", "retrieve")
			return
		}
		resp["courier"] = courier
	}
	c.JSON(http.StatusOK, resp)
}

// ListUsers returns staff accounts, optionally filtered by role
func (h *Handler) ListUsers(c *gin.Context) {
	var users []models.User
	query := h.db.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	total, offset, limit, err := listPage(c, query, "id asc", &users)
	if err != nil {
		h.dbError(c, err, "User", "list")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": total, "offset": offset, "limit": limit})
}

// CreateUser adds a staff account and optionally links it to a profile
func (h *Handler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !req.Role.Valid() {
		badRequest(c, "Invalid role. Must be: admin, vendor or courier")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing int64
	if err := h.db.Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		h.dbError(c, err, "User", "create")
		return
	}
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	user, err := CreateStaffUser(h.db, req.Name, email, req.Password, req.Role)
	if err != nil {
		h.dbError(c, err, "User", "create")
		return
	}

	if req.VendorID != nil && req.Role == models.RoleVendor {
		if err := h.db.Model(&models.Vendor{}).Where("id = ?", *req.VendorID).Update("user_id", user.ID).Error; err != nil {
			h.dbError(c, err, "Vendor", "update")
			return
		}
	}
	if req.CourierID != nil && req.Role == models.RoleCourier {
		if err := h.db.Model(&models.Courier{}).Where("id = ?", *req.CourierID).Update("user_id", user.ID).Error; err != nil {
			h.dbError(c, err, "Courier", "update")
			return
		}
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// CreateStaffUser hashes password and inserts the account
func CreateStaffUser(db *gorm.DB, name, email, password string, role models.UserRole) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Name:         name,
		Email:        strings.ToLower(email),
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// EnsureAdmin creates the bootstrap admin when no account uses email yet
func EnsureAdmin(db *gorm.DB, email, password string, logger *logrus.Logger) error {
	if email == "" || password == "" {
		return nil
	}
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", strings.ToLower(email)).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if _, err := CreateStaffUser(db, "Admin", email, password, models.RoleAdmin); err != nil {
		return err
	}
	logger.WithField("email", email).Info("Bootstrap admin created")
	return nil
}
