package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"varto-api/middleware"
	"varto-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ── Vendor Management ───────────────────────────────────────────────────────

type CreateVendorRequest struct {
	Name         string `json:"name" binding:"required"`
	Slug         string `json:"slug"`
	Phone        string `json:"phone"`
	Email        string `json:"email" binding:"omitempty,email"`
	Address      string `json:"address"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	IBAN         string `json:"iban"`
	IsActive     *bool  `json:"is_active"`
	OpeningHours string `json:"opening_hours"`
	PushToken    string `json:"push_token"`
	UserID       *uint  `json:"user_id"`
}

type UpdateVendorRequest struct {
	Name         *string `json:"name"`
	Slug         *string `json:"slug"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email" binding:"omitempty,email"`
	Address      *string `json:"address"`
	Category     *string `json:"category"`
	Description  *string `json:"description"`
	IBAN         *string `json:"iban"`
	IsActive     *bool   `json:"is_active"`
	OpeningHours *string `json:"opening_hours"`
	PushToken    *string `json:"push_token"`
	UserID       *uint   `json:"user_id"`
}

// ListVendors returns vendors filtered by q, category and is_active
func (h *Handler) ListVendors(c *gin.Context) {
	var vendors []models.Vendor
	query := h.db.Model(&models.Vendor{})

	if q := c.Query("q"); q != "" {
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(slug) LIKE ?)", likeTerm(q), likeTerm(q))
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if active, ok := queryBool(c, "is_active"); ok {
		query = query.Where("is_active = ?", active)
	}
	if userID, ok := queryUint(c, "user_id"); ok {
		query = query.Where("user_id = ?", userID)
	}

	total, offset, limit, err := listPage(c, query, "name asc", &vendors)
	if err != nil {
		h.dbError(c, err, "Vendor", "list")
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendors": vendors, "count": total, "offset": offset, "limit": limit})
}

// CreateVendor registers a new vendor; slug defaults to the slugified name
func (h *Handler) CreateVendor(c *gin.Context) {
	var req CreateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !validPushToken(c, req.PushToken) {
		return
	}

	slug := models.Slugify(req.Slug)
	if slug == "" {
		slug = models.Slugify(req.Name)
	}
	if slug == "" {
		badRequest(c, "Vendor name must contain letters or digits")
		return
	}
	slug, err := h.uniqueSlug(slug, 0)
	if err != nil {
		h.dbError(c, err, "Vendor", "create")
		return
	}

	vendor := models.Vendor{
		Name:         strings.TrimSpace(req.Name),
		Slug:         slug,
		Phone:        req.Phone,
		Email:        req.Email,
		Address:      req.Address,
		Category:     req.Category,
		Description:  req.Description,
		IBAN:         normalizeIBAN(req.IBAN),
		IsActive:     req.IsActive == nil || *req.IsActive,
		OpeningHours: req.OpeningHours,
		PushToken:    req.PushToken,
		UserID:       req.UserID,
	}
	if err := h.db.Create(&vendor).Error; err != nil {
		h.dbError(c, err, "Vendor", "create")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"vendor": vendor})
}

// GetVendor returns a single vendor
func (h *Handler) GetVendor(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var vendor models.Vendor
	if err := h.db.First(&vendor, id).Error; err != nil {
		h.dbError(c, err, "Vendor", "retrieve")
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendor": vendor})
}

// UpdateVendor applies the fields present in the body
func (h *Handler) UpdateVendor(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var vendor models.Vendor
	if err := h.db.First(&vendor, id).Error; err != nil {
		h.dbError(c, err, "Vendor", "update")
		return
	}
	if !canEditProfile(c, vendor.UserID) {
		return
	}

	var req UpdateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if req.PushToken != nil && !validPushToken(c, *req.PushToken) {
		return
	}
	update := map[string]interface{}{}
	setIf(update, "name", req.Name)
	setIf(update, "phone", req.Phone)
	setIf(update, "email", req.Email)
	setIf(update, "address", req.Address)
	setIf(update, "category", req.Category)
	setIf(update, "description", req.Description)
	setIf(update, "is_active", req.IsActive)
	setIf(update, "opening_hours", req.OpeningHours)
	setIf(update, "push_token", req.PushToken)
	if req.UserID != nil && middleware.GetRole(c) == models.RoleAdmin {
		update["user_id"] = nullableID(*req.UserID)
	}
	if req.IBAN != nil {
		update["iban"] = normalizeIBAN(*req.IBAN)
	}
	if req.Slug != nil {
		slug := models.Slugify(*req.Slug)
		if slug == "" {
			badRequest(c, "Invalid slug")
			return
		}
		slug, err := h.uniqueSlug(slug, vendor.ID)
		if err != nil {
			h.dbError(c, err, "Vendor", "update")
			return
		}
		update["slug"] = slug
	}

	if len(update) > 0 {
		if err := h.db.Model(&vendor).Updates(update).Error; err != nil {
			h.dbError(c, err, "Vendor", "update")
			return
		}
	}
	if err := h.db.First(&vendor, id).Error; err != nil {
		h.dbError(c, err, "Vendor", "retrieve")
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendor": vendor})
}

// DeleteVendor removes the vendor record; its orders keep the vendor id
func (h *Handler) DeleteVendor(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res := h.db.Delete(&models.Vendor{}, id)
	if res.Error != nil {
		h.dbError(c, res.Error, "Vendor", "delete")
		return
	}
	if res.RowsAffected == 0 {
		h.dbError(c, gorm.ErrRecordNotFound, "Vendor", "delete")
		return
	}
	deleted(c, id, "vendor")
}

// ListVendorCategories exposes the configured category catalog
func (h *Handler) ListVendorCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.catalog.VendorCategories})
}

// uniqueSlug appends -2, -3, ... until no other vendor holds the slug
func (h *Handler) uniqueSlug(base string, selfID uint) (string, error) {
	candidate := base
	for i := 2; i < 1000; i++ {
		var existing models.Vendor
		err := h.db.Select("id").Where("slug = ?", candidate).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		if existing.ID == selfID {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
	return "", errors.New("no free slug for " + base)
}

func normalizeIBAN(iban string) string {
	return strings.ToUpper(strings.ReplaceAll(iban, " ", ""))
}
