package handlers

import (
	"net/http"

	"varto-api/middleware"
	"varto-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateListingRequest struct {
	Title        string               `json:"title" binding:"required"`
	Description  string               `json:"description"`
	Category     string               `json:"category" binding:"omitempty,oneof=rental sale job service other"`
	Price        float64              `json:"price" binding:"gte=0"`
	Location     string               `json:"location"`
	ContactName  string               `json:"contact_name"`
	ContactPhone string               `json:"contact_phone"`
	Status       models.ListingStatus `json:"status"`
	CustomerID   *uint                `json:"customer_id"`
}

type UpdateListingRequest struct {
	Title           *string               `json:"title"`
	Description     *string               `json:"description"`
	Category        *string               `json:"category" binding:"omitempty,oneof=rental sale job service other"`
	Price           *float64              `json:"price" binding:"omitempty,gte=0"`
	Location        *string               `json:"location"`
	ContactName     *string               `json:"contact_name"`
	ContactPhone    *string               `json:"contact_phone"`
	Status          *models.ListingStatus `json:"status"`
	RejectionReason *string               `json:"rejection_reason"`
}

type RejectListingRequest struct {
	Reason string `json:"reason"`
}

// ── Admin ───────────────────────────────────────────────────────────────────

// ListListings returns listings in any status for moderation
func (h *Handler) ListListings(c *gin.Context) {
	var listings []models.Listing
	query := h.filterListings(c, h.db.Model(&models.Listing{}))
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if customerID, ok := queryUint(c, "customer_id"); ok {
		query = query.Where("customer_id = ?", customerID)
	}

	total, offset, limit, err := listPage(c, query, "created_at desc", &listings)
	if err != nil {
		h.dbError(c, err, "Listing", "list")
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": listings, "count": total, "offset": offset, "limit": limit})
}

// CreateListing lets staff post a listing; status comes from the payload,
// pending when absent
func (h *Handler) CreateListing(c *gin.Context) {
	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Status == "" {
		req.Status = models.ListingPending
	}
	if !req.Status.Valid() {
		badRequest(c, "Invalid status. Must be: pending, approved, rejected, or expired")
		return
	}

	listing := newListing(req)
	listing.Status = req.Status
	listing.CustomerID = req.CustomerID
	if listing.Status == models.ListingApproved {
		h.stampApproval(&listing)
	}
	if err := h.db.Create(&listing).Error; err != nil {
		h.dbError(c, err, "Listing", "create")
		return
	}
	h.feed.Broadcast("listing_created", listing)
	c.JSON(http.StatusCreated, gin.H{"listing": listing})
}

// GetListing returns a single listing in any status
func (h *Handler) GetListing(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var listing models.Listing
	if err := h.db.First(&listing, id).Error; err != nil {
		h.dbError(c, err, "Listing", "retrieve")
		return
	}
	c.JSON(http.StatusOK, gin.H{"listing": listing})
}

// UpdateListing applies the fields present in the body. Moving to approved
// restarts the expiry clock.
func (h *Handler) UpdateListing(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var listing models.Listing
	if err := h.db.First(&listing, id).Error; err != nil {
		h.dbError(c, err, "Listing", "update")
		return
	}

	var req UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	update := map[string]interface{}{}
	setIf(update, "title", req.Title)
	setIf(update, "description", req.Description)
	setIf(update, "category", req.Category)
	setIf(update, "price", req.Price)
	setIf(update, "location", req.Location)
	setIf(update, "contact_name", req.ContactName)
	setIf(update, "contact_phone", req.ContactPhone)
	setIf(update, "rejection_reason", req.RejectionReason)
	if req.Status != nil {
		if !req.Status.Valid() {
			badRequest(c, "Invalid status. Must be: pending, approved, rejected, or expired")
			return
		}
		update["status"] = *req.Status
		if *req.Status == models.ListingApproved && listing.Status != models.ListingApproved {
			h.stampApproval(&listing)
			update["approved_at"] = listing.ApprovedAt
			update["expires_at"] = listing.ExpiresAt
		}
	}

	h.saveListing(c, &listing, update)
}

// ApproveListing publishes a listing for TTL from now
func (h *Handler) ApproveListing(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var listing models.Listing
	if err := h.db.First(&listing, id).Error; err != nil {
		h.dbError(c, err, "Listing", "approve")
		return
	}
	h.stampApproval(&listing)
	h.saveListing(c, &listing, map[string]interface{}{
		"status":           models.ListingApproved,
		"approved_at":      listing.ApprovedAt,
		"expires_at":       listing.ExpiresAt,
		"rejection_reason": "",
	})
}

// RejectListing hides a listing and records why
func (h *Handler) RejectListing(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var listing models.Listing
	if err := h.db.First(&listing, id).Error; err != nil {
		h.dbError(c, err, "Listing", "reject")
		return
	}
	var req RejectListingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	h.saveListing(c, &listing, map[string]interface{}{
		"status":           models.ListingRejected,
		"rejection_reason": req.Reason,
	})
}

// DeleteListing removes a listing outright
func (h *Handler) DeleteListing(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res := h.db.Delete(&models.Listing{}, id)
	if res.Error != nil {
		h.dbError(c, res.Error, "Listing", "delete")
		return
	}
	if res.RowsAffected == 0 {
		h.dbError(c, gorm.ErrRecordNotFound, "Listing", "delete")
		return
	}
	deleted(c, id, "listing")
}

// ── Store ───────────────────────────────────────────────────────────────────

// StoreListListings returns approved listings that have not expired
func (h *Handler) StoreListListings(c *gin.Context) {
	var listings []models.Listing
	query := h.filterListings(c, h.db.Model(&models.Listing{})).
		Where("status = ?", models.ListingApproved).
		Where("(expires_at IS NULL OR expires_at > ?)", h.now().UTC())

	total, offset, limit, err := listPage(c, query, "approved_at desc", &listings)
	if err != nil {
		h.dbError(c, err, "Listing", "list")
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": listings, "count": total, "offset": offset, "limit": limit})
}

// StoreGetListing returns a listing only while it is approved and unexpired
func (h *Handler) StoreGetListing(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var listing models.Listing
	if err := h.db.First(&listing, id).Error; err != nil {
		h.dbError(c, err, "Listing", "retrieve")
		return
	}
	expired := listing.ExpiresAt != nil && !listing.ExpiresAt.After(h.now().UTC())
	if listing.Status != models.ListingApproved || expired {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"listing": listing})
}

// StoreCreateListing submits a listing for moderation; it is always pending
func (h *Handler) StoreCreateListing(c *gin.Context) {
	customerID := middleware.GetCustomerID(c)
	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	listing := newListing(req)
	listing.Status = models.ListingPending
	listing.CustomerID = &customerID
	if listing.ContactPhone == "" {
		var customer models.Customer
		if err := h.db.Select("phone", "name").First(&customer, customerID).Error; err == nil {
			listing.ContactPhone = customer.Phone
			if listing.ContactName == "" {
				listing.ContactName = customer.Name
			}
		}
	}
	if err := h.db.Create(&listing).Error; err != nil {
		h.dbError(c, err, "Listing", "create")
		return
	}
	h.feed.Broadcast("listing_created", listing)
	c.JSON(http.StatusCreated, gin.H{"listing": listing})
}

// StoreMyListings returns the caller's listings in every status
func (h *Handler) StoreMyListings(c *gin.Context) {
	var listings []models.Listing
	query := h.db.Model(&models.Listing{}).Where("customer_id = ?", middleware.GetCustomerID(c))
	total, offset, limit, err := listPage(c, query, "created_at desc", &listings)
	if err != nil {
		h.dbError(c, err, "Listing", "list")
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": listings, "count": total, "offset": offset, "limit": limit})
}

func newListing(req CreateListingRequest) models.Listing {
	category := req.Category
	if category == "" {
		category = "other"
	}
	return models.Listing{
		Title:        req.Title,
		Description:  req.Description,
		Category:     category,
		Price:        req.Price,
		Location:     req.Location,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
	}
}

func (h *Handler) filterListings(c *gin.Context, query *gorm.DB) *gorm.DB {
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if q := c.Query("q"); q != "" {
		query = query.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(location) LIKE ?)", likeTerm(q), likeTerm(q), likeTerm(q))
	}
	return query
}

func (h *Handler) stampApproval(l *models.Listing) {
	now := h.now().UTC()
	expires := now.Add(h.listingTTL)
	l.ApprovedAt = &now
	l.ExpiresAt = &expires
}

func (h *Handler) saveListing(c *gin.Context, listing *models.Listing, update map[string]interface{}) {
	if len(update) > 0 {
		if err := h.db.Model(listing).Updates(update).Error; err != nil {
			h.dbError(c, err, "Listing", "update")
			return
		}
	}
	if err := h.db.First(listing, listing.ID).Error; err != nil {
		h.dbError(c, err, "Listing", "retrieve")
		return
	}
	c.JSON(http.StatusOK, gin.H{"listing": listing})
}
