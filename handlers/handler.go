package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"varto-api/config"
	"varto-api/middleware"
	"varto-api/models"
	"varto-api/notify"
	"varto-api/push"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Broadcaster publishes events to the admin live feed
type Broadcaster interface {
	Broadcast(eventType string, data interface{})
}

type nopBroadcaster struct{}

func (nopBroadcaster) Broadcast(string, interface{}) {}

// Handler carries the dependencies every route needs
type Handler struct {
	db         *gorm.DB
	auth       *middleware.Auth
	notifier   *notify.Notifier
	feed       Broadcaster
	catalog    *config.Catalog
	logger     *logrus.Logger
	otpCode    string
	listingTTL time.Duration
	now        func() time.Time
}

type Options struct {
	DB         *gorm.DB
	Auth       *middleware.Auth
	Notifier   *notify.Notifier
	Feed       Broadcaster
	Catalog    *config.Catalog
	Logger     *logrus.Logger
	OTPCode    string
	ListingTTL time.Duration
}

func New(opts Options) *Handler {
	h := &Handler{
		db:         opts.DB,
		auth:       opts.Auth,
		notifier:   opts.Notifier,
		feed:       opts.Feed,
		catalog:    opts.Catalog,
		logger:     opts.Logger,
		otpCode:    opts.OTPCode,
		listingTTL: opts.ListingTTL,
		now:        time.Now,
	}
	if h.feed == nil {
		h.feed = nopBroadcaster{}
	}
	if h.catalog == nil {
		h.catalog = config.DefaultCatalog()
	}
	if h.otpCode == "" {
		h.otpCode = "123456"
	}
	if h.listingTTL <= 0 {
		h.listingTTL = 30 * 24 * time.Hour
	}
	return h
}

// dbError answers 404 for a missing record and 500 for anything else
func (h *Handler) dbError(c *gin.Context, err error, entity, action string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": entity + " not found"})
		return
	}
	h.logger.WithError(err).WithFields(logrus.Fields{
		"entity":     entity,
		"action":     action,
		"request_id": c.GetString("requestID"),
	}).Error("Database operation failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action + " " + strings.ToLower(entity)})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// paramID parses a positive numeric path parameter
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// page reads offset/limit query parameters
func page(c *gin.Context) (offset, limit int) {
	limit = defaultLimit
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		offset = v
	}
	return offset, limit
}

// queryBool returns the parsed value and whether the parameter was present
func queryBool(c *gin.Context, name string) (bool, bool) {
	v, ok := c.GetQuery(name)
	if !ok || v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

// queryUint returns a positive numeric query parameter
func queryUint(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Query(name), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

// listPage counts query, then fetches one page of it into dest. Ordering
// and preloads are applied after the count so postgres accepts it.
func listPage(c *gin.Context, query *gorm.DB, order string, dest interface{}, preloads ...string) (int64, int, int, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, 0, 0, err
	}
	offset, limit := page(c)
	q := query.Order(order).Offset(offset).Limit(limit)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	err := q.Find(dest).Error
	return total, offset, limit, err
}

func deleted(c *gin.Context, id uint, object string) {
	c.JSON(http.StatusOK, gin.H{"id": id, "object": object, "deleted": true})
}

// likeTerm wraps a search string for a case-insensitive LIKE
func likeTerm(q string) string {
	return "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
}

// setIf copies a non-nil pointer value into an update map
func setIf[T any](m map[string]interface{}, column string, v *T) {
	if v != nil {
		m[column] = *v
	}
}

// canEditProfile lets admins edit anything and vendor/courier users edit
// only the profile linked to their account.
func canEditProfile(c *gin.Context, linkedUserID *uint) bool {
	if middleware.GetRole(c) == models.RoleAdmin {
		return true
	}
	if linkedUserID != nil && *linkedUserID == middleware.GetUserID(c) {
		return true
	}
	c.JSON(http.StatusForbidden, gin.H{"error": "You can only edit your own profile"})
	return false
}

// nullableID maps 0 to NULL so a link can be cleared with {"x_id": 0}
func nullableID(id uint) interface{} {
	if id == 0 {
		return nil
	}
	return id
}

// validPushToken answers 400 unless token is empty or an Expo push token
func validPushToken(c *gin.Context, token string) bool {
	if token == "" || push.IsExpoToken(token) {
		return true
	}
	badRequest(c, "push_token must be an Expo push token")
	return false
}
