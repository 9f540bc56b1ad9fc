package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"varto-api/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func do(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStaffTokenRoundTrip(t *testing.T) {
	auth := NewAuth([]byte("s3cret"), time.Hour, time.Hour)
	token, err := auth.GenerateStaffToken(&models.User{ID: 7, Role: models.RoleVendor})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", auth.StaffRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetUserID(c), "role": GetRole(c)})
	})

	w := do(r, http.MethodGet, "/me", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7,"role":"vendor"}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", "garbage", "").Code)
}

func TestCustomerTokenRejectedOnStaffRoutes(t *testing.T) {
	auth := NewAuth([]byte("s3cret"), time.Hour, time.Hour)
	customerToken, err := auth.GenerateCustomerToken(&models.Customer{ID: 3, Phone: "+905550000000"})
	require.NoError(t, err)
	staffToken, err := auth.GenerateStaffToken(&models.User{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/admin", auth.StaffRequired(), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/store", auth.CustomerRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"customer_id": GetCustomerID(c)})
	})

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/admin", customerToken, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/store", staffToken, "").Code)

	w := do(r, http.MethodGet, "/store", customerToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"customer_id":3}`, w.Body.String())
}

func TestExpiredAndForeignTokens(t *testing.T) {
	auth := NewAuth([]byte("s3cret"), -time.Minute, time.Hour)
	expired, err := auth.GenerateStaffToken(&models.User{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)
	_, _, err = auth.Parse(expired, AudienceStaff)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	other := NewAuth([]byte("different"), time.Hour, time.Hour)
	forged, err := other.GenerateStaffToken(&models.User{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)
	_, _, err = auth.Parse(forged, AudienceStaff)
	assert.Error(t, err)
}

func TestRoleRequired(t *testing.T) {
	auth := NewAuth([]byte("s3cret"), time.Hour, time.Hour)
	courierToken, _ := auth.GenerateStaffToken(&models.User{ID: 2, Role: models.RoleCourier})
	adminToken, _ := auth.GenerateStaffToken(&models.User{ID: 1, Role: models.RoleAdmin})

	r := gin.New()
	r.GET("/vendors", auth.StaffRequired(), RoleRequired(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, http.MethodGet, "/vendors", courierToken, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "admin")
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/vendors", adminToken, "").Code)
}

func TestRateLimiterByPhone(t *testing.T) {
	rl := NewPerMinuteLimiter(2, quietLogger())
	r := gin.New()
	r.POST("/otp", rl.ByPhone(), func(c *gin.Context) {
		var body struct {
			Phone string `json:"phone"`
		}
		require.NoError(t, c.ShouldBindJSON(&body))
		c.JSON(http.StatusOK, gin.H{"phone": body.Phone})
	})

	for i := 0; i < 2; i++ {
		w := do(r, http.MethodPost, "/otp", "", `{"phone":"+905551"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "+905551", "body must survive the limiter")
	}
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPost, "/otp", "", `{"phone":"+905551"}`).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/otp", "", `{"phone":"+905552"}`).Code)
}

func TestRateLimiterByPhoneSharesBucketAcrossFormats(t *testing.T) {
	rl := NewPerMinuteLimiter(2, quietLogger())
	r := gin.New()
	r.POST("/otp", rl.ByPhone(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/otp", "", `{"phone":"0555 000 0001"}`).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/otp", "", `{"phone":"0555-000-0001"}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPost, "/otp", "", `{"phone":"(0555)0000001"}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPost, "/otp", "", `{"phone":" 05550000001"}`).Code)
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewPerMinuteLimiter(1, quietLogger())
	rl.Allow("a")
	rl.Cleanup(-time.Second)
	assert.True(t, rl.Allow("a"), "a fresh limiter after cleanup")
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(quietLogger()), Recovery(quietLogger()), CORS())
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := do(r, http.MethodGet, "/ok", "", "")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(r, http.MethodGet, "/panic", "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = do(r, http.MethodOptions, "/ok", "", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}
