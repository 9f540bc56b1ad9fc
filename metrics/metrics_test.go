package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/ping/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })
	r.GET("/metrics", Handler())

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/ping/:id", "418"))
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping/42", nil))
	}
	assert.Equal(t, before+3, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/ping/:id", "418")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "varto_http_requests_total")
}

func TestRecordPush(t *testing.T) {
	ok := testutil.ToFloat64(pushSends.WithLabelValues("courier", "ok"))
	bad := testutil.ToFloat64(pushSends.WithLabelValues("courier", "error"))

	RecordPush("courier", nil)
	RecordPush("courier", errors.New("boom"))
	RecordPush("courier", errors.New("boom"))

	assert.Equal(t, ok+1, testutil.ToFloat64(pushSends.WithLabelValues("courier", "ok")))
	assert.Equal(t, bad+2, testutil.ToFloat64(pushSends.WithLabelValues("courier", "error")))
}
