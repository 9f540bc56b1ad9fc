package handlers

import (
	"net/http/httptest"
	"testing"

	"varto-api/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testContext(target string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", target, nil)
	return c
}

func TestValidSlot(t *testing.T) {
	assert.NoError(t, validSlot("2026-02-28", "09:05"))
	assert.ErrorIs(t, validSlot("2026-02-30", "09:05"), errBadSlot)
	assert.ErrorIs(t, validSlot("2026-02-28", "25:00"), errBadSlot)
	assert.ErrorIs(t, validSlot("28.02.2026", "09:05"), errBadSlot)
}

func TestPage(t *testing.T) {
	offset, limit := page(testContext("/x"))
	assert.Equal(t, 0, offset)
	assert.Equal(t, defaultLimit, limit)

	offset, limit = page(testContext("/x?offset=20&limit=5000"))
	assert.Equal(t, 20, offset)
	assert.Equal(t, maxLimit, limit)

	offset, limit = page(testContext("/x?offset=-3&limit=abc"))
	assert.Equal(t, 0, offset)
	assert.Equal(t, defaultLimit, limit)
}

func TestQueryHelpers(t *testing.T) {
	c := testContext("/x?is_active=false&vendor_id=7&bad=zz&zero=0")

	v, ok := queryBool(c, "is_active")
	assert.True(t, ok)
	assert.False(t, v)
	_, ok = queryBool(c, "bad")
	assert.False(t, ok)
	_, ok = queryBool(c, "missing")
	assert.False(t, ok)

	id, ok := queryUint(c, "vendor_id")
	assert.True(t, ok)
	assert.Equal(t, uint(7), id)
	_, ok = queryUint(c, "zero")
	assert.False(t, ok)
}

func TestSetIfAndNullableID(t *testing.T) {
	name := "Yeni"
	m := map[string]interface{}{}
	setIf(m, "name", &name)
	setIf[string](m, "email", nil)
	assert.Equal(t, map[string]interface{}{"name": "Yeni"}, m)

	assert.Nil(t, nullableID(0))
	assert.Equal(t, uint(4), nullableID(4))
}

func TestBuildOrder(t *testing.T) {
	order := buildOrder(CreateOrderRequest{
		VendorID:    3,
		Status:      models.StatusPending,
		DeliveryFee: 7.5,
		Items: []OrderItemInput{
			{ProductName: "Lahmacun", Quantity: 3, UnitPrice: 4.2},
			{ProductName: "Şalgam", Quantity: 2, UnitPrice: 1.15},
		},
	})
	assert.Equal(t, models.PaymentCash, order.PaymentMethod)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, 12.6, order.Items[0].TotalPrice)
	assert.Equal(t, 2.3, order.Items[1].TotalPrice)
	assert.Equal(t, 14.9, order.Subtotal)
	assert.Equal(t, 22.4, order.Total)
}

func TestWithNext(t *testing.T) {
	o := models.VartoOrder{Status: models.StatusDelivering}
	withNext(&o)
	assert.Equal(t, models.StatusDelivered, o.NextStatus)

	o = models.VartoOrder{Status: models.StatusCancelled}
	withNext(&o)
	assert.Empty(t, o.NextStatus)
}

func TestScrubOrder(t *testing.T) {
	uid := uint(9)
	o := models.VartoOrder{
		Vendor:  &models.Vendor{Name: "V", IBAN: "TR00", PushToken: "tok", UserID: &uid},
		Courier: &models.Courier{Name: "C", PushToken: "tok", UserID: &uid},
	}
	scrubOrder(&o)
	assert.Equal(t, "V", o.Vendor.Name)
	assert.Empty(t, o.Vendor.IBAN)
	assert.Empty(t, o.Vendor.PushToken)
	assert.Nil(t, o.Vendor.UserID)
	assert.Empty(t, o.Courier.PushToken)

	scrubOrder(&models.VartoOrder{})
}
