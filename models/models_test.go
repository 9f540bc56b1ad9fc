package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Çiçek Pastanesi & Kafe": "cicek-pastanesi-and-kafe",
		"  Varto Kasabı  ":        "varto-kasabi",
		"İkbal Döner":             "ikbal-doner",
		"Ağrı -- Yolu 12":         "agri-yolu-12",
		"":                        "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestReprice(t *testing.T) {
	o := VartoOrder{
		DeliveryFee: 15,
		Items: []VartoOrderItem{
			{ProductName: "Lahmacun", Quantity: 3, UnitPrice: 45.5},
			{ProductName: "Ayran", Quantity: 2, UnitPrice: 12.25},
		},
	}
	o.Reprice()

	assert.Equal(t, 136.5, o.Items[0].TotalPrice)
	assert.Equal(t, 24.5, o.Items[1].TotalPrice)
	assert.Equal(t, 161.0, o.Subtotal)
	assert.Equal(t, 176.0, o.Total)
}

func TestRepriceWithoutItems(t *testing.T) {
	o := VartoOrder{DeliveryFee: 20}
	o.Reprice()
	assert.Equal(t, 0.0, o.Subtotal)
	assert.Equal(t, 20.0, o.Total)
}

func TestEnumValidation(t *testing.T) {
	assert.True(t, RoleCourier.Valid())
	assert.False(t, UserRole("customer").Valid())
	assert.True(t, ListingExpired.Valid())
	assert.False(t, ListingStatus("draft").Valid())
	assert.True(t, AppointmentNoShow.Valid())
	assert.False(t, RecipientType("admin").Valid())
}

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"0555 111 22 33":     "05551112233",
		"+90 (555) 111-2233": "+905551112233",
		" 555+12 ":           "55512",
		"(0555)0000001":      "05550000001",
		"":                   "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePhone(in), in)
	}
}
