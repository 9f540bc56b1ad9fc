package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MessageTemplate is a push title/body pair. Body may use {order_id},
// {vendor} and {status}.
type MessageTemplate struct {
	Title string `yaml:"title" json:"title"`
	Body  string `yaml:"body" json:"body"`
}

// Catalog carries deploy-time data that is not worth a table
type Catalog struct {
	VendorCategories []string                   `yaml:"vendor_categories" json:"vendor_categories"`
	OrderMessages    map[string]MessageTemplate `yaml:"order_messages" json:"order_messages"`
}

func DefaultCatalog() *Catalog {
	return &Catalog{
		VendorCategories: []string{"restaurant", "market", "bakery", "butcher", "pharmacy", "barber", "beauty", "other"},
		OrderMessages: map[string]MessageTemplate{
			"confirmed": {
				Title: "Yeni sipariş",
				Body:  "{vendor} siparişi #{order_id} teslimat için kurye bekliyor.",
			},
			"delivering": {
				Title: "Siparişiniz yolda",
				Body:  "#{order_id} numaralı siparişiniz kuryede.",
			},
			"delivered": {
				Title: "Siparişiniz teslim edildi",
				Body:  "#{order_id} numaralı siparişiniz teslim edildi. Afiyet olsun!",
			},
		},
	}
}

// LoadCatalog reads path over the defaults. An empty path returns the
// defaults unchanged; keys missing from the file keep their default.
func LoadCatalog(path string) (*Catalog, error) {
	cat := DefaultCatalog()
	if path == "" {
		return cat, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var file Catalog
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	if len(file.VendorCategories) > 0 {
		cat.VendorCategories = file.VendorCategories
	}
	for status, tmpl := range file.OrderMessages {
		cat.OrderMessages[status] = tmpl
	}
	return cat, nil
}
