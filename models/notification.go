package models

import "time"

type RecipientType string

const (
	RecipientVendor   RecipientType = "vendor"
	RecipientCourier  RecipientType = "courier"
	RecipientCustomer RecipientType = "customer"
)

func (r RecipientType) Valid() bool {
	switch r {
	case RecipientVendor, RecipientCourier, RecipientCustomer:
		return true
	}
	return false
}

// VartoNotification records a message sent to a vendor, courier or customer.
// It is written whether or not the push itself went through.
type VartoNotification struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	RecipientType RecipientType `json:"recipient_type" gorm:"not null;index:idx_notification_recipient"`
	RecipientID   uint          `json:"recipient_id" gorm:"not null;index:idx_notification_recipient"`
	Title         string        `json:"title" gorm:"not null"`
	Body          string        `json:"body"`
	Type          string        `json:"type" gorm:"index"` // e.g. "order_status"
	ReferenceType string        `json:"reference_type"`    // e.g. "varto_order"
	ReferenceID   *uint         `json:"reference_id"`
	IsRead        bool          `json:"is_read" gorm:"not null"`
	ReadAt        *time.Time    `json:"read_at"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
