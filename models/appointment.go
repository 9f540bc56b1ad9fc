package models

import "time"

type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentNoShow    AppointmentStatus = "no_show"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentPending, AppointmentConfirmed, AppointmentCompleted, AppointmentCancelled, AppointmentNoShow:
		return true
	}
	return false
}

// Appointment books a service at a vendor. Date is YYYY-MM-DD and Time is
// HH:MM, both in the vendor's local time.
type Appointment struct {
	ID            uint              `json:"id" gorm:"primaryKey"`
	VendorID      uint              `json:"vendor_id" gorm:"not null;index"`
	Vendor        *Vendor           `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
	CustomerID    *uint             `json:"customer_id" gorm:"index"`
	CustomerName  string            `json:"customer_name"`
	CustomerPhone string            `json:"customer_phone"`
	ServiceName   string            `json:"service_name" gorm:"not null"`
	Date          string            `json:"date" gorm:"not null;index"`
	Time          string            `json:"time" gorm:"not null"`
	Notes         string            `json:"notes"`
	Status        AppointmentStatus `json:"status" gorm:"not null;default:'pending'"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}
