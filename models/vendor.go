package models

import "time"

type Vendor struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Slug         string    `json:"slug" gorm:"uniqueIndex;not null"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	Address      string    `json:"address"`
	Category     string    `json:"category" gorm:"index"`
	Description  string    `json:"description"`
	IBAN         string    `json:"iban" gorm:"column:iban"`
	IsActive     bool      `json:"is_active" gorm:"not null"`
	OpeningHours string    `json:"opening_hours"` // free text, e.g. "09:00-22:00"
	PushToken    string    `json:"push_token,omitempty"`
	UserID       *uint     `json:"user_id" gorm:"index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// VehicleType is informational only; nothing routes on it.
type VehicleType string

const (
	VehicleMotorcycle VehicleType = "motorcycle"
	VehicleBicycle    VehicleType = "bicycle"
	VehicleCar        VehicleType = "car"
	VehicleOnFoot     VehicleType = "on_foot"
)

type Courier struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	Name        string      `json:"name" gorm:"not null"`
	Phone       string      `json:"phone"`
	VehicleType VehicleType `json:"vehicle_type" gorm:"not null;default:'motorcycle'"`
	IsActive    bool        `json:"is_active" gorm:"not null;index"`
	IsAvailable bool        `json:"is_available" gorm:"not null"`
	PushToken   string      `json:"push_token,omitempty"`
	UserID      *uint       `json:"user_id" gorm:"index"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Customer is keyed by phone number and signs in with an OTP.
type Customer struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Phone       string     `json:"phone" gorm:"uniqueIndex;not null"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Address     string     `json:"address"`
	PushToken   string     `json:"push_token,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
