package models

import (
	"time"
)

// UserRole defines the staff roles that can sign in to the admin namespace
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleVendor  UserRole = "vendor"
	RoleCourier UserRole = "courier"
)

// Valid reports whether r is one of the known staff roles
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleVendor, RoleCourier:
		return true
	}
	return false
}

// User is a staff account. Vendor and courier apps sign in with one and
// resolve their profile through Vendor.UserID / Courier.UserID.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         UserRole  `json:"role" gorm:"not null;default:'admin'"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
