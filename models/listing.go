package models

import "time"

type ListingStatus string

const (
	ListingPending  ListingStatus = "pending"
	ListingApproved ListingStatus = "approved"
	ListingRejected ListingStatus = "rejected"
	ListingExpired  ListingStatus = "expired"
)

func (s ListingStatus) Valid() bool {
	switch s {
	case ListingPending, ListingApproved, ListingRejected, ListingExpired:
		return true
	}
	return false
}

// Listing is a classified ad (rental, sale, job, service) moderated by staff.
type Listing struct {
	ID              uint          `json:"id" gorm:"primaryKey"`
	Title           string        `json:"title" gorm:"not null"`
	Description     string        `json:"description"`
	Category        string        `json:"category" gorm:"index"`
	Price           float64       `json:"price"`
	Location        string        `json:"location"`
	ContactName     string        `json:"contact_name"`
	ContactPhone    string        `json:"contact_phone"`
	Status          ListingStatus `json:"status" gorm:"not null;default:'pending';index"`
	RejectionReason string        `json:"rejection_reason,omitempty"`
	CustomerID      *uint         `json:"customer_id" gorm:"index"`
	ApprovedAt      *time.Time    `json:"approved_at"`
	ExpiresAt       *time.Time    `json:"expires_at"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

var ListingCategories = []string{"rental", "sale", "job", "service", "other"}
