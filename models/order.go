package models

import "time"

// OrderStatus represents the states a Varto order moves through
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusPreparing  OrderStatus = "preparing"
	StatusReady      OrderStatus = "ready"
	StatusAssigned   OrderStatus = "assigned"
	StatusAccepted   OrderStatus = "accepted"
	StatusDelivering OrderStatus = "delivering"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

// VartoOrder is the platform's own order record, separate from any
// commerce engine order. Total is always Subtotal + DeliveryFee.
type VartoOrder struct {
	ID              uint             `json:"id" gorm:"primaryKey"`
	VendorID        uint             `json:"vendor_id" gorm:"not null;index"`
	Vendor          *Vendor          `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
	CustomerID      *uint            `json:"customer_id" gorm:"index"`
	Customer        *Customer        `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	CourierID       *uint            `json:"courier_id" gorm:"index"`
	Courier         *Courier         `json:"courier,omitempty" gorm:"foreignKey:CourierID"`
	Status          OrderStatus      `json:"status" gorm:"not null;default:'pending';index"`
	CustomerName    string           `json:"customer_name"`
	CustomerPhone   string           `json:"customer_phone"`
	DeliveryAddress string           `json:"delivery_address"`
	Notes           string           `json:"notes"`
	PaymentMethod   PaymentMethod    `json:"payment_method" gorm:"not null;default:'cash'"`
	Subtotal        float64          `json:"subtotal"`
	DeliveryFee     float64          `json:"delivery_fee"`
	Total           float64          `json:"total"`
	Items           []VartoOrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	NextStatus      OrderStatus      `json:"next_status,omitempty" gorm:"-"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type VartoOrderItem struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	OrderID     uint      `json:"order_id" gorm:"not null;index"`
	ProductName string    `json:"product_name" gorm:"not null"`
	Quantity    int       `json:"quantity" gorm:"not null"`
	UnitPrice   float64   `json:"unit_price" gorm:"not null"`
	TotalPrice  float64   `json:"total_price" gorm:"not null"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Reprice sets each item's TotalPrice from its quantity and unit price and
// recomputes Subtotal and Total.
func (o *VartoOrder) Reprice() {
	var subtotal float64
	for i := range o.Items {
		o.Items[i].TotalPrice = roundCents(o.Items[i].UnitPrice * float64(o.Items[i].Quantity))
		subtotal += o.Items[i].TotalPrice
	}
	o.Subtotal = roundCents(subtotal)
	o.Total = roundCents(o.Subtotal + o.DeliveryFee)
}

func roundCents(v float64) float64 {
	if v < 0 {
		return -roundCents(-v)
	}
	return float64(int64(v*100+0.5)) / 100
}
