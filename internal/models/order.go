package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderStatus is the order lifecycle state
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusProcessing: 1,
	OrderStatusShipped:    2,
	OrderStatusDelivered:  3,
}

// IsValidOrderStatus reports whether s is a known order status.
func IsValidOrderStatus(s OrderStatus) bool {
	if s == OrderStatusCancelled {
		return true
	}
	_, ok := orderStatusRank[s]
	return ok
}

// IsTerminal reports whether the status ends the order lifecycle.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo reports whether an order may move from s to next.
// Only forward moves along Pending -> Processing -> Shipped -> Delivered are
// allowed; Cancelled is reachable from any non-terminal state.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	from, ok := orderStatusRank[s]
	if !ok {
		return false
	}
	to, ok := orderStatusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// OrderAddress is the delivery address embedded in an order
type OrderAddress struct {
	Street               string `json:"street"`
	City                 string `json:"city"`
	AdditionalDirections string `json:"additionalDirections"`
	PostalCode           string `json:"postalCode"`
	Phone                string `json:"phone"`
}

// OrderItem is a line in an order. Name and Price are snapshots taken at
// placement time; later medicine changes never alter historical orders.
type OrderItem struct {
	MedicineID uint    `json:"medicine"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
}

// Order belongs to one user and one pharmacy.
type Order struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID     uint `gorm:"index" json:"userId"`
	PharmacyID uint `gorm:"index" json:"pharmacyId"`

	// Date is the ISO calendar date of placement, no time component.
	Date   string      `gorm:"type:varchar(20)" json:"date"`
	Status OrderStatus `gorm:"type:varchar(20);default:'Pending'" json:"status"`

	// Total is kept as the caller-supplied string; analytics parse it
	// numerically and treat malformed values as 0.
	Total         string `gorm:"type:varchar(50)" json:"total"`
	PaymentMethod string `gorm:"type:varchar(50)" json:"paymentMethod"`

	Address OrderAddress `gorm:"serializer:json" json:"address"`
	Items   []OrderItem  `gorm:"serializer:json" json:"items"`
}
