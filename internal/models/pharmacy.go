package models

import (
	"time"

	"gorm.io/gorm"
)

// PharmacyStatus represents whether a pharmacy can take orders
type PharmacyStatus string

const (
	PharmacyStatusActive   PharmacyStatus = "active"
	PharmacyStatusInactive PharmacyStatus = "inactive"
)

// MonthlySales is one bucket of the cached last-7-months sales curve.
// Month uses the "YYYY-MM" format.
type MonthlySales struct {
	Month string  `json:"month"`
	Sales float64 `json:"sales"`
}

// Pharmacy represents a pharmacy storefront. The aggregate fields
// (TotalSales..Last7MonthsSales) are cached snapshots refreshed by the
// analytics service; they are recomputable from orders and medicines at any
// time and are never authoritative.
type Pharmacy struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name    string `gorm:"type:varchar(255)" json:"name"`
	Img     string `gorm:"type:varchar(255);default:'uploads/pharmacy-default.png'" json:"img"`
	License string `gorm:"type:varchar(100)" json:"license"`
	Contact string `gorm:"type:varchar(50)" json:"contact"`
	Email   string `gorm:"type:varchar(255)" json:"email"`

	Address  string    `gorm:"type:text" json:"address"`
	Position *Position `gorm:"serializer:json" json:"position,omitempty"`

	Status      PharmacyStatus `gorm:"type:varchar(20);default:'inactive'" json:"status"`
	Rating      float64        `gorm:"default:0" json:"rating"`
	Description string         `gorm:"type:text" json:"description"`

	// Append-only, deduplicated set of medicine categories sold here.
	Categorys []string `gorm:"serializer:json" json:"categorys"`

	// The admin user managing this pharmacy.
	ManagerID *uint `json:"managerId,omitempty"`

	TotalSales       float64        `gorm:"default:0" json:"totalSales"`
	TotalOrders      int64          `gorm:"default:0" json:"totalOrders"`
	ProductsInStock  int64          `gorm:"default:0" json:"productsInStock"`
	NoOfCustomers    int64          `gorm:"default:0" json:"noOfCustomers"`
	Last7MonthsSales []MonthlySales `gorm:"serializer:json" json:"last7MonthsSales"`
}

// AddCategory appends a category to the pharmacy's list if it is not already
// present. Reports whether the list changed.
func (p *Pharmacy) AddCategory(category string) bool {
	if category == "" {
		return false
	}
	for _, c := range p.Categorys {
		if c == category {
			return false
		}
	}
	p.Categorys = append(p.Categorys, category)
	return true
}

// PharmacyPatch carries only the fields a caller intends to change.
type PharmacyPatch struct {
	Name        *string         `json:"name"`
	License     *string         `json:"license"`
	Contact     *string         `json:"contact"`
	Email       *string         `json:"email"`
	Address     *string         `json:"address"`
	Position    *Position       `json:"position"`
	Status      *PharmacyStatus `json:"status"`
	Rating      *float64        `json:"rating"`
	Description *string         `json:"description"`
}

// Apply copies the present fields onto the pharmacy.
func (p PharmacyPatch) Apply(ph *Pharmacy) {
	if p.Name != nil {
		ph.Name = *p.Name
	}
	if p.License != nil {
		ph.License = *p.License
	}
	if p.Contact != nil {
		ph.Contact = *p.Contact
	}
	if p.Email != nil {
		ph.Email = *p.Email
	}
	if p.Address != nil {
		ph.Address = *p.Address
	}
	if p.Position != nil {
		ph.Position = p.Position
	}
	if p.Status != nil {
		ph.Status = *p.Status
	}
	if p.Rating != nil {
		ph.Rating = *p.Rating
	}
	if p.Description != nil {
		ph.Description = *p.Description
	}
}
