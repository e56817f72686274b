package models

import (
	"time"

	"gorm.io/gorm"
)

// MedicineStatus is the availability tier derived from stock and threshold.
// It is always a pure function of (stock, threshold), never set independently.
type MedicineStatus string

const (
	MedicineStatusAvailable  MedicineStatus = "Available"
	MedicineStatusLowStock   MedicineStatus = "lowStock"
	MedicineStatusOutOfStock MedicineStatus = "outOfStock"
)

// CalculateMedicineStatus derives the availability tier for a medicine.
// Callers updating stock or threshold must pass the prospective merged values,
// never a half-updated record.
func CalculateMedicineStatus(stock, threshold int) MedicineStatus {
	if stock == 0 {
		return MedicineStatusOutOfStock
	}
	if stock <= threshold {
		return MedicineStatusLowStock
	}
	return MedicineStatusAvailable
}

// Medicine belongs to exactly one pharmacy.
type Medicine struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name          string `gorm:"type:varchar(255)" json:"name"`
	MedicineImage string `gorm:"type:varchar(255);default:'uploads/medicine-default.jpg'" json:"medicineImage"`
	Category      string `gorm:"type:varchar(100)" json:"category"`

	Price     float64 `json:"price"`
	Stock     int     `json:"stock"`
	Threshold int     `json:"threshold"`

	Status MedicineStatus `gorm:"type:varchar(20);default:'Available'" json:"status"`

	Description string `gorm:"type:text" json:"description"`

	PharmacyID uint      `gorm:"index" json:"pharmacy"`
	Pharmacy   *Pharmacy `gorm:"foreignKey:PharmacyID" json:"-"`
}

// MedicinePatch carries only the fields a caller intends to change. Status is
// deliberately absent: it is recomputed from the merged stock/threshold.
type MedicinePatch struct {
	Name        *string  `json:"name"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	Threshold   *int     `json:"threshold"`
	Description *string  `json:"description"`
}

// Apply copies the present fields onto the medicine and recomputes the status
// whenever stock or threshold changed, using the merged values.
func (p MedicinePatch) Apply(m *Medicine) {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Category != nil {
		m.Category = *p.Category
	}
	if p.Price != nil {
		m.Price = *p.Price
	}
	if p.Stock != nil {
		m.Stock = *p.Stock
	}
	if p.Threshold != nil {
		m.Threshold = *p.Threshold
	}
	if p.Stock != nil || p.Threshold != nil {
		m.Status = CalculateMedicineStatus(m.Stock, m.Threshold)
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
}
