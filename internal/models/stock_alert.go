package models

import (
	"time"

	"gorm.io/gorm"
)

// StockAlert records a medicine dropping to or below its threshold as a result
// of an order decrement. Alerts are informational; resolving one does not
// change stock.
type StockAlert struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	MedicineID uint `gorm:"index" json:"medicineId"`
	PharmacyID uint `gorm:"index" json:"pharmacyId"`

	StockAtAlert int            `json:"stockAtAlert"`
	Threshold    int            `json:"threshold"`
	Status       MedicineStatus `gorm:"type:varchar(20)" json:"status"`

	Resolved bool `gorm:"default:false" json:"resolved"`
}
