package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"pharmaplus_echo/internal/models"
)

// PharmacyStats is the recomputed aggregate snapshot for one pharmacy.
type PharmacyStats struct {
	TotalOrders      int64                 `json:"totalOrders"`
	TotalSales       float64               `json:"totalSales"`
	ProductsInStock  int64                 `json:"productsInStock"`
	NoOfCustomers    int64                 `json:"noOfCustomers"`
	Last7MonthsSales []models.MonthlySales `json:"last7MonthsSales"`
}

// last7Months returns "YYYY-MM" keys for the current month and the six
// before it, oldest first. The day is pinned to the 1st before stepping
// back: AddDate on the 29th-31st normalizes through short months and
// skips or duplicates buckets.
func last7Months(now time.Time) []string {
	months := make([]string, 0, 7)
	for i := 6; i >= 0; i-- {
		m := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, now.Location())
		months = append(months, m.Format("2006-01"))
	}
	return months
}

// ParseOrderTotal converts an order's total string to a number; malformed
// totals count as zero rather than poisoning the aggregate.
func ParseOrderTotal(total string) float64 {
	v, err := strconv.ParseFloat(total, 64)
	if err != nil {
		return 0
	}
	return v
}

// CalculatePharmacyStats recomputes the aggregate snapshot for a pharmacy
// from its orders and medicines and persists it onto the pharmacy row.
// Every month bucket is present in the result even when it has no sales.
func CalculatePharmacyStats(ctx context.Context, db *gorm.DB, pharmacyID uint) (*PharmacyStats, error) {
	tx := db.WithContext(ctx)

	var pharmacy models.Pharmacy
	if err := tx.First(&pharmacy, pharmacyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: pharmacy not found", ErrNotFound)
		}
		return nil, err
	}

	var orders []models.Order
	if err := tx.Where("pharmacy_id = ?", pharmacyID).Find(&orders).Error; err != nil {
		return nil, err
	}

	var medicines []models.Medicine
	if err := tx.Where("pharmacy_id = ?", pharmacyID).Find(&medicines).Error; err != nil {
		return nil, err
	}

	stats := &PharmacyStats{
		TotalOrders: int64(len(orders)),
	}

	customers := make(map[uint]struct{})
	for _, o := range orders {
		stats.TotalSales += ParseOrderTotal(o.Total)
		customers[o.UserID] = struct{}{}
	}
	stats.NoOfCustomers = int64(len(customers))

	for _, m := range medicines {
		stats.ProductsInStock += int64(m.Stock)
	}

	months := last7Months(time.Now())
	stats.Last7MonthsSales = make([]models.MonthlySales, 0, len(months))
	for _, month := range months {
		var sales float64
		for _, o := range orders {
			if o.CreatedAt.Format("2006-01") == month {
				sales += ParseOrderTotal(o.Total)
			}
		}
		stats.Last7MonthsSales = append(stats.Last7MonthsSales, models.MonthlySales{Month: month, Sales: sales})
	}

	pharmacy.TotalOrders = stats.TotalOrders
	pharmacy.TotalSales = stats.TotalSales
	pharmacy.ProductsInStock = stats.ProductsInStock
	pharmacy.NoOfCustomers = stats.NoOfCustomers
	pharmacy.Last7MonthsSales = stats.Last7MonthsSales
	if err := tx.Save(&pharmacy).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
